package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-retail-service/internal/product"
	"github.com/fekuna/omnipos-retail-service/internal/sale/dto"
	"github.com/fekuna/omnipos-retail-service/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Reader is the consumer side of the sale event topic.
type Reader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// StockListener keeps product caches and the search index current after sales change stock.
type StockListener struct {
	consumer Reader
	uc       product.UseCase
	logger   logger.ZapLogger
}

func NewStockListener(consumer Reader, uc product.UseCase, logger logger.ZapLogger) *StockListener {
	return &StockListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
	}
}

func (l *StockListener) Start(ctx context.Context) {
	l.logger.Info("Starting sale event listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping sale event listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

func (l *StockListener) processMessage(ctx context.Context, value []byte) {
	var event dto.SaleEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	if event.EventType != dto.EventSaleRecorded && event.EventType != dto.EventSaleCancelled {
		return
	}

	seen := map[string]bool{}
	ids := make([]string, 0, len(event.Payload.Items))
	for _, item := range event.Payload.Items {
		if item.ProductID == "" || seen[item.ProductID] {
			continue
		}
		seen[item.ProductID] = true
		ids = append(ids, item.ProductID)
	}

	l.logger.Info("Processing sale event",
		zap.String("event_type", event.EventType),
		zap.String("sale_id", event.Payload.SaleID),
		zap.Int("products", len(ids)),
	)

	if err := l.uc.SyncProducts(ctx, ids); err != nil {
		l.logger.Error("Failed to sync products after sale",
			zap.String("sale_id", event.Payload.SaleID),
			zap.Error(err),
		)
	}
}
