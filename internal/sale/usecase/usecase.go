package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-retail-service/internal/apperr"
	"github.com/fekuna/omnipos-retail-service/internal/model"
	"github.com/fekuna/omnipos-retail-service/internal/sale"
	"github.com/fekuna/omnipos-retail-service/internal/sale/dto"
	"github.com/fekuna/omnipos-retail-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrEmptySale           = apperr.Validation("EmptyCart", "a sale needs at least one item")
	ErrInvalidQuantity     = apperr.Validation("InvalidQuantity", "quantity must be greater than zero")
	ErrNegativeAmount      = apperr.Validation("NegativeAmount", "amounts cannot be negative")
	ErrInvalidMethod       = apperr.Validation("InvalidPaymentMethod", "unknown payment method")
	ErrInvalidInstallments = apperr.Validation("InvalidInstallments", "installments must be between 1 and 12")
	ErrSaleNotFound        = apperr.NotFound("SaleNotFound", "sale not found")
)

// Publisher delivers sale events to the broker.
type Publisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// Invalidator drops cached catalog snapshots.
type Invalidator interface {
	Delete(ctx context.Context, keys ...string) error
}

type saleUseCase struct {
	repo      sale.Repository
	publisher Publisher
	cache     Invalidator
	cacheKey  string
	logger    logger.ZapLogger
}

// NewSaleUseCase builds the sale use case. publisher and cache may be nil; cacheKey is the
// catalog key dropped after stock changes.
func NewSaleUseCase(repo sale.Repository, publisher Publisher, cache Invalidator, cacheKey string, log logger.ZapLogger) sale.UseCase {
	return &saleUseCase{
		repo:      repo,
		publisher: publisher,
		cache:     cache,
		cacheKey:  cacheKey,
		logger:    log,
	}
}

func (uc *saleUseCase) RecordSale(ctx context.Context, input *dto.RecordSaleInput) (*model.Sale, error) {
	if !input.PaymentMethod.AllowsInstallments() {
		input.Installments = 1
	}
	if err := validate(input); err != nil {
		return nil, err
	}

	s, err := uc.repo.Record(ctx, input)
	if err != nil {
		uc.logger.Warn("failed to record sale", zap.Error(err), zap.Int("items", len(input.Items)))
		return nil, err
	}
	uc.logger.Info("sale recorded",
		zap.String("sale_id", s.ID),
		zap.Int64("code", s.Code),
		zap.String("net_total", s.NetTotal.StringFixed(2)),
	)

	uc.afterStockChange(ctx, dto.EventSaleRecorded, s)
	return s, nil
}

func validate(input *dto.RecordSaleInput) error {
	if len(input.Items) == 0 {
		return ErrEmptySale
	}
	if !input.PaymentMethod.Valid() {
		return ErrInvalidMethod
	}
	if input.Installments < 1 || input.Installments > model.MaxInstallments {
		return ErrInvalidInstallments
	}
	if input.GrossTotal.IsNegative() || input.NetTotal.IsNegative() || input.Discount.IsNegative() {
		return ErrNegativeAmount
	}
	for i := range input.Items {
		it := &input.Items[i]
		if it.Quantity < 1 {
			return ErrInvalidQuantity
		}
		if it.UnitPrice.IsNegative() || it.UnitCost.IsNegative() {
			return ErrNegativeAmount
		}
		if it.Subtotal.IsZero() {
			it.Subtotal = it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		}
	}
	return nil
}

func (uc *saleUseCase) GetSale(ctx context.Context, id string) (*model.Sale, error) {
	s, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrSaleNotFound
	}
	return s, nil
}

func (uc *saleUseCase) ListSales(ctx context.Context, filters *dto.SaleFilters) ([]model.Sale, error) {
	return uc.repo.FindAll(ctx, filters)
}

func (uc *saleUseCase) Metrics(ctx context.Context, filters *dto.SaleFilters) (*dto.Metrics, error) {
	sales, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, err
	}
	m := ComputeMetrics(sales)
	return &m, nil
}

func (uc *saleUseCase) CancelSale(ctx context.Context, id, userID string) error {
	s, err := uc.repo.Cancel(ctx, id, userID)
	if err != nil {
		return err
	}
	uc.logger.Info("sale cancelled", zap.String("sale_id", s.ID), zap.Int64("code", s.Code))
	uc.afterStockChange(ctx, dto.EventSaleCancelled, s)
	return nil
}

// DeleteSale removes the record only. Stock is not restored.
func (uc *saleUseCase) DeleteSale(ctx context.Context, id string) error {
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.logger.Info("sale deleted", zap.String("sale_id", id))
	return nil
}

// afterStockChange drops the catalog cache and announces the change. Failures are logged only:
// the sale is already committed.
func (uc *saleUseCase) afterStockChange(ctx context.Context, eventType string, s *model.Sale) {
	if uc.cache != nil && uc.cacheKey != "" {
		if err := uc.cache.Delete(ctx, uc.cacheKey); err != nil {
			uc.logger.Warn("failed to invalidate catalog cache", zap.Error(err))
		}
	}
	if uc.publisher == nil {
		return
	}

	event := dto.SaleEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Payload:   dto.SalePayload{SaleID: s.ID, Code: s.Code},
		Timestamp: time.Now(),
	}
	for _, it := range s.Items {
		event.Payload.Items = append(event.Payload.Items, dto.SaleItemPayload{
			ProductID:    it.ProductID,
			StockEntryID: it.StockEntryID,
			Quantity:     it.Quantity,
		})
	}

	data, err := json.Marshal(event)
	if err != nil {
		uc.logger.Error("failed to marshal sale event", zap.Error(err))
		return
	}
	if err := uc.publisher.Publish(ctx, s.ID, data); err != nil {
		uc.logger.Error("failed to publish sale event", zap.String("event_type", eventType), zap.Error(err))
	}
}
