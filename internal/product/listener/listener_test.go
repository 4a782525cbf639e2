package listener

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/fekuna/omnipos-retail-service/internal/product"
	"github.com/fekuna/omnipos-retail-service/internal/sale/dto"
	"github.com/fekuna/omnipos-retail-service/pkg/logger"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncRecorder struct {
	product.UseCase
	synced [][]string
}

func (s *syncRecorder) SyncProducts(ctx context.Context, ids []string) error {
	s.synced = append(s.synced, ids)
	return nil
}

func event(t *testing.T, eventType string, productIDs ...string) []byte {
	t.Helper()
	e := dto.SaleEvent{EventID: "e1", EventType: eventType, Payload: dto.SalePayload{SaleID: "s1"}}
	for _, id := range productIDs {
		e.Payload.Items = append(e.Payload.Items, dto.SaleItemPayload{ProductID: id, StockEntryID: id + "-m", Quantity: 1})
	}
	data, err := json.Marshal(e)
	require.NoError(t, err)
	return data
}

func TestProcessMessageSyncsTouchedProducts(t *testing.T) {
	rec := &syncRecorder{}
	l := NewStockListener(nil, rec, logger.NewNop())

	l.processMessage(context.Background(), event(t, dto.EventSaleRecorded, "p1", "p2", "p1"))
	l.processMessage(context.Background(), event(t, dto.EventSaleCancelled, "p3"))

	require.Len(t, rec.synced, 2)
	assert.Equal(t, []string{"p1", "p2"}, rec.synced[0])
	assert.Equal(t, []string{"p3"}, rec.synced[1])
}

func TestProcessMessageIgnoresOtherEvents(t *testing.T) {
	rec := &syncRecorder{}
	l := NewStockListener(nil, rec, logger.NewNop())

	l.processMessage(context.Background(), event(t, "OrderCreated", "p1"))
	l.processMessage(context.Background(), []byte("not json"))

	assert.Empty(t, rec.synced)
}

type scriptedReader struct {
	messages [][]byte
	cancel   context.CancelFunc
}

func (r *scriptedReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.messages) == 0 {
		r.cancel()
		return kafka.Message{}, errors.New("closed")
	}
	msg := kafka.Message{Value: r.messages[0]}
	r.messages = r.messages[1:]
	return msg, nil
}

func TestStartStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := &syncRecorder{}
	reader := &scriptedReader{messages: [][]byte{event(t, dto.EventSaleRecorded, "p1")}, cancel: cancel}
	l := NewStockListener(reader, rec, logger.NewNop())

	done := make(chan struct{})
	go func() {
		l.Start(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not stop")
	}
	assert.Len(t, rec.synced, 1)
}
