package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-retail-service/internal/apperr"
	"github.com/fekuna/omnipos-retail-service/internal/inventory"
	"github.com/fekuna/omnipos-retail-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-retail-service/internal/model"
	"github.com/fekuna/omnipos-retail-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	lockTTL      = 5 * time.Second
	lockAttempts = 3
	lockBackoff  = 100 * time.Millisecond
)

var (
	ErrStockEntryNotFound = apperr.NotFound("StockEntryNotFound", "stock entry not found")
	ErrVariantNotFound    = apperr.NotFound("VariantNotFound", "variant not found")
	ErrMovementType       = apperr.Validation("MovementTypeInvalid", "movement type must be entry or exit")
	ErrInvalidQuantity    = apperr.Validation("InvalidQuantity", "quantity must be greater than zero")
	ErrNegativeStock      = apperr.Validation("NegativeStock", "stock cannot go below zero")
	ErrSizeRequired       = apperr.Validation("SizeRequired", "choose a size")
	ErrBusy               = apperr.Conflict("Busy", "the item is being updated, try again")
)

// Locker serializes adjustments of one stock entry across server instances.
type Locker interface {
	AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, value string) error
}

// Syncer refreshes caches and the search index of products whose stock changed.
type Syncer interface {
	SyncProducts(ctx context.Context, ids []string) error
}

type inventoryUseCase struct {
	repo   inventory.Repository
	locker Locker
	syncer Syncer
	logger logger.ZapLogger
}

// NewInventoryUseCase builds the stock ledger use case. syncer may be nil.
func NewInventoryUseCase(repo inventory.Repository, locker Locker, syncer Syncer, log logger.ZapLogger) inventory.UseCase {
	return &inventoryUseCase{
		repo:   repo,
		locker: locker,
		syncer: syncer,
		logger: log,
	}
}

func (uc *inventoryUseCase) AddStockEntry(ctx context.Context, input *dto.AddStockEntryInput) (*model.StockEntry, error) {
	if strings.TrimSpace(input.SizeID) == "" {
		return nil, ErrSizeRequired
	}
	productID, err := uc.repo.FindVariantProductID(ctx, input.VariantID)
	if err != nil {
		return nil, err
	}
	if productID == "" {
		return nil, ErrVariantNotFound
	}

	entry := &model.StockEntry{
		ID:        uuid.New().String(),
		VariantID: input.VariantID,
		SizeID:    input.SizeID,
		Quantity:  0,
	}
	if err := uc.repo.CreateEntry(ctx, entry); err != nil {
		return nil, err
	}
	uc.logger.Info("stock entry added", zap.String("variant_id", entry.VariantID), zap.String("size_id", entry.SizeID))

	uc.sync(ctx, productID)
	return entry, nil
}

func (uc *inventoryUseCase) AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.StockEntry, error) {
	var sign int
	switch input.MovementType {
	case model.MovementEntry:
		sign = 1
	case model.MovementExit:
		sign = -1
	default:
		return nil, ErrMovementType
	}
	if input.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	// 0. Acquire Lock
	lockKey := fmt.Sprintf("lock:stock:%s", input.StockEntryID)
	lockValue := uuid.New().String()
	acquired := false
	for i := 0; i < lockAttempts; i++ {
		ok, err := uc.locker.AcquireLock(ctx, lockKey, lockValue, lockTTL)
		if err != nil {
			uc.logger.Error("failed to acquire lock redis error", zap.Error(err))
		}
		if ok {
			acquired = true
			break
		}
		time.Sleep(lockBackoff)
	}
	if !acquired {
		return nil, ErrBusy
	}
	defer uc.locker.ReleaseLock(ctx, lockKey, lockValue)

	// 1. Entry must exist
	entry, err := uc.repo.FindEntry(ctx, input.StockEntryID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrStockEntryNotFound
	}

	var createdBy *string
	if input.UserID != "" {
		createdBy = &input.UserID
	}

	// 2. Relative change plus ledger row; the repository fills before/after
	movement := &model.StockMovement{
		ID:             uuid.New().String(),
		StockEntryID:   entry.ID,
		MovementType:   input.MovementType,
		QuantityChange: sign * input.Quantity,
		Notes:          strings.TrimSpace(input.Notes),
		CreatedBy:      createdBy,
		CreatedAt:      time.Now(),
	}
	if err := uc.repo.ApplyStockChange(ctx, movement); err != nil {
		return nil, err
	}
	uc.logger.Info("stock adjusted",
		zap.String("stock_entry_id", entry.ID),
		zap.String("movement_type", input.MovementType),
		zap.Int("before", movement.QuantityBefore),
		zap.Int("after", movement.QuantityAfter),
	)

	entry.Quantity = movement.QuantityAfter
	uc.sync(ctx, entry.ProductID)
	return &entry.StockEntry, nil
}

// SetBarcode assigns a trimmed barcode to the entry. An empty code clears it.
func (uc *inventoryUseCase) SetBarcode(ctx context.Context, input *dto.SetBarcodeInput) (*model.StockEntry, error) {
	var barcode *string
	if code := strings.TrimSpace(input.Barcode); code != "" {
		barcode = &code
	}

	if err := uc.repo.SetBarcode(ctx, input.StockEntryID, barcode); err != nil {
		return nil, err
	}

	entry, err := uc.repo.FindEntry(ctx, input.StockEntryID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrStockEntryNotFound
	}
	uc.sync(ctx, entry.ProductID)
	return &entry.StockEntry, nil
}

func (uc *inventoryUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, error) {
	return uc.repo.ListMovements(ctx, filters)
}

func (uc *inventoryUseCase) sync(ctx context.Context, productID string) {
	if uc.syncer == nil {
		return
	}
	if err := uc.syncer.SyncProducts(ctx, []string{productID}); err != nil {
		uc.logger.Warn("failed to sync product after stock change", zap.String("product_id", productID), zap.Error(err))
	}
}
