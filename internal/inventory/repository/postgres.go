package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-retail-service/internal/apperr"
	"github.com/fekuna/omnipos-retail-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-retail-service/internal/model"
	"github.com/jmoiron/sqlx"
)

var (
	ErrStockEntryNotFound = apperr.NotFound("StockEntryNotFound", "stock entry not found")
	ErrNegativeStock      = apperr.Validation("NegativeStock", "stock cannot go below zero")
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const insertMovementQuery = `
    INSERT INTO stock_movements (
        id, stock_entry_id, movement_type, quantity_change, quantity_before,
        quantity_after, reference_id, notes, created_by, created_at
    )
    VALUES (
        :id, :stock_entry_id, :movement_type, :quantity_change, :quantity_before,
        :quantity_after, :reference_id, :notes, :created_by, :created_at
    )
`

func (r *PGRepository) FindEntry(ctx context.Context, id string) (*dto.EntryDetail, error) {
	var entry dto.EntryDetail
	query := `
        SELECT s.id, s.variant_id, s.size_id, z.name AS size_name, z.sort_order AS size_order,
               s.quantity, s.barcode, v.product_id
        FROM stock_entries s
        JOIN sizes z ON z.id = s.size_id
        JOIN product_variants v ON v.id = s.variant_id
        WHERE s.id = $1
    `
	err := r.DB.GetContext(ctx, &entry, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// FindVariantProductID returns the product owning variantID, or "" for an unknown variant.
func (r *PGRepository) FindVariantProductID(ctx context.Context, variantID string) (string, error) {
	var productID string
	err := r.DB.GetContext(ctx, &productID, `SELECT product_id FROM product_variants WHERE id = $1`, variantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return productID, nil
}

func (r *PGRepository) CreateEntry(ctx context.Context, e *model.StockEntry) error {
	query := `
        INSERT INTO stock_entries (id, variant_id, size_id, quantity, barcode, updated_at)
        VALUES (:id, :variant_id, :size_id, :quantity, :barcode, NOW())
    `
	if _, err := r.DB.NamedExecContext(ctx, query, e); err != nil {
		return apperr.FromDB(err, "SizeAlreadyOnVariant", "this size is already registered for the color")
	}
	return nil
}

func (r *PGRepository) SetBarcode(ctx context.Context, id string, barcode *string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE stock_entries SET barcode = $1, updated_at = NOW() WHERE id = $2`,
		barcode, id,
	)
	if err != nil {
		return apperr.FromDB(err, "BarcodeTaken", "barcode is already assigned to another item")
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrStockEntryNotFound
	}
	return nil
}

func (r *PGRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.StockMovement, error) {
	items := []model.StockMovement{}

	conditions := []string{}
	args := map[string]interface{}{}

	if f.StockEntryID != "" {
		conditions = append(conditions, "stock_entry_id = :stock_entry_id")
		args["stock_entry_id"] = f.StockEntryID
	}
	if f.MovementType != "" {
		conditions = append(conditions, "movement_type = :movement_type")
		args["movement_type"] = f.MovementType
	}
	if f.From != nil {
		conditions = append(conditions, "created_at >= :from")
		args["from"] = *f.From
	}
	if f.To != nil {
		conditions = append(conditions, "created_at < :to")
		args["to"] = f.To.AddDate(0, 0, 1)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	limit := f.Limit
	if limit <= 0 {
		limit = dto.DefaultMovementLimit
	}
	query := fmt.Sprintf("SELECT * FROM stock_movements%s ORDER BY created_at DESC LIMIT %d", whereClause, limit)

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, &items, args); err != nil {
		return nil, err
	}
	return items, nil
}

// ApplyStockChange adds m.QuantityChange to the entry in place and logs the
// movement in the same transaction. Before and after are taken from the row as
// written, so sales committing concurrently are never overwritten.
func (r *PGRepository) ApplyStockChange(ctx context.Context, m *model.StockMovement) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// 1. Relative update, guarded against going negative
	var after int
	err = tx.GetContext(ctx, &after,
		`UPDATE stock_entries SET quantity = quantity + $1, updated_at = NOW()
         WHERE id = $2 AND quantity + $1 >= 0
         RETURNING quantity`,
		m.QuantityChange, m.StockEntryID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		var available int
		err = tx.GetContext(ctx, &available, `SELECT quantity FROM stock_entries WHERE id = $1`, m.StockEntryID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrStockEntryNotFound
		}
		if err != nil {
			return err
		}
		return ErrNegativeStock.WithData(map[string]interface{}{"Available": available})
	}
	if err != nil {
		return fmt.Errorf("failed to update stock entry: %w", apperr.FromDB(err, "NegativeStock", "stock cannot be negative"))
	}
	m.QuantityAfter = after
	m.QuantityBefore = after - m.QuantityChange

	// 2. Log movement
	if _, err := tx.NamedExecContext(ctx, insertMovementQuery, m); err != nil {
		return fmt.Errorf("failed to log movement: %w", err)
	}

	return tx.Commit()
}
