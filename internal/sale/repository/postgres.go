package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-retail-service/internal/apperr"
	"github.com/fekuna/omnipos-retail-service/internal/model"
	"github.com/fekuna/omnipos-retail-service/internal/sale/dto"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrInsufficientStock = apperr.Conflict("InsufficientStock", "insufficient stock")
	ErrSaleNotFound      = apperr.NotFound("SaleNotFound", "sale not found")
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const (
	insertSaleQuery = `
        INSERT INTO sales (id, gross_total, net_total, discount, payment_method, installments, sold_by, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING code
    `
	decrementStockQuery = `
        UPDATE stock_entries
        SET quantity = quantity - $1, updated_at = NOW()
        WHERE id = $2 AND quantity >= $1
        RETURNING quantity
    `
	restockQuery = `
        UPDATE stock_entries
        SET quantity = quantity + $1, updated_at = NOW()
        WHERE id = $2
        RETURNING quantity
    `
	insertSaleItemQuery = `
        INSERT INTO sale_items (id, sale_id, product_id, stock_entry_id, description, quantity, unit_price, unit_cost, subtotal)
        VALUES (:id, :sale_id, :product_id, :stock_entry_id, :description, :quantity, :unit_price, :unit_cost, :subtotal)
    `
	insertMovementQuery = `
        INSERT INTO stock_movements (
            id, stock_entry_id, movement_type, quantity_change, quantity_before,
            quantity_after, reference_id, notes, created_by, created_at
        )
        VALUES (
            :id, :stock_entry_id, :movement_type, :quantity_change, :quantity_before,
            :quantity_after, :reference_id, :notes, :created_by, :created_at
        )
    `
)

func (r *PGRepository) Record(ctx context.Context, input *dto.RecordSaleInput) (*model.Sale, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := time.Now()
	s := &model.Sale{
		ID:            uuid.New().String(),
		GrossTotal:    input.GrossTotal,
		NetTotal:      input.NetTotal,
		Discount:      input.Discount,
		PaymentMethod: input.PaymentMethod,
		Installments:  input.Installments,
		SoldBy:        nullable(input.SoldBy),
		CreatedAt:     now,
	}

	err = tx.QueryRowxContext(ctx, insertSaleQuery,
		s.ID, s.GrossTotal, s.NetTotal, s.Discount, s.PaymentMethod, s.Installments, s.SoldBy, s.CreatedAt,
	).Scan(&s.Code)
	if err != nil {
		return nil, fmt.Errorf("failed to insert sale: %w", err)
	}

	for _, it := range input.Items {
		var after int
		err := tx.QueryRowxContext(ctx, decrementStockQuery, it.Quantity, it.StockEntryID).Scan(&after)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrInsufficientStock.WithData(map[string]interface{}{"Item": it.Description})
			}
			return nil, fmt.Errorf("failed to decrement stock: %w", err)
		}

		item := model.SaleItem{
			ID:           uuid.New().String(),
			SaleID:       s.ID,
			ProductID:    it.ProductID,
			StockEntryID: it.StockEntryID,
			Description:  it.Description,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			UnitCost:     it.UnitCost,
			Subtotal:     it.Subtotal,
		}
		if _, err := tx.NamedExecContext(ctx, insertSaleItemQuery, item); err != nil {
			return nil, fmt.Errorf("failed to insert sale item: %w", err)
		}

		movement := &model.StockMovement{
			ID:             uuid.New().String(),
			StockEntryID:   it.StockEntryID,
			MovementType:   model.MovementSale,
			QuantityChange: -it.Quantity,
			QuantityBefore: after + it.Quantity,
			QuantityAfter:  after,
			ReferenceID:    &s.ID,
			Notes:          fmt.Sprintf("sale #%d", s.Code),
			CreatedBy:      s.SoldBy,
			CreatedAt:      now,
		}
		if _, err := tx.NamedExecContext(ctx, insertMovementQuery, movement); err != nil {
			return nil, fmt.Errorf("failed to log movement: %w", err)
		}
		s.Items = append(s.Items, item)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Sale, error) {
	var s model.Sale
	err := r.DB.GetContext(ctx, &s, `SELECT * FROM sales WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.DB.SelectContext(ctx, &s.Items, `SELECT * FROM sale_items WHERE sale_id = $1`, id); err != nil {
		return nil, err
	}
	return &s, nil
}

// FindAll lists sales newest first. From and To are inclusive calendar days; without
// either bound the listing is capped at Limit.
func (r *PGRepository) FindAll(ctx context.Context, f *dto.SaleFilters) ([]model.Sale, error) {
	var sales []model.Sale

	conditions := []string{}
	args := map[string]interface{}{}

	if f.From != nil {
		conditions = append(conditions, "created_at >= :from")
		args["from"] = startOfDay(*f.From)
	}
	if f.To != nil {
		conditions = append(conditions, "created_at < :to")
		args["to"] = startOfDay(*f.To).AddDate(0, 0, 1)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := "SELECT * FROM sales" + whereClause + " ORDER BY created_at DESC"
	if len(conditions) == 0 {
		limit := f.Limit
		if limit <= 0 {
			limit = dto.DefaultLimit
		}
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, &sales, args); err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, sales); err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *PGRepository) attachItems(ctx context.Context, sales []model.Sale) error {
	if len(sales) == 0 {
		return nil
	}
	ids := make([]string, len(sales))
	index := make(map[string]int, len(sales))
	for i, s := range sales {
		ids[i] = s.ID
		index[s.ID] = i
	}

	query, args, err := sqlx.In(`SELECT * FROM sale_items WHERE sale_id IN (?)`, ids)
	if err != nil {
		return err
	}
	query = r.DB.Rebind(query)

	var items []model.SaleItem
	if err := r.DB.SelectContext(ctx, &items, query, args...); err != nil {
		return err
	}
	for _, it := range items {
		i := index[it.SaleID]
		sales[i].Items = append(sales[i].Items, it)
	}
	return nil
}

func (r *PGRepository) Cancel(ctx context.Context, id, userID string) (*model.Sale, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var s model.Sale
	if err := tx.GetContext(ctx, &s, `SELECT * FROM sales WHERE id = $1 FOR UPDATE`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	if err := tx.SelectContext(ctx, &s.Items, `SELECT * FROM sale_items WHERE sale_id = $1`, id); err != nil {
		return nil, err
	}

	now := time.Now()
	for _, it := range s.Items {
		var after int
		err := tx.QueryRowxContext(ctx, restockQuery, it.Quantity, it.StockEntryID).Scan(&after)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return nil, fmt.Errorf("failed to restock: %w", err)
		}

		movement := &model.StockMovement{
			ID:             uuid.New().String(),
			StockEntryID:   it.StockEntryID,
			MovementType:   model.MovementSaleCancel,
			QuantityChange: it.Quantity,
			QuantityBefore: after - it.Quantity,
			QuantityAfter:  after,
			ReferenceID:    &s.ID,
			Notes:          fmt.Sprintf("sale #%d cancelled", s.Code),
			CreatedBy:      nullable(userID),
			CreatedAt:      now,
		}
		if _, err := tx.NamedExecContext(ctx, insertMovementQuery, movement); err != nil {
			return nil, fmt.Errorf("failed to log movement: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM sales WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to delete sale: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrSaleNotFound
	}
	return nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
