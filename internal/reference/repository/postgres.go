package repository

import (
	"context"
	"fmt"

	"github.com/fekuna/omnipos-retail-service/internal/apperr"
	"github.com/fekuna/omnipos-retail-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) ListSizes(ctx context.Context) ([]model.Size, error) {
	sizes := []model.Size{}
	if err := r.DB.SelectContext(ctx, &sizes, `SELECT * FROM sizes ORDER BY sort_order, name`); err != nil {
		return nil, err
	}
	return sizes, nil
}

func (r *PGRepository) ListColors(ctx context.Context) ([]model.Color, error) {
	colors := []model.Color{}
	if err := r.DB.SelectContext(ctx, &colors, `SELECT * FROM colors ORDER BY sort_order, name`); err != nil {
		return nil, err
	}
	return colors, nil
}

func (r *PGRepository) CreateSize(ctx context.Context, s *model.Size) error {
	return r.create(ctx, "sizes", s, &s.SortOrder)
}

func (r *PGRepository) CreateColor(ctx context.Context, c *model.Color) error {
	return r.create(ctx, "colors", c, &c.SortOrder)
}

// create inserts row into table. A negative sort order places the row after the last one.
func (r *PGRepository) create(ctx context.Context, table string, row interface{}, sortOrder *int) error {
	if *sortOrder < 0 {
		next := 0
		query := fmt.Sprintf(`SELECT COALESCE(MAX(sort_order), 0) + 1 FROM %s`, table)
		if err := r.DB.GetContext(ctx, &next, query); err != nil {
			return fmt.Errorf("failed to compute sort order: %w", err)
		}
		*sortOrder = next
	}

	query := fmt.Sprintf(`
        INSERT INTO %s (id, name, sort_order, created_at)
        VALUES (:id, :name, :sort_order, :created_at)
    `, table)
	if _, err := r.DB.NamedExecContext(ctx, query, row); err != nil {
		return apperr.FromDB(err, "NameTaken", "name is already in use")
	}
	return nil
}
