package repository

import (
	"context"
	"database/sql"
	"errors"

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

func (r *PGRepository) Create(ctx context.Context, u *model.User) error {
	query := `
        INSERT INTO users (id, email, password_hash, created_at)
        VALUES (:id, :email, :password_hash, :created_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, u)
	return apperr.FromDB(err, "EmailTaken", "an account with this email already exists")
}

func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := r.DB.GetContext(ctx, &u, `SELECT * FROM users WHERE email = $1 LIMIT 1`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
