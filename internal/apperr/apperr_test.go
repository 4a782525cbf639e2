package apperr

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"app error", Validation("EmptyCart", "cart is empty"), KindValidation},
		{"wrapped app error", fmt.Errorf("checkout: %w", NotFound("ProductNotFound", "missing")), KindNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, KindConflict},
		{"check violation", fmt.Errorf("tx: %w", &pgconn.PgError{Code: "23514"}), KindConflict},
		{"other pg error", &pgconn.PgError{Code: "42P01"}, KindInternal},
		{"no rows", sql.ErrNoRows, KindNotFound},
		{"deadline", context.DeadlineExceeded, KindTransport},
		{"plain", errors.New("boom"), KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestSentinelSurvivesData(t *testing.T) {
	sentinel := NotFound("BarcodeNotFound", "barcode not found")
	err := fmt.Errorf("resolve: %w", sentinel.WithData(map[string]interface{}{"Code": "789"}))

	assert.True(t, errors.Is(err, sentinel))
	assert.False(t, errors.Is(err, NotFound("ProductNotFound", "product not found")))
	assert.Nil(t, sentinel.Data)
}

func TestFromDB(t *testing.T) {
	err := FromDB(&pgconn.PgError{Code: "23505"}, "BarcodeTaken", "barcode already in use")

	var appErr *Error
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, KindConflict, appErr.Kind)
	assert.Equal(t, "BarcodeTaken", appErr.MessageID)

	plain := errors.New("boom")
	assert.Same(t, plain, FromDB(plain, "x", "y"))
	assert.NoError(t, FromDB(nil, "x", "y"))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "cart is empty", Validation("EmptyCart", "cart is empty").Error())
	assert.Equal(t, "could not reach server: dial tcp", Transport(errors.New("dial tcp"), "could not reach server").Error())
}
