package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fekuna/omnipos-retail-service/internal/apperr"
	"github.com/fekuna/omnipos-retail-service/internal/model"
	"github.com/fekuna/omnipos-retail-service/internal/sale/dto"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*PGRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPGRepository(sqlx.NewDb(db, "pgx")), mock
}

func saleInput() *dto.RecordSaleInput {
	return &dto.RecordSaleInput{
		GrossTotal:    decimal.RequireFromString("119.79"),
		NetTotal:      decimal.RequireFromString("119.79"),
		Discount:      decimal.Zero,
		PaymentMethod: model.PaymentPix,
		Installments:  1,
		SoldBy:        "user-1",
		Items: []dto.RecordSaleItem{
			{ProductID: "p1", StockEntryID: "s1", Description: "Blusa - Preto (M)", Quantity: 2,
				UnitPrice: decimal.RequireFromString("49.90"), UnitCost: decimal.RequireFromString("25"), Subtotal: decimal.RequireFromString("99.80")},
			{ProductID: "p2", StockEntryID: "s2", Description: "Saia - Azul (P)", Quantity: 1,
				UnitPrice: decimal.RequireFromString("19.99"), UnitCost: decimal.RequireFromString("8"), Subtotal: decimal.RequireFromString("19.99")},
		},
	}
}

var (
	insertSale     = regexp.QuoteMeta("INSERT INTO sales")
	decrementStock = regexp.QuoteMeta("SET quantity = quantity - $1")
	restock        = regexp.QuoteMeta("SET quantity = quantity + $1")
	insertItem     = regexp.QuoteMeta("INSERT INTO sale_items")
	insertMovement = regexp.QuoteMeta("INSERT INTO stock_movements")
)

func TestRecordCommitsEveryItem(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(insertSale).WillReturnRows(sqlmock.NewRows([]string{"code"}).AddRow(int64(17)))
	mock.ExpectQuery(decrementStock).WithArgs(2, "s1").WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(3))
	mock.ExpectExec(insertItem).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertMovement).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(decrementStock).WithArgs(1, "s2").WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(0))
	mock.ExpectExec(insertItem).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertMovement).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	s, err := repo.Record(context.Background(), saleInput())
	require.NoError(t, err)
	assert.Equal(t, int64(17), s.Code)
	assert.Len(t, s.Items, 2)
	require.NotNil(t, s.SoldBy)
	assert.Equal(t, "user-1", *s.SoldBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRollsBackWhenAnItemIsShort(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(insertSale).WillReturnRows(sqlmock.NewRows([]string{"code"}).AddRow(int64(18)))
	mock.ExpectQuery(decrementStock).WithArgs(2, "s1").WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(0))
	mock.ExpectExec(insertItem).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertMovement).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(decrementStock).WithArgs(1, "s2").WillReturnRows(sqlmock.NewRows([]string{"quantity"}))
	mock.ExpectRollback()

	_, err := repo.Record(context.Background(), saleInput())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRollsBackOnInsertFailure(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(insertSale).WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := repo.Record(context.Background(), saleInput())
	assert.ErrorContains(t, err, "failed to insert sale")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelRestocksAndDeletes(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM sales WHERE id = $1 FOR UPDATE")).WithArgs("sale-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "gross_total", "net_total", "discount", "payment_method", "installments", "sold_by", "created_at"}).
			AddRow("sale-1", int64(9), "99.80", "89.82", "9.98", "pix", 1, nil, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM sale_items WHERE sale_id = $1")).WithArgs("sale-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "sale_id", "product_id", "stock_entry_id", "description", "quantity", "unit_price", "unit_cost", "subtotal"}).
			AddRow("i1", "sale-1", "p1", "s1", "Blusa - Preto (M)", 2, "49.90", "25", "99.80"))
	mock.ExpectQuery(restock).WithArgs(2, "s1").WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(5))
	mock.ExpectExec(insertMovement).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sales WHERE id = $1")).WithArgs("sale-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	s, err := repo.Cancel(context.Background(), "sale-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(9), s.Code)
	require.Len(t, s.Items, 1)
	assert.True(t, decimal.RequireFromString("25").Equal(s.Items[0].UnitCost))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelUnknownSale(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := repo.Cancel(context.Background(), "nope", "")
	assert.True(t, errors.Is(err, ErrSaleNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUnknownSale(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sales")).WithArgs("nope").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrSaleNotFound))
}

func TestFindAllWithoutBoundsIsCapped(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectPrepare(regexp.QuoteMeta("SELECT * FROM sales ORDER BY created_at DESC LIMIT 50")).
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "gross_total", "net_total", "discount", "payment_method", "installments", "sold_by", "created_at"}))

	sales, err := repo.FindAll(context.Background(), &dto.SaleFilters{})
	require.NoError(t, err)
	assert.Empty(t, sales)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindAllWithBoundsIsUncapped(t *testing.T) {
	repo, mock := newMock(t)
	from := time.Date(2025, 3, 1, 15, 30, 0, 0, time.UTC)
	to := time.Date(2025, 3, 31, 8, 0, 0, 0, time.UTC)

	mock.ExpectPrepare(`WHERE created_at >= \$1 AND created_at < \$2 ORDER BY created_at DESC$`).
		ExpectQuery().
		WithArgs(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "gross_total", "net_total", "discount", "payment_method", "installments", "sold_by", "created_at"}).
			AddRow("sale-1", int64(1), "10", "10", "0", "cash", 1, nil, from))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM sale_items WHERE sale_id IN ($1)")).WithArgs("sale-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "sale_id", "product_id", "stock_entry_id", "description", "quantity", "unit_price", "unit_cost", "subtotal"}).
			AddRow("i1", "sale-1", "p1", "s1", "Blusa - Preto (M)", 1, "10", "4", "10"))

	sales, err := repo.FindAll(context.Background(), &dto.SaleFilters{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, sales, 1)
	require.Len(t, sales[0].Items, 1)
	assert.Equal(t, model.PaymentCash, sales[0].PaymentMethod)
	assert.NoError(t, mock.ExpectationsWereMet())
}
