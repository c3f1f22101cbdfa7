package cart

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var itemColumns = []string{
	"id", "user_id", "product_id", "quantity", "created_at",
	"name", "slug", "price", "stock", "images", "category_name", "brand_name",
}

func newTestRepository(t *testing.T) (*PostgresRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresRepository(mock), mock
}

func itemRow(rows *pgxmock.Rows, id, userID, productID string, qty int) *pgxmock.Rows {
	return rows.AddRow(id, userID, productID, qty, time.Unix(1700000000, 0),
		"iPhone 15 Pro", "iphone-15-pro", decimal.RequireFromString("999.00"), 10,
		[]string{"a.jpg"}, "Smartphones", "Apple")
}

func expectStockCheck(mock pgxmock.PgxPoolIface, productID string, stock int) {
	mock.ExpectQuery(`SELECT stock FROM products WHERE id = \$1 AND is_active = TRUE`).
		WithArgs(productID).
		WillReturnRows(pgxmock.NewRows([]string{"stock"}).AddRow(stock))
}

func expectGetItem(mock pgxmock.PgxPoolIface, userID, itemID, productID string, qty int) {
	mock.ExpectQuery(`SELECT ci\.id, ci\.user_id`).
		WithArgs(itemID, userID).
		WillReturnRows(itemRow(pgxmock.NewRows(itemColumns), itemID, userID, productID, qty))
}

func TestAdd_NewLine(t *testing.T) {
	repo, mock := newTestRepository(t)

	expectStockCheck(mock, "p1", 10)
	mock.ExpectQuery(`SELECT id, quantity FROM cart_items WHERE user_id = \$1 AND product_id = \$2`).
		WithArgs("user-1", "p1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "quantity"}))
	mock.ExpectExec(`INSERT INTO cart_items`).
		WithArgs(pgxmock.AnyArg(), "user-1", "p1", 2).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`SELECT ci\.id, ci\.user_id`).
		WithArgs(pgxmock.AnyArg(), "user-1").
		WillReturnRows(itemRow(pgxmock.NewRows(itemColumns), "item-1", "user-1", "p1", 2))

	it, err := repo.Add(context.Background(), "user-1", "p1", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, it.Quantity)
	assert.Equal(t, "p1", it.Product.ID)
	assert.Equal(t, "iPhone 15 Pro", it.Product.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdd_BumpsExistingLine(t *testing.T) {
	repo, mock := newTestRepository(t)

	expectStockCheck(mock, "p1", 10)
	mock.ExpectQuery(`SELECT id, quantity FROM cart_items WHERE user_id = \$1 AND product_id = \$2`).
		WithArgs("user-1", "p1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "quantity"}).AddRow("item-1", 3))
	mock.ExpectExec(`UPDATE cart_items SET quantity = \$2 WHERE id = \$1`).
		WithArgs("item-1", 5).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	expectGetItem(mock, "user-1", "item-1", "p1", 5)

	it, err := repo.Add(context.Background(), "user-1", "p1", 2)
	require.NoError(t, err)
	assert.Equal(t, 5, it.Quantity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdd_CombinedQuantityExceedsStock(t *testing.T) {
	repo, mock := newTestRepository(t)

	expectStockCheck(mock, "p1", 4)
	mock.ExpectQuery(`SELECT id, quantity FROM cart_items WHERE user_id = \$1 AND product_id = \$2`).
		WithArgs("user-1", "p1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "quantity"}).AddRow("item-1", 3))

	_, err := repo.Add(context.Background(), "user-1", "p1", 2)
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdd_UnknownProduct(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectQuery(`SELECT stock FROM products WHERE id = \$1 AND is_active = TRUE`).
		WithArgs("nope").
		WillReturnRows(pgxmock.NewRows([]string{"stock"}))

	_, err := repo.Add(context.Background(), "user-1", "nope", 1)
	require.ErrorIs(t, err, ErrProductNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateQuantity_StockCheckUsesLiveStock(t *testing.T) {
	repo, mock := newTestRepository(t)

	// Snapshot reports 10 in stock, requesting 11 must fail.
	expectGetItem(mock, "user-1", "item-1", "p1", 2)

	_, err := repo.UpdateQuantity(context.Background(), "user-1", "item-1", 11)
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateQuantity_Success(t *testing.T) {
	repo, mock := newTestRepository(t)

	expectGetItem(mock, "user-1", "item-1", "p1", 2)
	mock.ExpectExec(`UPDATE cart_items SET quantity = \$3 WHERE id = \$1 AND user_id = \$2`).
		WithArgs("item-1", "user-1", 4).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	expectGetItem(mock, "user-1", "item-1", "p1", 4)

	it, err := repo.UpdateQuantity(context.Background(), "user-1", "item-1", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, it.Quantity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemove_NotOwnedIsNotFound(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectExec(`DELETE FROM cart_items WHERE id = \$1 AND user_id = \$2`).
		WithArgs("item-1", "user-2").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Remove(context.Background(), "user-2", "item-1")
	require.ErrorIs(t, err, ErrItemNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListByUser_Empty(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectQuery(`SELECT ci\.id, ci\.user_id`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows(itemColumns))

	items, err := repo.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NotNil(t, items)
	require.NoError(t, mock.ExpectationsWereMet())
}
