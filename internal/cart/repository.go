package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrItemNotFound      = errors.New("cart item not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]Item, error)
	Add(ctx context.Context, userID, productID string, quantity int) (*Item, error)
	UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) (*Item, error)
	Remove(ctx context.Context, userID, itemID string) error
	Clear(ctx context.Context, userID string) error
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const itemSelect = `
	SELECT ci.id, ci.user_id, ci.product_id, ci.quantity, ci.created_at,
	       p.name, p.slug, p.price, p.stock, p.images, c.name, b.name
	FROM cart_items ci
	JOIN products p ON p.id = ci.product_id
	JOIN categories c ON c.id = p.category_id
	JOIN brands b ON b.id = p.brand_id`

func scanItem(row pgx.Row) (*Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.UserID, &it.ProductID, &it.Quantity, &it.CreatedAt,
		&it.Product.Name, &it.Product.Slug, &it.Product.Price, &it.Product.Stock,
		&it.Product.Images, &it.Product.CategoryName, &it.Product.BrandName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("scan cart item: %w", err)
	}
	it.Product.ID = it.ProductID
	return &it, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]Item, error) {
	rows, err := r.pool.Query(ctx, itemSelect+`
		WHERE ci.user_id = $1
		ORDER BY ci.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("select cart items: %w", err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return items, nil
}

// Add inserts a new line or bumps the quantity of an existing one. The
// combined quantity is validated against the product's live stock.
func (r *PostgresRepository) Add(ctx context.Context, userID, productID string, quantity int) (*Item, error) {
	var stock int
	err := r.pool.QueryRow(ctx,
		`SELECT stock FROM products WHERE id = $1 AND is_active = TRUE`, productID).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("select product stock: %w", err)
	}
	if stock < quantity {
		return nil, ErrInsufficientStock
	}

	var existingID string
	var existingQty int
	err = r.pool.QueryRow(ctx,
		`SELECT id, quantity FROM cart_items WHERE user_id = $1 AND product_id = $2`,
		userID, productID).Scan(&existingID, &existingQty)
	switch {
	case err == nil:
		newQty := existingQty + quantity
		if stock < newQty {
			return nil, ErrInsufficientStock
		}
		if _, err := r.pool.Exec(ctx,
			`UPDATE cart_items SET quantity = $2 WHERE id = $1`, existingID, newQty); err != nil {
			return nil, fmt.Errorf("update cart item: %w", err)
		}
		return r.getItem(ctx, userID, existingID)
	case errors.Is(err, pgx.ErrNoRows):
		id := uuid.NewString()
		if _, err := r.pool.Exec(ctx,
			`INSERT INTO cart_items (id, user_id, product_id, quantity) VALUES ($1, $2, $3, $4)`,
			id, userID, productID, quantity); err != nil {
			return nil, fmt.Errorf("insert cart item: %w", err)
		}
		return r.getItem(ctx, userID, id)
	default:
		return nil, fmt.Errorf("select cart item: %w", err)
	}
}

func (r *PostgresRepository) UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) (*Item, error) {
	it, err := r.getItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	if it.Product.Stock < quantity {
		return nil, ErrInsufficientStock
	}
	if _, err := r.pool.Exec(ctx,
		`UPDATE cart_items SET quantity = $3 WHERE id = $1 AND user_id = $2`,
		itemID, userID, quantity); err != nil {
		return nil, fmt.Errorf("update cart item: %w", err)
	}
	return r.getItem(ctx, userID, itemID)
}

func (r *PostgresRepository) Remove(ctx context.Context, userID, itemID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM cart_items WHERE id = $1 AND user_id = $2`, itemID, userID)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *PostgresRepository) Clear(ctx context.Context, userID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (r *PostgresRepository) getItem(ctx context.Context, userID, itemID string) (*Item, error) {
	row := r.pool.QueryRow(ctx, itemSelect+`
		WHERE ci.id = $1 AND ci.user_id = $2`, itemID, userID)
	return scanItem(row)
}
