package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrNotFound          = errors.New("order not found")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrNumberConflict    = errors.New("could not allocate a unique order number")
)

// maxNumberAttempts bounds the regenerate-and-retry loop for order numbers.
const maxNumberAttempts = 3

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Repository interface {
	// Place runs the whole checkout transaction for userID's current cart.
	Place(ctx context.Context, userID string, in PlaceInput) (*Order, error)
	// GetByID loads one order with its lines. A non-empty userID scopes the
	// lookup to that owner; admins pass "".
	GetByID(ctx context.Context, orderID, userID string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	// UpdateStatus moves an order through the status vocabulary, stamping
	// shipped/delivered timestamps as required.
	UpdateStatus(ctx context.Context, orderID string, target Status, trackingNumber *string) (*Order, error)
}

type PostgresRepository struct {
	pool    DBPool
	pricing PricingConfig

	// allowAnyTransition restores the legacy unrestricted status machine.
	allowAnyTransition bool

	// Injection points for tests.
	genNumber func() string
	now       func() time.Time
}

func NewPostgresRepository(pool DBPool, pricing PricingConfig, allowAnyTransition bool) *PostgresRepository {
	return &PostgresRepository{
		pool:               pool,
		pricing:            pricing,
		allowAnyTransition: allowAnyTransition,
		genNumber:          NewNumber,
		now:                time.Now,
	}
}

// cartLine is one locked cart row with its live product snapshot.
type cartLine struct {
	productID string
	quantity  int
	name      string
	price     decimal.Decimal
	stock     int
	images    []string
	brandName string
}

func (r *PostgresRepository) Place(ctx context.Context, userID string, in PlaceInput) (*Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Lock the product rows while reading the cart so the stock check and the
	// decrement below are a single atomic unit. Two concurrent placements
	// against the same product serialize here.
	rows, err := tx.Query(ctx, `
		SELECT ci.product_id, ci.quantity, p.name, p.price, p.stock, p.images, b.name
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		JOIN brands b ON b.id = p.brand_id
		WHERE ci.user_id = $1
		ORDER BY ci.created_at
		FOR UPDATE OF p
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("select cart: %w", err)
	}

	var lines []cartLine
	for rows.Next() {
		var l cartLine
		if err := rows.Scan(&l.productID, &l.quantity, &l.name, &l.price, &l.stock, &l.images, &l.brandName); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	subtotal := decimal.Zero
	for _, l := range lines {
		if l.stock < l.quantity {
			return nil, &InsufficientStockError{
				ProductID:   l.productID,
				ProductName: l.name,
				Requested:   l.quantity,
				Available:   l.stock,
			}
		}
		subtotal = subtotal.Add(LineTotal(l.price, l.quantity))
	}

	totals := ComputeTotals(subtotal, r.pricing)

	billing := in.ShippingAddress
	if in.BillingAddress != nil {
		billing = *in.BillingAddress
	}

	number, err := r.pickNumber(ctx, tx)
	if err != nil {
		return nil, err
	}

	now := r.now().UTC()
	o := &Order{
		ID:              uuid.NewString(),
		OrderNumber:     number,
		UserID:          userID,
		Status:          StatusPending,
		PaymentStatus:   "PENDING",
		Subtotal:        totals.Subtotal,
		Tax:             totals.Tax,
		Shipping:        totals.Shipping,
		TotalAmount:     totals.Total,
		ShippingAddress: in.ShippingAddress,
		BillingAddress:  billing,
		PaymentMethod:   in.PaymentMethod,
		Notes:           in.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, order_number, user_id, status, payment_status,
			subtotal, tax, shipping, total_amount,
			shipping_address, billing_address, payment_method, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, o.ID, o.OrderNumber, o.UserID, o.Status, o.PaymentStatus,
		o.Subtotal, o.Tax, o.Shipping, o.TotalAmount,
		o.ShippingAddress, o.BillingAddress, o.PaymentMethod, o.Notes, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			// Lost the race to another placement with the same number.
			return nil, ErrNumberConflict
		}
		return nil, fmt.Errorf("insert order: %w", err)
	}

	for _, l := range lines {
		line := Line{
			ID:            uuid.NewString(),
			OrderID:       o.ID,
			ProductID:     l.productID,
			Quantity:      l.quantity,
			Price:         l.price,
			Total:         LineTotal(l.price, l.quantity),
			ProductName:   l.name,
			ProductImages: l.images,
			BrandName:     l.brandName,
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity, price, total)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, line.ID, line.OrderID, line.ProductID, line.Quantity, line.Price, line.Total); err != nil {
			return nil, fmt.Errorf("insert order item: %w", err)
		}

		if _, err := tx.Exec(ctx, `
			UPDATE products SET stock = stock - $2, updated_at = now() WHERE id = $1
		`, l.productID, l.quantity); err != nil {
			return nil, fmt.Errorf("decrement stock: %w", err)
		}

		o.Lines = append(o.Lines, line)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return o, nil
}

// pickNumber generates order numbers until one is unused, bounded by
// maxNumberAttempts. The unique constraint remains the final arbiter.
func (r *PostgresRepository) pickNumber(ctx context.Context, tx pgx.Tx) (string, error) {
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		candidate := r.genNumber()
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM orders WHERE order_number = $1)`, candidate).Scan(&exists); err != nil {
			return "", fmt.Errorf("check order number: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", ErrNumberConflict
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

const orderColumns = `id, order_number, user_id, status, payment_status,
	subtotal, tax, shipping, total_amount,
	shipping_address, billing_address, payment_method, notes,
	tracking_number, shipped_at, delivered_at, created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.Status, &o.PaymentStatus,
		&o.Subtotal, &o.Tax, &o.Shipping, &o.TotalAmount,
		&o.ShippingAddress, &o.BillingAddress, &o.PaymentMethod, &o.Notes,
		&o.TrackingNumber, &o.ShippedAt, &o.DeliveredAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}
	return &o, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, orderID, userID string) (*Order, error) {
	var row pgx.Row
	if userID == "" {
		row = r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID)
	} else {
		row = r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 AND user_id = $2`, orderID, userID)
	}
	o, err := scanOrder(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	orders := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	for i := range orders {
		if err := r.loadLines(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *PostgresRepository) loadLines(ctx context.Context, o *Order) error {
	rows, err := r.pool.Query(ctx, `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price, oi.total,
		       p.name, p.images, b.name
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		JOIN brands b ON b.id = p.brand_id
		WHERE oi.order_id = $1
	`, o.ID)
	if err != nil {
		return fmt.Errorf("select order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Quantity, &l.Price, &l.Total,
			&l.ProductName, &l.ProductImages, &l.BrandName); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		o.Lines = append(o.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, orderID string, target Status, trackingNumber *string) (*Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current Status
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, orderID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select order status: %w", err)
	}

	if !r.allowAnyTransition && !CanTransition(current, target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, target)
	}

	switch target {
	case StatusShipped:
		_, err = tx.Exec(ctx, `
			UPDATE orders SET status = $2, tracking_number = COALESCE($3, tracking_number),
				shipped_at = now(), updated_at = now()
			WHERE id = $1
		`, orderID, target, trackingNumber)
	case StatusDelivered:
		_, err = tx.Exec(ctx, `
			UPDATE orders SET status = $2, delivered_at = now(), updated_at = now()
			WHERE id = $1
		`, orderID, target)
	default:
		_, err = tx.Exec(ctx, `
			UPDATE orders SET status = $2, updated_at = now()
			WHERE id = $1
		`, orderID, target)
	}
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return r.GetByID(ctx, orderID, "")
}
