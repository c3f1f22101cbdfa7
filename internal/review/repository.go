package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrAlreadyReviewed = errors.New("product already reviewed by this user")
	ErrProductNotFound = errors.New("product not found")
)

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repository interface {
	ListByProduct(ctx context.Context, productID string) ([]Review, error)
	// Create inserts the review and refreshes the product's rating and
	// review count in the same transaction.
	Create(ctx context.Context, userID string, in CreateInput) (*Review, error)
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) ListByProduct(ctx context.Context, productID string) ([]Review, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT r.id, r.user_id, r.product_id, r.rating, r.title, r.comment,
		       u.first_name, u.last_name, r.created_at
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.product_id = $1
		ORDER BY r.created_at DESC
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("select reviews: %w", err)
	}
	defer rows.Close()

	reviews := []Review{}
	for rows.Next() {
		var rv Review
		if err := rows.Scan(&rv.ID, &rv.UserID, &rv.ProductID, &rv.Rating, &rv.Title, &rv.Comment,
			&rv.FirstName, &rv.LastName, &rv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return reviews, nil
}

func (r *PostgresRepository) Create(ctx context.Context, userID string, in CreateInput) (*Review, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rv := &Review{
		ID:        uuid.NewString(),
		UserID:    userID,
		ProductID: in.ProductID,
		Rating:    in.Rating,
		Title:     in.Title,
		Comment:   in.Comment,
		CreatedAt: time.Now().UTC(),
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO reviews (id, user_id, product_id, rating, title, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, rv.ID, rv.UserID, rv.ProductID, rv.Rating, rv.Title, rv.Comment, rv.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return nil, ErrAlreadyReviewed
			case "23503":
				return nil, ErrProductNotFound
			}
		}
		return nil, fmt.Errorf("insert review: %w", err)
	}

	// Refresh the denormalized aggregates from the reviews table itself so
	// they cannot drift from the source of truth.
	_, err = tx.Exec(ctx, `
		UPDATE products p SET
			rating = agg.avg_rating,
			review_count = agg.cnt,
			updated_at = now()
		FROM (
			SELECT AVG(rating)::double precision AS avg_rating, COUNT(*) AS cnt
			FROM reviews WHERE product_id = $1
		) agg
		WHERE p.id = $1
	`, rv.ProductID)
	if err != nil {
		return nil, fmt.Errorf("update product rating: %w", err)
	}

	if err := tx.QueryRow(ctx,
		`SELECT first_name, last_name FROM users WHERE id = $1`, userID).
		Scan(&rv.FirstName, &rv.LastName); err != nil {
		return nil, fmt.Errorf("select reviewer: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return rv, nil
}
