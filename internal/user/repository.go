package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rashmithaRKL/mobile-nexus-backend/internal/auth"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetDetail(ctx context.Context, id string) (*Detail, error)
	List(ctx context.Context) ([]Summary, error)
	SetActive(ctx context.Context, id string, active bool) (*User, error)
	Resolve(ctx context.Context, userID string) (auth.Identity, error)
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const userColumns = `id, email, password_hash, first_name, last_name, phone,
	address, city, state, zip_code, country, role, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Phone,
		&u.Address, &u.City, &u.State, &u.ZipCode, &u.Country, &u.Role, &u.IsActive,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

func (r *PostgresRepository) Create(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name, phone, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Phone, u.Role, u.IsActive, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (r *PostgresRepository) List(ctx context.Context) ([]Summary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.email, u.first_name, u.last_name, u.phone, u.role, u.is_active, u.created_at,
		       (SELECT COUNT(*) FROM orders o WHERE o.user_id = u.id),
		       (SELECT COUNT(*) FROM repair_tickets t WHERE t.user_id = u.id)
		FROM users u
		ORDER BY u.created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	defer rows.Close()

	var users []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.Email, &s.FirstName, &s.LastName, &s.Phone, &s.Role,
			&s.IsActive, &s.CreatedAt, &s.OrderCount, &s.RepairCount); err != nil {
			return nil, fmt.Errorf("scan user summary: %w", err)
		}
		users = append(users, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return users, nil
}

func (r *PostgresRepository) GetDetail(ctx context.Context, id string) (*Detail, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d := &Detail{User: *u}

	orderRows, err := r.pool.Query(ctx, `
		SELECT id, order_number, status, total_amount, created_at
		FROM orders WHERE user_id = $1
		ORDER BY created_at DESC LIMIT 10
	`, id)
	if err != nil {
		return nil, fmt.Errorf("select recent orders: %w", err)
	}
	defer orderRows.Close()
	for orderRows.Next() {
		var o OrderSummary
		if err := orderRows.Scan(&o.ID, &o.OrderNumber, &o.Status, &o.TotalAmount, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order summary: %w", err)
		}
		d.Orders = append(d.Orders, o)
	}
	if err := orderRows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	ticketRows, err := r.pool.Query(ctx, `
		SELECT id, ticket_number, status, device_type, brand, model, created_at
		FROM repair_tickets WHERE user_id = $1
		ORDER BY created_at DESC LIMIT 10
	`, id)
	if err != nil {
		return nil, fmt.Errorf("select recent tickets: %w", err)
	}
	defer ticketRows.Close()
	for ticketRows.Next() {
		var t RepairSummary
		if err := ticketRows.Scan(&t.ID, &t.TicketNumber, &t.Status, &t.DeviceType, &t.Brand, &t.Model, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ticket summary: %w", err)
		}
		d.RepairTickets = append(d.RepairTickets, t)
	}
	if err := ticketRows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return d, nil
}

func (r *PostgresRepository) SetActive(ctx context.Context, id string, active bool) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users SET is_active = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns, id, active)
	return scanUser(row)
}

// Resolve implements auth.IdentityResolver so middleware can reject tokens of
// missing or deactivated users.
func (r *PostgresRepository) Resolve(ctx context.Context, userID string) (auth.Identity, error) {
	var id auth.Identity
	row := r.pool.QueryRow(ctx, `SELECT id, email, role, is_active FROM users WHERE id = $1`, userID)
	if err := row.Scan(&id.ID, &id.Email, &id.Role, &id.Active); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.Identity{}, ErrNotFound
		}
		return auth.Identity{}, fmt.Errorf("resolve identity: %w", err)
	}
	return id, nil
}
