package repair

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrNotFound = errors.New("repair ticket not found")

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Repository interface {
	Create(ctx context.Context, userID string, in CreateInput) (*Ticket, error)
	ListByUser(ctx context.Context, userID string) ([]Ticket, error)
	// GetByID scopes the lookup to the owner unless userID is "".
	GetByID(ctx context.Context, ticketID, userID string) (*Ticket, error)
	ListAll(ctx context.Context, f ListFilter) ([]Ticket, error)
	UpdateStatus(ctx context.Context, ticketID string, in StatusUpdateInput) (*Ticket, error)
}

type PostgresRepository struct {
	pool      DBPool
	genNumber func() string
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool, genNumber: NewTicketNumber}
}

const ticketColumns = `id, ticket_number, user_id, device_type, brand, model, issue,
	description, images, video_url, customer_notes, technician_notes,
	status, priority, estimated_cost, actual_cost, estimated_time, assigned_to,
	completed_at, created_at, updated_at`

func scanTicket(row pgx.Row) (*Ticket, error) {
	var t Ticket
	err := row.Scan(&t.ID, &t.TicketNumber, &t.UserID, &t.DeviceType, &t.Brand, &t.Model, &t.Issue,
		&t.Description, &t.Images, &t.VideoURL, &t.CustomerNotes, &t.TechnicianNotes,
		&t.Status, &t.Priority, &t.EstimatedCost, &t.ActualCost, &t.EstimatedTime, &t.AssignedTo,
		&t.CompletedAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan ticket: %w", err)
	}
	return &t, nil
}

func (r *PostgresRepository) Create(ctx context.Context, userID string, in CreateInput) (*Ticket, error) {
	now := time.Now().UTC()
	images := in.Images
	if images == nil {
		images = []string{}
	}
	t := &Ticket{
		ID:            uuid.NewString(),
		TicketNumber:  r.genNumber(),
		UserID:        userID,
		DeviceType:    in.DeviceType,
		Brand:         in.Brand,
		Model:         in.Model,
		Issue:         in.Issue,
		Description:   in.Description,
		Images:        images,
		VideoURL:      in.VideoURL,
		CustomerNotes: in.CustomerNotes,
		Status:        StatusSubmitted,
		Priority:      PriorityMedium,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO repair_tickets (id, ticket_number, user_id, device_type, brand, model, issue,
			description, images, video_url, customer_notes, status, priority, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, t.ID, t.TicketNumber, t.UserID, t.DeviceType, t.Brand, t.Model, t.Issue,
		t.Description, t.Images, t.VideoURL, t.CustomerNotes, t.Status, t.Priority, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert ticket: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]Ticket, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+ticketColumns+` FROM repair_tickets
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("select tickets: %w", err)
	}
	defer rows.Close()
	return collectTickets(rows)
}

func (r *PostgresRepository) GetByID(ctx context.Context, ticketID, userID string) (*Ticket, error) {
	if userID == "" {
		return scanTicket(r.pool.QueryRow(ctx,
			`SELECT `+ticketColumns+` FROM repair_tickets WHERE id = $1`, ticketID))
	}
	return scanTicket(r.pool.QueryRow(ctx,
		`SELECT `+ticketColumns+` FROM repair_tickets WHERE id = $1 AND user_id = $2`, ticketID, userID))
}

// ListAll is the admin/technician view: filterable, urgent work first.
func (r *PostgresRepository) ListAll(ctx context.Context, f ListFilter) ([]Ticket, error) {
	where := []string{"TRUE"}
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.Status != "" {
		where = append(where, "t.status = "+arg(f.Status))
	}
	if f.Priority != "" {
		where = append(where, "t.priority = "+arg(f.Priority))
	}
	if f.AssignedTo != "" {
		where = append(where, "t.assigned_to = "+arg(f.AssignedTo))
	}

	rows, err := r.pool.Query(ctx, `
		SELECT t.id, t.ticket_number, t.user_id, t.device_type, t.brand, t.model, t.issue,
		       t.description, t.images, t.video_url, t.customer_notes, t.technician_notes,
		       t.status, t.priority, t.estimated_cost, t.actual_cost, t.estimated_time, t.assigned_to,
		       t.completed_at, t.created_at, t.updated_at,
		       u.id, u.first_name, u.last_name, u.email, u.phone
		FROM repair_tickets t
		JOIN users u ON u.id = t.user_id
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY CASE t.priority
			WHEN 'URGENT' THEN 0 WHEN 'HIGH' THEN 1 WHEN 'MEDIUM' THEN 2 ELSE 3
		END, t.created_at DESC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("select tickets: %w", err)
	}
	defer rows.Close()

	tickets := []Ticket{}
	for rows.Next() {
		var t Ticket
		var c Customer
		if err := rows.Scan(&t.ID, &t.TicketNumber, &t.UserID, &t.DeviceType, &t.Brand, &t.Model, &t.Issue,
			&t.Description, &t.Images, &t.VideoURL, &t.CustomerNotes, &t.TechnicianNotes,
			&t.Status, &t.Priority, &t.EstimatedCost, &t.ActualCost, &t.EstimatedTime, &t.AssignedTo,
			&t.CompletedAt, &t.CreatedAt, &t.UpdatedAt,
			&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone); err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		t.Customer = &c
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return tickets, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, ticketID string, in StatusUpdateInput) (*Ticket, error) {
	set := []string{"status = $1", "updated_at = now()"}
	args := []any{in.Status}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if in.EstimatedCost != nil {
		set = append(set, "estimated_cost = "+arg(*in.EstimatedCost))
	}
	if in.ActualCost != nil {
		set = append(set, "actual_cost = "+arg(*in.ActualCost))
	}
	if in.EstimatedTime != nil {
		set = append(set, "estimated_time = "+arg(*in.EstimatedTime))
	}
	if in.TechnicianNotes != nil {
		set = append(set, "technician_notes = "+arg(*in.TechnicianNotes))
	}
	if in.Priority != nil {
		set = append(set, "priority = "+arg(*in.Priority))
	}
	if in.AssignedTo != nil {
		set = append(set, "assigned_to = "+arg(*in.AssignedTo))
	}
	if in.Status == StatusCompleted {
		set = append(set, "completed_at = now()")
	}

	idArg := arg(ticketID)
	tag, err := r.pool.Exec(ctx,
		`UPDATE repair_tickets SET `+strings.Join(set, ", ")+` WHERE id = `+idArg, args...)
	if err != nil {
		return nil, fmt.Errorf("update ticket: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, ticketID, "")
}

func collectTickets(rows pgx.Rows) ([]Ticket, error) {
	tickets := []Ticket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return tickets, nil
}
