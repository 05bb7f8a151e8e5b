package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"evently/internal/database"
	"evently/internal/models"

	"github.com/google/uuid"
)

type TicketRepository struct {
	db *database.DB
}

func NewTicketRepository(db *database.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

func (r *TicketRepository) CreateBatch(ctx context.Context, tickets []models.Ticket) error {
	query := `
		INSERT INTO tickets (id, user_id, ticket_detail_id, booking_item_id, status, price, token, qr_code_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	exec := r.db.Executor(ctx)
	for _, t := range tickets {
		if _, err := exec.ExecContext(ctx, query,
			t.ID,
			t.UserID,
			t.TicketDetailID,
			t.BookingItemID,
			t.Status,
			t.Price,
			t.Token,
			t.QRCodeURL,
			t.CreatedAt,
			t.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert ticket: %w", err)
		}
	}
	return nil
}

// The event id is joined through ticket_details; only the ticket row is locked.
const ticketSelect = `
		SELECT t.id, t.user_id, t.ticket_detail_id, t.booking_item_id, td.event_id,
		       t.status, t.price, t.token, t.qr_code_url, t.created_at, t.updated_at
		FROM tickets t
		JOIN ticket_details td ON td.id = t.ticket_detail_id`

func scanTicket(row interface{ Scan(...any) error }) (*models.Ticket, error) {
	t := &models.Ticket{}
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.TicketDetailID,
		&t.BookingItemID,
		&t.EventID,
		&t.Status,
		&t.Price,
		&t.Token,
		&t.QRCodeURL,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// GetByIDForUpdate locks a ticket owned by userID. A ticket of another user
// is reported as missing.
func (r *TicketRepository) GetByIDForUpdate(ctx context.Context, id, userID uuid.UUID) (*models.Ticket, error) {
	query := ticketSelect + `
		WHERE t.id = $1 AND t.user_id = $2
		FOR UPDATE OF t`
	return scanTicket(r.db.Executor(ctx).QueryRowContext(ctx, query, id, userID))
}

func (r *TicketRepository) GetByTokenForUpdate(ctx context.Context, token string) (*models.Ticket, error) {
	query := ticketSelect + `
		WHERE t.token = $1
		FOR UPDATE OF t`
	return scanTicket(r.db.Executor(ctx).QueryRowContext(ctx, query, token))
}

func (r *TicketRepository) GetByToken(ctx context.Context, token string) (*models.Ticket, error) {
	query := ticketSelect + `
		WHERE t.token = $1`
	return scanTicket(r.db.Executor(ctx).QueryRowContext(ctx, query, token))
}

func (r *TicketRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.TicketStatus, now time.Time) error {
	query := `UPDATE tickets SET status = $1, updated_at = $2 WHERE id = $3`

	res, err := r.db.Executor(ctx).ExecContext(ctx, query, status, now, id)
	if err != nil {
		return fmt.Errorf("failed to update ticket status: %w", err)
	}
	return expectOneRow(res, "tickets", id)
}
