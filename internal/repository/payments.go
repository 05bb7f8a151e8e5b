package repository

import (
	"context"
	"fmt"

	"evently/internal/database"
	"evently/internal/models"
)

type PaymentRepository struct {
	db *database.DB
}

func NewPaymentRepository(db *database.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *models.PaymentTransaction) error {
	query := `
		INSERT INTO payment_transactions (id, user_id, booking_id, ticket_id, amount, direction, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Executor(ctx).ExecContext(ctx, query,
		p.ID,
		p.UserID,
		p.BookingID,
		p.TicketID,
		p.Amount,
		p.Direction,
		p.Status,
		p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment transaction: %w", err)
	}
	return nil
}
