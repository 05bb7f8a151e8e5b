package repository

import (
	"context"
	"database/sql"
	"fmt"

	"evently/internal/database"
	"evently/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type TicketDetailRepository struct {
	db *database.DB
}

func NewTicketDetailRepository(db *database.DB) *TicketDetailRepository {
	return &TicketDetailRepository{db: db}
}

const ticketDetailColumns = `id, event_id, name, price, ticket_quantity, remaining_quantity, sold_quantity, refund_rule_id`

func scanTicketDetail(row interface{ Scan(...any) error }) (*models.TicketDetail, error) {
	detail := &models.TicketDetail{}
	err := row.Scan(
		&detail.ID,
		&detail.EventID,
		&detail.Name,
		&detail.Price,
		&detail.TicketQuantity,
		&detail.RemainingQuantity,
		&detail.SoldQuantity,
		&detail.RefundRuleID,
	)
	return detail, err
}

// GetByIDsForUpdate locks the given ticket types of one event in ascending id
// order. Ids that do not exist or belong to another event are omitted from the
// result; callers compare lengths to detect that.
func (r *TicketDetailRepository) GetByIDsForUpdate(ctx context.Context, eventID uuid.UUID, ids []uuid.UUID) ([]models.TicketDetail, error) {
	query := `
		SELECT ` + ticketDetailColumns + `
		FROM ticket_details
		WHERE event_id = $1 AND id = ANY($2::uuid[])
		ORDER BY id
		FOR UPDATE`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, eventID, pq.Array(uuidStrings(ids)))
	if err != nil {
		return nil, fmt.Errorf("failed to lock ticket details: %w", err)
	}
	defer rows.Close()

	details := make([]models.TicketDetail, 0, len(ids))
	for rows.Next() {
		detail, err := scanTicketDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket detail: %w", err)
		}
		details = append(details, *detail)
	}

	return details, rows.Err()
}

func (r *TicketDetailRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.TicketDetail, error) {
	query := `SELECT ` + ticketDetailColumns + ` FROM ticket_details WHERE id = $1 FOR UPDATE`

	detail, err := scanTicketDetail(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (r *TicketDetailRepository) UpdateCounters(ctx context.Context, detail *models.TicketDetail) error {
	query := `UPDATE ticket_details SET remaining_quantity = $1, sold_quantity = $2 WHERE id = $3`

	res, err := r.db.Executor(ctx).ExecContext(ctx, query, detail.RemainingQuantity, detail.SoldQuantity, detail.ID)
	if err != nil {
		return fmt.Errorf("failed to update ticket detail counters: %w", err)
	}
	return expectOneRow(res, "ticket_details", detail.ID)
}
