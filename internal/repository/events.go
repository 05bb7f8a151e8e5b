package repository

import (
	"context"
	"database/sql"
	"fmt"

	"evently/internal/database"
	"evently/internal/models"

	"github.com/google/uuid"
)

type EventRepository struct {
	db *database.DB
}

func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventSelect = `
		SELECT id, organizer_id, title, sale_start_time, sale_end_time, start_time, end_time,
		       require_approval, is_published, ticket_type, total_tickets, remaining_tickets,
		       sold_quantity, is_deleted, created_at, updated_at
		FROM events
		WHERE id = $1`

func (r *EventRepository) getOne(ctx context.Context, query string, id uuid.UUID) (*models.Event, error) {
	event := &models.Event{}
	err := r.db.Executor(ctx).QueryRowContext(ctx, query, id).Scan(
		&event.ID,
		&event.OrganizerID,
		&event.Title,
		&event.SaleStartTime,
		&event.SaleEndTime,
		&event.StartTime,
		&event.EndTime,
		&event.RequireApproval,
		&event.IsPublished,
		&event.TicketType,
		&event.TotalTickets,
		&event.RemainingTickets,
		&event.SoldQuantity,
		&event.IsDeleted,
		&event.CreatedAt,
		&event.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return event, err
}

// GetByID reads the event without locking it.
func (r *EventRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return r.getOne(ctx, eventSelect, id)
}

// GetByIDForUpdate loads the event and locks its row until the surrounding
// transaction ends.
func (r *EventRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return r.getOne(ctx, eventSelect+"\n\t\tFOR UPDATE", id)
}

// UpdateCounters persists the aggregate remaining/sold counters.
func (r *EventRepository) UpdateCounters(ctx context.Context, event *models.Event) error {
	query := `
		UPDATE events
		SET remaining_tickets = $1, sold_quantity = $2, updated_at = NOW()
		WHERE id = $3`

	res, err := r.db.Executor(ctx).ExecContext(ctx, query, event.RemainingTickets, event.SoldQuantity, event.ID)
	if err != nil {
		return fmt.Errorf("failed to update event counters: %w", err)
	}
	return expectOneRow(res, "events", event.ID)
}

func expectOneRow(res sql.Result, table string, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return fmt.Errorf("%s %s: expected 1 row affected, got %d", table, id, n)
	}
	return nil
}
