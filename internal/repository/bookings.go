package repository

import (
	"context"
	"fmt"

	"evently/internal/database"
	"evently/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type BookingRepository struct {
	db *database.DB
}

func NewBookingRepository(db *database.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create inserts the booking header and all of its items.
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	exec := r.db.Executor(ctx)

	query := `
		INSERT INTO bookings (id, user_id, event_id, total_amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := exec.ExecContext(ctx, query,
		booking.ID,
		booking.UserID,
		booking.EventID,
		booking.TotalAmount,
		booking.Status,
		booking.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	itemQuery := `
		INSERT INTO booking_items (id, booking_id, ticket_detail_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5)`

	for _, item := range booking.Items {
		if _, err := exec.ExecContext(ctx, itemQuery,
			item.ID,
			booking.ID,
			item.TicketDetailID,
			item.Quantity,
			item.UnitPrice,
		); err != nil {
			return fmt.Errorf("failed to insert booking item: %w", err)
		}
	}

	return nil
}

// ListByUserID returns the user's bookings newest first, items included.
func (r *BookingRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]models.Booking, error) {
	query := `
		SELECT id, user_id, event_id, total_amount, status, created_at
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		var b models.Booking
		if err := rows.Scan(
			&b.ID,
			&b.UserID,
			&b.EventID,
			&b.TotalAmount,
			&b.Status,
			&b.CreatedAt,
		); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return bookings, nil
	}

	ids := make([]uuid.UUID, len(bookings))
	for i := range bookings {
		ids[i] = bookings[i].ID
	}

	items, err := r.getItems(ctx, ids...)
	if err != nil {
		return nil, err
	}
	for i := range bookings {
		bookings[i].Items = items[bookings[i].ID]
	}

	return bookings, nil
}

func (r *BookingRepository) getItems(ctx context.Context, bookingIDs ...uuid.UUID) (map[uuid.UUID][]models.BookingItem, error) {
	query := `
		SELECT id, booking_id, ticket_detail_id, quantity, unit_price
		FROM booking_items
		WHERE booking_id = ANY($1::uuid[])
		ORDER BY booking_id, id`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, pq.Array(uuidStrings(bookingIDs)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[uuid.UUID][]models.BookingItem, len(bookingIDs))
	for rows.Next() {
		var item models.BookingItem
		if err := rows.Scan(
			&item.ID,
			&item.BookingID,
			&item.TicketDetailID,
			&item.Quantity,
			&item.UnitPrice,
		); err != nil {
			return nil, err
		}
		items[item.BookingID] = append(items[item.BookingID], item)
	}

	return items, rows.Err()
}
