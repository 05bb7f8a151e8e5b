package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NATS Event Types
const (
	EventBookingCompleted = "booking.completed"
	EventTicketRefunded   = "ticket.refunded"
	EventTicketCheckedIn  = "ticket.checked_in"
)

// BookingCompletedEvent is published after a booking transaction commits
type BookingCompletedEvent struct {
	BookingID   uuid.UUID       `json:"booking_id"`
	EventID     uuid.UUID       `json:"event_id"`
	UserID      uuid.UUID       `json:"user_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	TicketCount int             `json:"ticket_count"`
	Timestamp   time.Time       `json:"timestamp"`
}

// TicketRefundedEvent is published after a refund transaction commits
type TicketRefundedEvent struct {
	TicketID      uuid.UUID       `json:"ticket_id"`
	EventID       uuid.UUID       `json:"event_id"`
	UserID        uuid.UUID       `json:"user_id"`
	RefundPercent int             `json:"refund_percent"`
	RefundAmount  decimal.Decimal `json:"refund_amount"`
	Timestamp     time.Time       `json:"timestamp"`
}

// TicketCheckedInEvent is published when a ticket is used at the entrance
type TicketCheckedInEvent struct {
	TicketID  uuid.UUID `json:"ticket_id"`
	EventID   uuid.UUID `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
}
