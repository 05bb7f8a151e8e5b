package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"evently/internal/logger"
	"evently/internal/metrics"
	"evently/internal/models"
	"evently/internal/notify"

	"github.com/google/uuid"
	"github.com/nats-io/stan.go"
)

const handleTimeout = 20 * time.Second

// errDrop marks messages that will never succeed; they are acked and logged.
var errDrop = errors.New("message dropped")

type UserReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type EventReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
}

type Mailer interface {
	Send(ctx context.Context, msg notify.Message) error
}

type Handlers struct {
	users  UserReader
	events EventReader
	mailer Mailer
}

func NewHandlers(users UserReader, events EventReader, mailer Mailer) *Handlers {
	return &Handlers{
		users:  users,
		events: events,
		mailer: mailer,
	}
}

func (h *Handlers) HandleBookingCompleted(m *stan.Msg) {
	process(m, models.EventBookingCompleted, h.bookingCompleted)
}

func (h *Handlers) HandleTicketRefunded(m *stan.Msg) {
	process(m, models.EventTicketRefunded, h.ticketRefunded)
}

func (h *Handlers) HandleTicketCheckedIn(m *stan.Msg) {
	process(m, models.EventTicketCheckedIn, h.ticketCheckedIn)
}

// process acks on success and on errDrop. Other failures are left unacked
// so the streaming server redelivers after AckWait.
func process(m *stan.Msg, subject string, fn func(ctx context.Context, data []byte) error) {
	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	log := logger.WithFields("subject", subject, "sequence", m.Sequence, "redelivered", m.Redelivered)

	err := fn(ctx, m.Data)
	switch {
	case err == nil:
	case errors.Is(err, errDrop):
		log.Error("Dropping message", "error", err)
	default:
		log.Error("Failed to process message, will be redelivered", "error", err)
		return
	}

	if err := m.Ack(); err != nil {
		log.Error("Failed to ack message", "error", err)
	}
}

func decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: invalid payload: %v", errDrop, err)
	}
	return nil
}

func (h *Handlers) bookingCompleted(ctx context.Context, data []byte) error {
	var event models.BookingCompletedEvent
	if err := decode(data, &event); err != nil {
		return err
	}

	logger.WithUserID(event.UserID).Info("Booking completed",
		"booking_id", event.BookingID,
		"event_id", event.EventID,
		"total_amount", event.TotalAmount.String(),
		"ticket_count", event.TicketCount,
	)
	metrics.TrackTicketsIssued(event.TicketCount)

	return nil
}

func (h *Handlers) ticketCheckedIn(ctx context.Context, data []byte) error {
	var event models.TicketCheckedInEvent
	if err := decode(data, &event); err != nil {
		return err
	}

	logger.WithFields("ticket_id", event.TicketID, "event_id", event.EventID).Info("Ticket checked in")
	return nil
}

// ticketRefunded mails the refund confirmation to the ticket holder.
func (h *Handlers) ticketRefunded(ctx context.Context, data []byte) error {
	var event models.TicketRefundedEvent
	if err := decode(data, &event); err != nil {
		return err
	}

	user, err := h.users.GetByID(ctx, event.UserID)
	if err != nil {
		return fmt.Errorf("failed to load user %s: %w", event.UserID, err)
	}
	if user == nil {
		return fmt.Errorf("%w: user %s not found", errDrop, event.UserID)
	}

	ev, err := h.events.GetByID(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("failed to load event %s: %w", event.EventID, err)
	}
	if ev == nil {
		return fmt.Errorf("%w: event %s not found", errDrop, event.EventID)
	}

	html, err := notify.RenderRefund(notify.RefundEmail{
		Name:       user.FullName,
		EventTitle: ev.Title,
		Amount:     event.RefundAmount.StringFixed(2),
		Percent:    event.RefundPercent,
		TicketID:   event.TicketID.String(),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errDrop, err)
	}

	if err := h.mailer.Send(ctx, notify.Message{
		To:      user.Email,
		Subject: "Refund for " + ev.Title,
		HTML:    html,
	}); err != nil {
		return fmt.Errorf("failed to send refund email: %w", err)
	}

	logger.WithUserID(user.ID).Info("Refund email sent", "ticket_id", event.TicketID)
	return nil
}
