package tickets

import (
	"context"
	"fmt"

	"evently/internal/models"
	"evently/internal/notify"

	"github.com/google/uuid"
)

type Mailer interface {
	Send(ctx context.Context, msg notify.Message) error
}

// Delivery is the post-booking dispatch of a batch: one email with a PDF
// attachment holding every ticket.
type Delivery struct {
	mailer Mailer
}

func NewDelivery(mailer Mailer) *Delivery {
	return &Delivery{mailer: mailer}
}

type DeliveryRequest struct {
	User      *models.User
	Event     *models.Event
	Booking   *models.Booking
	Batch     *Batch
	TypeNames map[uuid.UUID]string
}

func (d *Delivery) Deliver(ctx context.Context, req DeliveryRequest) error {
	pdf, err := RenderPDF(Document{
		EventTitle: req.Event.Title,
		StartTime:  req.Event.StartTime,
		HolderName: req.User.FullName,
		BookingID:  req.Booking.ID,
		Tickets:    req.Batch.Tickets,
		TypeNames:  req.TypeNames,
		QRImages:   req.Batch.QRImages,
	})
	if err != nil {
		return err
	}

	html, err := notify.RenderTickets(notify.TicketsEmail{
		Name:        req.User.FullName,
		EventTitle:  req.Event.Title,
		StartTime:   req.Event.StartTime,
		TicketCount: len(req.Batch.Tickets),
		Total:       req.Booking.TotalAmount.StringFixed(2),
		BookingID:   req.Booking.ID.String(),
	})
	if err != nil {
		return fmt.Errorf("failed to render tickets email: %w", err)
	}

	return d.mailer.Send(ctx, notify.Message{
		To:      req.User.Email,
		Subject: fmt.Sprintf("Your tickets for %s", req.Event.Title),
		HTML:    html,
		Attachments: []notify.Attachment{
			{Filename: fmt.Sprintf("tickets-%s.pdf", req.Booking.ID), Data: pdf},
		},
	})
}
