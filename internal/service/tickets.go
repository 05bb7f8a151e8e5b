package service

import (
	"context"

	"evently/internal/clock"
	apperrors "evently/internal/errors"
	"evently/internal/logger"
	"evently/internal/models"

	"github.com/google/uuid"
)

type TicketService struct {
	stores    Stores
	verifier  TokenVerifier
	qr        QREncoder
	publisher EventPublisher
	clock     clock.Clock
}

func NewTicketService(stores Stores, verifier TokenVerifier, qr QREncoder, publisher EventPublisher, clk clock.Clock) *TicketService {
	return &TicketService{
		stores:    stores,
		verifier:  verifier,
		qr:        qr,
		publisher: publisher,
		clock:     clk,
	}
}

// CheckIn marks a Valid ticket as Used. Only the organizer of the ticket's
// event may check it in.
func (s *TicketService) CheckIn(ctx context.Context, userID uuid.UUID, token string) (*models.CheckInResponse, error) {
	ticketID, err := s.verifier.VerifyTicketToken(token)
	if err != nil {
		return nil, apperrors.InvalidInput(apperrors.MsgInvalidTicketToken)
	}

	var ticket *models.Ticket
	err = s.stores.Tx.WithTx(ctx, func(ctx context.Context) error {
		t, err := s.stores.Tickets.GetByTokenForUpdate(ctx, token)
		if err != nil {
			return internalError(err)
		}
		if t == nil {
			return apperrors.NotFound(apperrors.MsgTicketNotFound)
		}
		if t.ID != ticketID {
			return apperrors.InvalidInput(apperrors.MsgInvalidTicketToken)
		}

		event, err := s.stores.Events.GetByIDForUpdate(ctx, t.EventID)
		if err != nil {
			return internalError(err)
		}
		if event == nil {
			return apperrors.NotFound(apperrors.MsgTicketNotFound)
		}
		organizer, err := s.stores.Organizers.GetByID(ctx, event.OrganizerID)
		if err != nil {
			return internalError(err)
		}
		if organizer == nil || organizer.UserID != userID {
			return apperrors.ErrForbidden
		}

		if t.Status != models.TicketValid {
			return apperrors.InvalidInput(apperrors.MsgTicketNotCheckable)
		}

		now := s.clock.Now()
		if err := s.stores.Tickets.UpdateStatus(ctx, t.ID, models.TicketUsed, now); err != nil {
			return internalError(err)
		}
		t.Status = models.TicketUsed
		t.UpdatedAt = now
		ticket = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		evt := models.TicketCheckedInEvent{
			TicketID:  ticket.ID,
			EventID:   ticket.EventID,
			Timestamp: ticket.UpdatedAt,
		}
		if err := s.publisher.Publish(models.EventTicketCheckedIn, evt); err != nil {
			logger.WithContext(ctx).Error("Failed to publish ticket checked-in event",
				"error", err,
				"ticket_id", ticket.ID)
		}
	}

	return &models.CheckInResponse{
		TicketID: ticket.ID,
		EventID:  ticket.EventID,
		Status:   ticket.Status,
	}, nil
}

// QRCode renders the PNG for a ticket token that was issued by this service.
func (s *TicketService) QRCode(ctx context.Context, token string) ([]byte, error) {
	ticketID, err := s.verifier.VerifyTicketToken(token)
	if err != nil {
		return nil, apperrors.InvalidInput(apperrors.MsgInvalidTicketToken)
	}

	ticket, err := s.stores.Tickets.GetByToken(ctx, token)
	if err != nil {
		return nil, internalError(err)
	}
	if ticket == nil || ticket.ID != ticketID {
		return nil, apperrors.NotFound(apperrors.MsgTicketNotFound)
	}

	png, err := s.qr.Encode(token)
	if err != nil {
		return nil, internalError(err)
	}
	return png, nil
}
