package service

import (
	"context"
	"errors"
	"time"

	"evently/internal/clock"
	apperrors "evently/internal/errors"
	"evently/internal/ledger"
	"evently/internal/logger"
	"evently/internal/metrics"
	"evently/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RefundService struct {
	stores    Stores
	publisher EventPublisher
	clock     clock.Clock
}

func NewRefundService(stores Stores, publisher EventPublisher, clk clock.Clock) *RefundService {
	return &RefundService{
		stores:    stores,
		publisher: publisher,
		clock:     clk,
	}
}

type refundResult struct {
	ticket  *models.Ticket
	percent int
	amount  decimal.Decimal
}

// RefundTicket returns a ticket of userID to inventory and pays back the share
// of its price given by the refund rule tier matching the days left before
// the event.
func (s *RefundService) RefundTicket(ctx context.Context, userID uuid.UUID, ticketID string) (resp *models.RefundTicketResponse, err error) {
	started := time.Now()
	defer func() { metrics.TrackRefund(outcome(err), time.Since(started)) }()

	id, err := uuid.Parse(ticketID)
	if err != nil {
		return nil, apperrors.InvalidInput(apperrors.MsgInvalidTicketID)
	}

	var result *refundResult
	err = s.stores.Tx.WithTx(ctx, func(ctx context.Context) error {
		var txErr error
		result, txErr = s.refund(ctx, userID, id)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, result)

	return &models.RefundTicketResponse{
		TicketID:      result.ticket.ID,
		Status:        result.ticket.Status,
		RefundPercent: result.percent,
		RefundAmount:  result.amount,
	}, nil
}

func (s *RefundService) refund(ctx context.Context, userID, ticketID uuid.UUID) (*refundResult, error) {
	ticket, err := s.stores.Tickets.GetByIDForUpdate(ctx, ticketID, userID)
	if err != nil {
		return nil, internalError(err)
	}
	if ticket == nil {
		return nil, apperrors.NotFound(apperrors.MsgTicketNotFound)
	}
	if ticket.Status == models.TicketRefunded {
		return nil, apperrors.InvalidInput(apperrors.MsgTicketAlreadyRefunded)
	}

	event, err := s.stores.Events.GetByIDForUpdate(ctx, ticket.EventID)
	if err != nil {
		return nil, internalError(err)
	}
	detail, err := s.stores.TicketDetails.GetByIDForUpdate(ctx, ticket.TicketDetailID)
	if err != nil {
		return nil, internalError(err)
	}
	if event == nil || detail == nil {
		return nil, apperrors.NotFound(apperrors.MsgTicketNotFound)
	}

	now := s.clock.Now()
	if !event.StartTime.After(now) {
		return nil, apperrors.Internal(apperrors.MsgRefundAfterEventStart)
	}

	var tiers []models.RefundRuleDetail
	if !event.IsFree() && detail.RefundRuleID != nil {
		tiers, err = s.stores.RefundRules.ListDetails(ctx, *detail.RefundRuleID)
		if err != nil {
			return nil, internalError(err)
		}
	}

	result := &refundResult{ticket: ticket, amount: decimal.Zero}

	// Free events and rules without tiers cancel the ticket without touching wallets.
	if len(tiers) > 0 {
		percent, ok := ledger.EvaluateRefund(tiers, ledger.DaysBeforeEvent(event.StartTime, now))
		if !ok {
			return nil, apperrors.InvalidInput(apperrors.MsgRefundRuleNotApplicable)
		}
		result.percent = percent
		result.amount = ledger.RefundAmount(ticket.Price, percent)

		if err := s.payBack(ctx, ticket, event, result.amount, now); err != nil {
			return nil, err
		}
	}

	ledger.Release(event, detail, 1)
	if err := s.stores.TicketDetails.UpdateCounters(ctx, detail); err != nil {
		return nil, internalError(err)
	}
	if err := s.stores.Events.UpdateCounters(ctx, event); err != nil {
		return nil, internalError(err)
	}

	if err := s.stores.Tickets.UpdateStatus(ctx, ticket.ID, models.TicketRefunded, now); err != nil {
		return nil, internalError(err)
	}
	ticket.Status = models.TicketRefunded
	ticket.UpdatedAt = now

	return result, nil
}

// payBack moves amount from the organizer's wallet to the ticket owner's.
func (s *RefundService) payBack(ctx context.Context, ticket *models.Ticket, event *models.Event, amount decimal.Decimal, now time.Time) error {
	organizer, err := s.stores.Organizers.GetByID(ctx, event.OrganizerID)
	if err != nil {
		return internalError(err)
	}
	if organizer == nil {
		return apperrors.NotFound(apperrors.MsgWalletNotFound)
	}

	wallets, err := s.stores.Wallets.GetByUserIDsForUpdate(ctx, ticket.UserID, organizer.UserID)
	if err != nil {
		return internalError(err)
	}
	buyerWallet, ok := wallets[ticket.UserID]
	if !ok {
		return apperrors.NotFound(apperrors.MsgWalletNotFound)
	}
	organizerWallet, ok := wallets[organizer.UserID]
	if !ok {
		return apperrors.NotFound(apperrors.MsgWalletNotFound)
	}

	movement, err := ledger.Transfer(organizerWallet, buyerWallet, amount, ledger.TransferRefund, ledger.Reference{
		UserID:   ticket.UserID,
		TicketID: &ticket.ID,
	}, now)
	if err != nil {
		if errors.Is(err, ledger.ErrInsufficientFunds) {
			return apperrors.Wrap(apperrors.KindInvalidInput, apperrors.MsgOrganizerCannotRefund, err)
		}
		return internalError(err)
	}
	if movement == nil {
		return nil
	}

	if err := persistMovement(ctx, s.stores, movement, organizerWallet, buyerWallet); err != nil {
		return internalError(err)
	}
	return nil
}

func (s *RefundService) afterCommit(ctx context.Context, r *refundResult) {
	metrics.TrackWalletAmount(metrics.DirectionRefund, r.amount)

	if s.publisher == nil {
		return
	}

	evt := models.TicketRefundedEvent{
		TicketID:      r.ticket.ID,
		EventID:       r.ticket.EventID,
		UserID:        r.ticket.UserID,
		RefundPercent: r.percent,
		RefundAmount:  r.amount,
		Timestamp:     s.clock.Now(),
	}
	if err := s.publisher.Publish(models.EventTicketRefunded, evt); err != nil {
		logger.WithContext(ctx).Error("Failed to publish ticket refunded event",
			"error", err,
			"ticket_id", r.ticket.ID)
	}
}
