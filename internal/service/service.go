package service

import (
	"context"

	"evently/internal/clock"
	apperrors "evently/internal/errors"
	"evently/internal/ledger"
	"evently/internal/metrics"
	"evently/internal/models"
	"evently/internal/tickets"

	"github.com/google/uuid"
)

type TicketIssuer interface {
	Issue(ctx context.Context, req tickets.IssueRequest) (*tickets.Batch, error)
}

type TicketDeliverer interface {
	Deliver(ctx context.Context, req tickets.DeliveryRequest) error
}

type EventPublisher interface {
	Publish(subject string, data interface{}) error
}

type TokenVerifier interface {
	VerifyTicketToken(token string) (uuid.UUID, error)
}

type QREncoder interface {
	Encode(content string) ([]byte, error)
}

// Deps are the collaborators outside of storage.
type Deps struct {
	Issuer    TicketIssuer
	Deliverer TicketDeliverer
	Publisher EventPublisher
	Verifier  TokenVerifier
	QR        QREncoder
	Clock     clock.Clock
}

type Services struct {
	Bookings *BookingService
	Refunds  *RefundService
	Wallets  *WalletService
	Tickets  *TicketService
}

func NewServices(stores Stores, deps Deps) *Services {
	if deps.Clock == nil {
		deps.Clock = clock.NewSystem()
	}

	return &Services{
		Bookings: NewBookingService(stores, deps.Issuer, deps.Deliverer, deps.Publisher, deps.Clock),
		Refunds:  NewRefundService(stores, deps.Publisher, deps.Clock),
		Wallets:  NewWalletService(stores),
		Tickets:  NewTicketService(stores, deps.Verifier, deps.QR, deps.Publisher, deps.Clock),
	}
}

func internalError(err error) error {
	return apperrors.Wrap(apperrors.KindInternalServerError, apperrors.MsgInternal, err)
}

func outcome(err error) string {
	if err == nil {
		return metrics.OutcomeSuccess
	}
	return apperrors.KindOf(err).String()
}

// persistMovement writes the result of a non-zero ledger transfer.
func persistMovement(ctx context.Context, stores Stores, m *ledger.Movement, from, to *models.Wallet) error {
	if err := stores.Wallets.UpdateBalance(ctx, from); err != nil {
		return err
	}
	if err := stores.Wallets.UpdateBalance(ctx, to); err != nil {
		return err
	}
	if err := stores.Wallets.CreateTransactions(ctx, m.Debit, m.Credit); err != nil {
		return err
	}
	return stores.Payments.Create(ctx, &m.Payment)
}
