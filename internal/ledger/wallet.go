package ledger

import (
	"errors"
	"fmt"
	"time"

	"evently/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount     = errors.New("amount must not be negative")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// TransferKind selects the ledger row types written for a movement.
type TransferKind int

const (
	// TransferBooking moves money from buyer to organizer.
	TransferBooking TransferKind = iota
	// TransferRefund moves money from organizer back to buyer.
	TransferRefund
)

// Reference ties a movement to the booking or ticket that caused it.
type Reference struct {
	UserID    uuid.UUID // buyer, owner of the payment record
	BookingID *uuid.UUID
	TicketID  *uuid.UUID
}

func (r Reference) id() uuid.UUID {
	switch {
	case r.TicketID != nil:
		return *r.TicketID
	case r.BookingID != nil:
		return *r.BookingID
	default:
		return uuid.Nil
	}
}

// Movement is what a non-zero transfer produces for the caller to persist.
type Movement struct {
	Debit   models.WalletTransaction
	Credit  models.WalletTransaction
	Payment models.PaymentTransaction
}

// Transfer debits from and credits to by amount. A zero amount is a no-op and
// returns a nil Movement.
func Transfer(from, to *models.Wallet, amount decimal.Decimal, kind TransferKind, ref Reference, now time.Time) (*Movement, error) {
	if amount.IsNegative() {
		return nil, ErrInvalidAmount
	}
	if amount.IsZero() {
		return nil, nil
	}
	if from.Balance.LessThan(amount) {
		return nil, fmt.Errorf("%w: wallet %s has %s, needs %s", ErrInsufficientFunds, from.ID, from.Balance, amount)
	}

	from.Balance = from.Balance.Sub(amount)
	from.UpdatedAt = now
	debitAfter := from.Balance
	to.Balance = to.Balance.Add(amount)
	to.UpdatedAt = now

	debitType, creditType := models.WalletTxPurchase, models.WalletTxSale
	direction := models.PaymentDirectionPayment
	description := "Ticket purchase"
	if kind == TransferRefund {
		debitType, creditType = models.WalletTxRefundDeduction, models.WalletTxRefund
		direction = models.PaymentDirectionRefund
		description = "Ticket refund"
	}

	refID := ref.id()
	return &Movement{
		Debit: models.WalletTransaction{
			ID:           uuid.New(),
			WalletID:     from.ID,
			Amount:       amount.Neg(),
			BalanceAfter: debitAfter,
			Type:         debitType,
			ReferenceID:  refID,
			Description:  description,
			CreatedAt:    now,
		},
		Credit: models.WalletTransaction{
			ID:           uuid.New(),
			WalletID:     to.ID,
			Amount:       amount,
			BalanceAfter: to.Balance,
			Type:         creditType,
			ReferenceID:  refID,
			Description:  description,
			CreatedAt:    now,
		},
		Payment: models.PaymentTransaction{
			ID:        uuid.New(),
			UserID:    ref.UserID,
			BookingID: ref.BookingID,
			TicketID:  ref.TicketID,
			Amount:    amount,
			Direction: direction,
			Status:    models.PaymentStatusSucceeded,
			CreatedAt: now,
		},
	}, nil
}
