// Package ledger holds the pure money and inventory mutations shared by the
// booking and refund flows. Nothing here touches storage: callers load rows
// under lock, apply a mutation, then persist the result in the same transaction.
package ledger

import (
	"errors"

	"evently/internal/models"
)

var (
	ErrInvalidQuantity       = errors.New("quantity must be positive")
	ErrInsufficientInventory = errors.New("insufficient inventory")
)

// Reserve moves qty seats of detail from remaining to sold, together with the
// parent event counters.
func Reserve(event *models.Event, detail *models.TicketDetail, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if qty > detail.RemainingQuantity || qty > event.RemainingTickets {
		return ErrInsufficientInventory
	}

	detail.RemainingQuantity -= qty
	detail.SoldQuantity += qty
	event.RemainingTickets -= qty
	event.SoldQuantity += qty
	return nil
}

// Release is the inverse of Reserve and never fails.
func Release(event *models.Event, detail *models.TicketDetail, qty int) {
	detail.RemainingQuantity += qty
	detail.SoldQuantity -= qty
	event.RemainingTickets += qty
	event.SoldQuantity -= qty
}
