package repository

import (
	"github.com/google/uuid"

	"evently/internal/database"
)

type Repositories struct {
	DB            *database.DB
	Users         *UserRepository
	Organizers    *OrganizerRepository
	Events        *EventRepository
	TicketDetails *TicketDetailRepository
	RefundRules   *RefundRuleRepository
	Wallets       *WalletRepository
	Payments      *PaymentRepository
	Bookings      *BookingRepository
	Tickets       *TicketRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		DB:            db,
		Users:         NewUserRepository(db),
		Organizers:    NewOrganizerRepository(db),
		Events:        NewEventRepository(db),
		TicketDetails: NewTicketDetailRepository(db),
		RefundRules:   NewRefundRuleRepository(db),
		Wallets:       NewWalletRepository(db),
		Payments:      NewPaymentRepository(db),
		Bookings:      NewBookingRepository(db),
		Tickets:       NewTicketRepository(db),
	}
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
