package service

import (
	"context"
	"time"

	"evently/internal/models"
	"evently/internal/repository"

	"github.com/google/uuid"
)

// Transactor runs fn inside one all-or-nothing transaction. Stores called with
// the ctx passed to fn participate in it.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type OrganizerStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.OrganizerProfile, error)
}

type EventStore interface {
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Event, error)
	UpdateCounters(ctx context.Context, event *models.Event) error
}

type TicketDetailStore interface {
	GetByIDsForUpdate(ctx context.Context, eventID uuid.UUID, ids []uuid.UUID) ([]models.TicketDetail, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.TicketDetail, error)
	UpdateCounters(ctx context.Context, detail *models.TicketDetail) error
}

type RefundRuleStore interface {
	ListDetails(ctx context.Context, ruleID uuid.UUID) ([]models.RefundRuleDetail, error)
}

type WalletStore interface {
	GetByUserIDsForUpdate(ctx context.Context, userIDs ...uuid.UUID) (map[uuid.UUID]*models.Wallet, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Wallet, error)
	UpdateBalance(ctx context.Context, wallet *models.Wallet) error
	CreateTransactions(ctx context.Context, txs ...models.WalletTransaction) error
	ListTransactions(ctx context.Context, walletID uuid.UUID, limit int) ([]models.WalletTransaction, error)
}

type PaymentStore interface {
	Create(ctx context.Context, p *models.PaymentTransaction) error
}

type BookingStore interface {
	Create(ctx context.Context, booking *models.Booking) error
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]models.Booking, error)
}

type TicketStore interface {
	CreateBatch(ctx context.Context, tickets []models.Ticket) error
	GetByIDForUpdate(ctx context.Context, id, userID uuid.UUID) (*models.Ticket, error)
	GetByTokenForUpdate(ctx context.Context, token string) (*models.Ticket, error)
	GetByToken(ctx context.Context, token string) (*models.Ticket, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.TicketStatus, now time.Time) error
}

// Stores is the persistence gateway used by the services.
type Stores struct {
	Tx            Transactor
	Users         UserStore
	Organizers    OrganizerStore
	Events        EventStore
	TicketDetails TicketDetailStore
	RefundRules   RefundRuleStore
	Wallets       WalletStore
	Payments      PaymentStore
	Bookings      BookingStore
	Tickets       TicketStore
}

func NewStores(repos *repository.Repositories) Stores {
	return Stores{
		Tx:            repos.DB,
		Users:         repos.Users,
		Organizers:    repos.Organizers,
		Events:        repos.Events,
		TicketDetails: repos.TicketDetails,
		RefundRules:   repos.RefundRules,
		Wallets:       repos.Wallets,
		Payments:      repos.Payments,
		Bookings:      repos.Bookings,
		Tickets:       repos.Tickets,
	}
}
