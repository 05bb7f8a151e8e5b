package service

import (
	"bytes"
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"evently/internal/models"

	"github.com/google/uuid"
)

// memDB is a transactional in-memory store. Transactions are serialized by a
// single mutex, which gives the same isolation as row locks on every row the
// flows touch. A failed transaction restores the snapshot taken at begin.
type memDB struct {
	mu sync.Mutex

	users      map[uuid.UUID]models.User
	organizers map[uuid.UUID]models.OrganizerProfile
	events     map[uuid.UUID]models.Event
	details    map[uuid.UUID]models.TicketDetail
	rules      map[uuid.UUID][]models.RefundRuleDetail
	wallets    map[uuid.UUID]models.Wallet // by wallet id
	walletTxs  []models.WalletTransaction
	payments   []models.PaymentTransaction
	bookings   []models.Booking
	tickets    map[uuid.UUID]models.Ticket

	commits int
}

func newMemDB() *memDB {
	return &memDB{
		users:      map[uuid.UUID]models.User{},
		organizers: map[uuid.UUID]models.OrganizerProfile{},
		events:     map[uuid.UUID]models.Event{},
		details:    map[uuid.UUID]models.TicketDetail{},
		rules:      map[uuid.UUID][]models.RefundRuleDetail{},
		wallets:    map[uuid.UUID]models.Wallet{},
		tickets:    map[uuid.UUID]models.Ticket{},
	}
}

type memState struct {
	users      map[uuid.UUID]models.User
	organizers map[uuid.UUID]models.OrganizerProfile
	events     map[uuid.UUID]models.Event
	details    map[uuid.UUID]models.TicketDetail
	rules      map[uuid.UUID][]models.RefundRuleDetail
	wallets    map[uuid.UUID]models.Wallet
	walletTxs  []models.WalletTransaction
	payments   []models.PaymentTransaction
	bookings   []models.Booking
	tickets    map[uuid.UUID]models.Ticket
}

func (db *memDB) snapshot() memState {
	return memState{
		users:      maps.Clone(db.users),
		organizers: maps.Clone(db.organizers),
		events:     maps.Clone(db.events),
		details:    maps.Clone(db.details),
		rules:      maps.Clone(db.rules),
		wallets:    maps.Clone(db.wallets),
		walletTxs:  slices.Clone(db.walletTxs),
		payments:   slices.Clone(db.payments),
		bookings:   slices.Clone(db.bookings),
		tickets:    maps.Clone(db.tickets),
	}
}

func (db *memDB) restore(s memState) {
	db.users = s.users
	db.organizers = s.organizers
	db.events = s.events
	db.details = s.details
	db.rules = s.rules
	db.wallets = s.wallets
	db.walletTxs = s.walletTxs
	db.payments = s.payments
	db.bookings = s.bookings
	db.tickets = s.tickets
}

type memTxKey struct{}

func inMemTx(ctx context.Context) bool {
	return ctx.Value(memTxKey{}) != nil
}

func (db *memDB) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if inMemTx(ctx) {
		return fn(ctx)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	before := db.snapshot()
	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		db.restore(before)
		return err
	}
	db.commits++
	return nil
}

// guard locks the store for a single statement issued outside a transaction.
func (db *memDB) guard(ctx context.Context) func() {
	if inMemTx(ctx) {
		return func() {}
	}
	db.mu.Lock()
	return db.mu.Unlock
}

func (db *memDB) stores() Stores {
	return Stores{
		Tx:            db,
		Users:         memUsers{db},
		Organizers:    memOrganizers{db},
		Events:        memEvents{db},
		TicketDetails: memDetails{db},
		RefundRules:   memRules{db},
		Wallets:       memWallets{db},
		Payments:      memPayments{db},
		Bookings:      memBookings{db},
		Tickets:       memTickets{db},
	}
}

type memUsers struct{ db *memDB }

func (s memUsers) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	defer s.db.guard(ctx)()
	u, ok := s.db.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

type memOrganizers struct{ db *memDB }

func (s memOrganizers) GetByID(ctx context.Context, id uuid.UUID) (*models.OrganizerProfile, error) {
	defer s.db.guard(ctx)()
	o, ok := s.db.organizers[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

type memEvents struct{ db *memDB }

func (s memEvents) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	defer s.db.guard(ctx)()
	e, ok := s.db.events[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (s memEvents) UpdateCounters(ctx context.Context, event *models.Event) error {
	defer s.db.guard(ctx)()
	e := s.db.events[event.ID]
	e.RemainingTickets = event.RemainingTickets
	e.SoldQuantity = event.SoldQuantity
	s.db.events[event.ID] = e
	return nil
}

type memDetails struct{ db *memDB }

func (s memDetails) GetByIDsForUpdate(ctx context.Context, eventID uuid.UUID, ids []uuid.UUID) ([]models.TicketDetail, error) {
	defer s.db.guard(ctx)()
	var out []models.TicketDetail
	for _, id := range ids {
		if d, ok := s.db.details[id]; ok && d.EventID == eventID {
			out = append(out, d)
		}
	}
	slices.SortFunc(out, func(a, b models.TicketDetail) int {
		return bytes.Compare(a.ID[:], b.ID[:])
	})
	return out, nil
}

func (s memDetails) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.TicketDetail, error) {
	defer s.db.guard(ctx)()
	d, ok := s.db.details[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (s memDetails) UpdateCounters(ctx context.Context, detail *models.TicketDetail) error {
	defer s.db.guard(ctx)()
	d := s.db.details[detail.ID]
	d.RemainingQuantity = detail.RemainingQuantity
	d.SoldQuantity = detail.SoldQuantity
	s.db.details[detail.ID] = d
	return nil
}

type memRules struct{ db *memDB }

func (s memRules) ListDetails(ctx context.Context, ruleID uuid.UUID) ([]models.RefundRuleDetail, error) {
	defer s.db.guard(ctx)()
	return slices.Clone(s.db.rules[ruleID]), nil
}

type memWallets struct{ db *memDB }

func (s memWallets) GetByUserIDsForUpdate(ctx context.Context, userIDs ...uuid.UUID) (map[uuid.UUID]*models.Wallet, error) {
	defer s.db.guard(ctx)()
	out := map[uuid.UUID]*models.Wallet{}
	for _, w := range s.db.wallets {
		if slices.Contains(userIDs, w.UserID) {
			w := w
			out[w.UserID] = &w
		}
	}
	return out, nil
}

func (s memWallets) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	defer s.db.guard(ctx)()
	for _, w := range s.db.wallets {
		if w.UserID == userID {
			return &w, nil
		}
	}
	return nil, nil
}

func (s memWallets) UpdateBalance(ctx context.Context, wallet *models.Wallet) error {
	defer s.db.guard(ctx)()
	s.db.wallets[wallet.ID] = *wallet
	return nil
}

func (s memWallets) CreateTransactions(ctx context.Context, txs ...models.WalletTransaction) error {
	defer s.db.guard(ctx)()
	s.db.walletTxs = append(s.db.walletTxs, txs...)
	return nil
}

func (s memWallets) ListTransactions(ctx context.Context, walletID uuid.UUID, limit int) ([]models.WalletTransaction, error) {
	defer s.db.guard(ctx)()
	var out []models.WalletTransaction
	for i := len(s.db.walletTxs) - 1; i >= 0 && len(out) < limit; i-- {
		if s.db.walletTxs[i].WalletID == walletID {
			out = append(out, s.db.walletTxs[i])
		}
	}
	return out, nil
}

type memPayments struct{ db *memDB }

func (s memPayments) Create(ctx context.Context, p *models.PaymentTransaction) error {
	defer s.db.guard(ctx)()
	s.db.payments = append(s.db.payments, *p)
	return nil
}

type memBookings struct{ db *memDB }

func (s memBookings) Create(ctx context.Context, booking *models.Booking) error {
	defer s.db.guard(ctx)()
	b := *booking
	b.Items = slices.Clone(booking.Items)
	s.db.bookings = append(s.db.bookings, b)
	return nil
}

func (s memBookings) ListByUserID(ctx context.Context, userID uuid.UUID) ([]models.Booking, error) {
	defer s.db.guard(ctx)()
	var out []models.Booking
	for i := len(s.db.bookings) - 1; i >= 0; i-- {
		if s.db.bookings[i].UserID == userID {
			out = append(out, s.db.bookings[i])
		}
	}
	return out, nil
}

type memTickets struct{ db *memDB }

func (s memTickets) withEvent(t models.Ticket) *models.Ticket {
	t.EventID = s.db.details[t.TicketDetailID].EventID
	return &t
}

func (s memTickets) CreateBatch(ctx context.Context, tickets []models.Ticket) error {
	defer s.db.guard(ctx)()
	for _, t := range tickets {
		s.db.tickets[t.ID] = t
	}
	return nil
}

func (s memTickets) GetByIDForUpdate(ctx context.Context, id, userID uuid.UUID) (*models.Ticket, error) {
	defer s.db.guard(ctx)()
	t, ok := s.db.tickets[id]
	if !ok || t.UserID != userID {
		return nil, nil
	}
	return s.withEvent(t), nil
}

func (s memTickets) GetByTokenForUpdate(ctx context.Context, token string) (*models.Ticket, error) {
	return s.GetByToken(ctx, token)
}

func (s memTickets) GetByToken(ctx context.Context, token string) (*models.Ticket, error) {
	defer s.db.guard(ctx)()
	for _, t := range s.db.tickets {
		if t.Token == token {
			return s.withEvent(t), nil
		}
	}
	return nil, nil
}

func (s memTickets) UpdateStatus(ctx context.Context, id uuid.UUID, status models.TicketStatus, now time.Time) error {
	defer s.db.guard(ctx)()
	t := s.db.tickets[id]
	t.Status = status
	t.UpdatedAt = now
	s.db.tickets[id] = t
	return nil
}
