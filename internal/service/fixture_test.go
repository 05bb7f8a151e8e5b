package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"evently/internal/clock"
	apperrors "evently/internal/errors"
	"evently/internal/models"
	"evently/internal/tickets"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publishedEvent struct {
	subject string
	data    interface{}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *fakePublisher) Publish(subject string, data interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{subject: subject, data: data})
	return p.err
}

func (p *fakePublisher) subjects() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.subject
	}
	return out
}

type fakeDeliverer struct {
	mu       sync.Mutex
	requests []tickets.DeliveryRequest
	err      error
}

func (d *fakeDeliverer) Deliver(_ context.Context, req tickets.DeliveryRequest) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.requests = append(d.requests, req)
	return d.err
}

func (d *fakeDeliverer) calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.requests)
}

type failingIssuer struct{}

func (failingIssuer) Issue(context.Context, tickets.IssueRequest) (*tickets.Batch, error) {
	return nil, errors.New("token service unavailable")
}

type fixture struct {
	t   *testing.T
	db  *memDB
	now time.Time

	buyer         models.User
	organizerUser models.User
	organizer     models.OrganizerProfile
	event         models.Event
	vip           models.TicketDetail

	buyerWalletID     uuid.UUID
	organizerWalletID uuid.UUID

	signer    *tickets.TokenSigner
	publisher *fakePublisher
	deliverer *fakeDeliverer
	services  *Services
}

// newFixture seeds an approved paid event on sale with one ticket type
// (price 100, 10 seats), a buyer wallet of 1000 and an organizer wallet of 500.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	f := &fixture{t: t, db: newMemDB(), now: now}

	f.buyer = models.User{ID: uuid.New(), Email: "buyer@example.com", FullName: "Buyer", IsActive: true}
	f.organizerUser = models.User{ID: uuid.New(), Email: "org@example.com", FullName: "Organizer", IsActive: true}
	f.organizer = models.OrganizerProfile{ID: uuid.New(), UserID: f.organizerUser.ID, DisplayName: "Org"}
	f.event = models.Event{
		ID:               uuid.New(),
		OrganizerID:      f.organizer.ID,
		Title:            "Jazz Night",
		SaleStartTime:    now.Add(-24 * time.Hour),
		SaleEndTime:      now.Add(24 * time.Hour),
		StartTime:        now.Add(30 * 24 * time.Hour),
		EndTime:          now.Add(30*24*time.Hour + 3*time.Hour),
		RequireApproval:  models.ApprovalApproved,
		IsPublished:      true,
		TicketType:       models.EventTicketPaid,
		TotalTickets:     10,
		RemainingTickets: 10,
	}
	f.vip = models.TicketDetail{
		ID:                uuid.New(),
		EventID:           f.event.ID,
		Name:              "VIP",
		Price:             decimal.NewFromInt(100),
		TicketQuantity:    10,
		RemainingQuantity: 10,
	}

	f.db.users[f.buyer.ID] = f.buyer
	f.db.users[f.organizerUser.ID] = f.organizerUser
	f.db.organizers[f.organizer.ID] = f.organizer
	f.db.events[f.event.ID] = f.event
	f.db.details[f.vip.ID] = f.vip

	f.buyerWalletID = f.addWallet(f.buyer.ID, 1000)
	f.organizerWalletID = f.addWallet(f.organizerUser.ID, 500)

	issuer, signer, qr := tickets.NewIssuerFromConfig(tickets.Config{
		TokenSecret:   "test-secret",
		Issuer:        "evently",
		PublicBaseURL: "http://localhost:8080",
		QRSize:        64,
	})
	f.signer = signer
	f.publisher = &fakePublisher{}
	f.deliverer = &fakeDeliverer{}
	f.services = NewServices(f.db.stores(), Deps{
		Issuer:    issuer,
		Deliverer: f.deliverer,
		Publisher: f.publisher,
		Verifier:  signer,
		QR:        qr,
		Clock:     clock.NewFixed(now),
	})

	return f
}

func (f *fixture) addWallet(userID uuid.UUID, balance int64) uuid.UUID {
	w := models.Wallet{ID: uuid.New(), UserID: userID, Balance: decimal.NewFromInt(balance)}
	f.db.wallets[w.ID] = w
	return w.ID
}

func (f *fixture) removeWallet(id uuid.UUID) {
	delete(f.db.wallets, id)
}

// setRefundRule attaches a rule with the given tiers to the VIP ticket type.
func (f *fixture) setRefundRule(tiers ...models.RefundRuleDetail) {
	ruleID := uuid.New()
	for i := range tiers {
		tiers[i].ID = uuid.New()
		tiers[i].RefundRuleID = ruleID
		tiers[i].Position = i
	}
	f.db.rules[ruleID] = tiers

	d := f.db.details[f.vip.ID]
	d.RefundRuleID = &ruleID
	f.db.details[f.vip.ID] = d
}

func (f *fixture) setEvent(mutate func(e *models.Event)) {
	e := f.db.events[f.event.ID]
	mutate(&e)
	f.db.events[f.event.ID] = e
}

func (f *fixture) setVIP(mutate func(d *models.TicketDetail)) {
	d := f.db.details[f.vip.ID]
	mutate(&d)
	f.db.details[f.vip.ID] = d
}

func (f *fixture) withClock(now time.Time) {
	f.services.Refunds.clock = clock.NewFixed(now)
	f.services.Bookings.clock = clock.NewFixed(now)
	f.services.Tickets.clock = clock.NewFixed(now)
}

func (f *fixture) book(qty int) *models.CreateBookingResponse {
	f.t.Helper()
	resp, err := f.services.Bookings.CreateBooking(context.Background(), f.buyer.ID, &models.CreateBookingRequest{
		EventID: f.event.ID,
		Items:   []models.BookingItemRequest{{TicketTypeID: f.vip.ID, Quantity: qty}},
	})
	require.NoError(f.t, err)
	return resp
}

func (f *fixture) balance(walletID uuid.UUID) decimal.Decimal {
	return f.db.wallets[walletID].Balance
}

func (f *fixture) totalBalance() decimal.Decimal {
	sum := decimal.Zero
	for _, w := range f.db.wallets {
		sum = sum.Add(w.Balance)
	}
	return sum
}

func (f *fixture) assertInventoryConserved() {
	f.t.Helper()
	for _, d := range f.db.details {
		assert.Equal(f.t, d.TicketQuantity, d.RemainingQuantity+d.SoldQuantity, "ticket detail %s", d.Name)
	}
	for _, e := range f.db.events {
		assert.Equal(f.t, e.TotalTickets, e.RemainingTickets+e.SoldQuantity, "event %s", e.Title)
	}
}

func assertDomainError(t *testing.T, err error, kind apperrors.Kind, msg string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperrors.KindOf(err), "kind of %v", err)
	assert.Equal(t, msg, apperrors.MessageOf(err))
}

func decimalEqual(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}
