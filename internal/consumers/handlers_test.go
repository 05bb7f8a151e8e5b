package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"evently/internal/models"
	"evently/internal/notify"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUsers struct{ mock.Mock }

func (m *mockUsers) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

type mockEvents struct{ mock.Mock }

func (m *mockEvents) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	args := m.Called(ctx, id)
	event, _ := args.Get(0).(*models.Event)
	return event, args.Error(1)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) Send(ctx context.Context, msg notify.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func refundPayload(t *testing.T, userID, eventID uuid.UUID) []byte {
	t.Helper()
	data, err := json.Marshal(models.TicketRefundedEvent{
		TicketID:      uuid.New(),
		EventID:       eventID,
		UserID:        userID,
		RefundPercent: 80,
		RefundAmount:  decimal.NewFromInt(240),
		Timestamp:     time.Now(),
	})
	require.NoError(t, err)
	return data
}

func TestTicketRefunded_SendsEmail(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "buyer@example.com", FullName: "Ann Buyer"}
	event := &models.Event{ID: uuid.New(), Title: "Spring Concert"}

	users := &mockUsers{}
	users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	events := &mockEvents{}
	events.On("GetByID", mock.Anything, event.ID).Return(event, nil)
	mailer := &mockMailer{}
	mailer.On("Send", mock.Anything, mock.MatchedBy(func(msg notify.Message) bool {
		return msg.To == user.Email && msg.Subject == "Refund for Spring Concert"
	})).Return(nil)

	h := NewHandlers(users, events, mailer)
	err := h.ticketRefunded(context.Background(), refundPayload(t, user.ID, event.ID))

	require.NoError(t, err)
	mailer.AssertExpectations(t)
	sent := mailer.Calls[0].Arguments.Get(1).(notify.Message)
	assert.Contains(t, sent.HTML, "240.00")
	assert.Contains(t, sent.HTML, "80%")
}

func TestTicketRefunded_MissingUserIsDropped(t *testing.T) {
	users := &mockUsers{}
	users.On("GetByID", mock.Anything, mock.Anything).Return(nil, nil)
	mailer := &mockMailer{}

	h := NewHandlers(users, &mockEvents{}, mailer)
	err := h.ticketRefunded(context.Background(), refundPayload(t, uuid.New(), uuid.New()))

	assert.ErrorIs(t, err, errDrop)
	mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestTicketRefunded_MailFailureIsRetried(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "buyer@example.com"}
	event := &models.Event{ID: uuid.New(), Title: "Spring Concert"}
	users := &mockUsers{}
	users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	events := &mockEvents{}
	events.On("GetByID", mock.Anything, event.ID).Return(event, nil)
	mailer := &mockMailer{}
	mailer.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	h := NewHandlers(users, events, mailer)
	err := h.ticketRefunded(context.Background(), refundPayload(t, user.ID, event.ID))

	require.Error(t, err)
	assert.NotErrorIs(t, err, errDrop)
}

func TestTicketRefunded_LookupFailureIsRetried(t *testing.T) {
	users := &mockUsers{}
	users.On("GetByID", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	h := NewHandlers(users, &mockEvents{}, &mockMailer{})
	err := h.ticketRefunded(context.Background(), refundPayload(t, uuid.New(), uuid.New()))

	require.Error(t, err)
	assert.NotErrorIs(t, err, errDrop)
}

func TestInvalidPayloadIsDropped(t *testing.T) {
	h := NewHandlers(&mockUsers{}, &mockEvents{}, &mockMailer{})

	assert.ErrorIs(t, h.bookingCompleted(context.Background(), []byte("{")), errDrop)
	assert.ErrorIs(t, h.ticketRefunded(context.Background(), []byte("nope")), errDrop)
	assert.ErrorIs(t, h.ticketCheckedIn(context.Background(), []byte("")), errDrop)
}

func TestBookingCompleted(t *testing.T) {
	h := NewHandlers(&mockUsers{}, &mockEvents{}, &mockMailer{})
	data, err := json.Marshal(models.BookingCompletedEvent{
		BookingID:   uuid.New(),
		EventID:     uuid.New(),
		UserID:      uuid.New(),
		TotalAmount: decimal.NewFromInt(200),
		TicketCount: 2,
	})
	require.NoError(t, err)

	assert.NoError(t, h.bookingCompleted(context.Background(), data))
}
