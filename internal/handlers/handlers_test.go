package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "evently/internal/errors"
	"evently/internal/middleware"
	"evently/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBookings struct{ mock.Mock }

func (m *mockBookings) CreateBooking(ctx context.Context, userID uuid.UUID, req *models.CreateBookingRequest) (*models.CreateBookingResponse, error) {
	args := m.Called(ctx, userID, req)
	resp, _ := args.Get(0).(*models.CreateBookingResponse)
	return resp, args.Error(1)
}

func (m *mockBookings) ListBookings(ctx context.Context, userID uuid.UUID) ([]models.ListBookingsResponseItem, error) {
	args := m.Called(ctx, userID)
	resp, _ := args.Get(0).([]models.ListBookingsResponseItem)
	return resp, args.Error(1)
}

type mockRefunds struct{ mock.Mock }

func (m *mockRefunds) RefundTicket(ctx context.Context, userID uuid.UUID, ticketID string) (*models.RefundTicketResponse, error) {
	args := m.Called(ctx, userID, ticketID)
	resp, _ := args.Get(0).(*models.RefundTicketResponse)
	return resp, args.Error(1)
}

type mockWallets struct{ mock.Mock }

func (m *mockWallets) GetWallet(ctx context.Context, userID uuid.UUID) (*models.WalletResponse, error) {
	args := m.Called(ctx, userID)
	resp, _ := args.Get(0).(*models.WalletResponse)
	return resp, args.Error(1)
}

type mockTickets struct{ mock.Mock }

func (m *mockTickets) CheckIn(ctx context.Context, userID uuid.UUID, token string) (*models.CheckInResponse, error) {
	args := m.Called(ctx, userID, token)
	resp, _ := args.Get(0).(*models.CheckInResponse)
	return resp, args.Error(1)
}

func (m *mockTickets) QRCode(ctx context.Context, token string) ([]byte, error) {
	args := m.Called(ctx, token)
	png, _ := args.Get(0).([]byte)
	return png, args.Error(1)
}

type testAPI struct {
	router   *gin.Engine
	userID   uuid.UUID
	bookings *mockBookings
	refunds  *mockRefunds
	wallets  *mockWallets
	tickets  *mockTickets
}

func setupRouter() *testAPI {
	gin.SetMode(gin.TestMode)

	a := &testAPI{
		router:   gin.New(),
		userID:   uuid.New(),
		bookings: &mockBookings{},
		refunds:  &mockRefunds{},
		wallets:  &mockWallets{},
		tickets:  &mockTickets{},
	}
	h := NewHandlers(a.bookings, a.refunds, a.wallets, a.tickets)

	authenticated := func(c *gin.Context) {
		middleware.SetUserID(c, a.userID)
		c.Next()
	}

	a.router.GET("/api/tickets/qr/:token", h.TicketQRCode)
	api := a.router.Group("/api", authenticated)
	{
		api.POST("/bookings", h.CreateBooking)
		api.GET("/bookings", h.ListBookings)
		api.POST("/tickets/:id/refund", h.RefundTicket)
		api.POST("/tickets/check-in", h.CheckIn)
		api.GET("/wallet", h.GetWallet)
	}
	// no auth middleware on this one
	a.router.GET("/anon/wallet", h.GetWallet)

	return a
}

func (a *testAPI) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func TestCreateBooking(t *testing.T) {
	a := setupRouter()
	reqBody := models.CreateBookingRequest{
		EventID: uuid.New(),
		Items:   []models.BookingItemRequest{{TicketTypeID: uuid.New(), Quantity: 2}},
	}
	expected := &models.CreateBookingResponse{
		BookingID:   uuid.New(),
		Status:      models.BookingCompleted,
		TotalAmount: decimal.NewFromInt(200),
	}
	a.bookings.On("CreateBooking", mock.Anything, a.userID, &reqBody).Return(expected, nil)

	w := a.do(http.MethodPost, "/api/bookings", reqBody)

	assert.Equal(t, http.StatusCreated, w.Code)
	var response models.CreateBookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, expected.BookingID, response.BookingID)
	assert.True(t, response.TotalAmount.Equal(decimal.NewFromInt(200)))
	a.bookings.AssertExpectations(t)
}

func TestCreateBooking_InvalidBody(t *testing.T) {
	a := setupRouter()

	w := a.do(http.MethodPost, "/api/bookings", map[string]any{"event_id": uuid.New(), "items": []any{}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid booking request", errorBody(t, w))
	a.bookings.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateBooking_ErrorKinds(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"invalid input", apperrors.InvalidInput(apperrors.MsgNotEnoughMoney), http.StatusBadRequest, "Not enough money in wallet"},
		{"not found", apperrors.NotFound(apperrors.MsgEventNotFound), http.StatusNotFound, "Event not found"},
		{"internal hides cause", errors.New("pq: connection reset"), http.StatusInternalServerError, "Internal server error"},
		{"unauthorized", apperrors.ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := setupRouter()
			a.bookings.On("CreateBooking", mock.Anything, a.userID, mock.Anything).Return(nil, tc.err)

			w := a.do(http.MethodPost, "/api/bookings", models.CreateBookingRequest{
				EventID: uuid.New(),
				Items:   []models.BookingItemRequest{{TicketTypeID: uuid.New(), Quantity: 1}},
			})

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.msg, errorBody(t, w))
		})
	}
}

func TestListBookings(t *testing.T) {
	a := setupRouter()
	items := []models.ListBookingsResponseItem{{ID: uuid.New(), Status: models.BookingCompleted}}
	a.bookings.On("ListBookings", mock.Anything, a.userID).Return(items, nil)

	w := a.do(http.MethodGet, "/api/bookings", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var response []models.ListBookingsResponseItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response, 1)
	assert.Equal(t, items[0].ID, response[0].ID)
}

func TestRefundTicket(t *testing.T) {
	a := setupRouter()
	ticketID := uuid.New()
	a.refunds.On("RefundTicket", mock.Anything, a.userID, ticketID.String()).Return(&models.RefundTicketResponse{
		TicketID:      ticketID,
		Status:        models.TicketRefunded,
		RefundPercent: 80,
		RefundAmount:  decimal.NewFromInt(240),
	}, nil)

	w := a.do(http.MethodPost, "/api/tickets/"+ticketID.String()+"/refund", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var response models.RefundTicketResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 80, response.RefundPercent)
	assert.Equal(t, models.TicketRefunded, response.Status)
}

func TestRefundTicket_AlreadyRefunded(t *testing.T) {
	a := setupRouter()
	a.refunds.On("RefundTicket", mock.Anything, a.userID, "abc").
		Return(nil, apperrors.InvalidInput(apperrors.MsgTicketAlreadyRefunded))

	w := a.do(http.MethodPost, "/api/tickets/abc/refund", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Ticket has already been refunded", errorBody(t, w))
}

func TestGetWallet(t *testing.T) {
	a := setupRouter()
	walletID := uuid.New()
	a.wallets.On("GetWallet", mock.Anything, a.userID).Return(&models.WalletResponse{
		WalletID: walletID,
		Balance:  decimal.NewFromInt(800),
	}, nil)

	w := a.do(http.MethodGet, "/api/wallet", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var response models.WalletResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, walletID, response.WalletID)
}

func TestGetWallet_Unauthenticated(t *testing.T) {
	a := setupRouter()

	w := a.do(http.MethodGet, "/anon/wallet", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthorized", errorBody(t, w))
	a.wallets.AssertNotCalled(t, "GetWallet", mock.Anything, mock.Anything)
}

func TestCheckIn(t *testing.T) {
	a := setupRouter()
	ticketID := uuid.New()
	a.tickets.On("CheckIn", mock.Anything, a.userID, "tok").Return(&models.CheckInResponse{
		TicketID: ticketID,
		Status:   models.TicketUsed,
	}, nil)

	w := a.do(http.MethodPost, "/api/tickets/check-in", models.CheckInRequest{Token: "tok"})

	assert.Equal(t, http.StatusOK, w.Code)
	var response models.CheckInResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, ticketID, response.TicketID)
}

func TestCheckIn_Forbidden(t *testing.T) {
	a := setupRouter()
	a.tickets.On("CheckIn", mock.Anything, a.userID, "tok").Return(nil, apperrors.ErrForbidden)

	w := a.do(http.MethodPost, "/api/tickets/check-in", models.CheckInRequest{Token: "tok"})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Forbidden", errorBody(t, w))
}

func TestCheckIn_MissingToken(t *testing.T) {
	a := setupRouter()

	w := a.do(http.MethodPost, "/api/tickets/check-in", map[string]string{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid ticket token", errorBody(t, w))
}

func TestTicketQRCode(t *testing.T) {
	a := setupRouter()
	png := []byte{0x89, 'P', 'N', 'G'}
	a.tickets.On("QRCode", mock.Anything, "tok").Return(png, nil)
	a.tickets.On("QRCode", mock.Anything, "bad").Return(nil, apperrors.InvalidInput(apperrors.MsgInvalidTicketToken))

	w := a.do(http.MethodGet, "/api/tickets/qr/tok", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, png, w.Body.Bytes())

	w = a.do(http.MethodGet, "/api/tickets/qr/bad", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
