package handlers

import (
	"context"
	"errors"
	"net/http"

	apperrors "evently/internal/errors"
	"evently/internal/logger"
	"evently/internal/middleware"
	"evently/internal/models"
	"evently/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, userID uuid.UUID, req *models.CreateBookingRequest) (*models.CreateBookingResponse, error)
	ListBookings(ctx context.Context, userID uuid.UUID) ([]models.ListBookingsResponseItem, error)
}

type RefundUseCase interface {
	RefundTicket(ctx context.Context, userID uuid.UUID, ticketID string) (*models.RefundTicketResponse, error)
}

type WalletUseCase interface {
	GetWallet(ctx context.Context, userID uuid.UUID) (*models.WalletResponse, error)
}

type TicketUseCase interface {
	CheckIn(ctx context.Context, userID uuid.UUID, token string) (*models.CheckInResponse, error)
	QRCode(ctx context.Context, token string) ([]byte, error)
}

type Handlers struct {
	bookings BookingUseCase
	refunds  RefundUseCase
	wallets  WalletUseCase
	tickets  TicketUseCase
}

func NewHandlers(bookings BookingUseCase, refunds RefundUseCase, wallets WalletUseCase, tickets TicketUseCase) *Handlers {
	return &Handlers{
		bookings: bookings,
		refunds:  refunds,
		wallets:  wallets,
		tickets:  tickets,
	}
}

func NewHandlersFromServices(s *service.Services) *Handlers {
	return NewHandlers(s.Bookings, s.Refunds, s.Wallets, s.Tickets)
}

func statusFor(err error) int {
	if errors.Is(err, apperrors.ErrForbidden) {
		return http.StatusForbidden
	}
	switch apperrors.KindOf(err) {
	case apperrors.KindInvalidInput:
		return http.StatusBadRequest
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": message} with the status of the error kind.
// Internal causes are logged, never returned.
func respondError(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)
	status := statusFor(err)

	log := logger.WithContext(c.Request.Context())
	if status >= http.StatusInternalServerError {
		log.Error("Request failed", "error", err, "path", c.FullPath())
	} else {
		log.Info("Request rejected", "kind", kind.String(), "error", err)
	}

	message := apperrors.MessageOf(err)
	switch status {
	case http.StatusForbidden:
		message = "Forbidden"
	case http.StatusUnauthorized:
		if message == apperrors.MsgInternal {
			message = apperrors.MsgUnauthorized
		}
	}

	_ = c.Error(err)
	c.JSON(status, models.ErrorResponse{Error: message})
}

// currentUser returns the id set by the auth middleware.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.UserIDFromGin(c)
	if !ok {
		respondError(c, apperrors.Unauthorized(apperrors.MsgUnauthorized))
		return uuid.Nil, false
	}
	return userID, true
}
