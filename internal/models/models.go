package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookingItemRequest - one requested ticket type and quantity
type BookingItemRequest struct {
	TicketTypeID uuid.UUID `json:"ticket_type_id" binding:"required"`
	Quantity     int       `json:"quantity" binding:"required,gt=0"`
}

// CreateBookingRequest - модель для создания бронирования
type CreateBookingRequest struct {
	EventID uuid.UUID            `json:"event_id" binding:"required"`
	Items   []BookingItemRequest `json:"items" binding:"required,min=1,dive"`
}

// TicketResponse - issued ticket as returned to the buyer
type TicketResponse struct {
	ID             uuid.UUID       `json:"id"`
	TicketDetailID uuid.UUID       `json:"ticket_detail_id"`
	Status         TicketStatus    `json:"status"`
	Price          decimal.Decimal `json:"price"`
	QRCodeURL      string          `json:"qr_code_url"`
}

// CreateBookingResponse - модель ответа при создании бронирования
type CreateBookingResponse struct {
	BookingID   uuid.UUID        `json:"booking_id"`
	Status      BookingStatus    `json:"status"`
	TotalAmount decimal.Decimal  `json:"total_amount"`
	Tickets     []TicketResponse `json:"tickets"`
}

// ListBookingsResponseItem - элемент списка бронирований
type ListBookingsResponseItem struct {
	ID          uuid.UUID       `json:"id"`
	EventID     uuid.UUID       `json:"event_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      BookingStatus   `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

// RefundTicketResponse - outcome of a refund
type RefundTicketResponse struct {
	TicketID      uuid.UUID       `json:"ticket_id"`
	Status        TicketStatus    `json:"status"`
	RefundPercent int             `json:"refund_percent"`
	RefundAmount  decimal.Decimal `json:"refund_amount"`
}

// WalletResponse - wallet balance with latest ledger rows
type WalletResponse struct {
	WalletID     uuid.UUID           `json:"wallet_id"`
	Balance      decimal.Decimal     `json:"balance"`
	Transactions []WalletTransaction `json:"transactions"`
}

// CheckInRequest - ticket token scanned at the entrance
type CheckInRequest struct {
	Token string `json:"token" binding:"required"`
}

// CheckInResponse - ticket state after check-in
type CheckInResponse struct {
	TicketID uuid.UUID    `json:"ticket_id"`
	EventID  uuid.UUID    `json:"event_id"`
	Status   TicketStatus `json:"status"`
}

// ErrorResponse - body of every failed API call
type ErrorResponse struct {
	Error string `json:"error"`
}
