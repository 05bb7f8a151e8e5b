package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "Pending"
	ApprovalApproved ApprovalStatus = "Approved"
	ApprovalRejected ApprovalStatus = "Rejected"
)

type EventTicketType string

const (
	EventTicketFree EventTicketType = "Free"
	EventTicketPaid EventTicketType = "Paid"
)

type TicketStatus string

const (
	TicketValid     TicketStatus = "Valid"
	TicketRefunded  TicketStatus = "Refunded"
	TicketUsed      TicketStatus = "Used"
	TicketCancelled TicketStatus = "Cancelled"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "Pending"
	BookingCompleted BookingStatus = "Completed"
	BookingCancelled BookingStatus = "Cancelled"
)

type WalletTransactionType string

const (
	WalletTxPurchase        WalletTransactionType = "Purchase"
	WalletTxSale            WalletTransactionType = "Sale"
	WalletTxRefund          WalletTransactionType = "Refund"
	WalletTxRefundDeduction WalletTransactionType = "RefundDeduction"
)

type PaymentDirection string

const (
	PaymentDirectionPayment PaymentDirection = "Payment"
	PaymentDirectionRefund  PaymentDirection = "Refund"
)

const PaymentStatusSucceeded = "Succeeded"

// User represents a user in the system
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FullName     string    `json:"full_name" db:"full_name"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	IsDeleted    bool      `json:"-" db:"is_deleted"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// CanBook reports whether the account may place bookings.
func (u *User) CanBook() bool {
	return u != nil && u.IsActive && !u.IsDeleted
}

// OrganizerProfile is the selling side of an event; money goes to its user's wallet.
type OrganizerProfile struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	DisplayName string    `json:"display_name" db:"display_name"`
}

// Event represents an event in the system
type Event struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	OrganizerID      uuid.UUID       `json:"organizer_id" db:"organizer_id"`
	Title            string          `json:"title" db:"title"`
	SaleStartTime    time.Time       `json:"sale_start_time" db:"sale_start_time"`
	SaleEndTime      time.Time       `json:"sale_end_time" db:"sale_end_time"`
	StartTime        time.Time       `json:"start_time" db:"start_time"`
	EndTime          time.Time       `json:"end_time" db:"end_time"`
	RequireApproval  ApprovalStatus  `json:"require_approval" db:"require_approval"`
	IsPublished      bool            `json:"is_published" db:"is_published"`
	TicketType       EventTicketType `json:"ticket_type" db:"ticket_type"`
	TotalTickets     int             `json:"total_tickets" db:"total_tickets"`
	RemainingTickets int             `json:"remaining_tickets" db:"remaining_tickets"`
	SoldQuantity     int             `json:"sold_quantity" db:"sold_quantity"`
	IsDeleted        bool            `json:"-" db:"is_deleted"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// IsBookable reports whether the event exists for buyers at all.
func (e *Event) IsBookable() bool {
	return e != nil && !e.IsDeleted && e.RequireApproval == ApprovalApproved
}

// InSalesWindow reports whether now lies within [SaleStartTime, SaleEndTime].
func (e *Event) InSalesWindow(now time.Time) bool {
	return !now.Before(e.SaleStartTime) && !now.After(e.SaleEndTime)
}

func (e *Event) IsFree() bool {
	return e.TicketType == EventTicketFree
}

// TicketDetail is a ticket type within an event.
type TicketDetail struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	EventID           uuid.UUID       `json:"event_id" db:"event_id"`
	Name              string          `json:"name" db:"name"`
	Price             decimal.Decimal `json:"price" db:"price"`
	TicketQuantity    int             `json:"ticket_quantity" db:"ticket_quantity"`
	RemainingQuantity int             `json:"remaining_quantity" db:"remaining_quantity"`
	SoldQuantity      int             `json:"sold_quantity" db:"sold_quantity"`
	RefundRuleID      *uuid.UUID      `json:"refund_rule_id,omitempty" db:"refund_rule_id"`
}

// Ticket is one purchased seat.
type Ticket struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	UserID         uuid.UUID       `json:"user_id" db:"user_id"`
	TicketDetailID uuid.UUID       `json:"ticket_detail_id" db:"ticket_detail_id"`
	BookingItemID  uuid.UUID       `json:"booking_item_id" db:"booking_item_id"`
	EventID        uuid.UUID       `json:"event_id" db:"-"` // joined from ticket_details
	Status         TicketStatus    `json:"status" db:"status"`
	Price          decimal.Decimal `json:"price" db:"price"`
	Token          string          `json:"token" db:"token"`
	QRCodeURL      string          `json:"qr_code_url" db:"qr_code_url"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// Booking represents a booking in the system
type Booking struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	UserID      uuid.UUID       `json:"user_id" db:"user_id"`
	EventID     uuid.UUID       `json:"event_id" db:"event_id"`
	TotalAmount decimal.Decimal `json:"total_amount" db:"total_amount"`
	Status      BookingStatus   `json:"status" db:"status"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	Items       []BookingItem   `json:"items,omitempty"` // Not from bookings table, filled separately
}

// BookingItem links a booking to a ticket type and quantity.
type BookingItem struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	BookingID      uuid.UUID       `json:"booking_id" db:"booking_id"`
	TicketDetailID uuid.UUID       `json:"ticket_detail_id" db:"ticket_detail_id"`
	Quantity       int             `json:"quantity" db:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price" db:"unit_price"`
}

type Wallet struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	UserID    uuid.UUID       `json:"user_id" db:"user_id"`
	Balance   decimal.Decimal `json:"balance" db:"balance"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// WalletTransaction is an immutable ledger row; Amount is signed.
type WalletTransaction struct {
	ID           uuid.UUID             `json:"id" db:"id"`
	WalletID     uuid.UUID             `json:"wallet_id" db:"wallet_id"`
	Amount       decimal.Decimal       `json:"amount" db:"amount"`
	BalanceAfter decimal.Decimal       `json:"balance_after" db:"balance_after"`
	Type         WalletTransactionType `json:"type" db:"type"`
	ReferenceID  uuid.UUID             `json:"reference_id" db:"reference_id"`
	Description  string                `json:"description" db:"description"`
	CreatedAt    time.Time             `json:"created_at" db:"created_at"`
}

type PaymentTransaction struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	UserID    uuid.UUID        `json:"user_id" db:"user_id"`
	BookingID *uuid.UUID       `json:"booking_id,omitempty" db:"booking_id"`
	TicketID  *uuid.UUID       `json:"ticket_id,omitempty" db:"ticket_id"`
	Amount    decimal.Decimal  `json:"amount" db:"amount"`
	Direction PaymentDirection `json:"direction" db:"direction"`
	Status    string           `json:"status" db:"status"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

type RefundRule struct {
	ID      uuid.UUID          `json:"id" db:"id"`
	Name    string             `json:"name" db:"name"`
	Details []RefundRuleDetail `json:"details,omitempty"`
}

// RefundRuleDetail is one tier: [MinDaysBeforeEvent, MaxDaysBeforeEvent] -> RefundPercent.
type RefundRuleDetail struct {
	ID                 uuid.UUID `json:"id" db:"id"`
	RefundRuleID       uuid.UUID `json:"refund_rule_id" db:"refund_rule_id"`
	MinDaysBeforeEvent int       `json:"min_days_before_event" db:"min_days_before_event"`
	MaxDaysBeforeEvent int       `json:"max_days_before_event" db:"max_days_before_event"`
	RefundPercent      int       `json:"refund_percent" db:"refund_percent"`
	Position           int       `json:"position" db:"position"`
}
