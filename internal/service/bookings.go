package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"evently/internal/clock"
	apperrors "evently/internal/errors"
	"evently/internal/ledger"
	"evently/internal/logger"
	"evently/internal/metrics"
	"evently/internal/models"
	"evently/internal/tickets"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingService struct {
	stores    Stores
	issuer    TicketIssuer
	deliverer TicketDeliverer
	publisher EventPublisher
	clock     clock.Clock
}

func NewBookingService(stores Stores, issuer TicketIssuer, deliverer TicketDeliverer, publisher EventPublisher, clk clock.Clock) *BookingService {
	return &BookingService{
		stores:    stores,
		issuer:    issuer,
		deliverer: deliverer,
		publisher: publisher,
		clock:     clk,
	}
}

type bookingLine struct {
	ticketDetailID uuid.UUID
	quantity       int
}

// committedBooking is what the transaction hands over to the post-commit steps.
type committedBooking struct {
	user      *models.User
	event     *models.Event
	booking   *models.Booking
	batch     *tickets.Batch
	typeNames map[uuid.UUID]string
}

// CreateBooking validates the request against the locked event, ticket types
// and wallets, then books, issues tickets and moves money in one transaction.
// Ticket delivery runs after commit and never fails the call.
func (s *BookingService) CreateBooking(ctx context.Context, userID uuid.UUID, req *models.CreateBookingRequest) (resp *models.CreateBookingResponse, err error) {
	started := time.Now()
	defer func() { metrics.TrackBooking(outcome(err), time.Since(started)) }()

	lines, err := normalizeLines(userID, req)
	if err != nil {
		return nil, err
	}

	var committed *committedBooking
	err = s.stores.Tx.WithTx(ctx, func(ctx context.Context) error {
		var txErr error
		committed, txErr = s.book(ctx, userID, req.EventID, lines)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, committed)

	return toBookingResponse(committed), nil
}

// normalizeLines rejects malformed requests and merges repeated ticket types,
// keeping the order in which they first appear.
func normalizeLines(userID uuid.UUID, req *models.CreateBookingRequest) ([]bookingLine, error) {
	if userID == uuid.Nil || req == nil || len(req.Items) == 0 {
		return nil, apperrors.InvalidInput(apperrors.MsgInvalidBookingRequest)
	}

	index := make(map[uuid.UUID]int, len(req.Items))
	lines := make([]bookingLine, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, apperrors.InvalidInput(apperrors.MsgInvalidBookingRequest)
		}
		if i, ok := index[item.TicketTypeID]; ok {
			lines[i].quantity += item.Quantity
			continue
		}
		index[item.TicketTypeID] = len(lines)
		lines = append(lines, bookingLine{ticketDetailID: item.TicketTypeID, quantity: item.Quantity})
	}
	return lines, nil
}

func (s *BookingService) book(ctx context.Context, userID, eventID uuid.UUID, lines []bookingLine) (*committedBooking, error) {
	user, err := s.stores.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, internalError(err)
	}
	if !user.CanBook() {
		return nil, apperrors.NotFound(apperrors.MsgUserNotFound)
	}

	event, err := s.stores.Events.GetByIDForUpdate(ctx, eventID)
	if err != nil {
		return nil, internalError(err)
	}
	// Unapproved events are reported exactly like missing ones.
	if !event.IsBookable() {
		return nil, apperrors.NotFound(apperrors.MsgEventNotFound)
	}

	now := s.clock.Now()
	if !event.InSalesWindow(now) {
		return nil, apperrors.InvalidInput(apperrors.MsgSalesPeriodClosed)
	}

	ids := make([]uuid.UUID, len(lines))
	for i, line := range lines {
		ids[i] = line.ticketDetailID
	}
	details, err := s.stores.TicketDetails.GetByIDsForUpdate(ctx, event.ID, ids)
	if err != nil {
		return nil, internalError(err)
	}
	if len(details) != len(ids) {
		return nil, apperrors.InvalidInput(apperrors.MsgInvalidTicketTypes)
	}

	byID := make(map[uuid.UUID]*models.TicketDetail, len(details))
	typeNames := make(map[uuid.UUID]string, len(details))
	for i := range details {
		byID[details[i].ID] = &details[i]
		typeNames[details[i].ID] = details[i].Name
	}

	total := decimal.Zero
	for _, line := range lines {
		detail := byID[line.ticketDetailID]
		if line.quantity > detail.RemainingQuantity {
			return nil, notEnoughTickets(detail)
		}
		total = total.Add(detail.Price.Mul(decimal.NewFromInt(int64(line.quantity))))
	}

	organizer, err := s.stores.Organizers.GetByID(ctx, event.OrganizerID)
	if err != nil {
		return nil, internalError(err)
	}
	if organizer == nil {
		return nil, apperrors.NotFound(apperrors.MsgOrganizerNotFound)
	}

	wallets, err := s.stores.Wallets.GetByUserIDsForUpdate(ctx, user.ID, organizer.UserID)
	if err != nil {
		return nil, internalError(err)
	}
	buyerWallet, ok := wallets[user.ID]
	if !ok {
		return nil, apperrors.NotFound(apperrors.MsgBuyerWalletNotFound)
	}
	organizerWallet, ok := wallets[organizer.UserID]
	if !ok {
		return nil, apperrors.NotFound(apperrors.MsgOrganizerWalletNotFound)
	}

	if total.IsPositive() && buyerWallet.Balance.LessThan(total) {
		return nil, apperrors.InvalidInput(apperrors.MsgNotEnoughMoney)
	}

	booking := &models.Booking{
		ID:          uuid.New(),
		UserID:      user.ID,
		EventID:     event.ID,
		TotalAmount: total,
		Status:      models.BookingCompleted,
		CreatedAt:   now,
		Items:       make([]models.BookingItem, 0, len(lines)),
	}
	issueItems := make([]tickets.IssueItem, 0, len(lines))

	for _, line := range lines {
		detail := byID[line.ticketDetailID]
		if err := ledger.Reserve(event, detail, line.quantity); err != nil {
			if errors.Is(err, ledger.ErrInsufficientInventory) {
				return nil, notEnoughTickets(detail)
			}
			return nil, internalError(err)
		}

		item := models.BookingItem{
			ID:             uuid.New(),
			BookingID:      booking.ID,
			TicketDetailID: detail.ID,
			Quantity:       line.quantity,
			UnitPrice:      detail.Price,
		}
		booking.Items = append(booking.Items, item)
		issueItems = append(issueItems, tickets.IssueItem{
			BookingItemID:  item.ID,
			TicketDetailID: detail.ID,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
		})
	}

	for i := range details {
		if err := s.stores.TicketDetails.UpdateCounters(ctx, &details[i]); err != nil {
			return nil, internalError(err)
		}
	}
	if err := s.stores.Events.UpdateCounters(ctx, event); err != nil {
		return nil, internalError(err)
	}

	if err := s.stores.Bookings.Create(ctx, booking); err != nil {
		return nil, internalError(err)
	}

	batch, err := s.issuer.Issue(ctx, tickets.IssueRequest{
		UserID: user.ID,
		Items:  issueItems,
		Now:    now,
	})
	if err != nil {
		return nil, internalError(fmt.Errorf("issue tickets: %w", err))
	}
	if err := s.stores.Tickets.CreateBatch(ctx, batch.Tickets); err != nil {
		return nil, internalError(err)
	}

	movement, err := ledger.Transfer(buyerWallet, organizerWallet, total, ledger.TransferBooking, ledger.Reference{
		UserID:    user.ID,
		BookingID: &booking.ID,
	}, now)
	if err != nil {
		if errors.Is(err, ledger.ErrInsufficientFunds) {
			return nil, apperrors.InvalidInput(apperrors.MsgNotEnoughMoney)
		}
		return nil, internalError(err)
	}
	if movement != nil {
		if err := persistMovement(ctx, s.stores, movement, buyerWallet, organizerWallet); err != nil {
			return nil, internalError(err)
		}
	}

	return &committedBooking{
		user:      user,
		event:     event,
		booking:   booking,
		batch:     batch,
		typeNames: typeNames,
	}, nil
}

func notEnoughTickets(detail *models.TicketDetail) error {
	return apperrors.InvalidInput(fmt.Sprintf(apperrors.MsgNotEnoughTicketsFmt, detail.Name))
}

// afterCommit publishes the domain event and dispatches the tickets once.
// The booking is already durable, so failures are only logged.
func (s *BookingService) afterCommit(ctx context.Context, c *committedBooking) {
	ctx = context.WithoutCancel(ctx)
	log := logger.WithContext(ctx).With("booking_id", c.booking.ID)

	metrics.TrackWalletAmount(metrics.DirectionPayment, c.booking.TotalAmount)

	if s.publisher != nil {
		evt := models.BookingCompletedEvent{
			BookingID:   c.booking.ID,
			EventID:     c.event.ID,
			UserID:      c.user.ID,
			TotalAmount: c.booking.TotalAmount,
			TicketCount: len(c.batch.Tickets),
			Timestamp:   s.clock.Now(),
		}
		if err := s.publisher.Publish(models.EventBookingCompleted, evt); err != nil {
			log.Error("Failed to publish booking completed event", "error", err)
		}
	}

	if s.deliverer != nil {
		if err := s.deliverer.Deliver(ctx, tickets.DeliveryRequest{
			User:      c.user,
			Event:     c.event,
			Booking:   c.booking,
			Batch:     c.batch,
			TypeNames: c.typeNames,
		}); err != nil {
			log.Error("Failed to deliver tickets", "error", err, "email", c.user.Email)
		}
	}
}

func toBookingResponse(c *committedBooking) *models.CreateBookingResponse {
	resp := &models.CreateBookingResponse{
		BookingID:   c.booking.ID,
		Status:      c.booking.Status,
		TotalAmount: c.booking.TotalAmount,
		Tickets:     make([]models.TicketResponse, len(c.batch.Tickets)),
	}
	for i, t := range c.batch.Tickets {
		resp.Tickets[i] = models.TicketResponse{
			ID:             t.ID,
			TicketDetailID: t.TicketDetailID,
			Status:         t.Status,
			Price:          t.Price,
			QRCodeURL:      t.QRCodeURL,
		}
	}
	return resp
}

// ListBookings returns the caller's bookings, newest first.
func (s *BookingService) ListBookings(ctx context.Context, userID uuid.UUID) ([]models.ListBookingsResponseItem, error) {
	bookings, err := s.stores.Bookings.ListByUserID(ctx, userID)
	if err != nil {
		return nil, internalError(fmt.Errorf("failed to get bookings: %w", err))
	}

	result := make([]models.ListBookingsResponseItem, len(bookings))
	for i, booking := range bookings {
		result[i] = models.ListBookingsResponseItem{
			ID:          booking.ID,
			EventID:     booking.EventID,
			TotalAmount: booking.TotalAmount,
			Status:      booking.Status,
			CreatedAt:   booking.CreatedAt,
		}
	}

	return result, nil
}
