// Package tickets creates the individual tickets of a booking together with
// their signed tokens, QR codes and the PDF sent to the buyer.
package tickets

import (
	"context"
	"fmt"
	"time"

	"evently/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Config struct {
	TokenSecret   string
	Issuer        string
	PublicBaseURL string
	QRSize        int
}

type TokenCreator interface {
	CreateTicketToken(ticketID uuid.UUID) (string, error)
}

type CodeGenerator interface {
	GenerateQRCodes(contents []string) (map[string][]byte, map[string]string, error)
}

type IssueItem struct {
	BookingItemID  uuid.UUID
	TicketDetailID uuid.UUID
	Quantity       int
	UnitPrice      decimal.Decimal
}

type IssueRequest struct {
	UserID uuid.UUID
	Items  []IssueItem
	Now    time.Time
}

// Batch is the result of one issue call. QRImages is keyed by ticket id.
type Batch struct {
	Tickets  []models.Ticket
	QRImages map[uuid.UUID][]byte
}

type Issuer struct {
	tokens TokenCreator
	codes  CodeGenerator
}

func NewIssuer(tokens TokenCreator, codes CodeGenerator) *Issuer {
	return &Issuer{tokens: tokens, codes: codes}
}

// NewIssuerFromConfig wires the JWT signer and PNG QR generator.
func NewIssuerFromConfig(cfg Config) (*Issuer, *TokenSigner, *QRGenerator) {
	signer := NewTokenSigner(cfg.TokenSecret, cfg.Issuer)
	qr := NewQRGenerator(cfg.PublicBaseURL, cfg.QRSize)
	return NewIssuer(signer, qr), signer, qr
}

// Issue creates one Valid ticket per purchased unit. Any token or QR failure
// fails the whole batch.
func (i *Issuer) Issue(ctx context.Context, req IssueRequest) (*Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	total := 0
	for _, item := range req.Items {
		total += item.Quantity
	}

	tickets := make([]models.Ticket, 0, total)
	tokens := make([]string, 0, total)

	for _, item := range req.Items {
		for n := 0; n < item.Quantity; n++ {
			id := uuid.New()
			token, err := i.tokens.CreateTicketToken(id)
			if err != nil {
				return nil, fmt.Errorf("ticket %s: %w", id, err)
			}

			tickets = append(tickets, models.Ticket{
				ID:             id,
				UserID:         req.UserID,
				TicketDetailID: item.TicketDetailID,
				BookingItemID:  item.BookingItemID,
				Status:         models.TicketValid,
				Price:          item.UnitPrice,
				Token:          token,
				CreatedAt:      req.Now,
				UpdatedAt:      req.Now,
			})
			tokens = append(tokens, token)
		}
	}

	images, urls, err := i.codes.GenerateQRCodes(tokens)
	if err != nil {
		return nil, err
	}

	batch := &Batch{
		Tickets:  tickets,
		QRImages: make(map[uuid.UUID][]byte, len(tickets)),
	}
	for idx := range batch.Tickets {
		t := &batch.Tickets[idx]
		png, ok := images[t.Token]
		if !ok {
			return nil, fmt.Errorf("no QR code generated for ticket %s", t.ID)
		}
		t.QRCodeURL = urls[t.Token]
		batch.QRImages[t.ID] = png
	}

	return batch, nil
}
