package tickets

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid ticket token")

// TokenSigner issues and verifies the signed token printed on each ticket.
// The token carries the ticket id as its jti claim and does not expire;
// validity is governed by the ticket status.
type TokenSigner struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewTokenSigner(secret, issuer string) *TokenSigner {
	return &TokenSigner{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
}

func (s *TokenSigner) CreateTicketToken(ticketID uuid.UUID) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("ticket token secret is not configured")
	}

	claims := jwt.RegisteredClaims{
		ID:       ticketID.String(),
		Issuer:   s.issuer,
		Subject:  "ticket",
		IssuedAt: jwt.NewNumericDate(s.now().UTC()),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign ticket token: %w", err)
	}
	return signed, nil
}

// VerifyTicketToken checks the signature and returns the ticket id it carries.
func (s *TokenSigner) VerifyTicketToken(token string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
	)
	if err != nil || !parsed.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	ticketID, err := uuid.Parse(claims.ID)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return ticketID, nil
}
