package payments

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrSessionNotFound     = errors.New("checkout session not found")
	ErrProviderUnavailable = errors.New("payment provider unavailable")
)

const SessionStatusPaid = "paid"

// SessionRecord is the provider's authoritative view of a checkout session.
// Metadata is whatever was attached at creation time and must be treated as untrusted.
type SessionRecord struct {
	ID            string
	TransactionID string
	PaymentStatus string
	AmountTotal   int64
	Currency      string
	PayerEmail    string
	Metadata      map[string]string
}

func (s *SessionRecord) Paid() bool {
	return s.PaymentStatus == SessionStatusPaid
}

type CheckoutRequest struct {
	ProductName string
	ImageURL    string
	Price       decimal.Decimal
	Currency    string
	PayerEmail  string
	Metadata    map[string]string
	SuccessURL  string
	CancelURL   string
}

type CheckoutSession struct {
	ID  string
	URL string
}

// Provider is the checkout capability of the payment gateway.
type Provider interface {
	CreateSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	RetrieveSession(ctx context.Context, ref string) (*SessionRecord, error)
}
