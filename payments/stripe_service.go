package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

type StripeService struct {
	api     *client.API
	timeout time.Duration
}

// NewStripeService builds the provider client. backends may be nil to talk to the live API.
func NewStripeService(secret string, timeout time.Duration, backends *stripe.Backends) *StripeService {
	return &StripeService{
		api:     client.New(secret, backends),
		timeout: timeout,
	}
}

func (s *StripeService) RetrieveSession(ctx context.Context, ref string) (*SessionRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := s.api.CheckoutSessions.Get(ref, params)
	if err != nil {
		return nil, mapStripeError(err)
	}
	return toSessionRecord(sess), nil
}

func (s *StripeService) CreateSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name: stripe.String(req.ProductName),
	}
	if req.ImageURL != "" {
		product.Images = stripe.StringSlice([]string{req.ImageURL})
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:    stripe.String(req.Currency),
					UnitAmount:  stripe.Int64(ToMinorUnits(req.Price, req.Currency)),
					ProductData: product,
				},
				Quantity: stripe.Int64(1),
			},
		},
		CustomerEmail: stripe.String(req.PayerEmail),
		SuccessURL:    stripe.String(req.SuccessURL),
		CancelURL:     stripe.String(req.CancelURL),
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, mapStripeError(err)
	}

	slog.Info("Checkout session created", "session_id", sess.ID, "payment_type", req.Metadata[MetaPaymentType])
	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

func toSessionRecord(sess *stripe.CheckoutSession) *SessionRecord {
	rec := &SessionRecord{
		ID:            sess.ID,
		TransactionID: sess.ID,
		PaymentStatus: string(sess.PaymentStatus),
		AmountTotal:   sess.AmountTotal,
		Currency:      string(sess.Currency),
		PayerEmail:    sess.CustomerEmail,
		Metadata:      sess.Metadata,
	}
	if sess.CustomerDetails != nil && sess.CustomerDetails.Email != "" {
		rec.PayerEmail = sess.CustomerDetails.Email
	}
	// Fully discounted sessions carry no payment intent; the session id is then the transaction.
	if sess.PaymentIntent != nil && sess.PaymentIntent.ID != "" {
		rec.TransactionID = sess.PaymentIntent.ID
	}
	return rec
}

func mapStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.HTTPStatusCode == http.StatusNotFound || stripeErr.Code == stripe.ErrorCodeResourceMissing {
			return fmt.Errorf("%w: %s", ErrSessionNotFound, stripeErr.Msg)
		}
	}
	return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
}
