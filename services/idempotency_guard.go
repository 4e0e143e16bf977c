package services

import (
	"context"
	"fmt"

	"github.com/anjiri1684/tutor_bazar/models"
)

// IdempotencyGuard answers whether a provider transaction already has a payment record.
type IdempotencyGuard struct {
	payments PaymentStore
}

func NewIdempotencyGuard(payments PaymentStore) *IdempotencyGuard {
	return &IdempotencyGuard{payments: payments}
}

// AlreadyRecorded returns the recorded payment for txID, or nil if there is none.
func (g *IdempotencyGuard) AlreadyRecorded(ctx context.Context, txID string) (*models.Payment, error) {
	p, err := g.payments.FindByTransactionID(ctx, txID)
	if err != nil {
		return nil, fmt.Errorf("idempotency check for %s: %w", txID, err)
	}
	return p, nil
}
