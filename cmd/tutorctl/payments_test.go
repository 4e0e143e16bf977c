package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anjiri1684/tutor_bazar/models"
	"github.com/anjiri1684/tutor_bazar/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type stubLister struct{ list []models.Payment }

func (s stubLister) ListUnreconciled(ctx context.Context, stalledBefore time.Time, limit int) ([]models.Payment, error) {
	return s.list, nil
}

type stubReconciler struct {
	got      uuid.UUID
	warnings []string
	err      error
}

func (s *stubReconciler) ReconcilePayment(ctx context.Context, id uuid.UUID) (*services.ConfirmationResult, error) {
	s.got = id
	if s.err != nil {
		return nil, s.err
	}
	return &services.ConfirmationResult{Success: true, PaymentID: id, Warnings: s.warnings}, nil
}

func run(t *testing.T, b *backend, args ...string) (string, error) {
	t.Helper()
	cmd := paymentsCmd(func() (*backend, error) { return b, nil })
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPendingListsPayments(t *testing.T) {
	b := &backend{payments: stubLister{list: []models.Payment{{
		ID:                   uuid.New(),
		TransactionID:        "pi_123",
		PaymentType:          models.PaymentTypeTuition,
		ReconciliationStatus: models.ReconciliationPartial,
		Warnings:             []string{"tutor application for request x by b@x.com not found"},
		RecordedAt:           time.Now(),
	}}}}

	out, err := run(t, b, "pending")
	require.NoError(t, err)
	require.Contains(t, out, "pi_123")
	require.Contains(t, out, "partial")
	require.Contains(t, out, "not found")
}

func TestPendingEmpty(t *testing.T) {
	out, err := run(t, &backend{payments: stubLister{}}, "pending")
	require.NoError(t, err)
	require.Contains(t, out, "No unreconciled payments.")
}

func TestReconcile(t *testing.T) {
	rec := &stubReconciler{}
	id := uuid.New()

	out, err := run(t, &backend{confirmations: rec}, "reconcile", id.String())
	require.NoError(t, err)
	require.Equal(t, id, rec.got)
	require.Contains(t, out, "reconciled")

	rec.warnings = []string{"profile application y not found"}
	out, err = run(t, &backend{confirmations: rec}, "reconcile", id.String())
	require.NoError(t, err)
	require.Contains(t, out, "still partial")
	require.Contains(t, out, "profile application y not found")
}

func TestReconcileErrors(t *testing.T) {
	_, err := run(t, &backend{confirmations: &stubReconciler{}}, "reconcile", "not-a-uuid")
	require.Error(t, err)

	_, err = run(t, &backend{confirmations: &stubReconciler{err: errors.New("record not found")}}, "reconcile", uuid.NewString())
	require.ErrorContains(t, err, "record not found")
}
