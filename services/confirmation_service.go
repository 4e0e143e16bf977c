package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anjiri1684/tutor_bazar/models"
	"github.com/anjiri1684/tutor_bazar/payments"
	"github.com/anjiri1684/tutor_bazar/queries"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalidSessionRef   = errors.New("session reference is required")
	ErrPaymentNotCompleted = errors.New("payment not completed")
	ErrRecordPayment       = errors.New("could not record payment")
)

// SessionVerifier retrieves the provider's authoritative session record.
type SessionVerifier interface {
	RetrieveSession(ctx context.Context, ref string) (*payments.SessionRecord, error)
}

type PaymentStore interface {
	FindByTransactionID(ctx context.Context, txID string) (*models.Payment, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	Insert(ctx context.Context, p *models.Payment) error
	UpdateReconciliation(ctx context.Context, id uuid.UUID, status string, warnings []string) error
}

type TuitionRequestStore interface {
	MarkPaid(ctx context.Context, id uuid.UUID, tutorEmail string, at time.Time) (int64, error)
}

type TutorApplicationStore interface {
	Approve(ctx context.Context, requestID uuid.UUID, tutorEmail string, at time.Time) (int64, error)
}

type ProfileApplicationStore interface {
	MarkPaid(ctx context.Context, id uuid.UUID, at time.Time) (int64, error)
}

type Stores struct {
	Payments            PaymentStore
	Requests            TuitionRequestStore
	TutorApplications   TutorApplicationStore
	ProfileApplications ProfileApplicationStore
}

func NewStores(db *gorm.DB) Stores {
	return Stores{
		Payments:            &queries.PaymentQueries{DB: db},
		Requests:            &queries.TuitionRequestQueries{DB: db},
		TutorApplications:   &queries.TutorApplicationQueries{DB: db},
		ProfileApplications: &queries.ProfileApplicationQueries{DB: db},
	}
}

// ConfirmationResult is returned to the client after a checkout redirect.
// A repeated confirmation of the same transaction yields an identical result.
type ConfirmationResult struct {
	Success       bool               `json:"success"`
	Type          models.PaymentType `json:"type"`
	TransactionID string             `json:"transactionId"`
	PaymentID     uuid.UUID          `json:"paymentId"`
	Warnings      []string           `json:"warnings,omitempty"`

	AlreadyRecorded bool `json:"-"`
}

func resultFromPayment(p *models.Payment) *ConfirmationResult {
	return &ConfirmationResult{
		Success:         true,
		Type:            p.PaymentType,
		TransactionID:   p.TransactionID,
		PaymentID:       p.ID,
		Warnings:        p.Warnings,
		AlreadyRecorded: true,
	}
}

type ConfirmationService struct {
	verifier SessionVerifier
	stores   Stores
	guard    *IdempotencyGuard
	cache    ResultCache
	now      func() time.Time
}

// NewConfirmationService wires the engine. cache may be nil.
func NewConfirmationService(verifier SessionVerifier, stores Stores, cache ResultCache) *ConfirmationService {
	return &ConfirmationService{
		verifier: verifier,
		stores:   stores,
		guard:    NewIdempotencyGuard(stores.Payments),
		cache:    cache,
		now:      time.Now,
	}
}

// Confirm settles the checkout session identified by sessionRef.
//
// The payment insert is the only durable commitment: it happens after the
// idempotency check and before any dependent entity is touched, and the unique
// transaction id makes racing confirmations collapse onto one record. Follow-up
// mutations are best effort and reported as warnings, never rolled back.
func (s *ConfirmationService) Confirm(ctx context.Context, sessionRef string) (*ConfirmationResult, error) {
	sessionRef = strings.TrimSpace(sessionRef)
	if sessionRef == "" {
		return nil, ErrInvalidSessionRef
	}

	if s.cache != nil {
		if res, ok := s.cache.Get(ctx, sessionRef); ok {
			res.AlreadyRecorded = true
			return res, nil
		}
	}

	session, err := s.verifier.RetrieveSession(ctx, sessionRef)
	if err != nil {
		return nil, err
	}
	if !session.Paid() {
		return nil, fmt.Errorf("%w: session %s is %q", ErrPaymentNotCompleted, session.ID, session.PaymentStatus)
	}

	existing, err := s.guard.AlreadyRecorded(ctx, session.TransactionID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		slog.Info("Payment already recorded", "transaction_id", existing.TransactionID, "payment_id", existing.ID)
		res := resultFromPayment(existing)
		s.remember(ctx, sessionRef, res)
		return res, nil
	}

	flow, err := payments.Classify(session.Metadata)
	if err != nil {
		slog.Error("🔥 CRITICAL: checkout session carries unusable metadata",
			"session_id", session.ID, "transaction_id", session.TransactionID, "error", err)
		return nil, err
	}

	payment := newPaymentRecord(session, flow, s.now())
	if err := s.stores.Payments.Insert(ctx, payment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.raceLost(ctx, sessionRef, session.TransactionID, err)
		}
		slog.Error("🔥 CRITICAL: failed to record payment", "transaction_id", session.TransactionID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrRecordPayment, err)
	}
	slog.Info("✅ Payment recorded", "transaction_id", payment.TransactionID, "payment_id", payment.ID, "type", payment.PaymentType)

	// The payment is settled now; finish the follow-ups even if the caller goes away.
	followCtx := context.WithoutCancel(ctx)
	warnings := s.applyFollowUps(followCtx, flow)
	s.saveReconciliation(followCtx, payment, warnings)

	res := &ConfirmationResult{
		Success:       true,
		Type:          payment.PaymentType,
		TransactionID: payment.TransactionID,
		PaymentID:     payment.ID,
		Warnings:      warnings,
	}
	s.remember(followCtx, sessionRef, res)
	return res, nil
}

// raceLost handles a concurrent confirmation that inserted the same transaction first.
func (s *ConfirmationService) raceLost(ctx context.Context, sessionRef, txID string, insertErr error) (*ConfirmationResult, error) {
	winner, err := s.guard.AlreadyRecorded(ctx, txID)
	if err != nil {
		return nil, err
	}
	if winner == nil {
		return nil, fmt.Errorf("%w: %v", ErrRecordPayment, insertErr)
	}
	slog.Info("Concurrent confirmation resolved to existing payment", "transaction_id", txID, "payment_id", winner.ID)
	res := resultFromPayment(winner)
	s.remember(ctx, sessionRef, res)
	return res, nil
}

// ReconcilePayment re-runs the follow-up mutations of an already recorded
// payment. It is the manual repair path for partial reconciliations.
func (s *ConfirmationService) ReconcilePayment(ctx context.Context, paymentID uuid.UUID) (*ConfirmationResult, error) {
	payment, err := s.stores.Payments.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	flow, err := payments.FlowFromPayment(payment)
	if err != nil {
		return nil, err
	}

	warnings := s.applyFollowUps(ctx, flow)
	s.saveReconciliation(ctx, payment, warnings)
	if s.cache != nil && payment.SessionID != "" {
		s.cache.Delete(ctx, payment.SessionID)
	}

	slog.Info("Payment reconciled", "payment_id", payment.ID, "transaction_id", payment.TransactionID, "warnings", len(warnings))
	return &ConfirmationResult{
		Success:       true,
		Type:          payment.PaymentType,
		TransactionID: payment.TransactionID,
		PaymentID:     payment.ID,
		Warnings:      warnings,
	}, nil
}

func newPaymentRecord(session *payments.SessionRecord, flow payments.Flow, at time.Time) *models.Payment {
	subject, classLevel := flow.SubjectRef()
	return &models.Payment{
		TransactionID:        session.TransactionID,
		SessionID:            session.ID,
		PaymentType:          flow.Kind(),
		Amount:               payments.FromMinorUnits(session.AmountTotal, session.Currency),
		Currency:             strings.ToLower(session.Currency),
		PayerEmail:           session.PayerEmail,
		PayeeEmail:           flow.Tutor(),
		Subject:              subject,
		ClassLevel:           classLevel,
		LinkedEntityID:       flow.LinkedEntityID(),
		Status:               models.PaymentStatusPaid,
		ReconciliationStatus: models.ReconciliationPending,
		RecordedAt:           at,
	}
}

func (s *ConfirmationService) saveReconciliation(ctx context.Context, payment *models.Payment, warnings []string) {
	status := models.ReconciliationComplete
	if len(warnings) > 0 {
		status = models.ReconciliationPartial
	}
	if err := s.stores.Payments.UpdateReconciliation(ctx, payment.ID, status, warnings); err != nil {
		slog.Error("Failed to store reconciliation status", "payment_id", payment.ID, "status", status, "error", err)
		return
	}
	payment.ReconciliationStatus = status
	payment.Warnings = warnings
}

func (s *ConfirmationService) remember(ctx context.Context, sessionRef string, res *ConfirmationResult) {
	if s.cache != nil {
		s.cache.Set(ctx, sessionRef, res)
	}
}
