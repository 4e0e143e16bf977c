package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anjiri1684/tutor_bazar/database/dbtest"
	"github.com/anjiri1684/tutor_bazar/models"
	"github.com/anjiri1684/tutor_bazar/payments"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeVerifier struct {
	mu       sync.Mutex
	sessions map[string]*payments.SessionRecord
	err      error
	calls    int
}

func (f *fakeVerifier) RetrieveSession(ctx context.Context, ref string) (*payments.SessionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.sessions[ref]
	if !ok {
		return nil, payments.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

type countingRequests struct {
	TuitionRequestStore
	calls atomic.Int32
}

func (c *countingRequests) MarkPaid(ctx context.Context, id uuid.UUID, tutorEmail string, at time.Time) (int64, error) {
	c.calls.Add(1)
	return c.TuitionRequestStore.MarkPaid(ctx, id, tutorEmail, at)
}

type countingApplications struct {
	TutorApplicationStore
	calls atomic.Int32
}

func (c *countingApplications) Approve(ctx context.Context, requestID uuid.UUID, tutorEmail string, at time.Time) (int64, error) {
	c.calls.Add(1)
	return c.TutorApplicationStore.Approve(ctx, requestID, tutorEmail, at)
}

type countingProfileApplications struct {
	ProfileApplicationStore
	calls atomic.Int32
}

func (c *countingProfileApplications) MarkPaid(ctx context.Context, id uuid.UUID, at time.Time) (int64, error) {
	c.calls.Add(1)
	return c.ProfileApplicationStore.MarkPaid(ctx, id, at)
}

type failingInsert struct {
	PaymentStore
}

func (failingInsert) Insert(ctx context.Context, p *models.Payment) error {
	return errors.New("disk full")
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]ConfirmationResult
}

func (m *memoryCache) Get(ctx context.Context, ref string) (*ConfirmationResult, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res, ok := m.entries[ref]
	if !ok {
		return nil, false
	}
	return &res, true
}

func (m *memoryCache) Set(ctx context.Context, ref string, res *ConfirmationResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[ref] = *res
}

func (m *memoryCache) Delete(ctx context.Context, ref string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, ref)
}

type harness struct {
	db           *gorm.DB
	verifier     *fakeVerifier
	requests     *countingRequests
	applications *countingApplications
	profileApps  *countingProfileApplications
	stores       Stores
	svc          *ConfirmationService

	requestID    uuid.UUID
	profileAppID uuid.UUID
	tutorEmail   string
	studentEmail string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := dbtest.Open(t)

	h := &harness{
		db:           db,
		verifier:     &fakeVerifier{sessions: map[string]*payments.SessionRecord{}},
		tutorEmail:   "a@x.com",
		studentEmail: "student@x.com",
	}

	request := models.TuitionRequest{
		StudentEmail: h.studentEmail,
		Subject:      "Physics",
		ClassLevel:   "Class 9",
		Budget:       decimal.NewFromInt(2500),
		Status:       models.RequestStatusActive,
	}
	require.NoError(t, db.Create(&request).Error)
	h.requestID = request.ID

	application := models.TutorApplication{
		TuitionRequestID: request.ID,
		TutorEmail:       h.tutorEmail,
		StudentEmail:     h.studentEmail,
		Status:           models.ApplicationStatusPending,
		AppliedAt:        time.Now(),
	}
	require.NoError(t, db.Create(&application).Error)

	profile := models.TutorProfile{TutorEmail: "tutor@x.com", Name: "Rahim", Status: models.ProfileStatusActive}
	require.NoError(t, db.Create(&profile).Error)

	profileApp := models.ProfileApplication{
		StudentEmail:   h.studentEmail,
		TutorProfileID: profile.ID,
		TutorEmail:     profile.TutorEmail,
		Status:         models.ApplicationStatusApproved,
		AppliedAt:      time.Now(),
	}
	require.NoError(t, db.Create(&profileApp).Error)
	h.profileAppID = profileApp.ID

	base := NewStores(db)
	h.requests = &countingRequests{TuitionRequestStore: base.Requests}
	h.applications = &countingApplications{TutorApplicationStore: base.TutorApplications}
	h.profileApps = &countingProfileApplications{ProfileApplicationStore: base.ProfileApplications}
	h.stores = Stores{
		Payments:            base.Payments,
		Requests:            h.requests,
		TutorApplications:   h.applications,
		ProfileApplications: h.profileApps,
	}
	h.svc = NewConfirmationService(h.verifier, h.stores, nil)
	return h
}

func (h *harness) tuitionSession(ref, txID, tutorEmail string) {
	h.verifier.sessions[ref] = &payments.SessionRecord{
		ID:            ref,
		TransactionID: txID,
		PaymentStatus: payments.SessionStatusPaid,
		AmountTotal:   250000,
		Currency:      "usd",
		PayerEmail:    h.studentEmail,
		Metadata: map[string]string{
			payments.MetaPaymentType: string(models.PaymentTypeTuition),
			payments.MetaTuitionID:   h.requestID.String(),
			payments.MetaApplyID:     "undefined",
			payments.MetaTutorEmail:  tutorEmail,
			payments.MetaSubject:     "Physics",
			payments.MetaClassLevel:  "Class 9",
		},
	}
}

func (h *harness) applySession(ref, txID string) {
	h.verifier.sessions[ref] = &payments.SessionRecord{
		ID:            ref,
		TransactionID: txID,
		PaymentStatus: payments.SessionStatusPaid,
		AmountTotal:   120000,
		Currency:      "usd",
		PayerEmail:    h.studentEmail,
		Metadata: map[string]string{
			payments.MetaPaymentType: string(models.PaymentTypeApplyStudent),
			payments.MetaApplyID:     h.profileAppID.String(),
			payments.MetaTuitionID:   "undefined",
			payments.MetaTutorEmail:  "tutor@x.com",
			payments.MetaSubject:     "Chemistry",
			payments.MetaClassLevel:  "HSC",
		},
	}
}

func (h *harness) paymentCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, h.db.Model(&models.Payment{}).Count(&n).Error)
	return n
}

func (h *harness) request(t *testing.T) models.TuitionRequest {
	t.Helper()
	var r models.TuitionRequest
	require.NoError(t, h.db.First(&r, "id = ?", h.requestID).Error)
	return r
}

func (h *harness) followUpCalls() int32 {
	return h.requests.calls.Load() + h.applications.calls.Load() + h.profileApps.calls.Load()
}

func TestConfirmTuitionPayment(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.tuitionSession("cs_1", "pi_1", "a@x.com")

	res, err := h.svc.Confirm(ctx, "cs_1")
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, models.PaymentTypeTuition, res.Type)
	require.Equal(t, "pi_1", res.TransactionID)
	require.NotEqual(t, uuid.Nil, res.PaymentID)
	require.Empty(t, res.Warnings)

	r := h.request(t)
	require.Equal(t, models.RequestStatusPaid, r.Status)
	require.NotNil(t, r.SelectedTutorEmail)
	require.Equal(t, "a@x.com", *r.SelectedTutorEmail)
	require.NotNil(t, r.PaidAt)

	var app models.TutorApplication
	require.NoError(t, h.db.First(&app, "tuition_request_id = ? AND tutor_email = ?", h.requestID, "a@x.com").Error)
	require.Equal(t, models.ApplicationStatusApproved, app.Status)
	require.NotNil(t, app.ApprovedAt)

	require.EqualValues(t, 1, h.paymentCount(t))
	var p models.Payment
	require.NoError(t, h.db.First(&p, "id = ?", res.PaymentID).Error)
	require.Equal(t, "2500.00", p.Amount.StringFixed(2))
	require.Equal(t, h.studentEmail, p.PayerEmail)
	require.Equal(t, "a@x.com", p.PayeeEmail)
	require.Equal(t, h.requestID, p.LinkedEntityID)
	require.Equal(t, "cs_1", p.SessionID)
	require.Equal(t, models.PaymentStatusPaid, p.Status)
	require.Equal(t, models.ReconciliationComplete, p.ReconciliationStatus)
}

func TestConfirmIsIdempotent(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.tuitionSession("cs_1", "pi_1", "a@x.com")

	first, err := h.svc.Confirm(ctx, "cs_1")
	require.NoError(t, err)
	second, err := h.svc.Confirm(ctx, "cs_1")
	require.NoError(t, err)

	require.Equal(t, first.PaymentID, second.PaymentID)
	require.Equal(t, first.TransactionID, second.TransactionID)
	require.Equal(t, first.Type, second.Type)
	require.Equal(t, first.Warnings, second.Warnings)
	require.False(t, first.AlreadyRecorded)
	require.True(t, second.AlreadyRecorded)

	require.EqualValues(t, 1, h.paymentCount(t))
	require.EqualValues(t, 1, h.requests.calls.Load())
	require.EqualValues(t, 1, h.applications.calls.Load())
}

func TestConfirmSameTransactionFromAnotherSession(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.tuitionSession("cs_1", "pi_1", "a@x.com")
	h.tuitionSession("cs_1_retry", "pi_1", "a@x.com")

	first, err := h.svc.Confirm(ctx, "cs_1")
	require.NoError(t, err)
	second, err := h.svc.Confirm(ctx, "cs_1_retry")
	require.NoError(t, err)

	require.Equal(t, first.PaymentID, second.PaymentID)
	require.EqualValues(t, 1, h.paymentCount(t))
}

func TestConfirmApplyStudentPayment(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.applySession("cs_apply", "pi_apply")

	res, err := h.svc.Confirm(ctx, "cs_apply")
	require.NoError(t, err)
	require.Equal(t, models.PaymentTypeApplyStudent, res.Type)
	require.Empty(t, res.Warnings)

	var app models.ProfileApplication
	require.NoError(t, h.db.First(&app, "id = ?", h.profileAppID).Error)
	require.Equal(t, models.ApplicationStatusPaid, app.Status)
	require.NotNil(t, app.PaidAt)

	r := h.request(t)
	require.Equal(t, models.RequestStatusActive, r.Status)
	require.Nil(t, r.SelectedTutorEmail)
	require.Zero(t, h.requests.calls.Load())
	require.Zero(t, h.applications.calls.Load())

	var p models.Payment
	require.NoError(t, h.db.First(&p, "id = ?", res.PaymentID).Error)
	require.Equal(t, "1200.00", p.Amount.StringFixed(2))
	require.Equal(t, h.profileAppID, p.LinkedEntityID)
}

func TestConfirmWithoutMatchingApplicationIsPartial(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.tuitionSession("cs_d", "pi_d", "b@x.com")

	res, err := h.svc.Confirm(ctx, "cs_d")
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Len(t, res.Warnings, 1)
	require.Contains(t, res.Warnings[0], "not found")

	r := h.request(t)
	require.Equal(t, models.RequestStatusPaid, r.Status)
	require.Equal(t, "b@x.com", *r.SelectedTutorEmail)
	require.EqualValues(t, 1, h.paymentCount(t))

	var p models.Payment
	require.NoError(t, h.db.First(&p, "id = ?", res.PaymentID).Error)
	require.Equal(t, models.ReconciliationPartial, p.ReconciliationStatus)
	require.Equal(t, res.Warnings, p.Warnings)

	again, err := h.svc.Confirm(ctx, "cs_d")
	require.NoError(t, err)
	require.Equal(t, res.Warnings, again.Warnings)
	require.Equal(t, res.PaymentID, again.PaymentID)
}

func TestConfirmUnpaidSession(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.tuitionSession("cs_e", "pi_e", "a@x.com")
	h.verifier.sessions["cs_e"].PaymentStatus = "unpaid"

	res, err := h.svc.Confirm(ctx, "cs_e")
	require.ErrorIs(t, err, ErrPaymentNotCompleted)
	require.Nil(t, res)
	require.Zero(t, h.paymentCount(t))
	require.Zero(t, h.followUpCalls())
	require.Equal(t, models.RequestStatusActive, h.request(t).Status)
}

func TestConfirmRejectsUnclassifiableMetadata(t *testing.T) {
	cases := map[string]struct {
		metadata map[string]string
		want     error
	}{
		"no payment type":      {map[string]string{payments.MetaTutorEmail: "a@x.com"}, payments.ErrUnknownPaymentType},
		"nil metadata":         {nil, payments.ErrUnknownPaymentType},
		"foreign payment type": {map[string]string{payments.MetaPaymentType: "donation"}, payments.ErrUnknownPaymentType},
		"missing tuition id":   {map[string]string{payments.MetaPaymentType: string(models.PaymentTypeTuition), payments.MetaTutorEmail: "a@x.com", payments.MetaSubject: "Math", payments.MetaClassLevel: "5"}, payments.ErrMissingMetadata},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t)
			h.tuitionSession("cs_bad", "pi_bad", "a@x.com")
			h.verifier.sessions["cs_bad"].Metadata = tc.metadata

			_, err := h.svc.Confirm(context.Background(), "cs_bad")
			require.ErrorIs(t, err, tc.want)
			require.Zero(t, h.paymentCount(t))
			require.Zero(t, h.followUpCalls())
		})
	}
}

func TestConfirmInsertFailureSkipsFollowUps(t *testing.T) {
	h := newHarness(t)
	h.tuitionSession("cs_1", "pi_1", "a@x.com")
	h.stores.Payments = failingInsert{PaymentStore: h.stores.Payments}
	svc := NewConfirmationService(h.verifier, h.stores, nil)

	_, err := svc.Confirm(context.Background(), "cs_1")
	require.ErrorIs(t, err, ErrRecordPayment)
	require.Zero(t, h.followUpCalls())
	require.Equal(t, models.RequestStatusActive, h.request(t).Status)
}

func TestConfirmPropagatesProviderErrors(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.Confirm(context.Background(), "cs_missing")
	require.ErrorIs(t, err, payments.ErrSessionNotFound)

	h.verifier.err = payments.ErrProviderUnavailable
	_, err = h.svc.Confirm(context.Background(), "cs_any")
	require.ErrorIs(t, err, payments.ErrProviderUnavailable)

	_, err = h.svc.Confirm(context.Background(), "   ")
	require.ErrorIs(t, err, ErrInvalidSessionRef)
	require.Zero(t, h.paymentCount(t))
}

func TestConcurrentConfirmationsRecordOnePayment(t *testing.T) {
	h := newHarness(t)
	h.tuitionSession("cs_1", "pi_1", "a@x.com")

	const workers = 8
	results := make([]*ConfirmationResult, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = h.svc.Confirm(context.Background(), "cs_1")
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, results[0].PaymentID, results[i].PaymentID)
	}
	require.EqualValues(t, 1, h.paymentCount(t))
	require.EqualValues(t, 1, h.requests.calls.Load())
}

func TestConfirmAmountFidelity(t *testing.T) {
	cases := []struct {
		minor    int64
		currency string
		want     string
	}{
		{0, "usd", "0.00"},
		{250000, "usd", "2500.00"},
		{999999999, "usd", "9999999.99"},
		{4500, "jpy", "4500.00"},
	}
	for _, tc := range cases {
		h := newHarness(t)
		h.tuitionSession("cs_amt", "pi_amt", "a@x.com")
		h.verifier.sessions["cs_amt"].AmountTotal = tc.minor
		h.verifier.sessions["cs_amt"].Currency = tc.currency

		res, err := h.svc.Confirm(context.Background(), "cs_amt")
		require.NoError(t, err)

		var p models.Payment
		require.NoError(t, h.db.First(&p, "id = ?", res.PaymentID).Error)
		require.Equal(t, tc.want, p.Amount.StringFixed(2))
	}
}

func TestReconcilePaymentRepairsPartialPayment(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.tuitionSession("cs_d", "pi_d", "b@x.com")

	res, err := h.svc.Confirm(ctx, "cs_d")
	require.NoError(t, err)
	require.NotEmpty(t, res.Warnings)

	late := models.TutorApplication{
		TuitionRequestID: h.requestID,
		TutorEmail:       "b@x.com",
		Status:           models.ApplicationStatusPending,
		AppliedAt:        time.Now(),
	}
	require.NoError(t, h.db.Create(&late).Error)

	fixed, err := h.svc.ReconcilePayment(ctx, res.PaymentID)
	require.NoError(t, err)
	require.Empty(t, fixed.Warnings)
	require.Equal(t, res.PaymentID, fixed.PaymentID)

	var app models.TutorApplication
	require.NoError(t, h.db.First(&app, "id = ?", late.ID).Error)
	require.Equal(t, models.ApplicationStatusApproved, app.Status)

	var p models.Payment
	require.NoError(t, h.db.First(&p, "id = ?", res.PaymentID).Error)
	require.Equal(t, models.ReconciliationComplete, p.ReconciliationStatus)
	require.Empty(t, p.Warnings)
	require.EqualValues(t, 1, h.paymentCount(t))

	again, err := h.svc.Confirm(ctx, "cs_d")
	require.NoError(t, err)
	require.Empty(t, again.Warnings)
}

func TestConfirmUsesResultCache(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.tuitionSession("cs_1", "pi_1", "a@x.com")
	cache := &memoryCache{entries: map[string]ConfirmationResult{}}
	svc := NewConfirmationService(h.verifier, h.stores, cache)

	first, err := svc.Confirm(ctx, "cs_1")
	require.NoError(t, err)
	second, err := svc.Confirm(ctx, "cs_1")
	require.NoError(t, err)

	require.Equal(t, first.PaymentID, second.PaymentID)
	require.True(t, second.AlreadyRecorded)
	require.Equal(t, 1, h.verifier.calls)

	_, err = svc.ReconcilePayment(ctx, first.PaymentID)
	require.NoError(t, err)
	_, ok := cache.Get(ctx, "cs_1")
	require.False(t, ok)

	require.Nil(t, NewResultCache(nil, time.Minute))
}
