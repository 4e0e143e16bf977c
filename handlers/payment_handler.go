package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	config "github.com/anjiri1684/tutor_bazar/configs"
	"github.com/anjiri1684/tutor_bazar/database"
	"github.com/anjiri1684/tutor_bazar/middleware"
	"github.com/anjiri1684/tutor_bazar/models"
	"github.com/anjiri1684/tutor_bazar/payments"
	"github.com/anjiri1684/tutor_bazar/queries"
	"github.com/anjiri1684/tutor_bazar/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Confirmer is the part of the confirmation engine the HTTP layer drives.
type Confirmer interface {
	Confirm(ctx context.Context, sessionRef string) (*services.ConfirmationResult, error)
	ReconcilePayment(ctx context.Context, paymentID uuid.UUID) (*services.ConfirmationResult, error)
}

type CheckoutCreator interface {
	CreateSession(ctx context.Context, req payments.CheckoutRequest) (*payments.CheckoutSession, error)
}

type PaymentHandler struct {
	confirmations Confirmer
	checkout      CheckoutCreator
	settings      config.Settings
}

func NewPaymentHandler(confirmations Confirmer, checkout CheckoutCreator, settings config.Settings) *PaymentHandler {
	return &PaymentHandler{confirmations: confirmations, checkout: checkout, settings: settings}
}

type ConfirmPaymentRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
}

// ConfirmPayment settles a checkout session after the provider redirect.
// Repeated calls for the same transaction return the original payload.
func (h *PaymentHandler) ConfirmPayment(c *fiber.Ctx) error {
	var req ConfirmPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	res, err := h.confirmations.Confirm(c.UserContext(), req.SessionID)
	if err != nil {
		return paymentError(c, err)
	}
	return c.JSON(res)
}

func paymentError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrInvalidSessionRef):
		status = fiber.StatusBadRequest
	case errors.Is(err, payments.ErrProviderUnavailable):
		status = fiber.StatusServiceUnavailable
	case errors.Is(err, payments.ErrSessionNotFound), errors.Is(err, queries.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrPaymentNotCompleted):
		status = fiber.StatusPaymentRequired
	case errors.Is(err, payments.ErrUnknownPaymentType), errors.Is(err, payments.ErrMissingMetadata):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrRecordPayment):
		status = fiber.StatusInternalServerError
	default:
		slog.Error("Unexpected payment error", "path", c.Path(), "error", err)
	}
	return fiber.NewError(status, err.Error())
}

type CheckoutSessionRequest struct {
	PaymentType models.PaymentType `json:"paymentType" validate:"required,oneof=tuitionPayment applyStudentPayment"`
	TuitionID   string             `json:"tuitionId" validate:"omitempty,uuid"`
	ApplyID     string             `json:"applyId" validate:"omitempty,uuid"`
	TutorEmail  string             `json:"tutorEmail" validate:"omitempty,email"`
	Subject     string             `json:"subject"`
	ClassLevel  string             `json:"classLevel"`
	Image       string             `json:"image" validate:"omitempty,url"`
}

// CreateCheckoutSession opens a provider checkout for the caller. Price,
// subject and the tutor are taken from the stored entities, not the body.
func (h *PaymentHandler) CreateCheckoutSession(c *fiber.Ctx) error {
	var req CheckoutSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	ctx := c.UserContext()
	caller := middleware.CallerEmail(c)
	checkout := payments.CheckoutRequest{
		ImageURL:   req.Image,
		Currency:   h.settings.CheckoutCurrency,
		PayerEmail: caller,
		Metadata:   map[string]string{payments.MetaPaymentType: string(req.PaymentType)},
	}

	switch req.PaymentType {
	case models.PaymentTypeTuition:
		if req.TuitionID == "" || req.TutorEmail == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "tuitionId and tutorEmail are required"})
		}
		requestID := uuid.MustParse(req.TuitionID)
		request, err := (&queries.TuitionRequestQueries{DB: database.DB}).FindByID(ctx, requestID)
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tuition request not found"})
		}
		if request.StudentEmail != caller {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not your tuition request"})
		}
		if request.Status != models.RequestStatusActive {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": fmt.Sprintf("Tuition request is %s", request.Status)})
		}
		if _, err := (&queries.TutorApplicationQueries{DB: database.DB}).Find(ctx, requestID, req.TutorEmail); err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tutor has not applied to this request"})
		}
		checkout.ProductName = fmt.Sprintf("%s Tuition Fee", request.Subject)
		checkout.Price = request.Budget
		checkout.Metadata[payments.MetaTuitionID] = request.ID.String()
		checkout.Metadata[payments.MetaTutorEmail] = req.TutorEmail
		checkout.Metadata[payments.MetaSubject] = request.Subject
		checkout.Metadata[payments.MetaClassLevel] = request.ClassLevel
		checkout.CancelURL = fmt.Sprintf("%s/tuition/%s", h.settings.ClientDomain, request.ID)

	case models.PaymentTypeApplyStudent:
		if req.ApplyID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "applyId is required"})
		}
		app, err := (&queries.ProfileApplicationQueries{DB: database.DB}).FindByID(ctx, uuid.MustParse(req.ApplyID))
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Application not found"})
		}
		if app.StudentEmail != caller {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not your application"})
		}
		if app.Status != models.ApplicationStatusApproved {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": fmt.Sprintf("Application is %s", app.Status)})
		}
		profile, err := (&queries.TutorProfileQueries{DB: database.DB}).FindByID(ctx, app.TutorProfileID)
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tutor profile not found"})
		}
		subject := firstNonEmpty(req.Subject, profile.Subjects)
		classLevel := firstNonEmpty(req.ClassLevel, profile.ClassLevels)
		checkout.ProductName = fmt.Sprintf("%s Tuition Fee", subject)
		checkout.Price = profile.Fee
		checkout.Metadata[payments.MetaApplyID] = app.ID.String()
		checkout.Metadata[payments.MetaTutorEmail] = app.TutorEmail
		checkout.Metadata[payments.MetaSubject] = subject
		checkout.Metadata[payments.MetaClassLevel] = classLevel
		checkout.CancelURL = fmt.Sprintf("%s/tutors/%s", h.settings.ClientDomain, profile.ID)
	}

	if checkout.Price.LessThanOrEqual(decimal.Zero) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Nothing to pay"})
	}
	checkout.SuccessURL = h.settings.ClientDomain + "/payment-success?session_id={CHECKOUT_SESSION_ID}"

	session, err := h.checkout.CreateSession(ctx, checkout)
	if err != nil {
		slog.Error("🔥 Checkout session creation failed", "payer", caller, "type", req.PaymentType, "error", err)
		return paymentError(c, err)
	}
	return c.JSON(fiber.Map{"url": session.URL})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// PaymentHistory lists the caller's payments as payer, newest first.
func (h *PaymentHandler) PaymentHistory(c *fiber.Ctx) error {
	list, err := (&queries.PaymentQueries{DB: database.DB}).ListByPayer(c.UserContext(), middleware.CallerEmail(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load payment history"})
	}
	return c.JSON(list)
}

// TutorIncome sums the paid payments whose payee is the calling tutor.
func (h *PaymentHandler) TutorIncome(c *fiber.Ctx) error {
	list, err := (&queries.PaymentQueries{DB: database.DB}).ListByPayee(c.UserContext(), middleware.CallerEmail(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load income"})
	}

	total := decimal.Zero
	for _, p := range list {
		total = total.Add(p.Amount)
	}
	return c.JSON(fiber.Map{
		"total_income": total.StringFixed(2),
		"currency":     h.settings.CheckoutCurrency,
		"payments":     list,
	})
}

func (h *PaymentHandler) AdminListUnreconciled(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	list, err := (&queries.PaymentQueries{DB: database.DB}).ListUnreconciled(c.UserContext(), time.Now().Add(-models.ReconciliationStallAfter), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load payments"})
	}
	return c.JSON(list)
}

// AdminReconcilePayment re-runs the follow-up updates of a recorded payment.
func (h *PaymentHandler) AdminReconcilePayment(c *fiber.Ctx) error {
	paymentID, err := uuid.Parse(c.Params("paymentId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment ID format"})
	}

	res, err := h.confirmations.ReconcilePayment(c.UserContext(), paymentID)
	if err != nil {
		return paymentError(c, err)
	}
	return c.JSON(res)
}
