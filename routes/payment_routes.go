package routes

import (
	"github.com/anjiri1684/tutor_bazar/handlers"
	"github.com/anjiri1684/tutor_bazar/middleware"
	"github.com/gofiber/fiber/v2"
)

func PaymentRoutes(app *fiber.App, h *handlers.PaymentHandler) {
	api := app.Group("/api/v1")

	// Reached from the provider's success redirect; the session id is the only credential.
	api.Post("/payments/confirm", h.ConfirmPayment)

	payments := api.Group("/payments", middleware.Protected())
	payments.Post("/checkout-session", h.CreateCheckoutSession)
	payments.Get("/history", h.PaymentHistory)

	api.Get("/tutor/income", middleware.Protected(), middleware.TutorRequired(), h.TutorIncome)
}
