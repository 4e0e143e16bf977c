package routes

import (
	"github.com/anjiri1684/tutor_bazar/handlers"
	"github.com/anjiri1684/tutor_bazar/middleware"
	"github.com/gofiber/fiber/v2"
)

func AdminRoutes(app *fiber.App, h *handlers.PaymentHandler) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())

	admin.Get("/dashboard-analytics", handlers.GetDashboardAnalytics)

	users := admin.Group("/users")
	users.Get("", handlers.GetAllUsers)
	users.Put("/:userId/status", handlers.ToggleUserStatus)
	users.Patch("/:userId/role", handlers.UpdateUserRole)

	requests := admin.Group("/tuition-requests")
	requests.Patch("/:id/accept", handlers.AcceptTuitionRequest)
	requests.Patch("/:id/reject", handlers.RejectTuitionRequest)

	profiles := admin.Group("/tutor-profiles")
	profiles.Patch("/:id/accept", handlers.AcceptTutorProfile)
	profiles.Patch("/:id/reject", handlers.RejectTutorProfile)

	payments := admin.Group("/payments")
	payments.Get("/unreconciled", h.AdminListUnreconciled)
	payments.Post("/:paymentId/reconcile", h.AdminReconcilePayment)
}
