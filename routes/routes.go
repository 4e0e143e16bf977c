package routes

import (
	"github.com/anjiri1684/tutor_bazar/handlers"
	"github.com/gofiber/fiber/v2"
)

// Register mounts every API area on app.
func Register(app *fiber.App, payments *handlers.PaymentHandler) {
	AuthRoutes(app)
	ProfileRoutes(app)
	TuitionRoutes(app)
	TutorRoutes(app)
	PaymentRoutes(app, payments)
	AdminRoutes(app, payments)
	UploadRoutes(app)
}
