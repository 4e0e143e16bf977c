package routes

import (
	"github.com/anjiri1684/tutor_bazar/handlers"
	"github.com/anjiri1684/tutor_bazar/middleware"
	"github.com/gofiber/fiber/v2"
)

func ProfileRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	profile := api.Group("/profile/me", middleware.Protected())
	profile.Get("", handlers.GetProfile)
	profile.Patch("", handlers.UpdateProfile)
}
