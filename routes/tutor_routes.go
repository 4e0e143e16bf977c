package routes

import (
	"github.com/anjiri1684/tutor_bazar/handlers"
	"github.com/anjiri1684/tutor_bazar/middleware"
	"github.com/gofiber/fiber/v2"
)

func TutorRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	profiles := api.Group("/tutor-profiles")
	profiles.Get("", handlers.ListTutorProfiles)
	profiles.Get("/latest", handlers.LatestTutorProfiles)
	profiles.Get("/exists", handlers.TutorProfileExists)
	profiles.Get("/:id", middleware.Protected(), handlers.GetTutorProfile)
	profiles.Post("", middleware.Protected(), middleware.TutorRequired(), handlers.CreateTutorProfile)

	applications := api.Group("/profile-applications", middleware.Protected())
	applications.Post("", handlers.ApplyToTutorProfile)
	applications.Get("", handlers.ListProfileApplications)
	applications.Patch("/:id/accept", middleware.TutorRequired(), handlers.AcceptProfileApplication)
	applications.Patch("/:id/reject", middleware.TutorRequired(), handlers.RejectProfileApplication)
}
