package routes

import (
	"github.com/anjiri1684/tutor_bazar/handlers"
	"github.com/anjiri1684/tutor_bazar/middleware"
	"github.com/gofiber/fiber/v2"
)

func TuitionRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	requests := api.Group("/tuition-requests")
	requests.Get("", handlers.ListTuitionRequests)
	requests.Get("/latest", handlers.LatestTuitionRequests)
	requests.Get("/:id", handlers.GetTuitionRequest)
	requests.Post("", middleware.Protected(), handlers.CreateTuitionRequestHandler)

	applications := api.Group("/tutor-applications", middleware.Protected())
	applications.Post("", middleware.TutorRequired(), handlers.ApplyToTuitionRequest)
	applications.Get("", handlers.ListTutorApplications)
}
