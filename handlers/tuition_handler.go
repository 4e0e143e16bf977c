package handlers

import (
	"errors"
	"log/slog"

	"github.com/anjiri1684/tutor_bazar/database"
	"github.com/anjiri1684/tutor_bazar/middleware"
	"github.com/anjiri1684/tutor_bazar/models"
	"github.com/anjiri1684/tutor_bazar/queries"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const latestFeedSize = 6

type CreateTuitionRequest struct {
	StudentName string          `json:"student_name" validate:"required"`
	Subject     string          `json:"subject" validate:"required"`
	ClassLevel  string          `json:"class_level" validate:"required"`
	Location    string          `json:"location"`
	Budget      decimal.Decimal `json:"budget"`
	DaysPerWeek int             `json:"days_per_week" validate:"gte=0,lte=7"`
}

// CreateTuitionRequestHandler posts a request for the calling student. It stays
// pending until an admin accepts it.
func CreateTuitionRequestHandler(c *fiber.Ctx) error {
	var req CreateTuitionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if !req.Budget.IsPositive() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Budget must be positive"})
	}

	request := models.TuitionRequest{
		StudentEmail: middleware.CallerEmail(c),
		StudentName:  req.StudentName,
		Subject:      req.Subject,
		ClassLevel:   req.ClassLevel,
		Location:     req.Location,
		Budget:       req.Budget,
		DaysPerWeek:  req.DaysPerWeek,
		Status:       models.RequestStatusPending,
	}
	if err := (&queries.TuitionRequestQueries{DB: database.DB}).Create(c.UserContext(), &request); err != nil {
		slog.Error("Failed to create tuition request", "student", request.StudentEmail, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create tuition request"})
	}
	return c.Status(fiber.StatusCreated).JSON(request)
}

// ListTuitionRequests serves ?role=public|student|admin&email=&search=&sort=low|high.
// Public callers only see active requests; admin sees everything.
func ListTuitionRequests(c *fiber.Ctx) error {
	filter := queries.TuitionRequestFilter{
		Search: c.Query("search"),
		Sort:   c.Query("sort"),
	}
	switch c.Query("role", "public") {
	case "student":
		email := c.Query("email")
		if email == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "email is required for role=student"})
		}
		filter.StudentEmail = email
	case "admin":
	default:
		filter.Status = models.RequestStatusActive
	}

	list, err := (&queries.TuitionRequestQueries{DB: database.DB}).List(c.UserContext(), filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch tuition requests"})
	}
	return c.JSON(list)
}

func LatestTuitionRequests(c *fiber.Ctx) error {
	list, err := (&queries.TuitionRequestQueries{DB: database.DB}).List(c.UserContext(), queries.TuitionRequestFilter{
		Status: models.RequestStatusActive,
		Limit:  latestFeedSize,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch latest tuition requests"})
	}
	return c.JSON(list)
}

func GetTuitionRequest(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid tuition request ID format"})
	}
	request, err := (&queries.TuitionRequestQueries{DB: database.DB}).FindByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, queries.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tuition request not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(request)
}

func AcceptTuitionRequest(c *fiber.Ctx) error {
	return setTuitionRequestStatus(c, models.RequestStatusActive, "Post accepted successfully")
}

func RejectTuitionRequest(c *fiber.Ctx) error {
	return setTuitionRequestStatus(c, models.RequestStatusBlocked, "Post rejected successfully")
}

func setTuitionRequestStatus(c *fiber.Ctx, status, message string) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid tuition request ID format"})
	}

	n, err := (&queries.TuitionRequestQueries{DB: database.DB}).SetStatus(c.UserContext(), id, status)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update tuition request"})
	}
	if n == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tuition request not found"})
	}
	return c.JSON(fiber.Map{"success": true, "message": message, "status": status})
}
