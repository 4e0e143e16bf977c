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

type CreateTutorProfileRequest struct {
	Name        string          `json:"name" validate:"required"`
	Subjects    string          `json:"subjects" validate:"required"`
	ClassLevels string          `json:"class_levels" validate:"required"`
	Experience  string          `json:"experience"`
	Fee         decimal.Decimal `json:"fee"`
	PhotoURL    *string         `json:"photo_url" validate:"omitempty,url"`
}

func CreateTutorProfile(c *fiber.Ctx) error {
	var req CreateTutorProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if req.Fee.IsNegative() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Fee cannot be negative"})
	}

	profile := models.TutorProfile{
		TutorEmail:  middleware.CallerEmail(c),
		Name:        req.Name,
		Subjects:    req.Subjects,
		ClassLevels: req.ClassLevels,
		Experience:  req.Experience,
		Fee:         req.Fee,
		PhotoURL:    req.PhotoURL,
		Status:      models.ProfileStatusPending,
	}
	if err := (&queries.TutorProfileQueries{DB: database.DB}).Create(c.UserContext(), &profile); err != nil {
		slog.Error("Failed to create tutor profile", "tutor", profile.TutorEmail, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create tutor profile"})
	}
	return c.Status(fiber.StatusCreated).JSON(profile)
}

// ListTutorProfiles serves ?role=public|tutor|admin&email=.
func ListTutorProfiles(c *fiber.Ctx) error {
	q := &queries.TutorProfileQueries{DB: database.DB}
	var (
		profiles []models.TutorProfile
		err      error
	)
	switch c.Query("role", "public") {
	case "tutor":
		email := c.Query("email")
		if email == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "email is required for role=tutor"})
		}
		profiles, err = q.ListByTutor(c.UserContext(), email)
	case "admin":
		profiles, err = q.ListByStatus(c.UserContext(), "", 0)
	default:
		profiles, err = q.ListByStatus(c.UserContext(), models.ProfileStatusActive, 0)
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch tutor profiles"})
	}
	return c.JSON(profiles)
}

func LatestTutorProfiles(c *fiber.Ctx) error {
	profiles, err := (&queries.TutorProfileQueries{DB: database.DB}).ListByStatus(c.UserContext(), models.ProfileStatusActive, latestFeedSize)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch latest tutor profiles"})
	}
	return c.JSON(profiles)
}

func GetTutorProfile(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid profile ID format"})
	}
	profile, err := (&queries.TutorProfileQueries{DB: database.DB}).FindByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, queries.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tutor profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(profile)
}

func TutorProfileExists(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"exists": false})
	}
	exists, err := (&queries.TutorProfileQueries{DB: database.DB}).ExistsForEmail(c.UserContext(), email)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(fiber.Map{"exists": exists})
}

func AcceptTutorProfile(c *fiber.Ctx) error {
	return setTutorProfileStatus(c, models.ProfileStatusActive)
}

func RejectTutorProfile(c *fiber.Ctx) error {
	return setTutorProfileStatus(c, models.ProfileStatusBlocked)
}

func setTutorProfileStatus(c *fiber.Ctx, status string) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid profile ID format"})
	}
	n, err := (&queries.TutorProfileQueries{DB: database.DB}).SetStatus(c.UserContext(), id, status)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update tutor profile"})
	}
	if n == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tutor profile not found"})
	}
	return c.JSON(fiber.Map{"success": true, "status": status})
}
