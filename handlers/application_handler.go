package handlers

import (
	"errors"
	"log/slog"
	"time"

	"github.com/anjiri1684/tutor_bazar/database"
	"github.com/anjiri1684/tutor_bazar/middleware"
	"github.com/anjiri1684/tutor_bazar/models"
	"github.com/anjiri1684/tutor_bazar/queries"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ApplyTutorRequest struct {
	TuitionRequestID string `json:"tuition_request_id" validate:"required,uuid"`
	TutorName        string `json:"tutor_name" validate:"required"`
	Qualifications   string `json:"qualifications"`
	ExpectedSalary   string `json:"expected_salary"`
}

// ApplyToTuitionRequest records the calling tutor's bid on an active request.
func ApplyToTuitionRequest(c *fiber.Ctx) error {
	var req ApplyTutorRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	ctx := c.UserContext()
	request, err := (&queries.TuitionRequestQueries{DB: database.DB}).FindByID(ctx, uuid.MustParse(req.TuitionRequestID))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tuition request not found"})
	}
	if request.Status != models.RequestStatusActive {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Tuition request is not open for applications"})
	}

	app := models.TutorApplication{
		TuitionRequestID: request.ID,
		TutorEmail:       middleware.CallerEmail(c),
		TutorName:        req.TutorName,
		StudentEmail:     request.StudentEmail,
		Qualifications:   req.Qualifications,
		ExpectedSalary:   req.ExpectedSalary,
		Status:           models.ApplicationStatusPending,
		AppliedAt:        time.Now(),
	}
	if err := (&queries.TutorApplicationQueries{DB: database.DB}).Create(ctx, &app); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Already applied!"})
		}
		slog.Error("Failed to create tutor application", "request_id", request.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to apply"})
	}
	return c.Status(fiber.StatusCreated).JSON(app)
}

// ListTutorApplications serves ?studentEmail= or ?tutorEmail=.
func ListTutorApplications(c *fiber.Ctx) error {
	q := &queries.TutorApplicationQueries{DB: database.DB}
	var (
		apps []models.TutorApplication
		err  error
	)
	switch {
	case c.Query("studentEmail") != "":
		apps, err = q.ListByStudent(c.UserContext(), c.Query("studentEmail"))
	case c.Query("tutorEmail") != "":
		apps, err = q.ListByTutor(c.UserContext(), c.Query("tutorEmail"))
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Please provide tutorEmail or studentEmail in query"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch applications"})
	}
	return c.JSON(apps)
}

type ApplyStudentRequest struct {
	TutorProfileID string `json:"tutor_profile_id" validate:"required,uuid"`
	StudentName    string `json:"student_name" validate:"required"`
	Message        string `json:"message"`
}

// ApplyToTutorProfile records the calling student's request to study with a tutor.
func ApplyToTutorProfile(c *fiber.Ctx) error {
	var req ApplyStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	ctx := c.UserContext()
	profile, err := (&queries.TutorProfileQueries{DB: database.DB}).FindByID(ctx, uuid.MustParse(req.TutorProfileID))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tutor profile not found"})
	}

	app := models.ProfileApplication{
		StudentEmail:   middleware.CallerEmail(c),
		StudentName:    req.StudentName,
		TutorProfileID: profile.ID,
		TutorEmail:     profile.TutorEmail,
		Message:        req.Message,
		Status:         models.ApplicationStatusPending,
		AppliedAt:      time.Now(),
	}
	if err := (&queries.ProfileApplicationQueries{DB: database.DB}).Create(ctx, &app); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Already applied!"})
		}
		slog.Error("Failed to create profile application", "profile_id", profile.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to apply"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "message": "Request sent!", "data": app})
}

// ListProfileApplications serves ?tutorEmail= or ?studentEmail=.
func ListProfileApplications(c *fiber.Ctx) error {
	q := &queries.ProfileApplicationQueries{DB: database.DB}
	var (
		apps []models.ProfileApplication
		err  error
	)
	switch {
	case c.Query("tutorEmail") != "":
		apps, err = q.ListByTutor(c.UserContext(), c.Query("tutorEmail"))
	case c.Query("studentEmail") != "":
		apps, err = q.ListByStudent(c.UserContext(), c.Query("studentEmail"))
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Please provide tutorEmail or studentEmail in query"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch applications"})
	}
	return c.JSON(apps)
}

// AcceptProfileApplication approves a student and marks the tutor's profile approved.
func AcceptProfileApplication(c *fiber.Ctx) error {
	return decideProfileApplication(c, models.ApplicationStatusApproved, models.ProfileStatusApproved)
}

// RejectProfileApplication rejects a student and puts the tutor's profile back to active.
func RejectProfileApplication(c *fiber.Ctx) error {
	return decideProfileApplication(c, models.ApplicationStatusRejected, models.ProfileStatusActive)
}

func decideProfileApplication(c *fiber.Ctx, appStatus, profileStatus string) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid application ID format"})
	}

	ctx := c.UserContext()
	app, err := (&queries.ProfileApplicationQueries{DB: database.DB}).FindByID(ctx, id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Applied student not found"})
	}
	if app.TutorEmail != middleware.CallerEmail(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not your application"})
	}
	if app.Status == models.ApplicationStatusPaid {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Application is already paid"})
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := (&queries.ProfileApplicationQueries{DB: tx}).SetStatus(ctx, app.ID, appStatus); err != nil {
			return err
		}
		_, err := (&queries.TutorProfileQueries{DB: tx}).SetStatus(ctx, app.TutorProfileID, profileStatus)
		return err
	})
	if err != nil {
		slog.Error("Failed to update application decision", "application_id", app.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update application"})
	}

	return c.JSON(fiber.Map{
		"success":        true,
		"message":        "Application updated successfully",
		"status":         appStatus,
		"profile_status": profileStatus,
	})
}
