package handlers

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/anjiri1684/tutor_bazar/database"
	"github.com/anjiri1684/tutor_bazar/models"
	"github.com/anjiri1684/tutor_bazar/queries"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DashboardAnalyticsResponse struct {
	TotalStudents       int64            `json:"total_students"`
	TotalTutors         int64            `json:"total_tutors"`
	ActiveTutorProfiles int64            `json:"active_tutor_profiles"`
	OpenTuitionRequests int64            `json:"open_tuition_requests"`
	TotalRevenue        decimal.Decimal  `json:"total_revenue"`
	UnreconciledCount   int64            `json:"unreconciled_payments"`
	RecentPayments      []models.Payment `json:"recent_payments"`
}

func GetDashboardAnalytics(c *fiber.Ctx) error {
	var response DashboardAnalyticsResponse

	database.DB.Model(&models.User{}).Where("role = ?", models.RoleStudent).Count(&response.TotalStudents)
	database.DB.Model(&models.User{}).Where("role = ?", models.RoleTutor).Count(&response.TotalTutors)
	database.DB.Model(&models.TutorProfile{}).Where("status = ?", models.ProfileStatusActive).Count(&response.ActiveTutorProfiles)
	database.DB.Model(&models.TuitionRequest{}).Where("status = ?", models.RequestStatusActive).Count(&response.OpenTuitionRequests)

	var paid []models.Payment
	database.DB.Select("amount").Where("status = ?", models.PaymentStatusPaid).Find(&paid)
	response.TotalRevenue = decimal.Zero
	for _, p := range paid {
		response.TotalRevenue = response.TotalRevenue.Add(p.Amount)
	}

	response.UnreconciledCount, _ = (&queries.PaymentQueries{DB: database.DB}).CountUnreconciled(c.UserContext(), time.Now().Add(-models.ReconciliationStallAfter))
	database.DB.Order("recorded_at desc").Limit(5).Find(&response.RecentPayments)

	return c.JSON(response)
}

func GetAllUsers(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	search := strings.ToLower(strings.TrimSpace(c.Query("search")))
	offset := (page - 1) * limit

	var users []models.User
	var totalUsers int64

	query := database.DB.Model(&models.User{})
	if search != "" {
		searchTerm := "%" + search + "%"
		query = query.Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?", searchTerm, searchTerm)
	}

	query.Count(&totalUsers)
	query.Order("created_at desc").Offset(offset).Limit(limit).Find(&users)

	return c.JSON(fiber.Map{
		"data": users,
		"meta": fiber.Map{
			"total_users":  totalUsers,
			"total_pages":  int(math.Ceil(float64(totalUsers) / float64(limit))),
			"current_page": page,
		},
	})
}

func ToggleUserStatus(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID format"})
	}
	type Request struct {
		IsActive bool `json:"is_active"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	res := database.DB.Model(&models.User{}).Where("id = ?", userID).Update("is_active", req.IsActive)
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update user"})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	return c.JSON(fiber.Map{"message": "User status updated successfully."})
}

func UpdateUserRole(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID format"})
	}
	type Request struct {
		Role string `json:"role" validate:"required,oneof=student tutor admin"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	res := database.DB.Model(&models.User{}).Where("id = ?", userID).Update("role", req.Role)
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update role"})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	return c.JSON(fiber.Map{"message": "User role updated successfully.", "role": req.Role})
}

// GetUserRole is public: the client asks for it right after login to pick a dashboard.
func GetUserRole(c *fiber.Ctx) error {
	var user models.User
	if err := database.DB.Select("role").Where("email = ?", c.Params("email")).First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	return c.JSON(fiber.Map{"role": user.Role})
}
