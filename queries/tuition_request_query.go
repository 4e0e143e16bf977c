package queries

import (
	"context"
	"strings"
	"time"

	"github.com/anjiri1684/tutor_bazar/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TuitionRequestQueries struct {
	DB *gorm.DB
}

type TuitionRequestFilter struct {
	StudentEmail string
	Status       string
	Search       string
	// Sort is "low" or "high" by budget; anything else orders newest first.
	Sort  string
	Limit int
}

func (q *TuitionRequestQueries) Create(ctx context.Context, r *models.TuitionRequest) error {
	return q.DB.WithContext(ctx).Create(r).Error
}

func (q *TuitionRequestQueries) FindByID(ctx context.Context, id uuid.UUID) (*models.TuitionRequest, error) {
	var r models.TuitionRequest
	if err := q.DB.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

func (q *TuitionRequestQueries) List(ctx context.Context, f TuitionRequestFilter) ([]models.TuitionRequest, error) {
	tx := q.DB.WithContext(ctx).Model(&models.TuitionRequest{})
	if f.StudentEmail != "" {
		tx = tx.Where("student_email = ?", f.StudentEmail)
	}
	if f.Status != "" {
		tx = tx.Where("status = ?", f.Status)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		tx = tx.Where("LOWER(subject) LIKE ? OR LOWER(class_level) LIKE ?", like, like)
	}
	switch f.Sort {
	case "low":
		tx = tx.Order("budget asc")
	case "high":
		tx = tx.Order("budget desc")
	default:
		tx = tx.Order("created_at desc")
	}
	if f.Limit > 0 {
		tx = tx.Limit(f.Limit)
	}

	var requests []models.TuitionRequest
	err := tx.Find(&requests).Error
	return requests, err
}

func (q *TuitionRequestQueries) SetStatus(ctx context.Context, id uuid.UUID, status string) (int64, error) {
	res := q.DB.WithContext(ctx).Model(&models.TuitionRequest{}).Where("id = ?", id).Update("status", status)
	return res.RowsAffected, res.Error
}

// MarkPaid records the selected tutor on a paid request. Re-applying it is harmless.
func (q *TuitionRequestQueries) MarkPaid(ctx context.Context, id uuid.UUID, tutorEmail string, at time.Time) (int64, error) {
	res := q.DB.WithContext(ctx).Model(&models.TuitionRequest{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":               models.RequestStatusPaid,
		"selected_tutor_email": tutorEmail,
		"paid_at":              at,
	})
	return res.RowsAffected, res.Error
}
