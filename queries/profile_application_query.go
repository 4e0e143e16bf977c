package queries

import (
	"context"
	"time"

	"github.com/anjiri1684/tutor_bazar/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProfileApplicationQueries struct {
	DB *gorm.DB
}

func (q *ProfileApplicationQueries) Create(ctx context.Context, a *models.ProfileApplication) error {
	return q.DB.WithContext(ctx).Create(a).Error
}

func (q *ProfileApplicationQueries) FindByID(ctx context.Context, id uuid.UUID) (*models.ProfileApplication, error) {
	var a models.ProfileApplication
	if err := q.DB.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (q *ProfileApplicationQueries) ListByTutor(ctx context.Context, tutorEmail string) ([]models.ProfileApplication, error) {
	var apps []models.ProfileApplication
	err := q.DB.WithContext(ctx).Where("tutor_email = ?", tutorEmail).Order("applied_at desc").Find(&apps).Error
	return apps, err
}

func (q *ProfileApplicationQueries) ListByStudent(ctx context.Context, studentEmail string) ([]models.ProfileApplication, error) {
	var apps []models.ProfileApplication
	err := q.DB.WithContext(ctx).Where("student_email = ?", studentEmail).Order("applied_at desc").Find(&apps).Error
	return apps, err
}

func (q *ProfileApplicationQueries) SetStatus(ctx context.Context, id uuid.UUID, status string) (int64, error) {
	res := q.DB.WithContext(ctx).Model(&models.ProfileApplication{}).Where("id = ?", id).Update("status", status)
	return res.RowsAffected, res.Error
}

func (q *ProfileApplicationQueries) MarkPaid(ctx context.Context, id uuid.UUID, at time.Time) (int64, error) {
	res := q.DB.WithContext(ctx).Model(&models.ProfileApplication{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":  models.ApplicationStatusPaid,
		"paid_at": at,
	})
	return res.RowsAffected, res.Error
}
