package queries

import (
	"context"
	"time"

	"github.com/anjiri1684/tutor_bazar/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TutorApplicationQueries struct {
	DB *gorm.DB
}

// Create fails with gorm.ErrDuplicatedKey when the tutor already applied to the request.
func (q *TutorApplicationQueries) Create(ctx context.Context, a *models.TutorApplication) error {
	return q.DB.WithContext(ctx).Create(a).Error
}

func (q *TutorApplicationQueries) Find(ctx context.Context, requestID uuid.UUID, tutorEmail string) (*models.TutorApplication, error) {
	var a models.TutorApplication
	err := q.DB.WithContext(ctx).
		Where("tuition_request_id = ? AND tutor_email = ?", requestID, tutorEmail).
		First(&a).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (q *TutorApplicationQueries) ListByStudent(ctx context.Context, studentEmail string) ([]models.TutorApplication, error) {
	var apps []models.TutorApplication
	err := q.DB.WithContext(ctx).Where("student_email = ?", studentEmail).Order("applied_at desc").Find(&apps).Error
	return apps, err
}

func (q *TutorApplicationQueries) ListByTutor(ctx context.Context, tutorEmail string) ([]models.TutorApplication, error) {
	var apps []models.TutorApplication
	err := q.DB.WithContext(ctx).Where("tutor_email = ?", tutorEmail).Order("applied_at desc").Find(&apps).Error
	return apps, err
}

func (q *TutorApplicationQueries) Approve(ctx context.Context, requestID uuid.UUID, tutorEmail string, at time.Time) (int64, error) {
	res := q.DB.WithContext(ctx).Model(&models.TutorApplication{}).
		Where("tuition_request_id = ? AND tutor_email = ?", requestID, tutorEmail).
		Updates(map[string]interface{}{
			"status":      models.ApplicationStatusApproved,
			"approved_at": at,
		})
	return res.RowsAffected, res.Error
}
