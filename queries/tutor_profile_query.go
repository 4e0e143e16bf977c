package queries

import (
	"context"

	"github.com/anjiri1684/tutor_bazar/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TutorProfileQueries struct {
	DB *gorm.DB
}

func (q *TutorProfileQueries) Create(ctx context.Context, p *models.TutorProfile) error {
	return q.DB.WithContext(ctx).Create(p).Error
}

func (q *TutorProfileQueries) FindByID(ctx context.Context, id uuid.UUID) (*models.TutorProfile, error) {
	var p models.TutorProfile
	if err := q.DB.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (q *TutorProfileQueries) ExistsForEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := q.DB.WithContext(ctx).Model(&models.TutorProfile{}).Where("tutor_email = ?", email).Count(&count).Error
	return count > 0, err
}

// ListByStatus returns profiles newest first. An empty status lists every profile.
func (q *TutorProfileQueries) ListByStatus(ctx context.Context, status string, limit int) ([]models.TutorProfile, error) {
	tx := q.DB.WithContext(ctx).Order("created_at desc")
	if status != "" {
		tx = tx.Where("status = ?", status)
	}
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	var profiles []models.TutorProfile
	err := tx.Find(&profiles).Error
	return profiles, err
}

func (q *TutorProfileQueries) SetStatus(ctx context.Context, id uuid.UUID, status string) (int64, error) {
	res := q.DB.WithContext(ctx).Model(&models.TutorProfile{}).Where("id = ?", id).Update("status", status)
	return res.RowsAffected, res.Error
}

func (q *TutorProfileQueries) ListByTutor(ctx context.Context, tutorEmail string) ([]models.TutorProfile, error) {
	var profiles []models.TutorProfile
	err := q.DB.WithContext(ctx).Where("tutor_email = ?", tutorEmail).Order("created_at desc").Find(&profiles).Error
	return profiles, err
}
