package queries

import (
	"context"
	"errors"
	"time"

	"github.com/anjiri1684/tutor_bazar/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentQueries struct {
	DB *gorm.DB
}

// FindByTransactionID returns nil, nil when no payment carries txID.
func (q *PaymentQueries) FindByTransactionID(ctx context.Context, txID string) (*models.Payment, error) {
	var p models.Payment
	err := q.DB.WithContext(ctx).Where("transaction_id = ?", txID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (q *PaymentQueries) FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var p models.Payment
	if err := q.DB.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// Insert fails with gorm.ErrDuplicatedKey when the transaction id is already recorded.
func (q *PaymentQueries) Insert(ctx context.Context, p *models.Payment) error {
	return q.DB.WithContext(ctx).Create(p).Error
}

func (q *PaymentQueries) UpdateReconciliation(ctx context.Context, id uuid.UUID, status string, warnings []string) error {
	res := q.DB.WithContext(ctx).Model(&models.Payment{ID: id}).Select("ReconciliationStatus", "Warnings").Updates(models.Payment{
		ReconciliationStatus: status,
		Warnings:             warnings,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListUnreconciled returns partial payments plus pending ones recorded before
// stalledBefore, i.e. whose follow-ups never finished.
func (q *PaymentQueries) ListUnreconciled(ctx context.Context, stalledBefore time.Time, limit int) ([]models.Payment, error) {
	var payments []models.Payment
	err := q.unreconciled(ctx, stalledBefore).
		Order("recorded_at asc").
		Limit(limit).
		Find(&payments).Error
	return payments, err
}

func (q *PaymentQueries) CountUnreconciled(ctx context.Context, stalledBefore time.Time) (int64, error) {
	var count int64
	err := q.unreconciled(ctx, stalledBefore).Count(&count).Error
	return count, err
}

func (q *PaymentQueries) unreconciled(ctx context.Context, stalledBefore time.Time) *gorm.DB {
	return q.DB.WithContext(ctx).Model(&models.Payment{}).
		Where("reconciliation_status = ? OR (reconciliation_status = ? AND recorded_at < ?)",
			models.ReconciliationPartial, models.ReconciliationPending, stalledBefore)
}

func (q *PaymentQueries) ListByPayer(ctx context.Context, email string) ([]models.Payment, error) {
	var payments []models.Payment
	err := q.DB.WithContext(ctx).Where("payer_email = ?", email).Order("recorded_at desc").Find(&payments).Error
	return payments, err
}

func (q *PaymentQueries) ListByPayee(ctx context.Context, email string) ([]models.Payment, error) {
	var payments []models.Payment
	err := q.DB.WithContext(ctx).
		Where("payee_email = ? AND status = ?", email, models.PaymentStatusPaid).
		Order("recorded_at desc").
		Find(&payments).Error
	return payments, err
}
