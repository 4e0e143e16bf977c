package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	RequestStatusPending = "pending"
	RequestStatusActive  = "active"
	RequestStatusPaid    = "paid"
	RequestStatusBlocked = "blocked"
)

type TuitionRequest struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	StudentEmail       string          `gorm:"size:255;not null;index" json:"student_email"`
	StudentName        string          `gorm:"size:255" json:"student_name"`
	Subject            string          `gorm:"size:255;not null" json:"subject"`
	ClassLevel         string          `gorm:"size:100;not null" json:"class_level"`
	Location           string          `gorm:"size:255" json:"location"`
	Budget             decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"budget"`
	DaysPerWeek        int             `json:"days_per_week"`
	Status             string          `gorm:"size:20;not null;default:'pending';index" json:"status"`
	SelectedTutorEmail *string         `gorm:"size:255" json:"selected_tutor_email"`
	PaidAt             *time.Time      `json:"paid_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *TuitionRequest) BeforeCreate(tx *gorm.DB) error {
	ensureID(&r.ID)
	return nil
}
