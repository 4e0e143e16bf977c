package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ApplicationStatusPending  = "pending"
	ApplicationStatusApproved = "approved"
	ApplicationStatusRejected = "rejected"
	ApplicationStatusPaid     = "paid"
)

// TutorApplication is a tutor's bid on a student's TuitionRequest.
type TutorApplication struct {
	ID               uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	TuitionRequestID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_tutor_application_request_tutor" json:"tuition_request_id"`
	TutorEmail       string     `gorm:"size:255;not null;uniqueIndex:idx_tutor_application_request_tutor" json:"tutor_email"`
	TutorName        string     `gorm:"size:255" json:"tutor_name"`
	StudentEmail     string     `gorm:"size:255;index" json:"student_email"`
	Qualifications   string     `gorm:"type:text" json:"qualifications"`
	ExpectedSalary   string     `gorm:"size:50" json:"expected_salary"`
	Status           string     `gorm:"size:20;not null;default:'pending'" json:"status"`
	AppliedAt        time.Time  `gorm:"not null" json:"applied_at"`
	ApprovedAt       *time.Time `json:"approved_at"`

	TuitionRequest TuitionRequest `gorm:"foreignkey:TuitionRequestID" json:"-"`
}

func (a *TutorApplication) BeforeCreate(tx *gorm.DB) error {
	ensureID(&a.ID)
	return nil
}
