package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProfileApplication is a student asking to be taught by the owner of a TutorProfile.
type ProfileApplication struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	StudentEmail   string     `gorm:"size:255;not null;uniqueIndex:idx_profile_application_student_profile" json:"student_email"`
	StudentName    string     `gorm:"size:255" json:"student_name"`
	TutorProfileID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_profile_application_student_profile" json:"tutor_profile_id"`
	TutorEmail     string     `gorm:"size:255;index" json:"tutor_email"`
	Message        string     `gorm:"type:text" json:"message"`
	Status         string     `gorm:"size:20;not null;default:'pending'" json:"status"`
	AppliedAt      time.Time  `gorm:"not null" json:"applied_at"`
	PaidAt         *time.Time `json:"paid_at"`

	TutorProfile TutorProfile `gorm:"foreignkey:TutorProfileID" json:"-"`
}

func (a *ProfileApplication) BeforeCreate(tx *gorm.DB) error {
	ensureID(&a.ID)
	return nil
}
