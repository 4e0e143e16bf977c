package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	ProfileStatusPending  = "pending"
	ProfileStatusActive   = "active"
	ProfileStatusApproved = "approved"
	ProfileStatusBlocked  = "blocked"
)

type TutorProfile struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	TutorEmail  string          `gorm:"size:255;not null;index" json:"tutor_email"`
	Name        string          `gorm:"size:255;not null" json:"name"`
	Subjects    string          `gorm:"type:text" json:"subjects"`
	ClassLevels string          `gorm:"type:text" json:"class_levels"`
	Experience  string          `gorm:"type:text" json:"experience"`
	Fee         decimal.Decimal `gorm:"type:numeric(12,2)" json:"fee"`
	PhotoURL    *string         `gorm:"size:255" json:"photo_url"`
	Status      string          `gorm:"size:20;not null;default:'pending';index" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *TutorProfile) BeforeCreate(tx *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
