package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentType string

const (
	PaymentTypeTuition      PaymentType = "tuitionPayment"
	PaymentTypeApplyStudent PaymentType = "applyStudentPayment"
)

const PaymentStatusPaid = "paid"

// A payment still pending after this long lost its follow-ups to a crash.
const ReconciliationStallAfter = 15 * time.Minute

// A payment is inserted as pending and moves to complete or partial once its
// follow-up mutations have been attempted.
const (
	ReconciliationPending  = "pending"
	ReconciliationComplete = "complete"
	ReconciliationPartial  = "partial"
)

// Payment is the durable record of a confirmed provider transaction. It is
// written once per TransactionID and is the anchor every follow-up mutation
// hangs off; LinkedEntityID and PaymentType are enough to replay them.
type Payment struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	TransactionID        string          `gorm:"size:255;not null;uniqueIndex" json:"transaction_id"`
	SessionID            string          `gorm:"size:255;index" json:"session_id"`
	PaymentType          PaymentType     `gorm:"size:30;not null" json:"payment_type"`
	Amount               decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency             string          `gorm:"size:3" json:"currency"`
	PayerEmail           string          `gorm:"size:255;index" json:"payer_email"`
	PayeeEmail           string          `gorm:"size:255;index" json:"payee_email"`
	Subject              string          `gorm:"size:255" json:"subject"`
	ClassLevel           string          `gorm:"size:100" json:"class_level"`
	LinkedEntityID       uuid.UUID       `gorm:"type:uuid;not null" json:"linked_entity_id"`
	Status               string          `gorm:"size:20;not null;default:'paid'" json:"status"`
	ReconciliationStatus string          `gorm:"size:20;not null;default:'pending';index" json:"reconciliation_status"`
	Warnings             []string        `gorm:"type:text;serializer:json" json:"warnings,omitempty"`
	RecordedAt           time.Time       `gorm:"not null" json:"recorded_at"`

	UpdatedAt time.Time `json:"-"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
