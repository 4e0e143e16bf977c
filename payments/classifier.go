package payments

import (
	"errors"
	"fmt"
	"strings"

	"github.com/anjiri1684/tutor_bazar/models"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	ErrUnknownPaymentType = errors.New("unknown payment type")
	ErrMissingMetadata    = errors.New("missing or invalid session metadata")
)

const (
	MetaPaymentType = "paymentType"
	MetaTuitionID   = "tuitionId"
	MetaApplyID     = "applyId"
	MetaTutorEmail  = "tutorEmail"
	MetaSubject     = "subject"
	MetaClassLevel  = "classLevel"
)

var validate = validator.New()

// Flow is the classified reconciliation path of a session. The set of
// implementations is closed: TuitionFlow and ApplyStudentFlow.
type Flow interface {
	Kind() models.PaymentType
	LinkedEntityID() uuid.UUID
	Tutor() string
	SubjectRef() (subject, classLevel string)
	sealed()
}

// TuitionFlow pays for a student's tuition request and selects the tutor.
type TuitionFlow struct {
	RequestID  uuid.UUID
	TutorEmail string
	Subject    string
	ClassLevel string
}

func (f TuitionFlow) Kind() models.PaymentType     { return models.PaymentTypeTuition }
func (f TuitionFlow) LinkedEntityID() uuid.UUID    { return f.RequestID }
func (f TuitionFlow) Tutor() string                { return f.TutorEmail }
func (f TuitionFlow) SubjectRef() (string, string) { return f.Subject, f.ClassLevel }
func (TuitionFlow) sealed()                        {}

// ApplyStudentFlow pays for a student's application to a tutor profile.
type ApplyStudentFlow struct {
	ApplicationID uuid.UUID
	TutorEmail    string
	Subject       string
	ClassLevel    string
}

func (f ApplyStudentFlow) Kind() models.PaymentType     { return models.PaymentTypeApplyStudent }
func (f ApplyStudentFlow) LinkedEntityID() uuid.UUID    { return f.ApplicationID }
func (f ApplyStudentFlow) Tutor() string                { return f.TutorEmail }
func (f ApplyStudentFlow) SubjectRef() (string, string) { return f.Subject, f.ClassLevel }
func (ApplyStudentFlow) sealed()                        {}

// Classify turns session metadata into a typed Flow.
func Classify(metadata map[string]string) (Flow, error) {
	m := metaReader{values: metadata}

	switch models.PaymentType(m.get(MetaPaymentType)) {
	case models.PaymentTypeTuition:
		f := TuitionFlow{
			RequestID:  m.id(MetaTuitionID),
			TutorEmail: m.email(MetaTutorEmail),
			Subject:    m.required(MetaSubject),
			ClassLevel: m.required(MetaClassLevel),
		}
		if m.err != nil {
			return nil, m.err
		}
		return f, nil
	case models.PaymentTypeApplyStudent:
		f := ApplyStudentFlow{
			ApplicationID: m.id(MetaApplyID),
			TutorEmail:    m.email(MetaTutorEmail),
			Subject:       m.required(MetaSubject),
			ClassLevel:    m.required(MetaClassLevel),
		}
		if m.err != nil {
			return nil, m.err
		}
		return f, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPaymentType, m.get(MetaPaymentType))
	}
}

// FlowFromPayment rebuilds the flow a stored payment was recorded under.
func FlowFromPayment(p *models.Payment) (Flow, error) {
	switch p.PaymentType {
	case models.PaymentTypeTuition:
		return TuitionFlow{RequestID: p.LinkedEntityID, TutorEmail: p.PayeeEmail, Subject: p.Subject, ClassLevel: p.ClassLevel}, nil
	case models.PaymentTypeApplyStudent:
		return ApplyStudentFlow{ApplicationID: p.LinkedEntityID, TutorEmail: p.PayeeEmail, Subject: p.Subject, ClassLevel: p.ClassLevel}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPaymentType, p.PaymentType)
	}
}

// metaReader keeps the first validation failure so Classify reads linearly.
type metaReader struct {
	values map[string]string
	err    error
}

// get treats the placeholders a JavaScript client stringifies for unset fields as absent.
func (m *metaReader) get(key string) string {
	v := strings.TrimSpace(m.values[key])
	switch v {
	case "undefined", "null":
		return ""
	}
	return v
}

func (m *metaReader) fail(key, reason string) {
	if m.err == nil {
		m.err = fmt.Errorf("%w: %s %s", ErrMissingMetadata, key, reason)
	}
}

func (m *metaReader) required(key string) string {
	v := m.get(key)
	if v == "" {
		m.fail(key, "is required")
	}
	return v
}

func (m *metaReader) id(key string) uuid.UUID {
	v := m.required(key)
	if v == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		m.fail(key, "is not a valid id")
		return uuid.Nil
	}
	return id
}

func (m *metaReader) email(key string) string {
	v := m.required(key)
	if v == "" {
		return ""
	}
	if err := validate.Var(v, "email"); err != nil {
		m.fail(key, "is not a valid email")
		return ""
	}
	return v
}
