package payments

import (
	"testing"

	"github.com/anjiri1684/tutor_bazar/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func tuitionMeta(requestID uuid.UUID) map[string]string {
	return map[string]string{
		MetaPaymentType: string(models.PaymentTypeTuition),
		MetaTuitionID:   requestID.String(),
		MetaApplyID:     "undefined",
		MetaTutorEmail:  "a@x.com",
		MetaSubject:     "Physics",
		MetaClassLevel:  "Class 9",
	}
}

func TestClassifyTuitionPayment(t *testing.T) {
	requestID := uuid.New()

	flow, err := Classify(tuitionMeta(requestID))
	require.NoError(t, err)

	tf, ok := flow.(TuitionFlow)
	require.True(t, ok)
	require.Equal(t, requestID, tf.RequestID)
	require.Equal(t, "a@x.com", tf.TutorEmail)
	require.Equal(t, models.PaymentTypeTuition, flow.Kind())
	require.Equal(t, requestID, flow.LinkedEntityID())
}

func TestClassifyApplyStudentPayment(t *testing.T) {
	applyID := uuid.New()

	flow, err := Classify(map[string]string{
		MetaPaymentType: string(models.PaymentTypeApplyStudent),
		MetaApplyID:     applyID.String(),
		MetaTuitionID:   "undefined",
		MetaTutorEmail:  "tutor@x.com",
		MetaSubject:     "Chemistry",
		MetaClassLevel:  "HSC",
	})
	require.NoError(t, err)

	af, ok := flow.(ApplyStudentFlow)
	require.True(t, ok)
	require.Equal(t, applyID, af.ApplicationID)
	subject, level := flow.SubjectRef()
	require.Equal(t, "Chemistry", subject)
	require.Equal(t, "HSC", level)
}

func TestClassifyUnknownPaymentType(t *testing.T) {
	cases := map[string]map[string]string{
		"nil metadata":   nil,
		"empty metadata": {},
		"missing key":    {MetaTuitionID: uuid.NewString(), MetaTutorEmail: "a@x.com"},
		"blank value":    {MetaPaymentType: "  "},
		"js undefined":   {MetaPaymentType: "undefined"},
		"wrong case":     {MetaPaymentType: "TuitionPayment"},
		"foreign value":  {MetaPaymentType: "subscription"},
	}
	for name, meta := range cases {
		t.Run(name, func(t *testing.T) {
			flow, err := Classify(meta)
			require.ErrorIs(t, err, ErrUnknownPaymentType)
			require.Nil(t, flow)
		})
	}
}

func TestClassifyMissingMetadata(t *testing.T) {
	cases := map[string]func(m map[string]string){
		"no tuition id":        func(m map[string]string) { delete(m, MetaTuitionID) },
		"undefined tuition id": func(m map[string]string) { m[MetaTuitionID] = "undefined" },
		"malformed tuition id": func(m map[string]string) { m[MetaTuitionID] = "65f1c0ffee" },
		"no tutor email":       func(m map[string]string) { delete(m, MetaTutorEmail) },
		"bad tutor email":      func(m map[string]string) { m[MetaTutorEmail] = "not-an-email" },
		"null subject":         func(m map[string]string) { m[MetaSubject] = "null" },
		"no class level":       func(m map[string]string) { delete(m, MetaClassLevel) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			meta := tuitionMeta(uuid.New())
			mutate(meta)

			_, err := Classify(meta)
			require.ErrorIs(t, err, ErrMissingMetadata)
			require.NotErrorIs(t, err, ErrUnknownPaymentType)
		})
	}

	_, err := Classify(map[string]string{
		MetaPaymentType: string(models.PaymentTypeApplyStudent),
		MetaTuitionID:   uuid.NewString(),
		MetaTutorEmail:  "a@x.com",
		MetaSubject:     "Math",
		MetaClassLevel:  "Class 8",
	})
	require.ErrorIs(t, err, ErrMissingMetadata)
	require.Contains(t, err.Error(), MetaApplyID)
}

func TestFlowFromPayment(t *testing.T) {
	id := uuid.New()
	flow, err := FlowFromPayment(&models.Payment{
		PaymentType:    models.PaymentTypeTuition,
		LinkedEntityID: id,
		PayeeEmail:     "a@x.com",
		Subject:        "Physics",
		ClassLevel:     "Class 9",
	})
	require.NoError(t, err)
	require.Equal(t, TuitionFlow{RequestID: id, TutorEmail: "a@x.com", Subject: "Physics", ClassLevel: "Class 9"}, flow)

	_, err = FlowFromPayment(&models.Payment{PaymentType: "refund"})
	require.ErrorIs(t, err, ErrUnknownPaymentType)
}
