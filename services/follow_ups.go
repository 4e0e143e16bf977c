package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anjiri1684/tutor_bazar/payments"
)

// applyFollowUps performs the entity mutations a settled payment implies.
// Every step is attempted; each miss or failure becomes a warning.
func (s *ConfirmationService) applyFollowUps(ctx context.Context, flow payments.Flow) []string {
	at := s.now()
	var warnings []string

	switch f := flow.(type) {
	case payments.TuitionFlow:
		// Request first: after a crash the student still sees the request as paid.
		n, err := s.stores.Requests.MarkPaid(ctx, f.RequestID, f.TutorEmail, at)
		warnings = appendWarning(warnings, n, err, fmt.Sprintf("tuition request %s", f.RequestID))

		n, err = s.stores.TutorApplications.Approve(ctx, f.RequestID, f.TutorEmail, at)
		warnings = appendWarning(warnings, n, err, fmt.Sprintf("tutor application for request %s by %s", f.RequestID, f.TutorEmail))

	case payments.ApplyStudentFlow:
		n, err := s.stores.ProfileApplications.MarkPaid(ctx, f.ApplicationID, at)
		warnings = appendWarning(warnings, n, err, fmt.Sprintf("profile application %s", f.ApplicationID))
	}

	return warnings
}

func appendWarning(warnings []string, matched int64, err error, target string) []string {
	switch {
	case err != nil:
		slog.Error("🔥 Follow-up update failed", "target", target, "error", err)
		return append(warnings, fmt.Sprintf("could not update %s: %v", target, err))
	case matched == 0:
		slog.Warn("Follow-up update matched nothing", "target", target)
		return append(warnings, fmt.Sprintf("%s not found", target))
	}
	return warnings
}
