package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/anjiri1684/tutor_bazar/models"
	"github.com/robfig/cron/v3"
)

const (
	reportLimit   = 100
	reportTimeout = 30 * time.Second
)

type UnreconciledLister interface {
	ListUnreconciled(ctx context.Context, stalledBefore time.Time, limit int) ([]models.Payment, error)
}

// ScheduleReconciliationReport registers the unreconciled payment report on c.
func ScheduleReconciliationReport(c *cron.Cron, spec string, payments UnreconciledLister) (cron.EntryID, error) {
	return c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
		defer cancel()
		if _, err := ReportUnreconciledPayments(ctx, payments, time.Now()); err != nil {
			slog.Error("Reconciliation report failed", "error", err)
		}
	})
}

// ReportUnreconciledPayments logs every payment whose follow-up updates are
// partial or never finished, and returns how many it found.
func ReportUnreconciledPayments(ctx context.Context, payments UnreconciledLister, now time.Time) (int, error) {
	slog.Debug("Running job: ReportUnreconciledPayments")

	list, err := payments.ListUnreconciled(ctx, now.Add(-models.ReconciliationStallAfter), reportLimit)
	if err != nil {
		return 0, err
	}
	if len(list) == 0 {
		slog.Debug("No unreconciled payments found")
		return 0, nil
	}

	for _, p := range list {
		slog.Warn("⚠️ Payment needs reconciliation",
			"payment_id", p.ID,
			"transaction_id", p.TransactionID,
			"type", p.PaymentType,
			"reconciliation_status", p.ReconciliationStatus,
			"warnings", p.Warnings,
			"recorded_at", p.RecordedAt,
		)
	}
	slog.Warn("Unreconciled payments outstanding", "count", len(list))
	return len(list), nil
}
