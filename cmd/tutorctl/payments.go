package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/anjiri1684/tutor_bazar/models"
	"github.com/anjiri1684/tutor_bazar/services"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type unreconciledLister interface {
	ListUnreconciled(ctx context.Context, stalledBefore time.Time, limit int) ([]models.Payment, error)
}

type reconciler interface {
	ReconcilePayment(ctx context.Context, paymentID uuid.UUID) (*services.ConfirmationResult, error)
}

type backend struct {
	payments      unreconciledLister
	confirmations reconciler
}

func paymentsCmd(open func() (*backend, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payments",
		Short: "Inspect and repair recorded payments",
	}
	cmd.AddCommand(pendingCmd(open))
	cmd.AddCommand(reconcileCmd(open))
	return cmd
}

func pendingCmd(open func() (*backend, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List payments with partial or stalled reconciliation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			b, err := open()
			if err != nil {
				return err
			}

			list, err := b.payments.ListUnreconciled(cmd.Context(), time.Now().Add(-models.ReconciliationStallAfter), limit)
			if err != nil {
				return fmt.Errorf("list unreconciled payments: %w", err)
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No unreconciled payments.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PAYMENT\tTRANSACTION\tTYPE\tSTATUS\tRECORDED\tWARNINGS")
			for _, p := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					p.ID, p.TransactionID, p.PaymentType, p.ReconciliationStatus,
					p.RecordedAt.Format(time.RFC3339), strings.Join(p.Warnings, "; "))
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntP("limit", "n", 50, "Maximum payments to list")
	return cmd
}

func reconcileCmd(open func() (*backend, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile [payment-id]",
		Short: "Re-run the follow-up updates of a recorded payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid payment id %q: %w", args[0], err)
			}
			b, err := open()
			if err != nil {
				return err
			}

			res, err := b.confirmations.ReconcilePayment(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("reconcile %s: %w", id, err)
			}
			if len(res.Warnings) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Payment %s reconciled.\n", res.PaymentID)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Payment %s still partial:\n", res.PaymentID)
			for _, w := range res.Warnings {
				fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", w)
			}
			return nil
		},
	}
}
