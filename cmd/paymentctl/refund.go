package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wekeepgrowing/ticket-payment/internal/app"
	"github.com/wekeepgrowing/ticket-payment/internal/domain/entity"
	appErrors "github.com/wekeepgrowing/ticket-payment/pkg/errors"
)

type refundLine struct {
	PaymentToken        string               `json:"payment_token"`
	Status              entity.PaymentStatus `json:"status,omitempty"`
	TransactionID       string               `json:"transaction_id,omitempty"`
	RefundTransactionID string               `json:"refund_transaction_id,omitempty"`
	Reason              entity.FailureReason `json:"reason,omitempty"`
	Message             string               `json:"message,omitempty"`
	Error               string               `json:"error,omitempty"`
}

func newRefundCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "refund <payment-token>",
		Short: "Refund one payment in full",
		Long:  `Refund the full amount of the charge recorded for a payment token. The outcome is recorded on the order.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
				record, err := c.Payments.Refund(ctx, args[0])
				if err != nil {
					return err
				}
				line := toRefundLine(args[0], record, nil)
				if err := printJSON(cmd, line); err != nil {
					return err
				}
				if record.Status != entity.PaymentStatusRefunded {
					return fmt.Errorf("refund failed: %s", line.Message)
				}
				return nil
			})
		},
	}
}

func newRefundAllCommand() *cobra.Command {
	var (
		status string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "refund-all [payment-token...]",
		Short: "Refund several payments one after another",
		Long: `Refund every given payment token in order. Without arguments every payment
with the selected status is refunded, e.g. after an event is cancelled.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			selected := entity.PaymentStatus(status)
			if !selected.IsRefundable() {
				return fmt.Errorf("status %q is not refundable", status)
			}

			return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
				tokens := args
				if len(tokens) == 0 {
					var err error
					tokens, err = c.Orders.ListPaymentTokens(ctx, selected)
					if err != nil {
						return fmt.Errorf("failed to list payments: %w", err)
					}
				}

				if dryRun {
					return printJSON(cmd, map[string]interface{}{"payment_tokens": tokens, "count": len(tokens)})
				}

				failed := 0
				lines := make([]refundLine, 0, len(tokens))
				for _, outcome := range c.Payments.RefundAll(ctx, tokens) {
					line := toRefundLine(outcome.PaymentToken, outcome.Record, outcome.Err)
					if line.Status != entity.PaymentStatusRefunded {
						failed++
					}
					lines = append(lines, line)
				}

				if err := printJSON(cmd, map[string]interface{}{
					"refunded": len(lines) - failed,
					"failed":   failed,
					"results":  lines,
				}); err != nil {
					return err
				}
				if failed > 0 {
					return fmt.Errorf("%d of %d refunds failed", failed, len(lines))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", string(entity.PaymentStatusCompleted), "Payment status to select when no tokens are given (completed, refund_failed)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List the selected payment tokens without refunding")

	return cmd
}

func toRefundLine(paymentToken string, record *entity.RefundRecord, err error) refundLine {
	line := refundLine{PaymentToken: paymentToken}
	if err != nil {
		line.Error = err.Error()
		var appErr *appErrors.AppError
		if appErrors.As(err, &appErr) {
			line.Error = appErr.Message()
		}
	}
	if record == nil {
		return line
	}
	line.Status = record.Status
	line.TransactionID = record.SourceTransactionID
	line.RefundTransactionID = record.RefundTransactionID
	if record.Failure != nil {
		line.Reason = record.Failure.Reason
		line.Message = record.Failure.UserMessage
	}
	return line
}
