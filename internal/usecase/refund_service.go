package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/wekeepgrowing/ticket-payment/internal/domain/entity"
	customErr "github.com/wekeepgrowing/ticket-payment/internal/domain/errors"
	"github.com/wekeepgrowing/ticket-payment/internal/domain/provider"
	domainRepo "github.com/wekeepgrowing/ticket-payment/internal/domain/repository"
	appErrors "github.com/wekeepgrowing/ticket-payment/pkg/errors"
	"go.uber.org/zap"
)

// RefundService issues full refunds against recorded charges.
type RefundService struct {
	orders   domainRepo.OrderRepository
	resolver *CredentialResolver
	gateways provider.GatewayFactory
	timeout  time.Duration
	logger   *zap.Logger
	// operator receives every refund failure.
	operator *zap.Logger
}

// NewRefundService creates a new refund service instance
func NewRefundService(
	orders domainRepo.OrderRepository,
	resolver *CredentialResolver,
	gateways provider.GatewayFactory,
	timeout time.Duration,
	logger *zap.Logger,
) *RefundService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RefundService{
		orders:   orders,
		resolver: resolver,
		gateways: gateways,
		timeout:  timeout,
		logger:   logger,
		operator: logger.Named("operator"),
	}
}

// RefundOutcome is one entry of a batch refund.
type RefundOutcome struct {
	PaymentToken string               `json:"payment_token"`
	Record       *entity.RefundRecord `json:"record,omitempty"`
	Err          error                `json:"-"`
}

// Refund refunds the full amount of the charge recorded for paymentToken.
// Processor failures are recorded as REFUND_FAILED and returned in the record;
// the error is reserved for lookups that prevent a refund from being attempted.
func (s *RefundService) Refund(ctx context.Context, paymentToken string) (*entity.RefundRecord, error) {
	logger := s.logger.With(zap.String("payment_token", paymentToken))

	status, err := s.orders.GetPaymentStatus(ctx, paymentToken)
	if err != nil {
		if errors.Is(err, customErr.ErrOrderNotFound) {
			return nil, appErrors.NewAppError(appErrors.ErrNotFound, "order not found", err)
		}
		return nil, appErrors.Wrap(err, "failed to load payment status")
	}
	if !status.IsRefundable() {
		return nil, appErrors.NewAppError(appErrors.ErrConflict, "payment is "+status.String()+" and cannot be refunded", customErr.ErrNotRefundable)
	}

	transactionID, err := s.orders.GetStoredTransactionID(ctx, paymentToken)
	if err != nil {
		if errors.Is(err, customErr.ErrNoTransaction) {
			return nil, appErrors.NewAppError(appErrors.ErrNotFound, "no transaction recorded for payment", err)
		}
		return nil, appErrors.Wrap(err, "failed to load transaction id")
	}
	logger = logger.With(zap.String("transaction_id", transactionID))

	creds, err := s.resolver.Resolve(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to resolve credentials")
	}
	gateway, err := s.gateways.NewGateway(creds)
	if err != nil {
		return nil, appErrors.NewAppError(appErrors.ErrUnprocessable, "payment gateway is not configured", err)
	}

	// The refund request is never abandoned once sent.
	ctx = context.WithoutCancel(ctx)
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	result, err := gateway.CreateRefund(callCtx, transactionID)
	cancel()

	record := &entity.RefundRecord{
		PaymentToken:        paymentToken,
		SourceTransactionID: transactionID,
	}

	switch {
	case err != nil:
		record.Failure = MapFailure(err)
	case !result.Status.Accepted():
		record.RawProviderResponse = result.Raw
		record.Failure = newFailure(entity.FailureGeneric, string(result.Status), result.Raw)
	default:
		record.Status = entity.PaymentStatusRefunded
		record.RefundTransactionID = result.RefundTransactionID
		record.RawProviderResponse = result.Raw
	}

	if record.Failure != nil {
		record.Status = entity.PaymentStatusRefundFailed
		s.operator.Error("Refund failed",
			zap.String("payment_token", paymentToken),
			zap.String("transaction_id", transactionID),
			zap.String("failure_reason", record.Failure.Reason.String()),
			zap.String("user_message", record.Failure.UserMessage),
			zap.ByteString("raw", record.Failure.Raw))
	}

	data := entity.PaymentResultData{
		TransactionID:       transactionID,
		RefundTransactionID: record.RefundTransactionID,
		Details:             map[string]interface{}{"refund": record.RawProviderResponse},
	}
	if record.Failure != nil {
		data.Details = map[string]interface{}{
			"reason": record.Failure.Reason,
			"raw":    record.Failure.Raw,
		}
	}
	if err := s.orders.RecordPaymentResult(ctx, paymentToken, record.Status, data); err != nil {
		if errors.Is(err, customErr.ErrPaymentSettled) {
			logger.Warn("Payment was refunded by another request, result not recorded",
				zap.String("status", record.Status.String()),
				zap.Error(err))
			return record, appErrors.NewAppError(appErrors.ErrConflict, "payment is already refunded", err)
		}
		logger.Error("Failed to record refund result",
			zap.String("status", record.Status.String()),
			zap.Error(err))
		return record, appErrors.Wrap(err, "failed to record refund result")
	}

	if record.Status == entity.PaymentStatusRefunded {
		logger.Info("Refund completed", zap.String("refund_transaction_id", record.RefundTransactionID))
	}
	return record, nil
}

// RefundAll refunds each token in order. One failure does not stop the batch.
func (s *RefundService) RefundAll(ctx context.Context, paymentTokens []string) []RefundOutcome {
	outcomes := make([]RefundOutcome, 0, len(paymentTokens))
	for _, token := range paymentTokens {
		record, err := s.Refund(ctx, token)
		if err != nil {
			s.operator.Error("Refund skipped",
				zap.String("payment_token", token),
				zap.Error(err))
		}
		outcomes = append(outcomes, RefundOutcome{PaymentToken: token, Record: record, Err: err})
	}
	return outcomes
}
