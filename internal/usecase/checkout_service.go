package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wekeepgrowing/ticket-payment/internal/domain/entity"
	customErr "github.com/wekeepgrowing/ticket-payment/internal/domain/errors"
	"github.com/wekeepgrowing/ticket-payment/internal/domain/provider"
	domainRepo "github.com/wekeepgrowing/ticket-payment/internal/domain/repository"
	appErrors "github.com/wekeepgrowing/ticket-payment/pkg/errors"
	"go.uber.org/zap"
)

// CheckoutOptions tunes the checkout orchestration.
type CheckoutOptions struct {
	// EventName is the source of the statement descriptor and widget title.
	EventName string
	// Timeout bounds every processor call.
	Timeout time.Duration
	// ReconcileOnNetworkError searches the processor for a charge carrying the
	// payment token when a charge request got no answer.
	ReconcileOnNetworkError bool
}

// CheckoutService drives one charge attempt per invocation.
type CheckoutService struct {
	orders    domainRepo.OrderRepository
	validator *OrderValidator
	resolver  *CredentialResolver
	gateways  provider.GatewayFactory
	lock      domainRepo.CheckoutLock
	opts      CheckoutOptions
	logger    *zap.Logger
}

// NewCheckoutService creates a new checkout service instance. lock may be nil
// when a single instance serves all requests.
func NewCheckoutService(
	orders domainRepo.OrderRepository,
	validator *OrderValidator,
	resolver *CredentialResolver,
	gateways provider.GatewayFactory,
	lock domainRepo.CheckoutLock,
	opts CheckoutOptions,
	logger *zap.Logger,
) *CheckoutService {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &CheckoutService{
		orders:    orders,
		validator: validator,
		resolver:  resolver,
		gateways:  gateways,
		lock:      lock,
		opts:      opts,
		logger:    logger,
	}
}

// checkoutRun carries the per-invocation state.
type checkoutRun struct {
	attempt *entity.CheckoutAttempt
	logger  *zap.Logger
}

// Checkout runs one attempt to a single terminal result. Rejected orders come
// back as a FAILED result that is not recorded. Processor failures are
// recorded and returned as a FAILED result. The returned error is reserved for
// infrastructure problems; a retry must reuse the same payment token.
func (s *CheckoutService) Checkout(ctx context.Context, req entity.CheckoutRequest) (*entity.CheckoutResult, error) {
	run := &checkoutRun{
		attempt: entity.NewCheckoutAttempt(uuid.NewString(), req.PaymentToken),
	}
	run.logger = s.logger.With(
		zap.String("checkout_id", run.attempt.ID),
		zap.String("payment_token", req.PaymentToken))

	if s.lock != nil {
		release, err := s.lock.Acquire(ctx, req.PaymentToken)
		if err != nil {
			if errors.Is(err, customErr.ErrCheckoutInProgress) {
				return nil, appErrors.NewAppError(appErrors.ErrConflict, "checkout already in progress", err)
			}
			return nil, appErrors.NewAppError(appErrors.ErrUpstreamFailed, "failed to lock payment token", err)
		}
		defer release()
	}

	if ctx.Err() != nil {
		return s.cancel(ctx, run)
	}

	order, err := s.orders.GetOrder(ctx, req.PaymentToken)
	if err != nil {
		if errors.Is(err, customErr.ErrOrderNotFound) {
			return s.reject(run, entity.FailureOrderInvalid, err), nil
		}
		return nil, appErrors.Wrap(err, "failed to load order")
	}

	if err := s.validator.Validate(ctx, order); err != nil {
		switch {
		case errors.Is(err, customErr.ErrUnsupportedCurrency):
			return s.reject(run, entity.FailureUnsupportedCurrency, err), nil
		case errors.Is(err, customErr.ErrOrderInvalid):
			return s.reject(run, entity.FailureOrderInvalid, err), nil
		case ctx.Err() != nil:
			return s.cancel(ctx, run)
		default:
			return nil, appErrors.Wrap(err, "failed to verify order")
		}
	}
	s.transition(run, entity.CheckoutValidated)

	creds, err := s.resolver.Resolve(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to resolve credentials")
	}
	s.transition(run, entity.CheckoutCredentialResolved)

	gateway, err := s.gateways.NewGateway(creds)
	if err != nil {
		run.logger.Error("Payment gateway is not configured", zap.Error(err))
		return nil, appErrors.NewAppError(appErrors.ErrUnprocessable, "payment gateway is not configured", err)
	}

	if ctx.Err() != nil {
		return s.cancel(ctx, run)
	}

	tokenCtx, cancelToken := context.WithTimeout(ctx, s.opts.Timeout)
	credential, err := gateway.RetrieveToken(tokenCtx, req.CredentialRef)
	cancelToken()
	if err != nil {
		if ctx.Err() != nil {
			return s.cancel(ctx, run)
		}
		return s.fail(ctx, run, MapFailure(err))
	}

	if ctx.Err() != nil {
		return s.cancel(ctx, run)
	}

	chargeReq := &provider.ChargeRequest{
		AmountMinorUnits:    order.AmountMinorUnits(),
		Currency:            order.Currency,
		Description:         order.Description(),
		StatementDescriptor: StatementDescriptor(s.opts.EventName),
		CredentialRef:       req.CredentialRef,
		ReceiptEmail:        req.ReceiptEmail,
		IdempotencyKey:      req.PaymentToken,
	}

	// Money may move from here on: the caller can no longer cancel.
	s.transition(run, entity.CheckoutChargeSubmitted)
	ctx = context.WithoutCancel(ctx)

	chargeCtx, cancelCharge := context.WithTimeout(ctx, s.opts.Timeout)
	charge, err := gateway.CreateCharge(chargeCtx, chargeReq)
	cancelCharge()
	if err != nil {
		failure := MapFailure(err)
		if failure.Reason == entity.FailureNetworkError && s.opts.ReconcileOnNetworkError {
			if found := s.reconcile(ctx, run, gateway, chargeReq); found != nil {
				return s.complete(ctx, run, credential, found, true)
			}
		}
		return s.fail(ctx, run, failure)
	}

	return s.complete(ctx, run, credential, charge, false)
}

// reconcile looks for a charge the processor created for this token even
// though the request got no answer.
func (s *CheckoutService) reconcile(ctx context.Context, run *checkoutRun, gateway provider.Gateway, req *provider.ChargeRequest) *entity.Charge {
	searchCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	charge, err := gateway.FindChargeByToken(searchCtx, req.IdempotencyKey)
	if err != nil {
		run.logger.Warn("Charge reconciliation failed", zap.Error(err))
		return nil
	}
	if charge == nil {
		run.logger.Info("No charge found during reconciliation")
		return nil
	}
	if charge.AmountMinorUnits != req.AmountMinorUnits {
		run.logger.Error("Reconciled charge amount does not match order",
			zap.String("transaction_id", charge.TransactionID),
			zap.Int64("charge_amount", charge.AmountMinorUnits),
			zap.Int64("order_amount", req.AmountMinorUnits))
		return nil
	}
	run.logger.Info("Reconciled charge after network error",
		zap.String("transaction_id", charge.TransactionID))
	return charge
}

func (s *CheckoutService) complete(ctx context.Context, run *checkoutRun, credential *entity.PaymentCredential, charge *entity.Charge, reconciled bool) (*entity.CheckoutResult, error) {
	s.transition(run, entity.CheckoutCompleted)

	details := map[string]interface{}{
		"charge": json.RawMessage(charge.RawProviderResponse),
	}
	if credential != nil && len(credential.Raw) > 0 {
		details["credential"] = json.RawMessage(credential.Raw)
	}
	if reconciled {
		details["reconciled"] = true
	}

	result := &entity.CheckoutResult{
		AttemptID:    run.attempt.ID,
		PaymentToken: run.attempt.Token,
		State:        entity.CheckoutCompleted,
		Status:       entity.PaymentStatusCompleted,
		Charge:       charge,
	}

	err := s.orders.RecordPaymentResult(ctx, run.attempt.Token, entity.PaymentStatusCompleted, entity.PaymentResultData{
		TransactionID: charge.TransactionID,
		Details:       details,
	})
	if err != nil {
		run.logger.Error("Charge succeeded but payment result was not recorded",
			zap.String("transaction_id", charge.TransactionID),
			zap.Error(err))
		return result, appErrors.Wrap(err, "payment captured but not recorded, retry with the same payment token")
	}

	run.logger.Info("Checkout completed",
		zap.String("transaction_id", charge.TransactionID),
		zap.Int64("amount", charge.AmountMinorUnits),
		zap.String("currency", charge.Currency))
	return result, nil
}

// fail records a processor failure. The credential is consumed either way.
func (s *CheckoutService) fail(ctx context.Context, run *checkoutRun, failure *entity.Failure) (*entity.CheckoutResult, error) {
	s.transition(run, entity.CheckoutFailed)

	fields := []zap.Field{
		zap.String("failure_reason", failure.Reason.String()),
		zap.ByteString("raw", failure.Raw),
		zap.Bool("retryable", failure.Retryable),
	}
	if failure.Reason == entity.FailureInvalidRequest {
		run.logger.Error("Processor rejected a malformed request", fields...)
	} else {
		run.logger.Warn("Checkout failed", fields...)
	}

	result := &entity.CheckoutResult{
		AttemptID:          run.attempt.ID,
		PaymentToken:       run.attempt.Token,
		State:              entity.CheckoutFailed,
		Status:             entity.PaymentStatusFailed,
		Failure:            failure,
		CredentialConsumed: true,
	}

	err := s.orders.RecordPaymentResult(ctx, run.attempt.Token, entity.PaymentStatusFailed, entity.PaymentResultData{
		Details: map[string]interface{}{
			"reason":    failure.Reason,
			"retryable": failure.Retryable,
			"raw":       failure.Raw,
		},
	})
	if errors.Is(err, customErr.ErrPaymentSettled) {
		run.logger.Warn("Payment was settled by another attempt, failure not recorded", zap.Error(err))
		return result, appErrors.NewAppError(appErrors.ErrConflict, "payment already completed for this payment token", err)
	}
	if err != nil {
		run.logger.Error("Failed to record payment failure", zap.Error(err))
		return result, appErrors.Wrap(err, "failed to record payment result")
	}
	return result, nil
}

// reject ends the attempt before any processor call. Nothing is recorded.
func (s *CheckoutService) reject(run *checkoutRun, reason entity.FailureReason, cause error) *entity.CheckoutResult {
	s.transition(run, entity.CheckoutFailed)
	run.logger.Info("Checkout rejected before charge",
		zap.String("failure_reason", reason.String()),
		zap.Error(cause))

	return &entity.CheckoutResult{
		AttemptID:    run.attempt.ID,
		PaymentToken: run.attempt.Token,
		State:        entity.CheckoutFailed,
		Status:       entity.PaymentStatusFailed,
		Failure:      PreflightFailure(reason),
	}
}

// cancel ends the attempt before any charge was dispatched. Like a rejection
// nothing is recorded; the order keeps whatever status it had.
func (s *CheckoutService) cancel(ctx context.Context, run *checkoutRun) (*entity.CheckoutResult, error) {
	s.transition(run, entity.CheckoutCancelled)
	run.logger.Info("Checkout cancelled by caller", zap.Error(ctx.Err()))

	return &entity.CheckoutResult{
		AttemptID:    run.attempt.ID,
		PaymentToken: run.attempt.Token,
		State:        entity.CheckoutCancelled,
		Status:       entity.PaymentStatusCancelled,
	}, nil
}

func (s *CheckoutService) transition(run *checkoutRun, next entity.CheckoutState) {
	if err := run.attempt.Transition(next); err != nil {
		// Only reachable through a programming error in this file.
		panic(err)
	}
	run.logger.Debug("Checkout state changed", zap.String("state", string(next)))
}

// Cancel records a user initiated cancellation for an order that has not been
// paid.
func (s *CheckoutService) Cancel(ctx context.Context, paymentToken string) error {
	if _, err := s.orders.GetOrder(ctx, paymentToken); err != nil {
		if errors.Is(err, customErr.ErrOrderNotFound) {
			return appErrors.NewAppError(appErrors.ErrNotFound, "order not found", err)
		}
		return appErrors.Wrap(err, "failed to load order")
	}

	status, err := s.orders.GetPaymentStatus(ctx, paymentToken)
	if err != nil {
		return appErrors.Wrap(err, "failed to load payment status")
	}
	switch status {
	case entity.PaymentStatusCompleted, entity.PaymentStatusRefunded, entity.PaymentStatusRefundFailed:
		return appErrors.NewAppError(appErrors.ErrConflict,
			fmt.Sprintf("payment is %s and cannot be cancelled", status), nil)
	}

	if err := s.orders.RecordPaymentResult(ctx, paymentToken, entity.PaymentStatusCancelled, entity.PaymentResultData{}); err != nil {
		if errors.Is(err, customErr.ErrPaymentSettled) {
			return appErrors.NewAppError(appErrors.ErrConflict, "payment is settled and cannot be cancelled", err)
		}
		return appErrors.Wrap(err, "failed to record payment result")
	}
	s.logger.Info("Payment cancelled", zap.String("payment_token", paymentToken))
	return nil
}

// WidgetData returns what the checkout widget renders for the order.
func (s *CheckoutService) WidgetData(ctx context.Context, paymentToken string) (*entity.WidgetData, error) {
	order, err := s.orders.GetOrder(ctx, paymentToken)
	if err != nil {
		if errors.Is(err, customErr.ErrOrderNotFound) {
			return nil, appErrors.NewAppError(appErrors.ErrNotFound, "order not found", err)
		}
		return nil, appErrors.Wrap(err, "failed to load order")
	}
	if !s.validator.Supports(order.Currency) {
		return nil, appErrors.NewAppError(appErrors.ErrUnprocessable, "currency is not supported", customErr.ErrUnsupportedCurrency)
	}

	creds, err := s.resolver.Resolve(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to resolve credentials")
	}

	return &entity.WidgetData{
		PublicKey:   creds.PublicKey,
		Name:        s.opts.EventName,
		Description: order.Description(),
		Amount:      order.AmountMinorUnits(),
		Currency:    order.Currency,
	}, nil
}
