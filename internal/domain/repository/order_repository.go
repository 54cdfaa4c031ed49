package repository

import (
	"context"

	"github.com/wekeepgrowing/ticket-payment/internal/domain/entity"
)

// OrderRepository is the host order system. It owns orders and persists every
// payment status change emitted by checkout and refund.
type OrderRepository interface {
	// GetOrder returns the order reserved under paymentToken or
	// errors.ErrOrderNotFound.
	GetOrder(ctx context.Context, paymentToken string) (*entity.Order, error)

	// VerifyOrder checks the order is still unclaimed and payable. A rejection is
	// returned as an *errors.OrderError.
	VerifyOrder(ctx context.Context, order *entity.Order) error

	RecordPaymentResult(ctx context.Context, paymentToken string, status entity.PaymentStatus, data entity.PaymentResultData) error

	// GetStoredTransactionID returns the transaction id of the completed charge
	// or errors.ErrNoTransaction.
	GetStoredTransactionID(ctx context.Context, paymentToken string) (string, error)

	// GetPaymentStatus returns the last recorded status, PENDING when none.
	GetPaymentStatus(ctx context.Context, paymentToken string) (entity.PaymentStatus, error)

	// ListPaymentTokens returns the tokens whose last recorded status is status,
	// oldest first.
	ListPaymentTokens(ctx context.Context, status entity.PaymentStatus) ([]string, error)
}

// PaymentEventPublisher fans out recorded payment results to other services.
type PaymentEventPublisher interface {
	PublishPaymentResult(ctx context.Context, event *entity.PaymentEvent) error
}
