package errors

import "errors"

var (
	// ErrUnsupportedCurrency indicates the order currency is not accepted by the payment method
	ErrUnsupportedCurrency = errors.New("unsupported currency")

	// ErrOrderInvalid indicates the host order system refused the order
	ErrOrderInvalid = errors.New("order is no longer valid")

	// ErrOrderNotFound indicates no order exists for the payment token
	ErrOrderNotFound = errors.New("order not found")

	// ErrNoTransaction indicates the payment token has no recorded charge to refund
	ErrNoTransaction = errors.New("no transaction recorded for payment token")

	// ErrNotRefundable indicates the recorded payment is not in a refundable status
	ErrNotRefundable = errors.New("payment is not refundable")

	// ErrCheckoutInProgress indicates another checkout holds the payment token
	ErrCheckoutInProgress = errors.New("checkout already in progress for payment token")

	// ErrPaymentSettled indicates a charged payment would be moved back to an
	// unpaid status
	ErrPaymentSettled = errors.New("payment already settled")

	// ErrTokenNotFound indicates the processor does not know the credential reference
	ErrTokenNotFound = errors.New("payment credential not found")
)
