package errors

import "fmt"

// OrderError describes why the host order system rejected an order.
type OrderError struct {
	Type         string
	Message      string
	PaymentToken string
	Cause        error
}

func (e *OrderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (token: %s) - %v", e.Type, e.Message, e.PaymentToken, e.Cause)
	}
	return fmt.Sprintf("%s: %s (token: %s)", e.Type, e.Message, e.PaymentToken)
}

func (e *OrderError) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is match every OrderError against ErrOrderInvalid.
func (e *OrderError) Is(target error) bool {
	return target == ErrOrderInvalid
}

// Order rejection types
const (
	ErrTypeOrderNotPending        = "ORDER_NOT_PENDING"
	ErrTypeReservationExpired     = "RESERVATION_EXPIRED"
	ErrTypeAlreadyPaid            = "ALREADY_PAID"
	ErrTypeOrderEmpty             = "ORDER_EMPTY"
	ErrTypeOrderAmountNotPositive = "ORDER_AMOUNT_NOT_POSITIVE"
)

func NewOrderError(errType, token, message string) *OrderError {
	return &OrderError{Type: errType, PaymentToken: token, Message: message}
}
