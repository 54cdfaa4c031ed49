package errors

// Common error codes shared by every transport.
const (
	ErrInternal        = "INTERNAL"
	ErrNotFound        = "NOT_FOUND"
	ErrInvalidArgument = "INVALID_ARGUMENT"
	ErrUnauthenticated = "UNAUTHENTICATED"
	ErrUnauthorized    = "UNAUTHORIZED"
	ErrConflict        = "CONFLICT"
	ErrTimeout         = "TIMEOUT"
	ErrNotImplemented  = "NOT_IMPLEMENTED"

	// Payment specific codes
	ErrUnprocessable  = "UNPROCESSABLE"
	ErrPaymentFailed  = "PAYMENT_FAILED"
	ErrUpstreamFailed = "UPSTREAM_FAILED"
)
