package entity

import "encoding/json"

// FailureReason is the closed set of outcomes for a failed processor call.
type FailureReason string

const (
	FailureDeclined       FailureReason = "DECLINED"
	FailureRateLimited    FailureReason = "RATE_LIMITED"
	FailureInvalidRequest FailureReason = "INVALID_REQUEST"
	FailureAuthFailed     FailureReason = "AUTH_FAILED"
	FailureNetworkError   FailureReason = "NETWORK_ERROR"
	FailureGeneric        FailureReason = "GENERIC_FAILURE"

	// Pre-flight reasons, no processor call was made.
	FailureUnsupportedCurrency FailureReason = "UNSUPPORTED_CURRENCY"
	FailureOrderInvalid        FailureReason = "ORDER_INVALID"
)

func (r FailureReason) String() string {
	return string(r)
}

// Failure is a mapped processor failure. Raw is diagnostic only and must never
// be shown to end users.
type Failure struct {
	Reason      FailureReason   `json:"reason"`
	UserMessage string          `json:"user_message,omitempty"`
	Raw         json.RawMessage `json:"-"`
	// Retryable is set for NETWORK_ERROR: the charge may have succeeded
	// remotely and must be retried with the same payment token.
	Retryable bool `json:"retryable"`
}
