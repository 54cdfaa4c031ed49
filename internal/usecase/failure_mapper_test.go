package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wekeepgrowing/ticket-payment/internal/domain/entity"
	"github.com/wekeepgrowing/ticket-payment/internal/domain/provider"
)

func TestMapFailure(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		reason      entity.FailureReason
		userMessage string
		retryable   bool
	}{
		{
			name: "card declined",
			err: &provider.ProviderError{
				Type: "card_error", Code: "card_declined", DeclineCode: "insufficient_funds",
				Message: "Your card has insufficient funds.", HTTPStatus: 402,
			},
			reason:      entity.FailureDeclined,
			userMessage: "Your card was declined (insufficient_funds)",
		},
		{
			name:        "declined without decline code",
			err:         &provider.ProviderError{Type: "card_error", Code: "expired_card", HTTPStatus: 402},
			reason:      entity.FailureDeclined,
			userMessage: "Your card was declined (expired_card)",
		},
		{
			name:        "rate limited",
			err:         &provider.ProviderError{Type: "invalid_request_error", Code: "rate_limit", HTTPStatus: 429},
			reason:      entity.FailureRateLimited,
			userMessage: "The payment service is busy, please try again shortly (rate_limit)",
		},
		{
			name:        "invalid request",
			err:         &provider.ProviderError{Type: "invalid_request_error", Code: "parameter_missing", HTTPStatus: 400},
			reason:      entity.FailureInvalidRequest,
			userMessage: "The payment could not be processed (parameter_missing)",
		},
		{
			name:        "idempotency key reused with other parameters",
			err:         &provider.ProviderError{Type: "idempotency_error", HTTPStatus: 400},
			reason:      entity.FailureInvalidRequest,
			userMessage: "The payment could not be processed",
		},
		{
			name:        "bad api key reported as invalid_request_error with 401",
			err:         &provider.ProviderError{Type: "invalid_request_error", HTTPStatus: 401, Message: "Invalid API Key provided: sk_test_***"},
			reason:      entity.FailureAuthFailed,
			userMessage: "The payment gateway is not configured correctly",
		},
		{
			name:        "permission error",
			err:         &provider.ProviderError{Type: "invalid_request_error", HTTPStatus: 403},
			reason:      entity.FailureAuthFailed,
			userMessage: "The payment gateway is not configured correctly",
		},
		{
			name:        "connection refused",
			err:         &provider.ProviderError{Err: &url.Error{Op: "Post", URL: "https://api.stripe.com/v1/charges", Err: &net.OpError{Op: "dial", Err: errors.New("connection refused")}}},
			reason:      entity.FailureNetworkError,
			userMessage: "The payment service could not be reached, please retry",
			retryable:   true,
		},
		{
			name:        "timeout",
			err:         fmt.Errorf("charge: %w", context.DeadlineExceeded),
			reason:      entity.FailureNetworkError,
			userMessage: "The payment service could not be reached, please retry",
			retryable:   true,
		},
		{
			name:        "processor outage",
			err:         &provider.ProviderError{Type: "api_error", HTTPStatus: 500},
			reason:      entity.FailureGeneric,
			userMessage: "The payment could not be completed",
		},
		{
			name:        "unknown error",
			err:         errors.New("something odd"),
			reason:      entity.FailureGeneric,
			userMessage: "The payment could not be completed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failure := MapFailure(tt.err)
			assert.Equal(t, tt.reason, failure.Reason)
			assert.Equal(t, tt.userMessage, failure.UserMessage)
			assert.Equal(t, tt.retryable, failure.Retryable)
			assert.NotEmpty(t, failure.Raw)
		})
	}
}

func TestMapFailure_Nil(t *testing.T) {
	assert.Nil(t, MapFailure(nil))
}

func TestMapFailure_NoRawLeak(t *testing.T) {
	raw := json.RawMessage(`{"error":{"type":"card_error","code":"card_declined","message":"<script>alert(1)</script> Your card was declined."}}`)
	failure := MapFailure(&provider.ProviderError{
		Type:       "card_error",
		Code:       "card_declined\"}",
		Message:    "<script>alert(1)</script> Your card was declined.",
		HTTPStatus: 402,
		Raw:        raw,
	})

	assert.Equal(t, "Your card was declined (card_declined)", failure.UserMessage)
	assert.NotContains(t, failure.UserMessage, "{")
	assert.NotContains(t, failure.UserMessage, "script")
	assert.JSONEq(t, string(raw), string(failure.Raw))
}

func TestUserMessage_LongCodeTruncated(t *testing.T) {
	code := ""
	for i := 0; i < 100; i++ {
		code += "a"
	}
	msg := UserMessage(entity.FailureGeneric, code)
	assert.Len(t, msg, len("The payment could not be completed ()")+maxCodeLength)
}
