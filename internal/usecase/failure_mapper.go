package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/wekeepgrowing/ticket-payment/internal/domain/entity"
	"github.com/wekeepgrowing/ticket-payment/internal/domain/provider"
)

var failureLabels = map[entity.FailureReason]string{
	entity.FailureDeclined:            "Your card was declined",
	entity.FailureRateLimited:         "The payment service is busy, please try again shortly",
	entity.FailureInvalidRequest:      "The payment could not be processed",
	entity.FailureAuthFailed:          "The payment gateway is not configured correctly",
	entity.FailureNetworkError:        "The payment service could not be reached, please retry",
	entity.FailureGeneric:             "The payment could not be completed",
	entity.FailureUnsupportedCurrency: "This currency is not supported",
	entity.FailureOrderInvalid:        "This order can no longer be paid",
}

const maxCodeLength = 64

// MapFailure classifies a gateway error. The first matching rule wins: declined,
// rate limited, invalid request, auth failed, network error, generic.
func MapFailure(err error) *entity.Failure {
	if err == nil {
		return nil
	}

	var perr *provider.ProviderError
	if !errors.As(err, &perr) {
		reason := entity.FailureGeneric
		if isNetworkError(err) {
			reason = entity.FailureNetworkError
		}
		return newFailure(reason, "", rawError(err))
	}

	raw := perr.Raw
	if len(raw) == 0 {
		raw = rawError(err)
	}

	switch {
	case perr.Type == "card_error" || perr.HTTPStatus == http.StatusPaymentRequired:
		code := perr.DeclineCode
		if code == "" {
			code = perr.Code
		}
		return newFailure(entity.FailureDeclined, code, raw)
	case perr.HTTPStatus == http.StatusTooManyRequests || perr.Code == "rate_limit":
		return newFailure(entity.FailureRateLimited, perr.Code, raw)
	case isInvalidRequest(perr):
		return newFailure(entity.FailureInvalidRequest, perr.Code, raw)
	case perr.HTTPStatus == http.StatusUnauthorized || perr.HTTPStatus == http.StatusForbidden:
		return newFailure(entity.FailureAuthFailed, perr.Code, raw)
	case perr.HTTPStatus == 0 && (perr.Err == nil || isNetworkError(perr.Err)):
		return newFailure(entity.FailureNetworkError, "", raw)
	default:
		return newFailure(entity.FailureGeneric, perr.Code, raw)
	}
}

// PreflightFailure builds the failure for a rejection made before any
// processor call.
func PreflightFailure(reason entity.FailureReason) *entity.Failure {
	return newFailure(reason, "", nil)
}

func isInvalidRequest(perr *provider.ProviderError) bool {
	switch perr.HTTPStatus {
	case http.StatusBadRequest, http.StatusNotFound, http.StatusConflict:
		return true
	case 0:
		return perr.Type == "invalid_request_error" || perr.Type == "idempotency_error"
	}
	return perr.Type == "idempotency_error"
}

func isNetworkError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func newFailure(reason entity.FailureReason, code string, raw json.RawMessage) *entity.Failure {
	return &entity.Failure{
		Reason:      reason,
		UserMessage: UserMessage(reason, code),
		Raw:         raw,
		Retryable:   reason == entity.FailureNetworkError,
	}
}

// UserMessage renders "<label> (<code>)". The code is reduced to lowercase
// letters, digits and underscores so free text never reaches the user.
func UserMessage(reason entity.FailureReason, code string) string {
	label, ok := failureLabels[reason]
	if !ok {
		label = failureLabels[entity.FailureGeneric]
	}
	if code = sanitizeCode(code); code != "" {
		return fmt.Sprintf("%s (%s)", label, code)
	}
	return label
}

func sanitizeCode(code string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(code) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
		if b.Len() >= maxCodeLength {
			break
		}
	}
	return b.String()
}

func rawError(err error) json.RawMessage {
	raw, mErr := json.Marshal(map[string]string{"error": err.Error()})
	if mErr != nil {
		return nil
	}
	return raw
}
