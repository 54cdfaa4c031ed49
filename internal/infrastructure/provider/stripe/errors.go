package stripe

import (
	"encoding/json"
	"errors"

	stripego "github.com/stripe/stripe-go/v79"
	"github.com/wekeepgrowing/ticket-payment/internal/domain/provider"
)

// toProviderError copies the structured fields of a Stripe error. Anything
// else is a transport failure and keeps HTTPStatus at zero.
func toProviderError(err error) *provider.ProviderError {
	var stripeErr *stripego.Error
	if !errors.As(err, &stripeErr) {
		return &provider.ProviderError{Err: err}
	}

	var raw json.RawMessage
	if stripeErr.LastResponse != nil && len(stripeErr.LastResponse.RawJSON) > 0 {
		raw = json.RawMessage(stripeErr.LastResponse.RawJSON)
	} else if b, mErr := json.Marshal(stripeErr); mErr == nil {
		raw = b
	}

	return &provider.ProviderError{
		Type:        string(stripeErr.Type),
		Code:        string(stripeErr.Code),
		DeclineCode: string(stripeErr.DeclineCode),
		Message:     stripeErr.Msg,
		HTTPStatus:  stripeErr.HTTPStatusCode,
		RequestID:   stripeErr.RequestID,
		Raw:         raw,
		Err:         err,
	}
}
