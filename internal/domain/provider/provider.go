package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wekeepgrowing/ticket-payment/internal/domain/entity"
)

// Gateway is the only component that talks to the card processor. Every call is
// one outbound request; nothing is retried internally.
type Gateway interface {
	// RetrieveToken looks up a client supplied credential reference.
	RetrieveToken(ctx context.Context, credentialRef string) (*entity.PaymentCredential, error)

	// CreateCharge submits a charge. IdempotencyKey must be the payment token so
	// the processor collapses retries into a single charge.
	CreateCharge(ctx context.Context, req *ChargeRequest) (*entity.Charge, error)

	// CreateRefund issues a full refund of a previously created charge.
	CreateRefund(ctx context.Context, transactionID string) (*RefundResult, error)

	// FindChargeByToken searches for a charge created for paymentToken. It
	// returns nil without error when no charge exists.
	FindChargeByToken(ctx context.Context, paymentToken string) (*entity.Charge, error)

	// GetProviderName returns the provider name
	GetProviderName() string
}

// GatewayFactory builds a Gateway bound to one set of credentials.
type GatewayFactory interface {
	NewGateway(creds entity.Credentials) (Gateway, error)
}

// ChargeRequest represents a provider-agnostic charge
type ChargeRequest struct {
	AmountMinorUnits    int64  `json:"amount"`
	Currency            string `json:"currency"`
	Description         string `json:"description"`
	StatementDescriptor string `json:"statement_descriptor"`
	CredentialRef       string `json:"credential_ref"`
	ReceiptEmail        string `json:"receipt_email,omitempty"`
	IdempotencyKey      string `json:"idempotency_key"`
}

// RefundResult is the processor's answer to a refund request.
type RefundResult struct {
	RefundTransactionID string          `json:"refund_transaction_id"`
	Status              RefundStatus    `json:"status"`
	Raw                 json.RawMessage `json:"raw,omitempty"`
}

type RefundStatus string

const (
	RefundStatusSucceeded RefundStatus = "succeeded"
	RefundStatusPending   RefundStatus = "pending"
	RefundStatusFailed    RefundStatus = "failed"
	RefundStatusCanceled  RefundStatus = "canceled"
)

// Accepted reports whether the processor took the refund.
func (s RefundStatus) Accepted() bool {
	return s == RefundStatusSucceeded || s == RefundStatusPending
}

// ProviderType represents the type of payment provider
type ProviderType string

const (
	ProviderTypeStripe ProviderType = "stripe"
)

// ProviderError carries the structured fields of a processor failure. A zero
// HTTPStatus means no response was received.
type ProviderError struct {
	Type        string          `json:"type,omitempty"`
	Code        string          `json:"code,omitempty"`
	DeclineCode string          `json:"decline_code,omitempty"`
	Message     string          `json:"message,omitempty"`
	HTTPStatus  int             `json:"http_status,omitempty"`
	RequestID   string          `json:"request_id,omitempty"`
	Raw         json.RawMessage `json:"raw,omitempty"`
	Err         error           `json:"-"`
}

func (e *ProviderError) Error() string {
	if e.HTTPStatus == 0 && e.Err != nil {
		return fmt.Sprintf("provider request failed: %v", e.Err)
	}
	if e.Code != "" {
		return fmt.Sprintf("provider error %d %s/%s: %s", e.HTTPStatus, e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("provider error %d %s: %s", e.HTTPStatus, e.Type, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
