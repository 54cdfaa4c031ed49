package entity

import (
	"encoding/json"
	"time"
)

// PaymentToken identifies one checkout attempt for one order and doubles as the
// processor idempotency key.
type PaymentToken = string

type PaymentStatus string

const (
	PaymentStatusPending      PaymentStatus = "pending"
	PaymentStatusCompleted    PaymentStatus = "completed"
	PaymentStatusFailed       PaymentStatus = "failed"
	PaymentStatusCancelled    PaymentStatus = "cancelled"
	PaymentStatusRefunded     PaymentStatus = "refunded"
	PaymentStatusRefundFailed PaymentStatus = "refund_failed"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed,
		PaymentStatusCancelled, PaymentStatusRefunded, PaymentStatusRefundFailed:
		return true
	default:
		return false
	}
}

// IsRefundable reports whether a charge recorded with this status can be refunded.
// A failed refund may be retried.
func (s PaymentStatus) IsRefundable() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusRefundFailed
}

// CanBecome reports whether a recorded status may be replaced by next. Once a
// charge is taken the record only moves forward through the refund statuses.
func (s PaymentStatus) CanBecome(next PaymentStatus) bool {
	switch s {
	case PaymentStatusCompleted:
		return next == PaymentStatusCompleted || next == PaymentStatusRefunded || next == PaymentStatusRefundFailed
	case PaymentStatusRefundFailed:
		return next == PaymentStatusRefunded || next == PaymentStatusRefundFailed
	case PaymentStatusRefunded:
		return next == PaymentStatusRefunded
	default:
		return true
	}
}

func (s PaymentStatus) String() string {
	return string(s)
}

// PaymentCredential is a tokenized payment instrument retrieved from the
// processor. It is single use.
type PaymentCredential struct {
	ID   string          `json:"id"`
	Used bool            `json:"used"`
	Raw  json.RawMessage `json:"raw,omitempty"`
}

// Charge is a charge created at the processor. Immutable once created.
type Charge struct {
	TransactionID       string          `json:"transaction_id"`
	AmountMinorUnits    int64           `json:"amount"`
	Currency            string          `json:"currency"`
	RawProviderResponse json.RawMessage `json:"raw,omitempty"`
}

// RefundRecord is the outcome of one full refund attempt.
type RefundRecord struct {
	PaymentToken        string          `json:"payment_token"`
	SourceTransactionID string          `json:"transaction_id"`
	RefundTransactionID string          `json:"refund_transaction_id,omitempty"`
	Status              PaymentStatus   `json:"status"`
	RawProviderResponse json.RawMessage `json:"-"`
	Failure             *Failure        `json:"failure,omitempty"`
}

// PaymentResultData is handed to the host order system with every status change.
type PaymentResultData struct {
	TransactionID       string                 `json:"transaction_id,omitempty"`
	RefundTransactionID string                 `json:"refund_transaction_id,omitempty"`
	Details             map[string]interface{} `json:"details,omitempty"`
}

// PaymentEvent is published after every recorded payment result.
type PaymentEvent struct {
	PaymentToken        string        `json:"payment_token"`
	Status              PaymentStatus `json:"status"`
	TransactionID       string        `json:"transaction_id,omitempty"`
	RefundTransactionID string        `json:"refund_transaction_id,omitempty"`
	OccurredAt          time.Time     `json:"occurred_at"`
}
