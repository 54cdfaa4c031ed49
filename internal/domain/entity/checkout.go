package entity

import "fmt"

// CheckoutState is the state of a single checkout attempt.
type CheckoutState string

const (
	CheckoutStarted            CheckoutState = "STARTED"
	CheckoutValidated          CheckoutState = "VALIDATED"
	CheckoutCredentialResolved CheckoutState = "CREDENTIAL_RESOLVED"
	CheckoutChargeSubmitted    CheckoutState = "CHARGE_SUBMITTED"
	CheckoutCompleted          CheckoutState = "COMPLETED"
	CheckoutFailed             CheckoutState = "FAILED"
	CheckoutCancelled          CheckoutState = "CANCELLED"
)

var checkoutTransitions = map[CheckoutState][]CheckoutState{
	CheckoutStarted:            {CheckoutValidated, CheckoutFailed, CheckoutCancelled},
	CheckoutValidated:          {CheckoutCredentialResolved, CheckoutFailed, CheckoutCancelled},
	CheckoutCredentialResolved: {CheckoutChargeSubmitted, CheckoutFailed, CheckoutCancelled},
	// Once the charge is dispatched the attempt can no longer be cancelled.
	CheckoutChargeSubmitted: {CheckoutCompleted, CheckoutFailed},
}

func (s CheckoutState) IsTerminal() bool {
	return s == CheckoutCompleted || s == CheckoutFailed || s == CheckoutCancelled
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s CheckoutState) CanTransitionTo(next CheckoutState) bool {
	for _, candidate := range checkoutTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// PaymentStatus returns the host status for a terminal state.
func (s CheckoutState) PaymentStatus() PaymentStatus {
	switch s {
	case CheckoutCompleted:
		return PaymentStatusCompleted
	case CheckoutFailed:
		return PaymentStatusFailed
	case CheckoutCancelled:
		return PaymentStatusCancelled
	default:
		return PaymentStatusPending
	}
}

// CheckoutAttempt tracks the state machine of one invocation.
type CheckoutAttempt struct {
	ID      string
	Token   PaymentToken
	State   CheckoutState
	History []CheckoutState
}

func NewCheckoutAttempt(id string, token PaymentToken) *CheckoutAttempt {
	return &CheckoutAttempt{
		ID:      id,
		Token:   token,
		State:   CheckoutStarted,
		History: []CheckoutState{CheckoutStarted},
	}
}

// Transition moves the attempt to next, refusing illegal moves.
func (a *CheckoutAttempt) Transition(next CheckoutState) error {
	if !a.State.CanTransitionTo(next) {
		return fmt.Errorf("illegal checkout transition %s -> %s", a.State, next)
	}
	a.State = next
	a.History = append(a.History, next)
	return nil
}

// CheckoutRequest is the client input for one checkout attempt.
type CheckoutRequest struct {
	PaymentToken  PaymentToken
	CredentialRef string
	ReceiptEmail  string
}

// CheckoutResult is the single terminal emission of a checkout attempt.
type CheckoutResult struct {
	AttemptID    string        `json:"attempt_id"`
	PaymentToken PaymentToken  `json:"payment_token"`
	State        CheckoutState `json:"state"`
	Status       PaymentStatus `json:"status"`
	Charge       *Charge       `json:"charge,omitempty"`
	Failure      *Failure      `json:"failure,omitempty"`

	// CredentialConsumed tells the client to obtain a fresh credential
	// before trying again.
	CredentialConsumed bool `json:"credential_consumed"`
}
