package usecase

import (
	"context"

	"github.com/wekeepgrowing/ticket-payment/internal/domain/entity"
)

// Feature is an optional capability a payment method supports.
type Feature string

const (
	FeatureRefundSingle Feature = "refund-single"
	FeatureRefundAll    Feature = "refund-all"
)

// PaymentMethod is what the ticketing host registers and calls.
type PaymentMethod interface {
	ID() string
	Name() string
	SupportedCurrencies() []string
	SupportedFeatures() []Feature
	Checkout(ctx context.Context, req entity.CheckoutRequest) (*entity.CheckoutResult, error)
	Refund(ctx context.Context, paymentToken string) (*entity.RefundRecord, error)
}

// CardPaymentMethod exposes the checkout and refund services as a PaymentMethod.
type CardPaymentMethod struct {
	id         string
	name       string
	currencies []string
	checkout   *CheckoutService
	refunds    *RefundService
}

// NewCardPaymentMethod creates the card payment method
func NewCardPaymentMethod(id, name string, currencies []string, checkout *CheckoutService, refunds *RefundService) *CardPaymentMethod {
	return &CardPaymentMethod{
		id:         id,
		name:       name,
		currencies: currencies,
		checkout:   checkout,
		refunds:    refunds,
	}
}

func (m *CardPaymentMethod) ID() string {
	return m.id
}

func (m *CardPaymentMethod) Name() string {
	return m.name
}

func (m *CardPaymentMethod) SupportedCurrencies() []string {
	out := make([]string, len(m.currencies))
	copy(out, m.currencies)
	return out
}

func (m *CardPaymentMethod) SupportedFeatures() []Feature {
	return []Feature{FeatureRefundSingle, FeatureRefundAll}
}

func (m *CardPaymentMethod) Checkout(ctx context.Context, req entity.CheckoutRequest) (*entity.CheckoutResult, error) {
	return m.checkout.Checkout(ctx, req)
}

func (m *CardPaymentMethod) Refund(ctx context.Context, paymentToken string) (*entity.RefundRecord, error) {
	return m.refunds.Refund(ctx, paymentToken)
}

// RefundAll refunds every token in order.
func (m *CardPaymentMethod) RefundAll(ctx context.Context, paymentTokens []string) []RefundOutcome {
	return m.refunds.RefundAll(ctx, paymentTokens)
}

// Cancel records a user initiated cancellation.
func (m *CardPaymentMethod) Cancel(ctx context.Context, paymentToken string) error {
	return m.checkout.Cancel(ctx, paymentToken)
}

// WidgetData returns what the checkout widget renders.
func (m *CardPaymentMethod) WidgetData(ctx context.Context, paymentToken string) (*entity.WidgetData, error) {
	return m.checkout.WidgetData(ctx, paymentToken)
}
