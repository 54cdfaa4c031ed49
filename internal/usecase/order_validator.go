package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/wekeepgrowing/ticket-payment/internal/domain/entity"
	customErr "github.com/wekeepgrowing/ticket-payment/internal/domain/errors"
	domainRepo "github.com/wekeepgrowing/ticket-payment/internal/domain/repository"
)

// OrderValidator gates an order before any money moves.
type OrderValidator struct {
	orders    domainRepo.OrderRepository
	supported map[string]bool
}

// NewOrderValidator creates a validator accepting the given ISO currency codes.
func NewOrderValidator(orders domainRepo.OrderRepository, supportedCurrencies []string) *OrderValidator {
	supported := make(map[string]bool, len(supportedCurrencies))
	for _, c := range supportedCurrencies {
		supported[strings.ToUpper(c)] = true
	}
	return &OrderValidator{orders: orders, supported: supported}
}

// Supports reports whether currency is accepted.
func (v *OrderValidator) Supports(currency string) bool {
	return v.supported[strings.ToUpper(currency)]
}

// Validate fails with ErrUnsupportedCurrency before asking the order system to
// verify the order. Any rejection from the order system matches ErrOrderInvalid.
func (v *OrderValidator) Validate(ctx context.Context, order *entity.Order) error {
	if !v.Supports(order.Currency) {
		return fmt.Errorf("%w: %s", customErr.ErrUnsupportedCurrency, order.Currency)
	}
	return v.orders.VerifyOrder(ctx, order)
}
