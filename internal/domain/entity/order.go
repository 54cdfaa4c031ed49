package entity

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// LineItem is one ticket type in an order.
type LineItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Order is a reserved, priced order owned by the host order system.
type Order struct {
	ID           string          `json:"id"`
	PaymentToken string          `json:"payment_token"`
	Items        []LineItem      `json:"items"`
	Total        decimal.Decimal `json:"total"`
	Currency     string          `json:"currency"`
}

// TotalQuantity sums the quantity of all line items.
func (o *Order) TotalQuantity() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

// Description renders the line items the way they appear on the charge: one
// line per item, prefixed with "<qty>x " when more than one ticket is bought.
func (o *Order) Description() string {
	withQuantity := o.TotalQuantity() > 1

	var b strings.Builder
	for i, item := range o.Items {
		if i > 0 {
			b.WriteByte('\n')
		}
		if withQuantity {
			b.WriteString(strconv.Itoa(item.Quantity))
			b.WriteString("x ")
		}
		b.WriteString(item.Name)
	}
	return strings.TrimSpace(b.String())
}

// AmountMinorUnits converts the order total into the currency's minor unit,
// rounding half away from zero.
func (o *Order) AmountMinorUnits() int64 {
	return MinorUnits(o.Total, o.Currency)
}
