package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the reservation state of a ticket order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRefunded  OrderStatus = "refunded"
)

// TicketOrder represents an order reserved by the ticketing frontend
type TicketOrder struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	PaymentToken  string          `gorm:"column:payment_token;uniqueIndex;size:64;not null" json:"payment_token"`
	Status        OrderStatus     `gorm:"size:20;not null;default:'pending'" json:"status"`
	Currency      string          `gorm:"size:3;not null" json:"currency"`
	Total         decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"total"`
	ReservedUntil *time.Time      `json:"reserved_until,omitempty"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Items []TicketOrderItem `gorm:"foreignKey:OrderID" json:"items"`
}

// TableName specifies the table name for GORM
func (TicketOrder) TableName() string {
	return "ticket_orders"
}

// TicketOrderItem is one ticket type in an order
type TicketOrderItem struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID  int64  `gorm:"not null;index" json:"order_id"`
	Position int    `gorm:"not null;default:0" json:"position"`
	Name     string `gorm:"size:255;not null" json:"name"`
	Quantity int    `gorm:"not null" json:"quantity"`
}

// TableName specifies the table name for GORM
func (TicketOrderItem) TableName() string {
	return "ticket_order_items"
}
