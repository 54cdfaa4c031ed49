package model

import "time"

// PaymentResult is the latest payment status recorded for a payment token
type PaymentResult struct {
	ID                  int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PaymentToken        string    `gorm:"column:payment_token;uniqueIndex;size:64;not null" json:"payment_token"`
	Status              string    `gorm:"size:20;not null" json:"status"`
	TransactionID       *string   `gorm:"column:transaction_id;size:100;index" json:"transaction_id,omitempty"`
	RefundTransactionID *string   `gorm:"column:refund_transaction_id;size:100" json:"refund_transaction_id,omitempty"`
	Details             JSONB     `gorm:"type:jsonb" json:"details,omitempty"`
	CreatedAt           time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (PaymentResult) TableName() string {
	return "payment_results"
}

// PaymentAuditLog is an append-only history of payment status changes
type PaymentAuditLog struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PaymentToken string    `gorm:"column:payment_token;size:64;not null;index" json:"payment_token"`
	OldStatus    *string   `gorm:"size:20" json:"old_status,omitempty"`
	NewStatus    string    `gorm:"size:20;not null" json:"new_status"`
	Metadata     JSONB     `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName specifies the table name for GORM
func (PaymentAuditLog) TableName() string {
	return "payment_audit_log"
}
