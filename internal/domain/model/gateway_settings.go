package model

import "time"

// GatewaySettingsID is the primary key of the only settings row.
const GatewaySettingsID = 1

// GatewaySettings stores the operator's processor settings. Predefined account
// keys are never stored here.
type GatewaySettings struct {
	ID                int64     `gorm:"primaryKey" json:"id"`
	SealedSecretKey   string    `gorm:"column:secret_key;size:512" json:"-"`
	PublicKey         string    `gorm:"size:255" json:"public_key"`
	PredefinedAccount string    `gorm:"size:100" json:"predefined_account"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (GatewaySettings) TableName() string {
	return "gateway_settings"
}
