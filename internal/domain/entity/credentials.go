package entity

// Credentials are the API keys used for one processor call.
type Credentials struct {
	SecretKey string
	PublicKey string
	// PredefinedAccount is the key of the predefined account in use, if any.
	PredefinedAccount string
}

func (c Credentials) IsZero() bool {
	return c.SecretKey == "" && c.PublicKey == ""
}

// PredefinedAccount is an operator supplied set of processor credentials.
type PredefinedAccount struct {
	Label     string
	SecretKey string
	PublicKey string
}

// GatewaySettings is what the settings store persists. It never contains
// predefined account keys.
type GatewaySettings struct {
	SecretKey         string `json:"-"`
	PublicKey         string `json:"public_key"`
	PredefinedAccount string `json:"predefined_account"`
}

// SettingsInput is a settings form submission. Nil fields are left unchanged.
type SettingsInput struct {
	SecretKey         *string `json:"secret_key"`
	PublicKey         *string `json:"public_key"`
	PredefinedAccount *string `json:"predefined_account"`
}

// WidgetData is rendered by the checkout widget.
type WidgetData struct {
	PublicKey   string `json:"public_key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
}
