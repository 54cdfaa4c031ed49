package repository

import (
	"context"

	"github.com/wekeepgrowing/ticket-payment/internal/domain/entity"
)

// SettingsRepository stores the operator's gateway settings.
type SettingsRepository interface {
	Get(ctx context.Context) (*entity.GatewaySettings, error)
	Save(ctx context.Context, settings *entity.GatewaySettings) error
}

// PredefinedAccountSource lists the code-level predefined accounts.
type PredefinedAccountSource interface {
	PredefinedAccounts() map[string]entity.PredefinedAccount
}

// CheckoutLock serializes checkout attempts on the same payment token across
// service instances.
type CheckoutLock interface {
	// Acquire returns a release func, or errors.ErrCheckoutInProgress when the
	// token is already held.
	Acquire(ctx context.Context, paymentToken string) (release func(), err error)
}
