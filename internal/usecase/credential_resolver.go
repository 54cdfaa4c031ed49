package usecase

import (
	"context"
	"fmt"

	"github.com/wekeepgrowing/ticket-payment/internal/domain/entity"
	domainRepo "github.com/wekeepgrowing/ticket-payment/internal/domain/repository"
	"go.uber.org/zap"
)

// CredentialResolver works out which API keys a single checkout or refund uses.
type CredentialResolver struct {
	settings domainRepo.SettingsRepository
	accounts domainRepo.PredefinedAccountSource
	logger   *zap.Logger
}

// NewCredentialResolver creates a new credential resolver instance
func NewCredentialResolver(
	settings domainRepo.SettingsRepository,
	accounts domainRepo.PredefinedAccountSource,
	logger *zap.Logger,
) *CredentialResolver {
	return &CredentialResolver{
		settings: settings,
		accounts: accounts,
		logger:   logger,
	}
}

// Resolve reads the stored settings and applies the predefined account
// override. Callers resolve once per invocation and pass the value along.
func (r *CredentialResolver) Resolve(ctx context.Context) (entity.Credentials, error) {
	stored, err := r.settings.Get(ctx)
	if err != nil {
		return entity.Credentials{}, fmt.Errorf("failed to load gateway settings: %w", err)
	}

	creds := ResolveCredentials(
		entity.Credentials{SecretKey: stored.SecretKey, PublicKey: stored.PublicKey},
		stored.PredefinedAccount,
		r.accounts.PredefinedAccounts(),
	)
	if stored.PredefinedAccount != "" && creds.PredefinedAccount == "" {
		r.logger.Warn("Stored predefined account is unknown, falling back to configured keys",
			zap.String("predefined_account", stored.PredefinedAccount))
	}
	return creds, nil
}

// ResolveCredentials returns the predefined account's keys when key names a
// known account and the configured keys otherwise. It never mutates storage.
func ResolveCredentials(configured entity.Credentials, key string, accounts map[string]entity.PredefinedAccount) entity.Credentials {
	if key == "" {
		return configured
	}
	account, ok := accounts[key]
	if !ok {
		return configured
	}
	return entity.Credentials{
		SecretKey:         account.SecretKey,
		PublicKey:         account.PublicKey,
		PredefinedAccount: key,
	}
}
