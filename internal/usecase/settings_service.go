package usecase

import (
	"context"
	"fmt"

	"github.com/wekeepgrowing/ticket-payment/internal/domain/entity"
	domainRepo "github.com/wekeepgrowing/ticket-payment/internal/domain/repository"
	"go.uber.org/zap"
)

// SettingsService validates and persists the operator's gateway settings.
type SettingsService struct {
	settings domainRepo.SettingsRepository
	accounts domainRepo.PredefinedAccountSource
	logger   *zap.Logger
}

// NewSettingsService creates a new settings service instance
func NewSettingsService(
	settings domainRepo.SettingsRepository,
	accounts domainRepo.PredefinedAccountSource,
	logger *zap.Logger,
) *SettingsService {
	return &SettingsService{
		settings: settings,
		accounts: accounts,
		logger:   logger,
	}
}

// Get returns the stored settings.
func (s *SettingsService) Get(ctx context.Context) (*entity.GatewaySettings, error) {
	return s.settings.Get(ctx)
}

// Save applies input on top of the stored settings. Selecting a known
// predefined account clears any stored secret and public key; an unknown
// selection is stored as no selection.
func (s *SettingsService) Save(ctx context.Context, input entity.SettingsInput) (*entity.GatewaySettings, error) {
	current, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load gateway settings: %w", err)
	}

	next := ApplySettings(*current, input, s.accounts.PredefinedAccounts())
	if input.PredefinedAccount != nil && *input.PredefinedAccount != "" && next.PredefinedAccount == "" {
		s.logger.Warn("Rejected unknown predefined account",
			zap.String("predefined_account", *input.PredefinedAccount))
	}

	if err := s.settings.Save(ctx, &next); err != nil {
		return nil, fmt.Errorf("failed to save gateway settings: %w", err)
	}

	s.logger.Info("Gateway settings saved",
		zap.String("predefined_account", next.PredefinedAccount),
		zap.Bool("has_secret_key", next.SecretKey != ""),
		zap.Bool("has_public_key", next.PublicKey != ""))
	return &next, nil
}

// ApplySettings computes the settings to persist.
func ApplySettings(current entity.GatewaySettings, input entity.SettingsInput, accounts map[string]entity.PredefinedAccount) entity.GatewaySettings {
	next := current
	if input.SecretKey != nil {
		next.SecretKey = *input.SecretKey
	}
	if input.PublicKey != nil {
		next.PublicKey = *input.PublicKey
	}
	if input.PredefinedAccount == nil {
		return next
	}

	if _, ok := accounts[*input.PredefinedAccount]; ok && *input.PredefinedAccount != "" {
		next.SecretKey = ""
		next.PublicKey = ""
		next.PredefinedAccount = *input.PredefinedAccount
	} else {
		next.PredefinedAccount = ""
	}
	return next
}
