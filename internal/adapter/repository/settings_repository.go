package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/wekeepgrowing/ticket-payment/internal/config"
	"github.com/wekeepgrowing/ticket-payment/internal/domain/entity"
	"github.com/wekeepgrowing/ticket-payment/internal/domain/model"
	domainRepo "github.com/wekeepgrowing/ticket-payment/internal/domain/repository"
	"github.com/wekeepgrowing/ticket-payment/internal/infrastructure/crypto"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// settingsRepository keeps the gateway settings in a single row
type settingsRepository struct {
	db     *gorm.DB
	box    crypto.SecretBox
	logger *zap.Logger
}

// NewSettingsRepository creates a new settings repository instance. The secret
// key is sealed with box before it is written.
func NewSettingsRepository(db *gorm.DB, box crypto.SecretBox, logger *zap.Logger) domainRepo.SettingsRepository {
	return &settingsRepository{
		db:     db,
		box:    box,
		logger: logger,
	}
}

// Get returns the stored settings, empty when none were saved
func (r *settingsRepository) Get(ctx context.Context) (*entity.GatewaySettings, error) {
	var row model.GatewaySettings
	err := r.db.WithContext(ctx).Where("id = ?", model.GatewaySettingsID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &entity.GatewaySettings{}, nil
		}
		return nil, fmt.Errorf("failed to get gateway settings: %w", err)
	}

	secretKey, err := r.box.Open(row.SealedSecretKey)
	if err != nil {
		r.logger.Error("Failed to open stored secret key", zap.Error(err))
		return nil, fmt.Errorf("failed to open stored secret key: %w", err)
	}

	return &entity.GatewaySettings{
		SecretKey:         secretKey,
		PublicKey:         row.PublicKey,
		PredefinedAccount: row.PredefinedAccount,
	}, nil
}

// Save replaces the stored settings
func (r *settingsRepository) Save(ctx context.Context, settings *entity.GatewaySettings) error {
	sealed, err := r.box.Seal(settings.SecretKey)
	if err != nil {
		return fmt.Errorf("failed to seal secret key: %w", err)
	}

	row := model.GatewaySettings{
		ID:                model.GatewaySettingsID,
		SealedSecretKey:   sealed,
		PublicKey:         settings.PublicKey,
		PredefinedAccount: settings.PredefinedAccount,
	}
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"secret_key", "public_key", "predefined_account", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save gateway settings: %w", err)
	}
	return nil
}

// SeedSettings stores the configured keys when no settings row exists yet.
func SeedSettings(ctx context.Context, repo domainRepo.SettingsRepository, cfg *config.StripeConfig) (bool, error) {
	current, err := repo.Get(ctx)
	if err != nil {
		return false, err
	}
	if *current != (entity.GatewaySettings{}) || (cfg.SecretKey == "" && cfg.PublicKey == "") {
		return false, nil
	}
	return true, repo.Save(ctx, &entity.GatewaySettings{SecretKey: cfg.SecretKey, PublicKey: cfg.PublicKey})
}

// ConfigAccounts serves predefined accounts from the service configuration
type ConfigAccounts struct {
	accounts map[string]entity.PredefinedAccount
}

// NewConfigAccounts copies the configured predefined accounts
func NewConfigAccounts(cfg *config.StripeConfig) *ConfigAccounts {
	accounts := make(map[string]entity.PredefinedAccount, len(cfg.PredefinedAccounts))
	for key, account := range cfg.PredefinedAccounts {
		accounts[key] = entity.PredefinedAccount{
			Label:     account.Label,
			SecretKey: account.SecretKey,
			PublicKey: account.PublicKey,
		}
	}
	return &ConfigAccounts{accounts: accounts}
}

func (a *ConfigAccounts) PredefinedAccounts() map[string]entity.PredefinedAccount {
	return a.accounts
}
