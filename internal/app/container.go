// Package app wires configuration, storage and use cases for the server and
// the operator CLI.
package app

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	stripego "github.com/stripe/stripe-go/v79"
	"github.com/wekeepgrowing/ticket-payment/internal/adapter/event"
	"github.com/wekeepgrowing/ticket-payment/internal/adapter/repository"
	"github.com/wekeepgrowing/ticket-payment/internal/config"
	domainRepo "github.com/wekeepgrowing/ticket-payment/internal/domain/repository"
	"github.com/wekeepgrowing/ticket-payment/internal/infrastructure/cache"
	"github.com/wekeepgrowing/ticket-payment/internal/infrastructure/crypto"
	"github.com/wekeepgrowing/ticket-payment/internal/infrastructure/database"
	"github.com/wekeepgrowing/ticket-payment/internal/infrastructure/provider"
	"github.com/wekeepgrowing/ticket-payment/internal/usecase"
	"github.com/wekeepgrowing/ticket-payment/pkg/messaging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PaymentMethodID identifies the card payment method to the ticketing host.
const PaymentMethodID = "stripe"

// Container holds every long lived dependency.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	DB     *gorm.DB
	Redis  *redis.Client
	Events messaging.RedisClient

	Repositories *database.Repositories
	Orders       domainRepo.OrderRepository
	Payments     *usecase.CardPaymentMethod
	Settings     *usecase.SettingsService
}

// NewContainer connects storage, migrates, seeds settings and builds the use
// cases. Redis is optional; without it there is no checkout lock and no
// payment events.
func NewContainer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg.Service.Name != "" {
		stripego.SetAppInfo(&stripego.AppInfo{
			Name:    cfg.Service.Name,
			Version: cfg.Service.Version,
			URL:     cfg.Service.ClientURL,
		})
	}

	c := &Container{Config: cfg, Logger: logger}

	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	c.DB = db

	if err := database.Migrate(db, logger); err != nil {
		c.Close()
		return nil, err
	}

	box, err := newSecretBox(cfg, logger)
	if err != nil {
		c.Close()
		return nil, err
	}

	c.Repositories = database.NewRepositories(db, box, logger)
	seeded, err := repository.SeedSettings(ctx, c.Repositories.Settings, &cfg.Service.Stripe)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to seed gateway settings: %w", err)
	}
	if seeded {
		logger.Info("Gateway settings seeded from configuration")
	}

	c.Orders = c.Repositories.Orders
	var lock domainRepo.CheckoutLock
	if cfg.Redis.Enabled() {
		client, err := messaging.Dial(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.Redis = client
		c.Events = messaging.NewRedisClient(client)

		lock = cache.NewRedisCheckoutLock(client, cfg.Redis.LockTTL, logger)
		publisher := event.NewRedisPaymentPublisher(c.Events, cfg.Redis.EventsChannel)
		c.Orders = event.WithPaymentEvents(c.Orders, publisher, logger)
		logger.Info("Redis checkout lock and payment events enabled",
			zap.String("addr", cfg.Redis.Addr),
			zap.String("channel", cfg.Redis.EventsChannel))
	}

	c.buildUseCases(lock)
	return c, nil
}

func (c *Container) buildUseCases(lock domainRepo.CheckoutLock) {
	stripeCfg := &c.Config.Service.Stripe
	accounts := repository.NewConfigAccounts(stripeCfg)
	gateways := provider.NewFactory(stripeCfg, c.Logger)

	resolver := usecase.NewCredentialResolver(c.Repositories.Settings, accounts, c.Logger)
	validator := usecase.NewOrderValidator(c.Orders, stripeCfg.SupportedCurrencies)

	checkout := usecase.NewCheckoutService(c.Orders, validator, resolver, gateways, lock, usecase.CheckoutOptions{
		EventName:               c.Config.Service.EventName,
		Timeout:                 stripeCfg.Timeout,
		ReconcileOnNetworkError: stripeCfg.Reconcile(),
	}, c.Logger)
	refunds := usecase.NewRefundService(c.Orders, resolver, gateways, stripeCfg.Timeout, c.Logger)

	c.Payments = usecase.NewCardPaymentMethod(PaymentMethodID, "Stripe", stripeCfg.SupportedCurrencies, checkout, refunds)
	c.Settings = usecase.NewSettingsService(c.Repositories.Settings, accounts, c.Logger)
}

func newSecretBox(cfg *config.Config, logger *zap.Logger) (crypto.SecretBox, error) {
	if cfg.Service.SettingsEncryptionKey == "" {
		logger.Warn("service.settings_encryption_key is empty, the Stripe secret key is stored unencrypted")
		return crypto.PlainBox{}, nil
	}
	box, err := crypto.NewAESSecretBox(cfg.Service.SettingsEncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("invalid settings encryption key: %w", err)
	}
	return box, nil
}

// Close releases Redis and the database. It is safe on a partly built
// container.
func (c *Container) Close() {
	if c.Events != nil {
		if err := c.Events.Close(); err != nil {
			c.Logger.Error("Failed to close redis connection", zap.Error(err))
		}
	} else if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.DB != nil {
		if err := database.Close(c.DB, c.Logger); err != nil {
			c.Logger.Error("Failed to close database connection", zap.Error(err))
		}
	}
}
