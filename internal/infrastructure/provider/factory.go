package provider

import (
	"fmt"

	"github.com/wekeepgrowing/ticket-payment/internal/config"
	"github.com/wekeepgrowing/ticket-payment/internal/domain/entity"
	"github.com/wekeepgrowing/ticket-payment/internal/domain/provider"
	stripeProvider "github.com/wekeepgrowing/ticket-payment/internal/infrastructure/provider/stripe"
	"github.com/wekeepgrowing/ticket-payment/pkg/logger"
	"go.uber.org/zap"
)

// Factory creates payment gateways bound to resolved credentials
type Factory struct {
	config *config.StripeConfig
	logger *zap.Logger
}

// NewFactory creates a new provider factory
func NewFactory(cfg *config.StripeConfig, logger *zap.Logger) *Factory {
	return &Factory{
		config: cfg,
		logger: logger,
	}
}

// NewGateway returns a Stripe gateway using creds for this invocation only.
func (f *Factory) NewGateway(creds entity.Credentials) (provider.Gateway, error) {
	if creds.SecretKey == "" {
		return nil, fmt.Errorf("Stripe secret key not configured")
	}

	return stripeProvider.NewGateway(creds.SecretKey, stripeProvider.Options{
		APIURL:  f.config.APIURL,
		Timeout: f.config.Timeout,
		Logger:  logger.NewStripeLogger(f.logger),
	}, f.logger.Named("stripe")), nil
}
