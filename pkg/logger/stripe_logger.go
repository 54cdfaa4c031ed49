package logger

import (
	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"
)

// NewStripeLogger adapts zap to stripe-go's leveled logger. Per-request info
// lines from stripe-go are dropped; warnings and errors pass through.
func NewStripeLogger(logger *zap.Logger) stripe.LeveledLoggerInterface {
	return logger.Named("stripe").WithOptions(zap.IncreaseLevel(zap.WarnLevel)).Sugar()
}
