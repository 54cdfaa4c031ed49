package database

import (
	"github.com/wekeepgrowing/ticket-payment/internal/domain/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Models lists every table owned by the service
func Models() []interface{} {
	return []interface{}{
		&model.TicketOrder{},
		&model.TicketOrderItem{},
		&model.PaymentResult{},
		&model.PaymentAuditLog{},
		&model.GatewaySettings{},
	}
}

// Migrate runs database migrations
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running database migrations...")

	if err := db.AutoMigrate(Models()...); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}

	if err := createCustomIndexes(db); err != nil {
		logger.Error("Failed to create custom indexes", zap.Error(err))
		return err
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

// createCustomIndexes creates custom indexes that GORM doesn't handle automatically
func createCustomIndexes(db *gorm.DB) error {
	// Partial index for refund-all scans over completed payments
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_payment_results_completed ON payment_results (created_at) WHERE status = 'completed'`).Error; err != nil {
		return err
	}

	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_ticket_orders_pending ON ticket_orders (reserved_until) WHERE status = 'pending'`).Error; err != nil {
		return err
	}

	return nil
}
