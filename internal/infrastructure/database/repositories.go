package database

import (
	"github.com/wekeepgrowing/ticket-payment/internal/adapter/repository"
	domainRepo "github.com/wekeepgrowing/ticket-payment/internal/domain/repository"
	"github.com/wekeepgrowing/ticket-payment/internal/infrastructure/crypto"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	Orders   domainRepo.OrderRepository
	Settings domainRepo.SettingsRepository
}

// NewRepositories creates new repository instances with database connection
func NewRepositories(db *gorm.DB, box crypto.SecretBox, logger *zap.Logger) *Repositories {
	return &Repositories{
		Orders:   repository.NewOrderRepository(db, logger),
		Settings: repository.NewSettingsRepository(db, box, logger),
	}
}
