package repository

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/wekeepgrowing/ticket-payment/internal/domain/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.TicketOrder{},
		&model.TicketOrderItem{},
		&model.PaymentResult{},
		&model.PaymentAuditLog{},
		&model.GatewaySettings{},
	))
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, token string, mutate func(o *model.TicketOrder)) *model.TicketOrder {
	t.Helper()
	reservedUntil := time.Now().Add(15 * time.Minute)
	order := &model.TicketOrder{
		PaymentToken:  token,
		Status:        model.OrderStatusPending,
		Currency:      "USD",
		Total:         decimal.RequireFromString("19.995"),
		ReservedUntil: &reservedUntil,
		Items: []model.TicketOrderItem{
			{Position: 0, Name: "Ticket", Quantity: 2},
			{Position: 1, Name: "VIP", Quantity: 1},
		},
	}
	if mutate != nil {
		mutate(order)
	}
	require.NoError(t, db.Create(order).Error)
	return order
}
