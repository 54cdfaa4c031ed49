package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wekeepgrowing/ticket-payment/internal/adapter/repository"
	"github.com/wekeepgrowing/ticket-payment/internal/domain/entity"
	"github.com/wekeepgrowing/ticket-payment/internal/domain/model"
	"github.com/wekeepgrowing/ticket-payment/internal/domain/provider"
	domainRepo "github.com/wekeepgrowing/ticket-payment/internal/domain/repository"
	"github.com/wekeepgrowing/ticket-payment/internal/infrastructure/database"
	appErrors "github.com/wekeepgrowing/ticket-payment/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// storedPayments runs checkout and refund against the gorm order repository.
type storedPayments struct {
	db       *gorm.DB
	orders   domainRepo.OrderRepository
	gateway  *MockGateway
	checkout *CheckoutService
	refunds  *RefundService
}

func newStoredPayments(t *testing.T) *storedPayments {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db, zap.NewNop()))

	settings := new(MockSettingsRepository)
	settings.On("Get", mock.Anything).Return(&entity.GatewaySettings{SecretKey: "sk_a", PublicKey: "pk_a"}, nil).Maybe()
	gateway := new(MockGateway)
	factory := new(MockGatewayFactory)
	factory.On("NewGateway", mock.Anything).Return(gateway, nil).Maybe()

	orders := repository.NewOrderRepository(db, zap.NewNop())
	resolver := NewCredentialResolver(settings, testAccounts, zap.NewNop())
	validator := NewOrderValidator(orders, []string{"AUD", "USD"})

	return &storedPayments{
		db:       db,
		orders:   orders,
		gateway:  gateway,
		checkout: NewCheckoutService(orders, validator, resolver, factory, nil, CheckoutOptions{Timeout: time.Second}, zap.NewNop()),
		refunds:  NewRefundService(orders, resolver, factory, time.Second, zap.NewNop()),
	}
}

func (p *storedPayments) seedOrder(t *testing.T, token string) {
	t.Helper()
	reservedUntil := time.Now().Add(15 * time.Minute)
	require.NoError(t, p.db.Create(&model.TicketOrder{
		PaymentToken:  token,
		Status:        model.OrderStatusPending,
		Currency:      "USD",
		Total:         decimal.RequireFromString("20.00"),
		ReservedUntil: &reservedUntil,
		Items:         []model.TicketOrderItem{{Position: 0, Name: "Ticket", Quantity: 1}},
	}).Error)
}

func (p *storedPayments) expectRefund(transactionID string) {
	p.gateway.On("CreateRefund", mock.Anything, transactionID).
		Return(&provider.RefundResult{RefundTransactionID: "re_1", Status: provider.RefundStatusSucceeded}, nil)
}

func TestStoredPayments_CancelledCheckoutKeepsPaidStatus(t *testing.T) {
	p := newStoredPayments(t)
	ctx := context.Background()
	p.seedOrder(t, testToken)
	require.NoError(t, p.orders.RecordPaymentResult(ctx, testToken, entity.PaymentStatusCompleted, entity.PaymentResultData{TransactionID: "ch_1"}))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	result, err := p.checkout.Checkout(cancelled, entity.CheckoutRequest{PaymentToken: testToken, CredentialRef: "tok_card"})
	require.NoError(t, err)
	assert.Equal(t, entity.CheckoutCancelled, result.State)

	status, err := p.orders.GetPaymentStatus(ctx, testToken)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusCompleted, status)

	p.expectRefund("ch_1")
	record, err := p.refunds.Refund(ctx, testToken)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusRefunded, record.Status)
}

func TestStoredPayments_CancelledCheckoutUnknownToken(t *testing.T) {
	p := newStoredPayments(t)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := p.checkout.Checkout(cancelled, entity.CheckoutRequest{PaymentToken: "tok_unknown", CredentialRef: "tok_card"})
	require.NoError(t, err)
	assert.Equal(t, entity.CheckoutCancelled, result.State)

	var results int64
	require.NoError(t, p.db.Model(&model.PaymentResult{}).Count(&results).Error)
	assert.Zero(t, results)
}

func TestStoredPayments_DuplicateFailureKeepsCompletedCharge(t *testing.T) {
	p := newStoredPayments(t)
	ctx := context.Background()
	p.seedOrder(t, testToken)

	p.gateway.On("RetrieveToken", mock.Anything, "tok_card").Return(&entity.PaymentCredential{ID: "tok_card"}, nil)
	// The concurrent attempt wins the charge while this one is in flight.
	p.gateway.On("CreateCharge", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			require.NoError(t, p.orders.RecordPaymentResult(ctx, testToken, entity.PaymentStatusCompleted,
				entity.PaymentResultData{TransactionID: "ch_1"}))
		}).
		Return(nil, &provider.ProviderError{Type: "idempotency_error", HTTPStatus: 400, Message: "Keys for idempotent requests can only be used with the same parameters"})

	result, err := p.checkout.Checkout(ctx, entity.CheckoutRequest{PaymentToken: testToken, CredentialRef: "tok_card"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict, appErrors.CodeOf(err))
	require.NotNil(t, result)
	assert.Equal(t, entity.FailureInvalidRequest, result.Failure.Reason)

	status, err := p.orders.GetPaymentStatus(ctx, testToken)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusCompleted, status)

	p.expectRefund("ch_1")
	record, err := p.refunds.Refund(ctx, testToken)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusRefunded, record.Status)
	assert.Equal(t, "re_1", record.RefundTransactionID)
}

func TestStoredPayments_CancelAfterPaymentRefused(t *testing.T) {
	p := newStoredPayments(t)
	ctx := context.Background()
	p.seedOrder(t, testToken)
	require.NoError(t, p.orders.RecordPaymentResult(ctx, testToken, entity.PaymentStatusCompleted, entity.PaymentResultData{TransactionID: "ch_1"}))

	err := p.checkout.Cancel(ctx, testToken)
	assert.Equal(t, appErrors.ErrConflict, appErrors.CodeOf(err))
}
