package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/wekeepgrowing/ticket-payment/internal/domain/entity"
	"github.com/wekeepgrowing/ticket-payment/internal/domain/provider"
)

// MockOrderRepository is a mock implementation of OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) GetOrder(ctx context.Context, paymentToken string) (*entity.Order, error) {
	args := m.Called(ctx, paymentToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Order), args.Error(1)
}

func (m *MockOrderRepository) VerifyOrder(ctx context.Context, order *entity.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) RecordPaymentResult(ctx context.Context, paymentToken string, status entity.PaymentStatus, data entity.PaymentResultData) error {
	args := m.Called(ctx, paymentToken, status, data)
	return args.Error(0)
}

func (m *MockOrderRepository) GetStoredTransactionID(ctx context.Context, paymentToken string) (string, error) {
	args := m.Called(ctx, paymentToken)
	return args.String(0), args.Error(1)
}

func (m *MockOrderRepository) GetPaymentStatus(ctx context.Context, paymentToken string) (entity.PaymentStatus, error) {
	args := m.Called(ctx, paymentToken)
	return args.Get(0).(entity.PaymentStatus), args.Error(1)
}

func (m *MockOrderRepository) ListPaymentTokens(ctx context.Context, status entity.PaymentStatus) ([]string, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockSettingsRepository is a mock implementation of SettingsRepository
type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) Get(ctx context.Context) (*entity.GatewaySettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.GatewaySettings), args.Error(1)
}

func (m *MockSettingsRepository) Save(ctx context.Context, settings *entity.GatewaySettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

type staticAccounts map[string]entity.PredefinedAccount

func (a staticAccounts) PredefinedAccounts() map[string]entity.PredefinedAccount {
	return a
}

// MockGateway is a mock implementation of provider.Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) RetrieveToken(ctx context.Context, credentialRef string) (*entity.PaymentCredential, error) {
	args := m.Called(ctx, credentialRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PaymentCredential), args.Error(1)
}

func (m *MockGateway) CreateCharge(ctx context.Context, req *provider.ChargeRequest) (*entity.Charge, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Charge), args.Error(1)
}

func (m *MockGateway) CreateRefund(ctx context.Context, transactionID string) (*provider.RefundResult, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.RefundResult), args.Error(1)
}

func (m *MockGateway) FindChargeByToken(ctx context.Context, paymentToken string) (*entity.Charge, error) {
	args := m.Called(ctx, paymentToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Charge), args.Error(1)
}

func (m *MockGateway) GetProviderName() string {
	return "mock"
}

// MockGatewayFactory records the credentials each gateway was built with.
type MockGatewayFactory struct {
	mock.Mock
}

func (m *MockGatewayFactory) NewGateway(creds entity.Credentials) (provider.Gateway, error) {
	args := m.Called(creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(provider.Gateway), args.Error(1)
}

// MockCheckoutLock is a mock implementation of CheckoutLock
type MockCheckoutLock struct {
	mock.Mock
}

func (m *MockCheckoutLock) Acquire(ctx context.Context, paymentToken string) (func(), error) {
	args := m.Called(ctx, paymentToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func()), args.Error(1)
}
