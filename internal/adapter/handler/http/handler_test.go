package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wekeepgrowing/ticket-payment/internal/domain/entity"
	"github.com/wekeepgrowing/ticket-payment/internal/usecase"
	"github.com/wekeepgrowing/ticket-payment/pkg/logger"
	"go.uber.org/zap"
)

type MockPaymentMethod struct {
	mock.Mock
}

func (m *MockPaymentMethod) Checkout(ctx context.Context, req entity.CheckoutRequest) (*entity.CheckoutResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.CheckoutResult), args.Error(1)
}

func (m *MockPaymentMethod) Cancel(ctx context.Context, paymentToken string) error {
	args := m.Called(ctx, paymentToken)
	return args.Error(0)
}

func (m *MockPaymentMethod) WidgetData(ctx context.Context, paymentToken string) (*entity.WidgetData, error) {
	args := m.Called(ctx, paymentToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.WidgetData), args.Error(1)
}

func (m *MockPaymentMethod) Refund(ctx context.Context, paymentToken string) (*entity.RefundRecord, error) {
	args := m.Called(ctx, paymentToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RefundRecord), args.Error(1)
}

func (m *MockPaymentMethod) RefundAll(ctx context.Context, paymentTokens []string) []usecase.RefundOutcome {
	args := m.Called(ctx, paymentTokens)
	return args.Get(0).([]usecase.RefundOutcome)
}

type MockSettingsStore struct {
	mock.Mock
}

func (m *MockSettingsStore) Get(ctx context.Context) (*entity.GatewaySettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.GatewaySettings), args.Error(1)
}

func (m *MockSettingsStore) Save(ctx context.Context, input entity.SettingsInput) (*entity.GatewaySettings, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.GatewaySettings), args.Error(1)
}

// newTestEcho wires the handlers the same way the HTTP server does, without
// the operator JWT group.
func newTestEcho(method *MockPaymentMethod, settings *MockSettingsStore) *echo.Echo {
	e := echo.New()
	e.Validator = NewRequestValidator()
	logger.WithEchoLogger(e, zap.NewNop())

	checkout := NewCheckoutHandler(method, zap.NewNop())
	refunds := NewRefundHandler(method, zap.NewNop())
	settingsHandler := NewSettingsHandler(settings, zap.NewNop())

	e.GET("/api/v1/checkout/:token/widget", checkout.GetWidget)
	e.POST("/api/v1/checkout/:token", checkout.Checkout)
	e.POST("/api/v1/checkout/:token/cancel", checkout.Cancel)
	e.POST("/api/v1/operator/payments/:token/refund", refunds.Refund)
	e.POST("/api/v1/operator/payments/refund", refunds.RefundAll)
	e.GET("/api/v1/operator/settings", settingsHandler.GetSettings)
	e.PUT("/api/v1/operator/settings", settingsHandler.UpdateSettings)
	return e
}

func doRequest(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}
