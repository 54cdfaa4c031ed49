package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wekeepgrowing/ticket-payment/internal/config"
	"github.com/wekeepgrowing/ticket-payment/internal/domain/entity"
	"github.com/wekeepgrowing/ticket-payment/internal/middleware/auth"
	"github.com/wekeepgrowing/ticket-payment/internal/usecase"
	"go.uber.org/zap"
)

type stubPayments struct{}

func (stubPayments) Checkout(ctx context.Context, req entity.CheckoutRequest) (*entity.CheckoutResult, error) {
	return &entity.CheckoutResult{PaymentToken: req.PaymentToken, State: entity.CheckoutCompleted, Status: entity.PaymentStatusCompleted}, nil
}

func (stubPayments) Cancel(ctx context.Context, paymentToken string) error {
	return nil
}

func (stubPayments) WidgetData(ctx context.Context, paymentToken string) (*entity.WidgetData, error) {
	return &entity.WidgetData{PublicKey: "pk_test", Currency: "AUD"}, nil
}

func (stubPayments) Refund(ctx context.Context, paymentToken string) (*entity.RefundRecord, error) {
	return &entity.RefundRecord{PaymentToken: paymentToken, Status: entity.PaymentStatusRefunded}, nil
}

func (stubPayments) RefundAll(ctx context.Context, paymentTokens []string) []usecase.RefundOutcome {
	return nil
}

type stubSettings struct{}

func (stubSettings) Get(ctx context.Context) (*entity.GatewaySettings, error) {
	return &entity.GatewaySettings{}, nil
}

func (stubSettings) Save(ctx context.Context, input entity.SettingsInput) (*entity.GatewaySettings, error) {
	return &entity.GatewaySettings{}, nil
}

func newTestServer(jwtSecret string) *Server {
	cfg := &config.Config{}
	cfg.Service.Name = "ticket-payment"
	cfg.Service.JWTSecret = jwtSecret
	return NewServer(cfg, zap.NewNop(), Services{
		Checkout: stubPayments{},
		Refunds:  stubPayments{},
		Settings: stubSettings{},
	})
}

func serve(s *Server, method, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	rec := serve(newTestServer("secret"), http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ticket-payment")
}

func TestServer_BuyerRoutesArePublic(t *testing.T) {
	s := newTestServer("secret")

	rec := serve(s, http.MethodGet, "/api/v1/checkout/pt_1/widget", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(s, http.MethodPost, "/api/v1/checkout/pt_1/cancel", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_OperatorRoutesRequireToken(t *testing.T) {
	s := newTestServer("secret")

	rec := serve(s, http.MethodPost, "/api/v1/operator/payments/pt_1/refund", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := auth.IssueOperatorToken("secret", "ops", time.Hour)
	require.NoError(t, err)

	rec = serve(s, http.MethodPost, "/api/v1/operator/payments/pt_1/refund", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "refunded")

	rec = serve(s, http.MethodGet, "/api/v1/operator/settings", token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_OperatorRoutesDisabledWithoutSecret(t *testing.T) {
	s := newTestServer("")

	token, err := auth.IssueOperatorToken("anything", "ops", time.Hour)
	require.NoError(t, err)

	rec := serve(s, http.MethodPost, "/api/v1/operator/payments/pt_1/refund", token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
