package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	stripego "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/wekeepgrowing/ticket-payment/internal/domain/entity"
	"github.com/wekeepgrowing/ticket-payment/internal/domain/provider"
	"go.uber.org/zap"
)

// paymentTokenMetadataKey tags every charge with the payment token so a charge
// can be found again after a lost response.
const paymentTokenMetadataKey = "payment_token"

// Options configures the Stripe API backend.
type Options struct {
	// APIURL overrides the Stripe API base URL.
	APIURL  string
	Timeout time.Duration
	// Logger receives stripe-go's own log output.
	Logger stripego.LeveledLoggerInterface
}

// Gateway implements provider.Gateway against the Stripe API.
type Gateway struct {
	client *client.API
	logger *zap.Logger
}

// NewGateway creates a Stripe gateway bound to secretKey. Network retries are
// disabled: a retry is a caller decision and must reuse the payment token.
func NewGateway(secretKey string, opts Options, logger *zap.Logger) *Gateway {
	cfg := &stripego.BackendConfig{
		HTTPClient:        &http.Client{Timeout: opts.Timeout},
		MaxNetworkRetries: stripego.Int64(0),
		EnableTelemetry:   stripego.Bool(false),
	}
	if opts.APIURL != "" {
		cfg.URL = stripego.String(opts.APIURL)
	}
	if opts.Logger != nil {
		cfg.LeveledLogger = opts.Logger
	}

	backend := stripego.GetBackendWithConfig(stripego.APIBackend, cfg)
	return &Gateway{
		client: client.New(secretKey, &stripego.Backends{API: backend, Uploads: backend}),
		logger: logger,
	}
}

// GetProviderName returns the provider name
func (g *Gateway) GetProviderName() string {
	return string(provider.ProviderTypeStripe)
}

// RetrieveToken fetches a card token created by the checkout widget.
func (g *Gateway) RetrieveToken(ctx context.Context, credentialRef string) (*entity.PaymentCredential, error) {
	params := &stripego.TokenParams{}
	params.Context = ctx

	token, err := g.client.Tokens.Get(credentialRef, params)
	if err != nil {
		g.logger.Debug("Stripe token lookup failed", zap.Error(err))
		return nil, toProviderError(err)
	}

	return &entity.PaymentCredential{
		ID:   token.ID,
		Used: token.Used,
		Raw:  rawJSON(token.LastResponse, token),
	}, nil
}

// CreateCharge submits the charge with the payment token as idempotency key.
// Stripe answers a replayed key with the original charge.
func (g *Gateway) CreateCharge(ctx context.Context, req *provider.ChargeRequest) (*entity.Charge, error) {
	if req.IdempotencyKey == "" {
		return nil, &provider.ProviderError{
			Type:    string(stripego.ErrorTypeInvalidRequest),
			Message: "idempotency key is required",
		}
	}

	params := &stripego.ChargeParams{
		Amount:      stripego.Int64(req.AmountMinorUnits),
		Currency:    stripego.String(strings.ToLower(req.Currency)),
		Description: stripego.String(req.Description),
	}
	if req.StatementDescriptor != "" {
		params.StatementDescriptor = stripego.String(req.StatementDescriptor)
	}
	if req.ReceiptEmail != "" {
		params.ReceiptEmail = stripego.String(req.ReceiptEmail)
	}
	if err := params.SetSource(req.CredentialRef); err != nil {
		return nil, &provider.ProviderError{
			Type:    string(stripego.ErrorTypeInvalidRequest),
			Message: "invalid credential reference",
			Err:     err,
		}
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.IdempotencyKey)
	params.AddMetadata(paymentTokenMetadataKey, req.IdempotencyKey)

	ch, err := g.client.Charges.New(params)
	if err != nil {
		return nil, toProviderError(err)
	}

	g.logger.Debug("Stripe charge created",
		zap.String("transaction_id", ch.ID),
		zap.String("status", string(ch.Status)))
	return toCharge(ch), nil
}

// CreateRefund refunds the whole charge.
func (g *Gateway) CreateRefund(ctx context.Context, transactionID string) (*provider.RefundResult, error) {
	params := &stripego.RefundParams{
		Charge: stripego.String(transactionID),
	}
	params.Context = ctx

	re, err := g.client.Refunds.New(params)
	if err != nil {
		return nil, toProviderError(err)
	}

	return &provider.RefundResult{
		RefundTransactionID: re.ID,
		Status:              provider.RefundStatus(re.Status),
		Raw:                 rawJSON(re.LastResponse, re),
	}, nil
}

// FindChargeByToken searches charges by the payment token metadata. Search
// results can lag charge creation by up to a minute.
func (g *Gateway) FindChargeByToken(ctx context.Context, paymentToken string) (*entity.Charge, error) {
	params := &stripego.ChargeSearchParams{}
	params.Context = ctx
	params.Query = fmt.Sprintf("metadata['%s']:'%s'", paymentTokenMetadataKey, strings.ReplaceAll(paymentToken, "'", `\'`))
	params.Limit = stripego.Int64(10)
	params.Single = true

	iter := g.client.Charges.Search(params)
	for iter.Next() {
		ch := iter.Charge()
		if ch.Status == stripego.ChargeStatusSucceeded || ch.Status == stripego.ChargeStatusPending {
			return toCharge(ch), nil
		}
	}
	if err := iter.Err(); err != nil {
		return nil, toProviderError(err)
	}
	return nil, nil
}

func toCharge(ch *stripego.Charge) *entity.Charge {
	return &entity.Charge{
		TransactionID:       ch.ID,
		AmountMinorUnits:    ch.Amount,
		Currency:            string(ch.Currency),
		RawProviderResponse: rawJSON(ch.LastResponse, ch),
	}
}

// rawJSON prefers the exact response body and falls back to re-encoding v.
func rawJSON(resp *stripego.APIResponse, v interface{}) json.RawMessage {
	if resp != nil && len(resp.RawJSON) > 0 {
		return json.RawMessage(resp.RawJSON)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return raw
}
