package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/wekeepgrowing/ticket-payment/internal/domain/entity"
	appErrors "github.com/wekeepgrowing/ticket-payment/pkg/errors"
	"go.uber.org/zap"
)

// CheckoutMethod is the buyer facing part of a payment method.
type CheckoutMethod interface {
	Checkout(ctx context.Context, req entity.CheckoutRequest) (*entity.CheckoutResult, error)
	Cancel(ctx context.Context, paymentToken string) error
	WidgetData(ctx context.Context, paymentToken string) (*entity.WidgetData, error)
}

type CheckoutHandler struct {
	method CheckoutMethod
	logger *zap.Logger
}

func NewCheckoutHandler(method CheckoutMethod, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		method: method,
		logger: logger,
	}
}

type checkoutRequest struct {
	CredentialRef string `json:"credential_ref" validate:"required,max=255"`
	ReceiptEmail  string `json:"receipt_email" validate:"omitempty,email"`
}

type failureResponse struct {
	Reason    entity.FailureReason `json:"reason"`
	Message   string               `json:"message"`
	Retryable bool                 `json:"retryable"`
}

type checkoutResponse struct {
	AttemptID          string               `json:"attempt_id"`
	PaymentToken       string               `json:"payment_token"`
	State              entity.CheckoutState `json:"state"`
	Status             entity.PaymentStatus `json:"status"`
	TransactionID      string               `json:"transaction_id,omitempty"`
	Amount             int64                `json:"amount,omitempty"`
	Currency           string               `json:"currency,omitempty"`
	Failure            *failureResponse     `json:"failure,omitempty"`
	CredentialConsumed bool                 `json:"credential_consumed"`
}

// GetWidget handles GET /api/v1/checkout/:token/widget
func (h *CheckoutHandler) GetWidget(c echo.Context) error {
	data, err := h.method.WidgetData(c.Request().Context(), c.Param("token"))
	if err != nil {
		return appErrors.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, data)
}

// Checkout handles POST /api/v1/checkout/:token
func (h *CheckoutHandler) Checkout(c echo.Context) error {
	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	paymentToken := c.Param("token")
	result, err := h.method.Checkout(c.Request().Context(), entity.CheckoutRequest{
		PaymentToken:  paymentToken,
		CredentialRef: req.CredentialRef,
		ReceiptEmail:  req.ReceiptEmail,
	})
	if err != nil {
		appErrors.LogError(h.logger, err, "Checkout failed",
			zap.String("payment_token", paymentToken))
		return appErrors.ToHTTPError(err)
	}

	return c.JSON(checkoutStatus(result), toCheckoutResponse(result))
}

// Cancel handles POST /api/v1/checkout/:token/cancel
func (h *CheckoutHandler) Cancel(c echo.Context) error {
	paymentToken := c.Param("token")
	if err := h.method.Cancel(c.Request().Context(), paymentToken); err != nil {
		return appErrors.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"payment_token": paymentToken,
		"status":        entity.PaymentStatusCancelled,
	})
}

func toCheckoutResponse(result *entity.CheckoutResult) checkoutResponse {
	resp := checkoutResponse{
		AttemptID:          result.AttemptID,
		PaymentToken:       result.PaymentToken,
		State:              result.State,
		Status:             result.Status,
		CredentialConsumed: result.CredentialConsumed,
	}
	if result.Charge != nil {
		resp.TransactionID = result.Charge.TransactionID
		resp.Amount = result.Charge.AmountMinorUnits
		resp.Currency = result.Charge.Currency
	}
	if result.Failure != nil {
		resp.Failure = &failureResponse{
			Reason:    result.Failure.Reason,
			Message:   result.Failure.UserMessage,
			Retryable: result.Failure.Retryable,
		}
	}
	return resp
}

// checkoutStatus picks the HTTP status for a terminal checkout result.
func checkoutStatus(result *entity.CheckoutResult) int {
	if result.Failure == nil {
		return http.StatusOK
	}
	switch result.Failure.Reason {
	case entity.FailureUnsupportedCurrency, entity.FailureOrderInvalid:
		return http.StatusUnprocessableEntity
	case entity.FailureDeclined, entity.FailureGeneric:
		return http.StatusPaymentRequired
	case entity.FailureRateLimited:
		return http.StatusTooManyRequests
	case entity.FailureNetworkError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
