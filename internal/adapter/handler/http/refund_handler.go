package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/wekeepgrowing/ticket-payment/internal/domain/entity"
	"github.com/wekeepgrowing/ticket-payment/internal/middleware/auth"
	"github.com/wekeepgrowing/ticket-payment/internal/usecase"
	appErrors "github.com/wekeepgrowing/ticket-payment/pkg/errors"
	"go.uber.org/zap"
)

// RefundMethod is the operator facing refund part of a payment method.
type RefundMethod interface {
	Refund(ctx context.Context, paymentToken string) (*entity.RefundRecord, error)
	RefundAll(ctx context.Context, paymentTokens []string) []usecase.RefundOutcome
}

type RefundHandler struct {
	method RefundMethod
	logger *zap.Logger
}

func NewRefundHandler(method RefundMethod, logger *zap.Logger) *RefundHandler {
	return &RefundHandler{
		method: method,
		logger: logger,
	}
}

type refundAllRequest struct {
	Tokens []string `json:"tokens" validate:"required,min=1,dive,required"`
}

type refundResponse struct {
	PaymentToken        string               `json:"payment_token"`
	Status              entity.PaymentStatus `json:"status,omitempty"`
	TransactionID       string               `json:"transaction_id,omitempty"`
	RefundTransactionID string               `json:"refund_transaction_id,omitempty"`
	Failure             *failureResponse     `json:"failure,omitempty"`
	Error               string               `json:"error,omitempty"`
}

type refundAllResponse struct {
	Refunded int              `json:"refunded"`
	Failed   int              `json:"failed"`
	Results  []refundResponse `json:"results"`
}

// Refund handles POST /api/v1/operator/payments/:token/refund
func (h *RefundHandler) Refund(c echo.Context) error {
	paymentToken := c.Param("token")
	h.logger.Info("Refund requested",
		zap.String("payment_token", paymentToken),
		zap.String("operator", operatorSubject(c)))

	record, err := h.method.Refund(c.Request().Context(), paymentToken)
	if err != nil {
		return appErrors.ToHTTPError(err)
	}

	status := http.StatusOK
	if record.Status != entity.PaymentStatusRefunded {
		status = http.StatusBadGateway
	}
	return c.JSON(status, toRefundResponse(paymentToken, record, nil))
}

// RefundAll handles POST /api/v1/operator/payments/refund
func (h *RefundHandler) RefundAll(c echo.Context) error {
	var req refundAllRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	h.logger.Info("Bulk refund requested",
		zap.Int("count", len(req.Tokens)),
		zap.String("operator", operatorSubject(c)))

	outcomes := h.method.RefundAll(c.Request().Context(), req.Tokens)

	resp := refundAllResponse{Results: make([]refundResponse, 0, len(outcomes))}
	for _, outcome := range outcomes {
		item := toRefundResponse(outcome.PaymentToken, outcome.Record, outcome.Err)
		if item.Status == entity.PaymentStatusRefunded {
			resp.Refunded++
		} else {
			resp.Failed++
		}
		resp.Results = append(resp.Results, item)
	}
	return c.JSON(http.StatusOK, resp)
}

func toRefundResponse(paymentToken string, record *entity.RefundRecord, err error) refundResponse {
	resp := refundResponse{PaymentToken: paymentToken}
	if err != nil {
		resp.Error = publicMessage(err)
		return resp
	}
	if record == nil {
		return resp
	}
	resp.Status = record.Status
	resp.TransactionID = record.SourceTransactionID
	resp.RefundTransactionID = record.RefundTransactionID
	if record.Failure != nil {
		resp.Failure = &failureResponse{
			Reason:    record.Failure.Reason,
			Message:   record.Failure.UserMessage,
			Retryable: record.Failure.Retryable,
		}
	}
	return resp
}

// publicMessage returns the AppError message, never the wrapped cause.
func publicMessage(err error) string {
	var appErr *appErrors.AppError
	if appErrors.As(err, &appErr) {
		return appErr.Message()
	}
	return http.StatusText(http.StatusInternalServerError)
}

func operatorSubject(c echo.Context) string {
	operator, err := auth.GetOperatorFromContext(c)
	if err != nil {
		return ""
	}
	return operator.Subject
}
