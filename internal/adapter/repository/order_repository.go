package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/wekeepgrowing/ticket-payment/internal/domain/entity"
	customErr "github.com/wekeepgrowing/ticket-payment/internal/domain/errors"
	"github.com/wekeepgrowing/ticket-payment/internal/domain/model"
	domainRepo "github.com/wekeepgrowing/ticket-payment/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// orderRepository implements the OrderRepository interface on the ticket
// order tables
type orderRepository struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewOrderRepository creates a new order repository instance
func NewOrderRepository(db *gorm.DB, logger *zap.Logger) domainRepo.OrderRepository {
	return &orderRepository{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

func (r *orderRepository) findOrder(ctx context.Context, paymentToken string) (*model.TicketOrder, error) {
	var order model.TicketOrder
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		Where("payment_token = ?", paymentToken).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, customErr.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

func (r *orderRepository) findResult(ctx context.Context, db *gorm.DB, paymentToken string) (*model.PaymentResult, error) {
	var result model.PaymentResult
	err := db.WithContext(ctx).Where("payment_token = ?", paymentToken).First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment result: %w", err)
	}
	return &result, nil
}

// GetOrder loads the order and its line items
func (r *orderRepository) GetOrder(ctx context.Context, paymentToken string) (*entity.Order, error) {
	order, err := r.findOrder(ctx, paymentToken)
	if err != nil {
		return nil, err
	}

	items := make([]entity.LineItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, entity.LineItem{Name: item.Name, Quantity: item.Quantity})
	}
	return &entity.Order{
		ID:           strconv.FormatInt(order.ID, 10),
		PaymentToken: order.PaymentToken,
		Items:        items,
		Total:        order.Total,
		Currency:     order.Currency,
	}, nil
}

// VerifyOrder re-reads the order and checks it can still be paid
func (r *orderRepository) VerifyOrder(ctx context.Context, order *entity.Order) error {
	token := order.PaymentToken
	current, err := r.findOrder(ctx, token)
	if err != nil {
		if errors.Is(err, customErr.ErrOrderNotFound) {
			return &customErr.OrderError{Type: customErr.ErrTypeOrderNotPending, PaymentToken: token, Message: "order does not exist", Cause: err}
		}
		return err
	}

	if current.Status != model.OrderStatusPending {
		return customErr.NewOrderError(customErr.ErrTypeOrderNotPending, token, "order is "+string(current.Status))
	}
	if current.ReservedUntil != nil && current.ReservedUntil.Before(r.now()) {
		return customErr.NewOrderError(customErr.ErrTypeReservationExpired, token, "reservation expired")
	}
	if len(current.Items) == 0 {
		return customErr.NewOrderError(customErr.ErrTypeOrderEmpty, token, "order has no items")
	}
	if !current.Total.IsPositive() {
		return customErr.NewOrderError(customErr.ErrTypeOrderAmountNotPositive, token, "order total must be positive")
	}

	result, err := r.findResult(ctx, r.db, token)
	if err != nil {
		return err
	}
	if result != nil {
		switch entity.PaymentStatus(result.Status) {
		case entity.PaymentStatusCompleted, entity.PaymentStatusRefunded, entity.PaymentStatusRefundFailed:
			return customErr.NewOrderError(customErr.ErrTypeAlreadyPaid, token, "order is already paid")
		}
	}
	return nil
}

// RecordPaymentResult upserts the latest result, appends to the audit log and
// moves the order status in one transaction. A settled payment is never moved
// back to an unpaid status.
func (r *orderRepository) RecordPaymentResult(ctx context.Context, paymentToken string, status entity.PaymentStatus, data entity.PaymentResultData) error {
	if !status.IsValid() {
		return fmt.Errorf("invalid payment status: %s", status)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var orders int64
		if err := tx.Model(&model.TicketOrder{}).Where("payment_token = ?", paymentToken).Count(&orders).Error; err != nil {
			return fmt.Errorf("failed to get order: %w", err)
		}
		if orders == 0 {
			return customErr.ErrOrderNotFound
		}

		existing, err := r.findResult(ctx, tx, paymentToken)
		if err != nil {
			return err
		}
		if existing != nil && !entity.PaymentStatus(existing.Status).CanBecome(status) {
			return fmt.Errorf("%w: %s cannot become %s", customErr.ErrPaymentSettled, existing.Status, status)
		}

		result := model.PaymentResult{
			PaymentToken: paymentToken,
			Status:       status.String(),
			Details:      model.JSONB(data.Details),
		}
		updates := []string{"status", "details", "updated_at"}
		if data.TransactionID != "" {
			result.TransactionID = &data.TransactionID
			updates = append(updates, "transaction_id")
		}
		if data.RefundTransactionID != "" {
			result.RefundTransactionID = &data.RefundTransactionID
			updates = append(updates, "refund_transaction_id")
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "payment_token"}},
			DoUpdates: clause.AssignmentColumns(updates),
		}).Create(&result).Error; err != nil {
			return fmt.Errorf("failed to upsert payment result: %w", err)
		}

		audit := model.PaymentAuditLog{
			PaymentToken: paymentToken,
			NewStatus:    status.String(),
			Metadata: model.JSONB{
				"transaction_id":        data.TransactionID,
				"refund_transaction_id": data.RefundTransactionID,
			},
		}
		if existing != nil {
			audit.OldStatus = &existing.Status
		}
		if err := tx.Create(&audit).Error; err != nil {
			return fmt.Errorf("failed to write payment audit log: %w", err)
		}

		if orderStatus, ok := orderStatusFor(status); ok {
			if err := tx.Model(&model.TicketOrder{}).
				Where("payment_token = ?", paymentToken).
				Update("status", orderStatus).Error; err != nil {
				return fmt.Errorf("failed to update order status: %w", err)
			}
		}
		return nil
	})
	if errors.Is(err, customErr.ErrPaymentSettled) {
		r.logger.Warn("Refused to overwrite a settled payment",
			zap.String("payment_token", paymentToken),
			zap.String("status", status.String()),
			zap.Error(err))
		return err
	}
	if err != nil {
		r.logger.Error("Failed to record payment result",
			zap.String("payment_token", paymentToken),
			zap.String("status", status.String()),
			zap.Error(err))
		return err
	}

	r.logger.Info("Payment result recorded",
		zap.String("payment_token", paymentToken),
		zap.String("status", status.String()),
		zap.String("transaction_id", data.TransactionID))
	return nil
}

// orderStatusFor maps a payment status onto the order. A failed payment
// leaves the order pending so the buyer can retry.
func orderStatusFor(status entity.PaymentStatus) (model.OrderStatus, bool) {
	switch status {
	case entity.PaymentStatusCompleted:
		return model.OrderStatusPaid, true
	case entity.PaymentStatusCancelled:
		return model.OrderStatusCancelled, true
	case entity.PaymentStatusRefunded:
		return model.OrderStatusRefunded, true
	default:
		return "", false
	}
}

// GetStoredTransactionID returns the charge id recorded for the token
func (r *orderRepository) GetStoredTransactionID(ctx context.Context, paymentToken string) (string, error) {
	result, err := r.findResult(ctx, r.db, paymentToken)
	if err != nil {
		return "", err
	}
	if result == nil || result.TransactionID == nil || *result.TransactionID == "" {
		return "", customErr.ErrNoTransaction
	}
	return *result.TransactionID, nil
}

// GetPaymentStatus returns the last recorded status, pending when nothing is
// recorded yet
func (r *orderRepository) GetPaymentStatus(ctx context.Context, paymentToken string) (entity.PaymentStatus, error) {
	if _, err := r.findOrder(ctx, paymentToken); err != nil {
		return entity.PaymentStatusPending, err
	}

	result, err := r.findResult(ctx, r.db, paymentToken)
	if err != nil {
		return entity.PaymentStatusPending, err
	}
	if result == nil {
		return entity.PaymentStatusPending, nil
	}
	return entity.PaymentStatus(result.Status), nil
}

// ListPaymentTokens returns tokens by last recorded status
func (r *orderRepository) ListPaymentTokens(ctx context.Context, status entity.PaymentStatus) ([]string, error) {
	var tokens []string
	err := r.db.WithContext(ctx).
		Model(&model.PaymentResult{}).
		Where("status = ?", status.String()).
		Order("created_at ASC, id ASC").
		Pluck("payment_token", &tokens).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payment tokens: %w", err)
	}
	return tokens, nil
}
