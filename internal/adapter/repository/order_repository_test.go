package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wekeepgrowing/ticket-payment/internal/domain/entity"
	customErr "github.com/wekeepgrowing/ticket-payment/internal/domain/errors"
	"github.com/wekeepgrowing/ticket-payment/internal/domain/model"
	"go.uber.org/zap"
)

func TestOrderRepository_GetOrder(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db, zap.NewNop())
	ctx := context.Background()
	seedOrder(t, db, "tok_1", nil)

	order, err := repo.GetOrder(ctx, "tok_1")
	require.NoError(t, err)
	assert.Equal(t, "tok_1", order.PaymentToken)
	assert.Equal(t, "USD", order.Currency)
	assert.True(t, decimal.RequireFromString("19.995").Equal(order.Total))
	assert.Equal(t, []entity.LineItem{{Name: "Ticket", Quantity: 2}, {Name: "VIP", Quantity: 1}}, order.Items)

	_, err = repo.GetOrder(ctx, "tok_missing")
	assert.ErrorIs(t, err, customErr.ErrOrderNotFound)
}

func TestOrderRepository_VerifyOrder(t *testing.T) {
	past := time.Now().Add(-time.Minute)

	tests := []struct {
		name      string
		mutate    func(o *model.TicketOrder)
		completed bool
		errType   string
	}{
		{
			name: "valid pending order",
		},
		{
			name:    "reservation expired",
			mutate:  func(o *model.TicketOrder) { o.ReservedUntil = &past },
			errType: customErr.ErrTypeReservationExpired,
		},
		{
			name:    "already cancelled",
			mutate:  func(o *model.TicketOrder) { o.Status = model.OrderStatusCancelled },
			errType: customErr.ErrTypeOrderNotPending,
		},
		{
			name:    "zero total",
			mutate:  func(o *model.TicketOrder) { o.Total = decimal.Zero },
			errType: customErr.ErrTypeOrderAmountNotPositive,
		},
		{
			name:    "no items",
			mutate:  func(o *model.TicketOrder) { o.Items = nil },
			errType: customErr.ErrTypeOrderEmpty,
		},
		{
			name:      "completed payment recorded",
			completed: true,
			errType:   customErr.ErrTypeAlreadyPaid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newTestDB(t)
			repo := NewOrderRepository(db, zap.NewNop())
			ctx := context.Background()
			seedOrder(t, db, "tok_1", tt.mutate)
			if tt.completed {
				// Record directly so the order row stays pending.
				require.NoError(t, db.Create(&model.PaymentResult{PaymentToken: "tok_1", Status: "completed"}).Error)
			}

			order, err := repo.GetOrder(ctx, "tok_1")
			require.NoError(t, err)
			err = repo.VerifyOrder(ctx, order)

			if tt.errType == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, customErr.ErrOrderInvalid)
			var orderErr *customErr.OrderError
			require.True(t, errors.As(err, &orderErr))
			assert.Equal(t, tt.errType, orderErr.Type)
		})
	}
}

func TestOrderRepository_RecordPaymentResult(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db, zap.NewNop())
	ctx := context.Background()
	seedOrder(t, db, "tok_1", nil)

	status, err := repo.GetPaymentStatus(ctx, "tok_1")
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPending, status)

	_, err = repo.GetStoredTransactionID(ctx, "tok_1")
	assert.ErrorIs(t, err, customErr.ErrNoTransaction)

	require.NoError(t, repo.RecordPaymentResult(ctx, "tok_1", entity.PaymentStatusFailed, entity.PaymentResultData{
		Details: map[string]interface{}{"reason": "DECLINED"},
	}))
	var order model.TicketOrder
	require.NoError(t, db.Where("payment_token = ?", "tok_1").First(&order).Error)
	assert.Equal(t, model.OrderStatusPending, order.Status, "a failed payment keeps the order payable")

	require.NoError(t, repo.RecordPaymentResult(ctx, "tok_1", entity.PaymentStatusCompleted, entity.PaymentResultData{
		TransactionID: "ch_1",
		Details:       map[string]interface{}{"charge": json.RawMessage(`{"id":"ch_1"}`)},
	}))

	transactionID, err := repo.GetStoredTransactionID(ctx, "tok_1")
	require.NoError(t, err)
	assert.Equal(t, "ch_1", transactionID)

	require.NoError(t, repo.RecordPaymentResult(ctx, "tok_1", entity.PaymentStatusRefunded, entity.PaymentResultData{
		TransactionID:       "ch_1",
		RefundTransactionID: "re_1",
	}))

	status, err = repo.GetPaymentStatus(ctx, "tok_1")
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusRefunded, status)

	var result model.PaymentResult
	require.NoError(t, db.Where("payment_token = ?", "tok_1").First(&result).Error)
	require.NotNil(t, result.RefundTransactionID)
	assert.Equal(t, "re_1", *result.RefundTransactionID)
	assert.Equal(t, "ch_1", *result.TransactionID)

	require.NoError(t, db.Where("payment_token = ?", "tok_1").First(&order).Error)
	assert.Equal(t, model.OrderStatusRefunded, order.Status)

	var history []model.PaymentAuditLog
	require.NoError(t, db.Where("payment_token = ?", "tok_1").Order("id").Find(&history).Error)
	require.Len(t, history, 3)
	assert.Nil(t, history[0].OldStatus)
	assert.Equal(t, "failed", *history[1].OldStatus)
	assert.Equal(t, "completed", history[1].NewStatus)
	assert.Equal(t, "refunded", history[2].NewStatus)
}

func TestOrderRepository_RecordPaymentResult_KeepsTransactionID(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db, zap.NewNop())
	ctx := context.Background()
	seedOrder(t, db, "tok_1", nil)

	require.NoError(t, repo.RecordPaymentResult(ctx, "tok_1", entity.PaymentStatusCompleted, entity.PaymentResultData{TransactionID: "ch_1"}))
	require.NoError(t, repo.RecordPaymentResult(ctx, "tok_1", entity.PaymentStatusRefundFailed, entity.PaymentResultData{}))

	transactionID, err := repo.GetStoredTransactionID(ctx, "tok_1")
	require.NoError(t, err)
	assert.Equal(t, "ch_1", transactionID)
}

func TestOrderRepository_RecordPaymentResult_SettledPaymentKept(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db, zap.NewNop())
	ctx := context.Background()
	seedOrder(t, db, "tok_1", nil)

	require.NoError(t, repo.RecordPaymentResult(ctx, "tok_1", entity.PaymentStatusCompleted, entity.PaymentResultData{TransactionID: "ch_1"}))

	for _, status := range []entity.PaymentStatus{entity.PaymentStatusFailed, entity.PaymentStatusCancelled, entity.PaymentStatusPending} {
		err := repo.RecordPaymentResult(ctx, "tok_1", status, entity.PaymentResultData{})
		assert.ErrorIs(t, err, customErr.ErrPaymentSettled, status.String())
	}

	status, err := repo.GetPaymentStatus(ctx, "tok_1")
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusCompleted, status)

	var order model.TicketOrder
	require.NoError(t, db.Where("payment_token = ?", "tok_1").First(&order).Error)
	assert.Equal(t, model.OrderStatusPaid, order.Status)

	var history int64
	require.NoError(t, db.Model(&model.PaymentAuditLog{}).Where("payment_token = ?", "tok_1").Count(&history).Error)
	assert.Equal(t, int64(1), history)

	require.NoError(t, repo.RecordPaymentResult(ctx, "tok_1", entity.PaymentStatusRefunded, entity.PaymentResultData{RefundTransactionID: "re_1"}))
	err = repo.RecordPaymentResult(ctx, "tok_1", entity.PaymentStatusRefundFailed, entity.PaymentResultData{})
	assert.ErrorIs(t, err, customErr.ErrPaymentSettled)
}

func TestOrderRepository_RecordPaymentResult_UnknownToken(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db, zap.NewNop())

	err := repo.RecordPaymentResult(context.Background(), "tok_missing", entity.PaymentStatusCancelled, entity.PaymentResultData{})
	assert.ErrorIs(t, err, customErr.ErrOrderNotFound)

	var results int64
	require.NoError(t, db.Model(&model.PaymentResult{}).Count(&results).Error)
	assert.Zero(t, results)
}

func TestOrderRepository_RecordPaymentResult_InvalidStatus(t *testing.T) {
	repo := NewOrderRepository(newTestDB(t), zap.NewNop())
	err := repo.RecordPaymentResult(context.Background(), "tok_1", entity.PaymentStatus("bogus"), entity.PaymentResultData{})
	assert.Error(t, err)
}

func TestOrderRepository_ListPaymentTokens(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db, zap.NewNop())
	ctx := context.Background()

	for _, token := range []string{"tok_a", "tok_b", "tok_c"} {
		seedOrder(t, db, token, nil)
	}
	require.NoError(t, repo.RecordPaymentResult(ctx, "tok_a", entity.PaymentStatusCompleted, entity.PaymentResultData{TransactionID: "ch_a"}))
	require.NoError(t, repo.RecordPaymentResult(ctx, "tok_b", entity.PaymentStatusFailed, entity.PaymentResultData{}))
	require.NoError(t, repo.RecordPaymentResult(ctx, "tok_c", entity.PaymentStatusCompleted, entity.PaymentResultData{TransactionID: "ch_c"}))

	tokens, err := repo.ListPaymentTokens(ctx, entity.PaymentStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, []string{"tok_a", "tok_c"}, tokens)
}
