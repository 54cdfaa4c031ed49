package event

import (
	"context"
	"time"

	"github.com/wekeepgrowing/ticket-payment/internal/domain/entity"
	domainRepo "github.com/wekeepgrowing/ticket-payment/internal/domain/repository"
	"github.com/wekeepgrowing/ticket-payment/pkg/messaging"
	"go.uber.org/zap"
)

// RedisPaymentPublisher publishes payment events on a Redis channel
type RedisPaymentPublisher struct {
	client  messaging.RedisClient
	channel string
}

func NewRedisPaymentPublisher(client messaging.RedisClient, channel string) *RedisPaymentPublisher {
	return &RedisPaymentPublisher{client: client, channel: channel}
}

func (p *RedisPaymentPublisher) PublishPaymentResult(ctx context.Context, event *entity.PaymentEvent) error {
	return p.client.Publish(ctx, p.channel, event)
}

// publishingOrderRepository publishes an event after every recorded result.
// Publishing is best effort: the recorded result is authoritative.
type publishingOrderRepository struct {
	domainRepo.OrderRepository
	publisher domainRepo.PaymentEventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// WithPaymentEvents decorates orders so that recorded results are published.
func WithPaymentEvents(orders domainRepo.OrderRepository, publisher domainRepo.PaymentEventPublisher, logger *zap.Logger) domainRepo.OrderRepository {
	return &publishingOrderRepository{
		OrderRepository: orders,
		publisher:       publisher,
		logger:          logger,
		now:             time.Now,
	}
}

func (r *publishingOrderRepository) RecordPaymentResult(ctx context.Context, paymentToken string, status entity.PaymentStatus, data entity.PaymentResultData) error {
	if err := r.OrderRepository.RecordPaymentResult(ctx, paymentToken, status, data); err != nil {
		return err
	}

	event := &entity.PaymentEvent{
		PaymentToken:        paymentToken,
		Status:              status,
		TransactionID:       data.TransactionID,
		RefundTransactionID: data.RefundTransactionID,
		OccurredAt:          r.now().UTC(),
	}
	if err := r.publisher.PublishPaymentResult(ctx, event); err != nil {
		r.logger.Warn("Failed to publish payment event",
			zap.String("payment_token", paymentToken),
			zap.String("status", status.String()),
			zap.Error(err))
	}
	return nil
}
