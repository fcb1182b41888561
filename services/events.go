package services

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/chethanac15/eStore/kafka"
	"github.com/chethanac15/eStore/models"
	awspkg "github.com/chethanac15/eStore/pkg/aws"
)

// OrderEventPublisher fans order-created events out to Kafka and SNS. Either
// sink may be absent; each publish is independent and best-effort.
type OrderEventPublisher struct {
	producer *kafka.Producer
	sns      awspkg.SNSPublisher
	topicArn string
	currency string
	logger   *zap.Logger
}

func NewOrderEventPublisher(producer *kafka.Producer, sns awspkg.SNSPublisher, topicArn, currency string, logger *zap.Logger) *OrderEventPublisher {
	return &OrderEventPublisher{
		producer: producer,
		sns:      sns,
		topicArn: topicArn,
		currency: currency,
		logger:   logger,
	}
}

func (p *OrderEventPublisher) PublishOrderCreated(ctx context.Context, order *models.Order) {
	event := models.OrderCreatedEvent{
		Type:        "order.created",
		OrderID:     order.ID.Hex(),
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Amount:      order.TotalAmount,
		Currency:    p.currency,
		ItemCount:   len(order.Items),
		Timestamp:   time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal order event", zap.Error(err))
		return
	}

	if p.producer != nil {
		if err := p.producer.Publish(ctx, []byte(event.OrderID), payload); err != nil {
			p.logger.Warn("Kafka publish failed",
				zap.String("order_id", event.OrderID),
				zap.Error(err),
			)
		}
	}

	if p.sns != nil && p.topicArn != "" {
		if err := p.sns.Publish(ctx, p.topicArn, payload); err != nil {
			p.logger.Warn("SNS publish failed",
				zap.String("order_id", event.OrderID),
				zap.Error(err),
			)
		}
	}
}
