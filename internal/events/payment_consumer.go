package events

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/holy-travels/service-booking/pkg/domain"
	"github.com/holy-travels/service-booking/pkg/kafka"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// PaymentProcessor applies payment outcomes to bookings. Implemented by
// the booking application service.
type PaymentProcessor interface {
	ConfirmPaymentCapture(ctx context.Context, bookingID uuid.UUID, orderID, paymentID, signature string, amountCents int64) error
	MarkPaymentFailed(ctx context.Context, bookingID uuid.UUID, reason string) error
}

// PaymentEventConsumer listens to gateway payment events and drives the
// booking state machine from them.
type PaymentEventConsumer struct {
	consumer  *kafka.Consumer
	processor PaymentProcessor
	logger    *zap.Logger
}

// NewPaymentEventConsumer creates a new PaymentEventConsumer.
func NewPaymentEventConsumer(
	brokers []string,
	groupID string,
	processor PaymentProcessor,
	logger *zap.Logger,
) *PaymentEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, TopicPaymentEvents, logger)
	return &PaymentEventConsumer{
		consumer:  consumer,
		processor: processor,
		logger:    logger,
	}
}

// Start begins consuming payment events. This blocks until the context is cancelled.
func (c *PaymentEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *PaymentEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *PaymentEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var cloudEvent kafka.CloudEvent
	if err := json.Unmarshal(msg.Value, &cloudEvent); err != nil {
		c.logger.Error("failed to parse cloud event from payment topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case PaymentCaptured:
		return c.handlePaymentCaptured(ctx, cloudEvent)
	case PaymentFailed:
		return c.handlePaymentFailed(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled payment event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *PaymentEventConsumer) handlePaymentCaptured(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt PaymentCapturedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse PaymentCapturedEvent data",
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	c.logger.Info("processing payment captured event",
		zap.String("booking_id", evt.BookingID.String()),
		zap.String("payment_id", evt.PaymentID),
	)

	err := c.processor.ConfirmPaymentCapture(ctx, evt.BookingID, evt.OrderID, evt.PaymentID, evt.Signature, evt.AmountCents)
	if err != nil {
		c.logger.Error("failed to confirm booking after payment capture",
			zap.String("booking_id", evt.BookingID.String()),
			zap.Error(err),
		)
		// Business rejections (bad signature, wrong state) will never
		// succeed on retry; only infrastructure errors are retried.
		var appErr *domain.Error
		if errors.As(err, &appErr) {
			return nil
		}
		return err
	}

	c.logger.Info("booking confirmed after payment capture",
		zap.String("booking_id", evt.BookingID.String()),
	)
	return nil
}

func (c *PaymentEventConsumer) handlePaymentFailed(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt PaymentFailedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse PaymentFailedEvent data",
			zap.Error(err),
		)
		return nil
	}

	if err := c.processor.MarkPaymentFailed(ctx, evt.BookingID, evt.Reason); err != nil {
		c.logger.Error("failed to record payment failure",
			zap.String("booking_id", evt.BookingID.String()),
			zap.Error(err),
		)
		var appErr *domain.Error
		if errors.As(err, &appErr) {
			return nil
		}
		return err
	}
	return nil
}
