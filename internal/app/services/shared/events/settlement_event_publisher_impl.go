package events

import (
	"context"
	"sync"

	"consultation-service/internal/app/contracts"
	"consultation-service/internal/app/models"
	"consultation-service/internal/pkg/constvars"
	"consultation-service/internal/pkg/exceptions"
	"consultation-service/internal/pkg/utils"

	"github.com/goccy/go-json"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type channelPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

type settlementEventPublisher struct {
	Channel channelPublisher
	Queue   string
	Log     *zap.Logger
}

var (
	settlementEventPublisherInstance contracts.EventPublisher
	onceSettlementEventPublisher     sync.Once
	settlementEventPublisherError    error
)

// NewSettlementEventPublisher opens a channel on the connection and declares the durable event queue.
func NewSettlementEventPublisher(rabbitMQConnection *amqp091.Connection, logger *zap.Logger, queue string) (contracts.EventPublisher, error) {
	onceSettlementEventPublisher.Do(func() {
		channel, err := rabbitMQConnection.Channel()
		if err != nil {
			settlementEventPublisherError = err
			return
		}
		_, err = channel.QueueDeclare(queue, true, false, false, false, nil)
		if err != nil {
			settlementEventPublisherError = err
			return
		}
		settlementEventPublisherInstance = &settlementEventPublisher{
			Channel: channel,
			Queue:   queue,
			Log:     logger,
		}
	})
	return settlementEventPublisherInstance, settlementEventPublisherError
}

func (s *settlementEventPublisher) Publish(ctx context.Context, event models.SettlementEvent) error {
	requestID := utils.RequestIDFromContext(ctx)
	s.Log.Info("settlementEventPublisher.Publish called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingEventTypeKey, event.Type),
		zap.Int64(constvars.LoggingAppointmentIDKey, event.AppointmentID),
	)

	body, err := json.Marshal(event)
	if err != nil {
		s.Log.Error("settlementEventPublisher.Publish error marshaling JSON",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return exceptions.ErrCannotMarshalJSON(err)
	}

	message := amqp091.Publishing{
		ContentType:  constvars.MIMEApplicationJSON,
		Body:         body,
		DeliveryMode: amqp091.Persistent,
		MessageId:    event.ID,
		Type:         event.Type,
		Timestamp:    event.OccurredAt,
		Headers: amqp091.Table{
			"message_type":     "JSON",
			"requeue_strategy": "DROP",
		},
	}

	err = s.Channel.PublishWithContext(ctx, "", s.Queue, false, false, message)
	if err != nil {
		s.Log.Error("settlementEventPublisher.Publish error publishing message",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingQueueNameKey, s.Queue),
			zap.Error(err),
		)
		return exceptions.ErrRabbitMQPublishMessage(err, s.Queue)
	}

	s.Log.Info("settlementEventPublisher.Publish succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingQueueNameKey, s.Queue),
		zap.String(constvars.LoggingEventTypeKey, event.Type),
	)
	return nil
}
