package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher sends chart events. Failures are returned so callers can log
// them; they never undo the state change that produced the event.
type Publisher interface {
	Publish(ctx context.Context, ev ChartEvent) error
}

// AMQPPublisher dials the broker for each publish. Imports and resets are
// rare, so no connection is held open between them.
type AMQPPublisher struct {
	url   string
	queue string
	log   *zap.Logger
}

func NewAMQPPublisher(url, queue string, log *zap.Logger) *AMQPPublisher {
	if queue == "" {
		queue = DefaultQueueName
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AMQPPublisher{url: url, queue: queue, log: log}
}

// Publish declares the durable queue and publishes ev as a persistent
// JSON message on the default exchange.
func (p *AMQPPublisher) Publish(ctx context.Context, ev ChartEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Warn("rabbitmq: dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn("rabbitmq: channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		p.log.Warn("rabbitmq: queue declare failed", zap.String("queue", p.queue), zap.Error(err))
		return err
	}

	err = ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID,
		Type:         string(ev.Kind),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		p.log.Warn("rabbitmq: publish failed", zap.String("event_id", ev.ID), zap.Error(err))
		return err
	}
	p.log.Debug("chart event published", zap.String("event_id", ev.ID), zap.String("kind", string(ev.Kind)))
	return nil
}

// NopPublisher drops every event. It is used when QUEUE_ENABLED=false.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ChartEvent) error { return nil }
