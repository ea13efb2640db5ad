// Package queue_publisher publishes domain events to RabbitMQ.  Failures are
// logged and returned so callers can decide to ignore them without
// interrupting the request that produced the event.
package queue_publisher

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	q "github.com/iliyamo/seatmap-editor/internal/queue"
)

// Publisher dials per publish.  Edits are rare enough that holding a
// long-lived channel is not worth the reconnect handling.
type Publisher struct {
	URL string
	Log *zap.Logger
}

func New(url string, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{URL: url, Log: log}
}

// PublishSeatMapEdited sends event to the seatmap.edited queue as a
// persistent JSON message.
func (p *Publisher) PublishSeatMapEdited(ctx context.Context, event q.SeatMapEditedEvent) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		p.Log.Warn("rabbitmq: dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.Log.Warn("rabbitmq: channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		q.SeatMapEditedQueue, // name
		true,                 // durable
		false,                // autoDelete
		false,                // exclusive
		false,                // noWait
		nil,                  // args
	); err != nil {
		p.Log.Warn("rabbitmq: queue declare failed", zap.Error(err))
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    event.SessionID + "/" + event.EditedAt,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", q.SeatMapEditedQueue, false, false, pub); err != nil {
		p.Log.Warn("rabbitmq: publish failed", zap.Error(err), zap.String("session", event.SessionID))
		return err
	}
	return nil
}
