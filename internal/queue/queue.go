// Package queue wraps publishing to the patrol_events queue so the API
// handlers and the window watcher share one code path.
package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/brgy-sanroque/tanod-patrol/backend/internal/domain"
)

const PatrolEventsQueue = "patrol_events"

type Publisher struct {
	channel        *amqp.Channel
	publishTimeout time.Duration
}

func NewPublisher(channel *amqp.Channel, publishTimeout time.Duration) *Publisher {
	return &Publisher{
		channel:        channel,
		publishTimeout: publishTimeout,
	}
}

// DeclareQueue makes sure the durable patrol_events queue exists. Both the
// API and the notifier call this so either side can start first.
func DeclareQueue(channel *amqp.Channel) error {
	_, err := channel.QueueDeclare(
		PatrolEventsQueue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	return err
}

func (p *Publisher) Publish(msg domain.EventMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.publishTimeout)
	defer cancel()

	return p.channel.PublishWithContext(
		ctx,
		"",
		PatrolEventsQueue,
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}
