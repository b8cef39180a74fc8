package config

import (
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Publisher represents a RabbitMQ publisher
type Publisher struct {
	mu       sync.Mutex
	channel  *amqp.Channel
	declared map[string]bool
}

// NewPublisher creates a new RabbitMQ publisher on the shared connection
func NewPublisher() (*Publisher, error) {
	if RabbitMQ == nil {
		return nil, fmt.Errorf("RabbitMQ connection not initialized")
	}

	ch, err := RabbitMQ.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	return &Publisher{
		channel:  ch,
		declared: make(map[string]bool),
	}, nil
}

// Publish publishes a JSON message to the specified durable queue.
// amqp channels are not safe for concurrent use, so publishes are serialized.
func (p *Publisher) Publish(queueName string, message interface{}) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.declared[queueName] {
		if _, err := p.channel.QueueDeclare(
			queueName,
			true,  // durable
			false, // autoDelete
			false, // exclusive
			false, // noWait
			nil,   // args
		); err != nil {
			return fmt.Errorf("failed to declare queue: %w", err)
		}
		p.declared[queueName] = true
	}

	err = p.channel.Publish(
		"",        // exchange
		queueName, // routing key
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	logrus.Debugf("Published message to queue %s: %s", queueName, string(body))
	return nil
}

// Close closes the publisher
func (p *Publisher) Close() error {
	if p.channel != nil {
		return p.channel.Close()
	}
	return nil
}
