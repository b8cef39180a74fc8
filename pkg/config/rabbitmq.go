package config

import (
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

var RabbitMQ *amqp.Connection

// InitRabbitMQ connects to RabbitMQ with retry logic
func InitRabbitMQ(s *Settings) error {
	url := fmt.Sprintf("amqp://%s:%s@%s:%s/",
		s.RabbitMQUser,
		s.RabbitMQPassword,
		s.RabbitMQHost,
		s.RabbitMQPort,
	)

	maxRetries := 10
	retryDelay := 3 * time.Second

	var conn *amqp.Connection
	var err error

	for i := 0; i < maxRetries; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			RabbitMQ = conn
			logrus.Infof("Connected to RabbitMQ at %s", s.RabbitMQHost)
			return nil
		}

		if i < maxRetries-1 {
			logrus.Warnf("Failed to connect to RabbitMQ (attempt %d/%d): %v. Retrying in %v...", i+1, maxRetries, err, retryDelay)
			time.Sleep(retryDelay)
		}
	}

	return fmt.Errorf("connect to RabbitMQ after %d attempts: %w", maxRetries, err)
}

// CloseRabbitMQ closes the shared connection if one is open.
func CloseRabbitMQ() {
	if RabbitMQ != nil {
		if err := RabbitMQ.Close(); err != nil {
			logrus.Warnf("Failed to close RabbitMQ connection: %v", err)
		}
	}
}
