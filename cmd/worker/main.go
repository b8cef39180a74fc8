package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trackmystartup/internal/services"
	"trackmystartup/pkg/cache"
	"trackmystartup/pkg/config"
	"trackmystartup/pkg/events"

	"github.com/sirupsen/logrus"
)

func main() {
	settings := config.Load()
	config.InitLogger(settings.LogLevel)

	// Initialize database
	config.InitDB(settings)

	if !settings.RabbitMQEnabled() {
		logrus.Fatal("RABBITMQ_HOST is required for the worker")
	}
	if err := config.InitRabbitMQ(settings); err != nil {
		logrus.Fatal("Failed to initialize RabbitMQ: ", err)
	}
	defer config.CloseRabbitMQ()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var reportCache *cache.Cache
	if settings.RedisEnabled() {
		c, err := cache.Connect(ctx, settings.RedisAddress, settings.RedisPassword, time.Duration(settings.CacheTTLSeconds)*time.Second)
		if err != nil {
			logrus.Fatal("Failed to connect to Redis: ", err)
		}
		defer c.Close()
		reportCache = c
	} else {
		logrus.Warn("Redis not configured, drift checks run without a lock")
	}

	// the worker never republishes; corrections only invalidate the cache
	changes := services.NewChangeFeed(nil, reportCache, nil)
	h := &changeHandler{
		cache:       reportCache,
		investments: services.NewInvestmentService(config.DB, changes),
	}

	consumer, err := config.NewConsumer(events.FinancialsChangedQueue)
	if err != nil {
		logrus.Fatal("Failed to create consumer: ", err)
	}
	defer consumer.Close()

	logrus.Info("Financials worker started, waiting for messages...")
	err = consumer.Consume(ctx, func(body []byte) error {
		return h.Handle(ctx, body)
	})
	if err != nil && err != context.Canceled {
		logrus.Error("Consumer stopped: ", err)
	}
	logrus.Info("Financials worker stopped")
}
