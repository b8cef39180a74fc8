package main

import (
	"context"
	"time"

	"trackmystartup/internal/handlers"
	"trackmystartup/internal/routes"
	"trackmystartup/internal/services"
	"trackmystartup/pkg/cache"
	"trackmystartup/pkg/config"
	"trackmystartup/pkg/notify"
	"trackmystartup/pkg/storage"

	log "github.com/sirupsen/logrus"
)

func main() {
	settings := config.Load()
	config.InitLogger(settings.LogLevel)

	// Initialize database
	config.InitDB(settings)
	ctx := context.Background()

	// RabbitMQ is optional; without it change events are not published
	var publisher services.EventPublisher
	if settings.RabbitMQEnabled() {
		if err := config.InitRabbitMQ(settings); err != nil {
			log.Fatal("Failed to initialize RabbitMQ: ", err)
		}
		defer config.CloseRabbitMQ()

		p, err := config.NewPublisher()
		if err != nil {
			log.Fatal("Failed to create publisher: ", err)
		}
		defer p.Close()
		publisher = p
		log.Info("RabbitMQ initialized successfully")
	} else {
		log.Info("RabbitMQ not configured, skipping initialization")
	}

	// Redis is optional; a nil cache always misses
	var reportCache *cache.Cache
	if settings.RedisEnabled() {
		c, err := cache.Connect(ctx, settings.RedisAddress, settings.RedisPassword, time.Duration(settings.CacheTTLSeconds)*time.Second)
		if err != nil {
			log.Fatal("Failed to connect to Redis: ", err)
		}
		defer c.Close()
		reportCache = c
	} else {
		log.Info("Redis not configured, report cache disabled")
	}

	attachments, err := storage.NewStore(ctx, settings.GCSBucket, settings.GCSCredentialsJSON)
	if err != nil {
		log.Fatal("Failed to create attachment store: ", err)
	}
	defer attachments.Close()

	hub := notify.NewHub()
	changes := services.NewChangeFeed(publisher, reportCache, hub)
	investments := services.NewInvestmentService(config.DB, changes)
	h := &handlers.Handlers{
		Startups:    services.NewStartupService(config.DB, changes),
		Ledger:      services.NewLedgerService(config.DB, attachments, changes),
		Investments: investments,
		Fundraising: services.NewFundraisingService(config.DB, changes),
		Financials:  services.NewFinancialsService(config.DB, investments, reportCache),
		Hub:         hub,
		Upgrader:    notify.NewUpgrader(settings.AllowedOrigins),
	}

	// Set up router
	r := routes.SetupRouter(settings, h)

	log.Infof("API listening on :%s", settings.Port)
	if err := r.Run(":" + settings.Port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
