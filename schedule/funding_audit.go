package main

import (
	"context"
	"errors"
	"time"

	"trackmystartup/internal/services"
	"trackmystartup/pkg/cache"
	"trackmystartup/pkg/config"

	"github.com/robfig/cron/v3"
	logger "github.com/sirupsen/logrus"
)

const auditLockTTL = time.Minute

// auditReport counts the outcome of one pass over every startup.
type auditReport struct {
	Checked int
	Drifted int
	Skipped int
	Failed  int
}

type fundingAudit struct {
	startups    *services.StartupService
	investments *services.InvestmentService
	locks       *cache.Cache
}

// Run checks the total funding of every startup for drift. Drift is logged
// and counted, not corrected; a failure for one startup does not stop the pass.
func (a *fundingAudit) Run(ctx context.Context) (auditReport, error) {
	var report auditReport
	ids, err := a.startups.IDs(ctx)
	if err != nil {
		return report, err
	}

	for _, id := range ids {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		err := a.locks.WithLock(ctx, "funding-drift", id, auditLockTTL, func(ctx context.Context) error {
			warning, err := a.investments.DetectDrift(ctx, id)
			if err != nil {
				return err
			}
			if warning != nil {
				report.Drifted++
			}
			return nil
		})
		switch {
		case errors.Is(err, cache.ErrLocked):
			report.Skipped++
			continue
		case err != nil:
			report.Failed++
			config.LogError("schedule", "Run", "detect funding drift", id, err)
			continue
		}
		report.Checked++
	}
	return report, nil
}

func main() {
	settings := config.Load()
	config.InitLogger(settings.LogLevel)

	config.InitDB(settings)
	logger.Info("> Database connection initialized")

	var locks *cache.Cache
	if settings.RedisEnabled() {
		c, err := cache.Connect(context.Background(), settings.RedisAddress, settings.RedisPassword, time.Duration(settings.CacheTTLSeconds)*time.Second)
		if err != nil {
			logger.Fatalf("> Failed to connect to Redis: %v", err)
		}
		defer c.Close()
		locks = c
	}

	changes := services.NewChangeFeed(nil, locks, nil)
	audit := &fundingAudit{
		startups:    services.NewStartupService(config.DB, changes),
		investments: services.NewInvestmentService(config.DB, changes),
		locks:       locks,
	}

	c := cron.New(cron.WithSeconds())
	_, err := c.AddFunc(settings.AuditCron, func() {
		start := time.Now()
		report, err := audit.Run(context.Background())
		if err != nil {
			logger.Errorf("> Funding audit failed: %v", err)
			return
		}
		logger.WithFields(logger.Fields{
			"checked": report.Checked,
			"drifted": report.Drifted,
			"skipped": report.Skipped,
			"failed":  report.Failed,
			"elapsed": time.Since(start).String(),
		}).Info("> Funding audit completed")
	})
	if err != nil {
		logger.Fatalf("> Failed to add audit job: %v", err)
	}

	logger.Infof("> Funding audit scheduled with %q", settings.AuditCron)
	c.Start()

	// keep the process alive
	select {}
}
