package main

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"trackmystartup/internal/services"
	"trackmystartup/pkg/cache"
	"trackmystartup/pkg/config"
	"trackmystartup/pkg/events"

	"github.com/sirupsen/logrus"
)

const driftLockTTL = 30 * time.Second

// changeHandler reacts to financials_changed messages.
type changeHandler struct {
	cache       *cache.Cache
	investments *services.InvestmentService
}

// Handle drops the cached reports of the startup and, for investment
// mutations, reports drift of the cached total funding. The cached figure is
// never rewritten here; resyncing is an explicit operator action. Undecodable
// messages are acknowledged so they are not redelivered forever.
func (h *changeHandler) Handle(ctx context.Context, body []byte) error {
	var msg events.FinancialsChanged
	if err := json.Unmarshal(body, &msg); err != nil {
		config.LogError("worker", "Handle", "decode message", string(body), err)
		return nil
	}
	if msg.StartupID == 0 {
		logrus.Warnf("Ignoring change without startup id: %s", string(body))
		return nil
	}

	if err := h.cache.Invalidate(ctx, msg.StartupID); err != nil {
		return err
	}

	if msg.Kind != events.KindInvestment || msg.Action == events.ActionRecalculated {
		return nil
	}

	err := h.cache.WithLock(ctx, "funding-drift", msg.StartupID, driftLockTTL, func(ctx context.Context) error {
		warning, err := h.investments.DetectDrift(ctx, msg.StartupID)
		if err != nil {
			return err
		}
		if warning != nil {
			logrus.WithFields(logrus.Fields{
				"startup_id": msg.StartupID,
				"record_id":  msg.RecordID,
				"drift":      warning.Drift().String(),
			}).Warn("Drift found after investment change")
		}
		return nil
	})

	var nf *services.NotFoundError
	switch {
	case errors.Is(err, cache.ErrLocked):
		logrus.Debugf("Drift check for startup %d already running", msg.StartupID)
		return nil
	case errors.As(err, &nf):
		// startup deleted since the event was published
		return nil
	}
	return err
}
