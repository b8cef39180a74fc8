package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"trackmystartup/internal/handlers/business"
	"trackmystartup/internal/services"
	"trackmystartup/pkg/notify"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// FilterMessage is sent by the client to change the selection of its view.
type FilterMessage struct {
	Entity string              `json:"entity"`
	Year   business.YearFilter `json:"year"`
}

// SnapshotMessage is pushed to the client. Clients keep the highest
// generation they have seen.
type SnapshotMessage struct {
	Type       string           `json:"type"`
	Generation uint64           `json:"generation,omitempty"`
	Report     *business.Report `json:"report,omitempty"`
	Error      string           `json:"error,omitempty"`
}

const (
	messageSnapshot = "snapshot"
	messageError    = "error"
)

// FinancialsSocket drives one FinancialsView per connection. Filter messages
// from the client re-run the view; change notifications for the startup
// trigger a full refresh.
func (h *Handlers) FinancialsSocket(c *gin.Context) {
	id, ok := parseStartupID(c)
	if !ok {
		return
	}
	if _, err := h.Startups.Get(c.Request.Context(), id); err != nil {
		respondError(c, "FinancialsSocket", err)
		return
	}

	ws, err := h.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).WithField("startup_id", id).Warn("Websocket upgrade failed")
		return
	}
	conn := notify.NewConn(ws)
	defer conn.Close()

	sub := h.Hub.Subscribe(id)
	defer h.Hub.Unsubscribe(sub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	view := services.NewFinancialsView(h.Financials, id)
	filters := make(chan business.Filter)
	go readFilters(ctx, cancel, conn, filters)

	go pushSnapshot(conn, func() (services.Snapshot, bool, error) {
		return view.Apply(ctx, business.AllFilter())
	})

	for {
		select {
		case <-ctx.Done():
			return
		case <-conn.Done():
			return
		case f := <-filters:
			go pushSnapshot(conn, func() (services.Snapshot, bool, error) {
				return view.Apply(ctx, f)
			})
		case <-sub.C:
			go pushSnapshot(conn, func() (services.Snapshot, bool, error) {
				return view.Refresh(ctx)
			})
		}
	}
}

func readFilters(ctx context.Context, cancel context.CancelFunc, conn *notify.Conn, out chan<- business.Filter) {
	defer cancel()
	for {
		var raw json.RawMessage
		if err := conn.ReadJSON(&raw); err != nil {
			if !notify.IsClosed(err) {
				log.WithError(err).Debug("Financials socket read ended")
			}
			return
		}
		msg := FilterMessage{Year: business.AllYears()}
		if err := json.Unmarshal(raw, &msg); err != nil {
			_ = conn.WriteJSON(SnapshotMessage{Type: messageError, Error: err.Error()})
			continue
		}
		entity := strings.TrimSpace(msg.Entity)
		if entity == "" {
			entity = business.AllValue
		}
		select {
		case out <- business.Filter{Entity: entity, Year: msg.Year}:
		case <-ctx.Done():
			return
		}
	}
}

// pushSnapshot writes the result of run unless a newer request superseded it.
func pushSnapshot(conn *notify.Conn, run func() (services.Snapshot, bool, error)) {
	snap, committed, err := run()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		_ = conn.WriteJSON(SnapshotMessage{Type: messageError, Error: err.Error()})
		return
	}
	if !committed {
		return
	}
	report := snap.Report
	if err := conn.WriteJSON(SnapshotMessage{Type: messageSnapshot, Generation: snap.Generation, Report: &report}); err != nil {
		log.WithError(err).Debug("Financials snapshot not delivered")
	}
}
