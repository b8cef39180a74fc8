// Package notify fans financials change signals out to websocket sessions.
package notify

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// Subscription receives a signal on C whenever its startup changes. C is
// buffered to one; bursts of changes collapse into a single wake up.
type Subscription struct {
	StartupID uint
	C         chan struct{}
}

// Hub tracks the live subscriptions per startup.
type Hub struct {
	mu   sync.RWMutex
	subs map[uint]map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[uint]map[*Subscription]struct{})}
}

func (h *Hub) Subscribe(startupID uint) *Subscription {
	sub := &Subscription{StartupID: startupID, C: make(chan struct{}, 1)}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[startupID] == nil {
		h.subs[startupID] = make(map[*Subscription]struct{})
	}
	h.subs[startupID][sub] = struct{}{}
	log.WithFields(log.Fields{"startup_id": startupID, "subscribers": len(h.subs[startupID])}).Debug("Financials subscriber added")
	return sub
}

func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.subs[sub.StartupID]
	if set == nil {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subs, sub.StartupID)
	}
}

// Notify wakes every subscriber of the startup without blocking.
func (h *Hub) Notify(startupID uint) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[startupID] {
		select {
		case sub.C <- struct{}{}:
		default:
		}
	}
}

// Count returns the number of subscribers of a startup.
func (h *Hub) Count(startupID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[startupID])
}
