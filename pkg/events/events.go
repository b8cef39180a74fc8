// Package events defines the change notifications exchanged between the api
// and the worker.
package events

import "time"

// FinancialsChangedQueue carries every ledger, investment and fundraising mutation.
const FinancialsChangedQueue = "financials_changed"

// Kind names the table a change touched.
type Kind string

const (
	KindLedger      Kind = "ledger"
	KindInvestment  Kind = "investment"
	KindFundraising Kind = "fundraising"
	KindStartup     Kind = "startup"
)

// Action names the mutation.
type Action string

const (
	ActionCreated      Action = "created"
	ActionUpdated      Action = "updated"
	ActionDeleted      Action = "deleted"
	ActionRecalculated Action = "recalculated"
)

// FinancialsChanged tells consumers that derived figures of a startup are stale.
// Consumers re-fetch everything they need; the message carries no payload to patch with.
type FinancialsChanged struct {
	StartupID  uint      `json:"startup_id"`
	Kind       Kind      `json:"kind"`
	Action     Action    `json:"action"`
	RecordID   string    `json:"record_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
