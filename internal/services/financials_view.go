package services

import (
	"context"
	"sync"

	"trackmystartup/internal/handlers/business"
)

// ReportSource produces a report for one filter selection.
type ReportSource interface {
	Report(ctx context.Context, startupID uint, f business.Filter) (business.Report, error)
}

// Snapshot is a committed report and the generation that produced it.
type Snapshot struct {
	Generation uint64          `json:"generation"`
	Report     business.Report `json:"report"`
}

// FinancialsView binds an entity/year selection to the aggregation engine
// for one session. Every Apply or Refresh takes a new generation; a result
// is only committed while its generation is still the newest, so a slow
// response for an old filter never overwrites a newer one.
type FinancialsView struct {
	source    ReportSource
	startupID uint

	mu         sync.Mutex
	filter     business.Filter
	generation uint64
	current    *Snapshot
}

func NewFinancialsView(source ReportSource, startupID uint) *FinancialsView {
	return &FinancialsView{source: source, startupID: startupID, filter: business.AllFilter()}
}

// Apply switches to f and recomputes. The bool is false when a newer request
// superseded this one; the returned snapshot is then the stale result, not
// the committed state.
func (v *FinancialsView) Apply(ctx context.Context, f business.Filter) (Snapshot, bool, error) {
	v.mu.Lock()
	v.generation++
	gen := v.generation
	v.filter = f
	v.mu.Unlock()
	return v.run(ctx, gen, f)
}

// Refresh recomputes the current selection. Change notifications land here:
// the whole report is fetched again rather than patched.
func (v *FinancialsView) Refresh(ctx context.Context) (Snapshot, bool, error) {
	v.mu.Lock()
	v.generation++
	gen := v.generation
	f := v.filter
	v.mu.Unlock()
	return v.run(ctx, gen, f)
}

// Current returns the last committed snapshot.
func (v *FinancialsView) Current() (Snapshot, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.current == nil {
		return Snapshot{}, false
	}
	return *v.current, true
}

// Filter returns the selection of the newest request.
func (v *FinancialsView) Filter() business.Filter {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filter
}

func (v *FinancialsView) run(ctx context.Context, gen uint64, f business.Filter) (Snapshot, bool, error) {
	report, err := v.source.Report(ctx, v.startupID, f)
	snap := Snapshot{Generation: gen, Report: report}

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.generation {
		return snap, false, err
	}
	if err != nil {
		return snap, false, err
	}
	v.current = &snap
	return snap, true, nil
}
