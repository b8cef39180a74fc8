package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"trackmystartup/internal/handlers/business"
	"trackmystartup/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedSource blocks each request until its gate is released.
type gatedSource struct {
	gates map[string]chan struct{}
	err   error
}

func (s *gatedSource) Report(ctx context.Context, startupID uint, f business.Filter) (business.Report, error) {
	if g, ok := s.gates[f.Year.String()]; ok {
		<-g
	}
	return business.Report{Filter: f}, s.err
}

func TestFinancialsViewLastRequestWins(t *testing.T) {
	src := &gatedSource{gates: map[string]chan struct{}{"2024": make(chan struct{})}}
	view := NewFinancialsView(src, 1)
	ctx := context.Background()

	type result struct {
		snap      Snapshot
		committed bool
	}
	slow := make(chan result)
	go func() {
		snap, ok, _ := view.Apply(ctx, business.Filter{Entity: business.AllValue, Year: business.Year(2024)})
		slow <- result{snap, ok}
	}()

	// give the slow request time to take its generation
	require.Eventually(t, func() bool { return view.Filter().Year == business.Year(2024) }, time.Second, time.Millisecond)

	snap, ok, err := view.Apply(ctx, business.Filter{Entity: business.AllValue, Year: business.Year(2025)})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, business.Year(2025), snap.Report.Filter.Year)

	close(src.gates["2024"])
	stale := <-slow
	assert.False(t, stale.committed)

	current, found := view.Current()
	require.True(t, found)
	assert.Equal(t, business.Year(2025), current.Report.Filter.Year)
	assert.Greater(t, current.Generation, stale.snap.Generation)
}

func TestFinancialsViewRefresh(t *testing.T) {
	ctx := context.Background()
	view := NewFinancialsView(&gatedSource{}, 1)

	_, found := view.Current()
	assert.False(t, found)

	first, ok, err := view.Apply(ctx, business.Filter{Entity: "Acme India", Year: business.AllYears()})
	require.NoError(t, err)
	require.True(t, ok)

	second, ok, err := view.Refresh(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Acme India", second.Report.Filter.Entity)
	assert.Greater(t, second.Generation, first.Generation)
}

func TestFinancialsViewErrorKeepsLastSnapshot(t *testing.T) {
	ctx := context.Background()
	src := &gatedSource{}
	view := NewFinancialsView(src, 1)
	_, ok, err := view.Apply(ctx, business.AllFilter())
	require.NoError(t, err)
	require.True(t, ok)

	src.err = errors.New("store unavailable")
	_, ok, err = view.Refresh(ctx)
	assert.Error(t, err)
	assert.False(t, ok)
	_, found := view.Current()
	assert.True(t, found)
}

func TestFinancialsViewOverService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	st := testutil.CreateStartup(t, f.db, "Acme", 0)
	view := NewFinancialsView(f.financials, st.ID)

	snap, ok, err := view.Apply(ctx, business.Filter{Entity: business.AllValue, Year: business.Year(2024)})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, snap.Report.Monthly, 12)

	_, err = f.ledger.AddRecord(ctx, st.ID, revenueInput("250"))
	require.NoError(t, err)
	snap, ok, err = view.Refresh(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, dec("250").Equal(snap.Report.Summary.TotalRevenue))
}
