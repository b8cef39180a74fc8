package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"trackmystartup/internal/testutil"
	"trackmystartup/pkg/events"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakePublisher struct {
	mu       sync.Mutex
	messages []events.FinancialsChanged
	err      error
}

func (p *fakePublisher) Publish(queueName string, message interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if queueName != events.FinancialsChangedQueue {
		return errors.New("unexpected queue " + queueName)
	}
	if ev, ok := message.(events.FinancialsChanged); ok {
		p.messages = append(p.messages, ev)
	}
	return p.err
}

func (p *fakePublisher) last() events.FinancialsChanged {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.messages) == 0 {
		return events.FinancialsChanged{}
	}
	return p.messages[len(p.messages)-1]
}

type fakeCache struct {
	mu          sync.Mutex
	entries     map[string]interface{}
	invalidated []uint
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]interface{})}
}

func (c *fakeCache) Version(ctx context.Context, startupID uint) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return int64(len(c.invalidated)), nil
}

func (c *fakeCache) GetJSON(ctx context.Context, startupID uint, key string, dest interface{}) (bool, error) {
	return false, nil
}

func (c *fakeCache) SetJSON(ctx context.Context, startupID uint, key string, value interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *fakeCache) Invalidate(ctx context.Context, startupID uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, startupID)
	return nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	count map[uint]int
}

func (n *fakeNotifier) Notify(startupID uint) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.count == nil {
		n.count = make(map[uint]int)
	}
	n.count[startupID]++
}

type fakeAttachments struct {
	uploadErr error
	uploads   int
}

func (a *fakeAttachments) Upload(ctx context.Context, startupID uint, fileName, contentType string, size int64, r io.Reader) (string, error) {
	if a.uploadErr != nil {
		return "", a.uploadErr
	}
	a.uploads++
	return "https://storage.googleapis.com/proofs/" + fileName, nil
}

func (a *fakeAttachments) ValidateLink(link string) (string, error) {
	if link == "https://drive.google.com/file/d/ok" {
		return link, nil
	}
	return "", errors.New("link is not from a supported cloud drive")
}

type fixture struct {
	db          *gorm.DB
	publisher   *fakePublisher
	cache       *fakeCache
	notifier    *fakeNotifier
	attachments *fakeAttachments
	ledger      *LedgerService
	investments *InvestmentService
	fundraising *FundraisingService
	startups    *StartupService
	financials  *FinancialsService
}

var fixedNow = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		db:          testutil.NewDB(t),
		publisher:   &fakePublisher{},
		cache:       newFakeCache(),
		notifier:    &fakeNotifier{},
		attachments: &fakeAttachments{},
	}
	changes := NewChangeFeed(f.publisher, f.cache, f.notifier)
	f.ledger = NewLedgerService(f.db, f.attachments, changes)
	f.investments = NewInvestmentService(f.db, changes)
	f.investments.now = func() time.Time { return fixedNow }
	f.fundraising = NewFundraisingService(f.db, changes)
	f.startups = NewStartupService(f.db, changes)
	f.startups.now = func() time.Time { return fixedNow }
	f.financials = NewFinancialsService(f.db, f.investments, f.cache)
	return f
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func strPtr(s string) *string {
	return &s
}

func requireValidation(t *testing.T, err error, field string) {
	t.Helper()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Contains(t, ve.Fields, field)
}

func requireNotFound(t *testing.T, err error) {
	t.Helper()
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}
