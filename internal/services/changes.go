package services

import (
	"context"
	"io"
	"time"

	"trackmystartup/pkg/config"
	"trackmystartup/pkg/events"
)

// EventPublisher sends a message to a named queue.
type EventPublisher interface {
	Publish(queueName string, message interface{}) error
}

// ReportCache stores aggregation results per startup. Version changes on
// every Invalidate.
type ReportCache interface {
	Version(ctx context.Context, startupID uint) (int64, error)
	GetJSON(ctx context.Context, startupID uint, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, startupID uint, key string, value interface{}) error
	Invalidate(ctx context.Context, startupID uint) error
}

// ChangeNotifier wakes live subscribers of a startup.
type ChangeNotifier interface {
	Notify(startupID uint)
}

// Attachment is either an uploaded file or a pasted cloud-drive link.
type Attachment struct {
	Link        string
	FileName    string
	ContentType string
	Size        int64
	File        io.Reader
}

// IsZero reports whether nothing was attached.
func (a *Attachment) IsZero() bool {
	return a == nil || (a.Link == "" && a.File == nil)
}

// AttachmentStore resolves an attachment to the URL stored on a record.
type AttachmentStore interface {
	Upload(ctx context.Context, startupID uint, fileName, contentType string, size int64, r io.Reader) (string, error)
	ValidateLink(link string) (string, error)
}

// ChangeFeed fans a committed mutation out to the event queue, the report
// cache and live subscribers. Each collaborator is optional. Failures are
// logged and never undo the mutation.
type ChangeFeed struct {
	publisher EventPublisher
	cache     ReportCache
	notifier  ChangeNotifier
}

func NewChangeFeed(publisher EventPublisher, cache ReportCache, notifier ChangeNotifier) *ChangeFeed {
	return &ChangeFeed{publisher: publisher, cache: cache, notifier: notifier}
}

func (f *ChangeFeed) emit(ctx context.Context, startupID uint, kind events.Kind, action events.Action, recordID string) {
	if f == nil {
		return
	}
	if f.cache != nil {
		if err := f.cache.Invalidate(ctx, startupID); err != nil {
			config.LogError("services", "emit", "invalidate report cache", startupID, err)
		}
	}
	if f.publisher != nil {
		msg := events.FinancialsChanged{
			StartupID:  startupID,
			Kind:       kind,
			Action:     action,
			RecordID:   recordID,
			OccurredAt: time.Now().UTC(),
		}
		if err := f.publisher.Publish(events.FinancialsChangedQueue, msg); err != nil {
			config.LogError("services", "emit", "publish financials changed", msg, err)
		}
	}
	if f.notifier != nil {
		f.notifier.Notify(startupID)
	}
}
