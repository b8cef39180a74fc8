package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ValidationError rejects an operation before anything is persisted.
// Fields maps the offending json field to a message.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func newValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// NotFoundError reports a missing startup or record.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// PersistenceError wraps a failed read or write of the backing store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// AttachmentUploadError means the proof document could not be stored or the
// link was rejected. The owning record is never written when it is returned.
type AttachmentUploadError struct {
	Reason string
	Err    error
}

func (e *AttachmentUploadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("attachment upload failed: %s: %v", e.Reason, e.Err)
	}
	return "attachment upload failed: " + e.Reason
}

func (e *AttachmentUploadError) Unwrap() error {
	return e.Err
}

// ReconciliationDriftWarning is returned alongside a successful recalculation
// whose result differs from the cached total. It is informational.
type ReconciliationDriftWarning struct {
	StartupID    uint
	Cached       decimal.Decimal
	Recalculated decimal.Decimal
}

func (w *ReconciliationDriftWarning) Error() string {
	return fmt.Sprintf("startup %d total funding drifted: cached %s, recalculated %s",
		w.StartupID, w.Cached.String(), w.Recalculated.String())
}

// Drift is the recalculated value minus the cached one.
func (w *ReconciliationDriftWarning) Drift() decimal.Decimal {
	return w.Recalculated.Sub(w.Cached)
}

// storeError turns a store error into NotFoundError or PersistenceError.
func storeError(op, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Resource: resource, ID: id}
	}
	return &PersistenceError{Op: op, Err: err}
}
