package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"trackmystartup/internal/handlers/business"
	"trackmystartup/internal/models"
	"trackmystartup/internal/store"
	"trackmystartup/pkg/events"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerInput is a new revenue or expense entry.
type LedgerInput struct {
	RecordType    models.RecordType `json:"record_type" validate:"required,oneof=revenue expense"`
	Date          time.Time         `json:"date"`
	Entity        string            `json:"entity" validate:"required,max=255"`
	Vertical      string            `json:"vertical" validate:"required,max=128"`
	Description   string            `json:"description" validate:"required"`
	Amount        decimal.Decimal   `json:"amount"`
	FundingSource string            `json:"funding_source" validate:"max=255"`
	Cogs          *decimal.Decimal  `json:"cogs"`
	Attachment    *Attachment       `json:"-"`
}

// LedgerPatch changes only the non-nil fields of a record.
type LedgerPatch struct {
	Date          *time.Time
	Entity        *string
	Vertical      *string
	Description   *string
	Amount        *decimal.Decimal
	FundingSource *string
	Cogs          *decimal.Decimal
	ClearCogs     bool
	Attachment    *Attachment
}

// LedgerService implements the ledger record store operations.
type LedgerService struct {
	records     *store.LedgerStore
	startups    *store.StartupStore
	attachments AttachmentStore
	changes     *ChangeFeed
}

func NewLedgerService(db *gorm.DB, attachments AttachmentStore, changes *ChangeFeed) *LedgerService {
	return &LedgerService{
		records:     store.NewLedgerStore(db),
		startups:    store.NewStartupStore(db),
		attachments: attachments,
		changes:     changes,
	}
}

// AddRecord validates, stores the attachment and only then writes the record.
func (s *LedgerService) AddRecord(ctx context.Context, startupID uint, in LedgerInput) (*models.LedgerRecord, error) {
	if _, err := s.startups.Get(ctx, startupID); err != nil {
		return nil, storeError("get startup", "startup", fmt.Sprint(startupID), err)
	}

	in.Entity = strings.TrimSpace(in.Entity)
	in.Description = strings.TrimSpace(in.Description)
	in.FundingSource = strings.TrimSpace(in.FundingSource)

	fe := fieldErrors{}
	fe.structFields(in)
	if in.Date.IsZero() {
		fe.add("date", "is required")
	}
	if !in.Amount.IsPositive() {
		fe.add("amount", "must be a positive number")
	}
	vertical := models.ParseVertical(in.RecordType, in.Vertical)
	if vertical.IsZero() {
		fe.add("vertical", "is required")
	}
	cogs := decimal.NullDecimal{}
	if in.Cogs != nil {
		cogs = decimal.NewNullDecimal(*in.Cogs)
	}
	if err := s.checkTypedFields(ctx, fe, startupID, in.RecordType, in.FundingSource, cogs); err != nil {
		return nil, err
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	record := &models.LedgerRecord{
		StartupID:     startupID,
		RecordType:    in.RecordType,
		Date:          calendarDate(in.Date),
		Entity:        in.Entity,
		Vertical:      vertical,
		Description:   in.Description,
		Amount:        in.Amount,
		FundingSource: in.FundingSource,
		Cogs:          cogs,
	}

	url, err := s.storeAttachment(ctx, startupID, in.Attachment)
	if err != nil {
		return nil, err
	}
	record.AttachmentURL = url

	if err := s.records.Create(ctx, record); err != nil {
		return nil, &PersistenceError{Op: "create ledger record", Err: err}
	}
	s.changes.emit(ctx, startupID, events.KindLedger, events.ActionCreated, record.ID)
	return record, nil
}

// UpdateRecord applies a partial update.
func (s *LedgerService) UpdateRecord(ctx context.Context, id string, patch LedgerPatch) (*models.LedgerRecord, error) {
	record, err := s.records.Get(ctx, id)
	if err != nil {
		return nil, storeError("get ledger record", "ledger record", id, err)
	}

	fe := fieldErrors{}
	if patch.Date != nil {
		if patch.Date.IsZero() {
			fe.add("date", "is required")
		}
		record.Date = calendarDate(*patch.Date)
	}
	if patch.Entity != nil {
		if v := strings.TrimSpace(*patch.Entity); v == "" {
			fe.add("entity", "is required")
		} else {
			record.Entity = v
		}
	}
	if patch.Vertical != nil {
		v := models.ParseVertical(record.RecordType, *patch.Vertical)
		if v.IsZero() {
			fe.add("vertical", "is required")
		} else {
			record.Vertical = v
		}
	}
	if patch.Description != nil {
		if v := strings.TrimSpace(*patch.Description); v == "" {
			fe.add("description", "is required")
		} else {
			record.Description = v
		}
	}
	if patch.Amount != nil {
		if !patch.Amount.IsPositive() {
			fe.add("amount", "must be a positive number")
		}
		record.Amount = *patch.Amount
	}
	if patch.FundingSource != nil {
		record.FundingSource = strings.TrimSpace(*patch.FundingSource)
	}
	switch {
	case patch.ClearCogs:
		record.Cogs = decimal.NullDecimal{}
	case patch.Cogs != nil:
		record.Cogs = decimal.NewNullDecimal(*patch.Cogs)
	}
	if patch.FundingSource != nil || patch.Cogs != nil {
		if err := s.checkTypedFields(ctx, fe, record.StartupID, record.RecordType, record.FundingSource, record.Cogs); err != nil {
			return nil, err
		}
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	if !patch.Attachment.IsZero() {
		url, err := s.storeAttachment(ctx, record.StartupID, patch.Attachment)
		if err != nil {
			return nil, err
		}
		record.AttachmentURL = url
	}

	if err := s.records.Save(ctx, record); err != nil {
		return nil, &PersistenceError{Op: "update ledger record", Err: err}
	}
	s.changes.emit(ctx, record.StartupID, events.KindLedger, events.ActionUpdated, record.ID)
	return record, nil
}

// DeleteRecord removes a record unconditionally.
func (s *LedgerService) DeleteRecord(ctx context.Context, id string) error {
	removed, err := s.records.Delete(ctx, id)
	if err != nil {
		return storeError("delete ledger record", "ledger record", id, err)
	}
	s.changes.emit(ctx, removed.StartupID, events.KindLedger, events.ActionDeleted, removed.ID)
	return nil
}

// GetRecord returns one record.
func (s *LedgerService) GetRecord(ctx context.Context, id string) (*models.LedgerRecord, error) {
	record, err := s.records.Get(ctx, id)
	if err != nil {
		return nil, storeError("get ledger record", "ledger record", id, err)
	}
	return record, nil
}

// ListRecords returns the records matching f, newest first.
func (s *LedgerService) ListRecords(ctx context.Context, startupID uint, f business.Filter) ([]models.LedgerRecord, error) {
	return s.list(ctx, startupID, "", f)
}

func (s *LedgerService) ListExpenses(ctx context.Context, startupID uint, f business.Filter) ([]models.LedgerRecord, error) {
	return s.list(ctx, startupID, models.RecordTypeExpense, f)
}

func (s *LedgerService) ListRevenues(ctx context.Context, startupID uint, f business.Filter) ([]models.LedgerRecord, error) {
	return s.list(ctx, startupID, models.RecordTypeRevenue, f)
}

func (s *LedgerService) list(ctx context.Context, startupID uint, rt models.RecordType, f business.Filter) ([]models.LedgerRecord, error) {
	records, err := s.records.List(ctx, startupID, rt, f)
	if err != nil {
		return nil, &PersistenceError{Op: "list ledger records", Err: err}
	}
	return records, nil
}

// checkTypedFields enforces that funding sources only appear on expenses and
// name "Revenue" or a recorded investor, and that cogs only appear on revenues.
// A non-nil return is a store failure; rule violations go to fe.
func (s *LedgerService) checkTypedFields(ctx context.Context, fe fieldErrors, startupID uint, rt models.RecordType, fundingSource string, cogs decimal.NullDecimal) error {
	if cogs.Valid {
		if rt != models.RecordTypeRevenue {
			fe.add("cogs", "is only allowed on revenue records")
		} else if cogs.Decimal.IsNegative() {
			fe.add("cogs", "must not be negative")
		}
	}
	if fundingSource == "" {
		return nil
	}
	if rt != models.RecordTypeExpense {
		fe.add("funding_source", "is only allowed on expense records")
		return nil
	}
	if strings.EqualFold(fundingSource, models.FundingSourceRevenue) {
		return nil
	}
	ok, err := s.records.HasInvestor(ctx, startupID, fundingSource)
	if err != nil {
		return &PersistenceError{Op: "check funding source", Err: err}
	}
	if !ok {
		fe.add("funding_source", "must be Revenue or the name of a recorded investor")
	}
	return nil
}

func (s *LedgerService) storeAttachment(ctx context.Context, startupID uint, a *Attachment) (string, error) {
	if a.IsZero() {
		return "", nil
	}
	if s.attachments == nil {
		return "", &AttachmentUploadError{Reason: "attachment storage is not configured"}
	}
	if a.File != nil {
		url, err := s.attachments.Upload(ctx, startupID, a.FileName, a.ContentType, a.Size, a.File)
		if err != nil {
			var ae *AttachmentUploadError
			if errors.As(err, &ae) {
				return "", ae
			}
			return "", &AttachmentUploadError{Reason: "upload " + a.FileName, Err: err}
		}
		return url, nil
	}
	url, err := s.attachments.ValidateLink(a.Link)
	if err != nil {
		return "", &AttachmentUploadError{Reason: "link rejected", Err: err}
	}
	return url, nil
}

// WithFile builds an upload attachment.
func WithFile(name, contentType string, size int64, r io.Reader) *Attachment {
	return &Attachment{FileName: name, ContentType: contentType, Size: size, File: r}
}

// WithLink builds a cloud-drive link attachment.
func WithLink(link string) *Attachment {
	link = strings.TrimSpace(link)
	if link == "" {
		return nil
	}
	return &Attachment{Link: link}
}
