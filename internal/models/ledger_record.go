package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RecordType distinguishes revenue from expense entries.
type RecordType string

const (
	RecordTypeRevenue RecordType = "revenue"
	RecordTypeExpense RecordType = "expense"
)

// Valid reports whether t is one of the known record types.
func (t RecordType) Valid() bool {
	return t == RecordTypeRevenue || t == RecordTypeExpense
}

// FundingSourceRevenue is the literal funding source for expenses paid from revenue.
const FundingSourceRevenue = "Revenue"

// ParentEntity is the entity label of the parent company.
const ParentEntity = "Parent Company"

// LedgerRecord is a single dated revenue or expense entry.
type LedgerRecord struct {
	ID            string              `json:"id" gorm:"primaryKey;size:36"`
	StartupID     uint                `json:"startup_id" gorm:"not null;index"`
	RecordType    RecordType          `json:"record_type" gorm:"size:16;not null;index"`
	Date          time.Time           `json:"date" gorm:"type:date;not null;index"`
	Entity        string              `json:"entity" gorm:"size:255;not null;index"`
	Vertical      Vertical            `json:"vertical" gorm:"embedded;embeddedPrefix:vertical_"`
	Description   string              `json:"description" gorm:"type:text;not null"`
	Amount        decimal.Decimal     `json:"amount" gorm:"type:numeric(20,2);not null"`
	FundingSource string              `json:"funding_source,omitempty" gorm:"size:255"`
	Cogs          decimal.NullDecimal `json:"cogs" gorm:"type:numeric(20,2)"`
	AttachmentURL string              `json:"attachment_url,omitempty" gorm:"size:1024"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// TableName specifies the table name for LedgerRecord
func (LedgerRecord) TableName() string {
	return "ledger_records"
}

// BeforeCreate assigns an id when the caller did not.
func (r *LedgerRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
