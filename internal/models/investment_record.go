package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvestmentType is the instrument of a capital raise.
type InvestmentType string

const (
	InvestmentTypeEquity          InvestmentType = "Equity"
	InvestmentTypeDebt            InvestmentType = "Debt"
	InvestmentTypeGrant           InvestmentType = "Grant"
	InvestmentTypeSAFE            InvestmentType = "SAFE"
	InvestmentTypeConvertibleNote InvestmentType = "Convertible Note"
)

// InvestmentRecord is a single capital-raise event tied to an investor.
type InvestmentRecord struct {
	ID                 string              `json:"id" gorm:"primaryKey;size:36"`
	StartupID          uint                `json:"startup_id" gorm:"not null;index"`
	Date               time.Time           `json:"date" gorm:"type:date;not null"`
	InvestorType       string              `json:"investor_type" gorm:"size:64;not null"`
	InvestmentType     InvestmentType      `json:"investment_type" gorm:"size:64;not null"`
	InvestorName       string              `json:"investor_name" gorm:"size:255;not null;index"`
	InvestorCode       string              `json:"investor_code" gorm:"size:64"`
	Amount             decimal.Decimal     `json:"amount" gorm:"type:numeric(20,2);not null"`
	EquityAllocated    decimal.NullDecimal `json:"equity_allocated" gorm:"type:numeric(7,4)"`
	Shares             decimal.NullDecimal `json:"shares" gorm:"type:numeric(24,6)"`
	PricePerShare      decimal.NullDecimal `json:"price_per_share" gorm:"type:numeric(24,6)"`
	PreMoneyValuation  decimal.NullDecimal `json:"pre_money_valuation" gorm:"type:numeric(24,2)"`
	PostMoneyValuation decimal.NullDecimal `json:"post_money_valuation" gorm:"type:numeric(24,2)"`
	ProofURL           string              `json:"proof_url,omitempty" gorm:"size:1024"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// TableName specifies the table name for InvestmentRecord
func (InvestmentRecord) TableName() string {
	return "investment_records"
}

// BeforeCreate assigns an id when the caller did not.
func (r *InvestmentRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
