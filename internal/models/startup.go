package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Startup is the owning entity of ledger and investment records.
// TotalFunding is a denormalized cache of the investment sum and is only
// trusted when no investment records exist.
type Startup struct {
	ID                      uint            `json:"id" gorm:"primaryKey"`
	Name                    string          `json:"name" gorm:"size:255;not null"`
	Currency                string          `json:"currency" gorm:"size:3;not null;default:USD"`
	RegisteredAt            *time.Time      `json:"registered_at"`
	Subsidiaries            []string        `json:"subsidiaries" gorm:"type:text;serializer:json"`
	InternationalOperations []string        `json:"international_operations" gorm:"type:text;serializer:json"`
	TotalFunding            decimal.Decimal `json:"total_funding" gorm:"type:numeric(20,2);not null;default:0"`
	CreatedAt               time.Time       `json:"created_at"`
	UpdatedAt               time.Time       `json:"updated_at"`
}

// TableName specifies the table name for Startup
func (Startup) TableName() string {
	return "startups"
}
