package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FundraisingDetails is round metadata. A startup keeps its history of rounds
// but at most one of them is active.
type FundraisingDetails struct {
	ID            string              `json:"id" gorm:"primaryKey;size:36"`
	StartupID     uint                `json:"startup_id" gorm:"not null;index"`
	RoundType     string              `json:"round_type" gorm:"size:64;not null"`
	TargetValue   decimal.Decimal     `json:"target_value" gorm:"type:numeric(20,2);not null;default:0"`
	EquityOffered decimal.NullDecimal `json:"equity_offered" gorm:"type:numeric(7,4)"`
	Domain        string              `json:"domain,omitempty" gorm:"size:128"`
	Stage         string              `json:"stage,omitempty" gorm:"size:64"`
	PitchDeckURL  string              `json:"pitch_deck_url,omitempty" gorm:"size:1024"`
	PitchVideoURL string              `json:"pitch_video_url,omitempty" gorm:"size:1024"`
	Active        bool                `json:"active" gorm:"not null;default:false;index"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// TableName specifies the table name for FundraisingDetails
func (FundraisingDetails) TableName() string {
	return "fundraising_details"
}

// BeforeCreate assigns an id when the caller did not.
func (f *FundraisingDetails) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
