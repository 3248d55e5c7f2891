package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultDealStage is the pipeline stage assigned when none is supplied.
const DefaultDealStage = "new"

func init() {
	// Amounts are plain JSON numbers on the wire.
	decimal.MarshalJSONWithoutQuotes = true
}

// Deal represents a sales opportunity in a pipeline.
// Stage is free-form and Probability is not clamped.
type Deal struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Name        string          `json:"name" gorm:"size:100;not null"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(20,2);not null"`
	Stage       string          `json:"stage" gorm:"size:50;not null"`
	Probability int             `json:"probability" gorm:"not null"`
	ContactID   *uint           `json:"contact_id" gorm:"index"`
	CompanyID   *uint           `json:"company_id" gorm:"index"`
	HubspotID   *string         `json:"hubspot_id" gorm:"size:50;uniqueIndex"`
	KommoID     *string         `json:"kommo_id" gorm:"size:50;uniqueIndex"`
	CloseDate   *Date           `json:"close_date"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" gorm:"autoUpdateTime:false"`

	// Relations
	Contact *Contact `json:"-" gorm:"foreignKey:ContactID;constraint:OnDelete:SET NULL"`
	Company *Company `json:"-" gorm:"foreignKey:CompanyID;constraint:OnDelete:SET NULL"`
}
