package model

import "time"

// Contact represents a person, optionally attached to a Company.
type Contact struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	FirstName string    `json:"first_name" gorm:"size:50;not null"`
	LastName  string    `json:"last_name" gorm:"size:50;not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;size:120;not null"`
	Phone     *string   `json:"phone" gorm:"size:20"`
	CompanyID *uint     `json:"company_id" gorm:"index"`
	HubspotID *string   `json:"hubspot_id" gorm:"size:50;uniqueIndex"`
	KommoID   *string   `json:"kommo_id" gorm:"size:50;uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime:false"`

	// Relations
	Company *Company `json:"-" gorm:"foreignKey:CompanyID;constraint:OnDelete:SET NULL"`
}
