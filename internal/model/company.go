package model

import "time"

// Company represents an organisation mirrored from HubSpot or Kommo.
type Company struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:100;not null"`
	Domain    *string   `json:"domain" gorm:"size:100"`
	Industry  *string   `json:"industry" gorm:"size:50"`
	Size      *string   `json:"size" gorm:"size:20"`
	HubspotID *string   `json:"hubspot_id" gorm:"size:50;uniqueIndex"`
	KommoID   *string   `json:"kommo_id" gorm:"size:50;uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime:false"`
}
