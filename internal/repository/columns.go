package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"crmbridge/internal/model"
)

// Column names a unique column that services check for collisions.
type Column string

const (
	ColumnEmail     Column = "email"
	ColumnHubspotID Column = "hubspot_id"
	ColumnKommoID   Column = "kommo_id"
)

// ExternalSystem identifies one of the two CRMs records are mirrored from.
type ExternalSystem string

const (
	SystemHubspot ExternalSystem = "hubspot"
	SystemKommo   ExternalSystem = "kommo"
)

// Column returns the column holding the system's identifier.
func (s ExternalSystem) Column() (Column, error) {
	switch s {
	case SystemHubspot:
		return ColumnHubspotID, nil
	case SystemKommo:
		return ColumnKommoID, nil
	default:
		return "", fmt.Errorf("unknown external system %q", s)
	}
}

// exists reports whether a row of T has the given primary key.
func exists[T any](ctx context.Context, db *gorm.DB, id uint) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// valueTaken reports whether a row of T other than excludeID holds value in column.
func valueTaken[T any](ctx context.Context, db *gorm.DB, column Column, value string, excludeID uint) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Model(new(T)).
		Where(fmt.Sprintf("%s = ?", column), value).
		Where("id <> ?", excludeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// findByExternalID loads the row of T mirrored from the given external record.
func findByExternalID[T any](ctx context.Context, db *gorm.DB, system ExternalSystem, externalID string) (*T, error) {
	column, err := system.Column()
	if err != nil {
		return nil, err
	}
	var row T
	if err := db.WithContext(ctx).Where(fmt.Sprintf("%s = ?", column), externalID).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

type stampedRow struct {
	ID        uint
	UpdatedAt time.Time
}

// detach clears column on every row of T that references id. Each row's
// updated_at moves to at, or past its previous value when that is later.
func detach[T any](tx *gorm.DB, column string, id uint, at time.Time) error {
	var rows []stampedRow
	err := tx.Model(new(T)).
		Select("id", "updated_at").
		Where(fmt.Sprintf("%s = ?", column), id).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return err
	}
	for _, row := range rows {
		err := tx.Model(new(T)).Where("id = ?", row.ID).Updates(map[string]interface{}{
			column:       nil,
			"updated_at": model.NextUpdatedAt(at, row.UpdatedAt),
		}).Error
		if err != nil {
			return err
		}
	}
	return nil
}
