package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"crmbridge/internal/model"
)

// DealRepository defines deal persistence operations.
type DealRepository interface {
	Create(ctx context.Context, deal *model.Deal) error
	Save(ctx context.Context, deal *model.Deal) error
	FindByID(ctx context.Context, id uint) (*model.Deal, error)
	FindByExternalID(ctx context.Context, system ExternalSystem, externalID string) (*model.Deal, error)
	List(ctx context.Context) ([]model.Deal, error)
	IsTaken(ctx context.Context, column Column, value string, excludeID uint) (bool, error)
	Delete(ctx context.Context, id uint) error
}

type dealRepository struct {
	db *gorm.DB
}

// NewDealRepository creates a new deal repository.
func NewDealRepository(db *gorm.DB) DealRepository {
	return &dealRepository{db: db}
}

// Create creates a new deal.
func (r *dealRepository) Create(ctx context.Context, deal *model.Deal) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(deal).Error
}

// Save writes every column of an existing deal.
func (r *dealRepository) Save(ctx context.Context, deal *model.Deal) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(deal).Error
}

// FindByID finds a deal by ID.
func (r *dealRepository) FindByID(ctx context.Context, id uint) (*model.Deal, error) {
	var deal model.Deal
	if err := r.db.WithContext(ctx).First(&deal, id).Error; err != nil {
		return nil, err
	}
	return &deal, nil
}

// FindByExternalID finds a deal by its HubSpot or Kommo identifier.
func (r *dealRepository) FindByExternalID(ctx context.Context, system ExternalSystem, externalID string) (*model.Deal, error) {
	return findByExternalID[model.Deal](ctx, r.db, system, externalID)
}

// List returns all deals ordered by ID.
func (r *dealRepository) List(ctx context.Context) ([]model.Deal, error) {
	deals := []model.Deal{}
	if err := r.db.WithContext(ctx).Order("id").Find(&deals).Error; err != nil {
		return nil, err
	}
	return deals, nil
}

// IsTaken reports whether another deal already holds value in column.
func (r *dealRepository) IsTaken(ctx context.Context, column Column, value string, excludeID uint) (bool, error) {
	return valueTaken[model.Deal](ctx, r.db, column, value, excludeID)
}

// Delete removes a deal. Nothing references deals.
func (r *dealRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Deal{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
