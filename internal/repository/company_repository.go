package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"crmbridge/internal/model"
)

// CompanyRepository defines company persistence operations.
type CompanyRepository interface {
	Create(ctx context.Context, company *model.Company) error
	Save(ctx context.Context, company *model.Company) error
	FindByID(ctx context.Context, id uint) (*model.Company, error)
	FindByExternalID(ctx context.Context, system ExternalSystem, externalID string) (*model.Company, error)
	List(ctx context.Context) ([]model.Company, error)
	Exists(ctx context.Context, id uint) (bool, error)
	IsTaken(ctx context.Context, column Column, value string, excludeID uint) (bool, error)
	// Delete removes the company and detaches its contacts and deals, moving
	// their updated_at to updatedAt or just past its previous value.
	Delete(ctx context.Context, id uint, updatedAt time.Time) error
}

type companyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository creates a new company repository.
func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

// Create creates a new company.
func (r *companyRepository) Create(ctx context.Context, company *model.Company) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(company).Error
}

// Save writes every column of an existing company.
func (r *companyRepository) Save(ctx context.Context, company *model.Company) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(company).Error
}

// FindByID finds a company by ID.
func (r *companyRepository) FindByID(ctx context.Context, id uint) (*model.Company, error) {
	var company model.Company
	if err := r.db.WithContext(ctx).First(&company, id).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

// FindByExternalID finds a company by its HubSpot or Kommo identifier.
func (r *companyRepository) FindByExternalID(ctx context.Context, system ExternalSystem, externalID string) (*model.Company, error) {
	return findByExternalID[model.Company](ctx, r.db, system, externalID)
}

// List returns all companies ordered by ID.
func (r *companyRepository) List(ctx context.Context) ([]model.Company, error) {
	companies := []model.Company{}
	if err := r.db.WithContext(ctx).Order("id").Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}

// Exists reports whether a company with the ID exists.
func (r *companyRepository) Exists(ctx context.Context, id uint) (bool, error) {
	return exists[model.Company](ctx, r.db, id)
}

// IsTaken reports whether another company already holds value in column.
func (r *companyRepository) IsTaken(ctx context.Context, column Column, value string, excludeID uint) (bool, error) {
	return valueTaken[model.Company](ctx, r.db, column, value, excludeID)
}

// Delete removes a company within a transaction.
func (r *companyRepository) Delete(ctx context.Context, id uint, updatedAt time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := detach[model.Contact](tx, "company_id", id, updatedAt); err != nil {
			return err
		}
		if err := detach[model.Deal](tx, "company_id", id, updatedAt); err != nil {
			return err
		}
		res := tx.Delete(&model.Company{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
