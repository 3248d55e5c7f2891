package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"crmbridge/internal/model"
)

// ContactRepository defines contact persistence operations.
type ContactRepository interface {
	Create(ctx context.Context, contact *model.Contact) error
	Save(ctx context.Context, contact *model.Contact) error
	FindByID(ctx context.Context, id uint) (*model.Contact, error)
	FindByExternalID(ctx context.Context, system ExternalSystem, externalID string) (*model.Contact, error)
	List(ctx context.Context) ([]model.Contact, error)
	ListByCompany(ctx context.Context, companyID uint) ([]model.Contact, error)
	Exists(ctx context.Context, id uint) (bool, error)
	IsTaken(ctx context.Context, column Column, value string, excludeID uint) (bool, error)
	// Delete removes the contact and detaches its deals, stamping them with updatedAt.
	Delete(ctx context.Context, id uint, updatedAt time.Time) error
}

type contactRepository struct {
	db *gorm.DB
}

// NewContactRepository creates a new contact repository.
func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

// Create creates a new contact.
func (r *contactRepository) Create(ctx context.Context, contact *model.Contact) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(contact).Error
}

// Save writes every column of an existing contact.
func (r *contactRepository) Save(ctx context.Context, contact *model.Contact) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(contact).Error
}

// FindByID finds a contact by ID.
func (r *contactRepository) FindByID(ctx context.Context, id uint) (*model.Contact, error) {
	var contact model.Contact
	if err := r.db.WithContext(ctx).First(&contact, id).Error; err != nil {
		return nil, err
	}
	return &contact, nil
}

// FindByExternalID finds a contact by its HubSpot or Kommo identifier.
func (r *contactRepository) FindByExternalID(ctx context.Context, system ExternalSystem, externalID string) (*model.Contact, error) {
	return findByExternalID[model.Contact](ctx, r.db, system, externalID)
}

// List returns all contacts ordered by ID.
func (r *contactRepository) List(ctx context.Context) ([]model.Contact, error) {
	contacts := []model.Contact{}
	if err := r.db.WithContext(ctx).Order("id").Find(&contacts).Error; err != nil {
		return nil, err
	}
	return contacts, nil
}

// ListByCompany returns the contacts attached to a company.
func (r *contactRepository) ListByCompany(ctx context.Context, companyID uint) ([]model.Contact, error) {
	contacts := []model.Contact{}
	if err := r.db.WithContext(ctx).Where("company_id = ?", companyID).Order("id").Find(&contacts).Error; err != nil {
		return nil, err
	}
	return contacts, nil
}

// Exists reports whether a contact with the ID exists.
func (r *contactRepository) Exists(ctx context.Context, id uint) (bool, error) {
	return exists[model.Contact](ctx, r.db, id)
}

// IsTaken reports whether another contact already holds value in column.
func (r *contactRepository) IsTaken(ctx context.Context, column Column, value string, excludeID uint) (bool, error) {
	return valueTaken[model.Contact](ctx, r.db, column, value, excludeID)
}

// Delete removes a contact within a transaction.
func (r *contactRepository) Delete(ctx context.Context, id uint, updatedAt time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := detach[model.Deal](tx, "contact_id", id, updatedAt); err != nil {
			return err
		}
		res := tx.Delete(&model.Contact{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
