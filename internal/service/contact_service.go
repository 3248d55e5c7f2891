package service

import (
	"context"
	"fmt"
	"time"

	"github.com/oapi-codegen/nullable"

	"crmbridge/internal/model"
	"crmbridge/internal/repository"
)

// ContactInput carries the writable fields of a contact.
type ContactInput struct {
	FirstName string  `json:"first_name" validate:"notblank,max=50"`
	LastName  string  `json:"last_name" validate:"notblank,max=50"`
	Email     string  `json:"email" validate:"notblank,max=120"`
	Phone     *string `json:"phone" validate:"omitempty,max=20"`
	CompanyID *uint   `json:"company_id"`
	HubspotID *string `json:"hubspot_id" validate:"omitempty,max=50"`
	KommoID   *string `json:"kommo_id" validate:"omitempty,max=50"`
}

// ContactPatch is a partial contact update. Omitted fields are left alone and
// null clears an optional field.
type ContactPatch struct {
	FirstName nullable.Nullable[string] `json:"first_name" swaggertype:"string"`
	LastName  nullable.Nullable[string] `json:"last_name" swaggertype:"string"`
	Email     nullable.Nullable[string] `json:"email" swaggertype:"string"`
	Phone     nullable.Nullable[string] `json:"phone" swaggertype:"string"`
	CompanyID nullable.Nullable[uint]   `json:"company_id" swaggertype:"integer"`
	HubspotID nullable.Nullable[string] `json:"hubspot_id" swaggertype:"string"`
	KommoID   nullable.Nullable[string] `json:"kommo_id" swaggertype:"string"`
}

// ContactService exposes contact operations.
type ContactService interface {
	List(ctx context.Context) ([]model.Contact, error)
	Get(ctx context.Context, id uint) (*model.Contact, error)
	Create(ctx context.Context, in ContactInput) (*model.Contact, error)
	Update(ctx context.Context, id uint, patch ContactPatch) (*model.Contact, error)
	Delete(ctx context.Context, id uint) error
}

type contactService struct {
	contacts  repository.ContactRepository
	companies repository.CompanyRepository
	now       func() time.Time
}

// NewContactService creates a new contact service.
func NewContactService(contacts repository.ContactRepository, companies repository.CompanyRepository) ContactService {
	return &contactService{contacts: contacts, companies: companies, now: time.Now}
}

func (s *contactService) List(ctx context.Context) ([]model.Contact, error) {
	contacts, err := s.contacts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return contacts, nil
}

func (s *contactService) Get(ctx context.Context, id uint) (*model.Contact, error) {
	contact, err := s.contacts.FindByID(ctx, id)
	if err != nil {
		return nil, translateDBError(err, fmt.Sprintf("contact %d", id))
	}
	return contact, nil
}

func (s *contactService) Create(ctx context.Context, in ContactInput) (*model.Contact, error) {
	if err := s.check(ctx, 0, &in); err != nil {
		return nil, err
	}

	now := stamp(s.now)
	contact := &model.Contact{CreatedAt: now, UpdatedAt: now}
	in.applyTo(contact)

	if err := s.contacts.Create(ctx, contact); err != nil {
		return nil, translateDBError(err, "contact")
	}
	return contact, nil
}

func (s *contactService) Update(ctx context.Context, id uint, patch ContactPatch) (*model.Contact, error) {
	contact, err := s.contacts.FindByID(ctx, id)
	if err != nil {
		return nil, translateDBError(err, fmt.Sprintf("contact %d", id))
	}

	in := contactInputFrom(contact)
	if err := patch.applyTo(&in); err != nil {
		return nil, err
	}
	if err := s.check(ctx, id, &in); err != nil {
		return nil, err
	}

	in.applyTo(contact)
	contact.UpdatedAt = touch(s.now, contact.UpdatedAt)
	if err := s.contacts.Save(ctx, contact); err != nil {
		return nil, translateDBError(err, fmt.Sprintf("contact %d", id))
	}
	return contact, nil
}

func (s *contactService) Delete(ctx context.Context, id uint) error {
	if err := s.contacts.Delete(ctx, id, stamp(s.now)); err != nil {
		return translateDBError(err, fmt.Sprintf("contact %d", id))
	}
	return nil
}

// check validates fields, the company reference and unique columns against
// every contact other than id.
func (s *contactService) check(ctx context.Context, id uint, in *ContactInput) error {
	in.Phone = blankToNil(in.Phone)
	in.HubspotID = blankToNil(in.HubspotID)
	in.KommoID = blankToNil(in.KommoID)

	if err := Validate(in); err != nil {
		return err
	}

	if in.CompanyID != nil {
		ok, err := s.companies.Exists(ctx, *in.CompanyID)
		if err != nil {
			return fmt.Errorf("check company: %w", err)
		}
		if !ok {
			return validationError("company_id %d does not exist", *in.CompanyID)
		}
	}

	return checkUnique(ctx, s.contacts.IsTaken, id, "contact", map[repository.Column]*string{
		repository.ColumnEmail:     &in.Email,
		repository.ColumnHubspotID: in.HubspotID,
		repository.ColumnKommoID:   in.KommoID,
	})
}

func contactInputFrom(c *model.Contact) ContactInput {
	return ContactInput{
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		CompanyID: c.CompanyID,
		HubspotID: c.HubspotID,
		KommoID:   c.KommoID,
	}
}

func (in ContactInput) applyTo(c *model.Contact) {
	c.FirstName = in.FirstName
	c.LastName = in.LastName
	c.Email = in.Email
	c.Phone = in.Phone
	c.CompanyID = in.CompanyID
	c.HubspotID = in.HubspotID
	c.KommoID = in.KommoID
}

func (p ContactPatch) applyTo(in *ContactInput) error {
	if err := setValue("first_name", &in.FirstName, p.FirstName); err != nil {
		return err
	}
	if err := setValue("last_name", &in.LastName, p.LastName); err != nil {
		return err
	}
	if err := setValue("email", &in.Email, p.Email); err != nil {
		return err
	}
	setOptional(&in.Phone, p.Phone)
	setOptional(&in.CompanyID, p.CompanyID)
	setOptional(&in.HubspotID, p.HubspotID)
	setOptional(&in.KommoID, p.KommoID)
	return nil
}
