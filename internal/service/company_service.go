package service

import (
	"context"
	"fmt"
	"time"

	"github.com/oapi-codegen/nullable"
	"gorm.io/gorm"

	"crmbridge/internal/model"
	"crmbridge/internal/repository"
)

// CompanyInput carries the writable fields of a company.
type CompanyInput struct {
	Name      string  `json:"name" validate:"notblank,max=100"`
	Domain    *string `json:"domain" validate:"omitempty,max=100"`
	Industry  *string `json:"industry" validate:"omitempty,max=50"`
	Size      *string `json:"size" validate:"omitempty,max=20"`
	HubspotID *string `json:"hubspot_id" validate:"omitempty,max=50"`
	KommoID   *string `json:"kommo_id" validate:"omitempty,max=50"`
}

// CompanyPatch is a partial company update.
type CompanyPatch struct {
	Name      nullable.Nullable[string] `json:"name" swaggertype:"string"`
	Domain    nullable.Nullable[string] `json:"domain" swaggertype:"string"`
	Industry  nullable.Nullable[string] `json:"industry" swaggertype:"string"`
	Size      nullable.Nullable[string] `json:"size" swaggertype:"string"`
	HubspotID nullable.Nullable[string] `json:"hubspot_id" swaggertype:"string"`
	KommoID   nullable.Nullable[string] `json:"kommo_id" swaggertype:"string"`
}

// CompanyService exposes company operations.
type CompanyService interface {
	List(ctx context.Context) ([]model.Company, error)
	Get(ctx context.Context, id uint) (*model.Company, error)
	Create(ctx context.Context, in CompanyInput) (*model.Company, error)
	Update(ctx context.Context, id uint, patch CompanyPatch) (*model.Company, error)
	Delete(ctx context.Context, id uint) error
	ListContacts(ctx context.Context, id uint) ([]model.Contact, error)
}

type companyService struct {
	companies repository.CompanyRepository
	contacts  repository.ContactRepository
	now       func() time.Time
}

// NewCompanyService creates a new company service.
func NewCompanyService(companies repository.CompanyRepository, contacts repository.ContactRepository) CompanyService {
	return &companyService{companies: companies, contacts: contacts, now: time.Now}
}

func (s *companyService) List(ctx context.Context) ([]model.Company, error) {
	companies, err := s.companies.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	return companies, nil
}

func (s *companyService) Get(ctx context.Context, id uint) (*model.Company, error) {
	company, err := s.companies.FindByID(ctx, id)
	if err != nil {
		return nil, translateDBError(err, fmt.Sprintf("company %d", id))
	}
	return company, nil
}

func (s *companyService) Create(ctx context.Context, in CompanyInput) (*model.Company, error) {
	if err := s.check(ctx, 0, &in); err != nil {
		return nil, err
	}

	now := stamp(s.now)
	company := &model.Company{CreatedAt: now, UpdatedAt: now}
	in.applyTo(company)

	if err := s.companies.Create(ctx, company); err != nil {
		return nil, translateDBError(err, "company")
	}
	return company, nil
}

func (s *companyService) Update(ctx context.Context, id uint, patch CompanyPatch) (*model.Company, error) {
	company, err := s.companies.FindByID(ctx, id)
	if err != nil {
		return nil, translateDBError(err, fmt.Sprintf("company %d", id))
	}

	in := companyInputFrom(company)
	if err := patch.applyTo(&in); err != nil {
		return nil, err
	}
	if err := s.check(ctx, id, &in); err != nil {
		return nil, err
	}

	in.applyTo(company)
	company.UpdatedAt = touch(s.now, company.UpdatedAt)
	if err := s.companies.Save(ctx, company); err != nil {
		return nil, translateDBError(err, fmt.Sprintf("company %d", id))
	}
	return company, nil
}

func (s *companyService) Delete(ctx context.Context, id uint) error {
	if err := s.companies.Delete(ctx, id, stamp(s.now)); err != nil {
		return translateDBError(err, fmt.Sprintf("company %d", id))
	}
	return nil
}

// ListContacts returns the contacts attached to the company.
func (s *companyService) ListContacts(ctx context.Context, id uint) ([]model.Contact, error) {
	ok, err := s.companies.Exists(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("check company: %w", err)
	}
	if !ok {
		return nil, translateDBError(gorm.ErrRecordNotFound, fmt.Sprintf("company %d", id))
	}

	contacts, err := s.contacts.ListByCompany(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list company contacts: %w", err)
	}
	return contacts, nil
}

func (s *companyService) check(ctx context.Context, id uint, in *CompanyInput) error {
	in.Domain = blankToNil(in.Domain)
	in.Industry = blankToNil(in.Industry)
	in.Size = blankToNil(in.Size)
	in.HubspotID = blankToNil(in.HubspotID)
	in.KommoID = blankToNil(in.KommoID)

	if err := Validate(in); err != nil {
		return err
	}

	return checkUnique(ctx, s.companies.IsTaken, id, "company", map[repository.Column]*string{
		repository.ColumnHubspotID: in.HubspotID,
		repository.ColumnKommoID:   in.KommoID,
	})
}

func companyInputFrom(c *model.Company) CompanyInput {
	return CompanyInput{
		Name:      c.Name,
		Domain:    c.Domain,
		Industry:  c.Industry,
		Size:      c.Size,
		HubspotID: c.HubspotID,
		KommoID:   c.KommoID,
	}
}

func (in CompanyInput) applyTo(c *model.Company) {
	c.Name = in.Name
	c.Domain = in.Domain
	c.Industry = in.Industry
	c.Size = in.Size
	c.HubspotID = in.HubspotID
	c.KommoID = in.KommoID
}

func (p CompanyPatch) applyTo(in *CompanyInput) error {
	if err := setValue("name", &in.Name, p.Name); err != nil {
		return err
	}
	setOptional(&in.Domain, p.Domain)
	setOptional(&in.Industry, p.Industry)
	setOptional(&in.Size, p.Size)
	setOptional(&in.HubspotID, p.HubspotID)
	setOptional(&in.KommoID, p.KommoID)
	return nil
}
