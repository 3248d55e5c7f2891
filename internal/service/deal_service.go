package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/oapi-codegen/nullable"
	"github.com/shopspring/decimal"

	"crmbridge/internal/model"
	"crmbridge/internal/repository"
)

// DealInput carries the writable fields of a deal. A blank stage becomes
// model.DefaultDealStage on create.
type DealInput struct {
	Name        string          `json:"name" validate:"notblank,max=100"`
	Amount      decimal.Decimal `json:"amount" swaggertype:"number"`
	Stage       string          `json:"stage" validate:"notblank,max=50"`
	Probability int             `json:"probability"`
	ContactID   *uint           `json:"contact_id"`
	CompanyID   *uint           `json:"company_id"`
	HubspotID   *string         `json:"hubspot_id" validate:"omitempty,max=50"`
	KommoID     *string         `json:"kommo_id" validate:"omitempty,max=50"`
	CloseDate   *model.Date     `json:"close_date" swaggertype:"string" format:"date"`
}

// DealPatch is a partial deal update.
type DealPatch struct {
	Name        nullable.Nullable[string]          `json:"name" swaggertype:"string"`
	Amount      nullable.Nullable[decimal.Decimal] `json:"amount" swaggertype:"number"`
	Stage       nullable.Nullable[string]          `json:"stage" swaggertype:"string"`
	Probability nullable.Nullable[int]             `json:"probability" swaggertype:"integer"`
	ContactID   nullable.Nullable[uint]            `json:"contact_id" swaggertype:"integer"`
	CompanyID   nullable.Nullable[uint]            `json:"company_id" swaggertype:"integer"`
	HubspotID   nullable.Nullable[string]          `json:"hubspot_id" swaggertype:"string"`
	KommoID     nullable.Nullable[string]          `json:"kommo_id" swaggertype:"string"`
	CloseDate   nullable.Nullable[model.Date]      `json:"close_date" swaggertype:"string" format:"date"`
}

// DealService exposes deal operations.
type DealService interface {
	List(ctx context.Context) ([]model.Deal, error)
	Get(ctx context.Context, id uint) (*model.Deal, error)
	Create(ctx context.Context, in DealInput) (*model.Deal, error)
	Update(ctx context.Context, id uint, patch DealPatch) (*model.Deal, error)
	Delete(ctx context.Context, id uint) error
}

type dealService struct {
	deals     repository.DealRepository
	contacts  repository.ContactRepository
	companies repository.CompanyRepository
	now       func() time.Time
}

// NewDealService creates a new deal service.
func NewDealService(deals repository.DealRepository, contacts repository.ContactRepository, companies repository.CompanyRepository) DealService {
	return &dealService{deals: deals, contacts: contacts, companies: companies, now: time.Now}
}

func (s *dealService) List(ctx context.Context) ([]model.Deal, error) {
	deals, err := s.deals.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list deals: %w", err)
	}
	return deals, nil
}

func (s *dealService) Get(ctx context.Context, id uint) (*model.Deal, error) {
	deal, err := s.deals.FindByID(ctx, id)
	if err != nil {
		return nil, translateDBError(err, fmt.Sprintf("deal %d", id))
	}
	return deal, nil
}

func (s *dealService) Create(ctx context.Context, in DealInput) (*model.Deal, error) {
	if strings.TrimSpace(in.Stage) == "" {
		in.Stage = model.DefaultDealStage
	}
	if err := s.check(ctx, 0, &in); err != nil {
		return nil, err
	}

	now := stamp(s.now)
	deal := &model.Deal{CreatedAt: now, UpdatedAt: now}
	in.applyTo(deal)

	if err := s.deals.Create(ctx, deal); err != nil {
		return nil, translateDBError(err, "deal")
	}
	return deal, nil
}

func (s *dealService) Update(ctx context.Context, id uint, patch DealPatch) (*model.Deal, error) {
	deal, err := s.deals.FindByID(ctx, id)
	if err != nil {
		return nil, translateDBError(err, fmt.Sprintf("deal %d", id))
	}

	in := dealInputFrom(deal)
	if err := patch.applyTo(&in); err != nil {
		return nil, err
	}
	if err := s.check(ctx, id, &in); err != nil {
		return nil, err
	}

	in.applyTo(deal)
	deal.UpdatedAt = touch(s.now, deal.UpdatedAt)
	if err := s.deals.Save(ctx, deal); err != nil {
		return nil, translateDBError(err, fmt.Sprintf("deal %d", id))
	}
	return deal, nil
}

func (s *dealService) Delete(ctx context.Context, id uint) error {
	if err := s.deals.Delete(ctx, id); err != nil {
		return translateDBError(err, fmt.Sprintf("deal %d", id))
	}
	return nil
}

func (s *dealService) check(ctx context.Context, id uint, in *DealInput) error {
	in.HubspotID = blankToNil(in.HubspotID)
	in.KommoID = blankToNil(in.KommoID)
	in.Amount = in.Amount.Round(2)

	if err := Validate(in); err != nil {
		return err
	}

	if in.ContactID != nil {
		ok, err := s.contacts.Exists(ctx, *in.ContactID)
		if err != nil {
			return fmt.Errorf("check contact: %w", err)
		}
		if !ok {
			return validationError("contact_id %d does not exist", *in.ContactID)
		}
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

	return checkUnique(ctx, s.deals.IsTaken, id, "deal", map[repository.Column]*string{
		repository.ColumnHubspotID: in.HubspotID,
		repository.ColumnKommoID:   in.KommoID,
	})
}

func dealInputFrom(d *model.Deal) DealInput {
	return DealInput{
		Name:        d.Name,
		Amount:      d.Amount,
		Stage:       d.Stage,
		Probability: d.Probability,
		ContactID:   d.ContactID,
		CompanyID:   d.CompanyID,
		HubspotID:   d.HubspotID,
		KommoID:     d.KommoID,
		CloseDate:   d.CloseDate,
	}
}

func (in DealInput) applyTo(d *model.Deal) {
	d.Name = in.Name
	d.Amount = in.Amount
	d.Stage = in.Stage
	d.Probability = in.Probability
	d.ContactID = in.ContactID
	d.CompanyID = in.CompanyID
	d.HubspotID = in.HubspotID
	d.KommoID = in.KommoID
	d.CloseDate = in.CloseDate
}

func (p DealPatch) applyTo(in *DealInput) error {
	if err := setValue("name", &in.Name, p.Name); err != nil {
		return err
	}
	if err := setValue("amount", &in.Amount, p.Amount); err != nil {
		return err
	}
	if err := setValue("stage", &in.Stage, p.Stage); err != nil {
		return err
	}
	if err := setValue("probability", &in.Probability, p.Probability); err != nil {
		return err
	}
	setOptional(&in.ContactID, p.ContactID)
	setOptional(&in.CompanyID, p.CompanyID)
	setOptional(&in.HubspotID, p.HubspotID)
	setOptional(&in.KommoID, p.KommoID)
	setOptional(&in.CloseDate, p.CloseDate)
	return nil
}
