package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"crmbridge/internal/repository"
	"crmbridge/internal/service"
)

// Result counts what a load did per entity kind.
type Result struct {
	Created map[string]int
	Skipped map[string]int
}

func newResult() Result {
	return Result{Created: map[string]int{}, Skipped: map[string]int{}}
}

// Loader imports fixtures through the entity services so every record passes
// the same validation as the API.
type Loader struct {
	companies   service.CompanyService
	contacts    service.ContactService
	deals       service.DealService
	companyRepo repository.CompanyRepository
	contactRepo repository.ContactRepository
	dealRepo    repository.DealRepository
	logger      *slog.Logger
}

// NewLoader creates a Loader.
func NewLoader(
	companies service.CompanyService,
	contacts service.ContactService,
	deals service.DealService,
	companyRepo repository.CompanyRepository,
	contactRepo repository.ContactRepository,
	dealRepo repository.DealRepository,
	logger *slog.Logger,
) *Loader {
	return &Loader{
		companies:   companies,
		contacts:    contacts,
		deals:       deals,
		companyRepo: companyRepo,
		contactRepo: contactRepo,
		dealRepo:    dealRepo,
		logger:      logger,
	}
}

// Load imports companies, then contacts, then deals. Records without an
// external id, or whose external id already exists, are skipped.
func (l *Loader) Load(ctx context.Context, f *Fixture) (Result, error) {
	res := newResult()

	for i, item := range f.Companies {
		exists, err := externalExists(ctx, l.companyRepo.FindByExternalID, item.HubspotID, item.KommoID)
		if err != nil {
			return res, fmt.Errorf("company %d: %w", i, err)
		}
		if exists {
			res.Skipped["companies"]++
			continue
		}
		if _, err := l.companies.Create(ctx, item.CompanyInput); err != nil {
			return res, fmt.Errorf("company %d: %w", i, err)
		}
		res.Created["companies"]++
	}

	for i, item := range f.Contacts {
		exists, err := externalExists(ctx, l.contactRepo.FindByExternalID, item.HubspotID, item.KommoID)
		if err != nil {
			return res, fmt.Errorf("contact %d: %w", i, err)
		}
		if exists {
			res.Skipped["contacts"]++
			continue
		}
		in := item.ContactInput
		if item.Company != nil {
			id, err := l.companyID(ctx, *item.Company)
			if err != nil {
				return res, fmt.Errorf("contact %d: %w", i, err)
			}
			in.CompanyID = &id
		}
		if _, err := l.contacts.Create(ctx, in); err != nil {
			return res, fmt.Errorf("contact %d: %w", i, err)
		}
		res.Created["contacts"]++
	}

	for i, item := range f.Deals {
		exists, err := externalExists(ctx, l.dealRepo.FindByExternalID, item.HubspotID, item.KommoID)
		if err != nil {
			return res, fmt.Errorf("deal %d: %w", i, err)
		}
		if exists {
			res.Skipped["deals"]++
			continue
		}
		in := item.DealInput
		if item.Company != nil {
			id, err := l.companyID(ctx, *item.Company)
			if err != nil {
				return res, fmt.Errorf("deal %d: %w", i, err)
			}
			in.CompanyID = &id
		}
		if item.Contact != nil {
			contact, err := l.contactRepo.FindByExternalID(ctx, item.Contact.System, item.Contact.ID)
			if err != nil {
				return res, fmt.Errorf("deal %d: contact %s/%s: %w", i, item.Contact.System, item.Contact.ID, err)
			}
			in.ContactID = &contact.ID
		}
		if _, err := l.deals.Create(ctx, in); err != nil {
			return res, fmt.Errorf("deal %d: %w", i, err)
		}
		res.Created["deals"]++
	}

	l.logger.Info("fixture loaded",
		slog.Any("created", res.Created),
		slog.Any("skipped", res.Skipped),
	)
	return res, nil
}

func (l *Loader) companyID(ctx context.Context, ref ExternalRef) (uint, error) {
	company, err := l.companyRepo.FindByExternalID(ctx, ref.System, ref.ID)
	if err != nil {
		return 0, fmt.Errorf("company %s/%s: %w", ref.System, ref.ID, err)
	}
	return company.ID, nil
}

// externalExists reports true when either id is already imported, and also
// when neither is set since such a record cannot be matched on a rerun.
// Blank ids count as unset.
func externalExists[T any](
	ctx context.Context,
	find func(context.Context, repository.ExternalSystem, string) (*T, error),
	hubspotID, kommoID *string,
) (bool, error) {
	ids := map[repository.ExternalSystem]string{}
	if id := trimmed(hubspotID); id != "" {
		ids[repository.SystemHubspot] = id
	}
	if id := trimmed(kommoID); id != "" {
		ids[repository.SystemKommo] = id
	}
	if len(ids) == 0 {
		return true, nil
	}
	for _, system := range []repository.ExternalSystem{repository.SystemHubspot, repository.SystemKommo} {
		id, ok := ids[system]
		if !ok {
			continue
		}
		_, err := find(ctx, system, id)
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return false, err
		}
	}
	return false, nil
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
