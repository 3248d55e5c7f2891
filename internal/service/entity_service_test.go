package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "crmbridge/internal/errors"
	"crmbridge/internal/model"
	"crmbridge/internal/repository"
	"crmbridge/internal/testutil"
)

type services struct {
	contacts  *contactService
	companies *companyService
	deals     *dealService
}

// newServices wires the entity services over a fresh database and a frozen clock.
func newServices(t *testing.T, now time.Time) *services {
	t.Helper()
	db := testutil.NewDB(t)
	contactRepo := repository.NewContactRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	dealRepo := repository.NewDealRepository(db)

	clock := func() time.Time { return now }
	s := &services{
		contacts:  NewContactService(contactRepo, companyRepo).(*contactService),
		companies: NewCompanyService(companyRepo, contactRepo).(*companyService),
		deals:     NewDealService(dealRepo, contactRepo, companyRepo).(*dealService),
	}
	s.contacts.now = clock
	s.companies.now = clock
	s.deals.now = clock
	return s
}

func ptr[T any](v T) *T { return &v }

func decodePatch(t *testing.T, body string, patch interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(body), patch))
}

var fixedNow = time.Date(2026, 5, 1, 9, 30, 0, 123456789, time.UTC)

func TestContactService_Create(t *testing.T) {
	s := newServices(t, fixedNow)
	ctx := context.Background()

	contact, err := s.contacts.Create(ctx, ContactInput{FirstName: "Bob", LastName: "Lee", Email: "b@x.com", Phone: ptr("")})
	require.NoError(t, err)
	assert.Equal(t, uint(1), contact.ID)
	assert.Nil(t, contact.Phone, "blank optional fields are stored as null")
	assert.True(t, contact.CreatedAt.Equal(fixedNow.Truncate(time.Millisecond)))
	assert.True(t, contact.UpdatedAt.Equal(contact.CreatedAt))

	tests := []struct {
		name        string
		input       ContactInput
		expectedErr error
		expectedMsg string
	}{
		{
			name:        "missing first name",
			input:       ContactInput{LastName: "Lee", Email: "x@x.com"},
			expectedErr: apperrors.ErrValidation,
			expectedMsg: "first_name is required",
		},
		{
			name:        "blank email",
			input:       ContactInput{FirstName: "A", LastName: "B", Email: "   "},
			expectedErr: apperrors.ErrValidation,
			expectedMsg: "email is required",
		},
		{
			name:        "too long phone",
			input:       ContactInput{FirstName: "A", LastName: "B", Email: "y@x.com", Phone: ptr("012345678901234567890")},
			expectedErr: apperrors.ErrValidation,
			expectedMsg: "phone must be at most 20 characters",
		},
		{
			name:        "duplicate email",
			input:       ContactInput{FirstName: "A", LastName: "B", Email: "b@x.com"},
			expectedErr: apperrors.ErrUniquenessViolation,
			expectedMsg: `contact with email "b@x.com" already exists`,
		},
		{
			name:        "unknown company",
			input:       ContactInput{FirstName: "A", LastName: "B", Email: "z@x.com", CompanyID: ptr(uint(42))},
			expectedErr: apperrors.ErrValidation,
			expectedMsg: "company_id 42 does not exist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.contacts.Create(ctx, tt.input)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, tt.expectedErr)
			assert.Contains(t, err.Error(), tt.expectedMsg)
		})
	}
}

func TestContactService_Update(t *testing.T) {
	s := newServices(t, fixedNow)
	ctx := context.Background()

	acme, err := s.companies.Create(ctx, CompanyInput{Name: "Acme"})
	require.NoError(t, err)
	contact, err := s.contacts.Create(ctx, ContactInput{
		FirstName: "Bob", LastName: "Lee", Email: "b@x.com", Phone: ptr("555"), CompanyID: &acme.ID, HubspotID: ptr("hs-1"),
	})
	require.NoError(t, err)
	_, err = s.contacts.Create(ctx, ContactInput{FirstName: "Eve", LastName: "Ng", Email: "e@x.com"})
	require.NoError(t, err)

	var patch ContactPatch
	decodePatch(t, `{"last_name":"Lane","phone":null,"company_id":null}`, &patch)
	updated, err := s.contacts.Update(ctx, contact.ID, patch)
	require.NoError(t, err)
	assert.Equal(t, "Bob", updated.FirstName)
	assert.Equal(t, "Lane", updated.LastName)
	assert.Nil(t, updated.Phone)
	assert.Nil(t, updated.CompanyID)
	assert.Equal(t, "hs-1", *updated.HubspotID)
	assert.True(t, updated.UpdatedAt.After(contact.CreatedAt), "frozen clock still moves updated_at forward")

	second, err := s.contacts.Update(ctx, contact.ID, ContactPatch{})
	require.NoError(t, err)
	assert.True(t, second.UpdatedAt.After(updated.UpdatedAt))

	stored, err := s.contacts.Get(ctx, contact.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lane", stored.LastName)
	assert.Nil(t, stored.CompanyID)

	tests := []struct {
		name        string
		id          uint
		body        string
		expectedErr error
	}{
		{name: "null required field", id: contact.ID, body: `{"first_name":null}`, expectedErr: apperrors.ErrValidation},
		{name: "empty required field", id: contact.ID, body: `{"email":""}`, expectedErr: apperrors.ErrValidation},
		{name: "email of another contact", id: contact.ID, body: `{"email":"e@x.com"}`, expectedErr: apperrors.ErrUniquenessViolation},
		{name: "unknown company", id: contact.ID, body: `{"company_id":77}`, expectedErr: apperrors.ErrValidation},
		{name: "unknown contact", id: 999, body: `{"first_name":"X"}`, expectedErr: apperrors.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p ContactPatch
			decodePatch(t, tt.body, &p)
			got, err := s.contacts.Update(ctx, tt.id, p)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}

	same, err := s.contacts.Update(ctx, contact.ID, ContactPatch{})
	require.NoError(t, err)
	assert.Equal(t, "b@x.com", same.Email, "keeping its own email is not a collision")
}

func TestContactService_GetAndDelete(t *testing.T) {
	s := newServices(t, fixedNow)
	ctx := context.Background()

	_, err := s.contacts.Get(ctx, 1)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	contact, err := s.contacts.Create(ctx, ContactInput{FirstName: "Bob", LastName: "Lee", Email: "b@x.com"})
	require.NoError(t, err)
	deal, err := s.deals.Create(ctx, DealInput{Name: "Big", ContactID: &contact.ID})
	require.NoError(t, err)

	require.NoError(t, s.contacts.Delete(ctx, contact.ID))
	_, err = s.contacts.Get(ctx, contact.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, s.contacts.Delete(ctx, contact.ID), apperrors.ErrNotFound)

	got, err := s.deals.Get(ctx, deal.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ContactID)

	list, err := s.contacts.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCompanyService(t *testing.T) {
	s := newServices(t, fixedNow)
	ctx := context.Background()

	_, err := s.companies.Create(ctx, CompanyInput{})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	acme, err := s.companies.Create(ctx, CompanyInput{Name: "Acme", Domain: ptr("acme.io"), KommoID: ptr("k-1")})
	require.NoError(t, err)
	_, err = s.companies.Create(ctx, CompanyInput{Name: "Acme Copy", KommoID: ptr("k-1")})
	assert.ErrorIs(t, err, apperrors.ErrUniquenessViolation)
	_, err = s.companies.Create(ctx, CompanyInput{Name: "Acme HubSpot twin", HubspotID: ptr("k-1")})
	assert.NoError(t, err, "external ids are unique per system")

	bob, err := s.contacts.Create(ctx, ContactInput{FirstName: "Bob", LastName: "Lee", Email: "b@x.com", CompanyID: &acme.ID})
	require.NoError(t, err)
	deal, err := s.deals.Create(ctx, DealInput{Name: "Big", CompanyID: &acme.ID, ContactID: &bob.ID})
	require.NoError(t, err)

	contacts, err := s.companies.ListContacts(ctx, acme.ID)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, bob.ID, contacts[0].ID)
	_, err = s.companies.ListContacts(ctx, 999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	var patch CompanyPatch
	decodePatch(t, `{"domain":null,"industry":"Retail"}`, &patch)
	updated, err := s.companies.Update(ctx, acme.ID, patch)
	require.NoError(t, err)
	assert.Nil(t, updated.Domain)
	assert.Equal(t, "Retail", *updated.Industry)
	assert.Equal(t, "Acme", updated.Name)

	decodePatch(t, `{"name":null}`, &patch)
	_, err = s.companies.Update(ctx, acme.ID, patch)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	require.NoError(t, s.companies.Delete(ctx, acme.ID))
	_, err = s.companies.Get(ctx, acme.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	gotBob, err := s.contacts.Get(ctx, bob.ID)
	require.NoError(t, err)
	assert.Nil(t, gotBob.CompanyID)
	gotDeal, err := s.deals.Get(ctx, deal.ID)
	require.NoError(t, err)
	assert.Nil(t, gotDeal.CompanyID)
	assert.NotNil(t, gotDeal.ContactID)

	assert.ErrorIs(t, s.companies.Delete(ctx, acme.ID), apperrors.ErrNotFound)
}

func TestDealService(t *testing.T) {
	s := newServices(t, fixedNow)
	ctx := context.Background()

	deal, err := s.deals.Create(ctx, DealInput{Name: "Starter"})
	require.NoError(t, err)
	assert.Equal(t, model.DefaultDealStage, deal.Stage)
	assert.True(t, deal.Amount.IsZero())
	assert.Equal(t, 0, deal.Probability)

	var in DealInput
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Renewal","amount":1500.505,"stage":"proposal","probability":140,"close_date":"2026-07-01","hubspot_id":"hs-7"}`), &in))
	renewal, err := s.deals.Create(ctx, in)
	require.NoError(t, err)
	assert.True(t, renewal.Amount.Equal(decimal.RequireFromString("1500.51")))
	assert.Equal(t, 140, renewal.Probability, "probability is not clamped")
	assert.Equal(t, "2026-07-01", renewal.CloseDate.String())

	_, err = s.deals.Create(ctx, DealInput{Name: "Dup", HubspotID: ptr("hs-7")})
	assert.ErrorIs(t, err, apperrors.ErrUniquenessViolation)
	_, err = s.deals.Create(ctx, DealInput{Name: "Orphan", ContactID: ptr(uint(9))})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = s.deals.Create(ctx, DealInput{Name: " "})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	var patch DealPatch
	decodePatch(t, `{"stage":"won","close_date":null,"amount":"99.90"}`, &patch)
	updated, err := s.deals.Update(ctx, renewal.ID, patch)
	require.NoError(t, err)
	assert.Equal(t, "won", updated.Stage)
	assert.Nil(t, updated.CloseDate)
	assert.True(t, updated.Amount.Equal(decimal.RequireFromString("99.9")))
	assert.Equal(t, "Renewal", updated.Name)

	for _, body := range []string{`{"amount":null}`, `{"probability":null}`, `{"stage":""}`} {
		var p DealPatch
		decodePatch(t, body, &p)
		_, err := s.deals.Update(ctx, renewal.ID, p)
		assert.ErrorIs(t, err, apperrors.ErrValidation, body)
	}

	require.NoError(t, s.deals.Delete(ctx, deal.ID))
	assert.ErrorIs(t, s.deals.Delete(ctx, deal.ID), apperrors.ErrNotFound)

	list, err := s.deals.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, renewal.ID, list[0].ID)
}

func TestCompanyService_DeleteAfterRapidUpdates(t *testing.T) {
	s := newServices(t, fixedNow)
	ctx := context.Background()

	acme, err := s.companies.Create(ctx, CompanyInput{Name: "Acme"})
	require.NoError(t, err)
	contact, err := s.contacts.Create(ctx, ContactInput{FirstName: "Bob", LastName: "Lee", Email: "b@x.com", CompanyID: &acme.ID})
	require.NoError(t, err)

	// A frozen clock pushes each update one millisecond ahead of now.
	for i := 0; i < 2; i++ {
		contact, err = s.contacts.Update(ctx, contact.ID, ContactPatch{})
		require.NoError(t, err)
	}
	prev := contact.UpdatedAt
	require.True(t, prev.After(fixedNow))

	require.NoError(t, s.companies.Delete(ctx, acme.ID))

	got, err := s.contacts.Get(ctx, contact.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CompanyID)
	assert.True(t, got.UpdatedAt.After(prev), "updated_at %s must pass %s", got.UpdatedAt, prev)
}

func TestTouch(t *testing.T) {
	prev := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, prev.Add(time.Second), touch(func() time.Time { return prev.Add(time.Second) }, prev))
	assert.Equal(t, prev.Add(time.Millisecond), touch(func() time.Time { return prev }, prev))
	assert.Equal(t, prev.Add(time.Millisecond), touch(func() time.Time { return prev.Add(-time.Hour) }, prev))
}
