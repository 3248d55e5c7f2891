package seed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crmbridge/internal/repository"
	"crmbridge/internal/service"
	"crmbridge/internal/testutil"
)

const fixtureJSON = `{
  "companies": [
    {"name": "Acme", "domain": "acme.io", "hubspot_id": "hs-c1"},
    {"name": "Globex", "kommo_id": "k-c2"},
    {"name": "No External Id"},
    {"name": "Blank External Ids", "hubspot_id": "", "kommo_id": "  "}
  ],
  "contacts": [
    {"first_name": "Bob", "last_name": "Lee", "email": "b@x.com", "hubspot_id": "hs-p1",
     "company": {"system": "hubspot", "id": "hs-c1"}}
  ],
  "deals": [
    {"name": "Renewal", "amount": 1200.5, "stage": "proposal", "kommo_id": "k-d1",
     "contact": {"system": "hubspot", "id": "hs-p1"},
     "company": {"system": "kommo", "id": "k-c2"},
     "close_date": "2026-12-31"}
  ]
}`

func newLoader(t *testing.T) (*Loader, repository.DealRepository) {
	t.Helper()
	db := testutil.NewDB(t)
	companyRepo := repository.NewCompanyRepository(db)
	contactRepo := repository.NewContactRepository(db)
	dealRepo := repository.NewDealRepository(db)

	return NewLoader(
		service.NewCompanyService(companyRepo, contactRepo),
		service.NewContactService(contactRepo, companyRepo),
		service.NewDealService(dealRepo, contactRepo, companyRepo),
		companyRepo, contactRepo, dealRepo,
		testutil.Logger(),
	), dealRepo
}

func TestLoader_LoadIsIdempotent(t *testing.T) {
	loader, deals := newLoader(t)
	ctx := context.Background()

	fixture, err := ReadFixture(strings.NewReader(fixtureJSON))
	require.NoError(t, err)

	res, err := loader.Load(ctx, fixture)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created["companies"])
	assert.Equal(t, 2, res.Skipped["companies"], "records without an external id are skipped")
	assert.Equal(t, 1, res.Created["contacts"])
	assert.Equal(t, 1, res.Created["deals"])

	deal, err := deals.FindByExternalID(ctx, repository.SystemKommo, "k-d1")
	require.NoError(t, err)
	require.NotNil(t, deal.ContactID)
	require.NotNil(t, deal.CompanyID)
	assert.Equal(t, "proposal", deal.Stage)
	assert.Equal(t, "2026-12-31", deal.CloseDate.String())

	res, err = loader.Load(ctx, fixture)
	require.NoError(t, err)
	assert.Zero(t, res.Created["companies"])
	assert.Zero(t, res.Created["contacts"])
	assert.Zero(t, res.Created["deals"])
	assert.Equal(t, 4, res.Skipped["companies"])
	assert.Equal(t, 1, res.Skipped["contacts"])
	assert.Equal(t, 1, res.Skipped["deals"])
}

func TestLoader_UnknownReference(t *testing.T) {
	loader, _ := newLoader(t)

	fixture, err := ReadFixture(strings.NewReader(`{"contacts":[{"first_name":"A","last_name":"B","email":"a@x.com","kommo_id":"k-1","company":{"system":"hubspot","id":"missing"}}]}`))
	require.NoError(t, err)

	_, err = loader.Load(context.Background(), fixture)
	assert.ErrorContains(t, err, "company hubspot/missing")
}

func TestReadFixture_RejectsUnknownFields(t *testing.T) {
	_, err := ReadFixture(strings.NewReader(`{"accounts":[]}`))
	assert.Error(t, err)
}

func TestOpenFixture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.json")
	require.NoError(t, os.WriteFile(path, []byte(fixtureJSON), 0o600))

	fromFile, err := OpenFixture(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, fromFile.Companies, 4)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fixture.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(fixtureJSON))
	}))
	defer srv.Close()

	fromURL, err := OpenFixture(context.Background(), srv.URL+"/fixture.json")
	require.NoError(t, err)
	assert.Len(t, fromURL.Deals, 1)

	_, err = OpenFixture(context.Background(), srv.URL+"/missing.json")
	assert.ErrorContains(t, err, "status code 404")
}
