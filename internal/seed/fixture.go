// Package seed loads a fixture of companies, contacts and deals mirrored from
// HubSpot or Kommo into the database.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"crmbridge/internal/repository"
	"crmbridge/internal/service"
)

// ExternalRef points at a record by its identifier in an external CRM.
type ExternalRef struct {
	System repository.ExternalSystem `json:"system"`
	ID     string                    `json:"id"`
}

// CompanyFixture is a company to import.
type CompanyFixture struct {
	service.CompanyInput
}

// ContactFixture is a contact to import. Company, when set, replaces company_id.
type ContactFixture struct {
	service.ContactInput
	Company *ExternalRef `json:"company"`
}

// DealFixture is a deal to import. Contact and Company, when set, replace the
// numeric references.
type DealFixture struct {
	service.DealInput
	Contact *ExternalRef `json:"contact"`
	Company *ExternalRef `json:"company"`
}

// Fixture is the document read by the seed command.
type Fixture struct {
	Companies []CompanyFixture `json:"companies"`
	Contacts  []ContactFixture `json:"contacts"`
	Deals     []DealFixture    `json:"deals"`
}

// ReadFixture decodes a fixture document.
func ReadFixture(r io.Reader) (*Fixture, error) {
	var f Fixture
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &f, nil
}

// OpenFixture reads a fixture from a local path or an http(s) URL.
func OpenFixture(ctx context.Context, location string) (*Fixture, error) {
	if !strings.HasPrefix(location, "http://") && !strings.HasPrefix(location, "https://") {
		file, err := os.Open(location)
		if err != nil {
			return nil, fmt.Errorf("open fixture: %w", err)
		}
		defer file.Close()
		return ReadFixture(file)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("build fixture request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch fixture: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch fixture: status code %d", resp.StatusCode)
	}
	return ReadFixture(resp.Body)
}
