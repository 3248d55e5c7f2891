package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"crmbridge/internal/service"
)

// CompanyHandler handles company endpoints.
type CompanyHandler struct {
	companyService service.CompanyService
}

// NewCompanyHandler creates a new company handler.
func NewCompanyHandler(companyService service.CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

// List godoc
// @Summary List companies
// @Tags companies
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Company
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /companies [get]
func (h *CompanyHandler) List(c echo.Context) error {
	companies, err := h.companyService.List(c.Request().Context())
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, companies)
}

// Create godoc
// @Summary Create a company
// @Tags companies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CompanyInput true "Company"
// @Success 201 {object} model.Company
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /companies [post]
func (h *CompanyHandler) Create(c echo.Context) error {
	var req service.CompanyInput
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	company, err := h.companyService.Create(c.Request().Context(), req)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusCreated, company)
}

// Get godoc
// @Summary Get a company
// @Tags companies
// @Produce json
// @Security BearerAuth
// @Param id path int true "Company ID"
// @Success 200 {object} model.Company
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /companies/{id} [get]
func (h *CompanyHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	company, err := h.companyService.Get(c.Request().Context(), id)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, company)
}

// Update godoc
// @Summary Update a company
// @Description Only supplied fields change; null clears an optional field.
// @Tags companies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Company ID"
// @Param request body service.CompanyPatch true "Fields to change"
// @Success 200 {object} model.Company
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /companies/{id} [put]
func (h *CompanyHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req service.CompanyPatch
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	company, err := h.companyService.Update(c.Request().Context(), id, req)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, company)
}

// Delete godoc
// @Summary Delete a company
// @Description Contacts and deals referencing the company are detached.
// @Tags companies
// @Produce json
// @Security BearerAuth
// @Param id path int true "Company ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /companies/{id} [delete]
func (h *CompanyHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.companyService.Delete(c.Request().Context(), id); err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Company deleted successfully"})
}

// ListContacts godoc
// @Summary List a company's contacts
// @Tags companies
// @Produce json
// @Security BearerAuth
// @Param id path int true "Company ID"
// @Success 200 {array} model.Contact
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /companies/{id}/contacts [get]
func (h *CompanyHandler) ListContacts(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	contacts, err := h.companyService.ListContacts(c.Request().Context(), id)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, contacts)
}
