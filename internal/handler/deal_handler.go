package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"crmbridge/internal/service"
)

// DealHandler handles deal endpoints.
type DealHandler struct {
	dealService service.DealService
}

// NewDealHandler creates a new deal handler.
func NewDealHandler(dealService service.DealService) *DealHandler {
	return &DealHandler{dealService: dealService}
}

// List godoc
// @Summary List deals
// @Tags deals
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Deal
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /deals [get]
func (h *DealHandler) List(c echo.Context) error {
	deals, err := h.dealService.List(c.Request().Context())
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, deals)
}

// Create godoc
// @Summary Create a deal
// @Tags deals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.DealInput true "Deal"
// @Success 201 {object} model.Deal
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /deals [post]
func (h *DealHandler) Create(c echo.Context) error {
	var req service.DealInput
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	deal, err := h.dealService.Create(c.Request().Context(), req)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusCreated, deal)
}

// Get godoc
// @Summary Get a deal
// @Tags deals
// @Produce json
// @Security BearerAuth
// @Param id path int true "Deal ID"
// @Success 200 {object} model.Deal
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /deals/{id} [get]
func (h *DealHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	deal, err := h.dealService.Get(c.Request().Context(), id)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, deal)
}

// Update godoc
// @Summary Update a deal
// @Description Only supplied fields change; null clears an optional field.
// @Tags deals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Deal ID"
// @Param request body service.DealPatch true "Fields to change"
// @Success 200 {object} model.Deal
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /deals/{id} [put]
func (h *DealHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req service.DealPatch
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	deal, err := h.dealService.Update(c.Request().Context(), id, req)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, deal)
}

// Delete godoc
// @Summary Delete a deal
// @Tags deals
// @Produce json
// @Security BearerAuth
// @Param id path int true "Deal ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /deals/{id} [delete]
func (h *DealHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.dealService.Delete(c.Request().Context(), id); err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Deal deleted successfully"})
}
