package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/openpark/parking-reservation/internal/repository"
	"github.com/openpark/parking-reservation/internal/service"
)

// AdminHandler serves lot management and statistics endpoints.  The
// ADMIN role has been enforced by middleware before any method runs.
type AdminHandler struct {
	Lots LotAPI
}

// NewAdminHandler constructs an AdminHandler.  The service must be
// non-nil.
func NewAdminHandler(lots LotAPI) *AdminHandler {
	if lots == nil {
		panic("nil service passed to NewAdminHandler")
	}
	return &AdminHandler{Lots: lots}
}

// lotReq is the JSON payload for creating or updating a lot.
type lotReq struct {
	Name       string  `json:"name"`
	HourlyRate float64 `json:"hourly_rate"`
	Address    string  `json:"address"`
	PinCode    string  `json:"pin_code"`
	TotalSpots uint32  `json:"total_spots"`
}

func (r lotReq) input() service.LotInput {
	return service.LotInput{
		Name:       r.Name,
		HourlyRate: r.HourlyRate,
		Address:    r.Address,
		PinCode:    r.PinCode,
		TotalSpots: r.TotalSpots,
	}
}

// lotResp is the JSON representation of a lot returned to admins.
type lotResp struct {
	ID         uint64  `json:"id"`
	Name       string  `json:"name"`
	HourlyRate float64 `json:"hourly_rate"`
	Address    string  `json:"address"`
	PinCode    string  `json:"pin_code"`
	TotalSpots uint32  `json:"total_spots"`
}

// CreateLot handles POST /v1/admin/lots.  It provisions a lot with
// spots numbered 1..total_spots, all available.
func (h *AdminHandler) CreateLot(c echo.Context) error {
	var body lotReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	lot, err := h.Lots.Create(c.Request().Context(), body.input())
	switch {
	case errors.Is(err, service.ErrInvalidLot):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, non-negative hourly_rate and total_spots >= 1 are required"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create lot failed"})
	}
	return c.JSON(http.StatusCreated, lotResp{
		ID: lot.ID, Name: lot.Name, HourlyRate: lot.HourlyRate,
		Address: lot.Address, PinCode: lot.PinCode, TotalSpots: lot.TotalSpots,
	})
}

// UpdateLot handles PUT /v1/admin/lots/:id.  Field changes and spot
// pool resizing are applied together, and rejected wholesale with 409
// while any spot in the lot is occupied.
func (h *AdminHandler) UpdateLot(c echo.Context) error {
	lotID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid lot id"})
	}
	var body lotReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	lot, err := h.Lots.Resize(c.Request().Context(), lotID, body.input())
	switch {
	case errors.Is(err, service.ErrInvalidLot):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, non-negative hourly_rate and total_spots >= 1 are required"})
	case errors.Is(err, repository.ErrLotNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "lot not found"})
	case errors.Is(err, repository.ErrLotOccupied):
		return c.JSON(http.StatusConflict, echo.Map{"error": "lot_occupied"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update lot failed"})
	}
	return c.JSON(http.StatusOK, lotResp{
		ID: lot.ID, Name: lot.Name, HourlyRate: lot.HourlyRate,
		Address: lot.Address, PinCode: lot.PinCode, TotalSpots: lot.TotalSpots,
	})
}

// DeleteLot handles DELETE /v1/admin/lots/:id.  The lot and its spots
// are removed under the same occupancy guard as UpdateLot; completed
// reservations survive for audit.
func (h *AdminHandler) DeleteLot(c echo.Context) error {
	lotID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid lot id"})
	}
	err := h.Lots.Delete(c.Request().Context(), lotID)
	switch {
	case errors.Is(err, repository.ErrLotNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "lot not found"})
	case errors.Is(err, repository.ErrLotOccupied):
		return c.JSON(http.StatusConflict, echo.Map{"error": "lot_occupied"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete lot failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// LotSpots handles GET /v1/admin/lots/:id/spots.  It lists every spot
// of the lot; occupied spots include the active reservation with its
// holder and running duration.
func (h *AdminHandler) LotSpots(c echo.Context) error {
	lotID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid lot id"})
	}
	spots, err := h.Lots.Spots(c.Request().Context(), lotID)
	switch {
	case errors.Is(err, repository.ErrLotNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "lot not found"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load spots failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"lot_id": lotID, "spots": spots})
}

// Stats handles GET /v1/admin/stats.  It reports system-wide spot
// counters and the per-lot breakdown.
func (h *AdminHandler) Stats(c echo.Context) error {
	stats, err := h.Lots.Stats(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load stats failed"})
	}
	return c.JSON(http.StatusOK, stats)
}
