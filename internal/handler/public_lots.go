package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/openpark/parking-reservation/internal/repository"
)

// PublicHandler exposes unauthenticated browse endpoints so drivers
// can find a lot before logging in.  Responses contain no occupant
// information.
type PublicHandler struct {
	Lots LotAPI
}

// NewPublicHandler constructs a PublicHandler.  The service must be
// non-nil.
func NewPublicHandler(lots LotAPI) *PublicHandler {
	if lots == nil {
		panic("nil service passed to NewPublicHandler")
	}
	return &PublicHandler{Lots: lots}
}

// publicLot is the sanitized lot representation for guests.
type publicLot struct {
	ID             uint64  `json:"id"`
	Name           string  `json:"name"`
	HourlyRate     float64 `json:"hourly_rate"`
	Address        string  `json:"address"`
	PinCode        string  `json:"pin_code"`
	TotalSpots     uint32  `json:"total_spots"`
	AvailableSpots uint32  `json:"available_spots"`
}

// SearchLots handles GET /v1/lots.  The optional ?q= parameter
// matches name, address or pin code case-insensitively; without it
// every lot is listed.  Each lot carries its current available-spot
// count.
func (h *PublicHandler) SearchLots(c echo.Context) error {
	lots, err := h.Lots.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}
	out := make([]publicLot, 0, len(lots))
	for _, l := range lots {
		out = append(out, publicLot{
			ID:             l.ID,
			Name:           l.Name,
			HourlyRate:     l.HourlyRate,
			Address:        l.Address,
			PinCode:        l.PinCode,
			TotalSpots:     l.TotalSpots,
			AvailableSpots: l.AvailableSpots,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"lots": out})
}

// GetLot handles GET /v1/lots/:id and returns a single lot.
func (h *PublicHandler) GetLot(c echo.Context) error {
	lotID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid lot id"})
	}
	lot, err := h.Lots.Get(c.Request().Context(), lotID)
	switch {
	case errors.Is(err, repository.ErrLotNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "lot not found"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load lot failed"})
	}
	return c.JSON(http.StatusOK, publicLot{
		ID:         lot.ID,
		Name:       lot.Name,
		HourlyRate: lot.HourlyRate,
		Address:    lot.Address,
		PinCode:    lot.PinCode,
		TotalSpots: lot.TotalSpots,
	})
}
