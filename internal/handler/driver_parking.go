package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/openpark/parking-reservation/internal/repository"
)

// DriverHandler serves the booking, release and dashboard endpoints
// for authenticated drivers.  JWT validation and role enforcement
// have already happened in middleware; methods return 401 only when
// the user ID cannot be extracted from the context.
type DriverHandler struct {
	Parking ParkingAPI
}

// NewDriverHandler constructs a DriverHandler.  The service must be
// non-nil.
func NewDriverHandler(parking ParkingAPI) *DriverHandler {
	if parking == nil {
		panic("nil service passed to NewDriverHandler")
	}
	return &DriverHandler{Parking: parking}
}

// Book handles POST /v1/lots/:id/book.  It claims one available spot
// in the lot for the caller.  A driver who is already parked gets
// 409 with user_already_parked; a full lot gets 409 with
// no_available_spot.
func (h *DriverHandler) Book(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	lotID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid lot id"})
	}

	res, err := h.Parking.Book(c.Request().Context(), userID, lotID)
	switch {
	case errors.Is(err, repository.ErrLotNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "lot not found"})
	case errors.Is(err, repository.ErrUserAlreadyParked):
		return c.JSON(http.StatusConflict, echo.Map{"error": "user_already_parked"})
	case errors.Is(err, repository.ErrNoAvailableSpot):
		return c.JSON(http.StatusConflict, echo.Map{"error": "no_available_spot"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"reservation_id": res.ID,
		"spot_id":        res.SpotID,
		"entry_time":     res.EntryTime.Format(time.RFC3339),
		"status":         res.Status,
	})
}

// Release handles POST /v1/reservations/:id/release.  It finalises
// the caller's active reservation and returns the computed cost.
// Unknown IDs, reservations of other users and already-released
// reservations all yield the same 404.
func (h *DriverHandler) Release(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	reservationID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	cost, err := h.Parking.Release(c.Request().Context(), reservationID, userID)
	switch {
	case errors.Is(err, repository.ErrReservationNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation_not_found"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "release failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"reservation_id": reservationID,
		"total_cost":     cost,
	})
}

// Dashboard handles GET /v1/dashboard.  It returns the caller's
// active reservations with running cost plus recent history with
// aggregate totals.
func (h *DriverHandler) Dashboard(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	d, err := h.Parking.Dashboard(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load dashboard failed"})
	}
	return c.JSON(http.StatusOK, d)
}
