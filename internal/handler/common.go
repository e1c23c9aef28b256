package handler // handler defines http handlers

import (
	"context"
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/openpark/parking-reservation/internal/model"
	"github.com/openpark/parking-reservation/internal/repository"
	"github.com/openpark/parking-reservation/internal/service"
)

// ParkingAPI is the slice of the parking service used by driver
// handlers.  Declared here so handlers can be tested against a mock
// implementation.
type ParkingAPI interface {
	Book(ctx context.Context, userID, lotID uint64) (*model.Reservation, error)
	Release(ctx context.Context, reservationID, userID uint64) (float64, error)
	Dashboard(ctx context.Context, userID uint64) (*service.Dashboard, error)
}

// LotAPI is the slice of the lot service used by admin and public
// handlers.
type LotAPI interface {
	Create(ctx context.Context, in service.LotInput) (*model.ParkingLot, error)
	Resize(ctx context.Context, lotID uint64, in service.LotInput) (*model.ParkingLot, error)
	Delete(ctx context.Context, lotID uint64) error
	Get(ctx context.Context, lotID uint64) (*model.ParkingLot, error)
	Search(ctx context.Context, query string) ([]repository.LotWithAvailability, error)
	Spots(ctx context.Context, lotID uint64) ([]service.SpotView, error)
	Stats(ctx context.Context) (*service.Stats, error)
}

// getUserID extracts the user_id from echo.Context and converts it to uint64
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses the named path parameter as a positive uint64.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
