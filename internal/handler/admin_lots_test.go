package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/openpark/parking-reservation/internal/model"
	"github.com/openpark/parking-reservation/internal/repository"
	"github.com/openpark/parking-reservation/internal/service"
)

type mockLotAPI struct {
	mock.Mock
}

func (m *mockLotAPI) Create(ctx context.Context, in service.LotInput) (*model.ParkingLot, error) {
	args := m.Called(ctx, in)
	if l := args.Get(0); l != nil {
		return l.(*model.ParkingLot), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockLotAPI) Resize(ctx context.Context, lotID uint64, in service.LotInput) (*model.ParkingLot, error) {
	args := m.Called(ctx, lotID, in)
	if l := args.Get(0); l != nil {
		return l.(*model.ParkingLot), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockLotAPI) Delete(ctx context.Context, lotID uint64) error {
	return m.Called(ctx, lotID).Error(0)
}

func (m *mockLotAPI) Get(ctx context.Context, lotID uint64) (*model.ParkingLot, error) {
	args := m.Called(ctx, lotID)
	if l := args.Get(0); l != nil {
		return l.(*model.ParkingLot), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockLotAPI) Search(ctx context.Context, query string) ([]repository.LotWithAvailability, error) {
	args := m.Called(ctx, query)
	if l := args.Get(0); l != nil {
		return l.([]repository.LotWithAvailability), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockLotAPI) Spots(ctx context.Context, lotID uint64) ([]service.SpotView, error) {
	args := m.Called(ctx, lotID)
	if s := args.Get(0); s != nil {
		return s.([]service.SpotView), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockLotAPI) Stats(ctx context.Context) (*service.Stats, error) {
	args := m.Called(ctx)
	if s := args.Get(0); s != nil {
		return s.(*service.Stats), args.Error(1)
	}
	return nil, args.Error(1)
}

// newJSONContext builds an echo context carrying a JSON body and one
// optional path parameter.
func newJSONContext(method, target, body, paramName, paramValue string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if paramName != "" {
		c.SetParamNames(paramName)
		c.SetParamValues(paramValue)
	}
	return c, rec
}

const lotBody = `{"name":"Central","hourly_rate":10,"address":"1 Main St","pin_code":"560001","total_spots":5}`

var lotInput = service.LotInput{
	Name:       "Central",
	HourlyRate: 10,
	Address:    "1 Main St",
	PinCode:    "560001",
	TotalSpots: 5,
}

func TestAdminCreateLot(t *testing.T) {
	t.Run("provisions the lot", func(t *testing.T) {
		api := new(mockLotAPI)
		api.On("Create", mock.Anything, lotInput).Return(&model.ParkingLot{
			ID: 3, Name: "Central", HourlyRate: 10,
			Address: "1 Main St", PinCode: "560001", TotalSpots: 5,
		}, nil)

		c, rec := newJSONContext(http.MethodPost, "/v1/admin/lots", lotBody, "", "")
		require.NoError(t, NewAdminHandler(api).CreateLot(c))

		assert.Equal(t, http.StatusCreated, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, float64(3), body["id"])
		assert.Equal(t, float64(5), body["total_spots"])
		api.AssertExpectations(t)
	})

	t.Run("invalid input yields 400", func(t *testing.T) {
		api := new(mockLotAPI)
		api.On("Create", mock.Anything, mock.Anything).Return(nil, service.ErrInvalidLot)

		c, rec := newJSONContext(http.MethodPost, "/v1/admin/lots", `{"name":""}`, "", "")
		require.NoError(t, NewAdminHandler(api).CreateLot(c))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAdminUpdateLot(t *testing.T) {
	t.Run("resizes the lot", func(t *testing.T) {
		api := new(mockLotAPI)
		api.On("Resize", mock.Anything, uint64(3), lotInput).Return(&model.ParkingLot{
			ID: 3, Name: "Central", HourlyRate: 10,
			Address: "1 Main St", PinCode: "560001", TotalSpots: 5,
		}, nil)

		c, rec := newJSONContext(http.MethodPut, "/v1/admin/lots/3", lotBody, "id", "3")
		require.NoError(t, NewAdminHandler(api).UpdateLot(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(5), decodeBody(t, rec)["total_spots"])
		api.AssertExpectations(t)
	})

	t.Run("occupied lot yields 409", func(t *testing.T) {
		api := new(mockLotAPI)
		api.On("Resize", mock.Anything, uint64(3), lotInput).Return(nil, repository.ErrLotOccupied)

		c, rec := newJSONContext(http.MethodPut, "/v1/admin/lots/3", lotBody, "id", "3")
		require.NoError(t, NewAdminHandler(api).UpdateLot(c))

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "lot_occupied", decodeBody(t, rec)["error"])
	})

	t.Run("unknown lot yields 404", func(t *testing.T) {
		api := new(mockLotAPI)
		api.On("Resize", mock.Anything, uint64(99), lotInput).Return(nil, repository.ErrLotNotFound)

		c, rec := newJSONContext(http.MethodPut, "/v1/admin/lots/99", lotBody, "id", "99")
		require.NoError(t, NewAdminHandler(api).UpdateLot(c))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAdminDeleteLot(t *testing.T) {
	t.Run("removes an empty lot", func(t *testing.T) {
		api := new(mockLotAPI)
		api.On("Delete", mock.Anything, uint64(3)).Return(nil)

		c, rec := newJSONContext(http.MethodDelete, "/v1/admin/lots/3", "", "id", "3")
		require.NoError(t, NewAdminHandler(api).DeleteLot(c))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		api.AssertExpectations(t)
	})

	t.Run("occupied lot yields 409", func(t *testing.T) {
		api := new(mockLotAPI)
		api.On("Delete", mock.Anything, uint64(3)).Return(repository.ErrLotOccupied)

		c, rec := newJSONContext(http.MethodDelete, "/v1/admin/lots/3", "", "id", "3")
		require.NoError(t, NewAdminHandler(api).DeleteLot(c))

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestAdminLotSpots(t *testing.T) {
	api := new(mockLotAPI)
	api.On("Spots", mock.Anything, uint64(3)).Return([]service.SpotView{
		{Spot: model.ParkingSpot{ID: 11, LotID: 3, SpotNumber: 1, Status: model.SpotOccupied}},
		{Spot: model.ParkingSpot{ID: 12, LotID: 3, SpotNumber: 2, Status: model.SpotAvailable}},
	}, nil)

	c, rec := newJSONContext(http.MethodGet, "/v1/admin/lots/3/spots", "", "id", "3")
	require.NoError(t, NewAdminHandler(api).LotSpots(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(3), body["lot_id"])
	assert.Len(t, body["spots"], 2)
	api.AssertExpectations(t)
}

func TestAdminStats(t *testing.T) {
	api := new(mockLotAPI)
	api.On("Stats", mock.Anything).Return(&service.Stats{
		TotalSpots:     10,
		OccupiedSpots:  4,
		AvailableSpots: 6,
		Lots: []repository.LotStats{
			{LotID: 3, Name: "Central", Total: 10, Occupied: 4, Available: 6},
		},
	}, nil)

	c, rec := newJSONContext(http.MethodGet, "/v1/admin/stats", "", "", "")
	require.NoError(t, NewAdminHandler(api).Stats(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(10), body["total_spots"])
	assert.Equal(t, float64(4), body["occupied_spots"])
	api.AssertExpectations(t)
}
