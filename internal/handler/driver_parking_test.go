package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/openpark/parking-reservation/internal/model"
	"github.com/openpark/parking-reservation/internal/repository"
	"github.com/openpark/parking-reservation/internal/service"
)

type mockParkingAPI struct {
	mock.Mock
}

func (m *mockParkingAPI) Book(ctx context.Context, userID, lotID uint64) (*model.Reservation, error) {
	args := m.Called(ctx, userID, lotID)
	if r := args.Get(0); r != nil {
		return r.(*model.Reservation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockParkingAPI) Release(ctx context.Context, reservationID, userID uint64) (float64, error) {
	args := m.Called(ctx, reservationID, userID)
	return args.Get(0).(float64), args.Error(1)
}

func (m *mockParkingAPI) Dashboard(ctx context.Context, userID uint64) (*service.Dashboard, error) {
	args := m.Called(ctx, userID)
	if d := args.Get(0); d != nil {
		return d.(*service.Dashboard), args.Error(1)
	}
	return nil, args.Error(1)
}

// newTestContext builds an echo context for a request with an
// authenticated user and one bound path parameter.
func newTestContext(method, target string, userID uint64, paramName, paramValue string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", userID)
	if paramName != "" {
		c.SetParamNames(paramName)
		c.SetParamValues(paramValue)
	}
	return c, rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestDriverBook(t *testing.T) {
	entry := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("claims a spot", func(t *testing.T) {
		api := new(mockParkingAPI)
		api.On("Book", mock.Anything, uint64(7), uint64(3)).Return(&model.Reservation{
			ID:        42,
			SpotID:    11,
			UserID:    7,
			EntryTime: entry,
			Status:    model.ReservationActive,
		}, nil)

		c, rec := newTestContext(http.MethodPost, "/v1/lots/3/book", 7, "id", "3")
		require.NoError(t, NewDriverHandler(api).Book(c))

		assert.Equal(t, http.StatusCreated, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, float64(42), body["reservation_id"])
		assert.Equal(t, float64(11), body["spot_id"])
		assert.Equal(t, entry.Format(time.RFC3339), body["entry_time"])
		assert.Equal(t, model.ReservationActive, body["status"])
		api.AssertExpectations(t)
	})

	t.Run("rejects a second active reservation", func(t *testing.T) {
		api := new(mockParkingAPI)
		api.On("Book", mock.Anything, uint64(7), uint64(3)).Return(nil, repository.ErrUserAlreadyParked)

		c, rec := newTestContext(http.MethodPost, "/v1/lots/3/book", 7, "id", "3")
		require.NoError(t, NewDriverHandler(api).Book(c))

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "user_already_parked", decodeBody(t, rec)["error"])
	})

	t.Run("reports a full lot", func(t *testing.T) {
		api := new(mockParkingAPI)
		api.On("Book", mock.Anything, uint64(7), uint64(3)).Return(nil, repository.ErrNoAvailableSpot)

		c, rec := newTestContext(http.MethodPost, "/v1/lots/3/book", 7, "id", "3")
		require.NoError(t, NewDriverHandler(api).Book(c))

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "no_available_spot", decodeBody(t, rec)["error"])
	})

	t.Run("unknown lot yields 404", func(t *testing.T) {
		api := new(mockParkingAPI)
		api.On("Book", mock.Anything, uint64(7), uint64(99)).Return(nil, repository.ErrLotNotFound)

		c, rec := newTestContext(http.MethodPost, "/v1/lots/99/book", 7, "id", "99")
		require.NoError(t, NewDriverHandler(api).Book(c))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed lot id yields 400", func(t *testing.T) {
		api := new(mockParkingAPI)
		c, rec := newTestContext(http.MethodPost, "/v1/lots/abc/book", 7, "id", "abc")
		require.NoError(t, NewDriverHandler(api).Book(c))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		api.AssertNotCalled(t, "Book")
	})

	t.Run("missing user yields 401", func(t *testing.T) {
		api := new(mockParkingAPI)
		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/v1/lots/3/book", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("3")
		require.NoError(t, NewDriverHandler(api).Book(c))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		api.AssertNotCalled(t, "Book")
	})
}

func TestDriverRelease(t *testing.T) {
	t.Run("returns the final cost", func(t *testing.T) {
		api := new(mockParkingAPI)
		api.On("Release", mock.Anything, uint64(42), uint64(7)).Return(15.0, nil)

		c, rec := newTestContext(http.MethodPost, "/v1/reservations/42/release", 7, "id", "42")
		require.NoError(t, NewDriverHandler(api).Release(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, float64(42), body["reservation_id"])
		assert.Equal(t, 15.0, body["total_cost"])
		api.AssertExpectations(t)
	})

	t.Run("repeated release yields 404", func(t *testing.T) {
		api := new(mockParkingAPI)
		api.On("Release", mock.Anything, uint64(42), uint64(7)).Return(0.0, repository.ErrReservationNotFound)

		c, rec := newTestContext(http.MethodPost, "/v1/reservations/42/release", 7, "id", "42")
		require.NoError(t, NewDriverHandler(api).Release(c))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "reservation_not_found", decodeBody(t, rec)["error"])
	})

	t.Run("malformed reservation id yields 400", func(t *testing.T) {
		api := new(mockParkingAPI)
		c, rec := newTestContext(http.MethodPost, "/v1/reservations/0/release", 7, "id", "0")
		require.NoError(t, NewDriverHandler(api).Release(c))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		api.AssertNotCalled(t, "Release")
	})
}

func TestDriverDashboard(t *testing.T) {
	api := new(mockParkingAPI)
	api.On("Dashboard", mock.Anything, uint64(7)).Return(&service.Dashboard{
		Active:     []service.ActiveReservationView{},
		History:    []service.CompletedReservationView{},
		TotalHours: 3.5,
		TotalCost:  42.5,
	}, nil)

	c, rec := newTestContext(http.MethodGet, "/v1/dashboard", 7, "", "")
	require.NoError(t, NewDriverHandler(api).Dashboard(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, 3.5, body["total_hours"])
	assert.Equal(t, 42.5, body["total_cost"])
	api.AssertExpectations(t)
}
