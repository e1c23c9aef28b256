package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/openpark/parking-reservation/internal/model"
	"github.com/openpark/parking-reservation/internal/repository"
)

func TestPublicSearchLots(t *testing.T) {
	t.Run("forwards the query and lists matches", func(t *testing.T) {
		api := new(mockLotAPI)
		api.On("Search", mock.Anything, "central").Return([]repository.LotWithAvailability{
			{
				ParkingLot: model.ParkingLot{
					ID: 3, Name: "Central", HourlyRate: 10,
					Address: "1 Main St", PinCode: "560001", TotalSpots: 5,
				},
				AvailableSpots: 2,
			},
		}, nil)

		c, rec := newJSONContext(http.MethodGet, "/v1/lots?q=central", "", "", "")
		require.NoError(t, NewPublicHandler(api).SearchLots(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		lots, ok := body["lots"].([]any)
		require.True(t, ok)
		require.Len(t, lots, 1)
		lot := lots[0].(map[string]any)
		assert.Equal(t, "Central", lot["name"])
		assert.Equal(t, float64(2), lot["available_spots"])
		api.AssertExpectations(t)
	})

	t.Run("empty query lists everything", func(t *testing.T) {
		api := new(mockLotAPI)
		api.On("Search", mock.Anything, "").Return([]repository.LotWithAvailability{}, nil)

		c, rec := newJSONContext(http.MethodGet, "/v1/lots", "", "", "")
		require.NoError(t, NewPublicHandler(api).SearchLots(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		lots, ok := decodeBody(t, rec)["lots"].([]any)
		require.True(t, ok)
		assert.Empty(t, lots)
	})
}

func TestPublicGetLot(t *testing.T) {
	t.Run("returns the lot", func(t *testing.T) {
		api := new(mockLotAPI)
		api.On("Get", mock.Anything, uint64(3)).Return(&model.ParkingLot{
			ID: 3, Name: "Central", HourlyRate: 10,
			Address: "1 Main St", PinCode: "560001", TotalSpots: 5,
		}, nil)

		c, rec := newJSONContext(http.MethodGet, "/v1/lots/3", "", "id", "3")
		require.NoError(t, NewPublicHandler(api).GetLot(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Central", body["name"])
		assert.Equal(t, 10.0, body["hourly_rate"])
		api.AssertExpectations(t)
	})

	t.Run("unknown lot yields 404", func(t *testing.T) {
		api := new(mockLotAPI)
		api.On("Get", mock.Anything, uint64(99)).Return(nil, repository.ErrLotNotFound)

		c, rec := newJSONContext(http.MethodGet, "/v1/lots/99", "", "id", "99")
		require.NoError(t, NewPublicHandler(api).GetLot(c))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
