package duration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElapsedBreakdown(t *testing.T) {
	base := time.Date(2024, 3, 10, 9, 0, 0, 0, Zone())

	tests := []struct {
		name         string
		end          time.Time
		hours        int
		minutes      int
		totalSeconds float64
		totalHours   float64
	}{
		{"zero duration", base, 0, 0, 0, 0},
		{"ninety minutes", base.Add(90 * time.Minute), 1, 30, 5400, 1.5},
		{"truncates seconds", base.Add(59 * time.Second), 0, 0, 59, 59.0 / 3600},
		{"just under two hours", base.Add(2*time.Hour - time.Second), 1, 59, 7199, 7199.0 / 3600},
		{"multi day", base.Add(26*time.Hour + 15*time.Minute), 26, 15, 94500, 26.25},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b, err := Elapsed(base, tc.end)
			require.NoError(t, err)
			assert.Equal(t, tc.hours, b.Hours)
			assert.Equal(t, tc.minutes, b.Minutes)
			assert.InDelta(t, tc.totalSeconds, b.TotalSeconds, 1e-9)
			assert.InDelta(t, tc.totalHours, b.TotalHours, 1e-9)
		})
	}
}

func TestElapsedDisplayBoundsTotal(t *testing.T) {
	// hours*3600 + minutes*60 must never exceed the exact total and
	// the truncation error stays below one minute.
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, Zone())
	for _, offset := range []time.Duration{
		37 * time.Second,
		61 * time.Minute,
		3*time.Hour + 59*time.Minute + 59*time.Second,
		100*time.Hour + 30*time.Second,
	} {
		b, err := Elapsed(base, base.Add(offset))
		require.NoError(t, err)
		display := float64(b.Hours*3600 + b.Minutes*60)
		assert.LessOrEqual(t, display, b.TotalSeconds)
		assert.Less(t, b.TotalSeconds, display+60)
	}
}

func TestElapsedZoneNormalization(t *testing.T) {
	// The same pair of instants must yield identical results no matter
	// which zone representation they arrive in.
	start := time.Date(2024, 3, 10, 9, 0, 0, 0, Zone())
	end := start.Add(90 * time.Minute)

	ref, err := Elapsed(start, end)
	require.NoError(t, err)

	utc, err := Elapsed(start.UTC(), end.UTC())
	require.NoError(t, err)
	assert.Equal(t, ref, utc)

	other := time.FixedZone("UTC-4", -4*3600)
	mixed, err := Elapsed(start.In(other), end)
	require.NoError(t, err)
	assert.Equal(t, ref, mixed)
}

func TestElapsedRejectsNegativeRange(t *testing.T) {
	start := time.Date(2024, 3, 10, 9, 0, 0, 0, Zone())
	_, err := Elapsed(start, start.Add(-time.Second))
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}

func TestElapsedSinceUsesReferenceZone(t *testing.T) {
	b, err := ElapsedSince(Now().Add(-2 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, b.Hours)
	assert.InDelta(t, 2.0, b.TotalHours, 0.01)
}

func TestCost(t *testing.T) {
	b, err := Elapsed(
		time.Date(2024, 3, 10, 9, 0, 0, 0, Zone()),
		time.Date(2024, 3, 10, 10, 30, 0, 0, Zone()),
	)
	require.NoError(t, err)
	assert.InDelta(t, 15.0, Cost(b, 10.0), 1e-9)
	assert.InDelta(t, 0.0, Cost(b, 0), 1e-9)
}

func TestSetZoneRejectsUnknownName(t *testing.T) {
	prev := Zone()
	assert.Error(t, SetZone("Not/AZone"))
	assert.Equal(t, prev, Zone())
}
