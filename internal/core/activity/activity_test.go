package activity

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counter implements IDSource for testing.
type counter struct {
	next  int
	err   error
	calls int
}

func (c *counter) Allocate() (int, error) {
	c.calls++
	if c.err != nil {
		return 0, c.err
	}
	id := c.next
	c.next++
	return id, nil
}

var march5 = time.Date(2026, time.March, 5, 9, 30, 0, 0, time.UTC)

func mustLocation(t *testing.T, lat, lng float64) Location {
	t.Helper()
	loc, err := NewLocation(lat, lng)
	require.NoError(t, err)
	return loc
}

func TestNewRun(t *testing.T) {
	ids := &counter{next: 42}

	run, err := NewRun(ids, march5, mustLocation(t, 10, 20), 5, 25, 180)
	require.NoError(t, err)

	assert.Equal(t, 42, run.ID)
	assert.Equal(t, KindRun, run.Kind)
	assert.InDelta(t, 5.0, run.PaceMinPerKm, 1e-9)
	assert.Zero(t, run.SpeedKmh)
	assert.Equal(t, "Running on March 5", run.Label)
	assert.Equal(t, march5, run.CreatedAt)

	metric, unit := run.Metric()
	assert.InDelta(t, 5.0, metric, 1e-9)
	assert.Equal(t, "min/km", unit)

	detail, unit := run.Detail()
	assert.Equal(t, 180.0, detail)
	assert.Equal(t, "spm", unit)
}

func TestNewRide(t *testing.T) {
	ids := &counter{}

	ride, err := NewRide(ids, march5, mustLocation(t, 10, 20), 20, 60, 150)
	require.NoError(t, err)

	assert.Equal(t, KindRide, ride.Kind)
	assert.InDelta(t, 20.0, ride.SpeedKmh, 1e-9)
	assert.Equal(t, "Cycling on March 5", ride.Label)

	metric, unit := ride.Metric()
	assert.InDelta(t, 20.0, metric, 1e-9)
	assert.Equal(t, "km/h", unit)
}

func TestNewRide_ZeroElevation(t *testing.T) {
	ride, err := NewRide(&counter{}, march5, Location{}, 10, 30, 0)
	require.NoError(t, err)
	assert.Zero(t, ride.ElevationGainM)
}

func TestConstructors_RejectBeforeAllocating(t *testing.T) {
	tests := []struct {
		name  string
		build func(ids IDSource) (Activity, error)
	}{
		{"zero distance", func(ids IDSource) (Activity, error) {
			return NewRun(ids, march5, Location{}, 0, 30, 150)
		}},
		{"negative duration", func(ids IDSource) (Activity, error) {
			return NewRide(ids, march5, Location{}, 10, -5, 10)
		}},
		{"NaN distance", func(ids IDSource) (Activity, error) {
			return NewRun(ids, march5, Location{}, math.NaN(), 30, 150)
		}},
		{"zero cadence", func(ids IDSource) (Activity, error) {
			return NewRun(ids, march5, Location{}, 5, 30, 0)
		}},
		{"NaN elevation", func(ids IDSource) (Activity, error) {
			return NewRide(ids, march5, Location{}, 5, 30, math.NaN())
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids := &counter{}
			_, err := tt.build(ids)
			require.ErrorIs(t, err, ErrInvalid)
			assert.Zero(t, ids.calls)
		})
	}
}

func TestConstructors_AllocationFailure(t *testing.T) {
	exhausted := errors.New("exhausted")

	_, err := NewRun(&counter{err: exhausted}, march5, Location{}, 5, 25, 180)
	assert.ErrorIs(t, err, exhausted)
}

func TestNewLocation(t *testing.T) {
	loc := mustLocation(t, 51.5, -0.12)
	assert.InDelta(t, 51.5, loc.Lat, 1e-9)
	assert.InDelta(t, -0.12, loc.Lng, 1e-9)

	wrapped := mustLocation(t, 10, 200)
	assert.InDelta(t, -160, wrapped.Lng, 1e-9)

	clamped := mustLocation(t, 95, 0)
	assert.InDelta(t, 90, clamped.Lat, 1e-9)

	_, err := NewLocation(math.NaN(), 0)
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = NewLocation(0, math.Inf(1))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLocation_DistanceKm(t *testing.T) {
	a := mustLocation(t, 0, 0)
	b := mustLocation(t, 0, 1)

	// One degree of longitude on the equator.
	assert.InDelta(t, 111.19, a.DistanceKm(b), 0.1)
	assert.Zero(t, a.DistanceKm(a))
}

func TestRecord_RoundTrip(t *testing.T) {
	ids := &counter{next: 7}
	run, err := NewRun(ids, march5, mustLocation(t, 10, 20), 5, 25, 180)
	require.NoError(t, err)
	ride, err := NewRide(ids, march5, mustLocation(t, -33.9, 18.4), 20, 60, 150)
	require.NoError(t, err)

	for _, original := range []Activity{run, ride} {
		data, err := json.Marshal(ToRecord(original))
		require.NoError(t, err)

		var rec Record
		require.NoError(t, json.Unmarshal(data, &rec))

		restored, err := FromRecord(rec)
		require.NoError(t, err)

		assert.Equal(t, original.ID, restored.ID)
		assert.Equal(t, original.Kind, restored.Kind)
		assert.True(t, original.CreatedAt.Equal(restored.CreatedAt))
		assert.InDelta(t, original.Location.Lat, restored.Location.Lat, 1e-9)
		assert.InDelta(t, original.Location.Lng, restored.Location.Lng, 1e-9)
		assert.Equal(t, original.DistanceKm, restored.DistanceKm)
		assert.Equal(t, original.DurationMin, restored.DurationMin)
		assert.Equal(t, original.CadenceSpm, restored.CadenceSpm)
		assert.Equal(t, original.ElevationGainM, restored.ElevationGainM)
		assert.InDelta(t, original.PaceMinPerKm, restored.PaceMinPerKm, 1e-9)
		assert.InDelta(t, original.SpeedKmh, restored.SpeedKmh, 1e-9)
		assert.Equal(t, original.Label, restored.Label)
	}
}

func TestFromRecord_RecomputesStaleMetric(t *testing.T) {
	pace, cadence := 99.0, 170.0
	rec := Record{
		Type:        "run",
		ID:          3,
		Date:        march5,
		Distance:    10,
		Duration:    50,
		Cadence:     &cadence,
		Pace:        &pace,
		Description: "Stale",
	}

	a, err := FromRecord(rec)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, a.PaceMinPerKm, 1e-9)
	assert.Equal(t, "Running on March 5", a.Label)
}

func TestFromRecord_LegacyBlob(t *testing.T) {
	legacy := `{"date":"2026-03-05T09:30:00.000Z","id":512,"coords":[10,20],"distance":5,"duration":25,"type":"running","cadence":180,"pace":5,"description":"Running on March 5"}`

	var rec Record
	require.NoError(t, json.Unmarshal([]byte(legacy), &rec))

	a, err := FromRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, 512, a.ID)
	assert.Equal(t, KindRun, a.Kind)
	assert.Equal(t, 180, a.CadenceSpm)
}

func TestFromRecord_Invalid(t *testing.T) {
	cadence := 170.0
	elevation := 10.0

	tests := []struct {
		name string
		rec  Record
	}{
		{"unknown type", Record{Type: "swim", Distance: 1, Duration: 1}},
		{"zero distance", Record{Type: "run", Distance: 0, Duration: 10, Cadence: &cadence}},
		{"missing cadence", Record{Type: "run", Distance: 5, Duration: 10}},
		{"missing elevation", Record{Type: "ride", Distance: 5, Duration: 10}},
		{"negative duration", Record{Type: "ride", Distance: 5, Duration: -1, Elevation: &elevation}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromRecord(tt.rec)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}
