package activity

import (
	"fmt"
	"math"
	"time"
)

// Record is the flat persisted form of an Activity. Field names are part of
// the stored format; older blobs written with them must keep loading.
type Record struct {
	Type        string     `json:"type"`
	ID          int        `json:"id"`
	Date        time.Time  `json:"date"`
	Coords      [2]float64 `json:"coords"`
	Distance    float64    `json:"distance"`
	Duration    float64    `json:"duration"`
	Cadence     *float64   `json:"cadence,omitempty"`
	Elevation   *float64   `json:"elevation,omitempty"`
	Pace        *float64   `json:"pace,omitempty"`
	Speed       *float64   `json:"speed,omitempty"`
	Description string     `json:"description,omitempty"`
}

// ParseKind maps a persisted type tag to a Kind. The legacy tags "running"
// and "cycling" are accepted.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "run", "running":
		return KindRun, nil
	case "ride", "cycling":
		return KindRide, nil
	default:
		return "", fmt.Errorf("%w: unknown type %q", ErrInvalid, s)
	}
}

// ToRecord flattens a for persistence.
func ToRecord(a Activity) Record {
	rec := Record{
		Type:        string(a.Kind),
		ID:          a.ID,
		Date:        a.CreatedAt,
		Coords:      [2]float64{a.Location.Lat, a.Location.Lng},
		Distance:    a.DistanceKm,
		Duration:    a.DurationMin,
		Description: a.Label,
	}

	switch a.Kind {
	case KindRun:
		cadence := float64(a.CadenceSpm)
		pace := a.PaceMinPerKm
		rec.Cadence, rec.Pace = &cadence, &pace
	case KindRide:
		elevation := a.ElevationGainM
		speed := a.SpeedKmh
		rec.Elevation, rec.Speed = &elevation, &speed
	}

	return rec
}

// FromRecord rebuilds an Activity from its persisted form. Invariants are
// checked again and the metric and label are recomputed; the persisted
// pace, speed and description are ignored.
func FromRecord(rec Record) (Activity, error) {
	kind, err := ParseKind(rec.Type)
	if err != nil {
		return Activity{}, err
	}

	loc, err := NewLocation(rec.Coords[0], rec.Coords[1])
	if err != nil {
		return Activity{}, fmt.Errorf("activity %d: %w", rec.ID, err)
	}

	a := Activity{
		ID:          rec.ID,
		Kind:        kind,
		CreatedAt:   rec.Date,
		Location:    loc,
		DistanceKm:  rec.Distance,
		DurationMin: rec.Duration,
	}

	switch kind {
	case KindRun:
		if rec.Cadence == nil {
			return Activity{}, fmt.Errorf("%w: run %d has no cadence", ErrInvalid, rec.ID)
		}
		a.CadenceSpm = int(math.Round(*rec.Cadence))
	case KindRide:
		if rec.Elevation == nil {
			return Activity{}, fmt.Errorf("%w: ride %d has no elevation", ErrInvalid, rec.ID)
		}
		a.ElevationGainM = *rec.Elevation
	}

	if err := a.check(); err != nil {
		return Activity{}, fmt.Errorf("activity %d: %w", rec.ID, err)
	}
	a.derive()
	return a, nil
}
