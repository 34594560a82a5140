// Package activity models recorded workouts. An Activity is either a run or
// a ride; the derived metric and label are computed once, at construction.
package activity

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrNotFound is returned when no activity has the requested id.
	ErrNotFound = errors.New("activity not found")
	// ErrInvalid is returned when an activity cannot be built from its fields.
	ErrInvalid = errors.New("invalid activity")
)

// Kind discriminates the activity variants.
type Kind string

const (
	KindRun  Kind = "run"
	KindRide Kind = "ride"
)

// Noun returns the word used in labels.
func (k Kind) Noun() string {
	switch k {
	case KindRun:
		return "Running"
	case KindRide:
		return "Cycling"
	default:
		return string(k)
	}
}

// IDSource issues unique activity ids.
type IDSource interface {
	Allocate() (int, error)
}

// Activity is a recorded run or ride. Values are never mutated after
// construction.
type Activity struct {
	ID          int
	Kind        Kind
	CreatedAt   time.Time
	Location    Location
	DistanceKm  float64
	DurationMin float64

	// CadenceSpm is set for runs.
	CadenceSpm int
	// ElevationGainM is set for rides.
	ElevationGainM float64

	// PaceMinPerKm is set for runs.
	PaceMinPerKm float64
	// SpeedKmh is set for rides.
	SpeedKmh float64

	Label string
}

// NewRun builds a run and draws its id from ids.
func NewRun(ids IDSource, now time.Time, loc Location, distanceKm, durationMin float64, cadenceSpm int) (Activity, error) {
	a := Activity{
		Kind:        KindRun,
		CreatedAt:   now,
		Location:    loc,
		DistanceKm:  distanceKm,
		DurationMin: durationMin,
		CadenceSpm:  cadenceSpm,
	}
	return a.finish(ids)
}

// NewRide builds a ride and draws its id from ids.
func NewRide(ids IDSource, now time.Time, loc Location, distanceKm, durationMin, elevationGainM float64) (Activity, error) {
	a := Activity{
		Kind:           KindRide,
		CreatedAt:      now,
		Location:       loc,
		DistanceKm:     distanceKm,
		DurationMin:    durationMin,
		ElevationGainM: elevationGainM,
	}
	return a.finish(ids)
}

func (a Activity) finish(ids IDSource) (Activity, error) {
	if err := a.check(); err != nil {
		return Activity{}, err
	}

	id, err := ids.Allocate()
	if err != nil {
		return Activity{}, fmt.Errorf("allocate id: %w", err)
	}
	a.ID = id
	a.derive()
	return a, nil
}

// check enforces the invariants every stored activity holds.
func (a Activity) check() error {
	if !(a.DistanceKm > 0) || math.IsInf(a.DistanceKm, 0) {
		return fmt.Errorf("%w: distance must be positive, got %v", ErrInvalid, a.DistanceKm)
	}
	if !(a.DurationMin > 0) || math.IsInf(a.DurationMin, 0) {
		return fmt.Errorf("%w: duration must be positive, got %v", ErrInvalid, a.DurationMin)
	}

	switch a.Kind {
	case KindRun:
		if a.CadenceSpm <= 0 {
			return fmt.Errorf("%w: cadence must be positive, got %d", ErrInvalid, a.CadenceSpm)
		}
	case KindRide:
		if math.IsNaN(a.ElevationGainM) || math.IsInf(a.ElevationGainM, 0) {
			return fmt.Errorf("%w: elevation must be a number", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalid, a.Kind)
	}

	return nil
}

// derive computes the metric and label. It is the only place they are set.
func (a *Activity) derive() {
	switch a.Kind {
	case KindRun:
		a.PaceMinPerKm = a.DurationMin / a.DistanceKm
	case KindRide:
		a.SpeedKmh = a.DistanceKm / (a.DurationMin / 60)
	}
	a.Label = fmt.Sprintf("%s on %s %d", a.Kind.Noun(), a.CreatedAt.Month(), a.CreatedAt.Day())
}

// Metric returns the derived metric and its unit.
func (a Activity) Metric() (float64, string) {
	switch a.Kind {
	case KindRun:
		return a.PaceMinPerKm, "min/km"
	case KindRide:
		return a.SpeedKmh, "km/h"
	default:
		return 0, ""
	}
}

// Detail returns the variant-specific field and its unit.
func (a Activity) Detail() (float64, string) {
	switch a.Kind {
	case KindRun:
		return float64(a.CadenceSpm), "spm"
	case KindRide:
		return a.ElevationGainM, "m"
	default:
		return 0, ""
	}
}
