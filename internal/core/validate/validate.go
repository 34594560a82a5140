// Package validate gates raw numeric form input before an activity is built.
package validate

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/hay-kot/criterio"
)

// ErrValidation is returned when input is rejected. No state changes on rejection.
var ErrValidation = errors.New("inputs have to be positive numbers")

// Mode selects which acceptance rule gates new activities.
type Mode string

const (
	// ModeLiteral applies the composed form predicate as is, quirks included.
	ModeLiteral Mode = "literal"
	// ModeStrict rejects any non-numeric or non-positive input.
	ModeStrict Mode = "strict"
)

// ParseNumber coerces a raw form field to a number. Blank input is 0 and
// unparseable input is NaN.
func ParseNumber(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// AllNaN reports whether every input is NaN.
func AllNaN(inputs ...float64) bool {
	for _, in := range inputs {
		if !math.IsNaN(in) {
			return false
		}
	}
	return true
}

// AllNonNegative reports whether every input is >= 0. NaN is not.
func AllNonNegative(inputs ...float64) bool {
	for _, in := range inputs {
		if !(in >= 0) {
			return false
		}
	}
	return true
}

// AnyFalsy reports whether any input is zero or NaN.
func AnyFalsy(inputs ...float64) bool {
	for _, in := range inputs {
		if in == 0 || math.IsNaN(in) {
			return true
		}
	}
	return false
}

// Run checks the inputs of a run.
func Run(mode Mode, distanceKm, durationMin, cadenceSpm float64) error {
	if mode == ModeStrict {
		var errs criterio.FieldErrorsBuilder
		errs = positive(errs, "distance", distanceKm)
		errs = positive(errs, "duration", durationMin)
		errs = positive(errs, "cadence", cadenceSpm)
		if isFinite(cadenceSpm) && cadenceSpm != math.Trunc(cadenceSpm) {
			errs = errs.Append("cadence", errors.New("must be a whole number of steps"))
		}
		return rejected(errs)
	}

	if AllNaN(distanceKm, durationMin, cadenceSpm) ||
		!AllNonNegative(distanceKm, durationMin, cadenceSpm) ||
		AnyFalsy(distanceKm, durationMin, cadenceSpm) {
		return ErrValidation
	}
	return nil
}

// Ride checks the inputs of a ride. In literal mode the NaN and sign checks
// cover distance and duration only, while the falsy check also covers
// elevation, so a zero elevation is rejected.
func Ride(mode Mode, distanceKm, durationMin, elevationGainM float64) error {
	if mode == ModeStrict {
		var errs criterio.FieldErrorsBuilder
		errs = positive(errs, "distance", distanceKm)
		errs = positive(errs, "duration", durationMin)
		switch {
		case !isFinite(elevationGainM):
			errs = errs.Append("elevation", errors.New("must be a number"))
		case elevationGainM < 0:
			errs = errs.Append("elevation", errors.New("must not be negative"))
		}
		return rejected(errs)
	}

	if AllNaN(distanceKm, durationMin) ||
		!AllNonNegative(distanceKm, durationMin) ||
		AnyFalsy(distanceKm, durationMin, elevationGainM) {
		return ErrValidation
	}
	return nil
}

func positive(errs criterio.FieldErrorsBuilder, field string, v float64) criterio.FieldErrorsBuilder {
	switch {
	case !isFinite(v):
		return errs.Append(field, errors.New("must be a number"))
	case v <= 0:
		return errs.Append(field, errors.New("must be greater than zero"))
	}
	return errs
}

func rejected(errs criterio.FieldErrorsBuilder) error {
	if err := errs.ToError(); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
