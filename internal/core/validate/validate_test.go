package validate

import (
	"math"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var nan = math.NaN()

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{"integer", "5", 5},
		{"decimal", "2.5", 2.5},
		{"padded", "  12 ", 12},
		{"empty is zero", "", 0},
		{"blank is zero", "   ", 0},
		{"negative", "-3", -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseNumber(tt.input))
		})
	}

	assert.True(t, math.IsNaN(ParseNumber("abc")))
	assert.True(t, math.IsNaN(ParseNumber("5km")))
}

func TestPredicates(t *testing.T) {
	assert.True(t, AllNaN(nan, nan))
	assert.False(t, AllNaN(nan, 1))
	assert.True(t, AllNaN())

	assert.True(t, AllNonNegative(0, 1, 2))
	assert.False(t, AllNonNegative(1, -1))
	assert.False(t, AllNonNegative(1, nan))
	assert.True(t, AllNonNegative())

	assert.True(t, AnyFalsy(1, 0))
	assert.True(t, AnyFalsy(1, nan))
	assert.False(t, AnyFalsy(1, 2, 3))
	assert.False(t, AnyFalsy())
}

func TestRun(t *testing.T) {
	tests := []struct {
		name        string
		mode        Mode
		d, t, c     float64
		wantErr     bool
		fieldErrors int
	}{
		{"literal valid", ModeLiteral, 5, 25, 180, false, 0},
		{"literal zero distance", ModeLiteral, 0, 30, 150, true, 0},
		{"literal negative duration", ModeLiteral, 5, -1, 150, true, 0},
		{"literal NaN cadence", ModeLiteral, 5, 25, nan, true, 0},
		{"literal all NaN", ModeLiteral, nan, nan, nan, true, 0},
		{"literal fractional cadence", ModeLiteral, 5, 25, 170.5, false, 0},
		{"strict valid", ModeStrict, 5, 25, 180, false, 0},
		{"strict zero distance", ModeStrict, 0, 30, 150, true, 1},
		{"strict all bad", ModeStrict, nan, 0, -4, true, 3},
		{"strict fractional cadence", ModeStrict, 5, 25, 170.5, true, 1},
		{"strict infinite duration", ModeStrict, 5, math.Inf(1), 170, true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Run(tt.mode, tt.d, tt.t, tt.c)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, ErrValidation)
			if tt.fieldErrors > 0 {
				var fieldErrs criterio.FieldErrors
				require.ErrorAs(t, err, &fieldErrs)
				assert.Len(t, fieldErrs, tt.fieldErrors)
			}
		})
	}
}

func TestRide(t *testing.T) {
	tests := []struct {
		name    string
		mode    Mode
		d, t, e float64
		wantErr bool
	}{
		{"literal valid", ModeLiteral, 20, 60, 150, false},
		{"literal zero elevation rejected", ModeLiteral, 20, 60, 0, true},
		{"literal NaN elevation rejected", ModeLiteral, 20, 60, nan, true},
		{"literal negative elevation passes", ModeLiteral, 20, 60, -10, false},
		{"literal zero duration", ModeLiteral, 20, 0, 150, true},
		{"strict zero elevation allowed", ModeStrict, 20, 60, 0, false},
		{"strict negative elevation", ModeStrict, 20, 60, -10, true},
		{"strict NaN elevation", ModeStrict, 20, 60, nan, true},
		{"strict NaN distance", ModeStrict, nan, 60, 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Ride(tt.mode, tt.d, tt.t, tt.e)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStrictFieldNames(t *testing.T) {
	err := Ride(ModeStrict, 0, 60, -1)

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	require.Len(t, fieldErrs, 2)
	assert.Equal(t, "distance", fieldErrs[0].Field)
	assert.Equal(t, "elevation", fieldErrs[1].Field)
	assert.Contains(t, fieldErrs[1].Err.Error(), "negative")
}
