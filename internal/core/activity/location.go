package activity

import (
	"fmt"
	"math"

	"github.com/golang/geo/s2"
)

const earthRadiusKm = 6371.0088

// Location is a latitude/longitude pair in degrees.
type Location struct {
	Lat float64
	Lng float64
}

// NewLocation returns a normalized location: latitude is clamped to
// [-90, 90] and longitude wrapped into [-180, 180].
func NewLocation(lat, lng float64) (Location, error) {
	for _, v := range []float64{lat, lng} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Location{}, fmt.Errorf("%w: coordinates must be numbers", ErrInvalid)
		}
	}

	ll := s2.LatLngFromDegrees(lat, lng).Normalized()
	return Location{Lat: ll.Lat.Degrees(), Lng: ll.Lng.Degrees()}, nil
}

// LatLng returns the location as an s2.LatLng.
func (l Location) LatLng() s2.LatLng {
	return s2.LatLngFromDegrees(l.Lat, l.Lng)
}

// DistanceKm returns the great-circle distance to other.
func (l Location) DistanceKm(other Location) float64 {
	return l.LatLng().Distance(other.LatLng()).Radians() * earthRadiusKm
}

func (l Location) String() string {
	return fmt.Sprintf("%.5f, %.5f", l.Lat, l.Lng)
}
