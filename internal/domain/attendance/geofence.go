package attendance

import (
	"math"

	"github.com/cmlabs-hris/intern-attendance/internal/pkg/geo"
)

// Geofence is the permitted circle around the office.
type Geofence struct {
	Name     string
	Center   geo.Point
	RadiusKm float64
}

// Admission is the outcome of a geofence check.
type Admission struct {
	Allowed    bool    `json:"allowed"`
	DistanceKm float64 `json:"distance_km"`
	RadiusKm   float64 `json:"radius_km"`
}

// Admit checks p against the fence. The boundary is inclusive.
func (g Geofence) Admit(p geo.Point) Admission {
	d := geo.HaversineKm(p, g.Center)
	return Admission{
		Allowed:    d <= g.RadiusKm,
		DistanceKm: math.Round(d*1e4) / 1e4,
		RadiusKm:   g.RadiusKm,
	}
}

// ParseCoordinate turns the optional request fields into a point. A missing
// component is ErrCoordinatesRequired, an out of range one
// ErrInvalidCoordinates.
func ParseCoordinate(latitude, longitude *float64) (geo.Point, error) {
	if latitude == nil || longitude == nil {
		return geo.Point{}, ErrCoordinatesRequired
	}
	p := geo.Point{Latitude: *latitude, Longitude: *longitude}
	if !p.Valid() {
		return geo.Point{}, ErrInvalidCoordinates
	}
	return p, nil
}

// ParseOptionalCoordinate is ParseCoordinate for check-out, where the
// coordinate may be omitted entirely.
func ParseOptionalCoordinate(latitude, longitude *float64) (*geo.Point, error) {
	if latitude == nil && longitude == nil {
		return nil, nil
	}
	p, err := ParseCoordinate(latitude, longitude)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
