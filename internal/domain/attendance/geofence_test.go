package attendance

import (
	"errors"
	"math"
	"testing"

	"github.com/cmlabs-hris/intern-attendance/internal/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testOffice = Geofence{
	Name:     "Head Office",
	Center:   geo.Point{Latitude: 12.9248224, Longitude: 77.5702351},
	RadiusKm: 10,
}

func f64(v float64) *float64 { return &v }

func TestGeofence_Admit(t *testing.T) {
	near := testOffice.Admit(geo.Point{Latitude: 12.93, Longitude: 77.58})
	assert.True(t, near.Allowed)
	assert.InDelta(t, 1.2, near.DistanceKm, 0.1)

	far := testOffice.Admit(geo.Point{Latitude: 13.05, Longitude: 77.58})
	assert.False(t, far.Allowed)
	assert.InDelta(t, 14.0, far.DistanceKm, 0.2)

	center := Geofence{Center: testOffice.Center, RadiusKm: 0.001}.Admit(testOffice.Center)
	assert.True(t, center.Allowed)
	assert.Equal(t, 0.0, center.DistanceKm)
}

func TestGeofence_BoundaryIsInclusive(t *testing.T) {
	p := geo.Point{Latitude: 12.93, Longitude: 77.58}
	exact := geo.HaversineKm(p, testOffice.Center)

	g := Geofence{Center: testOffice.Center, RadiusKm: exact}
	assert.True(t, g.Admit(p).Allowed)

	g.RadiusKm = math.Nextafter(exact, 0)
	assert.False(t, g.Admit(p).Allowed)
}

func TestParseCoordinate(t *testing.T) {
	p, err := ParseCoordinate(f64(12.93), f64(77.58))
	require.NoError(t, err)
	assert.Equal(t, geo.Point{Latitude: 12.93, Longitude: 77.58}, p)

	_, err = ParseCoordinate(nil, f64(77.58))
	assert.ErrorIs(t, err, ErrCoordinatesRequired)

	_, err = ParseCoordinate(f64(-91), f64(0))
	assert.ErrorIs(t, err, ErrInvalidCoordinates)

	_, err = ParseCoordinate(f64(math.NaN()), f64(0))
	assert.ErrorIs(t, err, ErrInvalidCoordinates)

	_, err = ParseCoordinate(f64(0), f64(180.5))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestParseOptionalCoordinate(t *testing.T) {
	p, err := ParseOptionalCoordinate(nil, nil)
	assert.NoError(t, err)
	assert.Nil(t, p)

	_, err = ParseOptionalCoordinate(f64(1), nil)
	assert.ErrorIs(t, err, ErrCoordinatesRequired)

	p, err = ParseOptionalCoordinate(f64(1), f64(2))
	require.NoError(t, err)
	assert.Equal(t, &geo.Point{Latitude: 1, Longitude: 2}, p)
}

func TestOutsideGeofenceError(t *testing.T) {
	var err error = &OutsideGeofenceError{DistanceKm: 14.0321, RadiusKm: 10}

	assert.True(t, errors.Is(err, ErrOutsideGeofence))
	assert.False(t, errors.Is(err, ErrInvalidInput))
	assert.Contains(t, err.Error(), "14.0321 km")
}
