package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

var office = Point{Latitude: 12.9248224, Longitude: 77.5702351}

func TestHaversineKm_Symmetric(t *testing.T) {
	points := []Point{
		office,
		{Latitude: 12.93, Longitude: 77.58},
		{Latitude: 13.05, Longitude: 77.58},
		{Latitude: -33.8688, Longitude: 151.2093},
		{Latitude: 51.5074, Longitude: -0.1278},
		{Latitude: 0, Longitude: 179.9},
		{Latitude: 0, Longitude: -179.9},
	}
	for _, a := range points {
		for _, b := range points {
			assert.InDelta(t, HaversineKm(a, b), HaversineKm(b, a), 1e-9, "%v <-> %v", a, b)
		}
	}
}

func TestHaversineKm_SamePointIsZero(t *testing.T) {
	assert.Equal(t, 0.0, HaversineKm(office, office))
	assert.Equal(t, 0.0, HaversineKm(Point{}, Point{}))
}

func TestHaversineKm_KnownDistances(t *testing.T) {
	cases := []struct {
		name string
		to   Point
		want float64
		tol  float64
	}{
		{"nearby campus", Point{Latitude: 12.93, Longitude: 77.58}, 1.2, 0.1},
		{"north of city", Point{Latitude: 13.05, Longitude: 77.58}, 14.0, 0.2},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.InDelta(t, c.want, HaversineKm(office, c.to), c.tol)
		})
	}

	// One degree of latitude along a meridian.
	assert.InDelta(t, EarthRadiusKm*math.Pi/180, HaversineKm(Point{0, 0}, Point{1, 0}), 1e-9)
}

func TestPoint_Valid(t *testing.T) {
	valid := []Point{office, {90, 180}, {-90, -180}, {}}
	invalid := []Point{
		{91, 0},
		{0, 181},
		{-90.0001, 0},
		{math.NaN(), 0},
		{0, math.Inf(1)},
	}
	for _, p := range valid {
		assert.True(t, p.Valid(), "%v", p)
	}
	for _, p := range invalid {
		assert.False(t, p.Valid(), "%v", p)
	}
}
