package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/playperu/findyourcity/internal/findyourcity"
)

var (
	tokyo   = findyourcity.Coordinate{Lat: 35.6762, Lon: 139.6503}
	paris   = findyourcity.Coordinate{Lat: 48.8566, Lon: 2.3522}
	nairobi = findyourcity.Coordinate{Lat: -1.286389, Lon: 36.817223}
	origin  = findyourcity.Coordinate{}
)

func TestDistanceKmSamePointIsZero(t *testing.T) {
	for _, c := range []findyourcity.Coordinate{tokyo, paris, nairobi, origin, {Lat: 90, Lon: 180}, {Lat: -90, Lon: -180}} {
		assert.InDelta(t, 0, DistanceKm(c, c), 1e-9, "point %+v", c)
	}
}

func TestDistanceKmSymmetric(t *testing.T) {
	pairs := [][2]findyourcity.Coordinate{
		{tokyo, paris},
		{paris, nairobi},
		{origin, tokyo},
		{{Lat: 89.9, Lon: -179.9}, {Lat: -89.9, Lon: 179.9}},
	}
	for _, p := range pairs {
		assert.InDelta(t, DistanceKm(p[0], p[1]), DistanceKm(p[1], p[0]), 1e-9)
	}
}

func TestDistanceKmBoundedByHalfCircumference(t *testing.T) {
	half := math.Pi * EarthRadiusKm

	antipodal := DistanceKm(origin, findyourcity.Coordinate{Lat: 0, Lon: 180})
	assert.InDelta(t, half, antipodal, 1e-6)

	for lat := -90.0; lat <= 90; lat += 15 {
		for lon := -180.0; lon <= 180; lon += 30 {
			d := DistanceKm(tokyo, findyourcity.Coordinate{Lat: lat, Lon: lon})
			assert.GreaterOrEqual(t, d, 0.0)
			assert.LessOrEqual(t, d, half+1e-6)
		}
	}
}

func TestDistanceKmKnownPairs(t *testing.T) {
	tests := []struct {
		name string
		a, b findyourcity.Coordinate
		want float64
	}{
		{name: "tokyo to paris", a: tokyo, b: paris, want: 9711.7},
		{name: "origin to tokyo", a: origin, b: tokyo, want: 14260.6},
		{name: "one degree of latitude", a: origin, b: findyourcity.Coordinate{Lat: 1}, want: 111.19},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DistanceKm(tt.a, tt.b), 1)
		})
	}
}

func TestScoreFromDistance(t *testing.T) {
	tests := []struct {
		km   float64
		want int
	}{
		{km: 0, want: 5000},
		{km: 1, want: 4998},
		{km: 2000, want: 1839},
		{km: 6671, want: 178},
		{km: 14260.63, want: 4},
		{km: 20000, want: 0},
		{km: -5, want: 5000},
		{km: math.Inf(1), want: 0},
		{km: math.NaN(), want: 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ScoreFromDistance(tt.km), "km=%v", tt.km)
	}
}

func TestScoreFromDistanceDecreasing(t *testing.T) {
	prev := ScoreFromDistance(0)
	for km := 250.0; km <= 8000; km += 250 {
		got := ScoreFromDistance(km)
		assert.Less(t, got, prev, "km=%v", km)
		assert.GreaterOrEqual(t, got, 0)
		prev = got
	}
}

func TestEvaluate(t *testing.T) {
	km, score := Evaluate(tokyo, tokyo)
	assert.InDelta(t, 0, km, 1e-9)
	assert.Equal(t, MaxScore, score)

	km, score = Evaluate(tokyo, origin)
	assert.InDelta(t, 14260.6, km, 10)
	assert.Equal(t, 4, score)
}

func TestValidCoordinate(t *testing.T) {
	tests := []struct {
		c    findyourcity.Coordinate
		want bool
	}{
		{c: origin, want: true},
		{c: findyourcity.Coordinate{Lat: 90, Lon: 180}, want: true},
		{c: findyourcity.Coordinate{Lat: -90, Lon: -180}, want: true},
		{c: findyourcity.Coordinate{Lat: 90.0001, Lon: 0}, want: false},
		{c: findyourcity.Coordinate{Lat: 0, Lon: -180.5}, want: false},
		{c: findyourcity.Coordinate{Lat: math.NaN(), Lon: 0}, want: false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidCoordinate(tt.c), "%+v", tt.c)
	}
}
