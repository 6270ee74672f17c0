// Package geo holds the distance and scoring math for guesses.
package geo

import (
	"math"

	"github.com/playperu/findyourcity/internal/findyourcity"
)

const (
	// EarthRadiusKm is the mean Earth radius.
	EarthRadiusKm = 6371.0

	// MaxScore is awarded for an exact guess.
	MaxScore = 5000

	scoreDecayKm = 2000.0
)

// DistanceKm returns the great-circle distance between a and b using the
// haversine formula.
func DistanceKm(a, b findyourcity.Coordinate) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := lat2 - lat1
	dLon := radians(b.Lon - a.Lon)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	// Rounding can push h just outside [0, 1] for antipodal points.
	h = math.Min(1, math.Max(0, h))

	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// ScoreFromDistance maps a distance to round(5000 * e^(-km/2000)).
func ScoreFromDistance(km float64) int {
	if math.IsNaN(km) {
		return 0
	}
	if km < 0 {
		km = 0
	}
	return int(math.Round(MaxScore * math.Exp(-km/scoreDecayKm)))
}

// Evaluate scores guess against secret.
func Evaluate(secret, guess findyourcity.Coordinate) (km float64, score int) {
	km = DistanceKm(secret, guess)
	return km, ScoreFromDistance(km)
}

func ValidLat(lat float64) bool { return lat >= -90 && lat <= 90 }

func ValidLon(lon float64) bool { return lon >= -180 && lon <= 180 }

// ValidCoordinate reports whether c is a real point on the globe. NaN fails
// both range checks.
func ValidCoordinate(c findyourcity.Coordinate) bool {
	return ValidLat(c.Lat) && ValidLon(c.Lon)
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
