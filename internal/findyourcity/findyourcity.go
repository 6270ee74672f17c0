// Package findyourcity defines the core domain types shared by the place
// generators, the round store and the HTTP layer.
// It has no external dependencies.
package findyourcity

import "strings"

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Place is a guessable location plus the descriptive items used to build
// hints. Catalog places carry three items per list; remote places carry
// whatever hint lists the generator returned.
type Place struct {
	City    string   `json:"city" yaml:"city"`
	Country string   `json:"country" yaml:"country"`
	Lat     float64  `json:"lat" yaml:"lat"`
	Lon     float64  `json:"lon" yaml:"lon"`
	Region  string   `json:"region" yaml:"region"`
	Tidbits []string `json:"tidbits" yaml:"tidbits"`
	Cuisine []string `json:"cuisine" yaml:"cuisine"`
	Habits  []string `json:"habits" yaml:"habits"`
}

func (p Place) Coordinate() Coordinate {
	return Coordinate{Lat: p.Lat, Lon: p.Lon}
}

// Key returns the normalized "city|country" identity of the place.
func (p Place) Key() string {
	return PlaceKey(p.City, p.Country)
}

// Answer strips the descriptive lists, leaving what is revealed to the
// player after a guess.
func (p Place) Answer() Answer {
	return Answer{
		City:    p.City,
		Country: p.Country,
		Region:  p.Region,
		Lat:     p.Lat,
		Lon:     p.Lon,
	}
}

func PlaceKey(city, country string) string {
	return strings.ToLower(strings.TrimSpace(city)) + "|" + strings.ToLower(strings.TrimSpace(country))
}

type Answer struct {
	City    string  `json:"city"`
	Country string  `json:"country"`
	Region  string  `json:"region"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

type Hints struct {
	Cuisine []string `json:"cuisine"`
	Habits  []string `json:"habits"`
	Vibes   []string `json:"vibes"`
}

// Len is the combined number of hint items.
func (h Hints) Len() int {
	return len(h.Cuisine) + len(h.Habits) + len(h.Vibes)
}

type MapDefault struct {
	Center [2]float64 `json:"center"`
	Zoom   int        `json:"zoom"`
}

// DefaultMap is a world view.
var DefaultMap = MapDefault{Center: [2]float64{20.0, 0.0}, Zoom: 2}

// RoundBundle is what a generator produces for one round. Place is the
// secret; everything else is safe to show the player.
type RoundBundle struct {
	Place          Place
	Character      string
	Monologue      string
	Hints          Hints
	MapDefault     MapDefault
	AIGenerated    bool
	FallbackReason string
}
