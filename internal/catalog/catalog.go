// Package catalog is the static set of places the offline generator draws
// from. The seed list is embedded as YAML and decoded once on first use.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/playperu/findyourcity/internal/findyourcity"
	"github.com/playperu/findyourcity/internal/geo"
)

//go:embed places.yaml
var seed []byte

var ErrEmpty = errors.New("catalog has no places")

type Catalog struct {
	places []findyourcity.Place
	names  []string
}

type document struct {
	Places []findyourcity.Place `yaml:"places"`
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := Load(bytes.NewReader(seed))
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded seed is invalid: %v", err))
	}
	return c
})

// Default returns the embedded seed catalog.
func Default() *Catalog {
	return defaultCatalog()
}

// Load decodes and validates a catalog document. Every place must have a
// city, a country, in-range coordinates and at least one item in each
// descriptive list, so that local generation can never fail.
func Load(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	if len(doc.Places) == 0 {
		return nil, ErrEmpty
	}

	for i, p := range doc.Places {
		if err := validate(p); err != nil {
			return nil, fmt.Errorf("place %d (%s): %w", i, p.City, err)
		}
	}
	return &Catalog{places: doc.Places, names: collectNames(doc.Places)}, nil
}

func validate(p findyourcity.Place) error {
	switch {
	case strings.TrimSpace(p.City) == "":
		return errors.New("city is required")
	case strings.TrimSpace(p.Country) == "":
		return errors.New("country is required")
	case !geo.ValidLat(p.Lat) || !geo.ValidLon(p.Lon):
		return fmt.Errorf("coordinates out of range: %v, %v", p.Lat, p.Lon)
	case len(p.Tidbits) == 0:
		return errors.New("tidbits must not be empty")
	case len(p.Cuisine) == 0:
		return errors.New("cuisine must not be empty")
	case len(p.Habits) == 0:
		return errors.New("habits must not be empty")
	}
	return nil
}

// collectNames returns each distinct city and country name, first spelling
// wins.
func collectNames(places []findyourcity.Place) []string {
	seen := make(map[string]struct{}, len(places)*2)
	var names []string
	for _, p := range places {
		for _, n := range []string{p.City, p.Country} {
			n = strings.TrimSpace(n)
			k := strings.ToLower(n)
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			names = append(names, n)
		}
	}
	return names
}

func (c *Catalog) Len() int { return len(c.places) }

// At returns the i-th place. It panics if i is out of range.
func (c *Catalog) At(i int) findyourcity.Place { return c.places[i] }

// Places returns a copy of the catalog entries.
func (c *Catalog) Places() []findyourcity.Place {
	out := make([]findyourcity.Place, len(c.places))
	copy(out, c.places)
	return out
}

// Names lists every city and country in the catalog.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}
