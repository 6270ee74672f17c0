package place

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playperu/findyourcity/internal/catalog"
	"github.com/playperu/findyourcity/internal/findyourcity"
)

func TestLocalGenerate(t *testing.T) {
	g := NewLocalGenerator(catalog.Default(), rand.NewPCG(1, 2))

	for range 50 {
		b := g.Generate()

		assert.False(t, b.AIGenerated)
		assert.Empty(t, b.FallbackReason)
		assert.Equal(t, findyourcity.DefaultMap, b.MapDefault)

		first, last, ok := strings.Cut(b.Character, " ")
		require.True(t, ok, b.Character)
		assert.Contains(t, firstNames, first)
		assert.Contains(t, lastNames, last)
		assert.True(t, strings.HasPrefix(b.Monologue, "Hello! I'm "+b.Character+". "), b.Monologue)

		assert.Len(t, b.Hints.Cuisine, 2)
		assert.Len(t, b.Hints.Habits, 2)
		assert.Len(t, b.Hints.Vibes, 2)
		assert.NotEqual(t, b.Hints.Cuisine[0], b.Hints.Cuisine[1])
		for _, c := range b.Hints.Cuisine {
			assert.Contains(t, b.Place.Cuisine, c)
		}
		for _, h := range b.Hints.Habits {
			assert.Contains(t, b.Place.Habits, h)
		}
		for _, v := range b.Hints.Vibes {
			assert.Contains(t, b.Place.Tidbits, v)
		}
	}
}

func TestLocalGenerateIsDeterministicForSeed(t *testing.T) {
	a := NewLocalGenerator(catalog.Default(), rand.NewPCG(7, 7))
	b := NewLocalGenerator(catalog.Default(), rand.NewPCG(7, 7))
	for range 10 {
		assert.Equal(t, a.Generate(), b.Generate())
	}
}

func TestLocalGenerateSingleItemLists(t *testing.T) {
	c, err := catalog.Load(strings.NewReader(`places:
  - city: Lima
    country: Peru
    lat: -12.0464
    lon: -77.0428
    region: South America
    tidbits: [the Malecón]
    cuisine: [ceviche]
    habits: [combi rides]
`))
	require.NoError(t, err)

	b := NewLocalGenerator(c, rand.NewPCG(3, 4)).Generate()

	want := fmt.Sprintf("Hello! I'm %s. My mornings usually involve combi rides, and I often grab ceviche on the go. "+
		"On weekends, I love exploring the Malecón. People here care about the Malecón and you'll hear plenty about it. "+
		"In the evenings, combi rides is my routine, ideally followed by ceviche with friends.", b.Character)
	assert.Equal(t, want, b.Monologue)
	assert.Equal(t, []string{"ceviche"}, b.Hints.Cuisine)
	assert.Equal(t, "Lima", b.Place.City)
}

func TestLocalGenerateDoesNotShareCatalogLists(t *testing.T) {
	c, err := catalog.Load(strings.NewReader(`places:
  - city: Lima
    country: Peru
    lat: -12.0464
    lon: -77.0428
    region: South America
    tidbits: [the Malecón]
    cuisine: [ceviche]
    habits: [combi rides]
`))
	require.NoError(t, err)
	g := NewLocalGenerator(c, rand.NewPCG(5, 6))

	b := g.Generate()
	b.Place.Tidbits[0] = "changed"
	b.Place.Cuisine[0] = "changed"
	b.Place.Habits[0] = "changed"
	b.Hints.Cuisine[0] = "changed"

	assert.Equal(t, []string{"the Malecón"}, c.At(0).Tidbits)
	assert.Equal(t, []string{"ceviche"}, c.At(0).Cuisine)
	assert.Equal(t, []string{"combi rides"}, c.At(0).Habits)

	again := g.Generate()
	assert.Equal(t, []string{"ceviche"}, again.Hints.Cuisine)
	assert.Equal(t, []string{"ceviche"}, again.Place.Cuisine)
}

func TestLocalGenerateCoversCatalog(t *testing.T) {
	c := catalog.Default()
	g := NewLocalGenerator(c, rand.NewPCG(11, 13))

	seen := map[string]bool{}
	for range 2000 {
		seen[g.Generate().Place.Key()] = true
	}
	keys := make([]string, 0, c.Len())
	for _, p := range c.Places() {
		keys = append(keys, p.Key())
	}
	slices.Sort(keys)
	keys = slices.Compact(keys)
	assert.Len(t, seen, len(keys))
}
