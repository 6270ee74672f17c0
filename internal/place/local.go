package place

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/playperu/findyourcity/internal/catalog"
	"github.com/playperu/findyourcity/internal/findyourcity"
)

var (
	firstNames = []string{"Ava", "Kai", "Mina", "Leo", "Zara", "Niko", "Ravi", "Mei", "Ilya", "Sofi"}
	lastNames  = []string{"Park", "Silva", "Okoye", "Nguyen", "Ivanov", "Haddad", "Singh", "Moretti", "Garcia", "O'Neil"}
)

const monologueTemplate = "Hello! I'm %s. My mornings usually involve %s, and I often grab %s on the go. " +
	"On weekends, I love exploring %s. People here care about %s and you'll hear plenty about it. " +
	"In the evenings, %s is my routine, ideally followed by %s with friends."

// LocalGenerator builds rounds from the static catalog. It never fails.
type LocalGenerator struct {
	catalog *catalog.Catalog

	mu  sync.Mutex
	rng *rand.Rand
}

// NewLocalGenerator returns a generator drawing from c. A nil src seeds from
// the clock.
func NewLocalGenerator(c *catalog.Catalog, src rand.Source) *LocalGenerator {
	if src == nil {
		now := uint64(time.Now().UnixNano())
		src = rand.NewPCG(now, now>>7^0x9e3779b97f4a7c15)
	}
	return &LocalGenerator{catalog: c, rng: rand.New(src)}
}

func (g *LocalGenerator) Generate() findyourcity.RoundBundle {
	g.mu.Lock()
	p := g.catalog.At(g.rng.IntN(g.catalog.Len()))
	// The catalog is shared; the bundle gets its own lists.
	p.Tidbits = slices.Clone(p.Tidbits)
	p.Cuisine = slices.Clone(p.Cuisine)
	p.Habits = slices.Clone(p.Habits)
	tidbits := g.sample(p.Tidbits, 2)
	cuisine := g.sample(p.Cuisine, 2)
	habits := g.sample(p.Habits, 2)
	character := firstNames[g.rng.IntN(len(firstNames))] + " " + lastNames[g.rng.IntN(len(lastNames))]
	g.mu.Unlock()

	monologue := fmt.Sprintf(monologueTemplate,
		character,
		slot(habits, 0), slot(cuisine, 0),
		slot(tidbits, 0), slot(tidbits, 1),
		slot(habits, 1), slot(cuisine, 1),
	)

	return findyourcity.RoundBundle{
		Place:     p,
		Character: character,
		Monologue: monologue,
		Hints: findyourcity.Hints{
			Cuisine: cuisine,
			Habits:  habits,
			Vibes:   tidbits,
		},
		MapDefault:  findyourcity.DefaultMap,
		AIGenerated: false,
	}
}

// sample picks min(n, len(items)) distinct items. Callers hold g.mu.
func (g *LocalGenerator) sample(items []string, n int) []string {
	n = min(n, len(items))
	out := make([]string, 0, n)
	for _, i := range g.rng.Perm(len(items))[:n] {
		out = append(out, items[i])
	}
	return out
}

// slot returns items[i], reusing the first item when the list is shorter.
func slot(items []string, i int) string {
	if i < len(items) {
		return items[i]
	}
	return items[0]
}
