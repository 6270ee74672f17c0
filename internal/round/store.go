// Package round manages the lifecycle of a game round: it picks a place,
// remembers the secret coordinate until the round expires and scores
// guesses against it.
package round

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/playperu/findyourcity/internal/findyourcity"
)

// ErrNotFound is returned for unknown and expired rounds alike.
var ErrNotFound = errors.New("round not found or expired")

const DefaultTTL = 20 * time.Minute

// Entry is the stored secret of a round.
type Entry struct {
	Lat       float64
	Lon       float64
	ExpiresAt time.Time
	Place     findyourcity.Place
}

func (e Entry) expired(now time.Time) bool { return now.After(e.ExpiresAt) }

type Store interface {
	Create(ctx context.Context, lat, lon float64, meta findyourcity.Place) (string, error)
	Answer(ctx context.Context, id string) (Entry, error)
	Evict(ctx context.Context, id string) error
	Sweep(ctx context.Context) (int, error)
}

// newID returns 32 lowercase hex characters from a random UUID.
func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// MemoryStore keeps rounds in a map for the life of the process.
type MemoryStore struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]Entry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{ttl: ttl, now: time.Now, entries: make(map[string]Entry)}
}

func (s *MemoryStore) Create(_ context.Context, lat, lon float64, meta findyourcity.Place) (string, error) {
	id := newID()
	s.mu.Lock()
	s.entries[id] = Entry{Lat: lat, Lon: lon, ExpiresAt: s.now().Add(s.ttl), Place: meta}
	s.mu.Unlock()
	return id, nil
}

// Answer returns the entry for id. Reads do not consume the round.
func (s *MemoryStore) Answer(_ context.Context, id string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return Entry{}, ErrNotFound
	}
	if e.expired(s.now()) {
		delete(s.entries, id)
		return Entry{}, ErrNotFound
	}
	return e, nil
}

func (s *MemoryStore) Evict(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Sweep(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 0
	for id, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, id)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
