package round

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playperu/findyourcity/internal/database"
	"github.com/playperu/findyourcity/internal/findyourcity"
)

var lima = findyourcity.Place{
	City:    "Lima",
	Country: "Peru",
	Lat:     -12.0464,
	Lon:     -77.0428,
	Region:  "South America",
	Tidbits: []string{"the Malecón"},
	Cuisine: []string{"ceviche"},
	Habits:  []string{"combi rides"},
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

type storeFactory func(t *testing.T, ttl time.Duration, c *clock) Store

func memoryFactory(t *testing.T, ttl time.Duration, c *clock) Store {
	s := NewMemoryStore(ttl)
	s.now = c.now
	return s
}

func sqlFactory(t *testing.T, ttl time.Duration, c *clock) Store {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s, err := NewSQLStore(ctx, db, ttl)
	require.NoError(t, err)
	s.now = c.now
	return s
}

func redisFactory(t *testing.T, ttl time.Duration, c *clock) Store {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	s := NewRedisStore(rdb, ttl)
	s.now = c.now
	return s
}

var factories = map[string]storeFactory{
	"memory": memoryFactory,
	"sqlite": sqlFactory,
	"redis":  redisFactory,
}

var hexID = regexp.MustCompile(`^[0-9a-f]{32}$`)

func TestStoreCreateAndAnswer(t *testing.T) {
	for name, newStore := range factories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			c := &clock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
			s := newStore(t, 20*time.Minute, c)

			id, err := s.Create(ctx, lima.Lat, lima.Lon, lima)
			require.NoError(t, err)
			assert.Regexp(t, hexID, id)

			e, err := s.Answer(ctx, id)
			require.NoError(t, err)
			assert.InDelta(t, -12.0464, e.Lat, 1e-9)
			assert.InDelta(t, -77.0428, e.Lon, 1e-9)
			assert.Equal(t, lima, e.Place)
			assert.True(t, c.t.Add(20*time.Minute).Equal(e.ExpiresAt))

			// Reads do not consume the round.
			_, err = s.Answer(ctx, id)
			require.NoError(t, err)

			other, err := s.Create(ctx, 0, 0, lima)
			require.NoError(t, err)
			assert.NotEqual(t, id, other)
		})
	}
}

func TestStoreUnknownID(t *testing.T) {
	for name, newStore := range factories {
		t.Run(name, func(t *testing.T) {
			c := &clock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
			s := newStore(t, time.Minute, c)

			_, err := s.Answer(context.Background(), "does-not-exist")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStoreExpiry(t *testing.T) {
	for name, newStore := range factories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			c := &clock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
			s := newStore(t, 20*time.Minute, c)

			id, err := s.Create(ctx, lima.Lat, lima.Lon, lima)
			require.NoError(t, err)

			c.advance(20 * time.Minute)
			_, err = s.Answer(ctx, id)
			require.NoError(t, err, "still valid at the expiry instant")

			c.advance(time.Second)
			_, err = s.Answer(ctx, id)
			assert.ErrorIs(t, err, ErrNotFound)

			// The expired entry was evicted on lookup.
			c.t = c.t.Add(-time.Hour)
			_, err = s.Answer(ctx, id)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStoreEvict(t *testing.T) {
	for name, newStore := range factories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			c := &clock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
			s := newStore(t, time.Minute, c)

			id, err := s.Create(ctx, lima.Lat, lima.Lon, lima)
			require.NoError(t, err)

			require.NoError(t, s.Evict(ctx, id))
			require.NoError(t, s.Evict(ctx, id))
			_, err = s.Answer(ctx, id)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStoreSweep(t *testing.T) {
	for name, newStore := range factories {
		if name == "redis" {
			continue
		}
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			c := &clock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
			s := newStore(t, time.Minute, c)

			for range 3 {
				_, err := s.Create(ctx, 1, 2, lima)
				require.NoError(t, err)
			}
			c.advance(2 * time.Minute)
			fresh, err := s.Create(ctx, 1, 2, lima)
			require.NoError(t, err)

			n, err := s.Sweep(ctx)
			require.NoError(t, err)
			assert.Equal(t, 3, n)

			n, err = s.Sweep(ctx)
			require.NoError(t, err)
			assert.Equal(t, 0, n)

			_, err = s.Answer(ctx, fresh)
			assert.NoError(t, err)
		})
	}
}

func TestRedisStoreKeyExpiry(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	s := NewRedisStore(rdb, time.Minute)
	id, err := s.Create(ctx, lima.Lat, lima.Lon, lima)
	require.NoError(t, err)
	assert.True(t, mr.Exists(redisKeyPrefix+id))
	assert.Equal(t, time.Minute+time.Second, mr.TTL(redisKeyPrefix+id))

	n, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	mr.FastForward(2 * time.Minute)
	_, err = s.Answer(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreCorruptValue(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	require.NoError(t, mr.Set(redisKeyPrefix+"bad", "not json"))
	_, err := NewRedisStore(rdb, time.Minute).Answer(context.Background(), "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestOpenRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := OpenRedis(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	rdb.Close()

	_, err = OpenRedis(context.Background(), "not-a-url")
	assert.Error(t, err)
}

func TestMemoryStoreDefaultTTL(t *testing.T) {
	s := NewMemoryStore(0)
	assert.Equal(t, DefaultTTL, s.ttl)
	assert.Equal(t, 0, s.Len())
}
