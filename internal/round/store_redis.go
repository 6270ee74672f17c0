package round

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/playperu/findyourcity/internal/findyourcity"
)

const redisKeyPrefix = "findyourcity:round:"

// RedisStore keeps each round under its own key. Redis expires keys on its
// own clock, so Sweep has nothing to do.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
	now func() time.Time
}

type redisEntry struct {
	Lat       float64            `json:"lat"`
	Lon       float64            `json:"lon"`
	ExpiresAt int64              `json:"expires_at"`
	Place     findyourcity.Place `json:"place"`
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl, now: time.Now}
}

func (s *RedisStore) Create(ctx context.Context, lat, lon float64, meta findyourcity.Place) (string, error) {
	id := newID()
	data, err := json.Marshal(redisEntry{
		Lat:       lat,
		Lon:       lon,
		ExpiresAt: s.now().Add(s.ttl).UnixMilli(),
		Place:     meta,
	})
	if err != nil {
		return "", fmt.Errorf("encoding round: %w", err)
	}

	// One extra second so the key outlives the in-process expiry check.
	if err := s.rdb.Set(ctx, redisKeyPrefix+id, data, s.ttl+time.Second).Err(); err != nil {
		return "", fmt.Errorf("storing round: %w", err)
	}
	return id, nil
}

func (s *RedisStore) Answer(ctx context.Context, id string) (Entry, error) {
	data, err := s.rdb.Get(ctx, redisKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("loading round: %w", err)
	}

	var re redisEntry
	if err := json.Unmarshal(data, &re); err != nil {
		return Entry{}, fmt.Errorf("decoding round: %w", err)
	}

	e := Entry{Lat: re.Lat, Lon: re.Lon, ExpiresAt: time.UnixMilli(re.ExpiresAt), Place: re.Place}
	if e.expired(s.now()) {
		if err := s.Evict(ctx, id); err != nil {
			return Entry{}, err
		}
		return Entry{}, ErrNotFound
	}
	return e, nil
}

func (s *RedisStore) Evict(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("deleting round: %w", err)
	}
	return nil
}

func (s *RedisStore) Sweep(context.Context) (int, error) { return 0, nil }

// OpenRedis parses a redis:// URL and verifies the server answers.
func OpenRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}
