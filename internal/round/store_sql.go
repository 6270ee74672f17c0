package round

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/playperu/findyourcity/internal/findyourcity"
)

// SQLStore keeps rounds in a libSQL table with the place as JSONB.
type SQLStore struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

func NewSQLStore(ctx context.Context, db *sql.DB, ttl time.Duration) (*SQLStore, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	for _, ddl := range []string{
		`CREATE TABLE IF NOT EXISTS rounds (
			id         TEXT PRIMARY KEY,
			lat        REAL NOT NULL,
			lon        REAL NOT NULL,
			expires_at INTEGER NOT NULL,
			place      JSONB NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS rounds_expires_at ON rounds (expires_at)`,
	} {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return nil, fmt.Errorf("creating table: %w", err)
		}
	}
	return &SQLStore{db: db, ttl: ttl, now: time.Now}, nil
}

func (s *SQLStore) Create(ctx context.Context, lat, lon float64, meta findyourcity.Place) (string, error) {
	data, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("encoding place: %w", err)
	}

	id := newID()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO rounds (id, lat, lon, expires_at, place) VALUES (?, ?, ?, ?, jsonb(?))`,
		id, lat, lon, s.now().Add(s.ttl).UnixMilli(), string(data),
	)
	if err != nil {
		return "", fmt.Errorf("inserting round: %w", err)
	}
	return id, nil
}

func (s *SQLStore) Answer(ctx context.Context, id string) (Entry, error) {
	var (
		e         Entry
		expiresAt int64
		place     string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT lat, lon, expires_at, json(place) FROM rounds WHERE id = ?`, id,
	).Scan(&e.Lat, &e.Lon, &expiresAt, &place)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("querying round: %w", err)
	}

	e.ExpiresAt = time.UnixMilli(expiresAt)
	if e.expired(s.now()) {
		if err := s.Evict(ctx, id); err != nil {
			return Entry{}, err
		}
		return Entry{}, ErrNotFound
	}

	if err := json.Unmarshal([]byte(place), &e.Place); err != nil {
		return Entry{}, fmt.Errorf("decoding place: %w", err)
	}
	return e, nil
}

func (s *SQLStore) Evict(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM rounds WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting round: %w", err)
	}
	return nil
}

func (s *SQLStore) Sweep(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM rounds WHERE expires_at < ?`, s.now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("sweeping rounds: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sweeping rounds: %w", err)
	}
	return int(n), nil
}
