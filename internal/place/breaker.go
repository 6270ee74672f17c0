package place

import (
	"sync"
	"time"

	"github.com/playperu/findyourcity/internal/metrics"
	"github.com/playperu/findyourcity/internal/textgen"
)

type BreakerConfig struct {
	FailLimit         int
	GenericCooldown   time.Duration
	RateLimitCooldown time.Duration
	QuotaCooldown     time.Duration
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailLimit:         3,
		GenericCooldown:   600 * time.Second,
		RateLimitCooldown: 900 * time.Second,
		QuotaCooldown:     3600 * time.Second,
	}
}

// BreakerState is a point-in-time view of a Breaker.
type BreakerState struct {
	DisabledUntil time.Time
	Failures      int
	Open          bool
}

// Breaker disables remote generation for a cooldown after a hard failure or
// FailLimit consecutive soft failures.
type Breaker struct {
	cfg BreakerConfig
	now func() time.Time

	mu            sync.Mutex
	disabledUntil time.Time
	failures      int
}

func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.FailLimit <= 0 {
		cfg.FailLimit = 1
	}
	return &Breaker{cfg: cfg, now: time.Now}
}

// Allow reports whether a remote call may be attempted now.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.now().Before(b.disabledUntil)
}

func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	b.failures = 0
	b.mu.Unlock()
}

// RecordSoftFailure counts a parse, validation or repeat failure and trips
// the generic cooldown once FailLimit is reached. It reports whether this
// call tripped the breaker.
func (b *Breaker) RecordSoftFailure(reason string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	if b.failures < b.cfg.FailLimit {
		return false
	}
	b.tripLocked(b.cfg.GenericCooldown, reason)
	return true
}

// Trip opens the breaker for cooldown and clears the failure count.
func (b *Breaker) Trip(cooldown time.Duration, reason string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tripLocked(cooldown, reason)
}

// TripFor opens the breaker with the cooldown matching a hard failure class.
// Transient failures do not trip and TripFor reports false for them.
func (b *Breaker) TripFor(class textgen.Class) bool {
	switch class {
	case textgen.ClassAuth, textgen.ClassQuota:
		b.Trip(b.cfg.QuotaCooldown, class.String())
	case textgen.ClassRateLimit:
		b.Trip(b.cfg.RateLimitCooldown, class.String())
	default:
		return false
	}
	return true
}

func (b *Breaker) tripLocked(cooldown time.Duration, reason string) {
	until := b.now().Add(cooldown)
	if until.After(b.disabledUntil) {
		b.disabledUntil = until
	}
	b.failures = 0
	metrics.BreakerTripsTotal.WithLabelValues(reason).Inc()
}

func (b *Breaker) Snapshot() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BreakerState{
		DisabledUntil: b.disabledUntil,
		Failures:      b.failures,
		Open:          b.now().Before(b.disabledUntil),
	}
}
