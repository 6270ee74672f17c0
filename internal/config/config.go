package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr    string     `env:"HTTP_ADDR" envDefault:":8000"`
	LogLevel    slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	SPADir      string     `env:"SPA_DIR" envDefault:"../web/dist"`
	CORSOrigins []string   `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`

	AICityMode    Flag          `env:"AI_CITY_MODE" envDefault:"0"`
	OpenAIKey     string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string        `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com"`
	AIModel       string        `env:"AI_MODEL" envDefault:"gpt-4o-mini"`
	AITimeout     time.Duration `env:"AI_TIMEOUT" envDefault:"20s"`
	AIRecentBlock int           `env:"AI_RECENT_BLOCK" envDefault:"10"`
	AIMaxAttempts int           `env:"AI_MAX_ATTEMPTS" envDefault:"4"`

	CBFailLimit         int           `env:"CB_FAIL_LIMIT" envDefault:"3"`
	CBCooldownGeneric   time.Duration `env:"CB_COOLDOWN_GENERIC" envDefault:"600s"`
	CBCooldownRateLimit time.Duration `env:"CB_COOLDOWN_RATELIMIT" envDefault:"900s"`
	CBCooldownQuota     time.Duration `env:"CB_COOLDOWN_QUOTA" envDefault:"3600s"`

	RoundTTL           time.Duration `env:"ROUND_TTL" envDefault:"20m"`
	RoundSweepInterval time.Duration `env:"ROUND_SWEEP_INTERVAL" envDefault:"1m"`
	// RoundStore selects memory, sqlite or redis. Only redis keeps rounds
	// across restarts, and only when asked for; the default stays in-process.
	RoundStore         string        `env:"ROUND_STORE" envDefault:"memory"`
	DBPath             string        `env:"DB_PATH" envDefault:":memory:"`
	RedisURL           string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
}

// Flag is a boolean that also accepts "yes", matching how the deploy
// environment spells it.
type Flag bool

func (f *Flag) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "1", "true", "yes":
		*f = true
	default:
		*f = false
	}
	return nil
}

// Load reads a .env file from the working directory when present and then
// parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	switch c.RoundStore {
	case "memory", "sqlite", "redis":
	default:
		errs = append(errs, fmt.Errorf("ROUND_STORE must be memory, sqlite or redis, got %q", c.RoundStore))
	}
	if c.AIMaxAttempts < 1 {
		errs = append(errs, errors.New("AI_MAX_ATTEMPTS must be at least 1"))
	}
	if c.AIRecentBlock < 0 {
		errs = append(errs, errors.New("AI_RECENT_BLOCK must not be negative"))
	}
	if c.CBFailLimit < 1 {
		errs = append(errs, errors.New("CB_FAIL_LIMIT must be at least 1"))
	}
	if c.AITimeout <= 0 || c.RoundTTL <= 0 {
		errs = append(errs, errors.New("AI_TIMEOUT and ROUND_TTL must be positive"))
	}
	return errors.Join(errs...)
}

// RemoteEnabled reports whether rounds without an explicit mode should try
// the remote generator.
func (c *Config) RemoteEnabled() bool {
	return bool(c.AICityMode) && c.OpenAIKey != ""
}
