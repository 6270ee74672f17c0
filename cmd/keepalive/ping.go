package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const userAgent = "FindYourCityKeepAlive/1.0 (+render-cron)"

var errAllAttemptsFailed = errors.New("giving up after retries")

type pingConfig struct {
	URL        string        `env:"PING_TARGET_URL" envDefault:"http://localhost:8000/api/health"`
	Timeout    time.Duration `env:"PING_TIMEOUT" envDefault:"15s"`
	Retries    int           `env:"PING_RETRIES" envDefault:"3"`
	RetryDelay time.Duration `env:"PING_RETRY_DELAY" envDefault:"3s"`
}

func newRootCmd() *cobra.Command {
	_ = godotenv.Load()
	cfg, err := env.ParseAs[pingConfig]()

	cmd := &cobra.Command{
		Use:           "keepalive",
		Short:         "Ping the FindYourCity health endpoint with retries",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err != nil {
				return fmt.Errorf("parsing environment: %w", err)
			}
			if cfg.Retries < 1 {
				cfg.Retries = 1
			}
			logger := slog.New(slog.NewTextHandler(cmd.OutOrStdout(), nil))
			p := &pinger{client: &http.Client{Timeout: cfg.Timeout}, logger: logger, sleep: sleepCtx}
			return p.run(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.URL, "url", cfg.URL, "health endpoint to ping (PING_TARGET_URL)")
	flags.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "per-request timeout (PING_TIMEOUT)")
	flags.IntVar(&cfg.Retries, "retries", cfg.Retries, "number of attempts (PING_RETRIES)")
	flags.DurationVar(&cfg.RetryDelay, "retry-delay", cfg.RetryDelay, "pause between attempts (PING_RETRY_DELAY)")

	return cmd
}

type pinger struct {
	client *http.Client
	logger *slog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

func (p *pinger) run(ctx context.Context, cfg pingConfig) error {
	p.logger.Info("keep-alive", "target", cfg.URL, "retries", cfg.Retries, "timeout", cfg.Timeout)

	for attempt := 1; attempt <= cfg.Retries; attempt++ {
		status, err := p.once(ctx, cfg.URL)
		if err == nil {
			p.logger.Info("keep-alive succeeded", "attempt", attempt, "status", status)
			return nil
		}
		p.logger.Warn("keep-alive failed", "attempt", attempt, "status", status, "error", err)

		if attempt < cfg.Retries {
			if err := p.sleep(ctx, cfg.RetryDelay); err != nil {
				return err
			}
		}
	}

	p.logger.Error("keep-alive giving up", "attempts", cfg.Retries)
	return errAllAttemptsFailed
}

// once performs a single GET and reports the status code. Any non-2xx
// response is an error.
func (p *pinger) once(ctx context.Context, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return resp.StatusCode, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
