// Package place chooses the secret place for a round. Places come either from
// the embedded catalog or from a remote text generator guarded by a circuit
// breaker; the local catalog is always the fallback.
package place

import (
	"context"
	"log/slog"
	"strings"

	"github.com/playperu/findyourcity/internal/findyourcity"
	"github.com/playperu/findyourcity/internal/metrics"
)

type Mode string

const (
	ModeDefault Mode = ""
	ModeOffline Mode = "offline"
	ModeRemote  Mode = "remote"
)

// ParseMode normalizes a client-supplied mode. "ai" is accepted for
// ModeRemote; anything unrecognized is ModeDefault.
func ParseMode(s string) Mode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "offline":
		return ModeOffline
	case "remote", "ai":
		return ModeRemote
	default:
		return ModeDefault
	}
}

const FallbackRemoteUnavailable = "remote_unavailable"

type LocalSource interface {
	Generate() findyourcity.RoundBundle
}

type RemoteSource interface {
	Ready() bool
	Generate(ctx context.Context) (findyourcity.RoundBundle, error)
}

type Provider struct {
	local         LocalSource
	remote        RemoteSource
	remoteEnabled bool
	logger        *slog.Logger
}

// NewProvider combines the two sources. remoteEnabled controls whether
// ModeDefault tries the remote source at all; remote may be nil.
func NewProvider(local LocalSource, remote RemoteSource, remoteEnabled bool, logger *slog.Logger) *Provider {
	return &Provider{
		local:         local,
		remote:        remote,
		remoteEnabled: remoteEnabled,
		logger:        logger,
	}
}

// PickPlace always returns a bundle.
func (p *Provider) PickPlace(ctx context.Context, mode Mode) findyourcity.RoundBundle {
	switch mode {
	case ModeOffline:
		return p.local.Generate()
	case ModeRemote:
		return p.tryRemote(ctx, mode)
	default:
		if p.remoteEnabled && p.remote != nil && p.remote.Ready() {
			return p.tryRemote(ctx, mode)
		}
		return p.local.Generate()
	}
}

func (p *Provider) tryRemote(ctx context.Context, mode Mode) findyourcity.RoundBundle {
	if p.remote != nil {
		b, err := p.remote.Generate(ctx)
		if err == nil {
			return b
		}
		p.logger.Warn("falling back to local place", "mode", string(mode), "error", err)
	} else {
		p.logger.Warn("falling back to local place", "mode", string(mode), "error", "remote generation not configured")
	}

	metrics.RemoteFallbacksTotal.Inc()
	b := p.local.Generate()
	b.FallbackReason = FallbackRemoteUnavailable
	return b
}
