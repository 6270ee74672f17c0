package place

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/playperu/findyourcity/internal/findyourcity"
	"github.com/playperu/findyourcity/internal/geo"
	"github.com/playperu/findyourcity/internal/metrics"
	"github.com/playperu/findyourcity/internal/textgen"
)

// ErrUnavailable means no remote place could be produced for this request.
var ErrUnavailable = errors.New("remote place generation unavailable")

const (
	maxAvoid       = 12
	maxHintsPerKey = 5
	maxHintsTotal  = 5
	maxBackoff     = 5 * time.Second
)

const (
	temperature     = 1.1
	maxTokens       = 240
	presencePenalty = 0.2
)

// TextGenerator produces raw completion text for a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, req textgen.Request) (string, error)
}

type RemoteConfig struct {
	Model       string
	MaxAttempts int
	Timeout     time.Duration
}

func DefaultRemoteConfig() RemoteConfig {
	return RemoteConfig{Model: "gpt-4o-mini", MaxAttempts: 4, Timeout: 20 * time.Second}
}

// RemoteGenerator asks a TextGenerator for a novel place, retrying on bad
// output and backing off through its Breaker on hard failures.
type RemoteGenerator struct {
	client   TextGenerator
	breaker  *Breaker
	recent   *RecencyWindow
	redactor *Redactor
	cfg      RemoteConfig
	logger   *slog.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewRemoteGenerator wires a generator. A nil client means no credential is
// configured and the generator is never ready.
func NewRemoteGenerator(
	client TextGenerator,
	breaker *Breaker,
	recent *RecencyWindow,
	redactor *Redactor,
	cfg RemoteConfig,
	logger *slog.Logger,
) *RemoteGenerator {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	return &RemoteGenerator{
		client:   client,
		breaker:  breaker,
		recent:   recent,
		redactor: redactor,
		cfg:      cfg,
		logger:   logger,
		sleep:    sleepCtx,
	}
}

// Ready reports whether a remote attempt would be made right now.
func (g *RemoteGenerator) Ready() bool {
	return g.client != nil && g.breaker.Allow()
}

func (g *RemoteGenerator) Generate(ctx context.Context) (findyourcity.RoundBundle, error) {
	if !g.Ready() {
		return findyourcity.RoundBundle{}, ErrUnavailable
	}

	prompt := g.prompt()
	for attempt := range g.cfg.MaxAttempts {
		if !g.breaker.Allow() {
			return findyourcity.RoundBundle{}, ErrUnavailable
		}

		raw, err := g.call(ctx, prompt)
		if err != nil {
			if ctx.Err() != nil {
				return findyourcity.RoundBundle{}, fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
			}
			class := textgen.ClassOf(err)
			if g.breaker.TripFor(class) {
				metrics.RemoteAttemptsTotal.WithLabelValues("hard_failure").Inc()
				g.logger.Error("remote generation disabled", "class", class.String(), "error", err)
				return findyourcity.RoundBundle{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
			}
			metrics.RemoteAttemptsTotal.WithLabelValues("transient").Inc()
			g.logger.Warn("remote generation failed", "attempt", attempt+1, "error", err)
			if attempt+1 < g.cfg.MaxAttempts {
				if err := g.sleep(ctx, backoff(attempt)); err != nil {
					return findyourcity.RoundBundle{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
				}
			}
			continue
		}

		p, err := parsePlace(stripFences(raw))
		if err != nil {
			g.softFailure("invalid_output", attempt, err)
			continue
		}

		if !g.recent.Add(p.place.Key(), p.place.Region) {
			prompt += fmt.Sprintf("\n- IMPORTANT: Do not choose %s, %s.", p.place.City, p.place.Country)
			g.softFailure("repeat", attempt, fmt.Errorf("recently used: %s, %s", p.place.City, p.place.Country))
			continue
		}

		g.breaker.RecordSuccess()
		metrics.RemoteAttemptsTotal.WithLabelValues("accepted").Inc()
		g.logger.Info("remote place accepted", "attempt", attempt+1, "region", p.place.Region)

		return findyourcity.RoundBundle{
			Place:       p.place,
			Monologue:   g.redactor.Redact(p.monologue, p.place.City, p.place.Country),
			Hints:       p.hints,
			MapDefault:  findyourcity.DefaultMap,
			AIGenerated: true,
		}, nil
	}

	if g.breaker.Allow() {
		g.breaker.Trip(g.breaker.cfg.GenericCooldown, "exhausted_attempts")
	}
	return findyourcity.RoundBundle{}, ErrUnavailable
}

func (g *RemoteGenerator) call(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		metrics.RemoteDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	}()

	return g.client.Generate(ctx, textgen.Request{
		Model:           g.cfg.Model,
		Prompt:          prompt,
		Temperature:     temperature,
		MaxTokens:       maxTokens,
		PresencePenalty: presencePenalty,
	})
}

func (g *RemoteGenerator) softFailure(reason string, attempt int, err error) {
	metrics.RemoteAttemptsTotal.WithLabelValues(reason).Inc()
	tripped := g.breaker.RecordSoftFailure(reason)
	g.logger.Warn("remote output rejected",
		"reason", reason,
		"attempt", attempt+1,
		"tripped", tripped,
		"error", err,
	)
}

func (g *RemoteGenerator) prompt() string {
	title := cases.Title(language.Und)

	keys := g.recent.Keys()
	if len(keys) > maxAvoid {
		keys = keys[len(keys)-maxAvoid:]
	}
	avoid := make([]string, 0, len(keys))
	for _, k := range keys {
		city, country, _ := strings.Cut(k, "|")
		avoid = append(avoid, fmt.Sprintf("%s (%s)", title.String(city), title.String(country)))
	}

	return buildPrompt(avoid, title.String(g.recent.LastRegion()))
}

func buildPrompt(avoid []string, region string) string {
	var b strings.Builder
	b.WriteString("You are a geography game narrator. Generate ONE round as STRICT JSON (no prose, no backticks).\n")
	b.WriteString("- Pick any real-world city (not necessarily famous).")
	if region != "" {
		fmt.Fprintf(&b, "\n- Prefer a city in a region different from: %s (variety requested).", region)
	}
	if len(avoid) > 0 {
		fmt.Fprintf(&b, "\n- Do NOT pick any of these recent answers: %s", strings.Join(avoid, ", "))
	}
	b.WriteString("\n- Provide accurate lat and lon.\n")
	b.WriteString("- Write a 2-sentence DAILY-ROUTINE description addressing the player in SECOND PERSON (start with 'You ...'). ")
	b.WriteString("It must not include names, 'I', or self-introductions. Hints only; do NOT name the city/country.\n")
	b.WriteString("- Include keys: city, country, lat, lon, region, character, monologue, hints {cuisine, habits, vibes}.\n")
	b.WriteString("- Each hints list up to 2–3 items; TOTAL hints across all categories ≤ 5.\n")
	b.WriteString("- Output JSON ONLY.")
	return b.String()
}

var fenceRe = regexp.MustCompile("(?is)^```(?:json)?\\s*|\\s*```$")

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimSpace(fenceRe.ReplaceAllString(s, ""))
	}
	return s
}

type wireHints struct {
	Cuisine []string `json:"cuisine"`
	Habits  []string `json:"habits"`
	Vibes   []string `json:"vibes"`
}

type wirePlace struct {
	City      *string    `json:"city"`
	Country   *string    `json:"country"`
	Lat       *float64   `json:"lat"`
	Lon       *float64   `json:"lon"`
	Region    *string    `json:"region"`
	Monologue *string    `json:"monologue"`
	Hints     *wireHints `json:"hints"`
}

type parsedPlace struct {
	place     findyourcity.Place
	monologue string
	hints     findyourcity.Hints
}

// parsePlace validates generator output. Character is accepted but unused.
func parsePlace(raw string) (parsedPlace, error) {
	var w wirePlace
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return parsedPlace{}, fmt.Errorf("decoding output: %w", err)
	}

	switch {
	case w.City == nil, w.Country == nil, w.Lat == nil, w.Lon == nil,
		w.Region == nil, w.Monologue == nil, w.Hints == nil:
		return parsedPlace{}, errors.New("missing required key")
	case strings.TrimSpace(*w.City) == "" || strings.TrimSpace(*w.Country) == "":
		return parsedPlace{}, errors.New("empty city or country")
	case !geo.ValidLat(*w.Lat):
		return parsedPlace{}, fmt.Errorf("lat out of range: %v", *w.Lat)
	case !geo.ValidLon(*w.Lon):
		return parsedPlace{}, fmt.Errorf("lon out of range: %v", *w.Lon)
	}

	cuisine, habits, vibes := cleanHints(w.Hints.Cuisine), cleanHints(w.Hints.Habits), cleanHints(w.Hints.Vibes)
	if len(cuisine) > maxHintsPerKey || len(habits) > maxHintsPerKey || len(vibes) > maxHintsPerKey {
		return parsedPlace{}, fmt.Errorf("hint list longer than %d", maxHintsPerKey)
	}
	hints := capHints(findyourcity.Hints{Cuisine: cuisine, Habits: habits, Vibes: vibes}, maxHintsTotal)

	return parsedPlace{
		place: findyourcity.Place{
			City:    strings.TrimSpace(*w.City),
			Country: strings.TrimSpace(*w.Country),
			Lat:     *w.Lat,
			Lon:     *w.Lon,
			Region:  strings.TrimSpace(*w.Region),
			Tidbits: hints.Vibes,
			Cuisine: hints.Cuisine,
			Habits:  hints.Habits,
		},
		monologue: strings.TrimSpace(*w.Monologue),
		hints:     hints,
	}, nil
}

func cleanHints(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// capHints keeps at most limit items in total, taking one from each list in
// turn so no category is starved.
func capHints(h findyourcity.Hints, limit int) findyourcity.Hints {
	if h.Len() <= limit {
		return h
	}
	lists := [3][]string{h.Cuisine, h.Habits, h.Vibes}
	var keep [3]int
	for n, i := 0, 0; n < limit; i++ {
		if i >= maxHintsPerKey {
			break
		}
		for j := range lists {
			if n < limit && i < len(lists[j]) {
				keep[j]++
				n++
			}
		}
	}
	return findyourcity.Hints{
		Cuisine: lists[0][:keep[0]],
		Habits:  lists[1][:keep[1]],
		Vibes:   lists[2][:keep[2]],
	}
}

func backoff(attempt int) time.Duration {
	return min(time.Duration(2+attempt)*time.Second, maxBackoff)
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
