// Package permalink derives URL-safe, per-tenant unique slugs for new posts.
//
// Two strategies exist. Timestamp appends the current Unix time in
// nanoseconds and needs no store round-trip. Counter probes the store and
// appends the first free numeric suffix; it is exact but not safe against
// concurrent runs for the same tenant. A deployment uses one of them.
package permalink

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/gosimple/slug"
)

// Fallback is used when a seed normalizes to nothing.
const Fallback = "post"

// maxBaseLength bounds the normalized part of a slug, before any suffix.
const maxBaseLength = 80

// Strategy selects how uniqueness is obtained.
type Strategy string

const (
	StrategyTimestamp Strategy = "timestamp"
	StrategyCounter   Strategy = "counter"
)

// ParseStrategy validates a configured strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyTimestamp:
		return StrategyTimestamp, nil
	case StrategyCounter:
		return StrategyCounter, nil
	default:
		return "", fmt.Errorf("unknown slug strategy %q (want %q or %q)", s, StrategyTimestamp, StrategyCounter)
	}
}

// ExistsFunc reports whether slug is already taken within the tenant.
type ExistsFunc func(ctx context.Context, slug string) (bool, error)

// Generator produces unique slugs with one strategy.
type Generator struct {
	strategy       Strategy
	preserveScript bool
	now            func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock replaces time.Now for the timestamp strategy.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithScriptPreserved keeps non-Latin letters instead of transliterating
// them to ASCII.
func WithScriptPreserved() Option {
	return func(g *Generator) { g.preserveScript = true }
}

// New creates a Generator for the given strategy.
func New(strategy Strategy, opts ...Option) *Generator {
	g := &Generator{strategy: strategy, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Strategy returns the generator's uniqueness strategy.
func (g *Generator) Strategy() Strategy { return g.strategy }

// Generate returns a slug for seed that is unique for the tenant behind
// exists. The timestamp strategy never calls exists.
func (g *Generator) Generate(ctx context.Context, seed string, exists ExistsFunc) (string, error) {
	base := Normalize(seed)
	if g.preserveScript {
		base = NormalizeUnicode(seed)
	}

	switch g.strategy {
	case StrategyCounter:
		return counterSlug(ctx, base, exists)
	default:
		return base + "-" + strconv.FormatInt(g.now().UnixNano(), 10), nil
	}
}

// counterSlug probes base, then base-2, base-3 and so on until a free slug is
// found. The bare base counts as the first occupant, so N taken slugs yield
// the suffix N+1 after exactly N+1 probes.
func counterSlug(ctx context.Context, base string, exists ExistsFunc) (string, error) {
	candidate := base
	for n := 2; ; n++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("checking slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(n)
	}
}

// Normalize lowercases and transliterates seed to ASCII, keeps only [a-z0-9],
// and joins the words with single hyphens. It returns Fallback when nothing
// is left. Normalize is idempotent.
func Normalize(seed string) string {
	return finish(sanitize(slug.Make(seed), isASCIIWordRune))
}

// NormalizeUnicode is like Normalize but keeps letters of any script.
func NormalizeUnicode(seed string) string {
	return finish(sanitize(strings.ToLower(seed), isUnicodeWordRune))
}

func isASCIIWordRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

func isUnicodeWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// sanitize replaces every run of runes outside keep with a single hyphen and
// trims hyphens from both ends.
func sanitize(s string, keep func(rune) bool) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range s {
		if !keep(r) {
			pendingHyphen = b.Len() > 0
			continue
		}
		if pendingHyphen {
			b.WriteByte('-')
			pendingHyphen = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

func finish(s string) string {
	s = truncate(s, maxBaseLength)
	if s == "" {
		return Fallback
	}
	return s
}

// truncate cuts s to at most limit bytes, preferring a hyphen boundary and
// never splitting a rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	s = s[:cut]
	if i := strings.LastIndexByte(s, '-'); i > limit/2 {
		s = s[:i]
	}
	return strings.Trim(s, "-")
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
