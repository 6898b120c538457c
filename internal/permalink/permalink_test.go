package permalink

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"
)

var asciiSlug = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		seed string
		want string
	}{
		{"simple title", "5 Coffee Tips", "5-coffee-tips"},
		{"punctuation and spaces", "  Hello,   World!!  ", "hello-world"},
		{"repeated separators", "a -- b __ c", "a-b-c"},
		{"accents transliterated", "Café Crème", "cafe-creme"},
		{"symbols only", "!!! ??? ...", Fallback},
		{"empty", "", Fallback},
		{"already normalized", "5-coffee-tips", "5-coffee-tips"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.seed)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.seed, got, tt.want)
			}
			if !asciiSlug.MatchString(got) {
				t.Errorf("Normalize(%q) = %q contains characters outside [a-z0-9-]", tt.seed, got)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	seeds := []string{
		"5 Coffee Tips",
		"Why Go's errors are values",
		"ÜBER cool: naïve résumé",
		"커피 맛있게 내리는 법",
		"___",
		strings.Repeat("long words ", 30),
	}
	for _, seed := range seeds {
		once := Normalize(seed)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q then %q", seed, once, twice)
		}
		uOnce := NormalizeUnicode(seed)
		if uTwice := NormalizeUnicode(uOnce); uTwice != uOnce {
			t.Errorf("NormalizeUnicode not idempotent for %q: %q then %q", seed, uOnce, uTwice)
		}
	}
}

func TestNormalize_Truncates(t *testing.T) {
	got := Normalize(strings.Repeat("coffee ", 40))
	if len(got) > maxBaseLength {
		t.Errorf("len = %d, want <= %d", len(got), maxBaseLength)
	}
	if strings.HasSuffix(got, "-") || !asciiSlug.MatchString(got) {
		t.Errorf("truncated slug %q is malformed", got)
	}
}

func TestNormalizeUnicode(t *testing.T) {
	tests := []struct {
		seed string
		want string
	}{
		{"커피 맛있게 내리는 법!", "커피-맛있게-내리는-법"},
		{"Go 1.25 Release", "go-1-25-release"},
		{"  ", Fallback},
	}
	for _, tt := range tests {
		if got := NormalizeUnicode(tt.seed); got != tt.want {
			t.Errorf("NormalizeUnicode(%q) = %q, want %q", tt.seed, got, tt.want)
		}
	}
}

func TestParseStrategy(t *testing.T) {
	for _, s := range []string{"timestamp", "COUNTER", " counter "} {
		if _, err := ParseStrategy(s); err != nil {
			t.Errorf("ParseStrategy(%q) error: %v", s, err)
		}
	}
	if _, err := ParseStrategy("uuid"); err == nil {
		t.Error("ParseStrategy(uuid) error = nil, want error")
	}
}

func TestGenerate_Timestamp(t *testing.T) {
	clock := time.UnixMilli(1_700_000_000_000)
	g := New(StrategyTimestamp, WithClock(func() time.Time { return clock }))

	probes := 0
	exists := func(context.Context, string) (bool, error) {
		probes++
		return true, nil
	}

	first, err := g.Generate(context.Background(), "5 Coffee Tips", exists)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if first != "5-coffee-tips-1700000000000000000" {
		t.Errorf("slug = %q", first)
	}
	if probes != 0 {
		t.Errorf("timestamp strategy made %d probes, want 0", probes)
	}

	clock = clock.Add(time.Microsecond)
	second, err := g.Generate(context.Background(), "5 Coffee Tips", exists)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if second == first {
		t.Errorf("two instants produced the same slug %q", first)
	}
	if !asciiSlug.MatchString(second) {
		t.Errorf("slug %q contains characters outside [a-z0-9-]", second)
	}
}

func TestGenerate_Counter(t *testing.T) {
	for _, n := range []int{0, 1, 2, 5} {
		t.Run(fmt.Sprintf("%d collisions", n), func(t *testing.T) {
			taken := map[string]bool{}
			if n > 0 {
				taken["coffee-tips"] = true
			}
			for i := 2; i <= n; i++ {
				taken[fmt.Sprintf("coffee-tips-%d", i)] = true
			}

			probes := 0
			exists := func(_ context.Context, slug string) (bool, error) {
				probes++
				return taken[slug], nil
			}

			got, err := New(StrategyCounter).Generate(context.Background(), "Coffee Tips", exists)
			if err != nil {
				t.Fatalf("Generate() error: %v", err)
			}

			want := "coffee-tips"
			if n > 0 {
				want = fmt.Sprintf("coffee-tips-%d", n+1)
			}
			if got != want {
				t.Errorf("slug = %q, want %q", got, want)
			}
			if probes != n+1 {
				t.Errorf("probes = %d, want %d", probes, n+1)
			}
		})
	}
}

func TestGenerate_CounterProbeError(t *testing.T) {
	boom := errors.New("db down")
	_, err := New(StrategyCounter).Generate(context.Background(), "x", func(context.Context, string) (bool, error) {
		return false, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Generate() error = %v, want wrapped probe error", err)
	}
}

func TestGenerate_CounterScriptPreserved(t *testing.T) {
	g := New(StrategyCounter, WithScriptPreserved())
	got, err := g.Generate(context.Background(), "커피 팁", func(_ context.Context, s string) (bool, error) {
		return s == "커피-팁", nil
	})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if got != "커피-팁-2" {
		t.Errorf("slug = %q, want %q", got, "커피-팁-2")
	}
}
