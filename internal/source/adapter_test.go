package source

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/crisiswatch/crisiswatch/internal/model"
)

func TestStanceFromRating(t *testing.T) {
	tests := []struct {
		rating string
		want   model.Stance
	}{
		{"False", model.StanceRefutes},
		{"Pants on Fire!", model.StanceRefutes},
		{"Misleading", model.StanceRefutes},
		{"Debunked", model.StanceRefutes},
		{"True", model.StanceSupports},
		{"Mostly True", model.StanceSupports},
		{"Accurate", model.StanceSupports},
		{"Mixture", model.StanceNeutral},
		{"Half True", model.StanceNeutral},
		{"", model.StanceUnknown},
		{"Unrated", model.StanceUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.rating, func(t *testing.T) {
			if got := stanceFromRating(tt.rating); got != tt.want {
				t.Errorf("stanceFromRating(%q) = %q, want %q", tt.rating, got, tt.want)
			}
		})
	}
}

func TestStanceFromRatingFalsePrecedence(t *testing.T) {
	// "Mostly False" contains both "false" and no "true"; orderings that
	// check refuting markers first must win for combined ratings too.
	if got := stanceFromRating("Mostly False"); got != model.StanceRefutes {
		t.Errorf("stanceFromRating(Mostly False) = %q, want refutes", got)
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		input   string
		wantNil bool
		year    int
	}{
		{"2025-03-14T09:26:53Z", false, 2025},
		{"2025-03-14", false, 2025},
		{"", true, 0},
		{"not a date", true, 0},
	}

	for _, tt := range tests {
		got := parseTime(tt.input)
		if tt.wantNil {
			if got != nil {
				t.Errorf("parseTime(%q) = %v, want nil", tt.input, got)
			}
			continue
		}
		if got == nil {
			t.Fatalf("parseTime(%q) = nil, want a time", tt.input)
		}
		if got.Year() != tt.year {
			t.Errorf("parseTime(%q).Year() = %d, want %d", tt.input, got.Year(), tt.year)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FailureKind
	}{
		{"rate limited", fmt.Errorf("%w (HTTP 429)", ErrRateLimited), FailureRateLimited},
		{"malformed", fmt.Errorf("%w: bad json", ErrMalformed), FailureMalformed},
		{"network", errors.New("connection refused"), FailureUnreachable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify("wikipedia", tt.err)

			var adapterErr *AdapterError
			if !errors.As(err, &adapterErr) {
				t.Fatalf("expected *AdapterError, got %T", err)
			}
			if adapterErr.Kind != tt.want {
				t.Errorf("Kind = %q, want %q", adapterErr.Kind, tt.want)
			}
			if adapterErr.Adapter != "wikipedia" {
				t.Errorf("Adapter = %q, want wikipedia", adapterErr.Adapter)
			}
		})
	}
}

func TestClassifyNil(t *testing.T) {
	if err := classify("wikipedia", nil); err != nil {
		t.Errorf("classify(nil) = %v, want nil", err)
	}
}

func TestNewAdaptersKeyGating(t *testing.T) {
	client := NewClient(5*time.Second, "test-agent", 1<<20)

	cfg := model.DefaultConfig()
	cfg.Sources.FactCheckAPIKey = ""
	cfg.Sources.NewsAPIKey = ""
	cfg.Sources.TavilyAPIKey = ""
	cfg.Sources.ScraperEnabled = false

	adapters := NewAdapters(cfg, client)
	if len(adapters) != 1 {
		t.Fatalf("expected only the keyless adapter, got %d", len(adapters))
	}
	if adapters[0].Name() != "wikipedia" {
		t.Errorf("expected wikipedia, got %q", adapters[0].Name())
	}

	cfg.Sources.FactCheckAPIKey = "key"
	cfg.Sources.NewsAPIKey = "key"
	cfg.Sources.TavilyAPIKey = "key"
	cfg.Sources.ScraperEnabled = true

	adapters = NewAdapters(cfg, client)
	if len(adapters) != 5 {
		t.Fatalf("expected 5 adapters with all keys set, got %d", len(adapters))
	}
}
