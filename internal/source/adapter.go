package source

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/crisiswatch/crisiswatch/internal/model"
)

// Adapter defines the interface for evidence source providers.
// Adapters are interchangeable, independently failing plugins: a "no results"
// response is an empty slice, not an error, and no adapter failure may abort
// the pipeline.
type Adapter interface {
	// Name returns the adapter name
	Name() string

	// Kind returns the provider class
	Kind() model.SourceKind

	// Weight returns the adapter's static evidentiary weight
	Weight() float64

	// Search executes one query against the provider. Implementations must
	// respect ctx cancellation and deadlines.
	Search(ctx context.Context, query model.SearchQuery) ([]model.EvidenceItem, error)
}

// FailureKind classifies adapter failures. All kinds are recovered locally
// and only degrade evidence coverage.
type FailureKind string

const (
	FailureUnreachable FailureKind = "unreachable"
	FailureRateLimited FailureKind = "rate_limited"
	FailureMalformed   FailureKind = "malformed"
)

// AdapterError wraps a provider failure with its classification
type AdapterError struct {
	Adapter string
	Kind    FailureKind
	Err     error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("%s adapter %s: %v", e.Adapter, e.Kind, e.Err)
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

// NewAdapters builds the configured adapter set. Adapters whose optional
// credentials are absent are simply not included; the pipeline runs with
// fewer sources under the same contract.
func NewAdapters(cfg model.Config, client *Client) []Adapter {
	adapters := []Adapter{
		NewWikipediaAdapter(client),
	}

	if cfg.Sources.FactCheckAPIKey != "" {
		adapters = append(adapters, NewFactCheckAdapter(client, cfg.Sources.FactCheckAPIKey))
	}
	if cfg.Sources.NewsAPIKey != "" {
		adapters = append(adapters, NewNewsAPIAdapter(client, cfg.Sources.NewsAPIKey))
	}
	if cfg.Sources.TavilyAPIKey != "" {
		adapters = append(adapters, NewTavilyAdapter(client, cfg.Sources.TavilyAPIKey))
	}
	if cfg.Sources.ScraperEnabled {
		adapters = append(adapters, NewScraperAdapter(client, cfg.HTTP.UserAgent))
	}

	return adapters
}

// classify wraps a provider error with its failure kind.
func classify(adapter string, err error) error {
	if err == nil {
		return nil
	}
	kind := FailureUnreachable
	switch {
	case errors.Is(err, ErrRateLimited):
		kind = FailureRateLimited
	case errors.Is(err, ErrMalformed):
		kind = FailureMalformed
	}
	return &AdapterError{Adapter: adapter, Kind: kind, Err: err}
}

// stanceFromRating infers a stance toward the checked claim from a
// fact-checker's textual rating. A rating that debunks the claim refutes it.
func stanceFromRating(rating string) model.Stance {
	rating = strings.ToLower(rating)
	switch {
	case rating == "":
		return model.StanceUnknown
	case strings.Contains(rating, "false"), strings.Contains(rating, "pants on fire"),
		strings.Contains(rating, "incorrect"), strings.Contains(rating, "misleading"),
		strings.Contains(rating, "fake"), strings.Contains(rating, "hoax"),
		strings.Contains(rating, "debunk"):
		return model.StanceRefutes
	// Mixed ratings like "Half True" must win over the bare "true" match.
	case strings.Contains(rating, "mixture"), strings.Contains(rating, "mixed"),
		strings.Contains(rating, "half"):
		return model.StanceNeutral
	case strings.Contains(rating, "true"), strings.Contains(rating, "correct"),
		strings.Contains(rating, "accurate"):
		return model.StanceSupports
	default:
		return model.StanceUnknown
	}
}

// parseTime parses the publication timestamps providers return, which vary
// between RFC 3339 and bare dates.
func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05Z", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
