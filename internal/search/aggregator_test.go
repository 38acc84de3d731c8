package search

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/crisiswatch/crisiswatch/internal/model"
	"github.com/crisiswatch/crisiswatch/internal/source"
)

type fakeAdapter struct {
	name  string
	kind  model.SourceKind
	items []model.EvidenceItem
	err   error
	delay time.Duration
}

func (a *fakeAdapter) Name() string           { return a.name }
func (a *fakeAdapter) Kind() model.SourceKind { return a.kind }
func (a *fakeAdapter) Weight() float64        { return 0.5 }

func (a *fakeAdapter) Search(ctx context.Context, query model.SearchQuery) ([]model.EvidenceItem, error) {
	if a.delay > 0 {
		select {
		case <-time.After(a.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if a.err != nil {
		return nil, a.err
	}
	return a.items, nil
}

func testSearchConfig() model.SearchConfig {
	cfg := model.DefaultConfig().Search
	cfg.PerSourceTimeout = 200 * time.Millisecond
	cfg.OverallBudget = time.Second
	cfg.RatePerHost = 1000
	cfg.RateBurst = 100
	return cfg
}

func evidence(url string, weight float64) model.EvidenceItem {
	return model.EvidenceItem{
		SourceID: "fake",
		Kind:     model.KindNews,
		URL:      url,
		Snippet:  "snippet for " + url,
		Weight:   weight,
	}
}

func TestAggregatorGatherMergesAdapters(t *testing.T) {
	agg := NewAggregator([]source.Adapter{
		&fakeAdapter{name: "a", kind: model.KindNews, items: []model.EvidenceItem{
			evidence("https://example.com/one", 0.7),
		}},
		&fakeAdapter{name: "b", kind: model.KindEncyclopedia, items: []model.EvidenceItem{
			evidence("https://example.org/two", 0.8),
		}},
	}, testSearchConfig(), nil)

	set, failures := agg.Gather(context.Background(), []model.SearchQuery{{Text: "q"}})

	if len(failures) != 0 {
		t.Errorf("unexpected failures: %v", failures)
	}
	if len(set) != 2 {
		t.Fatalf("expected 2 items, got %d", len(set))
	}
	// Sorted by weight descending.
	if set[0].Weight < set[1].Weight {
		t.Error("evidence not sorted by weight")
	}
}

func TestAggregatorToleratesPartialFailure(t *testing.T) {
	agg := NewAggregator([]source.Adapter{
		&fakeAdapter{name: "down", kind: model.KindNews, err: errors.New("connection refused")},
		&fakeAdapter{name: "up", kind: model.KindFactCheck, items: []model.EvidenceItem{
			evidence("https://snopes.com/fact-check/x", 0.9),
		}},
	}, testSearchConfig(), nil)

	set, failures := agg.Gather(context.Background(), []model.SearchQuery{{Text: "q"}})

	if len(set) != 1 {
		t.Fatalf("expected evidence from the surviving adapter, got %d items", len(set))
	}
	if len(failures) != 1 {
		t.Fatalf("expected 1 classified failure, got %d", len(failures))
	}
	if failures[0].Adapter != "down" {
		t.Errorf("failure attributed to %q", failures[0].Adapter)
	}
	if failures[0].Kind != source.FailureUnreachable {
		t.Errorf("failure kind = %q, want unreachable", failures[0].Kind)
	}
}

func TestAggregatorAllAdaptersDownIsEmptyNotError(t *testing.T) {
	agg := NewAggregator([]source.Adapter{
		&fakeAdapter{name: "a", err: errors.New("down")},
		&fakeAdapter{name: "b", err: errors.New("down")},
	}, testSearchConfig(), nil)

	set, failures := agg.Gather(context.Background(), []model.SearchQuery{{Text: "q"}})

	if len(set) != 0 {
		t.Errorf("expected empty set, got %d items", len(set))
	}
	if len(failures) != 2 {
		t.Errorf("expected 2 failures, got %d", len(failures))
	}
}

func TestAggregatorDeduplicatesByURL(t *testing.T) {
	// The same normalized URL surfaces through both adapters; the
	// higher-weight copy must win.
	agg := NewAggregator([]source.Adapter{
		&fakeAdapter{name: "a", items: []model.EvidenceItem{
			evidence("https://www.example.com/story/", 0.5),
		}},
		&fakeAdapter{name: "b", items: []model.EvidenceItem{
			evidence("https://example.com/story", 0.9),
		}},
	}, testSearchConfig(), nil)

	set, _ := agg.Gather(context.Background(), []model.SearchQuery{{Text: "q"}})

	if len(set) != 1 {
		t.Fatalf("expected duplicates merged to 1 item, got %d", len(set))
	}
	if set[0].Weight != 0.9 {
		t.Errorf("kept weight %f, want the higher 0.9", set[0].Weight)
	}
}

func TestAggregatorPerDomainCap(t *testing.T) {
	var items []model.EvidenceItem
	for i := 0; i < 6; i++ {
		items = append(items, evidence(fmt.Sprintf("https://flood.example.com/post/%d", i), 0.6))
	}

	cfg := testSearchConfig()
	cfg.MaxPerDomain = 3

	agg := NewAggregator([]source.Adapter{
		&fakeAdapter{name: "a", items: items},
	}, cfg, nil)

	set, _ := agg.Gather(context.Background(), []model.SearchQuery{{Text: "q"}})

	if len(set) != 3 {
		t.Errorf("expected per-domain cap of 3, got %d items", len(set))
	}
}

func TestAggregatorSlowAdapterTimesOut(t *testing.T) {
	agg := NewAggregator([]source.Adapter{
		&fakeAdapter{name: "slow", delay: 5 * time.Second},
		&fakeAdapter{name: "fast", items: []model.EvidenceItem{
			evidence("https://example.com/fast", 0.7),
		}},
	}, testSearchConfig(), nil)

	start := time.Now()
	set, failures := agg.Gather(context.Background(), []model.SearchQuery{{Text: "q"}})
	elapsed := time.Since(start)

	if elapsed > 2*time.Second {
		t.Errorf("gather took %v, want it bounded by the budget", elapsed)
	}
	if len(set) != 1 {
		t.Errorf("expected fast adapter's evidence, got %d items", len(set))
	}
	if len(failures) != 1 {
		t.Errorf("expected the slow adapter's timeout recorded, got %d failures", len(failures))
	}
}

func TestAggregatorQueriesRunConcurrentlyPerAdapter(t *testing.T) {
	// Four queries against one slow adapter must overlap: run serially
	// they would take 4x the delay and blow the overall budget.
	cfg := testSearchConfig()
	cfg.OverallBudget = 400 * time.Millisecond

	agg := NewAggregator([]source.Adapter{
		&fakeAdapter{name: "slow", delay: 150 * time.Millisecond, items: []model.EvidenceItem{
			evidence("https://example.com/slow", 0.6),
		}},
	}, cfg, nil)

	queries := []model.SearchQuery{
		{Text: "q1"}, {Text: "q2"}, {Text: "q3"}, {Text: "q4"},
	}

	start := time.Now()
	set, failures := agg.Gather(context.Background(), queries)
	elapsed := time.Since(start)

	if len(failures) != 0 {
		t.Errorf("unexpected failures: %v", failures)
	}
	if len(set) != 1 {
		t.Errorf("expected the deduplicated evidence item, got %d", len(set))
	}
	if elapsed >= 4*150*time.Millisecond {
		t.Errorf("gather took %v, queries did not overlap", elapsed)
	}
}

func TestAggregatorNoQueries(t *testing.T) {
	agg := NewAggregator([]source.Adapter{&fakeAdapter{name: "a"}}, testSearchConfig(), nil)
	set, failures := agg.Gather(context.Background(), nil)
	if len(set) != 0 || len(failures) != 0 {
		t.Errorf("expected empty result for no queries, got %d items %d failures", len(set), len(failures))
	}
}
