package search

import (
	"context"
	"errors"
	"net/url"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/crisiswatch/crisiswatch/internal/model"
	"github.com/crisiswatch/crisiswatch/internal/source"
	"github.com/crisiswatch/crisiswatch/internal/worker"
)

// Aggregator fans claim queries out across every registered source adapter
// concurrently and merges the returned evidence into one deduplicated set.
// Adapter failures degrade coverage; they never abort the gather.
type Aggregator struct {
	adapters []source.Adapter
	limiter  *worker.Limiter
	logger   *zap.Logger
	cfg      model.SearchConfig
}

// NewAggregator creates an evidence aggregator over the given adapters
func NewAggregator(adapters []source.Adapter, cfg model.SearchConfig, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		adapters: adapters,
		limiter:  worker.NewLimiter(cfg.RatePerHost, cfg.RateBurst),
		logger:   logger,
		cfg:      cfg,
	}
}

// searchJob is one (adapter, query) pair executed on the worker pool
type searchJob struct {
	adapter source.Adapter
	query   model.SearchQuery
	limiter *worker.Limiter
	timeout time.Duration
}

// searchOutcome carries one job's evidence or classified failure
type searchOutcome struct {
	adapter string
	items   []model.EvidenceItem
	err     error
}

func (o *searchOutcome) GetError() error { return o.err }

func (j *searchJob) Execute(ctx context.Context) worker.Result {
	if err := j.limiter.Wait(ctx, j.adapter.Name()); err != nil {
		return &searchOutcome{adapter: j.adapter.Name(), err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	items, err := j.adapter.Search(ctx, j.query)
	return &searchOutcome{adapter: j.adapter.Name(), items: items, err: err}
}

// Gather runs every query against every adapter within the overall budget
// and returns the merged evidence set plus the classified failures.
// An empty set is a legitimate outcome, not an error.
func (a *Aggregator) Gather(ctx context.Context, queries []model.SearchQuery) (model.EvidenceSet, []*source.AdapterError) {
	if len(a.adapters) == 0 || len(queries) == 0 {
		return model.EvidenceSet{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.OverallBudget)
	defer cancel()

	// One worker per (adapter, query) pair so a slow adapter's queries run
	// concurrently instead of queueing behind each other; the per-host
	// limiter still throttles how fast each source is actually hit.
	pool := worker.NewPool(ctx, len(a.adapters)*len(queries))
	pool.Start()

	for _, adapter := range a.adapters {
		for _, query := range queries {
			pool.Submit(&searchJob{
				adapter: adapter,
				query:   query,
				limiter: a.limiter,
				timeout: a.cfg.PerSourceTimeout,
			})
		}
	}

	results := pool.Wait()

	var items []model.EvidenceItem
	var failures []*source.AdapterError
	for _, result := range results {
		outcome := result.(*searchOutcome)
		if outcome.err != nil {
			var adapterErr *source.AdapterError
			if !errors.As(outcome.err, &adapterErr) {
				adapterErr = &source.AdapterError{
					Adapter: outcome.adapter,
					Kind:    source.FailureUnreachable,
					Err:     outcome.err,
				}
			}
			failures = append(failures, adapterErr)
			a.logger.Warn("source adapter failed",
				zap.String("adapter", adapterErr.Adapter),
				zap.String("kind", string(adapterErr.Kind)),
				zap.Error(adapterErr.Err))
			continue
		}
		items = append(items, outcome.items...)
	}

	return a.merge(items), failures
}

// SourceCount reports how many adapters the aggregator queries
func (a *Aggregator) SourceCount() int {
	return len(a.adapters)
}

// merge deduplicates evidence, caps per-domain contributions, and trims the
// set to MaxResults highest-weight items.
func (a *Aggregator) merge(items []model.EvidenceItem) model.EvidenceSet {
	// Highest-weight copy of each duplicate wins.
	byKey := make(map[string]model.EvidenceItem)
	var order []string
	for _, item := range items {
		key := item.DedupeKey()
		existing, seen := byKey[key]
		if !seen {
			order = append(order, key)
			byKey[key] = item
			continue
		}
		if item.Weight > existing.Weight {
			byKey[key] = item
		}
	}

	merged := make(model.EvidenceSet, 0, len(order))
	for _, key := range order {
		merged = append(merged, byKey[key])
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Weight > merged[j].Weight
	})

	// Per-domain cap keeps one prolific site from drowning out the rest.
	if a.cfg.MaxPerDomain > 0 {
		perDomain := make(map[string]int)
		capped := merged[:0]
		for _, item := range merged {
			domain := evidenceDomain(item.URL)
			if domain != "" && perDomain[domain] >= a.cfg.MaxPerDomain {
				continue
			}
			perDomain[domain]++
			capped = append(capped, item)
		}
		merged = capped
	}

	if a.cfg.MaxResults > 0 && len(merged) > a.cfg.MaxResults {
		merged = merged[:a.cfg.MaxResults]
	}

	return merged
}

func evidenceDomain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}
