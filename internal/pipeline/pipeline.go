package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crisiswatch/crisiswatch/internal/cache"
	"github.com/crisiswatch/crisiswatch/internal/claim"
	"github.com/crisiswatch/crisiswatch/internal/explain"
	"github.com/crisiswatch/crisiswatch/internal/llm"
	"github.com/crisiswatch/crisiswatch/internal/model"
	"github.com/crisiswatch/crisiswatch/internal/score"
	"github.com/crisiswatch/crisiswatch/internal/search"
	"github.com/crisiswatch/crisiswatch/internal/source"
	"github.com/crisiswatch/crisiswatch/internal/synth"
	"github.com/crisiswatch/crisiswatch/internal/trending"
)

// Pipeline orchestrates one claim check end to end: extraction, evidence
// gathering, synthesis, ranking, and explanation, with a cache short-circuit
// in front. Safe for concurrent runs; the cache and trending store are the
// only shared state.
type Pipeline struct {
	extractor   *claim.Extractor
	aggregator  *search.Aggregator
	synthesizer *synth.Synthesizer
	ranker      *score.Ranker
	explainer   *explain.Explainer
	results     *cache.ResultCache
	trends      *trending.Store
	cfg         model.Config
	logger      *zap.Logger

	countMu    sync.Mutex
	verdicts   map[model.Verdict]int
	severities map[model.Severity]int
}

// New wires a pipeline from its parts
func New(cfg model.Config, provider llm.Provider, adapters []source.Adapter, results *cache.ResultCache, trends *trending.Store, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		extractor:   claim.NewExtractor(provider),
		aggregator:  search.NewAggregator(adapters, cfg.Search, logger),
		synthesizer: synth.NewSynthesizer(provider, cfg.Synthesis, logger),
		ranker:      score.NewRanker(),
		explainer:   explain.NewExplainer(provider, logger),
		results:     results,
		trends:      trends,
		cfg:         cfg,
		logger:      logger,
		verdicts:    make(map[model.Verdict]int),
		severities:  make(map[model.Severity]int),
	}
}

// CheckClaim verifies one claim without progress events
func (p *Pipeline) CheckClaim(ctx context.Context, rawText string) (*model.FactCheckResult, error) {
	return p.Check(ctx, rawText, nil)
}

// Check verifies one claim, emitting a progress event per stage to sink (if
// non-nil) in strict state order. Returns ValidationError before any work
// for unusable input, and StageError when extraction or synthesis fails.
// A spent run budget degrades toward an unverifiable result rather than
// failing; after ctx is cancelled no further events are emitted.
func (p *Pipeline) Check(ctx context.Context, rawText string, sink EventSink) (*model.FactCheckResult, error) {
	if err := p.validate(rawText); err != nil {
		return nil, err
	}

	// The budget context bounds the work; event emission gates on the parent
	// so that budget expiry still produces a completed (degraded) result
	// while consumer cancellation silences the stream.
	parent := ctx
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Pipeline.Budget)
	defer cancel()

	run := &run{
		id:      uuid.NewString(),
		sink:    sink,
		parent:  parent,
		started: time.Now(),
	}

	logger := p.logger.With(zap.String("run_id", run.id))
	logger.Info("claim received", zap.Int("length", len(rawText)))

	run.emit(StateReceived, "claim received")

	key := claim.Key(rawText)
	if p.cfg.Cache.Enabled && p.results != nil {
		if result, found := p.results.Get(key); found {
			logger.Info("cache hit", zap.String("verdict", string(result.Verdict)))
			run.emit(StateCacheHit, "served from cache")
			p.record(key, result)
			p.count(result)
			run.complete(result)
			return result, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	run.emit(StateExtracting, "extracting verifiable claim")
	extracted, err := p.extractor.Extract(ctx, rawText)
	if err != nil {
		if !budgetExpired(ctx, parent) {
			return nil, run.fail(logger, StateExtracting, err)
		}
		// Budget spent before extraction finished: carry on with the raw
		// text so the run still degrades to a result.
		logger.Warn("budget expired during extraction, degrading", zap.Error(err))
		extracted = model.Claim{
			RawText:        rawText,
			NormalizedText: claim.Normalize(rawText),
			Text:           strings.TrimSpace(rawText),
			Category:       model.CategoryOther,
			Confidence:     0.3,
			Language:       "en",
		}
	}
	logger.Info("claim extracted",
		zap.String("category", string(extracted.Category)),
		zap.Float64("confidence", extracted.Confidence))

	run.emit(StateQuerying, "planning search queries")
	queries := claim.PlanQueries(extracted)

	run.emit(StateSearching, "gathering evidence")
	evidence, failures := p.aggregator.Gather(ctx, queries)
	logger.Info("evidence gathered",
		zap.Int("items", len(evidence)),
		zap.Int("adapter_failures", len(failures)))
	if err := parent.Err(); err != nil {
		return nil, err
	}

	run.emit(StateSynthesizing, "synthesizing verdict")
	outcome, err := p.synthesizer.Synthesize(ctx, extracted, evidence)
	if err != nil {
		// A spent budget degrades to a stance-only verdict over the partial
		// evidence instead of failing the run.
		if !budgetExpired(ctx, parent) {
			return nil, run.fail(logger, StateSynthesizing, err)
		}
		logger.Warn("budget expired during synthesis, degrading", zap.Error(err))
		outcome = p.synthesizer.Resolve(evidence)
	}

	run.emit(StateRanking, "ranking severity")
	severity := p.ranker.Rank(extracted.Category, outcome.Verdict, extracted.Text)

	run.emit(StateExplaining, "generating explanation")
	explanation := p.explainer.Explain(ctx, extracted, outcome.Verdict, outcome.Confidence, outcome.Reasoning, outcome.Evidence)

	result := &model.FactCheckResult{
		Claim:            extracted,
		Evidence:         outcome.Evidence,
		Verdict:          outcome.Verdict,
		Confidence:       outcome.Confidence,
		Severity:         severity,
		ExplanationEn:    explanation.En,
		ExplanationHi:    explanation.Hi,
		Correction:       explanation.Correction,
		SourcesChecked:   p.aggregator.SourceCount(),
		SourceDiversity:  score.Diversity(outcome.Evidence),
		CreatedAt:        time.Now().UTC(),
		ProcessingTimeMS: time.Since(run.started).Milliseconds(),
	}

	if p.cfg.Cache.Enabled && p.results != nil {
		p.results.Put(key, result)
	}
	p.record(key, result)
	p.count(result)

	logger.Info("check completed",
		zap.String("verdict", string(result.Verdict)),
		zap.String("severity", string(result.Severity)),
		zap.Int64("elapsed_ms", result.ProcessingTimeMS))

	run.complete(result)
	return result, nil
}

// CacheStats exposes result cache counters for the stats endpoint
func (p *Pipeline) CacheStats() (hits, misses uint64, size int) {
	if p.results == nil {
		return 0, 0, 0
	}
	return p.results.Stats()
}

// SourceCount reports how many adapters are configured
func (p *Pipeline) SourceCount() int {
	return p.aggregator.SourceCount()
}

// budgetExpired distinguishes a spent run budget from consumer cancellation
func budgetExpired(budget, parent context.Context) bool {
	return errors.Is(budget.Err(), context.DeadlineExceeded) && parent.Err() == nil
}

func (p *Pipeline) validate(rawText string) error {
	trimmed := strings.TrimSpace(rawText)
	if len(trimmed) < p.cfg.Pipeline.MinClaimLen {
		return &ValidationError{Reason: "claim text too short"}
	}
	if len(trimmed) > p.cfg.Pipeline.MaxClaimLen {
		return &ValidationError{Reason: "claim text too long"}
	}
	return nil
}

// count tallies one completed check by verdict and severity
func (p *Pipeline) count(result *model.FactCheckResult) {
	p.countMu.Lock()
	defer p.countMu.Unlock()
	p.verdicts[result.Verdict]++
	p.severities[result.Severity]++
}

// Counts returns cumulative completed-check totals by verdict and severity
func (p *Pipeline) Counts() (verdicts map[string]int, severities map[string]int) {
	p.countMu.Lock()
	defer p.countMu.Unlock()

	verdicts = make(map[string]int, len(p.verdicts))
	for v, n := range p.verdicts {
		verdicts[string(v)] = n
	}
	severities = make(map[string]int, len(p.severities))
	for s, n := range p.severities {
		severities[string(s)] = n
	}
	return verdicts, severities
}

// record is the write-only trending side effect; it never fails the run
func (p *Pipeline) record(key string, result *model.FactCheckResult) {
	if p.trends != nil {
		p.trends.Record(key, result)
	}
}

// run carries per-run event state. parent is the consumer's context; once it
// is cancelled no further events are emitted.
type run struct {
	id      string
	sink    EventSink
	parent  context.Context
	started time.Time
}

// emit sends one progress event unless the run has been cancelled
func (r *run) emit(state State, message string) {
	if r.sink == nil || r.parent.Err() != nil {
		return
	}
	r.sink(Event{
		RunID:     r.id,
		State:     state,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

func (r *run) complete(result *model.FactCheckResult) {
	if r.sink == nil || r.parent.Err() != nil {
		return
	}
	r.sink(Event{
		RunID:     r.id,
		State:     StateCompleted,
		Result:    result,
		Timestamp: time.Now().UTC(),
	})
}

// fail emits the terminal Failed event and returns the tagged error
func (r *run) fail(logger *zap.Logger, state State, err error) error {
	stageErr := &StageError{State: state, Err: err}
	logger.Error("run failed", zap.String("stage", string(state)), zap.Error(err))
	if r.sink != nil && r.parent.Err() == nil {
		r.sink(Event{
			RunID:     r.id,
			State:     StateFailed,
			Error:     stageErr.Error(),
			Timestamp: time.Now().UTC(),
		})
	}
	return stageErr
}
