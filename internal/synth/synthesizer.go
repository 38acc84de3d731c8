package synth

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/crisiswatch/crisiswatch/internal/llm"
	"github.com/crisiswatch/crisiswatch/internal/model"
	"github.com/crisiswatch/crisiswatch/internal/score"
)

// SynthesisError marks a failed verdict computation. Fatal for the run: a
// verdict is never fabricated when reasoning fails.
type SynthesisError struct {
	Err error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesis failed: %v", e.Err)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}

// Outcome is the synthesizer's product: a verdict with confidence, the
// model's reasoning, and the evidence set with resolved stances.
type Outcome struct {
	Verdict    model.Verdict
	Confidence float64
	Reasoning  string
	Evidence   model.EvidenceSet
}

// Synthesizer turns merged evidence into a verdict. The language model
// resolves stances and supplies reasoning; the verdict itself follows a
// deterministic weighted-stance policy so that wording changes in model
// output can never flip true to false.
type Synthesizer struct {
	provider llm.Provider
	cfg      model.SynthesisConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewSynthesizer creates a synthesizer backed by the given provider
func NewSynthesizer(provider llm.Provider, cfg model.SynthesisConfig, logger *zap.Logger) *Synthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synthesizer{
		provider: provider,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

const synthesisSystemPrompt = `You are a crisis misinformation analyst. You are given a claim and a numbered list of evidence snippets from sources of varying reliability. For each snippet, judge whether it supports, refutes, or is neutral toward the claim. Then state your overall verdict.

Respond with ONLY a JSON object:
{
  "stances": [{"index": 1, "stance": "supports|refutes|neutral"}],
  "verdict": "true|mostly_true|mixed|mostly_false|false|unverifiable",
  "confidence": 0.0-1.0,
  "reasoning": "two or three sentences grounded in the evidence"
}`

const synthesisRetrySystemPrompt = `You are a crisis misinformation analyst. Your previous response could not be parsed. Respond with ONLY a valid JSON object, no prose and no markdown fences, with exactly these keys: "stances" (array of {"index", "stance"}), "verdict", "confidence", "reasoning".`

type synthesisResponse struct {
	Stances []struct {
		Index  int    `json:"index"`
		Stance string `json:"stance"`
	} `json:"stances"`
	Verdict    string  `json:"verdict"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// Synthesize computes the verdict for a claim from its evidence.
// An empty evidence set short-circuits to unverifiable without a model call.
func (s *Synthesizer) Synthesize(ctx context.Context, claim model.Claim, evidence model.EvidenceSet) (*Outcome, error) {
	if len(evidence) == 0 {
		return s.unverifiable(evidence, "No evidence could be gathered for this claim."), nil
	}

	resp, err := s.analyze(ctx, claim, evidence)
	if err != nil {
		return nil, &SynthesisError{Err: err}
	}

	resolved := s.applyStances(evidence, resp)

	support, refute, total := s.tally(resolved)
	if total == 0 || (support == 0 && refute == 0) {
		return s.unverifiable(resolved, resp.Reasoning), nil
	}

	verdict := s.policyVerdict(support/total, refute/total)
	confidence := s.confidence(verdict, support/total, refute/total, resolved, resp.Confidence)

	return &Outcome{
		Verdict:    verdict,
		Confidence: confidence,
		Reasoning:  resp.Reasoning,
		Evidence:   resolved,
	}, nil
}

// Resolve computes a verdict from already-attributed stances alone, without
// a model call. Used when the run budget expires before synthesis: registry
// evidence carries explicit stances, everything else counts as inconclusive.
func (s *Synthesizer) Resolve(evidence model.EvidenceSet) *Outcome {
	support, refute, total := s.tally(evidence)
	if total == 0 || (support == 0 && refute == 0) {
		return s.unverifiable(evidence, "The verification budget expired before the evidence could be fully analyzed.")
	}

	verdict := s.policyVerdict(support/total, refute/total)
	return &Outcome{
		Verdict:    verdict,
		Confidence: s.confidence(verdict, support/total, refute/total, evidence, 0),
		Reasoning:  "Verdict derived from fact-check registry ratings; the verification budget expired before deeper analysis.",
		Evidence:   evidence,
	}
}

// analyze runs the model call, once more with a stricter instruction if the
// first response does not parse.
func (s *Synthesizer) analyze(ctx context.Context, claim model.Claim, evidence model.EvidenceSet) (*synthesisResponse, error) {
	prompt := s.buildPrompt(claim, evidence)

	for attempt, system := range []string{synthesisSystemPrompt, synthesisRetrySystemPrompt} {
		completion, err := s.provider.Complete(ctx, llm.CompletionRequest{
			System: system,
			Prompt: prompt,
		})
		if err != nil {
			if attempt == 0 {
				s.logger.Warn("synthesis call failed, retrying", zap.Error(err))
				continue
			}
			return nil, err
		}

		var resp synthesisResponse
		if err := llm.DecodeJSON(completion.Text, &resp); err != nil {
			if attempt == 0 {
				s.logger.Warn("synthesis response unparseable, retrying", zap.Error(err))
				continue
			}
			return nil, fmt.Errorf("parse synthesis response: %w", err)
		}
		return &resp, nil
	}

	return nil, fmt.Errorf("synthesis attempts exhausted")
}

func (s *Synthesizer) buildPrompt(claim model.Claim, evidence model.EvidenceSet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Claim: %s\n\nEvidence:\n", claim.Text)

	limit := s.cfg.MaxEvidenceInPrompt
	if limit <= 0 || limit > len(evidence) {
		limit = len(evidence)
	}
	for i, item := range evidence[:limit] {
		fmt.Fprintf(&b, "%d. [%s, reliability %.2f] %s\n", i+1, item.SourceName, item.Weight, item.Snippet)
	}
	return b.String()
}

// applyStances overlays the model's stance judgments onto items whose stance
// is still unknown. Registry ratings already carry an explicit stance and
// are left alone.
func (s *Synthesizer) applyStances(evidence model.EvidenceSet, resp *synthesisResponse) model.EvidenceSet {
	resolved := make(model.EvidenceSet, len(evidence))
	copy(resolved, evidence)

	for _, sv := range resp.Stances {
		i := sv.Index - 1
		if i < 0 || i >= len(resolved) {
			continue
		}
		if resolved[i].Stance != model.StanceUnknown {
			continue
		}
		switch strings.ToLower(sv.Stance) {
		case "supports":
			resolved[i].Stance = model.StanceSupports
		case "refutes":
			resolved[i].Stance = model.StanceRefutes
		case "neutral":
			resolved[i].Stance = model.StanceNeutral
		}
	}
	return resolved
}

// tally sums recency-adjusted weight per stance. Recent evidence counts for
// more: crisis claims move fast and last year's coverage may be stale.
func (s *Synthesizer) tally(evidence model.EvidenceSet) (support, refute, total float64) {
	now := s.now()
	for _, item := range evidence {
		w := item.Weight * recencyFactor(item.PublishedAt, now)
		total += w
		switch item.Stance {
		case model.StanceSupports:
			support += w
		case model.StanceRefutes:
			refute += w
		}
	}
	return support, refute, total
}

// recencyFactor decays evidence weight with age, half-weight floor so old
// registry fact-checks still count.
func recencyFactor(publishedAt *time.Time, now time.Time) float64 {
	if publishedAt == nil {
		return 1.0
	}
	days := now.Sub(*publishedAt).Hours() / 24
	if days <= 0 {
		return 1.0
	}
	return math.Max(0.5, math.Exp(-days/30))
}

// policyVerdict maps weighted stance shares to a verdict. Dominance is
// checked before the mixed band so a clear majority with a vocal minority
// reads as mostly_* rather than mixed.
func (s *Synthesizer) policyVerdict(supportShare, refuteShare float64) model.Verdict {
	leading, opposing := supportShare, refuteShare
	forSupport := true
	if refuteShare > supportShare {
		leading, opposing = refuteShare, supportShare
		forSupport = false
	}

	switch {
	case leading >= s.cfg.DominanceFloor && opposing < s.cfg.MaterialOpposition:
		if forSupport {
			return model.VerdictTrue
		}
		return model.VerdictFalse
	case leading >= s.cfg.DominanceFloor:
		if forSupport {
			return model.VerdictMostlyTrue
		}
		return model.VerdictMostlyFalse
	case supportShare >= s.cfg.MixedFloor && refuteShare >= s.cfg.MixedFloor:
		return model.VerdictMixed
	case leading > opposing:
		if forSupport {
			return model.VerdictMostlyTrue
		}
		return model.VerdictMostlyFalse
	default:
		return model.VerdictUnverifiable
	}
}

// confidence grows with the weighted margin, the amount of evidence, and
// source diversity, nudged by the model's own confidence. Bounded to [0,1];
// unverifiable verdicts are capped low.
func (s *Synthesizer) confidence(verdict model.Verdict, supportShare, refuteShare float64, evidence model.EvidenceSet, modelConfidence float64) float64 {
	if verdict == model.VerdictUnverifiable {
		return s.unverifiableConfidence(evidence)
	}

	margin := math.Abs(supportShare - refuteShare)
	count := math.Min(float64(len(evidence))/10, 1)
	diversity := score.Diversity(evidence)

	c := 0.25 + 0.40*margin + 0.10*count + 0.15*diversity + 0.10*clamp01(modelConfidence)
	return clamp01(c)
}

func (s *Synthesizer) unverifiable(evidence model.EvidenceSet, reasoning string) *Outcome {
	if reasoning == "" {
		reasoning = "The available evidence does not take a position on this claim."
	}
	return &Outcome{
		Verdict:    model.VerdictUnverifiable,
		Confidence: s.unverifiableConfidence(evidence),
		Reasoning:  reasoning,
		Evidence:   evidence,
	}
}

func (s *Synthesizer) unverifiableConfidence(evidence model.EvidenceSet) float64 {
	c := 0.05 + 0.01*float64(len(evidence))
	return math.Min(c, s.cfg.UnverifiableCap)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
