package explain

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/crisiswatch/crisiswatch/internal/llm"
	"github.com/crisiswatch/crisiswatch/internal/model"
)

// maxCorrectionLen bounds the shareable correction for social-media reposting.
const maxCorrectionLen = 280

// Explanation is the bilingual rationale plus a short shareable correction.
type Explanation struct {
	En         string
	Hi         string
	Correction string
}

// Explainer renders a verdict as prose. Generation failures degrade to
// templated text; they never discard an already-computed verdict, so Explain
// does not return an error.
type Explainer struct {
	provider llm.Provider
	logger   *zap.Logger
}

// NewExplainer creates an explainer backed by the given provider
func NewExplainer(provider llm.Provider, logger *zap.Logger) *Explainer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Explainer{provider: provider, logger: logger}
}

const explainSystemPrompt = `You write public-facing fact-check summaries during crisis events. Given a claim, its verdict, and the reasoning, respond with ONLY a JSON object:
{
  "explanation": "2-3 plain-language sentences in English explaining the verdict, citing what the sources show",
  "correction": "one short imperative sentence suitable for reposting; for false or mostly_false verdicts it MUST restate the claim with an explicit capitalized negation, e.g. 'Drinking hot lemon water DOES NOT cure COVID-19.'"
}`

const translateSystemPrompt = `You are a professional English-to-Hindi translator. Translate the given fact-check explanation into natural Hindi. Preserve the verdict exactly: do not soften, strengthen, or reinterpret it. Respond with ONLY the Hindi text.`

type explainResponse struct {
	Explanation string `json:"explanation"`
	Correction  string `json:"correction"`
}

// Explain produces the English explanation, its Hindi counterpart, and the
// correction line. The Hindi text is generated from the English explanation
// alone, so the two can never assert different verdicts.
func (e *Explainer) Explain(ctx context.Context, claim model.Claim, verdict model.Verdict, confidence float64, reasoning string, evidence model.EvidenceSet) Explanation {
	en, correction := e.generateEnglish(ctx, claim, verdict, confidence, reasoning, evidence)
	hi := e.translate(ctx, en, verdict)

	return Explanation{
		En:         en,
		Hi:         hi,
		Correction: correction,
	}
}

func (e *Explainer) generateEnglish(ctx context.Context, claim model.Claim, verdict model.Verdict, confidence float64, reasoning string, evidence model.EvidenceSet) (string, string) {
	var b strings.Builder
	fmt.Fprintf(&b, "Claim: %s\nVerdict: %s (confidence %.2f)\nReasoning: %s\n", claim.Text, verdict, confidence, reasoning)
	if len(evidence) > 0 {
		b.WriteString("Key sources:\n")
		for i, item := range evidence {
			if i >= 5 {
				break
			}
			fmt.Fprintf(&b, "- [%s] %s\n", item.SourceName, item.Snippet)
		}
	}

	completion, err := e.provider.Complete(ctx, llm.CompletionRequest{
		System: explainSystemPrompt,
		Prompt: b.String(),
	})
	if err != nil {
		e.logger.Warn("explanation generation failed, using fallback", zap.Error(err))
		return fallbackEnglish(verdict), fallbackCorrection(claim, verdict)
	}

	var resp explainResponse
	if err := llm.DecodeJSON(completion.Text, &resp); err != nil {
		e.logger.Warn("explanation response unparseable, using fallback", zap.Error(err))
		return fallbackEnglish(verdict), fallbackCorrection(claim, verdict)
	}

	en := strings.TrimSpace(resp.Explanation)
	if en == "" {
		en = fallbackEnglish(verdict)
	}

	correction := strings.TrimSpace(resp.Correction)
	if !correctionAcceptable(correction, verdict) {
		correction = fallbackCorrection(claim, verdict)
	}
	if runes := []rune(correction); len(runes) > maxCorrectionLen {
		correction = string(runes[:maxCorrectionLen-1]) + "…"
	}

	return en, correction
}

func (e *Explainer) translate(ctx context.Context, english string, verdict model.Verdict) string {
	completion, err := e.provider.Complete(ctx, llm.CompletionRequest{
		System: translateSystemPrompt,
		Prompt: english,
	})
	if err != nil {
		e.logger.Warn("translation failed, using fallback", zap.Error(err))
		return fallbackHindi(verdict)
	}

	hi := strings.TrimSpace(completion.Text)
	if hi == "" {
		return fallbackHindi(verdict)
	}
	return hi
}

// correctionAcceptable rejects empty corrections and, for false-leaning
// verdicts, corrections that fail to actually negate the claim.
func correctionAcceptable(correction string, verdict model.Verdict) bool {
	if correction == "" {
		return false
	}
	if verdict == model.VerdictFalse || verdict == model.VerdictMostlyFalse {
		lower := strings.ToLower(correction)
		return strings.Contains(lower, "not") || strings.Contains(lower, "no ") || strings.Contains(correction, "नहीं")
	}
	return true
}

func fallbackEnglish(verdict model.Verdict) string {
	return fmt.Sprintf("Verdict: %s. See sources.", verdict)
}

var hindiVerdicts = map[model.Verdict]string{
	model.VerdictTrue:         "सही",
	model.VerdictMostlyTrue:   "अधिकतर सही",
	model.VerdictMixed:        "मिश्रित",
	model.VerdictMostlyFalse:  "अधिकतर गलत",
	model.VerdictFalse:        "गलत",
	model.VerdictUnverifiable: "असत्यापित",
}

func fallbackHindi(verdict model.Verdict) string {
	label, ok := hindiVerdicts[verdict]
	if !ok {
		label = string(verdict)
	}
	return fmt.Sprintf("निर्णय: %s। कृपया आधिकारिक स्रोत देखें।", label)
}

// fallbackCorrection builds a deterministic correction when generation fails
// or produced one without the required negation.
func fallbackCorrection(claim model.Claim, verdict model.Verdict) string {
	text := claim.Text
	if text == "" {
		text = claim.RawText
	}
	if runes := []rune(text); len(runes) > 180 {
		text = string(runes[:179]) + "…"
	}

	switch verdict {
	case model.VerdictFalse, model.VerdictMostlyFalse:
		return fmt.Sprintf("This claim is %s and DOES NOT reflect verified facts: %q. Do not share it.", strings.ToUpper(strings.ReplaceAll(string(verdict), "_", " ")), text)
	case model.VerdictTrue, model.VerdictMostlyTrue:
		return fmt.Sprintf("Verified: %q is %s according to checked sources.", text, strings.ReplaceAll(string(verdict), "_", " "))
	case model.VerdictMixed:
		return fmt.Sprintf("Partly accurate: %q mixes true and false details. Check sources before sharing.", text)
	default:
		return fmt.Sprintf("Unverified: %q could not be confirmed. Treat with caution and check official sources.", text)
	}
}
