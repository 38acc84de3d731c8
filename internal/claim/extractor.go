package claim

import (
	"context"
	"fmt"

	"github.com/crisiswatch/crisiswatch/internal/llm"
	"github.com/crisiswatch/crisiswatch/internal/model"
)

const extractionSystemPrompt = "You are a fact-checking assistant. Always respond with valid JSON. Be generous - most claims can be fact-checked."

const extractionRetrySystemPrompt = "You are a fact-checking assistant. Respond with ONLY a single valid JSON object, no markdown, no prose."

const extractionPromptTemplate = `Identify the single dominant verifiable assertion in the following text and classify its crisis category.

TEXT: %s

Respond in JSON format:
{
    "main_claim": "the single verifiable assertion, rephrased as a declarative statement",
    "crisis_type": "health|natural_disaster|civil_unrest|other",
    "entities": ["named entities mentioned"],
    "is_checkworthy": true,
    "reason": "why this is or is not checkworthy",
    "confidence": 0.0
}`

// Extractor derives the verifiable assertion and crisis category from raw
// input via a language-model call.
type Extractor struct {
	provider llm.Provider
}

// NewExtractor creates a new claim extractor
func NewExtractor(provider llm.Provider) *Extractor {
	return &Extractor{provider: provider}
}

type extractionResponse struct {
	MainClaim     string   `json:"main_claim"`
	CrisisType    string   `json:"crisis_type"`
	Entities      []string `json:"entities"`
	IsCheckworthy *bool    `json:"is_checkworthy"`
	Reason        string   `json:"reason"`
	Confidence    float64  `json:"confidence"`
}

// Extract identifies the dominant verifiable assertion in rawText.
// The backend is retried once with a stricter re-prompt on unparseable output;
// a second failure is fatal for the run.
func (e *Extractor) Extract(ctx context.Context, rawText string) (model.Claim, error) {
	c := model.Claim{
		RawText:        rawText,
		NormalizedText: Normalize(rawText),
		Language:       "en",
	}

	// Very short inputs are already a single assertion; skip the model call.
	if len(c.NormalizedText) < 10 {
		c.Text = rawText
		c.Category = model.CategoryOther
		c.Confidence = 0.5
		return c, nil
	}

	prompt := fmt.Sprintf(extractionPromptTemplate, rawText)

	parsed, err := e.complete(ctx, extractionSystemPrompt, prompt)
	if err != nil {
		// One retry with a stricter re-prompt before giving up.
		parsed, err = e.complete(ctx, extractionRetrySystemPrompt, prompt)
		if err != nil {
			return model.Claim{}, fmt.Errorf("extract claim: %w", err)
		}
	}

	if parsed.MainClaim == "" {
		parsed.MainClaim = rawText
	}

	c.Text = parsed.MainClaim
	c.Category = model.ParseCrisisCategory(parsed.CrisisType)
	c.Entities = parsed.Entities
	c.Confidence = parsed.Confidence
	if c.Confidence <= 0 || c.Confidence > 1 {
		c.Confidence = 0.5
	}
	// Opinions and unfalsifiable statements still flow through the pipeline,
	// but with extraction confidence capped so synthesis treats them warily.
	if parsed.IsCheckworthy != nil && !*parsed.IsCheckworthy && c.Confidence > 0.3 {
		c.Confidence = 0.3
	}

	return c, nil
}

func (e *Extractor) complete(ctx context.Context, system, prompt string) (*extractionResponse, error) {
	resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
		System:      system,
		Prompt:      prompt,
		Temperature: 0.3,
	})
	if err != nil {
		return nil, err
	}

	var parsed extractionResponse
	if err := llm.DecodeJSON(resp.Text, &parsed); err != nil {
		return nil, fmt.Errorf("parse extraction response: %w", err)
	}
	return &parsed, nil
}
