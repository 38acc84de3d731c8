package model

// Claim represents the single verifiable assertion extracted from user input
type Claim struct {
	RawText        string         `json:"raw_text"`              // Original user input
	NormalizedText string         `json:"normalized_text"`       // Canonical form used for cache keying
	Text           string         `json:"text"`                  // The extracted assertion
	Category       CrisisCategory `json:"category"`              // Crisis category classification
	Entities       []string       `json:"entities,omitempty"`    // Named entities mentioned in the claim
	Confidence     float64        `json:"extraction_confidence"` // Extractor's confidence in the assertion
	Language       string         `json:"language,omitempty"`    // "en" or "hi"
}

// CrisisCategory classifies the crisis domain of a claim
type CrisisCategory string

const (
	CategoryHealth          CrisisCategory = "health"
	CategoryNaturalDisaster CrisisCategory = "natural_disaster"
	CategoryCivilUnrest     CrisisCategory = "civil_unrest"
	CategoryOther           CrisisCategory = "other"
)

// ParseCrisisCategory maps free-form category strings (including the wider set
// an extraction model may return) onto the four supported categories.
func ParseCrisisCategory(s string) CrisisCategory {
	switch s {
	case "health", "medical", "disease", "pandemic":
		return CategoryHealth
	case "natural_disaster", "disaster", "weather", "earthquake", "flood":
		return CategoryNaturalDisaster
	case "civil_unrest", "unrest", "riot", "conflict", "politics":
		return CategoryCivilUnrest
	default:
		return CategoryOther
	}
}

// QueryIntent tags the search strategy behind a generated query
type QueryIntent string

const (
	IntentDirect    QueryIntent = "direct"    // Claim text as-is
	IntentFactCheck QueryIntent = "factcheck" // Phrased to surface existing fact-checks
	IntentNegation  QueryIntent = "negation"  // Probes for refutations
	IntentEntity    QueryIntent = "entity"    // Entity-focused phrasing
)

// SearchQuery is one diversified query derived from a claim.
// Ephemeral: discarded once the aggregator has run.
type SearchQuery struct {
	Text   string      `json:"text"`
	Intent QueryIntent `json:"intent"`
}
