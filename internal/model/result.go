package model

import "time"

// Verdict is the six-way truth classification assigned to a claim
type Verdict string

const (
	VerdictTrue         Verdict = "true"
	VerdictMostlyTrue   Verdict = "mostly_true"
	VerdictMixed        Verdict = "mixed"
	VerdictMostlyFalse  Verdict = "mostly_false"
	VerdictFalse        Verdict = "false"
	VerdictUnverifiable Verdict = "unverifiable"
)

// Severity ranks the real-world danger of believing a false or misleading claim
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// severityOrder is used for fail-safe tie resolution toward higher severity.
var severityOrder = map[Severity]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

// AtLeast reports whether s ranks at or above other.
func (s Severity) AtLeast(other Severity) bool {
	return severityOrder[s] >= severityOrder[other]
}

// FactCheckResult is the terminal artifact of a pipeline run.
// Immutable once produced.
type FactCheckResult struct {
	Claim            Claim       `json:"claim"`
	Evidence         EvidenceSet `json:"evidence"`
	Verdict          Verdict     `json:"verdict"`
	Confidence       float64     `json:"confidence"`
	Severity         Severity    `json:"severity"`
	ExplanationEn    string      `json:"explanation"`
	ExplanationHi    string      `json:"explanation_hindi,omitempty"`
	Correction       string      `json:"correction,omitempty"`
	SourcesChecked   int         `json:"sources_checked"`
	SourceDiversity  float64     `json:"source_diversity"`
	CreatedAt        time.Time   `json:"created_at"`
	ProcessingTimeMS int64       `json:"processing_time_ms"`
	Cached           bool        `json:"cached"`
}
