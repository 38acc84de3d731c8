package claim

import (
	"strings"

	"github.com/crisiswatch/crisiswatch/internal/model"
)

// maxQueries bounds the fan-out per run.
const maxQueries = 4

// PlanQueries expands a claim into a small set of diversified search queries:
// the direct assertion, a fact-check probe, a negation probe, and an
// entity-focused query when entities are known. Pure function of the claim;
// never fails — the claim text verbatim is always the floor.
func PlanQueries(c model.Claim) []model.SearchQuery {
	text := strings.TrimSpace(c.Text)
	if text == "" {
		text = strings.TrimSpace(c.RawText)
	}
	if text == "" {
		return nil
	}

	queries := []model.SearchQuery{
		{Text: text, Intent: model.IntentDirect},
		{Text: text + " fact check", Intent: model.IntentFactCheck},
		{Text: text + " true or false", Intent: model.IntentNegation},
	}

	if len(c.Entities) > 0 {
		limit := len(c.Entities)
		if limit > 3 {
			limit = 3
		}
		queries = append(queries, model.SearchQuery{
			Text:   strings.Join(c.Entities[:limit], " ") + " news",
			Intent: model.IntentEntity,
		})
	}

	if len(queries) > maxQueries {
		queries = queries[:maxQueries]
	}
	return queries
}
