package source

import (
	"context"

	"github.com/crisiswatch/crisiswatch/internal/model"
	"github.com/crisiswatch/crisiswatch/internal/score"
)

const tavilyBaseURL = "https://api.tavily.com/search"

// TavilyAdapter performs AI-optimized general web search via Tavily.
// Requires an API key; absent key means the adapter is not registered.
type TavilyAdapter struct {
	client     *Client
	apiKey     string
	baseURL    string
	maxResults int
}

// NewTavilyAdapter creates a new Tavily web search adapter
func NewTavilyAdapter(client *Client, apiKey string) *TavilyAdapter {
	return &TavilyAdapter{
		client:     client,
		apiKey:     apiKey,
		baseURL:    tavilyBaseURL,
		maxResults: 5,
	}
}

// Name returns the adapter name
func (a *TavilyAdapter) Name() string { return "tavily" }

// Kind returns the provider class
func (a *TavilyAdapter) Kind() model.SourceKind { return model.KindWebSearch }

// Weight returns the adapter's static evidentiary weight
func (a *TavilyAdapter) Weight() float64 { return score.KindWeight(model.KindWebSearch) }

type tavilyRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	MaxResults    int    `json:"max_results"`
	SearchDepth   string `json:"search_depth"`
	IncludeAnswer bool   `json:"include_answer"`
}

type tavilyResponse struct {
	Results []struct {
		Title         string `json:"title"`
		URL           string `json:"url"`
		Content       string `json:"content"`
		PublishedDate string `json:"published_date"`
	} `json:"results"`
}

// Search posts the query to the Tavily search endpoint
func (a *TavilyAdapter) Search(ctx context.Context, query model.SearchQuery) ([]model.EvidenceItem, error) {
	payload := tavilyRequest{
		APIKey:        a.apiKey,
		Query:         query.Text,
		MaxResults:    a.maxResults,
		SearchDepth:   "advanced",
		IncludeAnswer: true,
	}

	var resp tavilyResponse
	if err := a.client.PostJSON(ctx, a.baseURL, payload, &resp); err != nil {
		return nil, classify(a.Name(), err)
	}

	items := make([]model.EvidenceItem, 0, len(resp.Results))
	for _, r := range resp.Results {
		items = append(items, model.EvidenceItem{
			SourceID:    a.Name(),
			SourceName:  "Web Search",
			Kind:        a.Kind(),
			URL:         r.URL,
			Title:       r.Title,
			Snippet:     r.Content,
			PublishedAt: parseTime(r.PublishedDate),
			Stance:      model.StanceUnknown,
			Weight:      score.SourceWeight(r.URL, a.Kind()),
		})
	}

	return items, nil
}
