package source

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/crisiswatch/crisiswatch/internal/model"
	"github.com/crisiswatch/crisiswatch/internal/score"
)

const newsAPIBaseURL = "https://newsapi.org/v2/everything"

// NewsAPIAdapter searches recent news coverage via NewsAPI.
type NewsAPIAdapter struct {
	client     *Client
	apiKey     string
	baseURL    string
	maxResults int
}

// NewNewsAPIAdapter creates a new NewsAPI adapter
func NewNewsAPIAdapter(client *Client, apiKey string) *NewsAPIAdapter {
	return &NewsAPIAdapter{
		client:     client,
		apiKey:     apiKey,
		baseURL:    newsAPIBaseURL,
		maxResults: 5,
	}
}

// Name returns the adapter name
func (a *NewsAPIAdapter) Name() string { return "newsapi" }

// Kind returns the provider class
func (a *NewsAPIAdapter) Kind() model.SourceKind { return model.KindNews }

// Weight returns the adapter's static evidentiary weight
func (a *NewsAPIAdapter) Weight() float64 { return score.KindWeight(model.KindNews) }

type newsAPIResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Content     string `json:"content"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// Search queries the NewsAPI everything endpoint sorted by relevancy
func (a *NewsAPIAdapter) Search(ctx context.Context, query model.SearchQuery) ([]model.EvidenceItem, error) {
	params := url.Values{
		"apiKey":   {a.apiKey},
		"q":        {query.Text},
		"language": {"en"},
		"sortBy":   {"relevancy"},
		"pageSize": {strconv.Itoa(a.maxResults)},
	}

	var resp newsAPIResponse
	if err := a.client.GetJSON(ctx, a.baseURL, params, &resp); err != nil {
		return nil, classify(a.Name(), err)
	}
	if resp.Status != "ok" {
		return nil, classify(a.Name(), fmt.Errorf("%w: status %q: %s", ErrMalformed, resp.Status, resp.Message))
	}

	items := make([]model.EvidenceItem, 0, len(resp.Articles))
	for _, article := range resp.Articles {
		snippet := article.Description
		if snippet == "" {
			snippet = article.Content
		}
		items = append(items, model.EvidenceItem{
			SourceID:    a.Name(),
			SourceName:  article.Source.Name,
			Kind:        a.Kind(),
			URL:         article.URL,
			Title:       article.Title,
			Snippet:     snippet,
			PublishedAt: parseTime(article.PublishedAt),
			Stance:      model.StanceUnknown,
			Weight:      score.SourceWeight(article.URL, a.Kind()),
		})
	}

	return items, nil
}
