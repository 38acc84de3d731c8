package source

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"

	"github.com/crisiswatch/crisiswatch/internal/model"
	"github.com/crisiswatch/crisiswatch/internal/score"
)

const wikipediaBaseURL = "https://en.wikipedia.org/w/api.php"

// WikipediaAdapter searches Wikipedia for factual background. Keyless, so it
// is always part of the adapter set.
type WikipediaAdapter struct {
	client     *Client
	baseURL    string
	maxResults int
}

// NewWikipediaAdapter creates a new Wikipedia adapter
func NewWikipediaAdapter(client *Client) *WikipediaAdapter {
	return &WikipediaAdapter{
		client:     client,
		baseURL:    wikipediaBaseURL,
		maxResults: 5,
	}
}

// Name returns the adapter name
func (a *WikipediaAdapter) Name() string { return "wikipedia" }

// Kind returns the provider class
func (a *WikipediaAdapter) Kind() model.SourceKind { return model.KindEncyclopedia }

// Weight returns the adapter's static evidentiary weight
func (a *WikipediaAdapter) Weight() float64 { return score.KindWeight(model.KindEncyclopedia) }

type wikipediaSearchResponse struct {
	Query struct {
		Search []struct {
			PageID  int    `json:"pageid"`
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
		} `json:"search"`
	} `json:"query"`
}

// Search result snippets come back with search-match markup embedded.
var htmlTagPattern = regexp.MustCompile(`<[^>]+>`)

// Search queries the MediaWiki search API
func (a *WikipediaAdapter) Search(ctx context.Context, query model.SearchQuery) ([]model.EvidenceItem, error) {
	params := url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {query.Text},
		"srlimit":  {strconv.Itoa(a.maxResults)},
		"format":   {"json"},
		"utf8":     {"1"},
	}

	var resp wikipediaSearchResponse
	if err := a.client.GetJSON(ctx, a.baseURL, params, &resp); err != nil {
		return nil, classify(a.Name(), err)
	}

	items := make([]model.EvidenceItem, 0, len(resp.Query.Search))
	for _, page := range resp.Query.Search {
		pageURL := fmt.Sprintf("https://en.wikipedia.org/?curid=%d", page.PageID)
		items = append(items, model.EvidenceItem{
			SourceID:   a.Name(),
			SourceName: "Wikipedia",
			Kind:       a.Kind(),
			URL:        pageURL,
			Title:      page.Title,
			Snippet:    htmlTagPattern.ReplaceAllString(page.Snippet, ""),
			Stance:     model.StanceNeutral,
			Weight:     score.SourceWeight(pageURL, a.Kind()),
		})
	}

	return items, nil
}
