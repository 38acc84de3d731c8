package source

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/crisiswatch/crisiswatch/internal/model"
	"github.com/crisiswatch/crisiswatch/internal/score"
)

const factCheckBaseURL = "https://factchecktools.googleapis.com/v1alpha1/claims:search"

// FactCheckAdapter searches the Google Fact Check Tools registry for
// existing fact-checks by verified organizations. Registry hits carry an
// explicit stance derived from the reviewer's textual rating.
type FactCheckAdapter struct {
	client     *Client
	apiKey     string
	baseURL    string
	maxResults int
}

// NewFactCheckAdapter creates a new fact-check registry adapter
func NewFactCheckAdapter(client *Client, apiKey string) *FactCheckAdapter {
	return &FactCheckAdapter{
		client:     client,
		apiKey:     apiKey,
		baseURL:    factCheckBaseURL,
		maxResults: 10,
	}
}

// Name returns the adapter name
func (a *FactCheckAdapter) Name() string { return "factcheck" }

// Kind returns the provider class
func (a *FactCheckAdapter) Kind() model.SourceKind { return model.KindFactCheck }

// Weight returns the adapter's static evidentiary weight
func (a *FactCheckAdapter) Weight() float64 { return score.KindWeight(model.KindFactCheck) }

type factCheckResponse struct {
	Claims []struct {
		Text        string `json:"text"`
		Claimant    string `json:"claimant"`
		ClaimReview []struct {
			Publisher struct {
				Name string `json:"name"`
				Site string `json:"site"`
			} `json:"publisher"`
			URL           string `json:"url"`
			Title         string `json:"title"`
			ReviewDate    string `json:"reviewDate"`
			TextualRating string `json:"textualRating"`
		} `json:"claimReview"`
	} `json:"claims"`
}

// Search queries the claims:search endpoint
func (a *FactCheckAdapter) Search(ctx context.Context, query model.SearchQuery) ([]model.EvidenceItem, error) {
	params := url.Values{
		"key":          {a.apiKey},
		"query":        {query.Text},
		"languageCode": {"en"},
		"pageSize":     {strconv.Itoa(a.maxResults)},
	}

	var resp factCheckResponse
	if err := a.client.GetJSON(ctx, a.baseURL, params, &resp); err != nil {
		return nil, classify(a.Name(), err)
	}

	var items []model.EvidenceItem
	for _, c := range resp.Claims {
		// Each registered claim may carry several independent reviews.
		for _, review := range c.ClaimReview {
			publisher := review.Publisher.Name
			if publisher == "" {
				publisher = "Fact-checker"
			}
			snippet := fmt.Sprintf("Claim: %q. Rating: %s. %s", c.Text, review.TextualRating, review.Title)
			items = append(items, model.EvidenceItem{
				SourceID:    a.Name(),
				SourceName:  publisher,
				Kind:        a.Kind(),
				URL:         review.URL,
				Title:       review.Title,
				Snippet:     snippet,
				PublishedAt: parseTime(review.ReviewDate),
				Stance:      stanceFromRating(review.TextualRating),
				Weight:      score.SourceWeight(review.URL, a.Kind()),
			})
		}
	}

	return items, nil
}
