package source

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/crisiswatch/crisiswatch/internal/model"
	"github.com/crisiswatch/crisiswatch/internal/score"
	"github.com/crisiswatch/crisiswatch/internal/util"
)

// scrapeTarget describes one fact-checking site's search page layout.
type scrapeTarget struct {
	name       string
	baseURL    string
	searchPath string // query appended URL-escaped
	linkMarker string // href substring identifying a fact-check article
}

var defaultScrapeTargets = []scrapeTarget{
	{
		name:       "Snopes",
		baseURL:    "https://www.snopes.com",
		searchPath: "/search/?q=",
		linkMarker: "/fact-check/",
	},
	{
		name:       "PolitiFact",
		baseURL:    "https://www.politifact.com",
		searchPath: "/search/?q=",
		linkMarker: "/factchecks/",
	},
}

// ScraperAdapter scrapes IFCN-certified fact-checker search pages directly,
// giving registry-grade coverage without an API key. Honors robots.txt.
type ScraperAdapter struct {
	client     *Client
	robots     *util.RobotsChecker
	targets    []scrapeTarget
	maxPerSite int
}

// NewScraperAdapter creates a new fact-checker scraping adapter
func NewScraperAdapter(client *Client, userAgent string) *ScraperAdapter {
	return &ScraperAdapter{
		client:     client,
		robots:     util.NewRobotsChecker(userAgent, 5*time.Second),
		targets:    defaultScrapeTargets,
		maxPerSite: 3,
	}
}

// Name returns the adapter name
func (a *ScraperAdapter) Name() string { return "factcheck_scraper" }

// Kind returns the provider class
func (a *ScraperAdapter) Kind() model.SourceKind { return model.KindFactCheck }

// Weight returns the adapter's static evidentiary weight
func (a *ScraperAdapter) Weight() float64 { return score.KindWeight(model.KindFactCheck) }

// Search scrapes each configured fact-checker's search page. A site that
// fails or disallows crawling is skipped; the adapter only errors when every
// site failed.
func (a *ScraperAdapter) Search(ctx context.Context, query model.SearchQuery) ([]model.EvidenceItem, error) {
	var items []model.EvidenceItem
	var lastErr error

	for _, target := range a.targets {
		siteItems, err := a.scrapeSite(ctx, target, query.Text)
		if err != nil {
			lastErr = err
			continue
		}
		items = append(items, siteItems...)
	}

	if len(items) == 0 && lastErr != nil {
		return nil, classify(a.Name(), lastErr)
	}
	return items, nil
}

func (a *ScraperAdapter) scrapeSite(ctx context.Context, target scrapeTarget, query string) ([]model.EvidenceItem, error) {
	searchURL := target.baseURL + target.searchPath + url.QueryEscape(query)

	allowed, err := a.robots.CanFetch(ctx, searchURL)
	if err == nil && !allowed {
		return nil, fmt.Errorf("robots.txt disallows %s", searchURL)
	}

	page, err := a.client.GetHTML(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	doc, err := parseHTML(page)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	return a.collectLinks(doc, target), nil
}

func (a *ScraperAdapter) collectLinks(doc *html.Node, target scrapeTarget) []model.EvidenceItem {
	var items []model.EvidenceItem
	seen := make(map[string]bool)

	for _, n := range findAll(doc, isAnchor) {
		href := getAttribute(n, "href")
		if !strings.Contains(href, target.linkMarker) {
			continue
		}
		if !strings.HasPrefix(href, "http") {
			href = target.baseURL + href
		}
		if seen[href] {
			continue
		}

		title := extractText(n)
		if title == "" {
			continue
		}

		seen[href] = true
		items = append(items, model.EvidenceItem{
			SourceID:   a.Name(),
			SourceName: target.name,
			Kind:       a.Kind(),
			URL:        href,
			Title:      title,
			Snippet:    fmt.Sprintf("%s fact-check: %s", target.name, title),
			Stance:     stanceFromRating(title),
			Weight:     score.SourceWeight(href, a.Kind()),
		})
		if len(items) >= a.maxPerSite {
			break
		}
	}

	return items
}
