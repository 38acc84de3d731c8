package source

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crisiswatch/crisiswatch/internal/model"
)

func TestTavilyAdapterSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}

		var req tavilyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.APIKey != "tavily-key" {
			t.Errorf("APIKey = %q", req.APIKey)
		}
		if req.SearchDepth != "advanced" {
			t.Errorf("SearchDepth = %q", req.SearchDepth)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"results": [
				{
					"title": "Dam breach rumors denied by officials",
					"url": "https://www.reuters.com/world/india/dam-breach",
					"content": "Officials denied reports of a dam breach upstream.",
					"published_date": "2025-07-01T10:00:00Z"
				}
			]
		}`))
	}))
	defer server.Close()

	adapter := NewTavilyAdapter(testClient(), "tavily-key")
	adapter.baseURL = server.URL

	items, err := adapter.Search(context.Background(), model.SearchQuery{Text: "dam breach upstream"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}

	item := items[0]
	if item.Kind != model.KindWebSearch {
		t.Errorf("Kind = %q, want web_search", item.Kind)
	}
	if item.Stance != model.StanceUnknown {
		t.Errorf("Stance = %q, want unknown for raw search hits", item.Stance)
	}
	// reuters.com appears in the reliability table and outweighs the
	// web-search default.
	if item.Weight <= 0.55 {
		t.Errorf("Weight = %f, want domain score above web-search default", item.Weight)
	}
}

func TestNewsAPIAdapterSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("sortBy"); got != "relevancy" {
			t.Errorf("sortBy = %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "ok",
			"articles": [
				{
					"source": {"name": "The Hindu"},
					"title": "No evidence of bridge collapse, say authorities",
					"description": "",
					"content": "Authorities inspected the bridge and found it intact.",
					"url": "https://www.thehindu.com/news/bridge-intact",
					"publishedAt": "2025-07-02T08:30:00Z"
				}
			]
		}`))
	}))
	defer server.Close()

	adapter := NewNewsAPIAdapter(testClient(), "news-key")
	adapter.baseURL = server.URL

	items, err := adapter.Search(context.Background(), model.SearchQuery{Text: "bridge collapse"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}

	item := items[0]
	if item.SourceName != "The Hindu" {
		t.Errorf("SourceName = %q", item.SourceName)
	}
	// Empty description falls back to article content.
	if item.Snippet != "Authorities inspected the bridge and found it intact." {
		t.Errorf("Snippet = %q", item.Snippet)
	}
}

func TestNewsAPIAdapterErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "error", "message": "apiKeyInvalid"}`))
	}))
	defer server.Close()

	adapter := NewNewsAPIAdapter(testClient(), "bad-key")
	adapter.baseURL = server.URL

	_, err := adapter.Search(context.Background(), model.SearchQuery{Text: "anything"})

	var adapterErr *AdapterError
	if !errors.As(err, &adapterErr) {
		t.Fatalf("expected *AdapterError, got %T", err)
	}
	if adapterErr.Kind != FailureMalformed {
		t.Errorf("Kind = %q, want malformed", adapterErr.Kind)
	}
}
