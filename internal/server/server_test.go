package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crisiswatch/crisiswatch/internal/cache"
	"github.com/crisiswatch/crisiswatch/internal/llm"
	"github.com/crisiswatch/crisiswatch/internal/model"
	"github.com/crisiswatch/crisiswatch/internal/pipeline"
	"github.com/crisiswatch/crisiswatch/internal/source"
	"github.com/crisiswatch/crisiswatch/internal/trending"
)

type scriptedProvider struct{}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) IsAvailable(ctx context.Context) bool { return true }

func (p *scriptedProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	switch {
	case strings.Contains(req.Prompt, "main_claim"):
		return &llm.CompletionResponse{Text: `{
			"main_claim": "Drinking hot water with lemon cures COVID-19",
			"crisis_type": "health",
			"entities": ["COVID-19"],
			"is_checkworthy": true,
			"confidence": 0.9
		}`}, nil
	case strings.Contains(req.System, "misinformation analyst"):
		return &llm.CompletionResponse{Text: `{
			"stances": [],
			"verdict": "false",
			"confidence": 0.9,
			"reasoning": "All fact-checkers rate this false."
		}`}, nil
	case strings.Contains(req.System, "translator"):
		return &llm.CompletionResponse{Text: "यह दावा गलत है।"}, nil
	default:
		return &llm.CompletionResponse{Text: `{
			"explanation": "The claim is false according to every checked source.",
			"correction": "Drinking hot water with lemon DOES NOT cure COVID-19."
		}`}, nil
	}
}

type stubAdapter struct{}

func (a *stubAdapter) Name() string           { return "factcheck" }
func (a *stubAdapter) Kind() model.SourceKind { return model.KindFactCheck }
func (a *stubAdapter) Weight() float64        { return 0.9 }

func (a *stubAdapter) Search(ctx context.Context, query model.SearchQuery) ([]model.EvidenceItem, error) {
	return []model.EvidenceItem{
		{
			SourceID: "factcheck",
			Kind:     model.KindFactCheck,
			URL:      "https://snopes.com/fact-check/lemon-water",
			Snippet:  "Rated False",
			Stance:   model.StanceRefutes,
			Weight:   0.92,
		},
	}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := model.DefaultConfig()
	cfg.Search.PerSourceTimeout = 200 * time.Millisecond
	cfg.Search.OverallBudget = time.Second
	cfg.Search.RatePerHost = 1000
	cfg.Search.RateBurst = 100
	cfg.Pipeline.Budget = 5 * time.Second

	results := cache.NewResultCache(cfg.Cache, nil, nil)
	trends := trending.NewStore(cfg.Trending)
	p := pipeline.New(cfg, &scriptedProvider{}, []source.Adapter{&stubAdapter{}}, results, trends, nil)

	return New(p, trends, cfg.Server, nil)
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleCheck(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/check", `{"claim": "Drinking hot water with lemon cures COVID-19"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"verdict":"false"`)
	assert.Contains(t, body, `"severity":"high"`)
	assert.Contains(t, body, "DOES NOT cure")
	assert.Contains(t, body, "explanation_hindi")
}

func TestHandleCheckBadRequest(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/check", `{"not_claim": 1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, s, http.MethodPost, "/check", `{"claim": "hi"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "too short")
}

func TestHandleCheckBatch(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/check/batch",
		`{"claims": ["Drinking hot water with lemon cures COVID-19", "hi"]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"verdict":"false"`)
	// The too-short claim fails its own item without failing the batch.
	assert.Contains(t, body, "too short")
}

func TestHandleCheckBatchTooLarge(t *testing.T) {
	s := newTestServer(t)

	claims := make([]string, 0, maxBatchSize+1)
	for i := 0; i <= maxBatchSize; i++ {
		claims = append(claims, `"some claim text"`)
	}
	body := `{"claims": [` + strings.Join(claims, ",") + `]}`

	rec := doRequest(t, s, http.MethodPost, "/check/batch", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestHandleTrending(t *testing.T) {
	s := newTestServer(t)

	doRequest(t, s, http.MethodPost, "/check", `{"claim": "Drinking hot water with lemon cures COVID-19"}`)

	rec := doRequest(t, s, http.MethodGet, "/trending", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"seen_count":1`)
}

func TestHandleStats(t *testing.T) {
	s := newTestServer(t)

	doRequest(t, s, http.MethodPost, "/check", `{"claim": "Drinking hot water with lemon cures COVID-19"}`)
	doRequest(t, s, http.MethodPost, "/check", `{"claim": "Drinking hot water with lemon cures COVID-19"}`)

	rec := doRequest(t, s, http.MethodGet, "/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"hits":1`)
	assert.Contains(t, body, `"sources":1`)
	assert.Contains(t, body, `"false":2`, "both completions count toward the verdict totals")
}

func TestHandleCheckStream(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/check/stream?claim=" + "Drinking+hot+water+with+lemon+cures+COVID-19")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	// gin appends a charset parameter when writing the first SSE event.
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream"),
		"unexpected Content-Type %q", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	stream := string(body)

	// One event per state, in order, ending with the result-bearing event.
	received := strings.Index(stream, "event:received")
	completed := strings.Index(stream, "event:completed")
	assert.GreaterOrEqual(t, received, 0, "missing received event")
	assert.Greater(t, completed, received, "completed must follow received")
	assert.Contains(t, stream, "event:searching")
	assert.Contains(t, stream, `"verdict":"false"`)
}

func TestHandleCheckStreamMissingClaim(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/check/stream", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCheckStreamValidationError(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/check/stream?claim=hi")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "event:failed")
	assert.Contains(t, string(body), "too short")
}
