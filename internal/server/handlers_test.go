package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakti/wakti-nlp/internal/cache"
	"github.com/wakti/wakti-nlp/internal/types"
)

const matchSnippets = `{"snippets": [
	{"title": "Lakers beat Celtics 102-98, full recap", "url": "https://www.espn.com/nba/recap"},
	{"title": "NBA standings", "url": "https://nba.com/standings"}
]}`

func TestClassify_Matches(t *testing.T) {
	s := newTestServer(t, Options{})

	w := doRequest(t, s.Handler(), http.MethodPost, "/v1/results/classify", matchSnippets)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[classifyResponse](t, w)
	assert.Equal(t, types.ResultKindMatches, resp.Kind)
	assert.Equal(t, []string{"Winner", "Loser", "Score", "Highlights", "Source"}, resp.Columns)
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, "Lakers", resp.Rows[0].Winner)
	assert.Equal(t, "espn.com", resp.Rows[0].SourceHost)
	assert.Equal(t, "MISS", w.Header().Get(cacheHeader))
}

func TestClassify_Generic(t *testing.T) {
	s := newTestServer(t, Options{})

	w := doRequest(t, s.Handler(), http.MethodPost, "/v1/results/classify",
		`{"snippets": [{"title": "Weather today", "url": "https://www.weather.com/x"}, {"url": "https://a.org"}]}`)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[classifyResponse](t, w)
	assert.Equal(t, types.ResultKindGeneric, resp.Kind)
	assert.Equal(t, []types.GenericRow{
		{Title: "Weather today", Source: "weather.com"},
		{Title: "—", Source: "a.org"},
	}, resp.GenericRows)
}

func TestClassify_Formats(t *testing.T) {
	s := newTestServer(t, Options{})

	w := doRequest(t, s.Handler(), http.MethodPost, "/v1/results/classify?format=html", matchSnippets)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "<th>Winner</th>")
	assert.Contains(t, w.Body.String(), "<td>Lakers</td>")

	w = doRequest(t, s.Handler(), http.MethodPost, "/v1/results/classify?format=markdown", matchSnippets)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/markdown")
	assert.True(t, strings.HasPrefix(w.Body.String(), "| Winner | Loser | Score | Highlights | Source |\n"))

	w = doRequest(t, s.Handler(), http.MethodPost, "/v1/results/classify?format=pdf", matchSnippets)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClassify_InvalidBodies(t *testing.T) {
	s := newTestServer(t, Options{})

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed JSON", body: `{"snippets": [`},
		{name: "missing snippets", body: `{}`},
		{name: "wrong type", body: `{"snippets": [{"title": 7}]}`},
		{name: "unknown field", body: `{"snippets": [], "extra": true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, s.Handler(), http.MethodPost, "/v1/results/classify", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeBody[map[string]any](t, w)
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestClassify_BodyTooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.Server.MaxBodyBytes = 64
	s := newTestServer(t, Options{Config: cfg})

	w := doRequest(t, s.Handler(), http.MethodPost, "/v1/results/classify", matchSnippets)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestClassifyBatch_PreservesOrder(t *testing.T) {
	s := newTestServer(t, Options{})

	var batches []string
	for i := 0; i < 8; i++ {
		if i%2 == 0 {
			batches = append(batches, fmt.Sprintf(`[{"title": "Team%d beat Rivals 3-%d"}]`, i, i%3))
		} else {
			batches = append(batches, fmt.Sprintf(`[{"title": "Article %d"}]`, i))
		}
	}
	body := `{"batches": [` + strings.Join(batches, ",") + `]}`

	w := doRequest(t, s.Handler(), http.MethodPost, "/v1/results/classify/batch", body)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[batchClassifyResponse](t, w)
	require.Len(t, resp.Results, 8)
	for i, res := range resp.Results {
		if i%2 == 0 {
			require.Equal(t, types.ResultKindMatches, res.Kind, "batch %d", i)
			assert.Equal(t, fmt.Sprintf("Team%d", i), res.Rows[0].Winner)
		} else {
			require.Equal(t, types.ResultKindGeneric, res.Kind, "batch %d", i)
			assert.Equal(t, fmt.Sprintf("Article %d", i), res.GenericRows[0].Title)
		}
	}
}

func TestClassifyBatch_Empty(t *testing.T) {
	s := newTestServer(t, Options{})

	w := doRequest(t, s.Handler(), http.MethodPost, "/v1/results/classify/batch", `{"batches": []}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClassifyURL(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results": [{"title": "Lakers beat Celtics 102-98", "url": "https://espn.com/x"}]}`))
	}))
	defer upstream.Close()

	s := newTestServer(t, Options{})

	w := doRequest(t, s.Handler(), http.MethodPost, "/v1/results/classify-url", `{"url": "`+upstream.URL+`/search?q=lakers"}`)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[classifyURLResponse](t, w)
	assert.Equal(t, types.ResultKindMatches, resp.Kind)
	require.NotNil(t, resp.Metadata)
	assert.Equal(t, "json", resp.Metadata.Format)
	assert.Equal(t, 1, resp.Metadata.SnippetCount)
}

func TestClassifyURL_UpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()

	s := newTestServer(t, Options{})

	w := doRequest(t, s.Handler(), http.MethodPost, "/v1/results/classify-url", `{"url": "`+upstream.URL+`"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w = doRequest(t, s.Handler(), http.MethodPost, "/v1/results/classify-url", `{"url": "ftp://example.com"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDetectIntent(t *testing.T) {
	s := newTestServer(t, Options{})

	w := doRequest(t, s.Handler(), http.MethodPost, "/v1/intents/detect", `{"prompt": "add user authentication login page"}`)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[types.DetectedIntent](t, w)
	assert.Equal(t, types.IntentAuthentication, resp.Type)
	assert.InDelta(t, 0.95, resp.Confidence, 1e-9)
	assert.True(t, resp.ShouldAskQuestions)
	assert.NotEmpty(t, resp.QuestionTemplates)
}

func TestDetectIntent_Simple(t *testing.T) {
	s := newTestServer(t, Options{})

	w := doRequest(t, s.Handler(), http.MethodPost, "/v1/intents/detect", `{"prompt": "hello there"}`)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[types.DetectedIntent](t, w)
	assert.Equal(t, types.IntentSimple, resp.Type)
	assert.Equal(t, 1.0, resp.Confidence)
	assert.False(t, resp.ShouldAskQuestions)
}

func TestDetectIntent_EmptyPrompt(t *testing.T) {
	s := newTestServer(t, Options{})

	w := doRequest(t, s.Handler(), http.MethodPost, "/v1/intents/detect", `{"prompt": ""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDetectIntents(t *testing.T) {
	s := newTestServer(t, Options{})

	w := doRequest(t, s.Handler(), http.MethodPost, "/v1/intents/detect-multiple",
		`{"prompt": "add a login form with validation and a dashboard with charts"}`)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[map[string][]types.DetectedIntent](t, w)
	intents := resp["intents"]
	require.Len(t, intents, 3)
	assert.Equal(t, types.IntentForms, intents[0].Type)
	assert.Equal(t, types.IntentAuthentication, intents[1].Type)
	assert.Equal(t, types.IntentDashboard, intents[2].Type)
}

func TestAnalyze(t *testing.T) {
	s := newTestServer(t, Options{})

	w := doRequest(t, s.Handler(), http.MethodPost, "/v1/requests/analyze",
		`{"prompt": "A barber shop site with online booking, a login area and a contact page"}`)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[analyzeResponse](t, w)
	assert.Equal(t, "barber shop", resp.BusinessType)
	assert.True(t, resp.HasWizardFeatures)
	require.NotNil(t, resp.NextWizardFeature)
	assert.Equal(t, types.FeatureBooking, resp.NextWizardFeature.Type)
	require.Len(t, resp.NonWizardFeatures, 1)
	assert.Equal(t, types.FeatureContact, resp.NonWizardFeatures[0].Type)
}

func TestSummary(t *testing.T) {
	s := newTestServer(t, Options{})

	w := doRequest(t, s.Handler(), http.MethodPost, "/v1/requests/summary",
		`{"prompt": "A barber shop site with online booking and a contact page"}`)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[summaryResponse](t, w)
	assert.Equal(t, "barber shop", resp.BusinessType)
	assert.Contains(t, resp.Summary, "Booking system (needs setup)")
	assert.Contains(t, resp.Summary, "Contact page")
}

func TestResponsesAreCached(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	s := newTestServer(t, Options{Cache: cache.NewRedisWithClient(client, 0)})

	first := doRequest(t, s.Handler(), http.MethodPost, "/v1/intents/detect", `{"prompt": "add a login page"}`)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get(cacheHeader))

	second := doRequest(t, s.Handler(), http.MethodPost, "/v1/intents/detect", `{"prompt": "add a login page"}`)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get(cacheHeader))
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	classify := doRequest(t, s.Handler(), http.MethodPost, "/v1/results/classify", matchSnippets)
	assert.Equal(t, "MISS", classify.Header().Get(cacheHeader))
	classify = doRequest(t, s.Handler(), http.MethodPost, "/v1/results/classify", matchSnippets)
	assert.Equal(t, "HIT", classify.Header().Get(cacheHeader))

	w := doRequest(t, s.Handler(), http.MethodGet, "/health", "")
	resp := decodeBody[map[string]any](t, w)
	assert.Equal(t, "ok", resp["checks"].(map[string]any)["cache"])
}

func TestCacheFailureDoesNotFailRequest(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	s := newTestServer(t, Options{Cache: cache.NewRedisWithClient(client, 0)})

	mr.Close()

	w := doRequest(t, s.Handler(), http.MethodPost, "/v1/intents/detect", `{"prompt": "add a login page"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get(cacheHeader))
}
