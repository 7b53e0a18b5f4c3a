package ingestion

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/wakti/wakti-nlp/internal/fetch"
)

func TestFromFile_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"title":"A"},{"title":"B"}]`), 0o600))

	snippets, meta, err := FromFile(path, nil)
	require.NoError(t, err)
	assert.Len(t, snippets, 2)
	assert.Equal(t, "json", meta.Format)
	assert.Equal(t, 2, meta.SnippetCount)
	assert.Equal(t, path, meta.Source)
	assert.Len(t, meta.Hash, 64)
	assert.NotEmpty(t, meta.Timestamp)
}

func TestFromFile_HTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(duckDuckGoPage), 0o600))

	snippets, meta, err := FromFile(path, &Options{Engine: fetch.EngineDuckDuckGo})
	require.NoError(t, err)
	assert.Len(t, snippets, 2)
	assert.Equal(t, "html", meta.Format)
	assert.Equal(t, "duckduckgo", meta.Engine)
}

func TestFromFile_SniffsFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.txt")
	require.NoError(t, os.WriteFile(path, []byte(`  {"results": [{"title": "A"}]}`), 0o600))

	snippets, meta, err := FromFile(path, nil)
	require.NoError(t, err)
	assert.Len(t, snippets, 1)
	assert.Equal(t, "json", meta.Format)
}

func TestFromFile_Errors(t *testing.T) {
	_, _, err := FromFile(filepath.Join(t.TempDir(), "missing.json"), nil)
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))
	_, _, err = FromFile(path, nil)
	require.ErrorAs(t, err, &loadErr)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestFromURL_JSONAPI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results": [{"title": "Lakers beat Celtics 102-98", "url": "https://espn.com"}]}`))
	}))
	defer server.Close()

	snippets, meta, err := FromURL(context.Background(), server.URL, &Options{Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)
	require.Len(t, snippets, 1)
	assert.Equal(t, "Lakers beat Celtics 102-98", snippets[0].Title)
	assert.Equal(t, "json", meta.Format)
}

func TestFromURL_HTMLPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(duckDuckGoPage))
	}))
	defer server.Close()

	snippets, meta, err := FromURL(context.Background(), server.URL, &Options{Engine: fetch.EngineDuckDuckGo})
	require.NoError(t, err)
	assert.Len(t, snippets, 2)
	assert.False(t, meta.Rendered)
}

func TestFromURL_WithCachedFetcher(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(duckDuckGoPage))
	}))
	defer server.Close()

	opts := &Options{Engine: fetch.EngineDuckDuckGo, Fetcher: fetch.NewCachedFetcher(nil, nil)}
	snippets, _, err := FromURL(context.Background(), server.URL, opts)
	require.NoError(t, err)
	assert.Len(t, snippets, 2)
	assert.Equal(t, 1, hits)
}

func TestFromURL_BrowserFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div id="app"></div></body></html>`))
	}))
	defer server.Close()

	original := renderWithBrowser
	t.Cleanup(func() { renderWithBrowser = original })

	renderWithBrowser = func(context.Context, string, *zap.Logger) (string, error) {
		return duckDuckGoPage, nil
	}
	snippets, meta, err := FromURL(context.Background(), server.URL, &Options{Engine: fetch.EngineDuckDuckGo, UseBrowser: true})
	require.NoError(t, err)
	assert.Len(t, snippets, 2)
	assert.True(t, meta.Rendered)

	renderWithBrowser = func(context.Context, string, *zap.Logger) (string, error) {
		return "", errors.New("chrome not installed")
	}
	snippets, meta, err = FromURL(context.Background(), server.URL, &Options{UseBrowser: true})
	require.NoError(t, err)
	assert.Empty(t, snippets)
	assert.False(t, meta.Rendered)
}

func TestFromURL_InvalidURL(t *testing.T) {
	for _, u := range []string{"not a url", "ftp://example.com", "https://"} {
		_, _, err := FromURL(context.Background(), u, nil)
		assert.True(t, errors.Is(err, ErrInvalidURL), u)
	}
}

func TestFromURL_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, _, err := FromURL(context.Background(), server.URL, nil)
	assert.True(t, errors.Is(err, ErrHTTPRequestFailed))
}
