package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakti/wakti-nlp/internal/cache"
)

func newCountingServer(t *testing.T, body string) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func newTestCache(t *testing.T) cache.Cache {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewRedisWithClient(client, time.Minute)
}

func TestCachedFetcher_UsesCache(t *testing.T) {
	server, hits := newCountingServer(t, "<html><body><main>Lakers 102-98</main></body></html>")
	f := NewCachedFetcher(newTestCache(t), nil)
	ctx := context.Background()

	first, err := f.Fetch(ctx, server.URL)
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Equal(t, "Lakers 102-98", first.Text)

	second, err := f.Fetch(ctx, server.URL)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Body, second.Body)
	assert.Equal(t, "Lakers 102-98", second.Text)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestCachedFetcher_SkipCache(t *testing.T) {
	server, hits := newCountingServer(t, "<html><body>x</body></html>")
	f := NewCachedFetcher(newTestCache(t), &CachedFetcherConfig{SkipCache: true})

	for range 2 {
		res, err := f.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.False(t, res.FromCache)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(hits))
}

func TestCachedFetcher_InvalidateCache(t *testing.T) {
	server, hits := newCountingServer(t, "<html><body>x</body></html>")
	f := NewCachedFetcher(newTestCache(t), nil)
	ctx := context.Background()

	_, err := f.Fetch(ctx, server.URL)
	require.NoError(t, err)
	require.NoError(t, f.InvalidateCache(ctx, server.URL))

	res, err := f.Fetch(ctx, server.URL)
	require.NoError(t, err)
	assert.False(t, res.FromCache)
	assert.Equal(t, int32(2), atomic.LoadInt32(hits))
}

func TestCachedFetcher_NilCache(t *testing.T) {
	server, hits := newCountingServer(t, "<html><body>x</body></html>")
	f := NewCachedFetcher(nil, nil)

	for range 2 {
		_, err := f.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(hits))
}

func TestCachedFetcher_FetchMultiple(t *testing.T) {
	server, _ := newCountingServer(t, "<html><body>ok</body></html>")
	f := NewCachedFetcher(nil, nil)

	urls := []string{server.URL + "/a", server.URL + "/missing", "not a url", server.URL + "/b"}
	results, errs := f.FetchMultiple(context.Background(), urls)

	require.Len(t, results, 4)
	require.Len(t, errs, 4)

	assert.NoError(t, errs[0])
	assert.Equal(t, server.URL+"/a", results[0].URL)

	assert.Error(t, errs[1])
	assert.Nil(t, results[1])

	assert.Error(t, errs[2])
	assert.Nil(t, results[2])

	assert.NoError(t, errs[3])
	assert.Equal(t, server.URL+"/b", results[3].URL)
}
