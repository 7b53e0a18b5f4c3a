package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

func newTestRedis(t *testing.T, ttl time.Duration) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisWithClient(client, ttl), mr
}

func TestRedis_SetGet(t *testing.T) {
	c, _ := newTestRedis(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", payload{Type: "forms", Confidence: 0.55}))

	var got payload
	ok, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, payload{Type: "forms", Confidence: 0.55}, got)
}

func TestRedis_Miss(t *testing.T) {
	c, _ := newTestRedis(t, time.Minute)

	var got payload
	ok, err := c.Get(context.Background(), "missing", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedis_Expires(t *testing.T) {
	c, mr := newTestRedis(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", payload{Type: "ui"}))
	assert.Equal(t, time.Minute, mr.TTL("k"))

	mr.FastForward(2 * time.Minute)

	ok, err := c.Get(ctx, "k", &payload{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedis_CorruptValue(t *testing.T) {
	c, mr := newTestRedis(t, time.Minute)
	require.NoError(t, mr.Set("k", "{not json"))

	_, err := c.Get(context.Background(), "k", &payload{})
	assert.Error(t, err)
}

func TestRedis_Delete(t *testing.T) {
	c, mr := newTestRedis(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", payload{}))
	require.NoError(t, c.Delete(ctx, "k"))
	assert.False(t, mr.Exists("k"))
}

func TestRedis_DefaultTTL(t *testing.T) {
	c, mr := newTestRedis(t, 0)

	require.NoError(t, c.Set(context.Background(), "k", payload{}))
	assert.Equal(t, DefaultTTL, mr.TTL("k"))
}

func TestRedis_Ping(t *testing.T) {
	c, mr := newTestRedis(t, time.Minute)
	require.NoError(t, c.Ping(context.Background()))

	mr.Close()
	assert.Error(t, c.Ping(context.Background()))
}

func TestNewRedis_InvalidURL(t *testing.T) {
	_, err := NewRedis(Options{URL: "http://nope"})
	assert.Error(t, err)
}

func TestKey(t *testing.T) {
	a := Key("intent", []byte("add login"))
	b := Key("intent", []byte("add login"))
	c := Key("features", []byte("add login"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(a, "wakti:intent:"))
	assert.Len(t, strings.TrimPrefix(a, "wakti:intent:"), 64)
}

func TestNop(t *testing.T) {
	var c Cache = Nop{}
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", payload{}))
	ok, err := c.Get(ctx, "k", &payload{})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.Delete(ctx, "k"))
}
