package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/homecyclehelp/booking-client/pkg/logging"
)

func newTestCache(t *testing.T) (*RedisSuggestionCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisSuggestionCache(client, time.Minute, logging.Default()), mr
}

func TestRedisSuggestionCache_RoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	if _, ok := cache.Get(ctx, "10 rue"); ok {
		t.Fatal("expected cache miss on empty cache")
	}

	want := []Suggestion{{ID: "75102_6928", Label: "10 Rue de la Paix 75002 Paris"}}
	cache.Set(ctx, "10 rue", want)

	got, ok := cache.Get(ctx, "10 rue")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if len(got) != 1 || got[0].ID != want[0].ID {
		t.Fatalf("got = %+v", got)
	}
}

func TestRedisSuggestionCache_KeyNormalization(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	cache.Set(ctx, "  10 Rue De La Paix ", []Suggestion{{ID: "a", Label: "x"}})
	if _, ok := cache.Get(ctx, "10 rue de la paix"); !ok {
		t.Fatal("expected hit after trim/lowercase normalization")
	}
}

func TestRedisSuggestionCache_CorruptEntryIsMiss(t *testing.T) {
	cache, mr := newTestCache(t)
	_ = mr.Set(cacheKey("10 rue"), "{not json")

	if _, ok := cache.Get(context.Background(), "10 rue"); ok {
		t.Fatal("corrupt entry must read as a miss")
	}
}

func TestRedisSuggestionCache_DownRedisDegradesSilently(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewRedisSuggestionCache(client, time.Minute, logging.Default())
	mr.Close()

	ctx := context.Background()
	cache.Set(ctx, "10 rue", []Suggestion{{ID: "a", Label: "x"}})
	if _, ok := cache.Get(ctx, "10 rue"); ok {
		t.Fatal("down redis must behave as a miss")
	}
}

func TestClient_SuggestUsesCache(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(banPayload))
	}))
	t.Cleanup(ts.Close)

	cache, _ := newTestCache(t)
	client := NewClient(ts.URL, cache, logging.Default())

	first := client.Suggest(context.Background(), "10 rue de la Paix")
	second := client.Suggest(context.Background(), "10 rue de la Paix")

	if calls.Load() != 1 {
		t.Fatalf("provider called %d times, want 1 (second hit cached)", calls.Load())
	}
	if len(first) != len(second) {
		t.Fatalf("cached result differs: %d vs %d", len(first), len(second))
	}
}
