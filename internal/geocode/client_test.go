package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/homecyclehelp/booking-client/pkg/logging"
)

const banPayload = `{
  "features": [
    {
      "geometry": {"coordinates": [2.331, 48.869]},
      "properties": {"id": "75102_6928", "label": "10 Rue de la Paix 75002 Paris"}
    },
    {
      "geometry": {"coordinates": [4.835, 45.764]},
      "properties": {"id": "69382_7242", "label": "10 Rue de la Paix 69003 Lyon"}
    }
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return NewClient(ts.URL, nil, logging.Default())
}

func TestResolve_FirstCandidateWins(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("q") != "10 rue de la Paix" {
			t.Fatalf("q = %s", r.URL.Query().Get("q"))
		}
		if r.URL.Query().Get("limit") != "1" {
			t.Fatalf("limit = %s, want 1", r.URL.Query().Get("limit"))
		}
		_, _ = w.Write([]byte(banPayload))
	})

	coord, err := client.Resolve(context.Background(), "10 rue de la Paix")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if coord.Latitude != 48.869 || coord.Longitude != 2.331 {
		t.Fatalf("coord = %+v", coord)
	}
	if coord.Label != "10 Rue de la Paix 75002 Paris" {
		t.Fatalf("label = %q", coord.Label)
	}
}

func TestResolve_EmptyQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("provider should not be called for an empty query")
	})

	_, err := client.Resolve(context.Background(), "   ")
	if !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("error = %v, want ErrEmptyQuery", err)
	}
}

func TestResolve_NoCandidates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"features":[]}`))
	})

	_, err := client.Resolve(context.Background(), "zzzzzz")
	if !errors.Is(err, ErrAddressNotFound) {
		t.Fatalf("error = %v, want ErrAddressNotFound", err)
	}
}

func TestResolve_ProviderError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})

	_, err := client.Resolve(context.Background(), "10 rue de la Paix")
	if !errors.Is(err, ErrAddressService) {
		t.Fatalf("error = %v, want ErrAddressService", err)
	}
}

func TestSuggest_ShortQueryNeverCallsProvider(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(banPayload))
	})

	for _, q := range []string{"", "1", "10", "  ab  "} {
		if got := client.Suggest(context.Background(), q); len(got) != 0 {
			t.Fatalf("Suggest(%q) = %d suggestions, want 0", q, len(got))
		}
	}
	if calls.Load() != 0 {
		t.Fatalf("provider called %d times for short queries", calls.Load())
	}
}

func TestSuggest_ReturnsProviderOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "5" {
			t.Fatalf("limit = %s, want 5", r.URL.Query().Get("limit"))
		}
		_, _ = w.Write([]byte(banPayload))
	})

	got := client.Suggest(context.Background(), "10 rue de la Paix")
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Label != "10 Rue de la Paix 75002 Paris" {
		t.Fatalf("first suggestion = %q", got[0].Label)
	}
	if got[1].ID != "69382_7242" {
		t.Fatalf("second suggestion id = %q", got[1].ID)
	}
}

func TestSuggest_SwallowsProviderErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	if got := client.Suggest(context.Background(), "10 rue"); got != nil {
		t.Fatalf("Suggest() = %v, want nil on provider error", got)
	}
}

func TestSuggest_Idempotent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(banPayload))
	})

	first := client.Suggest(context.Background(), "10 rue de la Paix")
	second := client.Suggest(context.Background(), "10 rue de la Paix")
	if len(first) != len(second) {
		t.Fatalf("result set grew across calls: %d then %d", len(first), len(second))
	}
}
