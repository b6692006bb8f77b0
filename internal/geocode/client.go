package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/homecyclehelp/booking-client/pkg/logging"
)

const (
	defaultBaseURL = "https://api-adresse.data.gouv.fr"
	defaultTimeout = 10 * time.Second

	suggestionLimit = 5
)

// MinQueryLen is the shortest partial query that reaches the provider.
// Keeps autocomplete traffic against the public API down.
const MinQueryLen = 3

var (
	// ErrAddressNotFound is returned when the provider has no candidate for a query.
	ErrAddressNotFound = errors.New("address not found")

	// ErrAddressService is returned when the provider is unreachable or misbehaves.
	ErrAddressService = errors.New("address service unavailable")

	// ErrEmptyQuery is returned when Resolve is called with a blank query.
	ErrEmptyQuery = errors.New("address query is empty")
)

// SuggestionCache is an optional read-through cache for autocomplete results.
// Implementations must be best-effort: a cache error is never surfaced.
type SuggestionCache interface {
	Get(ctx context.Context, query string) ([]Suggestion, bool)
	Set(ctx context.Context, query string, suggestions []Suggestion)
}

// Client wraps the BAN search endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cache      SuggestionCache
	logger     *logging.Logger
}

// NewClient constructs an address search client. cache may be nil.
func NewClient(baseURL string, cache SuggestionCache, logger *logging.Logger) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		cache:      cache,
		logger:     logger,
	}
}

// Resolve geocodes a free-text address to a single best coordinate.
// The first candidate returned by the provider is taken as canonical.
func (c *Client) Resolve(ctx context.Context, query string) (Coordinate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Coordinate{}, ErrEmptyQuery
	}

	fc, err := c.search(ctx, query, 1)
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: %v", ErrAddressService, err)
	}
	if len(fc.Features) == 0 {
		return Coordinate{}, ErrAddressNotFound
	}

	f := fc.Features[0]
	if len(f.Geometry.Coordinates) < 2 {
		return Coordinate{}, fmt.Errorf("%w: candidate has no coordinates", ErrAddressService)
	}
	return Coordinate{
		Longitude: f.Geometry.Coordinates[0],
		Latitude:  f.Geometry.Coordinates[1],
		Label:     f.Properties.Label,
	}, nil
}

// Suggest returns up to 5 autocomplete candidates for a partial query,
// in provider order. Short queries and provider failures both yield an
// empty slice; autocomplete never blocks typing on an error.
func (c *Client) Suggest(ctx context.Context, partial string) []Suggestion {
	if len([]rune(strings.TrimSpace(partial))) < MinQueryLen {
		return nil
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(ctx, partial); ok {
			return cached
		}
	}

	fc, err := c.search(ctx, partial, suggestionLimit)
	if err != nil {
		c.logger.Debug("address suggestion lookup failed", "error", err)
		return nil
	}

	suggestions := make([]Suggestion, 0, len(fc.Features))
	for _, f := range fc.Features {
		suggestions = append(suggestions, Suggestion{ID: f.Properties.ID, Label: f.Properties.Label})
	}

	if c.cache != nil {
		c.cache.Set(ctx, partial, suggestions)
	}
	return suggestions
}

func (c *Client) search(ctx context.Context, query string, limit int) (*featureCollection, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("limit", fmt.Sprintf("%d", limit))
	endpoint := fmt.Sprintf("%s/search/?%s", c.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := string(respBody)
		if len(msg) > 300 {
			msg = msg[:300]
		}
		return nil, fmt.Errorf("search API returned %d: %s", resp.StatusCode, msg)
	}

	var fc featureCollection
	if err := json.Unmarshal(respBody, &fc); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &fc, nil
}
