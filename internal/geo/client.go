// Package geo resolves place names through a Nominatim-compatible
// geocoding API. Lookups are best effort: the dashboard must render even
// when the geocoder is down, so failures surface as empty results.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"cambio/internal/cache"
)

const (
	// DefaultBaseURL is the public Nominatim instance
	DefaultBaseURL = "https://nominatim.openstreetmap.org"

	// searchLimit caps results per query; the autocomplete fragment shows
	// at most this many rows
	searchLimit = 5

	defaultTimeout  = 5 * time.Second
	defaultCacheTTL = 24 * time.Hour
	cacheSize       = 256
)

// Place is one geocoding result. Lat and Lon stay strings, the wire
// format the API uses.
type Place struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Client queries the geocoding API with caching and request deduplication.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	cache      *cache.LRUCache[[]Place]
	group      singleflight.Group
}

// New creates a geocoding client. Empty baseURL selects the public
// Nominatim instance; zero timeout selects a 5s default. The userAgent is
// mandatory for the public instance's usage policy, so it falls back to
// the application name.
func New(baseURL, userAgent string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if userAgent == "" {
		userAgent = "cambio"
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		cache:      cache.NewLRUCache[[]Place](cacheSize, defaultCacheTTL),
	}
}

// Search resolves a free-form place query. It never fails: any error is
// logged and an empty result returned, since place lookup only decorates
// budgets and must not block them.
func (c *Client) Search(ctx context.Context, query string) []Place {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	key := strings.ToLower(query)
	if places, ok := c.cache.Get(key); ok {
		return places
	}

	// Deduplicate concurrent lookups for the same query; the shared fetch
	// runs on its own deadline so one caller's cancellation cannot abort
	// the others.
	ch := c.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.Background(), c.httpClient.Timeout)
		defer cancel()
		return c.fetch(fetchCtx, query)
	})

	select {
	case <-ctx.Done():
		slog.WarnContext(ctx, "Place search abandoned", "query", query, "error", ctx.Err())
		return nil
	case res := <-ch:
		if res.Err != nil {
			slog.WarnContext(ctx, "Place search failed", "query", query, "error", res.Err)
			return nil
		}
		places := res.Val.([]Place)
		c.cache.Set(key, places)
		return places
	}
}

type searchResult struct {
	PlaceID     int64  `json:"place_id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

func (c *Client) fetch(ctx context.Context, query string) ([]Place, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("limit", fmt.Sprintf("%d", searchLimit))
	q.Set("accept-language", "it")

	endpoint := fmt.Sprintf("%s/search?%s", c.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	places := make([]Place, 0, len(results))
	for _, r := range results {
		places = append(places, Place{
			ID:          r.PlaceID,
			Name:        r.Name,
			DisplayName: r.DisplayName,
			Lat:         r.Lat,
			Lon:         r.Lon,
		})
	}

	return places, nil
}
