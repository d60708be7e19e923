package planning

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/helloneige/neige/internal/snow"
)

// Fetcher retrieves planning records, either city-wide or constrained to
// a bounding box. Implementations never return an error: transport and
// store failures are logged and surface as an empty result, so the
// caller's displayed list is left for the caller to manage.
type Fetcher interface {
	Fetch(ctx context.Context, forceRefresh bool, bounds *snow.Bounds) []snow.StreetSegment
}

// HTTPFetcher fetches from the streets HTTP endpoint.
type HTTPFetcher struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

// NewHTTPFetcher creates a fetcher against the given base URL
// (e.g. "https://neige.example.com").
func NewHTTPFetcher(baseURL string, logger zerolog.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger.With().Str("component", "planning_fetcher").Logger(),
	}
}

// Fetch retrieves segments with current snow state. With bounds, only
// segments intersecting the box come back; without, the whole city.
// forceRefresh asks intermediaries not to serve a cached response.
func (f *HTTPFetcher) Fetch(ctx context.Context, forceRefresh bool, bounds *snow.Bounds) []snow.StreetSegment {
	q := url.Values{}
	q.Set("include_snow", "true")
	if bounds != nil {
		q.Set("minLat", formatCoord(bounds.MinLat))
		q.Set("minLng", formatCoord(bounds.MinLng))
		q.Set("maxLat", formatCoord(bounds.MaxLat))
		q.Set("maxLng", formatCoord(bounds.MaxLng))
	}

	reqURL := fmt.Sprintf("%s/api/v1/streets?%s", f.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		f.logger.Error().Err(err).Msg("building streets request")
		return nil
	}
	if forceRefresh {
		req.Header.Set("Cache-Control", "no-store")
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Error().Err(err).Str("url", reqURL).Msg("streets request failed")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.logger.Error().Int("status", resp.StatusCode).Str("url", reqURL).Msg("streets request returned non-200")
		return nil
	}

	var env Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		f.logger.Error().Err(err).Msg("decoding streets response")
		return nil
	}
	if !env.Success {
		f.logger.Error().Str("error", env.Error).Msg("streets endpoint reported failure")
		return nil
	}

	return Normalize(env.Data)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
