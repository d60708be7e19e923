// Package geocode wraps the Nominatim search API for address lookup
// scoped to Montreal.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultBaseURL   = "https://nominatim.openstreetmap.org"
	defaultUserAgent = "neige/1.0 (https://github.com/helloneige/neige)"
	defaultRegion    = "Montreal, Quebec, Canada"

	// MinQueryLength is the minimum free-text query length; anything
	// shorter is answered with no suggestions and no network call.
	MinQueryLength = 3

	maxResults = 5
)

// Suggestion is one ranked geocoding candidate. Coordinates are decimal
// strings as delivered by Nominatim.
type Suggestion struct {
	DisplayName string   `json:"display_name"`
	Lat         string   `json:"lat"`
	Lon         string   `json:"lon"`
	Address     Address  `json:"address"`
	BoundingBox []string `json:"boundingbox,omitempty"`
}

// Address holds the structured components of a suggestion.
type Address struct {
	Road         string `json:"road,omitempty"`
	HouseNumber  string `json:"house_number,omitempty"`
	Suburb       string `json:"suburb,omitempty"`
	City         string `json:"city,omitempty"`
	Municipality string `json:"municipality,omitempty"`
	County       string `json:"county,omitempty"`
	State        string `json:"state,omitempty"`
	Postcode     string `json:"postcode,omitempty"`
	Country      string `json:"country,omitempty"`
}

// Point parses the suggestion's coordinates. ok is false when the
// decimal strings are malformed.
func (s Suggestion) Point() (lat, lng float64, ok bool) {
	lat, errLat := strconv.ParseFloat(s.Lat, 64)
	lng, errLng := strconv.ParseFloat(s.Lon, 64)
	return lat, lng, errLat == nil && errLng == nil
}

// Client queries Nominatim. All lookups degrade to empty results on
// transport failure; callers never see an error.
type Client struct {
	baseURL    string
	region     string
	userAgent  string
	httpClient *http.Client
	logger     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the Nominatim endpoint (used in tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithRegion overrides the region suffix appended to every query.
func WithRegion(region string) Option {
	return func(c *Client) { c.region = region }
}

// NewClient creates a geocoding client.
func NewClient(logger zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		region:     defaultRegion,
		userAgent:  defaultUserAgent,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger.With().Str("component", "geocode").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Suggest returns up to five ranked candidates for a partial address.
// Queries shorter than MinQueryLength yield no results and no request.
func (c *Client) Suggest(ctx context.Context, query string) []Suggestion {
	query = strings.TrimSpace(query)
	if len(query) < MinQueryLength {
		return nil
	}

	q := url.Values{}
	q.Set("q", fmt.Sprintf("%s, %s", query, c.region))
	q.Set("format", "json")
	q.Set("addressdetails", "1")
	q.Set("limit", strconv.Itoa(maxResults))
	q.Set("countrycodes", "ca")

	return c.get(ctx, "/search", q)
}

// Search returns the top-ranked candidate for an explicit submit, or nil
// when nothing matches.
func (c *Client) Search(ctx context.Context, query string) *Suggestion {
	results := c.Suggest(ctx, query)
	if len(results) == 0 {
		return nil
	}
	return &results[0]
}

// Reverse looks up the address at a coordinate, or nil when the lookup
// fails.
func (c *Client) Reverse(ctx context.Context, lat, lng float64) *Suggestion {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("format", "json")
	q.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		c.logger.Error().Err(err).Msg("building reverse request")
		return nil
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Msg("reverse geocoding failed")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error().Int("status", resp.StatusCode).Msg("reverse geocoding returned non-200")
		return nil
	}

	var result Suggestion
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.logger.Error().Err(err).Msg("decoding reverse response")
		return nil
	}
	return &result
}

func (c *Client) get(ctx context.Context, path string, q url.Values) []Suggestion {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		c.logger.Error().Err(err).Msg("building geocoding request")
		return nil
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Msg("geocoding request failed")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error().Int("status", resp.StatusCode).Msg("geocoding returned non-200")
		return nil
	}

	var results []Suggestion
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		c.logger.Error().Err(err).Msg("decoding geocoding response")
		return nil
	}
	return results
}
