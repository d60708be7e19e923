// Package neigeclient is a small typed HTTP client for the neige API.
package neigeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/helloneige/neige/internal/planning"
	"github.com/helloneige/neige/internal/snow"
)

// Client talks to a running neige server.
type Client struct {
	baseURL    string
	userID     string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithUser sets the identity header sent on authenticated calls.
func WithUser(userID string) Option {
	return func(c *Client) { c.userID = userID }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Health reports server liveness.
func (c *Client) Health(ctx context.Context) (string, error) {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/health", nil, nil, &body); err != nil {
		return "", err
	}
	return body.Status, nil
}

// Streets returns streets with current snow state, viewport-constrained
// when bounds are given.
func (c *Client) Streets(ctx context.Context, bounds *snow.Bounds) ([]planning.StreetRow, error) {
	q := url.Values{}
	q.Set("include_snow", "true")
	if bounds != nil {
		q.Set("minLat", strconv.FormatFloat(bounds.MinLat, 'f', -1, 64))
		q.Set("minLng", strconv.FormatFloat(bounds.MinLng, 'f', -1, 64))
		q.Set("maxLat", strconv.FormatFloat(bounds.MaxLat, 'f', -1, 64))
		q.Set("maxLng", strconv.FormatFloat(bounds.MaxLng, 'f', -1, 64))
	}
	var env planning.Envelope
	if err := c.do(ctx, http.MethodGet, "/api/v1/streets", q, nil, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, fmt.Errorf("streets query failed: %s", env.Error)
	}
	return env.Data, nil
}

// Favorites lists the user's favorited street IDs.
func (c *Client) Favorites(ctx context.Context) ([]int64, error) {
	var body struct {
		Favorites []int64 `json:"favorites"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/favorites", nil, nil, &body); err != nil {
		return nil, err
	}
	return body.Favorites, nil
}

// AddFavorite favorites a street; re-favoriting is an idempotent
// success.
func (c *Client) AddFavorite(ctx context.Context, coteRueID int64) error {
	req := map[string]int64{"coteRueId": coteRueID}
	return c.do(ctx, http.MethodPost, "/api/v1/favorites", nil, req, nil)
}

// RemoveFavorite unfavorites a street.
func (c *Client) RemoveFavorite(ctx context.Context, coteRueID int64) error {
	path := fmt.Sprintf("/api/v1/favorites/%d", coteRueID)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// Parking lists the user's saved spots, newest first.
func (c *Client) Parking(ctx context.Context) ([]snow.ParkingLocation, error) {
	var body struct {
		Parking []snow.ParkingLocation `json:"parking"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/parking", nil, nil, &body); err != nil {
		return nil, err
	}
	return body.Parking, nil
}

// SaveParking stores a new parking spot.
func (c *Client) SaveParking(ctx context.Context, lat, lng float64, name, notes string) (snow.ParkingLocation, error) {
	req := map[string]any{"latitude": lat, "longitude": lng, "name": name, "notes": notes}
	var loc snow.ParkingLocation
	err := c.do(ctx, http.MethodPost, "/api/v1/parking", nil, req, &loc)
	return loc, err
}

// DeleteParking removes a saved spot.
func (c *Client) DeleteParking(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/parking/"+url.PathEscape(id), nil, nil, nil)
}

// MunicipalParking lists the imported city incentive lots.
func (c *Client) MunicipalParking(ctx context.Context) ([]snow.MunicipalParking, error) {
	var body struct {
		Parking []snow.MunicipalParking `json:"parking"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/parking/municipal", nil, nil, &body); err != nil {
		return nil, err
	}
	return body.Parking, nil
}

// Notifications lists the user's stored notifications, newest first.
func (c *Client) Notifications(ctx context.Context, limit int) ([]snow.NotificationEvent, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var body struct {
		Notifications []snow.NotificationEvent `json:"notifications"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/notifications", q, nil, &body); err != nil {
		return nil, err
	}
	return body.Notifications, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody *bytes.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userID != "" {
		req.Header.Set("X-User-ID", c.userID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
