package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestShortQuerySkipsRequest(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(zerolog.Nop(), WithBaseURL(srv.URL))
	assert.Empty(t, c.Suggest(context.Background(), "ab"))
	assert.Empty(t, c.Suggest(context.Background(), "  a  "))
	assert.Equal(t, int32(0), calls.Load(), "no network call for short queries")
}

func TestSuggestScopesQueryToRegion(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, "ca", r.URL.Query().Get("countrycodes"))
		w.Write([]byte(`[
			{"display_name": "123 Rue Rachel, Montreal", "lat": "45.5244", "lon": "-73.5797",
			 "address": {"road": "Rue Rachel", "house_number": "123", "city": "Montreal"}},
			{"display_name": "Rue Rachel Ouest, Montreal", "lat": "45.5210", "lon": "-73.5900", "address": {}}
		]`))
	}))
	defer srv.Close()

	c := NewClient(zerolog.Nop(), WithBaseURL(srv.URL))
	results := c.Suggest(context.Background(), "rachel")

	require.Len(t, results, 2)
	assert.Equal(t, "rachel, Montreal, Quebec, Canada", gotQuery)
	assert.Equal(t, "Rue Rachel", results[0].Address.Road)

	lat, lng, ok := results[0].Point()
	require.True(t, ok)
	assert.InDelta(t, 45.5244, lat, 1e-9)
	assert.InDelta(t, -73.5797, lng, 1e-9)
}

func TestSearchReturnsTopHit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"display_name": "first", "lat": "45.5", "lon": "-73.6", "address": {}},
			{"display_name": "second", "lat": "45.6", "lon": "-73.7", "address": {}}
		]`))
	}))
	defer srv.Close()

	c := NewClient(zerolog.Nop(), WithBaseURL(srv.URL))
	top := c.Search(context.Background(), "boulevard saint-laurent")
	require.NotNil(t, top)
	assert.Equal(t, "first", top.DisplayName)
}

func TestReverseReturnsAddress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "45.5244", r.URL.Query().Get("lat"))
		assert.Equal(t, "-73.5797", r.URL.Query().Get("lon"))
		w.Write([]byte(`{"display_name": "123 Rue Rachel, Montreal", "lat": "45.5244", "lon": "-73.5797",
			"address": {"road": "Rue Rachel", "house_number": "123"}}`))
	}))
	defer srv.Close()

	c := NewClient(zerolog.Nop(), WithBaseURL(srv.URL))
	result := c.Reverse(context.Background(), 45.5244, -73.5797)
	require.NotNil(t, result)
	assert.Equal(t, "Rue Rachel", result.Address.Road)
	assert.Equal(t, "123", result.Address.HouseNumber)
}

func TestReverseFailureYieldsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(zerolog.Nop(), WithBaseURL(srv.URL))
	assert.Nil(t, c.Reverse(context.Background(), 45.5, -73.6))
}

func TestSuggestTransportErrorYieldsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(zerolog.Nop(), WithBaseURL(srv.URL))
	assert.Empty(t, c.Suggest(context.Background(), "rachel"))
	assert.Nil(t, c.Search(context.Background(), "rachel"))
}
