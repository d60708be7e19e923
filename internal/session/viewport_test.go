package session

import (
	"context"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helloneige/neige/internal/snow"
)

var mtlBounds = snow.Bounds{MinLat: 45.49, MinLng: -73.61, MaxLat: 45.53, MaxLng: -73.55}

func TestSetBoundsSuppressesIdenticalKey(t *testing.T) {
	cfg := testConfig()
	fetcher := &fakeFetcher{results: []snow.StreetSegment{seg(1, 2)}}
	cfg.Fetcher = fetcher
	s := newTestSession(cfg)
	defer s.Close()

	s.SetBounds(mtlBounds)
	settle()
	// sub-rounding wiggle: same key, no new fetch
	jiggled := mtlBounds
	jiggled.MinLat += 1e-7
	s.SetBounds(jiggled)
	settle()

	assert.Equal(t, 1, fetcher.callCount())
}

func TestSetBoundsDebounceCollapsesBursts(t *testing.T) {
	cfg := testConfig()
	fetcher := &fakeFetcher{results: []snow.StreetSegment{seg(1, 2)}}
	cfg.Fetcher = fetcher
	s := newTestSession(cfg)
	defer s.Close()

	for i := 0; i < 5; i++ {
		b := mtlBounds
		b.MinLat += float64(i) * 0.001
		s.SetBounds(b)
		time.Sleep(2 * time.Millisecond)
	}
	settle()

	require.Equal(t, 1, fetcher.callCount())
	// the last reported bounds won
	assert.InDelta(t, mtlBounds.MinLat+0.004, fetcher.calls[0].MinLat, 1e-9)
}

func TestViewportMergePreservesOutOfView(t *testing.T) {
	cfg := testConfig()
	fetcher := &fakeFetcher{results: []snow.StreetSegment{seg(1, 2), seg(2, 0)}}
	cfg.Fetcher = fetcher
	s := newTestSession(cfg)
	defer s.Close()

	s.SetBounds(mtlBounds)
	settle()
	require.Len(t, s.Displayed(), 2)

	// pan away: id 2 leaves view, id 3 enters, id 1 changes state
	fetcher.mu.Lock()
	fetcher.results = []snow.StreetSegment{seg(1, 5), seg(3, 1)}
	fetcher.mu.Unlock()
	b := mtlBounds
	b.MinLng -= 0.02
	s.SetBounds(b)
	settle()

	displayed := s.Displayed()
	require.Len(t, displayed, 3)
	byID := map[int64]snow.StreetSegment{}
	for _, d := range displayed {
		byID[d.CoteRueID] = d
	}
	assert.Equal(t, 5, byID[1].EtatDeneig, "re-fetched segment replaced in place")
	assert.Equal(t, 0, byID[2].EtatDeneig, "out-of-view segment preserved")
	assert.Equal(t, 1, byID[3].EtatDeneig)
}

func TestEmptyViewportFetchLeavesDisplayedUnchanged(t *testing.T) {
	cfg := testConfig()
	fetcher := &fakeFetcher{results: []snow.StreetSegment{seg(1, 2)}}
	cfg.Fetcher = fetcher
	s := newTestSession(cfg)
	defer s.Close()

	s.SetBounds(mtlBounds)
	settle()
	require.Len(t, s.Displayed(), 1)

	fetcher.mu.Lock()
	fetcher.results = nil
	fetcher.mu.Unlock()
	b := mtlBounds
	b.MaxLat += 0.01
	s.SetBounds(b)
	settle()

	assert.Len(t, s.Displayed(), 1)
}

func TestStaleFetchDiscarded(t *testing.T) {
	cfg := testConfig()
	slow := &fakeFetcher{results: []snow.StreetSegment{seg(9, 4)}, delay: 60 * time.Millisecond}
	cfg.Fetcher = slow
	s := newTestSession(cfg)
	defer s.Close()

	s.SetBounds(mtlBounds)
	time.Sleep(30 * time.Millisecond) // first fetch now in flight

	// a newer reload supersedes it
	s.Reload(context.Background(), false)
	time.Sleep(100 * time.Millisecond)

	// the slow bounds fetch resolved after the reload but was discarded:
	// displayed reflects the reload, and stays stable afterwards
	displayed := s.Displayed()
	require.Len(t, displayed, 1)
	assert.Equal(t, int64(9), displayed[0].CoteRueID)
	assert.Equal(t, 2, slow.callCount())
}

func TestMountSettlesThenFetches(t *testing.T) {
	cfg := testConfig()
	fetcher := &fakeFetcher{results: []snow.StreetSegment{seg(1, 1)}}
	cfg.Fetcher = fetcher
	s := newTestSession(cfg)
	defer s.Close()

	s.Mount(&mtlBounds)
	assert.Equal(t, 0, fetcher.callCount(), "no fetch before the settle delay")
	settle()
	require.Equal(t, 1, fetcher.callCount())
	require.NotNil(t, fetcher.calls[0])
	assert.Equal(t, mtlBounds.Key(), fetcher.calls[0].Key())
}

func TestReloadReplacesWholesale(t *testing.T) {
	cfg := testConfig()
	fetcher := &fakeFetcher{results: []snow.StreetSegment{seg(1, 1), seg(2, 2)}}
	cfg.Fetcher = fetcher
	s := newTestSession(cfg)
	defer s.Close()

	s.Reload(context.Background(), false)
	require.Len(t, s.Displayed(), 2)

	fetcher.mu.Lock()
	fetcher.results = nil
	fetcher.mu.Unlock()
	s.Reload(context.Background(), true)
	assert.Empty(t, s.Displayed(), "explicit reload clears even on empty result")
}

func TestZoomTriggers(t *testing.T) {
	s := newTestSession(testConfig())
	defer s.Close()

	target := seg(1, 2)
	target.Feature = &snow.StreetFeature{Geometry: orb.LineString{{-73.60, 45.50}, {-73.58, 45.50}}}
	s.ZoomToFeature(target)
	s.ZoomToFeature(target)
	assert.Equal(t, 2, s.ZoomCounter(), "re-selecting the same feature re-triggers")

	c := s.Center()
	require.NotNil(t, c)
	assert.InDelta(t, 45.50, c.Lat, 1e-6)
	assert.InDelta(t, -73.59, c.Lng, 1e-6)
	assert.Equal(t, 0, c.Zoom, "feature zoom keeps the current zoom level")

	s.ZoomTo(45.52, -73.57, 17)
	c = s.Center()
	assert.Equal(t, 17, c.Zoom)
}

func TestInitialCenterIsOneShot(t *testing.T) {
	s := newTestSession(testConfig())
	defer s.Close()

	s.SetInitialCenter(45.50, -73.60)
	s.SetInitialCenter(45.99, -73.00)

	c := s.Center()
	require.NotNil(t, c)
	assert.InDelta(t, 45.50, c.Lat, 1e-9)
}
