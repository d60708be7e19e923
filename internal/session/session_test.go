package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/helloneige/neige/internal/bus"
	"github.com/helloneige/neige/internal/geocode"
	"github.com/helloneige/neige/internal/snow"
	"github.com/helloneige/neige/internal/store"
)

// fast timings so debounce tests run in milliseconds
func testConfig() Config {
	return Config{
		Logger:         zerolog.Nop(),
		BoundsDebounce: 20 * time.Millisecond,
		SettleDelay:    20 * time.Millisecond,
		SearchDebounce: 30 * time.Millisecond,
		MessageTTL:     40 * time.Millisecond,
	}
}

func settle() { time.Sleep(80 * time.Millisecond) }

type fakeFetcher struct {
	mu      sync.Mutex
	calls   []*snow.Bounds
	results []snow.StreetSegment
	delay   time.Duration
}

func (f *fakeFetcher) Fetch(_ context.Context, _ bool, bounds *snow.Bounds) []snow.StreetSegment {
	f.mu.Lock()
	var b *snow.Bounds
	if bounds != nil {
		copied := *bounds
		b = &copied
	}
	f.calls = append(f.calls, b)
	results := f.results
	delay := f.delay
	f.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	return results
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeFavoriteStore struct {
	mu        sync.Mutex
	rows      map[string]map[int64]bool
	dupOnAdd  bool
	addCalls  int
	failLists bool
}

func newFakeFavoriteStore() *fakeFavoriteStore {
	return &fakeFavoriteStore{rows: map[string]map[int64]bool{}}
}

func (f *fakeFavoriteStore) List(_ context.Context, userID string) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []int64
	for id := range f.rows[userID] {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeFavoriteStore) Add(_ context.Context, userID string, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addCalls++
	if f.dupOnAdd || f.rows[userID][id] {
		return store.ErrAlreadyExists
	}
	if f.rows[userID] == nil {
		f.rows[userID] = map[int64]bool{}
	}
	f.rows[userID][id] = true
	return nil
}

func (f *fakeFavoriteStore) Remove(_ context.Context, userID string, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows[userID], id)
	return nil
}

type fakeParkingStore struct {
	mu   sync.Mutex
	rows []snow.ParkingLocation
	next int
}

func (f *fakeParkingStore) List(_ context.Context, userID string) ([]snow.ParkingLocation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []snow.ParkingLocation
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].UserID == userID {
			out = append(out, f.rows[i])
		}
	}
	return out, nil
}

func (f *fakeParkingStore) Insert(_ context.Context, userID string, lat, lng float64, name, notes string) (snow.ParkingLocation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	loc := snow.ParkingLocation{
		ID: string(rune('a' + f.next)), UserID: userID,
		Latitude: lat, Longitude: lng, Name: name, Notes: notes,
		CreatedAt: time.Now(),
	}
	f.rows = append(f.rows, loc)
	return loc, nil
}

func (f *fakeParkingStore) Delete(_ context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id && f.rows[i].UserID == userID {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeSegments struct{ byID map[int64]snow.StreetSegment }

func (f *fakeSegments) Segments(_ context.Context, ids []int64) ([]snow.StreetSegment, error) {
	var out []snow.StreetSegment
	for _, id := range ids {
		if seg, ok := f.byID[id]; ok {
			out = append(out, seg)
		}
	}
	return out, nil
}

type fakeGeocoder struct {
	mu      sync.Mutex
	queries []string
	results []geocode.Suggestion
}

func (f *fakeGeocoder) Suggest(_ context.Context, query string) []geocode.Suggestion {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	return f.results
}

func (f *fakeGeocoder) Search(ctx context.Context, query string) *geocode.Suggestion {
	results := f.Suggest(ctx, query)
	if len(results) == 0 {
		return nil
	}
	return &results[0]
}

func seg(id int64, etat int) snow.StreetSegment {
	return snow.StreetSegment{MunID: snow.MontrealMunID, CoteRueID: id, EtatDeneig: etat}
}

func newTestSession(cfg Config) *Session {
	if cfg.Fetcher == nil {
		cfg.Fetcher = &fakeFetcher{}
	}
	if cfg.Favorites == nil {
		cfg.Favorites = newFakeFavoriteStore()
	}
	if cfg.Parking == nil {
		cfg.Parking = &fakeParkingStore{}
	}
	if cfg.Segments == nil {
		cfg.Segments = &fakeSegments{}
	}
	if cfg.Geocoder == nil {
		cfg.Geocoder = &fakeGeocoder{}
	}
	if cfg.Bus == nil {
		cfg.Bus = bus.New()
	}
	return New(cfg)
}
