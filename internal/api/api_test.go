package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helloneige/neige/internal/geocode"
	"github.com/helloneige/neige/internal/planning"
	"github.com/helloneige/neige/internal/snow"
	"github.com/helloneige/neige/internal/store"
)

type fakeStreets struct {
	all      []planning.StreetRow
	inBounds []planning.StreetRow
}

func (f *fakeStreets) All(_ context.Context, _ bool) ([]planning.StreetRow, error) {
	return f.all, nil
}

func (f *fakeStreets) InBounds(_ context.Context, _ snow.Bounds, _ bool) ([]planning.StreetRow, error) {
	return f.inBounds, nil
}

type fakeFavorites struct {
	rows map[string][]int64
	dup  bool
}

func (f *fakeFavorites) List(_ context.Context, userID string) ([]int64, error) {
	return f.rows[userID], nil
}

func (f *fakeFavorites) Add(_ context.Context, userID string, id int64) error {
	if f.dup {
		return store.ErrAlreadyExists
	}
	if f.rows == nil {
		f.rows = map[string][]int64{}
	}
	f.rows[userID] = append(f.rows[userID], id)
	return nil
}

func (f *fakeFavorites) Remove(_ context.Context, userID string, id int64) error {
	out := f.rows[userID][:0]
	for _, v := range f.rows[userID] {
		if v != id {
			out = append(out, v)
		}
	}
	f.rows[userID] = out
	return nil
}

type fakeParking struct {
	rows      []snow.ParkingLocation
	municipal []snow.MunicipalParking
}

func (f *fakeParking) List(_ context.Context, userID string) ([]snow.ParkingLocation, error) {
	var out []snow.ParkingLocation
	for _, r := range f.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeParking) Insert(_ context.Context, userID string, lat, lng float64, name, notes string) (snow.ParkingLocation, error) {
	loc := snow.ParkingLocation{ID: "p1", UserID: userID, Latitude: lat, Longitude: lng, Name: name, Notes: notes}
	f.rows = append([]snow.ParkingLocation{loc}, f.rows...)
	return loc, nil
}

func (f *fakeParking) Delete(_ context.Context, userID, id string) error {
	for i := range f.rows {
		if f.rows[i].ID == id && f.rows[i].UserID == userID {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeParking) ListMunicipal(_ context.Context) ([]snow.MunicipalParking, error) {
	return f.municipal, nil
}

type fakeGeocoder struct{ results []geocode.Suggestion }

func (f *fakeGeocoder) Suggest(_ context.Context, _ string) []geocode.Suggestion { return f.results }
func (f *fakeGeocoder) Search(_ context.Context, _ string) *geocode.Suggestion {
	if len(f.results) == 0 {
		return nil
	}
	return &f.results[0]
}

func streetRow(id int64, etat int) planning.StreetRow {
	line := orb.LineString{{-73.6, 45.5}, {-73.59, 45.5}}
	status := snow.LabelFor(etat)
	return planning.StreetRow{
		CoteRueID:     id,
		NomVoie:       "Saint-Denis",
		StreetFeature: geojson.NewFeature(line),
		DeneigementCurrent: &planning.SnowState{
			EtatDeneig: etat,
			Status:     status,
		},
	}
}

func newTestAPI(t *testing.T, svc *Services) humatest.TestAPI {
	t.Helper()
	_, testAPI := humatest.New(t)
	RegisterRoutes(testAPI, svc)
	return testAPI
}

func TestGetStreetsFullCity(t *testing.T) {
	svc := &Services{Streets: &fakeStreets{all: []planning.StreetRow{streetRow(1, 2), streetRow(2, 1)}}}
	testAPI := newTestAPI(t, svc)

	resp := testAPI.Get("/api/v1/streets?include_snow=true")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, cityCacheControl, resp.Header().Get("Cache-Control"))
	assert.Contains(t, resp.Body.String(), `"success":true`)
	assert.Contains(t, resp.Body.String(), `"count":2`)
	assert.Contains(t, resp.Body.String(), `"deneigement_current"`)
}

func TestGetStreetsBounded(t *testing.T) {
	svc := &Services{Streets: &fakeStreets{
		all:      []planning.StreetRow{streetRow(1, 2), streetRow(2, 1)},
		inBounds: []planning.StreetRow{streetRow(1, 2)},
	}}
	testAPI := newTestAPI(t, svc)

	resp := testAPI.Get("/api/v1/streets?include_snow=true&minLat=45.49&minLng=-73.61&maxLat=45.53&maxLng=-73.55")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, boundsCacheControl, resp.Header().Get("Cache-Control"))
	assert.Contains(t, resp.Body.String(), `"count":1`)
}

func TestFavoritesRequireUser(t *testing.T) {
	svc := &Services{Favorites: &fakeFavorites{}}
	testAPI := newTestAPI(t, svc)

	resp := testAPI.Get("/api/v1/favorites")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestFavoritesRoundTrip(t *testing.T) {
	svc := &Services{Favorites: &fakeFavorites{rows: map[string][]int64{}}}
	testAPI := newTestAPI(t, svc)

	resp := testAPI.Post("/api/v1/favorites", "X-User-ID: alice", map[string]any{"coteRueId": 42})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = testAPI.Get("/api/v1/favorites", "X-User-ID: alice")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "42")

	resp = testAPI.Delete("/api/v1/favorites/42", "X-User-ID: alice")
	require.Equal(t, http.StatusOK, resp.Code)

	resp = testAPI.Get("/api/v1/favorites", "X-User-ID: alice")
	assert.Contains(t, resp.Body.String(), `"favorites":[]`)
}

func TestAddFavoriteDuplicateIsSuccess(t *testing.T) {
	svc := &Services{Favorites: &fakeFavorites{dup: true}}
	testAPI := newTestAPI(t, svc)

	resp := testAPI.Post("/api/v1/favorites", "X-User-ID: alice", map[string]any{"coteRueId": 42})
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestParkingCreateAndList(t *testing.T) {
	svc := &Services{Parking: &fakeParking{}}
	testAPI := newTestAPI(t, svc)

	resp := testAPI.Post("/api/v1/parking", "X-User-ID: alice", map[string]any{
		"latitude": 45.50, "longitude": -73.57, "name": "Home",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"name":"Home"`)

	resp = testAPI.Get("/api/v1/parking", "X-User-ID: alice")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"name":"Home"`)
}

func TestMunicipalParkingIsPublic(t *testing.T) {
	svc := &Services{Parking: &fakeParking{municipal: []snow.MunicipalParking{
		{StationID: "S1", Borough: "Le Plateau-Mont-Royal", Latitude: 45.52, Longitude: -73.58},
	}}}
	testAPI := newTestAPI(t, svc)

	resp := testAPI.Get("/api/v1/parking/municipal")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Le Plateau-Mont-Royal")
}

func TestSearchProxiesGeocoder(t *testing.T) {
	svc := &Services{Geocoder: &fakeGeocoder{results: []geocode.Suggestion{
		{DisplayName: "Rue Rachel, Montreal", Lat: "45.5244", Lon: "-73.5797"},
	}}}
	testAPI := newTestAPI(t, svc)

	resp := testAPI.Get("/api/v1/search?q=rachel")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Rue Rachel")
}

func TestHealth(t *testing.T) {
	testAPI := newTestAPI(t, &Services{})
	resp := testAPI.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"status":"ok"`)
}
