package infoneige

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog"

	"github.com/helloneige/neige/internal/snow"
)

// MunicipalParkingURL is the city's open-data GeoJSON of winter
// incentive parking lots.
const MunicipalParkingURL = "https://donnees.montreal.ca/fr/dataset/575ecf37-9097-44cd-817f-a2fbd8de314b/resource/def63739-6295-4745-97e9-74755ee0bf92/download/stationnements-h-2025-2026.geojson"

// MunicipalParkingWriter replaces the imported municipal lot set.
type MunicipalParkingWriter interface {
	ReplaceMunicipal(ctx context.Context, lots []snow.MunicipalParking) error
}

// ParkingImporter loads the municipal incentive lots from the city's
// open-data portal into the parking store.
type ParkingImporter struct {
	store      MunicipalParkingWriter
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewParkingImporter creates a municipal parking importer.
func NewParkingImporter(store MunicipalParkingWriter, logger zerolog.Logger) *ParkingImporter {
	return &ParkingImporter{
		store:      store,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger.With().Str("component", "parking_import").Logger(),
	}
}

// ImportFromURL fetches the GeoJSON and replaces the stored lot set. An
// empty url means the city's published dataset.
func (imp *ParkingImporter) ImportFromURL(ctx context.Context, url string) (int, error) {
	if url == "" {
		url = MunicipalParkingURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := imp.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch parking data: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("parking data fetch returned status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}
	return imp.importGeoJSON(ctx, data)
}

// ImportFromFile loads a previously downloaded copy of the dataset.
func (imp *ParkingImporter) ImportFromFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read parking data: %w", err)
	}
	return imp.importGeoJSON(ctx, data)
}

func (imp *ParkingImporter) importGeoJSON(ctx context.Context, data []byte) (int, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return 0, fmt.Errorf("failed to parse parking data: %w", err)
	}

	lots := make([]snow.MunicipalParking, 0, len(fc.Features))
	skipped := 0
	for _, f := range fc.Features {
		lot, ok := parseParkingFeature(f)
		if !ok {
			skipped++
			continue
		}
		lots = append(lots, lot)
	}
	imp.logger.Info().Int("lots", len(lots)).Int("skipped", skipped).Msg("parsed municipal parking")

	if err := imp.store.ReplaceMunicipal(ctx, lots); err != nil {
		return 0, err
	}
	return len(lots), nil
}

// parseParkingFeature maps one open-data feature to a lot. Coordinates
// come as MTM zone 8 strings, sometimes with a comma decimal separator.
func parseParkingFeature(f *geojson.Feature) (snow.MunicipalParking, bool) {
	stationID := propString(f.Properties, "ID_STA")
	borough := propString(f.Properties, "ARRONDISSEMENT")
	if borough == "" {
		borough = propString(f.Properties, "BOROUGH")
	}
	if stationID == "" || borough == "" {
		return snow.MunicipalParking{}, false
	}

	payment := propString(f.Properties, "TYPE_PAY")
	if payment == "" {
		if n := propInt64(f.Properties, "TYPE_PAY"); n != 0 {
			payment = strconv.FormatInt(n, 10)
		}
	}

	x, okX := parseCoordinate(f.Properties["X"])
	y, okY := parseCoordinate(f.Properties["Y"])
	if !okX || !okY {
		return snow.MunicipalParking{}, false
	}
	lat, lng := MTM8ToWGS84(x, y)

	return snow.MunicipalParking{
		StationID:      stationID,
		Borough:        borough,
		NumberOfSpaces: int(propInt64(f.Properties, "NBR_PLA")),
		Latitude:       lat,
		Longitude:      lng,
		LocationFr:     propString(f.Properties, "EMPLACEMENT"),
		LocationEn:     propString(f.Properties, "LOCATION"),
		HoursFr:        propString(f.Properties, "HEURES"),
		HoursEn:        propString(f.Properties, "HOURS"),
		NoteFr:         propString(f.Properties, "NOTE_FR"),
		NoteEn:         propString(f.Properties, "NOTE_EN"),
		PaymentType:    payment,
	}, true
}

func parseCoordinate(v interface{}) (float64, bool) {
	switch c := v.(type) {
	case float64:
		return c, true
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(c, ",", "."), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
