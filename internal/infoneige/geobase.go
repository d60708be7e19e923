package infoneige

import (
	"fmt"
	"os"

	"github.com/paulmach/orb/geojson"

	"github.com/helloneige/neige/internal/planning"
)

// LoadGeobase reads the city's double geobase GeoJSON (one feature per
// street side) and keys it by COTE_RUE_ID. Features without that
// property are dropped.
func LoadGeobase(path string) (map[int64]planning.StreetRow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read geobase: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse geobase: %w", err)
	}

	out := make(map[int64]planning.StreetRow, len(fc.Features))
	for _, f := range fc.Features {
		id := propInt64(f.Properties, "COTE_RUE_ID")
		if id == 0 || f.Geometry == nil {
			continue
		}
		out[id] = planning.StreetRow{
			CoteRueID:     id,
			IDTrc:         propInt64(f.Properties, "ID_TRC"),
			IDVoie:        propInt64(f.Properties, "ID_VOIE"),
			NomVoie:       propString(f.Properties, "NOM_VOIE"),
			NomVille:      propString(f.Properties, "NOM_VILLE"),
			DebutAdresse:  int(propInt64(f.Properties, "DEBUT_ADRESSE")),
			FinAdresse:    int(propInt64(f.Properties, "FIN_ADRESSE")),
			Cote:          propString(f.Properties, "COTE"),
			TypeF:         propString(f.Properties, "TYPE_F"),
			SensCir:       int(propInt64(f.Properties, "SENS_CIR")),
			StreetFeature: f,
		}
	}
	return out, nil
}

func propString(p geojson.Properties, key string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return ""
}

func propInt64(p geojson.Properties, key string) int64 {
	switch v := p[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	default:
		return 0
	}
}
