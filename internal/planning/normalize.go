package planning

import (
	"time"

	"github.com/paulmach/orb"

	"github.com/helloneige/neige/internal/snow"
)

// Feed timestamps come without a zone; RFC3339 is accepted as a fallback.
const feedTimeLayout = "2006-01-02T15:04:05"

// Normalize converts raw street rows into view-model segments. Rows
// missing their current snow state or a usable line geometry are dropped
// entirely rather than rendered as dangling markers.
func Normalize(rows []StreetRow) []snow.StreetSegment {
	segments := make([]snow.StreetSegment, 0, len(rows))
	for _, row := range rows {
		cur := row.DeneigementCurrent
		if cur == nil {
			continue
		}
		line := rowLine(row)
		if len(line) == 0 {
			continue
		}
		segments = append(segments, snow.StreetSegment{
			MunID:             snow.MontrealMunID,
			CoteRueID:         row.CoteRueID,
			EtatDeneig:        cur.EtatDeneig,
			Status:            cur.Status,
			DateDebutPlanif:   parseFeedTime(cur.DateDebutPlanif),
			DateFinPlanif:     parseFeedTime(cur.DateFinPlanif),
			DateDebutReplanif: parseFeedTime(cur.DateDebutReplanif),
			DateFinReplanif:   parseFeedTime(cur.DateFinReplanif),
			DateMaj:           parseFeedTime(cur.DateMaj),
			Feature: &snow.StreetFeature{
				Geometry:    line,
				Name:        row.NomVoie,
				StreetType:  row.TypeF,
				City:        row.NomVille,
				Side:        row.Cote,
				AddressFrom: row.DebutAdresse,
				AddressTo:   row.FinAdresse,
			},
		})
	}
	return segments
}

// rowLine extracts the street line from a row's GeoJSON feature,
// collapsing multi-part geometry to its dominant part.
func rowLine(row StreetRow) orb.LineString {
	if row.StreetFeature == nil || row.StreetFeature.Geometry == nil {
		return nil
	}
	switch g := row.StreetFeature.Geometry.(type) {
	case orb.LineString:
		return g
	case orb.MultiLineString:
		return snow.LongestPart(g)
	default:
		return nil
	}
}

func parseFeedTime(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	if t, err := time.Parse(feedTimeLayout, *s); err == nil {
		return &t
	}
	if t, err := time.Parse(time.RFC3339, *s); err == nil {
		return &t
	}
	return nil
}
