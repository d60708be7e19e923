// Package store holds the DuckDB-backed persistence layer: streets and
// their current snow state, user favorites, parking locations, and
// notification history.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog"

	"github.com/helloneige/neige/internal/planning"
	"github.com/helloneige/neige/internal/snow"
)

// StreetStore persists street geometry and current snow state, and keeps
// an in-memory spatial index over street bounding boxes for viewport
// queries.
type StreetStore struct {
	db     *sql.DB
	index  *spatialIndex
	logger zerolog.Logger
}

// NewStreetStore creates a street store and loads the spatial index from
// the streets table.
func NewStreetStore(db *sql.DB, logger zerolog.Logger) (*StreetStore, error) {
	s := &StreetStore{
		db:     db,
		index:  newSpatialIndex(),
		logger: logger.With().Str("component", "street_store").Logger(),
	}
	if err := s.loadIndex(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to load street index: %w", err)
	}
	return s, nil
}

func (s *StreetStore) loadIndex(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT cote_rue_id, min_lng, min_lat, max_lng, max_lat FROM streets`)
	if err != nil {
		return err
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		var id int64
		var minLng, minLat, maxLng, maxLat float64
		if err := rows.Scan(&id, &minLng, &minLat, &maxLng, &maxLat); err != nil {
			return err
		}
		s.index.upsert(id, orb.Bound{
			Min: orb.Point{minLng, minLat},
			Max: orb.Point{maxLng, maxLat},
		})
		n++
	}
	s.logger.Info().Int("streets", n).Msg("spatial index loaded")
	return rows.Err()
}

// UpsertStreet inserts or replaces a street record and refreshes its
// entry in the spatial index.
func (s *StreetStore) UpsertStreet(ctx context.Context, row planning.StreetRow) error {
	if row.StreetFeature == nil || row.StreetFeature.Geometry == nil {
		return fmt.Errorf("street %d has no geometry", row.CoteRueID)
	}
	geomJSON, err := json.Marshal(geojson.NewGeometry(row.StreetFeature.Geometry))
	if err != nil {
		return fmt.Errorf("failed to encode geometry for street %d: %w", row.CoteRueID, err)
	}
	bound := row.StreetFeature.Geometry.Bound()

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO streets
			(cote_rue_id, nom_voie, nom_ville, type_f, cote, debut_adresse, fin_adresse,
			 geometry, min_lng, min_lat, max_lng, max_lat, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, current_timestamp)`,
		row.CoteRueID, row.NomVoie, row.NomVille, row.TypeF, row.Cote,
		row.DebutAdresse, row.FinAdresse, string(geomJSON),
		bound.Min[0], bound.Min[1], bound.Max[0], bound.Max[1])
	if err != nil {
		return fmt.Errorf("failed to upsert street %d: %w", row.CoteRueID, err)
	}

	s.index.upsert(row.CoteRueID, bound)
	return nil
}

// UpsertSnowState replaces the current snow state of a street. It
// returns the previous etat (nil when the street had none) and whether
// the etat actually changed, so the caller can fan out notifications.
func (s *StreetStore) UpsertSnowState(ctx context.Context, coteRueID int64, state planning.SnowState) (oldEtat *int, changed bool, err error) {
	var prev int
	switch err := s.db.QueryRowContext(ctx,
		`SELECT etat_deneig FROM snow_current WHERE cote_rue_id = ?`, coteRueID).Scan(&prev); err {
	case nil:
		oldEtat = &prev
	case sql.ErrNoRows:
	default:
		return nil, false, fmt.Errorf("failed to read snow state for %d: %w", coteRueID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO snow_current
			(cote_rue_id, etat_deneig, status, date_debut_planif, date_fin_planif,
			 date_debut_replanif, date_fin_replanif, date_maj)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		coteRueID, state.EtatDeneig, state.Status,
		state.DateDebutPlanif, state.DateFinPlanif,
		state.DateDebutReplanif, state.DateFinReplanif, state.DateMaj)
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert snow state for %d: %w", coteRueID, err)
	}

	changed = oldEtat == nil || *oldEtat != state.EtatDeneig
	return oldEtat, changed, nil
}

// All returns every street, optionally joined with its current snow
// state.
func (s *StreetStore) All(ctx context.Context, includeSnow bool) ([]planning.StreetRow, error) {
	return s.query(ctx, includeSnow, "", nil)
}

// InBounds returns streets whose bounding box intersects the viewport.
// Candidate IDs come from the in-memory spatial index, the rows from the
// database.
func (s *StreetStore) InBounds(ctx context.Context, bounds snow.Bounds, includeSnow bool) ([]planning.StreetRow, error) {
	ids := s.index.search(bounds.Bound())
	if len(ids) == 0 {
		return nil, nil
	}
	return s.ByIDs(ctx, ids, includeSnow)
}

// ByIDs returns the streets with the given IDs, optionally with snow
// state.
func (s *StreetStore) ByIDs(ctx context.Context, ids []int64, includeSnow bool) ([]planning.StreetRow, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	where := fmt.Sprintf("WHERE s.cote_rue_id IN (%s)", strings.Join(placeholders, ", "))
	return s.query(ctx, includeSnow, where, args)
}

func (s *StreetStore) query(ctx context.Context, includeSnow bool, where string, args []interface{}) ([]planning.StreetRow, error) {
	q := fmt.Sprintf(`
		SELECT s.cote_rue_id, s.nom_voie, s.nom_ville, s.type_f, s.cote,
		       s.debut_adresse, s.fin_adresse, s.geometry,
		       c.etat_deneig, c.status, c.date_debut_planif, c.date_fin_planif,
		       c.date_debut_replanif, c.date_fin_replanif, c.date_maj
		FROM streets s
		LEFT JOIN snow_current c ON c.cote_rue_id = s.cote_rue_id
		%s ORDER BY s.cote_rue_id`, where)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query streets: %w", err)
	}
	defer rows.Close()

	var out []planning.StreetRow
	for rows.Next() {
		var (
			row                                  planning.StreetRow
			nomVoie, nomVille, typeF, cote       sql.NullString
			debutAdresse, finAdresse             sql.NullInt64
			geomJSON                             sql.NullString
			etat                                 sql.NullInt64
			status                               sql.NullString
			dDebut, dFin, dRedebut, dRefin, dMaj sql.NullString
		)
		if err := rows.Scan(&row.CoteRueID, &nomVoie, &nomVille, &typeF, &cote,
			&debutAdresse, &finAdresse, &geomJSON,
			&etat, &status, &dDebut, &dFin, &dRedebut, &dRefin, &dMaj); err != nil {
			return nil, fmt.Errorf("failed to scan street row: %w", err)
		}
		row.NomVoie = nomVoie.String
		row.NomVille = nomVille.String
		row.TypeF = typeF.String
		row.Cote = cote.String
		row.DebutAdresse = int(debutAdresse.Int64)
		row.FinAdresse = int(finAdresse.Int64)

		if geomJSON.Valid && geomJSON.String != "" {
			geom, err := geojson.UnmarshalGeometry([]byte(geomJSON.String))
			if err != nil {
				s.logger.Warn().Err(err).Int64("cote_rue_id", row.CoteRueID).Msg("skipping street with bad geometry")
			} else {
				f := geojson.NewFeature(geom.Geometry())
				f.Properties["nom_voie"] = row.NomVoie
				f.Properties["cote"] = row.Cote
				row.StreetFeature = f
			}
		}

		if includeSnow && etat.Valid {
			row.DeneigementCurrent = &planning.SnowState{
				EtatDeneig:        int(etat.Int64),
				Status:            status.String,
				DateDebutPlanif:   nullStr(dDebut),
				DateFinPlanif:     nullStr(dFin),
				DateDebutReplanif: nullStr(dRedebut),
				DateFinReplanif:   nullStr(dRefin),
				DateMaj:           nullStr(dMaj),
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func nullStr(v sql.NullString) *string {
	if !v.Valid || v.String == "" {
		return nil
	}
	s := v.String
	return &s
}
