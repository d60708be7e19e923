// Package planning fetches snow-removal planning records and normalizes
// the wire shape of the streets endpoint into the flat StreetSegment
// view-model.
package planning

import (
	"github.com/paulmach/orb/geojson"
)

// Envelope is the response shape of GET /api/v1/streets.
type Envelope struct {
	Success bool        `json:"success"`
	Data    []StreetRow `json:"data"`
	Count   int         `json:"count"`
	Error   string      `json:"error,omitempty"`
}

// StreetRow is one raw street record as served by the streets endpoint:
// street attributes, an optional GeoJSON feature, and the optional
// current snow state when include_snow was requested.
type StreetRow struct {
	CoteRueID          int64            `json:"cote_rue_id"`
	IDTrc              int64            `json:"id_trc,omitempty"`
	IDVoie             int64            `json:"id_voie,omitempty"`
	NomVoie            string           `json:"nom_voie"`
	NomVille           string           `json:"nom_ville"`
	DebutAdresse       int              `json:"debut_adresse,omitempty"`
	FinAdresse         int              `json:"fin_adresse,omitempty"`
	Cote               string           `json:"cote,omitempty"`
	TypeF              string           `json:"type_f,omitempty"`
	SensCir            int              `json:"sens_cir,omitempty"`
	StreetFeature      *geojson.Feature `json:"street_feature,omitempty"`
	DeneigementCurrent *SnowState       `json:"deneigement_current,omitempty"`
	CreatedAt          *string          `json:"created_at,omitempty"`
	UpdatedAt          *string          `json:"updated_at,omitempty"`
}

// SnowState is the nested current-state record of a street row.
type SnowState struct {
	EtatDeneig        int     `json:"etat_deneig"`
	Status            string  `json:"status"`
	DateDebutPlanif   *string `json:"date_debut_planif"`
	DateFinPlanif     *string `json:"date_fin_planif"`
	DateDebutReplanif *string `json:"date_debut_replanif"`
	DateFinReplanif   *string `json:"date_fin_replanif"`
	DateMaj           *string `json:"date_maj"`
}
