// Package snow contains the core view-model types and pure logic for
// Montreal snow-removal tracking: the status vocabulary, the marker
// geometry reducer, and the merge & filter engine that combines viewport
// data with user overlays.
package snow

import (
	"fmt"
	"math"
	"time"

	"github.com/paulmach/orb"
)

// MontrealMunID is the municipality identifier stamped on every segment.
const MontrealMunID = 66023

// StreetSegment is the flat view-model for one side of one block of a
// street, combining its current snow-removal state with its geometry.
// It is immutable once built; refreshes replace records wholesale.
type StreetSegment struct {
	MunID             int            `json:"munid"`
	CoteRueID         int64          `json:"coteRueId"`
	EtatDeneig        int            `json:"etatDeneig"`
	Status            string         `json:"status"`
	DateDebutPlanif   *time.Time     `json:"dateDebutPlanif"`
	DateFinPlanif     *time.Time     `json:"dateFinPlanif"`
	DateDebutReplanif *time.Time     `json:"dateDebutReplanif"`
	DateFinReplanif   *time.Time     `json:"dateFinReplanif"`
	DateMaj           *time.Time     `json:"dateMaj"`
	Feature           *StreetFeature `json:"streetFeature,omitempty"`
	IsFavorite        bool           `json:"isFavorite,omitempty"`
}

// StreetFeature holds the denormalized geometry and descriptive
// properties of a street side.
type StreetFeature struct {
	Geometry    orb.LineString `json:"-"`
	Name        string         `json:"name"`
	StreetType  string         `json:"streetType"`
	City        string         `json:"city"`
	Side        string         `json:"side"`
	AddressFrom int            `json:"addressFrom"`
	AddressTo   int            `json:"addressTo"`
}

// ParkingLocation is a user-saved parking spot.
type ParkingLocation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Name      string    `json:"name,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// MunicipalParking is a city-operated incentive parking lot, open to
// residents while their street is being cleared.
type MunicipalParking struct {
	StationID      string  `json:"stationId"`
	Borough        string  `json:"borough"`
	NumberOfSpaces int     `json:"numberOfSpaces"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	LocationFr     string  `json:"locationFr,omitempty"`
	LocationEn     string  `json:"locationEn,omitempty"`
	HoursFr        string  `json:"hoursFr,omitempty"`
	HoursEn        string  `json:"hoursEn,omitempty"`
	NoteFr         string  `json:"noteFr,omitempty"`
	NoteEn         string  `json:"noteEn,omitempty"`
	PaymentType    string  `json:"paymentType,omitempty"`
}

// NotificationEvent records a snow-state transition for a segment a user
// has favorited. OldEtat is nil when the segment had no prior state.
type NotificationEvent struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CoteRueID int64     `json:"coteRueId"`
	OldEtat   *int      `json:"oldEtat"`
	NewEtat   int       `json:"newEtat"`
	CreatedAt time.Time `json:"createdAt"`
}

// Bounds is a geographic bounding box in WGS84.
type Bounds struct {
	MinLat float64 `json:"minLat"`
	MinLng float64 `json:"minLng"`
	MaxLat float64 `json:"maxLat"`
	MaxLng float64 `json:"maxLng"`
}

// Bound converts to an orb.Bound (lng/lat order).
func (b Bounds) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.MinLng, b.MinLat},
		Max: orb.Point{b.MaxLng, b.MaxLat},
	}
}

// Key returns the bounds rounded to 5 decimal places (about 1m at this
// latitude) as a comparable string. Two viewports with the same key are
// treated as the same viewport and do not trigger a re-fetch.
func (b Bounds) Key() string {
	r := func(v float64) float64 { return math.Round(v*1e5) / 1e5 }
	return fmt.Sprintf("%.5f,%.5f,%.5f,%.5f", r(b.MinLat), r(b.MinLng), r(b.MaxLat), r(b.MaxLng))
}
