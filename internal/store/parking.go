package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/helloneige/neige/internal/snow"
)

// ParkingStore persists user-saved parking spots and the imported
// municipal incentive lots.
type ParkingStore struct {
	db *sql.DB
}

// NewParkingStore creates a parking store.
func NewParkingStore(db *sql.DB) *ParkingStore {
	return &ParkingStore{db: db}
}

// List returns the user's saved parking spots, newest first.
func (s *ParkingStore) List(ctx context.Context, userID string) ([]snow.ParkingLocation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, latitude, longitude, name, notes, created_at
		FROM parking_locations WHERE user_id = ?
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list parking locations: %w", err)
	}
	defer rows.Close()

	var out []snow.ParkingLocation
	for rows.Next() {
		var p snow.ParkingLocation
		var name, notes sql.NullString
		if err := rows.Scan(&p.ID, &p.UserID, &p.Latitude, &p.Longitude, &name, &notes, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Name = name.String
		p.Notes = notes.String
		out = append(out, p)
	}
	return out, rows.Err()
}

// Insert saves a new parking spot, assigning it an ID and timestamp.
func (s *ParkingStore) Insert(ctx context.Context, userID string, lat, lng float64, name, notes string) (snow.ParkingLocation, error) {
	p := snow.ParkingLocation{
		ID:        uuid.NewString(),
		UserID:    userID,
		Latitude:  lat,
		Longitude: lng,
		Name:      name,
		Notes:     notes,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO parking_locations (id, user_id, latitude, longitude, name, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.Latitude, p.Longitude, p.Name, p.Notes, p.CreatedAt)
	if err != nil {
		return snow.ParkingLocation{}, fmt.Errorf("failed to insert parking location: %w", err)
	}
	return p, nil
}

// Delete removes a parking spot. Only the owner's rows are touched.
func (s *ParkingStore) Delete(ctx context.Context, userID, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM parking_locations WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete parking location: %w", err)
	}
	return nil
}

// ListMunicipal returns every imported municipal incentive lot.
func (s *ParkingStore) ListMunicipal(ctx context.Context) ([]snow.MunicipalParking, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT station_id, borough, number_of_spaces, latitude, longitude,
		       location_fr, location_en, hours_fr, hours_en, note_fr, note_en, payment_type
		FROM municipal_parking ORDER BY borough, station_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list municipal parking: %w", err)
	}
	defer rows.Close()

	var out []snow.MunicipalParking
	for rows.Next() {
		var m snow.MunicipalParking
		var spaces sql.NullInt64
		var locFr, locEn, hrsFr, hrsEn, noteFr, noteEn, pay sql.NullString
		if err := rows.Scan(&m.StationID, &m.Borough, &spaces, &m.Latitude, &m.Longitude,
			&locFr, &locEn, &hrsFr, &hrsEn, &noteFr, &noteEn, &pay); err != nil {
			return nil, err
		}
		m.NumberOfSpaces = int(spaces.Int64)
		m.LocationFr, m.LocationEn = locFr.String, locEn.String
		m.HoursFr, m.HoursEn = hrsFr.String, hrsEn.String
		m.NoteFr, m.NoteEn = noteFr.String, noteEn.String
		m.PaymentType = pay.String
		out = append(out, m)
	}
	return out, rows.Err()
}

// ReplaceMunicipal swaps in a freshly imported set of municipal lots.
func (s *ParkingStore) ReplaceMunicipal(ctx context.Context, lots []snow.MunicipalParking) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin municipal parking import: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM municipal_parking`); err != nil {
		return fmt.Errorf("failed to clear municipal parking: %w", err)
	}
	for _, m := range lots {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO municipal_parking
				(station_id, borough, number_of_spaces, latitude, longitude,
				 location_fr, location_en, hours_fr, hours_en, note_fr, note_en, payment_type)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.StationID, m.Borough, m.NumberOfSpaces, m.Latitude, m.Longitude,
			m.LocationFr, m.LocationEn, m.HoursFr, m.HoursEn, m.NoteFr, m.NoteEn, m.PaymentType)
		if err != nil {
			return fmt.Errorf("failed to insert municipal lot %s: %w", m.StationID, err)
		}
	}
	return tx.Commit()
}
