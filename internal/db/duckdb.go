// Package db opens the embedded DuckDB database backing the service and
// bootstraps its schema.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Config holds database configuration.
type Config struct {
	DataDir string
	DBName  string
}

// schema is applied on every open; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS streets (
		cote_rue_id   BIGINT PRIMARY KEY,
		nom_voie      VARCHAR,
		nom_ville     VARCHAR,
		type_f        VARCHAR,
		cote          VARCHAR,
		debut_adresse INTEGER,
		fin_adresse   INTEGER,
		geometry      VARCHAR,
		min_lng       DOUBLE,
		min_lat       DOUBLE,
		max_lng       DOUBLE,
		max_lat       DOUBLE,
		updated_at    TIMESTAMP DEFAULT current_timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS snow_current (
		cote_rue_id         BIGINT PRIMARY KEY,
		etat_deneig         INTEGER NOT NULL,
		status              VARCHAR,
		date_debut_planif   VARCHAR,
		date_fin_planif     VARCHAR,
		date_debut_replanif VARCHAR,
		date_fin_replanif   VARCHAR,
		date_maj            VARCHAR
	)`,
	`CREATE TABLE IF NOT EXISTS user_favorites (
		user_id     VARCHAR NOT NULL,
		cote_rue_id BIGINT NOT NULL,
		created_at  TIMESTAMP DEFAULT current_timestamp,
		PRIMARY KEY (user_id, cote_rue_id)
	)`,
	`CREATE TABLE IF NOT EXISTS parking_locations (
		id         VARCHAR PRIMARY KEY,
		user_id    VARCHAR NOT NULL,
		latitude   DOUBLE NOT NULL,
		longitude  DOUBLE NOT NULL,
		name       VARCHAR,
		notes      VARCHAR,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS municipal_parking (
		station_id       VARCHAR PRIMARY KEY,
		borough          VARCHAR NOT NULL,
		number_of_spaces INTEGER,
		latitude         DOUBLE NOT NULL,
		longitude        DOUBLE NOT NULL,
		location_fr      VARCHAR,
		location_en      VARCHAR,
		hours_fr         VARCHAR,
		hours_en         VARCHAR,
		note_fr          VARCHAR,
		note_en          VARCHAR,
		payment_type     VARCHAR
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id          VARCHAR PRIMARY KEY,
		user_id     VARCHAR NOT NULL,
		cote_rue_id BIGINT NOT NULL,
		old_etat    INTEGER,
		new_etat    INTEGER NOT NULL,
		created_at  TIMESTAMP NOT NULL
	)`,
}

// Open opens (creating if needed) the DuckDB file under the data
// directory and applies the schema. The handle is meant to be injected
// into the stores; there is deliberately no package-level singleton.
func Open(cfg Config) (*sql.DB, error) {
	dir := filepath.Join(cfg.DataDir, "duckdb")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create duckdb directory: %w", err)
	}

	name := cfg.DBName
	if name == "" {
		name = "neige"
	}
	conn, err := sql.Open("duckdb", filepath.Join(dir, name+".duckdb"))
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}

	for _, stmt := range schema {
		if _, err := conn.Exec(stmt); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return conn, nil
}
