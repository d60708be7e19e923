package api

import (
	"context"
	"database/sql"

	"github.com/danielgtaylor/huma/v2"
)

// DBHandler exposes read-only database introspection for operators:
// which tables exist and how full the snow dataset is.
type DBHandler struct {
	db *sql.DB
}

// NewDBHandler creates a new database handler.
func NewDBHandler(db *sql.DB) *DBHandler {
	return &DBHandler{db: db}
}

// RegisterRoutes registers database routes with Huma.
func (h *DBHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/admin/tables", h.ListTables, huma.OperationTags("admin"))
	huma.Get(api, "/api/v1/admin/stats", h.Stats, huma.OperationTags("admin"))
}

// TablesOutput is the response for listing tables.
type TablesOutput struct {
	Body struct {
		Tables []string `json:"tables" doc:"List of table names"`
	}
}

// ListTables returns all DuckDB tables.
func (h *DBHandler) ListTables(ctx context.Context, input *struct{}) (*TablesOutput, error) {
	if h.db == nil {
		return nil, huma.Error503ServiceUnavailable("Database not available")
	}

	rows, err := h.db.QueryContext(ctx, "SHOW TABLES")
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list tables", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err == nil {
			tables = append(tables, name)
		}
	}
	if tables == nil {
		tables = []string{}
	}

	out := &TablesOutput{}
	out.Body.Tables = tables
	return out, nil
}

// StatsOutput reports dataset row counts.
type StatsOutput struct {
	Body struct {
		Streets          int64 `json:"streets" doc:"Street sides loaded"`
		SnowStates       int64 `json:"snowStates" doc:"Streets with a current state"`
		Favorites        int64 `json:"favorites" doc:"Favorite rows"`
		ParkingLocations int64 `json:"parkingLocations" doc:"User parking spots"`
		MunicipalParking int64 `json:"municipalParking" doc:"Imported municipal lots"`
		Notifications    int64 `json:"notifications" doc:"Stored notifications"`
	}
}

// Stats returns row counts for the snow dataset tables.
func (h *DBHandler) Stats(ctx context.Context, input *struct{}) (*StatsOutput, error) {
	if h.db == nil {
		return nil, huma.Error503ServiceUnavailable("Database not available")
	}

	out := &StatsOutput{}
	counts := []struct {
		table string
		dst   *int64
	}{
		{"streets", &out.Body.Streets},
		{"snow_current", &out.Body.SnowStates},
		{"user_favorites", &out.Body.Favorites},
		{"parking_locations", &out.Body.ParkingLocations},
		{"municipal_parking", &out.Body.MunicipalParking},
		{"notifications", &out.Body.Notifications},
	}
	for _, c := range counts {
		if err := h.db.QueryRowContext(ctx, "SELECT count(*) FROM "+c.table).Scan(c.dst); err != nil {
			return nil, huma.Error500InternalServerError("Failed to count "+c.table, err)
		}
	}
	return out, nil
}
