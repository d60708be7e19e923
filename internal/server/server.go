// Package server wires the database, stores, event bus and API handlers
// into one HTTP handler.
package server

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/rs/zerolog"

	"github.com/helloneige/neige/internal/api"
	"github.com/helloneige/neige/internal/bus"
	"github.com/helloneige/neige/internal/db"
	"github.com/helloneige/neige/internal/geocode"
	"github.com/helloneige/neige/internal/store"
)

// Config holds the server configuration.
type Config struct {
	Host         string
	Port         string
	DataDir      string
	NominatimURL string // empty means the public Nominatim instance
}

// Server is the snow-removal tracking HTTP server.
type Server struct {
	config  Config
	mux     *http.ServeMux
	humaAPI huma.API
	db      *sql.DB
	bus     *bus.Bus
	logger  zerolog.Logger

	streets       *store.StreetStore
	favorites     *store.FavoriteStore
	parking       *store.ParkingStore
	notifications *store.NotificationStore
}

// New creates the server: DuckDB is opened, the stores and spatial index
// loaded, and every route registered.
func New(cfg Config, logger zerolog.Logger) (*Server, error) {
	mux := http.NewServeMux()

	humaConfig := huma.DefaultConfig("neige API", "1.0.0")
	humaConfig.Info.Description = "Montreal snow-removal tracking: street clearing status, favorites, parking and notifications."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, api.LinkTransformer())

	humaAPI := humago.New(mux, humaConfig)

	conn, err := db.Open(db.Config{DataDir: cfg.DataDir, DBName: "neige"})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	streets, err := store.NewStreetStore(conn, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}

	s := &Server{
		config:        cfg,
		mux:           mux,
		humaAPI:       humaAPI,
		db:            conn,
		bus:           bus.New(),
		logger:        logger.With().Str("component", "server").Logger(),
		streets:       streets,
		favorites:     store.NewFavoriteStore(conn),
		parking:       store.NewParkingStore(conn),
		notifications: store.NewNotificationStore(conn),
	}

	s.routes()
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Close closes server resources.
func (s *Server) Close() error {
	return s.db.Close()
}

// Bus returns the notification event bus, shared with the ingestor.
func (s *Server) Bus() *bus.Bus {
	return s.bus
}

// Stores exposes the persistence layer for the ingest commands.
func (s *Server) Stores() (*store.StreetStore, *store.FavoriteStore, *store.ParkingStore, *store.NotificationStore) {
	return s.streets, s.favorites, s.parking, s.notifications
}

// OpenAPI returns the generated API description.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

func (s *Server) routes() {
	var geocodeOpts []geocode.Option
	if s.config.NominatimURL != "" {
		geocodeOpts = append(geocodeOpts, geocode.WithBaseURL(s.config.NominatimURL))
	}

	services := &api.Services{
		Streets:       s.streets,
		Favorites:     s.favorites,
		Parking:       s.parking,
		Notifications: s.notifications,
		Geocoder:      geocode.NewClient(s.logger, geocodeOpts...),
	}

	// REST API routes (OpenAPI-documented JSON endpoints)
	api.RegisterRoutes(s.humaAPI, services)

	infoHandler := api.NewInfoHandler(s.config.DataDir, s.db != nil)
	infoHandler.RegisterRoutes(s.humaAPI)

	notificationHandler := api.NewNotificationHandler(s.notifications, s.bus)
	notificationHandler.RegisterRoutes(s.humaAPI)

	dbHandler := api.NewDBHandler(s.db)
	dbHandler.RegisterRoutes(s.humaAPI)

	s.mux.HandleFunc("/", s.handleRoot)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintln(w, `{"service":"neige","status":"running"}`)
}
