// Package api defines the Huma API routes and handlers.
package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/helloneige/neige/internal/geocode"
	"github.com/helloneige/neige/internal/planning"
	"github.com/helloneige/neige/internal/snow"
)

// StreetReader is the read side of the street store.
type StreetReader interface {
	All(ctx context.Context, includeSnow bool) ([]planning.StreetRow, error)
	InBounds(ctx context.Context, bounds snow.Bounds, includeSnow bool) ([]planning.StreetRow, error)
}

// FavoriteStore is the favorites persistence used by the handlers.
type FavoriteStore interface {
	List(ctx context.Context, userID string) ([]int64, error)
	Add(ctx context.Context, userID string, coteRueID int64) error
	Remove(ctx context.Context, userID string, coteRueID int64) error
}

// ParkingStore is the parking persistence used by the handlers.
type ParkingStore interface {
	List(ctx context.Context, userID string) ([]snow.ParkingLocation, error)
	Insert(ctx context.Context, userID string, lat, lng float64, name, notes string) (snow.ParkingLocation, error)
	Delete(ctx context.Context, userID, id string) error
	ListMunicipal(ctx context.Context) ([]snow.MunicipalParking, error)
}

// NotificationReader lists a user's stored notifications.
type NotificationReader interface {
	ListForUser(ctx context.Context, userID string, limit int) ([]snow.NotificationEvent, error)
}

// Geocoder is the address search collaborator.
type Geocoder interface {
	Suggest(ctx context.Context, query string) []geocode.Suggestion
	Search(ctx context.Context, query string) *geocode.Suggestion
}

// Services holds the service dependencies for API handlers.
type Services struct {
	Streets       StreetReader
	Favorites     FavoriteStore
	Parking       ParkingStore
	Notifications NotificationReader
	Geocoder      Geocoder
}

// Common types

// UserInput carries the opaque user identity header. Auth screens and
// session management live elsewhere; the API trusts the gateway-set
// header.
type UserInput struct {
	UserID string `header:"X-User-ID" doc:"Authenticated user identifier"`
}

type MessageBody struct {
	Message string `json:"message" doc:"Result message"`
}

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"1.0.0"`
}

// APIHandler holds all REST API handlers. Methods named Register* are
// auto-discovered by huma.AutoRegister.
type APIHandler struct {
	svc *Services
}

func NewAPIHandler(svc *Services) *APIHandler {
	return &APIHandler{svc: svc}
}

// RegisterRoutes registers every Register* method of the API handler.
func RegisterRoutes(api huma.API, svc *Services) {
	huma.AutoRegister(api, NewAPIHandler(svc))
}

// RegisterHealth registers health check routes.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
}

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: "1.0.0"}}, nil
}

// requireUser resolves the identity header or fails with 401.
func requireUser(input UserInput) (string, error) {
	if input.UserID == "" {
		return "", huma.Error401Unauthorized("authentication required")
	}
	return input.UserID, nil
}
