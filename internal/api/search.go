package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/helloneige/neige/internal/geocode"
)

type SearchInput struct {
	Query string `query:"q" required:"true" doc:"Partial address" example:"rue rachel"`
}

type SearchOutput struct {
	Body struct {
		Suggestions []geocode.Suggestion `json:"suggestions" doc:"Ranked geocoding candidates"`
	}
}

// RegisterSearch registers address search routes.
func (h *APIHandler) RegisterSearch(api huma.API) {
	huma.Get(api, "/api/v1/search", h.Search, huma.OperationTags("search"))
}

// Search proxies the geocoder. Short or unmatched queries yield an
// empty list, never an error.
func (h *APIHandler) Search(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	results := h.svc.Geocoder.Suggest(ctx, input.Query)
	if results == nil {
		results = []geocode.Suggestion{}
	}
	out := &SearchOutput{}
	out.Body.Suggestions = results
	return out, nil
}
