package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/helloneige/neige/internal/planning"
	"github.com/helloneige/neige/internal/snow"
)

// Edge cache policy: viewport responses churn with the plows, full-city
// dumps are big and change slowly.
const (
	boundsCacheControl = "public, s-maxage=60, stale-while-revalidate=300"
	cityCacheControl   = "public, s-maxage=3600, stale-while-revalidate=86400"
)

// StreetsInput selects the street query. The bounding box applies when
// all four coordinates are set; Montreal is nowhere near (0,0).
type StreetsInput struct {
	IncludeSnow bool    `query:"include_snow" doc:"Join each street with its current snow-removal state"`
	MinLat      float64 `query:"minLat" doc:"Viewport south edge"`
	MinLng      float64 `query:"minLng" doc:"Viewport west edge"`
	MaxLat      float64 `query:"maxLat" doc:"Viewport north edge"`
	MaxLng      float64 `query:"maxLng" doc:"Viewport east edge"`
}

// StreetsOutput is the streets envelope plus the edge cache policy.
type StreetsOutput struct {
	CacheControl string `header:"Cache-Control"`
	Body         planning.Envelope
}

// RegisterStreets registers the street query routes.
func (h *APIHandler) RegisterStreets(api huma.API) {
	huma.Get(api, "/api/v1/streets", h.GetStreets, huma.OperationTags("streets"))
}

// GetStreets returns streets with optional snow state, constrained to
// the viewport when a bounding box is given.
func (h *APIHandler) GetStreets(ctx context.Context, input *StreetsInput) (*StreetsOutput, error) {
	bounds, bounded := inputBounds(input)

	var (
		rows []planning.StreetRow
		err  error
	)
	if bounded {
		rows, err = h.svc.Streets.InBounds(ctx, bounds, input.IncludeSnow)
	} else {
		rows, err = h.svc.Streets.All(ctx, input.IncludeSnow)
	}
	if err != nil {
		return &StreetsOutput{
			Body: planning.Envelope{Success: false, Error: "street query failed"},
		}, nil
	}
	if rows == nil {
		rows = []planning.StreetRow{}
	}

	out := &StreetsOutput{
		CacheControl: cityCacheControl,
		Body:         planning.Envelope{Success: true, Data: rows, Count: len(rows)},
	}
	if bounded {
		out.CacheControl = boundsCacheControl
	}
	return out, nil
}

func inputBounds(input *StreetsInput) (snow.Bounds, bool) {
	if input.MinLat == 0 || input.MinLng == 0 || input.MaxLat == 0 || input.MaxLng == 0 {
		return snow.Bounds{}, false
	}
	return snow.Bounds{
		MinLat: input.MinLat,
		MinLng: input.MinLng,
		MaxLat: input.MaxLat,
		MaxLng: input.MaxLng,
	}, true
}
