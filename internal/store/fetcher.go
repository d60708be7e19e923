package store

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/helloneige/neige/internal/planning"
	"github.com/helloneige/neige/internal/snow"
)

// StreetReader is the read side of the street store the fetcher needs.
// *StreetStore satisfies it.
type StreetReader interface {
	All(ctx context.Context, includeSnow bool) ([]planning.StreetRow, error)
	InBounds(ctx context.Context, bounds snow.Bounds, includeSnow bool) ([]planning.StreetRow, error)
	ByIDs(ctx context.Context, ids []int64, includeSnow bool) ([]planning.StreetRow, error)
}

// Fetcher adapts the street store to the planning.Fetcher interface so
// in-process map sessions read from the database directly instead of
// going over HTTP. forceRefresh is meaningless here and ignored.
type Fetcher struct {
	streets StreetReader
	logger  zerolog.Logger
}

// NewFetcher wraps a street reader as a planning fetcher.
func NewFetcher(streets StreetReader, logger zerolog.Logger) *Fetcher {
	return &Fetcher{
		streets: streets,
		logger:  logger.With().Str("component", "store_fetcher").Logger(),
	}
}

// Fetch returns normalized segments, viewport-constrained when bounds
// are given. Failures are logged and yield an empty result, matching the
// HTTP fetcher's contract.
func (f *Fetcher) Fetch(ctx context.Context, _ bool, bounds *snow.Bounds) []snow.StreetSegment {
	var (
		rows []planning.StreetRow
		err  error
	)
	if bounds != nil {
		rows, err = f.streets.InBounds(ctx, *bounds, true)
	} else {
		rows, err = f.streets.All(ctx, true)
	}
	if err != nil {
		f.logger.Error().Err(err).Msg("street query failed")
		return nil
	}
	return planning.Normalize(rows)
}

// Segments returns the normalized segments for an explicit id set, used
// to hydrate favorites regardless of the current viewport.
func (f *Fetcher) Segments(ctx context.Context, ids []int64) ([]snow.StreetSegment, error) {
	rows, err := f.streets.ByIDs(ctx, ids, true)
	if err != nil {
		return nil, err
	}
	return planning.Normalize(rows), nil
}
