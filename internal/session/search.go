package session

import (
	"context"
	"time"

	"github.com/helloneige/neige/internal/geocode"
)

// searchResultZoom is the zoom level applied when jumping to a geocoded
// address.
const searchResultZoom = 17

// UpdateSearchQuery records search box input. The geocoding call is
// debounced: only the last query within the inactivity window is sent.
func (s *Session) UpdateSearchQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.searchTimer != nil {
		s.searchTimer.Stop()
	}
	s.searchTimer = time.AfterFunc(s.cfg.SearchDebounce, func() {
		results := s.cfg.Geocoder.Suggest(context.Background(), query)
		s.mu.Lock()
		s.suggestions = results
		s.mu.Unlock()
	})
}

// Suggestions returns the latest resolved suggestion list.
func (s *Session) Suggestions() []geocode.Suggestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]geocode.Suggestion, len(s.suggestions))
	copy(out, s.suggestions)
	return out
}

// SubmitSearch runs an explicit search and zooms to the top hit. The
// pending debounce is cancelled and the suggestion list cleared.
func (s *Session) SubmitSearch(ctx context.Context, query string) *geocode.Suggestion {
	s.mu.Lock()
	if s.searchTimer != nil {
		s.searchTimer.Stop()
	}
	s.suggestions = nil
	s.mu.Unlock()

	top := s.cfg.Geocoder.Search(ctx, query)
	if top == nil {
		return nil
	}
	s.SelectSuggestion(*top)
	return top
}

// SelectSuggestion zooms to a chosen suggestion and clears the list.
func (s *Session) SelectSuggestion(sug geocode.Suggestion) {
	lat, lng, ok := sug.Point()
	if !ok {
		s.logger.Warn().Str("display_name", sug.DisplayName).Msg("suggestion has malformed coordinates")
		return
	}
	s.mu.Lock()
	s.suggestions = nil
	s.mu.Unlock()
	s.ZoomTo(lat, lng, searchResultZoom)
}
