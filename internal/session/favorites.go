package session

import (
	"context"
	"errors"

	"github.com/helloneige/neige/internal/snow"
	"github.com/helloneige/neige/internal/store"
)

// loadFavorites replaces the favorite set from the store. On error the
// set is left as it was.
func (s *Session) loadFavorites(ctx context.Context) {
	s.mu.Lock()
	userID := s.userID
	s.mu.Unlock()
	if userID == "" {
		return
	}

	ids, err := s.cfg.Favorites.List(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load favorites")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.favorites = make(map[int64]bool, len(ids))
	s.favOrder = ids
	for _, id := range ids {
		s.favorites[id] = true
	}
}

// ToggleFavorite adds or removes a street from the user's favorites.
// When signed out it returns ErrAuthRequired and mutates nothing. A
// duplicate-insert conflict from the store counts as success: the local
// set is reconciled to include the id.
func (s *Session) ToggleFavorite(ctx context.Context, coteRueID int64) error {
	s.mu.Lock()
	userID := s.userID
	present := s.favorites[coteRueID]
	s.mu.Unlock()

	if userID == "" {
		return ErrAuthRequired
	}

	if present {
		if err := s.cfg.Favorites.Remove(ctx, userID, coteRueID); err != nil {
			s.logger.Error().Err(err).Int64("cote_rue_id", coteRueID).Msg("failed to remove favorite")
			return err
		}
		s.mu.Lock()
		delete(s.favorites, coteRueID)
		for i, id := range s.favOrder {
			if id == coteRueID {
				s.favOrder = append(s.favOrder[:i], s.favOrder[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
		return nil
	}

	if err := s.cfg.Favorites.Add(ctx, userID, coteRueID); err != nil && !errors.Is(err, store.ErrAlreadyExists) {
		s.logger.Error().Err(err).Int64("cote_rue_id", coteRueID).Msg("failed to add favorite")
		return err
	}
	s.mu.Lock()
	if !s.favorites[coteRueID] {
		s.favorites[coteRueID] = true
		s.favOrder = append(s.favOrder, coteRueID)
	}
	s.mu.Unlock()
	return nil
}

// IsFavorite reports whether the street is in the local favorite set.
func (s *Session) IsFavorite(coteRueID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.favorites[coteRueID]
}

// HydrateFavorites fetches the full segment for every favorited street,
// tagged as favorites, so off-viewport favorites still reach the merge
// engine. Empty when signed out or nothing is favorited.
func (s *Session) HydrateFavorites(ctx context.Context) []snow.StreetSegment {
	s.mu.Lock()
	userID := s.userID
	ids := make([]int64, len(s.favOrder))
	copy(ids, s.favOrder)
	s.mu.Unlock()

	if userID == "" || len(ids) == 0 {
		return nil
	}

	segs, err := s.cfg.Segments.Segments(ctx, ids)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hydrate favorites")
		return nil
	}
	for i := range segs {
		segs[i].IsFavorite = true
	}
	return segs
}
