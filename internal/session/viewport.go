package session

import (
	"context"
	"time"

	"github.com/helloneige/neige/internal/snow"
)

// Mount arms the initial bounds report. The fixed settle delay avoids
// racing the map library's own initialization; when no bounds are known
// yet the whole city is loaded instead.
func (s *Session) Mount(bounds *snow.Bounds) {
	time.AfterFunc(s.cfg.SettleDelay, func() {
		if bounds != nil {
			s.fetchViewport(*bounds)
			return
		}
		s.Reload(context.Background(), false)
	})
}

// SetBounds reports a viewport change. Bounds rounding to the same key
// as the last report are suppressed entirely; otherwise the debounce
// timer is re-armed and the latest bounds win when it fires.
func (s *Session) SetBounds(bounds snow.Bounds) {
	key := bounds.Key()

	s.mu.Lock()
	if key == s.lastKey {
		s.mu.Unlock()
		return
	}
	s.lastKey = key
	s.pendingBounds = bounds
	if s.boundsTimer != nil {
		s.boundsTimer.Stop()
	}
	s.boundsTimer = time.AfterFunc(s.cfg.BoundsDebounce, func() {
		s.mu.Lock()
		b := s.pendingBounds
		s.mu.Unlock()
		s.fetchViewport(b)
	})
	s.mu.Unlock()
}

// fetchViewport runs a bounds-constrained fetch and merges the result by
// id into the displayed list, preserving previously seen segments now
// out of view. A fetch superseded by a newer one while in flight is
// discarded wholesale; an empty result leaves the list unchanged.
func (s *Session) fetchViewport(bounds snow.Bounds) {
	s.mu.Lock()
	s.fetchGen++
	gen := s.fetchGen
	s.mu.Unlock()

	segs := s.cfg.Fetcher.Fetch(context.Background(), false, &bounds)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.fetchGen {
		s.logger.Debug().Uint64("gen", gen).Msg("discarding superseded viewport fetch")
		return
	}
	if len(segs) == 0 {
		return
	}
	s.mergeByID(segs)
}

// mergeByID overwrites displayed segments that reappear in the fetch and
// appends the rest. Callers hold the mutex.
func (s *Session) mergeByID(segs []snow.StreetSegment) {
	index := make(map[int64]int, len(s.displayed))
	for i := range s.displayed {
		index[s.displayed[i].CoteRueID] = i
	}
	for _, seg := range segs {
		if i, ok := index[seg.CoteRueID]; ok {
			s.displayed[i] = seg
			continue
		}
		index[seg.CoteRueID] = len(s.displayed)
		s.displayed = append(s.displayed, seg)
	}
}

// Reload replaces the displayed list wholesale from a full-city fetch.
// Unlike the viewport path, an explicit reload clears the list even when
// the fetch comes back empty.
func (s *Session) Reload(ctx context.Context, forceRefresh bool) {
	s.mu.Lock()
	s.fetchGen++
	gen := s.fetchGen
	s.mu.Unlock()

	segs := s.cfg.Fetcher.Fetch(ctx, forceRefresh, nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.fetchGen {
		return
	}
	s.displayed = segs
}

// ZoomToFeature re-centers the camera on a segment's marker point
// without changing zoom. The monotonically increasing counter lets
// consumers re-trigger on repeated selection of the same feature.
func (s *Session) ZoomToFeature(seg snow.StreetSegment) {
	if seg.Feature == nil {
		return
	}
	pt, ok := snow.MarkerPoint(seg.Feature.Geometry)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.center = &Center{Lat: pt[1], Lng: pt[0]}
	s.zoomCounter++
}

// ZoomTo sets the camera to an explicit point and zoom level, used for
// geocoded search results.
func (s *Session) ZoomTo(lat, lng float64, zoom int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.center = &Center{Lat: lat, Lng: lng, Zoom: zoom}
	s.zoomCounter++
}

// SetInitialCenter centers the camera once, on the first known location.
// Later calls are ignored; explicit zooms still move the camera.
func (s *Session) SetInitialCenter(lat, lng float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialCentered {
		return
	}
	s.initialCentered = true
	s.center = &Center{Lat: lat, Lng: lng}
}

// Center returns the last requested camera position, nil when none.
func (s *Session) Center() *Center {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.center == nil {
		return nil
	}
	c := *s.center
	return &c
}

// ZoomCounter returns the zoom trigger counter.
func (s *Session) ZoomCounter() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zoomCounter
}
