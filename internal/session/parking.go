package session

import (
	"context"
	"time"

	"github.com/helloneige/neige/internal/snow"
)

const parkingModeMessage = "Cliquez sur la carte pour placer votre stationnement"

// loadParking replaces the parking list from the store, newest first.
func (s *Session) loadParking(ctx context.Context) {
	s.mu.Lock()
	userID := s.userID
	s.mu.Unlock()
	if userID == "" {
		return
	}

	list, err := s.cfg.Parking.List(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load parking locations")
		return
	}

	s.mu.Lock()
	s.parking = list
	s.mu.Unlock()
}

// SetParkingMode toggles whether map clicks are interpreted as parking
// placement. Enabling it surfaces an instructional message that clears
// itself after the configured interval.
func (s *Session) SetParkingMode(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parkingMode = enabled
	if !enabled {
		s.pendingClick = nil
		return
	}

	s.message = parkingModeMessage
	if s.messageTimer != nil {
		s.messageTimer.Stop()
	}
	s.messageTimer = time.AfterFunc(s.cfg.MessageTTL, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.message == parkingModeMessage {
			s.message = ""
		}
	})
}

// ParkingMode reports whether parking placement is active.
func (s *Session) ParkingMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.parkingMode
}

// Message returns the current transient UI message, empty when none.
func (s *Session) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

// MapClick routes a raw map click. Only the parking overlay consumes
// clicks, and only while parking mode is on; otherwise the click is
// dropped.
func (s *Session) MapClick(lat, lng float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.parkingMode {
		return
	}
	s.pendingClick = &ClickPoint{Lat: lat, Lng: lng}
}

// PendingClick returns the click awaiting confirmation, nil when none.
func (s *Session) PendingClick() *ClickPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pendingClick == nil {
		return nil
	}
	c := *s.pendingClick
	return &c
}

// SaveParking confirms the pending click as a saved spot: the store row
// is inserted, the new location is prepended to the local list, and the
// pending click and parking mode are cleared.
func (s *Session) SaveParking(ctx context.Context, name, notes string) (snow.ParkingLocation, error) {
	s.mu.Lock()
	userID := s.userID
	click := s.pendingClick
	s.mu.Unlock()

	if userID == "" {
		return snow.ParkingLocation{}, ErrAuthRequired
	}
	if click == nil {
		return snow.ParkingLocation{}, ErrNoPendingClick
	}

	loc, err := s.cfg.Parking.Insert(ctx, userID, click.Lat, click.Lng, name, notes)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to save parking location")
		return snow.ParkingLocation{}, err
	}

	s.mu.Lock()
	s.parking = append([]snow.ParkingLocation{loc}, s.parking...)
	s.pendingClick = nil
	s.parkingMode = false
	s.mu.Unlock()
	return loc, nil
}

// DeleteParking removes a saved spot from the store and the local list.
func (s *Session) DeleteParking(ctx context.Context, id string) error {
	s.mu.Lock()
	userID := s.userID
	s.mu.Unlock()
	if userID == "" {
		return ErrAuthRequired
	}

	if err := s.cfg.Parking.Delete(ctx, userID, id); err != nil {
		s.logger.Error().Err(err).Str("id", id).Msg("failed to delete parking location")
		return err
	}

	s.mu.Lock()
	for i := range s.parking {
		if s.parking[i].ID == id {
			s.parking = append(s.parking[:i], s.parking[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// ParkingList returns a copy of the user's saved spots, newest first.
func (s *Session) ParkingList() []snow.ParkingLocation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]snow.ParkingLocation, len(s.parking))
	copy(out, s.parking)
	return out
}
