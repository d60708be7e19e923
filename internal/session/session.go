// Package session implements the per-user map session: the viewport
// controller state machine, the favorites and parking overlays, and the
// address search box, all over injected store collaborators.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/helloneige/neige/internal/bus"
	"github.com/helloneige/neige/internal/geocode"
	"github.com/helloneige/neige/internal/planning"
	"github.com/helloneige/neige/internal/snow"
)

var (
	// ErrAuthRequired signals that the action needs a signed-in user. It
	// is a prompt-to-sign-in signal, not a failure.
	ErrAuthRequired = errors.New("authentication required")

	// ErrNoPendingClick is returned when a parking save is confirmed
	// without a map click to anchor it.
	ErrNoPendingClick = errors.New("no parking location selected")
)

const (
	defaultBoundsDebounce = 300 * time.Millisecond
	defaultSettleDelay    = 500 * time.Millisecond
	defaultSearchDebounce = 500 * time.Millisecond
	defaultMessageTTL     = 5 * time.Second
)

// FavoriteStore is the slice of the favorites table a session needs.
type FavoriteStore interface {
	List(ctx context.Context, userID string) ([]int64, error)
	Add(ctx context.Context, userID string, coteRueID int64) error
	Remove(ctx context.Context, userID string, coteRueID int64) error
}

// ParkingStore is the slice of the parking table a session needs.
type ParkingStore interface {
	List(ctx context.Context, userID string) ([]snow.ParkingLocation, error)
	Insert(ctx context.Context, userID string, lat, lng float64, name, notes string) (snow.ParkingLocation, error)
	Delete(ctx context.Context, userID, id string) error
}

// SegmentReader hydrates full segments for an explicit id set.
type SegmentReader interface {
	Segments(ctx context.Context, ids []int64) ([]snow.StreetSegment, error)
}

// Geocoder is the address search collaborator.
type Geocoder interface {
	Suggest(ctx context.Context, query string) []geocode.Suggestion
	Search(ctx context.Context, query string) *geocode.Suggestion
}

// Config wires a session's collaborators. Zero durations take the
// production defaults; tests shrink them.
type Config struct {
	Fetcher   planning.Fetcher
	Favorites FavoriteStore
	Parking   ParkingStore
	Segments  SegmentReader
	Geocoder  Geocoder
	Bus       *bus.Bus
	Logger    zerolog.Logger

	BoundsDebounce time.Duration
	SettleDelay    time.Duration
	SearchDebounce time.Duration
	MessageTTL     time.Duration
}

// Center is the requested map camera position. Zoom 0 means keep the
// current zoom level.
type Center struct {
	Lat  float64
	Lng  float64
	Zoom int
}

// ClickPoint is a raw map click awaiting confirmation as a parking spot.
type ClickPoint struct {
	Lat float64
	Lng float64
}

// Session holds one user's map state. All mutation goes through its
// methods; the mutex exists because debounce timers fire on their own
// goroutines.
type Session struct {
	cfg    Config
	logger zerolog.Logger

	mu sync.Mutex

	userID string
	sub    *bus.Subscription

	favorites map[int64]bool
	favOrder  []int64
	parking   []snow.ParkingLocation
	mode      snow.FilterMode

	displayed []snow.StreetSegment

	lastKey       string
	boundsTimer   *time.Timer
	pendingBounds snow.Bounds
	fetchGen      uint64

	parkingMode  bool
	pendingClick *ClickPoint
	message      string
	messageTimer *time.Timer

	searchTimer *time.Timer
	suggestions []geocode.Suggestion

	center          *Center
	zoomCounter     int
	initialCentered bool
}

// New creates an idle, signed-out session.
func New(cfg Config) *Session {
	if cfg.BoundsDebounce == 0 {
		cfg.BoundsDebounce = defaultBoundsDebounce
	}
	if cfg.SettleDelay == 0 {
		cfg.SettleDelay = defaultSettleDelay
	}
	if cfg.SearchDebounce == 0 {
		cfg.SearchDebounce = defaultSearchDebounce
	}
	if cfg.MessageTTL == 0 {
		cfg.MessageTTL = defaultMessageTTL
	}
	return &Session{
		cfg:       cfg,
		logger:    cfg.Logger.With().Str("component", "session").Logger(),
		favorites: make(map[int64]bool),
		mode:      snow.FilterAll,
	}
}

// SignIn scopes the session to a user: overlays are loaded from the
// store and a fresh notification subscription is opened. Signing in over
// an existing user signs that user out first.
func (s *Session) SignIn(ctx context.Context, userID string) {
	s.SignOut()

	s.mu.Lock()
	s.userID = userID
	if s.cfg.Bus != nil {
		s.sub = s.cfg.Bus.Subscribe(userID)
	}
	s.mu.Unlock()

	s.loadFavorites(ctx)
	s.loadParking(ctx)
}

// SignOut clears every user-scoped overlay and tears down the
// notification subscription so no events for a stale user arrive.
func (s *Session) SignOut() {
	s.mu.Lock()
	sub := s.sub
	s.sub = nil
	s.userID = ""
	s.favorites = make(map[int64]bool)
	s.favOrder = nil
	s.parking = nil
	s.parkingMode = false
	s.pendingClick = nil
	s.mu.Unlock()

	if sub != nil {
		sub.Close()
	}
}

// UserID returns the signed-in user, empty when signed out.
func (s *Session) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// Notifications returns the live event feed for the signed-in user, nil
// when signed out.
func (s *Session) Notifications() <-chan snow.NotificationEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sub == nil {
		return nil
	}
	return s.sub.C
}

// Close releases timers and the notification subscription.
func (s *Session) Close() {
	s.SignOut()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.boundsTimer != nil {
		s.boundsTimer.Stop()
	}
	if s.searchTimer != nil {
		s.searchTimer.Stop()
	}
	if s.messageTimer != nil {
		s.messageTimer.Stop()
	}
}

// SetFilterMode switches between showing everything and favorites only.
func (s *Session) SetFilterMode(mode snow.FilterMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = mode
}

// Items assembles the current display list: viewport segments merged
// with hydrated favorites, then filtered by the active mode.
func (s *Session) Items(ctx context.Context) []snow.DisplayItem {
	favSegs := s.HydrateFavorites(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	viewport := make([]snow.StreetSegment, len(s.displayed))
	copy(viewport, s.displayed)
	for i := range viewport {
		viewport[i].IsFavorite = s.favorites[viewport[i].CoteRueID]
	}

	merged := snow.Merge(viewport, favSegs)
	parking := make([]snow.ParkingLocation, len(s.parking))
	copy(parking, s.parking)
	return snow.Filter(merged, s.mode, s.favorites, parking)
}

// Displayed returns a copy of the currently held viewport segments.
func (s *Session) Displayed() []snow.StreetSegment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]snow.StreetSegment, len(s.displayed))
	copy(out, s.displayed)
	return out
}
