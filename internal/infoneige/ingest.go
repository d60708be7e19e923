package infoneige

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/helloneige/neige/internal/planning"
	"github.com/helloneige/neige/internal/snow"
)

// StreetWriter persists street records and snow state.
type StreetWriter interface {
	UpsertStreet(ctx context.Context, row planning.StreetRow) error
	UpsertSnowState(ctx context.Context, coteRueID int64, state planning.SnowState) (oldEtat *int, changed bool, err error)
}

// FavoriteLister resolves which users follow a street.
type FavoriteLister interface {
	Users(ctx context.Context, coteRueID int64) ([]string, error)
}

// NotificationWriter records state-change notifications.
type NotificationWriter interface {
	Insert(ctx context.Context, userID string, coteRueID int64, oldEtat *int, newEtat int) (snow.NotificationEvent, error)
}

// Publisher fans events out to live subscribers.
type Publisher interface {
	Publish(evt snow.NotificationEvent)
}

// Summary reports what one ingest run did.
type Summary struct {
	Total           int
	StreetsUpserted int
	StreetsSkipped  int
	StatesUpserted  int
	Notifications   int
}

// Ingestor applies planification batches: upserting street geometry from
// the geobase, replacing current snow state, and notifying every user
// following a street whose etat changed.
type Ingestor struct {
	streets       StreetWriter
	favorites     FavoriteLister
	notifications NotificationWriter
	bus           Publisher
	logger        zerolog.Logger
}

// NewIngestor creates an ingestor.
func NewIngestor(streets StreetWriter, favorites FavoriteLister, notifications NotificationWriter, bus Publisher, logger zerolog.Logger) *Ingestor {
	return &Ingestor{
		streets:       streets,
		favorites:     favorites,
		notifications: notifications,
		bus:           bus,
		logger:        logger.With().Str("component", "ingestor").Logger(),
	}
}

// Ingest processes one planification batch. geobase maps cote_rue_id to
// its street record and may be nil when only states are refreshed.
// Per-record failures are logged and skipped; the batch continues.
func (ing *Ingestor) Ingest(ctx context.Context, batch []Planification, geobase map[int64]planning.StreetRow) Summary {
	sum := Summary{Total: len(batch)}
	for _, p := range batch {
		if p.CoteRueID == 0 {
			sum.StreetsSkipped++
			continue
		}
		log := ing.logger.With().Int64("cote_rue_id", p.CoteRueID).Logger()

		if row, ok := geobase[p.CoteRueID]; ok {
			if err := ing.streets.UpsertStreet(ctx, row); err != nil {
				log.Error().Err(err).Msg("street upsert failed")
				sum.StreetsSkipped++
			} else {
				sum.StreetsUpserted++
			}
		} else if geobase != nil {
			sum.StreetsSkipped++
		}

		state := planning.SnowState{
			EtatDeneig:        p.EtatDeneig,
			Status:            snow.LabelFor(p.EtatDeneig),
			DateDebutPlanif:   optStr(p.DateDebutPlanif),
			DateFinPlanif:     optStr(p.DateFinPlanif),
			DateDebutReplanif: optStr(p.DateDebutReplanif),
			DateFinReplanif:   optStr(p.DateFinReplanif),
			DateMaj:           optStr(p.DateMaj),
		}
		oldEtat, changed, err := ing.streets.UpsertSnowState(ctx, p.CoteRueID, state)
		if err != nil {
			log.Error().Err(err).Msg("snow state upsert failed")
			continue
		}
		sum.StatesUpserted++

		if changed {
			sum.Notifications += ing.notify(ctx, p.CoteRueID, oldEtat, p.EtatDeneig)
		}
	}

	ing.logger.Info().
		Int("total", sum.Total).
		Int("streets", sum.StreetsUpserted).
		Int("states", sum.StatesUpserted).
		Int("notifications", sum.Notifications).
		Msg("ingest complete")
	return sum
}

func (ing *Ingestor) notify(ctx context.Context, coteRueID int64, oldEtat *int, newEtat int) int {
	users, err := ing.favorites.Users(ctx, coteRueID)
	if err != nil {
		ing.logger.Error().Err(err).Int64("cote_rue_id", coteRueID).Msg("failed to resolve followers")
		return 0
	}

	sent := 0
	for _, userID := range users {
		evt, err := ing.notifications.Insert(ctx, userID, coteRueID, oldEtat, newEtat)
		if err != nil {
			ing.logger.Error().Err(err).Str("user_id", userID).Msg("failed to record notification")
			continue
		}
		if ing.bus != nil {
			ing.bus.Publish(evt)
		}
		sent++
	}
	return sent
}

func optStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
