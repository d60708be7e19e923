package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/helloneige/neige/internal/snow"
)

// NotificationStore persists state-change notifications for favorited
// streets.
type NotificationStore struct {
	db *sql.DB
}

// NewNotificationStore creates a notification store.
func NewNotificationStore(db *sql.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

// Insert records a state transition for one user, assigning the event
// its ID and timestamp.
func (s *NotificationStore) Insert(ctx context.Context, userID string, coteRueID int64, oldEtat *int, newEtat int) (snow.NotificationEvent, error) {
	evt := snow.NotificationEvent{
		ID:        uuid.NewString(),
		UserID:    userID,
		CoteRueID: coteRueID,
		OldEtat:   oldEtat,
		NewEtat:   newEtat,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, cote_rue_id, old_etat, new_etat, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		evt.ID, evt.UserID, evt.CoteRueID, evt.OldEtat, evt.NewEtat, evt.CreatedAt)
	if err != nil {
		return snow.NotificationEvent{}, fmt.Errorf("failed to insert notification: %w", err)
	}
	return evt, nil
}

// ListForUser returns the user's notifications, newest first, capped at
// limit (0 means no cap).
func (s *NotificationStore) ListForUser(ctx context.Context, userID string, limit int) ([]snow.NotificationEvent, error) {
	q := `SELECT id, user_id, cote_rue_id, old_etat, new_etat, created_at
	      FROM notifications WHERE user_id = ? ORDER BY created_at DESC`
	args := []interface{}{userID}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var out []snow.NotificationEvent
	for rows.Next() {
		var evt snow.NotificationEvent
		var old sql.NullInt64
		if err := rows.Scan(&evt.ID, &evt.UserID, &evt.CoteRueID, &old, &evt.NewEtat, &evt.CreatedAt); err != nil {
			return nil, err
		}
		if old.Valid {
			v := int(old.Int64)
			evt.OldEtat = &v
		}
		out = append(out, evt)
	}
	return out, rows.Err()
}
