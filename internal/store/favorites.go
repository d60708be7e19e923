package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrAlreadyExists is returned when a favorite is inserted twice for the
// same user and street.
var ErrAlreadyExists = errors.New("favorite already exists")

// FavoriteStore persists which streets each user follows.
type FavoriteStore struct {
	db *sql.DB
}

// NewFavoriteStore creates a favorite store.
func NewFavoriteStore(db *sql.DB) *FavoriteStore {
	return &FavoriteStore{db: db}
}

// List returns the street IDs the user has favorited, oldest first.
func (s *FavoriteStore) List(ctx context.Context, userID string) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT cote_rue_id FROM user_favorites WHERE user_id = ? ORDER BY created_at, cote_rue_id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Add records a favorite. Inserting a pair that already exists returns
// ErrAlreadyExists so the caller can treat it as an idempotent success.
func (s *FavoriteStore) Add(ctx context.Context, userID string, coteRueID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_favorites (user_id, cote_rue_id) VALUES (?, ?)`,
		userID, coteRueID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

// Remove deletes a favorite. Removing a pair that does not exist is a
// no-op.
func (s *FavoriteStore) Remove(ctx context.Context, userID string, coteRueID int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM user_favorites WHERE user_id = ? AND cote_rue_id = ?`,
		userID, coteRueID)
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}

// Users returns every user following the given street. The ingestor uses
// this to fan out state-change notifications.
func (s *FavoriteStore) Users(ctx context.Context, coteRueID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id FROM user_favorites WHERE cote_rue_id = ?`, coteRueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users for street %d: %w", coteRueID, err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func isDuplicateKey(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "primary key") ||
		strings.Contains(msg, "unique constraint")
}
