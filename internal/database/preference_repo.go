package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/valorats/slack-premier-bot/internal/domain/contract"
	"github.com/valorats/slack-premier-bot/internal/domain/entity"
)

type preferenceRepository struct {
	db dbConn
}

func newPreferenceRepo(db dbConn) contract.PreferenceRepo {
	return &preferenceRepository{db: db}
}

func (r *preferenceRepository) Get(mapID int64, userID string) (*entity.Preference, error) {
	pref := &entity.Preference{}
	query := `
		SELECT id, map_id, user_id, value
		FROM preferences
		WHERE map_id = ? AND user_id = ?
	`

	err := r.db.QueryRow(query, mapID, userID).Scan(
		&pref.ID,
		&pref.MapID,
		&pref.UserID,
		&pref.Value,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preference: %w", err)
	}

	return pref, nil
}

func (r *preferenceRepository) Upsert(pref *entity.Preference) error {
	query := `
		INSERT INTO preferences (map_id, user_id, value)
		VALUES (?, ?, ?)
		ON CONFLICT (map_id, user_id) DO UPDATE SET value = excluded.value
	`

	result, err := r.db.Exec(query, pref.MapID, pref.UserID, pref.Value)
	if err != nil {
		return fmt.Errorf("failed to upsert preference: %w", err)
	}

	if pref.ID == 0 {
		if id, err := result.LastInsertId(); err == nil {
			pref.ID = id
		}
	}

	return nil
}

func (r *preferenceRepository) ListByMap(mapID int64) ([]*entity.Preference, error) {
	query := `
		SELECT id, map_id, user_id, value
		FROM preferences
		WHERE map_id = ?
		ORDER BY user_id ASC
	`

	rows, err := r.db.Query(query, mapID)
	if err != nil {
		return nil, fmt.Errorf("failed to list preferences: %w", err)
	}
	defer rows.Close()

	var prefs []*entity.Preference
	for rows.Next() {
		pref := &entity.Preference{}
		err := rows.Scan(
			&pref.ID,
			&pref.MapID,
			&pref.UserID,
			&pref.Value,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan preference: %w", err)
		}
		prefs = append(prefs, pref)
	}

	return prefs, rows.Err()
}

// DeleteUsersNotIn removes preferences of users outside the given roster.
// Callers must guard against an empty roster; this would delete everything.
func (r *preferenceRepository) DeleteUsersNotIn(userIDs []string) error {
	if len(userIDs) == 0 {
		return fmt.Errorf("refusing to purge preferences with an empty roster")
	}

	placeholders := strings.Repeat("?,", len(userIDs))
	placeholders = placeholders[:len(placeholders)-1]

	query := `DELETE FROM preferences WHERE user_id NOT IN (` + placeholders + `)`

	args := make([]interface{}, len(userIDs))
	for i, id := range userIDs {
		args[i] = id
	}

	_, err := r.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to purge preferences: %w", err)
	}

	return nil
}
