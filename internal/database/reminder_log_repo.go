package database

import (
	"fmt"
	"time"

	"github.com/valorats/slack-premier-bot/internal/domain/contract"
)

type reminderLogRepository struct {
	db dbConn
}

func newReminderLogRepo(db dbConn) contract.ReminderLogRepo {
	return &reminderLogRepository{db: db}
}

// Exists reports whether a reminder of this kind for this event occurrence
// was already sent, possibly by a previous process instance.
func (r *reminderLogRepository) Exists(eventID int64, kind string, startsAt time.Time) (bool, error) {
	query := `
		SELECT COUNT(1)
		FROM reminder_log
		WHERE event_id = ? AND kind = ? AND starts_at = ?
	`

	var count int
	err := r.db.QueryRow(query, eventID, kind, startsAt.UTC()).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check reminder log: %w", err)
	}

	return count > 0, nil
}

func (r *reminderLogRepository) Insert(eventID int64, kind string, startsAt time.Time) error {
	query := `
		INSERT INTO reminder_log (event_id, kind, starts_at, sent_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := r.db.Exec(query, eventID, kind, startsAt.UTC(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to insert reminder log: %w", err)
	}

	return nil
}
