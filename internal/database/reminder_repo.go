package database

import (
	"fmt"

	"github.com/valorats/slack-premier-bot/internal/domain/contract"
	"github.com/valorats/slack-premier-bot/internal/domain/entity"
)

type reminderRepository struct {
	db dbConn
}

func newReminderRepo(db dbConn) contract.ReminderRepo {
	return &reminderRepository{db: db}
}

func (r *reminderRepository) Create(reminder *entity.Reminder) error {
	query := `
		INSERT INTO reminders (fire_at, channel_id, message)
		VALUES (?, ?, ?)
	`

	result, err := r.db.Exec(query,
		reminder.FireAt.UTC(),
		reminder.ChannelID,
		reminder.Message,
	)
	if err != nil {
		return fmt.Errorf("failed to create reminder: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	reminder.ID = id
	return nil
}

func (r *reminderRepository) ListPending() ([]*entity.Reminder, error) {
	query := `
		SELECT id, fire_at, channel_id, message, created_at
		FROM reminders
		ORDER BY fire_at ASC, id ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	defer rows.Close()

	var reminders []*entity.Reminder
	for rows.Next() {
		reminder := &entity.Reminder{}
		err := rows.Scan(
			&reminder.ID,
			&reminder.FireAt,
			&reminder.ChannelID,
			&reminder.Message,
			&reminder.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, reminder)
	}

	return reminders, rows.Err()
}

func (r *reminderRepository) Delete(id int64) error {
	query := `DELETE FROM reminders WHERE id = ?`

	_, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}

	return nil
}
