package database

import (
	"database/sql"
	"fmt"

	"github.com/valorats/slack-premier-bot/internal/domain"
	"github.com/valorats/slack-premier-bot/internal/domain/contract"
	"github.com/valorats/slack-premier-bot/internal/domain/entity"
)

type eventRepository struct {
	db dbConn
}

func newEventRepo(db dbConn) contract.EventRepo {
	return &eventRepository{db: db}
}

const eventColumns = `id, kind, map_name, channel_id, starts_at, ends_at, status, created_at`

func (r *eventRepository) Create(event *entity.Event) error {
	query := `
		INSERT INTO events (kind, map_name, channel_id, starts_at, ends_at, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	if event.Status == "" {
		event.Status = domain.EventStatusScheduled
	}

	result, err := r.db.Exec(query,
		event.Kind,
		event.MapName,
		event.ChannelID,
		event.StartsAt.UTC(),
		event.EndsAt.UTC(),
		event.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	event.ID = id
	return nil
}

func (r *eventRepository) GetByID(id int64) (*entity.Event, error) {
	event := &entity.Event{}
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE id = ?
	`

	err := r.db.QueryRow(query, id).Scan(
		&event.ID,
		&event.Kind,
		&event.MapName,
		&event.ChannelID,
		&event.StartsAt,
		&event.EndsAt,
		&event.Status,
		&event.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return event, nil
}

func (r *eventRepository) ListByChannel(channelID string) ([]*entity.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE channel_id = ?
		ORDER BY starts_at ASC, id ASC
	`
	return r.list(query, channelID)
}

func (r *eventRepository) ListPending(channelID string) ([]*entity.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE channel_id = ? AND status IN (?, ?)
		ORDER BY starts_at DESC, id DESC
	`
	return r.list(query, channelID, domain.EventStatusScheduled, domain.EventStatusActive)
}

func (r *eventRepository) list(query string, args ...interface{}) ([]*entity.Event, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*entity.Event
	for rows.Next() {
		event := &entity.Event{}
		err := rows.Scan(
			&event.ID,
			&event.Kind,
			&event.MapName,
			&event.ChannelID,
			&event.StartsAt,
			&event.EndsAt,
			&event.Status,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

func (r *eventRepository) UpdateStatus(id int64, status string) error {
	query := `UPDATE events SET status = ? WHERE id = ?`

	_, err := r.db.Exec(query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update event status: %w", err)
	}

	return nil
}

func (r *eventRepository) Delete(id int64) error {
	query := `DELETE FROM events WHERE id = ?`

	_, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	return nil
}

func (r *eventRepository) AddRSVP(eventID int64, userID string) error {
	query := `
		INSERT INTO event_rsvps (event_id, user_id)
		VALUES (?, ?)
		ON CONFLICT (event_id, user_id) DO NOTHING
	`

	_, err := r.db.Exec(query, eventID, userID)
	if err != nil {
		return fmt.Errorf("failed to add rsvp: %w", err)
	}

	return nil
}

func (r *eventRepository) RemoveRSVP(eventID int64, userID string) error {
	query := `DELETE FROM event_rsvps WHERE event_id = ? AND user_id = ?`

	_, err := r.db.Exec(query, eventID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove rsvp: %w", err)
	}

	return nil
}

func (r *eventRepository) ListRSVPs(eventID int64) ([]string, error) {
	query := `
		SELECT user_id
		FROM event_rsvps
		WHERE event_id = ?
		ORDER BY id ASC
	`

	rows, err := r.db.Query(query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rsvps: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan rsvp: %w", err)
		}
		users = append(users, userID)
	}

	return users, rows.Err()
}
