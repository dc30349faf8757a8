package database

import (
	"database/sql"
	"fmt"

	"github.com/valorats/slack-premier-bot/internal/domain/contract"
	"github.com/valorats/slack-premier-bot/internal/domain/entity"
)

type noteRepository struct {
	db dbConn
}

func newNoteRepo(db dbConn) contract.NoteRepo {
	return &noteRepository{db: db}
}

func (r *noteRepository) Create(note *entity.MapNote) error {
	query := `
		INSERT INTO map_notes (map_id, channel_id, message_ts, description)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.Exec(query,
		note.MapID,
		note.ChannelID,
		note.MessageTS,
		note.Description,
	)
	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	note.ID = id
	return nil
}

func (r *noteRepository) GetByID(id int64) (*entity.MapNote, error) {
	note := &entity.MapNote{}
	query := `
		SELECT id, map_id, channel_id, message_ts, description, created_at
		FROM map_notes
		WHERE id = ?
	`

	err := r.db.QueryRow(query, id).Scan(
		&note.ID,
		&note.MapID,
		&note.ChannelID,
		&note.MessageTS,
		&note.Description,
		&note.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	return note, nil
}

func (r *noteRepository) ListByMap(mapID int64) ([]*entity.MapNote, error) {
	query := `
		SELECT id, map_id, channel_id, message_ts, description, created_at
		FROM map_notes
		WHERE map_id = ?
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.Query(query, mapID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	var notes []*entity.MapNote
	for rows.Next() {
		note := &entity.MapNote{}
		err := rows.Scan(
			&note.ID,
			&note.MapID,
			&note.ChannelID,
			&note.MessageTS,
			&note.Description,
			&note.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, note)
	}

	return notes, rows.Err()
}

func (r *noteRepository) Delete(id int64) error {
	query := `DELETE FROM map_notes WHERE id = ?`

	_, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	return nil
}
