package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"
	"github.com/valorats/slack-premier-bot/internal/domain"
	"github.com/valorats/slack-premier-bot/internal/domain/contract"
	"github.com/valorats/slack-premier-bot/internal/domain/entity"
)

// noteService manages references to practice note messages. Only the
// reference (channel, timestamp) is stored, never the note text.
type noteService struct {
	dm    contract.DataManager
	slack contract.SlackClient
	log   zerolog.Logger
}

func newNotes(dm contract.DataManager, slackClient contract.SlackClient, log zerolog.Logger) *noteService {
	return &noteService{
		dm:    dm,
		slack: slackClient,
		log:   log.With().Str("service", "notes").Logger(),
	}
}

func (s *noteService) AddNote(ctx context.Context, mapName, channelID, messageTS, description string) (*entity.MapNote, error) {
	m, err := s.dm.Map().GetByName(normalizeMapName(mapName))
	if err != nil {
		return nil, fmt.Errorf("failed to look up map: %w", err)
	}
	if m == nil {
		return nil, domain.ErrMapNotFound
	}

	if exists, err := s.messageExists(channelID, messageTS); err != nil {
		return nil, err
	} else if !exists {
		return nil, domain.ErrNoteStale
	}

	note := &entity.MapNote{
		MapID:       m.ID,
		ChannelID:   channelID,
		MessageTS:   messageTS,
		Description: description,
	}
	if err := s.dm.Note().Create(note); err != nil {
		return nil, err
	}

	s.log.Info().Str("map", m.Name).Int64("note", note.ID).Msg("note added")
	return note, nil
}

// RemoveNote deletes a map's n-th note (1-indexed, listing order).
func (s *noteService) RemoveNote(ctx context.Context, mapName string, noteNumber int) error {
	m, err := s.dm.Map().GetByName(normalizeMapName(mapName))
	if err != nil {
		return fmt.Errorf("failed to look up map: %w", err)
	}
	if m == nil {
		return domain.ErrMapNotFound
	}

	notes, err := s.dm.Note().ListByMap(m.ID)
	if err != nil {
		return err
	}
	if noteNumber < 1 || noteNumber > len(notes) {
		return domain.ErrNoteNotFound
	}

	return s.dm.Note().Delete(notes[noteNumber-1].ID)
}

// Notes lists a map's notes. References whose message has been deleted are
// pruned from the store instead of being returned.
func (s *noteService) Notes(ctx context.Context, mapName string) ([]*entity.MapNote, error) {
	m, err := s.dm.Map().GetByName(normalizeMapName(mapName))
	if err != nil {
		return nil, fmt.Errorf("failed to look up map: %w", err)
	}
	if m == nil {
		return nil, domain.ErrMapNotFound
	}

	notes, err := s.dm.Note().ListByMap(m.ID)
	if err != nil {
		return nil, err
	}

	alive := notes[:0]
	for _, note := range notes {
		exists, err := s.messageExists(note.ChannelID, note.MessageTS)
		if err != nil {
			return nil, err
		}
		if !exists {
			if err := s.dm.Note().Delete(note.ID); err != nil {
				return nil, err
			}
			s.log.Warn().Int64("note", note.ID).Str("map", m.Name).Msg("pruned stale note reference")
			continue
		}
		alive = append(alive, note)
	}

	return alive, nil
}

func (s *noteService) messageExists(channelID, messageTS string) (bool, error) {
	resp, err := s.slack.GetConversationHistory(&slack.GetConversationHistoryParameters{
		ChannelID: channelID,
		Latest:    messageTS,
		Oldest:    messageTS,
		Inclusive: true,
		Limit:     1,
	})
	if err != nil {
		return false, fmt.Errorf("failed to check note message: %w", err)
	}
	return len(resp.Messages) > 0, nil
}
