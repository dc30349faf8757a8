package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/valorats/slack-premier-bot/internal/domain"
	"github.com/valorats/slack-premier-bot/internal/domain/contract"
	"github.com/valorats/slack-premier-bot/internal/domain/entity"
)

type preferenceService struct {
	dm  contract.DataManager
	log zerolog.Logger
}

func newPreference(dm contract.DataManager, log zerolog.Logger) *preferenceService {
	return &preferenceService{
		dm:  dm,
		log: log.With().Str("service", "preference").Logger(),
	}
}

// SetPreference records a user's vote on a map and keeps the map's weight
// equal to the sum of its votes. Re-casting the same vote is a no-op so a
// vote can never double-count.
func (s *preferenceService) SetPreference(ctx context.Context, mapName, userID string, value int) error {
	if value < domain.VoteDislike || value > domain.VoteLike {
		return domain.ErrInvalidVote
	}

	m, err := s.dm.Map().GetByName(normalizeMapName(mapName))
	if err != nil {
		return fmt.Errorf("failed to look up map: %w", err)
	}
	if m == nil {
		return domain.ErrMapNotFound
	}

	return s.dm.WithTransaction(ctx, func(dm contract.DataManager) error {
		existing, err := dm.Preference().Get(m.ID, userID)
		if err != nil {
			return fmt.Errorf("failed to get existing preference: %w", err)
		}

		oldValue := 0
		if existing != nil {
			if existing.Value == value {
				return nil
			}
			oldValue = existing.Value
		}

		pref := &entity.Preference{
			MapID:  m.ID,
			UserID: userID,
			Value:  value,
		}
		if err := dm.Preference().Upsert(pref); err != nil {
			return err
		}

		return dm.Map().AddWeight(m.ID, value-oldValue)
	})
}

func (s *preferenceService) WeightsDescending(ctx context.Context) ([]*entity.Map, error) {
	maps, err := s.dm.Map().ListByWeightDesc()
	if err != nil {
		return nil, fmt.Errorf("failed to list weights: %w", err)
	}
	return maps, nil
}

func (s *preferenceService) Votes(ctx context.Context, mapName string) ([]*entity.Preference, error) {
	m, err := s.dm.Map().GetByName(normalizeMapName(mapName))
	if err != nil {
		return nil, fmt.Errorf("failed to look up map: %w", err)
	}
	if m == nil {
		return nil, domain.ErrMapNotFound
	}

	return s.dm.Preference().ListByMap(m.ID)
}

// PurgeNonRoster drops votes of users who left the roster and rebuilds the
// weights. An empty roster is refused: a failed roster lookup upstream must
// never wipe every vote.
func (s *preferenceService) PurgeNonRoster(ctx context.Context, userIDs []string) error {
	if len(userIDs) == 0 {
		s.log.Warn().Msg("skipping preference purge: empty roster")
		return nil
	}

	return s.dm.WithTransaction(ctx, func(dm contract.DataManager) error {
		if err := dm.Preference().DeleteUsersNotIn(userIDs); err != nil {
			return err
		}
		return dm.Map().RecomputeWeights()
	})
}

func normalizeMapName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
