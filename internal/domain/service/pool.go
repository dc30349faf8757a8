package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/valorats/slack-premier-bot/internal/domain"
	"github.com/valorats/slack-premier-bot/internal/domain/contract"
	"github.com/valorats/slack-premier-bot/internal/domain/entity"
)

type poolService struct {
	dm  contract.DataManager
	log zerolog.Logger
}

func newPool(dm contract.DataManager, log zerolog.Logger) *poolService {
	return &poolService{
		dm:  dm,
		log: log.With().Str("service", "pool").Logger(),
	}
}

// AddMap registers a new map. It starts with weight 0 and outside the pool;
// pool membership is a separate, explicit edit.
func (s *poolService) AddMap(ctx context.Context, name, imageURL string) (*entity.Map, error) {
	name = normalizeMapName(name)

	existing, err := s.dm.Map().GetByName(name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up map: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrMapExists
	}

	m := &entity.Map{
		Name:     name,
		InPool:   false,
		Weight:   0,
		ImageURL: imageURL,
	}
	if err := s.dm.Map().Create(m); err != nil {
		return nil, err
	}

	s.log.Info().Str("map", name).Msg("map added")
	return m, nil
}

// RemoveMap deletes a map and everything hanging off it: votes, notes and
// pool membership go with the row (single transaction, FK cascade).
func (s *poolService) RemoveMap(ctx context.Context, name string) error {
	name = normalizeMapName(name)

	m, err := s.dm.Map().GetByName(name)
	if err != nil {
		return fmt.Errorf("failed to look up map: %w", err)
	}
	if m == nil {
		return domain.ErrMapNotFound
	}

	err = s.dm.WithTransaction(ctx, func(dm contract.DataManager) error {
		return dm.Map().Delete(m.ID)
	})
	if err != nil {
		return err
	}

	s.log.Info().Str("map", name).Msg("map removed with its votes and notes")
	return nil
}

// SetPool replaces pool membership wholesale. An empty list clears the pool
// without deleting any map. Unknown names are rejected before any write.
func (s *poolService) SetPool(ctx context.Context, names []string) error {
	ids := make([]int64, 0, len(names))
	for _, name := range names {
		m, err := s.dm.Map().GetByName(normalizeMapName(name))
		if err != nil {
			return fmt.Errorf("failed to look up map: %w", err)
		}
		if m == nil {
			return fmt.Errorf("%q: %w", name, domain.ErrMapNotFound)
		}
		ids = append(ids, m.ID)
	}

	return s.dm.WithTransaction(ctx, func(dm contract.DataManager) error {
		if err := dm.Map().ClearPool(); err != nil {
			return err
		}
		for _, id := range ids {
			if err := dm.Map().SetInPool(id, true); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *poolService) Pool(ctx context.Context) ([]*entity.Map, error) {
	return s.dm.Map().ListPool()
}

func (s *poolService) AllMaps(ctx context.Context) ([]*entity.Map, error) {
	return s.dm.Map().ListAll()
}
