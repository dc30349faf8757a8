package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/valorats/slack-premier-bot/internal/domain"
	"github.com/valorats/slack-premier-bot/internal/domain/contract"
	"github.com/valorats/slack-premier-bot/internal/domain/entity"
	"golang.org/x/time/rate"
)

type scheduleService struct {
	dm      contract.DataManager
	loc     *time.Location
	limiter *rate.Limiter
	now     func() time.Time
	log     zerolog.Logger

	// Serializes batch operations: the rate limiter puts waits between
	// reads and writes, so two overlapping generations could otherwise
	// interleave.
	mu sync.Mutex
}

func newSchedule(dm contract.DataManager, loc *time.Location, log zerolog.Logger) *scheduleService {
	return &scheduleService{
		dm:  dm,
		loc: loc,
		// The calendar service allows 5 creations per minute.
		limiter: rate.NewLimiter(rate.Every(time.Minute/domain.EventCreateRatePerMinute), 1),
		now:     time.Now,
		log:     log.With().Str("service", "schedule").Logger(),
	}
}

// Generate creates the season calendar: for each week w and map i, matches
// on Thursday, Saturday (+2d, one hour later) and Sunday (+3d). The last
// slot of the last map is the playoffs. Slots already in the past are
// skipped and reported, never failed.
func (s *scheduleService) Generate(ctx context.Context, mapOrder []string, startDate time.Time, channelID string) (contract.GenerateResult, error) {
	var res contract.GenerateResult

	local := startDate.In(s.loc)
	if local.Weekday() != domain.ReferenceWeekday {
		return res, domain.ErrNotThursday
	}

	for _, name := range mapOrder {
		m, err := s.dm.Map().GetByName(normalizeMapName(name))
		if err != nil {
			return res, fmt.Errorf("failed to look up map: %w", err)
		}
		if m == nil || !m.InPool {
			return res, fmt.Errorf("%q: %w", name, domain.ErrMapNotInPool)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	for i, name := range mapOrder {
		week := 7 * i
		slots := []time.Time{
			s.slotTime(local, week, domain.MatchHour),
			s.slotTime(local, week+2, domain.SaturdayMatchHour),
			s.slotTime(local, week+3, domain.MatchHour),
		}

		for j, startsAt := range slots {
			if now.After(startsAt) {
				res.Skipped++
				continue
			}

			kind := domain.EventKindMatch
			mapName := normalizeMapName(name)
			if i == len(mapOrder)-1 && j == len(slots)-1 {
				kind = domain.EventKindPlayoffs
				mapName = domain.PlayoffsLabel
			}

			if err := s.limiter.Wait(ctx); err != nil {
				return res, fmt.Errorf("rate limiter interrupted: %w", err)
			}

			event := &entity.Event{
				Kind:      kind,
				MapName:   mapName,
				ChannelID: channelID,
				StartsAt:  startsAt,
				EndsAt:    startsAt.Add(domain.EventDuration),
				Status:    domain.EventStatusScheduled,
			}
			if err := s.dm.Event().Create(event); err != nil {
				return res, err
			}
			res.Created++
		}
	}

	s.log.Info().
		Int("created", res.Created).
		Int("skipped", res.Skipped).
		Str("channel", channelID).
		Msg("season schedule generated")

	return res, nil
}

// GeneratePractices derives two practice entries from every scheduled
// Thursday match: the day before and the day after, skipping past slots.
func (s *scheduleService) GeneratePractices(ctx context.Context, channelID string) (contract.GenerateResult, error) {
	var res contract.GenerateResult

	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.dm.Event().ListByChannel(channelID)
	if err != nil {
		return res, err
	}

	hasMatches := false
	for _, e := range events {
		if e.Kind == domain.EventKindMatch {
			hasMatches = true
			break
		}
	}
	if !hasMatches {
		return res, domain.ErrNoMatches
	}

	now := s.now()

	for _, e := range events {
		if e.Kind != domain.EventKindMatch || e.Status != domain.EventStatusScheduled {
			continue
		}
		local := e.StartsAt.In(s.loc)
		if local.Weekday() != domain.ReferenceWeekday {
			continue
		}

		slots := []time.Time{
			s.slotTime(local, -1, domain.PracticeBeforeHour),
			s.slotTime(local, 1, domain.PracticeAfterHour),
		}

		for _, startsAt := range slots {
			if now.After(startsAt) {
				res.Skipped++
				continue
			}

			if err := s.limiter.Wait(ctx); err != nil {
				return res, fmt.Errorf("rate limiter interrupted: %w", err)
			}

			practice := &entity.Event{
				Kind:      domain.EventKindPractice,
				MapName:   e.MapName,
				ChannelID: channelID,
				StartsAt:  startsAt,
				EndsAt:    startsAt.Add(domain.EventDuration),
				Status:    domain.EventStatusScheduled,
			}
			if err := s.dm.Event().Create(practice); err != nil {
				return res, err
			}
			res.Created++
		}
	}

	s.log.Info().
		Int("created", res.Created).
		Int("skipped", res.Skipped).
		Str("channel", channelID).
		Msg("practice schedule generated")

	return res, nil
}

// CancelMatches resolves match (and playoffs) entries for a map name or the
// playoffs label: closest first, all of them when all is set.
func (s *scheduleService) CancelMatches(ctx context.Context, mapName string, all bool, channelID string) (int, error) {
	name := normalizeMapName(mapName)

	if name != domain.PlayoffsLabel {
		m, err := s.dm.Map().GetByName(name)
		if err != nil {
			return 0, fmt.Errorf("failed to look up map: %w", err)
		}
		if m == nil || !m.InPool {
			return 0, fmt.Errorf("%q: %w", mapName, domain.ErrMapNotInPool)
		}
	}

	return s.cancel(ctx, channelID, all, func(e *entity.Event) bool {
		if e.Kind == domain.EventKindPractice {
			return false
		}
		return e.MapName == name
	})
}

// CancelPractices is the practice-only counterpart of CancelMatches.
func (s *scheduleService) CancelPractices(ctx context.Context, mapName string, all bool, channelID string) (int, error) {
	name := normalizeMapName(mapName)

	m, err := s.dm.Map().GetByName(name)
	if err != nil {
		return 0, fmt.Errorf("failed to look up map: %w", err)
	}
	if m == nil || !m.InPool {
		return 0, fmt.Errorf("%q: %w", mapName, domain.ErrMapNotInPool)
	}

	return s.cancel(ctx, channelID, all, func(e *entity.Event) bool {
		return e.Kind == domain.EventKindPractice && e.MapName == name
	})
}

// ClearAll resolves every season entry on the channel's calendar.
func (s *scheduleService) ClearAll(ctx context.Context, channelID string) (int, error) {
	count, err := s.cancel(ctx, channelID, true, func(e *entity.Event) bool { return true })
	if errors.Is(err, domain.ErrNoEventsFound) {
		return 0, nil
	}
	return count, err
}

// cancel applies the per-entry tri-state resolution in closest-first order:
// scheduled entries are cancelled, active ones ended, anything else (stale
// leftovers) hard-deleted.
func (s *scheduleService) cancel(ctx context.Context, channelID string, all bool, match func(*entity.Event) bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.dm.Event().ListByChannel(channelID)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, e := range events {
		if !match(e) {
			continue
		}
		if e.Status == domain.EventStatusCancelled {
			continue
		}

		switch e.Status {
		case domain.EventStatusScheduled:
			err = s.dm.Event().UpdateStatus(e.ID, domain.EventStatusCancelled)
		case domain.EventStatusActive:
			err = s.dm.Event().UpdateStatus(e.ID, domain.EventStatusEnded)
		default:
			err = s.dm.Event().Delete(e.ID)
		}
		if err != nil {
			return count, err
		}

		count++
		if !all {
			break
		}
	}

	if count == 0 {
		return 0, domain.ErrNoEventsFound
	}

	s.log.Info().Int("resolved", count).Str("channel", channelID).Msg("events cancelled")
	return count, nil
}

func (s *scheduleService) Upcoming(ctx context.Context, channelID string) ([]*entity.Event, error) {
	events, err := s.dm.Event().ListByChannel(channelID)
	if err != nil {
		return nil, err
	}

	var upcoming []*entity.Event
	for _, e := range events {
		if e.Status == domain.EventStatusScheduled || e.Status == domain.EventStatusActive {
			upcoming = append(upcoming, e)
		}
	}
	return upcoming, nil
}

// RSVP subscribes a user to the closest upcoming entry for a map (or the
// playoffs).
func (s *scheduleService) RSVP(ctx context.Context, mapName, userID, channelID string) (*entity.Event, error) {
	name := normalizeMapName(mapName)

	events, err := s.dm.Event().ListByChannel(channelID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	for _, e := range events {
		if e.MapName != name || e.Status != domain.EventStatusScheduled {
			continue
		}
		if now.After(e.StartsAt) {
			continue
		}
		if err := s.dm.Event().AddRSVP(e.ID, userID); err != nil {
			return nil, err
		}
		return e, nil
	}

	return nil, domain.ErrNoEventsFound
}

// slotTime builds a slot start at the given hour, days away from base, in
// the bot timezone. Day arithmetic in local time keeps slots on their wall
// clock hour across DST changes.
func (s *scheduleService) slotTime(base time.Time, addDays, hour int) time.Time {
	return time.Date(base.Year(), base.Month(), base.Day()+addDays, hour, 0, 0, 0, s.loc)
}
