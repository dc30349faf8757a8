package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valorats/slack-premier-bot/internal/domain"
	"github.com/valorats/slack-premier-bot/internal/domain/contract"
	"golang.org/x/time/rate"
)

// seasonStart is a Thursday.
var seasonStart = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestSchedule(t *testing.T, dm contract.DataManager, now time.Time) *scheduleService {
	t.Helper()

	svc := newSchedule(dm, time.UTC, zerolog.Nop())
	svc.now = func() time.Time { return now }
	// No throttling in tests
	svc.limiter = rate.NewLimiter(rate.Inf, 0)
	return svc
}

func setupPool(t *testing.T, dm contract.DataManager, names ...string) {
	t.Helper()

	pool := newPool(dm, zerolog.Nop())
	ctx := context.Background()
	for _, name := range names {
		_, err := pool.AddMap(ctx, name, "")
		require.NoError(t, err)
	}
	require.NoError(t, pool.SetPool(ctx, names))
}

func TestGenerate(t *testing.T) {
	dm := setupTest(t)
	setupPool(t, dm, "ascent", "bind")
	svc := newTestSchedule(t, dm, seasonStart.AddDate(0, 0, -30))
	ctx := context.Background()

	res, err := svc.Generate(ctx, []string{"ascent", "bind"}, seasonStart, "C1")
	require.NoError(t, err)
	assert.Equal(t, 6, res.Created, "Expected three slots per map")
	assert.Zero(t, res.Skipped)

	events, err := dm.Event().ListByChannel("C1")
	require.NoError(t, err)
	require.Len(t, events, 6)

	// Week one: Thursday 22:00, Saturday 23:00, Sunday 22:00
	assert.True(t, events[0].StartsAt.Equal(time.Date(2026, 1, 1, 22, 0, 0, 0, time.UTC)))
	assert.True(t, events[1].StartsAt.Equal(time.Date(2026, 1, 3, 23, 0, 0, 0, time.UTC)))
	assert.True(t, events[2].StartsAt.Equal(time.Date(2026, 1, 4, 22, 0, 0, 0, time.UTC)))
	for _, e := range events[:3] {
		assert.Equal(t, "ascent", e.MapName)
		assert.Equal(t, domain.EventKindMatch, e.Kind)
		assert.Equal(t, domain.EventStatusScheduled, e.Status)
		assert.True(t, e.EndsAt.Equal(e.StartsAt.Add(domain.EventDuration)))
	}

	// Week two shifts by seven days
	assert.True(t, events[3].StartsAt.Equal(time.Date(2026, 1, 8, 22, 0, 0, 0, time.UTC)))
	assert.Equal(t, "bind", events[3].MapName)

	// The last slot of the last map is the playoffs
	last := events[5]
	assert.Equal(t, domain.EventKindPlayoffs, last.Kind)
	assert.Equal(t, domain.PlayoffsLabel, last.MapName)
	assert.True(t, last.StartsAt.Equal(time.Date(2026, 1, 11, 22, 0, 0, 0, time.UTC)))
}

func TestGenerate_RejectsNonThursday(t *testing.T) {
	dm := setupTest(t)
	setupPool(t, dm, "ascent")
	svc := newTestSchedule(t, dm, seasonStart.AddDate(0, 0, -30))

	friday := seasonStart.AddDate(0, 0, 1)
	_, err := svc.Generate(context.Background(), []string{"ascent"}, friday, "C1")
	assert.ErrorIs(t, err, domain.ErrNotThursday)
}

func TestGenerate_RejectsMapOutsidePool(t *testing.T) {
	dm := setupTest(t)
	setupPool(t, dm, "ascent")

	pool := newPool(dm, zerolog.Nop())
	_, err := pool.AddMap(context.Background(), "bind", "")
	require.NoError(t, err)

	svc := newTestSchedule(t, dm, seasonStart.AddDate(0, 0, -30))

	_, err = svc.Generate(context.Background(), []string{"ascent", "bind"}, seasonStart, "C1")
	assert.ErrorIs(t, err, domain.ErrMapNotInPool)

	events, err := dm.Event().ListByChannel("C1")
	require.NoError(t, err)
	assert.Empty(t, events, "Expected no events created by the rejected batch")
}

func TestGenerate_SkipsPastSlots(t *testing.T) {
	dm := setupTest(t)
	setupPool(t, dm, "ascent", "bind")

	// Midway through week one: the Thursday and Saturday slots are gone
	now := time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC)
	svc := newTestSchedule(t, dm, now)

	res, err := svc.Generate(context.Background(), []string{"ascent", "bind"}, seasonStart, "C1")
	require.NoError(t, err)
	assert.Equal(t, 4, res.Created)
	assert.Equal(t, 2, res.Skipped)

	events, err := dm.Event().ListByChannel("C1")
	require.NoError(t, err)
	require.Len(t, events, 4)
	assert.True(t, events[0].StartsAt.Equal(time.Date(2026, 1, 4, 22, 0, 0, 0, time.UTC)))
}

func TestGeneratePractices(t *testing.T) {
	dm := setupTest(t)
	setupPool(t, dm, "ascent", "bind")
	svc := newTestSchedule(t, dm, seasonStart.AddDate(0, 0, -30))
	ctx := context.Background()

	t.Run("requires an existing season", func(t *testing.T) {
		_, err := svc.GeneratePractices(ctx, "C1")
		assert.ErrorIs(t, err, domain.ErrNoMatches)
	})

	_, err := svc.Generate(ctx, []string{"ascent", "bind"}, seasonStart, "C1")
	require.NoError(t, err)

	res, err := svc.GeneratePractices(ctx, "C1")
	require.NoError(t, err)
	assert.Equal(t, 4, res.Created, "Expected two practices per Thursday match")

	events, err := dm.Event().ListByChannel("C1")
	require.NoError(t, err)

	var practices []time.Time
	for _, e := range events {
		if e.Kind == domain.EventKindPractice {
			assert.Equal(t, domain.EventStatusScheduled, e.Status)
			practices = append(practices, e.StartsAt)
		}
	}

	// Around the first Thursday: Wednesday 22:00 and Friday 23:00
	require.Len(t, practices, 4)
	assert.True(t, practices[0].Equal(time.Date(2025, 12, 31, 22, 0, 0, 0, time.UTC)))
	assert.True(t, practices[1].Equal(time.Date(2026, 1, 2, 23, 0, 0, 0, time.UTC)))
	assert.True(t, practices[2].Equal(time.Date(2026, 1, 7, 22, 0, 0, 0, time.UTC)))
	assert.True(t, practices[3].Equal(time.Date(2026, 1, 9, 23, 0, 0, 0, time.UTC)))
}

func TestCancelMatches(t *testing.T) {
	ctx := context.Background()

	t.Run("closest entry only", func(t *testing.T) {
		dm := setupTest(t)
		setupPool(t, dm, "ascent", "bind")
		svc := newTestSchedule(t, dm, seasonStart.AddDate(0, 0, -30))

		_, err := svc.Generate(ctx, []string{"ascent", "bind"}, seasonStart, "C1")
		require.NoError(t, err)

		count, err := svc.CancelMatches(ctx, "ascent", false, "C1")
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		events, err := dm.Event().ListByChannel("C1")
		require.NoError(t, err)
		assert.Equal(t, domain.EventStatusCancelled, events[0].Status, "Expected the closest entry cancelled")
		assert.Equal(t, domain.EventStatusScheduled, events[1].Status)
	})

	t.Run("all entries for the map", func(t *testing.T) {
		dm := setupTest(t)
		setupPool(t, dm, "ascent", "bind")
		svc := newTestSchedule(t, dm, seasonStart.AddDate(0, 0, -30))

		_, err := svc.Generate(ctx, []string{"ascent", "bind"}, seasonStart, "C1")
		require.NoError(t, err)

		count, err := svc.CancelMatches(ctx, "ascent", true, "C1")
		require.NoError(t, err)
		assert.Equal(t, 3, count)

		events, err := dm.Event().ListByChannel("C1")
		require.NoError(t, err)
		for _, e := range events {
			if e.MapName == "ascent" {
				assert.Equal(t, domain.EventStatusCancelled, e.Status)
			} else {
				assert.Equal(t, domain.EventStatusScheduled, e.Status)
			}
		}
	})

	t.Run("active entries are ended, not cancelled", func(t *testing.T) {
		dm := setupTest(t)
		setupPool(t, dm, "ascent")
		svc := newTestSchedule(t, dm, seasonStart.AddDate(0, 0, -30))

		_, err := svc.Generate(ctx, []string{"ascent"}, seasonStart, "C1")
		require.NoError(t, err)

		events, err := dm.Event().ListByChannel("C1")
		require.NoError(t, err)
		require.NoError(t, dm.Event().UpdateStatus(events[0].ID, domain.EventStatusActive))

		count, err := svc.CancelMatches(ctx, "ascent", false, "C1")
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		found, err := dm.Event().GetByID(events[0].ID)
		require.NoError(t, err)
		assert.Equal(t, domain.EventStatusEnded, found.Status)
	})

	t.Run("playoffs by label", func(t *testing.T) {
		dm := setupTest(t)
		setupPool(t, dm, "ascent")
		svc := newTestSchedule(t, dm, seasonStart.AddDate(0, 0, -30))

		_, err := svc.Generate(ctx, []string{"ascent"}, seasonStart, "C1")
		require.NoError(t, err)

		count, err := svc.CancelMatches(ctx, domain.PlayoffsLabel, false, "C1")
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("map outside the pool is rejected", func(t *testing.T) {
		dm := setupTest(t)
		setupPool(t, dm, "ascent")
		svc := newTestSchedule(t, dm, seasonStart.AddDate(0, 0, -30))

		_, err := svc.CancelMatches(ctx, "fracture", false, "C1")
		assert.ErrorIs(t, err, domain.ErrMapNotInPool)
	})

	t.Run("nothing to cancel", func(t *testing.T) {
		dm := setupTest(t)
		setupPool(t, dm, "ascent")
		svc := newTestSchedule(t, dm, seasonStart.AddDate(0, 0, -30))

		_, err := svc.CancelMatches(ctx, "ascent", false, "C1")
		assert.ErrorIs(t, err, domain.ErrNoEventsFound)
	})
}

func TestCancelPractices_LeavesMatchesAlone(t *testing.T) {
	dm := setupTest(t)
	setupPool(t, dm, "ascent")
	svc := newTestSchedule(t, dm, seasonStart.AddDate(0, 0, -30))
	ctx := context.Background()

	_, err := svc.Generate(ctx, []string{"ascent"}, seasonStart, "C1")
	require.NoError(t, err)
	_, err = svc.GeneratePractices(ctx, "C1")
	require.NoError(t, err)

	count, err := svc.CancelPractices(ctx, "ascent", true, "C1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	events, err := dm.Event().ListByChannel("C1")
	require.NoError(t, err)
	for _, e := range events {
		if e.Kind == domain.EventKindPractice {
			assert.Equal(t, domain.EventStatusCancelled, e.Status)
		} else {
			assert.Equal(t, domain.EventStatusScheduled, e.Status)
		}
	}
}

func TestClearAll(t *testing.T) {
	dm := setupTest(t)
	setupPool(t, dm, "ascent")
	svc := newTestSchedule(t, dm, seasonStart.AddDate(0, 0, -30))
	ctx := context.Background()

	t.Run("empty calendar is not an error", func(t *testing.T) {
		count, err := svc.ClearAll(ctx, "C1")
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	_, err := svc.Generate(ctx, []string{"ascent"}, seasonStart, "C1")
	require.NoError(t, err)

	count, err := svc.ClearAll(ctx, "C1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	upcoming, err := svc.Upcoming(ctx, "C1")
	require.NoError(t, err)
	assert.Empty(t, upcoming)
}

func TestRSVP(t *testing.T) {
	dm := setupTest(t)
	setupPool(t, dm, "ascent")
	svc := newTestSchedule(t, dm, seasonStart.AddDate(0, 0, -30))
	ctx := context.Background()

	_, err := svc.Generate(ctx, []string{"ascent"}, seasonStart, "C1")
	require.NoError(t, err)

	event, err := svc.RSVP(ctx, "ascent", "U1", "C1")
	require.NoError(t, err)
	assert.True(t, event.StartsAt.Equal(time.Date(2026, 1, 1, 22, 0, 0, 0, time.UTC)),
		"Expected the closest upcoming entry")

	users, err := dm.Event().ListRSVPs(event.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"U1"}, users)

	// Past entries are never matched
	svc.now = func() time.Time { return time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC) }
	_, err = svc.RSVP(ctx, "ascent", "U1", "C1")
	assert.ErrorIs(t, err, domain.ErrNoEventsFound)
}
