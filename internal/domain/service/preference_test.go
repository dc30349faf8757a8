package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valorats/slack-premier-bot/internal/domain"
	"github.com/valorats/slack-premier-bot/internal/domain/entity"
)

func TestSetPreference_WeightFollowsVotes(t *testing.T) {
	dm := setupTest(t)
	svc := newPreference(dm, zerolog.Nop())
	ctx := context.Background()

	m := &entity.Map{Name: "ascent"}
	require.NoError(t, dm.Map().Create(m))

	weight := func() int {
		found, err := dm.Map().GetByName("ascent")
		require.NoError(t, err)
		require.NotNil(t, found)
		return found.Weight
	}

	require.NoError(t, svc.SetPreference(ctx, "ascent", "U1", domain.VoteLike))
	require.NoError(t, svc.SetPreference(ctx, "ascent", "U2", domain.VoteLike))
	require.NoError(t, svc.SetPreference(ctx, "ascent", "U3", domain.VoteDislike))
	assert.Equal(t, 1, weight())

	// Re-casting the same vote never double-counts
	require.NoError(t, svc.SetPreference(ctx, "ascent", "U1", domain.VoteLike))
	assert.Equal(t, 1, weight())

	// Changing a vote applies the delta, not the raw value
	require.NoError(t, svc.SetPreference(ctx, "ascent", "U3", domain.VoteLike))
	assert.Equal(t, 3, weight())

	require.NoError(t, svc.SetPreference(ctx, "ascent", "U2", domain.VoteNeutral))
	assert.Equal(t, 2, weight())
}

func TestSetPreference_NormalizesMapName(t *testing.T) {
	dm := setupTest(t)
	svc := newPreference(dm, zerolog.Nop())
	ctx := context.Background()

	m := &entity.Map{Name: "ascent"}
	require.NoError(t, dm.Map().Create(m))

	require.NoError(t, svc.SetPreference(ctx, "  Ascent ", "U1", domain.VoteLike))

	pref, err := dm.Preference().Get(m.ID, "U1")
	require.NoError(t, err)
	require.NotNil(t, pref)
	assert.Equal(t, domain.VoteLike, pref.Value)
}

func TestSetPreference_Errors(t *testing.T) {
	dm := setupTest(t)
	svc := newPreference(dm, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, dm.Map().Create(&entity.Map{Name: "ascent"}))

	t.Run("invalid vote value", func(t *testing.T) {
		err := svc.SetPreference(ctx, "ascent", "U1", 2)
		assert.ErrorIs(t, err, domain.ErrInvalidVote)
	})

	t.Run("unknown map", func(t *testing.T) {
		err := svc.SetPreference(ctx, "fracture", "U1", domain.VoteLike)
		assert.ErrorIs(t, err, domain.ErrMapNotFound)
	})
}

func TestWeightsDescending(t *testing.T) {
	dm := setupTest(t)
	svc := newPreference(dm, zerolog.Nop())
	ctx := context.Background()

	for _, name := range []string{"ascent", "bind", "haven"} {
		require.NoError(t, dm.Map().Create(&entity.Map{Name: name}))
	}

	require.NoError(t, svc.SetPreference(ctx, "bind", "U1", domain.VoteLike))
	require.NoError(t, svc.SetPreference(ctx, "bind", "U2", domain.VoteLike))
	require.NoError(t, svc.SetPreference(ctx, "haven", "U1", domain.VoteDislike))

	ranked, err := svc.WeightsDescending(ctx)
	require.NoError(t, err)

	require.Len(t, ranked, 3)
	assert.Equal(t, "bind", ranked[0].Name)
	assert.Equal(t, "ascent", ranked[1].Name)
	assert.Equal(t, "haven", ranked[2].Name)
}

func TestPurgeNonRoster(t *testing.T) {
	dm := setupTest(t)
	svc := newPreference(dm, zerolog.Nop())
	ctx := context.Background()

	m := &entity.Map{Name: "ascent"}
	require.NoError(t, dm.Map().Create(m))

	require.NoError(t, svc.SetPreference(ctx, "ascent", "U1", domain.VoteLike))
	require.NoError(t, svc.SetPreference(ctx, "ascent", "U2", domain.VoteLike))
	require.NoError(t, svc.SetPreference(ctx, "ascent", "U3", domain.VoteLike))

	t.Run("empty roster is a guarded no-op", func(t *testing.T) {
		require.NoError(t, svc.PurgeNonRoster(ctx, nil))

		votes, err := svc.Votes(ctx, "ascent")
		require.NoError(t, err)
		assert.Len(t, votes, 3, "Expected votes untouched by an empty roster")
	})

	t.Run("purge drops leavers and rebuilds weights", func(t *testing.T) {
		require.NoError(t, svc.PurgeNonRoster(ctx, []string{"U1"}))

		votes, err := svc.Votes(ctx, "ascent")
		require.NoError(t, err)
		require.Len(t, votes, 1)
		assert.Equal(t, "U1", votes[0].UserID)

		found, err := dm.Map().GetByName("ascent")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, 1, found.Weight, "Expected weight rebuilt after purge")
	})
}
