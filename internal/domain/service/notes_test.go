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

func TestAddNote(t *testing.T) {
	dm := setupTest(t)
	fake := newFakeSlack()
	svc := newNotes(dm, fake, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, dm.Map().Create(&entity.Map{Name: "ascent"}))
	fake.addKnownMessage("C1", "1700000000.000100")

	note, err := svc.AddNote(ctx, "ascent", "C1", "1700000000.000100", "retake setups")
	require.NoError(t, err)
	assert.NotZero(t, note.ID)
	assert.Equal(t, "retake setups", note.Description)

	t.Run("unknown map", func(t *testing.T) {
		_, err := svc.AddNote(ctx, "fracture", "C1", "1700000000.000100", "x")
		assert.ErrorIs(t, err, domain.ErrMapNotFound)
	})

	t.Run("reference to a missing message", func(t *testing.T) {
		_, err := svc.AddNote(ctx, "ascent", "C1", "1700000000.999999", "x")
		assert.ErrorIs(t, err, domain.ErrNoteStale)
	})
}

func TestRemoveNote(t *testing.T) {
	dm := setupTest(t)
	fake := newFakeSlack()
	svc := newNotes(dm, fake, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, dm.Map().Create(&entity.Map{Name: "ascent"}))
	fake.addKnownMessage("C1", "1700000000.000100")
	fake.addKnownMessage("C1", "1700000000.000200")

	_, err := svc.AddNote(ctx, "ascent", "C1", "1700000000.000100", "first")
	require.NoError(t, err)
	_, err = svc.AddNote(ctx, "ascent", "C1", "1700000000.000200", "second")
	require.NoError(t, err)

	t.Run("out of range", func(t *testing.T) {
		assert.ErrorIs(t, svc.RemoveNote(ctx, "ascent", 0), domain.ErrNoteNotFound)
		assert.ErrorIs(t, svc.RemoveNote(ctx, "ascent", 3), domain.ErrNoteNotFound)
	})

	require.NoError(t, svc.RemoveNote(ctx, "ascent", 1))

	notes, err := svc.Notes(ctx, "ascent")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "second", notes[0].Description)
}

func TestNotes_PrunesStaleReferences(t *testing.T) {
	dm := setupTest(t)
	fake := newFakeSlack()
	svc := newNotes(dm, fake, zerolog.Nop())
	ctx := context.Background()

	m := &entity.Map{Name: "ascent"}
	require.NoError(t, dm.Map().Create(m))

	fake.addKnownMessage("C1", "1700000000.000100")
	require.NoError(t, dm.Note().Create(&entity.MapNote{
		MapID: m.ID, ChannelID: "C1", MessageTS: "1700000000.000100", Description: "alive",
	}))
	// This message was never registered with the fake, i.e. deleted in Slack
	require.NoError(t, dm.Note().Create(&entity.MapNote{
		MapID: m.ID, ChannelID: "C1", MessageTS: "1700000000.000200", Description: "stale",
	}))

	notes, err := svc.Notes(ctx, "ascent")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "alive", notes[0].Description)

	// The stale reference is gone from the store, not just filtered
	stored, err := dm.Note().ListByMap(m.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}
