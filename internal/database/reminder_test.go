package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valorats/slack-premier-bot/internal/domain"
	"github.com/valorats/slack-premier-bot/internal/domain/entity"
)

func TestReminderRepository_CreateAndListPending(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	repo := newReminderRepo(db.conn)

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	// Inserted out of order on purpose
	later := &entity.Reminder{FireAt: base.Add(2 * time.Hour), ChannelID: "C1", Message: "later"}
	require.NoError(t, repo.Create(later))

	sooner := &entity.Reminder{FireAt: base.Add(time.Hour), ChannelID: "C1", Message: "sooner"}
	require.NoError(t, repo.Create(sooner))

	assert.NotZero(t, later.ID)
	assert.NotZero(t, sooner.ID)

	pending, err := repo.ListPending()
	require.NoError(t, err)

	require.Len(t, pending, 2)
	assert.Equal(t, "sooner", pending[0].Message, "Expected ascending fire order")
	assert.Equal(t, "later", pending[1].Message)
}

func TestReminderRepository_Delete(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	repo := newReminderRepo(db.conn)

	reminder := &entity.Reminder{
		FireAt:    time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		ChannelID: "C1",
		Message:   "scrim tonight",
	}
	require.NoError(t, repo.Create(reminder))
	require.NoError(t, repo.Delete(reminder.ID))

	pending, err := repo.ListPending()
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestReminderLogRepository_Dedup(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	eventRepo := newEventRepo(db.conn)
	repo := newReminderLogRepo(db.conn)

	startsAt := time.Date(2026, 1, 1, 22, 0, 0, 0, time.UTC)
	event := testEvent("ascent", "C1", startsAt)
	require.NoError(t, eventRepo.Create(event))

	exists, err := repo.Exists(event.ID, domain.ReminderKindPrestart, startsAt)
	require.NoError(t, err)
	assert.False(t, exists, "Expected no log entry before the first send")

	require.NoError(t, repo.Insert(event.ID, domain.ReminderKindPrestart, startsAt))

	exists, err = repo.Exists(event.ID, domain.ReminderKindPrestart, startsAt)
	require.NoError(t, err)
	assert.True(t, exists, "Expected log entry after the send")

	// Same event and occurrence but a different kind is a separate entry
	exists, err = repo.Exists(event.ID, domain.ReminderKindStart, startsAt)
	require.NoError(t, err)
	assert.False(t, exists)

	// The unique index makes a double insert impossible
	err = repo.Insert(event.ID, domain.ReminderKindPrestart, startsAt)
	assert.Error(t, err, "Expected duplicate log entry to fail")
}
