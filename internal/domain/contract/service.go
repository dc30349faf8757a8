package contract

import (
	"context"
	"time"

	"github.com/valorats/slack-premier-bot/internal/domain/entity"
)

// PreferenceService owns the vote/weight invariant:
// weight(map) == sum of its preference values.
type PreferenceService interface {
	SetPreference(ctx context.Context, mapName, userID string, value int) error
	WeightsDescending(ctx context.Context) ([]*entity.Map, error)
	Votes(ctx context.Context, mapName string) ([]*entity.Preference, error)
	// PurgeNonRoster drops preferences of users no longer on the roster.
	// An empty roster is a guarded no-op.
	PurgeNonRoster(ctx context.Context, userIDs []string) error
}

// PoolService manages which maps are eligible for scheduling.
type PoolService interface {
	AddMap(ctx context.Context, name, imageURL string) (*entity.Map, error)
	RemoveMap(ctx context.Context, name string) error
	SetPool(ctx context.Context, names []string) error
	Pool(ctx context.Context) ([]*entity.Map, error)
	AllMaps(ctx context.Context) ([]*entity.Map, error)
}

// GenerateResult reports a season generation batch.
type GenerateResult struct {
	Created int
	Skipped int
}

// ScheduleService generates and cancels season calendar entries.
type ScheduleService interface {
	Generate(ctx context.Context, mapOrder []string, startDate time.Time, channelID string) (GenerateResult, error)
	GeneratePractices(ctx context.Context, channelID string) (GenerateResult, error)
	// CancelMatches and CancelPractices resolve the closest entry for the
	// selector (or all of them): scheduled entries are cancelled, active
	// ones ended, anything else deleted.
	CancelMatches(ctx context.Context, mapName string, all bool, channelID string) (int, error)
	CancelPractices(ctx context.Context, mapName string, all bool, channelID string) (int, error)
	ClearAll(ctx context.Context, channelID string) (int, error)
	Upcoming(ctx context.Context, channelID string) ([]*entity.Event, error)
	RSVP(ctx context.Context, mapName, userID, channelID string) (*entity.Event, error)
}

// ReminderService runs the periodic sweep and standalone one-shot reminders.
type ReminderService interface {
	Sweep(ctx context.Context) error
	ScheduleOneShot(ctx context.Context, fireAt time.Time, channelID, message string) (*entity.Reminder, error)
	// ResumePending replays persisted one-shots after a restart, in
	// ascending time order. Past-due reminders fire immediately with a
	// missed annotation.
	ResumePending(ctx context.Context) error
}

// NoteService manages practice note references.
type NoteService interface {
	AddNote(ctx context.Context, mapName, channelID, messageTS, description string) (*entity.MapNote, error)
	RemoveNote(ctx context.Context, mapName string, noteNumber int) error
	// Notes lists a map's notes, pruning references whose Slack message
	// no longer exists.
	Notes(ctx context.Context, mapName string) ([]*entity.MapNote, error)
}
