package contract

import (
	"context"
	"time"

	"github.com/valorats/slack-premier-bot/internal/domain/entity"
)

// DataManager aggregates all repository interfaces
type DataManager interface {
	WithTransaction(ctx context.Context, fn func(dm DataManager) error) error
	Map() MapRepo
	Preference() PreferenceRepo
	Note() NoteRepo
	Event() EventRepo
	Reminder() ReminderRepo
	ReminderLog() ReminderLogRepo
}

// MapRepo defines the contract for the map repository
type MapRepo interface {
	Create(m *entity.Map) error
	GetByName(name string) (*entity.Map, error)
	ListAll() ([]*entity.Map, error)
	ListPool() ([]*entity.Map, error)
	ListByWeightDesc() ([]*entity.Map, error)
	AddWeight(mapID int64, delta int) error
	SetInPool(mapID int64, inPool bool) error
	ClearPool() error
	RecomputeWeights() error
	Delete(mapID int64) error
}

// PreferenceRepo defines the contract for the preference repository
type PreferenceRepo interface {
	Get(mapID int64, userID string) (*entity.Preference, error)
	Upsert(pref *entity.Preference) error
	ListByMap(mapID int64) ([]*entity.Preference, error)
	DeleteUsersNotIn(userIDs []string) error
}

// NoteRepo defines the contract for the map note repository
type NoteRepo interface {
	Create(note *entity.MapNote) error
	GetByID(id int64) (*entity.MapNote, error)
	ListByMap(mapID int64) ([]*entity.MapNote, error)
	Delete(id int64) error
}

// EventRepo defines the contract for the calendar entry repository
type EventRepo interface {
	Create(event *entity.Event) error
	GetByID(id int64) (*entity.Event, error)
	// ListByChannel returns every entry for a channel ordered by start
	// time ascending, regardless of status.
	ListByChannel(channelID string) ([]*entity.Event, error)
	// ListPending returns scheduled and active entries ordered by start
	// time descending, so the sweep posts the closest reminder last.
	ListPending(channelID string) ([]*entity.Event, error)
	UpdateStatus(id int64, status string) error
	Delete(id int64) error
	AddRSVP(eventID int64, userID string) error
	RemoveRSVP(eventID int64, userID string) error
	ListRSVPs(eventID int64) ([]string, error)
}

// ReminderRepo defines the contract for standalone one-shot reminders
type ReminderRepo interface {
	Create(reminder *entity.Reminder) error
	// ListPending returns reminders ordered by fire time ascending.
	ListPending() ([]*entity.Reminder, error)
	Delete(id int64) error
}

// ReminderLogRepo is the durable dedup set for event reminders
type ReminderLogRepo interface {
	Exists(eventID int64, kind string, startsAt time.Time) (bool, error)
	Insert(eventID int64, kind string, startsAt time.Time) error
}
