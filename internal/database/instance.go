package database

import (
	"context"
	"fmt"

	"github.com/valorats/slack-premier-bot/internal/domain/contract"
)

// instance implements DataManager interface
type instance struct {
	db              *DB
	mapRepo         contract.MapRepo
	preferenceRepo  contract.PreferenceRepo
	noteRepo        contract.NoteRepo
	eventRepo       contract.EventRepo
	reminderRepo    contract.ReminderRepo
	reminderLogRepo contract.ReminderLogRepo
}

// NewInstance creates a new database instance with all repositories
func NewInstance(db *DB) contract.DataManager {
	i := &instance{db: db}
	i.repoInstances()
	return i
}

// repoInstances initializes all repositories
func (i *instance) repoInstances() {
	i.mapRepo = newMapRepo(i.db.conn)
	i.preferenceRepo = newPreferenceRepo(i.db.conn)
	i.noteRepo = newNoteRepo(i.db.conn)
	i.eventRepo = newEventRepo(i.db.conn)
	i.reminderRepo = newReminderRepo(i.db.conn)
	i.reminderLogRepo = newReminderLogRepo(i.db.conn)
}

// repoInstancesWithConn creates repository instances with custom dbConn
func repoInstancesWithConn(db dbConn) *instance {
	return &instance{
		mapRepo:         newMapRepo(db),
		preferenceRepo:  newPreferenceRepo(db),
		noteRepo:        newNoteRepo(db),
		eventRepo:       newEventRepo(db),
		reminderRepo:    newReminderRepo(db),
		reminderLogRepo: newReminderLogRepo(db),
	}
}

// Map returns the map repository
func (i *instance) Map() contract.MapRepo {
	return i.mapRepo
}

// Preference returns the preference repository
func (i *instance) Preference() contract.PreferenceRepo {
	return i.preferenceRepo
}

// Note returns the map note repository
func (i *instance) Note() contract.NoteRepo {
	return i.noteRepo
}

// Event returns the calendar entry repository
func (i *instance) Event() contract.EventRepo {
	return i.eventRepo
}

// Reminder returns the standalone reminder repository
func (i *instance) Reminder() contract.ReminderRepo {
	return i.reminderRepo
}

// ReminderLog returns the reminder dedup log repository
func (i *instance) ReminderLog() contract.ReminderLogRepo {
	return i.reminderLogRepo
}

// WithTransaction executes a function within a database transaction
func (i *instance) WithTransaction(ctx context.Context, fn func(dm contract.DataManager) error) error {
	tx, err := i.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	txInstance := repoInstancesWithConn(tx)
	err = fn(txInstance)
	if err != nil {
		rbErr := tx.Rollback()
		if rbErr != nil {
			return fmt.Errorf("error rolling back transaction: %v, original error: %w", rbErr, err)
		}
		return err
	}

	return tx.Commit()
}
