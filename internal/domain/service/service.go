package service

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/valorats/slack-premier-bot/internal/config"
	"github.com/valorats/slack-premier-bot/internal/domain/contract"
)

type Services struct {
	Preference contract.PreferenceService
	Pool       contract.PoolService
	Schedule   contract.ScheduleService
	Reminder   contract.ReminderService
	Notes      contract.NoteService
}

func New(dm contract.DataManager, slackClient contract.SlackClient, cfg *config.Config, loc *time.Location, log zerolog.Logger) *Services {
	return &Services{
		Preference: newPreference(dm, log),
		Pool:       newPool(dm, log),
		Schedule:   newSchedule(dm, loc, log),
		Reminder:   newReminder(dm, slackClient, cfg, loc, log),
		Notes:      newNotes(dm, slackClient, log),
	}
}
