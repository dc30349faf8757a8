package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"
	"github.com/valorats/slack-premier-bot/internal/config"
	"github.com/valorats/slack-premier-bot/internal/domain"
	"github.com/valorats/slack-premier-bot/internal/domain/contract"
	"github.com/valorats/slack-premier-bot/internal/domain/entity"
)

type reminderService struct {
	dm    contract.DataManager
	slack contract.SlackClient
	cfg   *config.Config
	loc   *time.Location
	now   func() time.Time
	log   zerolog.Logger

	// The sweep is idempotent through the reminder log, but overlapping
	// sweeps could still race status transitions.
	sweepMu sync.Mutex
}

func newReminder(dm contract.DataManager, slackClient contract.SlackClient, cfg *config.Config, loc *time.Location, log zerolog.Logger) *reminderService {
	return &reminderService{
		dm:    dm,
		slack: slackClient,
		cfg:   cfg,
		loc:   loc,
		now:   time.Now,
		log:   log.With().Str("service", "reminder").Logger(),
	}
}

// sweepAction is what one sweep pass does with a calendar entry.
type sweepAction struct {
	reminder  string
	newStatus string
}

// classifyEntry buckets an entry by its remaining time. The window between
// 10 minutes and 1 hour past start produces neither a reminder nor a
// transition; that grace window is intentional.
func classifyEntry(e *entity.Event, now time.Time) sweepAction {
	remaining := e.StartsAt.Sub(now)

	switch {
	case remaining > domain.PrestartWindow:
		return sweepAction{}

	case remaining > 0:
		return sweepAction{reminder: domain.ReminderKindPrestart}

	case remaining >= -domain.StartWindow:
		action := sweepAction{reminder: domain.ReminderKindStart}
		if e.Status == domain.EventStatusScheduled {
			action.newStatus = domain.EventStatusActive
		}
		return action

	case remaining <= -domain.ExpireAfter:
		switch e.Status {
		case domain.EventStatusActive:
			return sweepAction{newStatus: domain.EventStatusEnded}
		case domain.EventStatusScheduled:
			return sweepAction{newStatus: domain.EventStatusCancelled}
		}
		return sweepAction{}

	default:
		return sweepAction{}
	}
}

// Sweep walks every pending entry on both calendars, applies status
// transitions and sends reminders that are not in the dedup log yet. A
// failure on one entry never stops the rest; rerunning the sweep never
// double-notifies.
func (s *reminderService) Sweep(ctx context.Context) error {
	s.sweepMu.Lock()
	defer s.sweepMu.Unlock()

	now := s.now()

	for _, channelID := range s.cfg.Channels() {
		events, err := s.dm.Event().ListPending(channelID)
		if err != nil {
			s.log.Error().Err(err).Str("channel", channelID).Msg("failed to list pending events")
			continue
		}

		for _, e := range events {
			if err := s.processEntry(ctx, e, now); err != nil {
				s.log.Error().Err(err).
					Int64("event", e.ID).
					Str("map", e.MapName).
					Msg("failed to process entry")
			}
		}
	}

	return nil
}

func (s *reminderService) processEntry(ctx context.Context, e *entity.Event, now time.Time) error {
	action := classifyEntry(e, now)

	if action.newStatus != "" {
		if err := s.dm.Event().UpdateStatus(e.ID, action.newStatus); err != nil {
			return err
		}
		e.Status = action.newStatus
	}

	if action.reminder == "" {
		return nil
	}

	sent, err := s.dm.ReminderLog().Exists(e.ID, action.reminder, e.StartsAt)
	if err != nil {
		return err
	}
	if sent {
		return nil
	}

	if err := s.sendEventReminder(e, action.reminder); err != nil {
		return err
	}

	// Logged only after a successful send: a failed send is retried on
	// the next sweep, a logged one never repeats.
	return s.dm.ReminderLog().Insert(e.ID, action.reminder, e.StartsAt)
}

func (s *reminderService) sendEventReminder(e *entity.Event, kind string) error {
	attachment, err := s.reminderAttachment(e, kind)
	if err != nil {
		return err
	}

	var text string
	if kind == domain.ReminderKindPrestart {
		// An hour out the roster is not meaningful yet; ping the group
		// with a call to action instead.
		text = fmt.Sprintf("(reminder) <!subteam^%s> RSVP if you haven't already!", s.cfg.GroupFor(e.ChannelID))
	} else {
		rsvps, err := s.dm.Event().ListRSVPs(e.ID)
		if err != nil {
			return err
		}
		text = "(reminder)\n*RSVP'ed users:*\n" + rosterList(rsvps)
	}

	_, _, err = s.slack.PostMessage(e.ChannelID,
		slack.MsgOptionText(text, false),
		slack.MsgOptionAttachments(attachment),
	)
	if err != nil {
		return fmt.Errorf("failed to post %s reminder: %w", kind, err)
	}

	s.log.Info().
		Str("kind", kind).
		Int64("event", e.ID).
		Str("map", e.MapName).
		Time("starts_at", e.StartsAt).
		Msg("reminder sent")

	return nil
}

func (s *reminderService) reminderAttachment(e *entity.Event, kind string) (slack.Attachment, error) {
	eventType := "match"
	if e.Kind == domain.EventKindPractice {
		eventType = "practice"
	}

	display := titleCase(e.MapName)
	title := fmt.Sprintf("Premier %s on %s", eventType, display)

	var text string
	if kind == domain.ReminderKindPrestart {
		text = fmt.Sprintf("There is a premier %s on %s in 1 hour (at %s)!",
			eventType, display, e.StartsAt.In(s.loc).Format("3:04 PM MST"))
	} else {
		text = fmt.Sprintf("The premier %s on %s is starting *NOW*!", eventType, display)
	}

	attachment := slack.Attachment{
		Title: title,
		Text:  text,
	}

	m, err := s.dm.Map().GetByName(e.MapName)
	if err != nil {
		return attachment, err
	}
	if m != nil {
		attachment.ImageURL = m.ImageURL
		attachment.Fields = []slack.AttachmentField{
			{Title: "Map weight", Value: strconv.Itoa(m.Weight), Short: true},
		}
	}

	return attachment, nil
}

func titleCase(name string) string {
	words := strings.Fields(name)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func rosterList(userIDs []string) string {
	if len(userIDs) == 0 {
		return "- nobody yet"
	}
	var b strings.Builder
	for _, id := range userIDs {
		fmt.Fprintf(&b, "- <@%s>\n", id)
	}
	return strings.TrimRight(b.String(), "\n")
}

// ScheduleOneShot persists a standalone reminder before its timer starts, so
// an in-flight wait cannot be lost to a crash, then fires it when due.
func (s *reminderService) ScheduleOneShot(ctx context.Context, fireAt time.Time, channelID, message string) (*entity.Reminder, error) {
	reminder := &entity.Reminder{
		FireAt:    fireAt.UTC(),
		ChannelID: channelID,
		Message:   message,
	}
	if err := s.dm.Reminder().Create(reminder); err != nil {
		return nil, err
	}

	go s.waitAndFire(ctx, reminder)

	return reminder, nil
}

// ResumePending replays reminders persisted by a previous process instance,
// in ascending fire-time order. Past-due ones fire immediately with a missed
// annotation instead of silently vanishing.
func (s *reminderService) ResumePending(ctx context.Context) error {
	pending, err := s.dm.Reminder().ListPending()
	if err != nil {
		return fmt.Errorf("failed to load pending reminders: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	s.log.Info().Int("count", len(pending)).Msg("resuming persisted reminders")

	go func() {
		for _, r := range pending {
			s.waitAndFire(ctx, r)
		}
	}()

	return nil
}

func (s *reminderService) waitAndFire(ctx context.Context, reminder *entity.Reminder) {
	now := s.now()
	missed := now.After(reminder.FireAt)

	if !missed {
		timer := time.NewTimer(reminder.FireAt.Sub(now))
		defer timer.Stop()
		select {
		case <-ctx.Done():
			// Still persisted; it will be resumed on the next start.
			return
		case <-timer.C:
		}
	}

	message := reminder.Message
	if missed {
		message += fmt.Sprintf("\n(this reminder was supposed to go off at %s)",
			reminder.FireAt.In(s.loc).Format("Jan 2 3:04 PM MST"))
	}

	if _, _, err := s.slack.PostMessage(reminder.ChannelID, slack.MsgOptionText(message, false)); err != nil {
		s.log.Error().Err(err).Int64("reminder", reminder.ID).Msg("failed to post reminder")
		return
	}

	if err := s.dm.Reminder().Delete(reminder.ID); err != nil {
		s.log.Error().Err(err).Int64("reminder", reminder.ID).Msg("failed to delete fired reminder")
		return
	}

	if missed {
		s.log.Warn().Int64("reminder", reminder.ID).Msg("missed reminder delivered late")
	} else {
		s.log.Info().Int64("reminder", reminder.ID).Msg("reminder delivered")
	}
}
