package domain

import "time"

// Event kinds. A season is a grid of matches, the last slot of the last map
// is the playoffs, and practices are derived from Thursday matches.
const (
	EventKindMatch    = "match"
	EventKindPractice = "practice"
	EventKindPlayoffs = "playoffs"
)

// Event statuses.
const (
	EventStatusScheduled = "scheduled"
	EventStatusActive    = "active"
	EventStatusEnded     = "ended"
	EventStatusCancelled = "cancelled"
)

// Reminder kinds, also the dedup key component in the reminder log.
const (
	ReminderKindStart    = "start"
	ReminderKindPrestart = "prestart"
)

// PlayoffsLabel is used where a map name would go on playoffs entries.
const PlayoffsLabel = "playoffs"

// Vote values.
const (
	VoteDislike = -1
	VoteNeutral = 0
	VoteLike    = 1
)

// Season slot times, in the bot's timezone. Each week has a Thursday and a
// Sunday match at MatchHour and a Saturday match at SaturdayMatchHour.
const (
	MatchHour         = 22
	SaturdayMatchHour = 23

	// Practices around a Thursday match: the day before at
	// PracticeBeforeHour, the day after at PracticeAfterHour.
	PracticeBeforeHour = 22
	PracticeAfterHour  = 23
)

// EventDuration is the fixed length of every calendar entry.
const EventDuration = time.Hour

// Reminder sweep windows relative to an entry's start time.
const (
	// PrestartWindow: a prestart reminder goes out when the entry starts
	// within this window.
	PrestartWindow = time.Hour

	// StartWindow: a start reminder is still sent up to this long after
	// the start time.
	StartWindow = 10 * time.Minute

	// ExpireAfter: entries this far past their start time are ended (if
	// active) or cancelled (if they never started). Between StartWindow
	// and ExpireAfter nothing happens; that grace window is intentional.
	ExpireAfter = time.Hour
)

// SweepCronSpecs are the local times the reminder sweep runs, aligned with
// the slot hours so prestart and start reminders land on time.
var SweepCronSpecs = []string{
	"0 21 * * *",
	"0 22 * * *",
	"0 23 * * *",
}

// DefaultTimezone anchors all date arithmetic when none is configured.
const DefaultTimezone = "America/New_York"

// ReferenceWeekday is the weekday a season must start on.
const ReferenceWeekday = time.Thursday

// EventCreateRate is the calendar service's creation limit: 5 per minute.
const (
	EventCreateRatePerMinute = 5
)
