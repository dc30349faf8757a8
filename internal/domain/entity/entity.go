package entity

import "time"

// Map is a playable map: pool membership decides whether it can be
// scheduled, weight is the denormalized sum of its preference values.
type Map struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	InPool    bool      `json:"in_pool" db:"in_pool"`
	Weight    int       `json:"weight" db:"weight"`
	ImageURL  string    `json:"image_url" db:"image_url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Preference is one user's vote on one map: -1, 0 or 1.
type Preference struct {
	ID     int64  `json:"id" db:"id"`
	MapID  int64  `json:"map_id" db:"map_id"`
	UserID string `json:"user_id" db:"user_id"`
	Value  int    `json:"value" db:"value"`
}

// MapNote is a reference to a practice note message in Slack, not the note
// text itself.
type MapNote struct {
	ID          int64     `json:"id" db:"id"`
	MapID       int64     `json:"map_id" db:"map_id"`
	ChannelID   string    `json:"channel_id" db:"channel_id"`
	MessageTS   string    `json:"message_ts" db:"message_ts"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Event is one calendar entry. MapName is the playoffs label on playoffs
// entries; events reference maps by name so removing a map does not rewrite
// an already published schedule.
type Event struct {
	ID        int64     `json:"id" db:"id"`
	Kind      string    `json:"kind" db:"kind"`
	MapName   string    `json:"map_name" db:"map_name"`
	ChannelID string    `json:"channel_id" db:"channel_id"`
	StartsAt  time.Time `json:"starts_at" db:"starts_at"`
	EndsAt    time.Time `json:"ends_at" db:"ends_at"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Reminder is a standalone one-shot reminder, persisted before its timer
// starts so it survives restarts.
type Reminder struct {
	ID        int64     `json:"id" db:"id"`
	FireAt    time.Time `json:"fire_at" db:"fire_at"`
	ChannelID string    `json:"channel_id" db:"channel_id"`
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ReminderLog is the dedup ledger: one row per (event, kind, start time)
// reminder that was actually sent.
type ReminderLog struct {
	ID       int64     `json:"id" db:"id"`
	EventID  int64     `json:"event_id" db:"event_id"`
	Kind     string    `json:"kind" db:"kind"`
	StartsAt time.Time `json:"starts_at" db:"starts_at"`
	SentAt   time.Time `json:"sent_at" db:"sent_at"`
}
