package domain

import "errors"

// Validation and not-found conditions surfaced to the command layer. These
// are answered with a hint, never treated as faults.
var (
	ErrMapExists     = errors.New("map is already in the game")
	ErrMapNotFound   = errors.New("map is not in the game")
	ErrMapNotInPool  = errors.New("map is not in the map pool")
	ErrInvalidVote   = errors.New("vote must be like, neutral or dislike")
	ErrNotThursday   = errors.New("start date is not a Thursday")
	ErrNoMatches     = errors.New("no matches scheduled to derive practices from")
	ErrNoEventsFound = errors.New("no events found for that selector")
	ErrNoteNotFound  = errors.New("no such note")
	ErrNoteStale     = errors.New("note points at a deleted message")
)
