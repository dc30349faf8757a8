package slack

import (
	"fmt"
	"strings"
)

type CommandType string

const (
	CmdAddMap         CommandType = "add-map"
	CmdRemoveMap      CommandType = "remove-map"
	CmdMapPool        CommandType = "map-pool"
	CmdVote           CommandType = "vote"
	CmdMapWeights     CommandType = "map-weights"
	CmdMapVotes       CommandType = "map-votes"
	CmdAddEvents      CommandType = "add-events"
	CmdAddPractices   CommandType = "add-practices"
	CmdCancelEvent    CommandType = "cancel-event"
	CmdCancelPractice CommandType = "cancel-practice"
	CmdClearSchedule  CommandType = "clear-schedule"
	CmdSchedule       CommandType = "schedule"
	CmdRSVP           CommandType = "rsvp"
	CmdRemind         CommandType = "remind"
	CmdAddNote        CommandType = "add-note"
	CmdRemoveNote     CommandType = "remove-note"
	CmdNotes          CommandType = "notes"
	CmdRosterSync     CommandType = "roster-sync"
	CmdHelp           CommandType = "help"
)

type Command struct {
	Type CommandType
	Args []string
	Raw  string
}

func ParseCommand(text string) (*Command, error) {
	parts := strings.Fields(strings.TrimSpace(text))
	if len(parts) == 0 {
		return &Command{Type: CmdHelp}, nil
	}

	cmd := &Command{
		Raw:  text,
		Args: parts[1:],
	}

	switch strings.ToLower(parts[0]) {
	case "add-map":
		cmd.Type = CmdAddMap
	case "remove-map", "rm-map":
		cmd.Type = CmdRemoveMap
	case "map-pool", "pool":
		cmd.Type = CmdMapPool
	case "vote":
		cmd.Type = CmdVote
	case "map-weights", "weights":
		cmd.Type = CmdMapWeights
	case "map-votes", "votes":
		cmd.Type = CmdMapVotes
	case "add-events":
		cmd.Type = CmdAddEvents
	case "add-practices":
		cmd.Type = CmdAddPractices
	case "cancel-event":
		cmd.Type = CmdCancelEvent
	case "cancel-practice":
		cmd.Type = CmdCancelPractice
	case "clear-schedule":
		cmd.Type = CmdClearSchedule
	case "schedule":
		cmd.Type = CmdSchedule
	case "rsvp":
		cmd.Type = CmdRSVP
	case "remind":
		cmd.Type = CmdRemind
	case "add-note":
		cmd.Type = CmdAddNote
	case "remove-note":
		cmd.Type = CmdRemoveNote
	case "notes":
		cmd.Type = CmdNotes
	case "roster-sync":
		cmd.Type = CmdRosterSync
	case "help":
		cmd.Type = CmdHelp
	default:
		return nil, fmt.Errorf("unknown command: %s", parts[0])
	}

	return cmd, nil
}

func GetHelpText() string {
	return `*Available commands:*

*Maps & votes:*
• ` + "`/premier add-map <name> [image-url]`" + ` - Register a new map
• ` + "`/premier remove-map <name>`" + ` - Remove a map and all its data
• ` + "`/premier map-pool`" + ` - Show the current map pool
• ` + "`/premier map-pool set <m1> <m2> ...`" + ` - Replace the pool (empty clears it)
• ` + "`/premier vote <map> <like|neutral|dislike>`" + ` - Cast your vote
• ` + "`/premier map-weights`" + ` - Maps ranked by weight
• ` + "`/premier map-votes <map>`" + ` - Individual votes on a map

*Schedule:*
• ` + "`/premier add-events <m1,m2,...> <mm/dd/yy>`" + ` - Generate the season (date must be a Thursday)
• ` + "`/premier add-practices`" + ` - Derive practices from the season
• ` + "`/premier cancel-event <map|playoffs> [all]`" + ` - Cancel the next (or all) events on a map
• ` + "`/premier cancel-practice <map> [all]`" + ` - Cancel the next (or all) practices on a map
• ` + "`/premier clear-schedule confirm`" + ` - Wipe the whole season
• ` + "`/premier schedule`" + ` - Show upcoming events
• ` + "`/premier rsvp <map|playoffs>`" + ` - RSVP to the next event on a map

*Reminders & notes:*
• ` + "`/premier remind <n> <hours|minutes|seconds> <message>`" + ` - One-shot reminder
• ` + "`/premier add-note <map> <message-ts> <description>`" + ` - Link a practice note
• ` + "`/premier remove-note <map> <n>`" + ` - Remove a note reference
• ` + "`/premier notes <map>`" + ` - List a map's notes
• ` + "`/premier roster-sync`" + ` - Drop votes of users who left the roster`
}
