package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"
	"github.com/valorats/slack-premier-bot/internal/config"
	"github.com/valorats/slack-premier-bot/internal/domain"
	"github.com/valorats/slack-premier-bot/internal/domain/contract"
	"github.com/valorats/slack-premier-bot/internal/domain/entity"
	"github.com/valorats/slack-premier-bot/internal/domain/service"
	slackcmd "github.com/valorats/slack-premier-bot/internal/slack"
)

type SlackHandler struct {
	slackClient   contract.SlackClient
	services      *service.Services
	cfg           *config.Config
	loc           *time.Location
	signingSecret string
	log           zerolog.Logger
}

func New(slackClient contract.SlackClient, services *service.Services, cfg *config.Config, loc *time.Location, log zerolog.Logger) *SlackHandler {
	return &SlackHandler{
		slackClient:   slackClient,
		services:      services,
		cfg:           cfg,
		loc:           loc,
		signingSecret: cfg.SlackSigningSecret,
		log:           log.With().Str("component", "handler").Logger(),
	}
}

func (h *SlackHandler) HandleSlashCommand(w http.ResponseWriter, r *http.Request) {
	// Verify request from Slack
	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	r.Body = io.NopCloser(bytes.NewBuffer(body))

	verifier, err := slack.NewSecretsVerifier(r.Header, h.signingSecret)
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if _, err := verifier.Write(body); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if err := verifier.Ensure(); err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	s, err := slack.SlashCommandParse(r)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	cmd, err := slackcmd.ParseCommand(s.Text)
	if err != nil {
		h.respond(w, ephemeral(err.Error()+" (try `help`)"))
		return
	}

	response := h.handleCommand(r.Context(), cmd, &s)
	h.respond(w, response)
}

func (h *SlackHandler) respond(w http.ResponseWriter, msg *slack.Msg) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		h.log.Error().Err(err).Msg("failed to encode response")
	}
}

func (h *SlackHandler) handleCommand(ctx context.Context, cmd *slackcmd.Command, slashCmd *slack.SlashCommand) *slack.Msg {
	switch cmd.Type {
	case slackcmd.CmdAddMap:
		return h.handleAddMap(ctx, cmd)
	case slackcmd.CmdRemoveMap:
		return h.handleRemoveMap(ctx, cmd)
	case slackcmd.CmdMapPool:
		return h.handleMapPool(ctx, cmd)
	case slackcmd.CmdVote:
		return h.handleVote(ctx, cmd, slashCmd)
	case slackcmd.CmdMapWeights:
		return h.handleMapWeights(ctx)
	case slackcmd.CmdMapVotes:
		return h.handleMapVotes(ctx, cmd)
	case slackcmd.CmdAddEvents:
		return h.handleAddEvents(ctx, cmd, slashCmd)
	case slackcmd.CmdAddPractices:
		return h.handleAddPractices(ctx, slashCmd)
	case slackcmd.CmdCancelEvent:
		return h.handleCancel(ctx, cmd, slashCmd, false)
	case slackcmd.CmdCancelPractice:
		return h.handleCancel(ctx, cmd, slashCmd, true)
	case slackcmd.CmdClearSchedule:
		return h.handleClearSchedule(ctx, cmd, slashCmd)
	case slackcmd.CmdSchedule:
		return h.handleSchedule(ctx, slashCmd)
	case slackcmd.CmdRSVP:
		return h.handleRSVP(ctx, cmd, slashCmd)
	case slackcmd.CmdRemind:
		return h.handleRemind(ctx, cmd, slashCmd)
	case slackcmd.CmdAddNote:
		return h.handleAddNote(ctx, cmd, slashCmd)
	case slackcmd.CmdRemoveNote:
		return h.handleRemoveNote(ctx, cmd)
	case slackcmd.CmdNotes:
		return h.handleNotes(ctx, cmd)
	case slackcmd.CmdRosterSync:
		return h.handleRosterSync(ctx, slashCmd)
	case slackcmd.CmdHelp:
		return ephemeral(slackcmd.GetHelpText())
	default:
		return ephemeral("Unknown command, try `help`")
	}
}

func (h *SlackHandler) handleAddMap(ctx context.Context, cmd *slackcmd.Command) *slack.Msg {
	if len(cmd.Args) == 0 {
		return ephemeral("Usage: `add-map <name> [image-url]`")
	}

	imageURL := ""
	if len(cmd.Args) > 1 {
		imageURL = cmd.Args[1]
	}

	m, err := h.services.Pool.AddMap(ctx, cmd.Args[0], imageURL)
	if err != nil {
		return h.errorResponse(err)
	}

	return ephemeral(fmt.Sprintf("Map _%s_ added. It starts outside the pool; use `map-pool set` to schedule it.", m.Name))
}

func (h *SlackHandler) handleRemoveMap(ctx context.Context, cmd *slackcmd.Command) *slack.Msg {
	if len(cmd.Args) == 0 {
		return ephemeral("Usage: `remove-map <name>`")
	}

	if err := h.services.Pool.RemoveMap(ctx, cmd.Args[0]); err != nil {
		return h.errorResponse(err)
	}

	return ephemeral(fmt.Sprintf("Map _%s_ removed along with its votes and notes.", strings.ToLower(cmd.Args[0])))
}

func (h *SlackHandler) handleMapPool(ctx context.Context, cmd *slackcmd.Command) *slack.Msg {
	if len(cmd.Args) > 0 {
		switch cmd.Args[0] {
		case "set":
			if err := h.services.Pool.SetPool(ctx, cmd.Args[1:]); err != nil {
				return h.errorResponse(err)
			}
			return ephemeral("Map pool updated.")
		case "clear":
			if err := h.services.Pool.SetPool(ctx, nil); err != nil {
				return h.errorResponse(err)
			}
			return ephemeral("Map pool cleared.")
		default:
			return ephemeral("Usage: `map-pool`, `map-pool set <maps...>` or `map-pool clear`")
		}
	}

	pool, err := h.services.Pool.Pool(ctx)
	if err != nil {
		return h.errorResponse(err)
	}
	if len(pool) == 0 {
		return ephemeral("The map pool is empty.")
	}

	var b strings.Builder
	b.WriteString("*Map pool:*\n")
	for _, m := range pool {
		fmt.Fprintf(&b, "- _%s_\n", m.Name)
	}
	return ephemeral(b.String())
}

var voteValues = map[string]int{
	"like":    domain.VoteLike,
	"neutral": domain.VoteNeutral,
	"dislike": domain.VoteDislike,
}

func (h *SlackHandler) handleVote(ctx context.Context, cmd *slackcmd.Command, slashCmd *slack.SlashCommand) *slack.Msg {
	if len(cmd.Args) < 2 {
		return ephemeral("Usage: `vote <map> <like|neutral|dislike>`")
	}

	value, ok := voteValues[strings.ToLower(cmd.Args[1])]
	if !ok {
		return ephemeral("Vote must be `like`, `neutral` or `dislike`.")
	}

	if err := h.services.Preference.SetPreference(ctx, cmd.Args[0], slashCmd.UserID, value); err != nil {
		return h.errorResponse(err)
	}

	return ephemeral(fmt.Sprintf("Preference saved: _%s_ → %s.", strings.ToLower(cmd.Args[0]), cmd.Args[1]))
}

func (h *SlackHandler) handleMapWeights(ctx context.Context) *slack.Msg {
	maps, err := h.services.Preference.WeightsDescending(ctx)
	if err != nil {
		return h.errorResponse(err)
	}
	if len(maps) == 0 {
		return ephemeral("No maps registered yet.")
	}

	var b strings.Builder
	b.WriteString("*Map weights:*\n")
	for _, m := range maps {
		marker := ""
		if m.InPool {
			marker = " (pool)"
		}
		fmt.Fprintf(&b, "- _%s_: *%d*%s\n", m.Name, m.Weight, marker)
	}
	return ephemeral(b.String())
}

func (h *SlackHandler) handleMapVotes(ctx context.Context, cmd *slackcmd.Command) *slack.Msg {
	if len(cmd.Args) == 0 {
		return ephemeral("Usage: `map-votes <map>`")
	}

	votes, err := h.services.Preference.Votes(ctx, cmd.Args[0])
	if err != nil {
		return h.errorResponse(err)
	}
	if len(votes) == 0 {
		return ephemeral("No votes for that map yet.")
	}

	display := map[int]string{domain.VoteLike: "like", domain.VoteNeutral: "neutral", domain.VoteDislike: "dislike"}

	var b strings.Builder
	fmt.Fprintf(&b, "*Votes on _%s_:*\n", strings.ToLower(cmd.Args[0]))
	for _, v := range votes {
		fmt.Fprintf(&b, "- <@%s>: %s\n", v.UserID, display[v.Value])
	}
	return ephemeral(b.String())
}

func (h *SlackHandler) handleAddEvents(ctx context.Context, cmd *slackcmd.Command, slashCmd *slack.SlashCommand) *slack.Msg {
	if len(cmd.Args) < 2 {
		return ephemeral("Usage: `add-events <map1,map2,...> <mm/dd/yy>` (date must be a Thursday)")
	}

	// Map list may contain spaces after commas, so the date is the last
	// token and everything before it is the list.
	dateArg := cmd.Args[len(cmd.Args)-1]
	listArg := strings.Join(cmd.Args[:len(cmd.Args)-1], " ")

	var mapOrder []string
	for _, name := range strings.Split(listArg, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			mapOrder = append(mapOrder, name)
		}
	}
	if len(mapOrder) == 0 {
		return ephemeral("Provide at least one map, comma separated.")
	}

	startDate, err := time.ParseInLocation("1/2/06", dateArg, h.loc)
	if err != nil {
		return ephemeral("Invalid date format. Use `mm/dd/yy` (ex. `07/10/25` for July 10th, 2025).")
	}

	res, err := h.services.Schedule.Generate(ctx, mapOrder, startDate, slashCmd.ChannelID)
	if err != nil {
		return h.errorResponse(err)
	}

	text := fmt.Sprintf("Season schedule created: %d events starting %s.", res.Created, dateArg)
	if res.Skipped > 0 {
		text += " Some slots were already in the past and were skipped."
	}
	return inChannel(text)
}

func (h *SlackHandler) handleAddPractices(ctx context.Context, slashCmd *slack.SlashCommand) *slack.Msg {
	res, err := h.services.Schedule.GeneratePractices(ctx, slashCmd.ChannelID)
	if err != nil {
		return h.errorResponse(err)
	}

	text := fmt.Sprintf("Practice schedule created: %d entries.", res.Created)
	if res.Skipped > 0 {
		text += " Some slots were already in the past and were skipped."
	}
	return inChannel(text)
}

func (h *SlackHandler) handleCancel(ctx context.Context, cmd *slackcmd.Command, slashCmd *slack.SlashCommand, practices bool) *slack.Msg {
	if len(cmd.Args) == 0 {
		if practices {
			return ephemeral("Usage: `cancel-practice <map> [all]`")
		}
		return ephemeral("Usage: `cancel-event <map|playoffs> [all]`")
	}

	all := len(cmd.Args) > 1 && strings.EqualFold(cmd.Args[1], "all")

	var (
		count int
		err   error
	)
	if practices {
		count, err = h.services.Schedule.CancelPractices(ctx, cmd.Args[0], all, slashCmd.ChannelID)
	} else {
		count, err = h.services.Schedule.CancelMatches(ctx, cmd.Args[0], all, slashCmd.ChannelID)
	}
	if err != nil {
		return h.errorResponse(err)
	}

	return inChannel(fmt.Sprintf("Cancelled %d event(s) on _%s_.", count, strings.ToLower(cmd.Args[0])))
}

func (h *SlackHandler) handleClearSchedule(ctx context.Context, cmd *slackcmd.Command, slashCmd *slack.SlashCommand) *slack.Msg {
	if len(cmd.Args) == 0 || !strings.EqualFold(cmd.Args[0], "confirm") {
		return ephemeral("This deletes the whole season. Run `clear-schedule confirm` to proceed.")
	}

	count, err := h.services.Schedule.ClearAll(ctx, slashCmd.ChannelID)
	if err != nil {
		return h.errorResponse(err)
	}

	return inChannel(fmt.Sprintf("Cleared the schedule (%d entries resolved).", count))
}

func (h *SlackHandler) handleSchedule(ctx context.Context, slashCmd *slack.SlashCommand) *slack.Msg {
	events, err := h.services.Schedule.Upcoming(ctx, slashCmd.ChannelID)
	if err != nil {
		return h.errorResponse(err)
	}
	if len(events) == 0 {
		return ephemeral("Nothing scheduled.")
	}

	var matches, practices []*entity.Event
	for _, e := range events {
		if e.Kind == domain.EventKindPractice {
			practices = append(practices, e)
		} else {
			matches = append(matches, e)
		}
	}

	var b strings.Builder
	b.WriteString("*Upcoming premier events:*\n")
	writeEventLines(&b, matches, h.loc)
	if len(practices) > 0 {
		b.WriteString("*Upcoming premier practices:*\n")
		writeEventLines(&b, practices, h.loc)
	}
	return ephemeral(b.String())
}

func writeEventLines(b *strings.Builder, events []*entity.Event, loc *time.Location) {
	for _, e := range events {
		fmt.Fprintf(b, "- _%s_: %s\n", e.MapName, e.StartsAt.In(loc).Format("Mon Jan 2, 3:04 PM MST"))
	}
}

func (h *SlackHandler) handleRSVP(ctx context.Context, cmd *slackcmd.Command, slashCmd *slack.SlashCommand) *slack.Msg {
	if len(cmd.Args) == 0 {
		return ephemeral("Usage: `rsvp <map|playoffs>`")
	}

	event, err := h.services.Schedule.RSVP(ctx, cmd.Args[0], slashCmd.UserID, slashCmd.ChannelID)
	if err != nil {
		return h.errorResponse(err)
	}

	return ephemeral(fmt.Sprintf("You're in for _%s_ on %s.",
		event.MapName, event.StartsAt.In(h.loc).Format("Mon Jan 2, 3:04 PM MST")))
}

func (h *SlackHandler) handleRemind(ctx context.Context, cmd *slackcmd.Command, slashCmd *slack.SlashCommand) *slack.Msg {
	if len(cmd.Args) < 3 {
		return ephemeral("Usage: `remind <n> <hours|minutes|seconds> <message>`")
	}

	interval, err := strconv.Atoi(cmd.Args[0])
	if err != nil || interval < 1 {
		return ephemeral("The interval must be a positive number.")
	}

	var unit time.Duration
	switch strings.ToLower(cmd.Args[1]) {
	case "hours", "hour":
		unit = time.Hour
	case "minutes", "minute":
		unit = time.Minute
	case "seconds", "second":
		unit = time.Second
	default:
		return ephemeral("The unit must be `hours`, `minutes` or `seconds`.")
	}

	fireAt := time.Now().Add(time.Duration(interval) * unit)
	message := fmt.Sprintf("(reminder) <!subteam^%s> %s",
		h.cfg.GroupFor(slashCmd.ChannelID), strings.Join(cmd.Args[2:], " "))

	// The reminder outlives this request; don't tie it to the request
	// context.
	if _, err := h.services.Reminder.ScheduleOneShot(context.WithoutCancel(ctx), fireAt, slashCmd.ChannelID, message); err != nil {
		return h.errorResponse(err)
	}

	return ephemeral(fmt.Sprintf("I'll remind the team in %d %s.", interval, cmd.Args[1]))
}

func (h *SlackHandler) handleAddNote(ctx context.Context, cmd *slackcmd.Command, slashCmd *slack.SlashCommand) *slack.Msg {
	if len(cmd.Args) < 3 {
		return ephemeral("Usage: `add-note <map> <message-ts> <description>`")
	}

	note, err := h.services.Notes.AddNote(ctx, cmd.Args[0], slashCmd.ChannelID, cmd.Args[1], strings.Join(cmd.Args[2:], " "))
	if err != nil {
		return h.errorResponse(err)
	}

	return ephemeral(fmt.Sprintf("Note %d added for _%s_. Access it with `notes %s`.",
		note.ID, strings.ToLower(cmd.Args[0]), strings.ToLower(cmd.Args[0])))
}

func (h *SlackHandler) handleRemoveNote(ctx context.Context, cmd *slackcmd.Command) *slack.Msg {
	if len(cmd.Args) < 2 {
		return ephemeral("Usage: `remove-note <map> <note-number>`")
	}

	noteNumber, err := strconv.Atoi(cmd.Args[1])
	if err != nil {
		return ephemeral("The note number must be a number; `notes <map>` shows them.")
	}

	if err := h.services.Notes.RemoveNote(ctx, cmd.Args[0], noteNumber); err != nil {
		return h.errorResponse(err)
	}

	return ephemeral(fmt.Sprintf("Removed note %d from _%s_.", noteNumber, strings.ToLower(cmd.Args[0])))
}

func (h *SlackHandler) handleNotes(ctx context.Context, cmd *slackcmd.Command) *slack.Msg {
	if len(cmd.Args) == 0 {
		return ephemeral("Usage: `notes <map>`")
	}

	notes, err := h.services.Notes.Notes(ctx, cmd.Args[0])
	if err != nil {
		return h.errorResponse(err)
	}
	if len(notes) == 0 {
		return ephemeral("No notes for that map.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*Practice notes for _%s_:*\n", strings.ToLower(cmd.Args[0]))
	for i, note := range notes {
		fmt.Fprintf(&b, "- *Note %d*: _%s_\n", i+1, note.Description)
	}
	return ephemeral(b.String())
}

func (h *SlackHandler) handleRosterSync(ctx context.Context, slashCmd *slack.SlashCommand) *slack.Msg {
	members, err := h.slackClient.GetUserGroupMembers(h.cfg.GroupFor(slashCmd.ChannelID))
	if err != nil {
		return h.errorResponse(fmt.Errorf("failed to load the roster: %w", err))
	}

	if err := h.services.Preference.PurgeNonRoster(ctx, members); err != nil {
		return h.errorResponse(err)
	}

	if len(members) == 0 {
		return ephemeral("Roster lookup came back empty; no votes were touched.")
	}
	return ephemeral(fmt.Sprintf("Votes pruned to the current roster (%d members).", len(members)))
}

// errorResponse turns domain conditions into hints and everything else into
// a generic failure.
func (h *SlackHandler) errorResponse(err error) *slack.Msg {
	switch {
	case errors.Is(err, domain.ErrMapExists),
		errors.Is(err, domain.ErrMapNotFound),
		errors.Is(err, domain.ErrInvalidVote),
		errors.Is(err, domain.ErrNoteNotFound):
		return ephemeral(err.Error())
	case errors.Is(err, domain.ErrMapNotInPool):
		return ephemeral(err.Error() + " (check `map-pool`)")
	case errors.Is(err, domain.ErrNotThursday):
		return ephemeral("The start date must be a Thursday.")
	case errors.Is(err, domain.ErrNoMatches):
		return ephemeral("Add the season first with `add-events`.")
	case errors.Is(err, domain.ErrNoEventsFound):
		return ephemeral("No matching events in the schedule.")
	case errors.Is(err, domain.ErrNoteStale):
		return ephemeral("That message doesn't exist (anymore); notes must reference a message in this channel.")
	}

	h.log.Error().Err(err).Msg("command failed")
	return ephemeral("Something went wrong, please try again.")
}

func ephemeral(text string) *slack.Msg {
	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         text,
	}
}

func inChannel(text string) *slack.Msg {
	return &slack.Msg{
		ResponseType: slack.ResponseTypeInChannel,
		Text:         text,
	}
}
