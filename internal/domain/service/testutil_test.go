package service

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/slack-go/slack"
	"github.com/valorats/slack-premier-bot/internal/config"
	"github.com/valorats/slack-premier-bot/internal/database"
	"github.com/valorats/slack-premier-bot/internal/domain/contract"
)

func setupTest(t *testing.T) contract.DataManager {
	t.Helper()

	db := database.SetupTestDB(t)
	t.Cleanup(func() { database.CleanupTestDB(t, db) })

	return database.NewInstance(db)
}

func testConfig() *config.Config {
	return &config.Config{
		PremierChannelID: "C1",
		PremierGroupID:   "G1",
		DebugChannelID:   "CDBG",
		DebugGroupID:     "GDBG",
	}
}

type postedMessage struct {
	ChannelID string
	Text      string
}

// fakeSlackClient records posted messages and serves canned roster and
// message-history lookups.
type fakeSlackClient struct {
	mu            sync.Mutex
	messages      []postedMessage
	postErr       error
	groupMembers  map[string][]string
	knownMessages map[string]bool
}

func newFakeSlack() *fakeSlackClient {
	return &fakeSlackClient{
		groupMembers:  make(map[string][]string),
		knownMessages: make(map[string]bool),
	}
}

func (f *fakeSlackClient) PostMessage(channelID string, options ...slack.MsgOption) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.postErr != nil {
		return "", "", f.postErr
	}

	_, values, err := slack.UnsafeApplyMsgOptions("token", channelID, "https://slack.com/api/", options...)
	if err != nil {
		return "", "", err
	}

	f.messages = append(f.messages, postedMessage{
		ChannelID: channelID,
		Text:      values.Get("text"),
	})
	return channelID, "1700000000.000001", nil
}

func (f *fakeSlackClient) GetUserGroupMembers(userGroup string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.groupMembers[userGroup], nil
}

func (f *fakeSlackClient) GetConversationHistory(params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	resp := &slack.GetConversationHistoryResponse{}
	if f.knownMessages[messageKey(params.ChannelID, params.Latest)] {
		resp.Messages = []slack.Message{{}}
	}
	return resp, nil
}

func (f *fakeSlackClient) addKnownMessage(channelID, messageTS string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.knownMessages[messageKey(channelID, messageTS)] = true
}

func (f *fakeSlackClient) setPostErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.postErr = err
}

func (f *fakeSlackClient) posted() []postedMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]postedMessage, len(f.messages))
	copy(out, f.messages)
	return out
}

func (f *fakeSlackClient) postedTo(channelID string) []postedMessage {
	var out []postedMessage
	for _, m := range f.posted() {
		if m.ChannelID == channelID {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeSlackClient) postedContaining(substr string) int {
	count := 0
	for _, m := range f.posted() {
		if strings.Contains(m.Text, substr) {
			count++
		}
	}
	return count
}

func messageKey(channelID, messageTS string) string {
	return fmt.Sprintf("%s|%s", channelID, messageTS)
}
