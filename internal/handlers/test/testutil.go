package test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/require"
	"github.com/valorats/slack-premier-bot/internal/config"
	"github.com/valorats/slack-premier-bot/internal/database"
	"github.com/valorats/slack-premier-bot/internal/domain/contract"
	"github.com/valorats/slack-premier-bot/internal/domain/service"
	"github.com/valorats/slack-premier-bot/internal/handlers"
)

const SigningSecret = "test-signing-secret"

// FakeSlackClient is a recording stand-in for the Slack API.
type FakeSlackClient struct {
	mu            sync.Mutex
	PostedCount   int
	GroupMembers  map[string][]string
	KnownMessages map[string]bool
}

func NewFakeSlackClient() *FakeSlackClient {
	return &FakeSlackClient{
		GroupMembers:  make(map[string][]string),
		KnownMessages: make(map[string]bool),
	}
}

func (f *FakeSlackClient) PostMessage(channelID string, options ...slack.MsgOption) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PostedCount++
	return channelID, "1700000000.000001", nil
}

func (f *FakeSlackClient) GetUserGroupMembers(userGroup string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.GroupMembers[userGroup], nil
}

func (f *FakeSlackClient) GetConversationHistory(params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	resp := &slack.GetConversationHistoryResponse{}
	if f.KnownMessages[params.ChannelID+"|"+params.Latest] {
		resp.Messages = []slack.Message{{}}
	}
	return resp, nil
}

// GetHandlerTest builds a handler wired to real services over an in-memory
// database and a fake Slack client.
func GetHandlerTest(t *testing.T) (*FakeSlackClient, contract.DataManager, *handlers.SlackHandler) {
	t.Helper()

	db := database.SetupTestDB(t)
	t.Cleanup(func() { database.CleanupTestDB(t, db) })
	dm := database.NewInstance(db)

	cfg := &config.Config{
		SlackSigningSecret: SigningSecret,
		PremierChannelID:   "C123456789",
		PremierGroupID:     "G123456789",
	}

	fake := NewFakeSlackClient()
	services := service.New(dm, fake, cfg, time.UTC, zerolog.Nop())
	handler := handlers.New(fake, services, cfg, time.UTC, zerolog.Nop())

	return fake, dm, handler
}

// CreateSlackRequest creates a properly signed Slack slash command request
func CreateSlackRequest(t *testing.T, command, text, channelID, userID, signingSecret string) *http.Request {
	t.Helper()

	form := url.Values{
		"token":        {"test-token"},
		"team_id":      {"T123456789"},
		"team_domain":  {"test-team"},
		"channel_id":   {channelID},
		"channel_name": {"test-channel"},
		"user_id":      {userID},
		"user_name":    {"test-user"},
		"command":      {command},
		"text":         {text},
		"response_url": {"https://hooks.slack.com/commands/test"},
		"trigger_id":   {"test-trigger-id"},
	}

	body := form.Encode()

	req, err := http.NewRequest(http.MethodPost, "/slack/commands", strings.NewReader(body))
	require.NoError(t, err)

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	req.Header.Set("X-Slack-Request-Timestamp", timestamp)

	sig := generateSlackSignature(signingSecret, timestamp, body)
	req.Header.Set("X-Slack-Signature", sig)

	return req
}

func generateSlackSignature(signingSecret, timestamp, body string) string {
	baseString := fmt.Sprintf("v0:%s:%s", timestamp, body)
	h := hmac.New(sha256.New, []byte(signingSecret))
	h.Write([]byte(baseString))
	signature := hex.EncodeToString(h.Sum(nil))
	return fmt.Sprintf("v0=%s", signature)
}

func CreateTestRecorder() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}
