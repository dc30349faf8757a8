package contract

import "github.com/slack-go/slack"

// SlackClient defines the interface for Slack operations
// This allows mocking in tests while keeping the real implementation simple
type SlackClient interface {
	// PostMessage sends a message to a Slack channel
	PostMessage(channelID string, options ...slack.MsgOption) (string, string, error)

	// GetUserGroupMembers returns the user IDs in a user group (the
	// team roster)
	GetUserGroupMembers(userGroup string) ([]string, error)

	// GetConversationHistory is used to check that a referenced message
	// still exists
	GetConversationHistory(params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error)
}
