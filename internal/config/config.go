package config

import (
	"fmt"
	"os"
	"time"

	"github.com/valorats/slack-premier-bot/internal/domain"
)

type Config struct {
	SlackBotToken      string
	SlackSigningSecret string
	DatabasePath       string
	Port               string
	Timezone           string
	LogLevel           string

	// Production calendar: the premier channel and the team user group.
	PremierChannelID string
	PremierGroupID   string

	// Debug calendar, kept separate so test seasons never ping the team.
	DebugChannelID string
	DebugGroupID   string
}

func Load() *Config {
	return &Config{
		SlackBotToken:      getEnv("SLACK_BOT_TOKEN", ""),
		SlackSigningSecret: getEnv("SLACK_SIGNING_SECRET", ""),
		DatabasePath:       getEnv("DATABASE_PATH", "./premier.db"),
		Port:               getEnv("PORT", "3000"),
		Timezone:           getEnv("BOT_TIMEZONE", domain.DefaultTimezone),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		PremierChannelID:   getEnv("PREMIER_CHANNEL_ID", ""),
		PremierGroupID:     getEnv("PREMIER_GROUP_ID", ""),
		DebugChannelID:     getEnv("DEBUG_CHANNEL_ID", ""),
		DebugGroupID:       getEnv("DEBUG_GROUP_ID", ""),
	}
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid BOT_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// GroupFor returns the user group mentioned in reminders for a channel.
func (c *Config) GroupFor(channelID string) string {
	if channelID == c.DebugChannelID {
		return c.DebugGroupID
	}
	return c.PremierGroupID
}

// Channels returns the calendars the sweep covers.
func (c *Config) Channels() []string {
	var out []string
	if c.PremierChannelID != "" {
		out = append(out, c.PremierChannelID)
	}
	if c.DebugChannelID != "" {
		out = append(out, c.DebugChannelID)
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
