package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	SlackBotToken      string
	SlackSigningSecret string
	DatabasePath       string
	Port               string

	// AdminUserIDs are the Slack users allowed to run staffing-team commands
	// and the ones invited into every fallback channel.
	AdminUserIDs []string

	// StaffChannelID receives no-show alerts and announcement posts.
	StaffChannelID string

	DispatchInterval time.Duration
}

func Load() *Config {
	return &Config{
		SlackBotToken:      getEnv("SLACK_BOT_TOKEN", ""),
		SlackSigningSecret: getEnv("SLACK_SIGNING_SECRET", ""),
		DatabasePath:       getEnv("DATABASE_PATH", "./staffing.db"),
		Port:               getEnv("PORT", "3000"),
		AdminUserIDs:       getEnvList("ADMIN_USER_IDS"),
		StaffChannelID:     getEnv("STAFF_CHANNEL_ID", ""),
		DispatchInterval:   getEnvSeconds("DISPATCH_INTERVAL_SECONDS", 30),
	}
}

func (c *Config) IsAdmin(slackUserID string) bool {
	for _, id := range c.AdminUserIDs {
		if id == slackUserID {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}

	var list []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			list = append(list, part)
		}
	}
	return list
}

func getEnvSeconds(key string, defaultValue int) time.Duration {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return time.Duration(defaultValue) * time.Second
}
