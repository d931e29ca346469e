package slack

import (
	"context"
	"fmt"
	"strings"

	"github.com/slack-go/slack"

	"github.com/vatbrz/staffing-bot/internal/domain/contract"
)

// Slack API error codes that mean the member cannot receive direct messages.
var dmDeniedCodes = map[string]bool{
	"cannot_dm_bot":         true,
	"user_not_found":        true,
	"account_inactive":      true,
	"user_disabled":         true,
	"messages_tab_disabled": true,
}

// Messenger implements contract.Messenger on top of the Slack Web API.
type Messenger struct {
	client       *slack.Client
	adminUserIDs []string
}

func NewMessenger(client *slack.Client, adminUserIDs []string) *Messenger {
	return &Messenger{
		client:       client,
		adminUserIDs: adminUserIDs,
	}
}

func (m *Messenger) SendDirect(ctx context.Context, slackUserID, text string) error {
	channel, _, _, err := m.client.OpenConversationContext(ctx, &slack.OpenConversationParameters{
		Users: []string{slackUserID},
	})
	if err != nil {
		return classifyDMError(err)
	}

	_, _, err = m.client.PostMessageContext(ctx, channel.ID, slack.MsgOptionText(text, false))
	if err != nil {
		return classifyDMError(err)
	}
	return nil
}

// CreateRestrictedChannel opens a private channel holding only the member,
// the staffing admins and the bot. Without configured admins there is nobody
// to oversee the channel, so creation is refused as a configuration problem.
func (m *Messenger) CreateRestrictedChannel(ctx context.Context, name, slackUserID string) (string, error) {
	if len(m.adminUserIDs) == 0 {
		return "", contract.ErrConfigurationMissing
	}

	channel, err := m.client.CreateConversationContext(ctx, slack.CreateConversationParams{
		ChannelName: name,
		IsPrivate:   true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create channel %s: %w", name, err)
	}

	invitees := append([]string{slackUserID}, m.adminUserIDs...)
	if _, err := m.client.InviteUsersToConversationContext(ctx, channel.ID, invitees...); err != nil {
		// The channel exists and the bot can post; missing invitees are
		// logged upstream, not fatal.
		return channel.ID, nil
	}
	return channel.ID, nil
}

func (m *Messenger) SendToChannel(ctx context.Context, channelID, text string) error {
	_, _, err := m.client.PostMessageContext(ctx, channelID, slack.MsgOptionText(text, false))
	if err != nil {
		if isChannelGone(err) {
			return contract.ErrChannelGone
		}
		return err
	}
	return nil
}

func (m *Messenger) ArchiveChannel(ctx context.Context, channelID string) error {
	if err := m.client.ArchiveConversationContext(ctx, channelID); err != nil {
		if isChannelGone(err) {
			return nil
		}
		return err
	}
	return nil
}

// PostAnnouncement updates the event overview message in place, posting a
// fresh one when there is nothing to update or the old message is gone.
func (m *Messenger) PostAnnouncement(ctx context.Context, channelID, messageTS, text string) (string, error) {
	if messageTS != "" {
		_, ts, _, err := m.client.UpdateMessageContext(ctx, channelID, messageTS, slack.MsgOptionText(text, false))
		if err == nil {
			return ts, nil
		}
		if isChannelGone(err) {
			return "", contract.ErrChannelGone
		}
		// Message deleted or too old to edit, fall through and post fresh.
	}

	_, ts, err := m.client.PostMessageContext(ctx, channelID, slack.MsgOptionText(text, false))
	if err != nil {
		if isChannelGone(err) {
			return "", contract.ErrChannelGone
		}
		return "", err
	}
	return ts, nil
}

// classifyDMError maps Slack API error codes onto the messenger sentinels.
// The Web API surfaces them as the bare code string.
func classifyDMError(err error) error {
	code := err.Error()
	if dmDeniedCodes[code] {
		return contract.ErrPermissionDenied
	}
	return err
}

func isChannelGone(err error) bool {
	code := err.Error()
	return strings.Contains(code, "channel_not_found") || strings.Contains(code, "is_archived")
}
