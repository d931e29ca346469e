package contract

import (
	"context"
	"errors"
)

// ErrPermissionDenied means the member cannot be reached directly (DMs
// closed, member left the workspace). Drives the escalation policy; never a
// hard error.
var ErrPermissionDenied = errors.New("messenger: permission denied")

// ErrChannelGone means the target channel no longer exists.
var ErrChannelGone = errors.New("messenger: channel gone")

// ErrConfigurationMissing means the fallback channel cannot be created
// because the workspace configuration is incomplete. Delivery is deferred,
// not lost.
var ErrConfigurationMissing = errors.New("messenger: configuration missing")

// Messenger is the external messaging collaborator. Implementations classify
// provider errors into the sentinel errors above; anything else is treated as
// transient and retried on the next dispatcher cycle.
type Messenger interface {
	// SendDirect delivers a direct message to the member.
	SendDirect(ctx context.Context, slackUserID, text string) error

	// CreateRestrictedChannel opens a private channel visible only to the
	// member, the configured admins and the bot, returning its id.
	CreateRestrictedChannel(ctx context.Context, name, slackUserID string) (string, error)

	// SendToChannel posts into a previously created channel.
	SendToChannel(ctx context.Context, channelID, text string) error

	// ArchiveChannel retires a fallback channel after its purpose is served.
	// Best-effort; failures are logged by callers, never retried.
	ArchiveChannel(ctx context.Context, channelID string) error

	// PostAnnouncement posts or updates the event summary message, returning
	// the message timestamp.
	PostAnnouncement(ctx context.Context, channelID, messageTS, text string) (string, error)
}
