// Package messages holds every user-facing text the bot sends, so wording
// lives in one place instead of scattered across services and handlers.
package messages

import (
	"fmt"
	"strings"

	"github.com/vatbrz/staffing-bot/internal/domain/entity"
)

// LockedDM tells a member a slot was assigned to them and asks for the
// first confirmation.
func LockedDM(v *entity.ApplicationView) string {
	return fmt.Sprintf(
		":lock: *Position assigned!*\n\nYou have been selected for *%s* during *%s* (%s).\n\nPlease confirm your availability with `/staffing confirm %d`. Unconfirmed slots may be given away.",
		v.Callsign, v.EventName, v.BlockLabel(), v.ID,
	)
}

// ReminderDM nudges a member about an upcoming slot. Locked slots get an
// extra line asking for the missing confirmation.
func ReminderDM(v *entity.ApplicationView, stillLocked bool) string {
	var b strings.Builder
	fmt.Fprintf(&b,
		":alarm_clock: *Event reminder*\n\n*%s* is coming up and you are on the roster for *%s* (%s).",
		v.EventName, v.Callsign, v.BlockLabel(),
	)
	if stillLocked {
		fmt.Fprintf(&b, "\n\nYou have not confirmed yet. Run `/staffing confirm %d` as soon as possible.", v.ID)
	}
	return b.String()
}

// RejectionDM is sent at most once per member per event, regardless of how
// many applications were rejected.
func RejectionDM(eventName string) string {
	return fmt.Sprintf(
		":information_source: Thank you for applying to *%s*.\n\nUnfortunately none of your applications could be accommodated this time. We hope to see you at the next event!",
		eventName,
	)
}

// FallbackChannelIntro opens the restricted channel created for a member
// whose DMs are closed.
func FallbackChannelIntro(slackUserID string) string {
	return fmt.Sprintf(
		":wave: <@%s>, we could not reach you by direct message, so event updates for you will be posted here instead.\n\nIf you prefer DMs, allow messages from this workspace's apps.",
		slackUserID,
	)
}

// NoShowAlert reports to the staff channel that a confirmed member backed out.
func NoShowAlert(memberName string, details []entity.NoShowDetail) string {
	var b strings.Builder
	fmt.Fprintf(&b, ":warning: *%s* revoked %d confirmed booking(s):\n", memberName, len(details))
	for _, d := range details {
		fmt.Fprintf(&b, "• %s, %s\n", d.Callsign, d.Block)
	}
	b.WriteString("The slots are open again.")
	return b.String()
}

// Announcement renders the public staffing overview for an event.
func Announcement(event *entity.Event, unfilled []*entity.Slot) string {
	var b strings.Builder
	fmt.Fprintf(&b, ":loudspeaker: *%s* controller staffing\n", event.Name)
	fmt.Fprintf(&b, "%s to %s\n\n",
		event.StartTime.UTC().Format("2006-01-02 15:04z"),
		event.EndTime.UTC().Format("15:04z"),
	)

	if len(unfilled) == 0 {
		b.WriteString(":white_check_mark: All positions are staffed. Thank you!")
		return b.String()
	}

	b.WriteString("*Open slots:*\n")
	for _, slot := range unfilled {
		fmt.Fprintf(&b, "• %s, %s (min rating %s)\n",
			slot.Position.Callsign(), slot.Block.Label(), slot.Position.MinRating,
		)
	}
	fmt.Fprintf(&b, "\nApply with `/staffing apply`. %d slot(s) still open.", len(unfilled))
	return b.String()
}
