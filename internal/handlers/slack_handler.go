package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/vatbrz/staffing-bot/internal/config"
	"github.com/vatbrz/staffing-bot/internal/domain"
	"github.com/vatbrz/staffing-bot/internal/domain/contract"
	"github.com/vatbrz/staffing-bot/internal/domain/entity"
	"github.com/vatbrz/staffing-bot/internal/messages"
	slackcmd "github.com/vatbrz/staffing-bot/internal/slack"
)

// eventTimeLayout is the format admins type event windows in, always UTC.
const eventTimeLayout = "2006-01-02T15:04"

type SlackHandler struct {
	booking       contract.BookingService
	messenger     contract.Messenger
	cfg           *config.Config
	log           *zap.Logger
	signingSecret string
}

func New(booking contract.BookingService, messenger contract.Messenger, cfg *config.Config, log *zap.Logger) *SlackHandler {
	return &SlackHandler{
		booking:       booking,
		messenger:     messenger,
		cfg:           cfg,
		log:           log.Named("handler"),
		signingSecret: cfg.SlackSigningSecret,
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

	// Verify Slack signature
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

	// Parse command
	s, err := slack.SlashCommandParse(r)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	// Parse our command
	cmd, err := slackcmd.ParseCommand(s.Text)
	if err != nil {
		h.respondWithError(w, err.Error())
		return
	}

	// Handle command
	response := h.handleCommand(r, cmd, &s)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (h *SlackHandler) handleCommand(r *http.Request, cmd *slackcmd.Command, slashCmd *slack.SlashCommand) *slack.Msg {
	switch cmd.Type {
	case slackcmd.CmdRegister:
		return h.handleRegister(cmd, slashCmd)
	case slackcmd.CmdApply:
		return h.handleApply(r, cmd, slashCmd)
	case slackcmd.CmdRevoke:
		return h.handleRevoke(r, cmd, slashCmd)
	case slackcmd.CmdConfirm:
		return h.handleConfirm(r, cmd, slashCmd)
	case slackcmd.CmdSelect:
		return h.handleSelect(r, cmd, slashCmd)
	case slackcmd.CmdReserve:
		return h.handleReserve(r, cmd, slashCmd)
	case slackcmd.CmdEvent:
		return h.handleEvent(r, cmd, slashCmd)
	case slackcmd.CmdRole:
		return h.handleRole(cmd, slashCmd)
	case slackcmd.CmdPosition:
		return h.handlePosition(r, cmd, slashCmd)
	case slackcmd.CmdBlocks:
		return h.handleBlocks(r, cmd, slashCmd)
	case slackcmd.CmdOpen:
		return h.handleOpen(r, cmd, slashCmd)
	case slackcmd.CmdClose:
		return h.handleClose(r, cmd, slashCmd)
	case slackcmd.CmdNotify:
		return h.handleNotify(r, cmd, slashCmd)
	case slackcmd.CmdAnnounce:
		return h.handleAnnounce(r, cmd, slashCmd)
	case slackcmd.CmdStatus:
		return h.handleStatus(cmd, slashCmd)
	case slackcmd.CmdHelp:
		return h.handleHelp()
	default:
		return h.createErrorResponse("Unknown command. Try `/staffing help`.")
	}
}

func (h *SlackHandler) handleRegister(cmd *slackcmd.Command, slashCmd *slack.SlashCommand) *slack.Msg {
	if len(cmd.Args) < 2 {
		return h.createErrorResponse("Usage: `/staffing register <cid> <rating>` (e.g. `/staffing register 1234567 S3`)")
	}

	cid, err := strconv.ParseInt(cmd.Args[0], 10, 64)
	if err != nil {
		return h.createErrorResponse("CID must be a number")
	}

	rating, ok := domain.RatingFromName(strings.ToUpper(cmd.Args[1]))
	if !ok {
		return h.createErrorResponse("Unknown rating. Use one of OBS, S1, S2, S3, C1, C2, C3, I1, I2, I3, SUP, ADM")
	}

	member := &entity.Member{
		CID:         cid,
		SlackUserID: slashCmd.UserID,
		DisplayName: slashCmd.UserName,
		Rating:      rating,
	}
	if err := h.booking.RegisterMember(member); err != nil {
		h.log.Error("register failed", zap.Int64("cid", cid), zap.Error(err))
		return h.createErrorResponse("Could not register, please try again")
	}

	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         fmt.Sprintf("✅ Registered CID %d (%s).", member.CID, member.Rating),
	}
}

func (h *SlackHandler) handleApply(r *http.Request, cmd *slackcmd.Command, slashCmd *slack.SlashCommand) *slack.Msg {
	member, msg := h.requireMember(slashCmd)
	if msg != nil {
		return msg
	}

	if len(cmd.Args) < 3 {
		return h.createErrorResponse("Usage: `/staffing apply <event-id> <position-ids> <block-ids>` (ids comma separated)")
	}

	eventID, err := strconv.ParseInt(cmd.Args[0], 10, 64)
	if err != nil {
		return h.createErrorResponse("Event id must be a number")
	}
	positionIDs, err := parseIDList(cmd.Args[1])
	if err != nil {
		return h.createErrorResponse("Position ids must be numbers, comma separated")
	}
	blockIDs, err := parseIDList(cmd.Args[2])
	if err != nil {
		return h.createErrorResponse("Block ids must be numbers, comma separated")
	}

	created, err := h.booking.Submit(r.Context(), member.CID, positionIDs, blockIDs)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEventNotOpen):
			return h.createErrorResponse("Bookings for this event are not open")
		case errors.Is(err, domain.ErrInsufficientRating):
			return h.createErrorResponse("Your rating is not sufficient for one of these positions")
		case errors.Is(err, domain.ErrNotFound):
			return h.createErrorResponse("Position or event not found")
		}
		h.log.Error("apply failed", zap.Int64("cid", member.CID), zap.Int64("event_id", eventID), zap.Error(err))
		return h.createErrorResponse("Could not submit applications, please try again")
	}

	if created == 0 {
		return &slack.Msg{
			ResponseType: slack.ResponseTypeEphemeral,
			Text:         "No new applications: every chosen slot is already taken or applied for.",
		}
	}
	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         fmt.Sprintf("✅ Submitted %d application(s). You will be notified when a slot is assigned to you.", created),
	}
}

func (h *SlackHandler) handleRevoke(r *http.Request, cmd *slackcmd.Command, slashCmd *slack.SlashCommand) *slack.Msg {
	member, msg := h.requireMember(slashCmd)
	if msg != nil {
		return msg
	}

	eventID, msg := h.requireEventID(cmd, "revoke")
	if msg != nil {
		return msg
	}

	result, err := h.booking.RevokeAll(r.Context(), member.CID, eventID)
	if err != nil {
		h.log.Error("revoke failed", zap.Int64("cid", member.CID), zap.Int64("event_id", eventID), zap.Error(err))
		return h.createErrorResponse("Could not revoke applications, please try again")
	}

	if result.NoShowCount > 0 && h.cfg.StaffChannelID != "" {
		alert := messages.NoShowAlert(member.DisplayName, result.NoShowDetails)
		if err := h.messenger.SendToChannel(r.Context(), h.cfg.StaffChannelID, alert); err != nil {
			h.log.Warn("no-show alert failed", zap.Int64("cid", member.CID), zap.Error(err))
		}
	}

	if result.Total() == 0 {
		return &slack.Msg{
			ResponseType: slack.ResponseTypeEphemeral,
			Text:         "You have no active applications for this event.",
		}
	}

	var b strings.Builder
	b.WriteString("Your applications were withdrawn:\n")
	if result.PendingDeleted > 0 {
		fmt.Fprintf(&b, "• %d pending removed\n", result.PendingDeleted)
	}
	if result.LockedCancelled > 0 {
		fmt.Fprintf(&b, "• %d assigned slot(s) cancelled\n", result.LockedCancelled)
	}
	if result.NoShowCount > 0 {
		fmt.Fprintf(&b, "• %d confirmed slot(s) marked as no-show\n", result.NoShowCount)
	}
	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         b.String(),
	}
}

func (h *SlackHandler) handleConfirm(r *http.Request, cmd *slackcmd.Command, slashCmd *slack.SlashCommand) *slack.Msg {
	if len(cmd.Args) < 1 {
		return h.createErrorResponse("Usage: `/staffing confirm <application-id>`")
	}
	applicationID, err := strconv.ParseInt(cmd.Args[0], 10, 64)
	if err != nil {
		return h.createErrorResponse("Application id must be a number")
	}

	// Members confirm their own applications; admins can confirm any.
	if !h.cfg.IsAdmin(slashCmd.UserID) {
		member, msg := h.requireMember(slashCmd)
		if msg != nil {
			return msg
		}
		view, err := h.booking.Application(applicationID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return h.createErrorResponse("Application not found")
			}
			return h.createErrorResponse("Could not look up the application")
		}
		if view.MemberCID != member.CID {
			return h.createErrorResponse("You can only confirm your own applications")
		}
	}

	result, err := h.booking.Confirm(r.Context(), applicationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return h.createErrorResponse("Application not found")
		}
		h.log.Error("confirm failed", zap.Int64("application_id", applicationID), zap.Error(err))
		return h.createErrorResponse("Could not confirm, please try again")
	}

	if result.Stage != entity.ConfirmStageAlready && result.ReleasedChannel != "" {
		if err := h.messenger.ArchiveChannel(r.Context(), result.ReleasedChannel); err != nil {
			h.log.Warn("failed to archive fallback channel",
				zap.String("channel_id", result.ReleasedChannel), zap.Error(err))
		}
	}

	var text string
	switch result.Stage {
	case entity.ConfirmStageConfirmed:
		text = "✅ Slot confirmed. You will get a reminder with a final confirmation closer to the event."
	case entity.ConfirmStageFullConfirmed:
		text = "✅ Fully confirmed. See you on frequency!"
	default:
		text = "This slot is already fully confirmed, or not assigned to anyone."
	}
	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         text,
	}
}

func (h *SlackHandler) handleSelect(r *http.Request, cmd *slackcmd.Command, slashCmd *slack.SlashCommand) *slack.Msg {
	if msg := h.requireAdmin(slashCmd); msg != nil {
		return msg
	}
	if len(cmd.Args) < 1 {
		return h.createErrorResponse("Usage: `/staffing select <application-id>`")
	}
	applicationID, err := strconv.ParseInt(cmd.Args[0], 10, 64)
	if err != nil {
		return h.createErrorResponse("Application id must be a number")
	}

	result, err := h.booking.Select(r.Context(), applicationID)
	if err != nil {
		var conflict *domain.DoubleBookingError
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return h.createErrorResponse("Application not found")
		case errors.Is(err, domain.ErrNotPending):
			return h.createErrorResponse("Application is no longer pending")
		case errors.As(err, &conflict):
			return h.createErrorResponse(fmt.Sprintf("Member already holds %s in this block", conflict.Callsign))
		}
		h.log.Error("select failed", zap.Int64("application_id", applicationID), zap.Error(err))
		return h.createErrorResponse("Could not select, please try again")
	}

	v := result.Application
	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text: fmt.Sprintf("✅ %s assigned to *%s* (%s). Rejected %d competing application(s).",
			v.MemberName, v.Callsign, v.BlockLabel(),
			result.RejectedSameMember+result.RejectedSamePosition),
	}
}

func (h *SlackHandler) handleReserve(r *http.Request, cmd *slackcmd.Command, slashCmd *slack.SlashCommand) *slack.Msg {
	if msg := h.requireAdmin(slashCmd); msg != nil {
		return msg
	}
	if len(cmd.Args) < 3 {
		return h.createErrorResponse("Usage: `/staffing reserve <cid> <position-id> <block-id>`")
	}

	ids := make([]int64, 3)
	for i := 0; i < 3; i++ {
		id, err := strconv.ParseInt(cmd.Args[i], 10, 64)
		if err != nil {
			return h.createErrorResponse("All reserve arguments must be numbers")
		}
		ids[i] = id
	}

	result, err := h.booking.SelectReserve(r.Context(), ids[0], ids[1], ids[2])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return h.createErrorResponse("Member, position or block not found")
		}
		h.log.Error("reserve failed", zap.Int64("cid", ids[0]), zap.Error(err))
		return h.createErrorResponse("Could not assign from reserve, please try again")
	}

	v := result.Application
	text := fmt.Sprintf("✅ %s assigned to *%s* (%s) from the applicant pool.",
		v.MemberName, v.Callsign, v.BlockLabel())
	if result.PreviousHolder != nil {
		text += fmt.Sprintf(" Displaced %s.", result.PreviousHolder.DisplayName)
	}
	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         text,
	}
}

func (h *SlackHandler) handleEvent(r *http.Request, cmd *slackcmd.Command, slashCmd *slack.SlashCommand) *slack.Msg {
	if msg := h.requireAdmin(slashCmd); msg != nil {
		return msg
	}
	if len(cmd.Args) < 3 {
		return h.createErrorResponse("Usage: `/staffing event <start> <end> <name>` (times as `2006-01-02T15:04`, UTC)")
	}

	start, err := time.Parse(eventTimeLayout, cmd.Args[0])
	if err != nil {
		return h.createErrorResponse("Start time must look like `2026-09-12T18:00` (UTC)")
	}
	end, err := time.Parse(eventTimeLayout, cmd.Args[1])
	if err != nil {
		return h.createErrorResponse("End time must look like `2026-09-12T22:00` (UTC)")
	}
	name := strings.Join(cmd.Args[2:], " ")

	event, err := h.booking.CreateEvent(r.Context(), name, start, end)
	if err != nil {
		h.log.Error("event creation failed", zap.String("name", name), zap.Error(err))
		return h.createErrorResponse("Could not create the event. Check that the end time is after the start.")
	}

	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text: fmt.Sprintf("✅ Created event *%s* (id %d) with %d block(s) of %d minutes. Add positions with `/staffing position %d <icao> <role>`, then `/staffing open %d`.",
			event.Name, event.ID, event.TotalBlocks(), event.BlockDurationMinutes, event.ID, event.ID),
	}
}

func (h *SlackHandler) handleRole(cmd *slackcmd.Command, slashCmd *slack.SlashCommand) *slack.Msg {
	if msg := h.requireAdmin(slashCmd); msg != nil {
		return msg
	}
	if len(cmd.Args) < 2 {
		return h.createErrorResponse("Usage: `/staffing role <name> <min-rating>` (e.g. `/staffing role TWR S2`)")
	}

	name := strings.ToUpper(cmd.Args[0])
	rating, ok := domain.RatingFromName(strings.ToUpper(cmd.Args[1]))
	if !ok {
		return h.createErrorResponse("Unknown rating. Use one of OBS, S1, S2, S3, C1, C2, C3, I1, I2, I3, SUP, ADM")
	}

	role, created, err := h.booking.CreateRole(name, rating)
	if err != nil {
		h.log.Error("role creation failed", zap.String("name", name), zap.Error(err))
		return h.createErrorResponse("Could not create the role, please try again")
	}

	if !created {
		return &slack.Msg{
			ResponseType: slack.ResponseTypeEphemeral,
			Text:         fmt.Sprintf("Role *%s* already exists (min rating %s).", role.Name, role.MinRating),
		}
	}
	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         fmt.Sprintf("✅ Registered role *%s* (min rating %s).", role.Name, role.MinRating),
	}
}

func (h *SlackHandler) handlePosition(r *http.Request, cmd *slackcmd.Command, slashCmd *slack.SlashCommand) *slack.Msg {
	if msg := h.requireAdmin(slashCmd); msg != nil {
		return msg
	}
	if len(cmd.Args) < 3 {
		return h.createErrorResponse("Usage: `/staffing position <event-id> <icao> <role>` (e.g. `/staffing position 1 SBGR TWR`)")
	}

	eventID, err := strconv.ParseInt(cmd.Args[0], 10, 64)
	if err != nil {
		return h.createErrorResponse("Event id must be a number")
	}
	icao := cmd.Args[1]
	roleName := strings.ToUpper(cmd.Args[2])

	position, created, err := h.booking.AddPosition(r.Context(), eventID, icao, roleName)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return h.createErrorResponse("Event or role not found. Register roles with `/staffing role <name> <min-rating>`.")
		}
		h.log.Error("position creation failed", zap.Int64("event_id", eventID), zap.Error(err))
		return h.createErrorResponse("Could not add the position, please try again")
	}

	if !created {
		return &slack.Msg{
			ResponseType: slack.ResponseTypeEphemeral,
			Text:         fmt.Sprintf("Position *%s* already exists (id %d).", position.Callsign(), position.ID),
		}
	}
	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         fmt.Sprintf("✅ Added *%s* (id %d, min rating %s).", position.Callsign(), position.ID, position.MinRating),
	}
}

func (h *SlackHandler) handleBlocks(r *http.Request, cmd *slackcmd.Command, slashCmd *slack.SlashCommand) *slack.Msg {
	if msg := h.requireAdmin(slashCmd); msg != nil {
		return msg
	}
	if len(cmd.Args) < 2 {
		return h.createErrorResponse("Usage: `/staffing blocks <event-id> <minutes>`")
	}

	eventID, err := strconv.ParseInt(cmd.Args[0], 10, 64)
	if err != nil {
		return h.createErrorResponse("Event id must be a number")
	}
	minutes, err := strconv.Atoi(cmd.Args[1])
	if err != nil || minutes <= 0 {
		return h.createErrorResponse("Block duration must be a positive number of minutes")
	}

	count, err := h.booking.GenerateTimeBlocks(r.Context(), eventID, minutes)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return h.createErrorResponse("Event not found")
		}
		h.log.Error("blocks failed", zap.Int64("event_id", eventID), zap.Error(err))
		return h.createErrorResponse("Could not generate blocks, please try again")
	}

	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         fmt.Sprintf("✅ Generated %d block(s) of %d minutes. Existing applications for old blocks were removed.", count, minutes),
	}
}

func (h *SlackHandler) handleOpen(r *http.Request, cmd *slackcmd.Command, slashCmd *slack.SlashCommand) *slack.Msg {
	if msg := h.requireAdmin(slashCmd); msg != nil {
		return msg
	}
	eventID, msg := h.requireEventID(cmd, "open")
	if msg != nil {
		return msg
	}

	if err := h.booking.OpenBookings(r.Context(), eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return h.createErrorResponse("Event not found")
		}
		h.log.Error("open failed", zap.Int64("event_id", eventID), zap.Error(err))
		return h.createErrorResponse("Could not open bookings, please try again")
	}

	return &slack.Msg{
		ResponseType: slack.ResponseTypeInChannel,
		Text:         "📢 Bookings are open! Apply with `/staffing apply`.",
	}
}

func (h *SlackHandler) handleClose(r *http.Request, cmd *slackcmd.Command, slashCmd *slack.SlashCommand) *slack.Msg {
	if msg := h.requireAdmin(slashCmd); msg != nil {
		return msg
	}
	eventID, msg := h.requireEventID(cmd, "close")
	if msg != nil {
		return msg
	}

	rejected, err := h.booking.CloseBookings(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return h.createErrorResponse("Event not found")
		}
		h.log.Error("close failed", zap.Int64("event_id", eventID), zap.Error(err))
		return h.createErrorResponse("Could not close bookings, please try again")
	}

	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         fmt.Sprintf("✅ Bookings closed. %d remaining pending application(s) rejected. Run `/staffing notify %d rejection` to inform them.", rejected, eventID),
	}
}

func (h *SlackHandler) handleNotify(r *http.Request, cmd *slackcmd.Command, slashCmd *slack.SlashCommand) *slack.Msg {
	if msg := h.requireAdmin(slashCmd); msg != nil {
		return msg
	}
	if len(cmd.Args) < 2 {
		return h.createErrorResponse("Usage: `/staffing notify <event-id> lock|reminder|rejection`")
	}

	eventID, err := strconv.ParseInt(cmd.Args[0], 10, 64)
	if err != nil {
		return h.createErrorResponse("Event id must be a number")
	}

	kind := domain.NotificationKind(cmd.Args[1])
	switch kind {
	case domain.NotifyLock, domain.NotifyReminder, domain.NotifyRejection:
	default:
		return h.createErrorResponse("Notification kind must be lock, reminder or rejection")
	}

	armed, err := h.booking.ArmNotifyFlags(r.Context(), eventID, kind)
	if err != nil {
		h.log.Error("notify failed", zap.Int64("event_id", eventID), zap.String("kind", string(kind)), zap.Error(err))
		return h.createErrorResponse("Could not queue notifications, please try again")
	}

	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         fmt.Sprintf("✅ Queued %s notifications for %d application(s). Delivery runs in the background.", kind, armed),
	}
}

func (h *SlackHandler) handleAnnounce(r *http.Request, cmd *slackcmd.Command, slashCmd *slack.SlashCommand) *slack.Msg {
	if msg := h.requireAdmin(slashCmd); msg != nil {
		return msg
	}
	eventID, msg := h.requireEventID(cmd, "announce")
	if msg != nil {
		return msg
	}

	event, err := h.booking.Event(eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return h.createErrorResponse("Event not found")
		}
		return h.createErrorResponse("Could not load the event")
	}

	unfilled, err := h.booking.UnfilledSlots(eventID)
	if err != nil {
		h.log.Error("announce failed", zap.Int64("event_id", eventID), zap.Error(err))
		return h.createErrorResponse("Could not build the announcement")
	}

	channelID := event.AnnounceChannelID
	if channelID == "" {
		channelID = slashCmd.ChannelID
	}

	ts, err := h.messenger.PostAnnouncement(r.Context(), channelID, event.AnnounceMessageTS, messages.Announcement(event, unfilled))
	if err != nil {
		h.log.Error("announcement post failed", zap.Int64("event_id", eventID), zap.Error(err))
		return h.createErrorResponse("Could not post the announcement")
	}

	if err := h.booking.RecordAnnouncement(eventID, channelID, ts); err != nil {
		h.log.Error("failed to store announcement ref", zap.Int64("event_id", eventID), zap.Error(err))
	}

	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         fmt.Sprintf("✅ Announcement posted, %d slot(s) still open.", len(unfilled)),
	}
}

func (h *SlackHandler) handleStatus(cmd *slackcmd.Command, slashCmd *slack.SlashCommand) *slack.Msg {
	eventID, msg := h.requireEventID(cmd, "status")
	if msg != nil {
		return msg
	}

	event, err := h.booking.Event(eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return h.createErrorResponse("Event not found")
		}
		return h.createErrorResponse("Could not load the event")
	}

	positions, err := h.booking.AvailablePositions(eventID)
	if err != nil {
		return h.createErrorResponse("Could not load positions")
	}
	booked, err := h.booking.FullyBooked(eventID)
	if err != nil {
		return h.createErrorResponse("Could not load staffing state")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*%s*: status %s, %d block(s) of %d min\n",
		event.Name, event.Status, event.TotalBlocks(), event.BlockDurationMinutes)
	if booked {
		b.WriteString(":white_check_mark: Fully staffed.\n")
	} else if len(positions) == 0 {
		b.WriteString("No positions with open blocks.\n")
	} else {
		b.WriteString("*Positions with open blocks:*\n")
		for _, p := range positions {
			fmt.Fprintf(&b, "• [%d] %s (min %s)\n", p.ID, p.Callsign(), p.MinRating)
		}
	}
	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         b.String(),
	}
}

func (h *SlackHandler) handleHelp() *slack.Msg {
	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         slackcmd.GetHelpText(),
	}
}

func (h *SlackHandler) requireMember(slashCmd *slack.SlashCommand) (*entity.Member, *slack.Msg) {
	member, err := h.booking.MemberBySlackID(slashCmd.UserID)
	if err != nil {
		h.log.Error("member lookup failed", zap.String("slack_user", slashCmd.UserID), zap.Error(err))
		return nil, h.createErrorResponse("Could not look up your registration, please try again")
	}
	if member == nil {
		return nil, h.createErrorResponse("You are not registered yet. Run `/staffing register <cid> <rating>` first.")
	}
	return member, nil
}

func (h *SlackHandler) requireAdmin(slashCmd *slack.SlashCommand) *slack.Msg {
	if !h.cfg.IsAdmin(slashCmd.UserID) {
		return h.createErrorResponse("This command is restricted to the staffing team")
	}
	return nil
}

func (h *SlackHandler) requireEventID(cmd *slackcmd.Command, name string) (int64, *slack.Msg) {
	if len(cmd.Args) < 1 {
		return 0, h.createErrorResponse(fmt.Sprintf("Usage: `/staffing %s <event-id>`", name))
	}
	eventID, err := strconv.ParseInt(cmd.Args[0], 10, 64)
	if err != nil {
		return 0, h.createErrorResponse("Event id must be a number")
	}
	return eventID, nil
}

func parseIDList(raw string) ([]int64, error) {
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("empty id list")
	}
	return ids, nil
}

func (h *SlackHandler) createErrorResponse(text string) *slack.Msg {
	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         "❌ " + text,
	}
}

func (h *SlackHandler) respondWithError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.createErrorResponse(message))
}
