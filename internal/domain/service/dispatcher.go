package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vatbrz/staffing-bot/internal/domain"
	"github.com/vatbrz/staffing-bot/internal/domain/contract"
	"github.com/vatbrz/staffing-bot/internal/domain/entity"
	"github.com/vatbrz/staffing-bot/internal/messages"
)

// memberEventKey dedupes deliveries within a single cycle. The durable
// notify flags remain the source of truth; these sets only prevent a member
// from getting the same message twice in one pass.
type memberEventKey struct {
	memberCID int64
	eventID   int64
}

// Dispatcher drains the armed notify flags in a sequential polling loop.
// It never changes application statuses, only the flags and the DM-failure
// bookkeeping.
type Dispatcher struct {
	dm        contract.DataManager
	messenger contract.Messenger
	log       *zap.Logger
	interval  time.Duration
	stopChan  chan struct{}
	doneChan  chan struct{}
	running   bool
}

func newDispatcher(dm contract.DataManager, messenger contract.Messenger, log *zap.Logger, interval time.Duration) *Dispatcher {
	return &Dispatcher{
		dm:        dm,
		messenger: messenger,
		log:       log.Named("dispatcher"),
		interval:  interval,
		stopChan:  make(chan struct{}),
		doneChan:  make(chan struct{}),
	}
}

func (d *Dispatcher) Start() {
	if d.running {
		return
	}
	d.running = true
	d.log.Info("dispatcher starting", zap.Duration("interval", d.interval))
	go d.mainLoop()
}

func (d *Dispatcher) Stop() {
	if !d.running {
		return
	}
	d.log.Info("dispatcher stopping")
	close(d.stopChan)
	<-d.doneChan
	d.running = false
}

func (d *Dispatcher) mainLoop() {
	defer close(d.doneChan)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.RunCycle(context.Background())
		case <-d.stopChan:
			return
		}
	}
}

// RunCycle processes the three lanes in a fixed order: lock notices first,
// then reminders, then rejections. Lanes run sequentially; a flag that
// cannot be cleared this cycle is simply picked up on the next one.
func (d *Dispatcher) RunCycle(ctx context.Context) {
	d.runLockLane(ctx)
	d.runReminderLane(ctx)
	d.runRejectionLane(ctx)
}

func (d *Dispatcher) runLockLane(ctx context.Context) {
	views, err := d.dm.Application().ListLockNotifications()
	if err != nil {
		d.log.Error("failed to list lock notifications", zap.Error(err))
		return
	}

	for _, v := range views {
		text := messages.LockedDM(v)
		if err := d.deliver(ctx, v, text); err != nil {
			d.handleDeliveryError(ctx, v, text, err, domain.NotifyLock)
			continue
		}
		if err := d.dm.Application().ClearNotifyFlag(v.ID, domain.NotifyLock); err != nil {
			d.log.Error("failed to clear lock flag", zap.Int64("application_id", v.ID), zap.Error(err))
		}
	}
}

func (d *Dispatcher) runReminderLane(ctx context.Context) {
	views, err := d.dm.Application().ListReminderNotifications()
	if err != nil {
		d.log.Error("failed to list reminder notifications", zap.Error(err))
		return
	}

	for _, v := range views {
		text := messages.ReminderDM(v, v.Status == domain.StatusLocked)
		if err := d.deliver(ctx, v, text); err != nil {
			d.handleDeliveryError(ctx, v, text, err, domain.NotifyReminder)
			continue
		}
		if err := d.dm.Application().ClearNotifyFlag(v.ID, domain.NotifyReminder); err != nil {
			d.log.Error("failed to clear reminder flag", zap.Int64("application_id", v.ID), zap.Error(err))
		}
	}
}

// runRejectionLane sends one message per member per event no matter how
// many of their applications were rejected. The list is ordered by member
// and event, so the first row of each group carries the send and the rest
// only get their flags cleared.
func (d *Dispatcher) runRejectionLane(ctx context.Context) {
	views, err := d.dm.Application().ListRejectionNotifications()
	if err != nil {
		d.log.Error("failed to list rejection notifications", zap.Error(err))
		return
	}

	sent := make(map[memberEventKey]bool)
	failed := make(map[memberEventKey]bool)

	for _, v := range views {
		key := memberEventKey{memberCID: v.MemberCID, eventID: v.EventID}
		if failed[key] {
			continue
		}

		if !sent[key] {
			text := messages.RejectionDM(v.EventName)
			if err := d.deliver(ctx, v, text); err != nil {
				// An escalation that lands the message in the fallback
				// channel counts as sent; its own flag is already cleared.
				if d.handleDeliveryError(ctx, v, text, err, domain.NotifyRejection) {
					sent[key] = true
					continue
				}
				failed[key] = true
				continue
			}
			sent[key] = true
		}

		if err := d.dm.Application().ClearNotifyFlag(v.ID, domain.NotifyRejection); err != nil {
			d.log.Error("failed to clear rejection flag", zap.Int64("application_id", v.ID), zap.Error(err))
		}
	}
}

// deliver routes a message to the member: via their fallback channel once
// DMs are known unreachable, via direct message otherwise.
func (d *Dispatcher) deliver(ctx context.Context, v *entity.ApplicationView, text string) error {
	if v.DMUnreachable {
		return d.deliverToFallback(ctx, v, text)
	}
	return d.messenger.SendDirect(ctx, v.SlackUserID, text)
}

func (d *Dispatcher) deliverToFallback(ctx context.Context, v *entity.ApplicationView, text string) error {
	channelID := v.FallbackChannel
	if channelID == "" {
		created, err := d.createFallbackChannel(ctx, v)
		if err != nil {
			return err
		}
		channelID = created
	}

	err := d.messenger.SendToChannel(ctx, channelID, text)
	if errors.Is(err, contract.ErrChannelGone) {
		// The member (or an admin) removed the channel. Recreate and retry
		// once; all of the member's rows for the event pick up the new ID.
		d.log.Warn("fallback channel gone, recreating",
			zap.Int64("cid", v.MemberCID),
			zap.String("channel_id", channelID),
		)
		created, cErr := d.createFallbackChannel(ctx, v)
		if cErr != nil {
			return cErr
		}
		return d.messenger.SendToChannel(ctx, created, text)
	}
	return err
}

func (d *Dispatcher) createFallbackChannel(ctx context.Context, v *entity.ApplicationView) (string, error) {
	// Slack channel names are unique per workspace, so a random suffix
	// avoids collisions with archived channels from earlier events.
	name := fmt.Sprintf("staffing-%d-%s", v.MemberCID, uuid.NewString()[:8])

	channelID, err := d.messenger.CreateRestrictedChannel(ctx, name, v.SlackUserID)
	if err != nil {
		return "", fmt.Errorf("failed to create fallback channel: %w", err)
	}

	if err := d.dm.Application().SetFallbackChannelForMemberEvent(v.MemberCID, v.EventID, channelID); err != nil {
		return "", fmt.Errorf("failed to store fallback channel: %w", err)
	}

	if err := d.messenger.SendToChannel(ctx, channelID, messages.FallbackChannelIntro(v.SlackUserID)); err != nil {
		d.log.Warn("failed to post fallback channel intro",
			zap.String("channel_id", channelID),
			zap.Error(err),
		)
	}

	d.log.Info("fallback channel created",
		zap.Int64("cid", v.MemberCID),
		zap.Int64("event_id", v.EventID),
		zap.String("channel_id", channelID),
	)
	return channelID, nil
}

// handleDeliveryError decides what a failed delivery means for the flag:
// closed DMs count toward escalation, missing workspace configuration is
// deferred, anything else is a transient error retried next cycle. Returns
// true when an escalation carried the message into the fallback channel and
// cleared the flag; in every other branch the flag stays set.
func (d *Dispatcher) handleDeliveryError(ctx context.Context, v *entity.ApplicationView, text string, err error, kind domain.NotificationKind) bool {
	switch {
	case errors.Is(err, contract.ErrConfigurationMissing):
		d.log.Error("delivery deferred, workspace configuration missing",
			zap.Int64("application_id", v.ID),
			zap.String("kind", string(kind)),
		)
		return false

	case errors.Is(err, contract.ErrPermissionDenied) && !v.DMUnreachable:
		// The lane snapshot may predate an escalation for the same member
		// earlier in this cycle; re-read before counting the failure.
		app, cErr := d.dm.Application().GetByID(v.ID)
		if cErr != nil || app == nil {
			d.log.Error("failed to reload application", zap.Int64("application_id", v.ID), zap.Error(cErr))
			return false
		}
		if app.DMUnreachable {
			return false
		}

		count, cErr := d.dm.Application().IncrementDMFailure(v.ID)
		if cErr != nil {
			d.log.Error("failed to record dm failure", zap.Int64("application_id", v.ID), zap.Error(cErr))
			return false
		}
		d.log.Warn("direct message refused",
			zap.Int64("cid", v.MemberCID),
			zap.Int64("application_id", v.ID),
			zap.Int("failures", count),
		)
		if count >= domain.DMFailureThreshold {
			return d.escalate(ctx, v, text, kind)
		}
		return false

	default:
		d.log.Warn("delivery failed, will retry",
			zap.Int64("application_id", v.ID),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		return false
	}
}

// escalate opens the member's fallback channel, which marks every one of
// their applications in the event unreachable, then sends the pending
// message into it and clears the triggering flag. The triggering row is
// flagged first so a failed channel creation still reroutes it; the other
// armed flags route through the channel on the next cycle. Returns true when
// the message landed in the channel.
func (d *Dispatcher) escalate(ctx context.Context, v *entity.ApplicationView, text string, kind domain.NotificationKind) bool {
	if err := d.dm.Application().MarkUnreachable(v.ID); err != nil {
		d.log.Error("failed to mark application unreachable",
			zap.Int64("application_id", v.ID),
			zap.Error(err),
		)
		return false
	}

	channelID, err := d.createFallbackChannel(ctx, v)
	if err != nil {
		// Channel creation is retried next cycle via deliverToFallback.
		d.log.Error("escalation channel creation failed",
			zap.Int64("cid", v.MemberCID),
			zap.Error(err),
		)
		return false
	}

	if err := d.messenger.SendToChannel(ctx, channelID, text); err != nil {
		d.log.Warn("escalation delivery failed, will retry via channel",
			zap.String("channel_id", channelID),
			zap.Error(err),
		)
		return false
	}

	if err := d.dm.Application().ClearNotifyFlag(v.ID, kind); err != nil {
		d.log.Error("failed to clear flag after escalation", zap.Int64("application_id", v.ID), zap.Error(err))
	}
	return true
}
