package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/vatbrz/staffing-bot/internal/domain"
	"github.com/vatbrz/staffing-bot/internal/domain/contract"
	"github.com/vatbrz/staffing-bot/mocks"
)

func setupDispatcher(t *testing.T) (contract.DataManager, *mocks.MockMessenger, *Dispatcher) {
	t.Helper()

	dm, _ := setupEngine(t)

	ctrl := gomock.NewController(t)
	messenger := mocks.NewMockMessenger(ctrl)

	return dm, messenger, newDispatcher(dm, messenger, zap.NewNop(), 30*time.Second)
}

func TestDispatcher_DeliveredClearsFlag(t *testing.T) {
	dm, messenger, d := setupDispatcher(t)

	member := seedMember(t, dm, 1234567, domain.RatingS3)
	event, blocks := seedEvent(t, dm, 1)
	twr := seedPosition(t, dm, event.ID, "SBGR", "TWR", domain.RatingS2)
	app := seedApplication(t, dm, member.CID, twr.ID, blocks[0].ID, domain.StatusLocked)

	_, err := dm.Application().ArmNotifyFlags(event.ID, domain.NotifyLock, []domain.ApplicationStatus{domain.StatusLocked})
	require.NoError(t, err)

	messenger.EXPECT().
		SendDirect(gomock.Any(), member.SlackUserID, gomock.Any()).
		Return(nil)

	d.RunCycle(context.Background())

	found, err := dm.Application().GetByID(app.ID)
	require.NoError(t, err)
	assert.False(t, found.NotifyLocked, "Delivered notification should clear the flag")

	// Flag cleared: the next cycle has nothing to send
	d.RunCycle(context.Background())
}

func TestDispatcher_TransientFailureKeepsFlag(t *testing.T) {
	dm, messenger, d := setupDispatcher(t)

	member := seedMember(t, dm, 1234567, domain.RatingS3)
	event, blocks := seedEvent(t, dm, 1)
	twr := seedPosition(t, dm, event.ID, "SBGR", "TWR", domain.RatingS2)
	app := seedApplication(t, dm, member.CID, twr.ID, blocks[0].ID, domain.StatusLocked)

	_, err := dm.Application().ArmNotifyFlags(event.ID, domain.NotifyLock, []domain.ApplicationStatus{domain.StatusLocked})
	require.NoError(t, err)

	messenger.EXPECT().
		SendDirect(gomock.Any(), member.SlackUserID, gomock.Any()).
		Return(errors.New("rate_limited"))

	d.RunCycle(context.Background())

	found, err := dm.Application().GetByID(app.ID)
	require.NoError(t, err)
	assert.True(t, found.NotifyLocked, "Transient failures must keep the flag armed")
	assert.Zero(t, found.DMFailureCount, "Transient failures do not count toward escalation")
}

func TestDispatcher_EscalatesAfterTwoRefusals(t *testing.T) {
	dm, messenger, d := setupDispatcher(t)

	member := seedMember(t, dm, 1234567, domain.RatingS3)
	event, blocks := seedEvent(t, dm, 2)
	twr := seedPosition(t, dm, event.ID, "SBGR", "TWR", domain.RatingS2)
	first := seedApplication(t, dm, member.CID, twr.ID, blocks[0].ID, domain.StatusLocked)
	second := seedApplication(t, dm, member.CID, twr.ID, blocks[1].ID, domain.StatusLocked)

	_, err := dm.Application().ArmNotifyFlags(event.ID, domain.NotifyLock, []domain.ApplicationStatus{domain.StatusLocked})
	require.NoError(t, err)

	// Cycle 1 refuses both DMs; cycle 2 refuses again, reaching the
	// threshold on the first row and escalating for the whole member.
	messenger.EXPECT().
		SendDirect(gomock.Any(), member.SlackUserID, gomock.Any()).
		Return(contract.ErrPermissionDenied).
		Times(4)
	messenger.EXPECT().
		CreateRestrictedChannel(gomock.Any(), gomock.Any(), member.SlackUserID).
		Return("C900", nil)
	// Channel intro on creation, the escalated first row in the same cycle,
	// then the second row on cycle 3
	var channelTexts []string
	messenger.EXPECT().
		SendToChannel(gomock.Any(), "C900", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, text string) error {
			channelTexts = append(channelTexts, text)
			return nil
		}).
		Times(3)

	d.RunCycle(context.Background())
	d.RunCycle(context.Background())

	// Escalation propagated to every application of the member in the event
	for _, id := range []int64{first.ID, second.ID} {
		found, err := dm.Application().GetByID(id)
		require.NoError(t, err)
		assert.True(t, found.DMUnreachable)
		assert.Equal(t, "C900", found.FallbackChannel)
	}

	// The triggering row's lock message lands in the channel in the
	// escalating cycle and its flag is cleared right away
	foundFirst, err := dm.Application().GetByID(first.ID)
	require.NoError(t, err)
	assert.False(t, foundFirst.NotifyLocked, "Escalation delivers the pending message and clears its flag")
	assert.Contains(t, channelTexts[1], fmt.Sprintf("/staffing confirm %d", first.ID))

	foundSecond, err := dm.Application().GetByID(second.ID)
	require.NoError(t, err)
	assert.True(t, foundSecond.NotifyLocked, "Other rows drain through the channel next cycle")

	d.RunCycle(context.Background())

	foundSecond, err = dm.Application().GetByID(second.ID)
	require.NoError(t, err)
	assert.False(t, foundSecond.NotifyLocked, "Channel delivery clears the flag")
}

func TestDispatcher_RecreatesDeletedFallbackChannel(t *testing.T) {
	dm, messenger, d := setupDispatcher(t)

	member := seedMember(t, dm, 1234567, domain.RatingS3)
	event, blocks := seedEvent(t, dm, 1)
	twr := seedPosition(t, dm, event.ID, "SBGR", "TWR", domain.RatingS2)
	app := seedApplication(t, dm, member.CID, twr.ID, blocks[0].ID, domain.StatusLocked)

	require.NoError(t, dm.Application().SetFallbackChannelForMemberEvent(member.CID, event.ID, "COLD"))
	_, err := dm.Application().ArmNotifyFlags(event.ID, domain.NotifyLock, []domain.ApplicationStatus{domain.StatusLocked})
	require.NoError(t, err)

	gomock.InOrder(
		messenger.EXPECT().
			SendToChannel(gomock.Any(), "COLD", gomock.Any()).
			Return(contract.ErrChannelGone),
		messenger.EXPECT().
			CreateRestrictedChannel(gomock.Any(), gomock.Any(), member.SlackUserID).
			Return("CNEW", nil),
		// Intro message, then the retried delivery
		messenger.EXPECT().
			SendToChannel(gomock.Any(), "CNEW", gomock.Any()).
			Return(nil).
			Times(2),
	)

	d.RunCycle(context.Background())

	found, err := dm.Application().GetByID(app.ID)
	require.NoError(t, err)
	assert.Equal(t, "CNEW", found.FallbackChannel)
	assert.False(t, found.NotifyLocked)
}

func TestDispatcher_ConfigurationMissingDefersDelivery(t *testing.T) {
	dm, messenger, d := setupDispatcher(t)

	member := seedMember(t, dm, 1234567, domain.RatingS3)
	event, blocks := seedEvent(t, dm, 1)
	twr := seedPosition(t, dm, event.ID, "SBGR", "TWR", domain.RatingS2)
	app := seedApplication(t, dm, member.CID, twr.ID, blocks[0].ID, domain.StatusLocked)

	// Known unreachable but without a channel yet
	require.NoError(t, dm.Application().SetFallbackChannelForMemberEvent(member.CID, event.ID, ""))
	_, err := dm.Application().ArmNotifyFlags(event.ID, domain.NotifyLock, []domain.ApplicationStatus{domain.StatusLocked})
	require.NoError(t, err)

	messenger.EXPECT().
		CreateRestrictedChannel(gomock.Any(), gomock.Any(), member.SlackUserID).
		Return("", contract.ErrConfigurationMissing)

	d.RunCycle(context.Background())

	found, err := dm.Application().GetByID(app.ID)
	require.NoError(t, err)
	assert.True(t, found.NotifyLocked, "Missing configuration defers delivery without dropping it")
	assert.Zero(t, found.DMFailureCount)
}

func TestDispatcher_RejectionDeduplicatedPerMemberEvent(t *testing.T) {
	dm, messenger, d := setupDispatcher(t)

	member := seedMember(t, dm, 1234567, domain.RatingS3)
	event, blocks := seedEvent(t, dm, 2)
	twr := seedPosition(t, dm, event.ID, "SBGR", "TWR", domain.RatingS2)
	first := seedApplication(t, dm, member.CID, twr.ID, blocks[0].ID, domain.StatusRejected)
	second := seedApplication(t, dm, member.CID, twr.ID, blocks[1].ID, domain.StatusRejected)

	_, err := dm.Application().ArmNotifyFlags(event.ID, domain.NotifyRejection, []domain.ApplicationStatus{domain.StatusRejected})
	require.NoError(t, err)

	// One message for the member, both flags cleared
	messenger.EXPECT().
		SendDirect(gomock.Any(), member.SlackUserID, gomock.Any()).
		Return(nil)

	d.RunCycle(context.Background())

	for _, id := range []int64{first.ID, second.ID} {
		found, err := dm.Application().GetByID(id)
		require.NoError(t, err)
		assert.False(t, found.NotifyRejected)
	}
}

func TestDispatcher_StartStop(t *testing.T) {
	_, _, d := setupDispatcher(t)

	d.Start()
	d.Start() // idempotent
	d.Stop()
	d.Stop()
}
