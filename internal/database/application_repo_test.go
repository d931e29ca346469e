package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vatbrz/staffing-bot/internal/domain"
	"github.com/vatbrz/staffing-bot/internal/domain/entity"
)

func TestApplicationRepository_LockIfPending(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	repo := newApplicationRepository(db.conn)

	event, blocks := createTestEvent(t, db, 1)
	member := createTestMember(t, db, 1234567, domain.RatingS3)
	position := createTestPosition(t, db, event.ID, "SBGR", "TWR", domain.RatingS2)
	app := createTestApplication(t, db, member.CID, position.ID, blocks[0].ID, domain.StatusPending)

	locked, err := repo.LockIfPending(app.ID)
	require.NoError(t, err, "Failed to lock application")
	assert.True(t, locked)

	found, err := repo.GetByID(app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusLocked, found.Status)
	assert.True(t, found.NotifyLocked, "Locking should arm the lock flag")

	// Second attempt must fail the status guard
	locked, err = repo.LockIfPending(app.ID)
	require.NoError(t, err)
	assert.False(t, locked, "Already-locked application should not lock again")
}

func TestApplicationRepository_ConfirmIfClearsFallbackChannel(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	repo := newApplicationRepository(db.conn)

	event, blocks := createTestEvent(t, db, 1)
	member := createTestMember(t, db, 1234567, domain.RatingS3)
	position := createTestPosition(t, db, event.ID, "SBGR", "TWR", domain.RatingS2)
	app := createTestApplication(t, db, member.CID, position.ID, blocks[0].ID, domain.StatusLocked)

	require.NoError(t, repo.SetFallbackChannelForMemberEvent(member.CID, event.ID, "C999"))

	ok, err := repo.ConfirmIf(app.ID, domain.StatusLocked, domain.StatusConfirmed)
	require.NoError(t, err, "Failed to confirm application")
	assert.True(t, ok)

	found, err := repo.GetByID(app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, found.Status)
	assert.Empty(t, found.FallbackChannel, "Confirmation should release the fallback channel")

	// Wrong expected status
	ok, err = repo.ConfirmIf(app.ID, domain.StatusLocked, domain.StatusConfirmed)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestApplicationRepository_CascadeRejections(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	repo := newApplicationRepository(db.conn)

	event, blocks := createTestEvent(t, db, 2)
	alice := createTestMember(t, db, 1000001, domain.RatingS3)
	bob := createTestMember(t, db, 1000002, domain.RatingS3)
	twr := createTestPosition(t, db, event.ID, "SBGR", "TWR", domain.RatingS2)
	app := createTestPosition(t, db, event.ID, "SBGR", "APP", domain.RatingS3)

	chosen := createTestApplication(t, db, alice.CID, twr.ID, blocks[0].ID, domain.StatusPending)
	sameMemberSameBlock := createTestApplication(t, db, alice.CID, app.ID, blocks[0].ID, domain.StatusPending)
	sameMemberOtherBlock := createTestApplication(t, db, alice.CID, twr.ID, blocks[1].ID, domain.StatusPending)
	competitor := createTestApplication(t, db, bob.CID, twr.ID, blocks[0].ID, domain.StatusPending)

	rejected, err := repo.RejectOtherPendingByMemberBlock(alice.CID, blocks[0].ID, event.ID, chosen.ID)
	require.NoError(t, err, "Failed to cascade member rejections")
	assert.Equal(t, int64(1), rejected)

	rejected, err = repo.RejectOtherPendingBySlot(twr.ID, blocks[0].ID, chosen.ID)
	require.NoError(t, err, "Failed to cascade slot rejections")
	assert.Equal(t, int64(1), rejected)

	for _, tc := range []struct {
		id   int64
		want domain.ApplicationStatus
	}{
		{chosen.ID, domain.StatusPending},
		{sameMemberSameBlock.ID, domain.StatusRejected},
		{sameMemberOtherBlock.ID, domain.StatusPending},
		{competitor.ID, domain.StatusRejected},
	} {
		found, err := repo.GetByID(tc.id)
		require.NoError(t, err)
		assert.Equal(t, tc.want, found.Status)
	}
}

func TestApplicationRepository_UpsertLocked(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	repo := newApplicationRepository(db.conn)

	event, blocks := createTestEvent(t, db, 1)
	member := createTestMember(t, db, 1234567, domain.RatingS3)
	position := createTestPosition(t, db, event.ID, "SBGR", "TWR", domain.RatingS2)

	// No prior application: rows is created straight at locked
	app, err := repo.UpsertLocked(member.CID, position.ID, blocks[0].ID)
	require.NoError(t, err, "Failed to upsert application")
	assert.Equal(t, domain.StatusLocked, app.Status)
	assert.True(t, app.NotifyLocked)

	// A rejected application for the same triple is revived, not duplicated
	require.NoError(t, repo.ClearNotifyFlag(app.ID, domain.NotifyLock))
	_, err = repo.RejectExclusive(app.ID)
	require.NoError(t, err)

	again, err := repo.UpsertLocked(member.CID, position.ID, blocks[0].ID)
	require.NoError(t, err)
	assert.Equal(t, app.ID, again.ID, "Upsert should reuse the existing row")
	assert.Equal(t, domain.StatusLocked, again.Status)
	assert.True(t, again.NotifyLocked)
}

func TestApplicationRepository_ExclusiveQueries(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	repo := newApplicationRepository(db.conn)

	event, blocks := createTestEvent(t, db, 2)
	member := createTestMember(t, db, 1234567, domain.RatingS3)
	twr := createTestPosition(t, db, event.ID, "SBGR", "TWR", domain.RatingS2)
	app := createTestPosition(t, db, event.ID, "SBGR", "APP", domain.RatingS3)

	holder := createTestApplication(t, db, member.CID, twr.ID, blocks[0].ID, domain.StatusConfirmed)
	other := createTestApplication(t, db, member.CID, app.ID, blocks[0].ID, domain.StatusPending)

	conflict, err := repo.ExclusiveForMemberBlock(member.CID, blocks[0].ID, event.ID, other.ID)
	require.NoError(t, err, "Failed to query member block holding")
	require.NotNil(t, conflict, "Expected the confirmed slot to conflict")
	assert.Equal(t, "SBGR_TWR", conflict.Callsign)

	none, err := repo.ExclusiveForMemberBlock(member.CID, blocks[1].ID, event.ID, 0)
	require.NoError(t, err)
	assert.Nil(t, none, "No holding expected in the other block")

	slotHolder, err := repo.ExclusiveHolder(twr.ID, blocks[0].ID)
	require.NoError(t, err)
	require.NotNil(t, slotHolder)
	assert.Equal(t, holder.ID, slotHolder.ID)

	taken, err := repo.TakenSlots([]int64{twr.ID, app.ID}, []int64{blocks[0].ID, blocks[1].ID})
	require.NoError(t, err, "Failed to query taken slots")
	assert.True(t, taken[entity.SlotKey{PositionID: twr.ID, BlockID: blocks[0].ID}])
	assert.Len(t, taken, 1, "Only the confirmed slot should be taken")
}

func TestApplicationRepository_ArmAndListNotifications(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	repo := newApplicationRepository(db.conn)

	event, blocks := createTestEvent(t, db, 2)
	member := createTestMember(t, db, 1234567, domain.RatingS3)
	position := createTestPosition(t, db, event.ID, "SBGR", "TWR", domain.RatingS2)

	locked := createTestApplication(t, db, member.CID, position.ID, blocks[0].ID, domain.StatusLocked)
	confirmed := createTestApplication(t, db, member.CID, position.ID, blocks[1].ID, domain.StatusConfirmed)

	armed, err := repo.ArmNotifyFlags(event.ID, domain.NotifyReminder, []domain.ApplicationStatus{
		domain.StatusLocked, domain.StatusConfirmed, domain.StatusFullConfirmed,
	})
	require.NoError(t, err, "Failed to arm reminder flags")
	assert.Equal(t, int64(2), armed)

	// Arming again is a no-op on already-armed rows
	armed, err = repo.ArmNotifyFlags(event.ID, domain.NotifyReminder, []domain.ApplicationStatus{
		domain.StatusLocked, domain.StatusConfirmed, domain.StatusFullConfirmed,
	})
	require.NoError(t, err)
	assert.Zero(t, armed)

	reminders, err := repo.ListReminderNotifications()
	require.NoError(t, err, "Failed to list reminders")
	require.Len(t, reminders, 2)
	assert.Equal(t, locked.ID, reminders[0].ID)
	assert.Equal(t, confirmed.ID, reminders[1].ID)

	require.NoError(t, repo.ClearNotifyFlag(locked.ID, domain.NotifyReminder))

	reminders, err = repo.ListReminderNotifications()
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.Equal(t, confirmed.ID, reminders[0].ID)
}

func TestApplicationRepository_RejectionListSkipsAcceptedMembers(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	repo := newApplicationRepository(db.conn)

	event, blocks := createTestEvent(t, db, 2)
	alice := createTestMember(t, db, 1000001, domain.RatingS3)
	bob := createTestMember(t, db, 1000002, domain.RatingS3)
	twr := createTestPosition(t, db, event.ID, "SBGR", "TWR", domain.RatingS2)
	app := createTestPosition(t, db, event.ID, "SBGR", "APP", domain.RatingS3)

	// Alice got a slot, her other application was rejected in the cascade
	createTestApplication(t, db, alice.CID, twr.ID, blocks[0].ID, domain.StatusLocked)
	createTestApplication(t, db, alice.CID, app.ID, blocks[0].ID, domain.StatusRejected)
	// Bob was rejected everywhere
	bobRejected := createTestApplication(t, db, bob.CID, twr.ID, blocks[1].ID, domain.StatusRejected)

	armed, err := repo.ArmNotifyFlags(event.ID, domain.NotifyRejection, []domain.ApplicationStatus{domain.StatusRejected})
	require.NoError(t, err, "Failed to arm rejection flags")
	assert.Equal(t, int64(2), armed)

	views, err := repo.ListRejectionNotifications()
	require.NoError(t, err, "Failed to list rejection notifications")
	require.Len(t, views, 1, "Members holding a slot should not get a rejection notice")
	assert.Equal(t, bobRejected.ID, views[0].ID)
}

func TestApplicationRepository_DMFailureBookkeeping(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	repo := newApplicationRepository(db.conn)

	event, blocks := createTestEvent(t, db, 2)
	member := createTestMember(t, db, 1234567, domain.RatingS3)
	position := createTestPosition(t, db, event.ID, "SBGR", "TWR", domain.RatingS2)

	first := createTestApplication(t, db, member.CID, position.ID, blocks[0].ID, domain.StatusLocked)
	second := createTestApplication(t, db, member.CID, position.ID, blocks[1].ID, domain.StatusLocked)

	count, err := repo.IncrementDMFailure(first.ID)
	require.NoError(t, err, "Failed to increment dm failure count")
	assert.Equal(t, 1, count)

	count, err = repo.IncrementDMFailure(first.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, repo.MarkUnreachable(first.ID))
	require.NoError(t, repo.SetFallbackChannelForMemberEvent(member.CID, event.ID, "C555"))

	// The channel and the unreachable flag propagate to every application
	// the member has in the event.
	for _, id := range []int64{first.ID, second.ID} {
		found, err := repo.GetByID(id)
		require.NoError(t, err)
		assert.True(t, found.DMUnreachable)
		assert.Equal(t, "C555", found.FallbackChannel)
	}
}

func TestApplicationRepository_Projections(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	repo := newApplicationRepository(db.conn)

	event, blocks := createTestEvent(t, db, 2)
	alice := createTestMember(t, db, 1000001, domain.RatingC1)
	bob := createTestMember(t, db, 1000002, domain.RatingS2)
	twr := createTestPosition(t, db, event.ID, "SBGR", "TWR", domain.RatingS2)
	app := createTestPosition(t, db, event.ID, "SBGR", "APP", domain.RatingS3)

	// Alice holds TWR block 1; everything else is open
	createTestApplication(t, db, alice.CID, twr.ID, blocks[0].ID, domain.StatusConfirmed)
	createTestApplication(t, db, bob.CID, twr.ID, blocks[1].ID, domain.StatusPending)

	available, err := repo.AvailablePositions(event.ID)
	require.NoError(t, err, "Failed to get available positions")
	require.Len(t, available, 2, "Both positions still have open blocks")

	unfilled, err := repo.UnfilledSlots(event.ID)
	require.NoError(t, err, "Failed to get unfilled slots")
	assert.Len(t, unfilled, 3, "2 positions x 2 blocks minus 1 held slot")

	booked, err := repo.FullyBooked(event.ID)
	require.NoError(t, err)
	assert.False(t, booked)

	roster, err := repo.Roster(event.ID)
	require.NoError(t, err, "Failed to get roster")
	require.Len(t, roster, 1)
	assert.Equal(t, "SBGR_TWR", roster[0].Callsign)

	// Bob applied to the event and holds nothing in block 1, but his rating
	// is below APP's minimum; only candidates meeting the minimum are listed.
	candidates, err := repo.ReserveCandidates(event.ID, app.ID, blocks[0].ID)
	require.NoError(t, err, "Failed to get reserve candidates")
	require.Len(t, candidates, 0, "Alice holds the block, Bob lacks the rating")

	candidates, err = repo.ReserveCandidates(event.ID, twr.ID, blocks[1].ID)
	require.NoError(t, err)
	require.Len(t, candidates, 2, "Nobody holds block 2 and both meet TWR minimum")
	assert.Equal(t, alice.CID, candidates[0].CID, "Higher rating sorts first")
}
