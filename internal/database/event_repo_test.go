package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vatbrz/staffing-bot/internal/domain"
)

func TestEventRepository_GetOpen(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	repo := newEventRepository(db.conn)

	event, _ := createTestEvent(t, db, 2)

	open, err := repo.GetOpen()
	require.NoError(t, err, "Failed to get open events")
	require.Len(t, open, 1)
	assert.Equal(t, event.ID, open[0].ID)

	require.NoError(t, repo.SetStatus(event.ID, domain.EventLocked))

	open, err = repo.GetOpen()
	require.NoError(t, err)
	assert.Empty(t, open, "Locked event should not be listed as open")
}

func TestEventRepository_SetAnnouncementRef(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	repo := newEventRepository(db.conn)
	event, _ := createTestEvent(t, db, 1)

	require.NoError(t, repo.SetAnnouncementRef(event.ID, "C123", "1724.5678"))

	found, err := repo.GetByID(event.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "C123", found.AnnounceChannelID)
	assert.Equal(t, "1724.5678", found.AnnounceMessageTS)
}

func TestEventRepository_ReplaceBlocksCascades(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	event, blocks := createTestEvent(t, db, 2)
	member := createTestMember(t, db, 1234567, domain.RatingS3)
	position := createTestPosition(t, db, event.ID, "SBGR", "TWR", domain.RatingS2)

	app := createTestApplication(t, db, member.CID, position.ID, blocks[0].ID, domain.StatusPending)

	// Regenerating blocks drops the old ones and their applications
	err := newEventRepository(db.conn).ReplaceBlocks(event.ID, blocks[:1])
	require.NoError(t, err, "Failed to replace blocks")

	found, err := newApplicationRepository(db.conn).GetByID(app.ID)
	require.NoError(t, err)
	assert.Nil(t, found, "Application should be removed with its block")

	remaining, err := newEventRepository(db.conn).GetBlocks(event.ID)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}
