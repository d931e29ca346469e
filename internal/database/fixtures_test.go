package database

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vatbrz/staffing-bot/internal/domain"
	"github.com/vatbrz/staffing-bot/internal/domain/entity"
)

func createTestMember(t *testing.T, db *DB, cid int64, rating domain.Rating) *entity.Member {
	t.Helper()

	member := &entity.Member{
		CID:         cid,
		SlackUserID: fmt.Sprintf("U%d", cid),
		DisplayName: fmt.Sprintf("Member %d", cid),
		Rating:      rating,
	}
	err := newMemberRepository(db.conn).Create(member)
	require.NoError(t, err, "Failed to create test member")

	return member
}

// createTestEvent creates an open event with the given number of one-hour
// blocks and returns the blocks with their ids populated.
func createTestEvent(t *testing.T, db *DB, blockCount int) (*entity.Event, []*entity.TimeBlock) {
	t.Helper()

	repo := newEventRepository(db.conn)

	start := time.Date(2026, 9, 12, 18, 0, 0, 0, time.UTC)
	event := &entity.Event{
		Name:                 "Test Fly-In",
		StartTime:            start,
		EndTime:              start.Add(time.Duration(blockCount) * time.Hour),
		Status:               domain.EventOpen,
		BlockDurationMinutes: 60,
	}
	err := repo.Create(event)
	require.NoError(t, err, "Failed to create test event")

	blocks := make([]*entity.TimeBlock, blockCount)
	for i := range blocks {
		blockStart := start.Add(time.Duration(i) * time.Hour)
		blocks[i] = &entity.TimeBlock{
			EventID:     event.ID,
			BlockNumber: i + 1,
			StartTime:   blockStart,
			EndTime:     blockStart.Add(time.Hour),
		}
	}
	err = repo.ReplaceBlocks(event.ID, blocks)
	require.NoError(t, err, "Failed to create test blocks")

	created, err := repo.GetBlocks(event.ID)
	require.NoError(t, err, "Failed to load test blocks")
	require.Len(t, created, blockCount)

	return event, created
}

func createTestPosition(t *testing.T, db *DB, eventID int64, icao, roleName string, minRating domain.Rating) *entity.Position {
	t.Helper()

	repo := newPositionRepository(db.conn)

	var roleID int64
	roles, err := repo.GetRoles()
	require.NoError(t, err, "Failed to list roles")
	for _, r := range roles {
		if r.Name == roleName {
			roleID = r.ID
			break
		}
	}
	if roleID == 0 {
		role := &entity.RoleTemplate{Name: roleName, MinRating: minRating}
		err = repo.CreateRole(role)
		require.NoError(t, err, "Failed to create test role")
		roleID = role.ID
	}

	location, _, err := repo.GetOrCreateLocation(eventID, icao)
	require.NoError(t, err, "Failed to create test location")

	position, _, err := repo.GetOrCreatePosition(location.ID, roleID)
	require.NoError(t, err, "Failed to create test position")

	hydrated, err := repo.GetByID(position.ID)
	require.NoError(t, err, "Failed to load test position")
	require.NotNil(t, hydrated)

	return hydrated
}

func createTestApplication(t *testing.T, db *DB, cid, positionID, blockID int64, status domain.ApplicationStatus) *entity.Application {
	t.Helper()

	app := &entity.Application{
		MemberCID:  cid,
		PositionID: positionID,
		BlockID:    blockID,
		Status:     status,
	}
	err := newApplicationRepository(db.conn).Create(app)
	require.NoError(t, err, "Failed to create test application")

	return app
}
