package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vatbrz/staffing-bot/internal/database"
	"github.com/vatbrz/staffing-bot/internal/domain"
	"github.com/vatbrz/staffing-bot/internal/domain/contract"
	"github.com/vatbrz/staffing-bot/internal/domain/entity"
)

func setupEngine(t *testing.T) (contract.DataManager, *bookingService) {
	t.Helper()

	db := database.SetupTestDB(t)
	t.Cleanup(func() { database.CleanupTestDB(t, db) })

	dm := database.NewInstance(db)
	return dm, newBooking(dm, zap.NewNop())
}

func seedMember(t *testing.T, dm contract.DataManager, cid int64, rating domain.Rating) *entity.Member {
	t.Helper()

	member := &entity.Member{
		CID:         cid,
		SlackUserID: fmt.Sprintf("U%d", cid),
		DisplayName: fmt.Sprintf("Member %d", cid),
		Rating:      rating,
	}
	require.NoError(t, dm.Member().Create(member), "Failed to seed member")
	return member
}

func seedEvent(t *testing.T, dm contract.DataManager, blockCount int) (*entity.Event, []*entity.TimeBlock) {
	t.Helper()

	start := time.Date(2026, 9, 12, 18, 0, 0, 0, time.UTC)
	event := &entity.Event{
		Name:                 "Test Fly-In",
		StartTime:            start,
		EndTime:              start.Add(time.Duration(blockCount) * time.Hour),
		Status:               domain.EventOpen,
		BlockDurationMinutes: 60,
	}
	require.NoError(t, dm.Event().Create(event), "Failed to seed event")

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
	require.NoError(t, dm.Event().ReplaceBlocks(event.ID, blocks), "Failed to seed blocks")

	created, err := dm.Event().GetBlocks(event.ID)
	require.NoError(t, err, "Failed to load seeded blocks")
	require.Len(t, created, blockCount)

	return event, created
}

func seedPosition(t *testing.T, dm contract.DataManager, eventID int64, icao, roleName string, minRating domain.Rating) *entity.Position {
	t.Helper()

	var roleID int64
	roles, err := dm.Position().GetRoles()
	require.NoError(t, err, "Failed to list roles")
	for _, r := range roles {
		if r.Name == roleName {
			roleID = r.ID
			break
		}
	}
	if roleID == 0 {
		role := &entity.RoleTemplate{Name: roleName, MinRating: minRating}
		require.NoError(t, dm.Position().CreateRole(role), "Failed to seed role")
		roleID = role.ID
	}

	location, _, err := dm.Position().GetOrCreateLocation(eventID, icao)
	require.NoError(t, err, "Failed to seed location")

	position, _, err := dm.Position().GetOrCreatePosition(location.ID, roleID)
	require.NoError(t, err, "Failed to seed position")

	hydrated, err := dm.Position().GetByID(position.ID)
	require.NoError(t, err)
	require.NotNil(t, hydrated)
	return hydrated
}

func seedApplication(t *testing.T, dm contract.DataManager, cid, positionID, blockID int64, status domain.ApplicationStatus) *entity.Application {
	t.Helper()

	app := &entity.Application{
		MemberCID:  cid,
		PositionID: positionID,
		BlockID:    blockID,
		Status:     status,
	}
	require.NoError(t, dm.Application().Create(app), "Failed to seed application")
	return app
}
