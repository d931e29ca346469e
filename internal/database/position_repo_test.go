package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vatbrz/staffing-bot/internal/domain"
)

func TestPositionRepository_GetOrCreate(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	repo := newPositionRepository(db.conn)
	event, _ := createTestEvent(t, db, 1)

	location, created, err := repo.GetOrCreateLocation(event.ID, "sbgr")
	require.NoError(t, err, "Failed to create location")
	assert.True(t, created)
	assert.Equal(t, "SBGR", location.ICAO, "ICAO should be stored upper case")

	again, created, err := repo.GetOrCreateLocation(event.ID, "SBGR")
	require.NoError(t, err)
	assert.False(t, created, "Second call should reuse the location")
	assert.Equal(t, location.ID, again.ID)
}

func TestPositionRepository_Callsign(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	event, _ := createTestEvent(t, db, 1)
	position := createTestPosition(t, db, event.ID, "SBGR", "TWR", domain.RatingS2)

	assert.Equal(t, "SBGR_TWR", position.Callsign())
	assert.Equal(t, event.ID, position.EventID)
	assert.Equal(t, domain.RatingS2, position.MinRating)
}

func TestPositionRepository_GetByEvent(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	event, _ := createTestEvent(t, db, 1)
	createTestPosition(t, db, event.ID, "SBSP", "TWR", domain.RatingS2)
	createTestPosition(t, db, event.ID, "SBGR", "APP", domain.RatingS3)
	createTestPosition(t, db, event.ID, "SBGR", "TWR", domain.RatingS2)

	positions, err := newPositionRepository(db.conn).GetByEvent(event.ID)
	require.NoError(t, err, "Failed to get positions by event")
	require.Len(t, positions, 3)

	// Ordered by ICAO then role name
	assert.Equal(t, "SBGR_APP", positions[0].Callsign())
	assert.Equal(t, "SBGR_TWR", positions[1].Callsign())
	assert.Equal(t, "SBSP_TWR", positions[2].Callsign())
}
