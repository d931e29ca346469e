package messages

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vatbrz/staffing-bot/internal/domain"
	"github.com/vatbrz/staffing-bot/internal/domain/entity"
)

func sampleView() *entity.ApplicationView {
	start := time.Date(2026, 9, 12, 18, 0, 0, 0, time.UTC)
	v := &entity.ApplicationView{
		EventName:   "Test Fly-In",
		Callsign:    "SBGR_TWR",
		BlockNumber: 2,
		BlockStart:  start,
		BlockEnd:    start.Add(time.Hour),
	}
	v.ID = 42
	return v
}

func TestLockedDM(t *testing.T) {
	text := LockedDM(sampleView())
	assert.Contains(t, text, "SBGR_TWR")
	assert.Contains(t, text, "Block 2: 18:00-19:00z")
	assert.Contains(t, text, "/staffing confirm 42")
}

func TestReminderDM(t *testing.T) {
	text := ReminderDM(sampleView(), true)
	assert.Contains(t, text, "not confirmed yet")

	text = ReminderDM(sampleView(), false)
	assert.NotContains(t, text, "not confirmed yet")
}

func TestNoShowAlert(t *testing.T) {
	text := NoShowAlert("Member 1", []entity.NoShowDetail{
		{Callsign: "SBGR_TWR", Block: "Block 1: 18:00-19:00z"},
	})
	assert.Contains(t, text, "Member 1")
	assert.Contains(t, text, "SBGR_TWR, Block 1: 18:00-19:00z")
}

func TestAnnouncement(t *testing.T) {
	start := time.Date(2026, 9, 12, 18, 0, 0, 0, time.UTC)
	event := &entity.Event{Name: "Test Fly-In", StartTime: start, EndTime: start.Add(2 * time.Hour)}

	text := Announcement(event, nil)
	assert.Contains(t, text, "All positions are staffed")

	slot := &entity.Slot{
		Position: entity.Position{ICAO: "SBGR", RoleName: "TWR", MinRating: domain.RatingS2},
		Block:    entity.TimeBlock{BlockNumber: 1, StartTime: start, EndTime: start.Add(time.Hour)},
	}
	text = Announcement(event, []*entity.Slot{slot})
	assert.Contains(t, text, "SBGR_TWR")
	assert.Contains(t, text, "min rating S2")
	assert.Contains(t, text, "1 slot(s) still open")
}
