package entity

import (
	"fmt"
	"time"

	"github.com/vatbrz/staffing-bot/internal/domain"
)

// Member is a network member that has interacted with the bot.
type Member struct {
	CID                 int64
	SlackUserID         string
	DisplayName         string
	Rating              domain.Rating
	TotalApplications   int
	TotalParticipations int
	TotalNoShows        int
	TotalCancellations  int
	AdminNotes          string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Event is a staffed event imported from the network calendar.
type Event struct {
	ID                   int64
	Name                 string
	StartTime            time.Time
	EndTime              time.Time
	Status               domain.EventStatus
	BlockDurationMinutes int
	// Announcement message reference (one summary message per event)
	AnnounceChannelID string
	AnnounceMessageTS string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// DurationMinutes returns the event window length in whole minutes.
func (e *Event) DurationMinutes() int {
	return int(e.EndTime.Sub(e.StartTime).Minutes())
}

// TotalBlocks is the number of whole blocks that fit in the event window,
// zero when the block duration is non-positive.
func (e *Event) TotalBlocks() int {
	if e.BlockDurationMinutes <= 0 {
		return 0
	}
	return e.DurationMinutes() / e.BlockDurationMinutes
}

// Location is an ICAO location staffed during an event (e.g. SBGR, SBSP).
type Location struct {
	ID      int64
	EventID int64
	ICAO    string
}

// RoleTemplate is a reusable position role (TWR, APP, CTR...) carrying the
// minimum rating required to staff it.
type RoleTemplate struct {
	ID          int64
	Name        string
	MinRating   domain.Rating
	Description string
}

// Position is a staffed role at a location for an event.
type Position struct {
	ID         int64
	LocationID int64
	RoleID     int64

	// Denormalized for display, populated by repository joins
	EventID   int64
	ICAO      string
	RoleName  string
	MinRating domain.Rating
}

// Callsign is the position's display name, location code + role code.
func (p *Position) Callsign() string {
	return fmt.Sprintf("%s_%s", p.ICAO, p.RoleName)
}

// TimeBlock is a fixed-length subdivision of an event window.
type TimeBlock struct {
	ID          int64
	EventID     int64
	BlockNumber int
	StartTime   time.Time
	EndTime     time.Time
}

// Label formats the block for user-facing messages, e.g.
// "Block 2: 23:00-00:00z".
func (b *TimeBlock) Label() string {
	return fmt.Sprintf("Block %d: %s-%sz",
		b.BlockNumber,
		b.StartTime.UTC().Format("15:04"),
		b.EndTime.UTC().Format("15:04"),
	)
}

// Application is a member's application for a (position, block) slot.
type Application struct {
	ID         int64
	MemberCID  int64
	PositionID int64
	BlockID    int64
	Status     domain.ApplicationStatus

	// Ready-to-notify flags, one per dispatcher lane. Armed by the engine,
	// cleared by the dispatcher after durable delivery.
	NotifyLocked    bool
	NotifyReminder  bool
	NotifyRejected  bool
	DMFailureCount  int
	DMUnreachable   bool
	FallbackChannel string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ApplicationView is an application hydrated with the member, position and
// block data the dispatcher and handlers need to build messages.
type ApplicationView struct {
	Application

	EventID     int64
	EventName   string
	ICAO        string
	Callsign    string
	BlockNumber int
	BlockStart  time.Time
	BlockEnd    time.Time

	MemberName   string
	SlackUserID  string
	MemberRating domain.Rating
}

// BlockLabel formats the view's block the same way TimeBlock.Label does.
func (v *ApplicationView) BlockLabel() string {
	b := TimeBlock{BlockNumber: v.BlockNumber, StartTime: v.BlockStart, EndTime: v.BlockEnd}
	return b.Label()
}
