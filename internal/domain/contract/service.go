package contract

import (
	"context"
	"time"

	"github.com/vatbrz/staffing-bot/internal/domain"
	"github.com/vatbrz/staffing-bot/internal/domain/entity"
)

// BookingService is the allocation engine: application lifecycle, cascading
// conflict resolution, reserve replacement and bulk close-out.
type BookingService interface {
	RegisterMember(member *entity.Member) error
	MemberBySlackID(slackUserID string) (*entity.Member, error)

	CreateEvent(ctx context.Context, name string, start, end time.Time) (*entity.Event, error)
	CreateRole(name string, minRating domain.Rating) (*entity.RoleTemplate, bool, error)
	AddPosition(ctx context.Context, eventID int64, icao, roleName string) (*entity.Position, bool, error)

	Submit(ctx context.Context, cid int64, positionIDs, blockIDs []int64) (int, error)
	Select(ctx context.Context, applicationID int64) (*entity.SelectResult, error)
	SelectReserve(ctx context.Context, cid, positionID, blockID int64) (*entity.ReserveResult, error)
	Confirm(ctx context.Context, applicationID int64) (*entity.ConfirmResult, error)
	RevokeAll(ctx context.Context, cid, eventID int64) (*entity.RevokeResult, error)
	CloseBookings(ctx context.Context, eventID int64) (int64, error)
	ArmNotifyFlags(ctx context.Context, eventID int64, kind domain.NotificationKind) (int64, error)
	GenerateTimeBlocks(ctx context.Context, eventID int64, blockDurationMinutes int) (int, error)

	OpenBookings(ctx context.Context, eventID int64) error
	RecordAnnouncement(eventID int64, channelID, messageTS string) error

	// Read-only queries for the announcement projector and the chat UI
	OpenEvents() ([]*entity.Event, error)
	Event(eventID int64) (*entity.Event, error)
	Application(applicationID int64) (*entity.ApplicationView, error)
	AvailablePositions(eventID int64) ([]*entity.Position, error)
	Roster(eventID int64) ([]*entity.ApplicationView, error)
	UnfilledSlots(eventID int64) ([]*entity.Slot, error)
	ReserveCandidates(eventID, positionID, blockID int64) ([]*entity.Member, error)
	FullyBooked(eventID int64) (bool, error)
}
