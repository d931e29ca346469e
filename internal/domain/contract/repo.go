package contract

import (
	"context"

	"github.com/vatbrz/staffing-bot/internal/domain"
	"github.com/vatbrz/staffing-bot/internal/domain/entity"
)

// DataManager aggregates all repository interfaces
type DataManager interface {
	WithTransaction(ctx context.Context, fn func(dm DataManager) error) error
	Member() MemberRepo
	Event() EventRepo
	Position() PositionRepo
	Application() ApplicationRepo
}

// MemberRepo defines the contract for the member repository
type MemberRepo interface {
	Create(member *entity.Member) error
	GetByCID(cid int64) (*entity.Member, error)
	GetBySlackID(slackUserID string) (*entity.Member, error)
	AddApplications(cid int64, n int) error
	AddParticipations(cid int64, n int) error
	AddCancellations(cid int64, n int) error
	AddNoShows(cid int64, n int) error
}

// EventRepo defines the contract for events and their time blocks
type EventRepo interface {
	Create(event *entity.Event) error
	GetByID(id int64) (*entity.Event, error)
	GetOpen() ([]*entity.Event, error)
	SetStatus(id int64, status domain.EventStatus) error
	SetBlockDuration(id int64, minutes int) error
	SetAnnouncementRef(id int64, channelID, messageTS string) error

	// ReplaceBlocks deletes every existing block for the event (applications
	// referencing them go with it) and inserts the given ones.
	ReplaceBlocks(eventID int64, blocks []*entity.TimeBlock) error
	GetBlocks(eventID int64) ([]*entity.TimeBlock, error)
	GetBlock(blockID int64) (*entity.TimeBlock, error)
}

// PositionRepo defines the contract for locations, role templates and positions
type PositionRepo interface {
	CreateRole(role *entity.RoleTemplate) error
	GetRoles() ([]*entity.RoleTemplate, error)
	GetOrCreateLocation(eventID int64, icao string) (*entity.Location, bool, error)
	GetOrCreatePosition(locationID, roleID int64) (*entity.Position, bool, error)
	GetByID(positionID int64) (*entity.Position, error)
	GetByEvent(eventID int64) ([]*entity.Position, error)
}

// ApplicationRepo defines the contract for the applications table, the one
// shared mutable resource between the allocation engine and the dispatcher.
// Status transitions belong to the engine; notify-flag clearing belongs to
// the dispatcher.
type ApplicationRepo interface {
	Create(app *entity.Application) error
	GetByID(id int64) (*entity.Application, error)
	GetViewByID(id int64) (*entity.ApplicationView, error)
	GetByTriple(cid, positionID, blockID int64) (*entity.Application, error)

	// TakenSlots returns the (position, block) pairs among the given ids that
	// are exclusively held (locked/confirmed/full_confirmed).
	TakenSlots(positionIDs, blockIDs []int64) (map[entity.SlotKey]bool, error)

	// ExclusiveForMemberBlock returns the member's exclusive application for
	// the block elsewhere in the event, excluding excludeID, or nil.
	ExclusiveForMemberBlock(cid, blockID, eventID, excludeID int64) (*entity.ApplicationView, error)

	// ExclusiveHolder returns the application exclusively holding the slot, or nil.
	ExclusiveHolder(positionID, blockID int64) (*entity.ApplicationView, error)

	// LockIfPending atomically moves the application pending -> locked and
	// arms the lock notify flag. Returns false when the row was not pending.
	LockIfPending(id int64) (bool, error)

	// ConfirmIf atomically moves expected -> next and clears the fallback
	// channel reference. Returns false when the row was not in expected.
	ConfirmIf(id int64, expected, next domain.ApplicationStatus) (bool, error)

	// RejectExclusive demotes an exclusive holder to rejected.
	RejectExclusive(id int64) (bool, error)

	// UpsertLocked creates or updates the triple's application straight to
	// locked with the lock notify flag armed, bypassing pending.
	UpsertLocked(cid, positionID, blockID int64) (*entity.Application, error)

	// Cascade rejections, each a single conditional UPDATE excluding one id.
	RejectOtherPendingByMemberBlock(cid, blockID, eventID, excludeID int64) (int64, error)
	RejectOtherPendingBySlot(positionID, blockID, excludeID int64) (int64, error)
	RejectPendingByEvent(eventID int64) (int64, error)

	ListByMemberEvent(cid, eventID int64, statuses ...domain.ApplicationStatus) ([]*entity.ApplicationView, error)
	DeleteByMemberEvent(cid, eventID int64, status domain.ApplicationStatus) (int64, error)
	UpdateStatusByMemberEvent(cid, eventID int64, from []domain.ApplicationStatus, to domain.ApplicationStatus) (int64, error)

	// ArmNotifyFlags bulk-arms one lane's flag for every application of the
	// event in one of the given statuses; returns the newly armed count.
	ArmNotifyFlags(eventID int64, kind domain.NotificationKind, statuses []domain.ApplicationStatus) (int64, error)

	// Dispatcher lane selections
	ListLockNotifications() ([]*entity.ApplicationView, error)
	ListReminderNotifications() ([]*entity.ApplicationView, error)
	ListRejectionNotifications() ([]*entity.ApplicationView, error)

	ClearNotifyFlag(id int64, kind domain.NotificationKind) error
	IncrementDMFailure(id int64) (int, error)
	MarkUnreachable(id int64) error
	// SetFallbackChannelForMemberEvent persists the channel on every
	// application by the member in the event and marks them unreachable.
	SetFallbackChannelForMemberEvent(cid, eventID int64, channelID string) error

	// Read-only projector queries
	AvailablePositions(eventID int64) ([]*entity.Position, error)
	Roster(eventID int64) ([]*entity.ApplicationView, error)
	UnfilledSlots(eventID int64) ([]*entity.Slot, error)
	ReserveCandidates(eventID, positionID, blockID int64) ([]*entity.Member, error)
	FullyBooked(eventID int64) (bool, error)
}
