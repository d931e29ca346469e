package entity

// SlotKey identifies a (position, block) pair.
type SlotKey struct {
	PositionID int64
	BlockID    int64
}

// Slot pairs a position with a time block for unfilled-slot reports.
type Slot struct {
	Position Position
	Block    TimeBlock
}

// SelectResult is the audit breakdown of a successful selection cascade.
type SelectResult struct {
	Application *ApplicationView
	// Pending applications of the same member for the same block rejected
	RejectedSameMember int64
	// Pending applications of other members for the same slot rejected
	RejectedSamePosition int64
}

// ReserveResult reports a reserve selection, including the displaced holder
// when the slot was occupied.
type ReserveResult struct {
	Application    *ApplicationView
	PreviousHolder *Member
}

// ConfirmStage tells the caller which transition Confirm performed.
type ConfirmStage string

const (
	ConfirmStageConfirmed     ConfirmStage = "confirmed"
	ConfirmStageFullConfirmed ConfirmStage = "full_confirmed"
	ConfirmStageAlready       ConfirmStage = "already"
)

// ConfirmResult reports a confirmation. ReleasedChannel carries the fallback
// channel reference that was cleared, so the caller can archive it.
type ConfirmResult struct {
	Stage           ConfirmStage
	Application     *Application
	ReleasedChannel string
}

// NoShowDetail labels a slot abandoned after confirmation, for admin alerts.
type NoShowDetail struct {
	Callsign string
	Block    string
}

// RevokeResult is the breakdown of a member-wide revocation on one event.
type RevokeResult struct {
	PendingDeleted  int64
	LockedCancelled int64
	NoShowCount     int64
	NoShowDetails   []NoShowDetail
}

// Total is the number of applications the revocation touched.
func (r *RevokeResult) Total() int64 {
	return r.PendingDeleted + r.LockedCancelled + r.NoShowCount
}
