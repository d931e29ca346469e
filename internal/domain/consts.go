package domain

// ATC ratings, ordinal scale used by the network (1 = observer, 12 = administrator).
type Rating int

const (
	RatingOBS Rating = iota + 1
	RatingS1
	RatingS2
	RatingS3
	RatingC1
	RatingC2
	RatingC3
	RatingI1
	RatingI2
	RatingI3
	RatingSUP
	RatingADM
)

// RatingNames maps rating values to their short display names
var RatingNames = map[Rating]string{
	RatingOBS: "OBS",
	RatingS1:  "S1",
	RatingS2:  "S2",
	RatingS3:  "S3",
	RatingC1:  "C1",
	RatingC2:  "C2",
	RatingC3:  "C3",
	RatingI1:  "I1",
	RatingI2:  "I2",
	RatingI3:  "I3",
	RatingSUP: "SUP",
	RatingADM: "ADM",
}

func (r Rating) String() string {
	if name, ok := RatingNames[r]; ok {
		return name
	}
	return "OBS"
}

// RatingFromName resolves a short display name like "S3" back to its value.
func RatingFromName(name string) (Rating, bool) {
	for rating, n := range RatingNames {
		if n == name {
			return rating, true
		}
	}
	return 0, false
}

// Event lifecycle statuses
type EventStatus string

const (
	EventDraft    EventStatus = "draft"
	EventOpen     EventStatus = "open"
	EventReview   EventStatus = "review"
	EventLocked   EventStatus = "locked"
	EventArchived EventStatus = "archived"
)

// Application lifecycle statuses
type ApplicationStatus string

const (
	StatusPending       ApplicationStatus = "pending"
	StatusLocked        ApplicationStatus = "locked"
	StatusConfirmed     ApplicationStatus = "confirmed"
	StatusFullConfirmed ApplicationStatus = "full_confirmed"
	StatusRejected      ApplicationStatus = "rejected"
	StatusCancelled     ApplicationStatus = "cancelled"
	StatusNoShow        ApplicationStatus = "no_show"
)

// ExclusiveStatuses are the statuses that hold a (position, block) slot.
// At most one application per slot, and one per (member, block), may carry one.
var ExclusiveStatuses = []ApplicationStatus{
	StatusLocked,
	StatusConfirmed,
	StatusFullConfirmed,
}

// NotificationKind identifies one of the three independent notify lanes
type NotificationKind string

const (
	NotifyLock      NotificationKind = "lock"
	NotifyReminder  NotificationKind = "reminder"
	NotifyRejection NotificationKind = "rejection"
)

// DefaultBlockDurationMinutes is used when an event is imported without
// an explicit block size.
const DefaultBlockDurationMinutes = 60

// DMFailureThreshold is the number of failed direct-message attempts after
// which the dispatcher escalates to a fallback channel.
const DMFailureThreshold = 2
