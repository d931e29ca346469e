package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vatbrz/staffing-bot/internal/domain"
	"github.com/vatbrz/staffing-bot/internal/domain/contract"
	"github.com/vatbrz/staffing-bot/internal/domain/entity"
)

// bookingService is the allocation engine. It owns every application status
// transition; the dispatcher only ever clears notify flags.
type bookingService struct {
	dm  contract.DataManager
	log *zap.Logger
}

func newBooking(dm contract.DataManager, log *zap.Logger) *bookingService {
	return &bookingService{
		dm:  dm,
		log: log.Named("booking"),
	}
}

func (s *bookingService) RegisterMember(member *entity.Member) error {
	existing, err := s.dm.Member().GetByCID(member.CID)
	if err != nil {
		return fmt.Errorf("failed to check member: %w", err)
	}
	if existing != nil {
		*member = *existing
		return nil
	}

	if err := s.dm.Member().Create(member); err != nil {
		return err
	}

	s.log.Info("member registered",
		zap.Int64("cid", member.CID),
		zap.String("rating", member.Rating.String()),
	)
	return nil
}

func (s *bookingService) MemberBySlackID(slackUserID string) (*entity.Member, error) {
	return s.dm.Member().GetBySlackID(slackUserID)
}

// Submit creates pending applications for every (position, block) pair that
// is not already exclusively held. Idempotent: existing triples are skipped.
func (s *bookingService) Submit(ctx context.Context, cid int64, positionIDs, blockIDs []int64) (int, error) {
	member, err := s.dm.Member().GetByCID(cid)
	if err != nil {
		return 0, err
	}
	if member == nil {
		return 0, domain.ErrNotFound
	}

	created := 0
	err = s.dm.WithTransaction(ctx, func(tx contract.DataManager) error {
		for _, positionID := range positionIDs {
			position, err := tx.Position().GetByID(positionID)
			if err != nil {
				return err
			}
			if position == nil {
				return domain.ErrNotFound
			}
			if member.Rating < position.MinRating {
				return domain.ErrInsufficientRating
			}

			event, err := tx.Event().GetByID(position.EventID)
			if err != nil {
				return err
			}
			if event == nil {
				return domain.ErrNotFound
			}
			if event.Status != domain.EventOpen {
				return domain.ErrEventNotOpen
			}
		}

		taken, err := tx.Application().TakenSlots(positionIDs, blockIDs)
		if err != nil {
			return err
		}

		for _, positionID := range positionIDs {
			for _, blockID := range blockIDs {
				if taken[entity.SlotKey{PositionID: positionID, BlockID: blockID}] {
					continue
				}

				existing, err := tx.Application().GetByTriple(cid, positionID, blockID)
				if err != nil {
					return err
				}
				if existing != nil {
					continue
				}

				app := &entity.Application{
					MemberCID:  cid,
					PositionID: positionID,
					BlockID:    blockID,
					Status:     domain.StatusPending,
				}
				if err := tx.Application().Create(app); err != nil {
					return err
				}
				created++
			}
		}

		if created > 0 {
			return tx.Member().AddApplications(cid, created)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("applications submitted",
		zap.Int64("cid", cid),
		zap.Int("created", created),
	)
	return created, nil
}

// Select locks a pending application into its slot and cascades rejections
// over the competing pending applications, all in one transaction. A member
// already holding a slot for the block fails with DoubleBookingError before
// any write happens.
func (s *bookingService) Select(ctx context.Context, applicationID int64) (*entity.SelectResult, error) {
	result := &entity.SelectResult{}

	err := s.dm.WithTransaction(ctx, func(tx contract.DataManager) error {
		view, err := tx.Application().GetViewByID(applicationID)
		if err != nil {
			return err
		}
		if view == nil {
			return domain.ErrNotFound
		}
		if view.Status != domain.StatusPending {
			return domain.ErrNotPending
		}

		conflict, err := tx.Application().ExclusiveForMemberBlock(
			view.MemberCID, view.BlockID, view.EventID, view.ID,
		)
		if err != nil {
			return err
		}
		if conflict != nil {
			return &domain.DoubleBookingError{Callsign: conflict.Callsign}
		}

		locked, err := tx.Application().LockIfPending(view.ID)
		if err != nil {
			return err
		}
		if !locked {
			return domain.ErrNotPending
		}

		// Same member, same block, other positions
		result.RejectedSameMember, err = tx.Application().RejectOtherPendingByMemberBlock(
			view.MemberCID, view.BlockID, view.EventID, view.ID,
		)
		if err != nil {
			return err
		}

		// Other members, same slot
		result.RejectedSamePosition, err = tx.Application().RejectOtherPendingBySlot(
			view.PositionID, view.BlockID, view.ID,
		)
		if err != nil {
			return err
		}

		view.Status = domain.StatusLocked
		view.NotifyLocked = true
		result.Application = view
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("application selected",
		zap.Int64("application_id", applicationID),
		zap.String("callsign", result.Application.Callsign),
		zap.Int64("rejected_same_member", result.RejectedSameMember),
		zap.Int64("rejected_same_position", result.RejectedSamePosition),
	)
	return result, nil
}

// SelectReserve fills a slot from the full applicant pool, bypassing
// pending. A current exclusive holder is demoted to rejected and reported
// back so the caller can message them about the displacement.
func (s *bookingService) SelectReserve(ctx context.Context, cid, positionID, blockID int64) (*entity.ReserveResult, error) {
	result := &entity.ReserveResult{}

	err := s.dm.WithTransaction(ctx, func(tx contract.DataManager) error {
		member, err := tx.Member().GetByCID(cid)
		if err != nil {
			return err
		}
		if member == nil {
			return domain.ErrNotFound
		}

		position, err := tx.Position().GetByID(positionID)
		if err != nil {
			return err
		}
		if position == nil {
			return domain.ErrNotFound
		}

		block, err := tx.Event().GetBlock(blockID)
		if err != nil {
			return err
		}
		if block == nil {
			return domain.ErrNotFound
		}
		// The block must belong to the same event as the position, or the
		// resulting application would be invisible to every event-scoped query.
		if block.EventID != position.EventID {
			return domain.ErrNotFound
		}

		holder, err := tx.Application().ExclusiveHolder(positionID, blockID)
		if err != nil {
			return err
		}
		if holder != nil {
			if _, err := tx.Application().RejectExclusive(holder.ID); err != nil {
				return err
			}
			if err := tx.Member().AddCancellations(holder.MemberCID, 1); err != nil {
				return err
			}
			result.PreviousHolder, err = tx.Member().GetByCID(holder.MemberCID)
			if err != nil {
				return err
			}
		}

		app, err := tx.Application().UpsertLocked(cid, positionID, blockID)
		if err != nil {
			return err
		}

		if _, err := tx.Application().RejectOtherPendingByMemberBlock(
			cid, blockID, position.EventID, app.ID,
		); err != nil {
			return err
		}

		result.Application, err = tx.Application().GetViewByID(app.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	fields := []zap.Field{
		zap.Int64("cid", cid),
		zap.String("callsign", result.Application.Callsign),
		zap.Int("block", result.Application.BlockNumber),
	}
	if result.PreviousHolder != nil {
		fields = append(fields, zap.Int64("displaced_cid", result.PreviousHolder.CID))
	}
	s.log.Info("reserve selected", fields...)
	return result, nil
}

// Confirm advances locked -> confirmed -> full_confirmed and clears the
// fallback channel reference once the message loop is closed. Calling it on
// an application already at or past full_confirmed reports "already".
func (s *bookingService) Confirm(ctx context.Context, applicationID int64) (*entity.ConfirmResult, error) {
	result := &entity.ConfirmResult{}

	err := s.dm.WithTransaction(ctx, func(tx contract.DataManager) error {
		app, err := tx.Application().GetByID(applicationID)
		if err != nil {
			return err
		}
		if app == nil {
			return domain.ErrNotFound
		}

		released := app.FallbackChannel

		switch app.Status {
		case domain.StatusLocked:
			ok, err := tx.Application().ConfirmIf(app.ID, domain.StatusLocked, domain.StatusConfirmed)
			if err != nil {
				return err
			}
			if !ok {
				result.Stage = entity.ConfirmStageAlready
				break
			}
			if err := tx.Member().AddParticipations(app.MemberCID, 1); err != nil {
				return err
			}
			result.Stage = entity.ConfirmStageConfirmed
			result.ReleasedChannel = released

		case domain.StatusConfirmed:
			ok, err := tx.Application().ConfirmIf(app.ID, domain.StatusConfirmed, domain.StatusFullConfirmed)
			if err != nil {
				return err
			}
			if !ok {
				result.Stage = entity.ConfirmStageAlready
				break
			}
			result.Stage = entity.ConfirmStageFullConfirmed
			result.ReleasedChannel = released

		default:
			result.Stage = entity.ConfirmStageAlready
		}

		result.Application, err = tx.Application().GetByID(app.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("application confirmed",
		zap.Int64("application_id", applicationID),
		zap.String("stage", string(result.Stage)),
	)
	return result, nil
}

// RevokeAll tears down a member's involvement in one event: pending rows are
// deleted outright, locked rows become cancelled, confirmed rows become
// no-shows (with slot labels captured for admin alerting).
func (s *bookingService) RevokeAll(ctx context.Context, cid, eventID int64) (*entity.RevokeResult, error) {
	result := &entity.RevokeResult{}

	err := s.dm.WithTransaction(ctx, func(tx contract.DataManager) error {
		noShows, err := tx.Application().ListByMemberEvent(
			cid, eventID, domain.StatusConfirmed, domain.StatusFullConfirmed,
		)
		if err != nil {
			return err
		}
		for _, v := range noShows {
			result.NoShowDetails = append(result.NoShowDetails, entity.NoShowDetail{
				Callsign: v.Callsign,
				Block:    v.BlockLabel(),
			})
		}

		result.PendingDeleted, err = tx.Application().DeleteByMemberEvent(cid, eventID, domain.StatusPending)
		if err != nil {
			return err
		}

		result.LockedCancelled, err = tx.Application().UpdateStatusByMemberEvent(
			cid, eventID,
			[]domain.ApplicationStatus{domain.StatusLocked},
			domain.StatusCancelled,
		)
		if err != nil {
			return err
		}

		result.NoShowCount, err = tx.Application().UpdateStatusByMemberEvent(
			cid, eventID,
			[]domain.ApplicationStatus{domain.StatusConfirmed, domain.StatusFullConfirmed},
			domain.StatusNoShow,
		)
		if err != nil {
			return err
		}

		if cancelled := result.PendingDeleted + result.LockedCancelled; cancelled > 0 {
			if err := tx.Member().AddCancellations(cid, int(cancelled)); err != nil {
				return err
			}
		}
		if result.NoShowCount > 0 {
			if err := tx.Member().AddNoShows(cid, int(result.NoShowCount)); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("applications revoked",
		zap.Int64("cid", cid),
		zap.Int64("event_id", eventID),
		zap.Int64("pending_deleted", result.PendingDeleted),
		zap.Int64("locked_cancelled", result.LockedCancelled),
		zap.Int64("no_shows", result.NoShowCount),
	)
	return result, nil
}

// CloseBookings rejects every remaining pending application of the event and
// locks the event.
func (s *bookingService) CloseBookings(ctx context.Context, eventID int64) (int64, error) {
	var rejected int64

	err := s.dm.WithTransaction(ctx, func(tx contract.DataManager) error {
		event, err := tx.Event().GetByID(eventID)
		if err != nil {
			return err
		}
		if event == nil {
			return domain.ErrNotFound
		}

		rejected, err = tx.Application().RejectPendingByEvent(eventID)
		if err != nil {
			return err
		}

		return tx.Event().SetStatus(eventID, domain.EventLocked)
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("bookings closed",
		zap.Int64("event_id", eventID),
		zap.Int64("rejected", rejected),
	)
	return rejected, nil
}

// ArmNotifyFlags bulk-arms one notify lane for the event, handing work to
// the dispatcher without it having to watch status transitions.
func (s *bookingService) ArmNotifyFlags(ctx context.Context, eventID int64, kind domain.NotificationKind) (int64, error) {
	var statuses []domain.ApplicationStatus
	switch kind {
	case domain.NotifyLock:
		statuses = []domain.ApplicationStatus{domain.StatusLocked}
	case domain.NotifyReminder:
		statuses = []domain.ApplicationStatus{
			domain.StatusLocked, domain.StatusConfirmed, domain.StatusFullConfirmed,
		}
	case domain.NotifyRejection:
		statuses = []domain.ApplicationStatus{domain.StatusRejected}
	default:
		return 0, fmt.Errorf("unknown notification kind: %s", kind)
	}

	armed, err := s.dm.Application().ArmNotifyFlags(eventID, kind, statuses)
	if err != nil {
		return 0, err
	}

	s.log.Info("notify flags armed",
		zap.Int64("event_id", eventID),
		zap.String("kind", string(kind)),
		zap.Int64("armed", armed),
	)
	return armed, nil
}

// CreateEvent registers a draft event and divides its window into blocks of
// the default duration. Blocks can be rebuilt with GenerateTimeBlocks before
// the event opens.
func (s *bookingService) CreateEvent(ctx context.Context, name string, start, end time.Time) (*entity.Event, error) {
	if name == "" {
		return nil, fmt.Errorf("event name is required")
	}
	if !end.After(start) {
		return nil, fmt.Errorf("event window must end after it starts")
	}

	event := &entity.Event{
		Name:                 name,
		StartTime:            start,
		EndTime:              end,
		Status:               domain.EventDraft,
		BlockDurationMinutes: domain.DefaultBlockDurationMinutes,
	}
	if err := s.dm.Event().Create(event); err != nil {
		return nil, err
	}
	if _, err := s.GenerateTimeBlocks(ctx, event.ID, domain.DefaultBlockDurationMinutes); err != nil {
		return nil, err
	}

	s.log.Info("event created",
		zap.Int64("event_id", event.ID),
		zap.String("name", name),
		zap.Time("start", start),
	)
	return event, nil
}

// CreateRole registers a reusable role template, or returns the existing one
// when the name is already taken.
func (s *bookingService) CreateRole(name string, minRating domain.Rating) (*entity.RoleTemplate, bool, error) {
	roles, err := s.dm.Position().GetRoles()
	if err != nil {
		return nil, false, err
	}
	for _, r := range roles {
		if r.Name == name {
			return r, false, nil
		}
	}

	role := &entity.RoleTemplate{Name: name, MinRating: minRating}
	if err := s.dm.Position().CreateRole(role); err != nil {
		return nil, false, err
	}

	s.log.Info("role created", zap.String("name", name), zap.String("min_rating", minRating.String()))
	return role, true, nil
}

// AddPosition attaches a role at a location to the event, creating the
// location on first use. The role template must exist already.
func (s *bookingService) AddPosition(ctx context.Context, eventID int64, icao, roleName string) (*entity.Position, bool, error) {
	var (
		position *entity.Position
		created  bool
	)

	err := s.dm.WithTransaction(ctx, func(tx contract.DataManager) error {
		event, err := tx.Event().GetByID(eventID)
		if err != nil {
			return err
		}
		if event == nil {
			return domain.ErrNotFound
		}

		roles, err := tx.Position().GetRoles()
		if err != nil {
			return err
		}
		var roleID int64
		for _, r := range roles {
			if r.Name == roleName {
				roleID = r.ID
				break
			}
		}
		if roleID == 0 {
			return fmt.Errorf("unknown role %q: %w", roleName, domain.ErrNotFound)
		}

		location, _, err := tx.Position().GetOrCreateLocation(eventID, icao)
		if err != nil {
			return err
		}

		bare, wasCreated, err := tx.Position().GetOrCreatePosition(location.ID, roleID)
		if err != nil {
			return err
		}
		created = wasCreated

		position, err = tx.Position().GetByID(bare.ID)
		return err
	})
	if err != nil {
		return nil, false, err
	}

	if created {
		s.log.Info("position added",
			zap.Int64("event_id", eventID),
			zap.String("callsign", position.Callsign()),
		)
	}
	return position, created, nil
}

// GenerateTimeBlocks divides the event window into contiguous equal blocks.
// Existing blocks, and transitively their applications, are replaced.
func (s *bookingService) GenerateTimeBlocks(ctx context.Context, eventID int64, blockDurationMinutes int) (int, error) {
	event, err := s.dm.Event().GetByID(eventID)
	if err != nil {
		return 0, err
	}
	if event == nil {
		return 0, domain.ErrNotFound
	}

	event.BlockDurationMinutes = blockDurationMinutes
	total := event.TotalBlocks()

	blocks := make([]*entity.TimeBlock, 0, total)
	for i := 0; i < total; i++ {
		start := event.StartTime.Add(time.Duration(i*blockDurationMinutes) * time.Minute)
		blocks = append(blocks, &entity.TimeBlock{
			EventID:     eventID,
			BlockNumber: i + 1,
			StartTime:   start,
			EndTime:     start.Add(time.Duration(blockDurationMinutes) * time.Minute),
		})
	}

	err = s.dm.WithTransaction(ctx, func(tx contract.DataManager) error {
		if err := tx.Event().SetBlockDuration(eventID, blockDurationMinutes); err != nil {
			return err
		}
		return tx.Event().ReplaceBlocks(eventID, blocks)
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("time blocks generated",
		zap.Int64("event_id", eventID),
		zap.Int("blocks", total),
		zap.Int("block_minutes", blockDurationMinutes),
	)
	return total, nil
}

// OpenBookings moves the event into the open status so members can apply.
func (s *bookingService) OpenBookings(ctx context.Context, eventID int64) error {
	event, err := s.dm.Event().GetByID(eventID)
	if err != nil {
		return err
	}
	if event == nil {
		return domain.ErrNotFound
	}

	if err := s.dm.Event().SetStatus(eventID, domain.EventOpen); err != nil {
		return err
	}

	s.log.Info("bookings opened", zap.Int64("event_id", eventID))
	return nil
}

// RecordAnnouncement stores the posted overview message reference so the
// next announce call edits it in place.
func (s *bookingService) RecordAnnouncement(eventID int64, channelID, messageTS string) error {
	return s.dm.Event().SetAnnouncementRef(eventID, channelID, messageTS)
}

func (s *bookingService) OpenEvents() ([]*entity.Event, error) {
	return s.dm.Event().GetOpen()
}

func (s *bookingService) Event(eventID int64) (*entity.Event, error) {
	event, err := s.dm.Event().GetByID(eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, domain.ErrNotFound
	}
	return event, nil
}

func (s *bookingService) Application(applicationID int64) (*entity.ApplicationView, error) {
	view, err := s.dm.Application().GetViewByID(applicationID)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, domain.ErrNotFound
	}
	return view, nil
}

func (s *bookingService) AvailablePositions(eventID int64) ([]*entity.Position, error) {
	return s.dm.Application().AvailablePositions(eventID)
}

func (s *bookingService) Roster(eventID int64) ([]*entity.ApplicationView, error) {
	return s.dm.Application().Roster(eventID)
}

func (s *bookingService) UnfilledSlots(eventID int64) ([]*entity.Slot, error) {
	return s.dm.Application().UnfilledSlots(eventID)
}

func (s *bookingService) ReserveCandidates(eventID, positionID, blockID int64) ([]*entity.Member, error) {
	return s.dm.Application().ReserveCandidates(eventID, positionID, blockID)
}

func (s *bookingService) FullyBooked(eventID int64) (bool, error) {
	return s.dm.Application().FullyBooked(eventID)
}
