package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/vatbrz/staffing-bot/internal/domain"
	"github.com/vatbrz/staffing-bot/internal/domain/contract"
	"github.com/vatbrz/staffing-bot/internal/domain/entity"
)

type applicationRepository struct {
	db dbConn
}

func newApplicationRepository(db dbConn) contract.ApplicationRepo {
	return &applicationRepository{db: db}
}

const appColumns = `id, member_cid, position_id, block_id, status,
	notify_locked, notify_reminder, notify_rejected,
	dm_failure_count, dm_unreachable, fallback_channel_id,
	created_at, updated_at`

// appViewSelect hydrates an application with its event, position, block and
// member, mirroring what the dispatcher needs to build a message without
// further queries.
const appViewSelect = `
	SELECT a.id, a.member_cid, a.position_id, a.block_id, a.status,
		a.notify_locked, a.notify_reminder, a.notify_rejected,
		a.dm_failure_count, a.dm_unreachable, a.fallback_channel_id,
		a.created_at, a.updated_at,
		e.id, e.name, l.icao, r.name,
		b.block_number, b.start_time, b.end_time,
		m.display_name, m.slack_user_id, m.rating
	FROM applications a
	JOIN positions p ON p.id = a.position_id
	JOIN event_locations l ON l.id = p.location_id
	JOIN role_templates r ON r.id = p.role_id
	JOIN events e ON e.id = l.event_id
	JOIN time_blocks b ON b.id = a.block_id
	JOIN members m ON m.cid = a.member_cid
`

func scanApp(row interface{ Scan(...interface{}) error }) (*entity.Application, error) {
	app := &entity.Application{}
	err := row.Scan(
		&app.ID,
		&app.MemberCID,
		&app.PositionID,
		&app.BlockID,
		&app.Status,
		&app.NotifyLocked,
		&app.NotifyReminder,
		&app.NotifyRejected,
		&app.DMFailureCount,
		&app.DMUnreachable,
		&app.FallbackChannel,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return app, nil
}

func scanAppView(row interface{ Scan(...interface{}) error }) (*entity.ApplicationView, error) {
	v := &entity.ApplicationView{}
	var roleName string
	err := row.Scan(
		&v.ID,
		&v.MemberCID,
		&v.PositionID,
		&v.BlockID,
		&v.Status,
		&v.NotifyLocked,
		&v.NotifyReminder,
		&v.NotifyRejected,
		&v.DMFailureCount,
		&v.DMUnreachable,
		&v.FallbackChannel,
		&v.CreatedAt,
		&v.UpdatedAt,
		&v.EventID,
		&v.EventName,
		&v.ICAO,
		&roleName,
		&v.BlockNumber,
		&v.BlockStart,
		&v.BlockEnd,
		&v.MemberName,
		&v.SlackUserID,
		&v.MemberRating,
	)
	if err != nil {
		return nil, err
	}
	v.Callsign = fmt.Sprintf("%s_%s", v.ICAO, roleName)
	return v, nil
}

func (r *applicationRepository) queryViews(query string, args ...interface{}) ([]*entity.ApplicationView, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query applications: %w", err)
	}
	defer rows.Close()

	var views []*entity.ApplicationView
	for rows.Next() {
		v, err := scanAppView(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		views = append(views, v)
	}

	return views, rows.Err()
}

// statusArgs expands a status list into SQL placeholders and args.
func statusArgs(statuses []domain.ApplicationStatus) (string, []interface{}) {
	placeholders := make([]string, len(statuses))
	args := make([]interface{}, len(statuses))
	for i, s := range statuses {
		placeholders[i] = "?"
		args[i] = s
	}
	return strings.Join(placeholders, ", "), args
}

func int64Args(ids []int64) (string, []interface{}) {
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	return strings.Join(placeholders, ", "), args
}

func notifyColumn(kind domain.NotificationKind) (string, error) {
	switch kind {
	case domain.NotifyLock:
		return "notify_locked", nil
	case domain.NotifyReminder:
		return "notify_reminder", nil
	case domain.NotifyRejection:
		return "notify_rejected", nil
	}
	return "", fmt.Errorf("unknown notification kind: %s", kind)
}

func (r *applicationRepository) Create(app *entity.Application) error {
	query := `
		INSERT INTO applications (member_cid, position_id, block_id, status)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.Exec(query, app.MemberCID, app.PositionID, app.BlockID, app.Status)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	app.ID = id
	return nil
}

func (r *applicationRepository) GetByID(id int64) (*entity.Application, error) {
	query := `SELECT ` + appColumns + ` FROM applications WHERE id = ?`

	app, err := scanApp(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	return app, nil
}

func (r *applicationRepository) GetViewByID(id int64) (*entity.ApplicationView, error) {
	query := appViewSelect + ` WHERE a.id = ?`

	v, err := scanAppView(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get application view: %w", err)
	}

	return v, nil
}

func (r *applicationRepository) GetByTriple(cid, positionID, blockID int64) (*entity.Application, error) {
	query := `SELECT ` + appColumns + ` FROM applications
		WHERE member_cid = ? AND position_id = ? AND block_id = ?`

	app, err := scanApp(r.db.QueryRow(query, cid, positionID, blockID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	return app, nil
}

func (r *applicationRepository) TakenSlots(positionIDs, blockIDs []int64) (map[entity.SlotKey]bool, error) {
	taken := make(map[entity.SlotKey]bool)
	if len(positionIDs) == 0 || len(blockIDs) == 0 {
		return taken, nil
	}

	posIn, posArgs := int64Args(positionIDs)
	blockIn, blockArgs := int64Args(blockIDs)
	statusIn, statusArgs := statusArgs(domain.ExclusiveStatuses)

	query := fmt.Sprintf(`
		SELECT position_id, block_id
		FROM applications
		WHERE position_id IN (%s) AND block_id IN (%s) AND status IN (%s)
	`, posIn, blockIn, statusIn)

	args := append(append(posArgs, blockArgs...), statusArgs...)
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get taken slots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key entity.SlotKey
		if err := rows.Scan(&key.PositionID, &key.BlockID); err != nil {
			return nil, fmt.Errorf("failed to scan taken slot: %w", err)
		}
		taken[key] = true
	}

	return taken, rows.Err()
}

func (r *applicationRepository) ExclusiveForMemberBlock(cid, blockID, eventID, excludeID int64) (*entity.ApplicationView, error) {
	statusIn, args := statusArgs(domain.ExclusiveStatuses)

	query := appViewSelect + fmt.Sprintf(`
		WHERE a.member_cid = ? AND a.block_id = ? AND e.id = ?
			AND a.id != ? AND a.status IN (%s)
		LIMIT 1
	`, statusIn)

	queryArgs := append([]interface{}{cid, blockID, eventID, excludeID}, args...)
	v, err := scanAppView(r.db.QueryRow(query, queryArgs...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member block holding: %w", err)
	}

	return v, nil
}

func (r *applicationRepository) ExclusiveHolder(positionID, blockID int64) (*entity.ApplicationView, error) {
	statusIn, args := statusArgs(domain.ExclusiveStatuses)

	query := appViewSelect + fmt.Sprintf(`
		WHERE a.position_id = ? AND a.block_id = ? AND a.status IN (%s)
		LIMIT 1
	`, statusIn)

	queryArgs := append([]interface{}{positionID, blockID}, args...)
	v, err := scanAppView(r.db.QueryRow(query, queryArgs...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get slot holder: %w", err)
	}

	return v, nil
}

func (r *applicationRepository) LockIfPending(id int64) (bool, error) {
	query := `
		UPDATE applications SET
			status = ?,
			notify_locked = 1,
			updated_at = ?
		WHERE id = ? AND status = ?
	`

	result, err := r.db.Exec(query, domain.StatusLocked, time.Now().UTC(), id, domain.StatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to lock application: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return affected == 1, nil
}

func (r *applicationRepository) ConfirmIf(id int64, expected, next domain.ApplicationStatus) (bool, error) {
	query := `
		UPDATE applications SET
			status = ?,
			fallback_channel_id = '',
			updated_at = ?
		WHERE id = ? AND status = ?
	`

	result, err := r.db.Exec(query, next, time.Now().UTC(), id, expected)
	if err != nil {
		return false, fmt.Errorf("failed to confirm application: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return affected == 1, nil
}

func (r *applicationRepository) RejectExclusive(id int64) (bool, error) {
	statusIn, args := statusArgs(domain.ExclusiveStatuses)

	query := fmt.Sprintf(`
		UPDATE applications SET
			status = ?,
			updated_at = ?
		WHERE id = ? AND status IN (%s)
	`, statusIn)

	queryArgs := append([]interface{}{domain.StatusRejected, time.Now().UTC(), id}, args...)
	result, err := r.db.Exec(query, queryArgs...)
	if err != nil {
		return false, fmt.Errorf("failed to reject holder: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return affected == 1, nil
}

func (r *applicationRepository) UpsertLocked(cid, positionID, blockID int64) (*entity.Application, error) {
	query := `
		INSERT INTO applications (member_cid, position_id, block_id, status, notify_locked)
		VALUES (?, ?, ?, ?, 1)
		ON CONFLICT (member_cid, position_id, block_id) DO UPDATE SET
			status = excluded.status,
			notify_locked = 1,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := r.db.Exec(query, cid, positionID, blockID, domain.StatusLocked)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert locked application: %w", err)
	}

	app, err := r.GetByTriple(cid, positionID, blockID)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, fmt.Errorf("upserted application not found")
	}

	return app, nil
}

func (r *applicationRepository) RejectOtherPendingByMemberBlock(cid, blockID, eventID, excludeID int64) (int64, error) {
	// Single conditional statement so the cascade cannot race a concurrent
	// read-modify-write.
	query := `
		UPDATE applications SET
			status = ?,
			updated_at = ?
		WHERE member_cid = ? AND block_id = ? AND status = ? AND id != ?
			AND position_id IN (
				SELECT p.id FROM positions p
				JOIN event_locations l ON l.id = p.location_id
				WHERE l.event_id = ?
			)
	`

	result, err := r.db.Exec(query,
		domain.StatusRejected, time.Now().UTC(),
		cid, blockID, domain.StatusPending, excludeID, eventID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to reject member's other applications: %w", err)
	}

	return result.RowsAffected()
}

func (r *applicationRepository) RejectOtherPendingBySlot(positionID, blockID, excludeID int64) (int64, error) {
	query := `
		UPDATE applications SET
			status = ?,
			updated_at = ?
		WHERE position_id = ? AND block_id = ? AND status = ? AND id != ?
	`

	result, err := r.db.Exec(query,
		domain.StatusRejected, time.Now().UTC(),
		positionID, blockID, domain.StatusPending, excludeID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to reject competing applications: %w", err)
	}

	return result.RowsAffected()
}

func (r *applicationRepository) RejectPendingByEvent(eventID int64) (int64, error) {
	query := `
		UPDATE applications SET
			status = ?,
			updated_at = ?
		WHERE status = ?
			AND position_id IN (
				SELECT p.id FROM positions p
				JOIN event_locations l ON l.id = p.location_id
				WHERE l.event_id = ?
			)
	`

	result, err := r.db.Exec(query, domain.StatusRejected, time.Now().UTC(), domain.StatusPending, eventID)
	if err != nil {
		return 0, fmt.Errorf("failed to reject pending applications: %w", err)
	}

	return result.RowsAffected()
}

func (r *applicationRepository) ListByMemberEvent(cid, eventID int64, statuses ...domain.ApplicationStatus) ([]*entity.ApplicationView, error) {
	statusIn, args := statusArgs(statuses)

	query := appViewSelect + fmt.Sprintf(`
		WHERE a.member_cid = ? AND e.id = ? AND a.status IN (%s)
		ORDER BY b.block_number, l.icao, r.name
	`, statusIn)

	queryArgs := append([]interface{}{cid, eventID}, args...)
	return r.queryViews(query, queryArgs...)
}

func (r *applicationRepository) DeleteByMemberEvent(cid, eventID int64, status domain.ApplicationStatus) (int64, error) {
	query := `
		DELETE FROM applications
		WHERE member_cid = ? AND status = ?
			AND position_id IN (
				SELECT p.id FROM positions p
				JOIN event_locations l ON l.id = p.location_id
				WHERE l.event_id = ?
			)
	`

	result, err := r.db.Exec(query, cid, status, eventID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete applications: %w", err)
	}

	return result.RowsAffected()
}

func (r *applicationRepository) UpdateStatusByMemberEvent(cid, eventID int64, from []domain.ApplicationStatus, to domain.ApplicationStatus) (int64, error) {
	statusIn, args := statusArgs(from)

	query := fmt.Sprintf(`
		UPDATE applications SET
			status = ?,
			updated_at = ?
		WHERE member_cid = ? AND status IN (%s)
			AND position_id IN (
				SELECT p.id FROM positions p
				JOIN event_locations l ON l.id = p.location_id
				WHERE l.event_id = ?
			)
	`, statusIn)

	queryArgs := append([]interface{}{to, time.Now().UTC(), cid}, args...)
	queryArgs = append(queryArgs, eventID)
	result, err := r.db.Exec(query, queryArgs...)
	if err != nil {
		return 0, fmt.Errorf("failed to update application statuses: %w", err)
	}

	return result.RowsAffected()
}

func (r *applicationRepository) ArmNotifyFlags(eventID int64, kind domain.NotificationKind, statuses []domain.ApplicationStatus) (int64, error) {
	column, err := notifyColumn(kind)
	if err != nil {
		return 0, err
	}

	statusIn, args := statusArgs(statuses)
	query := fmt.Sprintf(`
		UPDATE applications SET
			%s = 1,
			updated_at = ?
		WHERE %s = 0 AND status IN (%s)
			AND position_id IN (
				SELECT p.id FROM positions p
				JOIN event_locations l ON l.id = p.location_id
				WHERE l.event_id = ?
			)
	`, column, column, statusIn)

	queryArgs := append([]interface{}{time.Now().UTC()}, args...)
	queryArgs = append(queryArgs, eventID)
	result, err := r.db.Exec(query, queryArgs...)
	if err != nil {
		return 0, fmt.Errorf("failed to arm %s flags: %w", kind, err)
	}

	return result.RowsAffected()
}

func (r *applicationRepository) ListLockNotifications() ([]*entity.ApplicationView, error) {
	query := appViewSelect + `
		WHERE a.status = ? AND a.notify_locked = 1
		ORDER BY a.id
	`
	return r.queryViews(query, domain.StatusLocked)
}

func (r *applicationRepository) ListReminderNotifications() ([]*entity.ApplicationView, error) {
	// FULL_CONFIRMED is excluded: those members already did the final step.
	query := appViewSelect + `
		WHERE a.status IN (?, ?) AND a.notify_reminder = 1
		ORDER BY a.id
	`
	return r.queryViews(query, domain.StatusLocked, domain.StatusConfirmed)
}

func (r *applicationRepository) ListRejectionNotifications() ([]*entity.ApplicationView, error) {
	// Members accepted elsewhere in the same event are skipped; the ordering
	// makes per-(member, event) deduplication in the dispatcher stable.
	statusIn, args := statusArgs(domain.ExclusiveStatuses)

	query := appViewSelect + fmt.Sprintf(`
		WHERE a.status = ? AND a.notify_rejected = 1
			AND NOT EXISTS (
				SELECT 1 FROM applications a2
				JOIN positions p2 ON p2.id = a2.position_id
				JOIN event_locations l2 ON l2.id = p2.location_id
				WHERE a2.member_cid = a.member_cid
					AND l2.event_id = e.id
					AND a2.status IN (%s)
			)
		ORDER BY a.member_cid, e.id, a.id
	`, statusIn)

	queryArgs := append([]interface{}{domain.StatusRejected}, args...)
	return r.queryViews(query, queryArgs...)
}

func (r *applicationRepository) ClearNotifyFlag(id int64, kind domain.NotificationKind) error {
	column, err := notifyColumn(kind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`UPDATE applications SET %s = 0, updated_at = ? WHERE id = ?`, column)

	if _, err := r.db.Exec(query, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("failed to clear %s flag: %w", kind, err)
	}

	return nil
}

func (r *applicationRepository) IncrementDMFailure(id int64) (int, error) {
	query := `
		UPDATE applications SET
			dm_failure_count = dm_failure_count + 1,
			updated_at = ?
		WHERE id = ?
	`

	if _, err := r.db.Exec(query, time.Now().UTC(), id); err != nil {
		return 0, fmt.Errorf("failed to increment dm failure count: %w", err)
	}

	var count int
	err := r.db.QueryRow(`SELECT dm_failure_count FROM applications WHERE id = ?`, id).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to read dm failure count: %w", err)
	}

	return count, nil
}

func (r *applicationRepository) MarkUnreachable(id int64) error {
	query := `UPDATE applications SET dm_unreachable = 1, updated_at = ? WHERE id = ?`

	if _, err := r.db.Exec(query, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("failed to mark application unreachable: %w", err)
	}

	return nil
}

func (r *applicationRepository) SetFallbackChannelForMemberEvent(cid, eventID int64, channelID string) error {
	query := `
		UPDATE applications SET
			fallback_channel_id = ?,
			dm_unreachable = 1,
			updated_at = ?
		WHERE member_cid = ?
			AND position_id IN (
				SELECT p.id FROM positions p
				JOIN event_locations l ON l.id = p.location_id
				WHERE l.event_id = ?
			)
	`

	if _, err := r.db.Exec(query, channelID, time.Now().UTC(), cid, eventID); err != nil {
		return fmt.Errorf("failed to set fallback channel: %w", err)
	}

	return nil
}

func (r *applicationRepository) AvailablePositions(eventID int64) ([]*entity.Position, error) {
	statusIn, args := statusArgs(domain.ExclusiveStatuses)

	query := positionSelect + fmt.Sprintf(`
		WHERE l.event_id = ?
			AND (SELECT COUNT(*) FROM time_blocks b WHERE b.event_id = l.event_id) > 0
			AND (
				SELECT COUNT(*) FROM applications a
				WHERE a.position_id = p.id AND a.status IN (%s)
			) < (SELECT COUNT(*) FROM time_blocks b WHERE b.event_id = l.event_id)
		ORDER BY l.icao, r.name
	`, statusIn)

	queryArgs := append([]interface{}{eventID}, args...)
	rows, err := r.db.Query(query, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to get available positions: %w", err)
	}
	defer rows.Close()

	var positions []*entity.Position
	for rows.Next() {
		pos, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, pos)
	}

	return positions, rows.Err()
}

func (r *applicationRepository) Roster(eventID int64) ([]*entity.ApplicationView, error) {
	statusIn, args := statusArgs(domain.ExclusiveStatuses)

	query := appViewSelect + fmt.Sprintf(`
		WHERE e.id = ? AND a.status IN (%s)
		ORDER BY l.icao, r.name, b.block_number
	`, statusIn)

	queryArgs := append([]interface{}{eventID}, args...)
	return r.queryViews(query, queryArgs...)
}

func (r *applicationRepository) UnfilledSlots(eventID int64) ([]*entity.Slot, error) {
	statusIn, args := statusArgs(domain.ExclusiveStatuses)

	query := fmt.Sprintf(`
		SELECT p.id, p.location_id, p.role_id, l.event_id, l.icao, r.name, r.min_rating,
			b.id, b.event_id, b.block_number, b.start_time, b.end_time
		FROM positions p
		JOIN event_locations l ON l.id = p.location_id
		JOIN role_templates r ON r.id = p.role_id
		JOIN time_blocks b ON b.event_id = l.event_id
		WHERE l.event_id = ?
			AND NOT EXISTS (
				SELECT 1 FROM applications a
				WHERE a.position_id = p.id AND a.block_id = b.id AND a.status IN (%s)
			)
		ORDER BY l.icao, r.name, b.block_number
	`, statusIn)

	queryArgs := append([]interface{}{eventID}, args...)
	rows, err := r.db.Query(query, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to get unfilled slots: %w", err)
	}
	defer rows.Close()

	var slots []*entity.Slot
	for rows.Next() {
		slot := &entity.Slot{}
		err := rows.Scan(
			&slot.Position.ID, &slot.Position.LocationID, &slot.Position.RoleID,
			&slot.Position.EventID, &slot.Position.ICAO, &slot.Position.RoleName,
			&slot.Position.MinRating,
			&slot.Block.ID, &slot.Block.EventID, &slot.Block.BlockNumber,
			&slot.Block.StartTime, &slot.Block.EndTime,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan unfilled slot: %w", err)
		}
		slots = append(slots, slot)
	}

	return slots, rows.Err()
}

func (r *applicationRepository) ReserveCandidates(eventID, positionID, blockID int64) ([]*entity.Member, error) {
	statusIn, args := statusArgs(domain.ExclusiveStatuses)

	// Every member who applied to the event (any status, rejected included),
	// minus members already holding a slot in the block, with a sufficient
	// rating for the position. Rating descending, then name.
	query := fmt.Sprintf(`
		SELECT %s FROM members m
		WHERE m.cid IN (
				SELECT DISTINCT a.member_cid FROM applications a
				JOIN positions p ON p.id = a.position_id
				JOIN event_locations l ON l.id = p.location_id
				WHERE l.event_id = ?
			)
			AND m.cid NOT IN (
				SELECT a.member_cid FROM applications a
				JOIN positions p ON p.id = a.position_id
				JOIN event_locations l ON l.id = p.location_id
				WHERE l.event_id = ? AND a.block_id = ? AND a.status IN (%s)
			)
			AND m.rating >= (
				SELECT r2.min_rating FROM positions p2
				JOIN role_templates r2 ON r2.id = p2.role_id
				WHERE p2.id = ?
			)
		ORDER BY m.rating DESC, m.display_name ASC
	`, memberColumns, statusIn)

	queryArgs := append([]interface{}{eventID, eventID, blockID}, args...)
	queryArgs = append(queryArgs, positionID)
	rows, err := r.db.Query(query, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to get reserve candidates: %w", err)
	}
	defer rows.Close()

	var members []*entity.Member
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, member)
	}

	return members, rows.Err()
}

func (r *applicationRepository) FullyBooked(eventID int64) (bool, error) {
	var positions, blocks int
	err := r.db.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM positions p JOIN event_locations l ON l.id = p.location_id WHERE l.event_id = ?),
			(SELECT COUNT(*) FROM time_blocks b WHERE b.event_id = ?)
	`, eventID, eventID).Scan(&positions, &blocks)
	if err != nil {
		return false, fmt.Errorf("failed to count positions and blocks: %w", err)
	}

	if positions == 0 || blocks == 0 {
		return false, nil
	}

	slots, err := r.UnfilledSlots(eventID)
	if err != nil {
		return false, err
	}

	return len(slots) == 0, nil
}
