package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/vatbrz/staffing-bot/internal/domain"
	"github.com/vatbrz/staffing-bot/internal/domain/contract"
	"github.com/vatbrz/staffing-bot/internal/domain/entity"
)

type eventRepository struct {
	db dbConn
}

func newEventRepository(db dbConn) contract.EventRepo {
	return &eventRepository{db: db}
}

const eventColumns = `id, name, start_time, end_time, status, block_duration_minutes,
	announce_channel_id, announce_message_ts, created_at, updated_at`

func scanEvent(row interface{ Scan(...interface{}) error }) (*entity.Event, error) {
	event := &entity.Event{}
	err := row.Scan(
		&event.ID,
		&event.Name,
		&event.StartTime,
		&event.EndTime,
		&event.Status,
		&event.BlockDurationMinutes,
		&event.AnnounceChannelID,
		&event.AnnounceMessageTS,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (r *eventRepository) Create(event *entity.Event) error {
	query := `
		INSERT INTO events (name, start_time, end_time, status, block_duration_minutes)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.Exec(query,
		event.Name,
		event.StartTime.UTC(),
		event.EndTime.UTC(),
		event.Status,
		event.BlockDurationMinutes,
	)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	event.ID = id
	return nil
}

func (r *eventRepository) GetByID(id int64) (*entity.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = ?`

	event, err := scanEvent(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return event, nil
}

func (r *eventRepository) GetOpen() ([]*entity.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE status = ? ORDER BY start_time`

	rows, err := r.db.Query(query, domain.EventOpen)
	if err != nil {
		return nil, fmt.Errorf("failed to get open events: %w", err)
	}
	defer rows.Close()

	var events []*entity.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

func (r *eventRepository) SetStatus(id int64, status domain.EventStatus) error {
	query := `UPDATE events SET status = ?, updated_at = ? WHERE id = ?`

	_, err := r.db.Exec(query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set event status: %w", err)
	}

	return nil
}

func (r *eventRepository) SetBlockDuration(id int64, minutes int) error {
	query := `UPDATE events SET block_duration_minutes = ?, updated_at = ? WHERE id = ?`

	_, err := r.db.Exec(query, minutes, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set block duration: %w", err)
	}

	return nil
}

func (r *eventRepository) SetAnnouncementRef(id int64, channelID, messageTS string) error {
	query := `UPDATE events SET announce_channel_id = ?, announce_message_ts = ?, updated_at = ? WHERE id = ?`

	_, err := r.db.Exec(query, channelID, messageTS, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set announcement ref: %w", err)
	}

	return nil
}

// ReplaceBlocks drops the event's existing blocks and inserts the new set.
// Applications referencing the old blocks are removed by the foreign-key
// cascade; callers run this inside a transaction.
func (r *eventRepository) ReplaceBlocks(eventID int64, blocks []*entity.TimeBlock) error {
	if _, err := r.db.Exec(`DELETE FROM time_blocks WHERE event_id = ?`, eventID); err != nil {
		return fmt.Errorf("failed to delete time blocks: %w", err)
	}

	query := `
		INSERT INTO time_blocks (event_id, block_number, start_time, end_time)
		VALUES (?, ?, ?, ?)
	`

	for _, block := range blocks {
		result, err := r.db.Exec(query,
			eventID,
			block.BlockNumber,
			block.StartTime.UTC(),
			block.EndTime.UTC(),
		)
		if err != nil {
			return fmt.Errorf("failed to create time block %d: %w", block.BlockNumber, err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		block.ID = id
		block.EventID = eventID
	}

	return nil
}

func (r *eventRepository) GetBlocks(eventID int64) ([]*entity.TimeBlock, error) {
	query := `
		SELECT id, event_id, block_number, start_time, end_time
		FROM time_blocks
		WHERE event_id = ?
		ORDER BY block_number
	`

	rows, err := r.db.Query(query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get time blocks: %w", err)
	}
	defer rows.Close()

	var blocks []*entity.TimeBlock
	for rows.Next() {
		block := &entity.TimeBlock{}
		err := rows.Scan(&block.ID, &block.EventID, &block.BlockNumber, &block.StartTime, &block.EndTime)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time block: %w", err)
		}
		blocks = append(blocks, block)
	}

	return blocks, rows.Err()
}

func (r *eventRepository) GetBlock(blockID int64) (*entity.TimeBlock, error) {
	query := `
		SELECT id, event_id, block_number, start_time, end_time
		FROM time_blocks
		WHERE id = ?
	`

	block := &entity.TimeBlock{}
	err := r.db.QueryRow(query, blockID).Scan(
		&block.ID, &block.EventID, &block.BlockNumber, &block.StartTime, &block.EndTime,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get time block: %w", err)
	}

	return block, nil
}
