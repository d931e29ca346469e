package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/vatbrz/staffing-bot/internal/domain/contract"
	"github.com/vatbrz/staffing-bot/internal/domain/entity"
)

type memberRepository struct {
	db dbConn
}

func newMemberRepository(db dbConn) contract.MemberRepo {
	return &memberRepository{db: db}
}

const memberColumns = `cid, slack_user_id, display_name, rating,
	total_applications, total_participations, total_no_shows, total_cancellations,
	admin_notes, created_at, updated_at`

func scanMember(row interface{ Scan(...interface{}) error }) (*entity.Member, error) {
	member := &entity.Member{}
	err := row.Scan(
		&member.CID,
		&member.SlackUserID,
		&member.DisplayName,
		&member.Rating,
		&member.TotalApplications,
		&member.TotalParticipations,
		&member.TotalNoShows,
		&member.TotalCancellations,
		&member.AdminNotes,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return member, nil
}

func (r *memberRepository) Create(member *entity.Member) error {
	query := `
		INSERT INTO members (cid, slack_user_id, display_name, rating, admin_notes)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		member.CID,
		member.SlackUserID,
		member.DisplayName,
		member.Rating,
		member.AdminNotes,
	)
	if err != nil {
		return fmt.Errorf("failed to create member: %w", err)
	}

	return nil
}

func (r *memberRepository) GetByCID(cid int64) (*entity.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE cid = ?`

	member, err := scanMember(r.db.QueryRow(query, cid))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return member, nil
}

func (r *memberRepository) GetBySlackID(slackUserID string) (*entity.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE slack_user_id = ?`

	member, err := scanMember(r.db.QueryRow(query, slackUserID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return member, nil
}

func (r *memberRepository) addCounter(cid int64, column string, n int) error {
	query := fmt.Sprintf(`
		UPDATE members SET
			%s = %s + ?,
			updated_at = ?
		WHERE cid = ?
	`, column, column)

	_, err := r.db.Exec(query, n, time.Now().UTC(), cid)
	if err != nil {
		return fmt.Errorf("failed to update member %s: %w", column, err)
	}

	return nil
}

func (r *memberRepository) AddApplications(cid int64, n int) error {
	return r.addCounter(cid, "total_applications", n)
}

func (r *memberRepository) AddParticipations(cid int64, n int) error {
	return r.addCounter(cid, "total_participations", n)
}

func (r *memberRepository) AddCancellations(cid int64, n int) error {
	return r.addCounter(cid, "total_cancellations", n)
}

func (r *memberRepository) AddNoShows(cid int64, n int) error {
	return r.addCounter(cid, "total_no_shows", n)
}
