package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/vatbrz/staffing-bot/internal/domain/contract"
	"github.com/vatbrz/staffing-bot/internal/domain/entity"
)

type positionRepository struct {
	db dbConn
}

func newPositionRepository(db dbConn) contract.PositionRepo {
	return &positionRepository{db: db}
}

// positionSelect joins locations and role templates so callers always get a
// position with its callsign parts and minimum rating populated.
const positionSelect = `
	SELECT p.id, p.location_id, p.role_id, l.event_id, l.icao, r.name, r.min_rating
	FROM positions p
	JOIN event_locations l ON l.id = p.location_id
	JOIN role_templates r ON r.id = p.role_id
`

func scanPosition(row interface{ Scan(...interface{}) error }) (*entity.Position, error) {
	pos := &entity.Position{}
	err := row.Scan(
		&pos.ID,
		&pos.LocationID,
		&pos.RoleID,
		&pos.EventID,
		&pos.ICAO,
		&pos.RoleName,
		&pos.MinRating,
	)
	if err != nil {
		return nil, err
	}
	return pos, nil
}

func (r *positionRepository) CreateRole(role *entity.RoleTemplate) error {
	query := `
		INSERT INTO role_templates (name, min_rating, description)
		VALUES (?, ?, ?)
	`

	result, err := r.db.Exec(query, role.Name, role.MinRating, role.Description)
	if err != nil {
		return fmt.Errorf("failed to create role template: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	role.ID = id
	return nil
}

func (r *positionRepository) GetRoles() ([]*entity.RoleTemplate, error) {
	query := `SELECT id, name, min_rating, description FROM role_templates ORDER BY name`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get role templates: %w", err)
	}
	defer rows.Close()

	var roles []*entity.RoleTemplate
	for rows.Next() {
		role := &entity.RoleTemplate{}
		if err := rows.Scan(&role.ID, &role.Name, &role.MinRating, &role.Description); err != nil {
			return nil, fmt.Errorf("failed to scan role template: %w", err)
		}
		roles = append(roles, role)
	}

	return roles, rows.Err()
}

func (r *positionRepository) GetOrCreateLocation(eventID int64, icao string) (*entity.Location, bool, error) {
	icao = strings.ToUpper(icao)

	loc := &entity.Location{}
	query := `SELECT id, event_id, icao FROM event_locations WHERE event_id = ? AND icao = ?`
	err := r.db.QueryRow(query, eventID, icao).Scan(&loc.ID, &loc.EventID, &loc.ICAO)
	if err == nil {
		return loc, false, nil
	}
	if err != sql.ErrNoRows {
		return nil, false, fmt.Errorf("failed to get location: %w", err)
	}

	result, err := r.db.Exec(`INSERT INTO event_locations (event_id, icao) VALUES (?, ?)`, eventID, icao)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create location: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return &entity.Location{ID: id, EventID: eventID, ICAO: icao}, true, nil
}

func (r *positionRepository) GetOrCreatePosition(locationID, roleID int64) (*entity.Position, bool, error) {
	query := positionSelect + ` WHERE p.location_id = ? AND p.role_id = ?`

	pos, err := scanPosition(r.db.QueryRow(query, locationID, roleID))
	if err == nil {
		return pos, false, nil
	}
	if err != sql.ErrNoRows {
		return nil, false, fmt.Errorf("failed to get position: %w", err)
	}

	result, err := r.db.Exec(`INSERT INTO positions (location_id, role_id) VALUES (?, ?)`, locationID, roleID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create position: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get last insert id: %w", err)
	}

	pos, err = r.GetByID(id)
	if err != nil {
		return nil, false, err
	}
	return pos, true, nil
}

func (r *positionRepository) GetByID(positionID int64) (*entity.Position, error) {
	query := positionSelect + ` WHERE p.id = ?`

	pos, err := scanPosition(r.db.QueryRow(query, positionID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get position: %w", err)
	}

	return pos, nil
}

func (r *positionRepository) GetByEvent(eventID int64) ([]*entity.Position, error) {
	query := positionSelect + ` WHERE l.event_id = ? ORDER BY l.icao, r.name`

	rows, err := r.db.Query(query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event positions: %w", err)
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
