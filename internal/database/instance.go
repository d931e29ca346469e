package database

import (
	"context"
	"fmt"

	"github.com/vatbrz/staffing-bot/internal/domain/contract"
)

// instance implements DataManager interface
type instance struct {
	db              *DB
	memberRepo      contract.MemberRepo
	eventRepo       contract.EventRepo
	positionRepo    contract.PositionRepo
	applicationRepo contract.ApplicationRepo
}

// NewInstance creates a new database instance with all repositories
func NewInstance(db *DB) contract.DataManager {
	i := &instance{db: db}
	i.memberRepo = newMemberRepository(db.conn)
	i.eventRepo = newEventRepository(db.conn)
	i.positionRepo = newPositionRepository(db.conn)
	i.applicationRepo = newApplicationRepository(db.conn)
	return i
}

// repoInstancesWithConn creates repository instances with custom dbConn
func repoInstancesWithConn(db dbConn) *instance {
	return &instance{
		memberRepo:      newMemberRepository(db),
		eventRepo:       newEventRepository(db),
		positionRepo:    newPositionRepository(db),
		applicationRepo: newApplicationRepository(db),
	}
}

func (i *instance) Member() contract.MemberRepo           { return i.memberRepo }
func (i *instance) Event() contract.EventRepo             { return i.eventRepo }
func (i *instance) Position() contract.PositionRepo       { return i.positionRepo }
func (i *instance) Application() contract.ApplicationRepo { return i.applicationRepo }

// WithTransaction executes a function within a database transaction
func (i *instance) WithTransaction(ctx context.Context, fn func(dm contract.DataManager) error) error {
	tx, err := i.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	txInstance := repoInstancesWithConn(tx)
	err = fn(txInstance)
	if err != nil {
		rbErr := tx.Rollback()
		if rbErr != nil {
			return fmt.Errorf("error rolling back transaction: %v, original error: %w", rbErr, err)
		}
		return err
	}

	return tx.Commit()
}
