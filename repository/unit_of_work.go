package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/skyblockz/sbz-giveaway/application"
	"github.com/skyblockz/sbz-giveaway/database"
	"github.com/skyblockz/sbz-giveaway/domain/interfaces"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

const notStarted = "unit of work not started - call Begin() first"

// unitOfWork implements application.UnitOfWork on a pgx transaction
type unitOfWork struct {
	db                     *database.DB
	tx                     pgx.Tx
	ctx                    context.Context
	guildID                int64
	transactionalPublisher interfaces.TransactionalEventPublisher
	drawingRepo            interfaces.DrawingRepository
	gateRepo               interfaces.GateRepository
	templateRepo           interfaces.GateTemplateRepository
}

type unitOfWorkFactory struct {
	db *database.DB
}

// NewUnitOfWorkFactory creates a factory for transaction-bound repositories
func NewUnitOfWorkFactory(db *database.DB) *unitOfWorkFactory {
	return &unitOfWorkFactory{db: db}
}

// CreateForGuildWithPublisher creates a unit of work that flushes transactionalPublisher on commit
func (f *unitOfWorkFactory) CreateForGuildWithPublisher(guildID int64, transactionalPublisher interfaces.TransactionalEventPublisher) application.UnitOfWork {
	return &unitOfWork{
		db:                     f.db,
		guildID:                guildID,
		transactionalPublisher: transactionalPublisher,
	}
}

// Begin starts the transaction and binds the repositories to it
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx
	u.drawingRepo = NewDrawingRepositoryScoped(tx, u.guildID)
	u.gateRepo = NewGateRepositoryScoped(tx, u.guildID)
	u.templateRepo = NewGateTemplateRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction, then delivers the buffered events
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	u.tx = nil

	// The data is already durable; delivery failures are logged, not returned.
	if u.transactionalPublisher != nil {
		if err := u.transactionalPublisher.Flush(u.ctx); err != nil {
			log.WithError(err).Warn("Failed to flush events after commit")
		}
	}

	return nil
}

// Rollback aborts the transaction and drops the buffered events.
// Calling it after Commit is a no-op, so it is safe to defer.
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(u.ctx)
	u.tx = nil

	if u.transactionalPublisher != nil {
		u.transactionalPublisher.Discard()
	}

	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

// DrawingRepository returns the drawing repository for this unit of work
func (u *unitOfWork) DrawingRepository() interfaces.DrawingRepository {
	if u.drawingRepo == nil {
		panic(notStarted)
	}
	return u.drawingRepo
}

// GateRepository returns the gate repository for this unit of work
func (u *unitOfWork) GateRepository() interfaces.GateRepository {
	if u.gateRepo == nil {
		panic(notStarted)
	}
	return u.gateRepo
}

// GateTemplateRepository returns the template repository for this unit of work
func (u *unitOfWork) GateTemplateRepository() interfaces.GateTemplateRepository {
	if u.templateRepo == nil {
		panic(notStarted)
	}
	return u.templateRepo
}

// EventBus returns the transactional event publisher for this unit of work
func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	if u.transactionalPublisher == nil {
		panic("transactional publisher not configured")
	}
	return u.transactionalPublisher
}
