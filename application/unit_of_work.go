package application

import (
	"context"

	"github.com/skyblockz/sbz-giveaway/domain/interfaces"
)

// UnitOfWork groups repository calls into one transaction.
// Events published on EventBus are delivered only after Commit succeeds.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	DrawingRepository() interfaces.DrawingRepository
	GateRepository() interfaces.GateRepository
	GateTemplateRepository() interfaces.GateTemplateRepository
	EventBus() interfaces.EventPublisher
}

// UnitOfWorkFactory creates UnitOfWork instances
type UnitOfWorkFactory interface {
	// CreateForGuild scopes drawing and gate access to one guild; 0 means every guild
	CreateForGuild(guildID int64) UnitOfWork
}
