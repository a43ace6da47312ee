package infrastructure

import (
	"github.com/skyblockz/sbz-giveaway/application"
	"github.com/skyblockz/sbz-giveaway/database"
	"github.com/skyblockz/sbz-giveaway/domain/events"
	"github.com/skyblockz/sbz-giveaway/domain/interfaces"
	"github.com/skyblockz/sbz-giveaway/repository"
)

type guildUnitOfWorkFactory interface {
	CreateForGuildWithPublisher(guildID int64, publisher interfaces.TransactionalEventPublisher) application.UnitOfWork
}

// UnitOfWorkFactory implements application.UnitOfWorkFactory. Every unit of
// work gets its own transactional publisher in front of the shared one.
type UnitOfWorkFactory struct {
	repoFactory    guildUnitOfWorkFactory
	eventPublisher interfaces.EventPublisher
}

// NewUnitOfWorkFactory creates a new UnitOfWorkFactory
func NewUnitOfWorkFactory(db *database.DB, eventPublisher interfaces.EventPublisher) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{
		repoFactory:    repository.NewUnitOfWorkFactory(db),
		eventPublisher: eventPublisher,
	}
}

// RegisterLocalHandler subscribes an in-process handler to committed events
func (f *UnitOfWorkFactory) RegisterLocalHandler(eventType events.EventType, handler LocalHandler) {
	if natsPublisher, ok := f.eventPublisher.(*NATSEventPublisher); ok {
		natsPublisher.RegisterLocalHandler(eventType, handler)
	}
}

// CreateForGuild creates a UnitOfWork whose events are delivered after commit
func (f *UnitOfWorkFactory) CreateForGuild(guildID int64) application.UnitOfWork {
	return f.repoFactory.CreateForGuildWithPublisher(guildID, NewNATSTransactionalPublisher(f.eventPublisher))
}
