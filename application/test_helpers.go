package application

import (
	"context"
	"sync"

	"github.com/skyblockz/sbz-giveaway/domain/events"
	"github.com/skyblockz/sbz-giveaway/domain/interfaces"
	"github.com/skyblockz/sbz-giveaway/domain/testhelpers"
)

// FakeUnitOfWorkFactory hands out units of work that share one set of
// repository mocks. Events published in a unit of work become visible
// through Committed once it commits.
type FakeUnitOfWorkFactory struct {
	Drawings  *testhelpers.MockDrawingRepository
	Gates     *testhelpers.MockGateRepository
	Templates *testhelpers.MockGateTemplateRepository
	BeginErr  error

	mu        sync.Mutex
	guilds    []int64
	committed []events.Event
	commits   int
}

// NewFakeUnitOfWorkFactory creates a factory with empty mocks
func NewFakeUnitOfWorkFactory() *FakeUnitOfWorkFactory {
	return &FakeUnitOfWorkFactory{
		Drawings:  new(testhelpers.MockDrawingRepository),
		Gates:     new(testhelpers.MockGateRepository),
		Templates: new(testhelpers.MockGateTemplateRepository),
	}
}

func (f *FakeUnitOfWorkFactory) CreateForGuild(guildID int64) UnitOfWork {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.guilds = append(f.guilds, guildID)
	return &fakeUnitOfWork{factory: f}
}

// Committed returns every event delivered by a successful commit, in order
func (f *FakeUnitOfWorkFactory) Committed() []events.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]events.Event(nil), f.committed...)
}

// Commits counts successful commits
func (f *FakeUnitOfWorkFactory) Commits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.commits
}

// Guilds lists the guild scope of every unit of work handed out
func (f *FakeUnitOfWorkFactory) Guilds() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.guilds...)
}

type fakeUnitOfWork struct {
	factory *FakeUnitOfWorkFactory
	pending []events.Event
	started bool
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error {
	if u.factory.BeginErr != nil {
		return u.factory.BeginErr
	}
	u.started = true
	return nil
}

func (u *fakeUnitOfWork) Commit() error {
	u.factory.mu.Lock()
	defer u.factory.mu.Unlock()
	u.factory.committed = append(u.factory.committed, u.pending...)
	u.factory.commits++
	u.pending = nil
	u.started = false
	return nil
}

func (u *fakeUnitOfWork) Rollback() error {
	u.pending = nil
	u.started = false
	return nil
}

func (u *fakeUnitOfWork) DrawingRepository() interfaces.DrawingRepository {
	return u.factory.Drawings
}

func (u *fakeUnitOfWork) GateRepository() interfaces.GateRepository {
	return u.factory.Gates
}

func (u *fakeUnitOfWork) GateTemplateRepository() interfaces.GateTemplateRepository {
	return u.factory.Templates
}

func (u *fakeUnitOfWork) EventBus() interfaces.EventPublisher {
	return u
}

func (u *fakeUnitOfWork) Publish(event events.Event) error {
	u.pending = append(u.pending, event)
	return nil
}
