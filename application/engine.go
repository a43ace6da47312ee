package application

import (
	"time"

	"github.com/skyblockz/sbz-giveaway/domain/interfaces"
	"github.com/skyblockz/sbz-giveaway/domain/services"
)

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock always returns the stored instant. Tests move it with Advance.
type FixedClock struct {
	At time.Time
}

func (c *FixedClock) Now() time.Time {
	return c.At
}

// Advance moves the clock forward by d
func (c *FixedClock) Advance(d time.Duration) {
	c.At = c.At.Add(d)
}

// EngineContext carries the process-wide collaborators of the lifecycle
// engine. It is built once at startup and handed to every component.
type EngineContext struct {
	UowFactory UnitOfWorkFactory
	Platform   interfaces.ChatPlatform
	Notices    interfaces.NoticeTracker
	Random     services.RandomSource
	Clock      Clock
}

// NewEngineContext fills unset collaborators with production defaults
func NewEngineContext(uowFactory UnitOfWorkFactory, platform interfaces.ChatPlatform, notices interfaces.NoticeTracker) *EngineContext {
	return &EngineContext{
		UowFactory: uowFactory,
		Platform:   platform,
		Notices:    notices,
		Random:     services.NewCryptoSource(),
		Clock:      SystemClock{},
	}
}

// Now returns the engine's notion of the current time
func (e *EngineContext) Now() time.Time {
	return e.Clock.Now()
}

// DrawingService builds a drawing service bound to the unit of work
func (e *EngineContext) DrawingService(uow UnitOfWork) interfaces.DrawingService {
	return services.NewDrawingService(uow.DrawingRepository(), uow.EventBus(), e.Random)
}

// RosterService builds a roster service bound to the unit of work
func (e *EngineContext) RosterService(uow UnitOfWork) interfaces.RosterService {
	return services.NewRosterService(uow.DrawingRepository(), uow.EventBus())
}

// TemplateService builds a template service bound to the unit of work
func (e *EngineContext) TemplateService(uow UnitOfWork) interfaces.TemplateService {
	return services.NewTemplateService(uow.GateTemplateRepository())
}

// GateService builds a gate service bound to the unit of work
func (e *EngineContext) GateService(uow UnitOfWork) interfaces.GateService {
	return services.NewGateService(
		uow.GateRepository(),
		e.TemplateService(uow),
		e.Platform,
		e.Notices,
		uow.EventBus(),
	)
}
