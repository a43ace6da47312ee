package testhelpers

import (
	"context"
	"time"

	"github.com/skyblockz/sbz-giveaway/domain/entities"
	"github.com/skyblockz/sbz-giveaway/domain/events"

	"github.com/stretchr/testify/mock"
)

// MockDrawingRepository is a mock implementation of DrawingRepository
type MockDrawingRepository struct {
	mock.Mock
}

func (m *MockDrawingRepository) NextID(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDrawingRepository) Create(ctx context.Context, drawing *entities.Drawing) error {
	args := m.Called(ctx, drawing)
	return args.Error(0)
}

func (m *MockDrawingRepository) GetByID(ctx context.Context, id int64) (*entities.Drawing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Drawing), args.Error(1)
}

func (m *MockDrawingRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Drawing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Drawing), args.Error(1)
}

func (m *MockDrawingRepository) GetByMessageID(ctx context.Context, messageID int64) (*entities.Drawing, error) {
	args := m.Called(ctx, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Drawing), args.Error(1)
}

func (m *MockDrawingRepository) SetMessage(ctx context.Context, id, channelID, messageID int64) error {
	args := m.Called(ctx, id, channelID, messageID)
	return args.Error(0)
}

func (m *MockDrawingRepository) AddParticipant(ctx context.Context, id, memberID int64) (bool, error) {
	args := m.Called(ctx, id, memberID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDrawingRepository) RemoveParticipant(ctx context.Context, id, memberID int64) (bool, error) {
	args := m.Called(ctx, id, memberID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDrawingRepository) SetWinnersIfUnrolled(ctx context.Context, id int64, winners []int64, outcome entities.DrawingOutcome, at time.Time) (bool, error) {
	args := m.Called(ctx, id, winners, outcome, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockDrawingRepository) OverwriteWinners(ctx context.Context, id int64, winners []int64, outcome entities.DrawingOutcome, at time.Time) error {
	args := m.Called(ctx, id, winners, outcome, at)
	return args.Error(0)
}

func (m *MockDrawingRepository) GetDue(ctx context.Context, now time.Time) ([]*entities.Drawing, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Drawing), args.Error(1)
}

func (m *MockDrawingRepository) ListOpen(ctx context.Context) ([]*entities.Drawing, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Drawing), args.Error(1)
}

// MockGateRepository is a mock implementation of GateRepository
type MockGateRepository struct {
	mock.Mock
}

func (m *MockGateRepository) Create(ctx context.Context, gate *entities.Gate) error {
	args := m.Called(ctx, gate)
	return args.Error(0)
}

func (m *MockGateRepository) GetByMessageID(ctx context.Context, messageID int64) (*entities.Gate, error) {
	args := m.Called(ctx, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Gate), args.Error(1)
}

func (m *MockGateRepository) UpdateRequirements(ctx context.Context, messageID int64, requirements []int64) error {
	args := m.Called(ctx, messageID, requirements)
	return args.Error(0)
}

func (m *MockGateRepository) Delete(ctx context.Context, messageID int64) (bool, error) {
	args := m.Called(ctx, messageID)
	return args.Bool(0), args.Error(1)
}

func (m *MockGateRepository) List(ctx context.Context) ([]*entities.Gate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Gate), args.Error(1)
}

func (m *MockGateRepository) ListExpiringBetween(ctx context.Context, from, to time.Time) ([]*entities.Gate, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Gate), args.Error(1)
}

func (m *MockGateRepository) ListIndefinite(ctx context.Context) ([]*entities.Gate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Gate), args.Error(1)
}

func (m *MockGateRepository) DeleteExpired(ctx context.Context, now time.Time) ([]int64, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

// MockGateTemplateRepository is a mock implementation of GateTemplateRepository
type MockGateTemplateRepository struct {
	mock.Mock
}

func (m *MockGateTemplateRepository) Create(ctx context.Context, key string, roles []int64) error {
	args := m.Called(ctx, key, roles)
	return args.Error(0)
}

func (m *MockGateTemplateRepository) Delete(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockGateTemplateRepository) List(ctx context.Context) ([]*entities.GateTemplate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.GateTemplate), args.Error(1)
}

func (m *MockGateTemplateRepository) GetByKey(ctx context.Context, key string) (*entities.GateTemplate, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GateTemplate), args.Error(1)
}

func (m *MockGateTemplateRepository) GetByAlias(ctx context.Context, alias string) (*entities.GateTemplate, error) {
	args := m.Called(ctx, alias)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GateTemplate), args.Error(1)
}

func (m *MockGateTemplateRepository) AddAlias(ctx context.Context, key, alias string) error {
	args := m.Called(ctx, key, alias)
	return args.Error(0)
}

func (m *MockGateTemplateRepository) RemoveAlias(ctx context.Context, alias string) (bool, error) {
	args := m.Called(ctx, alias)
	return args.Bool(0), args.Error(1)
}

func (m *MockGateTemplateRepository) AddRole(ctx context.Context, key string, roleID int64) (bool, error) {
	args := m.Called(ctx, key, roleID)
	return args.Bool(0), args.Error(1)
}

func (m *MockGateTemplateRepository) RemoveRole(ctx context.Context, key string, roleID int64) (bool, error) {
	args := m.Called(ctx, key, roleID)
	return args.Bool(0), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}
