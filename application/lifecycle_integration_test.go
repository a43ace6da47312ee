package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/skyblockz/sbz-giveaway/application"
	"github.com/skyblockz/sbz-giveaway/config"
	"github.com/skyblockz/sbz-giveaway/domain/entities"
	"github.com/skyblockz/sbz-giveaway/domain/events"
	"github.com/skyblockz/sbz-giveaway/domain/interfaces"
	"github.com/skyblockz/sbz-giveaway/domain/services"
	"github.com/skyblockz/sbz-giveaway/domain/testhelpers"
	"github.com/skyblockz/sbz-giveaway/infrastructure"
	"github.com/skyblockz/sbz-giveaway/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) record(ctx context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *eventRecorder) ofType(eventType events.EventType) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []events.Event
	for _, e := range r.events {
		if e.Type() == eventType {
			matched = append(matched, e)
		}
	}
	return matched
}

type lifecycleFixture struct {
	engine    *application.EngineContext
	scheduler *application.Scheduler
	platform  *testhelpers.MockChatPlatform
	notices   *application.NoticeCache
	clock     *application.FixedClock
	recorder  *eventRecorder
}

func setupLifecycle(t *testing.T) *lifecycleFixture {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testutil.SetupTestDatabase(t)

	publisher := infrastructure.NewNATSEventPublisher(nil, infrastructure.NewEventSubjectMapper())
	uowFactory := infrastructure.NewUnitOfWorkFactory(testDB.DB, publisher)

	recorder := &eventRecorder{}
	for _, eventType := range []events.EventType{
		events.EventTypeDrawingResolved,
		events.EventTypeParticipantJoined,
		events.EventTypeGateMemberEvicted,
	} {
		uowFactory.RegisterLocalHandler(eventType, recorder.record)
	}

	f := &lifecycleFixture{
		platform: new(testhelpers.MockChatPlatform),
		notices:  application.NewNoticeCache(),
		clock:    &application.FixedClock{At: time.Now().UTC().Truncate(time.Second)},
		recorder: recorder,
	}
	f.engine = application.NewEngineContext(uowFactory, f.platform, f.notices)
	f.engine.Clock = f.clock
	f.engine.Random = services.NewSeededSource(99)

	cfg := config.Get()
	f.scheduler = application.NewScheduler(f.engine, application.SchedulerConfig{
		Tick:            cfg.SchedulerTick,
		GateLookahead:   cfg.GateLookahead,
		IndefiniteSweep: cfg.IndefiniteGateSweep,
		NoticeReset:     cfg.NoticeResetInterval,
	})
	return f
}

func (f *lifecycleFixture) createDrawing(t *testing.T, guildID int64, length time.Duration, participants ...int64) *entities.Drawing {
	t.Helper()
	ctx := context.Background()

	uow := f.engine.UowFactory.CreateForGuild(guildID)
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()

	drawingService := f.engine.DrawingService(uow)
	drawing, err := drawingService.Create(ctx, interfaces.CreateDrawingParams{
		GuildID:     guildID,
		ChannelID:   guildID + 1,
		HostID:      7,
		PrizeName:   "Dungeon Loot",
		WinnerCount: 1,
		Length:      length,
		CreatedAt:   f.clock.Now(),
	})
	require.NoError(t, err)

	roster := f.engine.RosterService(uow)
	for _, member := range participants {
		_, err := roster.Add(ctx, drawing.ID, member, nil)
		require.NoError(t, err)
	}
	require.NoError(t, uow.Commit())
	return drawing
}

func (f *lifecycleFixture) getDrawing(t *testing.T, id int64) *entities.Drawing {
	t.Helper()
	ctx := context.Background()

	uow := f.engine.UowFactory.CreateForGuild(0)
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()

	drawing, err := f.engine.DrawingService(uow).Get(ctx, id)
	require.NoError(t, err)
	return drawing
}

func TestLifecycle_DrawingResolvesExactlyOnce(t *testing.T) {
	f := setupLifecycle(t)
	ctx := context.Background()

	drawing := f.createDrawing(t, 100, 60*time.Second, 1, 2, 3)
	assert.Len(t, f.recorder.ofType(events.EventTypeParticipantJoined), 3)

	f.clock.Advance(59 * time.Second)
	assert.Equal(t, 0, f.scheduler.ResolveDueDrawings(ctx))

	f.clock.Advance(2 * time.Second)
	assert.Equal(t, 1, f.scheduler.ResolveDueDrawings(ctx))

	f.clock.Advance(time.Second)
	assert.Equal(t, 0, f.scheduler.ResolveDueDrawings(ctx))

	resolved := f.getDrawing(t, drawing.ID)
	assert.Equal(t, entities.DrawingStateResolved, resolved.State())
	require.Len(t, resolved.Winners, 1)
	assert.Contains(t, []int64{1, 2, 3}, resolved.Winners[0])
	assert.Len(t, f.recorder.ofType(events.EventTypeDrawingResolved), 1)

	// The roster is locked once winners exist.
	uow := f.engine.UowFactory.CreateForGuild(100)
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()
	_, err := f.engine.RosterService(uow).Add(ctx, drawing.ID, 4, nil)
	assert.ErrorIs(t, err, entities.ErrRosterLocked)
}

func TestLifecycle_NoParticipants(t *testing.T) {
	f := setupLifecycle(t)

	drawing := f.createDrawing(t, 100, time.Second)
	f.clock.Advance(2 * time.Second)

	assert.Equal(t, 1, f.scheduler.ResolveDueDrawings(context.Background()))

	resolved := f.getDrawing(t, drawing.ID)
	assert.Equal(t, entities.DrawingStateCanceledNoParticipants, resolved.State())
	assert.Equal(t, entities.NoWinnerSentinel, resolved.Winners)
	assert.Empty(t, resolved.EffectiveWinners())
}

func TestLifecycle_ConcurrentResolution(t *testing.T) {
	f := setupLifecycle(t)
	ctx := context.Background()

	drawing := f.createDrawing(t, 100, time.Second, 1, 2)
	f.clock.Advance(2 * time.Second)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			uow := f.engine.UowFactory.CreateForGuild(100)
			if err := uow.Begin(ctx); err != nil {
				results[i] = err
				return
			}
			defer uow.Rollback()

			if _, err := f.engine.DrawingService(uow).Resolve(ctx, drawing.ID, f.clock.Now()); err != nil {
				results[i] = err
				return
			}
			results[i] = uow.Commit()
		}(i)
	}
	wg.Wait()

	succeeded, lost := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, entities.ErrAlreadyResolved):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, lost)
	assert.Len(t, f.recorder.ofType(events.EventTypeDrawingResolved), 1)
}

func TestLifecycle_GateSweepNotifiesOnce(t *testing.T) {
	f := setupLifecycle(t)
	ctx := context.Background()

	const (
		guildID   int64 = 100
		channelID int64 = 101
		messageID int64 = 5000
		roleR1    int64 = 77
		memberM   int64 = 8
	)

	uow := f.engine.UowFactory.CreateForGuild(guildID)
	require.NoError(t, uow.Begin(ctx))
	gate, err := f.engine.GateService(uow).Create(ctx, interfaces.CreateGateParams{
		GuildID:   guildID,
		ChannelID: channelID,
		MessageID: messageID,
		Tokens:    []string{"77"},
	})
	require.NoError(t, err)
	require.NoError(t, uow.Commit())
	assert.Equal(t, []int64{roleR1}, gate.Requirements)

	f.platform.On("ListReactions", mock.Anything, channelID, messageID).Return([]interfaces.Reaction{
		{Emoji: "✅", Users: []interfaces.Reactor{{UserID: memberM}, {UserID: 1, Bot: true}}},
	}, nil)
	f.platform.On("MemberRoles", mock.Anything, guildID, memberM).Return([]int64{}, nil)
	f.platform.On("RemoveReaction", mock.Anything, channelID, messageID, "✅", memberM).Return(nil)
	f.platform.On("DirectMessage", mock.Anything, memberM, mock.Anything).Return(nil)

	assert.Equal(t, 1, f.scheduler.SweepIndefiniteGates(ctx))
	assert.Equal(t, 1, f.notices.Len())

	// The member reacts again; the second sweep evicts without a second notice.
	assert.Equal(t, 1, f.scheduler.SweepIndefiniteGates(ctx))

	f.platform.AssertNumberOfCalls(t, "RemoveReaction", 2)
	f.platform.AssertNumberOfCalls(t, "DirectMessage", 1)
	assert.Len(t, f.recorder.ofType(events.EventTypeGateMemberEvicted), 2)
}

func TestLifecycle_ExpiredGatesArePurged(t *testing.T) {
	f := setupLifecycle(t)
	ctx := context.Background()

	expires := f.clock.Now().Add(10 * time.Second)
	uow := f.engine.UowFactory.CreateForGuild(100)
	require.NoError(t, uow.Begin(ctx))
	_, err := f.engine.GateService(uow).Create(ctx, interfaces.CreateGateParams{
		GuildID:   100,
		ChannelID: 101,
		MessageID: 6000,
		Tokens:    []string{"77"},
		ExpiresAt: &expires,
	})
	require.NoError(t, err)
	require.NoError(t, uow.Commit())

	assert.Equal(t, 0, f.scheduler.PurgeExpiredGates(ctx))

	f.clock.Advance(11 * time.Second)
	assert.Equal(t, 1, f.scheduler.PurgeExpiredGates(ctx))
	assert.Equal(t, 0, f.scheduler.PurgeExpiredGates(ctx))
}
