package services

import (
	"context"
	"testing"
	"time"

	"github.com/skyblockz/sbz-giveaway/domain/entities"
	"github.com/skyblockz/sbz-giveaway/domain/events"
	"github.com/skyblockz/sbz-giveaway/domain/interfaces"
	"github.com/skyblockz/sbz-giveaway/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupDrawingMocks() (*testhelpers.MockDrawingRepository, *testhelpers.MockEventPublisher, interfaces.DrawingService) {
	repo := new(testhelpers.MockDrawingRepository)
	publisher := new(testhelpers.MockEventPublisher)
	return repo, publisher, NewDrawingService(repo, publisher, NewSeededSource(42))
}

func TestDrawingService_Create(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		repo, _, service := setupDrawingMocks()
		repo.On("NextID", ctx).Return(int64(3), nil)
		repo.On("Create", ctx, mock.MatchedBy(func(d *entities.Drawing) bool {
			return d.ID == 3 &&
				d.PrizeName == "Hyperion" &&
				d.LengthSecs == 7200 &&
				d.Participants != nil && len(d.Participants) == 0 &&
				d.Requirements != nil &&
				d.Winners == nil
		})).Return(nil)

		drawing, err := service.Create(ctx, interfaces.CreateDrawingParams{
			GuildID:     100,
			ChannelID:   200,
			HostID:      1,
			PrizeName:   "  Hyperion ",
			WinnerCount: 2,
			Length:      2 * time.Hour,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(3), drawing.ID)
		assert.Equal(t, entities.DrawingStateOpen, drawing.State())
		assert.False(t, drawing.CreatedAt.IsZero())
		repo.AssertExpectations(t)
	})

	invalid := []struct {
		name    string
		params  interfaces.CreateDrawingParams
		wantErr error
	}{
		{
			name:    "zero winners",
			params:  interfaces.CreateDrawingParams{PrizeName: "x", WinnerCount: 0, Length: time.Hour},
			wantErr: entities.ErrInvalidWinnerCount,
		},
		{
			name:    "sub-second length",
			params:  interfaces.CreateDrawingParams{PrizeName: "x", WinnerCount: 1, Length: 500 * time.Millisecond},
			wantErr: entities.ErrInvalidDuration,
		},
		{
			name:    "blank prize",
			params:  interfaces.CreateDrawingParams{PrizeName: "   ", WinnerCount: 1, Length: time.Hour},
			wantErr: entities.ErrEmptyPrize,
		},
	}

	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo, _, service := setupDrawingMocks()

			_, err := service.Create(ctx, tt.params)

			assert.ErrorIs(t, err, tt.wantErr)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestDrawingService_Resolve(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name         string
		participants []int64
		winnerCount  int
		wantOutcome  entities.DrawingOutcome
		wantState    entities.DrawingState
	}{
		{
			name:         "enough participants",
			participants: []int64{1, 2, 3, 4},
			winnerCount:  2,
			wantOutcome:  entities.OutcomeWinners,
			wantState:    entities.DrawingStateResolved,
		},
		{
			name:         "exactly enough participants",
			participants: []int64{1, 2},
			winnerCount:  2,
			wantOutcome:  entities.OutcomeWinners,
			wantState:    entities.DrawingStateResolved,
		},
		{
			name:        "nobody joined",
			winnerCount: 1,
			wantOutcome: entities.OutcomeNoParticipants,
			wantState:   entities.DrawingStateCanceledNoParticipants,
		},
		{
			name:         "too few joined",
			participants: []int64{1},
			winnerCount:  3,
			wantOutcome:  entities.OutcomeInsufficientParticipants,
			wantState:    entities.DrawingStateCanceledInsufficient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo, publisher, service := setupDrawingMocks()
			drawing := openDrawing()
			drawing.WinnerCount = tt.winnerCount
			if tt.participants != nil {
				drawing.Participants = tt.participants
			}
			now := drawing.Deadline().Add(time.Second)

			repo.On("GetByIDForUpdate", ctx, int64(7)).Return(drawing, nil)
			repo.On("SetWinnersIfUnrolled", ctx, int64(7), mock.Anything, tt.wantOutcome, now).Return(true, nil)
			publisher.On("Publish", mock.AnythingOfType("events.DrawingResolvedEvent")).Return(nil)

			resolution, err := service.Resolve(ctx, 7, now)

			require.NoError(t, err)
			assert.Equal(t, tt.wantOutcome, resolution.Result.Outcome)
			assert.Equal(t, tt.wantState, resolution.Drawing.State())
			if tt.wantOutcome == entities.OutcomeWinners {
				assert.Len(t, resolution.Drawing.Winners, tt.winnerCount)
				for _, w := range resolution.Drawing.Winners {
					assert.Contains(t, tt.participants, w)
				}
			} else {
				assert.Equal(t, entities.NoWinnerSentinel, resolution.Drawing.Winners)
				assert.Empty(t, resolution.Drawing.EffectiveWinners())
			}
			repo.AssertExpectations(t)
			publisher.AssertExpectations(t)
		})
	}
}

func TestDrawingService_ResolveExactlyOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("already rolled", func(t *testing.T) {
		t.Parallel()

		repo, publisher, service := setupDrawingMocks()
		drawing := openDrawing()
		drawing.Participants = []int64{1}
		drawing.Roll([]int64{1}, entities.OutcomeWinners, drawing.Deadline())
		repo.On("GetByIDForUpdate", ctx, int64(7)).Return(drawing, nil)

		_, err := service.Resolve(ctx, 7, drawing.Deadline().Add(time.Minute))

		assert.ErrorIs(t, err, entities.ErrAlreadyResolved)
		repo.AssertNotCalled(t, "SetWinnersIfUnrolled", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		publisher.AssertNotCalled(t, "Publish", mock.Anything)
	})

	t.Run("lost the check-and-set", func(t *testing.T) {
		t.Parallel()

		repo, publisher, service := setupDrawingMocks()
		drawing := openDrawing()
		drawing.Participants = []int64{1, 2}
		now := drawing.Deadline()
		repo.On("GetByIDForUpdate", ctx, int64(7)).Return(drawing, nil)
		repo.On("SetWinnersIfUnrolled", ctx, int64(7), mock.Anything, entities.OutcomeWinners, now).Return(false, nil)

		_, err := service.Resolve(ctx, 7, now)

		assert.ErrorIs(t, err, entities.ErrAlreadyResolved)
		publisher.AssertNotCalled(t, "Publish", mock.Anything)
	})

	t.Run("not yet due", func(t *testing.T) {
		t.Parallel()

		repo, _, service := setupDrawingMocks()
		drawing := openDrawing()
		repo.On("GetByIDForUpdate", ctx, int64(7)).Return(drawing, nil)

		_, err := service.Resolve(ctx, 7, drawing.Deadline().Add(-time.Second))

		assert.ErrorIs(t, err, entities.ErrNotDue)
	})

	t.Run("unknown drawing", func(t *testing.T) {
		t.Parallel()

		repo, _, service := setupDrawingMocks()
		repo.On("GetByIDForUpdate", ctx, int64(7)).Return(nil, nil)

		_, err := service.Resolve(ctx, 7, time.Now())

		assert.ErrorIs(t, err, entities.ErrDrawingNotFound)
	})
}

func TestDrawingService_Reroll(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo, publisher, service := setupDrawingMocks()
	drawing := openDrawing()
	drawing.Participants = []int64{1, 2, 3}
	drawing.Roll([]int64{2}, entities.OutcomeWinners, drawing.Deadline())
	now := drawing.Deadline().Add(time.Hour)

	repo.On("GetByIDForUpdate", ctx, int64(7)).Return(drawing, nil)
	repo.On("OverwriteWinners", ctx, int64(7), mock.Anything, entities.OutcomeWinners, now).Return(nil)
	publisher.On("Publish", mock.MatchedBy(func(e events.DrawingRerolledEvent) bool {
		return e.Drawing.ID == 7 && len(e.Drawing.Winners) == 1
	})).Return(nil)

	// Rerolling is repeatable on a resolved drawing.
	for i := 0; i < 3; i++ {
		resolution, err := service.Reroll(ctx, 7, now)
		require.NoError(t, err)
		assert.Equal(t, entities.OutcomeWinners, resolution.Result.Outcome)
		assert.Contains(t, []int64{1, 2, 3}, resolution.Drawing.Winners[0])
	}

	repo.AssertNumberOfCalls(t, "OverwriteWinners", 3)
	publisher.AssertNumberOfCalls(t, "Publish", 3)
}

func TestDrawingService_RerollEmptyRoster(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo, publisher, service := setupDrawingMocks()
	drawing := openDrawing()
	now := drawing.Deadline()

	repo.On("GetByIDForUpdate", ctx, int64(7)).Return(drawing, nil)
	repo.On("OverwriteWinners", ctx, int64(7), entities.NoWinnerSentinel, entities.OutcomeNoParticipants, now).Return(nil)
	publisher.On("Publish", mock.AnythingOfType("events.DrawingRerolledEvent")).Return(nil)

	resolution, err := service.Reroll(ctx, 7, now)

	require.NoError(t, err)
	assert.Equal(t, entities.DrawingStateCanceledNoParticipants, resolution.Drawing.State())
	repo.AssertExpectations(t)
}

func TestDrawingService_Cancel(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("open drawing", func(t *testing.T) {
		t.Parallel()

		repo, publisher, service := setupDrawingMocks()
		drawing := openDrawing()
		now := drawing.CreatedAt.Add(time.Minute)

		repo.On("GetByIDForUpdate", ctx, int64(7)).Return(drawing, nil)
		repo.On("SetWinnersIfUnrolled", ctx, int64(7), entities.NoWinnerSentinel, entities.OutcomeCanceled, now).Return(true, nil)
		publisher.On("Publish", mock.AnythingOfType("events.DrawingCanceledEvent")).Return(nil)

		canceled, err := service.Cancel(ctx, 7, now)

		require.NoError(t, err)
		assert.Equal(t, entities.DrawingStateCanceled, canceled.State())
		assert.True(t, canceled.IsTerminal())
		publisher.AssertExpectations(t)
	})

	t.Run("already resolved", func(t *testing.T) {
		t.Parallel()

		repo, _, service := setupDrawingMocks()
		drawing := openDrawing()
		drawing.Roll(entities.NoWinnerSentinel, entities.OutcomeNoParticipants, drawing.Deadline())
		repo.On("GetByIDForUpdate", ctx, int64(7)).Return(drawing, nil)

		_, err := service.Cancel(ctx, 7, time.Now())

		assert.ErrorIs(t, err, entities.ErrAlreadyResolved)
	})
}
