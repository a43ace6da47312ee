package services

import (
	"errors"
	"testing"

	"github.com/skyblockz/sbz-giveaway/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSource struct{}

func (failingSource) IntN(int) (int, error) {
	return 0, errors.New("entropy exhausted")
}

func TestSelectWinners_Outcomes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		participants []int64
		count        int
		wantOutcome  entities.DrawingOutcome
		wantWinners  int
	}{
		{
			name:         "no participants",
			participants: nil,
			count:        1,
			wantOutcome:  entities.OutcomeNoParticipants,
		},
		{
			name:         "fewer participants than winners",
			participants: []int64{1, 2},
			count:        3,
			wantOutcome:  entities.OutcomeInsufficientParticipants,
		},
		{
			name:         "equal counts make everyone a winner",
			participants: []int64{1, 2, 3},
			count:        3,
			wantOutcome:  entities.OutcomeWinners,
			wantWinners:  3,
		},
		{
			name:         "single winner from many",
			participants: []int64{1, 2, 3, 4, 5, 6, 7, 8},
			count:        1,
			wantOutcome:  entities.OutcomeWinners,
			wantWinners:  1,
		},
		{
			name:         "several winners from many",
			participants: []int64{11, 12, 13, 14, 15, 16, 17, 18, 19, 20},
			count:        4,
			wantOutcome:  entities.OutcomeWinners,
			wantWinners:  4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := SelectWinners(tt.participants, tt.count, NewSeededSource(7))
			require.NoError(t, err)
			assert.Equal(t, tt.wantOutcome, result.Outcome)
			assert.Len(t, result.Winners, tt.wantWinners)

			seen := make(map[int64]bool)
			for _, w := range result.Winners {
				assert.Contains(t, tt.participants, w)
				assert.False(t, seen[w], "winner %d drawn twice", w)
				seen[w] = true
			}
		})
	}
}

func TestSelectWinners_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	participants := []int64{1, 2, 3, 4, 5}
	original := append([]int64(nil), participants...)

	_, err := SelectWinners(participants, 3, NewSeededSource(42))
	require.NoError(t, err)
	assert.Equal(t, original, participants)
}

func TestSelectWinners_PropagatesRandomFailure(t *testing.T) {
	t.Parallel()

	_, err := SelectWinners([]int64{1, 2}, 1, failingSource{})
	assert.Error(t, err)
}

func TestSelectWinners_RoughlyUniform(t *testing.T) {
	t.Parallel()

	participants := []int64{1, 2, 3, 4}
	counts := make(map[int64]int)
	rnd := NewSeededSource(2024)

	const rounds = 8000
	for i := 0; i < rounds; i++ {
		result, err := SelectWinners(participants, 1, rnd)
		require.NoError(t, err)
		counts[result.Winners[0]]++
	}

	expected := rounds / len(participants)
	for _, p := range participants {
		assert.InDelta(t, expected, counts[p], float64(expected)*0.15, "participant %d", p)
	}
}

func TestSelectWinners_CryptoSource(t *testing.T) {
	t.Parallel()

	result, err := SelectWinners([]int64{5, 6, 7}, 2, NewCryptoSource())
	require.NoError(t, err)
	assert.Len(t, result.Winners, 2)
	assert.NotEqual(t, result.Winners[0], result.Winners[1])
}

func TestRollResult_PersistedWinners(t *testing.T) {
	t.Parallel()

	none := entities.RollResult{Outcome: entities.OutcomeNoParticipants}
	assert.Equal(t, entities.NoWinnerSentinel, none.PersistedWinners())

	some := entities.RollResult{Outcome: entities.OutcomeWinners, Winners: []int64{9}}
	assert.Equal(t, []int64{9}, some.PersistedWinners())
}
