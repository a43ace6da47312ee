package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	mrand "math/rand/v2"

	"github.com/skyblockz/sbz-giveaway/domain/entities"
)

// RandomSource yields a uniform integer in [0, n)
type RandomSource interface {
	IntN(n int) (int, error)
}

type cryptoSource struct{}

// NewCryptoSource returns the production random source backed by crypto/rand
func NewCryptoSource() RandomSource {
	return cryptoSource{}
}

func (cryptoSource) IntN(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("failed to generate random number: %w", err)
	}
	return int(v.Int64()), nil
}

type seededSource struct {
	r *mrand.Rand
}

// NewSeededSource returns a deterministic source for reproducible draws
func NewSeededSource(seed uint64) RandomSource {
	return &seededSource{r: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *seededSource) IntN(n int) (int, error) {
	return s.r.IntN(n), nil
}

// SelectWinners draws count distinct members uniformly from participants.
// Fewer participants than count is a terminal outcome, not an error; equal
// counts make every participant a winner.
func SelectWinners(participants []int64, count int, rnd RandomSource) (entities.RollResult, error) {
	n := len(participants)
	if n == 0 {
		return entities.RollResult{Outcome: entities.OutcomeNoParticipants}, nil
	}
	if n < count {
		return entities.RollResult{Outcome: entities.OutcomeInsufficientParticipants}, nil
	}
	if count < 1 {
		return entities.RollResult{}, entities.ErrInvalidWinnerCount
	}

	pool := make([]int64, n)
	copy(pool, participants)

	// Partial Fisher-Yates: the first count slots end up as a uniform sample
	for i := 0; i < count; i++ {
		j, err := rnd.IntN(n - i)
		if err != nil {
			return entities.RollResult{}, err
		}
		j += i
		pool[i], pool[j] = pool[j], pool[i]
	}

	return entities.RollResult{
		Outcome: entities.OutcomeWinners,
		Winners: pool[:count:count],
	}, nil
}
