package testutil

import (
	"time"

	"github.com/skyblockz/sbz-giveaway/domain/entities"
)

// CreateTestDrawing returns an open drawing that became due one minute ago
func CreateTestDrawing(id, guildID int64) *entities.Drawing {
	return &entities.Drawing{
		ID:           id,
		GuildID:      guildID,
		ChannelID:    guildID + 1,
		HostID:       42,
		PrizeName:    "Hyperion",
		WinnerCount:  1,
		LengthSecs:   3600,
		Requirements: []int64{},
		Participants: []int64{},
		CreatedAt:    time.Now().UTC().Add(-61 * time.Minute).Truncate(time.Microsecond),
	}
}

// CreateFutureDrawing returns an open drawing due in one hour
func CreateFutureDrawing(id, guildID int64) *entities.Drawing {
	drawing := CreateTestDrawing(id, guildID)
	drawing.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	return drawing
}

// CreateTestGate returns an indefinite gate requiring the given roles
func CreateTestGate(messageID, guildID int64, requirements ...int64) *entities.Gate {
	if len(requirements) == 0 {
		requirements = []int64{1001}
	}
	return &entities.Gate{
		MessageID:    messageID,
		GuildID:      guildID,
		ChannelID:    guildID + 1,
		Requirements: requirements,
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
}

// ExpiringAt sets the gate's expiry and returns it
func ExpiringAt(gate *entities.Gate, at time.Time) *entities.Gate {
	at = at.UTC().Truncate(time.Microsecond)
	gate.ExpiresAt = &at
	return gate
}
