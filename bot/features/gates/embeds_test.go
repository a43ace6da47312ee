package gates

import (
	"fmt"
	"testing"
	"time"

	"github.com/skyblockz/sbz-giveaway/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateEmbed(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	expires := now.Add(2 * time.Hour)

	embed := GateEmbed("Gate created", &entities.Gate{
		MessageID:    900,
		GuildID:      100,
		ChannelID:    200,
		ExpiresAt:    &expires,
		Requirements: []int64{10, 20},
	}, now)

	assert.Equal(t, "https://discord.com/channels/100/200/900", embed.URL)
	require.Len(t, embed.Fields, 3)
	assert.Equal(t, "<@&10>, <@&20>", embed.Fields[1].Value)
	assert.Contains(t, embed.Fields[2].Value, "2 hours from now")
}

func TestListEmbed(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "No message is gated", ListEmbed(nil, now).Description)

	var gates []*entities.Gate
	for i := 0; i < 30; i++ {
		gates = append(gates, &entities.Gate{MessageID: int64(1000 + i), GuildID: 1, ChannelID: 2, Requirements: []int64{3}})
	}

	embed := ListEmbed(gates, now)

	assert.Len(t, embed.Fields, 25)
	assert.Equal(t, "and 5 more", embed.Footer.Text)
	assert.Contains(t, embed.Fields[0].Value, "Expires: Never")
	assert.Equal(t, fmt.Sprintf("%d", 1000), embed.Fields[0].Name)
}
