package bot

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestReactionEvent(t *testing.T) {
	t.Parallel()

	r := &discordgo.MessageReaction{
		GuildID:   "100",
		ChannelID: "101",
		MessageID: "102",
		UserID:    "103",
		Emoji:     discordgo.Emoji{Name: "🎉"},
	}

	event, ok := reactionEvent(r, &discordgo.Member{User: &discordgo.User{ID: "103", Bot: true}})

	assert.True(t, ok)
	assert.Equal(t, int64(100), event.GuildID)
	assert.Equal(t, int64(102), event.MessageID)
	assert.Equal(t, "🎉", event.Emoji)
	assert.True(t, event.Bot)

	custom := *r
	custom.Emoji = discordgo.Emoji{Name: "sbz", ID: "555"}
	event, ok = reactionEvent(&custom, nil)
	assert.True(t, ok)
	assert.Equal(t, "sbz:555", event.Emoji)
	assert.False(t, event.Bot)

	dm := *r
	dm.GuildID = ""
	_, ok = reactionEvent(&dm, nil)
	assert.False(t, ok)

	broken := *r
	broken.UserID = "abc"
	_, ok = reactionEvent(&broken, nil)
	assert.False(t, ok)
}
