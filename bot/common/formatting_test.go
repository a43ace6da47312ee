package common

import (
	"testing"
	"time"

	"github.com/skyblockz/sbz-giveaway/config"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestFormatDeadline(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	got := FormatDeadline(now.Add(3*time.Hour), now)

	assert.Equal(t, "<t:1709305200:F> (3 hours from now)", got)
}

func TestMentions(t *testing.T) {
	assert.Equal(t, "<@1> <@2>", MentionUsers([]int64{1, 2}))
	assert.Equal(t, "<@&3>", MentionRoles([]int64{3}))
	assert.Equal(t, "", MentionRoles(nil))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcd…", Truncate("abcdefgh", 5))
}

func TestIsOperator(t *testing.T) {
	config.SetTestConfig(config.NewTestConfig())
	defer config.ResetConfig()

	member := func(perms int64, roles ...string) *discordgo.InteractionCreate {
		return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
			Member: &discordgo.Member{User: &discordgo.User{ID: "111111"}, Roles: roles, Permissions: perms},
		}}
	}

	assert.True(t, IsOperator(member(0, "999999")))
	assert.True(t, IsOperator(member(discordgo.PermissionAdministrator)))
	assert.False(t, IsOperator(member(0, "5")))
	assert.True(t, IsOwner(member(0)))
	assert.Equal(t, int64(111111), InvokerID(member(0)))
}
