package gates

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/skyblockz/sbz-giveaway/application"
	"github.com/skyblockz/sbz-giveaway/domain/entities"
	"github.com/skyblockz/sbz-giveaway/domain/events"
	"github.com/skyblockz/sbz-giveaway/domain/interfaces"
	"github.com/skyblockz/sbz-giveaway/domain/testhelpers"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var handlerNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type featureFixture struct {
	uows     *application.FakeUnitOfWorkFactory
	platform *testhelpers.MockChatPlatform
	feature  *Feature
}

func setupFeature() *featureFixture {
	f := &featureFixture{
		uows:     application.NewFakeUnitOfWorkFactory(),
		platform: new(testhelpers.MockChatPlatform),
	}
	engine := application.NewEngineContext(f.uows, f.platform, application.NewNoticeCache())
	engine.Clock = &application.FixedClock{At: handlerNow}

	scheduler := application.NewScheduler(engine, application.SchedulerConfig{
		Tick:            time.Second,
		GateLookahead:   30 * time.Second,
		IndefiniteSweep: time.Minute,
		NoticeReset:     12 * time.Hour,
	})
	f.feature = NewFeature(nil, engine, scheduler)
	return f
}

func stringOpt(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionString,
		Value: value,
	}
}

func channelOpt(value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  "channel",
		Type:  discordgo.ApplicationCommandOptionChannel,
		Value: value,
	}
}

// reactors on message 99: member 1 holds role 555, member 2 does not
func (f *featureFixture) expectReactions() {
	f.platform.On("ListReactions", mock.Anything, int64(200), int64(99)).Return([]interfaces.Reaction{
		{Emoji: "✅", Users: []interfaces.Reactor{{UserID: 1}, {UserID: 2}, {UserID: 3, Bot: true}}},
	}, nil).Once()
	f.platform.On("MemberRoles", mock.Anything, int64(100), int64(1)).Return([]int64{555}, nil)
	f.platform.On("MemberRoles", mock.Anything, int64(100), int64(2)).Return([]int64{7}, nil)
	f.platform.On("RemoveReaction", mock.Anything, int64(200), int64(99), "✅", int64(2)).Return(nil)
	f.platform.On("DirectMessage", mock.Anything, int64(2), mock.Anything).Return(nil)
}

func TestFeature_CreateSweepsExistingReactions(t *testing.T) {
	f := setupFeature()
	ctx := context.Background()

	f.platform.On("MessageExists", mock.Anything, int64(200), int64(99)).Return(true, nil)
	f.uows.Gates.On("Create", mock.Anything, mock.MatchedBy(func(g *entities.Gate) bool {
		return g.MessageID == 99 && g.ExpiresAt != nil && g.ExpiresAt.Equal(handlerNow.Add(7*24*time.Hour))
	})).Return(nil)
	f.expectReactions()

	change, err := f.feature.create(ctx, 100, optionMap{
		"message":      stringOpt("message", "99"),
		"channel":      channelOpt("200"),
		"requirements": stringOpt("requirements", "555"),
		"expires":      stringOpt("expires", "7d"),
	})

	require.NoError(t, err)
	require.NoError(t, change.sweepErr)
	assert.Equal(t, []int64{555}, change.gate.Requirements)
	assert.Equal(t, 1, change.evicted)
	f.platform.AssertNumberOfCalls(t, "ListReactions", 1)
	f.platform.AssertCalled(t, "RemoveReaction", mock.Anything, int64(200), int64(99), "✅", int64(2))
	f.platform.AssertNotCalled(t, "RemoveReaction", mock.Anything, int64(200), int64(99), "✅", int64(1))

	// The gate commits in its own unit of work before the sweep commits the eviction
	assert.Equal(t, 2, f.uows.Commits())
	committed := f.uows.Committed()
	require.Len(t, committed, 1)
	assert.Equal(t, events.EventTypeGateMemberEvicted, committed[0].Type())

	embed := change.embed("Gate created", handlerNow)
	assert.Equal(t, "Removed 1 reaction(s)", embed.Fields[len(embed.Fields)-1].Value)
}

func TestFeature_ModifySweepsExistingReactions(t *testing.T) {
	f := setupFeature()
	ctx := context.Background()

	f.uows.Gates.On("GetByMessageID", mock.Anything, int64(99)).Return(&entities.Gate{
		MessageID:    99,
		GuildID:      100,
		ChannelID:    200,
		Requirements: []int64{7},
	}, nil)
	f.uows.Gates.On("UpdateRequirements", mock.Anything, int64(99), []int64{555}).Return(nil)
	f.expectReactions()

	change, err := f.feature.modify(ctx, 100, optionMap{
		"message":      stringOpt("message", "99"),
		"requirements": stringOpt("requirements", "555"),
	})

	require.NoError(t, err)
	assert.Equal(t, 1, change.evicted)
	f.platform.AssertNumberOfCalls(t, "ListReactions", 1)
	f.platform.AssertCalled(t, "RemoveReaction", mock.Anything, int64(200), int64(99), "✅", int64(2))
}

func TestFeature_CreateKeepsGateWhenSweepFails(t *testing.T) {
	f := setupFeature()
	ctx := context.Background()

	f.platform.On("MessageExists", mock.Anything, int64(200), int64(99)).Return(true, nil)
	f.uows.Gates.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.platform.On("ListReactions", mock.Anything, int64(200), int64(99)).Return(nil, errors.New("rate limited"))

	change, err := f.feature.create(ctx, 100, optionMap{
		"message":      stringOpt("message", "99"),
		"channel":      channelOpt("200"),
		"requirements": stringOpt("requirements", "555"),
	})

	require.NoError(t, err)
	assert.Error(t, change.sweepErr)
	assert.Nil(t, change.gate.ExpiresAt)
	assert.Equal(t, 1, f.uows.Commits())

	embed := change.embed("Gate created", handlerNow)
	assert.Contains(t, embed.Fields[len(embed.Fields)-1].Value, "/gate sweep")
}

func TestFeature_CreateMissingMessage(t *testing.T) {
	f := setupFeature()

	f.platform.On("MessageExists", mock.Anything, int64(200), int64(99)).Return(false, nil)

	_, err := f.feature.create(context.Background(), 100, optionMap{
		"message":      stringOpt("message", "99"),
		"channel":      channelOpt("200"),
		"requirements": stringOpt("requirements", "555"),
	})

	require.Error(t, err)
	f.uows.Gates.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.platform.AssertNotCalled(t, "ListReactions", mock.Anything, mock.Anything, mock.Anything)
}
