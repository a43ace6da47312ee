package drawings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/skyblockz/sbz-giveaway/application"
	"github.com/skyblockz/sbz-giveaway/domain/entities"
	"github.com/skyblockz/sbz-giveaway/domain/events"
	"github.com/skyblockz/sbz-giveaway/domain/testhelpers"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var handlerNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type mockMessenger struct {
	mock.Mock
}

func (m *mockMessenger) ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	args := m.Called(channelID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discordgo.Message), args.Error(1)
}

func (m *mockMessenger) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	args := m.Called(channelID, embed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discordgo.Message), args.Error(1)
}

func (m *mockMessenger) ChannelMessageEditComplex(edit *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	args := m.Called(edit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discordgo.Message), args.Error(1)
}

type featureFixture struct {
	uows      *application.FakeUnitOfWorkFactory
	platform  *testhelpers.MockChatPlatform
	messenger *mockMessenger
	feature   *Feature
}

func setupFeature() *featureFixture {
	f := &featureFixture{
		uows:      application.NewFakeUnitOfWorkFactory(),
		platform:  new(testhelpers.MockChatPlatform),
		messenger: new(mockMessenger),
	}
	engine := application.NewEngineContext(f.uows, f.platform, application.NewNoticeCache())
	engine.Clock = &application.FixedClock{At: handlerNow}

	f.feature = &Feature{session: f.messenger, engine: engine, participateEmoji: "🎉"}
	return f
}

func createInteraction() *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{GuildID: "100"}}
}

func createOptions() optionMap {
	return optionMap{
		"channel":  {Name: "channel", Type: discordgo.ApplicationCommandOptionChannel, Value: "200"},
		"host":     {Name: "host", Type: discordgo.ApplicationCommandOptionUser, Value: "1"},
		"prize":    {Name: "prize", Type: discordgo.ApplicationCommandOptionString, Value: "Hyperion"},
		"winners":  {Name: "winners", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(2)},
		"duration": {Name: "duration", Type: discordgo.ApplicationCommandOptionString, Value: "1h"},
	}
}

func TestFeature_CreateCommitsBeforeAnnouncing(t *testing.T) {
	f := setupFeature()
	ctx := context.Background()

	f.uows.Drawings.On("NextID", mock.Anything).Return(int64(7), nil)
	f.uows.Drawings.On("Create", mock.Anything, mock.MatchedBy(func(d *entities.Drawing) bool {
		return d.ID == 7 && d.WinnerCount == 2 && d.LengthSecs == 3600
	})).Return(nil)

	commitsAtPost := -1
	f.messenger.On("ChannelMessageSendEmbed", "200", mock.Anything).
		Run(func(mock.Arguments) { commitsAtPost = f.uows.Commits() }).
		Return(&discordgo.Message{ID: "900"}, nil)
	f.uows.Drawings.On("SetMessage", mock.Anything, int64(7), int64(200), int64(900)).Return(nil)
	f.platform.On("AddReaction", mock.Anything, int64(200), int64(900), "🎉").Return(nil)

	drawing, err := f.feature.create(ctx, createInteraction(), createOptions())

	require.NoError(t, err)
	assert.Equal(t, 1, commitsAtPost)
	assert.Equal(t, 2, f.uows.Commits())
	require.True(t, drawing.HasMessage())
	assert.Equal(t, int64(900), *drawing.MessageID)
	f.uows.Drawings.AssertExpectations(t)
	f.platform.AssertExpectations(t)
}

func TestFeature_CreateCancelsUnannouncedDrawing(t *testing.T) {
	f := setupFeature()
	ctx := context.Background()

	stored := &entities.Drawing{ID: 7, GuildID: 100, ChannelID: 200, WinnerCount: 2, LengthSecs: 3600, Requirements: []int64{}, Participants: []int64{}, CreatedAt: handlerNow}

	f.uows.Drawings.On("NextID", mock.Anything).Return(int64(7), nil)
	f.uows.Drawings.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.messenger.On("ChannelMessageSendEmbed", "200", mock.Anything).Return(nil, errors.New("missing permissions"))
	f.uows.Drawings.On("GetByIDForUpdate", mock.Anything, int64(7)).Return(stored, nil)
	f.uows.Drawings.On("SetWinnersIfUnrolled", mock.Anything, int64(7), entities.NoWinnerSentinel, entities.OutcomeCanceled, handlerNow).Return(true, nil)

	_, err := f.feature.create(ctx, createInteraction(), createOptions())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to post announcement")
	f.uows.Drawings.AssertNotCalled(t, "SetMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.platform.AssertNotCalled(t, "AddReaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	committed := f.uows.Committed()
	require.Len(t, committed, 1)
	assert.Equal(t, events.EventTypeDrawingCanceled, committed[0].Type())
}

func TestFeature_CreateRejectsBadDuration(t *testing.T) {
	f := setupFeature()
	opts := createOptions()
	opts["duration"] = &discordgo.ApplicationCommandInteractionDataOption{Name: "duration", Type: discordgo.ApplicationCommandOptionString, Value: "soon"}

	_, err := f.feature.create(context.Background(), createInteraction(), opts)

	assert.ErrorIs(t, err, entities.ErrInvalidDuration)
	assert.Equal(t, 0, f.uows.Commits())
	f.messenger.AssertNotCalled(t, "ChannelMessageSendEmbed", mock.Anything, mock.Anything)
}

func TestFeature_AnnounceResultSurvivesDeletedAnnouncement(t *testing.T) {
	f := setupFeature()
	messageID := int64(900)
	drawing := &entities.Drawing{ID: 7, ChannelID: 200, MessageID: &messageID, PrizeName: "Hyperion", WinnerCount: 1, Participants: []int64{11}}
	drawing.Roll([]int64{11}, entities.OutcomeWinners, handlerNow)

	f.messenger.On("ChannelMessageEditComplex", mock.Anything).Return(nil, errors.New("unknown message"))
	f.messenger.On("ChannelMessageSend", "200", mock.Anything).Return(&discordgo.Message{ID: "901"}, nil)

	require.NoError(t, f.feature.AnnounceResult(context.Background(), drawing, false))
	f.messenger.AssertNumberOfCalls(t, "ChannelMessageSend", 1)
}
