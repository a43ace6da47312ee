package drawings

import (
	"context"
	"fmt"

	"github.com/skyblockz/sbz-giveaway/application"
	"github.com/skyblockz/sbz-giveaway/bot/common"
	"github.com/skyblockz/sbz-giveaway/domain/entities"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// messenger is the part of *discordgo.Session that posts and edits announcements
type messenger interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Feature owns the /giveaway command and renders drawing outcomes
type Feature struct {
	session          messenger
	engine           *application.EngineContext
	participateEmoji string
}

// NewFeature creates a new drawings feature instance
func NewFeature(session *discordgo.Session, engine *application.EngineContext, participateEmoji string) *Feature {
	return &Feature{
		session:          session,
		engine:           engine,
		participateEmoji: participateEmoji,
	}
}

var _ application.Announcer = (*Feature)(nil)

// HandleCommand routes /giveaway subcommands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !common.RequireOperator(s, i) {
		return
	}

	sub, opts := common.Options(i)
	switch sub {
	case "create":
		f.handleCreate(s, i, opts)
	case "reroll":
		f.handleReroll(s, i, opts)
	case "forceadd":
		f.handleForceAdd(s, i, opts)
	case "cancel":
		f.handleCancel(s, i, opts)
	case "info":
		f.handleInfo(s, i, opts)
	default:
		common.RespondWithError(s, i, "Unknown subcommand")
	}
}

// AnnounceResult edits the announcement and posts the outcome in its channel (implements Announcer)
func (f *Feature) AnnounceResult(ctx context.Context, drawing *entities.Drawing, rerolled bool) error {
	return f.publish(ctx, drawing, ResultEmbed(drawing, rerolled), ResultMessage(drawing, rerolled))
}

// AnnounceCanceled marks the announcement as canceled (implements Announcer)
func (f *Feature) AnnounceCanceled(ctx context.Context, drawing *entities.Drawing) error {
	return f.publish(ctx, drawing, ResultEmbed(drawing, false), ResultMessage(drawing, false))
}

func (f *Feature) publish(ctx context.Context, drawing *entities.Drawing, embed *discordgo.MessageEmbed, message string) error {
	channelID := fmt.Sprintf("%d", drawing.ChannelID)

	if drawing.HasMessage() {
		_, err := f.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
			Channel: channelID,
			ID:      fmt.Sprintf("%d", *drawing.MessageID),
			Embeds:  &[]*discordgo.MessageEmbed{embed},
		}, discordgo.WithContext(ctx))
		if err != nil {
			// A deleted announcement must not suppress the result message
			log.WithError(err).WithField("drawing_id", drawing.ID).Warn("Failed to edit drawing announcement")
		}
	} else {
		log.WithField("drawing_id", drawing.ID).Warn("Drawing has no announcement to update")
	}

	if _, err := f.session.ChannelMessageSend(channelID, message, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to post result of drawing %d: %w", drawing.ID, err)
	}

	log.WithFields(log.Fields{
		"drawing_id": drawing.ID,
		"channel_id": drawing.ChannelID,
		"state":      drawing.State(),
	}).Info("Posted drawing result to Discord")
	return nil
}
