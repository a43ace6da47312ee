package drawings

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/skyblockz/sbz-giveaway/application"
	"github.com/skyblockz/sbz-giveaway/bot/common"
	"github.com/skyblockz/sbz-giveaway/domain/entities"
	"github.com/skyblockz/sbz-giveaway/domain/interfaces"
	"github.com/skyblockz/sbz-giveaway/domain/utils"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

type optionMap = map[string]*discordgo.ApplicationCommandInteractionDataOption

// handleCreate starts a drawing and posts its announcement
func (f *Feature) handleCreate(s *discordgo.Session, i *discordgo.InteractionCreate, opts optionMap) {
	if err := common.DeferResponse(s, i, true); err != nil {
		log.Errorf("Failed to defer giveaway create: %v", err)
		return
	}

	drawing, err := f.create(context.Background(), i, opts)
	if err != nil {
		common.HandleError(s, i, err, true)
		return
	}

	common.FollowUpWithSuccess(s, i, fmt.Sprintf("Giveaway %d for **%s** started in <#%d>, ends %s",
		drawing.ID, drawing.PrizeName, drawing.ChannelID, common.FormatDeadline(drawing.Deadline(), f.engine.Now())), true)
}

func (f *Feature) create(ctx context.Context, i *discordgo.InteractionCreate, opts optionMap) (*entities.Drawing, error) {
	guildID := common.GuildID(i)
	channelID := common.SnowflakeOption(opts, "channel")

	length, err := utils.ParseDuration(common.StringOption(opts, "duration"))
	if err != nil {
		return nil, err
	}

	var image *string
	if raw := strings.TrimSpace(common.StringOption(opts, "image")); raw != "" {
		image = &raw
	}

	uow := f.engine.UowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, common.NewSystemError(err, "failed to begin transaction")
	}
	defer uow.Rollback()

	var requirements []int64
	if raw := common.StringOption(opts, "requirements"); raw != "" {
		templates := f.engine.TemplateService(uow)
		tokens, err := common.RequirementTokens(ctx, f.engine.Platform, templates, guildID, raw)
		if err != nil {
			return nil, err
		}
		if requirements, err = templates.ExpandRequirements(ctx, tokens); err != nil {
			return nil, err
		}
	}

	drawing, err := f.engine.DrawingService(uow).Create(ctx, interfaces.CreateDrawingParams{
		GuildID:      guildID,
		ChannelID:    channelID,
		HostID:       common.SnowflakeOption(opts, "host"),
		PrizeName:    common.StringOption(opts, "prize"),
		ImageURL:     image,
		WinnerCount:  int(common.IntOption(opts, "winners")),
		Length:       length,
		Requirements: requirements,
		CreatedAt:    f.engine.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, common.NewSystemError(err, "failed to commit drawing")
	}

	if err := f.announce(ctx, drawing); err != nil {
		return nil, err
	}
	return drawing, nil
}

// announce posts the announcement of a stored drawing and records where it went.
// A drawing whose announcement cannot be posted is canceled so it never resolves silently.
func (f *Feature) announce(ctx context.Context, drawing *entities.Drawing) error {
	msg, err := f.session.ChannelMessageSendEmbed(strconv.FormatInt(drawing.ChannelID, 10), OpenEmbed(drawing), discordgo.WithContext(ctx))
	if err != nil {
		f.abandon(ctx, drawing)
		return common.NewUserError("Could not post in that channel, check my permissions there", fmt.Sprintf("failed to post announcement: %v", err))
	}
	messageID, err := strconv.ParseInt(msg.ID, 10, 64)
	if err != nil {
		return common.NewSystemError(err, "failed to parse announcement id")
	}

	err = f.inUnitOfWork(ctx, drawing.GuildID, func(uow application.UnitOfWork) error {
		return f.engine.DrawingService(uow).AttachMessage(ctx, drawing.ID, drawing.ChannelID, messageID)
	})
	if err != nil {
		return err
	}
	drawing.SetMessage(drawing.ChannelID, messageID)

	if err := f.engine.Platform.AddReaction(ctx, drawing.ChannelID, messageID, f.participateEmoji); err != nil {
		log.WithError(err).WithField("drawing_id", drawing.ID).Warn("Failed to seed participate reaction")
	}
	return nil
}

// abandon cancels a drawing that never got an announcement
func (f *Feature) abandon(ctx context.Context, drawing *entities.Drawing) {
	err := f.inUnitOfWork(ctx, drawing.GuildID, func(uow application.UnitOfWork) error {
		_, err := f.engine.DrawingService(uow).Cancel(ctx, drawing.ID, f.engine.Now())
		return err
	})
	if err != nil {
		log.WithError(err).WithField("drawing_id", drawing.ID).Error("Failed to cancel unannounced drawing")
	}
}

// handleReroll draws new winners; the announcement is updated by the result handler
func (f *Feature) handleReroll(s *discordgo.Session, i *discordgo.InteractionCreate, opts optionMap) {
	ctx := context.Background()
	id := common.IntOption(opts, "id")

	err := f.inUnitOfWork(ctx, common.GuildID(i), func(uow application.UnitOfWork) error {
		_, err := f.engine.DrawingService(uow).Reroll(ctx, id, f.engine.Now())
		return err
	})
	if errors.Is(err, entities.ErrDrawingNotFound) {
		err = common.NewUserError(fmt.Sprintf("Reroll failed, giveaway ID %d does not exist", id), "reroll of unknown drawing")
	}
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	if err := common.RespondWithEmbed(s, i, &discordgo.MessageEmbed{
		Description: fmt.Sprintf("Giveaway %d has been rerolled", id),
		Color:       common.ColorSuccess,
	}, true); err != nil {
		log.Errorf("Failed to respond to reroll: %v", err)
	}
}

// handleForceAdd enters a member without a reaction; owners only
func (f *Feature) handleForceAdd(s *discordgo.Session, i *discordgo.InteractionCreate, opts optionMap) {
	if !common.IsOwner(i) {
		common.RespondWithError(s, i, "Only the bot owners can force add participants")
		return
	}

	ctx := context.Background()
	id := common.IntOption(opts, "id")
	memberID := common.SnowflakeOption(opts, "member")
	guildID := common.GuildID(i)

	held, err := f.engine.Platform.MemberRoles(ctx, guildID, memberID)
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "failed to get member roles"), false)
		return
	}

	var change *interfaces.RosterChange
	err = f.inUnitOfWork(ctx, guildID, func(uow application.UnitOfWork) error {
		var err error
		change, err = f.engine.RosterService(uow).ForceAdd(ctx, id, memberID, held)
		return err
	})
	if errors.Is(err, entities.ErrDrawingNotFound) {
		err = common.NewUserError(fmt.Sprintf("Force add failed, giveaway ID %d does not exist", id), "force add to unknown drawing")
	}
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	message := fmt.Sprintf("<@%d> has been added to giveaway %d", memberID, id)
	switch {
	case change.Result == interfaces.RosterRejected:
		message = fmt.Sprintf("<@%d> does not meet the requirements of giveaway %d", memberID, id)
	case !change.Changed:
		message = fmt.Sprintf("<@%d> is already taking part in giveaway %d", memberID, id)
	}
	if err := common.RespondWithEmbed(s, i, &discordgo.MessageEmbed{Description: message, Color: common.ColorSuccess}, true); err != nil {
		log.Errorf("Failed to respond to force add: %v", err)
	}
}

// handleCancel ends an open drawing without winners
func (f *Feature) handleCancel(s *discordgo.Session, i *discordgo.InteractionCreate, opts optionMap) {
	ctx := context.Background()
	id := common.IntOption(opts, "id")

	err := f.inUnitOfWork(ctx, common.GuildID(i), func(uow application.UnitOfWork) error {
		_, err := f.engine.DrawingService(uow).Cancel(ctx, id, f.engine.Now())
		return err
	})
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	if err := common.RespondWithEmbed(s, i, &discordgo.MessageEmbed{
		Description: fmt.Sprintf("Giveaway %d has been canceled", id),
		Color:       common.ColorDarkRed,
	}, true); err != nil {
		log.Errorf("Failed to respond to cancel: %v", err)
	}
}

// handleInfo shows the stored state of a drawing
func (f *Feature) handleInfo(s *discordgo.Session, i *discordgo.InteractionCreate, opts optionMap) {
	ctx := context.Background()
	id := common.IntOption(opts, "id")

	var drawing *entities.Drawing
	err := f.inUnitOfWork(ctx, common.GuildID(i), func(uow application.UnitOfWork) error {
		var err error
		drawing, err = f.engine.DrawingService(uow).Get(ctx, id)
		return err
	})
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	if err := common.RespondWithEmbed(s, i, InfoEmbed(drawing, f.engine.Now()), true); err != nil {
		log.Errorf("Failed to respond to giveaway info: %v", err)
	}
}

// inUnitOfWork runs fn in a guild-scoped transaction and commits when it succeeds.
// Events raised by fn are delivered after the commit.
func (f *Feature) inUnitOfWork(ctx context.Context, guildID int64, fn func(uow application.UnitOfWork) error) error {
	uow := f.engine.UowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return common.NewSystemError(err, "failed to begin transaction")
	}
	defer uow.Rollback()

	if err := fn(uow); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return common.NewSystemError(err, "failed to commit transaction")
	}
	return nil
}
