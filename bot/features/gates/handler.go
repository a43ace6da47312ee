package gates

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/skyblockz/sbz-giveaway/application"
	"github.com/skyblockz/sbz-giveaway/bot/common"
	"github.com/skyblockz/sbz-giveaway/domain/entities"
	"github.com/skyblockz/sbz-giveaway/domain/interfaces"
	"github.com/skyblockz/sbz-giveaway/domain/utils"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

type optionMap = map[string]*discordgo.ApplicationCommandInteractionDataOption

// messageOption reads the message id option; it is a string because ids exceed the integer option range
func messageOption(opts optionMap) (int64, error) {
	id, ok := utils.ParseSnowflake(common.StringOption(opts, "message"))
	if !ok {
		return 0, common.NewUserError("The message must be a message id", "malformed message id")
	}
	return id, nil
}

func (f *Feature) handleCreate(s *discordgo.Session, i *discordgo.InteractionCreate, opts optionMap) {
	ctx := context.Background()

	result, err := f.create(ctx, common.GuildID(i), opts)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	if err := common.RespondWithEmbed(s, i, result.embed("Gate created", f.engine.Now()), true); err != nil {
		log.Errorf("Failed to respond to gate create: %v", err)
	}
}

// gateChange is a committed create or modify and the sweep that followed it
type gateChange struct {
	gate     *entities.Gate
	evicted  int
	sweepErr error
}

func (c *gateChange) embed(title string, now time.Time) *discordgo.MessageEmbed {
	embed := GateEmbed(title, c.gate, now)
	swept := fmt.Sprintf("Removed %s reaction(s)", common.FormatCount(c.evicted))
	if c.sweepErr != nil {
		swept = "Sweep failed, run /gate sweep to retry"
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Sweep", Value: swept})
	return embed
}

// sweepChanged reconciles existing reactions against the new requirements.
// The gate change is already committed, so a failed sweep is reported, not returned.
func (f *Feature) sweepChanged(ctx context.Context, gate *entities.Gate) *gateChange {
	change := &gateChange{gate: gate}
	change.evicted, change.sweepErr = f.scheduler.SweepGate(ctx, gate)
	if change.sweepErr != nil {
		log.WithFields(log.Fields{
			"gate_id": gate.MessageID,
			"error":   change.sweepErr,
		}).Warn("Failed to sweep changed gate")
	}
	return change
}

func (f *Feature) create(ctx context.Context, guildID int64, opts optionMap) (*gateChange, error) {
	messageID, err := messageOption(opts)
	if err != nil {
		return nil, err
	}
	channelID := common.SnowflakeOption(opts, "channel")

	exists, err := f.engine.Platform.MessageExists(ctx, channelID, messageID)
	if err != nil {
		return nil, common.NewSystemError(err, "failed to look up gated message")
	}
	if !exists {
		return nil, common.NewUserError(fmt.Sprintf("Could not find message %d in <#%d>", messageID, channelID), "gated message not found")
	}

	var expiresAt *time.Time
	if raw := strings.TrimSpace(common.StringOption(opts, "expires")); raw != "" {
		length, err := utils.ParseDuration(raw)
		if err != nil {
			return nil, err
		}
		at := f.engine.Now().Add(length)
		expiresAt = &at
	}

	var gate *entities.Gate
	err = f.inUnitOfWork(ctx, guildID, func(uow application.UnitOfWork) error {
		tokens, err := common.RequirementTokens(ctx, f.engine.Platform, f.engine.TemplateService(uow), guildID, common.StringOption(opts, "requirements"))
		if err != nil {
			return err
		}
		gate, err = f.engine.GateService(uow).Create(ctx, interfaces.CreateGateParams{
			GuildID:   guildID,
			ChannelID: channelID,
			MessageID: messageID,
			Tokens:    tokens,
			ExpiresAt: expiresAt,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return f.sweepChanged(ctx, gate), nil
}

func (f *Feature) handleModify(s *discordgo.Session, i *discordgo.InteractionCreate, opts optionMap) {
	ctx := context.Background()

	result, err := f.modify(ctx, common.GuildID(i), opts)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	if err := common.RespondWithEmbed(s, i, result.embed("Gate updated", f.engine.Now()), true); err != nil {
		log.Errorf("Failed to respond to gate modify: %v", err)
	}
}

func (f *Feature) modify(ctx context.Context, guildID int64, opts optionMap) (*gateChange, error) {
	messageID, err := messageOption(opts)
	if err != nil {
		return nil, err
	}

	var gate *entities.Gate
	err = f.inUnitOfWork(ctx, guildID, func(uow application.UnitOfWork) error {
		tokens, err := common.RequirementTokens(ctx, f.engine.Platform, f.engine.TemplateService(uow), guildID, common.StringOption(opts, "requirements"))
		if err != nil {
			return err
		}
		gate, err = f.engine.GateService(uow).Modify(ctx, messageID, tokens)
		return err
	})
	if err != nil {
		return nil, err
	}
	return f.sweepChanged(ctx, gate), nil
}

func (f *Feature) handleDelete(s *discordgo.Session, i *discordgo.InteractionCreate, opts optionMap) {
	ctx := context.Background()

	messageID, err := messageOption(opts)
	if err == nil {
		err = f.inUnitOfWork(ctx, common.GuildID(i), func(uow application.UnitOfWork) error {
			return f.engine.GateService(uow).Delete(ctx, messageID)
		})
	}
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	if err := common.RespondWithEmbed(s, i, &discordgo.MessageEmbed{
		Description: fmt.Sprintf("Gate on message %d removed", messageID),
		Color:       common.ColorSuccess,
	}, true); err != nil {
		log.Errorf("Failed to respond to gate delete: %v", err)
	}
}

func (f *Feature) handleList(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	var gates []*entities.Gate
	err := f.inUnitOfWork(ctx, common.GuildID(i), func(uow application.UnitOfWork) error {
		var err error
		gates, err = f.engine.GateService(uow).List(ctx)
		return err
	})
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	if err := common.RespondWithEmbed(s, i, ListEmbed(gates, f.engine.Now()), true); err != nil {
		log.Errorf("Failed to respond to gate list: %v", err)
	}
}

// handleSweep reconciles one gate on demand
func (f *Feature) handleSweep(s *discordgo.Session, i *discordgo.InteractionCreate, opts optionMap) {
	messageID, err := messageOption(opts)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}
	if err := common.DeferResponse(s, i, true); err != nil {
		log.Errorf("Failed to defer gate sweep: %v", err)
		return
	}

	ctx := context.Background()
	var gate *entities.Gate
	err = f.inUnitOfWork(ctx, common.GuildID(i), func(uow application.UnitOfWork) error {
		var err error
		gate, err = f.engine.GateService(uow).Get(ctx, messageID)
		return err
	})
	if err != nil {
		common.HandleError(s, i, err, true)
		return
	}

	evicted, err := f.scheduler.SweepGate(ctx, gate)
	if err != nil {
		common.HandleError(s, i, err, true)
		return
	}
	common.FollowUpWithSuccess(s, i, fmt.Sprintf("Swept message %d, removed %s reaction(s)", messageID, common.FormatCount(evicted)), true)
}
