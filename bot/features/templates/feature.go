package templates

import (
	"context"
	"fmt"
	"strings"

	"github.com/skyblockz/sbz-giveaway/application"
	"github.com/skyblockz/sbz-giveaway/bot/common"
	"github.com/skyblockz/sbz-giveaway/domain/entities"
	"github.com/skyblockz/sbz-giveaway/domain/interfaces"
	"github.com/skyblockz/sbz-giveaway/domain/utils"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Feature owns the /gatetemplate command. Templates are shared across guilds.
type Feature struct {
	engine *application.EngineContext
}

// NewFeature creates a new templates feature instance
func NewFeature(engine *application.EngineContext) *Feature {
	return &Feature{engine: engine}
}

// HandleCommand routes /gatetemplate subcommands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !common.RequireOperator(s, i) {
		return
	}

	ctx := context.Background()
	sub, opts := common.Options(i)
	key := common.StringOption(opts, "key")

	if sub == "list" {
		f.handleList(ctx, s, i)
		return
	}

	var message string
	err := f.withTemplates(ctx, func(templates interfaces.TemplateService) error {
		switch sub {
		case "create":
			roles, err := f.roles(ctx, common.GuildID(i), common.StringOption(opts, "roles"))
			if err != nil {
				return err
			}
			message = fmt.Sprintf("Template `%s` created with %s", key, utils.FormatIDs(roles, "<@&"))
			return templates.Create(ctx, key, roles)
		case "delete":
			message = fmt.Sprintf("Template `%s` deleted", key)
			return templates.Delete(ctx, key)
		case "alias-add":
			alias := common.StringOption(opts, "alias")
			message = fmt.Sprintf("`%s` now refers to template `%s`", alias, key)
			return templates.AddAlias(ctx, key, alias)
		case "alias-remove":
			alias := common.StringOption(opts, "alias")
			message = fmt.Sprintf("Alias `%s` removed", alias)
			return templates.RemoveAlias(ctx, alias)
		case "role-add":
			role := common.SnowflakeOption(opts, "role")
			message = fmt.Sprintf("<@&%d> added to template `%s`", role, key)
			return templates.AddRole(ctx, key, role)
		case "role-remove":
			role := common.SnowflakeOption(opts, "role")
			message = fmt.Sprintf("<@&%d> removed from template `%s`", role, key)
			return templates.RemoveRole(ctx, key, role)
		default:
			return common.NewUserError("Unknown subcommand", "unknown gatetemplate subcommand "+sub)
		}
	})
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	if err := common.RespondWithEmbed(s, i, &discordgo.MessageEmbed{Description: message, Color: common.ColorSuccess}, true); err != nil {
		log.Errorf("Failed to respond to gatetemplate %s: %v", sub, err)
	}
}

func (f *Feature) handleList(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	var list []*entities.GateTemplate
	err := f.withTemplates(ctx, func(templates interfaces.TemplateService) error {
		var err error
		list, err = templates.List(ctx)
		return err
	})
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	if err := common.RespondWithEmbed(s, i, ListEmbed(list), true); err != nil {
		log.Errorf("Failed to respond to gatetemplate list: %v", err)
	}
}

// roles resolves a role list; template names are not accepted here
func (f *Feature) roles(ctx context.Context, guildID int64, raw string) ([]int64, error) {
	var roles []int64
	for _, token := range utils.SplitTokens(raw) {
		id, err := f.engine.Platform.ResolveRole(ctx, guildID, token)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve role %q: %w", token, err)
		}
		roles = append(roles, id)
	}
	return roles, nil
}

// withTemplates runs fn against the unscoped template store and commits on success
func (f *Feature) withTemplates(ctx context.Context, fn func(interfaces.TemplateService) error) error {
	uow := f.engine.UowFactory.CreateForGuild(0)
	if err := uow.Begin(ctx); err != nil {
		return common.NewSystemError(err, "failed to begin transaction")
	}
	defer uow.Rollback()

	if err := fn(f.engine.TemplateService(uow)); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return common.NewSystemError(err, "failed to commit transaction")
	}
	return nil
}

// ListEmbed renders every template with its aliases and roles
func ListEmbed(list []*entities.GateTemplate) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "Gate templates",
		Color: common.ColorPrimary,
	}
	if len(list) == 0 {
		embed.Description = "No templates yet"
		return embed
	}

	for idx, t := range list {
		if idx == common.MaxListEntries {
			embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("and %d more", len(list)-idx)}
			break
		}
		value := "No roles"
		if len(t.Roles) > 0 {
			value = utils.FormatIDs(t.Roles, "<@&")
		}
		if len(t.Aliases) > 0 {
			value += "\nAliases: " + strings.Join(t.Aliases, ", ")
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  t.Key,
			Value: common.Truncate(value, common.MaxEmbedFieldLength),
		})
	}
	return embed
}
