package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

func idOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "id",
		Description: description,
		Required:    true,
		MinValue:    new(float64),
	}
}

func messageOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "message",
		Description: "ID of the gated message",
		Required:    true,
	}
}

func requirementsOption(required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "requirements",
		Description: "Roles or templates, separated by commas or spaces (match one of them)",
		Required:    required,
	}
}

func keyOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "key",
		Description: "Template key",
		Required:    true,
	}
}

func aliasOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "alias",
		Description: "Alternative name for the template",
		Required:    true,
	}
}

func roleOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionRole,
		Name:        "role",
		Description: "Role to add or remove",
		Required:    true,
	}
}

func subcommand(name, description string, options ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        name,
		Description: description,
		Options:     options,
	}
}

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	minWinners := 1.0

	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "giveaway",
			Description: "Create and manage giveaways",
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("create", "Start a new giveaway",
					&discordgo.ApplicationCommandOption{
						Type:         discordgo.ApplicationCommandOptionChannel,
						Name:         "channel",
						Description:  "Channel to announce the giveaway in",
						Required:     true,
						ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews},
					},
					&discordgo.ApplicationCommandOption{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "duration",
						Description: "How long the giveaway runs, e.g. 1w2d3h4m5s",
						Required:    true,
					},
					&discordgo.ApplicationCommandOption{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "winners",
						Description: "Number of winners",
						Required:    true,
						MinValue:    &minWinners,
					},
					&discordgo.ApplicationCommandOption{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "prize",
						Description: "What the winners receive",
						Required:    true,
					},
					&discordgo.ApplicationCommandOption{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        "host",
						Description: "Who is hosting the giveaway",
						Required:    true,
					},
					&discordgo.ApplicationCommandOption{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "image",
						Description: "Image URL shown in the announcement",
					},
					requirementsOption(false),
				),
				subcommand("reroll", "Draw new winners for a giveaway", idOption("Giveaway ID")),
				subcommand("forceadd", "Add a participant without checking requirements (owners only)",
					idOption("Giveaway ID"),
					&discordgo.ApplicationCommandOption{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        "member",
						Description: "Member to add",
						Required:    true,
					},
				),
				subcommand("cancel", "End a running giveaway without winners", idOption("Giveaway ID")),
				subcommand("info", "Show the state of a giveaway", idOption("Giveaway ID")),
			},
		},
		{
			Name:        "gate",
			Description: "Restrict who may react to a message",
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("create", "Gate a message behind roles",
					messageOption(),
					&discordgo.ApplicationCommandOption{
						Type:        discordgo.ApplicationCommandOptionChannel,
						Name:        "channel",
						Description: "Channel containing the message",
						Required:    true,
					},
					requirementsOption(true),
					&discordgo.ApplicationCommandOption{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "expires",
						Description: "Remove the gate after this long, e.g. 2d (never when empty)",
					},
				),
				subcommand("modify", "Replace the roles of a gate", messageOption(), requirementsOption(true)),
				subcommand("delete", "Remove a gate", messageOption()),
				subcommand("list", "List gated messages"),
				subcommand("sweep", "Remove unqualified reactions from a gated message now", messageOption()),
			},
		},
		{
			Name:        "gatetemplate",
			Description: "Manage named role sets for gates and giveaways",
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("create", "Create a template", keyOption(), &discordgo.ApplicationCommandOption{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "roles",
					Description: "Roles, separated by commas or spaces",
					Required:    true,
				}),
				subcommand("delete", "Delete a template", keyOption()),
				subcommand("list", "List templates"),
				subcommand("alias-add", "Add an alias to a template", keyOption(), aliasOption()),
				subcommand("alias-remove", "Remove an alias", aliasOption()),
				subcommand("role-add", "Add a role to a template", keyOption(), roleOption()),
				subcommand("role-remove", "Remove a role from a template", keyOption(), roleOption()),
			},
		},
	}

	for _, cmd := range commands {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}

	return nil
}
