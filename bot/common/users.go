package common

import (
	"strconv"

	"github.com/skyblockz/sbz-giveaway/config"

	"github.com/bwmarrin/discordgo"
)

// InvokerID returns the id of the user behind the interaction, or 0 if it cannot be parsed
func InvokerID(i *discordgo.InteractionCreate) int64 {
	var raw string
	switch {
	case i.Member != nil && i.Member.User != nil:
		raw = i.Member.User.ID
	case i.User != nil:
		raw = i.User.ID
	}
	id, _ := strconv.ParseInt(raw, 10, 64)
	return id
}

// GuildID parses the interaction's guild; 0 outside guilds
func GuildID(i *discordgo.InteractionCreate) int64 {
	id, _ := strconv.ParseInt(i.GuildID, 10, 64)
	return id
}

// IsOperator reports whether the invoker holds an operator role or guild administrator.
// Interaction members carry their resolved permissions, so no API call is needed.
func IsOperator(i *discordgo.InteractionCreate) bool {
	if i.Member == nil {
		return false
	}
	if i.Member.Permissions&discordgo.PermissionAdministrator != 0 {
		return true
	}

	roles := make([]int64, 0, len(i.Member.Roles))
	for _, r := range i.Member.Roles {
		if id, err := strconv.ParseInt(r, 10, 64); err == nil {
			roles = append(roles, id)
		}
	}
	return config.Get().IsOperator(roles)
}

// IsOwner reports whether the invoker may run owner-only commands
func IsOwner(i *discordgo.InteractionCreate) bool {
	return config.Get().IsOwner(InvokerID(i))
}

// RequireOperator answers with an error and returns false when the invoker is not an operator
func RequireOperator(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	if IsOperator(i) {
		return true
	}
	RespondWithError(s, i, "You need an operator role or administrator permissions to use this command")
	return false
}

// Options indexes the options of the invoked subcommand by name
func Options(i *discordgo.InteractionCreate) (string, map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	opts := i.ApplicationCommandData().Options
	byName := make(map[string]*discordgo.ApplicationCommandInteractionDataOption)
	if len(opts) == 0 {
		return "", byName
	}

	sub := opts[0]
	if sub.Type != discordgo.ApplicationCommandOptionSubCommand {
		for _, o := range opts {
			byName[o.Name] = o
		}
		return "", byName
	}
	for _, o := range sub.Options {
		byName[o.Name] = o
	}
	return sub.Name, byName
}

// StringOption returns the named string option or ""
func StringOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	if o, ok := opts[name]; ok {
		return o.StringValue()
	}
	return ""
}

// IntOption returns the named integer option or 0
func IntOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) int64 {
	if o, ok := opts[name]; ok {
		return o.IntValue()
	}
	return 0
}

// SnowflakeOption parses a user, role or channel option into an id
func SnowflakeOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) int64 {
	o, ok := opts[name]
	if !ok {
		return 0
	}
	raw, _ := o.Value.(string)
	id, _ := strconv.ParseInt(raw, 10, 64)
	return id
}
