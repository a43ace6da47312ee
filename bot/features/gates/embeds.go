package gates

import (
	"fmt"
	"strings"
	"time"

	"github.com/skyblockz/sbz-giveaway/application"
	"github.com/skyblockz/sbz-giveaway/bot/common"
	"github.com/skyblockz/sbz-giveaway/domain/entities"
	"github.com/skyblockz/sbz-giveaway/domain/utils"

	"github.com/bwmarrin/discordgo"
)

func expiryText(gate *entities.Gate, now time.Time) string {
	if gate.IsIndefinite() {
		return "Never"
	}
	return common.FormatDeadline(*gate.ExpiresAt, now)
}

// GateEmbed describes a single gate
func GateEmbed(title string, gate *entities.Gate, now time.Time) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: title,
		URL:   application.MessageLink(gate.GuildID, gate.ChannelID, gate.MessageID),
		Color: common.ColorSuccess,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Message", Value: fmt.Sprintf("%d in <#%d>", gate.MessageID, gate.ChannelID)},
			{Name: "Requirements (Match one of them)", Value: common.Truncate(utils.FormatIDs(gate.Requirements, "<@&"), common.MaxEmbedFieldLength)},
			{Name: "Expires", Value: expiryText(gate, now)},
		},
	}
}

// ListEmbed renders every gate of the guild, capped at the embed field limit
func ListEmbed(gates []*entities.Gate, now time.Time) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "Gated messages",
		Color: common.ColorPrimary,
	}
	if len(gates) == 0 {
		embed.Description = "No message is gated"
		return embed
	}

	for idx, gate := range gates {
		if idx == common.MaxListEntries {
			embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("and %d more", len(gates)-idx)}
			break
		}
		lines := []string{
			fmt.Sprintf("[Jump](%s) in <#%d>", application.MessageLink(gate.GuildID, gate.ChannelID, gate.MessageID), gate.ChannelID),
			"Roles: " + utils.FormatIDs(gate.Requirements, "<@&"),
			"Expires: " + expiryText(gate, now),
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("%d", gate.MessageID),
			Value: common.Truncate(strings.Join(lines, "\n"), common.MaxEmbedFieldLength),
		})
	}
	return embed
}
