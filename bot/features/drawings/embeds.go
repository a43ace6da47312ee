package drawings

import (
	"fmt"
	"time"

	"github.com/skyblockz/sbz-giveaway/application"
	"github.com/skyblockz/sbz-giveaway/bot/common"
	"github.com/skyblockz/sbz-giveaway/domain/entities"
	"github.com/skyblockz/sbz-giveaway/domain/utils"

	"github.com/bwmarrin/discordgo"
)

// baseEmbed carries the fields shared by every drawing embed
func baseEmbed(d *entities.Drawing, title string, color int, footer string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:     title,
		Color:     color,
		Timestamp: d.Deadline().Format(time.RFC3339),
		Footer:    &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("ID: %d| %s", d.ID, footer)},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Hosted By", Value: fmt.Sprintf("<@%d>", d.HostID), Inline: true},
		},
	}
	if !d.IsOpenToAll() {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Requirements (Match one of them)",
			Value:  common.Truncate(utils.FormatIDs(d.Requirements, "<@&"), common.MaxEmbedFieldLength),
			Inline: true,
		})
	}
	if d.ImageURL != nil && *d.ImageURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: *d.ImageURL}
	}
	return embed
}

// OpenEmbed is posted when the drawing starts
func OpenEmbed(d *entities.Drawing) *discordgo.MessageEmbed {
	embed := baseEmbed(d, d.PrizeName, common.ColorGiveaway, "Ends At")
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "Winners",
		Value:  fmt.Sprintf("%d", d.WinnerCount),
		Inline: true,
	})
	return embed
}

// ResultEmbed replaces the announcement once the drawing reached a terminal state
func ResultEmbed(d *entities.Drawing, rerolled bool) *discordgo.MessageEmbed {
	title := d.PrizeName
	if rerolled {
		title += " (Rerolled)"
	}

	switch d.State() {
	case entities.DrawingStateCanceledNoParticipants:
		embed := baseEmbed(d, title, common.ColorDarkRed, "Ended At")
		embed.Description = "No one has joined the giveaway, thus the roll has been canceled"
		return embed
	case entities.DrawingStateCanceledInsufficient:
		embed := baseEmbed(d, title, common.ColorDarkRed, "Ended At")
		embed.Description = fmt.Sprintf("Not enough people joined the giveaway (only %d), thus the roll has been canceled", len(d.Participants))
		return embed
	case entities.DrawingStateCanceled:
		embed := baseEmbed(d, title, common.ColorDarkRed, "Ended At")
		embed.Description = "The giveaway has been canceled by an operator"
		return embed
	}

	winners := d.EffectiveWinners()
	name := "Winner"
	if len(winners) >= 2 {
		name = "Winners"
	}
	embed := baseEmbed(d, title, common.ColorSuccess, "Ended At")
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  name,
		Value: common.Truncate(utils.FormatIDs(winners, "<@"), common.MaxEmbedFieldLength),
	})
	return embed
}

// ResultMessage is the public message posted next to the announcement
func ResultMessage(d *entities.Drawing, rerolled bool) string {
	prefix := fmt.Sprintf("Giveaway of %s (ID:%d)", d.PrizeName, d.ID)

	switch d.State() {
	case entities.DrawingStateCanceledNoParticipants:
		return prefix + " has been canceled, due to no participants in the giveaway"
	case entities.DrawingStateCanceledInsufficient:
		return fmt.Sprintf("%s has been canceled, due to not enough people joined the giveaway (only %d)", prefix, len(d.Participants))
	case entities.DrawingStateCanceled:
		return prefix + " has been canceled"
	}

	pings := common.MentionUsers(d.EffectiveWinners())
	if rerolled {
		return fmt.Sprintf("%s has been rerolled, new winners: %s\nCongratulations!", prefix, pings)
	}
	return fmt.Sprintf("%s has been rolled, winners: %s\nCongratulations!", prefix, pings)
}

// InfoEmbed summarizes a drawing for operators
func InfoEmbed(d *entities.Drawing, now time.Time) *discordgo.MessageEmbed {
	state := string(d.State())
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Giveaway %d: %s", d.ID, d.PrizeName),
		Color: common.ColorPrimary,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "State", Value: state, Inline: true},
			{Name: "Participants", Value: common.FormatCount(len(d.Participants)), Inline: true},
			{Name: "Winners", Value: fmt.Sprintf("%d", d.WinnerCount), Inline: true},
			{Name: "Hosted By", Value: fmt.Sprintf("<@%d>", d.HostID), Inline: true},
		},
	}

	if d.IsRolled() {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Ended", Value: common.FormatDeadline(d.Deadline(), now)})
	} else {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Ends", Value: common.FormatDeadline(d.Deadline(), now)})
	}
	if !d.IsOpenToAll() {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Requirements (Match one of them)",
			Value: common.Truncate(utils.FormatIDs(d.Requirements, "<@&"), common.MaxEmbedFieldLength),
		})
	}
	if winners := d.EffectiveWinners(); len(winners) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Drawn",
			Value: common.Truncate(utils.FormatIDs(winners, "<@"), common.MaxEmbedFieldLength),
		})
	}
	if d.HasMessage() {
		embed.URL = application.MessageLink(d.GuildID, d.ChannelID, *d.MessageID)
	}
	return embed
}
