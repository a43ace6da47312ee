package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/skyblockz/sbz-giveaway/domain/interfaces"
	"github.com/skyblockz/sbz-giveaway/domain/utils"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// reactionPageSize is the largest page the reactions endpoint returns
const reactionPageSize = 100

// DiscordPlatform implements interfaces.ChatPlatform on a discordgo session
type DiscordPlatform struct {
	session *discordgo.Session
}

// NewDiscordPlatform wraps the session
func NewDiscordPlatform(session *discordgo.Session) *DiscordPlatform {
	return &DiscordPlatform{session: session}
}

var _ interfaces.ChatPlatform = (*DiscordPlatform)(nil)

// MemberRoles prefers the gateway state cache and falls back to the API
func (p *DiscordPlatform) MemberRoles(ctx context.Context, guildID, memberID int64) ([]int64, error) {
	gid, uid := snowflake(guildID), snowflake(memberID)

	member, err := p.session.State.Member(gid, uid)
	if err != nil || member == nil {
		member, err = p.session.GuildMember(gid, uid, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to get member %d: %w", memberID, translate(err))
		}
	}

	roles := make([]int64, 0, len(member.Roles))
	for _, r := range member.Roles {
		id, err := strconv.ParseInt(r, 10, 64)
		if err != nil {
			continue
		}
		roles = append(roles, id)
	}
	return roles, nil
}

// ListReactions pages through the users of every emoji on the message
func (p *DiscordPlatform) ListReactions(ctx context.Context, channelID, messageID int64) ([]interfaces.Reaction, error) {
	cid, mid := snowflake(channelID), snowflake(messageID)

	msg, err := p.session.ChannelMessage(cid, mid, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch message %d: %w", messageID, translate(err))
	}

	reactions := make([]interfaces.Reaction, 0, len(msg.Reactions))
	for _, r := range msg.Reactions {
		if r.Emoji == nil {
			continue
		}
		emoji := r.Emoji.APIName()

		users, err := p.reactionUsers(ctx, cid, mid, emoji, r.Count)
		if err != nil {
			return nil, err
		}
		reactions = append(reactions, interfaces.Reaction{Emoji: emoji, Users: users})
	}
	return reactions, nil
}

func (p *DiscordPlatform) reactionUsers(ctx context.Context, channelID, messageID, emoji string, expected int) ([]interfaces.Reactor, error) {
	users := make([]interfaces.Reactor, 0, expected)
	after := ""
	for {
		page, err := p.session.MessageReactions(channelID, messageID, emoji, reactionPageSize, "", after, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to list %s reactions: %w", emoji, translate(err))
		}
		for _, u := range page {
			id, err := strconv.ParseInt(u.ID, 10, 64)
			if err != nil {
				continue
			}
			users = append(users, interfaces.Reactor{UserID: id, Bot: u.Bot})
		}
		if len(page) < reactionPageSize {
			return users, nil
		}
		after = page[len(page)-1].ID
	}
}

func (p *DiscordPlatform) RemoveReaction(ctx context.Context, channelID, messageID int64, emoji string, memberID int64) error {
	err := p.session.MessageReactionRemove(snowflake(channelID), snowflake(messageID), emoji, snowflake(memberID), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to remove reaction: %w", translate(err))
	}
	return nil
}

func (p *DiscordPlatform) AddReaction(ctx context.Context, channelID, messageID int64, emoji string) error {
	err := p.session.MessageReactionAdd(snowflake(channelID), snowflake(messageID), emoji, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to add reaction: %w", translate(err))
	}
	return nil
}

// DirectMessage opens (or reuses) the DM channel and sends content
func (p *DiscordPlatform) DirectMessage(ctx context.Context, memberID int64, content string) error {
	channel, err := p.session.UserChannelCreate(snowflake(memberID), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to open dm channel: %w", translate(err))
	}
	if _, err := p.session.ChannelMessageSend(channel.ID, content, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to send dm: %w", translate(err))
	}
	return nil
}

func (p *DiscordPlatform) MessageExists(ctx context.Context, channelID, messageID int64) (bool, error) {
	_, err := p.session.ChannelMessage(snowflake(channelID), snowflake(messageID), discordgo.WithContext(ctx))
	if err == nil {
		return true, nil
	}
	if errors.Is(translate(err), interfaces.ErrNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("failed to fetch message %d: %w", messageID, err)
}

// ResolveChannel accepts a channel mention, an id or a channel name
func (p *DiscordPlatform) ResolveChannel(ctx context.Context, guildID int64, query string) (int64, error) {
	if id, ok := utils.ParseSnowflake(query); ok {
		channel, err := p.session.Channel(snowflake(id), discordgo.WithContext(ctx))
		if err != nil {
			return 0, fmt.Errorf("failed to get channel: %w", translate(err))
		}
		if channel.GuildID != snowflake(guildID) {
			return 0, interfaces.ErrNotFound
		}
		return id, nil
	}

	channels, err := p.session.GuildChannels(snowflake(guildID), discordgo.WithContext(ctx))
	if err != nil {
		return 0, fmt.Errorf("failed to list channels: %w", translate(err))
	}
	name := strings.TrimPrefix(strings.TrimSpace(query), "#")
	var matches []string
	for _, c := range channels {
		if strings.EqualFold(c.Name, name) {
			matches = append(matches, c.ID)
		}
	}
	return single(matches)
}

// ResolveMember accepts a member mention, an id, a nickname, a display name or a username
func (p *DiscordPlatform) ResolveMember(ctx context.Context, guildID int64, query string) (int64, error) {
	if id, ok := utils.ParseSnowflake(query); ok {
		if _, err := p.session.GuildMember(snowflake(guildID), snowflake(id), discordgo.WithContext(ctx)); err != nil {
			return 0, fmt.Errorf("failed to get member: %w", translate(err))
		}
		return id, nil
	}

	name := strings.TrimPrefix(strings.TrimSpace(query), "@")
	members, err := p.session.GuildMembersSearch(snowflake(guildID), name, 25, discordgo.WithContext(ctx))
	if err != nil {
		return 0, fmt.Errorf("failed to search members: %w", translate(err))
	}

	// Search is a prefix match; keep exact hits only, best name kind first
	for _, pick := range []func(*discordgo.Member) string{
		func(m *discordgo.Member) string { return m.Nick },
		func(m *discordgo.Member) string { return m.User.GlobalName },
		func(m *discordgo.Member) string { return m.User.Username },
	} {
		var matches []string
		for _, m := range members {
			if m.User != nil && strings.EqualFold(pick(m), name) {
				matches = append(matches, m.User.ID)
			}
		}
		if len(matches) > 0 {
			return single(matches)
		}
	}
	return 0, interfaces.ErrNotFound
}

// ResolveRole accepts a role mention, an id or a role name
func (p *DiscordPlatform) ResolveRole(ctx context.Context, guildID int64, query string) (int64, error) {
	roles, err := p.session.GuildRoles(snowflake(guildID), discordgo.WithContext(ctx))
	if err != nil {
		return 0, fmt.Errorf("failed to list roles: %w", translate(err))
	}

	if id, ok := utils.ParseSnowflake(query); ok {
		for _, r := range roles {
			if r.ID == snowflake(id) {
				return id, nil
			}
		}
		return 0, interfaces.ErrNotFound
	}

	name := strings.TrimPrefix(strings.TrimSpace(query), "@")
	var matches []string
	for _, r := range roles {
		if strings.EqualFold(r.Name, name) {
			matches = append(matches, r.ID)
		}
	}
	return single(matches)
}

func single(ids []string) (int64, error) {
	switch len(ids) {
	case 0:
		return 0, interfaces.ErrNotFound
	case 1:
		return strconv.ParseInt(ids[0], 10, 64)
	default:
		return 0, interfaces.ErrAmbiguous
	}
}

// translate maps 404 responses to interfaces.ErrNotFound
func translate(err error) error {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
		log.WithError(err).Debug("Discord object not found")
		return fmt.Errorf("%w: %v", interfaces.ErrNotFound, err)
	}
	return err
}

func snowflake(id int64) string {
	return strconv.FormatInt(id, 10)
}
