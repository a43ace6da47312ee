package bot

import (
	"context"
	"fmt"
	"strconv"

	"github.com/skyblockz/sbz-giveaway/application"
	"github.com/skyblockz/sbz-giveaway/bot/features/drawings"
	"github.com/skyblockz/sbz-giveaway/bot/features/gates"
	"github.com/skyblockz/sbz-giveaway/bot/features/templates"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Config holds bot configuration
type Config struct {
	Token            string
	GuildID          string // registers commands in this guild only when set
	ParticipateEmoji string
}

// Bot manages the Discord session and all feature modules
type Bot struct {
	config  Config
	session *discordgo.Session
	router  *application.EventRouter

	// Feature modules
	drawings  *drawings.Feature
	gates     *gates.Feature
	templates *templates.Feature
}

// NewSession creates the Discord session without connecting it
func NewSession(token string) (*discordgo.Session, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsDirectMessages
	dg.State.TrackMembers = true
	return dg, nil
}

// New wires the features to the engine, opens the gateway connection and registers commands
func New(config Config, session *discordgo.Session, engine *application.EngineContext, router *application.EventRouter, scheduler *application.Scheduler) (*Bot, error) {
	bot := &Bot{
		config:    config,
		session:   session,
		router:    router,
		drawings:  drawings.NewFeature(session, engine, config.ParticipateEmoji),
		gates:     gates.NewFeature(session, engine, scheduler),
		templates: templates.NewFeature(engine),
	}

	// Register handlers
	session.AddHandler(bot.handleReady)
	session.AddHandler(bot.handleCommands)
	session.AddHandler(bot.handleReactionAdd)
	session.AddHandler(bot.handleReactionRemove)

	// Open websocket connection
	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}
	bot.setSelf(session.State.User)

	// Register slash commands with Discord
	if err := bot.registerCommands(); err != nil {
		session.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	return bot, nil
}

// Announcer returns the feature that renders drawing outcomes
func (b *Bot) Announcer() application.Announcer {
	return b.drawings
}

// Close gracefully shuts down the bot
func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) setSelf(user *discordgo.User) {
	if user == nil {
		return
	}
	id, err := strconv.ParseInt(user.ID, 10, 64)
	if err != nil {
		log.Errorf("Failed to parse bot user ID %s: %v", user.ID, err)
		return
	}
	b.router.SetSelfID(id)
}

func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	b.setSelf(r.User)
	log.WithFields(log.Fields{
		"user":   r.User.Username,
		"guilds": len(r.Guilds),
	}).Info("Connected to Discord")
}

// handleCommands routes slash commands to appropriate features
func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	if i.GuildID == "" {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "giveaway":
		b.drawings.HandleCommand(s, i)
	case "gate":
		b.gates.HandleCommand(s, i)
	case "gatetemplate":
		b.templates.HandleCommand(s, i)
	}
}

func (b *Bot) handleReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	event, ok := reactionEvent(r.MessageReaction, r.Member)
	if !ok {
		return
	}
	if err := b.router.HandleReactionAdd(context.Background(), event); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"message_id": event.MessageID,
			"user_id":    event.UserID,
		}).Error("Failed to handle reaction add")
	}
}

func (b *Bot) handleReactionRemove(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
	event, ok := reactionEvent(r.MessageReaction, nil)
	if !ok {
		return
	}
	if err := b.router.HandleReactionRemove(context.Background(), event); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"message_id": event.MessageID,
			"user_id":    event.UserID,
		}).Error("Failed to handle reaction remove")
	}
}

// reactionEvent converts a gateway reaction; DMs and malformed ids are dropped
func reactionEvent(r *discordgo.MessageReaction, member *discordgo.Member) (application.ReactionEvent, bool) {
	if r == nil || r.GuildID == "" {
		return application.ReactionEvent{}, false
	}

	var ids [4]int64
	for idx, raw := range []string{r.GuildID, r.ChannelID, r.MessageID, r.UserID} {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return application.ReactionEvent{}, false
		}
		ids[idx] = id
	}

	return application.ReactionEvent{
		GuildID:   ids[0],
		ChannelID: ids[1],
		MessageID: ids[2],
		UserID:    ids[3],
		Emoji:     r.Emoji.APIName(),
		Bot:       member != nil && member.User != nil && member.User.Bot,
	}, true
}
