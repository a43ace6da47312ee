package application

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/skyblockz/sbz-giveaway/domain/entities"
	"github.com/skyblockz/sbz-giveaway/domain/interfaces"
	"github.com/skyblockz/sbz-giveaway/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

// ReactionEvent is one reaction added to or removed from a guild message
type ReactionEvent struct {
	GuildID   int64
	ChannelID int64
	MessageID int64
	UserID    int64
	Emoji     string
	Bot       bool
}

// MessageLink returns the jump URL of the reacted message
func (e ReactionEvent) MessageLink() string {
	return MessageLink(e.GuildID, e.ChannelID, e.MessageID)
}

// MessageLink builds a Discord jump URL
func MessageLink(guildID, channelID, messageID int64) string {
	return fmt.Sprintf("https://discord.com/channels/%d/%d/%d", guildID, channelID, messageID)
}

// EventRouter turns reaction events into roster changes and gate evictions
type EventRouter struct {
	engine           *EngineContext
	participateEmoji string
	selfID           atomic.Int64
}

// NewEventRouter creates a router. Only participateEmoji enters a drawing.
func NewEventRouter(engine *EngineContext, participateEmoji string) *EventRouter {
	return &EventRouter{
		engine:           engine,
		participateEmoji: participateEmoji,
	}
}

// SetSelfID records the bot's own user id so its reactions are ignored
func (r *EventRouter) SetSelfID(userID int64) {
	r.selfID.Store(userID)
}

func (r *EventRouter) ignored(ev ReactionEvent) bool {
	return ev.GuildID == 0 || ev.UserID == r.selfID.Load()
}

// HandleReactionAdd enters the member into a drawing or checks them against a gate
func (r *EventRouter) HandleReactionAdd(ctx context.Context, ev ReactionEvent) error {
	if r.ignored(ev) {
		return nil
	}

	drawing, err := r.findDrawing(ctx, ev)
	if err != nil {
		return err
	}
	if drawing != nil {
		return r.joinDrawing(ctx, drawing, ev)
	}

	return r.checkGate(ctx, ev)
}

// HandleReactionRemove takes the member out of an open drawing
func (r *EventRouter) HandleReactionRemove(ctx context.Context, ev ReactionEvent) error {
	if r.ignored(ev) || ev.Emoji != r.participateEmoji {
		return nil
	}

	drawing, err := r.findDrawing(ctx, ev)
	if err != nil || drawing == nil || drawing.IsRolled() {
		return err
	}

	uow := r.engine.UowFactory.CreateForGuild(ev.GuildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	change, err := r.engine.RosterService(uow).Remove(ctx, drawing.ID, ev.UserID)
	if errors.Is(err, entities.ErrRosterLocked) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to remove participant: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit roster change: %w", err)
	}

	observability.GetMetrics().RecordRosterChange(ctx, string(change.Result))
	if change.Result == interfaces.RosterRemoved {
		r.notify(ctx, ev.UserID, LeftNotice(ev.MessageLink()))
	}
	return nil
}

func (r *EventRouter) findDrawing(ctx context.Context, ev ReactionEvent) (*entities.Drawing, error) {
	uow := r.engine.UowFactory.CreateForGuild(ev.GuildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return r.engine.DrawingService(uow).FindByMessageID(ctx, ev.MessageID)
}

func (r *EventRouter) joinDrawing(ctx context.Context, drawing *entities.Drawing, ev ReactionEvent) error {
	if drawing.IsRolled() || ev.Emoji != r.participateEmoji || ev.Bot {
		return nil
	}

	held, err := r.engine.Platform.MemberRoles(ctx, ev.GuildID, ev.UserID)
	if err != nil {
		return fmt.Errorf("failed to get member roles: %w", err)
	}

	uow := r.engine.UowFactory.CreateForGuild(ev.GuildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	change, err := r.engine.RosterService(uow).Add(ctx, drawing.ID, ev.UserID, held)
	if errors.Is(err, entities.ErrRosterLocked) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to add participant: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit roster change: %w", err)
	}

	observability.GetMetrics().RecordRosterChange(ctx, string(change.Result))

	switch {
	case change.Result == interfaces.RosterRejected:
		if err := r.engine.Platform.RemoveReaction(ctx, ev.ChannelID, ev.MessageID, ev.Emoji, ev.UserID); err != nil {
			log.WithFields(log.Fields{
				"drawing_id": drawing.ID,
				"member_id":  ev.UserID,
				"error":      err,
			}).Warn("Failed to remove rejected reaction")
		}
		r.notify(ctx, ev.UserID, DeniedNotice(ev.MessageLink()))
	case change.Changed:
		r.notify(ctx, ev.UserID, JoinedNotice(ev.MessageLink()))
	}
	return nil
}

func (r *EventRouter) checkGate(ctx context.Context, ev ReactionEvent) error {
	if ev.Bot {
		return nil
	}

	uow := r.engine.UowFactory.CreateForGuild(ev.GuildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	gates := r.engine.GateService(uow)
	gate, err := gates.Get(ctx, ev.MessageID)
	if errors.Is(err, entities.ErrGateNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if gate.IsExpired(r.engine.Now()) {
		return nil
	}

	evicted, err := gates.EvaluateReaction(ctx, gate, ev.UserID, ev.Emoji)
	if err != nil {
		return fmt.Errorf("failed to evaluate gate reaction: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit gate eviction: %w", err)
	}

	if evicted {
		observability.GetMetrics().RecordGateEvictions(ctx, 1)
	}
	return nil
}

// notify sends a best-effort direct message; members often have DMs closed
func (r *EventRouter) notify(ctx context.Context, memberID int64, content string) {
	if err := r.engine.Platform.DirectMessage(ctx, memberID, content); err != nil {
		log.WithFields(log.Fields{
			"member_id": memberID,
			"error":     err,
		}).Debug("Could not deliver direct message")
	}
}

// JoinedNotice confirms a successful entry
func JoinedNotice(link string) string {
	return fmt.Sprintf("You have successfully participated in the giveaway at %s", link)
}

// DeniedNotice explains a rejected entry
func DeniedNotice(link string) string {
	return fmt.Sprintf("Your attempt on participating in the giveaway at %s has been denied, due to the insufficient requirements you meet", link)
}

// LeftNotice confirms a withdrawal
func LeftNotice(link string) string {
	return fmt.Sprintf("You have successfully unparticipated the giveaway at %s", link)
}
