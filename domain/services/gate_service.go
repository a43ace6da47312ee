package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/skyblockz/sbz-giveaway/domain/entities"
	"github.com/skyblockz/sbz-giveaway/domain/events"
	"github.com/skyblockz/sbz-giveaway/domain/interfaces"
	"github.com/skyblockz/sbz-giveaway/domain/utils"

	log "github.com/sirupsen/logrus"
)

// gateService implements gate management and reaction reconciliation
type gateService struct {
	gateRepo       interfaces.GateRepository
	templates      interfaces.TemplateService
	platform       interfaces.ReactionPlatform
	notices        interfaces.NoticeTracker
	eventPublisher interfaces.EventPublisher
}

// NewGateService creates a new gate service
func NewGateService(
	gateRepo interfaces.GateRepository,
	templates interfaces.TemplateService,
	platform interfaces.ReactionPlatform,
	notices interfaces.NoticeTracker,
	eventPublisher interfaces.EventPublisher,
) interfaces.GateService {
	return &gateService{
		gateRepo:       gateRepo,
		templates:      templates,
		platform:       platform,
		notices:        notices,
		eventPublisher: eventPublisher,
	}
}

// Create guards a message with the expanded requirement set
func (s *gateService) Create(ctx context.Context, params interfaces.CreateGateParams) (*entities.Gate, error) {
	requirements, err := s.expand(ctx, params.Tokens)
	if err != nil {
		return nil, err
	}

	gate := &entities.Gate{
		MessageID:    params.MessageID,
		GuildID:      params.GuildID,
		ChannelID:    params.ChannelID,
		ExpiresAt:    params.ExpiresAt,
		Requirements: requirements,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.gateRepo.Create(ctx, gate); err != nil {
		return nil, fmt.Errorf("failed to create gate: %w", err)
	}

	log.WithFields(log.Fields{
		"message_id":   gate.MessageID,
		"channel_id":   gate.ChannelID,
		"requirements": gate.Requirements,
		"indefinite":   gate.IsIndefinite(),
	}).Info("Created gate")

	return gate, nil
}

// Modify replaces the requirement set wholesale; it does not sweep
func (s *gateService) Modify(ctx context.Context, messageID int64, tokens []string) (*entities.Gate, error) {
	requirements, err := s.expand(ctx, tokens)
	if err != nil {
		return nil, err
	}

	gate, err := s.Get(ctx, messageID)
	if err != nil {
		return nil, err
	}

	if err := s.gateRepo.UpdateRequirements(ctx, messageID, requirements); err != nil {
		return nil, fmt.Errorf("failed to update gate requirements: %w", err)
	}
	gate.Requirements = requirements

	return gate, nil
}

// Delete removes the gate and forgets every notice sent for it
func (s *gateService) Delete(ctx context.Context, messageID int64) error {
	deleted, err := s.gateRepo.Delete(ctx, messageID)
	if err != nil {
		return fmt.Errorf("failed to delete gate: %w", err)
	}
	if !deleted {
		return entities.ErrGateNotFound
	}
	s.notices.ForgetGate(messageID)
	return nil
}

// Get returns a gate or entities.ErrGateNotFound
func (s *gateService) Get(ctx context.Context, messageID int64) (*entities.Gate, error) {
	gate, err := s.gateRepo.GetByMessageID(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("failed to get gate: %w", err)
	}
	if gate == nil {
		return nil, entities.ErrGateNotFound
	}
	return gate, nil
}

// List returns every gate visible to the repository scope
func (s *gateService) List(ctx context.Context) ([]*entities.Gate, error) {
	gates, err := s.gateRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list gates: %w", err)
	}
	return gates, nil
}

// ListNearExpiry returns gates expiring within lookahead of now
func (s *gateService) ListNearExpiry(ctx context.Context, now time.Time, lookahead time.Duration) ([]*entities.Gate, error) {
	gates, err := s.gateRepo.ListExpiringBetween(ctx, now, now.Add(lookahead))
	if err != nil {
		return nil, fmt.Errorf("failed to list gates near expiry: %w", err)
	}
	return gates, nil
}

// ListIndefinite returns gates without an expiry
func (s *gateService) ListIndefinite(ctx context.Context) ([]*entities.Gate, error) {
	gates, err := s.gateRepo.ListIndefinite(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list indefinite gates: %w", err)
	}
	return gates, nil
}

// PurgeExpired deletes every gate past its expiry
func (s *gateService) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	ids, err := s.gateRepo.DeleteExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired gates: %w", err)
	}
	for _, id := range ids {
		s.notices.ForgetGate(id)
	}
	return len(ids), nil
}

// Sweep walks every reaction on the gated message and evicts reactors that
// hold none of the required roles. One failing reactor does not stop the sweep.
func (s *gateService) Sweep(ctx context.Context, gate *entities.Gate) (*interfaces.SweepReport, error) {
	reactions, err := s.platform.ListReactions(ctx, gate.ChannelID, gate.MessageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reactions for gate %d: %w", gate.MessageID, err)
	}

	report := &interfaces.SweepReport{GateMessageID: gate.MessageID}
	members := make(map[int64]gateMember)

	for _, reaction := range reactions {
		for _, user := range reaction.Users {
			if user.Bot {
				continue
			}
			report.Scanned++

			member, cached := members[user.UserID]
			if !cached {
				member, err = s.lookupMember(ctx, gate.GuildID, user.UserID)
				if err != nil {
					log.WithFields(log.Fields{
						"gate_id":   gate.MessageID,
						"member_id": user.UserID,
						"error":     err,
					}).Warn("Failed to resolve member roles during sweep")
					report.Failed++
					continue
				}
				members[user.UserID] = member
			}

			if gate.Admits(member.held) {
				continue
			}

			notified, err := s.evict(ctx, gate, user.UserID, reaction.Emoji, member.present)
			if err != nil {
				log.WithFields(log.Fields{
					"gate_id":   gate.MessageID,
					"member_id": user.UserID,
					"emoji":     reaction.Emoji,
					"error":     err,
				}).Warn("Failed to evict reaction")
				report.Failed++
				continue
			}
			report.Evicted++
			if notified {
				report.Notified++
			}
		}
	}

	if report.Evicted > 0 || report.Failed > 0 {
		log.WithFields(log.Fields{
			"gate_id":  gate.MessageID,
			"scanned":  report.Scanned,
			"evicted":  report.Evicted,
			"notified": report.Notified,
			"failed":   report.Failed,
		}).Info("Swept gate")
	}

	return report, nil
}

// EvaluateReaction checks a single new reaction against the gate
func (s *gateService) EvaluateReaction(ctx context.Context, gate *entities.Gate, memberID int64, emoji string) (bool, error) {
	member, err := s.lookupMember(ctx, gate.GuildID, memberID)
	if err != nil {
		return false, fmt.Errorf("failed to get member roles: %w", err)
	}
	if gate.Admits(member.held) {
		return false, nil
	}

	if _, err := s.evict(ctx, gate, memberID, emoji, member.present); err != nil {
		return false, err
	}
	return true, nil
}

// gateMember is what a sweep knows about one reactor
type gateMember struct {
	held    []int64
	present bool
}

// lookupMember resolves the roles of a reactor. A reactor who left the guild
// holds no roles and cannot be messaged.
func (s *gateService) lookupMember(ctx context.Context, guildID, memberID int64) (gateMember, error) {
	held, err := s.platform.MemberRoles(ctx, guildID, memberID)
	if errors.Is(err, interfaces.ErrNotFound) {
		return gateMember{}, nil
	}
	if err != nil {
		return gateMember{}, err
	}
	return gateMember{held: held, present: true}, nil
}

// evict removes one reaction and sends the one-time explanation to members still in the guild
func (s *gateService) evict(ctx context.Context, gate *entities.Gate, memberID int64, emoji string, present bool) (bool, error) {
	if err := s.platform.RemoveReaction(ctx, gate.ChannelID, gate.MessageID, emoji, memberID); err != nil {
		return false, fmt.Errorf("failed to remove reaction: %w", err)
	}

	notified := false
	if present && s.notices.FirstNotice(gate.MessageID, memberID) {
		notified = true
		if err := s.platform.DirectMessage(ctx, memberID, EvictionNotice(gate)); err != nil {
			// The eviction stands when the DM cannot be delivered
			log.WithFields(log.Fields{
				"gate_id":   gate.MessageID,
				"member_id": memberID,
				"error":     err,
			}).Debug("Could not deliver eviction notice")
		}
	}

	if err := s.eventPublisher.Publish(events.GateMemberEvictedEvent{
		GateMessageID: gate.MessageID,
		GuildID:       gate.GuildID,
		ChannelID:     gate.ChannelID,
		MemberID:      memberID,
		Emoji:         emoji,
		Notified:      notified,
	}); err != nil {
		log.WithError(err).Warn("Failed to publish gate eviction event")
	}

	return notified, nil
}

func (s *gateService) expand(ctx context.Context, tokens []string) ([]int64, error) {
	requirements, err := s.templates.ExpandRequirements(ctx, tokens)
	if err != nil {
		return nil, err
	}
	if len(requirements) == 0 {
		return nil, entities.ErrEmptyRequirements
	}
	return requirements, nil
}

// EvictionNotice is the direct message sent the first time a member is evicted from a gate
func EvictionNotice(gate *entities.Gate) string {
	return fmt.Sprintf(
		"Your reaction on https://discord.com/channels/%d/%d/%d has been removed, because you do not have any of the required roles: %s",
		gate.GuildID, gate.ChannelID, gate.MessageID, utils.FormatIDs(gate.Requirements, "<@&"),
	)
}
