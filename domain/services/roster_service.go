package services

import (
	"context"
	"fmt"

	"github.com/skyblockz/sbz-giveaway/domain/entities"
	"github.com/skyblockz/sbz-giveaway/domain/events"
	"github.com/skyblockz/sbz-giveaway/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// rosterService maintains drawing participant lists
type rosterService struct {
	drawingRepo    interfaces.DrawingRepository
	eventPublisher interfaces.EventPublisher
}

// NewRosterService creates a new roster service
func NewRosterService(
	drawingRepo interfaces.DrawingRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.RosterService {
	return &rosterService{
		drawingRepo:    drawingRepo,
		eventPublisher: eventPublisher,
	}
}

// Add enters a member into an open drawing if they hold any required role
func (s *rosterService) Add(ctx context.Context, drawingID, memberID int64, held []int64) (*interfaces.RosterChange, error) {
	return s.enter(ctx, drawingID, memberID, held, false)
}

// ForceAdd enters a member on an operator's behalf. Requirements still apply.
func (s *rosterService) ForceAdd(ctx context.Context, drawingID, memberID int64, held []int64) (*interfaces.RosterChange, error) {
	return s.enter(ctx, drawingID, memberID, held, true)
}

func (s *rosterService) enter(ctx context.Context, drawingID, memberID int64, held []int64, forced bool) (*interfaces.RosterChange, error) {
	drawing, err := s.lockOpenDrawing(ctx, drawingID)
	if err != nil {
		return nil, err
	}

	if !entities.Qualifies(held, drawing.Requirements) {
		log.WithFields(log.Fields{
			"drawing_id": drawingID,
			"member_id":  memberID,
			"forced":     forced,
		}).Debug("Member does not meet drawing requirements")
		return &interfaces.RosterChange{Result: interfaces.RosterRejected, Drawing: drawing}, nil
	}

	return s.appendMember(ctx, drawing, memberID, forced)
}

// Remove takes a member out of an open drawing
func (s *rosterService) Remove(ctx context.Context, drawingID, memberID int64) (*interfaces.RosterChange, error) {
	drawing, err := s.lockOpenDrawing(ctx, drawingID)
	if err != nil {
		return nil, err
	}

	removed, err := s.drawingRepo.RemoveParticipant(ctx, drawingID, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to remove participant: %w", err)
	}
	if !removed {
		return &interfaces.RosterChange{Result: interfaces.RosterNotPresent, Drawing: drawing}, nil
	}

	if err := s.eventPublisher.Publish(events.ParticipantLeftEvent{
		DrawingID: drawingID,
		GuildID:   drawing.GuildID,
		MemberID:  memberID,
	}); err != nil {
		return nil, fmt.Errorf("failed to publish participant left event: %w", err)
	}

	return &interfaces.RosterChange{Result: interfaces.RosterRemoved, Changed: true, Drawing: drawing}, nil
}

func (s *rosterService) appendMember(ctx context.Context, drawing *entities.Drawing, memberID int64, forced bool) (*interfaces.RosterChange, error) {
	added, err := s.drawingRepo.AddParticipant(ctx, drawing.ID, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to add participant: %w", err)
	}
	if !added {
		return &interfaces.RosterChange{Result: interfaces.RosterQualified, Drawing: drawing}, nil
	}

	if err := s.eventPublisher.Publish(events.ParticipantJoinedEvent{
		DrawingID: drawing.ID,
		GuildID:   drawing.GuildID,
		MemberID:  memberID,
		Forced:    forced,
	}); err != nil {
		return nil, fmt.Errorf("failed to publish participant joined event: %w", err)
	}

	return &interfaces.RosterChange{Result: interfaces.RosterQualified, Changed: true, Drawing: drawing}, nil
}

// lockOpenDrawing takes the row lock that linearizes roster changes with resolution
func (s *rosterService) lockOpenDrawing(ctx context.Context, drawingID int64) (*entities.Drawing, error) {
	drawing, err := s.drawingRepo.GetByIDForUpdate(ctx, drawingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get drawing: %w", err)
	}
	if drawing == nil {
		return nil, entities.ErrDrawingNotFound
	}
	if drawing.IsRolled() {
		return nil, entities.ErrRosterLocked
	}
	return drawing, nil
}
