package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/skyblockz/sbz-giveaway/domain/entities"
	"github.com/skyblockz/sbz-giveaway/domain/events"
	"github.com/skyblockz/sbz-giveaway/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// drawingService implements the drawing lifecycle
type drawingService struct {
	drawingRepo    interfaces.DrawingRepository
	eventPublisher interfaces.EventPublisher
	random         RandomSource
}

// NewDrawingService creates a new drawing service
func NewDrawingService(
	drawingRepo interfaces.DrawingRepository,
	eventPublisher interfaces.EventPublisher,
	random RandomSource,
) interfaces.DrawingService {
	if random == nil {
		random = NewCryptoSource()
	}
	return &drawingService{
		drawingRepo:    drawingRepo,
		eventPublisher: eventPublisher,
		random:         random,
	}
}

// Create validates and stores a new open drawing
func (s *drawingService) Create(ctx context.Context, params interfaces.CreateDrawingParams) (*entities.Drawing, error) {
	if params.WinnerCount < 1 {
		return nil, entities.ErrInvalidWinnerCount
	}
	if params.Length < time.Second {
		return nil, fmt.Errorf("%w: drawing must last at least one second", entities.ErrInvalidDuration)
	}
	prize := strings.TrimSpace(params.PrizeName)
	if prize == "" {
		return nil, entities.ErrEmptyPrize
	}

	createdAt := params.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	requirements := params.Requirements
	if requirements == nil {
		requirements = []int64{}
	}

	id, err := s.drawingRepo.NextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate drawing id: %w", err)
	}

	drawing := &entities.Drawing{
		ID:           id,
		GuildID:      params.GuildID,
		ChannelID:    params.ChannelID,
		HostID:       params.HostID,
		PrizeName:    prize,
		ImageURL:     params.ImageURL,
		WinnerCount:  params.WinnerCount,
		LengthSecs:   int64(params.Length / time.Second),
		Requirements: requirements,
		Participants: []int64{},
		CreatedAt:    createdAt,
	}

	if err := s.drawingRepo.Create(ctx, drawing); err != nil {
		return nil, fmt.Errorf("failed to create drawing: %w", err)
	}

	log.WithFields(log.Fields{
		"drawing_id":   drawing.ID,
		"guild_id":     drawing.GuildID,
		"prize":        drawing.PrizeName,
		"winner_count": drawing.WinnerCount,
		"deadline":     drawing.Deadline(),
	}).Info("Created drawing")

	return drawing, nil
}

// AttachMessage stores the announcement message once it has been posted
func (s *drawingService) AttachMessage(ctx context.Context, drawingID, channelID, messageID int64) error {
	if err := s.drawingRepo.SetMessage(ctx, drawingID, channelID, messageID); err != nil {
		return fmt.Errorf("failed to set drawing message: %w", err)
	}
	return nil
}

// Get returns a drawing or entities.ErrDrawingNotFound
func (s *drawingService) Get(ctx context.Context, drawingID int64) (*entities.Drawing, error) {
	drawing, err := s.drawingRepo.GetByID(ctx, drawingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get drawing: %w", err)
	}
	if drawing == nil {
		return nil, entities.ErrDrawingNotFound
	}
	return drawing, nil
}

// FindByMessageID returns nil, nil when the message is not a drawing announcement
func (s *drawingService) FindByMessageID(ctx context.Context, messageID int64) (*entities.Drawing, error) {
	drawing, err := s.drawingRepo.GetByMessageID(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("failed to get drawing by message: %w", err)
	}
	return drawing, nil
}

// ListDue returns every unrolled drawing whose deadline has passed
func (s *drawingService) ListDue(ctx context.Context, now time.Time) ([]*entities.Drawing, error) {
	drawings, err := s.drawingRepo.GetDue(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get due drawings: %w", err)
	}
	return drawings, nil
}

// ListOpen returns every drawing that still accepts participants
func (s *drawingService) ListOpen(ctx context.Context) ([]*entities.Drawing, error) {
	drawings, err := s.drawingRepo.ListOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list open drawings: %w", err)
	}
	return drawings, nil
}

// Resolve moves a due drawing from open to a terminal state
func (s *drawingService) Resolve(ctx context.Context, drawingID int64, now time.Time) (*interfaces.Resolution, error) {
	drawing, err := s.drawingRepo.GetByIDForUpdate(ctx, drawingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get drawing: %w", err)
	}
	if drawing == nil {
		return nil, entities.ErrDrawingNotFound
	}
	if drawing.IsRolled() {
		return nil, entities.ErrAlreadyResolved
	}
	if !drawing.IsDue(now) {
		return nil, entities.ErrNotDue
	}

	result, err := SelectWinners(drawing.Participants, drawing.WinnerCount, s.random)
	if err != nil {
		return nil, fmt.Errorf("failed to select winners: %w", err)
	}

	written, err := s.drawingRepo.SetWinnersIfUnrolled(ctx, drawingID, result.PersistedWinners(), result.Outcome, now)
	if err != nil {
		return nil, fmt.Errorf("failed to store winners: %w", err)
	}
	if !written {
		return nil, entities.ErrAlreadyResolved
	}
	drawing.Roll(result.PersistedWinners(), result.Outcome, now)

	if err := s.eventPublisher.Publish(events.DrawingResolvedEvent{Drawing: *drawing}); err != nil {
		return nil, fmt.Errorf("failed to publish drawing resolved event: %w", err)
	}

	log.WithFields(log.Fields{
		"drawing_id":   drawing.ID,
		"outcome":      result.Outcome,
		"participants": len(drawing.Participants),
		"winners":      result.Winners,
	}).Info("Resolved drawing")

	return &interfaces.Resolution{Drawing: drawing, Result: result}, nil
}

// Reroll draws again from the stored roster and overwrites the winners
func (s *drawingService) Reroll(ctx context.Context, drawingID int64, now time.Time) (*interfaces.Resolution, error) {
	drawing, err := s.drawingRepo.GetByIDForUpdate(ctx, drawingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get drawing: %w", err)
	}
	if drawing == nil {
		return nil, entities.ErrDrawingNotFound
	}

	result, err := SelectWinners(drawing.Participants, drawing.WinnerCount, s.random)
	if err != nil {
		return nil, fmt.Errorf("failed to select winners: %w", err)
	}

	if err := s.drawingRepo.OverwriteWinners(ctx, drawingID, result.PersistedWinners(), result.Outcome, now); err != nil {
		return nil, fmt.Errorf("failed to store rerolled winners: %w", err)
	}
	drawing.Roll(result.PersistedWinners(), result.Outcome, now)

	if err := s.eventPublisher.Publish(events.DrawingRerolledEvent{Drawing: *drawing}); err != nil {
		return nil, fmt.Errorf("failed to publish drawing rerolled event: %w", err)
	}

	log.WithFields(log.Fields{
		"drawing_id": drawing.ID,
		"outcome":    result.Outcome,
		"winners":    result.Winners,
	}).Info("Rerolled drawing")

	return &interfaces.Resolution{Drawing: drawing, Result: result}, nil
}

// Cancel ends an open drawing with no winners
func (s *drawingService) Cancel(ctx context.Context, drawingID int64, now time.Time) (*entities.Drawing, error) {
	drawing, err := s.drawingRepo.GetByIDForUpdate(ctx, drawingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get drawing: %w", err)
	}
	if drawing == nil {
		return nil, entities.ErrDrawingNotFound
	}
	if drawing.IsRolled() {
		return nil, entities.ErrAlreadyResolved
	}

	result := entities.RollResult{Outcome: entities.OutcomeCanceled}
	written, err := s.drawingRepo.SetWinnersIfUnrolled(ctx, drawingID, result.PersistedWinners(), result.Outcome, now)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel drawing: %w", err)
	}
	if !written {
		return nil, entities.ErrAlreadyResolved
	}
	drawing.Roll(result.PersistedWinners(), result.Outcome, now)

	if err := s.eventPublisher.Publish(events.DrawingCanceledEvent{Drawing: *drawing}); err != nil {
		return nil, fmt.Errorf("failed to publish drawing canceled event: %w", err)
	}

	log.WithField("drawing_id", drawing.ID).Info("Canceled drawing")
	return drawing, nil
}
