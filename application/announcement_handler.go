package application

import (
	"context"

	"github.com/skyblockz/sbz-giveaway/domain/entities"
	"github.com/skyblockz/sbz-giveaway/domain/events"
	"github.com/skyblockz/sbz-giveaway/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

// Announcer makes drawing outcomes visible in the announcement channel
type Announcer interface {
	// AnnounceResult edits the announcement and posts the winners or the
	// reason nobody won. Rerolls are marked as such.
	AnnounceResult(ctx context.Context, drawing *entities.Drawing, rerolled bool) error

	// AnnounceCanceled marks the announcement as canceled by an operator
	AnnounceCanceled(ctx context.Context, drawing *entities.Drawing) error
}

// AnnouncementHandler forwards committed drawing events to the Announcer
type AnnouncementHandler struct {
	announcer Announcer
}

// NewAnnouncementHandler creates a new AnnouncementHandler
func NewAnnouncementHandler(announcer Announcer) *AnnouncementHandler {
	return &AnnouncementHandler{announcer: announcer}
}

// HandleDrawingResolved announces a scheduler resolution
func (h *AnnouncementHandler) HandleDrawingResolved(ctx context.Context, event events.Event) error {
	e, err := AssertEventType[events.DrawingResolvedEvent](event)
	if err != nil {
		return err
	}
	return h.announce(ctx, &e.Drawing, false)
}

// HandleDrawingRerolled counts and announces an operator reroll
func (h *AnnouncementHandler) HandleDrawingRerolled(ctx context.Context, event events.Event) error {
	e, err := AssertEventType[events.DrawingRerolledEvent](event)
	if err != nil {
		return err
	}
	observability.GetMetrics().RecordReroll(ctx)
	return h.announce(ctx, &e.Drawing, true)
}

// HandleDrawingCanceled announces an operator cancellation
func (h *AnnouncementHandler) HandleDrawingCanceled(ctx context.Context, event events.Event) error {
	e, err := AssertEventType[events.DrawingCanceledEvent](event)
	if err != nil {
		return err
	}

	log.WithField("drawing_id", e.Drawing.ID).Info("Announcing canceled drawing")
	return h.announcer.AnnounceCanceled(ctx, &e.Drawing)
}

func (h *AnnouncementHandler) announce(ctx context.Context, drawing *entities.Drawing, rerolled bool) error {
	log.WithFields(log.Fields{
		"drawing_id": drawing.ID,
		"outcome":    drawing.State(),
		"rerolled":   rerolled,
	}).Info("Announcing drawing result")

	return h.announcer.AnnounceResult(ctx, drawing, rerolled)
}
