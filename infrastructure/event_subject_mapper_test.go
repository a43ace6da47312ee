package infrastructure

import (
	"testing"

	"github.com/skyblockz/sbz-giveaway/domain/events"

	"github.com/stretchr/testify/assert"
)

func TestEventSubjectMapper_RoundTrip(t *testing.T) {
	mapper := NewEventSubjectMapper()

	tests := []struct {
		event   events.Event
		subject string
	}{
		{events.DrawingResolvedEvent{}, "giveaways.drawing.resolved"},
		{events.DrawingRerolledEvent{}, "giveaways.drawing.rerolled"},
		{events.DrawingCanceledEvent{}, "giveaways.drawing.canceled"},
		{events.ParticipantJoinedEvent{}, "giveaways.roster.joined"},
		{events.ParticipantLeftEvent{}, "giveaways.roster.left"},
		{events.GateMemberEvictedEvent{}, "giveaways.gate.evicted"},
	}

	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			assert.Equal(t, tt.subject, mapper.MapEventToSubject(tt.event))
			assert.Equal(t, tt.event.Type(), mapper.MapSubjectToEventType(tt.subject))
		})
	}

	assert.ElementsMatch(t, mapper.GetAllSubjects(), []string{
		"giveaways.drawing.resolved",
		"giveaways.drawing.rerolled",
		"giveaways.drawing.canceled",
		"giveaways.roster.joined",
		"giveaways.roster.left",
		"giveaways.gate.evicted",
	})
	assert.Equal(t, events.EventType("other.subject"), mapper.MapSubjectToEventType("other.subject"))
}
