package infrastructure

import (
	"fmt"

	"github.com/skyblockz/sbz-giveaway/domain/events"
)

// GiveawayEventStream is the JetStream stream every lifecycle event lands in
const GiveawayEventStream = "giveaway_events"

var subjectsByType = map[events.EventType]string{
	events.EventTypeDrawingResolved:   "giveaways.drawing.resolved",
	events.EventTypeDrawingRerolled:   "giveaways.drawing.rerolled",
	events.EventTypeDrawingCanceled:   "giveaways.drawing.canceled",
	events.EventTypeParticipantJoined: "giveaways.roster.joined",
	events.EventTypeParticipantLeft:   "giveaways.roster.left",
	events.EventTypeGateMemberEvicted: "giveaways.gate.evicted",
}

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	if subject, ok := subjectsByType[event.Type()]; ok {
		return subject
	}
	return fmt.Sprintf("unknown.%s", event.Type())
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	for eventType, s := range subjectsByType {
		if s == subject {
			return eventType
		}
	}
	return events.EventType(subject)
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		"giveaways.drawing.resolved",
		"giveaways.drawing.rerolled",
		"giveaways.drawing.canceled",
		"giveaways.roster.joined",
		"giveaways.roster.left",
		"giveaways.gate.evicted",
	}
}
