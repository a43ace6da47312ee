package events

import "github.com/skyblockz/sbz-giveaway/domain/entities"

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeDrawingResolved   EventType = "drawing_resolved"
	EventTypeDrawingRerolled   EventType = "drawing_rerolled"
	EventTypeDrawingCanceled   EventType = "drawing_canceled"
	EventTypeParticipantJoined EventType = "participant_joined"
	EventTypeParticipantLeft   EventType = "participant_left"
	EventTypeGateMemberEvicted EventType = "gate_member_evicted"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// DrawingResolvedEvent is emitted exactly once per drawing when the scheduler
// rolls it, whatever the outcome
type DrawingResolvedEvent struct {
	Drawing entities.Drawing
}

func (e DrawingResolvedEvent) Type() EventType {
	return EventTypeDrawingResolved
}

// DrawingRerolledEvent is emitted every time an operator rerolls a drawing
type DrawingRerolledEvent struct {
	Drawing entities.Drawing
}

func (e DrawingRerolledEvent) Type() EventType {
	return EventTypeDrawingRerolled
}

// DrawingCanceledEvent is emitted when an operator cancels an open drawing
type DrawingCanceledEvent struct {
	Drawing entities.Drawing
}

func (e DrawingCanceledEvent) Type() EventType {
	return EventTypeDrawingCanceled
}

// ParticipantJoinedEvent represents a member entering a drawing's roster
type ParticipantJoinedEvent struct {
	DrawingID int64
	GuildID   int64
	MemberID  int64
	Forced    bool
}

func (e ParticipantJoinedEvent) Type() EventType {
	return EventTypeParticipantJoined
}

// ParticipantLeftEvent represents a member leaving a drawing's roster
type ParticipantLeftEvent struct {
	DrawingID int64
	GuildID   int64
	MemberID  int64
}

func (e ParticipantLeftEvent) Type() EventType {
	return EventTypeParticipantLeft
}

// GateMemberEvictedEvent represents a reaction removed from a gated message
type GateMemberEvictedEvent struct {
	GateMessageID int64
	GuildID       int64
	ChannelID     int64
	MemberID      int64
	Emoji         string
	Notified      bool
}

func (e GateMemberEvictedEvent) Type() EventType {
	return EventTypeGateMemberEvicted
}
