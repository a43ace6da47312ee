package infrastructure

import (
	"context"
	"errors"
	"testing"

	"github.com/skyblockz/sbz-giveaway/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNATSEventPublisher_LocalHandlers(t *testing.T) {
	publisher := NewNATSEventPublisher(nil, NewEventSubjectMapper())

	var got []events.Event
	publisher.RegisterLocalHandler(events.EventTypeParticipantJoined, func(ctx context.Context, e events.Event) error {
		got = append(got, e)
		return nil
	})
	publisher.RegisterLocalHandler(events.EventTypeParticipantJoined, func(ctx context.Context, e events.Event) error {
		return errors.New("handler failed")
	})

	joined := events.ParticipantJoinedEvent{DrawingID: 1, GuildID: 2, MemberID: 3}
	require.NoError(t, publisher.Publish(joined))
	require.NoError(t, publisher.Publish(events.ParticipantLeftEvent{DrawingID: 1, GuildID: 2, MemberID: 3}))

	assert.Equal(t, []events.Event{joined}, got)
}

func TestNATSEventPublisher_DisconnectedClientStaysLocal(t *testing.T) {
	client := NewNATSClient("nats://127.0.0.1:4222")
	require.False(t, client.IsConnected())

	publisher := NewNATSEventPublisher(client, NewEventSubjectMapper())

	delivered := 0
	publisher.RegisterLocalHandler(events.EventTypeGateMemberEvicted, func(ctx context.Context, e events.Event) error {
		delivered++
		return nil
	})

	err := publisher.Publish(events.GateMemberEvictedEvent{GateMessageID: 9, GuildID: 2, MemberID: 3, Emoji: "👍"})

	require.NoError(t, err)
	assert.Equal(t, 1, delivered)
	assert.Error(t, publisher.EnsureEventStream())
}
