package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/skyblockz/sbz-giveaway/domain/events"
	"github.com/skyblockz/sbz-giveaway/infrastructure/observability"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const sourceService = "sbz-giveaway"

// EventEnvelope is the wire format of every event published to NATS
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// LocalHandler reacts to an event inside the publishing process
type LocalHandler func(context.Context, events.Event) error

// NATSEventPublisher delivers events to in-process handlers and, when a
// client is configured, to the giveaway JetStream stream
type NATSEventPublisher struct {
	natsClient    *NATSClient
	subjectMapper *EventSubjectMapper
	mu            sync.RWMutex
	localHandlers map[events.EventType][]LocalHandler
}

// NewNATSEventPublisher creates a publisher. A nil client keeps events in-process.
func NewNATSEventPublisher(natsClient *NATSClient, subjectMapper *EventSubjectMapper) *NATSEventPublisher {
	return &NATSEventPublisher{
		natsClient:    natsClient,
		subjectMapper: subjectMapper,
		localHandlers: make(map[events.EventType][]LocalHandler),
	}
}

// Publish runs the local handlers for the event, then forwards it to NATS
func (p *NATSEventPublisher) Publish(event events.Event) error {
	ctx := context.Background()
	eventType := event.Type()

	p.mu.RLock()
	handlers := p.localHandlers[eventType]
	p.mu.RUnlock()

	for _, handler := range handlers {
		log.WithField("eventType", eventType).Debug("Invoking local handler for event")

		if err := handler(ctx, event); err != nil {
			// One failing handler must not starve the others or the stream.
			log.WithFields(log.Fields{
				"eventType": eventType,
				"error":     err,
			}).Error("Local event handler failed")
		}
	}

	observability.GetMetrics().RecordEventPublished(ctx, string(eventType))

	if p.natsClient == nil {
		return nil
	}
	if !p.natsClient.IsConnected() {
		log.WithField("eventType", eventType).Warn("NATS is disconnected, event delivered locally only")
		return nil
	}

	subject := p.subjectMapper.MapEventToSubject(event)
	envelopeData, eventID, err := encodeEnvelope(event)
	if err != nil {
		return err
	}

	if err := p.natsClient.Publish(ctx, subject, envelopeData); err != nil {
		if strings.Contains(err.Error(), "no response from stream") {
			return nil
		}
		return fmt.Errorf("failed to publish event to NATS: %w", err)
	}

	log.WithFields(log.Fields{
		"eventType": eventType,
		"eventId":   eventID,
		"subject":   subject,
	}).Debug("Successfully published event to NATS")

	return nil
}

// RegisterLocalHandler registers a handler that runs in this process for every
// published event of the given type
func (p *NATSEventPublisher) RegisterLocalHandler(eventType events.EventType, handler LocalHandler) {
	p.mu.Lock()
	p.localHandlers[eventType] = append(p.localHandlers[eventType], handler)
	count := len(p.localHandlers[eventType])
	p.mu.Unlock()

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": count,
	}).Info("Registered local event handler")
}

// EnsureEventStream creates the giveaway stream if it does not exist yet
func (p *NATSEventPublisher) EnsureEventStream() error {
	if p.natsClient == nil {
		return nil
	}
	if !p.natsClient.IsConnected() {
		return fmt.Errorf("cannot ensure stream %s: NATS is not connected", GiveawayEventStream)
	}
	return p.natsClient.ensureStream(GiveawayEventStream, p.subjectMapper.GetAllSubjects())
}

func encodeEnvelope(event events.Event) ([]byte, string, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal event payload: %w", err)
	}

	envelope := EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     string(event.Type()),
		Timestamp:     time.Now().UTC(),
		SourceService: sourceService,
		Payload:       payload,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal event envelope: %w", err)
	}
	return data, envelope.EventID, nil
}
