package infrastructure

import (
	"fmt"

	"github.com/antony-akshay/stream-oracle/domain/events"
)

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeStreamerCreated:
		return "streamoracle.streamers.created"
	case events.EventTypeMarketCreated:
		return "streamoracle.markets.created"
	case events.EventTypeBetPlaced:
		return "streamoracle.bets.placed"
	case events.EventTypeMarketResolved:
		return "streamoracle.markets.resolved"
	default:
		return fmt.Sprintf("streamoracle.unknown.%s", event.Type())
	}
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	switch subject {
	case "streamoracle.streamers.created":
		return events.EventTypeStreamerCreated
	case "streamoracle.markets.created":
		return events.EventTypeMarketCreated
	case "streamoracle.bets.placed":
		return events.EventTypeBetPlaced
	case "streamoracle.markets.resolved":
		return events.EventTypeMarketResolved
	default:
		return events.EventType(subject)
	}
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		"streamoracle.streamers.created",
		"streamoracle.markets.created",
		"streamoracle.bets.placed",
		"streamoracle.markets.resolved",
	}
}
