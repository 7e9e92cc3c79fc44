package infrastructure

import (
	"testing"

	"github.com/antony-akshay/stream-oracle/domain/events"

	"github.com/stretchr/testify/assert"
)

func TestMapEventToSubject(t *testing.T) {
	mapper := NewEventSubjectMapper()

	tests := []struct {
		event   events.Event
		subject string
	}{
		{events.StreamerCreatedEvent{}, "streamoracle.streamers.created"},
		{events.MarketCreatedEvent{}, "streamoracle.markets.created"},
		{events.BetPlacedEvent{}, "streamoracle.bets.placed"},
		{events.MarketResolvedEvent{}, "streamoracle.markets.resolved"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.subject, mapper.MapEventToSubject(tt.event))
	}
}

func TestSubjectMappingRoundTrips(t *testing.T) {
	mapper := NewEventSubjectMapper()

	for _, subject := range mapper.GetAllSubjects() {
		eventType := mapper.MapSubjectToEventType(subject)
		assert.NotEqual(t, events.EventType(subject), eventType, "subject %s should map to a known event type", subject)
	}

	assert.Equal(t, events.EventTypeBetPlaced, mapper.MapSubjectToEventType("streamoracle.bets.placed"))
}
