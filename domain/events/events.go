package events

import "github.com/antony-akshay/stream-oracle/domain/entities"

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeStreamerCreated EventType = "streamer_created"
	EventTypeMarketCreated   EventType = "market_created"
	EventTypeBetPlaced       EventType = "bet_placed"
	EventTypeMarketResolved  EventType = "market_resolved"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// StreamerCreatedEvent represents a newly registered streamer
type StreamerCreatedEvent struct {
	StreamerID int64  `json:"streamer_id"`
	Name       string `json:"name"`
}

func (e StreamerCreatedEvent) Type() EventType {
	return EventTypeStreamerCreated
}

// MarketCreatedEvent represents a newly opened market
type MarketCreatedEvent struct {
	MarketID   int64  `json:"market_id"`
	StreamerID int64  `json:"streamer_id"`
	Title      string `json:"title"`
}

func (e MarketCreatedEvent) Type() EventType {
	return EventTypeMarketCreated
}

// BetPlacedEvent represents a bet that was admitted to a market's pool
type BetPlacedEvent struct {
	BetID      int64            `json:"bet_id"`
	MarketID   int64            `json:"market_id"`
	UserID     string           `json:"user_id"`
	Prediction entities.Outcome `json:"prediction"`
	Amount     int64            `json:"amount"`
}

func (e BetPlacedEvent) Type() EventType {
	return EventTypeBetPlaced
}

// MarketResolvedEvent represents a market whose result was fixed
type MarketResolvedEvent struct {
	MarketID   int64            `json:"market_id"`
	Result     entities.Outcome `json:"result"`
	ResolverID string           `json:"resolver_id"`
}

func (e MarketResolvedEvent) Type() EventType {
	return EventTypeMarketResolved
}
