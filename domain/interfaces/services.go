package interfaces

import (
	"context"

	"github.com/antony-akshay/stream-oracle/domain/entities"
	"github.com/antony-akshay/stream-oracle/domain/events"
)

// EventPublisher broadcasts state-change notifications to external observers.
// Delivery is best-effort; publish failures never fail the originating command.
type EventPublisher interface {
	Publish(event events.Event) error
}

// StreamerService manages the streamer registry
type StreamerService interface {
	// CreateStreamer registers a new streamer. tokenAddress may be empty.
	CreateStreamer(ctx context.Context, name, description, tokenAddress string) (*entities.Streamer, error)

	// DeactivateStreamer flags a streamer as inactive; its existing markets
	// are unaffected but no new markets may reference it.
	DeactivateStreamer(ctx context.Context, id int64) (*entities.Streamer, error)

	// GetStreamer retrieves a streamer by ID
	GetStreamer(ctx context.Context, id int64) (*entities.Streamer, error)

	// ListStreamers returns all streamers
	ListStreamers(ctx context.Context) ([]*entities.Streamer, error)
}

// MarketQuery narrows a market listing. Status may be any of open, closed
// (derived) or resolved.
type MarketQuery struct {
	Status     *entities.MarketStatus
	StreamerID *int64
}

// MarketService owns the market lifecycle state machine
type MarketService interface {
	// CreateMarket opens a new market against an active streamer
	CreateMarket(ctx context.Context, streamerID int64, title, description string, category entities.MarketCategory, durationSeconds int64) (*entities.Market, error)

	// GetMarket retrieves a market by ID
	GetMarket(ctx context.Context, id int64) (*entities.Market, error)

	// ListMarkets returns markets matching the query, newest first
	ListMarkets(ctx context.Context, query MarketQuery) ([]*entities.Market, error)

	// Resolve fixes the market's final outcome. Exactly one concurrent call
	// can win; the others fail with ErrAlreadyResolved.
	Resolve(ctx context.Context, marketID int64, outcome entities.Outcome, resolverID string) (*entities.Market, error)
}

// BettingService admits stakes into market pools
type BettingService interface {
	// PlaceBet validates and records a stake, updating the market's pool
	// counters in the same transaction
	PlaceBet(ctx context.Context, marketID int64, userID string, prediction entities.Outcome, amount int64) (*entities.Bet, error)

	// ListUserBets returns a user's betting history, newest first
	ListUserBets(ctx context.Context, userID string, limit int) ([]*entities.Bet, error)
}

// SettlementService resolves markets and pays out winning bets exactly once
type SettlementService interface {
	// ResolveAndSettle runs both settlement phases. If another actor already
	// resolved the market, settlement is skipped and ErrAlreadyResolved is
	// returned so the caller can tell the race was lost.
	ResolveAndSettle(ctx context.Context, marketID int64, outcome entities.Outcome, resolverID string) (*entities.SettlementResult, error)

	// Settle computes and records rewards for a resolved market. Safe to
	// invoke redundantly: each bet is settled at most once, and a rerun
	// creates only still-missing rewards.
	Settle(ctx context.Context, marketID int64) (*entities.SettlementResult, error)

	// ListUserRewards returns a user's settled rewards, newest first
	ListUserRewards(ctx context.Context, userID string) ([]*entities.Reward, error)
}

// LeaderboardService derives ranked user statistics from bets and rewards
type LeaderboardService interface {
	// GetLeaderboard returns the top users by total winnings, ties broken by
	// earlier first-bet timestamp. limit <= 0 returns all users.
	GetLeaderboard(ctx context.Context, limit int) ([]*entities.LeaderboardEntry, error)
}
