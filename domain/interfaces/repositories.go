package interfaces

import (
	"context"
	"time"

	"github.com/antony-akshay/stream-oracle/domain/entities"
)

// StreamerRepository defines the interface for streamer data access
type StreamerRepository interface {
	// Create persists a new streamer, filling ID and CreatedAt
	Create(ctx context.Context, streamer *entities.Streamer) error

	// GetByID retrieves a streamer by ID, nil if missing
	GetByID(ctx context.Context, id int64) (*entities.Streamer, error)

	// GetAll returns all streamers ordered by creation time
	GetAll(ctx context.Context) ([]*entities.Streamer, error)

	// SetActive flips the active flag; reports whether the streamer existed
	SetActive(ctx context.Context, id int64, active bool) (bool, error)
}

// MarketFilter narrows a market listing. Only persisted statuses are
// understood here; the derived "closed" status is handled by the service.
type MarketFilter struct {
	Status     *entities.MarketStatus
	StreamerID *int64
}

// MarketRepository defines the interface for market data access
type MarketRepository interface {
	// Create persists a new market, filling ID and CreatedAt
	Create(ctx context.Context, market *entities.Market) error

	// GetByID retrieves a market by ID, nil if missing
	GetByID(ctx context.Context, id int64) (*entities.Market, error)

	// List returns markets matching the filter, newest first
	List(ctx context.Context, filter MarketFilter) ([]*entities.Market, error)

	// ApplyBetToPool adds a stake to the market's running pool counters iff
	// the market is still open. Reports whether the counters were updated;
	// false means the market resolved out from under the caller.
	ApplyBetToPool(ctx context.Context, marketID int64, prediction entities.Outcome, amount int64) (bool, error)

	// MarkResolved performs the open -> resolved compare-and-set, recording
	// the result. Reports whether this call won the transition; false means
	// the market was not open anymore.
	MarkResolved(ctx context.Context, marketID int64, result entities.Outcome, resolvedAt time.Time) (bool, error)
}

// BetRepository defines the interface for bet ledger access
type BetRepository interface {
	// Create appends an immutable bet, filling ID and CreatedAt
	Create(ctx context.Context, bet *entities.Bet) error

	// GetByMarket returns all bets for a market in placement order
	GetByMarket(ctx context.Context, marketID int64) ([]*entities.Bet, error)

	// GetByUser returns a user's bets, newest first, capped at limit (0 = all)
	GetByUser(ctx context.Context, userID string, limit int) ([]*entities.Bet, error)

	// GetUserAggregates returns per-user bet counts and first-bet timestamps
	GetUserAggregates(ctx context.Context) ([]*entities.UserBetAggregate, error)
}

// RewardRepository defines the interface for settled reward access
type RewardRepository interface {
	// CreateIfAbsent inserts the reward iff no reward exists for its bet,
	// filling ID and CreatedAt on insertion. Reports whether a row was
	// created; false means the bet was already settled.
	CreateIfAbsent(ctx context.Context, reward *entities.Reward) (bool, error)

	// GetByMarket returns all rewards recorded for a market
	GetByMarket(ctx context.Context, marketID int64) ([]*entities.Reward, error)

	// GetByUser returns a user's rewards, newest first
	GetByUser(ctx context.Context, userID string) ([]*entities.Reward, error)

	// GetUserAggregates returns per-user winnings totals and rewarded bet counts
	GetUserAggregates(ctx context.Context) ([]*entities.UserRewardAggregate, error)
}

// UnitOfWork scopes a set of repository operations to one atomic transaction.
// Repository accessors may only be used between Begin and Commit/Rollback.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	StreamerRepository() StreamerRepository
	MarketRepository() MarketRepository
	BetRepository() BetRepository
	RewardRepository() RewardRepository
}

// UnitOfWorkFactory creates units of work bound to the underlying store
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
