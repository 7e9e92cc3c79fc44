package repository

import (
	"context"
	"fmt"

	"github.com/antony-akshay/stream-oracle/database"
	"github.com/antony-akshay/stream-oracle/domain/entities"
	"github.com/antony-akshay/stream-oracle/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

type rewardRepository struct {
	q Queryable
}

// NewRewardRepository creates a new reward repository
func NewRewardRepository(db *database.DB) interfaces.RewardRepository {
	return &rewardRepository{q: db.Pool}
}

func newRewardRepository(tx Queryable) interfaces.RewardRepository {
	return &rewardRepository{q: tx}
}

// CreateIfAbsent relies on the unique index on bet_id for its at-most-once
// guarantee: a racing duplicate insert lands on DO NOTHING and reports false.
func (r *rewardRepository) CreateIfAbsent(ctx context.Context, reward *entities.Reward) (bool, error) {
	query := `
		INSERT INTO rewards (market_id, bet_id, user_id, amount)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (bet_id) DO NOTHING
		RETURNING id, created_at`

	err := r.q.QueryRow(ctx, query,
		reward.MarketID,
		reward.BetID,
		reward.UserID,
		reward.Amount,
	).Scan(&reward.ID, &reward.CreatedAt)

	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create reward: %w", translateError(err))
	}

	return true, nil
}

func (r *rewardRepository) GetByMarket(ctx context.Context, marketID int64) ([]*entities.Reward, error) {
	query := `
		SELECT id, market_id, bet_id, user_id, amount, created_at
		FROM rewards
		WHERE market_id = $1
		ORDER BY bet_id`

	rows, err := r.q.Query(ctx, query, marketID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rewards: %w", translateError(err))
	}
	defer rows.Close()

	return scanRewards(rows)
}

func (r *rewardRepository) GetByUser(ctx context.Context, userID string) ([]*entities.Reward, error) {
	query := `
		SELECT id, market_id, bet_id, user_id, amount, created_at
		FROM rewards
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rewards: %w", translateError(err))
	}
	defer rows.Close()

	return scanRewards(rows)
}

func (r *rewardRepository) GetUserAggregates(ctx context.Context) ([]*entities.UserRewardAggregate, error) {
	query := `
		SELECT user_id, COALESCE(SUM(amount), 0) as total_winnings, COUNT(*) as rewarded_bets
		FROM rewards
		GROUP BY user_id`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query reward aggregates: %w", translateError(err))
	}
	defer rows.Close()

	var aggregates []*entities.UserRewardAggregate
	for rows.Next() {
		var agg entities.UserRewardAggregate
		if err := rows.Scan(&agg.UserID, &agg.TotalWinnings, &agg.RewardedBets); err != nil {
			return nil, fmt.Errorf("failed to scan reward aggregate: %w", err)
		}
		aggregates = append(aggregates, &agg)
	}

	return aggregates, nil
}

func scanRewards(rows pgx.Rows) ([]*entities.Reward, error) {
	var rewards []*entities.Reward
	for rows.Next() {
		var reward entities.Reward
		err := rows.Scan(
			&reward.ID,
			&reward.MarketID,
			&reward.BetID,
			&reward.UserID,
			&reward.Amount,
			&reward.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reward: %w", err)
		}
		rewards = append(rewards, &reward)
	}
	return rewards, nil
}
