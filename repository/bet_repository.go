package repository

import (
	"context"
	"fmt"

	"github.com/antony-akshay/stream-oracle/database"
	"github.com/antony-akshay/stream-oracle/domain/entities"
	"github.com/antony-akshay/stream-oracle/domain/interfaces"
)

type betRepository struct {
	q Queryable
}

// NewBetRepository creates a new bet repository
func NewBetRepository(db *database.DB) interfaces.BetRepository {
	return &betRepository{q: db.Pool}
}

func newBetRepository(tx Queryable) interfaces.BetRepository {
	return &betRepository{q: tx}
}

func (r *betRepository) Create(ctx context.Context, bet *entities.Bet) error {
	query := `
		INSERT INTO bets (market_id, user_id, prediction, amount)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.q.QueryRow(ctx, query,
		bet.MarketID,
		bet.UserID,
		bet.Prediction,
		bet.Amount,
	).Scan(&bet.ID, &bet.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create bet: %w", translateError(err))
	}

	return nil
}

func (r *betRepository) GetByMarket(ctx context.Context, marketID int64) ([]*entities.Bet, error) {
	query := `
		SELECT id, market_id, user_id, prediction, amount, created_at
		FROM bets
		WHERE market_id = $1
		ORDER BY created_at, id`

	rows, err := r.q.Query(ctx, query, marketID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bets: %w", translateError(err))
	}
	defer rows.Close()

	var bets []*entities.Bet
	for rows.Next() {
		var bet entities.Bet
		err := rows.Scan(
			&bet.ID,
			&bet.MarketID,
			&bet.UserID,
			&bet.Prediction,
			&bet.Amount,
			&bet.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, &bet)
	}

	return bets, nil
}

func (r *betRepository) GetByUser(ctx context.Context, userID string, limit int) ([]*entities.Bet, error) {
	query := `
		SELECT id, market_id, user_id, prediction, amount, created_at
		FROM bets
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`

	args := []any{userID}
	if limit > 0 {
		args = append(args, limit)
		query += " LIMIT $2"
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bets: %w", translateError(err))
	}
	defer rows.Close()

	var bets []*entities.Bet
	for rows.Next() {
		var bet entities.Bet
		err := rows.Scan(
			&bet.ID,
			&bet.MarketID,
			&bet.UserID,
			&bet.Prediction,
			&bet.Amount,
			&bet.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, &bet)
	}

	return bets, nil
}

func (r *betRepository) GetUserAggregates(ctx context.Context) ([]*entities.UserBetAggregate, error) {
	query := `
		SELECT user_id, COUNT(*) as total_bets, MIN(created_at) as first_bet_at
		FROM bets
		GROUP BY user_id`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query bet aggregates: %w", translateError(err))
	}
	defer rows.Close()

	var aggregates []*entities.UserBetAggregate
	for rows.Next() {
		var agg entities.UserBetAggregate
		if err := rows.Scan(&agg.UserID, &agg.TotalBets, &agg.FirstBetAt); err != nil {
			return nil, fmt.Errorf("failed to scan bet aggregate: %w", err)
		}
		aggregates = append(aggregates, &agg)
	}

	return aggregates, nil
}
