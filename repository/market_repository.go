package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/antony-akshay/stream-oracle/database"
	"github.com/antony-akshay/stream-oracle/domain/entities"
	"github.com/antony-akshay/stream-oracle/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

type marketRepository struct {
	q Queryable
}

// NewMarketRepository creates a new market repository
func NewMarketRepository(db *database.DB) interfaces.MarketRepository {
	return &marketRepository{q: db.Pool}
}

func newMarketRepository(tx Queryable) interfaces.MarketRepository {
	return &marketRepository{q: tx}
}

const marketColumns = `id, streamer_id, title, description, category, duration_seconds,
	status, result, total_pool, yes_total, no_total, yes_count, no_count,
	created_at, resolved_at`

func scanMarket(row pgx.Row) (*entities.Market, error) {
	var market entities.Market
	err := row.Scan(
		&market.ID,
		&market.StreamerID,
		&market.Title,
		&market.Description,
		&market.Category,
		&market.DurationSeconds,
		&market.Status,
		&market.Result,
		&market.TotalPool,
		&market.YesTotal,
		&market.NoTotal,
		&market.YesCount,
		&market.NoCount,
		&market.CreatedAt,
		&market.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return &market, nil
}

func (r *marketRepository) Create(ctx context.Context, market *entities.Market) error {
	query := `
		INSERT INTO markets (streamer_id, title, description, category, duration_seconds, status, result)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.q.QueryRow(ctx, query,
		market.StreamerID,
		market.Title,
		market.Description,
		market.Category,
		market.DurationSeconds,
		market.Status,
		market.Result,
	).Scan(&market.ID, &market.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create market: %w", translateError(err))
	}

	return nil
}

func (r *marketRepository) GetByID(ctx context.Context, id int64) (*entities.Market, error) {
	query := `SELECT ` + marketColumns + ` FROM markets WHERE id = $1`

	market, err := scanMarket(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get market: %w", translateError(err))
	}

	return market, nil
}

func (r *marketRepository) List(ctx context.Context, filter interfaces.MarketFilter) ([]*entities.Market, error) {
	query := `SELECT ` + marketColumns + ` FROM markets`

	var conditions []string
	var args []any
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.StreamerID != nil {
		args = append(args, *filter.StreamerID)
		conditions = append(conditions, fmt.Sprintf("streamer_id = $%d", len(args)))
	}
	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query markets: %w", translateError(err))
	}
	defer rows.Close()

	var markets []*entities.Market
	for rows.Next() {
		market, err := scanMarket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan market: %w", err)
		}
		markets = append(markets, market)
	}

	return markets, nil
}

// ApplyBetToPool folds a stake into the market's running counters, guarded on
// the market still being open so a concurrent resolution invalidates the bet
// instead of corrupting a final pool.
func (r *marketRepository) ApplyBetToPool(ctx context.Context, marketID int64, prediction entities.Outcome, amount int64) (bool, error) {
	query := `
		UPDATE markets
		SET total_pool = total_pool + $2,
			yes_total = yes_total + CASE WHEN $3 = 'yes' THEN $2 ELSE 0 END,
			no_total = no_total + CASE WHEN $3 = 'no' THEN $2 ELSE 0 END,
			yes_count = yes_count + CASE WHEN $3 = 'yes' THEN 1 ELSE 0 END,
			no_count = no_count + CASE WHEN $3 = 'no' THEN 1 ELSE 0 END
		WHERE id = $1 AND status = 'open'`

	tag, err := r.q.Exec(ctx, query, marketID, amount, string(prediction))
	if err != nil {
		return false, fmt.Errorf("failed to apply bet to pool: %w", translateError(err))
	}

	return tag.RowsAffected() > 0, nil
}

// MarkResolved is the open -> resolved compare-and-set. The status guard in
// the WHERE clause makes concurrent resolutions race on the row lock; exactly
// one caller sees an affected row.
func (r *marketRepository) MarkResolved(ctx context.Context, marketID int64, result entities.Outcome, resolvedAt time.Time) (bool, error) {
	query := `
		UPDATE markets
		SET status = 'resolved', result = $2, resolved_at = $3
		WHERE id = $1 AND status = 'open'`

	tag, err := r.q.Exec(ctx, query, marketID, result, resolvedAt)
	if err != nil {
		return false, fmt.Errorf("failed to mark market resolved: %w", translateError(err))
	}

	return tag.RowsAffected() > 0, nil
}
