package repository

import (
	"context"
	"fmt"

	"github.com/antony-akshay/stream-oracle/database"
	"github.com/antony-akshay/stream-oracle/domain/entities"
	"github.com/antony-akshay/stream-oracle/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

type streamerRepository struct {
	q Queryable
}

// NewStreamerRepository creates a new streamer repository
func NewStreamerRepository(db *database.DB) interfaces.StreamerRepository {
	return &streamerRepository{q: db.Pool}
}

func newStreamerRepository(tx Queryable) interfaces.StreamerRepository {
	return &streamerRepository{q: tx}
}

func (r *streamerRepository) Create(ctx context.Context, streamer *entities.Streamer) error {
	query := `
		INSERT INTO streamers (name, description, token_address, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.q.QueryRow(ctx, query,
		streamer.Name,
		streamer.Description,
		streamer.TokenAddress,
		streamer.IsActive,
	).Scan(&streamer.ID, &streamer.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create streamer: %w", translateError(err))
	}

	return nil
}

func (r *streamerRepository) GetByID(ctx context.Context, id int64) (*entities.Streamer, error) {
	query := `
		SELECT id, name, description, token_address, is_active, created_at
		FROM streamers
		WHERE id = $1`

	var streamer entities.Streamer
	err := r.q.QueryRow(ctx, query, id).Scan(
		&streamer.ID,
		&streamer.Name,
		&streamer.Description,
		&streamer.TokenAddress,
		&streamer.IsActive,
		&streamer.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get streamer: %w", translateError(err))
	}

	return &streamer, nil
}

func (r *streamerRepository) GetAll(ctx context.Context) ([]*entities.Streamer, error) {
	query := `
		SELECT id, name, description, token_address, is_active, created_at
		FROM streamers
		ORDER BY created_at`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query streamers: %w", translateError(err))
	}
	defer rows.Close()

	var streamers []*entities.Streamer
	for rows.Next() {
		var streamer entities.Streamer
		err := rows.Scan(
			&streamer.ID,
			&streamer.Name,
			&streamer.Description,
			&streamer.TokenAddress,
			&streamer.IsActive,
			&streamer.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan streamer: %w", err)
		}
		streamers = append(streamers, &streamer)
	}

	return streamers, nil
}

func (r *streamerRepository) SetActive(ctx context.Context, id int64, active bool) (bool, error) {
	query := `
		UPDATE streamers
		SET is_active = $2
		WHERE id = $1`

	tag, err := r.q.Exec(ctx, query, id, active)
	if err != nil {
		return false, fmt.Errorf("failed to update streamer: %w", translateError(err))
	}

	return tag.RowsAffected() > 0, nil
}
