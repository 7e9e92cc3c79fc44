package repository

import (
	"context"
	"fmt"

	"github.com/antony-akshay/stream-oracle/database"
	"github.com/antony-akshay/stream-oracle/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the UnitOfWork interface over one pgx transaction
type unitOfWork struct {
	db  *database.DB
	tx  pgx.Tx
	ctx context.Context

	streamerRepo interfaces.StreamerRepository
	marketRepo   interfaces.MarketRepository
	betRepo      interfaces.BetRepository
	rewardRepo   interfaces.RewardRepository
}

type unitOfWorkFactory struct {
	db *database.DB
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB) interfaces.UnitOfWorkFactory {
	return &unitOfWorkFactory{db: db}
}

func (f *unitOfWorkFactory) Create() interfaces.UnitOfWork {
	return &unitOfWork{db: f.db}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", translateError(err))
	}

	u.tx = tx
	u.ctx = ctx

	u.streamerRepo = newStreamerRepository(tx)
	u.marketRepo = newMarketRepository(tx)
	u.betRepo = newBetRepository(tx)
	u.rewardRepo = newRewardRepository(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", translateError(err))
	}

	u.tx = nil
	return nil
}

// Rollback rolls back the transaction. Safe after Commit.
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil
	return nil
}

func (u *unitOfWork) StreamerRepository() interfaces.StreamerRepository {
	if u.streamerRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.streamerRepo
}

func (u *unitOfWork) MarketRepository() interfaces.MarketRepository {
	if u.marketRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.marketRepo
}

func (u *unitOfWork) BetRepository() interfaces.BetRepository {
	if u.betRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.betRepo
}

func (u *unitOfWork) RewardRepository() interfaces.RewardRepository {
	if u.rewardRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.rewardRepo
}
