package services

import (
	"context"
	"fmt"

	"github.com/antony-akshay/stream-oracle/domain"
	"github.com/antony-akshay/stream-oracle/domain/entities"
	"github.com/antony-akshay/stream-oracle/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

type settlementService struct {
	uowFactory interfaces.UnitOfWorkFactory
	markets    interfaces.MarketService
}

// NewSettlementService creates a new settlement service. Resolution itself is
// delegated to the market lifecycle service; this service owns phase two.
func NewSettlementService(uowFactory interfaces.UnitOfWorkFactory, markets interfaces.MarketService) interfaces.SettlementService {
	return &settlementService{
		uowFactory: uowFactory,
		markets:    markets,
	}
}

// ResolveAndSettle runs both settlement phases. When the resolve race is lost
// the error is surfaced unchanged and no settlement pass is made: the actor
// that won the race owns settlement, and a crashed winner can be recovered by
// calling Settle directly.
func (s *settlementService) ResolveAndSettle(ctx context.Context, marketID int64, outcome entities.Outcome, resolverID string) (*entities.SettlementResult, error) {
	if _, err := s.markets.Resolve(ctx, marketID, outcome, resolverID); err != nil {
		return nil, err
	}
	return s.Settle(ctx, marketID)
}

// Settle computes and records rewards for every winning bet of a resolved
// market. Idempotent per bet: reruns after a crash or racing invocations
// create only the rewards that are still missing, never duplicates.
func (s *settlementService) Settle(ctx context.Context, marketID int64) (*entities.SettlementResult, error) {
	var result *entities.SettlementResult
	err := withConflictRetry("settle market", func() error {
		settled, err := s.settle(ctx, marketID)
		if err != nil {
			return err
		}
		result = settled
		return nil
	})
	return result, err
}

func (s *settlementService) settle(ctx context.Context, marketID int64) (*entities.SettlementResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	market, err := uow.MarketRepository().GetByID(ctx, marketID)
	if err != nil {
		return nil, fmt.Errorf("failed to get market: %w", err)
	}
	if market == nil {
		return nil, fmt.Errorf("%w: market %d", domain.ErrNotFound, marketID)
	}
	if !market.IsResolved() {
		return nil, fmt.Errorf("%w: market %d is not resolved", domain.ErrInvalidState, marketID)
	}

	bets, err := uow.BetRepository().GetByMarket(ctx, marketID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bets: %w", err)
	}

	totalPool := market.TotalPool
	winningSideTotal := market.WinningSideTotal()

	result := &entities.SettlementResult{
		Market:           market,
		WinningSideTotal: winningSideTotal,
	}

	// A resolved side with zero backers is a valid resolution; the pool stays
	// unclaimed rather than being refunded.
	if winningSideTotal > 0 {
		for _, bet := range bets {
			if !bet.IsWinner(market.Result) {
				continue
			}
			reward := &entities.Reward{
				MarketID: marketID,
				BetID:    bet.ID,
				UserID:   bet.UserID,
				Amount:   bet.CalculatePayout(totalPool, winningSideTotal),
			}
			created, err := uow.RewardRepository().CreateIfAbsent(ctx, reward)
			if err != nil {
				return nil, fmt.Errorf("failed to record reward for bet %d: %w", bet.ID, err)
			}
			if created {
				result.NewRewards++
			}
		}
	}

	rewards, err := uow.RewardRepository().GetByMarket(ctx, marketID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rewards: %w", err)
	}
	result.Rewards = rewards
	for _, reward := range rewards {
		result.TotalPaid += reward.Amount
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit settlement: %w", err)
	}

	log.WithFields(log.Fields{
		"marketId":   marketID,
		"result":     market.Result,
		"newRewards": result.NewRewards,
		"totalPaid":  result.TotalPaid,
		"totalPool":  totalPool,
	}).Info("Market settled")

	return result, nil
}

// ListUserRewards returns a user's settled rewards, newest first
func (s *settlementService) ListUserRewards(ctx context.Context, userID string) ([]*entities.Reward, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	rewards, err := uow.RewardRepository().GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rewards: %w", err)
	}

	return rewards, nil
}
