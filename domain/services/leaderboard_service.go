package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/antony-akshay/stream-oracle/domain/entities"
	"github.com/antony-akshay/stream-oracle/domain/interfaces"
)

// calculateWinRate calculates win percentage from wins and total attempts
func calculateWinRate(wins, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(wins) / float64(total) * 100
}

type leaderboardService struct {
	uowFactory interfaces.UnitOfWorkFactory
}

// NewLeaderboardService creates a new leaderboard service
func NewLeaderboardService(uowFactory interfaces.UnitOfWorkFactory) interfaces.LeaderboardService {
	return &leaderboardService{uowFactory: uowFactory}
}

// GetLeaderboard recomputes the ranking from committed bets and rewards.
// Ordering is total winnings descending, ties broken by earlier first bet,
// then by user ID so the result is fully deterministic.
func (s *leaderboardService) GetLeaderboard(ctx context.Context, limit int) ([]*entities.LeaderboardEntry, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	betAggs, err := uow.BetRepository().GetUserAggregates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate bets: %w", err)
	}
	rewardAggs, err := uow.RewardRepository().GetUserAggregates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate rewards: %w", err)
	}

	rewardsByUser := make(map[string]*entities.UserRewardAggregate, len(rewardAggs))
	for _, agg := range rewardAggs {
		rewardsByUser[agg.UserID] = agg
	}

	entries := make([]*entities.LeaderboardEntry, 0, len(betAggs))
	for _, betAgg := range betAggs {
		entry := &entities.LeaderboardEntry{
			UserID:     betAgg.UserID,
			TotalBets:  betAgg.TotalBets,
			FirstBetAt: betAgg.FirstBetAt,
			WinRate:    0,
		}
		if rewardAgg, ok := rewardsByUser[betAgg.UserID]; ok {
			entry.TotalWinnings = rewardAgg.TotalWinnings
			entry.WonBets = rewardAgg.RewardedBets
			entry.WinRate = calculateWinRate(rewardAgg.RewardedBets, betAgg.TotalBets)
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalWinnings != entries[j].TotalWinnings {
			return entries[i].TotalWinnings > entries[j].TotalWinnings
		}
		if !entries[i].FirstBetAt.Equal(entries[j].FirstBetAt) {
			return entries[i].FirstBetAt.Before(entries[j].FirstBetAt)
		}
		return entries[i].UserID < entries[j].UserID
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	return entries, nil
}
