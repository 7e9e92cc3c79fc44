package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/antony-akshay/stream-oracle/config"
	"github.com/antony-akshay/stream-oracle/domain"
	"github.com/antony-akshay/stream-oracle/domain/entities"
	"github.com/antony-akshay/stream-oracle/domain/events"
	"github.com/antony-akshay/stream-oracle/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const sol = int64(1_000_000_000)

func TestPlaceBetValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	streamer := f.createStreamer(t)
	market := f.createMarket(t, streamer.ID, 60)

	tests := []struct {
		name       string
		userID     string
		prediction entities.Outcome
		amount     int64
	}{
		{"empty user", "", entities.OutcomeYes, sol},
		{"none prediction", "userA", entities.OutcomeNone, sol},
		{"bogus prediction", "userA", entities.Outcome("maybe"), sol},
		{"zero amount", "userA", entities.OutcomeYes, 0},
		{"negative amount", "userA", entities.OutcomeYes, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.betting.PlaceBet(ctx, market.ID, tt.userID, tt.prediction, tt.amount)
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		})
	}

	_, err := f.betting.PlaceBet(ctx, 999, "userA", entities.OutcomeYes, sol)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPlaceBetMaxAmount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	streamer := f.createStreamer(t)
	market := f.createMarket(t, streamer.ID, 60)

	f.betting.config = &config.Config{Environment: "test", MaxBetAmount: 10 * sol}

	_, err := f.betting.PlaceBet(ctx, market.ID, "userA", entities.OutcomeYes, 11*sol)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = f.betting.PlaceBet(ctx, market.ID, "userA", entities.OutcomeYes, 10*sol)
	assert.NoError(t, err)
}

func TestPlaceBetUpdatesPoolAtomically(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	streamer := f.createStreamer(t)
	market := f.createMarket(t, streamer.ID, 60)

	bet, err := f.betting.PlaceBet(ctx, market.ID, "userA", entities.OutcomeYes, sol)
	require.NoError(t, err)
	assert.NotZero(t, bet.ID)

	_, err = f.betting.PlaceBet(ctx, market.ID, "userB", entities.OutcomeNo, 2*sol)
	require.NoError(t, err)

	// Same user may stake the same market again
	_, err = f.betting.PlaceBet(ctx, market.ID, "userA", entities.OutcomeNo, sol)
	require.NoError(t, err)

	got, err := f.markets.GetMarket(ctx, market.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.PoolTotals{
		TotalPool: 4 * sol,
		YesTotal:  sol,
		NoTotal:   3 * sol,
		YesCount:  1,
		NoCount:   2,
	}, got.Pool())

	published := f.publisher.published()
	var betEvents []events.BetPlacedEvent
	for _, e := range published {
		if be, ok := e.(events.BetPlacedEvent); ok {
			betEvents = append(betEvents, be)
		}
	}
	require.Len(t, betEvents, 3)
	assert.Equal(t, "userA", betEvents[0].UserID)
}

func TestPlaceBetAfterDeadline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	streamer := f.createStreamer(t)
	market := f.createMarket(t, streamer.ID, 60)

	f.clock.Advance(60 * time.Second)

	_, err := f.betting.PlaceBet(ctx, market.ID, "userA", entities.OutcomeYes, sol)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	// The rejected bet must not leak into the ledger or the pool
	got, err := f.markets.GetMarket(ctx, market.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.PoolTotals{}, got.Pool())

	bets, err := f.betting.ListUserBets(ctx, "userA", 0)
	require.NoError(t, err)
	assert.Empty(t, bets)
}

func TestPlaceBetOnResolvedMarket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	streamer := f.createStreamer(t)
	market := f.createMarket(t, streamer.ID, 60)
	f.clock.Advance(61 * time.Second)

	_, err := f.markets.Resolve(ctx, market.ID, entities.OutcomeYes, "mod1")
	require.NoError(t, err)

	_, err = f.betting.PlaceBet(ctx, market.ID, "userA", entities.OutcomeYes, sol)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestPlaceBetPublishFailureDoesNotFailCommand(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	streamer := f.createStreamer(t)
	market := f.createMarket(t, streamer.ID, 60)

	f.publisher.failWith(assert.AnError)

	bet, err := f.betting.PlaceBet(ctx, market.ID, "userA", entities.OutcomeYes, sol)
	require.NoError(t, err)
	assert.NotZero(t, bet.ID)
}

func TestListUserBetsLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	streamer := f.createStreamer(t)
	market := f.createMarket(t, streamer.ID, 600)

	for i := 0; i < 5; i++ {
		_, err := f.betting.PlaceBet(ctx, market.ID, "userA", entities.OutcomeYes, sol)
		require.NoError(t, err)
	}

	bets, err := f.betting.ListUserBets(ctx, "userA", 3)
	require.NoError(t, err)
	assert.Len(t, bets, 3)

	all, err := f.betting.ListUserBets(ctx, "userA", 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestPlaceBetRetriesOnConflict(t *testing.T) {
	cfg := config.NewTestConfig()
	config.SetTestConfig(cfg)
	t.Cleanup(config.ResetConfig)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	market := &entities.Market{
		ID:              1,
		Status:          entities.MarketStatusOpen,
		DurationSeconds: 60,
		CreatedAt:       now,
	}

	uow := testhelpers.NewMockUnitOfWork()
	factory := testhelpers.NewMockUnitOfWorkFactory(uow)
	publisher := new(testhelpers.MockEventPublisher)

	conflictErr := fmt.Errorf("%w: simulated serialization failure", domain.ErrConflict)
	uow.MarketRepo.On("GetByID", mock.Anything, int64(1)).Return(nil, conflictErr).Twice()
	uow.MarketRepo.On("GetByID", mock.Anything, int64(1)).Return(market, nil).Once()
	uow.BetRepo.On("Create", mock.Anything, mock.AnythingOfType("*entities.Bet")).Return(nil).Once()
	uow.MarketRepo.On("ApplyBetToPool", mock.Anything, int64(1), entities.OutcomeYes, sol).Return(true, nil).Once()
	publisher.On("Publish", mock.AnythingOfType("events.BetPlacedEvent")).Return(nil).Once()

	svc := &bettingService{config: cfg, uowFactory: factory, eventPublisher: publisher, now: func() time.Time { return now }}

	bet, err := svc.PlaceBet(context.Background(), 1, "userA", entities.OutcomeYes, sol)
	require.NoError(t, err)
	assert.Equal(t, entities.OutcomeYes, bet.Prediction)

	uow.MarketRepo.AssertExpectations(t)
	uow.BetRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestPlaceBetGivesUpAfterRepeatedConflicts(t *testing.T) {
	cfg := config.NewTestConfig()
	config.SetTestConfig(cfg)
	t.Cleanup(config.ResetConfig)

	uow := testhelpers.NewMockUnitOfWork()
	factory := testhelpers.NewMockUnitOfWorkFactory(uow)

	conflictErr := fmt.Errorf("%w: simulated serialization failure", domain.ErrConflict)
	uow.MarketRepo.On("GetByID", mock.Anything, int64(1)).Return(nil, conflictErr)

	svc := &bettingService{config: cfg, uowFactory: factory, eventPublisher: new(testhelpers.MockEventPublisher), now: time.Now}

	_, err := svc.PlaceBet(context.Background(), 1, "userA", entities.OutcomeYes, sol)
	assert.ErrorIs(t, err, domain.ErrConflict)
}
