package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/antony-akshay/stream-oracle/config"
	"github.com/antony-akshay/stream-oracle/domain"
	"github.com/antony-akshay/stream-oracle/domain/entities"
	"github.com/antony-akshay/stream-oracle/domain/events"
	"github.com/antony-akshay/stream-oracle/domain/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMarketValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	streamer := f.createStreamer(t)

	tests := []struct {
		name     string
		title    string
		desc     string
		category entities.MarketCategory
		duration int64
	}{
		{"empty title", "  ", "desc", entities.CategoryGameplay, 60},
		{"empty description", "title", "", entities.CategoryGameplay, 60},
		{"bad category", "title", "desc", entities.MarketCategory("sports"), 60},
		{"zero duration", "title", "desc", entities.CategoryChat, 0},
		{"negative duration", "title", "desc", entities.CategoryChat, -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.markets.CreateMarket(ctx, streamer.ID, tt.title, tt.desc, tt.category, tt.duration)
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		})
	}
}

func TestCreateMarketStreamerChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.markets.CreateMarket(ctx, 999, "title", "desc", entities.CategoryGameplay, 60)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	streamer := f.createStreamer(t)
	_, err = f.streamers.DeactivateStreamer(ctx, streamer.ID)
	require.NoError(t, err)

	_, err = f.markets.CreateMarket(ctx, streamer.ID, "title", "desc", entities.CategoryGameplay, 60)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCreateMarketOpensWithEmptyPool(t *testing.T) {
	f := newFixture(t)
	streamer := f.createStreamer(t)
	market := f.createMarket(t, streamer.ID, 60)

	assert.Equal(t, entities.MarketStatusOpen, market.Status)
	assert.Equal(t, entities.OutcomeNone, market.Result)
	assert.Equal(t, entities.PoolTotals{}, market.Pool())
	assert.Equal(t, f.clock.Now().Add(60*time.Second), market.Deadline())

	published := f.publisher.published()
	require.Len(t, published, 2) // streamer_created, market_created
	created, ok := published[1].(events.MarketCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, market.ID, created.MarketID)
}

func TestListMarketsDerivedStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	streamer := f.createStreamer(t)

	short := f.createMarket(t, streamer.ID, 30)
	long := f.createMarket(t, streamer.ID, 3600)

	f.clock.Advance(60 * time.Second) // short expired, long still open

	open := entities.MarketStatusOpen
	openMarkets, err := f.markets.ListMarkets(ctx, interfaces.MarketQuery{Status: &open})
	require.NoError(t, err)
	require.Len(t, openMarkets, 1)
	assert.Equal(t, long.ID, openMarkets[0].ID)

	closed := entities.MarketStatusClosed
	closedMarkets, err := f.markets.ListMarkets(ctx, interfaces.MarketQuery{Status: &closed})
	require.NoError(t, err)
	require.Len(t, closedMarkets, 1)
	assert.Equal(t, short.ID, closedMarkets[0].ID)
	// Derived status is never persisted
	assert.Equal(t, entities.MarketStatusOpen, closedMarkets[0].Status)
	assert.Equal(t, entities.MarketStatusClosed, closedMarkets[0].DisplayStatus(f.clock.Now()))

	bogus := entities.MarketStatus("weird")
	_, err = f.markets.ListMarkets(ctx, interfaces.MarketQuery{Status: &bogus})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestListMarketsByStreamer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.createStreamer(t)
	second, err := f.streamers.CreateStreamer(ctx, "pokimane", "Variety", "")
	require.NoError(t, err)

	f.createMarket(t, first.ID, 60)
	mine := f.createMarket(t, second.ID, 60)

	markets, err := f.markets.ListMarkets(ctx, interfaces.MarketQuery{StreamerID: &second.ID})
	require.NoError(t, err)
	require.Len(t, markets, 1)
	assert.Equal(t, mine.ID, markets[0].ID)
}

func TestResolveBeforeDeadline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	streamer := f.createStreamer(t)
	market := f.createMarket(t, streamer.ID, 60)

	f.clock.Advance(50 * time.Second)

	_, err := f.markets.Resolve(ctx, market.ID, entities.OutcomeYes, "mod1")
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	// Still unresolved
	got, err := f.markets.GetMarket(ctx, market.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.MarketStatusOpen, got.Status)
}

func TestResolveValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	streamer := f.createStreamer(t)
	market := f.createMarket(t, streamer.ID, 60)
	f.clock.Advance(61 * time.Second)

	_, err := f.markets.Resolve(ctx, market.ID, entities.OutcomeNone, "mod1")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = f.markets.Resolve(ctx, 999, entities.OutcomeYes, "mod1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolveAllowlist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	streamer := f.createStreamer(t)
	market := f.createMarket(t, streamer.ID, 60)
	f.clock.Advance(61 * time.Second)

	f.markets.config = &config.Config{Environment: "test", ResolverUserIDs: []string{"mod1", "mod2"}}

	_, err := f.markets.Resolve(ctx, market.ID, entities.OutcomeYes, "rando")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	resolved, err := f.markets.Resolve(ctx, market.ID, entities.OutcomeYes, "mod2")
	require.NoError(t, err)
	assert.Equal(t, entities.MarketStatusResolved, resolved.Status)
}

func TestResolveIsFinal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	streamer := f.createStreamer(t)
	market := f.createMarket(t, streamer.ID, 60)
	f.clock.Advance(61 * time.Second)

	resolved, err := f.markets.Resolve(ctx, market.ID, entities.OutcomeNo, "mod1")
	require.NoError(t, err)
	assert.Equal(t, entities.OutcomeNo, resolved.Result)
	require.NotNil(t, resolved.ResolvedAt)

	_, err = f.markets.Resolve(ctx, market.ID, entities.OutcomeYes, "mod1")
	assert.ErrorIs(t, err, domain.ErrAlreadyResolved)

	// The losing attempt must not overwrite the result
	got, err := f.markets.GetMarket(ctx, market.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.OutcomeNo, got.Result)
}

func TestConcurrentResolveSingleWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	streamer := f.createStreamer(t)
	market := f.createMarket(t, streamer.ID, 60)
	f.clock.Advance(61 * time.Second)

	const resolvers = 8
	var wg sync.WaitGroup
	winners := make(chan entities.Outcome, resolvers)
	losers := make(chan error, resolvers)

	for i := 0; i < resolvers; i++ {
		outcome := entities.OutcomeYes
		if i%2 == 1 {
			outcome = entities.OutcomeNo
		}
		wg.Add(1)
		go func(outcome entities.Outcome) {
			defer wg.Done()
			resolved, err := f.markets.Resolve(ctx, market.ID, outcome, "mod1")
			if err != nil {
				losers <- err
				return
			}
			winners <- resolved.Result
		}(outcome)
	}
	wg.Wait()
	close(winners)
	close(losers)

	require.Len(t, winners, 1, "exactly one resolver wins")
	winningOutcome := <-winners
	for err := range losers {
		assert.ErrorIs(t, err, domain.ErrAlreadyResolved)
	}

	got, err := f.markets.GetMarket(ctx, market.ID)
	require.NoError(t, err)
	assert.Equal(t, winningOutcome, got.Result)
}

func TestResolvePublishFailureDoesNotFailCommand(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	streamer := f.createStreamer(t)
	market := f.createMarket(t, streamer.ID, 60)
	f.clock.Advance(61 * time.Second)

	f.publisher.failWith(assert.AnError)

	resolved, err := f.markets.Resolve(ctx, market.ID, entities.OutcomeYes, "mod1")
	require.NoError(t, err)
	assert.Equal(t, entities.MarketStatusResolved, resolved.Status)
}
