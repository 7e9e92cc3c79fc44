package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/antony-akshay/stream-oracle/config"
	"github.com/antony-akshay/stream-oracle/domain/entities"
	"github.com/antony-akshay/stream-oracle/domain/events"
	"github.com/antony-akshay/stream-oracle/repository/memory"

	"github.com/stretchr/testify/require"
)

// testClock is a hand-advanced clock shared by the store and the services
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock(start time.Time) *testClock {
	return &testClock{t: start}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// recordingPublisher captures published events; Publish can be made to fail
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) published() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}

func (p *recordingPublisher) failWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// fixture wires all services over the in-memory store with an injected clock
type fixture struct {
	store     *memory.Store
	clock     *testClock
	publisher *recordingPublisher

	streamers   *streamerService
	markets     *marketService
	betting     *bettingService
	settlement  *settlementService
	leaderboard *leaderboardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := config.NewTestConfig()
	config.SetTestConfig(cfg)
	t.Cleanup(config.ResetConfig)

	clock := newTestClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	store := memory.NewStore()
	store.SetNow(clock.Now)
	publisher := &recordingPublisher{}

	markets := &marketService{config: cfg, uowFactory: store, eventPublisher: publisher, now: clock.Now}

	return &fixture{
		store:       store,
		clock:       clock,
		publisher:   publisher,
		streamers:   &streamerService{uowFactory: store, eventPublisher: publisher},
		markets:     markets,
		betting:     &bettingService{config: cfg, uowFactory: store, eventPublisher: publisher, now: clock.Now},
		settlement:  &settlementService{uowFactory: store, markets: markets},
		leaderboard: &leaderboardService{uowFactory: store},
	}
}

func (f *fixture) createStreamer(t *testing.T) *entities.Streamer {
	t.Helper()
	streamer, err := f.streamers.CreateStreamer(context.Background(), "ninja", "FPS speedruns", "")
	require.NoError(t, err)
	return streamer
}

func (f *fixture) createMarket(t *testing.T, streamerID, durationSeconds int64) *entities.Market {
	t.Helper()
	market, err := f.markets.CreateMarket(context.Background(), streamerID,
		"Will the boss die first try", "First attempt only", entities.CategoryGameplay, durationSeconds)
	require.NoError(t, err)
	return market
}
