package testhelpers

import (
	"context"
	"time"

	"github.com/antony-akshay/stream-oracle/domain/entities"
	"github.com/antony-akshay/stream-oracle/domain/events"
	"github.com/antony-akshay/stream-oracle/domain/interfaces"

	"github.com/stretchr/testify/mock"
)

// MockStreamerRepository is a mock implementation of StreamerRepository
type MockStreamerRepository struct {
	mock.Mock
}

func (m *MockStreamerRepository) Create(ctx context.Context, streamer *entities.Streamer) error {
	args := m.Called(ctx, streamer)
	return args.Error(0)
}

func (m *MockStreamerRepository) GetByID(ctx context.Context, id int64) (*entities.Streamer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Streamer), args.Error(1)
}

func (m *MockStreamerRepository) GetAll(ctx context.Context) ([]*entities.Streamer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Streamer), args.Error(1)
}

func (m *MockStreamerRepository) SetActive(ctx context.Context, id int64, active bool) (bool, error) {
	args := m.Called(ctx, id, active)
	return args.Bool(0), args.Error(1)
}

// MockMarketRepository is a mock implementation of MarketRepository
type MockMarketRepository struct {
	mock.Mock
}

func (m *MockMarketRepository) Create(ctx context.Context, market *entities.Market) error {
	args := m.Called(ctx, market)
	return args.Error(0)
}

func (m *MockMarketRepository) GetByID(ctx context.Context, id int64) (*entities.Market, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Market), args.Error(1)
}

func (m *MockMarketRepository) List(ctx context.Context, filter interfaces.MarketFilter) ([]*entities.Market, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Market), args.Error(1)
}

func (m *MockMarketRepository) ApplyBetToPool(ctx context.Context, marketID int64, prediction entities.Outcome, amount int64) (bool, error) {
	args := m.Called(ctx, marketID, prediction, amount)
	return args.Bool(0), args.Error(1)
}

func (m *MockMarketRepository) MarkResolved(ctx context.Context, marketID int64, result entities.Outcome, resolvedAt time.Time) (bool, error) {
	args := m.Called(ctx, marketID, result, resolvedAt)
	return args.Bool(0), args.Error(1)
}

// MockBetRepository is a mock implementation of BetRepository
type MockBetRepository struct {
	mock.Mock
}

func (m *MockBetRepository) Create(ctx context.Context, bet *entities.Bet) error {
	args := m.Called(ctx, bet)
	return args.Error(0)
}

func (m *MockBetRepository) GetByMarket(ctx context.Context, marketID int64) ([]*entities.Bet, error) {
	args := m.Called(ctx, marketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Bet), args.Error(1)
}

func (m *MockBetRepository) GetByUser(ctx context.Context, userID string, limit int) ([]*entities.Bet, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Bet), args.Error(1)
}

func (m *MockBetRepository) GetUserAggregates(ctx context.Context) ([]*entities.UserBetAggregate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.UserBetAggregate), args.Error(1)
}

// MockRewardRepository is a mock implementation of RewardRepository
type MockRewardRepository struct {
	mock.Mock
}

func (m *MockRewardRepository) CreateIfAbsent(ctx context.Context, reward *entities.Reward) (bool, error) {
	args := m.Called(ctx, reward)
	return args.Bool(0), args.Error(1)
}

func (m *MockRewardRepository) GetByMarket(ctx context.Context, marketID int64) ([]*entities.Reward, error) {
	args := m.Called(ctx, marketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Reward), args.Error(1)
}

func (m *MockRewardRepository) GetByUser(ctx context.Context, userID string) ([]*entities.Reward, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Reward), args.Error(1)
}

func (m *MockRewardRepository) GetUserAggregates(ctx context.Context) ([]*entities.UserRewardAggregate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.UserRewardAggregate), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockUnitOfWork is a stub unit of work wired to the mock repositories above.
// Begin/Commit/Rollback succeed unless an error is injected, so service tests
// can focus on repository interactions.
type MockUnitOfWork struct {
	StreamerRepo *MockStreamerRepository
	MarketRepo   *MockMarketRepository
	BetRepo      *MockBetRepository
	RewardRepo   *MockRewardRepository

	BeginErr  error
	CommitErr error

	Began      bool
	Committed  bool
	RolledBack bool
}

// NewMockUnitOfWork creates a unit of work with fresh mock repositories
func NewMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		StreamerRepo: new(MockStreamerRepository),
		MarketRepo:   new(MockMarketRepository),
		BetRepo:      new(MockBetRepository),
		RewardRepo:   new(MockRewardRepository),
	}
}

func (u *MockUnitOfWork) Begin(ctx context.Context) error {
	if u.BeginErr != nil {
		return u.BeginErr
	}
	u.Began = true
	return nil
}

func (u *MockUnitOfWork) Commit() error {
	if u.CommitErr != nil {
		return u.CommitErr
	}
	u.Committed = true
	return nil
}

func (u *MockUnitOfWork) Rollback() error {
	if !u.Committed {
		u.RolledBack = true
	}
	return nil
}

func (u *MockUnitOfWork) StreamerRepository() interfaces.StreamerRepository {
	return u.StreamerRepo
}

func (u *MockUnitOfWork) MarketRepository() interfaces.MarketRepository {
	return u.MarketRepo
}

func (u *MockUnitOfWork) BetRepository() interfaces.BetRepository {
	return u.BetRepo
}

func (u *MockUnitOfWork) RewardRepository() interfaces.RewardRepository {
	return u.RewardRepo
}

// MockUnitOfWorkFactory hands out units of work from a fixed queue. Each
// Create call returns the next queued unit; the last one is reused once the
// queue runs dry, which keeps retry-loop tests simple.
type MockUnitOfWorkFactory struct {
	units []*MockUnitOfWork
	next  int
}

// NewMockUnitOfWorkFactory queues the given units of work
func NewMockUnitOfWorkFactory(units ...*MockUnitOfWork) *MockUnitOfWorkFactory {
	return &MockUnitOfWorkFactory{units: units}
}

func (f *MockUnitOfWorkFactory) Create() interfaces.UnitOfWork {
	if len(f.units) == 0 {
		panic("MockUnitOfWorkFactory: no units of work queued")
	}
	uow := f.units[f.next]
	if f.next < len(f.units)-1 {
		f.next++
	}
	return uow
}
