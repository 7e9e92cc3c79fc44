// Package memory provides an in-memory implementation of the unit of work
// and its repositories. It mirrors the transactional semantics of the
// Postgres layer closely enough to drive service and concurrency tests:
// a store-wide lock is held from Begin to Commit/Rollback, and Rollback
// restores the pre-transaction state.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/antony-akshay/stream-oracle/domain/entities"
	"github.com/antony-akshay/stream-oracle/domain/interfaces"
)

// Store is an in-memory database. It implements UnitOfWorkFactory so it can
// be dropped in wherever the pgx-backed factory is used.
type Store struct {
	mu sync.Mutex

	streamers map[int64]*entities.Streamer
	markets   map[int64]*entities.Market
	bets      map[int64]*entities.Bet
	rewards   map[int64]*entities.Reward

	// rewardsByBet enforces the one-reward-per-bet uniqueness constraint
	rewardsByBet map[int64]int64

	nextStreamerID int64
	nextMarketID   int64
	nextBetID      int64
	nextRewardID   int64

	now func() time.Time
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		streamers:    make(map[int64]*entities.Streamer),
		markets:      make(map[int64]*entities.Market),
		bets:         make(map[int64]*entities.Bet),
		rewards:      make(map[int64]*entities.Reward),
		rewardsByBet: make(map[int64]int64),
		now:          time.Now,
	}
}

// SetNow overrides the clock used to stamp created_at fields
func (s *Store) SetNow(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Create returns a unit of work bound to this store
func (s *Store) Create() interfaces.UnitOfWork {
	return &unitOfWork{store: s}
}

type snapshot struct {
	streamers    map[int64]*entities.Streamer
	markets      map[int64]*entities.Market
	bets         map[int64]*entities.Bet
	rewards      map[int64]*entities.Reward
	rewardsByBet map[int64]int64

	nextStreamerID int64
	nextMarketID   int64
	nextBetID      int64
	nextRewardID   int64
}

func (s *Store) takeSnapshot() *snapshot {
	snap := &snapshot{
		streamers:      make(map[int64]*entities.Streamer, len(s.streamers)),
		markets:        make(map[int64]*entities.Market, len(s.markets)),
		bets:           make(map[int64]*entities.Bet, len(s.bets)),
		rewards:        make(map[int64]*entities.Reward, len(s.rewards)),
		rewardsByBet:   make(map[int64]int64, len(s.rewardsByBet)),
		nextStreamerID: s.nextStreamerID,
		nextMarketID:   s.nextMarketID,
		nextBetID:      s.nextBetID,
		nextRewardID:   s.nextRewardID,
	}
	for id, streamer := range s.streamers {
		snap.streamers[id] = cloneStreamer(streamer)
	}
	for id, market := range s.markets {
		snap.markets[id] = cloneMarket(market)
	}
	for id, bet := range s.bets {
		snap.bets[id] = cloneBet(bet)
	}
	for id, reward := range s.rewards {
		snap.rewards[id] = cloneReward(reward)
	}
	for betID, rewardID := range s.rewardsByBet {
		snap.rewardsByBet[betID] = rewardID
	}
	return snap
}

func (s *Store) restore(snap *snapshot) {
	s.streamers = snap.streamers
	s.markets = snap.markets
	s.bets = snap.bets
	s.rewards = snap.rewards
	s.rewardsByBet = snap.rewardsByBet
	s.nextStreamerID = snap.nextStreamerID
	s.nextMarketID = snap.nextMarketID
	s.nextBetID = snap.nextBetID
	s.nextRewardID = snap.nextRewardID
}

func cloneStreamer(s *entities.Streamer) *entities.Streamer {
	clone := *s
	if s.TokenAddress != nil {
		addr := *s.TokenAddress
		clone.TokenAddress = &addr
	}
	return &clone
}

func cloneMarket(m *entities.Market) *entities.Market {
	clone := *m
	if m.ResolvedAt != nil {
		at := *m.ResolvedAt
		clone.ResolvedAt = &at
	}
	return &clone
}

func cloneBet(b *entities.Bet) *entities.Bet {
	clone := *b
	return &clone
}

func cloneReward(r *entities.Reward) *entities.Reward {
	clone := *r
	return &clone
}

// unitOfWork holds the store lock for its whole lifetime, so transactions
// serialize exactly like row-locked Postgres transactions on a hot market.
type unitOfWork struct {
	store  *Store
	active bool
	snap   *snapshot
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	u.store.mu.Lock()
	u.snap = u.store.takeSnapshot()
	u.active = true
	return nil
}

func (u *unitOfWork) Commit() error {
	if !u.active {
		return nil
	}
	u.active = false
	u.snap = nil
	u.store.mu.Unlock()
	return nil
}

func (u *unitOfWork) Rollback() error {
	if !u.active {
		return nil
	}
	u.store.restore(u.snap)
	u.active = false
	u.snap = nil
	u.store.mu.Unlock()
	return nil
}

func (u *unitOfWork) StreamerRepository() interfaces.StreamerRepository {
	return &streamerRepository{store: u.store}
}

func (u *unitOfWork) MarketRepository() interfaces.MarketRepository {
	return &marketRepository{store: u.store}
}

func (u *unitOfWork) BetRepository() interfaces.BetRepository {
	return &betRepository{store: u.store}
}

func (u *unitOfWork) RewardRepository() interfaces.RewardRepository {
	return &rewardRepository{store: u.store}
}

type streamerRepository struct {
	store *Store
}

func (r *streamerRepository) Create(ctx context.Context, streamer *entities.Streamer) error {
	r.store.nextStreamerID++
	streamer.ID = r.store.nextStreamerID
	streamer.CreatedAt = r.store.now()
	r.store.streamers[streamer.ID] = cloneStreamer(streamer)
	return nil
}

func (r *streamerRepository) GetByID(ctx context.Context, id int64) (*entities.Streamer, error) {
	streamer, ok := r.store.streamers[id]
	if !ok {
		return nil, nil
	}
	return cloneStreamer(streamer), nil
}

func (r *streamerRepository) GetAll(ctx context.Context) ([]*entities.Streamer, error) {
	streamers := make([]*entities.Streamer, 0, len(r.store.streamers))
	for _, streamer := range r.store.streamers {
		streamers = append(streamers, cloneStreamer(streamer))
	}
	sort.Slice(streamers, func(i, j int) bool { return streamers[i].ID < streamers[j].ID })
	return streamers, nil
}

func (r *streamerRepository) SetActive(ctx context.Context, id int64, active bool) (bool, error) {
	streamer, ok := r.store.streamers[id]
	if !ok {
		return false, nil
	}
	streamer.IsActive = active
	return true, nil
}

type marketRepository struct {
	store *Store
}

func (r *marketRepository) Create(ctx context.Context, market *entities.Market) error {
	r.store.nextMarketID++
	market.ID = r.store.nextMarketID
	market.CreatedAt = r.store.now()
	r.store.markets[market.ID] = cloneMarket(market)
	return nil
}

func (r *marketRepository) GetByID(ctx context.Context, id int64) (*entities.Market, error) {
	market, ok := r.store.markets[id]
	if !ok {
		return nil, nil
	}
	return cloneMarket(market), nil
}

func (r *marketRepository) List(ctx context.Context, filter interfaces.MarketFilter) ([]*entities.Market, error) {
	var markets []*entities.Market
	for _, market := range r.store.markets {
		if filter.Status != nil && market.Status != *filter.Status {
			continue
		}
		if filter.StreamerID != nil && market.StreamerID != *filter.StreamerID {
			continue
		}
		markets = append(markets, cloneMarket(market))
	}
	sort.Slice(markets, func(i, j int) bool { return markets[i].ID > markets[j].ID })
	return markets, nil
}

func (r *marketRepository) ApplyBetToPool(ctx context.Context, marketID int64, prediction entities.Outcome, amount int64) (bool, error) {
	market, ok := r.store.markets[marketID]
	if !ok || market.Status != entities.MarketStatusOpen {
		return false, nil
	}
	market.ApplyBet(prediction, amount)
	return true, nil
}

func (r *marketRepository) MarkResolved(ctx context.Context, marketID int64, result entities.Outcome, resolvedAt time.Time) (bool, error) {
	market, ok := r.store.markets[marketID]
	if !ok || market.Status != entities.MarketStatusOpen {
		return false, nil
	}
	market.Status = entities.MarketStatusResolved
	market.Result = result
	at := resolvedAt
	market.ResolvedAt = &at
	return true, nil
}

type betRepository struct {
	store *Store
}

func (r *betRepository) Create(ctx context.Context, bet *entities.Bet) error {
	r.store.nextBetID++
	bet.ID = r.store.nextBetID
	bet.CreatedAt = r.store.now()
	r.store.bets[bet.ID] = cloneBet(bet)
	return nil
}

func (r *betRepository) GetByMarket(ctx context.Context, marketID int64) ([]*entities.Bet, error) {
	var bets []*entities.Bet
	for _, bet := range r.store.bets {
		if bet.MarketID == marketID {
			bets = append(bets, cloneBet(bet))
		}
	}
	sort.Slice(bets, func(i, j int) bool { return bets[i].ID < bets[j].ID })
	return bets, nil
}

func (r *betRepository) GetByUser(ctx context.Context, userID string, limit int) ([]*entities.Bet, error) {
	var bets []*entities.Bet
	for _, bet := range r.store.bets {
		if bet.UserID == userID {
			bets = append(bets, cloneBet(bet))
		}
	}
	sort.Slice(bets, func(i, j int) bool { return bets[i].ID > bets[j].ID })
	if limit > 0 && len(bets) > limit {
		bets = bets[:limit]
	}
	return bets, nil
}

func (r *betRepository) GetUserAggregates(ctx context.Context) ([]*entities.UserBetAggregate, error) {
	byUser := make(map[string]*entities.UserBetAggregate)
	for _, bet := range r.store.bets {
		agg, ok := byUser[bet.UserID]
		if !ok {
			agg = &entities.UserBetAggregate{UserID: bet.UserID, FirstBetAt: bet.CreatedAt}
			byUser[bet.UserID] = agg
		}
		agg.TotalBets++
		if bet.CreatedAt.Before(agg.FirstBetAt) {
			agg.FirstBetAt = bet.CreatedAt
		}
	}
	aggregates := make([]*entities.UserBetAggregate, 0, len(byUser))
	for _, agg := range byUser {
		aggregates = append(aggregates, agg)
	}
	sort.Slice(aggregates, func(i, j int) bool { return aggregates[i].UserID < aggregates[j].UserID })
	return aggregates, nil
}

type rewardRepository struct {
	store *Store
}

func (r *rewardRepository) CreateIfAbsent(ctx context.Context, reward *entities.Reward) (bool, error) {
	if _, exists := r.store.rewardsByBet[reward.BetID]; exists {
		return false, nil
	}
	r.store.nextRewardID++
	reward.ID = r.store.nextRewardID
	reward.CreatedAt = r.store.now()
	r.store.rewards[reward.ID] = cloneReward(reward)
	r.store.rewardsByBet[reward.BetID] = reward.ID
	return true, nil
}

func (r *rewardRepository) GetByMarket(ctx context.Context, marketID int64) ([]*entities.Reward, error) {
	var rewards []*entities.Reward
	for _, reward := range r.store.rewards {
		if reward.MarketID == marketID {
			rewards = append(rewards, cloneReward(reward))
		}
	}
	sort.Slice(rewards, func(i, j int) bool { return rewards[i].BetID < rewards[j].BetID })
	return rewards, nil
}

func (r *rewardRepository) GetByUser(ctx context.Context, userID string) ([]*entities.Reward, error) {
	var rewards []*entities.Reward
	for _, reward := range r.store.rewards {
		if reward.UserID == userID {
			rewards = append(rewards, cloneReward(reward))
		}
	}
	sort.Slice(rewards, func(i, j int) bool { return rewards[i].ID > rewards[j].ID })
	return rewards, nil
}

func (r *rewardRepository) GetUserAggregates(ctx context.Context) ([]*entities.UserRewardAggregate, error) {
	byUser := make(map[string]*entities.UserRewardAggregate)
	for _, reward := range r.store.rewards {
		agg, ok := byUser[reward.UserID]
		if !ok {
			agg = &entities.UserRewardAggregate{UserID: reward.UserID}
			byUser[reward.UserID] = agg
		}
		agg.TotalWinnings += reward.Amount
		agg.RewardedBets++
	}
	aggregates := make([]*entities.UserRewardAggregate, 0, len(byUser))
	for _, agg := range byUser {
		aggregates = append(aggregates, agg)
	}
	sort.Slice(aggregates, func(i, j int) bool { return aggregates[i].UserID < aggregates[j].UserID })
	return aggregates, nil
}
