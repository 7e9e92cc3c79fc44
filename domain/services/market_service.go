package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/antony-akshay/stream-oracle/config"
	"github.com/antony-akshay/stream-oracle/domain"
	"github.com/antony-akshay/stream-oracle/domain/entities"
	"github.com/antony-akshay/stream-oracle/domain/events"
	"github.com/antony-akshay/stream-oracle/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

type marketService struct {
	config         *config.Config
	uowFactory     interfaces.UnitOfWorkFactory
	eventPublisher interfaces.EventPublisher
	now            func() time.Time
}

// NewMarketService creates a new market lifecycle service
func NewMarketService(uowFactory interfaces.UnitOfWorkFactory, eventPublisher interfaces.EventPublisher) interfaces.MarketService {
	return &marketService{
		config:         config.Get(),
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		now:            time.Now,
	}
}

// CreateMarket opens a new market against an active streamer
func (s *marketService) CreateMarket(ctx context.Context, streamerID int64, title, description string, category entities.MarketCategory, durationSeconds int64) (*entities.Market, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: market title cannot be empty", domain.ErrInvalidArgument)
	}
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("%w: market description cannot be empty", domain.ErrInvalidArgument)
	}
	if !category.IsValid() {
		return nil, fmt.Errorf("%w: unsupported category %q", domain.ErrInvalidArgument, category)
	}
	if durationSeconds <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive, got %d", domain.ErrInvalidArgument, durationSeconds)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	streamer, err := uow.StreamerRepository().GetByID(ctx, streamerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get streamer: %w", err)
	}
	if streamer == nil {
		return nil, fmt.Errorf("%w: streamer %d", domain.ErrNotFound, streamerID)
	}
	if !streamer.CanHostMarkets() {
		return nil, fmt.Errorf("%w: streamer %d is inactive", domain.ErrForbidden, streamerID)
	}

	market := &entities.Market{
		StreamerID:      streamerID,
		Title:           title,
		Description:     description,
		Category:        category,
		DurationSeconds: durationSeconds,
		Status:          entities.MarketStatusOpen,
		Result:          entities.OutcomeNone,
	}

	if err := uow.MarketRepository().Create(ctx, market); err != nil {
		return nil, fmt.Errorf("failed to create market: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit market: %w", err)
	}

	if err := s.eventPublisher.Publish(events.MarketCreatedEvent{
		MarketID:   market.ID,
		StreamerID: market.StreamerID,
		Title:      market.Title,
	}); err != nil {
		log.WithError(err).Error("Failed to publish market created event")
	}

	return market, nil
}

// GetMarket retrieves a market by ID
func (s *marketService) GetMarket(ctx context.Context, id int64) (*entities.Market, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	market, err := uow.MarketRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get market: %w", err)
	}
	if market == nil {
		return nil, fmt.Errorf("%w: market %d", domain.ErrNotFound, id)
	}

	return market, nil
}

// ListMarkets returns markets matching the query, newest first. The derived
// "closed" status selects open markets whose betting window has expired.
func (s *marketService) ListMarkets(ctx context.Context, query interfaces.MarketQuery) ([]*entities.Market, error) {
	filter := interfaces.MarketFilter{StreamerID: query.StreamerID}

	wantClosed := false
	if query.Status != nil {
		switch *query.Status {
		case entities.MarketStatusOpen, entities.MarketStatusClosed:
			// Both map to the persisted "open" status; closed is time-derived.
			open := entities.MarketStatusOpen
			filter.Status = &open
			wantClosed = *query.Status == entities.MarketStatusClosed
		case entities.MarketStatusResolved:
			resolved := entities.MarketStatusResolved
			filter.Status = &resolved
		default:
			return nil, fmt.Errorf("%w: unknown market status %q", domain.ErrInvalidArgument, *query.Status)
		}
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	markets, err := uow.MarketRepository().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list markets: %w", err)
	}

	if query.Status != nil && (*query.Status == entities.MarketStatusOpen || *query.Status == entities.MarketStatusClosed) {
		now := s.now()
		filtered := markets[:0]
		for _, m := range markets {
			if m.IsExpired(now) == wantClosed {
				filtered = append(filtered, m)
			}
		}
		markets = filtered
	}

	return markets, nil
}

// Resolve fixes the market's final outcome via a compare-and-set on its
// status. Exactly one concurrent caller wins; the rest see ErrAlreadyResolved.
func (s *marketService) Resolve(ctx context.Context, marketID int64, outcome entities.Outcome, resolverID string) (*entities.Market, error) {
	if !outcome.IsPrediction() {
		return nil, fmt.Errorf("%w: outcome must be yes or no, got %q", domain.ErrInvalidArgument, outcome)
	}
	if !s.isResolver(resolverID) {
		return nil, fmt.Errorf("%w: user %s is not allowed to resolve markets", domain.ErrForbidden, resolverID)
	}

	now := s.now()

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
	if market.IsResolved() {
		return nil, fmt.Errorf("%w: market %d", domain.ErrAlreadyResolved, marketID)
	}
	if !market.CanResolve(now) {
		return nil, fmt.Errorf("%w: market %d is still accepting bets until %s", domain.ErrInvalidState, marketID, market.Deadline().UTC())
	}

	won, err := uow.MarketRepository().MarkResolved(ctx, marketID, outcome, now)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve market: %w", err)
	}
	if !won {
		// Another resolver committed between our read and the CAS.
		return nil, fmt.Errorf("%w: market %d", domain.ErrAlreadyResolved, marketID)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit resolution: %w", err)
	}

	market.Status = entities.MarketStatusResolved
	market.Result = outcome
	market.ResolvedAt = &now

	if err := s.eventPublisher.Publish(events.MarketResolvedEvent{
		MarketID:   market.ID,
		Result:     outcome,
		ResolverID: resolverID,
	}); err != nil {
		log.WithError(err).Error("Failed to publish market resolved event")
	}

	return market, nil
}

// isResolver checks the resolver allowlist. An empty allowlist keeps the
// permissive reference policy where any authenticated caller may resolve.
func (s *marketService) isResolver(userID string) bool {
	if len(s.config.ResolverUserIDs) == 0 {
		return true
	}
	for _, id := range s.config.ResolverUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}
