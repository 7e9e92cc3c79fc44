package services

import (
	"context"
	"fmt"
	"time"

	"github.com/antony-akshay/stream-oracle/config"
	"github.com/antony-akshay/stream-oracle/domain"
	"github.com/antony-akshay/stream-oracle/domain/entities"
	"github.com/antony-akshay/stream-oracle/domain/events"
	"github.com/antony-akshay/stream-oracle/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

type bettingService struct {
	config         *config.Config
	uowFactory     interfaces.UnitOfWorkFactory
	eventPublisher interfaces.EventPublisher
	now            func() time.Time
}

// NewBettingService creates a new bet admission service
func NewBettingService(uowFactory interfaces.UnitOfWorkFactory, eventPublisher interfaces.EventPublisher) interfaces.BettingService {
	return &bettingService{
		config:         config.Get(),
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		now:            time.Now,
	}
}

// PlaceBet validates and records a stake against an open market. The bet row
// and the market's pool counters commit in one transaction, so no reader ever
// observes an inconsistent pool/bet pair.
func (s *bettingService) PlaceBet(ctx context.Context, marketID int64, userID string, prediction entities.Outcome, amount int64) (*entities.Bet, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID cannot be empty", domain.ErrInvalidArgument)
	}
	if !prediction.IsPrediction() {
		return nil, fmt.Errorf("%w: prediction must be yes or no, got %q", domain.ErrInvalidArgument, prediction)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: bet amount must be positive, got %d", domain.ErrInvalidArgument, amount)
	}
	if s.config.MaxBetAmount > 0 && amount > s.config.MaxBetAmount {
		return nil, fmt.Errorf("%w: bet amount %d exceeds maximum of %d", domain.ErrInvalidArgument, amount, s.config.MaxBetAmount)
	}

	var bet *entities.Bet
	err := withConflictRetry("place bet", func() error {
		placed, err := s.placeBet(ctx, marketID, userID, prediction, amount)
		if err != nil {
			return err
		}
		bet = placed
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.eventPublisher.Publish(events.BetPlacedEvent{
		BetID:      bet.ID,
		MarketID:   bet.MarketID,
		UserID:     bet.UserID,
		Prediction: bet.Prediction,
		Amount:     bet.Amount,
	}); err != nil {
		log.WithError(err).Error("Failed to publish bet placed event")
	}

	return bet, nil
}

func (s *bettingService) placeBet(ctx context.Context, marketID int64, userID string, prediction entities.Outcome, amount int64) (*entities.Bet, error) {
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
	if !market.CanAcceptBets(now) {
		if market.IsResolved() {
			return nil, fmt.Errorf("%w: market %d is resolved", domain.ErrInvalidState, marketID)
		}
		return nil, fmt.Errorf("%w: betting window for market %d closed at %s", domain.ErrInvalidState, marketID, market.Deadline().UTC())
	}

	bet := &entities.Bet{
		MarketID:   marketID,
		UserID:     userID,
		Prediction: prediction,
		Amount:     amount,
	}
	if err := uow.BetRepository().Create(ctx, bet); err != nil {
		return nil, fmt.Errorf("failed to create bet: %w", err)
	}

	// Conditional on the market still being open: a resolve that commits
	// between our read and here makes this a no-op and the bet is rejected.
	applied, err := uow.MarketRepository().ApplyBetToPool(ctx, marketID, prediction, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to update pool counters: %w", err)
	}
	if !applied {
		return nil, fmt.Errorf("%w: market %d resolved while placing bet", domain.ErrInvalidState, marketID)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit bet: %w", err)
	}

	return bet, nil
}

// ListUserBets returns a user's betting history, newest first
func (s *bettingService) ListUserBets(ctx context.Context, userID string, limit int) ([]*entities.Bet, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bets, err := uow.BetRepository().GetByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list bets: %w", err)
	}

	return bets, nil
}
