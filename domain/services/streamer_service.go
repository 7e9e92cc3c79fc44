package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/antony-akshay/stream-oracle/domain"
	"github.com/antony-akshay/stream-oracle/domain/entities"
	"github.com/antony-akshay/stream-oracle/domain/events"
	"github.com/antony-akshay/stream-oracle/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

type streamerService struct {
	uowFactory     interfaces.UnitOfWorkFactory
	eventPublisher interfaces.EventPublisher
}

// NewStreamerService creates a new streamer service
func NewStreamerService(uowFactory interfaces.UnitOfWorkFactory, eventPublisher interfaces.EventPublisher) interfaces.StreamerService {
	return &streamerService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
	}
}

// CreateStreamer registers a new streamer
func (s *streamerService) CreateStreamer(ctx context.Context, name, description, tokenAddress string) (*entities.Streamer, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: streamer name cannot be empty", domain.ErrInvalidArgument)
	}
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("%w: streamer description cannot be empty", domain.ErrInvalidArgument)
	}

	streamer := &entities.Streamer{
		Name:        name,
		Description: description,
		IsActive:    true,
	}
	if tokenAddress != "" {
		streamer.TokenAddress = &tokenAddress
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.StreamerRepository().Create(ctx, streamer); err != nil {
		return nil, fmt.Errorf("failed to create streamer: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit streamer: %w", err)
	}

	if err := s.eventPublisher.Publish(events.StreamerCreatedEvent{
		StreamerID: streamer.ID,
		Name:       streamer.Name,
	}); err != nil {
		log.WithError(err).Error("Failed to publish streamer created event")
	}

	return streamer, nil
}

// DeactivateStreamer flags a streamer as inactive
func (s *streamerService) DeactivateStreamer(ctx context.Context, id int64) (*entities.Streamer, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	found, err := uow.StreamerRepository().SetActive(ctx, id, false)
	if err != nil {
		return nil, fmt.Errorf("failed to deactivate streamer: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: streamer %d", domain.ErrNotFound, id)
	}

	streamer, err := uow.StreamerRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload streamer: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit deactivation: %w", err)
	}

	return streamer, nil
}

// GetStreamer retrieves a streamer by ID
func (s *streamerService) GetStreamer(ctx context.Context, id int64) (*entities.Streamer, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	streamer, err := uow.StreamerRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get streamer: %w", err)
	}
	if streamer == nil {
		return nil, fmt.Errorf("%w: streamer %d", domain.ErrNotFound, id)
	}

	return streamer, nil
}

// ListStreamers returns all streamers
func (s *streamerService) ListStreamers(ctx context.Context) ([]*entities.Streamer, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	streamers, err := uow.StreamerRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list streamers: %w", err)
	}

	return streamers, nil
}
