package services

import (
	"context"
	"testing"

	"github.com/antony-akshay/stream-oracle/domain"
	"github.com/antony-akshay/stream-oracle/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateStreamer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	streamer, err := f.streamers.CreateStreamer(ctx, "ninja", "FPS speedruns", "So1anaAddr111")
	require.NoError(t, err)
	assert.NotZero(t, streamer.ID)
	assert.True(t, streamer.IsActive)
	require.NotNil(t, streamer.TokenAddress)
	assert.Equal(t, "So1anaAddr111", *streamer.TokenAddress)

	published := f.publisher.published()
	require.Len(t, published, 1)
	created, ok := published[0].(events.StreamerCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, streamer.ID, created.StreamerID)
	assert.Equal(t, "ninja", created.Name)
}

func TestCreateStreamerWithoutToken(t *testing.T) {
	f := newFixture(t)

	streamer, err := f.streamers.CreateStreamer(context.Background(), "pokimane", "Variety", "")
	require.NoError(t, err)
	assert.Nil(t, streamer.TokenAddress)
}

func TestCreateStreamerValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.streamers.CreateStreamer(ctx, "   ", "desc", "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = f.streamers.CreateStreamer(ctx, "name", "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestDeactivateStreamer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	streamer := f.createStreamer(t)

	deactivated, err := f.streamers.DeactivateStreamer(ctx, streamer.ID)
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)

	_, err = f.streamers.DeactivateStreamer(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetStreamer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	streamer := f.createStreamer(t)

	got, err := f.streamers.GetStreamer(ctx, streamer.ID)
	require.NoError(t, err)
	assert.Equal(t, streamer.Name, got.Name)

	_, err = f.streamers.GetStreamer(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListStreamers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.createStreamer(t)
	second, err := f.streamers.CreateStreamer(ctx, "pokimane", "Variety", "")
	require.NoError(t, err)

	streamers, err := f.streamers.ListStreamers(ctx)
	require.NoError(t, err)
	require.Len(t, streamers, 2)
	assert.Equal(t, first.ID, streamers[0].ID)
	assert.Equal(t, second.ID, streamers[1].ID)
}
