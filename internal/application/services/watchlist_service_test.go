package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ytuqete/cryptoPulse/internal/application/command"
	"github.com/ytuqete/cryptoPulse/internal/domain"
	"github.com/ytuqete/cryptoPulse/internal/domain/entities"
	"github.com/ytuqete/cryptoPulse/internal/infrastructure"
)

func newWatchlistFixture(t *testing.T) (*WatchlistService, *recordingPublisher) {
	t.Helper()
	repo := newUserRepo(t)
	vu, err := entities.NewValidatedUser(entities.NewUser("a@b.c", "hash"))
	require.NoError(t, err)
	_, err = repo.Create(context.Background(), vu)
	require.NoError(t, err)

	pub := &recordingPublisher{}
	return NewWatchlistService(repo, pub, discardLogger()), pub
}

func TestWatchlistGet(t *testing.T) {
	svc, _ := newWatchlistFixture(t)

	res, err := svc.Get(context.Background(), "a@b.c")
	require.NoError(t, err)
	assert.Equal(t, []string{}, res.Watchlist)

	res, err = svc.Get(context.Background(), "nobody@b.c")
	require.NoError(t, err)
	assert.Equal(t, []string{}, res.Watchlist)
}

func TestWatchlistToggleRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, pub := newWatchlistFixture(t)

	res, err := svc.Toggle(ctx, &command.ToggleWatchCommand{Email: "a@b.c", CoinID: "bitcoin"})
	require.NoError(t, err)
	assert.True(t, res.Watching)
	assert.Equal(t, []string{"bitcoin"}, res.Watchlist)

	res, err = svc.Toggle(ctx, &command.ToggleWatchCommand{Email: "A@B.C", CoinID: "ethereum"})
	require.NoError(t, err)
	assert.Equal(t, []string{"bitcoin", "ethereum"}, res.Watchlist)

	res, err = svc.Toggle(ctx, &command.ToggleWatchCommand{Email: "a@b.c", CoinID: "bitcoin"})
	require.NoError(t, err)
	assert.False(t, res.Watching)
	assert.Equal(t, []string{"ethereum"}, res.Watchlist)

	got, err := svc.Get(ctx, "a@b.c")
	require.NoError(t, err)
	assert.Equal(t, []string{"ethereum"}, got.Watchlist)

	assert.Equal(t, []string{
		infrastructure.SubjectWatchlistToggled,
		infrastructure.SubjectWatchlistToggled,
		infrastructure.SubjectWatchlistToggled,
	}, pub.subjects())
}

func TestWatchlistToggleErrors(t *testing.T) {
	ctx := context.Background()
	svc, _ := newWatchlistFixture(t)

	_, err := svc.Toggle(ctx, &command.ToggleWatchCommand{Email: "nobody@b.c", CoinID: "bitcoin"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Toggle(ctx, &command.ToggleWatchCommand{Email: "a@b.c", CoinID: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Toggle(ctx, &command.ToggleWatchCommand{CoinID: "bitcoin"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestWatchlistAuthorize(t *testing.T) {
	ctx := context.Background()
	svc, _ := newWatchlistFixture(t)

	vu, err := entities.NewValidatedUser(entities.NewUser("other@b.c", "hash"))
	require.NoError(t, err)
	other, err := svc.userRepo.Create(ctx, vu)
	require.NoError(t, err)

	owner, err := svc.userRepo.FindByEmail(ctx, "a@b.c")
	require.NoError(t, err)
	require.NotNil(t, owner)

	assert.NoError(t, svc.Authorize(ctx, owner.Id, "A@B.C"))
	assert.ErrorIs(t, svc.Authorize(ctx, other.Id, "a@b.c"), domain.ErrForbidden)
	assert.ErrorIs(t, svc.Authorize(ctx, owner.Id, "nobody@b.c"), domain.ErrForbidden)
}
