package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ytuqete/cryptoPulse/internal/domain"
	"github.com/ytuqete/cryptoPulse/internal/domain/entities"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestUserRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create", func(mt *mtest.T) {
		repo := NewUserRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		vu, err := entities.NewValidatedUser(entities.NewUser("a@b.c", "hash"))
		require.NoError(mt, err)

		u, err := repo.Create(context.Background(), vu)
		require.NoError(mt, err)
		assert.Equal(mt, "a@b.c", u.Email)
		assert.Equal(mt, []string{}, u.Watchlist)
	})

	mt.Run("create duplicate", func(mt *mtest.T) {
		repo := NewUserRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))

		vu, err := entities.NewValidatedUser(entities.NewUser("a@b.c", "hash"))
		require.NoError(mt, err)

		_, err = repo.Create(context.Background(), vu)
		assert.ErrorIs(mt, err, domain.ErrConflict)
	})

	mt.Run("find by email", func(mt *mtest.T) {
		repo := NewUserRepo(mt.DB)
		id := uuid.New()
		ns := mt.DB.Name() + "." + usersCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id.String()},
			{Key: "email", Value: "a@b.c"},
			{Key: "password", Value: "hash"},
			{Key: "watchlist", Value: bson.A{"bitcoin"}},
			{Key: "createdAt", Value: time.Now()},
			{Key: "updatedAt", Value: time.Now()},
		}))

		u, err := repo.FindByEmail(context.Background(), "a@b.c")
		require.NoError(mt, err)
		require.NotNil(mt, u)
		assert.Equal(mt, id, u.Id)
		assert.Equal(mt, []string{"bitcoin"}, u.Watchlist)
	})

	mt.Run("find missing", func(mt *mtest.T) {
		repo := NewUserRepo(mt.DB)
		ns := mt.DB.Name() + "." + usersCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		u, err := repo.FindByEmail(context.Background(), "nobody@b.c")
		assert.NoError(mt, err)
		assert.Nil(mt, u)
	})

	mt.Run("update watchlist of missing user", func(mt *mtest.T) {
		repo := NewUserRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := repo.UpdateWatchlist(context.Background(), uuid.New(), []string{"bitcoin"})
		assert.ErrorIs(mt, err, domain.ErrNotFound)
	})

	mt.Run("update watchlist", func(mt *mtest.T) {
		repo := NewUserRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		err := repo.UpdateWatchlist(context.Background(), uuid.New(), []string{"bitcoin"})
		assert.NoError(mt, err)
	})
}
