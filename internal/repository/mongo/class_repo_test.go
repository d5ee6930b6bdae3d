package mongo

import (
	"alcyxob/gym-manager/internal/repository"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestReserveSeat(t *testing.T) {
	mt := newMockT(t)
	ctx := context.Background()

	mt.Run("seat available", func(mt *mtest.T) {
		repo := &mongoClassRepository{collection: mt.Coll}
		id := primitive.NewObjectID()
		mt.AddMockResponses(updateReply(1, 1))

		require.NoError(mt, repo.ReserveSeat(ctx, id))

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "update", started.CommandName)
		assert.Equal(mt, id, started.Command.Lookup("updates", "0", "q", "_id").ObjectID())
		assert.Equal(mt, bson.TypeArray, started.Command.Lookup("updates", "0", "q", "$or").Type)
		assert.Equal(mt, int64(1), started.Command.Lookup("updates", "0", "u", "$inc", "seatsTaken").AsInt64())
		assert.Nil(mt, mt.GetStartedEvent(), "no count when the update matched")
	})

	mt.Run("class full", func(mt *mtest.T) {
		repo := &mongoClassRepository{collection: mt.Coll}
		mt.AddMockResponses(updateReply(0, 0), countReply(mt, 1))

		err := repo.ReserveSeat(ctx, primitive.NewObjectID())
		assert.ErrorIs(mt, err, repository.ErrCapacityReached)
	})

	mt.Run("class missing", func(mt *mtest.T) {
		repo := &mongoClassRepository{collection: mt.Coll}
		mt.AddMockResponses(updateReply(0, 0), countReply(mt, 0))

		err := repo.ReserveSeat(ctx, primitive.NewObjectID())
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("server error", func(mt *mtest.T) {
		repo := &mongoClassRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "bad value",
		}))

		err := repo.ReserveSeat(ctx, primitive.NewObjectID())
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, repository.ErrCapacityReached)
	})
}

func TestReleaseSeat(t *testing.T) {
	mt := newMockT(t)

	mt.Run("never below zero", func(mt *mtest.T) {
		repo := &mongoClassRepository{collection: mt.Coll}
		id := primitive.NewObjectID()
		mt.AddMockResponses(updateReply(0, 0))

		require.NoError(mt, repo.ReleaseSeat(context.Background(), id))

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		q := started.Command.Lookup("updates", "0", "q")
		assert.Equal(mt, id, q.Document().Lookup("_id").ObjectID())
		assert.Equal(mt, int64(0), q.Document().Lookup("seatsTaken", "$gt").AsInt64())
		assert.Equal(mt, int64(-1), started.Command.Lookup("updates", "0", "u", "$inc", "seatsTaken").AsInt64())
	})
}
