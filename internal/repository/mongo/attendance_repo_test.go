package mongo

import (
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/repository"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestAttendanceCreate(t *testing.T) {
	mt := newMockT(t)
	ctx := context.Background()

	mt.Run("open visit", func(mt *mtest.T) {
		repo := &mongoAttendanceRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		a := &domain.Attendance{MemberID: primitive.NewObjectID(), EnteredAt: time.Now().UTC()}
		_, err := repo.Create(ctx, a)
		require.NoError(mt, err)
		assert.True(mt, a.Open)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.True(mt, started.Command.Lookup("documents", "0", "open").Boolean())
	})

	mt.Run("member already inside", func(mt *mtest.T) {
		repo := &mongoAttendanceRepository{collection: mt.Coll}
		mt.AddMockResponses(duplicateKeyReply())

		_, err := repo.Create(ctx, &domain.Attendance{MemberID: primitive.NewObjectID(), EnteredAt: time.Now().UTC()})
		assert.ErrorIs(mt, err, repository.ErrDuplicate)
	})
}

func TestAttendanceClose(t *testing.T) {
	mt := newMockT(t)
	ctx := context.Background()
	exited := time.Date(2026, 3, 16, 0, 10, 0, 0, time.UTC)
	minutes := 20

	mt.Run("open visit", func(mt *mtest.T) {
		repo := &mongoAttendanceRepository{collection: mt.Coll}
		a := &domain.Attendance{ID: primitive.NewObjectID(), ExitedAt: &exited, DurationMinutes: &minutes}
		mt.AddMockResponses(updateReply(1, 1))

		require.NoError(mt, repo.Close(ctx, a))

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, a.ID, started.Command.Lookup("updates", "0", "q", "_id").ObjectID())
		assert.True(mt, started.Command.Lookup("updates", "0", "q", "open").Boolean())
		assert.False(mt, started.Command.Lookup("updates", "0", "u", "$set", "open").Boolean())
	})

	mt.Run("already closed", func(mt *mtest.T) {
		repo := &mongoAttendanceRepository{collection: mt.Coll}
		mt.AddMockResponses(updateReply(0, 0))

		err := repo.Close(ctx, &domain.Attendance{ID: primitive.NewObjectID(), ExitedAt: &exited})
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})
}

func TestFindOpenByMember_NoneOpen(t *testing.T) {
	mt := newMockT(t)

	mt.Run("empty", func(mt *mtest.T) {
		repo := &mongoAttendanceRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		_, err := repo.FindOpenByMember(context.Background(), primitive.NewObjectID())
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})
}
