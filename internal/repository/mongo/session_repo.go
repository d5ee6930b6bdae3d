package mongo

import (
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/repository"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const sessionCollectionName = "completed_sessions"

type mongoSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoSessionRepository creates a completed session repository.
func NewMongoSessionRepository(db *mongo.Database) repository.SessionRepository {
	return &mongoSessionRepository{
		collection: db.Collection(sessionCollectionName),
	}
}

func (r *mongoSessionRepository) Create(ctx context.Context, session *domain.CompletedSession) (primitive.ObjectID, error) {
	session.ID = primitive.NewObjectID()
	session.CreatedAt = time.Now().UTC()
	if _, err := r.collection.InsertOne(ctx, session); err != nil {
		return primitive.NilObjectID, err
	}
	return session.ID, nil
}

func (r *mongoSessionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.CompletedSession, error) {
	var session domain.CompletedSession
	if err := findOne(ctx, r.collection, bson.M{"_id": id}, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *mongoSessionRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoSessionRepository) ListByMember(ctx context.Context, memberID primitive.ObjectID, limit int) ([]domain.CompletedSession, error) {
	sessions := []domain.CompletedSession{}
	opts := options.Find().SetSort(bson.D{{Key: "completedOn", Value: -1}, {Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	if err := findAll(ctx, r.collection, bson.M{"memberId": memberID}, &sessions, opts); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *mongoSessionRepository) CountByMemberBetween(ctx context.Context, memberID primitive.ObjectID, from, to time.Time) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"memberId": memberID, "completedOn": bson.M{"$gte": from, "$lt": to}})
}

func (r *mongoSessionRepository) CountBetween(ctx context.Context, from, to time.Time) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"completedOn": bson.M{"$gte": from, "$lt": to}})
}

// EnsureSessionIndexes indexes sessions by member and date.
func EnsureSessionIndexes(ctx context.Context, collection *mongo.Collection) error {
	return createIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "memberId", Value: 1}, {Key: "completedOn", Value: -1}}},
		{Keys: bson.D{{Key: "completedOn", Value: 1}}},
	})
}
