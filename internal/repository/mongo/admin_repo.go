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

const administratorCollectionName = "administrators"

type mongoAdministratorRepository struct {
	collection *mongo.Collection
}

// NewMongoAdministratorRepository creates an administrator repository.
func NewMongoAdministratorRepository(db *mongo.Database) repository.AdministratorRepository {
	return &mongoAdministratorRepository{
		collection: db.Collection(administratorCollectionName),
	}
}

func (r *mongoAdministratorRepository) Create(ctx context.Context, admin *domain.Administrator) (primitive.ObjectID, error) {
	admin.ID = primitive.NewObjectID()
	if admin.CreatedAt.IsZero() {
		admin.CreatedAt = time.Now().UTC()
	}
	if _, err := r.collection.InsertOne(ctx, admin); err != nil {
		return primitive.NilObjectID, mapWriteError(err)
	}
	return admin.ID, nil
}

func (r *mongoAdministratorRepository) GetByUsername(ctx context.Context, username string) (*domain.Administrator, error) {
	var admin domain.Administrator
	if err := findOne(ctx, r.collection, bson.M{"username": username}, &admin); err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *mongoAdministratorRepository) GetByEmail(ctx context.Context, email string) (*domain.Administrator, error) {
	var admin domain.Administrator
	if err := findOne(ctx, r.collection, bson.M{"email": email}, &admin); err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *mongoAdministratorRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

// EnsureAdministratorIndexes makes username and email unique.
func EnsureAdministratorIndexes(ctx context.Context, collection *mongo.Collection) error {
	return createIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
}
