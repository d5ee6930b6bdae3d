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

const planCollectionName = "plans"

type mongoPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoPlanRepository creates a membership plan repository.
func NewMongoPlanRepository(db *mongo.Database) repository.PlanRepository {
	return &mongoPlanRepository{
		collection: db.Collection(planCollectionName),
	}
}

func (r *mongoPlanRepository) Create(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error) {
	plan.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now
	if _, err := r.collection.InsertOne(ctx, plan); err != nil {
		return primitive.NilObjectID, mapWriteError(err)
	}
	return plan.ID, nil
}

func (r *mongoPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error) {
	var plan domain.Plan
	if err := findOne(ctx, r.collection, bson.M{"_id": id}, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// GetByName matches the exact stored name.
func (r *mongoPlanRepository) GetByName(ctx context.Context, name string) (*domain.Plan, error) {
	var plan domain.Plan
	if err := findOne(ctx, r.collection, bson.M{"name": name}, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *mongoPlanRepository) Update(ctx context.Context, plan *domain.Plan) error {
	plan.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"name":             plan.Name,
		"price":            plan.Price,
		"description":      plan.Description,
		"classAccess":      plan.ClassAccess,
		"personalTraining": plan.PersonalTraining,
		"active":           plan.Active,
		"updatedAt":        plan.UpdatedAt,
	}}
	return updateOne(ctx, r.collection, bson.M{"_id": plan.ID}, update)
}

func (r *mongoPlanRepository) list(ctx context.Context, filter bson.M) ([]domain.Plan, error) {
	plans := []domain.Plan{}
	opts := options.Find().SetSort(bson.D{{Key: "price", Value: 1}})
	if err := findAll(ctx, r.collection, filter, &plans, opts); err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *mongoPlanRepository) List(ctx context.Context) ([]domain.Plan, error) {
	return r.list(ctx, bson.M{})
}

func (r *mongoPlanRepository) ListActive(ctx context.Context) ([]domain.Plan, error) {
	return r.list(ctx, bson.M{"active": true})
}

func (r *mongoPlanRepository) ListWithClassAccess(ctx context.Context) ([]domain.Plan, error) {
	return r.list(ctx, bson.M{"active": true, "classAccess": true})
}

func (r *mongoPlanRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

// EnsurePlanIndexes makes plan names unique.
func EnsurePlanIndexes(ctx context.Context, collection *mongo.Collection) error {
	return createIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "active", Value: 1}}},
	})
}
