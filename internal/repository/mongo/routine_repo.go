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

const (
	routineCollectionName  = "routines"
	exerciseCollectionName = "routine_exercises"
)

// mongoRoutineRepository keeps the routine catalog and exercises in two collections.
type mongoRoutineRepository struct {
	routines  *mongo.Collection
	exercises *mongo.Collection
}

// NewMongoRoutineRepository creates a routine catalog repository.
func NewMongoRoutineRepository(db *mongo.Database) repository.RoutineRepository {
	return &mongoRoutineRepository{
		routines:  db.Collection(routineCollectionName),
		exercises: db.Collection(exerciseCollectionName),
	}
}

func (r *mongoRoutineRepository) Create(ctx context.Context, routine *domain.PredefinedRoutine) (primitive.ObjectID, error) {
	routine.ID = primitive.NewObjectID()
	routine.CreatedAt = time.Now().UTC()
	if _, err := r.routines.InsertOne(ctx, routine); err != nil {
		return primitive.NilObjectID, mapWriteError(err)
	}
	return routine.ID, nil
}

func (r *mongoRoutineRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PredefinedRoutine, error) {
	var routine domain.PredefinedRoutine
	if err := findOne(ctx, r.routines, bson.M{"_id": id}, &routine); err != nil {
		return nil, err
	}
	return &routine, nil
}

// FindActive returns the oldest active routine for an objective and level.
func (r *mongoRoutineRepository) FindActive(ctx context.Context, objective, level string) (*domain.PredefinedRoutine, error) {
	var routine domain.PredefinedRoutine
	filter := bson.M{"objective": objective, "level": level, "active": true}
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	if err := findOne(ctx, r.routines, filter, &routine, opts); err != nil {
		return nil, err
	}
	return &routine, nil
}

func (r *mongoRoutineRepository) list(ctx context.Context, filter bson.M) ([]domain.PredefinedRoutine, error) {
	routines := []domain.PredefinedRoutine{}
	opts := options.Find().SetSort(bson.D{{Key: "objective", Value: 1}, {Key: "level", Value: 1}})
	if err := findAll(ctx, r.routines, filter, &routines, opts); err != nil {
		return nil, err
	}
	return routines, nil
}

func (r *mongoRoutineRepository) List(ctx context.Context) ([]domain.PredefinedRoutine, error) {
	return r.list(ctx, bson.M{})
}

func (r *mongoRoutineRepository) ListActive(ctx context.Context) ([]domain.PredefinedRoutine, error) {
	return r.list(ctx, bson.M{"active": true})
}

func (r *mongoRoutineRepository) AddExercise(ctx context.Context, exercise *domain.RoutineExercise) (primitive.ObjectID, error) {
	exercise.ID = primitive.NewObjectID()
	if _, err := r.exercises.InsertOne(ctx, exercise); err != nil {
		return primitive.NilObjectID, err
	}
	return exercise.ID, nil
}

func (r *mongoRoutineRepository) ListExercises(ctx context.Context, routineID primitive.ObjectID) ([]domain.RoutineExercise, error) {
	exercises := []domain.RoutineExercise{}
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})
	if err := findAll(ctx, r.exercises, bson.M{"routineId": routineID}, &exercises, opts); err != nil {
		return nil, err
	}
	return exercises, nil
}

// EnsureRoutineIndexes indexes the catalog lookup and the exercise order.
func EnsureRoutineIndexes(ctx context.Context, routines, exercises *mongo.Collection) error {
	if err := createIndexes(ctx, routines, []mongo.IndexModel{
		{Keys: bson.D{{Key: "objective", Value: 1}, {Key: "level", Value: 1}, {Key: "active", Value: 1}}},
	}); err != nil {
		return err
	}
	return createIndexes(ctx, exercises, []mongo.IndexModel{
		{Keys: bson.D{{Key: "routineId", Value: 1}, {Key: "order", Value: 1}}},
	})
}
