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

const classCollectionName = "classes"

type mongoClassRepository struct {
	collection *mongo.Collection
}

// NewMongoClassRepository creates a group class repository.
func NewMongoClassRepository(db *mongo.Database) repository.ClassRepository {
	return &mongoClassRepository{
		collection: db.Collection(classCollectionName),
	}
}

func (r *mongoClassRepository) Create(ctx context.Context, class *domain.GroupClass) (primitive.ObjectID, error) {
	class.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	class.CreatedAt = now
	class.UpdatedAt = now
	class.SeatsTaken = 0
	if _, err := r.collection.InsertOne(ctx, class); err != nil {
		return primitive.NilObjectID, mapWriteError(err)
	}
	return class.ID, nil
}

func (r *mongoClassRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.GroupClass, error) {
	var class domain.GroupClass
	if err := findOne(ctx, r.collection, bson.M{"_id": id}, &class); err != nil {
		return nil, err
	}
	return &class, nil
}

func (r *mongoClassRepository) GetByName(ctx context.Context, name string) (*domain.GroupClass, error) {
	var class domain.GroupClass
	if err := findOne(ctx, r.collection, bson.M{"name": name}, &class); err != nil {
		return nil, err
	}
	return &class, nil
}

// Update writes the editable fields. seatsTaken is owned by ReserveSeat/ReleaseSeat.
func (r *mongoClassRepository) Update(ctx context.Context, class *domain.GroupClass) error {
	class.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"name":        class.Name,
		"description": class.Description,
		"weekday":     class.Weekday,
		"startTime":   class.StartTime,
		"duration":    class.Duration,
		"imageUrl":    class.ImageURL,
		"imageKey":    class.ImageKey,
		"active":      class.Active,
		"updatedAt":   class.UpdatedAt,
	}
	unset := bson.M{}
	if class.Capacity != nil {
		set["capacity"] = *class.Capacity
	} else {
		unset["capacity"] = ""
	}
	if class.InstructorID != nil {
		set["instructorId"] = *class.InstructorID
	} else {
		unset["instructorId"] = ""
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return updateOne(ctx, r.collection, bson.M{"_id": class.ID}, update)
}

func (r *mongoClassRepository) list(ctx context.Context, filter bson.M) ([]domain.GroupClass, error) {
	classes := []domain.GroupClass{}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	if err := findAll(ctx, r.collection, filter, &classes, opts); err != nil {
		return nil, err
	}
	return classes, nil
}

func (r *mongoClassRepository) List(ctx context.Context) ([]domain.GroupClass, error) {
	return r.list(ctx, bson.M{})
}

func (r *mongoClassRepository) ListActive(ctx context.Context) ([]domain.GroupClass, error) {
	return r.list(ctx, bson.M{"active": true})
}

func (r *mongoClassRepository) ListByInstructor(ctx context.Context, instructorID primitive.ObjectID) ([]domain.GroupClass, error) {
	return r.list(ctx, bson.M{"instructorId": instructorID})
}

func (r *mongoClassRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

// ReserveSeat increments seatsTaken only while it is below capacity
// (or the class has no capacity), so two concurrent reservations can never
// both take the last seat.
func (r *mongoClassRepository) ReserveSeat(ctx context.Context, id primitive.ObjectID) error {
	filter := bson.M{
		"_id": id,
		"$or": bson.A{
			bson.M{"capacity": nil},
			bson.M{"$expr": bson.M{"$lt": bson.A{"$seatsTaken", "$capacity"}}},
		},
	}
	update := bson.M{"$inc": bson.M{"seatsTaken": 1}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 1 {
		return nil
	}

	// Either the class is gone or it is full.
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return repository.ErrCapacityReached
}

// ReleaseSeat gives one seat back. It never drops the counter below zero.
func (r *mongoClassRepository) ReleaseSeat(ctx context.Context, id primitive.ObjectID) error {
	filter := bson.M{"_id": id, "seatsTaken": bson.M{"$gt": 0}}
	_, err := r.collection.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"seatsTaken": -1}})
	return err
}

// EnsureClassIndexes makes class names unique.
func EnsureClassIndexes(ctx context.Context, collection *mongo.Collection) error {
	return createIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "instructorId", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "active", Value: 1}}},
	})
}
