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

const instructorCollectionName = "instructors"

type mongoInstructorRepository struct {
	collection *mongo.Collection
}

// NewMongoInstructorRepository creates an instructor repository.
func NewMongoInstructorRepository(db *mongo.Database) repository.InstructorRepository {
	return &mongoInstructorRepository{
		collection: db.Collection(instructorCollectionName),
	}
}

func (r *mongoInstructorRepository) Create(ctx context.Context, instructor *domain.Instructor) (primitive.ObjectID, error) {
	instructor.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	instructor.CreatedAt = now
	instructor.UpdatedAt = now
	if _, err := r.collection.InsertOne(ctx, instructor); err != nil {
		return primitive.NilObjectID, mapWriteError(err)
	}
	return instructor.ID, nil
}

func (r *mongoInstructorRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Instructor, error) {
	var instructor domain.Instructor
	if err := findOne(ctx, r.collection, bson.M{"_id": id}, &instructor); err != nil {
		return nil, err
	}
	return &instructor, nil
}

func (r *mongoInstructorRepository) GetByDNI(ctx context.Context, dni string) (*domain.Instructor, error) {
	var instructor domain.Instructor
	if err := findOne(ctx, r.collection, bson.M{"dni": dni}, &instructor); err != nil {
		return nil, err
	}
	return &instructor, nil
}

func (r *mongoInstructorRepository) GetByEmail(ctx context.Context, email string) (*domain.Instructor, error) {
	var instructor domain.Instructor
	if err := findOne(ctx, r.collection, bson.M{"email": email}, &instructor); err != nil {
		return nil, err
	}
	return &instructor, nil
}

func (r *mongoInstructorRepository) Update(ctx context.Context, instructor *domain.Instructor) error {
	instructor.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"name":      instructor.Name,
		"dni":       instructor.DNI,
		"email":     instructor.Email,
		"phone":     instructor.Phone,
		"specialty": instructor.Specialty,
		"hiredAt":   instructor.HiredAt,
		"active":    instructor.Active,
		"updatedAt": instructor.UpdatedAt,
	}}
	return updateOne(ctx, r.collection, bson.M{"_id": instructor.ID}, update)
}

func (r *mongoInstructorRepository) list(ctx context.Context, filter bson.M) ([]domain.Instructor, error) {
	instructors := []domain.Instructor{}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	if err := findAll(ctx, r.collection, filter, &instructors, opts); err != nil {
		return nil, err
	}
	return instructors, nil
}

func (r *mongoInstructorRepository) List(ctx context.Context) ([]domain.Instructor, error) {
	return r.list(ctx, bson.M{})
}

func (r *mongoInstructorRepository) ListActive(ctx context.Context) ([]domain.Instructor, error) {
	return r.list(ctx, bson.M{"active": true})
}

func (r *mongoInstructorRepository) ListBySpecialty(ctx context.Context, specialty string) ([]domain.Instructor, error) {
	return r.list(ctx, bson.M{"specialty": specialty, "active": true})
}

func (r *mongoInstructorRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

// EnsureInstructorIndexes makes DNI and email unique.
func EnsureInstructorIndexes(ctx context.Context, collection *mongo.Collection) error {
	return createIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "dni", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "specialty", Value: 1}, {Key: "active", Value: 1}}},
	})
}
