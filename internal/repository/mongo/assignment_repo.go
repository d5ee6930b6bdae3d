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

const assignmentCollectionName = "routine_assignments"

// mongoAssignmentRepository implements repository.AssignmentRepository
type mongoAssignmentRepository struct {
	collection *mongo.Collection
}

// NewMongoAssignmentRepository creates a routine assignment repository backed by MongoDB.
func NewMongoAssignmentRepository(db *mongo.Database) repository.AssignmentRepository {
	return &mongoAssignmentRepository{
		collection: db.Collection(assignmentCollectionName),
	}
}

// Create inserts an assignment. A second active assignment for the member
// fails with repository.ErrDuplicate.
func (r *mongoAssignmentRepository) Create(ctx context.Context, assignment *domain.RoutineAssignment) (primitive.ObjectID, error) {
	assignment.ID = primitive.NewObjectID()
	if assignment.AssignedAt.IsZero() {
		assignment.AssignedAt = time.Now().UTC()
	}
	if _, err := r.collection.InsertOne(ctx, assignment); err != nil {
		return primitive.NilObjectID, mapWriteError(err)
	}
	return assignment.ID, nil
}

func (r *mongoAssignmentRepository) FindActiveByMember(ctx context.Context, memberID primitive.ObjectID) (*domain.RoutineAssignment, error) {
	var assignment domain.RoutineAssignment
	if err := findOne(ctx, r.collection, bson.M{"memberId": memberID, "active": true}, &assignment); err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *mongoAssignmentRepository) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	return updateOne(ctx, r.collection, bson.M{"_id": id}, bson.M{"$set": bson.M{"active": false}})
}

func (r *mongoAssignmentRepository) ListActive(ctx context.Context) ([]domain.RoutineAssignment, error) {
	assignments := []domain.RoutineAssignment{}
	if err := findAll(ctx, r.collection, bson.M{"active": true}, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *mongoAssignmentRepository) CountActive(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"active": true})
}

// EnsureAssignmentIndexes allows a single active assignment per member.
func EnsureAssignmentIndexes(ctx context.Context, collection *mongo.Collection) error {
	return createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "memberId", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("one_active_assignment").
				SetPartialFilterExpression(bson.M{"active": true}),
		},
	})
}
