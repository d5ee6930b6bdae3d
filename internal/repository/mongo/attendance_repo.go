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

const attendanceCollectionName = "attendances"

type mongoAttendanceRepository struct {
	collection *mongo.Collection
}

// NewMongoAttendanceRepository creates an attendance repository.
func NewMongoAttendanceRepository(db *mongo.Database) repository.AttendanceRepository {
	return &mongoAttendanceRepository{
		collection: db.Collection(attendanceCollectionName),
	}
}

// Create inserts an open visit. A member with an open visit already is
// rejected by the partial unique index on {memberId, open: true}.
func (r *mongoAttendanceRepository) Create(ctx context.Context, attendance *domain.Attendance) (primitive.ObjectID, error) {
	attendance.ID = primitive.NewObjectID()
	attendance.Open = attendance.ExitedAt == nil
	if _, err := r.collection.InsertOne(ctx, attendance); err != nil {
		return primitive.NilObjectID, mapWriteError(err)
	}
	return attendance.ID, nil
}

func (r *mongoAttendanceRepository) FindOpenByMember(ctx context.Context, memberID primitive.ObjectID) (*domain.Attendance, error) {
	var attendance domain.Attendance
	if err := findOne(ctx, r.collection, bson.M{"memberId": memberID, "open": true}, &attendance); err != nil {
		return nil, err
	}
	return &attendance, nil
}

// Close writes the exit only if the visit is still open.
func (r *mongoAttendanceRepository) Close(ctx context.Context, attendance *domain.Attendance) error {
	filter := bson.M{"_id": attendance.ID, "open": true}
	update := bson.M{"$set": bson.M{
		"exitedAt":        attendance.ExitedAt,
		"durationMinutes": attendance.DurationMinutes,
		"open":            false,
	}}
	return updateOne(ctx, r.collection, filter, update)
}

func (r *mongoAttendanceRepository) list(ctx context.Context, filter bson.M) ([]domain.Attendance, error) {
	attendances := []domain.Attendance{}
	opts := options.Find().SetSort(bson.D{{Key: "enteredAt", Value: -1}})
	if err := findAll(ctx, r.collection, filter, &attendances, opts); err != nil {
		return nil, err
	}
	return attendances, nil
}

func (r *mongoAttendanceRepository) ListBetween(ctx context.Context, from, to time.Time) ([]domain.Attendance, error) {
	return r.list(ctx, bson.M{"enteredAt": bson.M{"$gte": from, "$lt": to}})
}

func (r *mongoAttendanceRepository) ListByMember(ctx context.Context, memberID primitive.ObjectID) ([]domain.Attendance, error) {
	return r.list(ctx, bson.M{"memberId": memberID})
}

func (r *mongoAttendanceRepository) ListByMemberBetween(ctx context.Context, memberID primitive.ObjectID, from, to time.Time) ([]domain.Attendance, error) {
	return r.list(ctx, bson.M{"memberId": memberID, "enteredAt": bson.M{"$gte": from, "$lt": to}})
}

func (r *mongoAttendanceRepository) ListOpen(ctx context.Context) ([]domain.Attendance, error) {
	return r.list(ctx, bson.M{"open": true})
}

func (r *mongoAttendanceRepository) CountByMemberBetween(ctx context.Context, memberID primitive.ObjectID, from, to time.Time) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"memberId": memberID, "enteredAt": bson.M{"$gte": from, "$lt": to}})
}

func (r *mongoAttendanceRepository) CountOpen(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"open": true})
}

// EnsureAttendanceIndexes creates the partial unique index that allows only
// one open visit per member.
func EnsureAttendanceIndexes(ctx context.Context, collection *mongo.Collection) error {
	return createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "memberId", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("one_open_attendance").
				SetPartialFilterExpression(bson.M{"open": true}),
		},
		{Keys: bson.D{{Key: "memberId", Value: 1}, {Key: "enteredAt", Value: -1}}},
		{Keys: bson.D{{Key: "enteredAt", Value: -1}}},
	})
}
