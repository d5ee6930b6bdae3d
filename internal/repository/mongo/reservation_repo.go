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

const reservationCollectionName = "reservations"

type mongoReservationRepository struct {
	collection *mongo.Collection
}

// NewMongoReservationRepository creates a class reservation repository.
func NewMongoReservationRepository(db *mongo.Database) repository.ReservationRepository {
	return &mongoReservationRepository{
		collection: db.Collection(reservationCollectionName),
	}
}

// Create inserts a reservation. A second ACTIVA reservation for the same
// member and class is rejected by the partial unique index.
func (r *mongoReservationRepository) Create(ctx context.Context, reservation *domain.Reservation) (primitive.ObjectID, error) {
	reservation.ID = primitive.NewObjectID()
	if reservation.ReservedAt.IsZero() {
		reservation.ReservedAt = time.Now().UTC()
	}
	if reservation.Status == "" {
		reservation.Status = domain.ReservationActive
	}
	if _, err := r.collection.InsertOne(ctx, reservation); err != nil {
		return primitive.NilObjectID, mapWriteError(err)
	}
	return reservation.ID, nil
}

func (r *mongoReservationRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Reservation, error) {
	var reservation domain.Reservation
	if err := findOne(ctx, r.collection, bson.M{"_id": id}, &reservation); err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *mongoReservationRepository) FindActive(ctx context.Context, memberID, classID primitive.ObjectID) (*domain.Reservation, error) {
	var reservation domain.Reservation
	filter := bson.M{"memberId": memberID, "classId": classID, "status": domain.ReservationActive}
	if err := findOne(ctx, r.collection, filter, &reservation); err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *mongoReservationRepository) ListActiveByMember(ctx context.Context, memberID primitive.ObjectID) ([]domain.Reservation, error) {
	reservations := []domain.Reservation{}
	filter := bson.M{"memberId": memberID, "status": domain.ReservationActive}
	opts := options.Find().SetSort(bson.D{{Key: "reservedAt", Value: -1}})
	if err := findAll(ctx, r.collection, filter, &reservations, opts); err != nil {
		return nil, err
	}
	return reservations, nil
}

func (r *mongoReservationRepository) CountActiveByClass(ctx context.Context, classID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"classId": classID, "status": domain.ReservationActive})
}

// ActiveCountsByClass groups ACTIVA reservations by class on the server.
func (r *mongoReservationRepository) ActiveCountsByClass(ctx context.Context) (map[primitive.ObjectID]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": domain.ReservationActive}}},
		{{Key: "$group", Value: bson.M{"_id": "$classId", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ClassID primitive.ObjectID `bson:"_id"`
		Count   int64              `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := make(map[primitive.ObjectID]int64, len(rows))
	for _, row := range rows {
		counts[row.ClassID] = row.Count
	}
	return counts, nil
}

func (r *mongoReservationRepository) CountActive(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"status": domain.ReservationActive})
}

// Cancel only matches reservations that are still ACTIVA.
func (r *mongoReservationRepository) Cancel(ctx context.Context, id primitive.ObjectID) error {
	filter := bson.M{"_id": id, "status": domain.ReservationActive}
	update := bson.M{"$set": bson.M{"status": domain.ReservationCancelled}}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.ModifiedCount == 0 {
		return repository.ErrUpdateFailed
	}
	return nil
}

// EnsureReservationIndexes creates the partial unique index that allows
// only one ACTIVA reservation per member and class.
func EnsureReservationIndexes(ctx context.Context, collection *mongo.Collection) error {
	return createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "memberId", Value: 1}, {Key: "classId", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("one_active_reservation").
				SetPartialFilterExpression(bson.M{"status": domain.ReservationActive}),
		},
		{Keys: bson.D{{Key: "classId", Value: 1}, {Key: "status", Value: 1}}},
	})
}
