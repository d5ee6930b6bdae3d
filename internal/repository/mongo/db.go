package mongo

import (
	"context"
	"errors"
	"time"

	"alcyxob/gym-manager/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB using the provided URI
// and verifies it with a ping against the primary.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// Pinger adapts a client to the readiness check.
type Pinger struct {
	Client *mongo.Client
}

func (p Pinger) Ping(ctx context.Context) error {
	return p.Client.Ping(ctx, readpref.Primary())
}

// EnsureIndexes creates the indexes of every collection used by the app.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	return errors.Join(
		EnsureMemberIndexes(ctx, db.Collection(memberCollectionName)),
		EnsureAdministratorIndexes(ctx, db.Collection(administratorCollectionName)),
		EnsureInstructorIndexes(ctx, db.Collection(instructorCollectionName)),
		EnsurePlanIndexes(ctx, db.Collection(planCollectionName)),
		EnsureClassIndexes(ctx, db.Collection(classCollectionName)),
		EnsureReservationIndexes(ctx, db.Collection(reservationCollectionName)),
		EnsureAttendanceIndexes(ctx, db.Collection(attendanceCollectionName)),
		EnsureRoutineIndexes(ctx, db.Collection(routineCollectionName), db.Collection(exerciseCollectionName)),
		EnsureAssignmentIndexes(ctx, db.Collection(assignmentCollectionName)),
		EnsureSessionIndexes(ctx, db.Collection(sessionCollectionName)),
	)
}

// mapWriteError converts driver errors into repository errors.
func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrDuplicate
	}
	return err
}

// findOne decodes the first document matching filter into out.
func findOne(ctx context.Context, coll *mongo.Collection, filter bson.M, out interface{}, opts ...*options.FindOneOptions) error {
	err := coll.FindOne(ctx, filter, opts...).Decode(out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return repository.ErrNotFound
		}
		return err
	}
	return nil
}

// findAll decodes every document matching filter into out, which must be a
// pointer to a slice.
func findAll(ctx context.Context, coll *mongo.Collection, filter bson.M, out interface{}, opts ...*options.FindOptions) error {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, out); err != nil {
		return err
	}
	return cursor.Err()
}

// updateOne applies update to the document matching filter and
// reports ErrNotFound when nothing matched.
func updateOne(ctx context.Context, coll *mongo.Collection, filter bson.M, update bson.M) error {
	result, err := coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return mapWriteError(err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func createIndexes(ctx context.Context, coll *mongo.Collection, indexes []mongo.IndexModel) error {
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}

// NewRepositories wires every MongoDB repository on db.
func NewRepositories(db *mongo.Database) repository.Repositories {
	return repository.Repositories{
		Members:        NewMongoMemberRepository(db),
		Administrators: NewMongoAdministratorRepository(db),
		Instructors:    NewMongoInstructorRepository(db),
		Plans:          NewMongoPlanRepository(db),
		Classes:        NewMongoClassRepository(db),
		Reservations:   NewMongoReservationRepository(db),
		Attendances:    NewMongoAttendanceRepository(db),
		Routines:       NewMongoRoutineRepository(db),
		Assignments:    NewMongoAssignmentRepository(db),
		Sessions:       NewMongoSessionRepository(db),
	}
}
