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

const memberCollectionName = "members"

// mongoMemberRepository implements repository.MemberRepository using MongoDB.
type mongoMemberRepository struct {
	collection *mongo.Collection
}

// NewMongoMemberRepository creates a member repository on the given database.
func NewMongoMemberRepository(db *mongo.Database) repository.MemberRepository {
	return &mongoMemberRepository{
		collection: db.Collection(memberCollectionName),
	}
}

// Create inserts a new member. Duplicate email or DNI yields repository.ErrDuplicate.
func (r *mongoMemberRepository) Create(ctx context.Context, member *domain.Member) (primitive.ObjectID, error) {
	member.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	member.CreatedAt = now
	member.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, member); err != nil {
		return primitive.NilObjectID, mapWriteError(err)
	}
	return member.ID, nil
}

func (r *mongoMemberRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Member, error) {
	var member domain.Member
	if err := findOne(ctx, r.collection, bson.M{"_id": id}, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *mongoMemberRepository) GetByEmail(ctx context.Context, email string) (*domain.Member, error) {
	var member domain.Member
	if err := findOne(ctx, r.collection, bson.M{"email": email}, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *mongoMemberRepository) GetByDNI(ctx context.Context, dni string) (*domain.Member, error) {
	var member domain.Member
	if err := findOne(ctx, r.collection, bson.M{"dni": dni}, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

// Update replaces the mutable member fields.
func (r *mongoMemberRepository) Update(ctx context.Context, member *domain.Member) error {
	member.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"name":         member.Name,
		"email":        member.Email,
		"passwordHash": member.PasswordHash,
		"phone":        member.Phone,
		"birthDate":    member.BirthDate,
		"expiresAt":    member.ExpiresAt,
		"planId":       member.PlanID,
		"active":       member.Active,
		"updatedAt":    member.UpdatedAt,
	}}
	return updateOne(ctx, r.collection, bson.M{"_id": member.ID}, update)
}

func (r *mongoMemberRepository) List(ctx context.Context) ([]domain.Member, error) {
	members := []domain.Member{}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	if err := findAll(ctx, r.collection, bson.M{}, &members, opts); err != nil {
		return nil, err
	}
	return members, nil
}

func (r *mongoMemberRepository) ListActive(ctx context.Context) ([]domain.Member, error) {
	members := []domain.Member{}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	if err := findAll(ctx, r.collection, bson.M{"active": true}, &members, opts); err != nil {
		return nil, err
	}
	return members, nil
}

func (r *mongoMemberRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

func (r *mongoMemberRepository) CountActive(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"active": true})
}

func (r *mongoMemberRepository) CountActiveByPlan(ctx context.Context, planID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"active": true, "planId": planID})
}

func (r *mongoMemberRepository) CountUnexpired(ctx context.Context, today time.Time) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"active": true, "expiresAt": bson.M{"$gte": today}})
}

func (r *mongoMemberRepository) CountRegisteredBetween(ctx context.Context, from, to time.Time) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"registeredAt": bson.M{"$gte": from, "$lt": to}})
}

func (r *mongoMemberRepository) ListExpiringBetween(ctx context.Context, from, to time.Time) ([]domain.Member, error) {
	members := []domain.Member{}
	filter := bson.M{"active": true, "expiresAt": bson.M{"$gte": from, "$lte": to}}
	opts := options.Find().SetSort(bson.D{{Key: "expiresAt", Value: 1}})
	if err := findAll(ctx, r.collection, filter, &members, opts); err != nil {
		return nil, err
	}
	return members, nil
}

func (r *mongoMemberRepository) ListExpired(ctx context.Context, today time.Time) ([]domain.Member, error) {
	members := []domain.Member{}
	opts := options.Find().SetSort(bson.D{{Key: "expiresAt", Value: -1}})
	if err := findAll(ctx, r.collection, bson.M{"expiresAt": bson.M{"$lt": today}}, &members, opts); err != nil {
		return nil, err
	}
	return members, nil
}

// DeactivateExpired flips every active member whose expiration is before today.
func (r *mongoMemberRepository) DeactivateExpired(ctx context.Context, today time.Time) (int64, error) {
	filter := bson.M{"active": true, "expiresAt": bson.M{"$lt": today}}
	update := bson.M{"$set": bson.M{"active": false, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// EnsureMemberIndexes creates the unique and lookup indexes for members.
func EnsureMemberIndexes(ctx context.Context, collection *mongo.Collection) error {
	return createIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "dni", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "active", Value: 1}, {Key: "expiresAt", Value: 1}}},
		{Keys: bson.D{{Key: "planId", Value: 1}}},
	})
}
