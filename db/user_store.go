package db

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"codearena/models"
	"codearena/progression"
	"codearena/services"
)

// MongoUserStore keeps users and badge awards in MongoDB.
type MongoUserStore struct {
	users  *mongo.Collection
	awards *mongo.Collection
}

func NewMongoUserStore(database *mongo.Database) *MongoUserStore {
	return &MongoUserStore{
		users:  database.Collection(UsersCollection),
		awards: database.Collection(BadgeAwardsCollection),
	}
}

// EnsureIndexes creates the unique username/email indexes and the award
// lookup index. Safe to run on every start.
func (s *MongoUserStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: models.FieldEmail, Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_unique"),
		},
		{
			Keys:    bson.D{{Key: models.FieldUsername, Value: 1}},
			Options: options.Index().SetUnique(true).SetName("username_unique"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}

	_, err = s.awards.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "earnedAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create badge award index: %w", err)
	}
	return nil
}

func (s *MongoUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{models.FieldEmail: email})
}

func (s *MongoUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

func (s *MongoUserStore) Create(ctx context.Context, u *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.Badges == nil {
		u.Badges = []string{}
	}
	if _, err := s.users.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return services.ErrDuplicateUser
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// Increment applies $inc to a single field and returns the post-image.
func (s *MongoUserStore) Increment(ctx context.Context, id, field string, delta int) (*models.User, error) {
	return s.update(ctx, id, bson.M{"$inc": bson.M{field: delta}})
}

// AddXP raises xp and re-derives level in one pipeline update, so the
// stored level always matches the stored xp.
func (s *MongoUserStore) AddXP(ctx context.Context, id string, amount int) (*models.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{
		"_id":          oid,
		models.FieldXP: bson.M{"$lte": int64(math.MaxInt64) - int64(amount)},
	}
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: models.FieldXP, Value: bson.D{{Key: "$add", Value: bson.A{
				bson.D{{Key: "$ifNull", Value: bson.A{"$" + models.FieldXP, 0}}},
				int64(amount),
			}}}},
		}}},
		{{Key: "$set", Value: bson.D{
			{Key: models.FieldLevel, Value: bson.D{{Key: "$toInt", Value: bson.D{{Key: "$add", Value: bson.A{
				bson.D{{Key: "$floor", Value: bson.D{{Key: "$divide", Value: bson.A{"$" + models.FieldXP, progression.XPPerLevel}}}}},
				1,
			}}}}}},
		}}},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err = s.users.FindOneAndUpdate(ctx, filter, pipeline, opts).Decode(&user)
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to add xp: %w", err)
	}
	// The filter also misses when the total would overflow.
	if _, ferr := s.findOne(ctx, bson.M{"_id": oid}); ferr != nil {
		return nil, ferr
	}
	return nil, progression.ErrXPOverflow
}

// SetFields applies $set; nil values are removed with $unset.
func (s *MongoUserStore) SetFields(ctx context.Context, id string, fields map[string]interface{}) (*models.User, error) {
	set := bson.M{}
	unset := bson.M{}
	for k, v := range fields {
		if isNil(v) {
			unset[k] = ""
			continue
		}
		set[k] = v
	}

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	if len(update) == 0 {
		return s.FindByID(ctx, id)
	}
	return s.update(ctx, id, update)
}

// AddBadges uses $addToSet so repeated awards are no-ops.
func (s *MongoUserStore) AddBadges(ctx context.Context, id string, labels []string) error {
	if len(labels) == 0 {
		return nil
	}
	_, err := s.update(ctx, id, bson.M{
		"$addToSet": bson.M{models.FieldBadges: bson.M{"$each": labels}},
	})
	return err
}

func (s *MongoUserStore) RecordBadgeAwards(ctx context.Context, awards []models.BadgeAward) error {
	if len(awards) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	docs := make([]interface{}, 0, len(awards))
	for _, a := range awards {
		if a.ID.IsZero() {
			a.ID = primitive.NewObjectID()
		}
		docs = append(docs, a)
	}
	if _, err := s.awards.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert badge awards: %w", err)
	}
	return nil
}

// BadgeAwardsFor lists a user's award records, newest first.
func (s *MongoUserStore) BadgeAwardsFor(ctx context.Context, userID string) ([]models.BadgeAward, error) {
	oid, err := objectID(userID)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cursor, err := s.awards.Find(ctx, bson.M{"userId": oid}, options.Find().SetSort(bson.D{{Key: "earnedAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query badge awards: %w", err)
	}
	defer cursor.Close(ctx)

	awards := []models.BadgeAward{}
	if err := cursor.All(ctx, &awards); err != nil {
		return nil, fmt.Errorf("failed to decode badge awards: %w", err)
	}
	return awards, nil
}

// TopByXP returns up to limit users ordered by XP, highest first.
func (s *MongoUserStore) TopByXP(ctx context.Context, limit int) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	findOptions := options.Find().
		SetSort(bson.D{{Key: models.FieldXP, Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{models.FieldPassword: 0, models.FieldResetToken: 0, models.FieldResetTokenExpiry: 0})
	cursor, err := s.users.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode leaderboard: %w", err)
	}
	return users, nil
}

func (s *MongoUserStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var user models.User
	if err := s.users.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, services.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

func (s *MongoUserStore) update(ctx context.Context, id string, update bson.M) (*models.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err = s.users.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, services.ErrUserNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, services.ErrDuplicateUser
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return &user, nil
}

// objectID maps a malformed hex id to ErrUserNotFound; such an id can never
// match a document.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, services.ErrUserNotFound
	}
	return oid, nil
}

func isNil(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case *time.Time:
		return t == nil
	case *string:
		return t == nil
	}
	return false
}
