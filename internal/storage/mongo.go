package storage

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const usersCollection = "users"

// MongoStore implements UserStore on a MongoDB "users" collection.
type MongoStore struct {
	client      *mongo.Client
	users       *mongo.Collection
	initialized atomic.Bool
}

// NewMongoStore creates the client without touching the network; Init
// performs the first round trip.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}
	return &MongoStore{
		client: client,
		users:  client.Database(database).Collection(usersCollection),
	}, nil
}

func (s *MongoStore) Init(ctx context.Context) error {
	if s.initialized.Load() {
		return nil
	}
	if err := s.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping mongo: %w", err)
	}
	_, err := s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "favorites", Value: 1}}},
		{Keys: bson.D{{Key: "alerts", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	s.initialized.Store(true)
	log.Info().Str("collection", usersCollection).Msg("mongo user store initialized")
	return nil
}

func (s *MongoStore) Initialized() bool {
	return s.initialized.Load()
}

func (s *MongoStore) GetUser(ctx context.Context, id string) (*User, error) {
	var user User
	err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

func (s *MongoStore) CreateUser(ctx context.Context, user *User) (bool, error) {
	doc := bson.M{
		"first_name":    user.FirstName,
		"last_name":     user.LastName,
		"username":      user.Username,
		"language_code": user.LanguageCode,
		"is_premium":    user.IsPremium,
		"user_image":    user.UserImage,
		"favorites":     nonNil(user.Favorites),
		"balance":       user.Balance,
		"level":         user.Level,
		"created_at":    user.CreatedAt,
		"updated_at":    user.UpdatedAt,
	}
	if user.ReferredBy != "" {
		doc["referredBy"] = user.ReferredBy
	}

	res, err := s.users.UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$setOnInsert": doc},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, fmt.Errorf("failed to create user: %w", err)
	}
	return res.UpsertedCount == 1, nil
}

func (s *MongoStore) AddFavorite(ctx context.Context, userID, listingID string) (bool, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return false, err
	}
	if user.HasFavorite(listingID) {
		return false, nil
	}

	now := time.Now().UTC()
	_, err = s.users.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$addToSet":    bson.M{"favorites": listingID},
			"$set":         bson.M{"updated_at": now},
			"$setOnInsert": bson.M{"created_at": now},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, fmt.Errorf("failed to add favorite: %w", err)
	}
	return true, nil
}

func (s *MongoStore) RemoveFavorite(ctx context.Context, userID, listingID string) (bool, error) {
	res, err := s.users.UpdateOne(ctx,
		bson.M{"_id": userID, "favorites": listingID},
		bson.M{
			"$pull": bson.M{"favorites": listingID},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return false, fmt.Errorf("failed to remove favorite: %w", err)
	}
	return res.MatchedCount > 0, nil
}

func (s *MongoStore) SetUserImage(ctx context.Context, userID, imageURL string) error {
	res, err := s.users.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"user_image": imageURL, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update user image: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) ApplyReferral(ctx context.Context, referrerID, referredID string, amount int64) error {
	now := time.Now().UTC()
	res, err := s.users.UpdateOne(ctx,
		bson.M{"_id": referrerID},
		bson.M{
			"$inc": bson.M{"balance": amount},
			"$set": bson.M{
				"referrals." + referredID: Referral{Amount: amount, CreatedAt: now},
				"updated_at":              now,
			},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to apply referral: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) EachUser(ctx context.Context, fn func(*User) error) error {
	cursor, err := s.users.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return fmt.Errorf("failed to query users: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var user User
		if err := cursor.Decode(&user); err != nil {
			return fmt.Errorf("failed to decode user: %w", err)
		}
		if err := fn(&user); err != nil {
			return err
		}
	}
	return cursor.Err()
}

func (s *MongoStore) CountUsers(ctx context.Context) (int64, error) {
	n, err := s.users.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
