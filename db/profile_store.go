package db

import (
	"context"
	"fmt"

	"quizforge/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoProfileStore persists user profiles in the users collection, keyed by
// the provider uid.
type MongoProfileStore struct {
	coll *mongo.Collection
}

func NewProfileStore() *MongoProfileStore {
	return &MongoProfileStore{coll: GetCollection(UsersCollection)}
}

// Get returns the profile for uid, or nil when absent.
func (s *MongoProfileStore) Get(ctx context.Context, uid string) (*models.User, error) {
	var user models.User
	err := s.coll.FindOne(ctx, bson.M{"uid": uid}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetOrCreate returns the profile for defaults.UID, inserting defaults when
// no profile exists yet. The upsert with $setOnInsert makes first-login
// creation atomic: two near-simultaneous sign-ins for a brand-new identity
// resolve to the same document.
func (s *MongoProfileStore) GetOrCreate(ctx context.Context, defaults models.User) (*models.User, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var user models.User
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"uid": defaults.UID},
		bson.M{"$setOnInsert": defaults},
		opts,
	).Decode(&user)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve profile: %w", err)
	}
	return &user, nil
}

// Merge overwrites only the named fields on the stored profile; all other
// fields are retained.
func (s *MongoProfileStore) Merge(ctx context.Context, uid string, fields map[string]interface{}) error {
	set := bson.M{}
	for name, value := range fields {
		set[name] = value
	}
	_, err := s.coll.UpdateOne(ctx, bson.M{"uid": uid}, bson.M{"$set": set})
	return err
}
