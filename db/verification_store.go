package db

import (
	"context"

	"quizforge/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoVerificationStore persists verification codes in the
// verificationCodes collection.
type MongoVerificationStore struct {
	coll *mongo.Collection
}

func NewVerificationStore() *MongoVerificationStore {
	return &MongoVerificationStore{coll: GetCollection(VerificationCodesCollection)}
}

func (s *MongoVerificationStore) Insert(ctx context.Context, record models.VerificationCode) error {
	_, err := s.coll.InsertOne(ctx, record)
	return err
}

// FindUnused returns the oldest unused record matching email and code, or nil
// when none exists. Matching is exact-string on both fields.
func (s *MongoVerificationStore) FindUnused(ctx context.Context, email, code string) (*models.VerificationCode, error) {
	filter := bson.M{"email": email, "code": code, "used": false}

	var record models.VerificationCode
	err := s.coll.FindOne(ctx, filter).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// MarkUsed flips used from false to true and reports whether this call won
// the transition. The used=false filter makes consumption a conditional
// update, so concurrent callers agree on a single winner.
func (s *MongoVerificationStore) MarkUsed(ctx context.Context, id primitive.ObjectID) (bool, error) {
	result, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "used": false},
		bson.M{"$set": bson.M{"used": true}},
	)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount == 1, nil
}
