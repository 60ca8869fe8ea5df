package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VerificationCode is a short-lived, single-use numeric proof of email
// control. A code is consumable while used is false and expiresAt has not
// passed; consumption flips used exactly once. Issuing a new code does not
// invalidate older outstanding codes for the same email.
type VerificationCode struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Email     string             `bson:"email" json:"email"`
	Code      string             `bson:"code" json:"code"`
	ExpiresAt time.Time          `bson:"expiresAt" json:"expiresAt"`
	Used      bool               `bson:"used" json:"used"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
