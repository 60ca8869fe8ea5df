package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User defines an application profile, keyed by the identity provider's
// stable user id. Exactly one profile exists per provider identity; it is
// created lazily on first successful sign-in.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UID          string             `bson:"uid" json:"uid"`
	Email        string             `bson:"email" json:"email"`
	DisplayName  string             `bson:"displayName" json:"displayName"`
	AvatarURL    string             `bson:"avatarUrl,omitempty" json:"avatarUrl,omitempty"`
	XP           int                `bson:"xp" json:"xp"`
	Level        int                `bson:"level" json:"level"`
	Streak       int                `bson:"streak" json:"streak"`
	Badges       []string           `bson:"badges" json:"badges"`
	Bio          string             `bson:"bio,omitempty" json:"bio,omitempty"`
	ProfileImage string             `bson:"profileImage,omitempty" json:"profileImage,omitempty"` // inline base64, capped at 5MB
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	LastActive   time.Time          `bson:"lastActive,omitempty" json:"lastActive,omitempty"`
	UpdatedAt    time.Time          `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}
