package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActivityLog is an append-only record of a user-facing action. Entries are
// never updated or deleted.
type ActivityLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    string             `bson:"userId" json:"userId"`
	UserName  string             `bson:"userName" json:"userName"`
	UserEmail string             `bson:"userEmail" json:"userEmail"`
	Action    string             `bson:"action" json:"action"`
	Details   string             `bson:"details" json:"details"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
	IPAddress string             `bson:"ipAddress,omitempty" json:"ipAddress,omitempty"`
}
