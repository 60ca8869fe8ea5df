package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Admin represents a dashboard operator account
type Admin struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"` // bcrypt hash
	Name      string             `bson:"name" json:"name"`
	Role      string             `bson:"role" json:"role"` // "admin" or "moderator"
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// AdminActionLog records a moderation action for audit purposes
type AdminActionLog struct {
	ID           primitive.ObjectID     `bson:"_id,omitempty" json:"id,omitempty"`
	AdminID      primitive.ObjectID     `bson:"adminId" json:"adminId"`
	AdminEmail   string                 `bson:"adminEmail" json:"adminEmail"`
	Action       string                 `bson:"action" json:"action"`
	ResourceType string                 `bson:"resourceType" json:"resourceType"`
	ResourceID   primitive.ObjectID     `bson:"resourceId" json:"resourceId"`
	IPAddress    string                 `bson:"ipAddress" json:"ipAddress"`
	UserAgent    string                 `bson:"userAgent" json:"userAgent"`
	Timestamp    time.Time              `bson:"timestamp" json:"timestamp"`
	Details      map[string]interface{} `bson:"details,omitempty" json:"details,omitempty"`
}
