package services

import (
	"context"
	"log"
	"time"

	"quizforge/db"
	"quizforge/models"
)

// LogActivity appends an entry to the activity log. Logging is best-effort:
// failures are logged locally and swallowed so they never block or fail the
// operation they annotate.
func LogActivity(userID, userName, userEmail, action, details string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entry := models.ActivityLog{
		UserID:    userID,
		UserName:  userName,
		UserEmail: userEmail,
		Action:    action,
		Details:   details,
		Timestamp: time.Now(),
	}

	_, err := db.GetCollection(db.ActivityLogsCollection).InsertOne(ctx, entry)
	if err != nil {
		log.Printf("Error logging activity: %v", err)
	}
}
