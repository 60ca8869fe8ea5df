package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"quizforge/db"
	"quizforge/models"
	"quizforge/websocket"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// XP awarded per correct answer, plus a bonus for a perfect run.
const (
	xpPerCorrectAnswer = 10
	perfectScoreBonus  = 50
	xpPerLevel         = 100
)

// AwardBadgeRequest represents the request to award a badge
type AwardBadgeRequest struct {
	BadgeName string `json:"badgeName" binding:"required"`
	UserID    string `json:"userId,omitempty"` // Optional, defaults to current user
}

// Valid badge names
var validBadges = map[string]bool{
	"First Steps":   true,
	"Perfectionist": true,
	"Quiz Master":   true,
	"Streak5":       true,
	"Creator":       true,
}

// levelForXP derives the level from total experience points.
func levelForXP(xp int) int {
	return xp/xpPerLevel + 1
}

// AwardBadge awards a badge to a user after validation. Users can only award
// badges to themselves unless they are an admin.
func AwardBadge(c *gin.Context) {
	var req AwardBadgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	currentUID := c.GetString("userID")
	if currentUID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	targetUID := currentUID
	if req.UserID != "" && req.UserID != currentUID {
		isAdmin, _ := c.Get("isAdmin")
		if isAdmin != true {
			c.JSON(http.StatusForbidden, gin.H{"error": "Cannot award badges to other users"})
			return
		}
		targetUID = req.UserID
	}

	if !validBadges[req.BadgeName] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid badge name"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	userCollection := db.GetCollection(db.UsersCollection)
	var user models.User
	if err := userCollection.FindOne(ctx, bson.M{"uid": targetUID}).Decode(&user); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	for _, badge := range user.Badges {
		if badge == req.BadgeName {
			c.JSON(http.StatusConflict, gin.H{"error": "User already has this badge"})
			return
		}
	}

	update := bson.M{
		"$push": bson.M{"badges": req.BadgeName},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	if _, err := userCollection.UpdateOne(ctx, bson.M{"uid": targetUID}, update); err != nil {
		log.Printf("Error awarding badge: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to award badge"})
		return
	}

	websocket.BroadcastGamificationEvent(models.GamificationEvent{
		Type:      "badge_awarded",
		UserID:    targetUID,
		BadgeName: req.BadgeName,
		Timestamp: time.Now(),
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Badge awarded successfully",
		"badge":   req.BadgeName,
		"userId":  targetUID,
	})
}

// awardQuizXP applies the gamification effects of a completed quiz attempt:
// XP, derived level, daily streak and automatic badges. Failures are logged
// and swallowed so they never fail the attempt itself.
func awardQuizXP(ctx context.Context, user models.User, score, totalQuestions int) gin.H {
	xpGained := score * xpPerCorrectAnswer
	if totalQuestions > 0 && score == totalQuestions {
		xpGained += perfectScoreBonus
	}

	newStreak := nextStreak(user.Streak, user.LastActive, time.Now())

	userCollection := db.GetCollection(db.UsersCollection)
	var updated models.User
	err := userCollection.FindOneAndUpdate(
		ctx,
		bson.M{"uid": user.UID},
		bson.M{
			"$inc": bson.M{"xp": xpGained},
			"$set": bson.M{
				"streak":     newStreak,
				"lastActive": time.Now(),
				"updatedAt":  time.Now(),
			},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		log.Printf("Error awarding XP: %v", err)
		return gin.H{"xpGained": 0}
	}

	newLevel := levelForXP(updated.XP)
	leveledUp := newLevel > updated.Level
	if leveledUp {
		userCollection.UpdateOne(ctx, bson.M{"uid": user.UID}, bson.M{"$set": bson.M{"level": newLevel}})
	}

	websocket.BroadcastGamificationEvent(models.GamificationEvent{
		Type:      "xp_awarded",
		UserID:    user.UID,
		XPGained:  xpGained,
		NewXP:     updated.XP,
		Action:    "quiz_complete",
		Timestamp: time.Now(),
	})
	if leveledUp {
		websocket.BroadcastGamificationEvent(models.GamificationEvent{
			Type:      "level_up",
			UserID:    user.UID,
			NewLevel:  newLevel,
			Timestamp: time.Now(),
		})
	}

	badges := checkAndAwardBadges(ctx, updated, newLevel, newStreak, score, totalQuestions)

	return gin.H{
		"xpGained":  xpGained,
		"newXp":     updated.XP,
		"newLevel":  newLevel,
		"leveledUp": leveledUp,
		"streak":    newStreak,
		"newBadges": badges,
	}
}

// nextStreak advances the daily streak: consecutive days increment it, a
// same-day repeat keeps it, a gap resets it to one.
func nextStreak(current int, lastActive, now time.Time) int {
	if lastActive.IsZero() {
		return 1
	}
	lastDay := lastActive.Truncate(24 * time.Hour)
	today := now.Truncate(24 * time.Hour)
	switch today.Sub(lastDay) {
	case 0:
		if current == 0 {
			return 1
		}
		return current
	case 24 * time.Hour:
		return current + 1
	default:
		return 1
	}
}

// checkAndAwardBadges grants any automatic badges the updated totals earn.
// $addToSet keeps auto-awards idempotent.
func checkAndAwardBadges(ctx context.Context, user models.User, level, streak, score, totalQuestions int) []string {
	var earned []string
	earned = append(earned, "First Steps")
	if totalQuestions > 0 && score == totalQuestions {
		earned = append(earned, "Perfectionist")
	}
	if level >= 5 {
		earned = append(earned, "Quiz Master")
	}
	if streak >= 5 {
		earned = append(earned, "Streak5")
	}

	var awarded []string
	userCollection := db.GetCollection(db.UsersCollection)
	for _, badge := range earned {
		if hasBadge(user.Badges, badge) {
			continue
		}
		_, err := userCollection.UpdateOne(ctx,
			bson.M{"uid": user.UID},
			bson.M{"$addToSet": bson.M{"badges": badge}},
		)
		if err != nil {
			log.Printf("Error awarding badge %s: %v", badge, err)
			continue
		}
		awarded = append(awarded, badge)
		websocket.BroadcastGamificationEvent(models.GamificationEvent{
			Type:      "badge_awarded",
			UserID:    user.UID,
			BadgeName: badge,
			Timestamp: time.Now(),
		})
	}
	return awarded
}

func hasBadge(badges []string, name string) bool {
	for _, badge := range badges {
		if badge == name {
			return true
		}
	}
	return false
}
