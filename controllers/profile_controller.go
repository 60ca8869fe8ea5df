package controllers

import (
	"context"
	"net/http"
	"time"

	"quizforge/db"
	"quizforge/models"
	"quizforge/services"
	"quizforge/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// profileImageMaxBytes caps inline base64 profile images at 5MB.
const profileImageMaxBytes = 5 * 1024 * 1024

// GetProfile retrieves and returns user profile data together with the
// global leaderboard and the user's recent quiz attempts
func GetProfile(ctx *gin.Context) {
	uid := ctx.GetString("userID")
	if uid == "" {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	dbCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Fetch user profile
	var user models.User
	err := db.GetCollection(db.UsersCollection).FindOne(dbCtx, bson.M{"uid": uid}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	profileAvatarURL := avatarURLFor(user)

	// Fetch leaderboard (top 10 by XP)
	leaderboardCursor, err := db.GetCollection(db.UsersCollection).Find(
		dbCtx,
		bson.M{},
		options.Find().SetSort(bson.M{"xp": -1}).SetLimit(10),
	)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching leaderboard"})
		return
	}
	defer leaderboardCursor.Close(dbCtx)

	var leaderboard []gin.H
	rank := 1
	for leaderboardCursor.Next(dbCtx) {
		var lbUser models.User
		if err := leaderboardCursor.Decode(&lbUser); err != nil {
			continue
		}
		leaderboard = append(leaderboard, gin.H{
			"rank":        rank,
			"name":        lbUser.DisplayName,
			"xp":          lbUser.XP,
			"level":       lbUser.Level,
			"avatarUrl":   avatarURLFor(lbUser),
			"currentUser": lbUser.UID == uid,
		})
		rank++
	}

	// Fetch recent quiz attempts
	attemptCursor, err := db.GetCollection(db.QuizAttemptsCollection).Find(
		dbCtx,
		bson.M{"userId": uid},
		options.Find().SetSort(bson.M{"completedAt": -1}).SetLimit(5),
	)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching attempt history"})
		return
	}
	defer attemptCursor.Close(dbCtx)

	var attempts []models.QuizAttempt
	if err := attemptCursor.All(dbCtx, &attempts); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error decoding attempt history"})
		return
	}

	// Aggregate stats (attempts, average and best score)
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"userId": uid}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":           nil,
			"totalAttempts": bson.M{"$sum": 1},
			"averageScore":  bson.M{"$avg": "$score"},
			"bestScore":     bson.M{"$max": "$score"},
		}}},
	}
	statsCursor, err := db.GetCollection(db.QuizAttemptsCollection).Aggregate(dbCtx, pipeline)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error aggregating stats"})
		return
	}
	defer statsCursor.Close(dbCtx)

	var stats struct {
		TotalAttempts int     `bson:"totalAttempts" json:"totalAttempts"`
		AverageScore  float64 `bson:"averageScore" json:"averageScore"`
		BestScore     int     `bson:"bestScore" json:"bestScore"`
	}
	if statsCursor.Next(dbCtx) {
		statsCursor.Decode(&stats)
	}

	ctx.JSON(http.StatusOK, gin.H{
		"profile": gin.H{
			"uid":          user.UID,
			"displayName":  user.DisplayName,
			"email":        user.Email,
			"bio":          user.Bio,
			"xp":           user.XP,
			"level":        user.Level,
			"streak":       user.Streak,
			"badges":       user.Badges,
			"avatarUrl":    profileAvatarURL,
			"profileImage": user.ProfileImage,
			"createdAt":    user.CreatedAt,
		},
		"leaderboard":    leaderboard,
		"recentAttempts": attempts,
		"stats":          stats,
	})
}

// UpdateProfile merges display name, bio and profile image into the stored
// profile, leaving all other fields untouched
func UpdateProfile(ctx *gin.Context) {
	uid := ctx.GetString("userID")
	email := ctx.GetString("userEmail")
	if uid == "" {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "message": "Missing user id in context"})
		return
	}

	var updateData struct {
		DisplayName  string `json:"displayName"`
		Bio          string `json:"bio"`
		ProfileImage string `json:"profileImage"`
	}
	if err := ctx.ShouldBindJSON(&updateData); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "message": err.Error()})
		return
	}

	if len(updateData.ProfileImage) > profileImageMaxBytes {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Image size must be less than 5MB"})
		return
	}

	dbCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	fields := map[string]interface{}{
		"displayName":  updateData.DisplayName,
		"bio":          updateData.Bio,
		"profileImage": updateData.ProfileImage,
		"lastActive":   time.Now(),
	}
	if err := db.NewProfileStore().Merge(dbCtx, uid, fields); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	services.LogActivity(uid, updateData.DisplayName, email,
		"Profile Updated", "User updated their profile information")

	ctx.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully"})
}

// avatarURLFor returns the stored avatar or a DiceBear fallback seeded with
// the display name
func avatarURLFor(user models.User) string {
	if user.AvatarURL != "" {
		return user.AvatarURL
	}
	name := user.DisplayName
	if name == "" {
		name = utils.ExtractNameFromEmail(user.Email)
	}
	return "https://api.dicebear.com/9.x/adventurer/svg?seed=" + name
}
