package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"quizforge/db"
	"quizforge/middlewares"
	"quizforge/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

// AdminLoginRequest represents the login request
type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminLogin handles admin/moderator login
func AdminLogin(ctx *gin.Context) {
	cfg := loadConfig(ctx)
	if cfg == nil {
		return
	}

	var request AdminLoginRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "message": err.Error()})
		return
	}

	dbCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var admin models.Admin
	err := db.GetCollection(db.AdminsCollection).FindOne(dbCtx, bson.M{"email": request.Email}).Decode(&admin)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Database error", "message": err.Error()})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(request.Password)); err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := generateAdminJWT(admin.Email, cfg.JWT.Secret, cfg.JWT.Expiry)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token", "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":     "Admin login successful",
		"accessToken": token,
		"admin": gin.H{
			"id":    admin.ID.Hex(),
			"email": admin.Email,
			"name":  admin.Name,
			"role":  admin.Role,
		},
	})
}

// GetUsers fetches registered users with pagination, newest first
func GetUsers(ctx *gin.Context) {
	page := 1
	limit := 100

	if pageStr := ctx.Query("page"); pageStr != "" {
		fmt.Sscanf(pageStr, "%d", &page)
	}
	if limitStr := ctx.Query("limit"); limitStr != "" {
		fmt.Sscanf(limitStr, "%d", &limit)
	}
	skip := (page - 1) * limit

	dbCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collection := db.GetCollection(db.UsersCollection)
	opts := options.Find().SetSkip(int64(skip)).SetLimit(int64(limit)).SetSort(bson.M{"createdAt": -1})
	cursor, err := collection.Find(dbCtx, bson.M{}, opts)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users", "message": err.Error()})
		return
	}
	defer cursor.Close(dbCtx)

	var users []models.User
	if err := cursor.All(dbCtx, &users); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode users", "message": err.Error()})
		return
	}

	total, err := collection.CountDocuments(dbCtx, bson.M{})
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count users", "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"users": users,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// GetActivityLogs fetches activity log entries with pagination, newest first
func GetActivityLogs(ctx *gin.Context) {
	page := 1
	limit := 200

	if pageStr := ctx.Query("page"); pageStr != "" {
		fmt.Sscanf(pageStr, "%d", &page)
	}
	if limitStr := ctx.Query("limit"); limitStr != "" {
		fmt.Sscanf(limitStr, "%d", &limit)
	}
	skip := (page - 1) * limit

	dbCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collection := db.GetCollection(db.ActivityLogsCollection)
	opts := options.Find().SetSkip(int64(skip)).SetLimit(int64(limit)).SetSort(bson.M{"timestamp": -1})
	cursor, err := collection.Find(dbCtx, bson.M{}, opts)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch activity logs", "message": err.Error()})
		return
	}
	defer cursor.Close(dbCtx)

	var logs []models.ActivityLog
	if err := cursor.All(dbCtx, &logs); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode activity logs", "message": err.Error()})
		return
	}

	total, err := collection.CountDocuments(dbCtx, bson.M{})
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count activity logs", "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"logs":  logs,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// GetAdminStats returns dashboard counters
func GetAdminStats(ctx *gin.Context) {
	dbCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userCount, _ := db.GetCollection(db.UsersCollection).CountDocuments(dbCtx, bson.M{})
	quizCount, _ := db.GetCollection(db.QuizzesCollection).CountDocuments(dbCtx, bson.M{})
	attemptCount, _ := db.GetCollection(db.QuizAttemptsCollection).CountDocuments(dbCtx, bson.M{})

	todayStart := time.Now().Truncate(24 * time.Hour)
	activityToday, _ := db.GetCollection(db.ActivityLogsCollection).CountDocuments(dbCtx, bson.M{
		"timestamp": bson.M{"$gte": todayStart},
	})

	ctx.JSON(http.StatusOK, gin.H{
		"users":         userCount,
		"quizzes":       quizCount,
		"attempts":      attemptCount,
		"activityToday": activityToday,
	})
}

// AdminDeleteQuiz deletes any quiz (moderation)
func AdminDeleteQuiz(ctx *gin.Context) {
	quizID := ctx.Param("id")
	objID, err := primitive.ObjectIDFromHex(quizID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quiz ID"})
		return
	}

	dbCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := db.GetCollection(db.QuizzesCollection).DeleteOne(dbCtx, bson.M{"_id": objID})
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete quiz", "message": err.Error()})
		return
	}

	middlewares.LogAdminAction(ctx, "delete_quiz", "quiz", objID, map[string]interface{}{
		"quizId": quizID,
	})

	ctx.JSON(http.StatusOK, gin.H{"message": "Quiz deleted successfully", "deletedCount": result.DeletedCount})
}

// generateAdminJWT issues a dashboard token carrying the admin email
func generateAdminJWT(email, secret string, expiryMinutes int) (string, error) {
	if expiryMinutes <= 0 {
		expiryMinutes = 60
	}
	claims := jwt.MapClaims{
		"sub": email,
		"exp": time.Now().Add(time.Duration(expiryMinutes) * time.Minute).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
