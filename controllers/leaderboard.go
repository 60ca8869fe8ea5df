package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"quizforge/db"
	"quizforge/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LeaderboardData defines the response structure for the frontend
type LeaderboardData struct {
	Players []Player `json:"players"`
	Stats   []Stat   `json:"stats"`
}

// Player represents a leaderboard entry
type Player struct {
	UID         string `json:"uid"`
	Rank        int    `json:"rank"`
	Name        string `json:"name"`
	XP          int    `json:"xp"`
	Level       int    `json:"level"`
	Streak      int    `json:"streak"`
	AvatarURL   string `json:"avatarUrl"`
	CurrentUser bool   `json:"currentUser"`
}

// Stat represents a single statistic
type Stat struct {
	Icon  string `json:"icon"`
	Value string `json:"value"`
	Label string `json:"label"`
}

// GetLeaderboard fetches and returns the global leaderboard sorted by XP
func GetLeaderboard(c *gin.Context) {
	currentUID := c.GetString("userID")
	if currentUID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	dbCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collection := db.GetCollection(db.UsersCollection)
	findOptions := options.Find().SetSort(bson.D{{Key: "xp", Value: -1}}).SetLimit(100)
	cursor, err := collection.Find(dbCtx, bson.M{}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch leaderboard data"})
		return
	}
	defer cursor.Close(dbCtx)

	var users []models.User
	if err := cursor.All(dbCtx, &users); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode leaderboard data"})
		return
	}

	var players []Player
	for i, user := range users {
		players = append(players, Player{
			UID:         user.UID,
			Rank:        i + 1,
			Name:        user.DisplayName,
			XP:          user.XP,
			Level:       user.Level,
			Streak:      user.Streak,
			AvatarURL:   avatarURLFor(user),
			CurrentUser: user.UID == currentUID,
		})
	}

	// Attempts recorded today across all quizzes
	todayStart := time.Now().Truncate(24 * time.Hour)
	todayEnd := todayStart.Add(24 * time.Hour)

	attemptsToday, err := db.GetCollection(db.QuizAttemptsCollection).CountDocuments(dbCtx, bson.M{
		"completedAt": bson.M{
			"$gte": todayStart,
			"$lt":  todayEnd,
		},
	})
	if err != nil {
		attemptsToday = 0
	}

	totalQuizzes, err := db.GetCollection(db.QuizzesCollection).CountDocuments(dbCtx, bson.M{})
	if err != nil {
		totalQuizzes = 0
	}

	topXP := 0
	if len(users) > 0 {
		topXP = users[0].XP
	}

	stats := []Stat{
		{Icon: "users", Value: fmt.Sprintf("%d", len(users)), Label: "Players"},
		{Icon: "play", Value: fmt.Sprintf("%d", attemptsToday), Label: "Quizzes Played Today"},
		{Icon: "library", Value: fmt.Sprintf("%d", totalQuizzes), Label: "Quizzes"},
		{Icon: "trophy", Value: fmt.Sprintf("%d XP", topXP), Label: "Top Score"},
	}

	c.JSON(http.StatusOK, LeaderboardData{Players: players, Stats: stats})
}
