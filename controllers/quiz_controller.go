package controllers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"quizforge/db"
	"quizforge/models"
	"quizforge/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// QuestionInput is one question in a create-quiz request
type QuestionInput struct {
	Question      string   `json:"question" binding:"required"`
	Options       []string `json:"options" binding:"required"`
	CorrectAnswer int      `json:"correctAnswer"`
	TimeLimit     int      `json:"timeLimit"`
	ImageURL      string   `json:"imageUrl"`
}

// CreateQuizRequest represents the request to create a quiz
type CreateQuizRequest struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description" binding:"required"`
	Category    string          `json:"category" binding:"required"`
	IsPublic    *bool           `json:"isPublic"`
	ImageURL    string          `json:"imageUrl"`
	Questions   []QuestionInput `json:"questions" binding:"required"`
}

// SubmitAttemptRequest represents a completed play of a quiz
type SubmitAttemptRequest struct {
	Answers   []int `json:"answers" binding:"required"`
	TimeSpent int   `json:"timeSpent"` // seconds
}

// GenerateQuestionsRequest asks the AI service to draft questions
type GenerateQuestionsRequest struct {
	Topic    string `json:"topic" binding:"required"`
	Category string `json:"category" binding:"required"`
	Count    int    `json:"count" binding:"required"`
}

// CreateQuiz validates and stores a new quiz owned by the current user
func CreateQuiz(ctx *gin.Context) {
	uid := ctx.GetString("userID")
	email := ctx.GetString("userEmail")
	if uid == "" {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "message": err.Error()})
		return
	}

	if len(req.Questions) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "A quiz needs at least one question"})
		return
	}

	questions := make([]models.Question, 0, len(req.Questions))
	for i, q := range req.Questions {
		if err := validateQuestion(q); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Question %d is invalid", i+1), "message": err.Error()})
			return
		}
		timeLimit := q.TimeLimit
		if timeLimit == 0 {
			timeLimit = 30
		}
		questions = append(questions, models.Question{
			ID:            uuid.NewString(),
			Question:      strings.TrimSpace(q.Question),
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			TimeLimit:     timeLimit,
			ImageURL:      q.ImageURL,
		})
	}

	dbCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var user models.User
	if err := db.GetCollection(db.UsersCollection).FindOne(dbCtx, bson.M{"uid": uid}).Decode(&user); err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	quiz := models.Quiz{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Category:    req.Category,
		CreatorID:   uid,
		CreatorName: user.DisplayName,
		Questions:   questions,
		IsPublic:    isPublic,
		Plays:       0,
		ImageURL:    req.ImageURL,
		CreatedAt:   time.Now(),
	}

	result, err := db.GetCollection(db.QuizzesCollection).InsertOne(dbCtx, quiz)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create quiz", "message": err.Error()})
		return
	}
	quiz.ID = result.InsertedID.(primitive.ObjectID)

	services.LogActivity(uid, user.DisplayName, email,
		"Quiz Created", fmt.Sprintf("User created quiz %q in category %s", quiz.Title, quiz.Category))

	ctx.JSON(http.StatusOK, gin.H{"message": "Quiz created successfully", "quiz": quiz})
}

// GetQuizzes returns recent public quizzes alongside the caller's own
func GetQuizzes(ctx *gin.Context) {
	uid := ctx.GetString("userID")

	dbCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collection := db.GetCollection(db.QuizzesCollection)

	publicCursor, err := collection.Find(
		dbCtx,
		bson.M{"isPublic": true},
		options.Find().SetSort(bson.M{"createdAt": -1}).SetLimit(20),
	)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch quizzes"})
		return
	}
	defer publicCursor.Close(dbCtx)

	var publicQuizzes []models.Quiz
	if err := publicCursor.All(dbCtx, &publicQuizzes); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode quizzes"})
		return
	}

	myCursor, err := collection.Find(
		dbCtx,
		bson.M{"creatorId": uid},
		options.Find().SetSort(bson.M{"createdAt": -1}),
	)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch quizzes"})
		return
	}
	defer myCursor.Close(dbCtx)

	var myQuizzes []models.Quiz
	if err := myCursor.All(dbCtx, &myQuizzes); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode quizzes"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"publicQuizzes": publicQuizzes, "myQuizzes": myQuizzes})
}

// GetQuiz returns a single quiz; private quizzes are visible to their
// creator only
func GetQuiz(ctx *gin.Context) {
	uid := ctx.GetString("userID")

	quiz, ok := findQuizByID(ctx)
	if !ok {
		return
	}

	if !quiz.IsPublic && quiz.CreatorID != uid {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "This quiz is private"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"quiz": quiz})
}

// DeleteQuiz removes a quiz owned by the current user
func DeleteQuiz(ctx *gin.Context) {
	uid := ctx.GetString("userID")
	email := ctx.GetString("userEmail")

	quiz, ok := findQuizByID(ctx)
	if !ok {
		return
	}

	if quiz.CreatorID != uid {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only the creator can delete a quiz"})
		return
	}

	dbCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.GetCollection(db.QuizzesCollection).DeleteOne(dbCtx, bson.M{"_id": quiz.ID}); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete quiz", "message": err.Error()})
		return
	}

	services.LogActivity(uid, quiz.CreatorName, email,
		"Quiz Deleted", fmt.Sprintf("User deleted quiz %q", quiz.Title))

	ctx.JSON(http.StatusOK, gin.H{"message": "Quiz deleted successfully"})
}

// GenerateQuestions drafts quiz questions with the AI service
func GenerateQuestions(ctx *gin.Context) {
	var req GenerateQuestionsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "message": err.Error()})
		return
	}

	questions, err := services.GenerateQuizQuestions(ctx, req.Topic, req.Category, req.Count)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate questions", "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"questions": questions})
}

// SubmitAttempt scores a completed play, records it, updates the quiz's
// play counters and awards XP to the player
func SubmitAttempt(ctx *gin.Context) {
	uid := ctx.GetString("userID")
	email := ctx.GetString("userEmail")
	if uid == "" {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req SubmitAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "message": err.Error()})
		return
	}

	quiz, ok := findQuizByID(ctx)
	if !ok {
		return
	}

	if len(req.Answers) != len(quiz.Questions) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Answer count does not match question count"})
		return
	}

	score := 0
	for i, answer := range req.Answers {
		if answer == quiz.Questions[i].CorrectAnswer {
			score++
		}
	}

	dbCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	if err := db.GetCollection(db.UsersCollection).FindOne(dbCtx, bson.M{"uid": uid}).Decode(&user); err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	attempt := models.QuizAttempt{
		QuizID:         quiz.ID,
		UserID:         uid,
		UserName:       user.DisplayName,
		Score:          score,
		TotalQuestions: len(quiz.Questions),
		TimeSpent:      req.TimeSpent,
		CompletedAt:    time.Now(),
	}
	if _, err := db.GetCollection(db.QuizAttemptsCollection).InsertOne(dbCtx, attempt); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record attempt", "message": err.Error()})
		return
	}

	// Bump play counters and recompute the running average from the
	// accumulated totals
	var updatedQuiz models.Quiz
	err := db.GetCollection(db.QuizzesCollection).FindOneAndUpdate(
		dbCtx,
		bson.M{"_id": quiz.ID},
		bson.M{"$inc": bson.M{"plays": 1, "totalScore": score}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updatedQuiz)
	if err == nil && updatedQuiz.Plays > 0 {
		average := float64(updatedQuiz.TotalScore) / float64(updatedQuiz.Plays)
		db.GetCollection(db.QuizzesCollection).UpdateOne(dbCtx,
			bson.M{"_id": quiz.ID},
			bson.M{"$set": bson.M{"averageScore": average}},
		)
	}

	gamification := awardQuizXP(dbCtx, user, score, len(quiz.Questions))

	services.LogActivity(uid, user.DisplayName, email,
		"Quiz Completed", fmt.Sprintf("User scored %d/%d on %q", score, len(quiz.Questions), quiz.Title))

	ctx.JSON(http.StatusOK, gin.H{
		"message":        "Attempt recorded",
		"score":          score,
		"totalQuestions": len(quiz.Questions),
		"gamification":   gamification,
	})
}

// GetQuizLeaderboard returns the best attempts for a quiz, highest score
// first with time spent as the tiebreaker
func GetQuizLeaderboard(ctx *gin.Context) {
	quiz, ok := findQuizByID(ctx)
	if !ok {
		return
	}

	dbCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := db.GetCollection(db.QuizAttemptsCollection).Find(
		dbCtx,
		bson.M{"quizId": quiz.ID},
		options.Find().SetSort(bson.D{{Key: "score", Value: -1}, {Key: "timeSpent", Value: 1}}).SetLimit(10),
	)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch leaderboard"})
		return
	}
	defer cursor.Close(dbCtx)

	var attempts []models.QuizAttempt
	if err := cursor.All(dbCtx, &attempts); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode leaderboard"})
		return
	}

	entries := make([]gin.H, 0, len(attempts))
	for i, attempt := range attempts {
		entries = append(entries, gin.H{
			"rank":        i + 1,
			"userId":      attempt.UserID,
			"userName":    attempt.UserName,
			"score":       attempt.Score,
			"timeSpent":   attempt.TimeSpent,
			"completedAt": attempt.CompletedAt,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{"quizId": quiz.ID.Hex(), "entries": entries})
}

// findQuizByID loads the quiz named by the :id path parameter, writing the
// error response itself when the lookup fails
func findQuizByID(ctx *gin.Context) (*models.Quiz, bool) {
	objID, err := primitive.ObjectIDFromHex(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quiz ID"})
		return nil, false
	}

	dbCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var quiz models.Quiz
	err = db.GetCollection(db.QuizzesCollection).FindOne(dbCtx, bson.M{"_id": objID}).Decode(&quiz)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Quiz not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return nil, false
	}
	return &quiz, true
}

func validateQuestion(q QuestionInput) error {
	if strings.TrimSpace(q.Question) == "" {
		return fmt.Errorf("question text is required")
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("at least two options are required")
	}
	for _, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			return fmt.Errorf("options must not be empty")
		}
	}
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
		return fmt.Errorf("correctAnswer must index one of the options")
	}
	return nil
}
