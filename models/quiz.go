package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Question is a single multiple-choice question inside a quiz document.
type Question struct {
	ID            string   `bson:"id" json:"id"`
	Question      string   `bson:"question" json:"question"`
	Options       []string `bson:"options" json:"options"`
	CorrectAnswer int      `bson:"correctAnswer" json:"correctAnswer"`
	TimeLimit     int      `bson:"timeLimit,omitempty" json:"timeLimit,omitempty"` // seconds
	ImageURL      string   `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
}

// Quiz defines a quiz entity. Questions are embedded; plays and averageScore
// are denormalized counters updated when attempts are recorded.
type Quiz struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description" json:"description"`
	Category     string             `bson:"category" json:"category"`
	CreatorID    string             `bson:"creatorId" json:"creatorId"`
	CreatorName  string             `bson:"creatorName" json:"creatorName"`
	Questions    []Question         `bson:"questions" json:"questions"`
	IsPublic     bool               `bson:"isPublic" json:"isPublic"`
	Plays        int                `bson:"plays" json:"plays"`
	TotalScore   int                `bson:"totalScore" json:"-"`
	AverageScore float64            `bson:"averageScore" json:"averageScore"`
	ImageURL     string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

// QuizAttempt records one completed play of a quiz.
type QuizAttempt struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	QuizID         primitive.ObjectID `bson:"quizId" json:"quizId"`
	UserID         string             `bson:"userId" json:"userId"`
	UserName       string             `bson:"userName" json:"userName"`
	Score          int                `bson:"score" json:"score"`
	TotalQuestions int                `bson:"totalQuestions" json:"totalQuestions"`
	TimeSpent      int                `bson:"timeSpent" json:"timeSpent"` // seconds
	CompletedAt    time.Time          `bson:"completedAt" json:"completedAt"`
}
