package routes

import (
	"quizforge/controllers"

	"github.com/gin-gonic/gin"
)

func CreateQuizRouteHandler(ctx *gin.Context) {
	controllers.CreateQuiz(ctx)
}

func GetQuizzesRouteHandler(ctx *gin.Context) {
	controllers.GetQuizzes(ctx)
}

func GetQuizRouteHandler(ctx *gin.Context) {
	controllers.GetQuiz(ctx)
}

func DeleteQuizRouteHandler(ctx *gin.Context) {
	controllers.DeleteQuiz(ctx)
}

func GenerateQuestionsRouteHandler(ctx *gin.Context) {
	controllers.GenerateQuestions(ctx)
}

func SubmitAttemptRouteHandler(ctx *gin.Context) {
	controllers.SubmitAttempt(ctx)
}

func GetQuizLeaderboardRouteHandler(ctx *gin.Context) {
	controllers.GetQuizLeaderboard(ctx)
}
