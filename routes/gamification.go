package routes

import (
	"quizforge/controllers"
	"quizforge/websocket"

	"github.com/gin-gonic/gin"
)

func AwardBadgeRouteHandler(ctx *gin.Context) {
	controllers.AwardBadge(ctx)
}

func GamificationWebSocketRouteHandler(ctx *gin.Context) {
	websocket.GamificationHandler(ctx)
}
