package routes

import (
	"quizforge/controllers"

	"github.com/gin-gonic/gin"
)

func RequestVerificationCodeRouteHandler(ctx *gin.Context) {
	controllers.RequestVerificationCode(ctx)
}

func SignUpRouteHandler(ctx *gin.Context) {
	controllers.SignUp(ctx)
}

func LoginRouteHandler(ctx *gin.Context) {
	controllers.Login(ctx)
}

func GoogleLoginRouteHandler(ctx *gin.Context) {
	controllers.GoogleLogin(ctx)
}

func LogoutRouteHandler(ctx *gin.Context) {
	controllers.Logout(ctx)
}

func ForgotPasswordRouteHandler(ctx *gin.Context) {
	controllers.ForgotPassword(ctx)
}

func VerifyForgotPasswordRouteHandler(ctx *gin.Context) {
	controllers.VerifyForgotPassword(ctx)
}

func VerifyTokenRouteHandler(ctx *gin.Context) {
	controllers.VerifyToken(ctx)
}
