package routes

import (
	"quizforge/controllers"
	"quizforge/middlewares"

	"github.com/gin-gonic/gin"
)

// SetupAdminRoutes sets up admin routes
func SetupAdminRoutes(router *gin.Engine) {
	// Public admin routes (login only - admins are added via the addadmin CLI)
	adminPublic := router.Group("/admin")
	{
		adminPublic.POST("/login", controllers.AdminLogin)
	}

	// Protected admin routes
	admin := router.Group("/admin")
	admin.Use(middlewares.AdminAuthMiddleware())
	{
		admin.GET("/users", controllers.GetUsers)
		admin.GET("/activity", controllers.GetActivityLogs)
		admin.GET("/stats", controllers.GetAdminStats)

		// Quiz moderation (admin only)
		admin.DELETE("/quizzes/:id", middlewares.RequireRole("admin"), controllers.AdminDeleteQuiz)
	}
}
