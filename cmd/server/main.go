package main

import (
	"log"
	"os"
	"strconv"

	"quizforge/config"
	"quizforge/db"
	"quizforge/middlewares"
	"quizforge/routes"
	"quizforge/services"
	"quizforge/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.prod.yml"
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	utils.SetJWTSecret(cfg.JWT.Secret)

	if err := db.ConnectMongoDB(cfg.Database.URI); err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	log.Println("Connected to MongoDB")

	services.InitVerificationService(db.NewVerificationStore())
	services.InitQuizGenService(cfg)

	router := setupRouter()
	port := strconv.Itoa(cfg.Server.Port)
	log.Printf("Server starting on port %s", port)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupRouter() *gin.Engine {
	router := gin.Default()

	router.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))
	router.OPTIONS("/*path", func(c *gin.Context) { c.Status(204) })

	// Public routes for authentication
	router.POST("/auth/requestCode", routes.RequestVerificationCodeRouteHandler)
	router.POST("/signup", routes.SignUpRouteHandler)
	router.POST("/login", routes.LoginRouteHandler)
	router.POST("/googleLogin", routes.GoogleLoginRouteHandler)
	router.POST("/logout", routes.LogoutRouteHandler)
	router.POST("/forgotPassword", routes.ForgotPasswordRouteHandler)
	router.POST("/confirmForgotPassword", routes.VerifyForgotPasswordRouteHandler)
	router.POST("/verifyToken", routes.VerifyTokenRouteHandler)

	// Protected routes (JWT auth)
	auth := router.Group("/")
	auth.Use(middlewares.AuthMiddleware())
	{
		auth.GET("/user/fetchprofile", routes.GetProfileRouteHandler)
		auth.PUT("/user/updateprofile", routes.UpdateProfileRouteHandler)

		auth.POST("/quizzes", routes.CreateQuizRouteHandler)
		auth.GET("/quizzes", routes.GetQuizzesRouteHandler)
		auth.GET("/quizzes/:id", routes.GetQuizRouteHandler)
		auth.DELETE("/quizzes/:id", routes.DeleteQuizRouteHandler)
		auth.POST("/quizzes/generate", routes.GenerateQuestionsRouteHandler)
		auth.POST("/quizzes/:id/attempts", routes.SubmitAttemptRouteHandler)
		auth.GET("/quizzes/:id/leaderboard", routes.GetQuizLeaderboardRouteHandler)

		auth.GET("/leaderboard", routes.GetLeaderboardRouteHandler)

		auth.POST("/gamification/badge", routes.AwardBadgeRouteHandler)
	}

	// WebSocket endpoint authenticates via header or query token itself
	router.GET("/ws/gamification", routes.GamificationWebSocketRouteHandler)

	routes.SetupAdminRoutes(router)

	return router
}
