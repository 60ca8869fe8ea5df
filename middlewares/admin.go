package middlewares

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"quizforge/db"
	"quizforge/models"
	"quizforge/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminAuthMiddleware authenticates dashboard operators against the admins collection
func AdminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			c.Abort()
			return
		}

		claims, err := validateAdminJWT(tokenParts[1], utils.GetJWTSecret())
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token", "message": err.Error()})
			c.Abort()
			return
		}

		email, ok := claims["sub"].(string)
		if !ok || email == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			c.Abort()
			return
		}

		dbCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var admin models.Admin
		err = db.GetCollection(db.AdminsCollection).FindOne(dbCtx, bson.M{"email": email}).Decode(&admin)
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}

		c.Set("adminEmail", email)
		c.Set("adminID", admin.ID)
		c.Set("adminRole", admin.Role)
		c.Next()
	}
}

// RequireRole allows the request only when the operator holds one of the given roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminRole, exists := c.Get("adminRole")
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin role not found"})
			c.Abort()
			return
		}

		role := adminRole.(string)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		log.Printf("RequireRole: permission denied for role=%s", role)
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		c.Abort()
	}
}

// LogAdminAction records a moderation action for audit purposes
func LogAdminAction(c *gin.Context, action, resourceType string, resourceID primitive.ObjectID, details map[string]interface{}) error {
	adminID, exists := c.Get("adminID")
	if !exists {
		return fmt.Errorf("adminID not found in context")
	}

	adminEmail, exists := c.Get("adminEmail")
	if !exists {
		return fmt.Errorf("adminEmail not found in context")
	}

	logEntry := models.AdminActionLog{
		ID:           primitive.NewObjectID(),
		AdminID:      adminID.(primitive.ObjectID),
		AdminEmail:   adminEmail.(string),
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    c.ClientIP(),
		UserAgent:    c.GetHeader("User-Agent"),
		Timestamp:    time.Now(),
		Details:      details,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := db.GetCollection(db.AdminActionLogsCollection).InsertOne(ctx, logEntry)
	if err != nil {
		log.Printf("LogAdminAction: failed to insert audit record: %v", err)
	}
	return err
}

// validateAdminJWT validates the dashboard token
func validateAdminJWT(tokenString, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}
