package websocket

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"quizforge/db"
	"quizforge/services"
	"quizforge/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// GamificationHandler handles WebSocket connections for gamification updates.
// Each connection owns its own SessionManager: the connect acts as the
// provider sign-in event, and the disconnect feeds the sign-out event through
// the manager's watch channel.
func GamificationHandler(c *gin.Context) {
	// Get token from Authorization header or query parameter
	var tokenString string
	authz := c.GetHeader("Authorization")
	if authz != "" {
		tokenParts := strings.Split(authz, " ")
		if len(tokenParts) == 2 && tokenParts[0] == "Bearer" {
			tokenString = tokenParts[1]
		}
	}
	if tokenString == "" {
		tokenString = c.Query("token")
	}
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization token required"})
		return
	}

	claims, err := utils.ParseJWTToken(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	// Closing the connection is this session's provider sign-out: the read
	// loop below breaks and the deferred nil event clears the session state.
	manager := services.NewSessionManager(db.NewProfileStore(), func(ctx context.Context) error {
		return conn.Close()
	})

	watchCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan *services.ProviderIdentity, 1)
	go manager.Watch(watchCtx, events)

	identity := &services.ProviderIdentity{
		UID:   claims.UserID,
		Email: claims.Email,
	}

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = manager.HandleSessionChange(bootCtx, identity)
	bootCancel()
	if err != nil {
		log.Printf("Failed to establish gamification session: %v", err)
		conn.Close()
		return
	}

	client := &GamificationClient{
		Conn:   conn,
		UserID: claims.UserID,
	}
	RegisterGamificationClient(client)

	defer func() {
		events <- nil
		close(events)
		UnregisterGamificationClient(client)
	}()

	profile, ok := manager.CurrentProfile()
	welcomeMsg := map[string]interface{}{
		"type":    "connected",
		"message": "Connected to gamification updates",
		"userId":  claims.UserID,
	}
	if ok {
		welcomeMsg["xp"] = profile.XP
		welcomeMsg["level"] = profile.Level
		welcomeMsg["streak"] = profile.Streak
		welcomeMsg["badges"] = profile.Badges
	}
	client.SafeWriteJSON(welcomeMsg)

	// Keep connection alive and handle incoming messages
	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Gamification WebSocket error: %v", err)
			}
			break
		}

		switch messageType {
		case websocket.TextMessage:
			if strings.TrimSpace(string(data)) == "signout" {
				if err := manager.EndSession(watchCtx); err != nil {
					log.Printf("Error ending session: %v", err)
				}
			}
		case websocket.PingMessage:
			if err := conn.WriteMessage(websocket.PongMessage, nil); err != nil {
				log.Printf("Error writing pong: %v", err)
				return
			}
		}
	}
}
