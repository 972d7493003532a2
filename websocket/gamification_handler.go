package websocket

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"codearena/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// SessionParser validates a session token.
type SessionParser interface {
	ParseSession(token string) (*utils.Claims, error)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin is enforced by the CORS layer and the SameSite session cookie.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// sessionToken reads the session from the cookie, then the Authorization
// header, then the token query parameter.
func sessionToken(c *gin.Context) string {
	if cookie, err := c.Cookie("token"); err == nil && cookie != "" {
		return cookie
	}
	if authz := c.GetHeader("Authorization"); authz != "" {
		parts := strings.Split(authz, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}
	return c.Query("token")
}

// Handler upgrades authenticated requests and streams the caller's
// gamification events until the client disconnects.
func (h *GamificationHub) Handler(sessions SessionParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := sessionToken(c)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "UNAUTHORIZED", "message": "Authorization token required"})
			return
		}

		claims, err := sessions.ParseSession(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "UNAUTHORIZED", "message": "Invalid or expired token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WebSocket upgrade error: %v", err)
			return
		}

		if err := h.serve(&GamificationClient{Conn: conn, UserID: claims.UserID}); err != nil {
			log.Printf("Gamification WebSocket error: %v", err)
		}
	}
}

// serve registers client, greets it and blocks until it disconnects.
func (h *GamificationHub) serve(client *GamificationClient) error {
	h.Register(client)
	defer h.Unregister(client)

	err := client.SafeWriteJSON(gin.H{
		"type":    "connected",
		"message": "Connected to gamification updates",
		"userId":  client.UserID,
	})
	if err != nil {
		return fmt.Errorf("failed to send greeting: %w", err)
	}

	// Reads only detect disconnects; gorilla answers pings itself.
	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				return err
			}
			return nil
		}
	}
}
