package websocket

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	hub *Hub
}

func NewHandler() *Handler {
	hub := NewHub()
	go hub.Run()

	return &Handler{
		hub: hub,
	}
}

func (h *Handler) HandleWebSocket(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	role, _ := c.Get("role")
	roleStr, _ := role.(string)

	userIDStr, ok := userID.(string)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := NewClient(h.hub, conn, userIDStr, roleStr)
	h.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// BroadcastSpotEvent publishes a spot event to every subscriber of the spot,
// its section and the dashboard room.
func (h *Handler) BroadcastSpotEvent(spotID, section, eventType string, data map[string]interface{}) {
	message := Message{
		Type:      eventType,
		Timestamp: getCurrentTimestamp(),
		Data:      data,
	}
	h.hub.SendSpotEvent(spotID, section, message)
}

// NotifyUser pushes a message to a single user's personal room.
func (h *Handler) NotifyUser(userID, eventType string, data map[string]interface{}) {
	message := Message{
		Type:      eventType,
		UserID:    userID,
		Timestamp: getCurrentTimestamp(),
		Data:      data,
	}
	h.hub.SendToUser(userID, message)
}
