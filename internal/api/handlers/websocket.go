package handlers

import (
	"log"
	"net/http"

	"farmwatch-backend/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WebSocketHandler upgrades dashboard connections for real-time alert push
type WebSocketHandler struct {
	manager *websocket.Manager
}

func NewWebSocketHandler(manager *websocket.Manager) *WebSocketHandler {
	return &WebSocketHandler{
		manager: manager,
	}
}

// HandleWebSocket upgrades the HTTP connection and registers the client
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	clientID := uuid.New().String()

	conn, err := h.manager.Upgrader().Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection to WebSocket: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to upgrade to WebSocket"})
		return
	}

	if err := h.manager.RegisterClient(clientID, conn); err != nil {
		log.Printf("Failed to register WebSocket client: %v", err)
		conn.Close()
	}
}
