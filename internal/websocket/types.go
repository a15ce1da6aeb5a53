package websocket

import (
	"time"

	"farmwatch-backend/internal/models"

	"github.com/gorilla/websocket"
)

// Message types for WebSocket communication
const (
	MessageTypeMotionAlert = "motion_alert"
	MessageTypePing        = "ping"
	MessageTypePong        = "pong"
)

// AlertUpdate is the message pushed to connected dashboards when the
// notification pipeline accepts a new alert.
type AlertUpdate struct {
	Type      string       `json:"type"`
	Data      models.Alert `json:"data"`
	Timestamp time.Time    `json:"timestamp"`
}

// Client represents one connected dashboard.
type Client struct {
	ID       string
	Conn     *websocket.Conn
	Send     chan AlertUpdate
	LastPing time.Time
}
