package websocket

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"farmwatch-backend/internal/models"

	"github.com/gorilla/websocket"
)

// Manager fans alert updates out to connected dashboard clients. It is the
// network-facing counterpart of the in-process notifier bus: same-process
// listeners get the bus signal, remote dashboards get this push.
type Manager struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan AlertUpdate
	mutex      sync.RWMutex
	upgrader   websocket.Upgrader
	done       chan struct{}
}

// NewManager creates a new WebSocket manager
func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan AlertUpdate, 256),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Open origin policy, matching the motion endpoint's CORS
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		done: make(chan struct{}),
	}
}

// Start begins the manager's main loop
func (m *Manager) Start() error {
	go m.run()
	log.Println("WebSocket manager started")
	return nil
}

// Stop gracefully shuts down the manager and closes all connections
func (m *Manager) Stop() error {
	close(m.done)

	m.mutex.Lock()
	for _, client := range m.clients {
		close(client.Send)
		if client.Conn != nil {
			client.Conn.Close()
		}
	}
	m.clients = make(map[string]*Client)
	m.mutex.Unlock()

	log.Println("WebSocket manager stopped")
	return nil
}

func (m *Manager) run() {
	ticker := time.NewTicker(30 * time.Second) // Health check interval
	defer ticker.Stop()

	for {
		select {
		case client := <-m.register:
			m.mutex.Lock()
			m.clients[client.ID] = client
			m.mutex.Unlock()
			log.Printf("Dashboard client %s connected", client.ID)
			go m.handleClient(client)

		case client := <-m.unregister:
			m.mutex.Lock()
			if _, ok := m.clients[client.ID]; ok {
				delete(m.clients, client.ID)
				close(client.Send)
				if client.Conn != nil {
					client.Conn.Close()
				}
			}
			m.mutex.Unlock()
			log.Printf("Dashboard client %s disconnected", client.ID)

		case update := <-m.broadcast:
			m.broadcastToClients(update)

		case <-ticker.C:
			m.healthCheck()

		case <-m.done:
			return
		}
	}
}

// RegisterClient registers a new dashboard connection
func (m *Manager) RegisterClient(clientID string, conn *websocket.Conn) error {
	client := &Client{
		ID:       clientID,
		Conn:     conn,
		Send:     make(chan AlertUpdate, 64),
		LastPing: time.Now(),
	}

	select {
	case m.register <- client:
		return nil
	case <-m.done:
		return fmt.Errorf("manager stopped")
	}
}

// BroadcastAlert queues an alert for delivery to every connected client.
// Never blocks: when the channel is full the update is dropped, since the
// client can always re-fetch the alert list.
func (m *Manager) BroadcastAlert(alert models.Alert) error {
	update := AlertUpdate{
		Type:      MessageTypeMotionAlert,
		Data:      alert,
		Timestamp: time.Now(),
	}

	select {
	case m.broadcast <- update:
		return nil
	default:
		return fmt.Errorf("broadcast channel full, dropping alert %s", alert.ID)
	}
}

// GetConnectedClients returns the number of connected clients
func (m *Manager) GetConnectedClients() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients)
}

// Upgrader returns the WebSocket upgrader for the HTTP handler
func (m *Manager) Upgrader() *websocket.Upgrader {
	return &m.upgrader
}

func (m *Manager) broadcastToClients(update AlertUpdate) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, client := range m.clients {
		select {
		case client.Send <- update:
		default:
			log.Printf("Client %s send channel full, dropping update", client.ID)
		}
	}
}

// handleClient reads from the connection until it closes; inbound traffic
// is only pings and pongs.
func (m *Manager) handleClient(client *Client) {
	defer func() {
		select {
		case m.unregister <- client:
		case <-m.done:
		}
	}()

	client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	client.Conn.SetPongHandler(func(string) error {
		client.LastPing = time.Now()
		client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	go m.writeMessages(client)

	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for client %s: %v", client.ID, err)
			}
			return
		}
	}
}

func (m *Manager) writeMessages(client *Client) {
	ticker := time.NewTicker(54 * time.Second) // Ping before the read deadline lapses
	defer ticker.Stop()

	for {
		select {
		case update, ok := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := client.Conn.WriteJSON(update); err != nil {
				log.Printf("Error writing to client %s: %v", client.ID, err)
				return
			}

		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// healthCheck drops clients that stopped answering pings.
func (m *Manager) healthCheck() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	now := time.Now()
	for clientID, client := range m.clients {
		if now.Sub(client.LastPing) > 90*time.Second {
			log.Printf("Client %s timed out, removing", clientID)
			delete(m.clients, clientID)
			close(client.Send)
			if client.Conn != nil {
				client.Conn.Close()
			}
		}
	}
}
