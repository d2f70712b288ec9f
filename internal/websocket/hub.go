package websocket

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for now (should be restricted in production)
	},
}

// Client represents a WebSocket client subscribed to one request's progress.
type Client struct {
	RequestID string
	Conn      *websocket.Conn
	Send      chan []byte
	Hub       *Hub
}

// Hub maintains active WebSocket connections and fans solver progress
// updates out to the clients watching each request.
type Hub struct {
	clients        map[*Client]bool
	requestClients map[string][]*Client
	register       chan *Client
	unregister     chan *Client
	logger         *logrus.Logger
	mutex          sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		clients:        make(map[*Client]bool),
		requestClients: make(map[string][]*Client),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		logger:         logger,
	}
}

// Run starts the hub and handles client registration/unregistration
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.requestClients[client.RequestID] = append(h.requestClients[client.RequestID], client)
			h.mutex.Unlock()

			h.logger.WithFields(logrus.Fields{
				"request_id":    client.RequestID,
				"total_clients": len(h.clients),
			}).Info("WebSocket client connected")

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)

				watchers := h.requestClients[client.RequestID]
				for i, c := range watchers {
					if c == client {
						h.requestClients[client.RequestID] = append(watchers[:i], watchers[i+1:]...)
						break
					}
				}
				if len(h.requestClients[client.RequestID]) == 0 {
					delete(h.requestClients, client.RequestID)
				}
			}
			h.mutex.Unlock()

			h.logger.WithFields(logrus.Fields{
				"request_id":    client.RequestID,
				"total_clients": len(h.clients),
			}).Info("WebSocket client disconnected")
		}
	}
}

// HandleWebSocket upgrades a progress subscription for one request id.
func (h *Hub) HandleWebSocket(c *gin.Context) {
	requestID := c.Param("request_id")
	if requestID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing request ID"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithError(err).Error("Failed to upgrade WebSocket connection")
		return
	}

	client := &Client{
		RequestID: requestID,
		Conn:      conn,
		Send:      make(chan []byte, 256),
		Hub:       h,
	}

	client.Hub.register <- client

	go client.writePump()
	go client.readPump()
}

// BroadcastToRequest sends a message to every client watching a request.
func (h *Hub) BroadcastToRequest(requestID string, message interface{}) {
	h.mutex.RLock()
	watching := len(h.requestClients[requestID])
	h.mutex.RUnlock()

	if watching == 0 {
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal WebSocket message")
		return
	}

	// The watcher list must be re-read under the lock: a client that
	// unregistered since the count was taken has a closed Send channel.
	h.mutex.RLock()
	for _, client := range h.requestClients[requestID] {
		select {
		case client.Send <- data:
		default:
		}
	}
	h.mutex.RUnlock()
}

// GetConnectionCount returns the total number of active connections
func (h *Hub) GetConnectionCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// readPump pumps messages from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	for {
		_, _, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.WithError(err).Error("WebSocket error")
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			c.Hub.logger.WithError(err).Error("Failed to write WebSocket message")
			return
		}
	}
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}
