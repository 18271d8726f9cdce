// Package notify owns the realtime connection registry: it binds opaque
// connection ids to authenticated users and pushes debate and
// matchmaking events to them over their persistent connections.
package notify

import (
	"sync"

	"github.com/google/uuid"
	"github.com/neo/debatearena_backend/internal/logging"
)

// Event types pushed to clients
const (
	EventConnectionAck  = "connectionAck"
	EventMatchmaking    = "matchmaking"
	EventMatchFound     = "matchFound"
	EventYourTurn       = "yourTurn"
	EventDebateComplete = "debateComplete"
)

// Envelope is the wire message format in both directions
type Envelope struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Conn is the write half of a client connection. *websocket.Conn
// satisfies it; tests substitute an in-memory implementation.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Client is one registered connection. A client may be anonymous until
// an authenticate message binds a user id; the binding does not survive
// a reconnect.
type Client struct {
	ID      string
	conn    Conn
	userID  string
	writeMu sync.Mutex
}

// send serializes writes per connection
func (c *Client) send(envelope Envelope) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(envelope)
}

// Hub is the connection registry. It is created at server start and
// holds all realtime state in memory for the lifetime of the process.
type Hub struct {
	mu           sync.RWMutex
	clients      map[string]*Client
	matchmaking  map[string]struct{}
	onDisconnect func(userID string)
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		clients:     make(map[string]*Client),
		matchmaking: make(map[string]struct{}),
	}
}

// SetDisconnectHandler registers the callback invoked with the bound
// user id when an authenticated connection closes. Used to treat a
// disconnect as an implicit matchmaking leave.
func (h *Hub) SetDisconnectHandler(fn func(userID string)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onDisconnect = fn
}

// Register adds a connection to the registry, assigns it an id and
// sends the connection acknowledgement
func (h *Hub) Register(conn Conn) *Client {
	client := &Client{
		ID:   uuid.New().String(),
		conn: conn,
	}

	h.mu.Lock()
	h.clients[client.ID] = client
	h.mu.Unlock()

	logging.LogWebSocketEvent("connection_registered", client.ID, nil)

	if err := client.send(Envelope{Type: EventConnectionAck, Payload: map[string]interface{}{
		"connectionId": client.ID,
	}}); err != nil {
		logging.LogWebSocketEvent("connection_ack_failed", client.ID, map[string]interface{}{
			"error": err.Error(),
		})
	}

	return client
}

// Unregister drops a connection from all registries. If the connection
// was authenticated the disconnect handler is invoked with the bound
// user so the matchmaking queue never keeps a gone user.
func (h *Hub) Unregister(connectionID string) {
	h.mu.Lock()
	client, exists := h.clients[connectionID]
	delete(h.clients, connectionID)
	delete(h.matchmaking, connectionID)
	handler := h.onDisconnect
	h.mu.Unlock()

	if !exists {
		return
	}

	logging.LogWebSocketEvent("connection_closed", connectionID, map[string]interface{}{
		"user_id": client.userID,
	})

	if client.userID != "" && handler != nil {
		handler(client.userID)
	}
}

// Authenticate binds a user id to a connection. Clients must re-send
// authenticate after every physical reconnect.
func (h *Hub) Authenticate(connectionID, userID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, exists := h.clients[connectionID]
	if !exists {
		return false
	}
	client.userID = userID

	logging.LogWebSocketEvent("connection_authenticated", connectionID, map[string]interface{}{
		"user_id": userID,
	})
	return true
}

// SendToUser delivers an event to every currently open connection bound
// to the user, supporting multiple tabs and devices
func (h *Hub) SendToUser(userID string, eventType string, payload interface{}) {
	h.mu.RLock()
	var targets []*Client
	for _, client := range h.clients {
		if client.userID == userID {
			targets = append(targets, client)
		}
	}
	h.mu.RUnlock()

	envelope := Envelope{Type: eventType, Payload: payload}
	for _, client := range targets {
		if err := client.send(envelope); err != nil {
			logging.LogWebSocketEvent("send_failed", client.ID, map[string]interface{}{
				"user_id": userID,
				"event":   eventType,
				"error":   err.Error(),
			})
		}
	}
}

// BroadcastMatchmaking delivers a matchmaking event to every subscribed
// connection
func (h *Hub) BroadcastMatchmaking(payload interface{}) {
	h.mu.RLock()
	var targets []*Client
	for id := range h.matchmaking {
		if client, ok := h.clients[id]; ok {
			targets = append(targets, client)
		}
	}
	h.mu.RUnlock()

	envelope := Envelope{Type: EventMatchmaking, Payload: payload}
	for _, client := range targets {
		if err := client.send(envelope); err != nil {
			logging.LogWebSocketEvent("broadcast_failed", client.ID, map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}

// SubscribeToMatchmaking adds a connection to the matchmaking broadcast set
func (h *Hub) SubscribeToMatchmaking(connectionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[connectionID]; ok {
		h.matchmaking[connectionID] = struct{}{}
	}
}

// UnsubscribeFromMatchmaking removes a connection from the matchmaking
// broadcast set
func (h *Hub) UnsubscribeFromMatchmaking(connectionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.matchmaking, connectionID)
}

// ConnectionCount returns the number of registered connections
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close drops every connection; used on server shutdown
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.clients = make(map[string]*Client)
	h.matchmaking = make(map[string]struct{})
	h.mu.Unlock()

	for _, client := range clients {
		client.conn.Close()
	}
}
