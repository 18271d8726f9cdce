package server

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/neo/debatearena_backend/internal/logging"
	"github.com/neo/debatearena_backend/internal/matchmaking"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is enforced at the HTTP layer
	},
}

// inboundMessage is a client-to-server envelope. The payload is decoded
// per message type.
type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type authenticatePayload struct {
	UserID string `json:"userId"`
}

type joinMatchmakingPayload struct {
	UserID            string  `json:"userId"`
	MinLevel          int     `json:"minLevel"`
	MaxLevel          int     `json:"maxLevel"`
	PreferredTopicIDs []int64 `json:"preferredTopicIds"`
}

type leaveMatchmakingPayload struct {
	UserID string `json:"userId"`
}

// handleWebSocket upgrades the connection, registers it with the hub
// and runs the read loop until the client goes away. Unregistering
// triggers the implicit matchmaking leave for authenticated clients.
func (s *Server) handleWebSocket(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Error("Websocket upgrade failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	client := s.hub.Register(ws)
	defer func() {
		s.hub.Unregister(client.ID)
		ws.Close()
	}()

	for {
		var msg inboundMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.LogWebSocketEvent("read_error", client.ID, map[string]interface{}{
					"error": err.Error(),
				})
			}
			return
		}

		s.dispatchMessage(client.ID, msg)
	}
}

// dispatchMessage routes one inbound envelope. Malformed payloads are
// logged and dropped; a bad message must never kill the connection.
func (s *Server) dispatchMessage(connectionID string, msg inboundMessage) {
	switch msg.Type {
	case "authenticate":
		var payload authenticatePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.UserID == "" {
			logging.LogWebSocketEvent("bad_payload", connectionID, map[string]interface{}{
				"type": msg.Type,
			})
			return
		}
		s.hub.Authenticate(connectionID, payload.UserID)

	case "joinMatchmaking":
		var payload joinMatchmakingPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.UserID == "" {
			logging.LogWebSocketEvent("bad_payload", connectionID, map[string]interface{}{
				"type": msg.Type,
			})
			return
		}
		s.hub.SubscribeToMatchmaking(connectionID)
		if err := s.engine.Join(payload.UserID, matchmaking.Options{
			MinLevel:          payload.MinLevel,
			MaxLevel:          payload.MaxLevel,
			PreferredTopicIDs: payload.PreferredTopicIDs,
		}); err != nil {
			logging.Error("Matchmaking join failed", map[string]interface{}{
				"user_id": payload.UserID,
				"error":   err.Error(),
			})
		}

	case "leaveMatchmaking":
		var payload leaveMatchmakingPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.UserID == "" {
			return
		}
		s.hub.UnsubscribeFromMatchmaking(connectionID)
		if err := s.engine.Leave(payload.UserID); err != nil {
			logging.Error("Matchmaking leave failed", map[string]interface{}{
				"user_id": payload.UserID,
				"error":   err.Error(),
			})
		}

	case "subscribeToDebate":
		// Debate events are addressed to the bound user, so an
		// authenticated connection already receives them.
		var payload struct {
			DebateID string `json:"debateId"`
		}
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return
		}
		logging.LogWebSocketEvent("debate_subscribed", connectionID, map[string]interface{}{
			"debate_id": payload.DebateID,
		})

	case "ping":
		// Clients ping to keep intermediaries from idling the socket

	default:
		logging.LogWebSocketEvent("unknown_message", connectionID, map[string]interface{}{
			"type": msg.Type,
		})
	}
}
