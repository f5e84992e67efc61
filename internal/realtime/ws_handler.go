package realtime

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"linkup/internal/auth"
	"linkup/internal/message"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type WSHandler struct {
	bridge *Bridge
	logger *slog.Logger
}

func NewWSHandler(bridge *Bridge, logger *slog.Logger) *WSHandler {
	return &WSHandler{bridge: bridge, logger: logger}
}

// StreamConversation upgrades the request and forwards new messages in the
// conversation to the client until it disconnects.
func (h *WSHandler) StreamConversation(w http.ResponseWriter, r *http.Request) {
	conversationID := mux.Vars(r)["id"]

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer ws.Close()

	// Slow clients get dropped rather than blocking the bridge.
	outbound := make(chan []byte, 64)
	sub, err := h.bridge.SubscribeToConversation(conversationID, func(msg *message.EnrichedMessage) {
		payload, err := json.Marshal(msg)
		if err != nil {
			return
		}
		select {
		case outbound <- payload:
		default:
			h.logger.Warn("dropping event for slow websocket client", "conversation_id", conversationID)
		}
	})
	if err != nil {
		h.logger.Error("failed to open change stream", "conversation_id", conversationID, "error", err)
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "stream unavailable"),
			time.Now().Add(writeWait))
		return
	}
	defer sub.Cancel()

	h.pump(ws, outbound)
}

// StreamUserConversations upgrades the request and forwards changes to any
// conversation the authenticated user participates in.
func (h *WSHandler) StreamUserConversations(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer ws.Close()

	outbound := make(chan []byte, 64)
	sub, err := h.bridge.SubscribeToUserConversations(userID, func(change ConversationChange) {
		payload, err := json.Marshal(change)
		if err != nil {
			return
		}
		select {
		case outbound <- payload:
		default:
			h.logger.Warn("dropping event for slow websocket client", "user_id", userID)
		}
	})
	if err != nil {
		h.logger.Error("failed to open change stream", "user_id", userID, "error", err)
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "stream unavailable"),
			time.Now().Add(writeWait))
		return
	}
	defer sub.Cancel()

	h.pump(ws, outbound)
}

// pump writes outbound payloads and pings until the client goes away.
func (h *WSHandler) pump(ws *websocket.Conn, outbound <-chan []byte) {
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case payload := <-outbound:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SetupWSRoutes Helper function to set up routes
func SetupWSRoutes(r *mux.Router, h *WSHandler) {
	r.HandleFunc("/conversations/{id}/stream", h.StreamConversation).Methods("GET")
	r.HandleFunc("/conversations/stream", h.StreamUserConversations).Methods("GET")
}
