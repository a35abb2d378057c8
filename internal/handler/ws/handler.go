package ws

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	chatservice "github.com/empathai/backend/internal/service/chat"
)

// Handler carries chat turns over a WebSocket connection: one inbound chat
// frame produces one reply frame, so a client can hold a single connection
// for an entire session.
type Handler struct {
	chatSvc  *chatservice.Service
	upgrader websocket.Upgrader
}

// New creates the WebSocket chat handler.
func New(chatSvc *chatservice.Service) *Handler {
	return &Handler{
		chatSvc: chatSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

type inboundFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type outboundFrame struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// ServeHTTP upgrades the connection and enters the read loop.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[ws] connection established remote=%s", conn.RemoteAddr())

	for {
		var frame inboundFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[ws] read failed: %v", err)
			}
			return
		}

		switch frame.Type {
		case "chat":
			h.handleChatFrame(r, conn, frame.Data)
		case "ping":
			h.send(conn, outboundFrame{Type: "pong"})
		default:
			h.send(conn, outboundFrame{Type: "error", Error: "unknown frame type"})
		}
	}
}

func (h *Handler) handleChatFrame(r *http.Request, conn *websocket.Conn, data json.RawMessage) {
	var req chatservice.TurnRequest
	if err := json.Unmarshal(data, &req); err != nil {
		h.send(conn, outboundFrame{Type: "error", Error: "invalid chat payload"})
		return
	}

	result, err := h.chatSvc.TakeTurn(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, chatservice.ErrUserRequired), errors.Is(err, chatservice.ErrMessageRequired):
			h.send(conn, outboundFrame{Type: "error", Error: err.Error()})
		case errors.Is(err, chatservice.ErrProvider):
			h.send(conn, outboundFrame{Type: "error", Error: "llm provider unavailable"})
		default:
			h.send(conn, outboundFrame{Type: "error", Error: "chat turn failed"})
		}
		return
	}

	h.send(conn, outboundFrame{Type: "reply", Data: result})
}

func (h *Handler) send(conn *websocket.Conn, frame outboundFrame) {
	frame.Timestamp = time.Now().UnixMilli()
	if err := conn.WriteJSON(frame); err != nil {
		log.Printf("[ws] write failed: %v", err)
	}
}
