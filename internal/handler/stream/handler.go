package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/cloudwego/eino/schema"

	"github.com/empathai/backend/internal/service/ai"
	chatservice "github.com/empathai/backend/internal/service/chat"
	"github.com/empathai/backend/pkg/utils"
)

// Handler streams chat turns over Server-Sent Events.
type Handler struct {
	aiSvc   *ai.Service
	chatSvc *chatservice.Service
}

// New creates the stream handler.
func New(aiSvc *ai.Service, chatSvc *chatservice.Service) *Handler {
	return &Handler{aiSvc: aiSvc, chatSvc: chatSvc}
}

// Event is one streamed response frame.
type Event struct {
	Event     string `json:"event"`
	Content   string `json:"content,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Emotion   string `json:"emotion,omitempty"`
	Tone      string `json:"tone,omitempty"`
	Finished  bool   `json:"finished,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ServeHTTP handles GET /chat/stream?user_id=&message=&session_id=.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req := chatservice.TurnRequest{
		UserID:    r.URL.Query().Get("user_id"),
		Message:   r.URL.Query().Get("message"),
		SessionID: r.URL.Query().Get("session_id"),
	}
	if req.UserID == "" {
		utils.RespondError(w, http.StatusBadRequest, "user_id query parameter is required")
		return
	}
	if req.Message == "" {
		utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	ctx := r.Context()
	tc, err := h.chatSvc.PrepareTurn(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, chatservice.ErrUserRequired), errors.Is(err, chatservice.ErrMessageRequired):
			utils.RespondError(w, http.StatusBadRequest, err.Error())
		default:
			utils.RespondError(w, http.StatusInternalServerError, "failed to prepare turn")
		}
		return
	}

	utils.SetupSSEHeaders(w)
	sessionID := tc.Conversation.SessionID

	utils.SendSSEChunk(w, flusher, Event{Event: "start", SessionID: sessionID})

	reply, err := h.dispatchReply(ctx, w, flusher, tc, sessionID)
	if err != nil {
		log.Printf("[stream] generation failed for session=%s: %v", sessionID, err)
		utils.SendSSEChunk(w, flusher, Event{Event: "error", Error: "llm provider unavailable"})
		return
	}

	result, err := h.chatSvc.CompleteTurn(ctx, tc, reply)
	if err != nil {
		log.Printf("[stream] failed to persist turn for session=%s: %v", sessionID, err)
		utils.SendSSEChunk(w, flusher, Event{Event: "error", Error: "failed to persist turn"})
		return
	}

	utils.SendSSEChunk(w, flusher, Event{
		Event:     "emotion",
		SessionID: sessionID,
		Emotion:   result.Emotion,
		Tone:      result.Tone,
	})
	utils.SendSSEChunk(w, flusher, Event{Event: "end", SessionID: sessionID, Finished: true})

	log.Printf("[stream] completed turn for session=%s", sessionID)
}

// dispatchReply streams chunks when the provider supports it, falling back
// to a single message frame otherwise.
func (h *Handler) dispatchReply(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, tc *chatservice.TurnContext, sessionID string) (string, error) {
	if !h.aiSvc.StreamingEnabled() {
		reply, err := h.aiSvc.Generate(ctx, tc.Memories, tc.History, tc.UserMessage, tc.Emotion, tc.Tone)
		if err != nil {
			return "", err
		}
		utils.SendSSEChunk(w, flusher, Event{Event: "message", SessionID: sessionID, Content: reply})
		return reply, nil
	}

	stream, err := h.aiSvc.StreamReply(ctx, tc.Memories, tc.History, tc.UserMessage, tc.Emotion, tc.Tone)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	chunks := make([]*schema.Message, 0, 8)
	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return "", recvErr
		}
		if chunk == nil {
			continue
		}

		chunks = append(chunks, chunk)
		if chunk.Content != "" {
			utils.SendSSEChunk(w, flusher, Event{Event: "delta", SessionID: sessionID, Content: chunk.Content})
		}
	}

	response, err := schema.ConcatMessages(chunks)
	if err != nil {
		return "", fmt.Errorf("concat stream chunks: %w", err)
	}

	utils.SendSSEChunk(w, flusher, Event{Event: "message", SessionID: sessionID, Content: response.Content})
	return response.Content, nil
}
