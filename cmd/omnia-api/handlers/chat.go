// Package handlers provides HTTP handlers for the OmnIA chat API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/omnia-ai/omnia/libs/chat-engine/cmd/omnia-api/middleware"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/chat"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/dialog"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/observability"
)

// MaxBodyBytes bounds a chat request body.
const MaxBodyBytes = 1 << 20

// Chatter runs one chat turn.
type Chatter interface {
	Chat(ctx context.Context, message string, history []dialog.Message, scopeID string) (*chat.Response, error)
}

// ChatHandler handles chat requests.
type ChatHandler struct {
	logger *observability.Logger
	engine Chatter
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(logger *observability.Logger, engine Chatter) *ChatHandler {
	return &ChatHandler{logger: logger, engine: engine}
}

// ChatRequestDTO is the request body for a chat turn. Message is accepted as an
// alias of UserMessage.
type ChatRequestDTO struct {
	UserMessage string           `json:"userMessage"`
	Message     string           `json:"message,omitempty"`
	History     []dialog.Message `json:"history,omitempty"`
	StoreID     string           `json:"storeId,omitempty"`
	SellerID    string           `json:"sellerId,omitempty"`
}

func (d ChatRequestDTO) text() string {
	if strings.TrimSpace(d.UserMessage) != "" {
		return d.UserMessage
	}
	return d.Message
}

func (d ChatRequestDTO) scope() string {
	if id := strings.TrimSpace(d.StoreID); id != "" {
		return id
	}
	return strings.TrimSpace(d.SellerID)
}

// Chat handles POST /chat.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ChatRequestDTO
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes)).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	scopeID := req.scope()
	if scopeID == "" {
		scopeID = middleware.ScopeFromContext(ctx)
	}

	resp, err := h.engine.Chat(ctx, req.text(), req.History, scopeID)
	if errors.Is(err, chat.ErrEmptyMessage) {
		h.writeError(w, http.StatusBadRequest, "userMessage is required", "")
		return
	}
	if err != nil {
		h.logger.WithContext(ctx).Error().Err(err).Msg("Chat turn failed")
		h.writeError(w, http.StatusInternalServerError, "chat failed", err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *ChatHandler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

// writeError keeps the {error} shape for client errors and adds message on 5xx.
func (h *ChatHandler) writeError(w http.ResponseWriter, status int, message, detail string) {
	resp := map[string]string{"error": message}
	if status >= http.StatusInternalServerError {
		resp["message"] = detail
	} else if detail != "" {
		resp["detail"] = detail
	}
	h.writeJSON(w, status, resp)
}
