package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"medilink-backend/internal/middleware"
	"medilink-backend/internal/models"
	"medilink-backend/internal/services"
)

type chatService interface {
	Send(ctx context.Context, callerUserID, counterpartID uuid.UUID, content string) (*models.ChatMessage, error)
	History(ctx context.Context, callerUserID, counterpartID uuid.UUID) ([]*models.ChatMessage, error)
	ResolvePair(ctx context.Context, callerUserID, counterpartID uuid.UUID) (*services.ChatPair, error)
}

type ChatHandler struct {
	chat chatService
}

func NewChatHandler(chat chatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// ListMessages returns the conversation with the counterpart profile in
// chronological order.
func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	counterpartID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid profile ID", r))
		return
	}

	userID := middleware.GetUserID(r.Context())
	messages, err := h.chat.History(r.Context(), userID, counterpartID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if messages == nil {
		messages = []*models.ChatMessage{}
	}

	writeJSON(w, http.StatusOK, messages)
}

func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	counterpartID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid profile ID", r))
		return
	}

	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	userID := middleware.GetUserID(r.Context())
	msg, err := h.chat.Send(r.Context(), userID, counterpartID, req.Content)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}
