package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"medilink-backend/internal/middleware"
	"medilink-backend/internal/models"
)

// triageService is the slice of TriageService the handlers need; tests
// substitute a stub.
type triageService interface {
	LoadSession(ctx context.Context, userID uuid.UUID) []models.Message
	SendMessage(ctx context.Context, userID uuid.UUID, text string) (*models.TriageReply, error)
	AnalyzeImage(ctx context.Context, userID uuid.UUID, imageURL string) (*models.TriageReply, error)
	RequestConsultation(ctx context.Context, userID uuid.UUID) (*models.SymptomReport, error)
}

type TriageHandler struct {
	triage triageService
}

func NewTriageHandler(triage triageService) *TriageHandler {
	return &TriageHandler{triage: triage}
}

// GetSession returns the reloaded transcript for the caller. A fresh session
// (no history) is an empty transcript, not an error.
func (h *TriageHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	transcript := h.triage.LoadSession(r.Context(), userID)
	if transcript == nil {
		transcript = []models.Message{}
	}

	writeJSON(w, http.StatusOK, models.TriageSessionResponse{
		Transcript: transcript,
		State:      models.TriageStateActive,
	})
}

func (h *TriageHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req models.TriageMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	userID := middleware.GetUserID(r.Context())
	reply, err := h.triage.SendMessage(r.Context(), userID, req.Message)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

func (h *TriageHandler) AnalyzeImage(w http.ResponseWriter, r *http.Request) {
	var req models.TriageImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	userID := middleware.GetUserID(r.Context())
	reply, err := h.triage.AnalyzeImage(r.Context(), userID, req.ImageURL)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

func (h *TriageHandler) RequestConsultation(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	report, err := h.triage.RequestConsultation(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, report)
}
