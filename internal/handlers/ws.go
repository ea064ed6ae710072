package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"medilink-backend/internal/middleware"
	"medilink-backend/internal/services"
	"medilink-backend/internal/websocket"
)

// WSHandler authenticates websocket upgrades and hands the connection to the
// hub. Browsers cannot set an Authorization header on the upgrade request, so
// the token travels as a query parameter.
type WSHandler struct {
	hub  *websocket.Hub
	auth *middleware.JWTAuth
	chat chatService
}

func NewWSHandler(hub *websocket.Hub, auth *middleware.JWTAuth, chat chatService) *WSHandler {
	return &WSHandler{hub: hub, auth: auth, chat: chat}
}

// ChatSocket subscribes the caller to the INSERT stream of one doctor/patient
// conversation.
func (h *WSHandler) ChatSocket(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	userID, err := h.auth.ParseUserID(tokenStr)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	counterpartID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid profile ID", http.StatusBadRequest)
		return
	}

	pair, err := h.chat.ResolvePair(r.Context(), userID, counterpartID)
	if err != nil {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	h.hub.Serve(w, r, services.PairChannel(pair.DoctorID, pair.PatientID))
}

// UpdatesSocket subscribes the caller to their own update channel
// (report_submitted events for doctors).
func (h *WSHandler) UpdatesSocket(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	userID, err := h.auth.ParseUserID(tokenStr)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	h.hub.Serve(w, r, services.UserChannel(userID))
}
