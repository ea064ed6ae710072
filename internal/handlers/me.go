package handlers

import (
	"net/http"

	"medilink-backend/internal/middleware"
)

type MeHandler struct {
	profiles profileRepository
}

func NewMeHandler(profiles profileRepository) *MeHandler {
	return &MeHandler{profiles: profiles}
}

func (h *MeHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	profile, err := h.profiles.GetByUserID(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Profile not found", r))
		return
	}

	writeJSON(w, http.StatusOK, profile)
}
