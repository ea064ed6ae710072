package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"medilink-backend/internal/middleware"
	"medilink-backend/internal/models"
)

type profileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	ListDoctors(ctx context.Context) ([]*models.Profile, error)
	ListDoctorsForPatient(ctx context.Context, patientID uuid.UUID) ([]*models.Profile, error)
}

type DoctorHandler struct {
	profiles profileRepository
}

func NewDoctorHandler(profiles profileRepository) *DoctorHandler {
	return &DoctorHandler{profiles: profiles}
}

// List is the public doctor directory.
func (h *DoctorHandler) List(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.profiles.ListDoctors(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load doctors", r))
		return
	}
	if doctors == nil {
		doctors = []*models.Profile{}
	}
	writeJSON(w, http.StatusOK, doctors)
}

func (h *DoctorHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid doctor ID", r))
		return
	}

	doctor, err := h.profiles.GetByID(r.Context(), id)
	if err != nil || doctor.Role != models.RoleDoctor {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Doctor not found", r))
		return
	}

	writeJSON(w, http.StatusOK, doctor)
}

// MyDoctors lists the doctors actively linked to the calling patient.
func (h *DoctorHandler) MyDoctors(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	profile, err := h.profiles.GetByUserID(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Profile not found", r))
		return
	}

	doctors, err := h.profiles.ListDoctorsForPatient(r.Context(), profile.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load doctors", r))
		return
	}
	if doctors == nil {
		doctors = []*models.Profile{}
	}
	writeJSON(w, http.StatusOK, doctors)
}
