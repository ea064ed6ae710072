package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"medilink-backend/internal/middleware"
	"medilink-backend/internal/models"
)

type appointmentRepository interface {
	Create(ctx context.Context, a *models.Appointment) error
	ListForProfile(ctx context.Context, profileID uuid.UUID) ([]*models.Appointment, error)
	Cancel(ctx context.Context, id, profileID uuid.UUID) (int64, error)
}

type linkChecker interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	HasActiveLink(ctx context.Context, doctorID, patientID uuid.UUID) (bool, error)
}

type AppointmentHandler struct {
	appointments appointmentRepository
	profiles     linkChecker
}

func NewAppointmentHandler(appointments appointmentRepository, profiles linkChecker) *AppointmentHandler {
	return &AppointmentHandler{appointments: appointments, profiles: profiles}
}

func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.callerProfile(w, r)
	if !ok {
		return
	}

	appointments, err := h.appointments.ListForProfile(r.Context(), profile.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load appointments", r))
		return
	}
	if appointments == nil {
		appointments = []*models.Appointment{}
	}
	writeJSON(w, http.StatusOK, appointments)
}

// Create books an appointment. Only patients book, and only with a doctor
// they hold an active link to.
func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.callerProfile(w, r)
	if !ok {
		return
	}
	if profile.Role != models.RolePatient {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Only patients can book appointments", r))
		return
	}

	var req models.CreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	fields := map[string]string{}
	if req.DoctorID == uuid.Nil {
		fields["doctor_id"] = "Doctor is required"
	}
	if req.ScheduledAt.IsZero() {
		fields["scheduled_at"] = "Scheduled time is required"
	} else if req.ScheduledAt.Before(time.Now()) {
		fields["scheduled_at"] = "Scheduled time must be in the future"
	}
	if len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Invalid appointment", fields, r))
		return
	}

	linked, err := h.profiles.HasActiveLink(r.Context(), req.DoctorID, profile.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to verify doctor link", r))
		return
	}
	if !linked {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "You are not linked to this doctor", r))
		return
	}

	appointment := &models.Appointment{
		DoctorID:    req.DoctorID,
		PatientID:   profile.ID,
		ScheduledAt: req.ScheduledAt,
		Status:      models.AppointmentStatusScheduled,
		Notes:       req.Notes,
	}
	if err := h.appointments.Create(r.Context(), appointment); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to book appointment", r))
		return
	}

	writeJSON(w, http.StatusCreated, appointment)
}

// Cancel cancels a scheduled appointment the caller participates in.
func (h *AppointmentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.callerProfile(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid appointment ID", r))
		return
	}

	affected, err := h.appointments.Cancel(r.Context(), id, profile.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to cancel appointment", r))
		return
	}
	if affected == 0 {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Appointment not found", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": models.AppointmentStatusCancelled})
}

func (h *AppointmentHandler) callerProfile(w http.ResponseWriter, r *http.Request) (*models.Profile, bool) {
	userID := middleware.GetUserID(r.Context())
	profile, err := h.profiles.GetByUserID(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Profile not found", r))
		return nil, false
	}
	return profile, true
}
