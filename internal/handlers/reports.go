package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"medilink-backend/internal/middleware"
	"medilink-backend/internal/models"
)

type reportRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.SymptomReport, error)
	ListByStatus(ctx context.Context, status string) ([]*models.SymptomReport, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*models.SymptomReport, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

type ReportHandler struct {
	reports  reportRepository
	profiles profileRepository
}

func NewReportHandler(reports reportRepository, profiles profileRepository) *ReportHandler {
	return &ReportHandler{reports: reports, profiles: profiles}
}

var validReportStatuses = map[string]bool{
	models.ReportStatusPendingReview: true,
	models.ReportStatusInReview:      true,
	models.ReportStatusReviewed:      true,
}

// ListQueue is the doctor-side review queue, filtered by status
// (default pending_review).
func (h *ReportHandler) ListQueue(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, models.RoleDoctor) {
		return
	}

	status := r.URL.Query().Get("status")
	if status == "" {
		status = models.ReportStatusPendingReview
	}
	if !validReportStatuses[status] {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid report status", r))
		return
	}

	reports, err := h.reports.ListByStatus(r.Context(), status)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load reports", r))
		return
	}
	if reports == nil {
		reports = []*models.SymptomReport{}
	}
	writeJSON(w, http.StatusOK, reports)
}

// Get returns a full report with its triage transcript. Doctors see any
// report; patients only their own.
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.callerProfile(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid report ID", r))
		return
	}

	report, err := h.reports.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Report not found", r))
		return
	}

	if profile.Role != models.RoleDoctor && report.PatientID != profile.ID {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "You cannot view this report", r))
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// ListMine lists the calling patient's own reports, newest first.
func (h *ReportHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.callerProfile(w, r)
	if !ok {
		return
	}

	reports, err := h.reports.ListByPatient(r.Context(), profile.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load reports", r))
		return
	}
	if reports == nil {
		reports = []*models.SymptomReport{}
	}
	writeJSON(w, http.StatusOK, reports)
}

// UpdateStatus moves a report through the review flow. Doctor only.
func (h *ReportHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, models.RoleDoctor) {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid report ID", r))
		return
	}

	var req models.UpdateReportStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !validReportStatuses[req.Status] {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid report status", r))
		return
	}

	if _, err := h.reports.GetByID(r.Context(), id); err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Report not found", r))
		return
	}

	if err := h.reports.UpdateStatus(r.Context(), id, req.Status); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to update report", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": id.String(), "status": req.Status})
}

func (h *ReportHandler) callerProfile(w http.ResponseWriter, r *http.Request) (*models.Profile, bool) {
	userID := middleware.GetUserID(r.Context())
	profile, err := h.profiles.GetByUserID(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Profile not found", r))
		return nil, false
	}
	return profile, true
}

func (h *ReportHandler) requireRole(w http.ResponseWriter, r *http.Request, role string) bool {
	profile, ok := h.callerProfile(w, r)
	if !ok {
		return false
	}
	if profile.Role != role {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Insufficient permissions", r))
		return false
	}
	return true
}
