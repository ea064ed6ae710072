package models

import (
	"time"

	"github.com/google/uuid"
)

// Symptom report review states.
const (
	ReportStatusPendingReview = "pending_review"
	ReportStatusInReview      = "in_review"
	ReportStatusReviewed      = "reviewed"
)

// SymptomReport is the escalation record created when a triage session is
// handed over to a human doctor. Created exactly once per escalation; the
// report content and transcript are immutable after creation, only the review
// status moves.
type SymptomReport struct {
	ID            uuid.UUID `json:"id"`
	PatientID     uuid.UUID `json:"patient_id"`
	ReportContent string    `json:"report_content"`
	ChatHistory   []Message `json:"chat_history"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// UpdateReportStatusRequest is the doctor-side review transition payload.
type UpdateReportStatusRequest struct {
	Status string `json:"status"`
}
