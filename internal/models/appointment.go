package models

import (
	"time"

	"github.com/google/uuid"
)

// Appointment states.
const (
	AppointmentStatusScheduled = "scheduled"
	AppointmentStatusCancelled = "cancelled"
	AppointmentStatusCompleted = "completed"
)

type Appointment struct {
	ID          uuid.UUID `json:"id"`
	DoctorID    uuid.UUID `json:"doctor_id"`
	PatientID   uuid.UUID `json:"patient_id"`
	DoctorName  string    `json:"doctor_name,omitempty"`
	PatientName string    `json:"patient_name,omitempty"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Status      string    `json:"status"`
	Notes       *string   `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateAppointmentRequest is the patient-side booking payload.
type CreateAppointmentRequest struct {
	DoctorID    uuid.UUID `json:"doctor_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Notes       *string   `json:"notes,omitempty"`
}
