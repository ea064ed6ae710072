package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile roles.
const (
	RoleDoctor  = "doctor"
	RolePatient = "patient"
)

// Profile is the directory record for a doctor or patient. UserID links the
// profile to the authenticated identity carried in the JWT.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Specialty *string   `json:"specialty,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// DoctorLink is an active doctor-patient relationship.
type DoctorLink struct {
	DoctorID  uuid.UUID `json:"doctor_id"`
	PatientID uuid.UUID `json:"patient_id"`
	Status    string    `json:"status"` // "active" | "inactive"
	CreatedAt time.Time `json:"created_at"`
}
