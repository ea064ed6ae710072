package models

import (
	"time"

	"github.com/google/uuid"
)

// Message roles. Ordering of messages in a transcript is append-only and
// chronological; position is the only identifier the triage flow needs.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single role-tagged turn in a triage transcript.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatHistory is one persisted transcript snapshot. Every save creates a new
// record; the most recent record for a user is the active session on reload.
type ChatHistory struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
}

// Triage session states.
const (
	TriageStateActive          = "active"
	TriageStateConsultOffered  = "consult_offered"
	TriageStateReportSubmitted = "report_submitted"
)

// TriageMessageRequest is the payload for sending a symptom-check message.
type TriageMessageRequest struct {
	Message string `json:"message"`
}

// TriageImageRequest is the payload for submitting a symptom image.
type TriageImageRequest struct {
	ImageURL string `json:"image_url"`
}

// TriageReply is returned after each assistant turn.
type TriageReply struct {
	Reply                string    `json:"reply"`
	Transcript           []Message `json:"transcript"`
	State                string    `json:"state"`
	ConsultOffered       bool      `json:"consult_offered"`
	ConsultationComplete bool      `json:"consultation_complete"`
	FinalReport          *string   `json:"final_report,omitempty"`
}

// TriageSessionResponse is the reload view of the active session.
type TriageSessionResponse struct {
	Transcript []Message `json:"transcript"`
	State      string    `json:"state"`
}
