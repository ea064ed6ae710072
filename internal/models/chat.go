package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one row of the direct doctor-patient conversation. Unlike
// triage Messages, chat rows carry a stable id so the realtime path can
// de-duplicate the sender's own insert when it echoes back over the
// subscription.
type ChatMessage struct {
	ID         uuid.UUID `json:"id"`
	Content    string    `json:"content"`
	SenderID   uuid.UUID `json:"sender_id"`
	SenderName string    `json:"sender_name,omitempty"`
	DoctorID   uuid.UUID `json:"doctor_id"`
	PatientID  uuid.UUID `json:"patient_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// SendMessageRequest is the payload for posting a chat message.
type SendMessageRequest struct {
	Content string `json:"content"`
}

// WSMessage is the envelope for all websocket pushes.
type WSMessage struct {
	Type    string      `json:"type"` // "chat_message" | "report_submitted"
	Payload interface{} `json:"payload"`
}
