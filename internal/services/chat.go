package services

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"

	"medilink-backend/internal/models"
)

type chatStore interface {
	Create(ctx context.Context, m *models.ChatMessage) error
	ListByPair(ctx context.Context, doctorID, patientID uuid.UUID) ([]*models.ChatMessage, error)
}

type pairProfileStore interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	HasActiveLink(ctx context.Context, doctorID, patientID uuid.UUID) (bool, error)
}

// ChatPair is a resolved, authorized doctor/patient conversation.
type ChatPair struct {
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	Sender    *models.Profile
}

// ChatService handles the direct doctor-patient message flow: rows are
// inserted into the store and echoed to subscribers over the pair's pub/sub
// channel.
type ChatService struct {
	chats     chatStore
	profiles  pairProfileStore
	publisher updatePublisher
}

func NewChatService(chats chatStore, profiles pairProfileStore, publisher updatePublisher) *ChatService {
	return &ChatService{chats: chats, profiles: profiles, publisher: publisher}
}

// ResolvePair maps the caller and a counterpart profile id onto the
// (doctor, patient) pair, whichever side the caller is on, and verifies an
// active treatment link.
func (s *ChatService) ResolvePair(ctx context.Context, callerUserID, counterpartID uuid.UUID) (*ChatPair, error) {
	caller, err := s.profiles.GetByUserID(ctx, callerUserID)
	if err != nil {
		return nil, &NotFoundError{Message: "Profile not found"}
	}

	counterpart, err := s.profiles.GetByID(ctx, counterpartID)
	if err != nil {
		return nil, &NotFoundError{Message: "Chat partner not found"}
	}

	pair := &ChatPair{Sender: caller}
	switch {
	case caller.Role == models.RolePatient && counterpart.Role == models.RoleDoctor:
		pair.DoctorID = counterpart.ID
		pair.PatientID = caller.ID
	case caller.Role == models.RoleDoctor && counterpart.Role == models.RolePatient:
		pair.DoctorID = caller.ID
		pair.PatientID = counterpart.ID
	default:
		return nil, &ValidationError{Fields: map[string]string{"counterpart": "A chat requires one doctor and one patient"}}
	}

	linked, err := s.profiles.HasActiveLink(ctx, pair.DoctorID, pair.PatientID)
	if err != nil {
		return nil, err
	}
	if !linked {
		return nil, &ForbiddenError{Message: "No active doctor-patient relationship"}
	}
	return pair, nil
}

// Send inserts a chat row and publishes it on the pair channel. The insert is
// authoritative; the publish is best effort because subscribers also read the
// row back on their next history load.
func (s *ChatService) Send(ctx context.Context, callerUserID, counterpartID uuid.UUID, content string) (*models.ChatMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, &ValidationError{Fields: map[string]string{"content": "Message content is required"}}
	}

	pair, err := s.ResolvePair(ctx, callerUserID, counterpartID)
	if err != nil {
		return nil, err
	}

	msg := &models.ChatMessage{
		Content:    content,
		SenderID:   pair.Sender.ID,
		SenderName: pair.Sender.FullName,
		DoctorID:   pair.DoctorID,
		PatientID:  pair.PatientID,
	}
	if err := s.chats.Create(ctx, msg); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		event := models.WSMessage{Type: "chat_message", Payload: msg}
		if err := s.publisher.Publish(ctx, PairChannel(pair.DoctorID, pair.PatientID), event); err != nil {
			log.Printf("chat: failed to publish message %s: %v", msg.ID, err)
		}
	}
	return msg, nil
}

// History returns the pair's conversation in chronological order.
func (s *ChatService) History(ctx context.Context, callerUserID, counterpartID uuid.UUID) ([]*models.ChatMessage, error) {
	pair, err := s.ResolvePair(ctx, callerUserID, counterpartID)
	if err != nil {
		return nil, err
	}
	return s.chats.ListByPair(ctx, pair.DoctorID, pair.PatientID)
}
