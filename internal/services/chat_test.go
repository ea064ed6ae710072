package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"medilink-backend/internal/models"
)

type stubChatStore struct {
	created []*models.ChatMessage
	history []*models.ChatMessage
}

func (s *stubChatStore) Create(ctx context.Context, m *models.ChatMessage) error {
	m.ID = uuid.New()
	s.created = append(s.created, m)
	return nil
}

func (s *stubChatStore) ListByPair(ctx context.Context, doctorID, patientID uuid.UUID) ([]*models.ChatMessage, error) {
	return s.history, nil
}

type stubPairProfiles struct {
	byUser map[uuid.UUID]*models.Profile
	byID   map[uuid.UUID]*models.Profile
	linked bool
}

func (s *stubPairProfiles) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	p, ok := s.byUser[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

func (s *stubPairProfiles) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	p, ok := s.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

func (s *stubPairProfiles) HasActiveLink(ctx context.Context, doctorID, patientID uuid.UUID) (bool, error) {
	return s.linked, nil
}

func chatFixture(linked bool) (*ChatService, *stubChatStore, *stubPublisher, *models.Profile, *models.Profile) {
	doctor := &models.Profile{ID: uuid.New(), UserID: uuid.New(), FullName: "Dr. Aiganym Serik", Role: models.RoleDoctor}
	patient := &models.Profile{ID: uuid.New(), UserID: uuid.New(), FullName: "Bekzat Omarov", Role: models.RolePatient}

	profiles := &stubPairProfiles{
		byUser: map[uuid.UUID]*models.Profile{doctor.UserID: doctor, patient.UserID: patient},
		byID:   map[uuid.UUID]*models.Profile{doctor.ID: doctor, patient.ID: patient},
		linked: linked,
	}
	chats := &stubChatStore{}
	publisher := &stubPublisher{}
	return NewChatService(chats, profiles, publisher), chats, publisher, doctor, patient
}

func TestChatService_ResolvePair(t *testing.T) {
	svc, _, _, doctor, patient := chatFixture(true)

	// Patient initiating toward the doctor.
	pair, err := svc.ResolvePair(context.Background(), patient.UserID, doctor.ID)
	if err != nil {
		t.Fatalf("ResolvePair: %v", err)
	}
	if pair.DoctorID != doctor.ID || pair.PatientID != patient.ID {
		t.Errorf("pair = %+v", pair)
	}

	// Doctor initiating toward the patient lands on the same pair.
	pair2, err := svc.ResolvePair(context.Background(), doctor.UserID, patient.ID)
	if err != nil {
		t.Fatalf("ResolvePair: %v", err)
	}
	if pair2.DoctorID != pair.DoctorID || pair2.PatientID != pair.PatientID {
		t.Errorf("pair mismatch: %+v vs %+v", pair, pair2)
	}
}

func TestChatService_ResolvePair_Rejections(t *testing.T) {
	svc, _, _, doctor, patient := chatFixture(false)

	// No active link.
	_, err := svc.ResolvePair(context.Background(), patient.UserID, doctor.ID)
	var forbidden *ForbiddenError
	if !errors.As(err, &forbidden) {
		t.Errorf("error type = %T, want *ForbiddenError", err)
	}

	// Same-role pair.
	svc2, _, _, doctor2, _ := chatFixture(true)
	_, err = svc2.ResolvePair(context.Background(), doctor.UserID, doctor2.ID)
	if err == nil {
		t.Error("expected error for doctor-to-doctor pair")
	}

	// Unknown counterpart.
	_, err = svc.ResolvePair(context.Background(), patient.UserID, uuid.New())
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("error type = %T, want *NotFoundError", err)
	}
}

func TestChatService_Send(t *testing.T) {
	svc, chats, publisher, doctor, patient := chatFixture(true)

	msg, err := svc.Send(context.Background(), patient.UserID, doctor.ID, "  When should I take the medication?  ")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if msg.Content != "When should I take the medication?" {
		t.Errorf("content = %q", msg.Content)
	}
	if msg.SenderID != patient.ID || msg.SenderName != patient.FullName {
		t.Errorf("sender = %s %q", msg.SenderID, msg.SenderName)
	}
	if len(chats.created) != 1 {
		t.Fatalf("created %d rows, want 1", len(chats.created))
	}

	if len(publisher.channels) != 1 || publisher.channels[0] != PairChannel(doctor.ID, patient.ID) {
		t.Errorf("published channels = %v", publisher.channels)
	}
	if publisher.messages[0].Type != "chat_message" {
		t.Errorf("event type = %q", publisher.messages[0].Type)
	}
}

func TestChatService_Send_EmptyContent(t *testing.T) {
	svc, chats, _, doctor, patient := chatFixture(true)

	_, err := svc.Send(context.Background(), patient.UserID, doctor.ID, "   ")
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}
	if len(chats.created) != 0 {
		t.Error("nothing should be inserted for a blank message")
	}
}

func TestPairChannel(t *testing.T) {
	doctorID := uuid.New()
	patientID := uuid.New()

	ch := PairChannel(doctorID, patientID)
	want := "chat:" + doctorID.String() + ":" + patientID.String()
	if ch != want {
		t.Errorf("PairChannel = %q, want %q", ch, want)
	}
}
