package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"medilink-backend/internal/models"
)

type completionClient interface {
	Complete(ctx context.Context, transcript []models.Message) (string, error)
	AnalyzeImage(ctx context.Context, imageURL string) (string, error)
}

type historyStore interface {
	Create(ctx context.Context, h *models.ChatHistory) error
	GetLatestByUser(ctx context.Context, userID uuid.UUID) (*models.ChatHistory, error)
}

type profileStore interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	ListDoctorsForPatient(ctx context.Context, patientID uuid.UUID) ([]*models.Profile, error)
}

type reportStore interface {
	Create(ctx context.Context, rep *models.SymptomReport) error
}

type historyQueue interface {
	Enqueue(ctx context.Context, h *models.ChatHistory) error
}

type updatePublisher interface {
	Publish(ctx context.Context, channel string, msg models.WSMessage) error
}

// TriageService orchestrates the symptom-check flow: transcript loading,
// the completion round-trip, escalation classification, fire-and-forget
// persistence, and report submission.
type TriageService struct {
	completion completionClient
	history    historyStore
	profiles   profileStore
	reports    reportStore
	queue      historyQueue
	publisher  updatePublisher

	// One outstanding completion call per owner. The guard replaces the UI
	// busy flag: a second send while one is in flight is rejected, never
	// interleaved.
	mu       sync.Mutex
	inFlight map[uuid.UUID]struct{}

	// sessions holds the live transcript per owner. Persistence through the
	// queue is asynchronous, so the store can lag the session; serving sends
	// from memory keeps a completed exchange from being superseded by a
	// stale snapshot. The store is the cold-start fallback only.
	sessions map[uuid.UUID][]models.Message
}

func NewTriageService(
	completion completionClient,
	history historyStore,
	profiles profileStore,
	reports reportStore,
	queue historyQueue,
	publisher updatePublisher,
) *TriageService {
	return &TriageService{
		completion: completion,
		history:    history,
		profiles:   profiles,
		reports:    reports,
		queue:      queue,
		publisher:  publisher,
		inFlight:   make(map[uuid.UUID]struct{}),
		sessions:   make(map[uuid.UUID][]models.Message),
	}
}

// LoadSession returns the live transcript for the owner. A missing session,
// or a failed store load, starts an empty one; load failures are logged but
// never block a new session.
func (s *TriageService) LoadSession(ctx context.Context, userID uuid.UUID) []models.Message {
	if userID == uuid.Nil {
		return nil
	}

	msgs, err := s.transcript(ctx, userID)
	if err != nil {
		log.Printf("triage: failed to load chat history for %s: %v", userID, err)
		return nil
	}
	return msgs
}

// transcript returns the owner's current transcript: the in-memory session
// when one exists, otherwise the latest persisted snapshot. Returns a copy;
// callers append freely.
func (s *TriageService) transcript(ctx context.Context, userID uuid.UUID) ([]models.Message, error) {
	s.mu.Lock()
	cached, ok := s.sessions[userID]
	s.mu.Unlock()
	if ok {
		out := make([]models.Message, len(cached))
		copy(out, cached)
		return out, nil
	}

	h, err := s.history.GetLatestByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return h.Messages, nil
}

// remember replaces the owner's in-memory session after a completed
// exchange. Messages must not be mutated by the caller afterwards.
func (s *TriageService) remember(userID uuid.UUID, messages []models.Message) {
	s.mu.Lock()
	s.sessions[userID] = messages
	s.mu.Unlock()
}

// SendMessage appends the patient's turn, requests the assistant reply with
// the full current transcript, applies the escalation classifier, and
// persists the updated transcript asynchronously. On completion failure the
// user turn is retained and no assistant turn is fabricated.
func (s *TriageService) SendMessage(ctx context.Context, userID uuid.UUID, text string) (*models.TriageReply, error) {
	if userID == uuid.Nil {
		return nil, &UnauthorizedError{Message: "Not authenticated"}
	}

	if !s.begin(userID) {
		return nil, &ConflictError{Message: "An analysis is already in progress for this session"}
	}
	defer s.end(userID)

	session := NewTriageSession(s.LoadSession(ctx, userID))
	if !session.AppendUserTurn(text) {
		return nil, &ValidationError{Fields: map[string]string{"message": "Message is required"}}
	}

	reply, err := s.completion.Complete(ctx, session.Messages())
	if err != nil {
		return nil, err
	}

	clean := session.ApplyAssistantReply(reply)
	s.remember(userID, session.Messages())
	s.persistAsync(userID, session.Messages())

	resp := &models.TriageReply{
		Reply:                clean,
		Transcript:           session.Messages(),
		State:                session.State(),
		ConsultOffered:       session.ConsultOffered(),
		ConsultationComplete: session.CompleteFlagged(),
	}
	if report, ok := session.FinalReport(); ok {
		resp.FinalReport = &report
	}
	return resp, nil
}

// AnalyzeImage runs a shared image through the analysis endpoint and records
// the exchange in the transcript like any other turn. The busy guard applies:
// an image analysis and a text message never run concurrently for one owner.
func (s *TriageService) AnalyzeImage(ctx context.Context, userID uuid.UUID, imageURL string) (*models.TriageReply, error) {
	if userID == uuid.Nil {
		return nil, &UnauthorizedError{Message: "Not authenticated"}
	}

	if !s.begin(userID) {
		return nil, &ConflictError{Message: "An analysis is already in progress for this session"}
	}
	defer s.end(userID)

	// The image turn goes in before the network call, like a text turn. The
	// session is discarded on failure, so a failed analysis records nothing.
	session := NewTriageSession(s.LoadSession(ctx, userID))
	session.AppendUserTurn("I am sharing an image of my symptoms for analysis.")

	reply, err := s.completion.AnalyzeImage(ctx, imageURL)
	if err != nil {
		return nil, err
	}

	clean := session.ApplyAssistantReply(reply)
	s.remember(userID, session.Messages())
	s.persistAsync(userID, session.Messages())

	resp := &models.TriageReply{
		Reply:                clean,
		Transcript:           session.Messages(),
		State:                session.State(),
		ConsultOffered:       session.ConsultOffered(),
		ConsultationComplete: session.CompleteFlagged(),
	}
	if report, ok := session.FinalReport(); ok {
		resp.FinalReport = &report
	}
	return resp, nil
}

// RequestConsultation converts the offered escalation into a persisted
// symptom report. Requires a non-empty transcript and a resolvable patient
// profile; a failure leaves the offer standing so the patient can retry.
func (s *TriageService) RequestConsultation(ctx context.Context, userID uuid.UUID) (*models.SymptomReport, error) {
	if userID == uuid.Nil {
		return nil, &UnauthorizedError{Message: "Not authenticated"}
	}

	msgs, err := s.transcript(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, &ValidationError{Fields: map[string]string{"transcript": "No consultation transcript to submit"}}
	}

	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, &NotFoundError{Message: "Patient profile not found"}
	}

	session := NewTriageSession(msgs)
	reportContent, ok := session.LastAssistantContent()
	if !ok {
		return nil, &ValidationError{Fields: map[string]string{"transcript": "The consultation has no analysis to submit yet"}}
	}

	report := &models.SymptomReport{
		PatientID:     profile.ID,
		ReportContent: reportContent,
		ChatHistory:   msgs,
		Status:        models.ReportStatusPendingReview,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}

	s.notifyDoctors(ctx, profile.ID, report)
	return report, nil
}

// persistAsync writes the transcript as a new history record via the
// persistence queue. Best effort: a rendered message is never lost or
// blocked over a persistence hiccup, the store just lags the session.
func (s *TriageService) persistAsync(userID uuid.UUID, messages []models.Message) {
	h := &models.ChatHistory{UserID: userID, Messages: messages}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.queue.Enqueue(ctx, h); err != nil {
			log.Printf("triage: failed to enqueue chat history for %s: %v", userID, err)
		}
	}()
}

// notifyDoctors pushes a report_submitted event to each of the patient's
// active doctors. Best effort.
func (s *TriageService) notifyDoctors(ctx context.Context, patientID uuid.UUID, report *models.SymptomReport) {
	if s.publisher == nil {
		return
	}

	doctors, err := s.profiles.ListDoctorsForPatient(ctx, patientID)
	if err != nil {
		log.Printf("triage: failed to list doctors for %s: %v", patientID, err)
		return
	}

	msg := models.WSMessage{Type: "report_submitted", Payload: report}
	for _, d := range doctors {
		if err := s.publisher.Publish(ctx, UserChannel(d.UserID), msg); err != nil {
			log.Printf("triage: failed to notify doctor %s: %v", d.ID, err)
		}
	}
}

func (s *TriageService) begin(userID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[userID]; busy {
		return false
	}
	s.inFlight[userID] = struct{}{}
	return true
}

func (s *TriageService) end(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, userID)
}
