package services

import (
	"strings"

	"medilink-backend/internal/models"
)

// TriageSession owns the in-memory transcript for one symptom-check exchange
// and the small state machine around it:
//
//	active → consult_offered → report_submitted
//
// The completion flag is orthogonal: a session can be flagged complete and
// still move to consult_offered / report_submitted afterwards. Transitions
// never retract; once an offer is surfaced it stays until a consultation
// request resolves it.
type TriageSession struct {
	messages        []models.Message
	state           string
	completeFlagged bool
	finalReport     string
}

// NewTriageSession starts a session from a previously persisted transcript,
// or from nothing.
func NewTriageSession(history []models.Message) *TriageSession {
	s := &TriageSession{state: models.TriageStateActive}
	s.messages = append(s.messages, history...)
	return s
}

// AppendUserTurn trims and appends the patient's message, classifying it for
// a doctor request before any network call happens. Returns false (no-op) for
// text that is empty after trimming.
func (s *TriageSession) AppendUserTurn(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	s.messages = append(s.messages, models.Message{Role: models.RoleUser, Content: text})
	if UserRequestsDoctor(text) {
		s.OfferConsult()
	}
	return true
}

// ApplyAssistantReply classifies the raw model output, appends the cleaned
// assistant turn, and returns the cleaned text. On a completion failure this
// is simply never called: the user turn stays, no assistant turn is
// fabricated.
func (s *TriageSession) ApplyAssistantReply(raw string) string {
	clean, requested := StripConsultSentinel(raw)
	if requested {
		s.OfferConsult()
	}
	if IsConsultationComplete(raw) {
		s.completeFlagged = true
		s.finalReport = clean
	}

	s.messages = append(s.messages, models.Message{Role: models.RoleAssistant, Content: clean})
	return clean
}

// OfferConsult surfaces the consultation affordance. Only an active session
// transitions; an existing offer or submitted report is left alone.
func (s *TriageSession) OfferConsult() {
	if s.state == models.TriageStateActive {
		s.state = models.TriageStateConsultOffered
	}
}

// MarkSubmitted resolves the offer after a report is created. Terminal for
// this flow.
func (s *TriageSession) MarkSubmitted() {
	s.state = models.TriageStateReportSubmitted
}

// Messages returns a copy of the transcript in chronological order.
func (s *TriageSession) Messages() []models.Message {
	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *TriageSession) State() string { return s.state }

func (s *TriageSession) ConsultOffered() bool {
	return s.state == models.TriageStateConsultOffered
}

func (s *TriageSession) CompleteFlagged() bool { return s.completeFlagged }

// FinalReport returns the candidate final report captured when the
// completion trigger fired.
func (s *TriageSession) FinalReport() (string, bool) {
	return s.finalReport, s.completeFlagged
}

// LastAssistantContent returns the content of the most recent assistant turn.
func (s *TriageSession) LastAssistantContent() (string, bool) {
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Role == models.RoleAssistant {
			return s.messages[i].Content, true
		}
	}
	return "", false
}
