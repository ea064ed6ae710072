package services

import (
	"testing"

	"medilink-backend/internal/models"
)

func TestTriageSession_AppendUserTurn(t *testing.T) {
	s := NewTriageSession(nil)

	if ok := s.AppendUserTurn("   "); ok {
		t.Fatal("whitespace-only message should be rejected")
	}
	if len(s.Messages()) != 0 {
		t.Fatalf("expected empty transcript, got %d messages", len(s.Messages()))
	}

	if ok := s.AppendUserTurn("  my throat hurts  "); !ok {
		t.Fatal("expected message to be accepted")
	}
	msgs := s.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Role != models.RoleUser || msgs[0].Content != "my throat hurts" {
		t.Errorf("unexpected message: %+v", msgs[0])
	}
}

// The doctor-request classification happens when the user turn is appended,
// before the assistant reply exists. The offer must already be visible at
// that point.
func TestTriageSession_DoctorRequestFlagsBeforeReply(t *testing.T) {
	s := NewTriageSession(nil)

	s.AppendUserTurn("this is getting worse, I want a doctor")

	if !s.ConsultOffered() {
		t.Fatal("consult offer should be set before any assistant reply")
	}
	if s.State() != models.TriageStateConsultOffered {
		t.Errorf("state = %q, want %q", s.State(), models.TriageStateConsultOffered)
	}

	// The reply arrives later and must not retract the offer.
	s.ApplyAssistantReply("How long has it been getting worse?")
	if !s.ConsultOffered() {
		t.Fatal("offer must survive the assistant reply")
	}
}

func TestTriageSession_SentinelReply(t *testing.T) {
	s := NewTriageSession(nil)
	s.AppendUserTurn("sharp chest pain when I breathe")

	clean := s.ApplyAssistantReply("CONSULTATION_REQUESTED This may need in-person evaluation.")

	if clean != "This may need in-person evaluation." {
		t.Errorf("clean reply = %q", clean)
	}
	if !s.ConsultOffered() {
		t.Fatal("sentinel should trigger the consult offer")
	}

	// The stored transcript never contains the sentinel.
	for _, m := range s.Messages() {
		if m.Role == models.RoleAssistant && m.Content != clean {
			t.Errorf("stored assistant turn = %q, want %q", m.Content, clean)
		}
	}
}

func TestTriageSession_CompletionFlagIsOrthogonal(t *testing.T) {
	s := NewTriageSession(nil)
	s.AppendUserTurn("anything else I should know?")

	clean := s.ApplyAssistantReply("Final report: mild viral symptoms, rest and fluids.")

	if !s.CompleteFlagged() {
		t.Fatal("completion trigger should set the flag")
	}
	report, ok := s.FinalReport()
	if !ok || report != clean {
		t.Errorf("FinalReport() = %q, %v; want %q, true", report, ok, clean)
	}
	// Completion alone does not move the state machine.
	if s.State() != models.TriageStateActive {
		t.Errorf("state = %q, want %q", s.State(), models.TriageStateActive)
	}

	// A later doctor request still works on a completed session.
	s.AppendUserTurn("thanks, but I want a doctor anyway")
	if !s.ConsultOffered() {
		t.Fatal("completed session should still accept a consult offer")
	}
	if !s.CompleteFlagged() {
		t.Fatal("offer must not clear the completion flag")
	}
}

func TestTriageSession_StateTransitions(t *testing.T) {
	s := NewTriageSession(nil)

	// MarkSubmitted is terminal: a later offer attempt is a no-op.
	s.OfferConsult()
	s.MarkSubmitted()
	if s.State() != models.TriageStateReportSubmitted {
		t.Fatalf("state = %q", s.State())
	}
	s.OfferConsult()
	if s.State() != models.TriageStateReportSubmitted {
		t.Errorf("submitted state must not regress, got %q", s.State())
	}
}

func TestTriageSession_ResumesFromHistory(t *testing.T) {
	history := []models.Message{
		{Role: models.RoleUser, Content: "I have a headache"},
		{Role: models.RoleAssistant, Content: "Where is the pain located?"},
	}
	s := NewTriageSession(history)

	s.AppendUserTurn("behind my eyes")
	msgs := s.Messages()
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	if msgs[0].Content != "I have a headache" || msgs[2].Content != "behind my eyes" {
		t.Errorf("transcript order broken: %+v", msgs)
	}

	content, ok := s.LastAssistantContent()
	if !ok || content != "Where is the pain located?" {
		t.Errorf("LastAssistantContent() = %q, %v", content, ok)
	}
}

func TestTriageSession_MessagesReturnsCopy(t *testing.T) {
	s := NewTriageSession(nil)
	s.AppendUserTurn("hello")

	msgs := s.Messages()
	msgs[0].Content = "mutated"

	if s.Messages()[0].Content != "hello" {
		t.Error("Messages() must return a copy, not the backing slice")
	}
}
