package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"medilink-backend/internal/middleware"
	"medilink-backend/internal/models"
	"medilink-backend/internal/services"
)

type stubTriageService struct {
	transcript []models.Message
	reply      *models.TriageReply
	report     *models.SymptomReport
	err        error

	lastUser uuid.UUID
	lastText string
}

func (s *stubTriageService) LoadSession(ctx context.Context, userID uuid.UUID) []models.Message {
	s.lastUser = userID
	return s.transcript
}

func (s *stubTriageService) SendMessage(ctx context.Context, userID uuid.UUID, text string) (*models.TriageReply, error) {
	s.lastUser = userID
	s.lastText = text
	if s.err != nil {
		return nil, s.err
	}
	return s.reply, nil
}

func (s *stubTriageService) AnalyzeImage(ctx context.Context, userID uuid.UUID, imageURL string) (*models.TriageReply, error) {
	s.lastUser = userID
	s.lastText = imageURL
	if s.err != nil {
		return nil, s.err
	}
	return s.reply, nil
}

func (s *stubTriageService) RequestConsultation(ctx context.Context, userID uuid.UUID) (*models.SymptomReport, error) {
	s.lastUser = userID
	if s.err != nil {
		return nil, s.err
	}
	return s.report, nil
}

func authedRequest(method, target string, body []byte, userID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, userID))
}

func TestTriageHandler_GetSession_Empty(t *testing.T) {
	svc := &stubTriageService{}
	h := NewTriageHandler(svc)
	userID := uuid.New()

	req := authedRequest(http.MethodGet, "/api/v1/triage/session", nil, userID)
	rr := httptest.NewRecorder()
	h.GetSession(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if svc.lastUser != userID {
		t.Errorf("service called with %s, want %s", svc.lastUser, userID)
	}

	var resp models.TriageSessionResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Transcript == nil || len(resp.Transcript) != 0 {
		t.Errorf("expected empty (not null) transcript, got %v", resp.Transcript)
	}
	if resp.State != models.TriageStateActive {
		t.Errorf("state = %q", resp.State)
	}
}

func TestTriageHandler_SendMessage(t *testing.T) {
	svc := &stubTriageService{
		reply: &models.TriageReply{
			Reply: "Can you describe the pain?",
			State: models.TriageStateActive,
			Transcript: []models.Message{
				{Role: models.RoleUser, Content: "my knee hurts"},
				{Role: models.RoleAssistant, Content: "Can you describe the pain?"},
			},
		},
	}
	h := NewTriageHandler(svc)

	body, _ := json.Marshal(models.TriageMessageRequest{Message: "my knee hurts"})
	req := authedRequest(http.MethodPost, "/api/v1/triage/messages", body, uuid.New())
	rr := httptest.NewRecorder()
	h.SendMessage(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if svc.lastText != "my knee hurts" {
		t.Errorf("service received %q", svc.lastText)
	}

	var reply models.TriageReply
	if err := json.NewDecoder(rr.Body).Decode(&reply); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if reply.Reply != "Can you describe the pain?" {
		t.Errorf("reply = %q", reply.Reply)
	}
}

func TestTriageHandler_SendMessage_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", &services.ValidationError{Fields: map[string]string{"message": "Message is required"}}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"busy", &services.ConflictError{Message: "busy"}, http.StatusConflict, "CONFLICT"},
		{"bad token", &services.AuthTokenError{Message: "bad token"}, http.StatusBadGateway, "AI_AUTH_ERROR"},
		{"upstream down", &services.UnavailableError{Message: "down"}, http.StatusServiceUnavailable, "AI_UNAVAILABLE"},
		{"generic ai failure", &services.AIError{Message: "failed"}, http.StatusBadGateway, "AI_ERROR"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := NewTriageHandler(&stubTriageService{err: tc.err})

			body, _ := json.Marshal(models.TriageMessageRequest{Message: "hi"})
			req := authedRequest(http.MethodPost, "/api/v1/triage/messages", body, uuid.New())
			rr := httptest.NewRecorder()
			h.SendMessage(rr, req)

			if rr.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tc.wantStatus)
			}

			var resp models.ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Error.Code != tc.wantCode {
				t.Errorf("code = %q, want %q", resp.Error.Code, tc.wantCode)
			}
		})
	}
}

func TestTriageHandler_RequestConsultation(t *testing.T) {
	report := &models.SymptomReport{
		ID:            uuid.New(),
		PatientID:     uuid.New(),
		ReportContent: "Possible sprain, in-person review advised.",
		Status:        models.ReportStatusPendingReview,
	}
	svc := &stubTriageService{report: report}
	h := NewTriageHandler(svc)

	req := authedRequest(http.MethodPost, "/api/v1/triage/consultation", nil, uuid.New())
	rr := httptest.NewRecorder()
	h.RequestConsultation(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusCreated)
	}

	var got models.SymptomReport
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != report.ID || got.Status != models.ReportStatusPendingReview {
		t.Errorf("unexpected report: %+v", got)
	}
}
