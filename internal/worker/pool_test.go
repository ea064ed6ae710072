package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"

	"medilink-backend/internal/models"
)

type stubHistoryWriter struct {
	created []*models.ChatHistory
	err     error
}

func (s *stubHistoryWriter) Create(ctx context.Context, h *models.ChatHistory) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, h)
	return nil
}

// The queue payload is json produced by the enqueue side; persist must decode
// it back into the exact record, in order, or drop it without writing.
func TestPool_Persist(t *testing.T) {
	userID := uuid.New()
	snapshot := &models.ChatHistory{
		UserID: userID,
		Messages: []models.Message{
			{Role: models.RoleUser, Content: "my knee hurts"},
			{Role: models.RoleAssistant, Content: "How long has it hurt?"},
			{Role: models.RoleUser, Content: "since yesterday"},
		},
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	tests := []struct {
		name        string
		payload     []byte
		wantWritten bool
	}{
		{"valid snapshot", payload, true},
		{"malformed payload", []byte("not json"), false},
		{"empty payload", []byte(""), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			writer := &stubHistoryWriter{}
			p := NewPool(nil, writer, 1)

			p.persist(0, tc.payload)

			if !tc.wantWritten {
				if len(writer.created) != 0 {
					t.Fatalf("expected nothing written, got %d records", len(writer.created))
				}
				return
			}

			if len(writer.created) != 1 {
				t.Fatalf("wrote %d records, want 1", len(writer.created))
			}
			got := writer.created[0]
			if got.UserID != userID {
				t.Errorf("owner = %s, want %s", got.UserID, userID)
			}
			if len(got.Messages) != 3 {
				t.Fatalf("message count = %d, want 3", len(got.Messages))
			}
			for i, m := range snapshot.Messages {
				if got.Messages[i] != m {
					t.Errorf("message %d = %+v, want %+v", i, got.Messages[i], m)
				}
			}
		})
	}
}

func TestPool_Persist_WriteFailureDropsJob(t *testing.T) {
	writer := &stubHistoryWriter{err: errors.New("connection refused")}
	p := NewPool(nil, writer, 1)

	payload, _ := json.Marshal(&models.ChatHistory{
		UserID:   uuid.New(),
		Messages: []models.Message{{Role: models.RoleUser, Content: "hi"}},
	})

	// Must not panic or retry; the failure is logged and the job dropped.
	p.persist(0, payload)

	if len(writer.created) != 0 {
		t.Errorf("expected no records, got %d", len(writer.created))
	}
}
