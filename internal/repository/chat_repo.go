package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"medilink-backend/internal/models"
)

type ChatRepo struct {
	pool *pgxpool.Pool
}

func NewChatRepo(pool *pgxpool.Pool) *ChatRepo {
	return &ChatRepo{pool: pool}
}

// Create inserts a chat row and fills in the generated id and timestamp. The
// id is assigned here, at insert time, so subscribers can de-duplicate the
// sender's optimistic copy against the pub/sub echo.
func (r *ChatRepo) Create(ctx context.Context, m *models.ChatMessage) error {
	m.ID = uuid.New()
	query := `INSERT INTO chat_messages (id, content, sender_id, doctor_id, patient_id)
		VALUES ($1, $2, $3, $4, $5) RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		m.ID, m.Content, m.SenderID, m.DoctorID, m.PatientID,
	).Scan(&m.CreatedAt)
}

// ListByPair returns the full conversation for a doctor/patient pair in
// chronological order, with sender names resolved.
func (r *ChatRepo) ListByPair(ctx context.Context, doctorID, patientID uuid.UUID) ([]*models.ChatMessage, error) {
	query := `SELECT m.id, m.content, m.sender_id, p.full_name, m.doctor_id, m.patient_id, m.created_at
		FROM chat_messages m
		JOIN profiles p ON p.id = m.sender_id
		WHERE m.doctor_id = $1 AND m.patient_id = $2
		ORDER BY m.created_at ASC`

	rows, err := r.pool.Query(ctx, query, doctorID, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*models.ChatMessage
	for rows.Next() {
		m := &models.ChatMessage{}
		if err := rows.Scan(&m.ID, &m.Content, &m.SenderID, &m.SenderName, &m.DoctorID, &m.PatientID, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
