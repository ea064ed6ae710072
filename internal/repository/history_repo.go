package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"medilink-backend/internal/models"
)

// HistoryRepo stores triage transcript snapshots. Saves always insert a new
// row; the transcript sequence inside a row is never reordered or updated.
type HistoryRepo struct {
	pool *pgxpool.Pool
}

func NewHistoryRepo(pool *pgxpool.Pool) *HistoryRepo {
	return &HistoryRepo{pool: pool}
}

func (r *HistoryRepo) Create(ctx context.Context, h *models.ChatHistory) error {
	h.ID = uuid.New()
	messagesJSON, err := json.Marshal(h.Messages)
	if err != nil {
		return err
	}

	query := `INSERT INTO chat_history (id, user_id, messages)
		VALUES ($1, $2, $3) RETURNING created_at`

	return r.pool.QueryRow(ctx, query, h.ID, h.UserID, messagesJSON).Scan(&h.CreatedAt)
}

// GetLatestByUser returns the most recently created transcript for a user.
// Returns pgx.ErrNoRows when the user has no saved session.
func (r *HistoryRepo) GetLatestByUser(ctx context.Context, userID uuid.UUID) (*models.ChatHistory, error) {
	h := &models.ChatHistory{}
	var messagesJSON []byte

	query := `SELECT id, user_id, messages, created_at
		FROM chat_history
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	err := r.pool.QueryRow(ctx, query, userID).Scan(&h.ID, &h.UserID, &messagesJSON, &h.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(messagesJSON, &h.Messages); err != nil {
		return nil, err
	}
	return h, nil
}
