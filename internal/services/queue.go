package services

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"medilink-backend/internal/models"
)

// QueueHistoryPersist holds transcript snapshots awaiting a durable write.
// The worker pool drains it; a lost job only widens the documented
// eventual-consistency window between the in-memory transcript and the store.
const QueueHistoryPersist = "queue:history-persist"

// HistoryQueue enqueues transcript snapshots for asynchronous persistence.
type HistoryQueue struct {
	redis *redis.Client
}

func NewHistoryQueue(redisClient *redis.Client) *HistoryQueue {
	return &HistoryQueue{redis: redisClient}
}

func (q *HistoryQueue) Enqueue(ctx context.Context, h *models.ChatHistory) error {
	data, err := json.Marshal(h)
	if err != nil {
		return err
	}
	return q.redis.LPush(ctx, QueueHistoryPersist, data).Err()
}
