package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"medilink-backend/internal/models"
)

// PairChannel is the pub/sub channel carrying INSERT events for one
// doctor/patient conversation.
func PairChannel(doctorID, patientID uuid.UUID) string {
	return fmt.Sprintf("chat:%s:%s", doctorID, patientID)
}

// UserChannel carries per-user updates such as report notifications.
func UserChannel(userID uuid.UUID) string {
	return "user_updates:" + userID.String()
}

// Publisher pushes websocket events through redis pub/sub so any instance
// holding the subscriber's connection can deliver them.
type Publisher struct {
	redis *redis.Client
}

func NewPublisher(redisClient *redis.Client) *Publisher {
	return &Publisher{redis: redisClient}
}

func (p *Publisher) Publish(ctx context.Context, channel string, msg models.WSMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return p.redis.Publish(ctx, channel, string(data)).Err()
}
