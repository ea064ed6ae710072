package worker

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"medilink-backend/internal/models"
	"medilink-backend/internal/services"
)

type historyWriter interface {
	Create(ctx context.Context, h *models.ChatHistory) error
}

// Pool drains the transcript persistence queue. Jobs are best effort: a
// failed write is logged and dropped, which is the accepted consistency
// window between a live session and the store.
type Pool struct {
	redis       *redis.Client
	history     historyWriter
	workerCount int
	stopChan    chan struct{}
}

func NewPool(redisClient *redis.Client, history historyWriter, workerCount int) *Pool {
	return &Pool{
		redis:       redisClient,
		history:     history,
		workerCount: workerCount,
		stopChan:    make(chan struct{}),
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		go p.worker(i)
	}
	log.Printf("Started %d persistence worker goroutines", p.workerCount)
}

func (p *Pool) Stop() {
	close(p.stopChan)
}

func (p *Pool) worker(id int) {
	for {
		select {
		case <-p.stopChan:
			return
		default:
		}

		result, err := p.redis.BRPop(context.Background(), 2*time.Second, services.QueueHistoryPersist).Result()
		if err != nil {
			if err != redis.Nil {
				log.Printf("Worker %d: queue pop failed: %v", id, err)
				time.Sleep(time.Second)
			}
			continue
		}
		// BRPop returns [key, value]
		if len(result) < 2 {
			continue
		}

		p.persist(id, []byte(result[1]))
	}
}

func (p *Pool) persist(id int, payload []byte) {
	var h models.ChatHistory
	if err := json.Unmarshal(payload, &h); err != nil {
		log.Printf("Worker %d: dropping malformed history job: %v", id, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := p.history.Create(ctx, &h); err != nil {
		log.Printf("Worker %d: failed to persist chat history for %s: %v", id, h.UserID, err)
	}
}
