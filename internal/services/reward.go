package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"rada-learning/internal/learning"
	"rada-learning/internal/models"
)

const (
	RewardQueueName  = "queue:xp-awards"
	rewardMaxRetries = 3
)

type rewardLedger interface {
	Create(ctx context.Context, j *models.RewardJob) error
}

// RewardQueue turns engine reward calls into jobs on a Redis list. The
// worker pool delivers them to the trust-score service.
type RewardQueue struct {
	redis  *redis.Client
	ledger rewardLedger
}

// NewRewardQueue builds a queue; ledger may be nil when no database is
// configured.
func NewRewardQueue(redisClient *redis.Client, ledger rewardLedger) *RewardQueue {
	return &RewardQueue{redis: redisClient, ledger: ledger}
}

// Hook binds the queue to one session and viewer.
func (q *RewardQueue) Hook(sessionID uuid.UUID, viewer models.Viewer) learning.RewardHook {
	return &sessionRewards{queue: q, sessionID: sessionID, userID: viewer.UserID}
}

func (q *RewardQueue) Enqueue(ctx context.Context, job *models.RewardJob) error {
	if q.ledger != nil {
		if err := q.ledger.Create(ctx, job); err != nil {
			log.Printf("Reward ledger write for job %s failed: %v", job.ID, err)
		}
	}
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if err := q.redis.LPush(ctx, RewardQueueName, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue reward job: %w", err)
	}
	return nil
}

type sessionRewards struct {
	queue     *RewardQueue
	sessionID uuid.UUID
	userID    string
}

func (s *sessionRewards) AwardXP(ctx context.Context, action string, amount int, refID, refType string) error {
	return s.queue.Enqueue(ctx, &models.RewardJob{
		ID:         uuid.New(),
		SessionID:  s.sessionID,
		UserID:     s.userID,
		Action:     action,
		Amount:     amount,
		RefID:      refID,
		RefType:    refType,
		MaxRetries: rewardMaxRetries,
		CreatedAt:  time.Now().UTC(),
	})
}

// LogRewards is the reward hook used when no trust-score service is
// configured. It records the award and never fails.
type LogRewards struct {
	SessionID uuid.UUID
	UserID    string
}

func (l LogRewards) AwardXP(_ context.Context, action string, amount int, refID, refType string) error {
	log.Printf("XP award (not delivered): session=%s user=%s action=%s amount=%d ref=%s/%s",
		l.SessionID, l.UserID, action, amount, refType, refID)
	return nil
}
