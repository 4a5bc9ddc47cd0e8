package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"rada-learning/internal/metrics"
	"rada-learning/internal/models"
	"rada-learning/internal/repository"
	"rada-learning/internal/services"
)

// Deliverer sends one award to the trust-score service.
type Deliverer interface {
	Award(ctx context.Context, job *models.RewardJob) error
}

type jobLedger interface {
	UpdateStatus(ctx context.Context, j *models.RewardJob, status string) error
	UpdateError(ctx context.Context, j *models.RewardJob, errMsg string) error
}

// Pool drains the XP award queue.
type Pool struct {
	redis       *redis.Client
	deliverer   Deliverer
	ledger      jobLedger
	workerCount int
	popTimeout  time.Duration
	stopChan    chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup

	requeue func(ctx context.Context, payload string) error
}

// NewPool builds a pool; ledger may be nil when no database is configured.
func NewPool(redisClient *redis.Client, deliverer Deliverer, ledger jobLedger, workerCount int) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	p := &Pool{
		redis:       redisClient,
		deliverer:   deliverer,
		ledger:      ledger,
		workerCount: workerCount,
		popTimeout:  30 * time.Second,
		stopChan:    make(chan struct{}),
	}
	p.requeue = func(ctx context.Context, payload string) error {
		return p.redis.LPush(ctx, services.RewardQueueName, payload).Err()
	}
	return p
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	log.Printf("Started %d reward worker goroutines", p.workerCount)
}

// Stop signals workers and waits for in-flight jobs and pending retries.
// Retries still backing off are requeued at once. Safe to call twice.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() { close(p.stopChan) })
	p.wg.Wait()
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopChan:
			log.Printf("Reward worker %d shutting down", id)
			return
		default:
		}

		ctx := context.Background()

		// BLPOP with timeout so Stop is observed
		result, err := p.redis.BLPop(ctx, p.popTimeout, services.RewardQueueName).Result()
		if err != nil {
			if err != redis.Nil {
				time.Sleep(time.Second)
			}
			continue
		}
		if len(result) < 2 {
			continue
		}

		var job models.RewardJob
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Printf("Reward worker %d: failed to parse job: %v", id, err)
			continue
		}

		// Try to acquire lock
		lockKey := fmt.Sprintf("reward_lock:%s", job.ID.String())
		locked, err := p.redis.SetNX(ctx, lockKey, "1", 5*time.Minute).Result()
		if err != nil || !locked {
			continue // Another worker has this job
		}

		p.Process(ctx, &job)

		p.redis.Del(ctx, lockKey)
	}
}

// Process delivers one job and records the outcome.
func (p *Pool) Process(ctx context.Context, job *models.RewardJob) {
	log.Printf("Delivering reward job %s (%s %d XP for %s %s)", job.ID, job.Action, job.Amount, job.RefType, job.RefID)

	err := p.deliverer.Award(ctx, job)
	if err == nil {
		metrics.RewardDeliveries.WithLabelValues(repository.JobStatusDelivered).Inc()
		p.record(ctx, job, repository.JobStatusDelivered, "")
		return
	}
	p.handleFailure(ctx, job, err)
}

func (p *Pool) handleFailure(ctx context.Context, job *models.RewardJob, err error) {
	job.RetryCount++
	errMsg := err.Error()

	maxRetries := job.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	if job.RetryCount < maxRetries {
		log.Printf("Reward job %s failed (attempt %d): %s; retrying", job.ID, job.RetryCount, errMsg)
		metrics.RewardDeliveries.WithLabelValues("retried").Inc()
		p.record(ctx, job, repository.JobStatusPending, errMsg)

		jobBytes, _ := json.Marshal(job)
		backoff := time.Duration(1<<uint(job.RetryCount)) * time.Second
		p.scheduleRetry(job, string(jobBytes), backoff)
		return
	}

	log.Printf("Reward job %s failed permanently: %s", job.ID, errMsg)
	metrics.RewardDeliveries.WithLabelValues(repository.JobStatusFailed).Inc()
	p.record(ctx, job, repository.JobStatusFailed, errMsg)
}

// scheduleRetry requeues payload after backoff, or straight away once the
// pool is stopping, so Stop never returns with a retry still outstanding.
func (p *Pool) scheduleRetry(job *models.RewardJob, payload string, backoff time.Duration) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		timer := time.NewTimer(backoff)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-p.stopChan:
		}
		if err := p.requeue(context.Background(), payload); err != nil {
			log.Printf("Reward job %s: requeue failed: %v", job.ID, err)
		}
	}()
}

func (p *Pool) record(ctx context.Context, job *models.RewardJob, status, errMsg string) {
	if p.ledger == nil {
		return
	}
	if errMsg != "" {
		if err := p.ledger.UpdateError(ctx, job, errMsg); err != nil {
			log.Printf("Reward ledger error update for %s failed: %v", job.ID, err)
		}
	}
	if err := p.ledger.UpdateStatus(ctx, job, status); err != nil {
		log.Printf("Reward ledger status update for %s failed: %v", job.ID, err)
	}
}
