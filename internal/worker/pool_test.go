package worker

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"rada-learning/internal/models"
	"rada-learning/internal/repository"
)

type stubDeliverer struct {
	err   error
	calls int
}

func (s *stubDeliverer) Award(context.Context, *models.RewardJob) error {
	s.calls++
	return s.err
}

type stubLedger struct {
	statuses []string
	errors   []string
}

func (l *stubLedger) UpdateStatus(_ context.Context, _ *models.RewardJob, status string) error {
	l.statuses = append(l.statuses, status)
	return nil
}

func (l *stubLedger) UpdateError(_ context.Context, _ *models.RewardJob, msg string) error {
	l.errors = append(l.errors, msg)
	return nil
}

func newJob(retries int) *models.RewardJob {
	return &models.RewardJob{
		ID: uuid.New(), UserID: "u-1", Action: "complete_quiz", Amount: 40,
		RefID: "Q1", RefType: "quiz", RetryCount: retries, MaxRetries: 3,
	}
}

func TestProcess_Delivered(t *testing.T) {
	ledger := &stubLedger{}
	p := NewPool(nil, &stubDeliverer{}, ledger, 1)

	p.Process(context.Background(), newJob(0))

	if len(ledger.statuses) != 1 || ledger.statuses[0] != repository.JobStatusDelivered {
		t.Fatalf("Expected delivered status, got %v", ledger.statuses)
	}
	if len(ledger.errors) != 0 {
		t.Fatalf("Expected no error records, got %v", ledger.errors)
	}
}

func TestProcess_PermanentFailureAfterMaxRetries(t *testing.T) {
	ledger := &stubLedger{}
	deliverer := &stubDeliverer{err: errors.New("trust API returned 503")}
	p := NewPool(nil, deliverer, ledger, 1)

	job := newJob(2)
	p.Process(context.Background(), job)

	if job.RetryCount != 3 {
		t.Fatalf("Expected retry count 3, got %d", job.RetryCount)
	}
	if len(ledger.statuses) != 1 || ledger.statuses[0] != repository.JobStatusFailed {
		t.Fatalf("Expected failed status, got %v", ledger.statuses)
	}
	if len(ledger.errors) != 1 || ledger.errors[0] != "trust API returned 503" {
		t.Fatalf("Expected error message recorded, got %v", ledger.errors)
	}
}

func TestProcess_NilLedger(t *testing.T) {
	p := NewPool(nil, &stubDeliverer{}, nil, 0)
	if p.workerCount != 1 {
		t.Fatalf("Expected worker count clamped to 1, got %d", p.workerCount)
	}
	p.Process(context.Background(), newJob(0))
}

func TestStop_RequeuesPendingRetry(t *testing.T) {
	deliverer := &stubDeliverer{err: errors.New("trust API returned 503")}
	p := NewPool(nil, deliverer, nil, 1)

	var mu sync.Mutex
	var requeued []string
	p.requeue = func(_ context.Context, payload string) error {
		mu.Lock()
		defer mu.Unlock()
		requeued = append(requeued, payload)
		return nil
	}

	job := newJob(0)
	p.Process(context.Background(), job)

	stopped := make(chan struct{})
	go func() {
		p.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop waited out the retry backoff")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(requeued) != 1 || !strings.Contains(requeued[0], job.ID.String()) {
		t.Fatalf("Expected the retry to be requeued before Stop returned, got %v", requeued)
	}
	if job.RetryCount != 1 {
		t.Fatalf("Expected retry count 1, got %d", job.RetryCount)
	}
}

func TestStop_Twice(t *testing.T) {
	p := NewPool(nil, &stubDeliverer{}, nil, 1)
	p.Stop()
	p.Stop()
}
