package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"rada-learning/internal/models"
)

const (
	JobStatusPending   = "pending"
	JobStatusDelivered = "delivered"
	JobStatusFailed    = "failed"
)

// JobRepo keeps a ledger of XP award jobs so delivery failures can be
// inspected after the queue entry is gone.
type JobRepo struct {
	pool *pgxpool.Pool
}

func NewJobRepo(pool *pgxpool.Pool) *JobRepo {
	return &JobRepo{pool: pool}
}

func (r *JobRepo) Create(ctx context.Context, j *models.RewardJob) error {
	query := `INSERT INTO reward_jobs (id, session_id, user_id, action, amount, ref_id, ref_type, status, retry_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING`

	_, err := r.pool.Exec(ctx, query,
		j.ID, j.SessionID, j.UserID, j.Action, j.Amount, j.RefID, j.RefType, JobStatusPending, j.RetryCount, j.CreatedAt,
	)
	return err
}

func (r *JobRepo) UpdateStatus(ctx context.Context, j *models.RewardJob, status string) error {
	if status == JobStatusDelivered || status == JobStatusFailed {
		_, err := r.pool.Exec(ctx,
			"UPDATE reward_jobs SET status = $1, retry_count = $2, completed_at = $3 WHERE id = $4",
			status, j.RetryCount, time.Now(), j.ID,
		)
		return err
	}
	_, err := r.pool.Exec(ctx, "UPDATE reward_jobs SET status = $1, retry_count = $2 WHERE id = $3", status, j.RetryCount, j.ID)
	return err
}

func (r *JobRepo) UpdateError(ctx context.Context, j *models.RewardJob, errMsg string) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE reward_jobs SET error_message = $1, retry_count = $2 WHERE id = $3",
		errMsg, j.RetryCount, j.ID,
	)
	return err
}
