package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"rada-learning/internal/middleware"
	"rada-learning/internal/models"
)

const serviceSubject = "rada-learning"

// TrustClient credits XP on the PoliHub trust-score service.
type TrustClient struct {
	client *resty.Client
	auth   *middleware.JWTAuth
}

func NewTrustClient(baseURL string, auth *middleware.JWTAuth) *TrustClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetHeader("Content-Type", "application/json")
	return &TrustClient{client: client, auth: auth}
}

type awardRequest struct {
	UserID  string `json:"user_id"`
	Action  string `json:"action"`
	Amount  int    `json:"amount"`
	RefID   string `json:"ref_id"`
	RefType string `json:"ref_type"`
	// Idempotency key so retried deliveries are not double-credited.
	JobID string `json:"job_id"`
}

func (c *TrustClient) Award(ctx context.Context, job *models.RewardJob) error {
	req := c.client.R().
		SetContext(ctx).
		SetBody(awardRequest{
			UserID:  job.UserID,
			Action:  job.Action,
			Amount:  job.Amount,
			RefID:   job.RefID,
			RefType: job.RefType,
			JobID:   job.ID.String(),
		})

	if c.auth != nil && c.auth.Enabled() {
		token, err := c.auth.GenerateServiceToken(serviceSubject)
		if err != nil {
			return fmt.Errorf("failed to sign service token: %w", err)
		}
		req.SetAuthToken(token)
	}

	resp, err := req.Post("/trust/xp")
	if err != nil {
		return fmt.Errorf("trust API request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("trust API returned %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
