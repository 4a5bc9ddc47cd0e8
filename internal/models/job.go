package models

import (
	"time"

	"github.com/google/uuid"
)

// RewardJob is queued on quiz completion and delivered to the trust-score
// service by the worker pool.
type RewardJob struct {
	ID         uuid.UUID `json:"id"`
	SessionID  uuid.UUID `json:"session_id"`
	UserID     string    `json:"user_id"`
	Action     string    `json:"action"`
	Amount     int       `json:"amount"`
	RefID      string    `json:"ref_id"`
	RefType    string    `json:"ref_type"`
	RetryCount int       `json:"retry_count"`
	MaxRetries int       `json:"max_retries"`
	CreatedAt  time.Time `json:"created_at"`
}

// WebSocket message types
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
