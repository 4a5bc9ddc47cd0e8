package models

// Viewer is the read-only session context handed to an engine at creation.
type Viewer struct {
	UserID     string `json:"user_id"`
	Role       string `json:"role"`
	TrustScore int    `json:"trust_score"`
	CanEarnXP  bool   `json:"can_earn_xp"`
}
