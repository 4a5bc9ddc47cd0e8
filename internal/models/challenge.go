package models

type Challenge struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Summary  string          `json:"summary"`
	Category string          `json:"category"`
	XPReward int             `json:"xp_reward"`
	Steps    []ChallengeStep `json:"steps"`
}

type ChallengeStep struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}
