package models

const DefaultPassingScore = 70

type Quiz struct {
	ID           string     `json:"id"`
	ModuleID     string     `json:"module_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	TimeLimit    int        `json:"time_limit"` // minutes, advisory only
	PassingScore int        `json:"passing_score"`
	XPReward     int        `json:"xp_reward"`
	Questions    []Question `json:"questions,omitempty"`
}

type Question struct {
	ID                 string   `json:"id"`
	QuestionText       string   `json:"question_text"`
	Options            []string `json:"options"`
	CorrectAnswerIndex int      `json:"correct_answer_index"`
	Explanation        string   `json:"explanation"`
}

// EffectivePassingScore falls back to DefaultPassingScore when the content API
// left passing_score unset.
func (q *Quiz) EffectivePassingScore() int {
	if q.PassingScore <= 0 {
		return DefaultPassingScore
	}
	return q.PassingScore
}

// QuizResult is computed once on quiz completion.
type QuizResult struct {
	Score        int  `json:"score"`
	Total        int  `json:"total"`
	Percentage   int  `json:"percentage"`
	PassingScore int  `json:"passing_score"`
	Passed       bool `json:"passed"`
}
