package learning

import (
	"math"
	"strconv"

	"rada-learning/internal/models"
)

const noAnswer = -1

// QuizRunner drives the two-phase question flow: select an option, check it
// (which records the answer and reveals the explanation), then advance.
type QuizRunner struct {
	quiz *models.Quiz
	keys []string

	current         int
	selected        int
	showExplanation bool
	isCorrect       bool
	answers         map[string]int

	completed bool
	result    models.QuizResult
}

func NewQuizRunner(quiz *models.Quiz) *QuizRunner {
	r := &QuizRunner{quiz: quiz, keys: questionKeys(quiz)}
	r.Reset()
	return r
}

// Reset returns every quiz-local field to its initial value.
func (r *QuizRunner) Reset() {
	r.current = 0
	r.selected = noAnswer
	r.showExplanation = false
	r.isCorrect = false
	r.answers = make(map[string]int)
	r.completed = false
	r.result = models.QuizResult{}
}

func (r *QuizRunner) Quiz() *models.Quiz { return r.quiz }

func (r *QuizRunner) Completed() bool { return r.completed }

func (r *QuizRunner) Result() models.QuizResult { return r.result }

// Question returns the current question, or nil for an empty quiz.
func (r *QuizRunner) Question() *models.Question {
	if r.current < 0 || r.current >= len(r.quiz.Questions) {
		return nil
	}
	return &r.quiz.Questions[r.current]
}

func (r *QuizRunner) isLast() bool {
	return r.current >= len(r.quiz.Questions)-1
}

func (r *QuizRunner) clearQuestion() {
	r.selected = noAnswer
	r.showExplanation = false
	r.isCorrect = false
}

// Select marks an option without recording it.
func (r *QuizRunner) Select(option int) error {
	if r.completed {
		return ErrQuizCompleted
	}
	q := r.Question()
	if q == nil {
		return ErrEmptyQuiz
	}
	if r.showExplanation {
		return ErrAnswerLocked
	}
	if option < 0 || option >= len(q.Options) {
		return ErrOptionOutOfRange
	}
	r.selected = option
	return nil
}

// Advance is the dual-purpose button. With the explanation hidden it checks
// the selected answer; with it shown it moves to the next question, or
// completes the quiz after the last one. It reports whether the quiz was
// completed by this call.
func (r *QuizRunner) Advance() (bool, error) {
	if r.completed {
		return false, ErrQuizCompleted
	}
	q := r.Question()
	if q == nil {
		return false, ErrEmptyQuiz
	}

	if !r.showExplanation {
		if r.selected == noAnswer {
			return false, ErrNoAnswerSelected
		}
		r.isCorrect = r.selected == q.CorrectAnswerIndex
		r.answers[r.keys[r.current]] = r.selected
		r.showExplanation = true
		return false, nil
	}

	if !r.isLast() {
		r.current++
		r.clearQuestion()
		return false, nil
	}

	r.result = Grade(r.quiz, r.answers)
	r.completed = true
	return true, nil
}

// Previous steps back one question. The earlier recorded answer is kept and
// is not shown as selected.
func (r *QuizRunner) Previous() error {
	if r.completed {
		return ErrQuizCompleted
	}
	if r.current == 0 {
		return ErrNoPreviousQuestion
	}
	r.current--
	r.clearQuestion()
	return nil
}

// Grade scores a full answer map against quiz. The score is recomputed from
// the map, so re-checked questions count once with their latest answer.
func Grade(quiz *models.Quiz, answers map[string]int) models.QuizResult {
	res := models.QuizResult{
		Total:        len(quiz.Questions),
		PassingScore: quiz.EffectivePassingScore(),
	}
	for i, key := range questionKeys(quiz) {
		if a, ok := answers[key]; ok && a == quiz.Questions[i].CorrectAnswerIndex {
			res.Score++
		}
	}
	if res.Total > 0 {
		res.Percentage = int(math.Round(float64(res.Score) / float64(res.Total) * 100))
	}
	res.Passed = res.Percentage >= res.PassingScore
	return res
}

// questionKeys returns the answer key of each question: its id, or "#n" for
// its 1-based position when the id is missing or already taken, so every
// question is graded on its own answer.
func questionKeys(quiz *models.Quiz) []string {
	keys := make([]string, len(quiz.Questions))
	taken := make(map[string]bool, len(quiz.Questions))
	for i, q := range quiz.Questions {
		key := q.ID
		for n := i + 1; key == "" || taken[key]; n += len(quiz.Questions) {
			key = "#" + strconv.Itoa(n)
		}
		taken[key] = true
		keys[i] = key
	}
	return keys
}

// QuizState is the per-question cursor as the quiz screen renders it.
type QuizState struct {
	QuestionIndex   int            `json:"question_index"`
	TotalQuestions  int            `json:"total_questions"`
	SelectedAnswer  *int           `json:"selected_answer"`
	ShowExplanation bool           `json:"show_explanation"`
	IsCorrect       bool           `json:"is_correct"`
	Answers         map[string]int `json:"answers"`
	Completed       bool           `json:"completed"`
	Score           int            `json:"score"`
}

func (r *QuizRunner) State() QuizState {
	st := QuizState{
		QuestionIndex:   r.current,
		TotalQuestions:  len(r.quiz.Questions),
		ShowExplanation: r.showExplanation,
		IsCorrect:       r.isCorrect,
		Answers:         make(map[string]int, len(r.answers)),
		Completed:       r.completed,
		Score:           r.result.Score,
	}
	if r.selected != noAnswer {
		sel := r.selected
		st.SelectedAnswer = &sel
	}
	for k, v := range r.answers {
		st.Answers[k] = v
	}
	return st
}
