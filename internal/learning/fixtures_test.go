package learning

import (
	"context"
	"errors"

	"rada-learning/internal/models"
)

type stubRewards struct {
	calls   []string
	amounts []int
	err     error
}

func (s *stubRewards) AwardXP(ctx context.Context, action string, amount int, refID, refType string) error {
	s.calls = append(s.calls, action+":"+refType+":"+refID)
	s.amounts = append(s.amounts, amount)
	return s.err
}

type stubContent struct {
	modules map[string]*models.Module
	quizzes map[string]*models.Quiz
	err     error
}

func (s *stubContent) ListModules(ctx context.Context) ([]models.Module, error) {
	var out []models.Module
	for _, m := range s.modules {
		out = append(out, m.Summary())
	}
	return out, nil
}

func (s *stubContent) GetModule(ctx context.Context, id string) (*models.Module, error) {
	if s.err != nil {
		return nil, s.err
	}
	m, ok := s.modules[id]
	if !ok {
		return nil, errors.New("module not found")
	}
	cp := *m
	cp.Quizzes = nil
	return &cp, nil
}

func (s *stubContent) GetModuleQuizzes(ctx context.Context, moduleID string) ([]models.Quiz, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []models.Quiz
	for _, q := range s.modules[moduleID].Quizzes {
		q.Questions = nil
		out = append(out, q)
	}
	return out, nil
}

func (s *stubContent) GetQuiz(ctx context.Context, id string) (*models.Quiz, error) {
	if s.err != nil {
		return nil, s.err
	}
	q, ok := s.quizzes[id]
	if !ok {
		return nil, errors.New("quiz not found")
	}
	cp := *q
	return &cp, nil
}

func textLesson(id, moduleID string, sections int) models.Lesson {
	l := models.Lesson{ID: id, ModuleID: moduleID, Title: "Lesson " + id, Type: models.LessonText}
	for i := 0; i < sections; i++ {
		l.Sections = append(l.Sections, models.Section{Type: models.LessonText, Title: id, Content: "page"})
	}
	return l
}

func threeQuestionQuiz(id string) *models.Quiz {
	return &models.Quiz{
		ID:       id,
		Title:    "Constitution basics",
		XPReward: 40,
		Questions: []models.Question{
			{ID: "q1", QuestionText: "How many counties?", Options: []string{"8", "47", "290"}, CorrectAnswerIndex: 1},
			{ID: "q2", QuestionText: "Supreme law?", Options: []string{"Constitution", "Penal Code"}, CorrectAnswerIndex: 0},
			{ID: "q3", QuestionText: "Arms of government?", Options: []string{"1", "2", "3"}, CorrectAnswerIndex: 2},
		},
	}
}

// newFixture builds a content source with:
//   - "gov": lessons L1 (2 sections), L2 (1 section), quiz Q1
//   - "solo": one lesson, no quizzes
//   - "scenario": one lesson, quiz QS with two questions, passing score 70
func newFixture() *stubContent {
	q1 := threeQuestionQuiz("Q1")
	q1.ModuleID = "gov"
	qs := &models.Quiz{
		ID: "QS", ModuleID: "scenario", Title: "Scenario", PassingScore: 70, XPReward: 25,
		Questions: []models.Question{
			{ID: "s1", Options: []string{"a", "b"}, CorrectAnswerIndex: 0},
			{ID: "s2", Options: []string{"a", "b"}, CorrectAnswerIndex: 1},
		},
	}
	return &stubContent{
		modules: map[string]*models.Module{
			"gov": {
				ID: "gov", Title: "How Government Works", Category: "Governance", Difficulty: models.DifficultyBeginner,
				Lessons: []models.Lesson{textLesson("L1", "gov", 2), textLesson("L2", "gov", 1)},
				Quizzes: []models.Quiz{*q1},
			},
			"solo": {
				ID: "solo", Title: "Voting Rights", Category: "Elections", Difficulty: models.DifficultyBeginner,
				Lessons: []models.Lesson{textLesson("only", "solo", 1)},
			},
			"scenario": {
				ID: "scenario", Title: "Rule of Law", Category: "History", Difficulty: models.DifficultyIntermediate,
				Lessons: []models.Lesson{textLesson("S-L1", "scenario", 1)},
				Quizzes: []models.Quiz{*qs},
			},
		},
		quizzes: map[string]*models.Quiz{"Q1": q1, "QS": qs},
	}
}

func catalogOf(src *stubContent, ids ...string) []models.Module {
	out := make([]models.Module, 0, len(ids))
	for _, id := range ids {
		out = append(out, src.modules[id].Summary())
	}
	return out
}

// drive resolves req against src, mimicking the hosting session.
func drive(e *Engine, src ContentSource, req *Request) error {
	if req == nil {
		return nil
	}
	return e.Resolve(Fetch(context.Background(), src, *req))
}
