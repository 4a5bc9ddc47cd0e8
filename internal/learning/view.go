package learning

import (
	"rada-learning/internal/catalog"
	"rada-learning/internal/models"
)

const featuredCount = 3

// View is a render-ready snapshot of the engine. Exactly one of the
// per-screen fields is set, matching Screen.
type View struct {
	Screen  ScreenKind `json:"screen"`
	Loading bool       `json:"loading"`
	Pending *Request   `json:"pending,omitempty"`
	Error   string     `json:"error,omitempty"`

	Home            *HomeView          `json:"home,omitempty"`
	Browse          *BrowseView        `json:"browse,omitempty"`
	Module          *ModuleView        `json:"module,omitempty"`
	Lesson          *LessonView        `json:"lesson,omitempty"`
	Quiz            *QuizView          `json:"quiz,omitempty"`
	QuizResult      *QuizResultView    `json:"quiz_result,omitempty"`
	Challenges      []models.Challenge `json:"challenges,omitempty"`
	ChallengeDetail *models.Challenge  `json:"challenge_detail,omitempty"`
}

type HomeView struct {
	Featured   []models.Module `json:"featured"`
	Challenges int             `json:"challenges"`
}

type BrowseView struct {
	catalog.Page
	Facets catalog.Facets `json:"facets"`
}

type ModuleView struct {
	Topic  models.Module  `json:"topic"`
	Detail *models.Module `json:"detail"`
	Empty  bool           `json:"empty"`
}

type LessonView struct {
	ModuleID      string            `json:"module_id"`
	ModuleTitle   string            `json:"module_title"`
	LessonID      string            `json:"lesson_id"`
	Title         string            `json:"title"`
	Type          models.LessonType `json:"type"`
	Duration      string            `json:"duration"`
	SectionIndex  int               `json:"section_index"`
	SectionCount  int               `json:"section_count"`
	Section       *SectionView      `json:"section"`
	CanGoBack     bool              `json:"can_go_back"`
	ForwardAction CompletionAction  `json:"forward_action"`
}

type QuestionView struct {
	ID           string   `json:"id"`
	QuestionText string   `json:"question_text"`
	Options      []string `json:"options"`
	// Revealed only after the answer is checked.
	CorrectAnswerIndex *int   `json:"correct_answer_index,omitempty"`
	Explanation        string `json:"explanation,omitempty"`
}

type QuizView struct {
	QuizID       string        `json:"quiz_id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	TimeLimit    int           `json:"time_limit"`
	PassingScore int           `json:"passing_score"`
	State        QuizState     `json:"state"`
	Question     *QuestionView `json:"question"`
	AdvanceLabel string        `json:"advance_label"`
	CanGoBack    bool          `json:"can_go_back"`
}

type QuizResultView struct {
	QuizID string            `json:"quiz_id"`
	Title  string            `json:"title"`
	Result models.QuizResult `json:"result"`
}

func (e *Engine) View() View {
	v := View{
		Screen:  e.screen.Kind(),
		Loading: e.pending != nil,
		Pending: e.pending,
	}
	if e.fetchErr != nil {
		v.Error = e.fetchErr.Error()
	}

	switch s := e.screen.(type) {
	case HomeScreen:
		featured := e.catalog
		if len(featured) > featuredCount {
			featured = featured[:featuredCount]
		}
		v.Home = &HomeView{Featured: featured, Challenges: len(catalog.Challenges())}
	case BrowseScreen:
		v.Browse = &BrowseView{Page: s.Browser.Page(), Facets: catalog.FacetsOf(e.catalog)}
	case ModuleDetailScreen:
		v.Module = &ModuleView{
			Topic:  s.Topic,
			Detail: s.Module,
			Empty:  s.Module != nil && len(s.Module.Lessons) == 0 && len(s.Module.Quizzes) == 0,
		}
	case LessonScreen:
		v.Lesson = lessonView(&s)
	case QuizScreen:
		v.Quiz = quizView(s.Runner)
	case QuizResultScreen:
		q := s.Runner.Quiz()
		v.QuizResult = &QuizResultView{QuizID: q.ID, Title: q.Title, Result: s.Runner.Result()}
	case ChallengesScreen:
		v.Challenges = catalog.Challenges()
	case ChallengeDetailScreen:
		c := s.Challenge
		v.ChallengeDetail = &c
	}
	return v
}

func lessonView(s *LessonScreen) *LessonView {
	lv := &LessonView{
		ModuleID:      s.Module.ID,
		ModuleTitle:   s.Module.Title,
		LessonID:      s.Lesson.ID,
		Title:         s.Lesson.Title,
		Type:          s.Lesson.Type,
		Duration:      s.Lesson.Duration,
		SectionIndex:  s.SectionIndex,
		SectionCount:  len(s.Lesson.Sections),
		CanGoBack:     s.CanGoBack(),
		ForwardAction: s.ForwardAction(),
	}
	if sec := s.Section(); sec != nil {
		rendered := RenderSection(*sec)
		lv.Section = &rendered
	}
	return lv
}

func quizView(r *QuizRunner) *QuizView {
	quiz := r.Quiz()
	st := r.State()
	qv := &QuizView{
		QuizID:       quiz.ID,
		Title:        quiz.Title,
		Description:  quiz.Description,
		TimeLimit:    quiz.TimeLimit,
		PassingScore: quiz.EffectivePassingScore(),
		State:        st,
		CanGoBack:    st.QuestionIndex > 0,
		AdvanceLabel: "Check Answer",
	}
	if q := r.Question(); q != nil {
		qv.Question = &QuestionView{ID: q.ID, QuestionText: q.QuestionText, Options: q.Options}
		if st.ShowExplanation {
			correct := q.CorrectAnswerIndex
			qv.Question.CorrectAnswerIndex = &correct
			qv.Question.Explanation = q.Explanation
			qv.AdvanceLabel = "Next Question"
			if st.QuestionIndex == st.TotalQuestions-1 {
				qv.AdvanceLabel = "Finish Quiz"
			}
		}
	}
	return qv
}
