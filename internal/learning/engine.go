package learning

import (
	"context"
	"log"
	"strconv"
	"sync"
	"time"

	"rada-learning/internal/catalog"
	"rada-learning/internal/metrics"
	"rada-learning/internal/models"
)

// rewardTimeout bounds a single reward hook call.
const rewardTimeout = 10 * time.Second

type Options struct {
	Viewer   models.Viewer
	Rewards  RewardHook
	Catalog  []models.Module
	PageSize int
}

// Engine is the screen router for one learner play-through. It is not safe
// for concurrent use; the hosting session serialises calls.
type Engine struct {
	viewer  models.Viewer
	rewards RewardHook
	catalog []models.Module
	browser *catalog.Browser

	screen    Screen
	pending   *Request
	fetchErr  *FetchError
	lastToken uint64

	awards sync.WaitGroup
}

func New(opts Options) *Engine {
	return &Engine{
		viewer:  opts.Viewer,
		rewards: opts.Rewards,
		catalog: opts.Catalog,
		browser: catalog.NewBrowser(opts.Catalog, opts.PageSize),
		screen:  HomeScreen{},
	}
}

func (e *Engine) Screen() Screen { return e.screen }

func (e *Engine) Viewer() models.Viewer { return e.viewer }

// Pending returns the outstanding fetch, if any.
func (e *Engine) Pending() *Request { return e.pending }

// FetchError returns the last failed fetch, cleared by the next successful
// action.
func (e *Engine) FetchError() *FetchError { return e.fetchErr }

func (e *Engine) enter(s Screen) {
	e.screen = s
	e.pending = nil
	e.fetchErr = nil
	metrics.ScreenTransitions.WithLabelValues(string(s.Kind())).Inc()
}

func (e *Engine) request(kind RequestKind, id string) *Request {
	e.lastToken++
	e.pending = &Request{Token: e.lastToken, Kind: kind, ID: id}
	return e.pending
}

// Home is reachable from every screen and drops all module progress.
func (e *Engine) Home() error {
	e.enter(HomeScreen{})
	return nil
}

func (e *Engine) Browse() error {
	if _, ok := e.screen.(HomeScreen); !ok {
		return ErrInvalidTransition
	}
	e.enter(BrowseScreen{Browser: e.browser})
	return nil
}

func (e *Engine) SetFilter(f catalog.Filter) error {
	if _, ok := e.screen.(BrowseScreen); !ok {
		return ErrInvalidTransition
	}
	e.browser.SetFilter(f)
	return nil
}

func (e *Engine) ShowMore() error {
	if _, ok := e.screen.(BrowseScreen); !ok {
		return ErrInvalidTransition
	}
	e.browser.ShowMore()
	return nil
}

func (e *Engine) catalogModule(id string) *models.Module {
	for i := range e.catalog {
		if e.catalog[i].ID == id {
			return &e.catalog[i]
		}
	}
	return nil
}

// OpenModule selects a catalog module. The router enters ModuleDetail right
// away; the returned request loads lessons and quizzes.
func (e *Engine) OpenModule(id string) (*Request, error) {
	from := e.screen.Kind()
	if from != ScreenHome && from != ScreenBrowse {
		return nil, ErrInvalidTransition
	}
	topic := e.catalogModule(id)
	if topic == nil {
		return nil, ErrUnknownModule
	}
	e.enter(ModuleDetailScreen{ModuleContext{Topic: topic.Summary(), From: from}})
	return e.request(RequestModule, id), nil
}

// RetryModule reissues a failed module detail fetch.
func (e *Engine) RetryModule() (*Request, error) {
	s, ok := e.screen.(ModuleDetailScreen)
	if !ok || s.Module != nil || e.pending != nil {
		return nil, ErrInvalidTransition
	}
	e.fetchErr = nil
	return e.request(RequestModule, s.Topic.ID), nil
}

func (e *Engine) loadedModule() (ModuleContext, error) {
	s, ok := e.screen.(ModuleDetailScreen)
	if !ok {
		return ModuleContext{}, ErrInvalidTransition
	}
	if s.Module == nil {
		return ModuleContext{}, ErrModuleNotLoaded
	}
	return s.ModuleContext, nil
}

func (e *Engine) OpenLesson(id string) error {
	mc, err := e.loadedModule()
	if err != nil {
		return err
	}
	lesson := mc.Module.Lesson(id)
	if lesson == nil {
		return ErrUnknownLesson
	}
	e.enter(LessonScreen{ModuleContext: mc, Lesson: lesson})
	return nil
}

// OpenQuiz requests the full quiz. The screen stays on ModuleDetail until the
// result is resolved.
func (e *Engine) OpenQuiz(id string) (*Request, error) {
	mc, err := e.loadedModule()
	if err != nil {
		return nil, err
	}
	found := false
	for _, q := range mc.Module.Quizzes {
		if q.ID == id {
			found = true
			break
		}
	}
	if !found {
		return nil, ErrUnknownQuiz
	}
	e.fetchErr = nil
	return e.request(RequestQuiz, id), nil
}

func (e *Engine) PreviousSection() error {
	s, ok := e.screen.(LessonScreen)
	if !ok {
		return ErrInvalidTransition
	}
	if !s.CanGoBack() {
		return ErrNoPreviousSection
	}
	s.SectionIndex--
	e.enter(s)
	return nil
}

// NextSection pages forward, and on the last section runs the auto-chain:
// next lesson, else the module's first quiz (returned as a request), else
// back to ModuleDetail.
func (e *Engine) NextSection() (*Request, error) {
	s, ok := e.screen.(LessonScreen)
	if !ok {
		return nil, ErrInvalidTransition
	}
	if !s.OnLastSection() {
		s.SectionIndex++
		e.enter(s)
		return nil, nil
	}

	if next := s.Module.NextLesson(s.Lesson.ID); next != nil {
		e.enter(LessonScreen{ModuleContext: s.ModuleContext, Lesson: next})
		return nil, nil
	}
	if len(s.Module.Quizzes) > 0 {
		e.fetchErr = nil
		return e.request(RequestQuiz, s.Module.Quizzes[0].ID), nil
	}
	e.enter(ModuleDetailScreen{s.ModuleContext})
	return nil, nil
}

func (e *Engine) runner() (*QuizRunner, error) {
	s, ok := e.screen.(QuizScreen)
	if !ok {
		return nil, ErrInvalidTransition
	}
	return s.Runner, nil
}

func (e *Engine) SelectAnswer(option int) error {
	r, err := e.runner()
	if err != nil {
		return err
	}
	return r.Select(option)
}

// Advance checks or moves past the current question. Completing the quiz
// enters QuizResult and dispatches the reward hook; a hook failure is logged
// and the result stands.
func (e *Engine) Advance(ctx context.Context) error {
	s, ok := e.screen.(QuizScreen)
	if !ok {
		return ErrInvalidTransition
	}
	done, err := s.Runner.Advance()
	if err != nil || !done {
		return err
	}

	res := s.Runner.Result()
	metrics.QuizCompletions.WithLabelValues(strconv.FormatBool(res.Passed)).Inc()
	e.enter(QuizResultScreen{ModuleContext: s.ModuleContext, Runner: s.Runner})
	e.award(ctx, s.Runner.Quiz())
	return nil
}

// award dispatches the reward hook in the background so a slow hook never
// holds up the transition or the session hosting the engine.
func (e *Engine) award(ctx context.Context, quiz *models.Quiz) {
	if e.rewards == nil || !e.viewer.CanEarnXP {
		return
	}
	hook := e.rewards
	id, amount := quiz.ID, quiz.XPReward
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rewardTimeout)

	e.awards.Add(1)
	go func() {
		defer e.awards.Done()
		defer cancel()
		if err := hook.AwardXP(ctx, ActionCompleteQuiz, amount, id, RefTypeQuiz); err != nil {
			metrics.RewardHookFailures.Inc()
			log.Printf("reward hook failed for quiz %s: %v", id, err)
		}
	}()
}

// WaitRewards blocks until every dispatched reward hook call has returned.
func (e *Engine) WaitRewards() {
	e.awards.Wait()
}

func (e *Engine) PreviousQuestion() error {
	r, err := e.runner()
	if err != nil {
		return err
	}
	return r.Previous()
}

// RetryQuiz is "Try Again" on the result screen.
func (e *Engine) RetryQuiz() error {
	s, ok := e.screen.(QuizResultScreen)
	if !ok {
		return ErrInvalidTransition
	}
	s.Runner.Reset()
	e.enter(QuizScreen{ModuleContext: s.ModuleContext, Runner: s.Runner})
	return nil
}

// ContinueLearning leaves the result screen for the module.
func (e *Engine) ContinueLearning() error {
	s, ok := e.screen.(QuizResultScreen)
	if !ok {
		return ErrInvalidTransition
	}
	s.Runner.Reset()
	e.enter(ModuleDetailScreen{s.ModuleContext})
	return nil
}

func (e *Engine) OpenChallenges() error {
	from := e.screen.Kind()
	if from != ScreenHome && from != ScreenBrowse {
		return ErrInvalidTransition
	}
	e.enter(ChallengesScreen{From: from})
	return nil
}

func (e *Engine) OpenChallenge(id string) error {
	s, ok := e.screen.(ChallengesScreen)
	if !ok {
		return ErrInvalidTransition
	}
	c := catalog.Challenge(id)
	if c == nil {
		return ErrUnknownChallenge
	}
	e.enter(ChallengeDetailScreen{From: s.From, Challenge: *c})
	return nil
}

// Back is the explicit back action of the current screen.
func (e *Engine) Back() error {
	switch s := e.screen.(type) {
	case HomeScreen:
		return ErrInvalidTransition
	case BrowseScreen:
		e.enter(HomeScreen{})
	case ModuleDetailScreen:
		e.enter(origin(s.From, e.browser))
	case LessonScreen:
		e.enter(ModuleDetailScreen{s.ModuleContext})
	case QuizScreen:
		s.Runner.Reset()
		e.enter(ModuleDetailScreen{s.ModuleContext})
	case QuizResultScreen:
		s.Runner.Reset()
		e.enter(ModuleDetailScreen{s.ModuleContext})
	case ChallengesScreen:
		e.enter(origin(s.From, e.browser))
	case ChallengeDetailScreen:
		e.enter(ChallengesScreen{From: s.From})
	}
	return nil
}

func origin(kind ScreenKind, b *catalog.Browser) Screen {
	if kind == ScreenBrowse {
		return BrowseScreen{Browser: b}
	}
	return HomeScreen{}
}

// Resolve applies a fetch result. Results whose token is not the latest
// outstanding request are discarded with ErrStaleResult. A failed fetch
// leaves the screen unchanged and is returned as *FetchError.
func (e *Engine) Resolve(res Result) error {
	if e.pending == nil || e.pending.Token != res.Token || e.pending.Kind != res.Kind || e.pending.ID != res.ID {
		metrics.StaleResults.Inc()
		return ErrStaleResult
	}
	e.pending = nil

	if res.Err != nil {
		metrics.FetchFailures.WithLabelValues(string(res.Kind)).Inc()
		e.fetchErr = &FetchError{Kind: res.Kind, ID: res.ID, Err: res.Err}
		return e.fetchErr
	}

	switch res.Kind {
	case RequestModule:
		s, ok := e.screen.(ModuleDetailScreen)
		if !ok || s.Topic.ID != res.ID || res.Module == nil {
			metrics.StaleResults.Inc()
			return ErrStaleResult
		}
		m := *res.Module
		m.Normalize()
		s.Module = &m
		e.enter(s)
	case RequestQuiz:
		var mc ModuleContext
		switch s := e.screen.(type) {
		case ModuleDetailScreen:
			mc = s.ModuleContext
		case LessonScreen:
			mc = s.ModuleContext
		default:
			metrics.StaleResults.Inc()
			return ErrStaleResult
		}
		if res.Quiz == nil {
			metrics.StaleResults.Inc()
			return ErrStaleResult
		}
		quiz := *res.Quiz
		e.enter(QuizScreen{ModuleContext: mc, Runner: NewQuizRunner(&quiz)})
	}
	return nil
}
