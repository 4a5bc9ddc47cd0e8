package learning

import (
	"rada-learning/internal/catalog"
	"rada-learning/internal/models"
)

type ScreenKind string

const (
	ScreenHome            ScreenKind = "home"
	ScreenBrowse          ScreenKind = "browse"
	ScreenModuleDetail    ScreenKind = "module_detail"
	ScreenLesson          ScreenKind = "lesson"
	ScreenQuiz            ScreenKind = "quiz"
	ScreenQuizResult      ScreenKind = "quiz_result"
	ScreenChallenges      ScreenKind = "challenges"
	ScreenChallengeDetail ScreenKind = "challenge_detail"
)

// Screen is the engine state. Each implementation carries only the
// selection its screen needs.
type Screen interface {
	Kind() ScreenKind
}

type HomeScreen struct{}

type BrowseScreen struct {
	Browser *catalog.Browser
}

// ModuleContext is shared by every screen inside an opened module.
type ModuleContext struct {
	Topic  models.Module  // selectedTopic, the catalog entry
	Module *models.Module // nil until the detail fetch succeeds
	From   ScreenKind     // Home or Browse, where back leads
}

type ModuleDetailScreen struct {
	ModuleContext
}

type LessonScreen struct {
	ModuleContext
	Lesson       *models.Lesson
	SectionIndex int
}

type QuizScreen struct {
	ModuleContext
	Runner *QuizRunner
}

type QuizResultScreen struct {
	ModuleContext
	Runner *QuizRunner
}

type ChallengesScreen struct {
	From ScreenKind
}

type ChallengeDetailScreen struct {
	From      ScreenKind // origin of the Challenges screen
	Challenge models.Challenge
}

func (HomeScreen) Kind() ScreenKind { return ScreenHome }
func (BrowseScreen) Kind() ScreenKind { return ScreenBrowse }
func (ModuleDetailScreen) Kind() ScreenKind { return ScreenModuleDetail }
func (LessonScreen) Kind() ScreenKind { return ScreenLesson }
func (QuizScreen) Kind() ScreenKind { return ScreenQuiz }
func (QuizResultScreen) Kind() ScreenKind { return ScreenQuizResult }
func (ChallengesScreen) Kind() ScreenKind { return ScreenChallenges }
func (ChallengeDetailScreen) Kind() ScreenKind { return ScreenChallengeDetail }
