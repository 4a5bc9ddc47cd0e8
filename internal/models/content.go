package models

import (
	"errors"
	"strings"
)

// ErrContentNotFound is returned by content sources for unknown module or
// quiz ids.
var ErrContentNotFound = errors.New("content not found")

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "Beginner"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
)

type LessonType string

const (
	LessonText        LessonType = "text"
	LessonVideo       LessonType = "video"
	LessonInteractive LessonType = "interactive"
)

// Module is a top-level learning unit. Catalog listings carry modules without
// Lessons/Quizzes; the detail fetch fills them in.
type Module struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Subtitle   string     `json:"subtitle"`
	Category   string     `json:"category"`
	Difficulty Difficulty `json:"difficulty"`
	Duration   string     `json:"duration"`
	XPReward   int        `json:"xp_reward"`
	Lessons    []Lesson   `json:"lessons,omitempty"`
	Quizzes    []Quiz     `json:"quizzes,omitempty"`
}

type Lesson struct {
	ID       string     `json:"id"`
	ModuleID string     `json:"module_id"`
	Title    string     `json:"title"`
	Type     LessonType `json:"type"`
	Duration string     `json:"duration"`
	Order    int        `json:"order"`
	Content  string     `json:"content,omitempty"`
	VideoURL string     `json:"video_url,omitempty"`
	Sections []Section  `json:"sections"`
}

type Section struct {
	Type     LessonType `json:"type"`
	Title    string     `json:"title"`
	Content  string     `json:"content"`
	VideoURL string     `json:"video_url,omitempty"`
}

// LessonIndex returns the position of the lesson in the module's lesson
// sequence, or -1.
func (m *Module) LessonIndex(lessonID string) int {
	for i := range m.Lessons {
		if m.Lessons[i].ID == lessonID {
			return i
		}
	}
	return -1
}

func (m *Module) Lesson(lessonID string) *Lesson {
	if i := m.LessonIndex(lessonID); i >= 0 {
		return &m.Lessons[i]
	}
	return nil
}

// NextLesson returns the lesson after lessonID, or nil when lessonID is last
// or unknown.
func (m *Module) NextLesson(lessonID string) *Lesson {
	i := m.LessonIndex(lessonID)
	if i < 0 || i+1 >= len(m.Lessons) {
		return nil
	}
	return &m.Lessons[i+1]
}

// Summary strips lessons and quizzes, leaving the catalog view of the module.
func (m Module) Summary() Module {
	m.Lessons = nil
	m.Quizzes = nil
	return m
}

// Normalize derives the single section the content API implies when a lesson
// arrives with only its own content/video fields.
func (l *Lesson) Normalize() {
	if len(l.Sections) > 0 {
		return
	}
	if strings.TrimSpace(l.Content) == "" && l.VideoURL == "" {
		return
	}
	l.Sections = []Section{{
		Type:     l.Type,
		Title:    l.Title,
		Content:  l.Content,
		VideoURL: l.VideoURL,
	}}
}

// Normalize applies Lesson.Normalize to every lesson and defaults missing
// owner ids.
func (m *Module) Normalize() {
	for i := range m.Lessons {
		if m.Lessons[i].ModuleID == "" {
			m.Lessons[i].ModuleID = m.ID
		}
		m.Lessons[i].Normalize()
	}
	for i := range m.Quizzes {
		if m.Quizzes[i].ModuleID == "" {
			m.Quizzes[i].ModuleID = m.ID
		}
	}
}
