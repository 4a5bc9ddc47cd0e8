package learning

import (
	"net/url"
	"regexp"
	"strings"

	"rada-learning/internal/models"
)

// Section returns the current section, or nil for an empty lesson.
func (s *LessonScreen) Section() *models.Section {
	if s.SectionIndex < 0 || s.SectionIndex >= len(s.Lesson.Sections) {
		return nil
	}
	return &s.Lesson.Sections[s.SectionIndex]
}

func (s *LessonScreen) CanGoBack() bool {
	return s.SectionIndex > 0
}

// OnLastSection is true when the forward action completes the lesson. An
// empty lesson is on its last page immediately.
func (s *LessonScreen) OnLastSection() bool {
	return s.SectionIndex >= len(s.Lesson.Sections)-1
}

type CompletionAction string

const (
	ActionNextSection CompletionAction = "next_section"
	ActionNextLesson  CompletionAction = "next_lesson"
	ActionStartQuiz   CompletionAction = "start_quiz"
	ActionFinish      CompletionAction = "finish"
)

// ForwardAction names what the pager's forward button will do.
func (s *LessonScreen) ForwardAction() CompletionAction {
	if !s.OnLastSection() {
		return ActionNextSection
	}
	if s.Module.NextLesson(s.Lesson.ID) != nil {
		return ActionNextLesson
	}
	if len(s.Module.Quizzes) > 0 {
		return ActionStartQuiz
	}
	return ActionFinish
}

// SectionView is the rendered form of a section.
type SectionView struct {
	Type     models.LessonType `json:"type"`
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	EmbedURL string            `json:"embed_url,omitempty"`
}

var youtubeIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// RenderSection depends only on the section's type, content and video URL.
func RenderSection(sec models.Section) SectionView {
	v := SectionView{
		Type:  sec.Type,
		Title: sec.Title,
		Body:  strings.TrimSpace(sec.Content),
	}
	if sec.VideoURL != "" {
		v.EmbedURL = embedURL(sec.VideoURL)
		if v.Type == "" {
			v.Type = models.LessonVideo
		}
	}
	if v.Type == "" {
		v.Type = models.LessonText
	}
	return v
}

func embedURL(raw string) string {
	if id := YouTubeID(raw); id != "" {
		return "https://www.youtube.com/embed/" + id
	}
	return raw
}

// YouTubeID extracts the video id from watch, short and embed URLs.
func YouTubeID(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(u.Host, "www.")
	var id string
	switch host {
	case "youtu.be":
		id = strings.Trim(u.Path, "/")
	case "youtube.com", "m.youtube.com":
		if strings.HasPrefix(u.Path, "/embed/") {
			id = strings.TrimPrefix(u.Path, "/embed/")
		} else {
			id = u.Query().Get("v")
		}
	}
	if !youtubeIDPattern.MatchString(id) {
		return ""
	}
	return id
}
