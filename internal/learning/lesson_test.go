package learning

import (
	"context"
	"testing"

	"rada-learning/internal/models"
)

func TestRenderSection(t *testing.T) {
	tests := []struct {
		name    string
		section models.Section
		want    SectionView
	}{
		{
			"text section",
			models.Section{Type: models.LessonText, Title: "Intro", Content: "  The county assembly...  "},
			SectionView{Type: models.LessonText, Title: "Intro", Body: "The county assembly..."},
		},
		{
			"watch url becomes embed",
			models.Section{Type: models.LessonVideo, VideoURL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
			SectionView{Type: models.LessonVideo, EmbedURL: "https://www.youtube.com/embed/dQw4w9WgXcQ"},
		},
		{
			"short url without type",
			models.Section{VideoURL: "https://youtu.be/dQw4w9WgXcQ"},
			SectionView{Type: models.LessonVideo, EmbedURL: "https://www.youtube.com/embed/dQw4w9WgXcQ"},
		},
		{
			"other host kept as is",
			models.Section{Type: models.LessonVideo, VideoURL: "https://cdn.rada.ke/v/1.mp4"},
			SectionView{Type: models.LessonVideo, EmbedURL: "https://cdn.rada.ke/v/1.mp4"},
		},
		{
			"untyped text",
			models.Section{Content: "body"},
			SectionView{Type: models.LessonText, Body: "body"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := RenderSection(tc.section)
			if got != tc.want {
				t.Errorf("Expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestYouTubeID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=10s", "dQw4w9WgXcQ"},
		{"https://youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?v=short", ""},
		{"https://vimeo.com/12345", ""},
		{"::not a url", ""},
	}
	for _, tc := range tests {
		if got := YouTubeID(tc.url); got != tc.want {
			t.Errorf("YouTubeID(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}

func TestLessonScreen_EmptyLessonCompletesImmediately(t *testing.T) {
	src := newFixture()
	m := src.modules["solo"]
	m.Lessons = append(m.Lessons, models.Lesson{ID: "blank", ModuleID: "solo", Title: "Coming soon"})

	e := New(Options{Catalog: catalogOf(src, "solo")})
	openModule(t, e, src, "solo")
	if err := e.OpenLesson("blank"); err != nil {
		t.Fatalf("OpenLesson: %v", err)
	}
	s := e.Screen().(LessonScreen)
	if s.Section() != nil || !s.OnLastSection() {
		t.Fatalf("expected empty lesson to be on its last page")
	}
	if v := e.View(); v.Lesson == nil || v.Lesson.Section != nil || v.Lesson.ForwardAction != ActionFinish {
		t.Fatalf("unexpected lesson view %+v", v.Lesson)
	}
	if _, err := e.NextSection(); err != nil {
		t.Fatalf("NextSection: %v", err)
	}
	if e.Screen().Kind() != ScreenModuleDetail {
		t.Fatalf("expected module_detail, got %s", e.Screen().Kind())
	}
}

func TestView_QuizRevealsAnswerOnlyAfterCheck(t *testing.T) {
	src := newFixture()
	e := New(Options{Catalog: catalogOf(src, "gov")})
	openModule(t, e, src, "gov")
	req, _ := e.OpenQuiz("Q1")
	if err := drive(e, src, req); err != nil {
		t.Fatalf("resolve quiz: %v", err)
	}

	v := e.View()
	if v.Quiz == nil || v.Quiz.Question == nil {
		t.Fatalf("expected quiz view with a question")
	}
	if v.Quiz.Question.CorrectAnswerIndex != nil || v.Quiz.AdvanceLabel != "Check Answer" {
		t.Fatalf("answer leaked before check: %+v", v.Quiz)
	}

	_ = e.SelectAnswer(1)
	_ = e.Advance(context.Background())
	v = e.View()
	if v.Quiz.Question.CorrectAnswerIndex == nil || *v.Quiz.Question.CorrectAnswerIndex != 1 {
		t.Fatalf("expected correct answer revealed after check")
	}
	if v.Quiz.AdvanceLabel != "Next Question" {
		t.Fatalf("expected Next Question label, got %q", v.Quiz.AdvanceLabel)
	}
}
