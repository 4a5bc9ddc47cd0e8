package services

import (
	"context"
	"fmt"
	"log"
	"time"

	yt "github.com/kkdai/youtube/v2"

	"rada-learning/internal/learning"
	"rada-learning/internal/models"
)

type videoFetcher interface {
	GetVideoContext(ctx context.Context, url string) (*yt.Video, error)
}

// VideoService looks up YouTube metadata for lessons imported without a
// duration.
type VideoService struct {
	ytClient videoFetcher
}

func NewVideoService() *VideoService {
	return &VideoService{ytClient: &yt.Client{}}
}

func (s *VideoService) Duration(ctx context.Context, videoURL string) (time.Duration, error) {
	id := learning.YouTubeID(videoURL)
	if id == "" {
		return 0, fmt.Errorf("not a YouTube URL: %q", videoURL)
	}
	video, err := s.ytClient.GetVideoContext(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch YouTube video metadata: %w", err)
	}
	return video.Duration, nil
}

// FillDurations sets the duration of every video lesson that has none, and
// the module duration from its lessons when that is empty too. Lookup
// failures are logged and leave the field blank.
func (s *VideoService) FillDurations(ctx context.Context, m *models.Module) {
	var total time.Duration
	for i := range m.Lessons {
		l := &m.Lessons[i]
		if l.Duration != "" {
			continue
		}
		url := lessonVideoURL(l)
		if url == "" {
			continue
		}
		d, err := s.Duration(ctx, url)
		if err != nil {
			log.Printf("Video lookup for lesson %s failed: %v", l.ID, err)
			continue
		}
		l.Duration = FormatDuration(d)
		total += d
	}
	if m.Duration == "" && total > 0 {
		m.Duration = FormatDuration(total)
	}
}

func lessonVideoURL(l *models.Lesson) string {
	if l.VideoURL != "" {
		return l.VideoURL
	}
	for _, s := range l.Sections {
		if s.VideoURL != "" {
			return s.VideoURL
		}
	}
	return ""
}

// FormatDuration renders durations the way the catalog shows them:
// "45 min", "1h 20min".
func FormatDuration(d time.Duration) string {
	minutes := int((d + 30*time.Second) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	h, m := minutes/60, minutes%60
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dmin", h, m)
}
