package services

import (
	"context"
	"fmt"
	urlpkg "net/url"
	"regexp"
	"strings"
	"time"

	yt "github.com/kkdai/youtube/v2"

	"trail-backend/internal/logger"
	"trail-backend/internal/models"
)

// VideoResolver fills in details the model left out of a video entry.
type VideoResolver interface {
	Enrich(ctx context.Context, course *models.GeneratedCourse)
}

type videoLookup interface {
	GetVideoContext(ctx context.Context, url string) (*yt.Video, error)
}

// YouTubeService looks up video durations for YouTube links. Enrichment is
// best effort: lookups that fail leave the entry untouched.
type YouTubeService struct {
	client  videoLookup
	log     *logger.Logger
	timeout time.Duration
}

func NewYouTubeService(log *logger.Logger) *YouTubeService {
	return &YouTubeService{
		client:  &yt.Client{},
		log:     log.With("service", "YouTubeService"),
		timeout: 10 * time.Second,
	}
}

func (s *YouTubeService) Enrich(ctx context.Context, course *models.GeneratedCourse) {
	if course == nil {
		return
	}
	for mi := range course.Modules {
		videos := course.Modules[mi].Content.Videos
		for vi := range videos {
			v := &videos[vi]
			if v.Link == "" || extractVideoID(v.Link) == "" {
				continue
			}
			if err := s.enrichVideo(ctx, v); err != nil {
				s.log.Debug("video lookup failed", "link", v.Link, "error", err.Error())
			}
		}
	}
}

func (s *YouTubeService) enrichVideo(ctx context.Context, v *models.Video) error {
	lookupCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	video, err := s.client.GetVideoContext(lookupCtx, v.Link)
	if err != nil {
		return err
	}
	if video.Duration > 0 {
		v.Duration = formatDuration(video.Duration)
	}
	if strings.TrimSpace(v.Title) == "" && video.Title != "" {
		v.Title = video.Title
	}
	return nil
}

// formatDuration renders m:ss, or h:mm:ss past the hour.
func formatDuration(d time.Duration) string {
	total := int(d.Round(time.Second).Seconds())
	h, m, sec := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}

var videoIDPattern = regexp.MustCompile(`(?:v=|\/v\/|youtu\.be\/|embed\/|shorts\/)([a-zA-Z0-9_-]{11})`)

func extractVideoID(url string) string {
	parsed, err := urlpkg.Parse(url)
	if err == nil {
		host := strings.ToLower(parsed.Host)
		path := strings.Trim(parsed.Path, "/")

		// youtube.com/watch?v=VIDEO_ID
		if strings.Contains(host, "youtube.com") {
			if v := parsed.Query().Get("v"); len(v) == 11 {
				return v
			}

			parts := strings.Split(path, "/")
			if len(parts) >= 2 {
				switch parts[0] {
				case "shorts", "embed", "v":
					if len(parts[1]) == 11 {
						return parts[1]
					}
				}
			}
		}

		// youtu.be/VIDEO_ID
		if strings.Contains(host, "youtu.be") {
			candidate := strings.Split(path, "/")[0]
			if len(candidate) == 11 {
				return candidate
			}
		}

		if !strings.Contains(host, "youtube.com") && !strings.Contains(host, "youtu.be") {
			return ""
		}
	}

	if m := videoIDPattern.FindStringSubmatch(url); len(m) > 1 {
		return m[1]
	}
	return ""
}
