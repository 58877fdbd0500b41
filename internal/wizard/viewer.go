package wizard

import (
	"fmt"

	"trail-backend/internal/models"
)

// ViewMode selects which panel of the student viewer is rendered. Quiz is
// one mode among the others; leaving it is an ordinary mode change.
type ViewMode string

const (
	ModeContent  ViewMode = "content"
	ModeReadings ViewMode = "readings"
	ModeVideos   ViewMode = "videos"
	ModeQuiz     ViewMode = "quiz"
)

func (m ViewMode) Valid() bool {
	switch m {
	case ModeContent, ModeReadings, ModeVideos, ModeQuiz:
		return true
	}
	return false
}

type Direction string

const (
	DirectionPrev Direction = "prev"
	DirectionNext Direction = "next"
)

type Viewer struct {
	ModuleIndex int      `json:"moduleIndex"`
	Mode        ViewMode `json:"mode"`
}

// NavigateModule moves the viewer one module back or forward, clamped to the
// first and last module.
func (s *State) NavigateModule(dir Direction) error {
	if !s.Preview || s.Viewer == nil || s.Course == nil {
		return invalid("navigate module", s)
	}
	last := len(s.Course.Modules) - 1
	switch dir {
	case DirectionPrev:
		if s.Viewer.ModuleIndex > 0 {
			s.Viewer.ModuleIndex--
		}
	case DirectionNext:
		if s.Viewer.ModuleIndex < last {
			s.Viewer.ModuleIndex++
		}
	default:
		return fmt.Errorf("%w: direction %q", ErrInvalidInput, dir)
	}
	return nil
}

func (s *State) SetViewMode(mode ViewMode) error {
	if !s.Preview || s.Viewer == nil {
		return invalid("set view mode", s)
	}
	if !mode.Valid() {
		return fmt.Errorf("%w: view mode %q", ErrInvalidInput, mode)
	}
	s.Viewer.Mode = mode
	return nil
}

// ActiveModule is the module the viewer currently shows.
func (s *State) ActiveModule() (*models.CourseModule, bool) {
	if s.Viewer == nil || s.Course == nil {
		return nil, false
	}
	i := s.Viewer.ModuleIndex
	if i < 0 || i >= len(s.Course.Modules) {
		return nil, false
	}
	return &s.Course.Modules[i], true
}
