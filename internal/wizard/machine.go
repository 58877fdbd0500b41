// Package wizard holds the course-creation state machine. It is pure state:
// persistence, generation and notifications live in the services package.
package wizard

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"trail-backend/internal/models"
)

type Step string

const (
	StepWelcome    Step = "welcome"
	StepImport     Step = "import"
	StepConfigure  Step = "configure"
	StepGenerating Step = "generating"
	StepModules    Step = "modules"
	StepError      Step = "error"
)

// Task names the phase shown on the loading screen while generating.
type Task string

const (
	TaskStructuring Task = "structuring"
	TaskMaterials   Task = "generating-materials"
	TaskAssessments Task = "generating-assessments"
	TaskVideos      Task = "curating-videos"
	TaskFinalizing  Task = "finalizing"
)

var (
	ErrInvalidTransition     = errors.New("invalid wizard transition")
	ErrGenerationInFlight    = errors.New("a generation is already in flight")
	ErrStaleTicket           = errors.New("generation ticket is no longer current")
	ErrResourceTitleRequired = errors.New("resource title is required")
	ErrInvalidInput          = errors.New("invalid wizard input")
)

type Settings struct {
	ModuleCount  int  `json:"moduleCount"`
	ExamCount    int  `json:"examCount"`
	IncludeNotes bool `json:"includeNotes"`
}

func DefaultSettings() Settings {
	return Settings{ModuleCount: 5, ExamCount: 1, IncludeNotes: true}
}

// Failure is the user-visible record of the last failed generation.
type Failure struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type State struct {
	ID          uuid.UUID               `json:"id"`
	OwnerID     uuid.UUID               `json:"ownerId"`
	Step        Step                    `json:"step"`
	Preview     bool                    `json:"preview"`
	Landing     bool                    `json:"landing"`
	CourseType  models.CourseType       `json:"courseType,omitempty"`
	Specs       models.CourseSpecs      `json:"specs"`
	Settings    Settings                `json:"settings"`
	Busy        bool                    `json:"busy"`
	Ticket      string                  `json:"ticket,omitempty"`
	CurrentTask Task                    `json:"currentTask,omitempty"`
	Course      *models.GeneratedCourse `json:"course,omitempty"`
	CourseID    *uuid.UUID              `json:"courseId,omitempty"`
	LastError   *Failure                `json:"lastError,omitempty"`
	Viewer      *Viewer                 `json:"viewer,omitempty"`
	CreatedAt   time.Time               `json:"createdAt"`
	UpdatedAt   time.Time               `json:"updatedAt"`
}

func New(ownerID uuid.UUID, now time.Time) *State {
	return &State{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Step:      StepWelcome,
		Specs:     models.CourseSpecs{Resources: []models.Resource{}},
		Settings:  DefaultSettings(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func invalid(action string, s *State) error {
	where := string(s.Step)
	if s.Landing {
		where = "landing"
	}
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, action, where)
}

// at reports whether the wizard sits on step with no overlay in front of it.
func (s *State) at(step Step) bool {
	return s.Step == step && !s.Landing
}

func (s *State) ChooseCourseType(t models.CourseType) error {
	if !s.at(StepWelcome) {
		return invalid("choose course type", s)
	}
	if !t.Valid() {
		return fmt.Errorf("%w: course type %q", ErrInvalidInput, t)
	}
	s.CourseType = t
	s.Step = StepImport
	return nil
}

func normalizeResource(r models.Resource) (models.Resource, error) {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return r, ErrResourceTitleRequired
	}
	if !r.Type.Valid() {
		return r, fmt.Errorf("%w: resource type %q", ErrInvalidInput, r.Type)
	}
	switch r.Type {
	case models.ResourceLink:
		r.Author = ""
	case models.ResourceBook:
		r.URL = ""
	case models.ResourceNote:
		r.URL, r.Author = "", ""
	}
	return r, nil
}

func (s *State) AddResource(r models.Resource) error {
	if !s.at(StepImport) {
		return invalid("add resource", s)
	}
	r, err := normalizeResource(r)
	if err != nil {
		return err
	}
	s.Specs.Resources = append(s.Specs.Resources, r)
	return nil
}

func (s *State) RemoveResource(index int) error {
	if !s.at(StepImport) {
		return invalid("remove resource", s)
	}
	if index < 0 || index >= len(s.Specs.Resources) {
		return fmt.Errorf("%w: resource index %d", ErrInvalidInput, index)
	}
	s.Specs.Resources = append(s.Specs.Resources[:index:index], s.Specs.Resources[index+1:]...)
	return nil
}

// SubmitSpecs captures the content form and moves on to configuration.
// Resources in specs replace the draft list; nil keeps the draft list.
func (s *State) SubmitSpecs(specs models.CourseSpecs) error {
	if !s.at(StepImport) {
		return invalid("submit specs", s)
	}
	resources := s.Specs.Resources
	if specs.Resources != nil {
		resources = make([]models.Resource, 0, len(specs.Resources))
		for _, r := range specs.Resources {
			nr, err := normalizeResource(r)
			if err != nil {
				return err
			}
			resources = append(resources, nr)
		}
	}
	s.Specs = models.CourseSpecs{
		CourseTitle:       strings.TrimSpace(specs.CourseTitle),
		CourseDescription: strings.TrimSpace(specs.CourseDescription),
		TargetAudience:    strings.TrimSpace(specs.TargetAudience),
		Resources:         resources,
	}
	s.Step = StepConfigure
	return nil
}

// Next advances import to configure keeping whatever specs are in the draft.
func (s *State) Next() error {
	if !s.at(StepImport) {
		return invalid("next", s)
	}
	s.Step = StepConfigure
	return nil
}

func (s *State) Back() error {
	switch {
	case s.at(StepImport):
		s.Step = StepWelcome
	case s.at(StepConfigure):
		s.Step = StepImport
	default:
		return invalid("back", s)
	}
	return nil
}

func (s *State) Configure(settings Settings) error {
	if !s.at(StepConfigure) {
		return invalid("configure", s)
	}
	if settings.ModuleCount < 1 || settings.ExamCount < 0 {
		return fmt.Errorf("%w: moduleCount must be at least 1 and examCount non-negative", ErrInvalidInput)
	}
	s.Settings = settings
	return nil
}

// Config is the generation request the current draft describes.
func (s *State) Config() models.CourseConfig {
	return models.CourseConfig{
		CourseType:   s.CourseType,
		ModuleCount:  s.Settings.ModuleCount,
		ExamCount:    s.Settings.ExamCount,
		IncludeNotes: s.Settings.IncludeNotes,
		CourseSpecs:  s.Specs,
	}.Clone()
}

// BeginGeneration enters the generating step and issues a fresh ticket. Only
// results carrying that ticket may complete or fail this attempt.
func (s *State) BeginGeneration() (string, models.CourseConfig, error) {
	if s.Busy {
		return "", models.CourseConfig{}, ErrGenerationInFlight
	}
	if !s.at(StepConfigure) {
		return "", models.CourseConfig{}, invalid("generate", s)
	}
	if !s.CourseType.Valid() {
		return "", models.CourseConfig{}, fmt.Errorf("%w: course type not chosen", ErrInvalidInput)
	}
	s.Ticket = uuid.NewString()
	s.Busy = true
	s.Step = StepGenerating
	s.CurrentTask = TaskStructuring
	s.LastError = nil
	return s.Ticket, s.Config(), nil
}

func (s *State) checkTicket(ticket string) error {
	if ticket == "" || ticket != s.Ticket || s.Step != StepGenerating {
		return ErrStaleTicket
	}
	return nil
}

func (s *State) MarkTask(ticket string, task Task) error {
	if err := s.checkTicket(ticket); err != nil {
		return err
	}
	s.CurrentTask = task
	return nil
}

func (s *State) CompleteGeneration(ticket string, courseID uuid.UUID, course *models.GeneratedCourse) error {
	if err := s.checkTicket(ticket); err != nil {
		return err
	}
	s.clearGeneration()
	s.Step = StepModules
	s.Course = course
	s.CourseID = &courseID
	s.Preview = false
	s.Viewer = nil
	return nil
}

func (s *State) FailGeneration(ticket string, failure Failure) error {
	if err := s.checkTicket(ticket); err != nil {
		return err
	}
	s.clearGeneration()
	s.Step = StepError
	s.LastError = &failure
	return nil
}

func (s *State) clearGeneration() {
	s.Busy = false
	s.Ticket = ""
	s.CurrentTask = ""
}

// DismissError returns to configure with every input intact so the author
// can retry.
func (s *State) DismissError() error {
	if !s.at(StepError) {
		return invalid("dismiss error", s)
	}
	s.LastError = nil
	s.Step = StepConfigure
	return nil
}

// ShowLanding opens the course list. An in-flight generation is abandoned:
// its result will arrive with a stale ticket and be dropped.
func (s *State) ShowLanding() error {
	if s.Step == StepGenerating {
		s.clearGeneration()
		s.Step = StepConfigure
	}
	s.Landing = true
	s.Preview = false
	s.Viewer = nil
	return nil
}

func (s *State) HideLanding() error {
	if !s.Landing {
		return invalid("hide landing", s)
	}
	s.Landing = false
	return nil
}

// CreateNew starts a fresh draft from the course list.
func (s *State) CreateNew() error {
	if !s.Landing {
		return invalid("create new", s)
	}
	s.clearGeneration()
	s.Landing = false
	s.Preview = false
	s.Step = StepWelcome
	s.CourseType = ""
	s.Specs = models.CourseSpecs{Resources: []models.Resource{}}
	s.Settings = DefaultSettings()
	s.Course = nil
	s.CourseID = nil
	s.LastError = nil
	s.Viewer = nil
	return nil
}

// SelectCourse shows a stored course. The caller loads it from storage.
func (s *State) SelectCourse(courseID uuid.UUID, course *models.GeneratedCourse) error {
	if !s.Landing {
		return invalid("select course", s)
	}
	if course == nil {
		return fmt.Errorf("%w: course content missing", ErrInvalidInput)
	}
	s.Landing = false
	s.Step = StepModules
	s.Course = course
	s.CourseID = &courseID
	s.Preview = false
	s.Viewer = nil
	s.LastError = nil
	return nil
}

func (s *State) OpenPreview() error {
	if !s.at(StepModules) || s.Course == nil || len(s.Course.Modules) == 0 {
		return invalid("open preview", s)
	}
	s.Preview = true
	s.Viewer = &Viewer{ModuleIndex: 0, Mode: ModeContent}
	return nil
}

func (s *State) ClosePreview() error {
	if !s.Preview || s.Landing {
		return invalid("close preview", s)
	}
	s.Preview = false
	s.Viewer = nil
	return nil
}
