package models

import (
	"time"

	"github.com/google/uuid"
)

type CourseType string

const (
	CourseTypeTraditional CourseType = "traditional"
	CourseTypeCollege     CourseType = "college"
)

func (t CourseType) Valid() bool {
	return t == CourseTypeTraditional || t == CourseTypeCollege
}

type ResourceType string

const (
	ResourceLink ResourceType = "link"
	ResourceBook ResourceType = "book"
	ResourceNote ResourceType = "note"
)

func (t ResourceType) Valid() bool {
	switch t {
	case ResourceLink, ResourceBook, ResourceNote:
		return true
	}
	return false
}

// Resource is a reference the author attaches to the course specs. Links carry
// a URL, books an author, notes only a description.
type Resource struct {
	Type        ResourceType `json:"type" validate:"required,oneof=link book note"`
	Title       string       `json:"title" validate:"required"`
	URL         string       `json:"url,omitempty"`
	Author      string       `json:"author,omitempty"`
	Description string       `json:"description,omitempty"`
}

type CourseSpecs struct {
	CourseTitle       string     `json:"courseTitle"`
	CourseDescription string     `json:"courseDescription"`
	TargetAudience    string     `json:"targetAudience"`
	Resources         []Resource `json:"resources" validate:"dive"`
}

// CourseConfig is the generation request. It is snapshotted when generation
// begins and never mutated afterwards.
type CourseConfig struct {
	CourseType   CourseType  `json:"courseType" validate:"required,oneof=traditional college"`
	ModuleCount  int         `json:"moduleCount" validate:"min=1,max=20"`
	ExamCount    int         `json:"examCount" validate:"min=0,max=5"`
	IncludeNotes bool        `json:"includeNotes"`
	CourseSpecs  CourseSpecs `json:"courseSpecs"`
}

// Clone returns a copy that shares no slices with c.
func (c CourseConfig) Clone() CourseConfig {
	out := c
	if c.CourseSpecs.Resources != nil {
		out.CourseSpecs.Resources = append([]Resource(nil), c.CourseSpecs.Resources...)
	}
	return out
}

// ──── Generated content ────

type Reading struct {
	Title string `json:"title"`
	Pages string `json:"pages,omitempty"`
	Link  string `json:"link,omitempty"`
}

type Video struct {
	Title    string `json:"title"`
	Duration string `json:"duration"`
	Link     string `json:"link,omitempty"`
}

type ModuleContent struct {
	Lecture   string    `json:"lecture"`
	Readings  []Reading `json:"readings"`
	Videos    []Video   `json:"videos"`
	Exercises []string  `json:"exercises"`
}

type QuizQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Correct     int      `json:"correct"`
	Explanation string   `json:"explanation"`
}

type Quiz struct {
	Questions []QuizQuestion `json:"questions"`
}

type CourseModule struct {
	ID          int           `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Content     ModuleContent `json:"content"`
	Quiz        Quiz          `json:"quiz"`
	Notes       string        `json:"notes,omitempty"`
}

type GeneratedCourse struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Modules     []CourseModule `json:"modules"`
	FinalExam   *Quiz          `json:"finalExam,omitempty"`
}

// ──── Stored courses ────

type Course struct {
	ID             uuid.UUID       `json:"id"`
	OwnerID        uuid.UUID       `json:"ownerId"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	CourseType     CourseType      `json:"courseType"`
	ModuleCount    int             `json:"moduleCount"`
	Config         CourseConfig    `json:"config"`
	Content        GeneratedCourse `json:"content"`
	CreatedAt      time.Time       `json:"createdAt"`
	LastAccessedAt time.Time       `json:"lastAccessedAt"`
}

// CourseSummary is one entry of the "My Courses" list.
type CourseSummary struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	ModuleCount  int        `json:"moduleCount"`
	Type         CourseType `json:"type"`
	LastAccessed time.Time  `json:"lastAccessed"`
}

func (c *Course) Summary() CourseSummary {
	title := c.Title
	if title == "" {
		title = "Untitled Course"
	}
	description := c.Description
	if description == "" {
		description = "No description provided"
	}
	return CourseSummary{
		ID:           c.ID,
		Title:        title,
		Description:  description,
		ModuleCount:  c.ModuleCount,
		Type:         c.CourseType,
		LastAccessed: c.LastAccessedAt,
	}
}

// NewCourse builds the stored record for a freshly generated course. Title
// and description fall back to the author's specs when the model left them out.
func NewCourse(ownerID uuid.UUID, cfg CourseConfig, content GeneratedCourse, now time.Time) *Course {
	title := content.Title
	if title == "" {
		title = cfg.CourseSpecs.CourseTitle
	}
	description := content.Description
	if description == "" {
		description = cfg.CourseSpecs.CourseDescription
	}
	return &Course{
		ID:             uuid.New(),
		OwnerID:        ownerID,
		Title:          title,
		Description:    description,
		CourseType:     cfg.CourseType,
		ModuleCount:    len(content.Modules),
		Config:         cfg,
		Content:        content,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
}

// ──── Endpoint payloads ────

type GenerateCourseResponse struct {
	Success bool             `json:"success"`
	Course  *GeneratedCourse `json:"course"`
}

type DescriptionRequest struct {
	ModuleTitle string `json:"moduleTitle" validate:"required"`
}

type DescriptionResponse struct {
	Description string `json:"description"`
}
