package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"trail-backend/internal/models"
)

func TestBuildCourseSystemPrompt_OptionalSections(t *testing.T) {
	cfg := testConfig(3)
	prompt := buildCourseSystemPrompt(cfg)
	assert.Contains(t, prompt, "Generate exactly 3 modules")
	assert.Contains(t, prompt, `"notes"`)
	assert.Contains(t, prompt, `"finalExam"`)

	cfg.IncludeNotes = false
	cfg.ExamCount = 0
	prompt = buildCourseSystemPrompt(cfg)
	assert.NotContains(t, prompt, `"notes"`)
	assert.NotContains(t, prompt, `"finalExam"`)
	assert.Contains(t, prompt, `"quiz"`)
}

func TestBuildCourseUserPrompt_Defaults(t *testing.T) {
	prompt := buildCourseUserPrompt(models.CourseConfig{CourseType: models.CourseTypeCollege, ModuleCount: 2, ExamCount: 2})

	assert.Contains(t, prompt, "Create a college course about: Default Course.")
	assert.Contains(t, prompt, "Target audience: General audience.")
	assert.Contains(t, prompt, "Description: No description provided.")
	assert.Contains(t, prompt, "Include 2 exams.")
	assert.NotContains(t, prompt, "study notes")
	assert.NotContains(t, prompt, "reference resources")
}

func TestBuildCourseUserPrompt_Resources(t *testing.T) {
	cfg := testConfig(2)
	cfg.CourseSpecs.Resources = []models.Resource{
		{Type: models.ResourceLink, Title: "Tour of Go", URL: "https://go.dev/tour"},
		{Type: models.ResourceBook, Title: "The Go Programming Language", Author: "Donovan"},
		{Type: models.ResourceNote, Title: "My notes", Description: "focus on channels"},
	}
	prompt := buildCourseUserPrompt(cfg)

	assert.Contains(t, prompt, "Include study notes.")
	assert.Contains(t, prompt, "- [link] Tour of Go (https://go.dev/tour)")
	assert.Contains(t, prompt, "- [book] The Go Programming Language by Donovan")
	assert.Contains(t, prompt, "- [note] My notes: focus on channels")
}
