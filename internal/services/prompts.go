package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"trail-backend/internal/models"
)

const (
	defaultCourseTitle       = "Default Course"
	defaultTargetAudience    = "General audience"
	defaultCourseDescription = "No description provided"

	descriptionSystemPrompt = "You are a helpful course content creator."
)

func exampleQuestion() models.QuizQuestion {
	return models.QuizQuestion{
		Question:    "Sample question?",
		Options:     []string{"Option 1", "Option 2", "Option 3", "Option 4"},
		Correct:     0,
		Explanation: "Example explanation",
	}
}

// formatExample is the literal course the model is asked to imitate. Notes and
// the final exam appear only when the config asks for them.
func formatExample(cfg models.CourseConfig) models.GeneratedCourse {
	module := models.CourseModule{
		ID:          1,
		Title:       "Module Example",
		Description: "Module description example",
		Content: models.ModuleContent{
			Lecture:   "Lecture content example",
			Readings:  []models.Reading{{Title: "Reading 1", Pages: "1-10"}},
			Videos:    []models.Video{{Title: "Video 1", Duration: "10:00"}},
			Exercises: []string{"Exercise 1"},
		},
		Quiz: models.Quiz{Questions: []models.QuizQuestion{exampleQuestion()}},
	}
	if cfg.IncludeNotes {
		module.Notes = "Study notes example"
	}

	course := models.GeneratedCourse{
		Title:       "Example Course Title",
		Description: "Course description example",
		Modules:     []models.CourseModule{module},
	}
	if cfg.ExamCount > 0 {
		course.FinalExam = &models.Quiz{Questions: []models.QuizQuestion{exampleQuestion()}}
	}
	return course
}

func buildCourseSystemPrompt(cfg models.CourseConfig) string {
	example, _ := json.MarshalIndent(formatExample(cfg), "", "  ")

	var b strings.Builder
	b.WriteString("You are an expert course creator. Your task is to generate a course structure exactly matching this JSON format:\n")
	b.Write(example)
	b.WriteString("\n\nRules:\n")
	b.WriteString("1. Your response must be valid JSON\n")
	b.WriteString("2. Follow the exact structure shown\n")
	b.WriteString(fmt.Sprintf("3. Generate exactly %d modules\n", cfg.ModuleCount))
	b.WriteString("4. Include ONLY the specified fields\n")
	b.WriteString("5. Do not add any explanation or text outside the JSON structure\n")
	b.WriteString("6. Every quiz question has 4 options and \"correct\" is the zero-based index of the right option\n")
	return b.String()
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func buildCourseUserPrompt(cfg models.CourseConfig) string {
	specs := cfg.CourseSpecs

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Create a %s course about: %s.\n", cfg.CourseType, orDefault(specs.CourseTitle, defaultCourseTitle)))
	b.WriteString(fmt.Sprintf("Target audience: %s.\n", orDefault(specs.TargetAudience, defaultTargetAudience)))
	b.WriteString(fmt.Sprintf("Description: %s.\n", orDefault(specs.CourseDescription, defaultCourseDescription)))
	b.WriteString(fmt.Sprintf("Include %d exams.\n", cfg.ExamCount))
	if cfg.IncludeNotes {
		b.WriteString("Include study notes.\n")
	}

	if len(specs.Resources) > 0 {
		b.WriteString("\nBase the course on these reference resources where relevant:\n")
		for _, r := range specs.Resources {
			b.WriteString("- ")
			b.WriteString(describeResource(r))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func describeResource(r models.Resource) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s] %s", r.Type, r.Title))
	switch {
	case r.Type == models.ResourceLink && r.URL != "":
		b.WriteString(" (" + r.URL + ")")
	case r.Type == models.ResourceBook && r.Author != "":
		b.WriteString(" by " + r.Author)
	}
	if r.Description != "" {
		b.WriteString(": " + r.Description)
	}
	return b.String()
}

func buildDescriptionUserPrompt(moduleTitle string) string {
	return "Generate a brief course module description for: " + moduleTitle
}
