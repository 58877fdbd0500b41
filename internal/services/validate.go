package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"trail-backend/internal/models"
)

// stripCodeFences removes a surrounding ```json ... ``` block some models add
// even in JSON mode.
func stripCodeFences(raw string) string {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// parseCourse treats raw as untrusted model output. It fails with a parse
// error when raw is not JSON and with a schema error on the first structural
// violation. Nothing is coerced.
func parseCourse(raw string) (*models.GeneratedCourse, error) {
	text := stripCodeFences(raw)

	var generic interface{}
	if err := json.Unmarshal([]byte(text), &generic); err != nil {
		return nil, parseFailure(err)
	}

	obj, ok := generic.(map[string]interface{})
	if !ok {
		return nil, schemaFailure("response is not a JSON object")
	}
	if _, ok := obj["modules"].([]interface{}); !ok {
		return nil, schemaFailure("modules must be an array")
	}

	var course models.GeneratedCourse
	if err := json.Unmarshal([]byte(text), &course); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, schemaFailure("field %s must be %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value)
		}
		return nil, schemaFailure("%v", err)
	}

	if err := validateCourse(&course); err != nil {
		return nil, err
	}
	return &course, nil
}

func validateCourse(c *models.GeneratedCourse) error {
	for i, m := range c.Modules {
		if strings.TrimSpace(m.Title) == "" {
			return schemaFailure("modules[%d].title is required", i)
		}
		if err := validateQuestions(fmt.Sprintf("modules[%d].quiz", i), m.Quiz.Questions); err != nil {
			return err
		}
	}
	if c.FinalExam != nil {
		if err := validateQuestions("finalExam", c.FinalExam.Questions); err != nil {
			return err
		}
	}
	return nil
}

func validateQuestions(path string, questions []models.QuizQuestion) error {
	for j, q := range questions {
		switch {
		case strings.TrimSpace(q.Question) == "":
			return schemaFailure("%s.questions[%d].question is required", path, j)
		case len(q.Options) < 2:
			return schemaFailure("%s.questions[%d] needs at least 2 options", path, j)
		case q.Correct < 0 || q.Correct >= len(q.Options):
			return schemaFailure("%s.questions[%d].correct %d is out of range", path, j, q.Correct)
		}
	}
	return nil
}
