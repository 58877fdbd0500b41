package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFences(`  {"a":1}  `))
}

func TestParseCourse_AcceptsFencedJSON(t *testing.T) {
	course, err := parseCourse("```json\n" + faithfulCourseJSON(2) + "\n```")
	require.NoError(t, err)
	assert.Len(t, course.Modules, 2)
}

func TestParseCourse_Rejections(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		code string
	}{
		{"not json", "not json", "PARSE_ERROR"},
		{"empty response", "", "PARSE_ERROR"},
		{"top level array", `[1,2]`, "SCHEMA_ERROR"},
		{"modules not array", `{"modules":{}}`, "SCHEMA_ERROR"},
		{"module id string", `{"modules":[{"id":"1","title":"M"}]}`, "SCHEMA_ERROR"},
		{"missing module title", `{"modules":[{"id":1,"title":" "}]}`, "SCHEMA_ERROR"},
		{"one option", `{"modules":[{"id":1,"title":"M","quiz":{"questions":[{"question":"Q","options":["a"],"correct":0}]}}]}`, "SCHEMA_ERROR"},
		{"correct out of range", `{"modules":[{"id":1,"title":"M","quiz":{"questions":[{"question":"Q","options":["a","b"],"correct":2}]}}]}`, "SCHEMA_ERROR"},
		{"empty question", `{"modules":[{"id":1,"title":"M","quiz":{"questions":[{"question":"","options":["a","b"],"correct":0}]}}]}`, "SCHEMA_ERROR"},
		{"bad final exam", `{"modules":[],"finalExam":{"questions":[{"question":"Q","options":["a","b"],"correct":-1}]}}`, "SCHEMA_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			course, err := parseCourse(tt.raw)
			assert.Nil(t, course)
			ge, ok := AsGenerationError(err)
			require.True(t, ok, "expected a generation error, got %v", err)
			assert.Equal(t, tt.code, ge.Code())
		})
	}
}

func TestParseCourse_EmptyModulesIsValid(t *testing.T) {
	course, err := parseCourse(`{"title":"T","modules":[]}`)
	require.NoError(t, err)
	assert.Empty(t, course.Modules)
}
