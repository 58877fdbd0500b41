package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"trail-backend/internal/models"
)

// stubLLM returns canned responses in order, repeating the last one.
type stubLLM struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	calls     int
	requests  []CompletionRequest
}

func (s *stubLLM) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.calls
	s.calls++
	s.requests = append(s.requests, req)

	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if len(s.responses) == 0 {
		return "", nil
	}
	if i >= len(s.responses) {
		i = len(s.responses) - 1
	}
	return s.responses[i], nil
}

func (s *stubLLM) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// faithfulCourseJSON builds a valid course with n modules, each with one quiz
// question.
func faithfulCourseJSON(n int) string {
	course := models.GeneratedCourse{
		Title:       "Intro to Go",
		Description: "Learn Go from scratch",
	}
	for i := 1; i <= n; i++ {
		course.Modules = append(course.Modules, models.CourseModule{
			ID:          i,
			Title:       fmt.Sprintf("Module %d", i),
			Description: "About this module",
			Content: models.ModuleContent{
				Readings: []models.Reading{{Title: "Reading", Pages: "1-10", Link: "https://example.com"}},
				Videos:   []models.Video{{Title: "Video", Duration: "10:00", Link: "https://example.com/v"}},
			},
			Quiz: models.Quiz{Questions: []models.QuizQuestion{
				{Question: "What is Go?", Options: []string{"A language", "A game"}, Correct: 0, Explanation: "It is a language."},
			}},
		})
	}
	raw, _ := json.Marshal(course)
	return string(raw)
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []models.WSMessage
}

func (n *recordingNotifier) Publish(ctx context.Context, ownerID uuid.UUID, msg models.WSMessage) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
}

func (n *recordingNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.messages))
	for _, m := range n.messages {
		out = append(out, m.Type)
	}
	return out
}

// sliceQueue collects enqueued jobs so tests can run them by hand.
type sliceQueue struct {
	jobs []*models.GenerationJob
	err  error
}

func (q *sliceQueue) Enqueue(ctx context.Context, job *models.GenerationJob) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

// blockingLLM holds every call until the caller's context ends.
type blockingLLM struct{}

func (blockingLLM) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

// ctxSessionStore fails once the context is done, the way the Redis store does.
type ctxSessionStore[T any] struct {
	SessionStore[T]
}

func (s ctxSessionStore[T]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.SessionStore.Get(ctx, id)
}

func (s ctxSessionStore[T]) Save(ctx context.Context, id uuid.UUID, v *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.SessionStore.Save(ctx, id, v)
}
