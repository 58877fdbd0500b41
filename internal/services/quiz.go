package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"trail-backend/internal/models"
	"trail-backend/internal/quiz"
	"trail-backend/internal/repository"
)

// FinalExamIndex selects the course's final exam instead of a module quiz.
const FinalExamIndex = -1

// QuizSession is a stored quiz run together with what it quizzes on.
type QuizSession struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"ownerId"`
	CourseID    uuid.UUID `json:"courseId"`
	ModuleIndex int       `json:"moduleIndex"`
	Title       string    `json:"title"`
	quiz.Session
	CreatedAt time.Time `json:"createdAt"`
}

type QuizService struct {
	sessions SessionStore[QuizSession]
	library  *CourseLibrary
	locks    *keyedMutex
	now      func() time.Time
}

func NewQuizService(sessions SessionStore[QuizSession], courses CourseRepository) *QuizService {
	return &QuizService{
		sessions: sessions,
		library:  NewCourseLibrary(courses),
		locks:    newKeyedMutex(),
		now:      time.Now,
	}
}

// Start opens a quiz on one module, or on the final exam when moduleIndex is
// FinalExamIndex.
func (s *QuizService) Start(ctx context.Context, ownerID, courseID uuid.UUID, moduleIndex int) (*QuizSession, error) {
	course, err := s.library.Get(ctx, ownerID, courseID)
	if err != nil {
		return nil, err
	}

	var (
		questions []models.QuizQuestion
		title     string
	)
	switch {
	case moduleIndex == FinalExamIndex:
		if course.Content.FinalExam == nil {
			return nil, &NotFoundError{Message: "Course has no final exam"}
		}
		questions = course.Content.FinalExam.Questions
		title = "Final Exam"
	case moduleIndex >= 0 && moduleIndex < len(course.Content.Modules):
		m := course.Content.Modules[moduleIndex]
		questions = m.Quiz.Questions
		title = m.Title
	default:
		return nil, &ValidationError{Fields: map[string]string{"moduleIndex": "moduleIndex is out of range"}}
	}

	engine, err := quiz.New(questions)
	if err != nil {
		if errors.Is(err, quiz.ErrNoQuestions) {
			return nil, &ValidationError{Fields: map[string]string{"moduleIndex": "this quiz has no questions"}}
		}
		return nil, err
	}

	qs := &QuizSession{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		CourseID:    courseID,
		ModuleIndex: moduleIndex,
		Title:       title,
		Session:     *engine,
		CreatedAt:   s.now(),
	}
	if err := s.sessions.Save(ctx, qs.ID, qs); err != nil {
		return nil, fmt.Errorf("save quiz session: %w", err)
	}
	return qs, nil
}

func (s *QuizService) Get(ctx context.Context, ownerID, id uuid.UUID) (*QuizSession, error) {
	return s.load(ctx, ownerID, id)
}

// Apply runs one engine action under the session lock.
func (s *QuizService) Apply(ctx context.Context, ownerID, id uuid.UUID, action func(*quiz.Session) error) (*QuizSession, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	qs, err := s.load(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := action(&qs.Session); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, qs.ID, qs); err != nil {
		return nil, fmt.Errorf("save quiz session: %w", err)
	}
	return qs, nil
}

// Leave discards the session.
func (s *QuizService) Leave(ctx context.Context, ownerID, id uuid.UUID) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	if _, err := s.load(ctx, ownerID, id); err != nil {
		return err
	}
	return s.sessions.Delete(ctx, id)
}

func (s *QuizService) load(ctx context.Context, ownerID, id uuid.UUID) (*QuizSession, error) {
	qs, err := s.sessions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Message: "Quiz session not found"}
		}
		return nil, fmt.Errorf("load quiz session: %w", err)
	}
	if qs.OwnerID != ownerID {
		return nil, &ForbiddenError{Message: "You don't have access to this quiz session"}
	}
	return qs, nil
}
