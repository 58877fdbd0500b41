package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"trail-backend/internal/models"
	"trail-backend/internal/repository"
)

// CourseLibrary is the "My Courses" list of an owner.
type CourseLibrary struct {
	repo CourseRepository
	now  func() time.Time
}

func NewCourseLibrary(repo CourseRepository) *CourseLibrary {
	return &CourseLibrary{repo: repo, now: time.Now}
}

func (l *CourseLibrary) List(ctx context.Context, ownerID uuid.UUID) ([]models.CourseSummary, error) {
	courses, err := l.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	out := make([]models.CourseSummary, 0, len(courses))
	for _, c := range courses {
		out = append(out, c.Summary())
	}
	return out, nil
}

// Get loads a course the owner can see and records the access.
func (l *CourseLibrary) Get(ctx context.Context, ownerID, id uuid.UUID) (*models.Course, error) {
	c, err := l.load(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	now := l.now()
	if err := l.repo.Touch(ctx, id, now); err != nil {
		return nil, fmt.Errorf("touch course: %w", err)
	}
	c.LastAccessedAt = now
	return c, nil
}

func (l *CourseLibrary) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := l.load(ctx, ownerID, id); err != nil {
		return err
	}
	return l.repo.Delete(ctx, id)
}

func (l *CourseLibrary) load(ctx context.Context, ownerID, id uuid.UUID) (*models.Course, error) {
	c, err := l.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Message: "Course not found"}
		}
		return nil, fmt.Errorf("get course: %w", err)
	}
	if c.OwnerID != ownerID {
		return nil, &ForbiddenError{Message: "You don't have access to this course"}
	}
	return c, nil
}
