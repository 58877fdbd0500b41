package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"trail-backend/internal/models"
)

// CourseRepository stores generated courses. Implementations return
// repository.ErrNotFound for unknown ids.
type CourseRepository interface {
	Create(ctx context.Context, c *models.Course) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Course, error)
	Touch(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SessionStore keeps short-lived JSON state such as wizard and quiz sessions.
type SessionStore[T any] interface {
	Get(ctx context.Context, id uuid.UUID) (*T, error)
	Save(ctx context.Context, id uuid.UUID, v *T) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type JobQueue interface {
	Enqueue(ctx context.Context, job *models.GenerationJob) error
}

// Notifier pushes realtime events to every connection an owner has open.
type Notifier interface {
	Publish(ctx context.Context, ownerID uuid.UUID, msg models.WSMessage)
}
