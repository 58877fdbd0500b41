package repository

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"trail-backend/internal/models"
)

// MemoryCourseRepo keeps courses in process memory. It is used when no
// DATABASE_URL is configured and in tests. Stored values are deep copies so
// callers cannot mutate them in place.
type MemoryCourseRepo struct {
	mu      sync.RWMutex
	courses map[uuid.UUID][]byte
}

func NewMemoryCourseRepo() *MemoryCourseRepo {
	return &MemoryCourseRepo{courses: make(map[uuid.UUID][]byte)}
}

func (r *MemoryCourseRepo) Create(ctx context.Context, c *models.Course) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.courses[c.ID] = data
	r.mu.Unlock()
	return nil
}

func (r *MemoryCourseRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	r.mu.RLock()
	data, ok := r.courses[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	var c models.Course
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *MemoryCourseRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.Course
	for _, data := range r.courses {
		var c models.Course
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		if c.OwnerID == ownerID {
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastAccessedAt.After(out[j].LastAccessedAt)
	})
	return out, nil
}

func (r *MemoryCourseRepo) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, ok := r.courses[id]
	if !ok {
		return ErrNotFound
	}
	var c models.Course
	if err := json.Unmarshal(data, &c); err != nil {
		return err
	}
	c.LastAccessedAt = at
	updated, err := json.Marshal(&c)
	if err != nil {
		return err
	}
	r.courses[id] = updated
	return nil
}

func (r *MemoryCourseRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.courses[id]; !ok {
		return ErrNotFound
	}
	delete(r.courses, id)
	return nil
}
