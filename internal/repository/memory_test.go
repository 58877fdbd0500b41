package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trail-backend/internal/models"
)

func TestMemoryCourseRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryCourseRepo()
	owner := uuid.New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	older := models.NewCourse(owner, models.CourseConfig{ModuleCount: 1}, models.GeneratedCourse{Title: "Older"}, base)
	newer := models.NewCourse(owner, models.CourseConfig{ModuleCount: 1}, models.GeneratedCourse{Title: "Newer"}, base.Add(time.Hour))
	foreign := models.NewCourse(uuid.New(), models.CourseConfig{}, models.GeneratedCourse{Title: "Foreign"}, base)
	for _, c := range []*models.Course{older, newer, foreign} {
		require.NoError(t, repo.Create(ctx, c))
	}

	list, err := repo.ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Newer", list[0].Title)

	require.NoError(t, repo.Touch(ctx, older.ID, base.Add(2*time.Hour)))
	list, err = repo.ListByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, "Older", list[0].Title)

	// Loaded values are copies.
	got, err := repo.GetByID(ctx, newer.ID)
	require.NoError(t, err)
	got.Title = "mutated"
	again, err := repo.GetByID(ctx, newer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Newer", again.Title)

	require.NoError(t, repo.Delete(ctx, newer.ID))
	_, err = repo.GetByID(ctx, newer.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, newer.ID), ErrNotFound)
	assert.ErrorIs(t, repo.Touch(ctx, newer.ID, base), ErrNotFound)
}

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestMemoryJSONStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryJSONStore[sample](time.Minute)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	id := uuid.New()
	require.NoError(t, store.Save(ctx, id, &sample{Name: "a", Count: 1}))

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, sample{Name: "a", Count: 1}, *got)

	got.Count = 99
	again, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Count)

	now = now.Add(2 * time.Minute)
	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, uuid.New()), ErrNotFound)
}
