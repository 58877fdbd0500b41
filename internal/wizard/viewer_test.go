package wizard

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func previewing(t *testing.T) *State {
	t.Helper()
	s := New(uuid.New(), time.Now())
	require.NoError(t, s.ShowLanding())
	require.NoError(t, s.SelectCourse(uuid.New(), twoModuleCourse()))
	require.NoError(t, s.OpenPreview())
	return s
}

func TestOpenPreview_StartsAtFirstModule(t *testing.T) {
	s := previewing(t)

	assert.True(t, s.Preview)
	assert.Equal(t, &Viewer{ModuleIndex: 0, Mode: ModeContent}, s.Viewer)
	m, ok := s.ActiveModule()
	require.True(t, ok)
	assert.Equal(t, "One", m.Title)
}

func TestNavigateModule_Clamps(t *testing.T) {
	s := previewing(t)

	require.NoError(t, s.NavigateModule(DirectionPrev))
	assert.Equal(t, 0, s.Viewer.ModuleIndex)

	require.NoError(t, s.NavigateModule(DirectionNext))
	require.NoError(t, s.NavigateModule(DirectionNext))
	assert.Equal(t, 1, s.Viewer.ModuleIndex)

	assert.ErrorIs(t, s.NavigateModule("sideways"), ErrInvalidInput)
}

func TestSetViewMode(t *testing.T) {
	s := previewing(t)

	require.NoError(t, s.SetViewMode(ModeQuiz))
	assert.Equal(t, ModeQuiz, s.Viewer.Mode)
	require.NoError(t, s.SetViewMode(ModeContent))
	assert.Equal(t, ModeContent, s.Viewer.Mode)
	assert.ErrorIs(t, s.SetViewMode("slides"), ErrInvalidInput)
}

func TestClosePreview(t *testing.T) {
	s := previewing(t)
	require.NoError(t, s.ClosePreview())

	assert.False(t, s.Preview)
	assert.Nil(t, s.Viewer)
	assert.ErrorIs(t, s.SetViewMode(ModeVideos), ErrInvalidTransition)
	assert.ErrorIs(t, s.ClosePreview(), ErrInvalidTransition)
}
