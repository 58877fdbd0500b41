package wizard

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trail-backend/internal/models"
)

func twoModuleCourse() *models.GeneratedCourse {
	return &models.GeneratedCourse{
		Title: "Intro to X",
		Modules: []models.CourseModule{
			{ID: 1, Title: "One"},
			{ID: 2, Title: "Two"},
		},
	}
}

// configured walks a new wizard to the configure step.
func configured(t *testing.T) *State {
	t.Helper()
	s := New(uuid.New(), time.Now())
	require.NoError(t, s.ChooseCourseType(models.CourseTypeCollege))
	require.NoError(t, s.SubmitSpecs(models.CourseSpecs{CourseTitle: "Intro to X"}))
	return s
}

func TestNew_Defaults(t *testing.T) {
	s := New(uuid.New(), time.Now())

	assert.Equal(t, StepWelcome, s.Step)
	assert.Equal(t, Settings{ModuleCount: 5, ExamCount: 1, IncludeNotes: true}, s.Settings)
	assert.False(t, s.Busy)
}

func TestHappyPath(t *testing.T) {
	s := configured(t)
	assert.Equal(t, StepConfigure, s.Step)
	assert.Equal(t, models.CourseTypeCollege, s.CourseType)

	require.NoError(t, s.Configure(Settings{ModuleCount: 2, ExamCount: 1, IncludeNotes: true}))

	ticket, cfg, err := s.BeginGeneration()
	require.NoError(t, err)
	assert.NotEmpty(t, ticket)
	assert.Equal(t, StepGenerating, s.Step)
	assert.Equal(t, TaskStructuring, s.CurrentTask)
	assert.Equal(t, 2, cfg.ModuleCount)
	assert.Equal(t, "Intro to X", cfg.CourseSpecs.CourseTitle)

	courseID := uuid.New()
	require.NoError(t, s.CompleteGeneration(ticket, courseID, twoModuleCourse()))
	assert.Equal(t, StepModules, s.Step)
	assert.False(t, s.Busy)
	assert.Empty(t, s.Ticket)
	assert.Equal(t, courseID, *s.CourseID)
}

func TestInvalidTransition_LeavesStateUnchanged(t *testing.T) {
	s := New(uuid.New(), time.Now())
	before := *s

	err := s.SubmitSpecs(models.CourseSpecs{CourseTitle: "x"})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.ErrorIs(t, s.Back(), ErrInvalidTransition)
	assert.ErrorIs(t, s.OpenPreview(), ErrInvalidTransition)
	assert.Equal(t, before, *s)
}

func TestChooseCourseType_RejectsUnknown(t *testing.T) {
	s := New(uuid.New(), time.Now())
	assert.ErrorIs(t, s.ChooseCourseType("bootcamp"), ErrInvalidInput)
	assert.Equal(t, StepWelcome, s.Step)
}

func TestNext_AdvancesImportToConfigure(t *testing.T) {
	s := New(uuid.New(), time.Now())
	require.NoError(t, s.ChooseCourseType(models.CourseTypeTraditional))
	require.NoError(t, s.Next())
	assert.Equal(t, StepConfigure, s.Step)
}

func TestBack(t *testing.T) {
	s := configured(t)
	require.NoError(t, s.Back())
	assert.Equal(t, StepImport, s.Step)
	require.NoError(t, s.Back())
	assert.Equal(t, StepWelcome, s.Step)
}

func TestResources(t *testing.T) {
	s := New(uuid.New(), time.Now())
	require.NoError(t, s.ChooseCourseType(models.CourseTypeTraditional))

	assert.ErrorIs(t, s.AddResource(models.Resource{Type: models.ResourceLink, Title: "   "}), ErrResourceTitleRequired)
	assert.Empty(t, s.Specs.Resources)

	require.NoError(t, s.AddResource(models.Resource{Type: models.ResourceLink, Title: " Go tour ", URL: "https://go.dev/tour", Author: "x"}))
	require.NoError(t, s.AddResource(models.Resource{Type: models.ResourceNote, Title: "Remember", URL: "u", Description: "d"}))
	require.Len(t, s.Specs.Resources, 2)
	assert.Equal(t, "Go tour", s.Specs.Resources[0].Title)
	assert.Empty(t, s.Specs.Resources[0].Author)
	assert.Empty(t, s.Specs.Resources[1].URL)

	assert.ErrorIs(t, s.RemoveResource(5), ErrInvalidInput)
	require.NoError(t, s.RemoveResource(0))
	require.Len(t, s.Specs.Resources, 1)
	assert.Equal(t, "Remember", s.Specs.Resources[0].Title)

	// Specs without resources keep the draft list.
	require.NoError(t, s.SubmitSpecs(models.CourseSpecs{CourseTitle: "T"}))
	assert.Len(t, s.Specs.Resources, 1)
}

func TestConfigure_Validates(t *testing.T) {
	s := configured(t)
	assert.ErrorIs(t, s.Configure(Settings{ModuleCount: 0}), ErrInvalidInput)
	assert.ErrorIs(t, s.Configure(Settings{ModuleCount: 1, ExamCount: -1}), ErrInvalidInput)
	assert.Equal(t, DefaultSettings(), s.Settings)
}

func TestBeginGeneration_SingleInFlight(t *testing.T) {
	s := configured(t)
	_, _, err := s.BeginGeneration()
	require.NoError(t, err)

	_, _, err = s.BeginGeneration()
	assert.ErrorIs(t, err, ErrGenerationInFlight)
}

func TestBeginGeneration_SnapshotIsIndependent(t *testing.T) {
	s := New(uuid.New(), time.Now())
	require.NoError(t, s.ChooseCourseType(models.CourseTypeTraditional))
	require.NoError(t, s.AddResource(models.Resource{Type: models.ResourceBook, Title: "SICP", Author: "Abelson"}))
	require.NoError(t, s.Next())

	_, cfg, err := s.BeginGeneration()
	require.NoError(t, err)

	s.Specs.Resources[0].Title = "mutated"
	assert.Equal(t, "SICP", cfg.CourseSpecs.Resources[0].Title)
}

func TestFailure_ThenDismissKeepsInputs(t *testing.T) {
	s := configured(t)
	require.NoError(t, s.Configure(Settings{ModuleCount: 3, ExamCount: 0}))
	ticket, _, _ := s.BeginGeneration()

	require.NoError(t, s.FailGeneration(ticket, Failure{Code: "AI_ERROR", Message: "Failed to generate course content"}))
	assert.Equal(t, StepError, s.Step)
	assert.False(t, s.Busy)
	require.NotNil(t, s.LastError)
	assert.Nil(t, s.Course)

	require.NoError(t, s.DismissError())
	assert.Equal(t, StepConfigure, s.Step)
	assert.Nil(t, s.LastError)
	assert.Equal(t, 3, s.Settings.ModuleCount)
	assert.Equal(t, "Intro to X", s.Specs.CourseTitle)
}

func TestShowLanding_AbandonsInFlightGeneration(t *testing.T) {
	s := configured(t)
	ticket, _, _ := s.BeginGeneration()

	require.NoError(t, s.ShowLanding())
	assert.True(t, s.Landing)
	assert.Equal(t, StepConfigure, s.Step)
	assert.False(t, s.Busy)

	assert.ErrorIs(t, s.CompleteGeneration(ticket, uuid.New(), twoModuleCourse()), ErrStaleTicket)
	assert.ErrorIs(t, s.FailGeneration(ticket, Failure{}), ErrStaleTicket)
	assert.ErrorIs(t, s.MarkTask(ticket, TaskFinalizing), ErrStaleTicket)
	assert.Nil(t, s.Course)
}

func TestStaleTicketAfterRegenerate(t *testing.T) {
	s := configured(t)
	first, _, _ := s.BeginGeneration()
	require.NoError(t, s.ShowLanding())
	require.NoError(t, s.HideLanding())
	second, _, err := s.BeginGeneration()
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	assert.ErrorIs(t, s.CompleteGeneration(first, uuid.New(), twoModuleCourse()), ErrStaleTicket)
	assert.Equal(t, StepGenerating, s.Step)
	assert.NoError(t, s.CompleteGeneration(second, uuid.New(), twoModuleCourse()))
}

func TestLanding_CreateNewAndSelect(t *testing.T) {
	s := configured(t)
	require.NoError(t, s.Configure(Settings{ModuleCount: 9}))
	require.NoError(t, s.ShowLanding())

	assert.ErrorIs(t, s.Back(), ErrInvalidTransition)

	require.NoError(t, s.CreateNew())
	assert.Equal(t, StepWelcome, s.Step)
	assert.Equal(t, DefaultSettings(), s.Settings)
	assert.Empty(t, s.CourseType)

	require.NoError(t, s.ShowLanding())
	id := uuid.New()
	require.NoError(t, s.SelectCourse(id, twoModuleCourse()))
	assert.Equal(t, StepModules, s.Step)
	assert.False(t, s.Landing)
	assert.Equal(t, id, *s.CourseID)
}

func TestSelectCourse_RequiresLanding(t *testing.T) {
	s := New(uuid.New(), time.Now())
	assert.ErrorIs(t, s.SelectCourse(uuid.New(), twoModuleCourse()), ErrInvalidTransition)
}
