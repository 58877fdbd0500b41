package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"trail-backend/internal/logger"
	"trail-backend/internal/models"
	"trail-backend/internal/repository"
	"trail-backend/internal/wizard"
)

const persistTimeout = 10 * time.Second

var taskSteps = map[wizard.Task]struct {
	step int
	name string
}{
	wizard.TaskStructuring: {1, "Structuring course outline"},
	wizard.TaskMaterials:   {2, "Generating course materials"},
	wizard.TaskAssessments: {3, "Creating assessments"},
	wizard.TaskVideos:      {4, "Curating video content"},
	wizard.TaskFinalizing:  {5, "Finalizing course"},
}

// WizardService owns wizard sessions: it persists them, hands generation to
// the worker queue and applies results that come back.
type WizardService struct {
	sessions  SessionStore[wizard.State]
	library   *CourseLibrary
	courses   CourseRepository
	queue     JobQueue
	notifier  Notifier
	generator *CourseGenerator
	locks     *keyedMutex
	log       *logger.Logger
	now       func() time.Time
}

func NewWizardService(
	sessions SessionStore[wizard.State],
	courses CourseRepository,
	queue JobQueue,
	notifier Notifier,
	generator *CourseGenerator,
	log *logger.Logger,
) *WizardService {
	return &WizardService{
		sessions:  sessions,
		library:   NewCourseLibrary(courses),
		courses:   courses,
		queue:     queue,
		notifier:  notifier,
		generator: generator,
		locks:     newKeyedMutex(),
		log:       log.With("service", "WizardService"),
		now:       time.Now,
	}
}

func (s *WizardService) Create(ctx context.Context, ownerID uuid.UUID) (*wizard.State, error) {
	st := wizard.New(ownerID, s.now())
	if err := s.sessions.Save(ctx, st.ID, st); err != nil {
		return nil, fmt.Errorf("save wizard session: %w", err)
	}
	return st, nil
}

func (s *WizardService) Get(ctx context.Context, ownerID, id uuid.UUID) (*wizard.State, error) {
	return s.load(ctx, ownerID, id)
}

func (s *WizardService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	if _, err := s.load(ctx, ownerID, id); err != nil {
		return err
	}
	return s.sessions.Delete(ctx, id)
}

// Apply runs one state-machine action under the session lock and saves the
// result. A rejected action leaves the stored session untouched.
func (s *WizardService) Apply(ctx context.Context, ownerID, id uuid.UUID, action func(*wizard.State) error) (*wizard.State, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	st, err := s.load(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := action(st); err != nil {
		return nil, err
	}
	if err := s.save(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// SelectCourse rehydrates a stored course into the wizard.
func (s *WizardService) SelectCourse(ctx context.Context, ownerID, id, courseID uuid.UUID) (*wizard.State, error) {
	course, err := s.library.Get(ctx, ownerID, courseID)
	if err != nil {
		return nil, err
	}
	content := course.Content
	return s.Apply(ctx, ownerID, id, func(st *wizard.State) error {
		return st.SelectCourse(course.ID, &content)
	})
}

// StartGeneration moves the wizard into generating and queues the job. The
// request returns at once; progress arrives over the websocket.
func (s *WizardService) StartGeneration(ctx context.Context, ownerID, id uuid.UUID) (*wizard.State, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	st, err := s.load(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	ticket, cfg, err := st.BeginGeneration()
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, st); err != nil {
		return nil, err
	}

	job := &models.GenerationJob{
		ID:         uuid.New(),
		SessionID:  st.ID,
		OwnerID:    ownerID,
		Ticket:     ticket,
		Config:     cfg,
		EnqueuedAt: s.now(),
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.log.Error("failed to enqueue generation job", "session_id", st.ID.String(), "error", err.Error())
		_ = st.FailGeneration(ticket, wizard.Failure{
			Code:    "INTERNAL_ERROR",
			Message: "Failed to start course generation",
			Details: err.Error(),
		})
		if err := s.save(ctx, st); err != nil {
			return nil, err
		}
		return st, nil
	}

	s.publishStatus(ctx, job, wizard.TaskStructuring)
	s.log.Info("generation queued", "session_id", st.ID.String(), "job_id", job.ID.String(), "modules", cfg.ModuleCount)
	return st, nil
}

// ProcessGeneration runs a queued job. Results for a ticket the wizard no
// longer holds are dropped without touching storage. The outcome is recorded
// even when ctx has ended, so a timed-out job still leaves the wizard in error.
func (s *WizardService) ProcessGeneration(ctx context.Context, job *models.GenerationJob) error {
	progress := func(task wizard.Task) {
		live := s.withLiveTicket(ctx, job, func(st *wizard.State) error {
			return st.MarkTask(job.Ticket, task)
		})
		if live {
			s.publishStatus(ctx, job, task)
		}
	}

	course, genErr := s.generator.Generate(ctx, job.Config, progress)

	pctx, cancel := persistContext(ctx)
	defer cancel()

	unlock := s.locks.Lock(job.SessionID)
	defer unlock()

	st, err := s.liveSession(pctx, job)
	if err != nil || st == nil {
		return err
	}

	if genErr != nil {
		return s.failJob(pctx, st, job, failureFor(genErr))
	}

	record := models.NewCourse(job.OwnerID, job.Config, *course, s.now())
	if err := s.courses.Create(pctx, record); err != nil {
		s.log.Error("failed to persist course", "session_id", job.SessionID.String(), "error", err.Error())
		return s.failJob(pctx, st, job, wizard.Failure{
			Code:    "INTERNAL_ERROR",
			Message: "Failed to save course",
			Details: err.Error(),
		})
	}

	if err := st.CompleteGeneration(job.Ticket, record.ID, course); err != nil {
		return err
	}
	if err := s.save(pctx, st); err != nil {
		return err
	}

	s.notifier.Publish(pctx, job.OwnerID, models.WSMessage{
		Type: "completed",
		Payload: models.CompletedEvent{
			JobID:     job.ID,
			SessionID: job.SessionID,
			CourseID:  record.ID,
		},
	})
	s.log.Info("course generated", "session_id", job.SessionID.String(), "course_id", record.ID.String(), "modules", len(course.Modules))
	return nil
}

// AbortGeneration fails the job's attempt when processing stopped before an
// outcome was recorded, e.g. after a panic. A stale ticket is left alone.
func (s *WizardService) AbortGeneration(ctx context.Context, job *models.GenerationJob, cause error) error {
	pctx, cancel := persistContext(ctx)
	defer cancel()

	unlock := s.locks.Lock(job.SessionID)
	defer unlock()

	st, err := s.liveSession(pctx, job)
	if err != nil || st == nil {
		return err
	}
	return s.failJob(pctx, st, job, wizard.Failure{
		Code:    "INTERNAL_ERROR",
		Message: msgGenerateFailed,
		Details: cause.Error(),
	})
}

// liveSession loads the job's wizard. It returns nil when the session is gone
// or no longer waiting on this ticket.
func (s *WizardService) liveSession(ctx context.Context, job *models.GenerationJob) (*wizard.State, error) {
	st, err := s.sessions.Get(ctx, job.SessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Info("wizard session gone, dropping generation result", "session_id", job.SessionID.String())
			return nil, nil
		}
		return nil, fmt.Errorf("load wizard session: %w", err)
	}
	if st.Ticket != job.Ticket || st.Step != wizard.StepGenerating {
		s.log.Info("stale generation result dropped", "session_id", job.SessionID.String(), "job_id", job.ID.String())
		return nil, nil
	}
	return st, nil
}

// persistContext detaches from the job's deadline and cancellation and
// allows persistTimeout for the final writes.
func persistContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
}

func (s *WizardService) failJob(ctx context.Context, st *wizard.State, job *models.GenerationJob, failure wizard.Failure) error {
	if err := st.FailGeneration(job.Ticket, failure); err != nil {
		return err
	}
	if err := s.save(ctx, st); err != nil {
		return err
	}
	s.notifier.Publish(ctx, job.OwnerID, models.WSMessage{
		Type: "error",
		Payload: models.ErrorEvent{
			JobID:        job.ID,
			SessionID:    job.SessionID,
			ErrorCode:    failure.Code,
			ErrorMessage: failure.Message,
			Details:      failure.Details,
		},
	})
	s.log.Warn("course generation failed", "session_id", job.SessionID.String(), "code", failure.Code, "details", failure.Details)
	return nil
}

// withLiveTicket applies fn only while the wizard still holds the job's
// ticket. It reports whether fn ran and was saved.
func (s *WizardService) withLiveTicket(ctx context.Context, job *models.GenerationJob, fn func(*wizard.State) error) bool {
	unlock := s.locks.Lock(job.SessionID)
	defer unlock()

	st, err := s.sessions.Get(ctx, job.SessionID)
	if err != nil {
		return false
	}
	if err := fn(st); err != nil {
		return false
	}
	return s.save(ctx, st) == nil
}

func (s *WizardService) publishStatus(ctx context.Context, job *models.GenerationJob, task wizard.Task) {
	info := taskSteps[task]
	s.notifier.Publish(ctx, job.OwnerID, models.WSMessage{
		Type: "status_update",
		Payload: models.StatusUpdate{
			JobID:     job.ID,
			SessionID: job.SessionID,
			Step:      info.step,
			Task:      string(task),
			StepName:  info.name,
		},
	})
}

func failureFor(err error) wizard.Failure {
	if ge, ok := AsGenerationError(err); ok {
		return wizard.Failure{Code: ge.Code(), Message: ge.Message, Details: ge.Details}
	}
	return wizard.Failure{Code: "AI_ERROR", Message: msgGenerateFailed, Details: err.Error()}
}

func (s *WizardService) load(ctx context.Context, ownerID, id uuid.UUID) (*wizard.State, error) {
	st, err := s.sessions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Message: "Wizard session not found"}
		}
		return nil, fmt.Errorf("load wizard session: %w", err)
	}
	if st.OwnerID != ownerID {
		return nil, &ForbiddenError{Message: "You don't have access to this wizard session"}
	}
	return st, nil
}

func (s *WizardService) save(ctx context.Context, st *wizard.State) error {
	st.UpdatedAt = s.now()
	if err := s.sessions.Save(ctx, st.ID, st); err != nil {
		return fmt.Errorf("save wizard session: %w", err)
	}
	return nil
}
