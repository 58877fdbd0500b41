package services

import (
	"context"
	"strings"

	"trail-backend/internal/logger"
	"trail-backend/internal/models"
	"trail-backend/internal/wizard"
)

type GeneratorOptions struct {
	ProviderName string // used in the missing-credential message
	Temperature  float64
	MaxTokens    int
}

// ProgressFunc is told which generation phase is starting. It may be nil.
type ProgressFunc func(task wizard.Task)

// CourseGenerator turns a CourseConfig into a validated course. It keeps no
// state between calls.
type CourseGenerator struct {
	client LLMClient
	log    *logger.Logger
	opts   GeneratorOptions
	videos VideoResolver
}

// NewCourseGenerator builds a generator. A nil client means the provider has
// no credential; every call then fails with a configuration error.
func NewCourseGenerator(client LLMClient, log *logger.Logger, opts GeneratorOptions, videos VideoResolver) *CourseGenerator {
	if opts.ProviderName == "" {
		opts.ProviderName = "OpenAI"
	}
	return &CourseGenerator{
		client: client,
		log:    log.With("service", "CourseGenerator"),
		opts:   opts,
		videos: videos,
	}
}

func (g *CourseGenerator) Configured() bool { return g.client != nil }

func (g *CourseGenerator) Generate(ctx context.Context, cfg models.CourseConfig, progress ProgressFunc) (*models.GeneratedCourse, error) {
	if g.client == nil {
		return nil, missingCredential(g.opts.ProviderName)
	}
	report := func(t wizard.Task) {
		if progress != nil {
			progress(t)
		}
	}

	report(wizard.TaskMaterials)
	raw, err := g.complete(ctx, CompletionRequest{
		System:      buildCourseSystemPrompt(cfg),
		User:        buildCourseUserPrompt(cfg),
		JSON:        true,
		Temperature: g.opts.Temperature,
		MaxTokens:   g.opts.MaxTokens,
	})
	if err != nil {
		g.log.Error("course generation call failed", "error", err.Error())
		return nil, adapterFailure(msgGenerateFailed, err)
	}

	report(wizard.TaskAssessments)
	course, err := parseCourse(raw)
	if err != nil {
		g.log.Warn("course response rejected", "error", err.Error(), "response_bytes", len(raw))
		return nil, err
	}

	if len(course.Modules) != cfg.ModuleCount {
		g.log.Warn("module count differs from request",
			"requested", cfg.ModuleCount,
			"returned", len(course.Modules),
		)
	}

	if g.videos != nil {
		report(wizard.TaskVideos)
		g.videos.Enrich(ctx, course)
	}

	report(wizard.TaskFinalizing)
	return course, nil
}

// Describe writes a short free-text description for a module title. The
// output is not validated.
func (g *CourseGenerator) Describe(ctx context.Context, moduleTitle string) (string, error) {
	if g.client == nil {
		return "", missingCredential(g.opts.ProviderName)
	}
	moduleTitle = strings.TrimSpace(moduleTitle)
	if moduleTitle == "" {
		return "", &ValidationError{Fields: map[string]string{"moduleTitle": "moduleTitle is required"}}
	}

	raw, err := g.complete(ctx, CompletionRequest{
		System:      descriptionSystemPrompt,
		User:        buildDescriptionUserPrompt(moduleTitle),
		Temperature: g.opts.Temperature,
	})
	if err != nil {
		return "", adapterFailure(msgDescriptionFailed, err)
	}
	return strings.TrimSpace(raw), nil
}

// complete calls the adapter and treats a blank reply as ErrEmptyCompletion
// whichever provider produced it.
func (g *CourseGenerator) complete(ctx context.Context, req CompletionRequest) (string, error) {
	raw, err := g.client.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(raw) == "" {
		return "", ErrEmptyCompletion
	}
	return raw, nil
}
