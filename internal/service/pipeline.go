package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/coursedeck/deliverables-api/config"
	"github.com/coursedeck/deliverables-api/internal/core"
	"github.com/coursedeck/deliverables-api/internal/domain/model"
	apperrors "github.com/coursedeck/deliverables-api/internal/errors"
	"github.com/coursedeck/deliverables-api/internal/observability/metrics"
	"github.com/coursedeck/deliverables-api/internal/observability/statsd"
)

// PipelineRepos groups the repositories the orchestrator writes through.
type PipelineRepos struct {
	Jobs      core.JobRepository
	Artifacts core.ArtifactRepository
}

// PipelineStages groups the stage implementations.
type PipelineStages struct {
	Fetcher   core.MaterialFetcher
	Cache     core.MaterialCache // Optional: read-through material cache
	Generator core.ContentGenerator
	Renderer  core.Renderer
	Validator core.Validator
}

// PipelineRuntime groups configuration and observability.
type PipelineRuntime struct {
	Config  config.PipelineConfig
	Logger  *slog.Logger // Optional: structured logger
	Metrics statsd.Sink  // Optional: metrics sink (StatsD-compatible)
}

// PipelineServiceOptions groups dependencies for PipelineService.
type PipelineServiceOptions struct {
	Repos   PipelineRepos
	Stages  PipelineStages
	Runtime PipelineRuntime
}

// PipelineService owns the deliverable job lifecycle. It is the only writer
// of stage transitions: handlers start jobs through Run and Regenerate, and
// the stages execute on a background goroutine per job.
//
// Every transition is stage-guarded in the repository. When a guard reports
// zero rows the job was superseded or reaped out from under us, and the
// goroutine stops without publishing anything further.
type PipelineService struct {
	jobs      core.JobRepository
	artifacts core.ArtifactRepository
	stages    PipelineStages

	config  config.PipelineConfig
	logger  *slog.Logger
	metrics statsd.Sink

	running sync.WaitGroup
}

// NewPipelineService constructs a new PipelineService.
func NewPipelineService(opts PipelineServiceOptions) (*PipelineService, error) {
	if opts.Repos.Jobs == nil {
		return nil, errors.New("JobRepository is required")
	}
	if opts.Repos.Artifacts == nil {
		return nil, errors.New("ArtifactRepository is required")
	}
	if opts.Stages.Fetcher == nil {
		return nil, errors.New("MaterialFetcher is required")
	}
	if opts.Stages.Generator == nil {
		return nil, errors.New("ContentGenerator is required")
	}
	if opts.Stages.Renderer == nil {
		return nil, errors.New("Renderer is required")
	}
	if opts.Stages.Validator == nil {
		return nil, errors.New("Validator is required")
	}

	logger := opts.Runtime.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &PipelineService{
		jobs:      opts.Repos.Jobs,
		artifacts: opts.Repos.Artifacts,
		stages:    opts.Stages,
		config:    opts.Runtime.Config,
		logger:    logger.With("component", "pipeline_service"),
		metrics:   opts.Runtime.Metrics,
	}, nil
}

// Enabled reports whether the pipeline accepts new jobs.
func (s *PipelineService) Enabled() bool {
	return s.config.Enabled
}

// Run starts a new deliverable job for the assignment. It returns once the
// job record is persisted in the ingesting stage; the stages proceed on a
// background goroutine. An assignment with an active job is rejected with an
// already-running conflict.
func (s *PipelineService) Run(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	return s.start(ctx, req, false)
}

// Regenerate starts a replacement job for the assignment. An active job is
// marked failed with the superseded reason in the same transaction that
// creates the replacement, so the slot is never observably empty or doubly
// occupied.
func (s *PipelineService) Regenerate(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	return s.start(ctx, req, true)
}

func (s *PipelineService) start(ctx context.Context, req *model.CreateJobRequest, supersede bool) (*model.Job, error) {
	if !s.config.Enabled {
		return nil, apperrors.Unavailable("deliverable pipeline is disabled")
	}
	if req == nil {
		return nil, apperrors.Validation("request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	var (
		job *model.Job
		err error
	)
	if supersede {
		job, err = s.jobs.CreateSuperseding(ctx, req)
	} else {
		job, err = s.jobs.Create(ctx, req)
	}
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	s.logger.InfoContext(ctx, "deliverable job started",
		"job_id", job.ID,
		"assignment_id", job.AssignmentID,
		"supersede", supersede,
	)

	s.running.Add(1)
	go func() {
		defer s.running.Done()
		// The job outlives the originating HTTP request.
		s.execute(context.WithoutCancel(ctx), job)
	}()

	return job, nil
}

// Wait blocks until all in-flight job goroutines finish. Used on shutdown.
func (s *PipelineService) Wait() {
	s.running.Wait()
}

// execute drives one job through its stages. Each stage runs under its own
// timeout; a stage error fails the job with that stage's reason. A lost
// guard at any point means the job was superseded, and execution stops with
// nothing published.
func (s *PipelineService) execute(ctx context.Context, job *model.Job) {
	logger := s.logger.With("job_id", job.ID, "assignment_id", job.AssignmentID)

	material, ok := s.runIngest(ctx, job, logger)
	if !ok {
		return
	}
	if !s.advance(ctx, job, model.JobStageIngesting, logger) {
		return
	}

	content, ok := s.runGenerate(ctx, job, material, logger)
	if !ok {
		return
	}
	if !s.advance(ctx, job, model.JobStageGenerating, logger) {
		return
	}

	candidates, ok := s.runRender(ctx, job, content, logger)
	if !ok {
		return
	}
	if !s.advance(ctx, job, model.JobStageRendering, logger) {
		return
	}

	s.runValidate(ctx, job, candidates, logger)
}

func (s *PipelineService) runIngest(ctx context.Context, job *model.Job, logger *slog.Logger) (*model.Material, bool) {
	start := time.Now()
	stageCtx, cancel := context.WithTimeout(ctx, s.config.StageTimeout)
	defer cancel()

	material, err := s.fetchMaterial(stageCtx, job.SourceFileRef)
	if err != nil {
		s.failStage(ctx, job, model.JobStageIngesting, err, logger)
		return nil, false
	}
	s.emitStage(model.JobStageIngesting, metrics.ResultSuccess, time.Since(start), nil)
	return material, true
}

// fetchMaterial reads through the cache when one is wired. Cache failures
// degrade to a direct fetch; only the fetch itself can fail the stage.
func (s *PipelineService) fetchMaterial(ctx context.Context, sourceFileRef string) (*model.Material, error) {
	if s.stages.Cache != nil {
		cached, err := s.stages.Cache.Get(ctx, sourceFileRef)
		if err != nil {
			s.logger.WarnContext(ctx, "material cache read failed", "source_file_ref", sourceFileRef, "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	material, err := s.stages.Fetcher.Fetch(ctx, sourceFileRef)
	if err != nil {
		return nil, err
	}

	if s.stages.Cache != nil {
		if err := s.stages.Cache.Set(ctx, sourceFileRef, material); err != nil {
			s.logger.WarnContext(ctx, "material cache write failed", "source_file_ref", sourceFileRef, "error", err)
		}
	}
	return material, nil
}

func (s *PipelineService) runGenerate(ctx context.Context, job *model.Job, material *model.Material, logger *slog.Logger) (*model.StructuredContent, bool) {
	start := time.Now()
	stageCtx, cancel := context.WithTimeout(ctx, s.config.StageTimeout)
	defer cancel()

	content, err := s.stages.Generator.Generate(stageCtx, core.GenerateRequest{
		AssignmentID: job.AssignmentID,
		Prompt:       job.Prompt,
		Material:     material,
	})
	if err != nil {
		s.failStage(ctx, job, model.JobStageGenerating, err, logger)
		return nil, false
	}
	s.emitStage(model.JobStageGenerating, metrics.ResultSuccess, time.Since(start), nil)
	return content, true
}

func (s *PipelineService) runRender(ctx context.Context, job *model.Job, content *model.StructuredContent, logger *slog.Logger) ([]model.ArtifactCandidate, bool) {
	start := time.Now()

	candidates, err := s.stages.Renderer.Render(content)
	if err != nil {
		s.failStage(ctx, job, model.JobStageRendering, err, logger)
		return nil, false
	}
	s.emitStage(model.JobStageRendering, metrics.ResultSuccess, time.Since(start), nil)
	return candidates, true
}

// runValidate persists the candidates, judges each one, and finishes the job.
// The job reaches ready only when every artifact validated.
func (s *PipelineService) runValidate(ctx context.Context, job *model.Job, candidates []model.ArtifactCandidate, logger *slog.Logger) {
	start := time.Now()

	pending, err := s.artifacts.CreatePending(ctx, job, candidates)
	if err != nil {
		if errors.Is(err, model.ErrJobNotActive) {
			s.noteSuperseded(job, model.JobStageValidating, logger)
			return
		}
		s.failStage(ctx, job, model.JobStageValidating, err, logger)
		return
	}

	allValid := true
	for i, artifact := range pending {
		verdict := s.stages.Validator.Validate(candidates[i])
		metrics.EmitValidationVerdict(s.metrics, string(artifact.Type), string(verdict.Status), string(verdict.ErrorCode))

		published, finalizeErr := s.artifacts.Finalize(ctx, artifact.ID, verdict)
		if finalizeErr != nil {
			s.failStage(ctx, job, model.JobStageValidating, finalizeErr, logger)
			return
		}
		if !published {
			s.noteSuperseded(job, model.JobStageValidating, logger)
			return
		}
		if !verdict.Passed() {
			allValid = false
			logger.WarnContext(ctx, "artifact rejected",
				"artifact_id", artifact.ID,
				"artifact_type", artifact.Type,
				"error_code", verdict.ErrorCode,
				"error_message", verdict.ErrorMessage,
			)
		}
	}

	if !allValid {
		s.failValidated(ctx, job, logger)
		return
	}

	if !s.advance(ctx, job, model.JobStageValidating, logger) {
		return
	}
	s.emitStage(model.JobStageValidating, metrics.ResultSuccess, time.Since(start), nil)
	metrics.EmitJobOutcome(s.metrics, string(model.JobStageReady), "")
	logger.InfoContext(ctx, "deliverable job ready", "artifacts", len(pending))
}

// advance moves the job to the next stage and reports whether the job still
// owned its slot.
func (s *PipelineService) advance(ctx context.Context, job *model.Job, from model.JobStage, logger *slog.Logger) bool {
	moved, err := s.jobs.AdvanceStage(ctx, job.ID, from, from.Next())
	if err != nil {
		logger.ErrorContext(ctx, "stage transition failed", "from", from, "error", err)
		return false
	}
	if !moved {
		s.noteSuperseded(job, from, logger)
		return false
	}
	return true
}

// failStage terminates the job with the stage's failure reason. A lost guard
// here means a superseding run already owns the terminal state.
func (s *PipelineService) failStage(ctx context.Context, job *model.Job, stage model.JobStage, cause error, logger *slog.Logger) {
	reason := stage.FailureFor()
	s.emitStage(stage, metrics.ResultError, 0, cause)

	failed, err := s.jobs.FailStage(ctx, job.ID, stage, reason)
	if err != nil {
		logger.ErrorContext(ctx, "failure transition failed", "stage", stage, "reason", reason, "error", err)
		return
	}
	if !failed {
		s.noteSuperseded(job, stage, logger)
		return
	}
	metrics.EmitJobOutcome(s.metrics, string(model.JobStageFailed), string(reason))
	logger.WarnContext(ctx, "deliverable job failed",
		"stage", stage,
		"reason", reason,
		"error", cause,
	)
}

// failValidated terminates a job whose artifacts were judged and at least
// one was rejected.
func (s *PipelineService) failValidated(ctx context.Context, job *model.Job, logger *slog.Logger) {
	failed, err := s.jobs.FailStage(ctx, job.ID, model.JobStageValidating, model.FailureValidate)
	if err != nil {
		logger.ErrorContext(ctx, "failure transition failed", "stage", model.JobStageValidating, "error", err)
		return
	}
	if !failed {
		s.noteSuperseded(job, model.JobStageValidating, logger)
		return
	}
	s.emitStage(model.JobStageValidating, metrics.ResultError, 0, nil)
	metrics.EmitJobOutcome(s.metrics, string(model.JobStageFailed), string(model.FailureValidate))
	logger.WarnContext(ctx, "deliverable job failed", "stage", model.JobStageValidating, "reason", model.FailureValidate)
}

func (s *PipelineService) noteSuperseded(job *model.Job, stage model.JobStage, logger *slog.Logger) {
	s.emitStage(stage, metrics.ResultNoop, 0, nil)
	logger.Info("job superseded mid-flight, stopping", "stage", stage)
}

func (s *PipelineService) emitStage(stage model.JobStage, result string, d time.Duration, err error) {
	metrics.EmitStageTransition(s.metrics, metrics.StageMetric{
		Stage:    string(stage),
		Result:   result,
		Duration: d,
		Err:      err,
	})
}
