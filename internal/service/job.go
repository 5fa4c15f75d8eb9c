package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/coursedeck/deliverables-api/internal/core"
	"github.com/coursedeck/deliverables-api/internal/domain/model"
	apperrors "github.com/coursedeck/deliverables-api/internal/errors"
)

// JobServiceOptions groups dependencies for JobService.
type JobServiceOptions struct {
	Repo   core.JobRepository // Required: job repository
	Logger *slog.Logger       // Optional: structured logger
}

// JobService answers job status queries for the polling endpoint.
type JobService struct {
	repo   core.JobRepository
	logger *slog.Logger
}

// NewJobService constructs a new JobService.
func NewJobService(opts JobServiceOptions) (*JobService, error) {
	if opts.Repo == nil {
		return nil, errors.New("JobRepository is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &JobService{
		repo:   opts.Repo,
		logger: logger.With("component", "job_service"),
	}, nil
}

// Status returns the assignment's newest job projected for polling.
func (s *JobService) Status(ctx context.Context, assignmentID string) (*model.JobStatusResponse, error) {
	job, err := s.repo.LatestForAssignment(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, model.ErrNoActiveJob) {
			return nil, apperrors.NotFoundf("assignment %s has no deliverable job", assignmentID)
		}
		return nil, fmt.Errorf("latest job for assignment %s: %w", assignmentID, err)
	}
	resp := job.StatusResponse()
	return &resp, nil
}

// History returns the assignment's recent jobs, newest first.
func (s *JobService) History(ctx context.Context, assignmentID string, limit int) ([]*model.Job, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	jobs, err := s.repo.ListForAssignment(ctx, assignmentID, limit)
	if err != nil {
		return nil, fmt.Errorf("list jobs for assignment %s: %w", assignmentID, err)
	}
	return jobs, nil
}
