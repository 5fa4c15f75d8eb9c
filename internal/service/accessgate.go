package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/coursedeck/deliverables-api/internal/core"
	"github.com/coursedeck/deliverables-api/internal/domain/model"
	apperrors "github.com/coursedeck/deliverables-api/internal/errors"
	"github.com/coursedeck/deliverables-api/internal/observability/metrics"
	"github.com/coursedeck/deliverables-api/internal/observability/statsd"
)

// Gate denial reasons. Every denial carries exactly one and is telemetered
// with it before the caller sees the error.
const (
	DenyMalformedURL       = "malformed_url"
	DenyBadSignature       = "bad_signature"
	DenyExpiredURL         = "expired_url"
	DenyUnknownArtifact    = "unknown_artifact"
	DenyAssignmentMismatch = "assignment_mismatch"
	DenyArtifactNotValid   = "artifact_not_valid"
	DenyJobNotReady        = "job_not_ready"
)

// AccessGateOptions groups dependencies for AccessGateService.
type AccessGateOptions struct {
	Repos   GateRepos
	Signer  *URLSigner  // Required: download URL signer
	Runtime GateRuntime // Optional: logger and metrics
}

// GateRepos groups the repositories the gate reads.
type GateRepos struct {
	Artifacts core.ArtifactRepository
	Jobs      core.JobRepository
}

// GateRuntime groups observability dependencies.
type GateRuntime struct {
	Logger  *slog.Logger
	Metrics statsd.Sink
}

// AccessGateService decides whether a download URL may be served. A URL that
// verified when it was minted proves nothing at resolution time: the artifact
// or its job may have been superseded since, so both statuses are re-read on
// every request.
type AccessGateService struct {
	artifacts core.ArtifactRepository
	jobs      core.JobRepository
	signer    *URLSigner
	logger    *slog.Logger
	metrics   statsd.Sink
	now       func() time.Time
}

// NewAccessGateService constructs a new AccessGateService.
func NewAccessGateService(opts AccessGateOptions) (*AccessGateService, error) {
	if opts.Repos.Artifacts == nil {
		return nil, errors.New("ArtifactRepository is required")
	}
	if opts.Repos.Jobs == nil {
		return nil, errors.New("JobRepository is required")
	}
	if opts.Signer == nil {
		return nil, errors.New("URLSigner is required")
	}
	logger := opts.Runtime.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AccessGateService{
		artifacts: opts.Repos.Artifacts,
		jobs:      opts.Repos.Jobs,
		signer:    opts.Signer,
		logger:    logger.With("component", "access_gate"),
		metrics:   opts.Runtime.Metrics,
		now:       time.Now,
	}, nil
}

// Download is a resolved artifact ready to serve.
type Download struct {
	Artifact *model.Artifact
	Content  []byte
}

// Resolve verifies the signed query and returns the artifact content, or an
// access-denied error carrying the denial reason.
func (s *AccessGateService) Resolve(ctx context.Context, q SignedQuery) (*Download, error) {
	if ok, reason := s.signer.Verify(q, s.now()); !ok {
		return nil, s.deny(ctx, q, reason)
	}

	artifact, content, err := s.artifacts.GetContent(ctx, q.ArtifactID)
	if err != nil {
		if errors.Is(err, model.ErrArtifactNotFound) {
			return nil, s.deny(ctx, q, DenyUnknownArtifact)
		}
		return nil, fmt.Errorf("load artifact %s: %w", q.ArtifactID, err)
	}

	if artifact.AssignmentID != q.AssignmentID {
		return nil, s.deny(ctx, q, DenyAssignmentMismatch)
	}
	if artifact.Status != model.ArtifactStatusValid {
		return nil, s.deny(ctx, q, DenyArtifactNotValid)
	}

	// The artifact can be valid while its job lost the slot to a newer run.
	job, err := s.jobs.GetByID(ctx, artifact.JobID)
	if err != nil {
		if errors.Is(err, model.ErrJobNotFound) {
			return nil, s.deny(ctx, q, DenyUnknownArtifact)
		}
		return nil, fmt.Errorf("load job %s: %w", artifact.JobID, err)
	}
	if job.Stage != model.JobStageReady {
		return nil, s.deny(ctx, q, DenyJobNotReady)
	}

	return &Download{Artifact: artifact, Content: content}, nil
}

// RecordBlocked telemeters a denial the client observed and reported, such
// as a stale URL embedded in an open document list.
func (s *AccessGateService) RecordBlocked(ctx context.Context, reason string) {
	if reason == "" {
		reason = "unspecified"
	}
	metrics.EmitAccessDenied(s.metrics, reason)
	s.logger.InfoContext(ctx, "client reported blocked download", "reason", reason)
}

func (s *AccessGateService) deny(ctx context.Context, q SignedQuery, reason string) error {
	metrics.EmitAccessDenied(s.metrics, reason)
	s.logger.WarnContext(ctx, "download denied",
		"artifact_id", q.ArtifactID,
		"assignment_id", q.AssignmentID,
		"reason", reason,
	)
	return apperrors.AccessDenied(reason, "download not permitted")
}
