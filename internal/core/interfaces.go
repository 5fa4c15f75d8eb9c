package core

import (
	"context"
	"time"

	"github.com/coursedeck/deliverables-api/internal/domain/model"
)

// This file contains the ports between the service layer and its
// collaborators. Service implementations depend on these interfaces, not on
// concrete data or adapter types.

// JobRepository defines the interface for deliverable job data operations.
type JobRepository interface {
	// Create inserts a new job in the ingesting stage. It returns an
	// AlreadyRunning conflict when the assignment has an active job.
	Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error)
	// CreateSuperseding marks the assignment's active job failed with the
	// superseded reason and inserts the replacement in one transaction.
	CreateSuperseding(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error)
	GetByID(ctx context.Context, id string) (*model.Job, error)
	LatestForAssignment(ctx context.Context, assignmentID string) (*model.Job, error)
	// AdvanceStage moves the job from one stage to the next. It returns
	// false without error when the job is no longer in the from stage.
	AdvanceStage(ctx context.Context, jobID string, from, to model.JobStage) (bool, error)
	// FailStage terminates the job with the given reason, guarded the same
	// way as AdvanceStage.
	FailStage(ctx context.Context, jobID string, from model.JobStage, reason model.FailureReason) (bool, error)
	// FailStale fails jobs whose last update precedes the cutoff, up to limit.
	FailStale(ctx context.Context, cutoff time.Time, limit int) (int, error)
	ListForAssignment(ctx context.Context, assignmentID string, limit int) ([]*model.Job, error)
}

// ArtifactRepository defines the interface for artifact data operations.
type ArtifactRepository interface {
	// CreatePending stores the rendered candidates as pending artifacts,
	// refusing when the owning job is no longer active.
	CreatePending(ctx context.Context, job *model.Job, candidates []model.ArtifactCandidate) ([]*model.Artifact, error)
	// Finalize folds a validation verdict into the artifact record. It
	// returns false when the verdict was discarded because the owning job
	// had been superseded or otherwise terminated.
	Finalize(ctx context.Context, artifactID string, res model.ValidationResult) (bool, error)
	GetMeta(ctx context.Context, id string) (*model.Artifact, error)
	GetContent(ctx context.Context, id string) (*model.Artifact, []byte, error)
	// ListForAssignment returns the artifacts of the assignment's newest job.
	ListForAssignment(ctx context.Context, assignmentID string) ([]*model.Artifact, error)
}

// MaterialFetcher retrieves source material for a file reference from the
// course content store.
type MaterialFetcher interface {
	Fetch(ctx context.Context, sourceFileRef string) (*model.Material, error)
}

// MaterialCache is a read-through cache in front of MaterialFetcher.
type MaterialCache interface {
	// Get returns (nil, nil) on a cache miss.
	Get(ctx context.Context, sourceFileRef string) (*model.Material, error)
	Set(ctx context.Context, sourceFileRef string, m *model.Material) error
	Invalidate(ctx context.Context, sourceFileRef string) (bool, error)
}

// GenerateRequest carries the inputs for one content generation call.
type GenerateRequest struct {
	AssignmentID string
	Prompt       string
	Material     *model.Material
}

// ContentGenerator produces structured document content from source material
// and an instructor prompt.
type ContentGenerator interface {
	Generate(ctx context.Context, req GenerateRequest) (*model.StructuredContent, error)
}

// Renderer produces the full candidate set for structured content.
type Renderer interface {
	Render(content *model.StructuredContent) ([]model.ArtifactCandidate, error)
}

// Validator judges one rendered candidate.
type Validator interface {
	Validate(candidate model.ArtifactCandidate) model.ValidationResult
}
