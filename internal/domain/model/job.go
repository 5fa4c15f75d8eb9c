// Package model defines the core data types for the deliverable pipeline.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// JobStage represents the stage a pipeline job is currently in.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type JobStage string

// FailureReason tags why a job reached the failed stage.
type FailureReason string

const (
	// JobStageIngesting indicates source material is being fetched.
	JobStageIngesting JobStage = "ingesting"
	// JobStageGenerating indicates content generation is in flight.
	JobStageGenerating JobStage = "generating"
	// JobStageRendering indicates candidate artifacts are being rendered.
	JobStageRendering JobStage = "rendering"
	// JobStageValidating indicates candidate artifacts are being validated.
	JobStageValidating JobStage = "validating"
	// JobStageReady indicates every artifact validated and the job is terminal.
	JobStageReady JobStage = "ready"
	// JobStageFailed indicates the job terminated without deliverables.
	JobStageFailed JobStage = "failed"

	// FailureIngest tags a failure during material ingestion.
	FailureIngest FailureReason = "IngestFailed"
	// FailureGenerate tags a failure during content generation.
	FailureGenerate FailureReason = "GenerateFailed"
	// FailureRender tags a failure during artifact rendering.
	FailureRender FailureReason = "RenderFailed"
	// FailureValidate tags a failure during artifact validation.
	FailureValidate FailureReason = "ValidateFailed"
	// FailureSuperseded tags a job cancelled because a newer run replaced it.
	FailureSuperseded FailureReason = "Superseded"
)

// ErrNoActiveJob is returned when an assignment has no job at all.
var ErrNoActiveJob = errors.New("no job for assignment")

// ErrJobNotFound is returned when a job lookup misses.
var ErrJobNotFound = errors.New("job not found")

// ErrJobNotActive is returned when a write targets a job that has already
// reached a terminal stage (typically because it was superseded).
var ErrJobNotActive = errors.New("job is no longer active")

// UnmarshalText implements encoding.TextUnmarshaler for JobStage to allow env parsing.
func (s *JobStage) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	js := JobStage(v)
	if js.Valid() {
		*s = js
		return nil
	}
	return fmt.Errorf("invalid JobStage: %q", v)
}

// Valid returns true if the JobStage is valid.
func (s JobStage) Valid() bool {
	switch s {
	case JobStageIngesting, JobStageGenerating, JobStageRendering,
		JobStageValidating, JobStageReady, JobStageFailed:
		return true
	}
	return false
}

// Terminal returns true when the stage admits no further transitions.
func (s JobStage) Terminal() bool {
	return s == JobStageReady || s == JobStageFailed
}

// Next returns the stage that follows s on the success path.
// Terminal stages return themselves.
func (s JobStage) Next() JobStage {
	switch s {
	case JobStageIngesting:
		return JobStageGenerating
	case JobStageGenerating:
		return JobStageRendering
	case JobStageRendering:
		return JobStageValidating
	case JobStageValidating:
		return JobStageReady
	default:
		return s
	}
}

// FailureFor maps a stage to its stage-tagged failure reason.
func (s JobStage) FailureFor() FailureReason {
	switch s {
	case JobStageIngesting:
		return FailureIngest
	case JobStageGenerating:
		return FailureGenerate
	case JobStageRendering:
		return FailureRender
	case JobStageValidating:
		return FailureValidate
	default:
		return ""
	}
}

// Valid returns true if the FailureReason is one of the known tags.
func (r FailureReason) Valid() bool {
	switch r {
	case FailureIngest, FailureGenerate, FailureRender, FailureValidate, FailureSuperseded:
		return true
	}
	return false
}

// Job represents one end-to-end pipeline run for one assignment.
// Stage transitions are owned exclusively by the pipeline orchestrator.
type Job struct {
	ID            string         `json:"id"                       db:"id"`
	AssignmentID  string         `json:"assignment_id"            db:"assignment_id"`
	SourceFileRef string         `json:"source_file_ref"          db:"source_file_ref"`
	Prompt        string         `json:"prompt"                   db:"prompt"`
	Stage         JobStage       `json:"stage"                    db:"stage"`
	FailureReason *FailureReason `json:"failure_reason,omitempty" db:"failure_reason"`
	StartedAt     time.Time      `json:"started_at"               db:"started_at"`
	FinishedAt    *time.Time     `json:"finished_at,omitempty"    db:"finished_at"`
	CreatedAt     time.Time      `json:"created_at"               db:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"               db:"updated_at"`
}

// Active reports whether the job still owns its assignment's pipeline slot.
func (j *Job) Active() bool {
	return j != nil && !j.Stage.Terminal()
}

// CreateJobRequest represents a request to start a new pipeline job.
type CreateJobRequest struct {
	AssignmentID  string `json:"assignment_id"`
	SourceFileRef string `json:"source_file_ref"`
	Prompt        string `json:"prompt"`
}

// Validate validates the CreateJobRequest fields.
func (r *CreateJobRequest) Validate() error {
	if strings.TrimSpace(r.AssignmentID) == "" {
		return errors.New("assignment id is required")
	}
	if strings.TrimSpace(r.SourceFileRef) == "" {
		return errors.New("source file ref is required")
	}
	if strings.TrimSpace(r.Prompt) == "" {
		return errors.New("prompt is required")
	}
	return nil
}

// JobStatusResponse is the client-facing projection of a job used by the
// polling endpoint. The desktop client used to infer the stage from log text;
// this projection is the stable replacement.
type JobStatusResponse struct {
	JobID         string         `json:"job_id"`
	Stage         JobStage       `json:"stage"`
	FailureReason *FailureReason `json:"failure_reason,omitempty"`
	StartedAt     time.Time      `json:"started_at"`
	FinishedAt    *time.Time     `json:"finished_at,omitempty"`
}

// StatusResponse projects a Job for the polling endpoint.
func (j *Job) StatusResponse() JobStatusResponse {
	return JobStatusResponse{
		JobID:         j.ID,
		Stage:         j.Stage,
		FailureReason: j.FailureReason,
		StartedAt:     j.StartedAt,
		FinishedAt:    j.FinishedAt,
	}
}
