// Package httpx provides the HTTP surface of the deliverable pipeline API.
package httpx

import (
	"context"
	"errors"
	"net/http"

	"github.com/coursedeck/deliverables-api/internal/domain/model"
	"github.com/coursedeck/deliverables-api/internal/service"
)

// DeliverableHandlers provides HTTP handlers for pipeline job operations.
type DeliverableHandlers struct {
	Pipeline  *service.PipelineService
	Jobs      *service.JobService
	Artifacts *service.ArtifactService
}

// runRequest is the body of run and regenerate requests. The assignment comes
// from the path, never the body.
type runRequest struct {
	SourceFileRef string `json:"source_file_ref"`
	Prompt        string `json:"prompt"`
}

// Run starts a new deliverable job for the assignment. Responds 202 with the
// job id: the pipeline proceeds asynchronously and clients poll the job
// endpoint.
func (h *DeliverableHandlers) Run(w http.ResponseWriter, r *http.Request) {
	h.start(w, r, h.Pipeline.Run)
}

// Regenerate supersedes any active job and starts a replacement.
func (h *DeliverableHandlers) Regenerate(w http.ResponseWriter, r *http.Request) {
	h.start(w, r, h.Pipeline.Regenerate)
}

func (h *DeliverableHandlers) start(
	w http.ResponseWriter,
	r *http.Request,
	begin func(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error),
) {
	assignmentID := r.PathValue("assignmentID")
	if assignmentID == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("assignment id is required")})
		return
	}

	var body runRequest
	if !DecodeJSON(w, r, &body) {
		return
	}

	job, err := begin(r.Context(), &model.CreateJobRequest{
		AssignmentID:  assignmentID,
		SourceFileRef: body.SourceFileRef,
		Prompt:        body.Prompt,
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.ID,
		"stage":  string(job.Stage),
	})
}

// JobStatus returns the assignment's newest job for polling.
func (h *DeliverableHandlers) JobStatus(w http.ResponseWriter, r *http.Request) {
	assignmentID := r.PathValue("assignmentID")
	if assignmentID == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("assignment id is required")})
		return
	}

	status, err := h.Jobs.Status(r.Context(), assignmentID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, status)
}

// ListArtifacts returns the artifact projections for the assignment's newest
// job, signed URLs included where permitted.
func (h *DeliverableHandlers) ListArtifacts(w http.ResponseWriter, r *http.Request) {
	assignmentID := r.PathValue("assignmentID")
	if assignmentID == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("assignment id is required")})
		return
	}

	entries, err := h.Artifacts.List(r.Context(), assignmentID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"artifacts": entries})
}
