package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/coursedeck/deliverables-api/config"
	"github.com/coursedeck/deliverables-api/internal/domain/model"
	apperrors "github.com/coursedeck/deliverables-api/internal/errors"
	"github.com/coursedeck/deliverables-api/internal/mocks"
	"github.com/coursedeck/deliverables-api/internal/service"
)

type routerFixture struct {
	jobs      *mocks.MockJobRepository
	artifacts *mocks.MockArtifactRepository
	fetcher   *mocks.MockMaterialFetcher
	pipeline  *service.PipelineService
	handler   http.Handler
}

// newRouterFixture wires the full router over mocked repositories. The
// pipeline's background goroutine is cut short by failing ingestion, which
// keeps handler tests focused on the HTTP contract.
func newRouterFixture(t *testing.T, enabled bool) *routerFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &routerFixture{
		jobs:      mocks.NewMockJobRepository(ctrl),
		artifacts: mocks.NewMockArtifactRepository(ctrl),
		fetcher:   mocks.NewMockMaterialFetcher(ctrl),
	}

	generator := mocks.NewMockContentGenerator(ctrl)
	renderer := mocks.NewMockRenderer(ctrl)
	validator := mocks.NewMockValidator(ctrl)

	pipeline, err := service.NewPipelineService(service.PipelineServiceOptions{
		Repos: service.PipelineRepos{Jobs: f.jobs, Artifacts: f.artifacts},
		Stages: service.PipelineStages{
			Fetcher:   f.fetcher,
			Generator: generator,
			Renderer:  renderer,
			Validator: validator,
		},
		Runtime: service.PipelineRuntime{
			Config: config.PipelineConfig{Enabled: enabled, StageTimeout: time.Minute},
		},
	})
	require.NoError(t, err)
	f.pipeline = pipeline

	signer, err := service.NewURLSigner("router-test-key", 10*time.Minute)
	require.NoError(t, err)

	jobSvc, err := service.NewJobService(service.JobServiceOptions{Repo: f.jobs})
	require.NoError(t, err)
	artifactSvc, err := service.NewArtifactService(service.ArtifactServiceOptions{Repo: f.artifacts, Signer: signer})
	require.NoError(t, err)
	gate, err := service.NewAccessGateService(service.AccessGateOptions{
		Repos:  service.GateRepos{Artifacts: f.artifacts, Jobs: f.jobs},
		Signer: signer,
	})
	require.NoError(t, err)

	f.handler = NewRouter(RouterServices{
		Pipeline:  pipeline,
		Jobs:      jobSvc,
		Artifacts: artifactSvc,
		Gate:      gate,
	})
	return f
}

// expectBackgroundRun lets the job goroutine start and stop at ingestion.
func (f *routerFixture) expectBackgroundRun() {
	f.fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return(nil, errors.New("cut short")).AnyTimes()
	f.jobs.EXPECT().FailStage(gomock.Any(), gomock.Any(), model.JobStageIngesting, model.FailureIngest).Return(true, nil).AnyTimes()
}

func runBody() *strings.Reader {
	return strings.NewReader(`{"source_file_ref":"file-1","prompt":"make a study guide"}`)
}

func TestRunDeliverable(t *testing.T) {
	f := newRouterFixture(t, true)
	f.expectBackgroundRun()

	f.jobs.EXPECT().Create(gomock.Any(), gomock.Any()).Return(&model.Job{
		ID:           "job-1",
		AssignmentID: "assign-1",
		Stage:        model.JobStageIngesting,
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/assignments/assign-1/deliverable", runBody())
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "job-1", resp["job_id"])
	assert.Equal(t, "ingesting", resp["stage"])

	f.pipeline.Wait()
}

func TestRunDeliverable_AlreadyRunning(t *testing.T) {
	f := newRouterFixture(t, true)

	f.jobs.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, apperrors.AlreadyRunning("assign-1"))

	req := httptest.NewRequest(http.MethodPost, "/api/assignments/assign-1/deliverable", runBody())
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already_running")
}

func TestRunDeliverable_PipelineDisabled(t *testing.T) {
	f := newRouterFixture(t, false)

	req := httptest.NewRequest(http.MethodPost, "/api/assignments/assign-1/deliverable", runBody())
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "unavailable")
}

func TestRunDeliverable_BadBody(t *testing.T) {
	f := newRouterFixture(t, true)

	req := httptest.NewRequest(http.MethodPost, "/api/assignments/assign-1/deliverable", strings.NewReader(`{"source_file_ref":`))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_json")
}

func TestRegenerateDeliverable(t *testing.T) {
	f := newRouterFixture(t, true)
	f.expectBackgroundRun()

	f.jobs.EXPECT().CreateSuperseding(gomock.Any(), gomock.Any()).Return(&model.Job{
		ID:           "job-2",
		AssignmentID: "assign-1",
		Stage:        model.JobStageIngesting,
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/assignments/assign-1/deliverable/regenerate", runBody())
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Contains(t, rec.Body.String(), "job-2")

	f.pipeline.Wait()
}

func TestJobStatus(t *testing.T) {
	f := newRouterFixture(t, true)

	reason := model.FailureRender
	finished := time.Now()
	f.jobs.EXPECT().LatestForAssignment(gomock.Any(), "assign-1").Return(&model.Job{
		ID:            "job-1",
		AssignmentID:  "assign-1",
		Stage:         model.JobStageFailed,
		FailureReason: &reason,
		StartedAt:     finished.Add(-time.Minute),
		FinishedAt:    &finished,
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/assignments/assign-1/job", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp model.JobStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "job-1", resp.JobID)
	assert.Equal(t, model.JobStageFailed, resp.Stage)
	require.NotNil(t, resp.FailureReason)
	assert.Equal(t, model.FailureRender, *resp.FailureReason)
}

func TestJobStatus_NoJob(t *testing.T) {
	f := newRouterFixture(t, true)

	f.jobs.EXPECT().LatestForAssignment(gomock.Any(), "assign-1").Return(nil, model.ErrNoActiveJob)

	req := httptest.NewRequest(http.MethodGet, "/api/assignments/assign-1/job", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListArtifacts(t *testing.T) {
	f := newRouterFixture(t, true)

	sha := "cafe"
	f.artifacts.EXPECT().ListForAssignment(gomock.Any(), "assign-1").Return([]*model.Artifact{
		{
			ID:           "art-1",
			AssignmentID: "assign-1",
			Type:         model.ArtifactTypeDocx,
			Mime:         model.MimeDocx,
			Status:       model.ArtifactStatusValid,
			SHA256:       &sha,
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/assignments/assign-1/artifacts", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Artifacts []model.ArtifactListEntry `json:"artifacts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Artifacts, 1)
	require.NotNil(t, resp.Artifacts[0].SignedURL)
	assert.Contains(t, *resp.Artifacts[0].SignedURL, "/api/artifacts/art-1/download?")
}

func TestHealthz(t *testing.T) {
	f := newRouterFixture(t, true)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","service":"deliverables-api"}`, rec.Body.String())
}
