package httpx

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/coursedeck/deliverables-api/internal/domain/model"
	"github.com/coursedeck/deliverables-api/internal/mocks"
	"github.com/coursedeck/deliverables-api/internal/service"
)

type downloadFixture struct {
	jobs      *mocks.MockJobRepository
	artifacts *mocks.MockArtifactRepository
	signer    *service.URLSigner
	handler   http.Handler
}

func newDownloadFixture(t *testing.T) *downloadFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &downloadFixture{
		jobs:      mocks.NewMockJobRepository(ctrl),
		artifacts: mocks.NewMockArtifactRepository(ctrl),
	}

	signer, err := service.NewURLSigner("download-test-key", 10*time.Minute)
	require.NoError(t, err)
	f.signer = signer

	gate, err := service.NewAccessGateService(service.AccessGateOptions{
		Repos:  service.GateRepos{Artifacts: f.artifacts, Jobs: f.jobs},
		Signer: signer,
	})
	require.NoError(t, err)

	f.handler = NewRouter(RouterServices{Gate: gate})
	return f
}

func (f *downloadFixture) signedPath(artifactID, assignmentID string) string {
	q := f.signer.Sign(artifactID, assignmentID, time.Now())
	v := url.Values{}
	v.Set("assignment", q.AssignmentID)
	v.Set("exp", fmt.Sprintf("%d", q.Expiry))
	v.Set("sig", q.Signature)
	return "/api/artifacts/" + artifactID + "/download?" + v.Encode()
}

func validPDF() (*model.Artifact, []byte) {
	sha := "deadbeef"
	return &model.Artifact{
		ID:           "art-1",
		JobID:        "job-1",
		AssignmentID: "assign-1",
		Type:         model.ArtifactTypePDF,
		Mime:         model.MimePDF,
		Status:       model.ArtifactStatusValid,
		SHA256:       &sha,
		ByteSize:     4,
	}, []byte("%PDF")
}

func TestDownload(t *testing.T) {
	f := newDownloadFixture(t)

	artifact, content := validPDF()
	f.artifacts.EXPECT().GetContent(gomock.Any(), "art-1").Return(artifact, content, nil)
	f.jobs.EXPECT().GetByID(gomock.Any(), "job-1").Return(&model.Job{
		ID:           "job-1",
		AssignmentID: "assign-1",
		Stage:        model.JobStageReady,
	}, nil)

	req := httptest.NewRequest(http.MethodGet, f.signedPath("art-1", "assign-1"), nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.MimePDF, rec.Header().Get("Content-Type"))
	assert.Equal(t, "4", rec.Header().Get("Content-Length"))
	assert.Equal(t, "deadbeef", rec.Header().Get("X-Content-SHA256"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `.pdf"`)
	assert.Equal(t, "%PDF", rec.Body.String())
}

func TestDownload_BadSignature(t *testing.T) {
	f := newDownloadFixture(t)

	path := f.signedPath("art-1", "assign-1")
	path = strings.Replace(path, "sig=", "sig=x", 1)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "access_denied")
}

func TestDownload_MissingQuery(t *testing.T) {
	f := newDownloadFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/artifacts/art-1/download", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDownload_ArtifactNoLongerValid(t *testing.T) {
	f := newDownloadFixture(t)

	artifact, content := validPDF()
	artifact.Status = model.ArtifactStatusFailed
	f.artifacts.EXPECT().GetContent(gomock.Any(), "art-1").Return(artifact, content, nil)

	req := httptest.NewRequest(http.MethodGet, f.signedPath("art-1", "assign-1"), nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDownload_SupersededJob(t *testing.T) {
	f := newDownloadFixture(t)

	artifact, content := validPDF()
	f.artifacts.EXPECT().GetContent(gomock.Any(), "art-1").Return(artifact, content, nil)
	reason := model.FailureSuperseded
	f.jobs.EXPECT().GetByID(gomock.Any(), "job-1").Return(&model.Job{
		ID:            "job-1",
		AssignmentID:  "assign-1",
		Stage:         model.JobStageFailed,
		FailureReason: &reason,
	}, nil)

	req := httptest.NewRequest(http.MethodGet, f.signedPath("art-1", "assign-1"), nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDownload_UnknownArtifact(t *testing.T) {
	f := newDownloadFixture(t)

	f.artifacts.EXPECT().GetContent(gomock.Any(), "art-404").Return(nil, nil, model.ErrArtifactNotFound)

	req := httptest.NewRequest(http.MethodGet, f.signedPath("art-404", "assign-1"), nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestReportBlocked(t *testing.T) {
	f := newDownloadFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/telemetry/blocked", strings.NewReader(`{"reason":"expired_url"}`))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestReportBlocked_BadBody(t *testing.T) {
	f := newDownloadFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/telemetry/blocked", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
