package data

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursedeck/deliverables-api/internal/domain/model"
	"github.com/coursedeck/deliverables-api/internal/testutil"
)

func newTestArtifactRepo(db *sql.DB) *ArtifactRepo {
	return NewArtifactRepo(db, RepoConfig{})
}

// renderingJob creates a job and advances it to the rendering stage so
// pending artifacts can attach to it.
func renderingJob(t *testing.T, jobs *JobRepo) *model.Job {
	t.Helper()
	ctx := context.Background()

	job, err := jobs.Create(ctx, testutil.NewJobRequest().Build())
	require.NoError(t, err)
	for _, step := range [][2]model.JobStage{
		{model.JobStageIngesting, model.JobStageGenerating},
		{model.JobStageGenerating, model.JobStageRendering},
	} {
		moved, advErr := jobs.AdvanceStage(ctx, job.ID, step[0], step[1])
		require.NoError(t, advErr)
		require.True(t, moved)
	}
	job.Stage = model.JobStageRendering
	return job
}

func testCandidates() []model.ArtifactCandidate {
	return []model.ArtifactCandidate{
		{Type: model.ArtifactTypeDocx, Mime: model.MimeDocx, Bytes: []byte("PK\x03\x04docx")},
		{Type: model.ArtifactTypePDF, Mime: model.MimePDF, Bytes: []byte("%PDF-1.7 pdf")},
	}
}

func validResult(sha string) model.ValidationResult {
	return model.ValidationResult{Status: model.ArtifactStatusValid, SHA256: sha}
}

func TestArtifactRepo_CreatePending(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		jobs := newTestJobRepo(db)
		repo := newTestArtifactRepo(db)
		ctx := context.Background()

		job := renderingJob(t, jobs)

		artifacts, err := repo.CreatePending(ctx, job, testCandidates())
		require.NoError(t, err)
		require.Len(t, artifacts, 2)
		for _, a := range artifacts {
			assert.Equal(t, job.ID, a.JobID)
			assert.Equal(t, model.ArtifactStatusPending, a.Status)
			assert.Positive(t, a.ByteSize)
		}
	})
}

func TestArtifactRepo_CreatePending_SupersededJob(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		jobs := newTestJobRepo(db)
		repo := newTestArtifactRepo(db)
		ctx := context.Background()

		job := renderingJob(t, jobs)
		_, err := jobs.CreateSuperseding(ctx, testutil.NewJobRequest().Build())
		require.NoError(t, err)

		_, err = repo.CreatePending(ctx, job, testCandidates())
		assert.ErrorIs(t, err, model.ErrJobNotActive)

		list, err := repo.ListForAssignment(ctx, job.AssignmentID)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestArtifactRepo_Finalize_Valid(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		jobs := newTestJobRepo(db)
		repo := newTestArtifactRepo(db)
		ctx := context.Background()

		job := renderingJob(t, jobs)
		artifacts, err := repo.CreatePending(ctx, job, testCandidates())
		require.NoError(t, err)

		published, err := repo.Finalize(ctx, artifacts[0].ID, validResult("abc123"))
		require.NoError(t, err)
		assert.True(t, published)

		got, err := repo.GetMeta(ctx, artifacts[0].ID)
		require.NoError(t, err)
		assert.Equal(t, model.ArtifactStatusValid, got.Status)
		require.NotNil(t, got.SHA256)
		assert.Equal(t, "abc123", *got.SHA256)
		assert.NotNil(t, got.ValidatedAt)
		assert.Nil(t, got.ErrorCode)

		// Finalizing twice is a no-op: the transition is monotonic.
		published, err = repo.Finalize(ctx, artifacts[0].ID, validResult("other"))
		require.NoError(t, err)
		assert.False(t, published)
	})
}

func TestArtifactRepo_Finalize_Failed(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		jobs := newTestJobRepo(db)
		repo := newTestArtifactRepo(db)
		ctx := context.Background()

		job := renderingJob(t, jobs)
		artifacts, err := repo.CreatePending(ctx, job, testCandidates())
		require.NoError(t, err)

		published, err := repo.Finalize(ctx, artifacts[1].ID, model.ValidationResult{
			Status:       model.ArtifactStatusFailed,
			ErrorCode:    model.ErrCodeBadMagicBytes,
			ErrorMessage: "leading bytes are not a PDF header",
		})
		require.NoError(t, err)
		assert.True(t, published)

		got, err := repo.GetMeta(ctx, artifacts[1].ID)
		require.NoError(t, err)
		assert.Equal(t, model.ArtifactStatusFailed, got.Status)
		require.NotNil(t, got.ErrorCode)
		assert.Equal(t, model.ErrCodeBadMagicBytes, *got.ErrorCode)
		assert.Nil(t, got.SHA256)
	})
}

func TestArtifactRepo_Finalize_SupersededDiscards(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		jobs := newTestJobRepo(db)
		repo := newTestArtifactRepo(db)
		ctx := context.Background()

		job := renderingJob(t, jobs)
		artifacts, err := repo.CreatePending(ctx, job, testCandidates())
		require.NoError(t, err)

		_, err = jobs.CreateSuperseding(ctx, testutil.NewJobRequest().Build())
		require.NoError(t, err)

		published, err := repo.Finalize(ctx, artifacts[0].ID, validResult("abc123"))
		require.NoError(t, err)
		assert.False(t, published)

		got, err := repo.GetMeta(ctx, artifacts[0].ID)
		require.NoError(t, err)
		assert.Equal(t, model.ArtifactStatusPending, got.Status)
	})
}

func TestArtifactRepo_Finalize_UnknownArtifact(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := newTestArtifactRepo(db)

		_, err := repo.Finalize(context.Background(), "00000000-0000-0000-0000-000000000000", validResult("abc"))
		assert.ErrorIs(t, err, model.ErrArtifactNotFound)
	})
}

func TestArtifactRepo_GetContent(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		jobs := newTestJobRepo(db)
		repo := newTestArtifactRepo(db)
		ctx := context.Background()

		job := renderingJob(t, jobs)
		artifacts, err := repo.CreatePending(ctx, job, testCandidates())
		require.NoError(t, err)

		got, content, err := repo.GetContent(ctx, artifacts[1].ID)
		require.NoError(t, err)
		assert.Equal(t, artifacts[1].ID, got.ID)
		assert.Equal(t, []byte("%PDF-1.7 pdf"), content)
	})
}

func TestArtifactRepo_ListForAssignment_CurrentJobOnly(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		jobs := newTestJobRepo(db)
		repo := newTestArtifactRepo(db)
		ctx := context.Background()

		oldJob := renderingJob(t, jobs)
		oldArtifacts, err := repo.CreatePending(ctx, oldJob, testCandidates())
		require.NoError(t, err)
		for _, a := range oldArtifacts {
			_, finErr := repo.Finalize(ctx, a.ID, validResult("old"))
			require.NoError(t, finErr)
		}

		newJob, err := jobs.CreateSuperseding(ctx, testutil.NewJobRequest().Build())
		require.NoError(t, err)
		for _, step := range [][2]model.JobStage{
			{model.JobStageIngesting, model.JobStageGenerating},
			{model.JobStageGenerating, model.JobStageRendering},
		} {
			moved, advErr := jobs.AdvanceStage(ctx, newJob.ID, step[0], step[1])
			require.NoError(t, advErr)
			require.True(t, moved)
		}
		newArtifacts, err := repo.CreatePending(ctx, newJob, testCandidates())
		require.NoError(t, err)

		// Only the superseding job's artifacts surface.
		list, err := repo.ListForAssignment(ctx, newJob.AssignmentID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		ids := []string{list[0].ID, list[1].ID}
		assert.Contains(t, ids, newArtifacts[0].ID)
		assert.Contains(t, ids, newArtifacts[1].ID)
		assert.NotContains(t, ids, oldArtifacts[0].ID)
	})
}
