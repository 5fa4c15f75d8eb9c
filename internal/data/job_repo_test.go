package data

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursedeck/deliverables-api/internal/domain/model"
	apperrors "github.com/coursedeck/deliverables-api/internal/errors"
	"github.com/coursedeck/deliverables-api/internal/testutil"
)

func newTestJobRepo(db *sql.DB) *JobRepo {
	return NewJobRepo(db, RepoConfig{})
}

func TestJobRepo_Create(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := newTestJobRepo(db)
		ctx := context.Background()

		job, err := repo.Create(ctx, testutil.NewJobRequest().Build())
		require.NoError(t, err)
		assert.NotEmpty(t, job.ID)
		assert.Equal(t, "assignment-1", job.AssignmentID)
		assert.Equal(t, model.JobStageIngesting, job.Stage)
		assert.Nil(t, job.FailureReason)
		assert.Nil(t, job.FinishedAt)

		got, err := repo.GetByID(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, job.ID, got.ID)
	})
}

func TestJobRepo_Create_SecondActiveRejected(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := newTestJobRepo(db)
		ctx := context.Background()

		_, err := repo.Create(ctx, testutil.NewJobRequest().Build())
		require.NoError(t, err)

		_, err = repo.Create(ctx, testutil.NewJobRequest().Build())
		require.Error(t, err)
		assert.True(t, apperrors.IsAlreadyRunning(err))

		// A different assignment is unaffected by the lock.
		_, err = repo.Create(ctx, testutil.NewJobRequest().WithAssignment("assignment-2").Build())
		require.NoError(t, err)
	})
}

func TestJobRepo_CreateSuperseding(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := newTestJobRepo(db)
		ctx := context.Background()

		first, err := repo.Create(ctx, testutil.NewJobRequest().Build())
		require.NoError(t, err)

		second, err := repo.CreateSuperseding(ctx, testutil.NewJobRequest().Build())
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)

		// The old job is terminal with the supersede reason.
		old, err := repo.GetByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, model.JobStageFailed, old.Stage)
		require.NotNil(t, old.FailureReason)
		assert.Equal(t, model.FailureSuperseded, *old.FailureReason)
		assert.NotNil(t, old.FinishedAt)

		latest, err := repo.LatestForAssignment(ctx, "assignment-1")
		require.NoError(t, err)
		assert.Equal(t, second.ID, latest.ID)
	})
}

func TestJobRepo_CreateSuperseding_NoExistingJob(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := newTestJobRepo(db)

		job, err := repo.CreateSuperseding(context.Background(), testutil.NewJobRequest().Build())
		require.NoError(t, err)
		assert.Equal(t, model.JobStageIngesting, job.Stage)
	})
}

func TestJobRepo_AdvanceStage(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := newTestJobRepo(db)
		ctx := context.Background()

		job, err := repo.Create(ctx, testutil.NewJobRequest().Build())
		require.NoError(t, err)

		moved, err := repo.AdvanceStage(ctx, job.ID, model.JobStageIngesting, model.JobStageGenerating)
		require.NoError(t, err)
		assert.True(t, moved)

		// Stale expectation: the job already left ingesting.
		moved, err = repo.AdvanceStage(ctx, job.ID, model.JobStageIngesting, model.JobStageGenerating)
		require.NoError(t, err)
		assert.False(t, moved)

		got, err := repo.GetByID(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, model.JobStageGenerating, got.Stage)
	})
}

func TestJobRepo_AdvanceStage_ToReadySetsFinishedAt(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := newTestJobRepo(db)
		ctx := context.Background()

		job, err := repo.Create(ctx, testutil.NewJobRequest().Build())
		require.NoError(t, err)

		for _, step := range [][2]model.JobStage{
			{model.JobStageIngesting, model.JobStageGenerating},
			{model.JobStageGenerating, model.JobStageRendering},
			{model.JobStageRendering, model.JobStageValidating},
			{model.JobStageValidating, model.JobStageReady},
		} {
			moved, advErr := repo.AdvanceStage(ctx, job.ID, step[0], step[1])
			require.NoError(t, advErr)
			require.True(t, moved)
		}

		got, err := repo.GetByID(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, model.JobStageReady, got.Stage)
		assert.NotNil(t, got.FinishedAt)
	})
}

func TestJobRepo_FailStage(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := newTestJobRepo(db)
		ctx := context.Background()

		job, err := repo.Create(ctx, testutil.NewJobRequest().Build())
		require.NoError(t, err)

		failed, err := repo.FailStage(ctx, job.ID, model.JobStageIngesting, model.FailureIngest)
		require.NoError(t, err)
		assert.True(t, failed)

		got, err := repo.GetByID(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, model.JobStageFailed, got.Stage)
		require.NotNil(t, got.FailureReason)
		assert.Equal(t, model.FailureIngest, *got.FailureReason)
		assert.NotNil(t, got.FinishedAt)

		// Failing a terminal job is a no-op.
		failed, err = repo.FailStage(ctx, job.ID, model.JobStageIngesting, model.FailureIngest)
		require.NoError(t, err)
		assert.False(t, failed)
	})
}

func TestJobRepo_FailStale(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := newTestJobRepo(db)
		ctx := context.Background()

		job, err := repo.Create(ctx, testutil.NewJobRequest().Build())
		require.NoError(t, err)

		// Nothing is stale yet.
		n, err := repo.FailStale(ctx, time.Now().Add(-time.Hour), 10)
		require.NoError(t, err)
		assert.Zero(t, n)

		// A cutoff in the future makes every active job stale.
		n, err = repo.FailStale(ctx, time.Now().Add(time.Hour), 10)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		got, err := repo.GetByID(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, model.JobStageFailed, got.Stage)
	})
}

func TestJobRepo_LatestForAssignment_None(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := newTestJobRepo(db)

		_, err := repo.LatestForAssignment(context.Background(), "nobody")
		assert.ErrorIs(t, err, model.ErrNoActiveJob)
	})
}

func TestJobRepo_ListForAssignment(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := newTestJobRepo(db)
		ctx := context.Background()

		first, err := repo.Create(ctx, testutil.NewJobRequest().Build())
		require.NoError(t, err)
		second, err := repo.CreateSuperseding(ctx, testutil.NewJobRequest().Build())
		require.NoError(t, err)

		jobs, err := repo.ListForAssignment(ctx, "assignment-1", 10)
		require.NoError(t, err)
		require.Len(t, jobs, 2)
		// Newest first.
		assert.Equal(t, second.ID, jobs[0].ID)
		assert.Equal(t, first.ID, jobs[1].ID)

		jobs, err = repo.ListForAssignment(ctx, "assignment-1", 1)
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Equal(t, second.ID, jobs[0].ID)
	})
}
