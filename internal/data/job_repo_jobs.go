package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/coursedeck/deliverables-api/internal/data/pgxutil"
	"github.com/coursedeck/deliverables-api/internal/domain/model"
	apperrors "github.com/coursedeck/deliverables-api/internal/errors"
)

// Create starts a new pipeline job for an assignment. Creation is
// create-or-reject: the active-job partial index makes a second concurrent
// start fail atomically, which is surfaced as AlreadyRunning.
func (r *JobRepo) Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	if req == nil {
		return nil, errors.New("create job request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var job *model.Job
	err := pgxutil.WithSQLTx(ctx, r.DB, pgxutil.SQLTxConfig{
		Fn: func(tx *sql.Tx) error {
			var insertErr error
			job, insertErr = r.insertJobInTx(ctx, tx, req)
			return insertErr
		},
	})
	if err != nil {
		if apperrors.IsUniqueViolationOn(err, ActiveJobConstraint) {
			return nil, apperrors.AlreadyRunning(req.AssignmentID)
		}
		return nil, apperrors.MapDBError(err)
	}

	return job, nil
}

// CreateSuperseding starts a fresh job for an assignment, first failing any
// active job with the Superseded reason inside the same transaction. The
// supersede and the insert commit together, so no window exists in which two
// jobs hold the assignment's pipeline slot.
func (r *JobRepo) CreateSuperseding(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	if req == nil {
		return nil, errors.New("create job request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := r.timeProvider.Now().UTC()

	var job *model.Job
	err := pgxutil.WithSQLTx(ctx, r.DB, pgxutil.SQLTxConfig{
		Fn: func(tx *sql.Tx) error {
			res, execErr := tx.ExecContext(ctx, `
				UPDATE deliverable_jobs
				SET stage = 'failed',
				    failure_reason = $2,
				    finished_at = $3,
				    updated_at = $3
				WHERE assignment_id = $1 AND stage NOT IN ('ready', 'failed')
			`, req.AssignmentID, string(model.FailureSuperseded), now)
			if execErr != nil {
				return fmt.Errorf("supersede active job: %w", execErr)
			}
			if n, _ := res.RowsAffected(); n > 0 && r.logger != nil {
				r.logger.InfoContext(ctx, "superseded active job",
					"assignment_id", req.AssignmentID, "count", n)
			}

			var insertErr error
			job, insertErr = r.insertJobInTx(ctx, tx, req)
			return insertErr
		},
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}

	return job, nil
}

func (r *JobRepo) insertJobInTx(ctx context.Context, tx *sql.Tx, req *model.CreateJobRequest) (*model.Job, error) {
	id := uuid.New().String()
	now := r.timeProvider.Now().UTC()

	row := tx.QueryRowContext(ctx, `
		INSERT INTO deliverable_jobs
			(id, assignment_id, source_file_ref, prompt, stage, started_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6, $6)
		RETURNING `+jobColumns,
		id, req.AssignmentID, req.SourceFileRef, req.Prompt, string(model.JobStageIngesting), now)

	return scanJobRow(row)
}

// GetByID retrieves a job by ID.
func (r *JobRepo) GetByID(ctx context.Context, id string) (*model.Job, error) {
	if id == "" {
		return nil, errors.New("job id is required")
	}

	row := r.DB.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM deliverable_jobs WHERE id = $1`, id)
	job, err := scanJobRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("get job by id: %w", err)
	}
	return job, nil
}

// LatestForAssignment returns the assignment's current job: the most recently
// created one. Superseded jobs are older by construction, so this is also the
// projection boundary for artifact listings.
func (r *JobRepo) LatestForAssignment(ctx context.Context, assignmentID string) (*model.Job, error) {
	if assignmentID == "" {
		return nil, errors.New("assignment id is required")
	}

	row := r.DB.QueryRowContext(ctx, `
		SELECT `+jobColumns+`
		FROM deliverable_jobs
		WHERE assignment_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, assignmentID)
	job, err := scanJobRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNoActiveJob
		}
		return nil, fmt.Errorf("get latest job: %w", err)
	}
	return job, nil
}

// AdvanceStage moves a job from one stage to its successor. The update is
// guarded on the current stage: if the job was superseded (or otherwise moved)
// in the meantime the guard misses, zero rows change, and false is returned so
// the orchestrator discards the stage result instead of publishing it.
func (r *JobRepo) AdvanceStage(ctx context.Context, jobID string, from, to model.JobStage) (bool, error) {
	if jobID == "" {
		return false, errors.New("job id is required")
	}
	if !from.Valid() || !to.Valid() || from.Terminal() {
		return false, fmt.Errorf("invalid stage transition %q -> %q", from, to)
	}

	now := r.timeProvider.Now().UTC()
	res, err := r.DB.ExecContext(ctx, `
		UPDATE deliverable_jobs
		SET stage = $3,
		    updated_at = $4,
		    finished_at = CASE WHEN $3 IN ('ready', 'failed') THEN $4 ELSE finished_at END
		WHERE id = $1 AND stage = $2
	`, jobID, string(from), string(to), now)
	if err != nil {
		return false, fmt.Errorf("advance job stage: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("advance job stage rows: %w", err)
	}
	return n > 0, nil
}

// FailStage marks a job failed with its stage-tagged reason, guarded on the
// stage the failure occurred in.
func (r *JobRepo) FailStage(ctx context.Context, jobID string, from model.JobStage, reason model.FailureReason) (bool, error) {
	if jobID == "" {
		return false, errors.New("job id is required")
	}
	if !reason.Valid() {
		return false, fmt.Errorf("invalid failure reason %q", reason)
	}

	now := r.timeProvider.Now().UTC()
	res, err := r.DB.ExecContext(ctx, `
		UPDATE deliverable_jobs
		SET stage = 'failed',
		    failure_reason = $3,
		    finished_at = $4,
		    updated_at = $4
		WHERE id = $1 AND stage = $2
	`, jobID, string(from), string(reason), now)
	if err != nil {
		return false, fmt.Errorf("fail job: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("fail job rows: %w", err)
	}
	return n > 0, nil
}

// FailStale fails jobs that have sat in a non-terminal stage without a
// persisted transition since before the cutoff. Each gets the stage-tagged
// reason of the stage it was stuck in. Returns the number of jobs failed.
func (r *JobRepo) FailStale(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	if limit <= 0 {
		limit = 1
	}

	now := r.timeProvider.Now().UTC()
	res, err := r.DB.ExecContext(ctx, `
		UPDATE deliverable_jobs
		SET stage = 'failed',
		    failure_reason = CASE stage
		        WHEN 'ingesting'  THEN 'IngestFailed'
		        WHEN 'generating' THEN 'GenerateFailed'
		        WHEN 'rendering'  THEN 'RenderFailed'
		        ELSE 'ValidateFailed'
		    END,
		    finished_at = $2,
		    updated_at = $2
		WHERE id IN (
		    SELECT id FROM deliverable_jobs
		    WHERE stage NOT IN ('ready', 'failed') AND updated_at < $1
		    ORDER BY updated_at ASC
		    LIMIT $3
		    FOR UPDATE SKIP LOCKED
		)
	`, cutoff.UTC(), now, limit)
	if err != nil {
		return 0, fmt.Errorf("fail stale jobs: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("fail stale jobs rows: %w", err)
	}
	return int(n), nil
}

// ListForAssignment returns an assignment's jobs, newest first, for audit
// inspection. Superseded jobs stay listed; nothing is deleted silently.
func (r *JobRepo) ListForAssignment(ctx context.Context, assignmentID string, limit int) ([]*model.Job, error) {
	if assignmentID == "" {
		return nil, errors.New("assignment id is required")
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 200 {
		limit = 200
	}

	query := `
		SELECT ` + jobColumns + `
		FROM deliverable_jobs
		WHERE assignment_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	var result []*model.Job
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, assignmentID, limit)
		if err != nil {
			return fmt.Errorf("query jobs for assignment: %w", err)
		}
		defer rows.Close()

		vals, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[model.Job])
		if err != nil {
			return fmt.Errorf("collect jobs for assignment: %w", err)
		}

		result = vals
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// scanJobRow scans a single job row in jobColumns order.
func scanJobRow(row *sql.Row) (*model.Job, error) {
	var (
		job           model.Job
		failureReason sql.NullString
		finishedAt    sql.NullTime
	)
	if err := row.Scan(
		&job.ID,
		&job.AssignmentID,
		&job.SourceFileRef,
		&job.Prompt,
		&job.Stage,
		&failureReason,
		&job.StartedAt,
		&finishedAt,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if failureReason.Valid {
		reason := model.FailureReason(failureReason.String)
		job.FailureReason = &reason
	}
	if finishedAt.Valid {
		t := finishedAt.Time
		job.FinishedAt = &t
	}
	return &job, nil
}
