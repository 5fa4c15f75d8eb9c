package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/coursedeck/deliverables-api/internal/data/pgxutil"
	"github.com/coursedeck/deliverables-api/internal/domain/model"
)

// ArtifactRepo provides database operations for rendered artifacts.
// Writes are serialized per job row: every mutation locks the owning job and
// re-checks that it is still active inside the same transaction, closing the
// check-then-act race between stage completions and supersession.
type ArtifactRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

const artifactColumns = `
  id,
  job_id,
  assignment_id,
  artifact_type,
  mime,
  status,
  byte_size,
  sha256,
  error_code,
  error_message,
  validated_at,
  created_at,
  updated_at
`

// NewArtifactRepo creates a new ArtifactRepo instance with the given database connection and configuration.
func NewArtifactRepo(db *sql.DB, cfg RepoConfig) *ArtifactRepo {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}

	return &ArtifactRepo{
		DB:           db,
		timeProvider: tp,
		logger:       cfg.Logger,
	}
}

// CreatePending persists the render stage's candidates as pending artifacts.
// The owning job is locked and must still be in the rendering stage; if it was
// superseded mid-render, ErrJobNotActive is returned and nothing is written.
func (r *ArtifactRepo) CreatePending(ctx context.Context, job *model.Job, candidates []model.ArtifactCandidate) ([]*model.Artifact, error) {
	if job == nil {
		return nil, errors.New("job is required")
	}
	if len(candidates) == 0 {
		return nil, errors.New("at least one candidate is required")
	}
	for i := range candidates {
		if err := candidates[i].Validate(); err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, err)
		}
	}

	now := r.timeProvider.Now().UTC()

	var artifacts []*model.Artifact
	err := pgxutil.WithSQLTx(ctx, r.DB, pgxutil.SQLTxConfig{
		Fn: func(tx *sql.Tx) error {
			active, lockErr := lockJobActive(ctx, tx, job.ID)
			if lockErr != nil {
				return lockErr
			}
			if !active {
				return ErrJobNotActive
			}

			for i := range candidates {
				c := &candidates[i]
				a := &model.Artifact{
					ID:           uuid.New().String(),
					JobID:        job.ID,
					AssignmentID: job.AssignmentID,
					Type:         c.Type,
					Mime:         c.Mime,
					Status:       model.ArtifactStatusPending,
					ByteSize:     int64(len(c.Bytes)),
					CreatedAt:    now,
					UpdatedAt:    now,
				}
				if _, execErr := tx.ExecContext(ctx, `
					INSERT INTO deliverable_artifacts
						(id, job_id, assignment_id, artifact_type, mime, status, content, byte_size, created_at, updated_at)
					VALUES ($1, $2, $3, $4, $5, 'pending', $6, $7, $8, $8)
				`, a.ID, a.JobID, a.AssignmentID, string(a.Type), a.Mime, c.Bytes, a.ByteSize, now); execErr != nil {
					return fmt.Errorf("insert artifact %s: %w", c.Type, execErr)
				}
				artifacts = append(artifacts, a)
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	return artifacts, nil
}

// Finalize folds a validation verdict into an artifact record. The transition
// is atomic and monotonic: only a pending artifact changes, and only while its
// job is still active. Returns false when the verdict was discarded because
// the job was superseded or the artifact already finalized.
func (r *ArtifactRepo) Finalize(ctx context.Context, artifactID string, res model.ValidationResult) (bool, error) {
	if artifactID == "" {
		return false, errors.New("artifact id is required")
	}
	if res.Status != model.ArtifactStatusValid && res.Status != model.ArtifactStatusFailed {
		return false, fmt.Errorf("finalize status must be valid or failed, got %q", res.Status)
	}
	if res.Status == model.ArtifactStatusValid && res.SHA256 == "" {
		return false, errors.New("valid artifact requires a sha256")
	}

	now := r.timeProvider.Now().UTC()
	published := false

	err := pgxutil.WithSQLTx(ctx, r.DB, pgxutil.SQLTxConfig{
		Fn: func(tx *sql.Tx) error {
			var jobID string
			row := tx.QueryRowContext(ctx,
				`SELECT job_id FROM deliverable_artifacts WHERE id = $1`, artifactID)
			if scanErr := row.Scan(&jobID); scanErr != nil {
				if errors.Is(scanErr, sql.ErrNoRows) {
					return ErrArtifactNotFound
				}
				return fmt.Errorf("lookup artifact job: %w", scanErr)
			}

			active, lockErr := lockJobActive(ctx, tx, jobID)
			if lockErr != nil {
				return lockErr
			}
			if !active {
				// Superseded while validating: discard, never publish.
				return nil
			}

			var (
				sha     *string
				errCode *string
				errMsg  *string
			)
			if res.Status == model.ArtifactStatusValid {
				sha = &res.SHA256
			} else {
				code := string(res.ErrorCode)
				errCode = &code
				errMsg = &res.ErrorMessage
			}

			execRes, execErr := tx.ExecContext(ctx, `
				UPDATE deliverable_artifacts
				SET status = $2,
				    sha256 = $3,
				    error_code = $4,
				    error_message = $5,
				    validated_at = $6,
				    updated_at = $6
				WHERE id = $1 AND status = 'pending'
			`, artifactID, string(res.Status), sha, errCode, errMsg, now)
			if execErr != nil {
				return fmt.Errorf("finalize artifact: %w", execErr)
			}
			n, raErr := execRes.RowsAffected()
			if raErr != nil {
				return fmt.Errorf("finalize artifact rows: %w", raErr)
			}
			published = n > 0
			return nil
		},
	})
	if err != nil {
		return false, err
	}

	return published, nil
}

// GetMeta retrieves an artifact's metadata without its content bytes.
func (r *ArtifactRepo) GetMeta(ctx context.Context, id string) (*model.Artifact, error) {
	if id == "" {
		return nil, errors.New("artifact id is required")
	}

	query := `SELECT ` + artifactColumns + ` FROM deliverable_artifacts WHERE id = $1`

	var result *model.Artifact
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, id)
		if err != nil {
			return fmt.Errorf("query artifact: %w", err)
		}
		defer rows.Close()

		val, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[model.Artifact])
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrArtifactNotFound
			}
			return fmt.Errorf("collect artifact: %w", err)
		}

		result = val
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// GetContent retrieves an artifact's metadata together with its content
// bytes. Only the access gate calls this; listings never touch content.
func (r *ArtifactRepo) GetContent(ctx context.Context, id string) (*model.Artifact, []byte, error) {
	meta, err := r.GetMeta(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	var content []byte
	row := r.DB.QueryRowContext(ctx,
		`SELECT content FROM deliverable_artifacts WHERE id = $1`, id)
	if scanErr := row.Scan(&content); scanErr != nil {
		if errors.Is(scanErr, sql.ErrNoRows) {
			return nil, nil, ErrArtifactNotFound
		}
		return nil, nil, fmt.Errorf("get artifact content: %w", scanErr)
	}

	return meta, content, nil
}

// ListForAssignment returns the artifacts belonging to the assignment's
// current (most recent) job only. Artifacts of superseded jobs stay in the
// table for audit but never appear here. Content bytes are not selected.
func (r *ArtifactRepo) ListForAssignment(ctx context.Context, assignmentID string) ([]*model.Artifact, error) {
	if assignmentID == "" {
		return nil, errors.New("assignment id is required")
	}

	query := `
		SELECT ` + artifactColumns + `
		FROM deliverable_artifacts
		WHERE job_id = (
		    SELECT id FROM deliverable_jobs
		    WHERE assignment_id = $1
		    ORDER BY created_at DESC, id DESC
		    LIMIT 1
		)
		ORDER BY artifact_type ASC
	`

	var result []*model.Artifact
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, assignmentID)
		if err != nil {
			return fmt.Errorf("query artifacts for assignment: %w", err)
		}
		defer rows.Close()

		vals, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[model.Artifact])
		if err != nil {
			return fmt.Errorf("collect artifacts for assignment: %w", err)
		}

		result = vals
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// lockJobActive locks a job row and reports whether it is still non-terminal.
func lockJobActive(ctx context.Context, tx *sql.Tx, jobID string) (bool, error) {
	var stage string
	row := tx.QueryRowContext(ctx,
		`SELECT stage FROM deliverable_jobs WHERE id = $1 FOR UPDATE`, jobID)
	if err := row.Scan(&stage); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrJobNotFound
		}
		return false, fmt.Errorf("lock job: %w", err)
	}
	return !model.JobStage(stage).Terminal(), nil
}
