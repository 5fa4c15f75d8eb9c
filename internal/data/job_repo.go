// Package data provides the Postgres-backed repositories for pipeline jobs
// and artifacts.
package data

import (
	"database/sql"
	"log/slog"
)

// ActiveJobConstraint is the partial unique index enforcing at most one
// non-terminal job per assignment. Create maps violations of it to the
// caller-facing AlreadyRunning error.
const ActiveJobConstraint = "deliverable_jobs_one_active_per_assignment"

// RepoConfig holds configuration options shared by the repositories.
type RepoConfig struct {
	Logger       *slog.Logger
	TimeProvider TimeProvider
}

// JobRepo provides database operations for pipeline job management.
type JobRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

// NewJobRepo creates a new JobRepo instance with the given database connection and configuration.
func NewJobRepo(db *sql.DB, cfg RepoConfig) *JobRepo {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}

	return &JobRepo{
		DB:           db,
		timeProvider: tp,
		logger:       cfg.Logger,
	}
}

const jobColumns = `
  id,
  assignment_id,
  source_file_ref,
  prompt,
  stage,
  failure_reason,
  started_at,
  finished_at,
  created_at,
  updated_at
`
