package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"github.com/coursedeck/deliverables-api/config"
	"github.com/coursedeck/deliverables-api/internal/core"
	"github.com/coursedeck/deliverables-api/internal/observability/statsd"
)

// ReaperServiceOptions groups dependencies for ReaperService.
type ReaperServiceOptions struct {
	Repo    core.JobRepository  // Required: job repository
	Config  config.ReaperConfig // Required: reaper configuration
	Runtime GateRuntime         // Optional: logger and metrics
}

// ReaperService fails jobs stuck in a non-terminal stage. A crashed process
// leaves its jobs mid-stage forever; without the reaper those jobs hold their
// assignment's pipeline slot and block every new run.
type ReaperService struct {
	repo    core.JobRepository
	config  config.ReaperConfig
	logger  *slog.Logger
	metrics statsd.Sink
}

// NewReaperService constructs a new ReaperService.
func NewReaperService(opts ReaperServiceOptions) (*ReaperService, error) {
	if opts.Repo == nil {
		return nil, errors.New("JobRepository is required")
	}
	logger := opts.Runtime.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ReaperService{
		repo:    opts.Repo,
		config:  opts.Config,
		logger:  logger.With("component", "reaper_service"),
		metrics: opts.Runtime.Metrics,
	}, nil
}

// Run scans for stale jobs at the configured interval until the context is
// cancelled. Returns nil on graceful shutdown.
func (s *ReaperService) Run(ctx context.Context) error {
	s.logger.InfoContext(ctx, "starting reaper",
		"interval", s.config.Interval,
		"stale_after", s.config.StaleAfter,
	)

	// Jitter spreads concurrent instances so they do not scan in lockstep.
	s.waitWithJitter(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "reaper stopping", "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// Sweep runs one scan immediately. Exposed for the admin trigger and tests.
func (s *ReaperService) Sweep(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.config.StaleAfter)
	reaped, err := s.repo.FailStale(ctx, cutoff, s.config.BatchSize)
	if err != nil {
		return 0, err
	}
	if reaped > 0 && s.metrics != nil {
		s.metrics.Count("pipeline.jobs.reaped", int64(reaped), nil)
	}
	return reaped, nil
}

func (s *ReaperService) sweep(ctx context.Context) {
	reaped, err := s.Sweep(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		s.logger.ErrorContext(ctx, "stale job sweep failed", "error", err)
		return
	}
	if reaped > 0 {
		s.logger.WarnContext(ctx, "failed stale jobs", "count", reaped)
	}
}

func (s *ReaperService) waitWithJitter(ctx context.Context) {
	maxJitter := int64(s.config.Interval / 10)
	if maxJitter <= 0 {
		return
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return
	}
	jitter := time.Duration(int64(binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter))) // #nosec G115 - bounded by maxJitter

	select {
	case <-time.After(jitter):
	case <-ctx.Done():
	}
}
