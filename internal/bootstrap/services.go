package bootstrap

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/coursedeck/deliverables-api/config"
	"github.com/coursedeck/deliverables-api/internal/adapters/generation"
	"github.com/coursedeck/deliverables-api/internal/adapters/ingestion"
	"github.com/coursedeck/deliverables-api/internal/core"
	"github.com/coursedeck/deliverables-api/internal/data"
	"github.com/coursedeck/deliverables-api/internal/domain/render"
	"github.com/coursedeck/deliverables-api/internal/domain/validate"
	"github.com/coursedeck/deliverables-api/internal/observability/statsd"
	"github.com/coursedeck/deliverables-api/internal/service"
)

// ServiceDeps contains the shared infrastructure services are built on.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// ObservabilityContainer holds observability dependencies shared by services.
type ObservabilityContainer struct {
	Metrics *statsd.Client
}

// ServiceContainer holds the fully wired application services.
type ServiceContainer struct {
	Pipeline  *service.PipelineService
	Jobs      *service.JobService
	Artifacts *service.ArtifactService
	Gate      *service.AccessGateService
	Reaper    *service.ReaperService

	Observability ObservabilityContainer
}

type serviceRepositories struct {
	jobs      *data.JobRepo
	artifacts *data.ArtifactRepo
	cache     core.MaterialCache
}

func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) (ObservabilityContainer, error) {
	metrics, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.Metrics.IsEnabled(),
		Address: cfg.Metrics.StatsdAddress,
		Prefix:  "deliverables",
		Logger:  logger,
	})
	if err != nil {
		return ObservabilityContainer{}, fmt.Errorf("statsd client: %w", err)
	}
	if cfg.Metrics.IsEnabled() {
		logger.Info("metrics enabled", "statsd_address", cfg.Metrics.StatsdAddress)
	}
	return ObservabilityContainer{Metrics: metrics}, nil
}

func buildRepositories(deps *ServiceDeps) *serviceRepositories {
	repoCfg := data.RepoConfig{Logger: deps.Logger}
	repos := &serviceRepositories{
		jobs:      data.NewJobRepo(deps.DB, repoCfg),
		artifacts: data.NewArtifactRepo(deps.DB, repoCfg),
	}
	if deps.Config.Cache.Enabled && deps.RedisClient != nil {
		repos.cache = data.NewRedisMaterialCache(deps.RedisClient, deps.Config.Cache.MaterialTTL)
	}
	return repos
}

// resolveSigningKey returns the configured HMAC key, generating an ephemeral
// one in dev mode. Signed URLs from a previous dev run stop resolving after a
// restart, which is acceptable there and never acceptable in production.
func resolveSigningKey(cfg *config.AppConfig, logger *slog.Logger) (string, error) {
	if cfg.Pipeline.SigningKey != "" {
		return cfg.Pipeline.SigningKey, nil
	}
	if !cfg.IsDev {
		return "", errors.New("PIPELINE_SIGNING_KEY is required outside dev mode")
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate dev signing key: %w", err)
	}
	logger.Warn("using ephemeral signing key, signed URLs will not survive a restart")
	return hex.EncodeToString(raw), nil
}

func newPipelineService(deps *ServiceDeps, repos *serviceRepositories, obs ObservabilityContainer) (*service.PipelineService, error) {
	fetcher, err := ingestion.NewFetcher(ingestion.FetcherOptions{
		Config:   deps.Config.Ingestion,
		MaxBytes: deps.Config.Pipeline.MaxSourceBytes,
		Logger:   deps.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("material fetcher: %w", err)
	}

	gateway, err := generation.NewGateway(generation.GatewayOptions{
		Config: deps.Config.Generation,
		Logger: deps.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("generation gateway: %w", err)
	}

	return service.NewPipelineService(service.PipelineServiceOptions{
		Repos: service.PipelineRepos{Jobs: repos.jobs, Artifacts: repos.artifacts},
		Stages: service.PipelineStages{
			Fetcher:   fetcher,
			Cache:     repos.cache,
			Generator: gateway,
			Renderer:  render.NewStage(),
			Validator: validate.NewStage(),
		},
		Runtime: service.PipelineRuntime{
			Config:  deps.Config.Pipeline,
			Logger:  deps.Logger,
			Metrics: obs.Metrics,
		},
	})
}

// NewServices wires repositories, adapters, and services into a container.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil || deps.DB == nil {
		return ServiceContainer{}, errors.New("config and database are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	deps.Logger = logger

	obs, err := buildObservability(logger, deps.Config.Observability)
	if err != nil {
		return ServiceContainer{}, err
	}

	repos := buildRepositories(deps)

	signingKey, err := resolveSigningKey(deps.Config, logger)
	if err != nil {
		return ServiceContainer{}, err
	}
	signer, err := service.NewURLSigner(signingKey, deps.Config.Pipeline.SignedURLTTL)
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("url signer: %w", err)
	}

	pipeline, err := newPipelineService(deps, repos, obs)
	if err != nil {
		return ServiceContainer{}, err
	}

	jobs, err := service.NewJobService(service.JobServiceOptions{Repo: repos.jobs, Logger: logger})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("job service: %w", err)
	}

	artifacts, err := service.NewArtifactService(service.ArtifactServiceOptions{
		Repo:   repos.artifacts,
		Signer: signer,
		Logger: logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("artifact service: %w", err)
	}

	gate, err := service.NewAccessGateService(service.AccessGateOptions{
		Repos:   service.GateRepos{Artifacts: repos.artifacts, Jobs: repos.jobs},
		Signer:  signer,
		Runtime: service.GateRuntime{Logger: logger, Metrics: obs.Metrics},
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("access gate: %w", err)
	}

	reaper, err := service.NewReaperService(service.ReaperServiceOptions{
		Repo:    repos.jobs,
		Config:  deps.Config.Reaper,
		Runtime: service.GateRuntime{Logger: logger, Metrics: obs.Metrics},
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("reaper service: %w", err)
	}

	return ServiceContainer{
		Pipeline:      pipeline,
		Jobs:          jobs,
		Artifacts:     artifacts,
		Gate:          gate,
		Reaper:        reaper,
		Observability: obs,
	}, nil
}
