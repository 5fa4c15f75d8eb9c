package httpx

import (
	"log/slog"
	"net/http"

	"github.com/coursedeck/deliverables-api/internal/service"
)

// RouterServices holds the services needed by the HTTP router.
type RouterServices struct {
	Pipeline  *service.PipelineService
	Jobs      *service.JobService
	Artifacts *service.ArtifactService
	Gate      *service.AccessGateService

	// MaxDownloadConcurrency bounds in-flight artifact downloads. Zero means
	// no limit.
	MaxDownloadConcurrency int
	Logger                 *slog.Logger
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	deliverables := &DeliverableHandlers{
		Pipeline:  services.Pipeline,
		Jobs:      services.Jobs,
		Artifacts: services.Artifacts,
	}
	downloads := &DownloadHandlers{Gate: services.Gate}

	registerDeliverableRoutes(mux, deliverables)
	registerDownloadRoutes(mux, downloads, services.MaxDownloadConcurrency)

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	return Recover(logger)(Logging(logger)(mux))
}

func registerDeliverableRoutes(mux *http.ServeMux, h *DeliverableHandlers) {
	mux.HandleFunc("POST /api/assignments/{assignmentID}/deliverable", h.Run)
	mux.HandleFunc("POST /api/assignments/{assignmentID}/deliverable/regenerate", h.Regenerate)
	mux.HandleFunc("GET /api/assignments/{assignmentID}/job", h.JobStatus)
	mux.HandleFunc("GET /api/assignments/{assignmentID}/artifacts", h.ListArtifacts)
}

func registerDownloadRoutes(mux *http.ServeMux, h *DownloadHandlers, maxConcurrency int) {
	download := http.Handler(http.HandlerFunc(h.Download))
	if maxConcurrency > 0 {
		download = LimitConcurrency(maxConcurrency)(download)
	}
	mux.Handle("GET /api/artifacts/{artifactID}/download", download)
	mux.HandleFunc("POST /api/telemetry/blocked", h.ReportBlocked)
}
