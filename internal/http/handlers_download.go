package httpx

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/coursedeck/deliverables-api/internal/service"
)

// DownloadHandlers serve artifact content through the access gate.
type DownloadHandlers struct {
	Gate *service.AccessGateService
}

// Download resolves a signed artifact URL and streams the content. Every
// refusal surfaces as 403 with the denial reason; the gate has already
// telemetered it.
func (h *DownloadHandlers) Download(w http.ResponseWriter, r *http.Request) {
	artifactID := r.PathValue("artifactID")
	if artifactID == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("artifact id is required")})
		return
	}

	q := r.URL.Query()
	exp, _ := strconv.ParseInt(q.Get("exp"), 10, 64)

	dl, err := h.Gate.Resolve(r.Context(), service.SignedQuery{
		ArtifactID:   artifactID,
		AssignmentID: q.Get("assignment"),
		Expiry:       exp,
		Signature:    q.Get("sig"),
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}

	w.Header().Set("Content-Type", dl.Artifact.Mime)
	w.Header().Set("Content-Length", strconv.Itoa(len(dl.Content)))
	w.Header().Set("Content-Disposition", contentDisposition(dl.Artifact.ID, string(dl.Artifact.Type)))
	if dl.Artifact.SHA256 != nil {
		w.Header().Set("X-Content-SHA256", *dl.Artifact.SHA256)
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(dl.Content); err != nil {
		// Client went away mid-stream.
		return
	}
}

func contentDisposition(artifactID, ext string) string {
	name := strings.ReplaceAll(artifactID, `"`, "") + "." + ext
	return `attachment; filename="` + name + `"`
}

// blockedRequest is the body of client-reported blocked-download telemetry.
type blockedRequest struct {
	Reason string `json:"reason"`
}

// ReportBlocked records a denial the client observed, typically a stale
// signed URL it tried after a regenerate.
func (h *DownloadHandlers) ReportBlocked(w http.ResponseWriter, r *http.Request) {
	var body blockedRequest
	if !DecodeJSON(w, r, &body) {
		return
	}
	h.Gate.RecordBlocked(r.Context(), body.Reason)
	w.WriteHeader(http.StatusNoContent)
}
