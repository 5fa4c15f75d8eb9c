package httpx

import (
	"io"
	"net/http"
)

const healthResponse = `{"status":"ok","service":"deliverables-api"}`

// healthHandler answers readiness and liveness probes. The pipeline's enabled
// flag is deliberately not reflected here: a disabled pipeline still serves
// status and download requests.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.WriteString(w, healthResponse); err != nil {
		// Nothing more to do if the client connection is gone.
		return
	}
}
