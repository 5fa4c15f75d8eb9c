package config

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8090"`

	// BaseURL is the base URL of the service (e.g., "http://127.0.0.1:8090").
	// Used when building absolute signed download URLs for the client.
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8090"`

	// MaxDownloadConcurrency bounds how many artifact downloads may stream
	// concurrently. Zero means unbounded.
	MaxDownloadConcurrency int `env:"HTTP_MAX_DOWNLOAD_CONCURRENCY" envDefault:"16"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	if h.MaxDownloadConcurrency < 0 {
		h.MaxDownloadConcurrency = 0
	}
}
