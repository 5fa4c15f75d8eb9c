package config

import (
	"strings"
	"time"
)

// PipelineConfig contains deliverable pipeline configuration.
//
// Enabled replaces the module-level feature flag the desktop client used to
// consult: availability is an explicit input to the orchestrator constructor,
// not ambient global state.
type PipelineConfig struct {
	// Enabled gates the whole pipeline. When false, run/regenerate requests
	// are rejected before any Job is created.
	Enabled bool `env:"ENABLED" envDefault:"true"`

	// SigningKey is the HMAC key for signed download URLs. Required unless
	// running in dev mode, where an ephemeral key is generated at startup.
	SigningKey string `env:"SIGNING_KEY"`

	// SignedURLTTL is how long an issued download URL stays resolvable.
	// Status is re-checked at resolution time regardless of the TTL.
	SignedURLTTL time.Duration `env:"SIGNED_URL_TTL" envDefault:"10m"`

	// MaxSourceBytes caps the size of ingested source material.
	MaxSourceBytes int64 `env:"MAX_SOURCE_BYTES" envDefault:"20971520"`

	// StageTimeout bounds a single pipeline stage. Ingestion and generation
	// block on external latency; render and validation are CPU-bound.
	StageTimeout time.Duration `env:"STAGE_TIMEOUT" envDefault:"2m"`
}

// Sanitize applies guardrails to pipeline configuration values.
func (p *PipelineConfig) Sanitize() {
	p.SigningKey = strings.TrimSpace(p.SigningKey)
	if p.SignedURLTTL <= 0 {
		p.SignedURLTTL = 10 * time.Minute
	}
	if p.MaxSourceBytes <= 0 {
		p.MaxSourceBytes = 20 << 20
	}
	if p.StageTimeout <= 0 {
		p.StageTimeout = 2 * time.Minute
	}
}

// IngestionConfig configures the course-API material fetcher.
type IngestionConfig struct {
	// BaseURL is the root of the course management API (Canvas-style).
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:3100"`

	// Token is the bearer token used against the course API.
	Token string `env:"TOKEN"`

	// Timeout bounds a single material fetch.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

// Sanitize applies guardrails to ingestion configuration values.
func (i *IngestionConfig) Sanitize() {
	i.BaseURL = strings.TrimRight(strings.TrimSpace(i.BaseURL), "/")
	i.Token = strings.TrimSpace(i.Token)
	if i.Timeout <= 0 {
		i.Timeout = 30 * time.Second
	}
}

// GenerationConfig configures the content-generation gateway client.
type GenerationConfig struct {
	// BaseURL is the root of the model gateway.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:3200"`

	// APIKey authenticates against the model gateway.
	APIKey string `env:"API_KEY"`

	// Model names the generation model requested from the gateway.
	Model string `env:"MODEL" envDefault:"coursedeck-writer-1"`

	// Timeout bounds a single generation call.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"90s"`

	// ContentPath is a JMESPath expression selecting the structured content
	// object inside the gateway's response envelope.
	ContentPath string `env:"CONTENT_PATH" envDefault:"output.content"`
}

// Sanitize applies guardrails to generation configuration values.
func (g *GenerationConfig) Sanitize() {
	g.BaseURL = strings.TrimRight(strings.TrimSpace(g.BaseURL), "/")
	g.APIKey = strings.TrimSpace(g.APIKey)
	g.ContentPath = strings.TrimSpace(g.ContentPath)
	if g.Model = strings.TrimSpace(g.Model); g.Model == "" {
		g.Model = "coursedeck-writer-1"
	}
	if g.Timeout <= 0 {
		g.Timeout = 90 * time.Second
	}
	if g.ContentPath == "" {
		g.ContentPath = "output.content"
	}
}
