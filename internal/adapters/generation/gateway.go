// Package generation calls the model gateway that turns source material and
// an instructor prompt into structured document content.
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmespath-community/go-jmespath"

	"github.com/coursedeck/deliverables-api/config"
	"github.com/coursedeck/deliverables-api/internal/core"
	"github.com/coursedeck/deliverables-api/internal/domain/model"
)

// GatewayOptions configures the model gateway client.
type GatewayOptions struct {
	Config config.GenerationConfig
	Logger *slog.Logger
}

// Gateway is an HTTP client for the content-generation service. The response
// envelope varies by gateway version, so the structured content object is
// located with a configured JMESPath expression and then schema-checked
// before it is trusted.
type Gateway struct {
	baseURL     string
	apiKey      string
	modelName   string
	contentPath jmespath.JMESPath
	client      *http.Client
	logger      *slog.Logger
}

var _ core.ContentGenerator = (*Gateway)(nil)

// NewGateway creates a model gateway client.
func NewGateway(opts GatewayOptions) (*Gateway, error) {
	if strings.TrimSpace(opts.Config.BaseURL) == "" {
		return nil, fmt.Errorf("generation base URL is required")
	}
	path, err := jmespath.Compile(opts.Config.ContentPath)
	if err != nil {
		return nil, fmt.Errorf("compile content path %q: %w", opts.Config.ContentPath, err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		baseURL:     strings.TrimRight(opts.Config.BaseURL, "/"),
		apiKey:      opts.Config.APIKey,
		modelName:   opts.Config.Model,
		contentPath: path,
		client:      &http.Client{Timeout: opts.Config.Timeout},
		logger:      logger,
	}, nil
}

type generateRequestBody struct {
	Model        string `json:"model"`
	AssignmentID string `json:"assignment_id"`
	Prompt       string `json:"prompt"`
	Material     string `json:"material"`
	MaterialMime string `json:"material_mime,omitempty"`
}

// Generate calls the gateway and returns validated structured content.
func (g *Gateway) Generate(ctx context.Context, req core.GenerateRequest) (*model.StructuredContent, error) {
	if req.Material == nil {
		return nil, fmt.Errorf("material is required")
	}

	body := generateRequestBody{
		Model:        g.modelName,
		AssignmentID: req.AssignmentID,
		Prompt:       req.Prompt,
		Material:     req.Material.Text(),
		MaterialMime: req.Material.Mime,
	}

	raw, err := g.sendJSON(ctx, g.baseURL+"/v1/generate", body)
	if err != nil {
		return nil, err
	}

	return g.extractContent(raw)
}

// sendJSON posts the body and returns the raw response bytes.
func (g *Gateway) sendJSON(ctx context.Context, url string, body any) ([]byte, error) {
	reqID := uuid.New().String()
	start := time.Now()

	bs, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode generation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bs))
	if err != nil {
		return nil, fmt.Errorf("build generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	g.logger.Debug("generation request", "req_id", reqID, "url", url, "content_length", len(bs))

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send generation request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read generation response: %w", err)
	}

	g.logger.Debug("generation response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("generation gateway returned status %d", resp.StatusCode)
	}
	return raw, nil
}

// extractContent locates the content object in the envelope, checks it
// against the content schema, and decodes it.
func (g *Gateway) extractContent(raw []byte) (*model.StructuredContent, error) {
	var envelope any
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode generation envelope: %w", err)
	}

	node, err := g.contentPath.Search(envelope)
	if err != nil {
		return nil, fmt.Errorf("search content path: %w", err)
	}
	if node == nil {
		return nil, fmt.Errorf("generation envelope has no content at configured path")
	}

	contentJSON, err := json.Marshal(node)
	if err != nil {
		return nil, fmt.Errorf("re-encode content node: %w", err)
	}

	if err := validateContentJSON(contentJSON); err != nil {
		return nil, fmt.Errorf("generated content rejected: %w", err)
	}

	var content model.StructuredContent
	if err := json.Unmarshal(contentJSON, &content); err != nil {
		return nil, fmt.Errorf("decode structured content: %w", err)
	}
	if err := content.Validate(); err != nil {
		return nil, fmt.Errorf("generated content rejected: %w", err)
	}
	return &content, nil
}
