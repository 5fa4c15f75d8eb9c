// Package ingestion fetches source material from the course management API.
package ingestion

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coursedeck/deliverables-api/config"
	"github.com/coursedeck/deliverables-api/internal/core"
	"github.com/coursedeck/deliverables-api/internal/domain/model"
	apperrors "github.com/coursedeck/deliverables-api/internal/errors"
)

// FetcherOptions configures the course-API fetcher.
type FetcherOptions struct {
	Config   config.IngestionConfig
	MaxBytes int64
	Logger   *slog.Logger
}

// Fetcher retrieves file content over the course API's download endpoint.
type Fetcher struct {
	baseURL  string
	token    string
	maxBytes int64
	client   *http.Client
	logger   *slog.Logger
}

var _ core.MaterialFetcher = (*Fetcher)(nil)

// NewFetcher creates a course-API material fetcher.
func NewFetcher(opts FetcherOptions) (*Fetcher, error) {
	if strings.TrimSpace(opts.Config.BaseURL) == "" {
		return nil, fmt.Errorf("ingestion base URL is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 20 << 20
	}
	return &Fetcher{
		baseURL:  strings.TrimRight(opts.Config.BaseURL, "/"),
		token:    opts.Config.Token,
		maxBytes: maxBytes,
		client:   &http.Client{Timeout: opts.Config.Timeout},
		logger:   logger,
	}, nil
}

// Fetch downloads the referenced file. The declared Content-Type travels with
// the bytes but nothing downstream trusts it.
func (f *Fetcher) Fetch(ctx context.Context, sourceFileRef string) (*model.Material, error) {
	if strings.TrimSpace(sourceFileRef) == "" {
		return nil, apperrors.Validation("source file reference is required")
	}

	endpoint := f.baseURL + "/api/files/" + url.PathEscape(sourceFileRef) + "/content"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build material request: %w", err)
	}
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch material %s: %w", sourceFileRef, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperrors.NotFoundf("source file %s not found", sourceFileRef)
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized:
		return nil, apperrors.AccessDenied("course_api_refused", fmt.Sprintf("course API refused file %s", sourceFileRef))
	case resp.StatusCode/100 != 2:
		return nil, fmt.Errorf("fetch material %s: unexpected status %d", sourceFileRef, resp.StatusCode)
	}

	// One extra byte past the cap distinguishes "exactly at the limit"
	// from "over it".
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read material %s: %w", sourceFileRef, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, apperrors.Validationf("source file %s exceeds %d byte limit", sourceFileRef, f.maxBytes)
	}
	if len(data) == 0 {
		return nil, apperrors.Validationf("source file %s is empty", sourceFileRef)
	}

	f.logger.Debug("material fetched",
		"source_file_ref", sourceFileRef,
		"bytes", len(data),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	return &model.Material{
		Bytes: data,
		Mime:  resp.Header.Get("Content-Type"),
	}, nil
}
