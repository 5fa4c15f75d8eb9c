package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/coursedeck/deliverables-api/internal/core"
	"github.com/coursedeck/deliverables-api/internal/domain/model"
)

// ArtifactServiceOptions groups dependencies for ArtifactService.
type ArtifactServiceOptions struct {
	Repo   core.ArtifactRepository // Required: artifact repository
	Signer *URLSigner              // Required: download URL signer
	Logger *slog.Logger            // Optional: structured logger
}

// ArtifactService projects artifacts for clients. It is the only place a
// signed URL is attached, and it attaches one exclusively to artifacts in the
// valid status; everything else leaves with a null URL.
type ArtifactService struct {
	repo   core.ArtifactRepository
	signer *URLSigner
	logger *slog.Logger
	now    func() time.Time
}

// NewArtifactService constructs a new ArtifactService.
func NewArtifactService(opts ArtifactServiceOptions) (*ArtifactService, error) {
	if opts.Repo == nil {
		return nil, errors.New("ArtifactRepository is required")
	}
	if opts.Signer == nil {
		return nil, errors.New("URLSigner is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ArtifactService{
		repo:   opts.Repo,
		signer: opts.Signer,
		logger: logger.With("component", "artifact_service"),
		now:    time.Now,
	}, nil
}

// List returns the artifacts of the assignment's newest job, with fresh
// signed URLs on the valid ones.
func (s *ArtifactService) List(ctx context.Context, assignmentID string) ([]model.ArtifactListEntry, error) {
	artifacts, err := s.repo.ListForAssignment(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}

	entries := make([]model.ArtifactListEntry, 0, len(artifacts))
	for _, a := range artifacts {
		entry := a.ListEntry()
		if a.Status == model.ArtifactStatusValid {
			u := s.downloadURL(a.ID, assignmentID)
			entry.SignedURL = &u
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// downloadURL builds the relative signed download path for one artifact.
func (s *ArtifactService) downloadURL(artifactID, assignmentID string) string {
	q := s.signer.Sign(artifactID, assignmentID, s.now())
	v := url.Values{}
	v.Set("assignment", q.AssignmentID)
	v.Set("exp", strconv.FormatInt(q.Expiry, 10))
	v.Set("sig", q.Signature)
	return "/api/artifacts/" + url.PathEscape(artifactID) + "/download?" + v.Encode()
}
