// Package render converts structured content into candidate document
// artifacts. Rendering is deterministic: identical content yields
// byte-identical output for each document family, which the hash-based
// validation tests rely on.
package render

import (
	"fmt"

	"github.com/coursedeck/deliverables-api/internal/domain/model"
)

// DocumentRenderer renders structured content into one document family.
type DocumentRenderer interface {
	Type() model.ArtifactType
	Render(content *model.StructuredContent) ([]byte, error)
}

// Stage produces the full candidate set for a job: exactly one DOCX-family
// and one PDF-family candidate. Failure is all-or-nothing; a partial set is
// never returned.
type Stage struct {
	renderers []DocumentRenderer
}

// NewStage constructs the render stage with the standard renderer pair.
func NewStage() *Stage {
	return &Stage{
		renderers: []DocumentRenderer{
			NewDocxRenderer(),
			NewPDFRenderer(),
		},
	}
}

// Render produces one candidate per document family. If any renderer fails,
// no candidates are returned: a partially deliverable assignment is worse
// than a failed one.
func (s *Stage) Render(content *model.StructuredContent) ([]model.ArtifactCandidate, error) {
	if content == nil {
		return nil, fmt.Errorf("content is required")
	}
	if err := content.Validate(); err != nil {
		return nil, fmt.Errorf("content: %w", err)
	}

	candidates := make([]model.ArtifactCandidate, 0, len(s.renderers))
	for _, r := range s.renderers {
		b, err := r.Render(content)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", r.Type(), err)
		}
		candidates = append(candidates, model.ArtifactCandidate{
			Type:  r.Type(),
			Mime:  r.Type().Mime(),
			Bytes: b,
		})
	}
	return candidates, nil
}
