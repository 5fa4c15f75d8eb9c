package data

import "github.com/coursedeck/deliverables-api/internal/domain/model"

// Sentinel errors shared by the repositories. They live in the model package
// so callers outside the data layer can match them without importing it.
var (
	ErrJobNotFound      = model.ErrJobNotFound
	ErrJobNotActive     = model.ErrJobNotActive
	ErrArtifactNotFound = model.ErrArtifactNotFound
)
