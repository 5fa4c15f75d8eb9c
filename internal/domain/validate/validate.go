// Package validate inspects rendered candidate bytes before an artifact is
// published. It shares no code with the render stage: each document family is
// re-parsed from raw bytes, so a renderer bug that produces a malformed
// container is caught here rather than served.
package validate

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/coursedeck/deliverables-api/internal/domain/model"
)

// DocumentChecker verifies one document family's bytes.
type DocumentChecker interface {
	Type() model.ArtifactType
	// Check returns a nil error when the bytes are a well-formed, non-empty
	// document. A non-nil error is always a *CheckError.
	Check(data []byte) error
}

// CheckError carries the taxonomy code for a rejected document.
type CheckError struct {
	Code    model.ArtifactErrorCode
	Message string
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func badMagic(msg string) *CheckError {
	return &CheckError{Code: model.ErrCodeBadMagicBytes, Message: msg}
}

func emptyOrCorrupt(msg string) *CheckError {
	return &CheckError{Code: model.ErrCodeEmptyOrCorrupt, Message: msg}
}

// Stage validates rendered candidates. Each candidate is judged
// independently; one family's failure never taints the other's verdict.
type Stage struct {
	checkers map[model.ArtifactType]DocumentChecker
}

// NewStage constructs the validation stage with the standard checker pair.
func NewStage() *Stage {
	s := &Stage{checkers: make(map[model.ArtifactType]DocumentChecker, 2)}
	for _, c := range []DocumentChecker{NewDocxChecker(), NewPDFChecker()} {
		s.checkers[c.Type()] = c
	}
	return s
}

// Validate produces the verdict for one candidate. A passing verdict carries
// the content digest and byte size; a failing one carries the taxonomy code
// and a diagnostic message.
func (s *Stage) Validate(candidate model.ArtifactCandidate) model.ValidationResult {
	checker, ok := s.checkers[candidate.Type]
	if !ok {
		return model.ValidationResult{
			Status:       model.ArtifactStatusFailed,
			ErrorCode:    model.ErrCodeEmptyOrCorrupt,
			ErrorMessage: fmt.Sprintf("no checker for artifact type %q", candidate.Type),
		}
	}

	if err := checker.Check(candidate.Bytes); err != nil {
		var ce *CheckError
		if !errors.As(err, &ce) {
			ce = emptyOrCorrupt(err.Error())
		}
		return model.ValidationResult{
			Status:       model.ArtifactStatusFailed,
			ErrorCode:    ce.Code,
			ErrorMessage: ce.Message,
		}
	}

	sum := sha256.Sum256(candidate.Bytes)
	return model.ValidationResult{
		Status:   model.ArtifactStatusValid,
		SHA256:   hex.EncodeToString(sum[:]),
		ByteSize: int64(len(candidate.Bytes)),
	}
}
