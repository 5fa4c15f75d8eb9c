package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ArtifactType identifies the document family of a rendered artifact.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type ArtifactType string

// ArtifactStatus represents the validation lifecycle state of an artifact.
type ArtifactStatus string

// ArtifactErrorCode identifies why validation rejected an artifact.
type ArtifactErrorCode string

const (
	// ArtifactTypeDocx is the DOCX-family (OOXML word processing) artifact.
	ArtifactTypeDocx ArtifactType = "docx"
	// ArtifactTypePDF is the PDF-family artifact.
	ArtifactTypePDF ArtifactType = "pdf"

	// ArtifactStatusPending indicates the artifact awaits validation.
	ArtifactStatusPending ArtifactStatus = "pending"
	// ArtifactStatusValid indicates validation passed; the artifact is servable.
	ArtifactStatusValid ArtifactStatus = "valid"
	// ArtifactStatusFailed indicates validation rejected the artifact.
	ArtifactStatusFailed ArtifactStatus = "failed"

	// ErrCodeBadMagicBytes indicates the leading byte signature did not match
	// the artifact type, regardless of declared mime.
	ErrCodeBadMagicBytes ArtifactErrorCode = "BadMagicBytes"
	// ErrCodeEmptyOrCorrupt indicates the container parsed but held no
	// renderable content, or did not parse at all.
	ErrCodeEmptyOrCorrupt ArtifactErrorCode = "EmptyOrCorruptDocument"

	// MimeDocx is the served mime type for DOCX-family artifacts.
	MimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	// MimePDF is the served mime type for PDF-family artifacts.
	MimePDF = "application/pdf"
)

// UnmarshalText implements encoding.TextUnmarshaler for ArtifactType.
func (t *ArtifactType) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	at := ArtifactType(v)
	if at.Valid() {
		*t = at
		return nil
	}
	return fmt.Errorf("invalid ArtifactType: %q", v)
}

// Valid returns true if the ArtifactType is valid.
func (t ArtifactType) Valid() bool {
	return t == ArtifactTypeDocx || t == ArtifactTypePDF
}

// Mime returns the canonical mime type for the artifact type.
func (t ArtifactType) Mime() string {
	if t == ArtifactTypePDF {
		return MimePDF
	}
	return MimeDocx
}

// Valid returns true if the ArtifactStatus is valid.
func (s ArtifactStatus) Valid() bool {
	return s == ArtifactStatusPending || s == ArtifactStatusValid || s == ArtifactStatusFailed
}

// Artifact is one rendered candidate document for a job. Status is monotonic:
// pending goes to exactly one of valid or failed and never reverts.
// Content bytes are persisted alongside the record but never leave the data
// layer except through the access gate.
type Artifact struct {
	ID           string             `json:"id"                      db:"id"`
	JobID        string             `json:"job_id"                  db:"job_id"`
	AssignmentID string             `json:"assignment_id"           db:"assignment_id"`
	Type         ArtifactType       `json:"type"                    db:"artifact_type"`
	Mime         string             `json:"mime"                    db:"mime"`
	Status       ArtifactStatus     `json:"status"                  db:"status"`
	ByteSize     int64              `json:"bytes"                   db:"byte_size"`
	SHA256       *string            `json:"sha256,omitempty"        db:"sha256"`
	ErrorCode    *ArtifactErrorCode `json:"error_code,omitempty"    db:"error_code"`
	ErrorMessage *string            `json:"error_message,omitempty" db:"error_message"`
	ValidatedAt  *time.Time         `json:"validated_at,omitempty"  db:"validated_at"`
	CreatedAt    time.Time          `json:"created_at"              db:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"              db:"updated_at"`
}

// ErrArtifactNotFound is returned when an artifact lookup misses.
var ErrArtifactNotFound = errors.New("artifact not found")

// ArtifactCandidate is the render stage's output for one document family,
// not yet persisted or validated.
type ArtifactCandidate struct {
	Type  ArtifactType
	Mime  string
	Bytes []byte
}

// Validate checks candidate integrity before it enters the artifact store.
func (c *ArtifactCandidate) Validate() error {
	if !c.Type.Valid() {
		return fmt.Errorf("invalid artifact type: %q", c.Type)
	}
	if c.Mime == "" {
		return errors.New("mime is required")
	}
	if len(c.Bytes) == 0 {
		return errors.New("candidate bytes are required")
	}
	return nil
}

// ValidationResult is the validation stage's verdict for one candidate.
// It is transient: the verdict is folded into the Artifact record and the
// result itself is never persisted.
type ValidationResult struct {
	Status       ArtifactStatus
	ErrorCode    ArtifactErrorCode
	ErrorMessage string
	SHA256       string
	ByteSize     int64
}

// Passed reports whether the verdict admits the artifact for serving.
func (r ValidationResult) Passed() bool {
	return r.Status == ArtifactStatusValid
}

// ArtifactListEntry is the client-facing projection of one artifact.
// SignedURL is populated by the service layer for valid artifacts only; the
// data layer never sets it, so a non-valid artifact cannot carry a URL by
// construction.
type ArtifactListEntry struct {
	ArtifactID   string            `json:"artifact_id"`
	Type         ArtifactType      `json:"type"`
	Status       ArtifactStatus    `json:"status"`
	SignedURL    *string           `json:"signed_url"`
	ErrorCode    ArtifactErrorCode `json:"error_code,omitempty"`
	ErrorMessage *string           `json:"error_message,omitempty"`
	ByteSize     int64             `json:"bytes"`
	SHA256       *string           `json:"sha256,omitempty"`
	ValidatedAt  *time.Time        `json:"validated_at"`
	Mime         string            `json:"mime"`
}

// ListEntry projects the artifact metadata for listing. The signed URL is
// left nil; only the access gate may attach one, and only for valid status.
func (a *Artifact) ListEntry() ArtifactListEntry {
	entry := ArtifactListEntry{
		ArtifactID:   a.ID,
		Type:         a.Type,
		Status:       a.Status,
		ErrorMessage: a.ErrorMessage,
		ByteSize:     a.ByteSize,
		SHA256:       a.SHA256,
		ValidatedAt:  a.ValidatedAt,
		Mime:         a.Mime,
	}
	if a.ErrorCode != nil {
		entry.ErrorCode = *a.ErrorCode
	}
	return entry
}
