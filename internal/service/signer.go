package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"
)

// URLSigner mints and verifies the HMAC signatures on download URLs. The
// signature binds the artifact to its assignment and an expiry instant, so a
// leaked URL cannot be replayed against another artifact or after the TTL.
// Signatures are stateless: verification needs only the key.
type URLSigner struct {
	key []byte
	ttl time.Duration
}

// NewURLSigner creates a signer. The key must be non-empty.
func NewURLSigner(key string, ttl time.Duration) (*URLSigner, error) {
	if key == "" {
		return nil, fmt.Errorf("signing key is required")
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &URLSigner{key: []byte(key), ttl: ttl}, nil
}

// SignedQuery holds the verifiable parts of a download URL.
type SignedQuery struct {
	ArtifactID   string
	AssignmentID string
	Expiry       int64
	Signature    string
}

// Sign produces the query parameters for one artifact download, expiring
// after the configured TTL from now.
func (s *URLSigner) Sign(artifactID, assignmentID string, now time.Time) SignedQuery {
	exp := now.Add(s.ttl).Unix()
	return SignedQuery{
		ArtifactID:   artifactID,
		AssignmentID: assignmentID,
		Expiry:       exp,
		Signature:    s.compute(artifactID, assignmentID, exp),
	}
}

// Verify checks the signature and expiry. It reports the denial reason on
// failure so the gate can telemeter it.
func (s *URLSigner) Verify(q SignedQuery, now time.Time) (ok bool, reason string) {
	if q.ArtifactID == "" || q.AssignmentID == "" || q.Signature == "" {
		return false, "malformed_url"
	}
	expected := s.compute(q.ArtifactID, q.AssignmentID, q.Expiry)
	if !hmac.Equal([]byte(expected), []byte(q.Signature)) {
		return false, "bad_signature"
	}
	if now.Unix() > q.Expiry {
		return false, "expired_url"
	}
	return true, ""
}

func (s *URLSigner) compute(artifactID, assignmentID string, expiry int64) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(artifactID))
	mac.Write([]byte{'|'})
	mac.Write([]byte(assignmentID))
	mac.Write([]byte{'|'})
	mac.Write([]byte(strconv.FormatInt(expiry, 10)))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
