package model

import (
	"errors"
	"strings"
)

// StructuredContent is the generation stage's output: the document the render
// stage lays out into both artifact families. Rendering is a pure function of
// this struct, so identical content always produces byte-identical artifacts.
type StructuredContent struct {
	Title    string           `json:"title"`
	Sections []ContentSection `json:"sections"`
}

// ContentSection is one heading plus its paragraphs.
type ContentSection struct {
	Heading    string   `json:"heading"`
	Paragraphs []string `json:"paragraphs"`
}

// Validate rejects content that would render an empty document. The render
// stage must never be handed content whose output the validation stage would
// refuse for emptiness.
func (c *StructuredContent) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return errors.New("content title is required")
	}
	if len(c.Sections) == 0 {
		return errors.New("content must have at least one section")
	}
	for _, s := range c.Sections {
		for _, p := range s.Paragraphs {
			if strings.TrimSpace(p) != "" {
				return nil
			}
		}
	}
	return errors.New("content must have at least one non-empty paragraph")
}

// ParagraphCount returns the number of non-empty paragraphs across sections.
func (c *StructuredContent) ParagraphCount() int {
	n := 0
	for _, s := range c.Sections {
		for _, p := range s.Paragraphs {
			if strings.TrimSpace(p) != "" {
				n++
			}
		}
	}
	return n
}

// Material is the raw source bytes and declared mime fetched for a source
// file reference. The declared mime is advisory only; no validation trusts it.
type Material struct {
	Bytes []byte `json:"bytes"`
	Mime  string `json:"mime"`
}

// Text renders the material into the plain text handed to generation.
// Non-text material is passed through as-is; the generation gateway performs
// its own extraction for binary formats.
func (m *Material) Text() string {
	return string(m.Bytes)
}
