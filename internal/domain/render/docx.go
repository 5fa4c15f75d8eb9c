package render

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/coursedeck/deliverables-api/internal/domain/model"
)

// DocxRenderer writes a minimal OOXML word-processing package: the ZIP
// container with content types, package relationships, and the primary
// document part. Entry order and timestamps are fixed so identical content
// produces byte-identical archives.
type DocxRenderer struct{}

// NewDocxRenderer constructs the DOCX-family renderer.
func NewDocxRenderer() *DocxRenderer {
	return &DocxRenderer{}
}

// Type returns the docx artifact type.
func (r *DocxRenderer) Type() model.ArtifactType {
	return model.ArtifactTypeDocx
}

const docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const docxPackageRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

// docxEpoch is the fixed modification time stamped on every archive entry.
// ZIP headers carry MS-DOS times, whose epoch starts in 1980.
var docxEpoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// Render lays the content out as the package's primary document part.
func (r *DocxRenderer) Render(content *model.StructuredContent) ([]byte, error) {
	doc, err := buildDocumentXML(content)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	// Fixed entry order; reordering would change the bytes.
	entries := []struct {
		name string
		body string
	}{
		{"[Content_Types].xml", docxContentTypes},
		{"_rels/.rels", docxPackageRels},
		{"word/document.xml", doc},
	}

	for _, e := range entries {
		w, createErr := zw.CreateHeader(&zip.FileHeader{
			Name:     e.name,
			Method:   zip.Deflate,
			Modified: docxEpoch,
		})
		if createErr != nil {
			return nil, fmt.Errorf("create zip entry %s: %w", e.name, createErr)
		}
		if _, writeErr := w.Write([]byte(e.body)); writeErr != nil {
			return nil, fmt.Errorf("write zip entry %s: %w", e.name, writeErr)
		}
	}

	if closeErr := zw.Close(); closeErr != nil {
		return nil, fmt.Errorf("close zip: %w", closeErr)
	}
	return buf.Bytes(), nil
}

// buildDocumentXML constructs word/document.xml: the title, then each
// section's heading and paragraphs as w:p runs.
func buildDocumentXML(content *model.StructuredContent) (string, error) {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)

	if err := writeParagraph(&b, content.Title); err != nil {
		return "", err
	}
	for _, section := range content.Sections {
		if strings.TrimSpace(section.Heading) != "" {
			if err := writeParagraph(&b, section.Heading); err != nil {
				return "", err
			}
		}
		for _, p := range section.Paragraphs {
			if strings.TrimSpace(p) == "" {
				continue
			}
			if err := writeParagraph(&b, p); err != nil {
				return "", err
			}
		}
	}

	b.WriteString(`</w:body></w:document>`)
	return b.String(), nil
}

func writeParagraph(b *strings.Builder, text string) error {
	b.WriteString(`<w:p><w:r><w:t xml:space="preserve">`)
	var escaped bytes.Buffer
	if err := xml.EscapeText(&escaped, []byte(text)); err != nil {
		return fmt.Errorf("escape paragraph text: %w", err)
	}
	b.Write(escaped.Bytes())
	b.WriteString(`</w:t></w:r></w:p>`)
	return nil
}
