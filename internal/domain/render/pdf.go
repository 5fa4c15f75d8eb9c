package render

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/coursedeck/deliverables-api/internal/domain/model"
)

// PDFRenderer lays the content out on A4 pages with the Helvetica core
// font, so no font files need embedding. The document's creation and
// modification dates are pinned to a fixed instant so identical content
// produces byte-identical output.
type PDFRenderer struct{}

// NewPDFRenderer constructs the PDF-family renderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Type returns the pdf artifact type.
func (r *PDFRenderer) Type() model.ArtifactType {
	return model.ArtifactTypePDF
}

var pdfEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Render produces the PDF bytes for the given content.
func (r *PDFRenderer) Render(content *model.StructuredContent) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetCreationDate(pdfEpoch)
	doc.SetModificationDate(pdfEpoch)
	doc.SetMargins(20, 20, 20)
	doc.SetAutoPageBreak(true, 20)
	doc.AddPage()

	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.SetFont("Helvetica", "B", 18)
	doc.MultiCell(0, 9, tr(content.Title), "", "L", false)
	doc.Ln(4)

	for _, section := range content.Sections {
		if section.Heading != "" {
			doc.SetFont("Helvetica", "B", 13)
			doc.MultiCell(0, 7, tr(section.Heading), "", "L", false)
			doc.Ln(2)
		}
		doc.SetFont("Helvetica", "", 11)
		for _, p := range section.Paragraphs {
			if p == "" {
				continue
			}
			doc.MultiCell(0, 6, tr(p), "", "L", false)
			doc.Ln(2)
		}
		doc.Ln(2)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
