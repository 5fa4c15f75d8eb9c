package validate

import (
	"bytes"

	"github.com/coursedeck/deliverables-api/internal/domain/model"
)

// pdfMagic is the %PDF header every PDF file must start with.
var pdfMagic = []byte{0x25, 0x50, 0x44, 0x46}

// PDFChecker verifies PDF-family bytes: magic signature, a trailing EOF
// marker, and at least one page object in the cross-reference body.
type PDFChecker struct{}

// NewPDFChecker constructs the PDF-family checker.
func NewPDFChecker() *PDFChecker {
	return &PDFChecker{}
}

// Type returns the pdf artifact type.
func (c *PDFChecker) Type() model.ArtifactType {
	return model.ArtifactTypePDF
}

// Check inspects the bytes independently of how they were produced.
func (c *PDFChecker) Check(data []byte) error {
	if len(data) < len(pdfMagic) || !bytes.Equal(data[:len(pdfMagic)], pdfMagic) {
		return badMagic("missing %PDF header")
	}
	if !bytes.Contains(data, []byte("%%EOF")) {
		return emptyOrCorrupt("missing %%EOF trailer marker")
	}
	if countPages(data) < 1 {
		return emptyOrCorrupt("document has no pages")
	}
	return nil
}

// countPages counts /Type /Page object markers, excluding the /Type /Pages
// tree nodes. Writers vary whitespace between name tokens, so both the
// single-space and no-space forms are scanned.
func countPages(data []byte) int {
	count := 0
	for _, marker := range [][]byte{[]byte("/Type /Page"), []byte("/Type/Page")} {
		for off := 0; ; {
			i := bytes.Index(data[off:], marker)
			if i < 0 {
				break
			}
			pos := off + i + len(marker)
			// "/Type /Pages" is the page tree, not a page.
			if pos >= len(data) || data[pos] != 's' {
				count++
			}
			off = pos
		}
	}
	return count
}
