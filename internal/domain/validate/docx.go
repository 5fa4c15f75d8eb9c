package validate

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/coursedeck/deliverables-api/internal/domain/model"
)

// docxMagic is the local-file-header signature every ZIP container starts
// with. A DOCX whose first entry does not open with it is not a ZIP at all.
var docxMagic = []byte{0x50, 0x4B, 0x03, 0x04}

// maxDocumentPartBytes bounds how much of word/document.xml is read during
// structural checks, guarding against decompression bombs.
const maxDocumentPartBytes = 32 << 20

// DocxChecker verifies DOCX-family bytes: magic signature, ZIP integrity,
// and at least one non-empty paragraph in the primary document part.
type DocxChecker struct{}

// NewDocxChecker constructs the DOCX-family checker.
func NewDocxChecker() *DocxChecker {
	return &DocxChecker{}
}

// Type returns the docx artifact type.
func (c *DocxChecker) Type() model.ArtifactType {
	return model.ArtifactTypeDocx
}

// Check inspects the bytes independently of how they were produced.
func (c *DocxChecker) Check(data []byte) error {
	if len(data) < len(docxMagic) || !bytes.Equal(data[:len(docxMagic)], docxMagic) {
		return badMagic("missing ZIP local file header signature")
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return emptyOrCorrupt("zip container does not parse: " + err.Error())
	}

	docXML, err := readDocumentPart(zr)
	if err != nil {
		return err
	}

	n, err := countParagraphs(docXML)
	if err != nil {
		return emptyOrCorrupt("word/document.xml does not parse: " + err.Error())
	}
	if n == 0 {
		return emptyOrCorrupt("document has no non-empty paragraphs")
	}
	return nil
}

func readDocumentPart(zr *zip.Reader) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, emptyOrCorrupt("cannot open word/document.xml: " + err.Error())
		}
		defer rc.Close()
		data, err := io.ReadAll(io.LimitReader(rc, maxDocumentPartBytes))
		if err != nil {
			return nil, emptyOrCorrupt("cannot read word/document.xml: " + err.Error())
		}
		return data, nil
	}
	return nil, emptyOrCorrupt("zip container has no word/document.xml part")
}

// countParagraphs walks the document part counting w:p elements that contain
// at least one non-whitespace text node.
func countParagraphs(docXML []byte) (int, error) {
	dec := xml.NewDecoder(bytes.NewReader(docXML))
	count := 0
	inParagraph := 0
	paragraphHasText := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "p" {
				if inParagraph == 0 {
					paragraphHasText = false
				}
				inParagraph++
			}
		case xml.EndElement:
			if t.Name.Local == "p" && inParagraph > 0 {
				inParagraph--
				if inParagraph == 0 && paragraphHasText {
					count++
				}
			}
		case xml.CharData:
			if inParagraph > 0 && strings.TrimSpace(string(t)) != "" {
				paragraphHasText = true
			}
		}
	}
	return count, nil
}
