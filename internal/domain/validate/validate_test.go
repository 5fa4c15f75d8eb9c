package validate

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursedeck/deliverables-api/internal/domain/model"
	"github.com/coursedeck/deliverables-api/internal/domain/render"
)

func renderedCandidates(t *testing.T) map[model.ArtifactType]model.ArtifactCandidate {
	t.Helper()
	content := &model.StructuredContent{
		Title: "Lab Report Outline",
		Sections: []model.ContentSection{
			{Heading: "Method", Paragraphs: []string{"Samples were titrated against 0.1M NaOH."}},
		},
	}
	candidates, err := render.NewStage().Render(content)
	require.NoError(t, err)
	byType := map[model.ArtifactType]model.ArtifactCandidate{}
	for _, c := range candidates {
		byType[c.Type] = c
	}
	return byType
}

func TestStage_Validate_AcceptsRenderedOutput(t *testing.T) {
	stage := NewStage()

	for typ, candidate := range renderedCandidates(t) {
		result := stage.Validate(candidate)
		require.True(t, result.Passed(), "%s: %s %s", typ, result.ErrorCode, result.ErrorMessage)

		sum := sha256.Sum256(candidate.Bytes)
		assert.Equal(t, hex.EncodeToString(sum[:]), result.SHA256)
		assert.Equal(t, int64(len(candidate.Bytes)), result.ByteSize)
		assert.Empty(t, result.ErrorCode)
	}
}

func TestStage_Validate_BadMagicBytes(t *testing.T) {
	stage := NewStage()

	candidates := renderedCandidates(t)

	// Swap the payloads: valid bytes of the wrong family must be refused on
	// the signature alone, regardless of declared mime.
	docx := candidates[model.ArtifactTypeDocx]
	pdf := candidates[model.ArtifactTypePDF]
	docx.Bytes, pdf.Bytes = pdf.Bytes, docx.Bytes

	for _, candidate := range []model.ArtifactCandidate{docx, pdf} {
		result := stage.Validate(candidate)
		require.False(t, result.Passed())
		assert.Equal(t, model.ErrCodeBadMagicBytes, result.ErrorCode)
		assert.Empty(t, result.SHA256)
	}
}

func TestStage_Validate_TruncatedDocx(t *testing.T) {
	stage := NewStage()

	docx := renderedCandidates(t)[model.ArtifactTypeDocx]
	docx.Bytes = docx.Bytes[:len(docx.Bytes)/2]

	result := stage.Validate(docx)
	require.False(t, result.Passed())
	assert.Equal(t, model.ErrCodeEmptyOrCorrupt, result.ErrorCode)
}

func TestStage_Validate_TruncatedPDF(t *testing.T) {
	stage := NewStage()

	pdf := renderedCandidates(t)[model.ArtifactTypePDF]
	// Cut before the trailer so %%EOF is gone.
	pdf.Bytes = pdf.Bytes[:len(pdf.Bytes)/2]

	result := stage.Validate(pdf)
	require.False(t, result.Passed())
	assert.Equal(t, model.ErrCodeEmptyOrCorrupt, result.ErrorCode)
}

// emptyDocxArchive builds a well-formed ZIP whose document part has no
// paragraphs with text.
func emptyDocxArchive(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDocxChecker_EmptyDocument(t *testing.T) {
	checker := NewDocxChecker()

	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "no paragraphs",
			doc:  `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body/></w:document>`,
		},
		{
			name: "whitespace-only paragraph",
			doc:  `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>   </w:t></w:r></w:p></w:body></w:document>`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := checker.Check(emptyDocxArchive(t, tc.doc))
			require.Error(t, err)
			ce, ok := err.(*CheckError)
			require.True(t, ok)
			assert.Equal(t, model.ErrCodeEmptyOrCorrupt, ce.Code)
		})
	}
}

func TestDocxChecker_MissingDocumentPart(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte("<styles/>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	err = NewDocxChecker().Check(buf.Bytes())
	require.Error(t, err)
	ce, ok := err.(*CheckError)
	require.True(t, ok)
	assert.Equal(t, model.ErrCodeEmptyOrCorrupt, ce.Code)
}

func TestPDFChecker_PageCount(t *testing.T) {
	checker := NewPDFChecker()

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{
			name:    "one page",
			body:    "%PDF-1.4\n1 0 obj << /Type /Pages /Count 1 >> endobj\n2 0 obj << /Type /Page >> endobj\n%%EOF",
			wantErr: false,
		},
		{
			name:    "no-space name tokens",
			body:    "%PDF-1.4\n1 0 obj << /Type/Pages /Count 1 >> endobj\n2 0 obj << /Type/Page >> endobj\n%%EOF",
			wantErr: false,
		},
		{
			name:    "pages tree only",
			body:    "%PDF-1.4\n1 0 obj << /Type /Pages /Count 0 >> endobj\n%%EOF",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := checker.Check([]byte(tc.body))
			if tc.wantErr {
				require.Error(t, err)
				ce, ok := err.(*CheckError)
				require.True(t, ok)
				assert.Equal(t, model.ErrCodeEmptyOrCorrupt, ce.Code)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestStage_Validate_EmptyBytes(t *testing.T) {
	stage := NewStage()

	for _, typ := range []model.ArtifactType{model.ArtifactTypeDocx, model.ArtifactTypePDF} {
		result := stage.Validate(model.ArtifactCandidate{Type: typ, Mime: typ.Mime(), Bytes: nil})
		require.False(t, result.Passed())
		assert.Equal(t, model.ErrCodeBadMagicBytes, result.ErrorCode, "zero bytes cannot carry a signature")
	}
}
