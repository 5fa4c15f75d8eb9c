package testutil

import (
	"github.com/coursedeck/deliverables-api/internal/domain/model"
)

// JobRequestBuilder provides a fluent interface for building CreateJobRequest
// values for tests.
type JobRequestBuilder struct {
	req *model.CreateJobRequest
}

// NewJobRequest creates a new JobRequestBuilder with sensible defaults.
func NewJobRequest() *JobRequestBuilder {
	return &JobRequestBuilder{
		req: &model.CreateJobRequest{
			AssignmentID:  "assignment-1",
			SourceFileRef: "file-1",
			Prompt:        "summarize the attached reading into a study guide",
		},
	}
}

// WithAssignment sets the assignment ID.
func (b *JobRequestBuilder) WithAssignment(assignmentID string) *JobRequestBuilder {
	b.req.AssignmentID = assignmentID
	return b
}

// WithSourceFileRef sets the source file reference.
func (b *JobRequestBuilder) WithSourceFileRef(ref string) *JobRequestBuilder {
	b.req.SourceFileRef = ref
	return b
}

// WithPrompt sets the generation prompt.
func (b *JobRequestBuilder) WithPrompt(prompt string) *JobRequestBuilder {
	b.req.Prompt = prompt
	return b
}

// Build returns the constructed CreateJobRequest.
func (b *JobRequestBuilder) Build() *model.CreateJobRequest {
	return b.req
}

// SampleContent returns structured content that renders and validates
// successfully end to end.
func SampleContent() *model.StructuredContent {
	return &model.StructuredContent{
		Title: "Photosynthesis Study Guide",
		Sections: []model.ContentSection{
			{
				Heading: "Overview",
				Paragraphs: []string{
					"Photosynthesis converts light energy into chemical energy.",
					"It takes place in the chloroplasts of plant cells.",
				},
			},
			{
				Heading: "Key Terms",
				Paragraphs: []string{
					"Chlorophyll absorbs light most strongly in the blue and red wavelengths.",
				},
			},
		},
	}
}
