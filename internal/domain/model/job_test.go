package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobStage_Next(t *testing.T) {
	tests := []struct {
		stage JobStage
		next  JobStage
	}{
		{JobStageIngesting, JobStageGenerating},
		{JobStageGenerating, JobStageRendering},
		{JobStageRendering, JobStageValidating},
		{JobStageValidating, JobStageReady},
		{JobStageReady, JobStageReady},
		{JobStageFailed, JobStageFailed},
	}
	for _, tc := range tests {
		t.Run(string(tc.stage), func(t *testing.T) {
			assert.Equal(t, tc.next, tc.stage.Next())
		})
	}
}

func TestJobStage_Terminal(t *testing.T) {
	for _, s := range []JobStage{JobStageIngesting, JobStageGenerating, JobStageRendering, JobStageValidating} {
		assert.False(t, s.Terminal(), s)
	}
	assert.True(t, JobStageReady.Terminal())
	assert.True(t, JobStageFailed.Terminal())
}

func TestJobStage_FailureFor(t *testing.T) {
	tests := []struct {
		stage  JobStage
		reason FailureReason
	}{
		{JobStageIngesting, FailureIngest},
		{JobStageGenerating, FailureGenerate},
		{JobStageRendering, FailureRender},
		{JobStageValidating, FailureValidate},
		{JobStageReady, ""},
		{JobStageFailed, ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.reason, tc.stage.FailureFor(), tc.stage)
	}
}

func TestJobStage_UnmarshalText(t *testing.T) {
	var s JobStage
	require.NoError(t, s.UnmarshalText([]byte(" Rendering ")))
	assert.Equal(t, JobStageRendering, s)

	assert.Error(t, s.UnmarshalText([]byte("queued")))
}

func TestJob_Active(t *testing.T) {
	job := &Job{Stage: JobStageValidating}
	assert.True(t, job.Active())

	job.Stage = JobStageFailed
	assert.False(t, job.Active())

	var nilJob *Job
	assert.False(t, nilJob.Active())
}

func TestCreateJobRequest_Validate(t *testing.T) {
	valid := CreateJobRequest{AssignmentID: "a-1", SourceFileRef: "f-1", Prompt: "write it"}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*CreateJobRequest)
	}{
		{"missing assignment", func(r *CreateJobRequest) { r.AssignmentID = " " }},
		{"missing source ref", func(r *CreateJobRequest) { r.SourceFileRef = "" }},
		{"missing prompt", func(r *CreateJobRequest) { r.Prompt = "\t" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)
			assert.Error(t, req.Validate())
		})
	}
}
