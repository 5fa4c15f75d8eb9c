// Package metrics defines the pipeline's standard metric emissions.
package metrics

import (
	"time"

	obserrors "github.com/coursedeck/deliverables-api/internal/observability/errors"
	"github.com/coursedeck/deliverables-api/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

// StageMetric captures one pipeline stage transition for metric emission.
type StageMetric struct {
	Stage    string
	Result   string
	Duration time.Duration
	Err      error
}

// EmitStageTransition emits the standard stage lifecycle metrics: a counter
// per transition and a timing when the stage duration is known.
func EmitStageTransition(sink statsd.Sink, in StageMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"stage":  in.Stage,
		"result": in.Result,
	}
	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("pipeline.stage.transition", 1, tags)
	if in.Duration > 0 {
		sink.Timing("pipeline.stage.duration", in.Duration, CloneTags(tags))
	}
}

// EmitJobOutcome emits the terminal counter for a finished job. Reason is
// empty for jobs that reached ready.
func EmitJobOutcome(sink statsd.Sink, stage, reason string) {
	if sink == nil {
		return
	}
	tags := map[string]string{"stage": stage}
	if reason != "" {
		tags["reason"] = reason
	}
	sink.Count("pipeline.job.finished", 1, tags)
}

// EmitValidationVerdict emits one counter per validated artifact.
func EmitValidationVerdict(sink statsd.Sink, artifactType, status, errorCode string) {
	if sink == nil {
		return
	}
	tags := map[string]string{
		"artifact_type": artifactType,
		"status":        status,
	}
	if errorCode != "" {
		tags["error_code"] = errorCode
	}
	sink.Count("pipeline.validation.verdict", 1, tags)
}

// EmitAccessDenied emits the counter behind the blocked-download telemetry.
// Every gate denial reaches this, whatever the reason.
func EmitAccessDenied(sink statsd.Sink, reason string) {
	if sink == nil {
		return
	}
	if reason == "" {
		reason = "unspecified"
	}
	sink.Count("pipeline.access.denied", 1, map[string]string{"reason": reason})
}

// CloneTags creates a shallow copy of a tag map, filtering out empty keys.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		if k == "" {
			continue
		}
		out[k] = v
	}
	return out
}
