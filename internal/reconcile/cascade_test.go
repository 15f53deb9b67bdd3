package reconcile_test

import (
	"reflect"
	"testing"

	"slidespeaker/internal/reconcile"
	"slidespeaker/internal/tasks"
)

func canonical(pairs ...any) []tasks.CanonicalStep {
	steps := make([]tasks.CanonicalStep, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		steps = append(steps, tasks.CanonicalStep{
			Name:   pairs[i].(string),
			Status: pairs[i+1].(tasks.StepStatus),
		})
	}
	return steps
}

func TestCascadeNoAnchorPassesThrough(t *testing.T) {
	in := canonical(
		"extract_slides", tasks.StepCompleted,
		"generate_audio", tasks.StepProcessing,
		"compose_video", tasks.StepPending,
	)
	out := reconcile.ApplyFailureCascade(in, nil)
	if !reflect.DeepEqual(out, in) {
		t.Fatalf("expected passthrough, got %+v", out)
	}
}

func TestCascadeAnchorFromErrorLog(t *testing.T) {
	in := canonical(
		"extract_slides", tasks.StepCompleted,
		"generate_audio", tasks.StepProcessing,
		"generate_subtitles", tasks.StepCompleted,
		"compose_video", tasks.StepProcessing,
	)
	errs := []tasks.TaskError{
		{Step: "extract_slides", Error: "transient"},
		{Step: "generate_audio", Error: "tts failed"},
	}
	out := reconcile.ApplyFailureCascade(in, errs)

	if out[0].Status != tasks.StepCompleted || out[0].BlockedByFailure {
		t.Fatalf("step before anchor was altered: %+v", out[0])
	}
	if out[1].Status != tasks.StepFailed {
		t.Fatalf("anchor not forced to failed: %+v", out[1])
	}
	for _, step := range out[2:] {
		if step.Status != tasks.StepPending || !step.BlockedByFailure {
			t.Fatalf("downstream step not downgraded: %+v", step)
		}
	}
}

func TestCascadeMostRecentErrorWins(t *testing.T) {
	in := canonical(
		"extract_slides", tasks.StepCompleted,
		"generate_audio", tasks.StepCompleted,
		"compose_video", tasks.StepProcessing,
	)
	errs := []tasks.TaskError{
		{Step: "compose_video", Error: "older"},
		{Step: "generate_audio", Error: "newer"},
	}
	out := reconcile.ApplyFailureCascade(in, errs)
	if out[1].Status != tasks.StepFailed {
		t.Fatalf("expected generate_audio anchored, got %+v", out)
	}
}

func TestCascadeAnchorFromFailedStatus(t *testing.T) {
	in := canonical(
		"extract_slides", tasks.StepCompleted,
		"generate_transcripts", tasks.StepFailed,
		"generate_audio", tasks.StepCompleted,
	)
	out := reconcile.ApplyFailureCascade(in, nil)
	if out[1].Status != tasks.StepFailed {
		t.Fatalf("anchor lost: %+v", out[1])
	}
	if out[2].Status != tasks.StepPending || !out[2].BlockedByFailure {
		t.Fatalf("step after failed anchor kept its status: %+v", out[2])
	}
}

func TestCascadeUnknownErrorStepFallsBackToFailedStatus(t *testing.T) {
	in := canonical(
		"extract_slides", tasks.StepFailed,
		"generate_audio", tasks.StepCompleted,
	)
	errs := []tasks.TaskError{{Step: "no_such_step", Error: "boom"}}
	out := reconcile.ApplyFailureCascade(in, errs)
	if out[0].Status != tasks.StepFailed {
		t.Fatalf("expected first failed step anchored, got %+v", out)
	}
	if out[1].Status != tasks.StepPending || !out[1].BlockedByFailure {
		t.Fatalf("downstream not blocked: %+v", out[1])
	}
}

func TestCascadeSkippedUntouched(t *testing.T) {
	in := canonical(
		"extract_slides", tasks.StepFailed,
		"generate_subtitle_transcripts", tasks.StepSkipped,
		"compose_video", tasks.StepCompleted,
	)
	out := reconcile.ApplyFailureCascade(in, nil)
	if out[1].Status != tasks.StepSkipped || out[1].BlockedByFailure {
		t.Fatalf("skipped step was altered: %+v", out[1])
	}
	if out[2].Status != tasks.StepPending {
		t.Fatalf("completed step after anchor survived: %+v", out[2])
	}
}

func TestCascadeMonotonicity(t *testing.T) {
	// No step after the anchor may read completed, and no step before it may
	// change, regardless of input statuses.
	statuses := []tasks.StepStatus{
		tasks.StepPending, tasks.StepProcessing, tasks.StepCompleted,
		tasks.StepFailed, tasks.StepCancelled, tasks.StepSkipped,
	}
	names := []string{"extract_slides", "generate_transcripts", "generate_audio", "compose_video"}
	for _, before := range statuses {
		for _, after := range statuses {
			in := canonical(
				names[0], before,
				names[1], tasks.StepFailed,
				names[2], after,
				names[3], after,
			)
			out := reconcile.ApplyFailureCascade(in, nil)
			anchor := 1
			if before == tasks.StepFailed {
				anchor = 0
			}
			for i := 0; i < anchor; i++ {
				if out[i] != in[i] {
					t.Fatalf("step before anchor modified: %+v -> %+v", in[i], out[i])
				}
			}
			for i := anchor + 1; i < len(out); i++ {
				if out[i].Status == tasks.StepCompleted {
					t.Fatalf("completed step survived after anchor: %+v", out)
				}
			}
		}
	}
}

func TestCascadeDoesNotMutateInput(t *testing.T) {
	in := canonical(
		"extract_slides", tasks.StepFailed,
		"compose_video", tasks.StepCompleted,
	)
	snapshot := make([]tasks.CanonicalStep, len(in))
	copy(snapshot, in)
	reconcile.ApplyFailureCascade(in, nil)
	if !reflect.DeepEqual(in, snapshot) {
		t.Fatalf("input slice mutated: %+v", in)
	}
}
