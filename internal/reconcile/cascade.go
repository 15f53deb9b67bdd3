package reconcile

import "slidespeaker/internal/tasks"

// ApplyFailureCascade propagates a known failure onto an ordered step
// sequence. The anchor is the most recent error's step when that step exists
// in the sequence, otherwise the first step whose status is failed. The
// anchor is forced to failed; every step strictly after it that reads as
// processing or completed is downgraded to pending and flagged as blocked.
// Skipped steps and steps before the anchor are never touched. With no
// anchor the input passes through unchanged.
//
// The input slice is not modified; the result is a fresh slice.
func ApplyFailureCascade(steps []tasks.CanonicalStep, errors []tasks.TaskError) []tasks.CanonicalStep {
	if len(steps) == 0 {
		return steps
	}
	out := make([]tasks.CanonicalStep, len(steps))
	copy(out, steps)

	anchor := anchorIndex(out, errors)
	if anchor < 0 {
		return out
	}

	out[anchor].Status = tasks.StepFailed
	for i := anchor + 1; i < len(out); i++ {
		switch out[i].Status {
		case tasks.StepProcessing, tasks.StepCompleted:
			out[i].Status = tasks.StepPending
			out[i].BlockedByFailure = true
		}
	}
	return out
}

func anchorIndex(steps []tasks.CanonicalStep, errors []tasks.TaskError) int {
	if len(errors) > 0 {
		latest := errors[len(errors)-1].Step
		for i, step := range steps {
			if step.Name == latest {
				return i
			}
		}
	}
	for i, step := range steps {
		if step.Status == tasks.StepFailed {
			return i
		}
	}
	return -1
}
