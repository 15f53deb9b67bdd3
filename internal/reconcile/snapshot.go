package reconcile

import (
	"slidespeaker/internal/pipeline"
	"slidespeaker/internal/project"
	"slidespeaker/internal/tasks"
)

// Snapshot runs the full reconciliation pass over one raw payload: step
// extraction or inference, status normalization, error normalization,
// failure cascade, progress computation, and detail projection. Pure and
// deterministic: the same payload always yields the same snapshot.
func Snapshot(payload tasks.Raw) tasks.ProgressSnapshot {
	stepStates := project.StepStates(payload)

	var steps []tasks.CanonicalStep
	if len(stepStates) > 0 {
		for _, entry := range pipeline.SortSteps(stepStates) {
			steps = append(steps, tasks.CanonicalStep{
				Name:   entry.Name,
				Status: tasks.NormalizeStepStatus(entry.State.Status),
			})
		}
	} else {
		for _, name := range pipeline.InferSteps(project.Flags(payload)) {
			steps = append(steps, tasks.CanonicalStep{
				Name:   name,
				Status: tasks.StepPending,
			})
		}
	}

	currentStep := project.CurrentStep(payload)
	updatedAt := project.Timestamp(payload, "updated_at")
	errors := NormalizeErrors(project.RawErrors(payload), currentStep, updatedAt)
	steps = ApplyFailureCascade(steps, errors)

	return tasks.ProgressSnapshot{
		TaskID:          project.TaskID(payload),
		UploadID:        project.UploadID(payload),
		Status:          tasks.NormalizeStatus(project.StatusString(payload)),
		ProgressPercent: ProgressPercent(payload, stepStates),
		CurrentStep:     currentStep,
		Steps:           steps,
		Errors:          errors,
		Fields:          project.Fields(payload),
		CreatedAt:       project.Timestamp(payload, "created_at"),
		UpdatedAt:       updatedAt,
	}
}
