package reconcile

import (
	"math"

	"slidespeaker/internal/project"
	"slidespeaker/internal/tasks"
)

// ProgressPercent computes the single progress value for a payload. The
// first finite numeric field wins: values above 1 are already percentages,
// values at or below 1 are fractions of one (so exactly 1 means 100%, not
// 1%). Without a numeric field the completed-step ratio decides; without
// steps the result is 0. Always an integer in [0,100].
func ProgressPercent(payload tasks.Raw, steps map[string]tasks.StepState) int {
	if candidates := project.ProgressCandidates(payload); len(candidates) > 0 {
		return normalizeProgress(candidates[0])
	}
	if len(steps) > 0 {
		completed := 0
		for _, state := range steps {
			if tasks.NormalizeStepStatus(state.Status) == tasks.StepCompleted {
				completed++
			}
		}
		return clampProgress(math.Round(100 * float64(completed) / float64(len(steps))))
	}
	return 0
}

func normalizeProgress(value float64) int {
	if value > 1 {
		return clampProgress(math.Round(value))
	}
	return clampProgress(math.Round(value * 100))
}

func clampProgress(value float64) int {
	if math.IsNaN(value) || value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return int(value)
}
