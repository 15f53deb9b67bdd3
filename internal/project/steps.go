package project

import "slidespeaker/internal/tasks"

// stepMapKeys are the keys a step map has been observed under inside a state
// object, in probe order.
var stepMapKeys = []string{"steps", "processingSteps", "pipeline_steps", "workflow"}

// StepStates extracts the raw step map from a payload. Probe order: the
// nested state objects' step keys, then a top-level steps key. Returns nil
// when no non-empty step map exists anywhere; callers then fall back to step
// inference.
func StepStates(payload tasks.Raw) map[string]tasks.StepState {
	if payload == nil {
		return nil
	}
	for _, stateKey := range []string{"state", "detailed_state"} {
		if state, ok := asMap(payload[stateKey]); ok {
			for _, key := range stepMapKeys {
				if steps := decodeStepMap(state[key]); len(steps) > 0 {
					return steps
				}
			}
		}
	}
	return decodeStepMap(payload["steps"])
}

func decodeStepMap(value any) map[string]tasks.StepState {
	raw, ok := asMap(value)
	if !ok || len(raw) == 0 {
		return nil
	}
	steps := make(map[string]tasks.StepState, len(raw))
	for name, entry := range raw {
		if m, ok := asMap(entry); ok {
			status, _ := m["status"].(string)
			steps[name] = tasks.StepState{Status: status, Data: m["data"]}
			continue
		}
		// A bare string entry is the step's status.
		if status, ok := entry.(string); ok {
			steps[name] = tasks.StepState{Status: status}
			continue
		}
		steps[name] = tasks.StepState{}
	}
	return steps
}
