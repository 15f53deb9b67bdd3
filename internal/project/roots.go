package project

import (
	"slidespeaker/internal/pipeline"
	"slidespeaker/internal/tasks"
)

// configBagKeys are the keys under which a task's configuration bag has been
// observed, across backend versions and task types.
var configBagKeys = []string{"kwargs", "task_kwargs", "config", "task_config", "settings"}

// candidateRoots flattens a payload into the fixed-priority list of objects a
// field lookup probes. Order: the nested state objects, their configuration
// bags, the task object itself, its configuration bags, then per-step
// data/result objects in canonical step order.
func candidateRoots(payload tasks.Raw) []map[string]any {
	if payload == nil {
		return nil
	}

	var roots []map[string]any
	appendRoot := func(value any) {
		if m, ok := asMap(value); ok {
			roots = append(roots, m)
		}
	}
	appendWithBags := func(m map[string]any) {
		roots = append(roots, m)
		for _, key := range configBagKeys {
			appendRoot(m[key])
		}
	}

	for _, key := range []string{"state", "detailed_state"} {
		if state, ok := asMap(payload[key]); ok {
			appendWithBags(state)
		}
	}
	appendWithBags(payload)

	for _, entry := range sortedStepData(payload) {
		appendRoot(entry)
	}
	return roots
}

// sortedStepData collects per-step data/result objects in canonical order so
// lookups that fall through to step payloads stay deterministic.
func sortedStepData(payload tasks.Raw) []any {
	steps := StepStates(payload)
	if len(steps) == 0 {
		return nil
	}
	names := make([]string, 0, len(steps))
	for name := range steps {
		names = append(names, name)
	}
	var out []any
	for _, name := range pipeline.SortNames(names) {
		data := steps[name].Data
		if m, ok := asMap(data); ok {
			if result, ok := asMap(m["result"]); ok {
				out = append(out, any(m), any(result))
				continue
			}
			out = append(out, any(m))
		}
	}
	return out
}
