package project

import "slidespeaker/internal/tasks"

// RawErrors extracts the backend's error log entries before normalization.
// Entries may be strings or objects; reconcile.NormalizeErrors gives them a
// uniform shape.
func RawErrors(payload tasks.Raw) []any {
	if payload == nil {
		return nil
	}
	if entries, ok := payload["errors"].([]any); ok && len(entries) > 0 {
		return entries
	}
	for _, key := range []string{"state", "detailed_state"} {
		if state, ok := asMap(payload[key]); ok {
			if entries, ok := state["errors"].([]any); ok && len(entries) > 0 {
				return entries
			}
		}
	}
	return nil
}
