package reconcile

import (
	"fmt"
	"strings"

	"slidespeaker/internal/tasks"
)

// fallbackStepName labels error entries that name no step when the payload
// reports no current step either.
const fallbackStepName = "unknown_step"

// NormalizeErrors gives the backend's heterogeneous error log a uniform
// shape. String entries become errors attributed to the fallback step; object
// entries contribute their own step/error/timestamp with fallbacks for
// missing members. Entries with an empty message are dropped.
func NormalizeErrors(entries []any, fallbackStep, fallbackTimestamp string) []tasks.TaskError {
	if len(entries) == 0 {
		return nil
	}
	if fallbackStep == "" {
		fallbackStep = fallbackStepName
	}

	out := make([]tasks.TaskError, 0, len(entries))
	for _, entry := range entries {
		var normalized tasks.TaskError
		switch v := entry.(type) {
		case string:
			normalized = tasks.TaskError{
				Step:      fallbackStep,
				Error:     v,
				Timestamp: fallbackTimestamp,
			}
		case map[string]any:
			normalized = tasks.TaskError{
				Step:      stringField(v, "step", fallbackStep),
				Error:     firstStringField(v, "error", "message"),
				Timestamp: stringField(v, "timestamp", fallbackTimestamp),
			}
		case nil:
			continue
		default:
			normalized = tasks.TaskError{
				Step:      fallbackStep,
				Error:     fmt.Sprint(v),
				Timestamp: fallbackTimestamp,
			}
		}
		if strings.TrimSpace(normalized.Error) == "" {
			continue
		}
		out = append(out, normalized)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func stringField(m map[string]any, key, fallback string) string {
	if s, ok := m[key].(string); ok && strings.TrimSpace(s) != "" {
		return s
	}
	return fallback
}

func firstStringField(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := m[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
