package tasks

import "strings"

// Status represents the lifecycle of a task as reported by the job backend.
type Status string

const (
	StatusPending    Status = "pending"
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
	// StatusCancelling is written optimistically while a cancel mutation is
	// in flight; the backend itself never reports it.
	StatusCancelling Status = "cancelling"
	StatusSkipped    Status = "skipped"
	StatusUnknown    Status = "unknown"
)

var knownStatuses = map[Status]struct{}{
	StatusPending:    {},
	StatusQueued:     {},
	StatusProcessing: {},
	StatusCompleted:  {},
	StatusFailed:     {},
	StatusCancelled:  {},
	StatusCancelling: {},
	StatusSkipped:    {},
}

// NormalizeStatus folds a raw task status string into a Status. Unrecognized
// values pass through lowercased so the caller can still render them; empty
// input maps to StatusUnknown. This function is total.
func NormalizeStatus(value string) Status {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return StatusUnknown
	}
	switch normalized {
	case "canceled":
		return StatusCancelled
	case "in_progress", "running":
		return StatusProcessing
	case "error":
		return StatusFailed
	case "waiting":
		return StatusQueued
	}
	return Status(normalized)
}

// IsKnown reports whether the status belongs to the closed canonical set.
func (s Status) IsKnown() bool {
	_, ok := knownStatuses[s]
	return ok
}

// IsActive reports whether a task in this status should be polled frequently.
// Failed tasks stay active because the user may retry a step.
func (s Status) IsActive() bool {
	switch s {
	case StatusProcessing, StatusQueued, StatusPending, StatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the task has reached a final state that no
// backend transition will leave.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// StepStatus is the closed set of canonical per-step states.
type StepStatus string

const (
	StepPending    StepStatus = "pending"
	StepProcessing StepStatus = "processing"
	StepCompleted  StepStatus = "completed"
	StepFailed     StepStatus = "failed"
	StepCancelled  StepStatus = "cancelled"
	StepSkipped    StepStatus = "skipped"
)

// NormalizeStepStatus maps an arbitrary step status string onto the closed
// StepStatus set. Unrecognized or empty input conservatively maps to
// StepPending, never to StepFailed. This is the only path by which raw step
// status strings enter the rest of the system.
func NormalizeStepStatus(value string) StepStatus {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "completed", "success", "succeeded", "done":
		return StepCompleted
	case "processing", "in_progress", "running":
		return StepProcessing
	case "failed", "error":
		return StepFailed
	case "cancelled", "canceled":
		return StepCancelled
	case "skipped":
		return StepSkipped
	case "pending", "queued", "waiting":
		return StepPending
	default:
		return StepPending
	}
}
