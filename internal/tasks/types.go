package tasks

// Raw is a job-backend payload as decoded JSON. The backend guarantees no
// canonical shape: step maps, configuration, and scalar fields may live under
// any of several keys depending on task type and backend version. Nothing
// outside the reconciliation pipeline should read a Raw directly.
type Raw = map[string]any

// StepState is one entry of the backend's steps mapping before status
// normalization.
type StepState struct {
	Status string
	Data   any
}

// CanonicalStep is a step after status normalization and failure-cascade
// adjustment. Immutable once computed for a snapshot.
type CanonicalStep struct {
	Name             string
	Status           StepStatus
	BlockedByFailure bool
}

// TaskError is a normalized entry from the backend's error log.
type TaskError struct {
	Step      string
	Error     string
	Timestamp string
}

// DetailFields holds the scalar fields projected out of a task record.
// An empty string means the field could not be resolved; callers must treat
// absence as unknown rather than substituting a display value.
type DetailFields struct {
	Filename           string
	FileExt            string
	VoiceLanguage      string
	SubtitleLanguage   string
	TranscriptLanguage string
	VoiceID            string
	PodcastHostVoice   string
	PodcastGuestVoice  string
	TaskType           string
}

// ProgressSnapshot is the fully reconciled, render-ready view of one task at
// one point in time. Snapshots are value objects: each reconciliation pass
// builds a fresh one and existing snapshots are never mutated in place.
type ProgressSnapshot struct {
	TaskID          string
	UploadID        string
	Status          Status
	ProgressPercent int
	CurrentStep     string
	Steps           []CanonicalStep
	Errors          []TaskError
	Fields          DetailFields
	CreatedAt       string
	UpdatedAt       string
}

// Step returns the canonical step with the given name, if present.
func (s ProgressSnapshot) Step(name string) (CanonicalStep, bool) {
	for _, step := range s.Steps {
		if step.Name == name {
			return step, true
		}
	}
	return CanonicalStep{}, false
}

// FailedStep returns the first step in pipeline order whose status is failed.
func (s ProgressSnapshot) FailedStep() (CanonicalStep, bool) {
	for _, step := range s.Steps {
		if step.Status == StepFailed {
			return step, true
		}
	}
	return CanonicalStep{}, false
}
