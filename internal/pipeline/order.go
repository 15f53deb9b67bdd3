package pipeline

import (
	"sort"

	"slidespeaker/internal/tasks"
)

// StepUnknown is the sentinel bucket for step names outside the known
// pipeline. It sorts after every recognized step.
const StepUnknown = "unknown"

// stepOrder is the canonical pipeline order across all task variants. A task
// only ever contains a subset, but the relative order of any two known steps
// is fixed by this table.
var stepOrder = []string{
	// Slide ingestion
	"extract_slides",
	"convert_slides_to_images",
	"analyze_slide_images",

	// PDF ingestion
	"segment_pdf_content",

	// Script generation and refinement
	"generate_transcripts",
	"revise_transcripts",
	"revise_pdf_transcripts",
	"generate_subtitle_transcripts",
	"generate_podcast_script",

	// Translation
	"translate_voice_transcripts",
	"translate_subtitle_transcripts",
	"translate_podcast_script",

	// Visual preparation
	"generate_pdf_chapter_images",

	// Audio generation
	"generate_audio",
	"generate_pdf_audio",
	"generate_podcast_audio",
	"generate_podcast_subtitles",
	"generate_avatar_videos",

	// Subtitle assets
	"generate_subtitles",
	"generate_pdf_subtitles",

	// Final assembly
	"compose_video",
	"compose_podcast",

	StepUnknown,
}

var stepPriority = func() map[string]int {
	m := make(map[string]int, len(stepOrder))
	for i, name := range stepOrder {
		m[name] = i
	}
	return m
}()

// PriorityOf returns the sort rank of a step name. Names not in the canonical
// table rank after every known step, sharing a single bucket.
func PriorityOf(name string) int {
	if priority, ok := stepPriority[name]; ok {
		return priority
	}
	return len(stepOrder)
}

// KnownStep reports whether name appears in the canonical pipeline table.
func KnownStep(name string) bool {
	_, ok := stepPriority[name]
	return ok
}

// Entry pairs a step name with its raw backend state for ordered iteration.
type Entry struct {
	Name  string
	State tasks.StepState
}

// SortSteps flattens a step map into canonical pipeline order. Unknown steps
// all carry the same rank, so ties are broken by name to keep the output
// independent of map iteration order. A nil or empty map yields nil.
func SortSteps(steps map[string]tasks.StepState) []Entry {
	if len(steps) == 0 {
		return nil
	}
	entries := make([]Entry, 0, len(steps))
	for name, state := range steps {
		entries = append(entries, Entry{Name: name, State: state})
	}
	sort.Slice(entries, func(i, j int) bool {
		pi, pj := PriorityOf(entries[i].Name), PriorityOf(entries[j].Name)
		if pi != pj {
			return pi < pj
		}
		return entries[i].Name < entries[j].Name
	})
	return entries
}

// SortNames orders step names the same way SortSteps orders entries.
func SortNames(names []string) []string {
	ordered := make([]string, len(names))
	copy(ordered, names)
	sort.Slice(ordered, func(i, j int) bool {
		pi, pj := PriorityOf(ordered[i]), PriorityOf(ordered[j])
		if pi != pj {
			return pi < pj
		}
		return ordered[i] < ordered[j]
	})
	return ordered
}
