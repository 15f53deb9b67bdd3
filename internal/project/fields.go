package project

import (
	"path"
	"strings"

	"slidespeaker/internal/tasks"
)

// FilenamePlaceholder is the terminal fallback when nothing in a payload can
// name the file.
const FilenamePlaceholder = "Processing file"

// fieldSpec declares how one detail field resolves: an ordered path table
// probed first, then the alias set for the breadth-first fallback.
type fieldSpec struct {
	paths   []string
	aliases []string
}

var (
	fileExtSpec = fieldSpec{
		paths:   []string{"file_ext", "kwargs.file_ext", "file_extension"},
		aliases: []string{"file_ext", "file_extension"},
	}
	voiceLanguageSpec = fieldSpec{
		paths:   []string{"voice_language", "kwargs.voice_language", "config.voice_language"},
		aliases: []string{"voice_language"},
	}
	subtitleLanguageSpec = fieldSpec{
		paths:   []string{"subtitle_language", "kwargs.subtitle_language", "config.subtitle_language"},
		aliases: []string{"subtitle_language"},
	}
	transcriptLanguageSpec = fieldSpec{
		paths: []string{
			"transcript_language",
			"kwargs.transcript_language",
			"podcast_transcript_language",
		},
		aliases: []string{"transcript_language", "podcast_transcript_language"},
	}
	voiceIDSpec = fieldSpec{
		paths: []string{
			"voice_id",
			"kwargs.voice_id",
			"config.voice.id",
			"task_config.video.voice_id",
			"voice",
		},
		aliases: []string{"voice_id", "voiceid"},
	}
	podcastHostVoiceSpec = fieldSpec{
		paths: []string{
			"podcast_host_voice",
			"kwargs.podcast_host_voice",
			"config.podcast.host_voice",
			"host_voice",
		},
		aliases: []string{"podcast_host_voice", "host_voice"},
	}
	podcastGuestVoiceSpec = fieldSpec{
		paths: []string{
			"podcast_guest_voice",
			"kwargs.podcast_guest_voice",
			"config.podcast.guest_voice",
			"guest_voice",
		},
		aliases: []string{"podcast_guest_voice", "guest_voice"},
	}
	taskTypeSpec = fieldSpec{
		paths:   []string{"task_type", "kwargs.task_type"},
		aliases: []string{"task_type"},
	}
)

func resolveField(roots []map[string]any, spec fieldSpec) string {
	if value, ok := lookupPaths(roots, spec.paths); ok {
		return value
	}
	if value, ok := searchKeys(roots, spec.aliases); ok {
		return value
	}
	return ""
}

// Fields projects every detail field out of a payload. Each field resolves
// independently; an empty string means the payload holds no usable value.
func Fields(payload tasks.Raw) tasks.DetailFields {
	roots := candidateRoots(payload)
	fields := tasks.DetailFields{
		FileExt:            resolveField(roots, fileExtSpec),
		VoiceLanguage:      resolveField(roots, voiceLanguageSpec),
		SubtitleLanguage:   resolveField(roots, subtitleLanguageSpec),
		TranscriptLanguage: resolveField(roots, transcriptLanguageSpec),
		VoiceID:            resolveField(roots, voiceIDSpec),
		PodcastHostVoice:   resolveField(roots, podcastHostVoiceSpec),
		PodcastGuestVoice:  resolveField(roots, podcastGuestVoiceSpec),
		TaskType:           resolveField(roots, taskTypeSpec),
	}
	fields.Filename = Filename(payload, roots, fields.FileExt)
	return fields
}

// Filename resolves a display filename through its dedicated fallback chain:
// explicit filename fields, a file path basename, upload or task id plus
// extension, bare ids, then the placeholder. Unlike other fields this always
// returns something.
func Filename(payload tasks.Raw, roots []map[string]any, fileExt string) string {
	if roots == nil {
		roots = candidateRoots(payload)
	}
	if name, ok := lookupPaths(roots, []string{"filename", "kwargs.filename"}); ok {
		return name
	}
	if filePath, ok := lookupPaths(roots, []string{"file_path", "kwargs.file_path"}); ok {
		if base := path.Base(strings.ReplaceAll(filePath, "\\", "/")); base != "." && base != "/" {
			return base
		}
	}

	ext := fileExt
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	uploadID := UploadID(payload)
	taskID := TaskID(payload)
	if uploadID != "" && ext != "" {
		return uploadID + ext
	}
	if taskID != "" && ext != "" {
		return taskID + ext
	}
	if uploadID != "" {
		return uploadID
	}
	if taskID != "" {
		return taskID
	}
	return FilenamePlaceholder
}

// TaskID returns the payload's task id, if present.
func TaskID(payload tasks.Raw) string {
	if payload == nil {
		return ""
	}
	for _, key := range []string{"task_id", "id"} {
		if s, ok := scalarString(payload[key]); ok {
			return s
		}
	}
	return ""
}

// UploadID returns the payload's upload id, probing the task object and its
// configuration bags only; the breadth-first fallback is not used because a
// partial key match here would misattribute the file.
func UploadID(payload tasks.Raw) string {
	if payload == nil {
		return ""
	}
	if s, ok := scalarString(payload["upload_id"]); ok {
		return s
	}
	for _, bag := range configBagKeys {
		if m, ok := asMap(payload[bag]); ok {
			if s, ok := scalarString(m["upload_id"]); ok {
				return s
			}
		}
	}
	if state, ok := asMap(payload["state"]); ok {
		if s, ok := scalarString(state["upload_id"]); ok {
			return s
		}
	}
	return ""
}

// StatusString returns the raw task status string before normalization.
func StatusString(payload tasks.Raw) string {
	if payload == nil {
		return ""
	}
	if s, ok := scalarString(payload["status"]); ok {
		return s
	}
	for _, key := range []string{"state", "detailed_state"} {
		if state, ok := asMap(payload[key]); ok {
			if s, ok := scalarString(state["status"]); ok {
				return s
			}
		}
	}
	return ""
}

// CurrentStep returns the payload's current step name, if reported.
func CurrentStep(payload tasks.Raw) string {
	if payload == nil {
		return ""
	}
	if s, ok := lookupPaths(candidateRoots(payload), []string{"current_step"}); ok {
		return s
	}
	return ""
}

// Timestamp returns the named timestamp field from the task object or its
// state, as the raw string the backend sent.
func Timestamp(payload tasks.Raw, key string) string {
	if payload == nil {
		return ""
	}
	if s, ok := scalarString(payload[key]); ok {
		return s
	}
	for _, stateKey := range []string{"state", "detailed_state"} {
		if state, ok := asMap(payload[stateKey]); ok {
			if s, ok := scalarString(state[key]); ok {
				return s
			}
		}
	}
	return ""
}

// ProgressCandidates returns the payload's numeric progress values in
// priority order: completion_percentage then progress, the task object
// outranking its nested state for each.
func ProgressCandidates(payload tasks.Raw) []float64 {
	if payload == nil {
		return nil
	}
	roots := []map[string]any{payload}
	for _, key := range []string{"state", "detailed_state"} {
		if state, ok := asMap(payload[key]); ok {
			roots = append(roots, state)
		}
	}
	var values []float64
	for _, field := range []string{"completion_percentage", "progress"} {
		for _, root := range roots {
			if value, ok := root[field]; ok {
				if f, ok := scalarNumber(value); ok {
					values = append(values, f)
				}
			}
		}
	}
	return values
}
