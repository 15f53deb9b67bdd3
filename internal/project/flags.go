package project

import (
	"slidespeaker/internal/pipeline"
	"slidespeaker/internal/tasks"
)

// flagRoots is the probe order for configuration flags: the task object, its
// kwargs bag, then the nested state. Narrower than candidateRoots because
// flags have a known home and a broad search would pick up per-step noise.
func flagRoots(payload tasks.Raw) []map[string]any {
	if payload == nil {
		return nil
	}
	roots := []map[string]any{payload}
	if kwargs, ok := asMap(payload["kwargs"]); ok {
		roots = append(roots, kwargs)
	}
	for _, key := range []string{"state", "detailed_state"} {
		if state, ok := asMap(payload[key]); ok {
			roots = append(roots, state)
		}
	}
	return roots
}

func flagString(roots []map[string]any, keys ...string) string {
	for _, key := range keys {
		for _, root := range roots {
			if value, ok := root[key]; ok {
				if s, ok := scalarString(value); ok {
					return s
				}
			}
		}
	}
	return ""
}

func flagBool(roots []map[string]any, key string, fallback bool) bool {
	for _, root := range roots {
		if value, ok := root[key]; ok {
			if b, ok := scalarBool(value); ok {
				return b
			}
		}
	}
	return fallback
}

// Flags resolves the parameters that decide which steps a task runs. The
// defaults mirror what the backend assumes for an unconfigured task: video
// with subtitles, no podcast, no avatar.
func Flags(payload tasks.Raw) pipeline.Flags {
	roots := flagRoots(payload)
	flags := pipeline.DefaultFlags()
	flags.SourceType = flagString(roots, "source", "source_type", "file_ext")
	flags.GenerateVideo = flagBool(roots, "generate_video", flags.GenerateVideo)
	flags.GeneratePodcast = flagBool(roots, "generate_podcast", flags.GeneratePodcast)
	flags.GenerateAvatar = flagBool(roots, "generate_avatar", flags.GenerateAvatar)
	flags.GenerateSubtitles = flagBool(roots, "generate_subtitles", flags.GenerateSubtitles)
	flags.VoiceLanguage = flagString(roots, "voice_language")
	flags.SubtitleLanguage = flagString(roots, "subtitle_language")
	flags.TranscriptLanguage = flagString(roots, "transcript_language", "podcast_transcript_language")
	return flags
}
