package pipeline

import "strings"

// baselineLanguage is the language that needs no translation pass.
const baselineLanguage = "english"

// Flags describes the task parameters that determine which steps a task will
// run. Producers (see project.Flags) resolve the backend's scattered and
// inconsistently typed fields into this struct before inference.
type Flags struct {
	// SourceType is the raw source hint: "pdf", ".pdf", a slide extension,
	// or empty when nothing was resolvable.
	SourceType string

	GenerateVideo     bool
	GeneratePodcast   bool
	GenerateAvatar    bool
	GenerateSubtitles bool

	// VoiceLanguage defaults to the baseline when empty. SubtitleLanguage
	// defaults to VoiceLanguage. TranscriptLanguage stays empty unless the
	// task carries a podcast transcript override.
	VoiceLanguage      string
	SubtitleLanguage   string
	TranscriptLanguage string
}

// DefaultFlags returns the flag set assumed when a task specifies nothing:
// video with subtitles, no podcast, no avatar, baseline language.
func DefaultFlags() Flags {
	return Flags{GenerateVideo: true, GenerateSubtitles: true}
}

// IsPDF reports whether the source hint identifies a PDF ingestion task.
func (f Flags) IsPDF() bool {
	source := strings.ToLower(strings.TrimSpace(f.SourceType))
	return source == "pdf" || source == ".pdf"
}

func (f Flags) voiceLanguage() string {
	if lang := strings.ToLower(strings.TrimSpace(f.VoiceLanguage)); lang != "" {
		return lang
	}
	return baselineLanguage
}

func (f Flags) subtitleLanguage() string {
	if lang := strings.ToLower(strings.TrimSpace(f.SubtitleLanguage)); lang != "" {
		return lang
	}
	return f.voiceLanguage()
}

func (f Flags) transcriptLanguage() string {
	return strings.ToLower(strings.TrimSpace(f.TranscriptLanguage))
}

// InferSteps synthesizes the expected step sequence for a task whose payload
// carries no step map at all. The result is deterministic, already in
// canonical order, and contains only step names; callers treat every inferred
// step as pending.
func InferSteps(flags Flags) []string {
	voice := flags.voiceLanguage()
	subtitle := flags.subtitleLanguage()

	var steps []string
	if flags.IsPDF() {
		steps = append(steps, "segment_pdf_content", "revise_pdf_transcripts")
		if voice != baselineLanguage {
			steps = append(steps, "translate_voice_transcripts")
		}
		if subtitle != baselineLanguage {
			steps = append(steps, "translate_subtitle_transcripts")
		}
		if flags.GenerateVideo {
			steps = append(steps, "generate_pdf_chapter_images", "generate_pdf_audio")
			if flags.GenerateSubtitles {
				steps = append(steps, "generate_pdf_subtitles")
			}
			steps = append(steps, "compose_video")
		}
		if flags.GeneratePodcast {
			steps = append(steps, "generate_podcast_script")
			if transcript := flags.transcriptLanguage(); transcript != "" && transcript != baselineLanguage {
				steps = append(steps, "translate_podcast_script")
			}
			steps = append(steps, "generate_podcast_audio", "compose_podcast")
		}
		return SortNames(steps)
	}

	steps = append(steps,
		"extract_slides",
		"convert_slides_to_images",
		"analyze_slide_images",
		"generate_transcripts",
		"revise_transcripts",
	)
	if voice != baselineLanguage {
		steps = append(steps, "translate_voice_transcripts")
	}
	if subtitle != baselineLanguage {
		steps = append(steps, "translate_subtitle_transcripts")
	}
	if flags.GenerateVideo {
		steps = append(steps, "generate_audio")
		if flags.GenerateAvatar {
			steps = append(steps, "generate_avatar_videos")
		}
		if flags.GenerateSubtitles && subtitle != voice {
			steps = append(steps, "generate_subtitle_transcripts")
		}
		if flags.GenerateSubtitles {
			steps = append(steps, "generate_subtitles")
		}
		steps = append(steps, "compose_video")
	}
	return SortNames(steps)
}
